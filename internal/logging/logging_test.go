package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialize(t *testing.T) {
	t.Cleanup(func() { Initialize(false, nil) })

	var buf bytes.Buffer
	Initialize(false, &buf)
	Logger.Debug("hidden")
	assert.Empty(t, buf.String())

	Initialize(true, &buf)
	Logger.Debug("visible", "session", "default-alice")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "session=default-alice")
	assert.Contains(t, buf.String(), "app=vigil")
}
