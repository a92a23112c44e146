// Package session names user-scoped tmux sessions and turns remote
// list-sessions output into records.
package session

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/simon/vigil/internal/logging"
)

// FieldSeparator separates fields in the list-sessions format string.
const FieldSeparator = "|"

// ListFormat is the tmux -F format the parser expects.
const ListFormat = "#{session_name}" + FieldSeparator + "#{session_attached}" + FieldSeparator + "#{session_created}"

const listFields = 3

// Record is one remote tmux session belonging to the invoking user.
type Record struct {
	Name     Name   `yaml:"name"`
	Display  string `yaml:"display"`
	Attached bool   `yaml:"attached"`
	Created  string `yaml:"created"` // as reported by tmux, not interpreted
}

// State returns "attached" or "detached".
func (r Record) State() string {
	if r.Attached {
		return "attached"
	}
	return "detached"
}

// Parse parses list-sessions output produced with ListFormat. Lines with the
// wrong shape are skipped, sessions of other users are dropped, and the
// remote order is kept.
func Parse(output, user string) []Record {
	suffix := Separator + user

	var records []Record
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, FieldSeparator)
		if len(parts) != listFields {
			logging.Logger.Debug("skipping list line", "line", line, "fields", len(parts))
			continue
		}
		fullName := parts[0]
		if !strings.HasSuffix(fullName, suffix) || len(fullName) == len(suffix) {
			continue
		}

		attached, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			logging.Logger.Debug("skipping list line", "line", line, "error", err)
			continue
		}

		records = append(records, Record{
			Name:     Name(fullName),
			Display:  strings.TrimSuffix(fullName, suffix),
			Attached: attached > 0,
			Created:  strings.TrimSpace(parts[2]),
		})
	}
	return records
}

// Output formats accepted by Render.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Render writes records to w in the given format.
func Render(w io.Writer, format string, records []Record) error {
	switch format {
	case FormatYAML:
		if records == nil {
			records = []Record{}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return renderText(w, records)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

var (
	attachedColor = lipgloss.AdaptiveColor{Light: "#116620", Dark: "#50FA7B"}
	dimColor      = lipgloss.AdaptiveColor{Light: "#777777", Dark: "#6272A4"}
)

func renderText(w io.Writer, records []Record) error {
	r := lipgloss.NewRenderer(w)
	attachedStyle := r.NewStyle().Foreground(attachedColor)
	detachedStyle := r.NewStyle().Foreground(dimColor)

	width := 0
	for _, rec := range records {
		if len(rec.Display) > width {
			width = len(rec.Display)
		}
	}

	for _, rec := range records {
		state := detachedStyle.Render(rec.State())
		if rec.Attached {
			state = attachedStyle.Render(rec.State())
		}
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width, rec.Display, state); err != nil {
			return err
		}
	}
	return nil
}
