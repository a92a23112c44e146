package main

import (
	"os"

	"github.com/simon/vigil/cmd"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit)
	os.Exit(cmd.Execute())
}
