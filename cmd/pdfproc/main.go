package main

import (
	"os"

	"github.com/spherical/pdfproc/cmd/pdfproc/commands"
)

var (
	version = "0.1.0"
)

func main() {
	if err := commands.Execute(version); err != nil {
		os.Exit(commands.ExitCode(err))
	}
}
