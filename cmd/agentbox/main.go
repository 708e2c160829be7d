package main

import (
	"os"

	"github.com/aki/agentbox/internal/cli/commands"
	"github.com/aki/agentbox/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}
