package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/weaveops/internal/cli/commands"
	"github.com/JonMunkholm/weaveops/internal/cli/ui"
)

func main() {
	_ = godotenv.Overload()

	if err := commands.Execute(); err != nil {
		if msg := err.Error(); strings.Contains(msg, "unknown command") {
			ui.PrintError(os.Stderr, "%s", msg)
			fmt.Fprintln(os.Stderr, "\nRun 'weaveops --help' for usage.")
		}
		os.Exit(1)
	}
}
