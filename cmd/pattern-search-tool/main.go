package main

import (
	"fmt"
	"os"

	"github.com/sankz2/pattern-search-tool/internal/cmd"
)

// Version is the current version of the pattern-search-tool application
const Version = "1.0.0"

func main() {
	cmd.Version = Version
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
