package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quartzlabs/devtools/cli"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "devtools",
	Short: "Developer tool registry CLI",
	Long:  "devtools — a CLI for listing, flipping, and dispatching commands against registered developer tools.",
	// SilenceUsage prevents printing usage on every error
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("devtools version %s\n", version))

	rootCmd.AddCommand(cli.NewToolsCmd())
	rootCmd.AddCommand(cli.NewCommandsCmd())
	rootCmd.AddCommand(cli.NewServeCmd())
}
