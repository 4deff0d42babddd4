package cli

import (
	"github.com/spf13/cobra"
)

var version = "1.0.0"

// RootCmd represents the base command
var RootCmd = &cobra.Command{
	Use:   "gram-stub",
	Short: "Stand-in grammar-check server",
	Long: `gram-stub answers the HTTP endpoints gramctl talks to so the client can be
developed and tested without the real service.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(ServerCmd)
	RootCmd.AddCommand(AuthCmd)

	RootCmd.SetVersionTemplate(`{{.Version}}
`)
}
