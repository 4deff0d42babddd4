package commands

import (
	"github.com/spf13/cobra"

	"github.com/tranphatthinh/gramctl/internal/client/errors"
	"github.com/tranphatthinh/gramctl/internal/client/output"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored credential",
	Long: `Revoke the refresh token on the server when one is stored, then remove the
stored credential.

This operation is idempotent - it succeeds even if no credentials are stored.`,
	Args: cobra.NoArgs,
	Run:  runLogout,
}

func runLogout(cmd *cobra.Command, args []string) {
	a := mustApp("")

	if _, err := a.handler().Logout(background(cmd)); err != nil {
		errors.ExitWithError(err, "failed to log out")
	}

	if flagJSON {
		output.OutputJSON(map[string]bool{"logged_out": true}, nil)
	}
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
