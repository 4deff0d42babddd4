package commands

import (
	"github.com/spf13/cobra"

	"github.com/tranphatthinh/gramctl/internal/client/errors"
	"github.com/tranphatthinh/gramctl/internal/client/output"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Renew the stored access token",
	Args:  cobra.NoArgs,
	Run:   runRefresh,
}

func runRefresh(cmd *cobra.Command, args []string) {
	a := mustApp("")

	out, err := a.handler().Refresh(background(cmd))
	if err != nil {
		if flagJSON {
			output.OutputJSON(nil, err)
		}
		errors.ExitSilently(err)
	}

	if flagJSON {
		output.OutputJSON(describe(out.Credentials), nil)
	}
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
