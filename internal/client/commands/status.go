package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tranphatthinh/gramctl/internal/client/errors"
	"github.com/tranphatthinh/gramctl/internal/client/output"
	"github.com/tranphatthinh/gramctl/internal/client/session"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"whoami"},
	Short:   "Show the stored login",
	Long: `Check that a credential is stored and show who it belongs to.

Without one you are told to log in and the command exits with code 5. An
expired access token is renewed once when a refresh token is stored.`,
	Args: cobra.NoArgs,
	Run:  runStatus,
}

type statusInfo struct {
	Server    string     `json:"server"`
	Email     string     `json:"email,omitempty"`
	UserID    string     `json:"user_id,omitempty"`
	SavedAt   *time.Time `json:"saved_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) {
	a := mustApp("")

	creds, err := a.handler().Guard(background(cmd))
	if err != nil {
		if flagJSON {
			output.OutputJSON(nil, err)
		}
		errors.ExitSilently(err)
	}

	info := describe(creds)
	if flagJSON {
		output.OutputJSON(info, nil)
		return
	}

	tw := output.NewTableWriter()
	tw.WriteRow("SERVER", info.Server)
	tw.WriteRow("EMAIL", orDash(info.Email))
	tw.WriteRow("USER ID", orDash(info.UserID))
	tw.WriteRow("SAVED", formatTime(info.SavedAt))
	tw.WriteRow("EXPIRES", formatTime(info.ExpiresAt))
	_ = tw.Flush()
}

func describe(creds *session.Credentials) statusInfo {
	info := statusInfo{Server: creds.URL, Email: creds.Email}
	if !creds.SavedAt.IsZero() {
		saved := creds.SavedAt
		info.SavedAt = &saved
	}
	if claims, err := session.ParseClaims(creds.AccessToken); err == nil {
		info.UserID = claims.UserID
		if info.Email == "" {
			info.Email = claims.Subject
		}
		if !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt
			info.ExpiresAt = &exp
		}
	}
	return info
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.RFC3339)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
