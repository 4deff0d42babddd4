package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tranphatthinh/gramctl/internal/client/errors"
	"github.com/tranphatthinh/gramctl/internal/client/flow"
	"github.com/tranphatthinh/gramctl/internal/client/output"
	"github.com/tranphatthinh/gramctl/internal/client/prompts"
)

var (
	loginEmail         string
	loginPasswordStdin bool
)

// interactive is swapped out by tests
var interactive = prompts.Interactive

var loginCmd = &cobra.Command{
	Use:   "login [server-url]",
	Short: "Sign in and store the returned credential",
	Long: `Sign in with email and password. The credential returned by the server is
stored and the next page (the grammar checker) is shown.

Server URL can be provided as an argument, via --url or GRAMCTL_URL. Without any
of these the URL of the stored credential, then http://127.0.0.1:5000, is used.

Credentials are stored:
- macOS/Windows (store=auto): tokens in the OS keyring, URL in a config file
- Linux (store=auto): everything in a config file with 0600 permissions

Only one account is stored at a time. Logging in again replaces it, after
asking when a terminal is attached. With --password-stdin, or without a
terminal, it is replaced without asking.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

func runLogin(cmd *cobra.Command, args []string) {
	serverArg := ""
	if len(args) > 0 {
		serverArg = args[0]
	}
	a := mustApp(serverArg)

	form := readForm(loginEmail, loginPasswordStdin, false)

	if !flagYes && !flagJSON {
		if prev, err := a.store.Load(); err == nil && (prev.URL != a.baseURL || prev.Email != form.Email) {
			question := fmt.Sprintf("This will replace the stored login for %s on %s", prev.Email, prev.URL)
			switch {
			case loginPasswordStdin || !interactive():
				// nobody to ask
				output.PrintWarning(fmt.Sprintf("Replacing the stored login for %s on %s", prev.Email, prev.URL))
			case !prompts.Confirm(question):
				output.PrintWarning("Login cancelled")
				errors.ExitWithCode(errors.ExitGeneralError, "")
				return
			}
		}
	}

	out, err := a.handler().Login(background(cmd), form)
	if err != nil {
		if flagJSON {
			output.OutputJSON(nil, err)
		}
		errors.ExitSilently(err)
	}

	if flagJSON {
		output.OutputJSON(map[string]string{
			"server":   a.baseURL,
			"email":    out.Credentials.Email,
			"redirect": out.Redirect,
		}, nil)
	}
}

// readForm collects the two credential fields from flags, stdin or prompts
func readForm(email string, passwordStdin, confirmPassword bool) flow.Form {
	var err error
	if email == "" {
		if passwordStdin {
			errors.ExitWithCode(errors.ExitInvalidArguments, "--email is required with --password-stdin")
		}
		if email, err = prompts.PromptEmail(); err != nil {
			errors.ExitWithError(err, "failed to read email")
		}
	}

	var password string
	switch {
	case passwordStdin:
		password, err = prompts.ReadPassword(os.Stdin)
	case confirmPassword:
		password, err = prompts.PromptNewPassword()
	default:
		password, err = prompts.PromptPassword("Password")
	}
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	return flow.Form{Email: email, Password: password}
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
	rootCmd.AddCommand(loginCmd)
}

// background is used by commands run outside cobra's context plumbing
func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
