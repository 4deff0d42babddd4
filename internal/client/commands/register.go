package commands

import (
	"github.com/spf13/cobra"

	"github.com/tranphatthinh/gramctl/internal/client/errors"
	"github.com/tranphatthinh/gramctl/internal/client/output"
)

var (
	registerEmail         string
	registerPasswordStdin bool
)

var registerCmd = &cobra.Command{
	Use:   "register [server-url]",
	Short: "Create an account",
	Long: `Create an account with email and password.

Nothing is stored: once the account exists you are sent to the login page.
If the server hands back a key it is shown once.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRegister,
}

func runRegister(cmd *cobra.Command, args []string) {
	serverArg := ""
	if len(args) > 0 {
		serverArg = args[0]
	}
	a := mustApp(serverArg)

	form := readForm(registerEmail, registerPasswordStdin, true)

	out, err := a.handler().Register(background(cmd), form)
	if err != nil {
		if flagJSON {
			output.OutputJSON(nil, err)
		}
		errors.ExitSilently(err)
	}

	if flagJSON {
		output.OutputJSON(map[string]string{
			"server":   a.baseURL,
			"email":    form.Email,
			"message":  out.Message,
			"key":      out.Key,
			"redirect": out.Redirect,
		}, nil)
	}
}

func init() {
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email (prompted when omitted)")
	registerCmd.Flags().BoolVar(&registerPasswordStdin, "password-stdin", false, "Read the password from stdin")
	rootCmd.AddCommand(registerCmd)
}
