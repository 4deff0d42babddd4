package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranphatthinh/gramctl/internal/client/errors"
	"github.com/tranphatthinh/gramctl/internal/client/output"
	"github.com/tranphatthinh/gramctl/internal/client/review"
	"github.com/tranphatthinh/gramctl/internal/client/session"
)

var reviewFile string

var checkCmd = &cobra.Command{
	Use:   "check [text...]",
	Short: "Fix spelling and grammar mistakes",
	Long: `Send text to the grammar checker and print the corrected version.

Text comes from the arguments, from --file, or from stdin when neither is given.
Requires a stored login (or --token / GRAMCTL_ACCESS_TOKEN).`,
	Run: func(cmd *cobra.Command, args []string) {
		runReview(cmd, args, (*review.Service).CheckGrammar)
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [text...]",
	Short: "Suggest a clearer wording",
	Long: `Send text to the improvement service and print the suggested rewrite.

Text comes from the arguments, from --file, or from stdin when neither is given.
Requires a stored login (or --token / GRAMCTL_ACCESS_TOKEN).`,
	Run: func(cmd *cobra.Command, args []string) {
		runReview(cmd, args, (*review.Service).SuggestImprovement)
	},
}

type reviewFunc func(s *review.Service, ctx context.Context, text string) (*review.Result, error)

func runReview(cmd *cobra.Command, args []string, call reviewFunc) {
	a := mustApp("")

	text, err := readText(args, reviewFile, os.Stdin)
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	ctx := background(cmd)
	token, err := a.accessToken(ctx)
	if err != nil {
		if flagJSON {
			output.OutputJSON(nil, err)
		}
		errors.ExitSilently(err)
	}

	result, err := call(review.NewService(a.api(token)), ctx, text)
	if err != nil {
		if flagJSON {
			output.OutputJSON(nil, err)
			errors.ExitSilently(err)
		}
		errors.ExitWithError(err, "")
	}

	if flagJSON {
		output.OutputJSON(result, nil)
		return
	}
	fmt.Fprintln(output.Stdout, result.Revised)
}

// accessToken returns --token or GRAMCTL_ACCESS_TOKEN when set, otherwise the
// stored credential after the page guard has checked it
func (a *app) accessToken(ctx context.Context) (string, error) {
	token, err := session.ResolveToken(flagToken, nil)
	if err != nil || token != "" {
		return token, err
	}

	creds, err := a.handler().Guard(ctx)
	if err != nil {
		return "", err
	}
	return creds.AccessToken, nil
}

func readText(args []string, file string, stdin io.Reader) (string, error) {
	switch {
	case len(args) > 0 && file != "":
		return "", fmt.Errorf("give text either as arguments or with --file, not both")
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}

func init() {
	for _, c := range []*cobra.Command{checkCmd, suggestCmd} {
		c.Flags().StringVarP(&reviewFile, "file", "f", "", "Read the text from a file")
		rootCmd.AddCommand(c)
	}
}
