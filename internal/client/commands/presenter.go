package commands

import (
	"io"

	"github.com/pkg/browser"

	"github.com/tranphatthinh/gramctl/internal/client/output"
)

// openURL is swapped out by tests
var openURL = browser.OpenURL

func init() {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// presenter shows flow results in the terminal.
// With --json only alerts are printed, on stderr, so stdout stays parseable.
type presenter struct {
	jsonMode bool
	open     bool
}

func newPresenter(jsonMode, open bool) *presenter {
	return &presenter{jsonMode: jsonMode, open: open}
}

func (p *presenter) Alert(message string) {
	output.PrintError(message)
}

func (p *presenter) Notice(message string) {
	if p.jsonMode {
		return
	}
	output.PrintSuccess(message)
}

func (p *presenter) Navigate(url string) {
	if !p.jsonMode {
		output.PrintNext(url)
	}
	if p.open {
		if err := openURL(url); err != nil {
			output.PrintWarning("could not open a browser: " + err.Error())
		}
	}
}
