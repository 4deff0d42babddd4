package prompts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	// stdin is shared so buffered input is not lost between prompts
	stdin = bufio.NewReader(os.Stdin)

	terminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
)

// Interactive reports whether prompts read from a terminal
func Interactive() bool {
	return terminal()
}

// SetInput makes prompts read from r, which is never treated as a terminal.
// The returned func restores stdin.
func SetInput(r io.Reader) (restore func()) {
	origIn, origTerm := stdin, terminal
	stdin = bufio.NewReader(r)
	terminal = func() bool { return false }
	return func() { stdin, terminal = origIn, origTerm }
}

// PromptEmail prompts for the account email (visible input)
func PromptEmail() (string, error) {
	fmt.Fprint(os.Stderr, "Email: ")
	email, err := readLine(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read email: %w", err)
	}
	return strings.TrimSpace(email), nil
}

// PromptPassword prompts for a password (hidden input when stdin is a terminal)
func PromptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)

	if !terminal() {
		password, err := readLine(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return password, nil
	}

	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// PromptNewPassword asks twice and fails when the entries differ
func PromptNewPassword() (string, error) {
	password, err := PromptPassword("Password")
	if err != nil {
		return "", err
	}
	confirm, err := PromptPassword("Confirm password")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}

// ReadPassword reads a password from r, e.g. for --password-stdin.
// os.Stdin goes through the shared reader so later prompts see the rest of it.
// Only the trailing newline is stripped.
func ReadPassword(r io.Reader) (string, error) {
	br := stdin
	if r != os.Stdin {
		br = bufio.NewReader(r)
	}
	password, err := readLine(br)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

// readLine reads one line without its line ending; EOF after data is not an error
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
