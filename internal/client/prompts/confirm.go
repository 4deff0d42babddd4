package prompts

import (
	"fmt"
	"os"
	"strings"
)

// Confirm asks a yes/no question, defaulting to no
func Confirm(question string) bool {
	fmt.Fprintf(os.Stderr, "⚠ %s\n", question)
	fmt.Fprint(os.Stderr, "Are you sure? [y/N]: ")

	response, err := readLine(stdin)
	if err != nil {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
