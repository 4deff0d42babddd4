package main

import (
	"os"

	"github.com/tranphatthinh/gramctl/internal/client/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
