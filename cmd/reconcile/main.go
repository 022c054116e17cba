package main

import (
	"os"

	"github.com/movingwise/reconcile/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
