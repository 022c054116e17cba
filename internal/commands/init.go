package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/movingwise/reconcile/internal/config"
)

func newInitCommand() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default reconcile.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, baseURL)
		},
	}

	cmd.Flags().StringVar(&baseURL, "api-url", "", "backend base URL (default: localhost)")

	return cmd
}

func runInit(dir, baseURL string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	cfg := config.Default()
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}

	path := filepath.Join(dir, config.DefaultFileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.MkdirAll(filepath.Join(dir, cfg.Log.ActionsDir), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	fmt.Printf("Initialized reconciliation workspace at %s\n", dir)
	fmt.Printf("Set %s before running networked commands\n", config.EnvToken)
	return nil
}
