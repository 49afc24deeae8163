package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rootcut/rootcut/internal/config"
)

// newConfigCommand creates the `config` subcommand, grounded on the
// teacher's cmd/dot/config.go init flow: write a defaults-seeded config
// file in the requested format so a user has something to edit rather than
// hand-writing the YAML/TOML shape from scratch.
func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the rootcut configuration file",
	}
	cmd.AddCommand(newConfigInitCommand())
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var format string
	var force bool

	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a config file seeded with rootcut's defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(args[0], format, force)
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "config format (yaml, toml)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}

func runConfigInit(path, format string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
		}
	}

	data, err := config.WriteExample(config.Default(), format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %q: %w", path, err)
	}

	fmt.Printf("Configuration file created: %s\n", path)
	return nil
}
