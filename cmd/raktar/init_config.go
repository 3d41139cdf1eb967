package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file to --config",
	Long: `Writes the default configuration to the --config path. Secrets such as
the Discord token are not written; keep them in .env or the environment.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if !forceInit {
		if _, err := os.Stat(cfgPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to check config: %w", err)
		}
	}

	if err := config.DefaultConfig().Save(cfgPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgPath)
	return nil
}
