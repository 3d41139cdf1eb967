package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/config"
	"github.com/Habinalszl/raktarkezelo-discord-bot/internal/logging"
)

var (
	// Global flags
	cfgPath string
	verbose bool

	// exec flags
	remoteAddr string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "raktar",
	Short: "Raktárkezelő - warehouse ledger chat bot",
	Long: `raktar keeps a single-table warehouse ledger and answers the
!raktar, !hozzaad, !modosit, !torol, !reset and !segitseg commands on
Discord, HTTP and gRPC.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Discord, HTTP and gRPC transports",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var execCmd = &cobra.Command{
	Use:   "exec [command line]",
	Short: "Run one command and print the reply",
	Long: `Runs a single command against the configured store and prints the reply.

Example:
  raktar exec "!hozzaad alma 5"
  raktar exec --remote localhost:50051 "!raktar"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

var itemsCmd = &cobra.Command{
	Use:   "items [name]",
	Short: "Print the ledger, or the rows matching name",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runItems,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "raktar.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	execCmd.Flags().StringVar(&remoteAddr, "remote", "", "send the command to a running server's gRPC address")

	rootCmd.AddCommand(serveCmd, execCmd, itemsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
