package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davicafu/hexatasks/internal/config"
	"github.com/davicafu/hexatasks/pkg/logger"
)

var Version = "dev"

// runtimeEnv se rellena en PersistentPreRunE y lo comparten todos los subcomandos.
type runtimeEnv struct {
	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	env := &runtimeEnv{}

	rootCmd := &cobra.Command{
		Use:           "hexatasks",
		Short:         "hexatasks - personal task tracker",
		Long:          `hexatasks keeps a personal list of tasks with priorities, due dates and categories, and serves it over HTTP.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.LogLevel); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			env.cfg = cfg
			env.log = logger.Logger()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if env.log != nil {
				_ = env.log.Sync() // flush buffers al salir
			}
		},
	}

	// Add subcommands
	rootCmd.AddCommand(serveCmd(env))
	rootCmd.AddCommand(listCmd(env))
	rootCmd.AddCommand(addCmd(env))
	rootCmd.AddCommand(editCmd(env))
	rootCmd.AddCommand(toggleCmd(env, "done", "Mark a task as completed", true))
	rootCmd.AddCommand(toggleCmd(env, "undo", "Mark a task as pending again", false))
	rootCmd.AddCommand(rmCmd(env))
	rootCmd.AddCommand(statsCmd(env))

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
