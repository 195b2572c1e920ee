package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	hunt := newHuntCmd(&configPath)
	rootCmd := &cobra.Command{
		Use:   "namehunt",
		Short: "Generate pronounceable names and find the ones still free as domains",
		Long: `namehunt trains a character-level Markov chain on a word list, generates
short invented words from it and checks each one against the WHOIS registry.
Names that are still unregistered are printed as they are found.

Running namehunt without a command starts a hunt.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			loadDotEnv()
		},
		RunE: hunt.RunE,
	}
	rootCmd.Flags().AddFlagSet(hunt.Flags())
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.json", "Path to the JSON config file")

	rootCmd.AddCommand(
		hunt,
		newTrainCmd(&configPath),
		newModelsCmd(&configPath),
		newSampleCmd(&configPath),
		newExportCmd(&configPath),
		newImportCmd(&configPath),
		newRemoveCmd(&configPath),
		newFoundCmd(&configPath),
	)
	return rootCmd
}
