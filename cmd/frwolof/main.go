package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/galsenai/french-wolof-translator/internal/cli"
	"github.com/galsenai/french-wolof-translator/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create commands
	rootCmd := cli.CreateRootCommand(flags)
	trainCmd := cli.CreateTrainCommand(flags)
	testCmd := cli.CreateTestCommand(flags)
	quickstartCmd := cli.CreateQuickstartCommand(flags)
	rootCmd.AddCommand(trainCmd, testCmd, quickstartCmd)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run functions
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context(), args, flags)
	}
	trainCmd.RunE = func(cmd *cobra.Command, args []string) error {
		proc, err := processor.NewProcessor(flags)
		if err != nil {
			return err
		}
		return proc.RunTraining(cmd.Context())
	}
	testCmd.RunE = func(cmd *cobra.Command, args []string) error {
		proc, err := processor.NewProcessor(flags)
		if err != nil {
			return err
		}
		return proc.RunSmokeTest(cmd.Context(), proc.ResolveCheckpoint(nil))
	}
	quickstartCmd.RunE = func(cmd *cobra.Command, args []string) error {
		proc, err := processor.NewProcessor(flags)
		if err != nil {
			return err
		}
		return proc.RunQuickstart(cmd.Context(), proc.ResolveCheckpoint(nil))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, args []string, flags *cli.Flags) error {
	proc, err := processor.NewProcessor(flags)
	if err != nil {
		return err
	}

	// Handle --list-models flag
	if flags.ListModels {
		return proc.ListModels(ctx)
	}

	checkpoint := proc.ResolveCheckpoint(args)

	// Handle batch processing
	if flags.BatchFile != "" {
		return proc.ProcessBatch(ctx, checkpoint)
	}

	return proc.RunTranslate(ctx, checkpoint)
}
