package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/csvtrans/internal"
	"codeberg.org/snonux/csvtrans/internal/cli"
	"codeberg.org/snonux/csvtrans/internal/logging"
	"codeberg.org/snonux/csvtrans/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context(), flags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Execute command
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if cli.IsUsageError(err) {
			fmt.Fprint(os.Stderr, rootCmd.UsageString())
		}
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, flags *cli.Flags) error {
	cfg, err := cli.LoadConfig(flags)
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, true, internal.GenerateRunID(cfg.InputPath))
	if err != nil {
		return &cli.UsageError{Err: err}
	}

	proc := processor.NewProcessor(cfg, processor.Options{
		Stdout: os.Stdout,
		Logger: logger,
	})
	if _, err := proc.Run(ctx); err != nil {
		return err
	}

	fmt.Printf("\nDone!\n")
	return nil
}
