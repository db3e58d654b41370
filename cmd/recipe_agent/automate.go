package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/diriredouane/AI-Recipe-Automator/internal/scheduler"
)

var automateCommand = &cobra.Command{
	Use:   "automate",
	Short: "Run automation cycles over all configured sites",
	Long: `Scans every active account for pending rows and processes at most one
per cycle, honoring daily quotas and publication velocity. By default runs a
single cycle and exits; --interval keeps cycling until interrupted.`,
	RunE: runAutomateCmd,
}

var (
	automateConfigPath string
	automateInterval   time.Duration
	automateVerbose    bool
)

func init() {
	automateCommand.Flags().StringVar(&automateConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	automateCommand.Flags().DurationVar(&automateInterval, "interval", 0, "Keep cycling at this interval (e.g. 15m); 0 runs one cycle")
	automateCommand.Flags().BoolVarP(&automateVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(automateCommand)
}

func runAutomateCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(automateConfigPath)
	if err != nil {
		return err
	}
	cfg.Verbose = cfg.Verbose || automateVerbose

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	processor, cleanup, err := buildProcessor(ctx, cfg, store)
	if err != nil {
		return err
	}
	defer cleanup()

	sched := scheduler.New(store, processor)
	if automateInterval > 0 {
		return sched.Run(ctx, automateInterval)
	}

	result, err := sched.RunCycle(ctx)
	if err != nil {
		return err
	}
	if result.Processed {
		fmt.Printf("processed row %d of %s\n", result.RowNumber, result.SheetName)
	} else {
		fmt.Println("no eligible rows this cycle")
	}
	return nil
}
