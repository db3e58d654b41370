package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var processCommand = &cobra.Command{
	Use:   "process",
	Short: "Process one data-sheet row end-to-end",
	Long: `Runs the flow selected by the row's trigger cell: full publish (OK/AUTO),
draft creation (DRAFT), pinning (PIN/PIN_LINK), link cleanup (UPDATE_ARTICLE)
or recipe-card retrofit (ADD_CARD).`,
	RunE: runProcessCmd,
}

var (
	processConfigPath string
	processSheet      string
	processRow        int
	processVerbose    bool
)

func init() {
	processCommand.Flags().StringVar(&processConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	processCommand.Flags().StringVarP(&processSheet, "sheet", "s", "", "Data sheet name, e.g. Data-MySite")
	processCommand.Flags().IntVarP(&processRow, "row", "r", 0, "1-indexed row number to process")
	processCommand.Flags().BoolVarP(&processVerbose, "verbose", "v", false, "Print detailed debug information")
	_ = processCommand.MarkFlagRequired("sheet")
	_ = processCommand.MarkFlagRequired("row")

	rootCmd.AddCommand(processCommand)
}

func runProcessCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(processConfigPath)
	if err != nil {
		return err
	}
	cfg.Verbose = cfg.Verbose || processVerbose

	if processRow < 2 {
		return fmt.Errorf("--row must be 2 or greater (row 1 is the header)")
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	processor, cleanup, err := buildProcessor(ctx, cfg, store)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := processor.ProcessRow(ctx, processSheet, processRow); err != nil {
		return fmt.Errorf("row %d of %s failed: %w", processRow, processSheet, err)
	}
	fmt.Printf("row %d of %s processed\n", processRow, processSheet)
	return nil
}
