package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diriredouane/AI-Recipe-Automator/internal/server"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Run the delivery-bridge callback server",
	Long: `Hosts POST /callback for bridge confirmations (pin published, board
detail, board lists) and GET /health. Callback writes to the spreadsheet are
serialized under a single lock.`,
	RunE: runServeCmd,
}

var (
	serveConfigPath string
	servePort       int
)

func init() {
	serveCommand.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCommand.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")

	rootCmd.AddCommand(serveCommand)
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("callback server listening on :%d\n", cfg.Port)
	return server.New(store, cfg.WebhookSecret).ListenAndServe(ctx, cfg.Port)
}
