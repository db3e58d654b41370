package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/diriredouane/AI-Recipe-Automator/internal/config"
	"github.com/diriredouane/AI-Recipe-Automator/internal/server"
)

var tokenCommand = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for bridge callbacks",
	Long: `Prints a signed token the delivery bridge can present on POST /callback
when the server runs with a webhook secret. Lifetime defaults to 24h and can
be overridden with JWT_EXPIRATION_HOURS.`,
	RunE: runTokenCmd,
}

var tokenConfigPath string

func init() {
	tokenCommand.Flags().StringVar(&tokenConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	rootCmd.AddCommand(tokenCommand)
}

func runTokenCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(tokenConfigPath)
	if err != nil {
		return err
	}

	jwtCfg, err := config.NewJWTConfig(cfg.WebhookSecret)
	if err != nil {
		return err
	}

	token, err := server.IssueToken(jwtCfg.Secret, time.Duration(jwtCfg.ExpirationHours)*time.Hour)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	fmt.Println(token)
	return nil
}
