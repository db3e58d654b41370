package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diriredouane/AI-Recipe-Automator/internal/bridge"
)

var boardsCommand = &cobra.Command{
	Use:   "sync-boards",
	Short: "Request a board-catalog refresh for every active site",
	Long: `Asks each active site's delivery bridge to enumerate its Pinterest
boards. The bridge answers asynchronously on the callback server, which
rewrites that site's rows in the board catalog.`,
	RunE: runBoardsCmd,
}

var boardsConfigPath string

func init() {
	boardsCommand.Flags().StringVar(&boardsConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	rootCmd.AddCommand(boardsCommand)
}

func runBoardsCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(boardsConfigPath)
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	accts, err := store.Accounts(ctx)
	if err != nil {
		return err
	}

	br := bridge.New()
	requested := 0
	for _, acct := range accts {
		if !acct.IsActive() {
			continue
		}
		if acct.ListWebhookURL == "" {
			fmt.Printf("site %s has no board-list webhook, skipping\n", acct.SiteName)
			continue
		}
		if err := br.RequestBoardList(ctx, acct.ListWebhookURL, acct.SiteName); err != nil {
			fmt.Printf("site %s board-list request failed: %v\n", acct.SiteName, err)
			continue
		}
		requested++
	}
	fmt.Printf("requested board lists for %d site(s)\n", requested)
	return nil
}
