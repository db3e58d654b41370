// Package main provides the entry point for the recipe automation agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recipe_agent",
	Short: "Recipe content automation agent",
	Long:  "Recipe agent turns spreadsheet rows into published recipe articles: LLM-generated briefs and articles, templated pin images, recipe cards and delivery-bridge pin handoff.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
