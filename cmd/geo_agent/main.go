// Package main provides the entry point for the GEO visibility analyzer CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "geo_agent",
	Short: "AI visibility (GEO) analyzer",
	Long: `geo_agent measures how visible a company is to generative AI assistants.

It scrapes a website, identifies the brand, ranks competitors, estimates per-platform
visibility, probes Gemini live and produces scored recommendations, either once from
the command line or through a REST API.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
