// Package main provides the entry point for the Portal da
// Transparência retirement-status RPA service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "transparencia_rpa",
	Short: "Portal da Transparência retirement-status lookup service",
	Long:  "Looks up a public servant's employment bonds on the Portal da Transparência by CPF and classifies the retirement record against the December 2003 cutoff.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
