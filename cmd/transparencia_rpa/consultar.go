package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"transparencia-rpa/internal/browser"
	"transparencia-rpa/internal/config"
	"transparencia-rpa/internal/lookup"
	"transparencia-rpa/internal/observability"
	"transparencia-rpa/internal/portal"
)

var consultarCPF string

var consultarCmd = &cobra.Command{
	Use:   "consultar",
	Short: "Run one CPF lookup and print the classification",
	Long:  "Runs a single lookup against the portal without starting the HTTP server and prints the JSON outcome.",
	RunE:  runConsultar,
}

func init() {
	consultarCmd.Flags().StringVar(&consultarCPF, "cpf", "", "CPF to look up, with or without punctuation (required)")
	if err := consultarCmd.MarkFlagRequired("cpf"); err != nil {
		panic(fmt.Sprintf("failed to mark cpf flag as required: %v", err))
	}
	rootCmd.AddCommand(consultarCmd)
}

func runConsultar(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := observability.NewLogger(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	mgr := browser.NewManager(browser.Config{
		ProxyServer:   cfg.ProxyServer,
		ProxyUsername: cfg.ProxyUsername,
		ProxyPassword: cfg.ProxyPassword,
		ChromePath:    cfg.ChromePath,
	}, log)
	defer mgr.Shutdown()

	nav := portal.NewNavigator(cfg.NavTimeout, log)
	svc := lookup.NewService(lookup.NewBrowserSessions(mgr), nav, log)

	result, err := svc.Query(context.Background(), consultarCPF)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	_, _ = fmt.Fprintln(os.Stdout, string(out))
	return nil
}
