package main

import (
	"github.com/spf13/cobra"

	"transparencia-rpa/internal/browser"
	"transparencia-rpa/internal/config"
	"transparencia-rpa/internal/lookup"
	"transparencia-rpa/internal/observability"
	"transparencia-rpa/internal/portal"
	"transparencia-rpa/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lookup HTTP server",
	Long:  `Start an HTTP server exposing the synchronous CPF lookup, health and metrics endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
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

	srv := server.New(server.Config{Port: cfg.Port}, svc, mgr, log)
	return srv.Start()
}
