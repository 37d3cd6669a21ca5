package main

import (
	"github.com/spf13/cobra"

	"github.com/hannes/pii-extract/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP extraction service",
	Long: `Run the HTTP extraction service.

Endpoints:
  GET  /health            - service health
  POST /v1/extract        - extract PII from posted text
  POST /v1/redact         - redact posted text with supplied findings
  GET  /api/model/info    - model manager state
  POST /api/model/reload  - hot reload the model

Examples:
  pii-extract serve
  LISTEN_ADDR=:9090 pii-extract serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("listen")
		if addr != "" {
			cfg.Server.ListenAddr = addr
		}

		srv, err := server.NewServer(cfg)
		if err != nil {
			reportError(err)
			return err
		}
		defer srv.Close()

		srv.StartWithErrorHandling()
		return nil
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "Listen address override (e.g. :9090)")
	rootCmd.AddCommand(serveCmd)
}
