// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"askdb/cli/internal/api"
	"askdb/cli/internal/session"
)

var serveAddr string

// serveCmd exposes the query pipeline over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `The serve command starts an HTTP API over the configured database.

Clients create a session (POST /api/sessions) and send statements or questions
to POST /api/sessions/{id}/query. Sessions start read-only; an administrator
logs in on the session and enables write mode with PUT /api/sessions/{id}/write.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		conn, err := openConn(ctx, "api")
		if err != nil {
			return err
		}
		defer conn.Close()

		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		srv := api.NewServer(api.Deps{
			Queries:  conn.service,
			Schema:   conn.inspector,
			Sessions: session.NewStore(cfg.Server.SessionTTL),
			Verifier: newAuthenticator(),
			DBType:   string(conn.exec.DBType()),
			Logger:   slog.Default(),
		})
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
}
