// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package api exposes the query pipeline over HTTP for `askdb serve`.
//
// Every client works inside a session created with POST /api/sessions. A new
// session can only read; an administrator logs in on the session and turns
// write mode on explicitly. The session's write permission is passed to the
// pipeline on every request and never stored anywhere else.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"askdb/cli/internal/query"
	"askdb/cli/internal/session"
)

// Querier runs statements and questions. *query.Service implements it.
type Querier interface {
	Run(ctx context.Context, raw string, write bool) query.Outcome
	Ask(ctx context.Context, question string, write bool) query.Outcome
	Sample(ctx context.Context, table string, limit int) query.Outcome
}

// SchemaSource lists tables and columns. *schema.Inspector implements it.
type SchemaSource interface {
	Preview(ctx context.Context) (map[string][]string, error)
}

// Deps are the collaborators of a Server.
type Deps struct {
	Queries  Querier
	Schema   SchemaSource
	Sessions *session.Store
	Verifier session.Verifier
	// DBType is reported by the health endpoint.
	DBType string
	Logger *slog.Logger
}

// Server is the HTTP surface.
type Server struct {
	router   *gin.Engine
	queries  Querier
	schema   SchemaSource
	sessions *session.Store
	verifier session.Verifier
	dbType   string
	log      *slog.Logger
}

// NewServer creates a Server and registers its routes.
func NewServer(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sessions := d.Sessions
	if sessions == nil {
		sessions = session.NewStore(0)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	s := &Server{
		router:   r,
		queries:  d.Queries,
		schema:   d.Schema,
		sessions: sessions,
		verifier: d.Verifier,
		dbType:   d.DBType,
		log:      logger,
	}
	s.registerRoutes()
	return s
}

// Engine returns the gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. Idle sessions are swept once a minute.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("api shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) sweep(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.sessions.Sweep(now); n > 0 {
				s.log.Debug("expired sessions removed", "count", n)
			}
		}
	}
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
