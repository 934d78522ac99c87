// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"askdb/cli/internal/dialect"
	"askdb/cli/internal/dsn"
	"askdb/cli/internal/history"
	"askdb/cli/internal/keychain"
	"askdb/cli/internal/query"
	"askdb/cli/internal/schema"
	"askdb/cli/internal/session"
	"askdb/cli/internal/sqlexec"
	"askdb/cli/internal/translator"
)

// Environment variables read by the CLI.
const (
	envDSN       = "ASKDB_DSN"
	envLLMAPIKey = "ASKDB_LLM_API_KEY"
)

var errNoDatabase = errors.New("no database connection configured; run 'askdb connect'")

// resolveDSN returns the connection string from ASKDB_DSN, DATABASE_URL or the
// keychain, and a short description of where it came from.
func resolveDSN() (string, string, error) {
	if v := strings.TrimSpace(os.Getenv(envDSN)); v != "" {
		return v, envDSN + " environment variable", nil
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v, "DATABASE_URL environment variable", nil
	}
	km, err := keychain.GetManager()
	if err != nil {
		return "", "", err
	}
	v, err := km.LoadDBDSN()
	if err != nil || strings.TrimSpace(v) == "" {
		return "", "", errNoDatabase
	}
	return v, "OS keychain", nil
}

// resolveLLMKey returns the model API key from the environment or the keychain.
func resolveLLMKey() string {
	if v := strings.TrimSpace(os.Getenv(envLLMAPIKey)); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("GROQ_API_KEY")); v != "" {
		return v
	}
	km, err := keychain.GetManager()
	if err != nil {
		return ""
	}
	v, _ := km.LoadLLMAPIKey()
	return v
}

// dbConn bundles everything a command needs to talk to the database.
type dbConn struct {
	exec       *sqlexec.Executor
	inspector  *schema.Inspector
	translator *translator.Client
	service    *query.Service
}

func (r *dbConn) Close() { r.exec.Close() }

// openConn connects to the configured database and wires the query pipeline.
func openConn(ctx context.Context, source string) (*dbConn, error) {
	rawDSN, _, err := resolveDSN()
	if err != nil {
		return nil, err
	}
	exec, err := sqlexec.Open(ctx, rawDSN)
	if err != nil {
		return nil, err
	}

	rt := &dbConn{exec: exec, inspector: schema.NewInspector(exec)}
	opts := query.Options{
		Policy:      cfg.SoftDelete,
		DialectName: string(exec.DBType()),
		Source:      source,
		Schema:      rt.inspector,
		Logger:      slog.Default(),
	}
	if key := resolveLLMKey(); key != "" {
		rt.translator = translator.New(translator.Config{
			Endpoint:    cfg.LLM.Endpoint,
			Model:       cfg.LLM.Model,
			APIKey:      key,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		})
		opts.Translator = rt.translator
	}
	if cfg.History.Enabled {
		if log, err := history.OpenDefault(); err == nil {
			opts.Recorder = log
		} else {
			slog.Warn("history disabled", "error", err)
		}
	}
	rt.service = query.NewService(exec, opts)
	return rt, nil
}

// newAuthenticator checks admin credentials against the environment and the keychain.
func newAuthenticator() *session.Authenticator {
	km, err := keychain.GetManager()
	if err != nil {
		slog.Debug("keychain unavailable for admin login", "error", err)
		return session.NewAuthenticator(nil)
	}
	return session.NewAuthenticator(km)
}

// adminSession prompts for administrator credentials and returns a session
// with write mode enabled.
func adminSession() (*session.Session, error) {
	p := promptIn()
	user, err := p.ReadLine("Admin user: ")
	if err != nil {
		return nil, err
	}
	pass, err := p.ReadSecret("Admin password: ")
	if err != nil {
		return nil, err
	}
	s := session.New()
	if err := s.Login(newAuthenticator(), user, pass); err != nil {
		return nil, err
	}
	if err := s.SetWrite(true); err != nil {
		return nil, err
	}
	pterm.Success.Println("Write mode enabled for this command")
	return s, nil
}

// dialectFor names the boolean dialect used for soft deletes on t.
func dialectFor(t dsn.DBType) string {
	return dialect.Resolve(string(t)).String()
}
