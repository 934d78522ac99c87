// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package query runs the full path from a raw statement to a result: normalize,
// classify, rewrite soft deletes, execute, then audit. Write permission is an
// explicit argument of every call; the service holds no session state.
package query

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"askdb/cli/internal/dialect"
	apperrors "askdb/cli/internal/errors"
	"askdb/cli/internal/history"
	"askdb/cli/internal/sqlexec"
	"askdb/cli/internal/sqlguard"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*)?$`)

// Executor runs a vetted statement. *sqlexec.Executor implements it.
type Executor interface {
	Execute(ctx context.Context, stmt string, read bool) sqlexec.Result
	Dialect() dialect.Dialect
}

// Translator turns a question into SQL text. *translator.Client implements it.
type Translator interface {
	Translate(ctx context.Context, question, schemaText, dialectName string) (string, error)
}

// Describer renders the schema for translation prompts. *schema.Inspector implements it.
type Describer interface {
	Describe(ctx context.Context) (string, error)
}

// Recorder persists audit entries. *history.Log implements it.
type Recorder interface {
	Append(e history.Entry) error
}

// Options wires the optional collaborators of a Service.
type Options struct {
	Policy      sqlguard.SoftDeletePolicy
	DialectName string
	Source      string
	Recorder    Recorder
	Translator  Translator
	Schema      Describer
	Logger      *slog.Logger
}

// Service is the query pipeline for one database connection.
type Service struct {
	exec        Executor
	guard       *sqlguard.Guard
	dialectName string
	source      string
	recorder    Recorder
	translator  Translator
	schema      Describer
	log         *slog.Logger
}

// NewService creates a pipeline over exec.
func NewService(exec Executor, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dialectName := opts.DialectName
	if dialectName == "" {
		dialectName = exec.Dialect().String()
	}
	return &Service{
		exec:        exec,
		guard:       sqlguard.New(exec.Dialect(), opts.Policy),
		dialectName: dialectName,
		source:      opts.Source,
		recorder:    opts.Recorder,
		translator:  opts.Translator,
		schema:      opts.Schema,
		log:         logger,
	}
}

// Outcome is everything known about one run.
type Outcome struct {
	ID       string
	Question string
	// Query holds the raw input and its normalized forms.
	Query          sqlguard.Query
	Statement      string
	Classification sqlguard.Classification
	Rewritten      bool
	Result         sqlexec.Result
	// Err is nil on success, otherwise an *errors.E whose message matches Result.Error.
	Err      error
	Duration time.Duration
}

// OK reports whether the statement ran successfully.
func (o Outcome) OK() bool { return o.Err == nil }

// Run pushes raw through the safety gate and, if allowed, executes it.
// Blocked statements never reach the database.
func (s *Service) Run(ctx context.Context, raw string, write bool) Outcome {
	return s.run(ctx, uuid.NewString(), "", raw, write)
}

// Ask translates question into SQL and runs the result with the given permission.
// A translation failure is reported as an Outcome with a translation error.
func (s *Service) Ask(ctx context.Context, question string, write bool) Outcome {
	id := uuid.NewString()
	if s.translator == nil {
		return s.fail(id, question, "", apperrors.New(apperrors.Translation, "no translation model is configured"))
	}

	var schemaText string
	if s.schema != nil {
		text, err := s.schema.Describe(ctx)
		if err != nil {
			s.log.Warn("schema unavailable for prompt", "request_id", id, "error", err)
		}
		schemaText = text
	}

	sqlText, err := s.translator.Translate(ctx, question, schemaText, s.dialectName)
	if err != nil {
		var e *apperrors.E
		if !stderrors.As(err, &e) {
			err = apperrors.Wrap(apperrors.Translation, "failed to generate SQL", err)
		}
		return s.fail(id, question, "", err)
	}
	return s.run(ctx, id, question, sqlText, write)
}

// Sample returns up to limit rows of table. The table must be a plain or
// schema-qualified identifier.
func (s *Service) Sample(ctx context.Context, table string, limit int) Outcome {
	if !identRe.MatchString(table) {
		return s.fail(uuid.NewString(), "", table,
			apperrors.New(apperrors.Execution, fmt.Sprintf("invalid table name %q", table)))
	}
	if limit <= 0 {
		limit = 5
	}
	return s.Run(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, limit), false)
}

func (s *Service) run(ctx context.Context, id, question, raw string, write bool) Outcome {
	start := time.Now()
	log := s.log.With("request_id", id)

	plan, err := s.guard.Prepare(raw, write)
	out := Outcome{
		ID:             id,
		Question:       question,
		Query:          plan.Query,
		Statement:      plan.Statement,
		Classification: plan.Classification,
		Rewritten:      plan.Rewritten,
	}
	if err != nil {
		out.Err = err
		out.Result = sqlexec.ErrorResult(Message(err))
		out.Duration = time.Since(start)
		log.Warn("statement refused",
			"classification", out.Classification.String(),
			"kind", string(apperrors.KindOf(err)),
			"write", write)
		s.record(out)
		return out
	}
	if plan.Rewritten {
		log.Info("delete rewritten to soft delete", "statement", plan.Statement)
	}

	out.Result = s.exec.Execute(ctx, plan.Statement, plan.Classification.IsRead())
	out.Duration = time.Since(start)
	if out.Result.Failed() {
		out.Err = apperrors.New(apperrors.Execution, out.Result.Error)
		log.Warn("statement failed",
			"classification", out.Classification.String(),
			"error", out.Result.Error,
			"duration", out.Duration)
	} else {
		log.Info("statement executed",
			"classification", out.Classification.String(),
			"result", string(out.Result.Kind),
			"rewritten", out.Rewritten,
			"duration", out.Duration)
		if out.Classification == sqlguard.SafeWrite {
			s.invalidateSchema()
		}
	}
	s.record(out)
	return out
}

// fail builds an Outcome for a request that never reached the gate.
func (s *Service) fail(id, question, raw string, err error) Outcome {
	out := Outcome{
		ID:       id,
		Question: question,
		Query:    sqlguard.NewQuery(raw),
		Err:      err,
		Result:   sqlexec.ErrorResult(Message(err)),
	}
	out.Statement = out.Query.Canonical
	s.log.Warn("request failed", "request_id", id, "kind", string(apperrors.KindOf(err)), "error", err)
	s.record(out)
	return out
}

// invalidateSchema drops cached schema after statements that may have changed it.
func (s *Service) invalidateSchema() {
	if c, ok := s.schema.(interface{ ClearCache() }); ok {
		c.ClearCache()
	}
}

func (s *Service) record(o Outcome) {
	if s.recorder == nil {
		return
	}
	e := history.Entry{
		ID:             o.ID,
		Time:           time.Now().UTC(),
		Source:         s.source,
		Question:       o.Question,
		Input:          o.Query.Raw,
		Statement:      o.Statement,
		Classification: o.Classification.String(),
		Rewritten:      o.Rewritten,
		Result:         string(o.Result.Kind),
		RowsAffected:   o.Result.RowsAffected,
		Rows:           len(o.Result.Rows),
		DurationMS:     o.Duration.Milliseconds(),
	}
	if o.Err != nil {
		e.ErrorKind = string(apperrors.KindOf(o.Err))
		e.Error = Message(o.Err)
	}
	if err := s.recorder.Append(e); err != nil {
		s.log.Warn("failed to write history", "error", err)
	}
}

// Message returns the human-facing text of err: the Message of an *errors.E
// (with its cause when present), or err.Error() otherwise.
func Message(err error) string {
	var e *apperrors.E
	if stderrors.As(err, &e) {
		if e.Err != nil {
			return strings.TrimSpace(e.Message + ": " + e.Err.Error())
		}
		return e.Message
	}
	return err.Error()
}
