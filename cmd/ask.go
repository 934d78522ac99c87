// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "askdb/cli/internal/errors"
	"askdb/cli/internal/httperrors"
	"askdb/cli/internal/query"
	"askdb/cli/internal/translator"
)

// askCmd translates a question into SQL and runs it through the safety gate.
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question in plain English",
	Long: `The ask command sends the question and the database schema to the configured
language model, then runs the generated SQL through the same safety gate as
'askdb query'. The generated statement is shown before the result.`,
	Example: `  askdb ask "how many orders were placed last week?"
  askdb ask --write "deactivate the user with id 5"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validFormat(outputFormat()); err != nil {
			return err
		}
		question := strings.Join(args, " ")
		return runOneShot(cmd, "ask", func(svc *query.Service, write bool) query.Outcome {
			return askWithSpinner(cmd.Context(), svc, question, write)
		})
	},
}

// askWithSpinner runs svc.Ask with a spinner and explains network failures.
func askWithSpinner(ctx context.Context, svc *query.Service, question string, write bool) query.Outcome {
	stop := startInlineSpinner(os.Stdout, "generating SQL", spinnerFrames, 120*time.Millisecond)
	out := svc.Ask(ctx, question, write)
	stop()
	if apperrors.IsKind(out.Err, apperrors.Translation) && isNetworkFailure(out.Err) {
		_ = httperrors.FormatNetworkError(out.Err, httperrors.ExtractHostFromURL(cfg.LLM.Endpoint), "generating SQL")
	}
	return out
}

func isNetworkFailure(err error) bool {
	var se *translator.StatusError
	return errors.Is(err, translator.ErrUnavailable) || errors.As(err, &se)
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVarP(&queryWrite, "write", "w", false, "Authenticate as administrator and allow writes")
	askCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output format: table, json or csv")
}
