// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"askdb/cli/internal/query"
	"askdb/cli/internal/session"
)

// shellCmd runs an interactive session.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session",
	Long: `The shell command starts an interactive session. Type a question to have it
translated into SQL, or use \sql to run a statement directly.

The session starts read-only. \login authenticates as administrator and
\write on enables write mode until \write off, \logout or the end of the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openConn(cmd.Context(), "shell")
		if err != nil {
			return err
		}
		defer conn.Close()

		sh := &shell{conn: conn, sess: session.New(), auth: newAuthenticator()}
		pterm.DefaultHeader.WithFullWidth(false).Printfln("askdb %s, connected to %s", Version, conn.exec.DBType())
		if conn.translator == nil {
			pterm.Warning.Println("No model API key configured: input is run as SQL. Use 'askdb connect --llm-key' to enable questions.")
		}
		pterm.Println(`Type \help for commands.`)
		return sh.loop(cmd.Context())
	},
}

type shell struct {
	conn *dbConn
	sess *session.Session
	auth session.Verifier
}

func (sh *shell) prompt() string {
	switch {
	case sh.sess.WritePermission():
		return "askdb[write]> "
	case sh.sess.IsAdmin():
		return "askdb[admin]> "
	default:
		return "askdb> "
	}
}

func (sh *shell) loop(ctx context.Context) error {
	p := promptIn()
	for {
		line, err := p.ReadLine(sh.prompt())
		if errors.Is(err, io.EOF) {
			pterm.Println()
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if quit := sh.handle(ctx, line); quit {
			return nil
		}
	}
}

// handle runs one line of input and reports whether the shell should exit.
func (sh *shell) handle(ctx context.Context, line string) bool {
	if !strings.HasPrefix(line, `\`) {
		if sh.conn.translator == nil {
			sh.show(sh.conn.service.Run(ctx, line, sh.sess.WritePermission()))
		} else {
			sh.show(askWithSpinner(ctx, sh.conn.service, line, sh.sess.WritePermission()))
		}
		return false
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch name {
	case `\q`, `\quit`, `\exit`:
		sh.sess.Logout()
		return true
	case `\help`, `\?`:
		printShellHelp()
	case `\login`:
		sh.login()
	case `\logout`:
		sh.sess.Logout()
		pterm.Info.Println("Logged out, write mode is off")
	case `\write`:
		sh.write(rest)
	case `\sql`:
		if rest == "" {
			pterm.Warning.Println(`Usage: \sql <statement>`)
			break
		}
		sh.show(sh.conn.service.Run(ctx, rest, sh.sess.WritePermission()))
	case `\tables`:
		tables, err := sh.conn.inspector.Tables(ctx)
		if err != nil {
			pterm.Error.Println(err)
			break
		}
		renderTables(tables)
	case `\sample`:
		table, n, _ := strings.Cut(rest, " ")
		limit, _ := strconv.Atoi(strings.TrimSpace(n))
		sh.show(sh.conn.service.Sample(ctx, table, limit))
	case `\history`:
		sh.history()
	default:
		pterm.Warning.Printfln("Unknown command %s, type \\help", name)
	}
	return false
}

func (sh *shell) login() {
	p := promptIn()
	user, err := p.ReadLine("Admin user: ")
	if err != nil {
		return
	}
	pass, err := p.ReadSecret("Admin password: ")
	if err != nil {
		return
	}
	if err := sh.sess.Login(sh.auth, user, pass); err != nil {
		pterm.Error.Println(query.Message(err))
		return
	}
	pterm.Success.Printfln("Logged in as %s. Write mode is still off; use \\write on", user)
}

func (sh *shell) write(arg string) {
	switch strings.ToLower(arg) {
	case "on":
		if err := sh.sess.SetWrite(true); err != nil {
			pterm.Error.Println(query.Message(err))
			return
		}
		pterm.Warning.Println("Write mode ON: INSERT, UPDATE and soft deletes will run")
	case "off":
		_ = sh.sess.SetWrite(false)
		pterm.Info.Println("Write mode off")
	case "":
		state := "off"
		if sh.sess.WritePermission() {
			state = "on"
		}
		pterm.Info.Printfln("Write mode is %s", state)
	default:
		pterm.Warning.Println(`Usage: \write on|off`)
	}
}

func (sh *shell) show(out query.Outcome) {
	_ = renderOutcome(os.Stdout, out, outputFormat())
	ex := session.Exchange{Question: out.Question, Statement: out.Statement, Outcome: string(out.Result.Kind)}
	if out.Err != nil {
		ex.Error = query.Message(out.Err)
	}
	sh.sess.Record(ex)
}

func (sh *shell) history() {
	tr := sh.sess.Transcript()
	if len(tr) == 0 {
		pterm.Info.Println("Nothing run in this session yet")
		return
	}
	data := pterm.TableData{{"Time", "Question", "Statement", "Outcome"}}
	for _, ex := range tr {
		outcome := ex.Outcome
		if ex.Error != "" {
			outcome = truncate(ex.Error, 60)
		}
		data = append(data, []string{ex.Time.Format("15:04:05"), truncate(ex.Question, 40), truncate(ex.Statement, 60), outcome})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printShellHelp() {
	_ = pterm.DefaultTable.WithData(pterm.TableData{
		{`<question>`, "Translate into SQL and run it"},
		{`\sql <statement>`, "Run a SQL statement"},
		{`\tables`, "List tables and columns"},
		{`\sample <table> [n]`, "Show the first n rows of a table (default 5)"},
		{`\login`, "Authenticate as administrator"},
		{`\write on|off`, "Enable or disable write mode (administrator only)"},
		{`\logout`, "Drop administrator rights and write mode"},
		{`\history`, "Show this session's statements"},
		{`\quit`, "Leave the shell"},
	}).Render()
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output format: table, json or csv")
}
