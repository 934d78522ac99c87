// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package history keeps an append-only JSON-lines audit log of every statement
// askdb was asked to run, including the ones the safety gate refused.
package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"askdb/cli/internal/xdg"
)

// FileName is the log file inside the askdb state directory.
const FileName = "history.jsonl"

// Entry is one audited statement.
type Entry struct {
	ID             string    `json:"id"`
	Time           time.Time `json:"time"`
	Source         string    `json:"source,omitempty"`
	Question       string    `json:"question,omitempty"`
	Input          string    `json:"input"`
	Statement      string    `json:"statement,omitempty"`
	Classification string    `json:"classification"`
	Rewritten      bool      `json:"rewritten,omitempty"`
	Result         string    `json:"result"`
	RowsAffected   *int64    `json:"rows_affected,omitempty"`
	Rows           int       `json:"rows,omitempty"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	Error          string    `json:"error,omitempty"`
	DurationMS     int64     `json:"duration_ms"`
}

// Log appends entries to a file. It is safe for concurrent use within one process.
type Log struct {
	path string
	mu   sync.Mutex
}

// Open returns a Log writing to path. The file is created on first Append.
func Open(path string) *Log {
	return &Log{path: path}
}

// OpenDefault returns the Log in the XDG state directory.
func OpenDefault() (*Log, error) {
	dir, err := xdg.StateDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(dir, FileName)), nil
}

// Path is the file backing the log.
func (l *Log) Path() string { return l.path }

// Append writes e as one line.
func (l *Log) Append(e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	b = append(b, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Recent returns up to n of the newest entries, oldest first. Lines that do
// not decode are skipped. A missing file yields no entries.
func (l *Log) Recent(n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	ring := make([]Entry, 0, n)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		if len(ring) == n {
			copy(ring, ring[1:])
			ring = ring[:n-1]
		}
		ring = append(ring, e)
	}
	return ring, sc.Err()
}
