// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_AppendAndRecent(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), FileName))
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(Entry{
			ID:             fmt.Sprintf("q-%d", i),
			Time:           base.Add(time.Duration(i) * time.Minute),
			Input:          "SELECT 1",
			Classification: "safe_read",
			Result:         "rows",
			Rows:           1,
		}))
	}

	got, err := l.Recent(3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "q-2", got[0].ID)
	assert.Equal(t, "q-4", got[2].ID)
	assert.True(t, got[2].Time.Equal(base.Add(4*time.Minute)))

	all, err := l.Recent(100)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	info, err := os.Stat(l.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLog_RecentMissingFile(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), "missing.jsonl"))
	got, err := l.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = l.Recent(0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLog_SkipsCorruptLines(t *testing.T) {
	p := filepath.Join(t.TempDir(), FileName)
	content := `{"id":"a","input":"SELECT 1","classification":"safe_read","result":"rows","duration_ms":1}
not json at all
{"id":"b","input":"DROP TABLE t","classification":"always_blocked","result":"error","error_kind":"blocked_statement","duration_ms":0}
`
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	got, err := Open(p).Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "blocked_statement", got[1].ErrorKind)
}

func TestLog_ConcurrentAppend(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), FileName))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, l.Append(Entry{ID: fmt.Sprint(i), Input: "SELECT 1", Result: "rows"}))
		}(i)
	}
	wg.Wait()

	got, err := l.Recent(50)
	require.NoError(t, err)
	assert.Len(t, got, 20)
}

func TestOpenDefault(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	l, err := OpenDefault()
	require.NoError(t, err)
	assert.Equal(t, FileName, filepath.Base(l.Path()))
}
