// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlguard

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain statement",
			in:   "SELECT * FROM orders",
			want: "SELECT * FROM orders",
		},
		{
			name: "surrounding whitespace",
			in:   "  \n\tSELECT 1 \n",
			want: "SELECT 1",
		},
		{
			name: "fence with sql tag",
			in:   "```sql\nUPDATE users SET name='x' WHERE id=1\n```",
			want: "UPDATE users SET name='x' WHERE id=1",
		},
		{
			name: "fence without tag",
			in:   "```\nSELECT 1\n```",
			want: "SELECT 1",
		},
		{
			name: "upper case tag",
			in:   "```SQL\nSELECT 1\n```",
			want: "SELECT 1",
		},
		{
			name: "postgresql tag",
			in:   "```postgresql\nSELECT now()\n```",
			want: "SELECT now()",
		},
		{
			name: "single line fence",
			in:   "```sql SELECT 1```",
			want: "SELECT 1",
		},
		{
			name: "statement keyword right after fence is kept",
			in:   "```SELECT 1```",
			want: "SELECT 1",
		},
		{
			name: "nested fences",
			in:   "```sql\n```sql\nSELECT 1\n```\n```",
			want: "SELECT 1",
		},
		{
			name: "multi line body untouched",
			in:   "```sql\nSELECT id,\n  name\nFROM users\n```",
			want: "SELECT id,\n  name\nFROM users",
		},
		{
			name: "unknown tag on its own line",
			in:   "```sqlx\nSELECT 1\n```",
			want: "SELECT 1",
		},
		{
			name: "non sql tag on its own line",
			in:   "```python\nSELECT 1\n```",
			want: "SELECT 1",
		},
		{
			name: "crlf after tag",
			in:   "```pgsql17\r\nSELECT 1\r\n```",
			want: "SELECT 1",
		},
		{
			name: "unknown tag on the statement line is kept",
			in:   "```python SELECT 1```",
			want: "python SELECT 1",
		},
		{
			name: "statement keyword on its own line is not a tag",
			in:   "```DROP\nTABLE users\n```",
			want: "DROP\nTABLE users",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "fence only",
			in:   "```sql\n```",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := Normalize(got); again != got {
				t.Errorf("Normalize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalize_FencePropertyOverStatements(t *testing.T) {
	statements := []string{
		"SELECT * FROM orders",
		"DELETE FROM users WHERE id = 5",
		"UPDATE users SET name='x' WHERE id=1",
		"WITH t AS (SELECT 1) SELECT * FROM t",
		"INSERT INTO t (a) VALUES ('```')",
	}
	wrappers := []struct {
		prefix string
		suffix string
	}{
		{"```", "```"},
		{"```\n", "\n```"},
		{"```sql\n", "\n```"},
		{"  ```mysql\n", "\n```  "},
		{"```sqlite ", " ```"},
	}

	for _, stmt := range statements {
		for _, w := range wrappers {
			in := w.prefix + stmt + w.suffix
			if got := Normalize(in); got != stmt {
				t.Errorf("Normalize(%q) = %q, want %q", in, got, stmt)
			}
		}
	}
}

func TestNewQuery(t *testing.T) {
	q := NewQuery("```sql\nselect * from Users\n```")
	if q.Canonical != "select * from Users" {
		t.Errorf("Canonical = %q", q.Canonical)
	}
	if q.Scan != "SELECT * FROM USERS" {
		t.Errorf("Scan = %q", q.Scan)
	}
	if q.Empty() {
		t.Error("Empty() = true for a statement")
	}
	if !NewQuery(" ``` ").Empty() {
		t.Error("Empty() = false for a bare fence")
	}
}

func TestQuery_Stacked(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{"SELECT 1", false},
		{"SELECT 1;", false},
		{"SELECT 1 ;;  ", false},
		{"SELECT 1; -- trailing note", false},
		{"SELECT 1; /* done */", false},
		{"SELECT 'a;b' FROM t", false},
		{`SELECT "odd;name" FROM t`, false},
		{"SELECT `odd;name` FROM t", false},
		{"SELECT 'it''s; fine'", false},
		{"SELECT 1 -- ; not a separator\nFROM t", false},
		{"SELECT /* ; */ 1", false},
		{"SELECT 1; SELECT 2", true},
		{"SELECT 1; INSERT INTO users (id) VALUES (77)", true},
		{"SELECT 1;INSERT INTO t VALUES (1)", true},
		{"SELECT 'x'; 'y'", true},
		{"SELECT 1; /* c */ DELETE FROM t", true},
	}

	for _, tt := range tests {
		if got := NewQuery(tt.sql).Stacked(); got != tt.want {
			t.Errorf("Stacked(%q) = %v, want %v", tt.sql, got, tt.want)
		}
	}
}
