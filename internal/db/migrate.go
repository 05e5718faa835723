package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	DialectMySQL      = "mysql"
	DialectClickHouse = "clickhouse"
)

// Migration is one embedded file; Dialect comes from the file name
// (NNN_name.<dialect>.sql).
type Migration struct {
	Name    string
	Dialect string
	SQL     string
}

// Migrations returns the embedded migrations for dialect in file-name order.
func Migrations(dialect string) ([]Migration, error) {
	names, err := fs.Glob(migrations, "migrations/*."+dialect+".sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, n := range names {
		b, err := migrations.ReadFile(n)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", n, err)
		}
		out = append(out, Migration{
			Name:    strings.TrimPrefix(n, "migrations/"),
			Dialect: dialect,
			SQL:     string(b),
		})
	}
	return out, nil
}

// Statements splits a migration on semicolons that end a line. Full-line
// "--" comments and blank statements are dropped. Neither driver accepts
// multiple statements per Exec by default.
func Statements(sql string) []string {
	var (
		stmts []string
		cur   strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		if strings.HasSuffix(trimmed, ";") {
			cur.WriteString(strings.TrimSuffix(strings.TrimRight(line, " \t\r"), ";"))
			flush()
			continue
		}
		cur.WriteString(line)
		cur.WriteString("\n")
	}
	flush()
	return stmts
}

// Migrate applies every embedded migration of dialect to db. All statements
// are idempotent (IF NOT EXISTS) so re-running is safe.
func Migrate(ctx context.Context, db *sqlx.DB, dialect string) ([]string, error) {
	ms, err := Migrations(dialect)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, m := range ms {
		for i, stmt := range Statements(m.SQL) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return applied, fmt.Errorf("%s statement %d: %w", m.Name, i+1, err)
			}
		}
		applied = append(applied, m.Name)
	}
	return applied, nil
}
