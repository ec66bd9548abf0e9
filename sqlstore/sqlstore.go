// Package sqlstore provides a database/sql connection for the identity store.
//
// Open uses the pure-Go SQLite driver (modernc.org/sqlite). New accepts any
// *sql.DB whose driver uses "?" placeholders; drivers that report SQLSTATE
// codes themselves are classified without translation.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jacentio/identitystore/store"
)

// Conn inserts rows through a *sql.DB.
type Conn struct {
	db    *sql.DB
	owned bool
}

// pragmaDSN is applied by the driver to every pooled connection.
const pragmaDSN = "?_pragma=busy_timeout(10000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

// Open opens a SQLite database at path with WAL journaling, a busy timeout
// and foreign keys enabled. The returned Conn owns the database handle.
func Open(path string) (*Conn, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlstore: path is required")
	}

	db, err := sql.Open("sqlite", path+pragmaDSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: ping: %w", err)
	}

	return &Conn{db: db, owned: true}, nil
}

// New wraps an existing database handle. The caller keeps ownership of db.
func New(db *sql.DB) *Conn {
	return &Conn{db: db}
}

// DB returns the underlying database handle.
func (c *Conn) DB() *sql.DB {
	return c.db
}

// Close closes the database if it was opened by Open.
func (c *Conn) Close() error {
	if !c.owned {
		return nil
	}
	return c.db.Close()
}

// Insert inserts row into table. SQLite constraint failures are reported as
// store.ConnError with an integrity constraint violation state.
func (c *Conn) Insert(ctx context.Context, table string, row store.Row) error {
	query, args, err := insertStatement(table, row)
	if err != nil {
		return err
	}

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		if isConstraintError(err) {
			return store.ConstraintViolation(err)
		}
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// insertStatement builds a parameterised INSERT with columns in sorted order.
func insertStatement(table string, row store.Row) (string, []any, error) {
	if table == "" {
		return "", nil, errors.New("sqlstore: table is required")
	}
	if len(row) == 0 {
		return "", nil, errors.New("sqlstore: row has no columns")
	}

	columns := make([]string, 0, len(row))
	for column := range row {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		quoted[i] = quoteIdent(column)
		placeholders[i] = "?"
		args[i] = row[column]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)
	return query, args, nil
}

// quoteIdent quotes a table or column name, escaping embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// isConstraintError reports whether err is any SQLITE_CONSTRAINT failure,
// extended codes included.
func isConstraintError(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

var _ store.Conn = (*Conn)(nil)
