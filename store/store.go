// Package store keeps favorites rows and the demo project schema in SQLite.
package store

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"favorites/tally"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ErrConnect is matched by every *ConnectError.
var ErrConnect = errors.New("cannot create a database connection")

// ConnectError reports a database that could not be opened.
type ConnectError struct {
	Path string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrConnect, e.Path, e.Err)
}

func (e *ConnectError) Unwrap() error        { return e.Err }
func (e *ConnectError) Is(target error) bool { return target == ErrConnect }

// Store is a single SQLite connection. It is not safe for concurrent use.
type Store struct {
	conn *sqlite.Conn
	path string
}

// Open connects to the database at path. Unless create is set, a missing
// file is an error rather than a new empty database, and the file's journal
// mode is left as it was.
func Open(path string, create bool) (*Store, error) {
	flags := []sqlite.OpenFlags{sqlite.OpenReadWrite}
	if create {
		flags = append(flags, sqlite.OpenCreate, sqlite.OpenWAL)
	}
	conn, err := sqlite.OpenConn(path, flags...)
	if err != nil {
		return nil, &ConnectError{Path: path, Err: err}
	}
	if err := sqlitex.ExecuteTransient(conn, "PRAGMA foreign_keys = ON", nil); err != nil {
		_ = conn.Close()
		return nil, &ConnectError{Path: path, Err: err}
	}
	return &Store{conn: conn, path: path}, nil
}

// Path returns the file the store was opened from.
func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	return s.conn.Close()
}

// CreateProjectTables creates the projects and tasks tables if absent.
func (s *Store) CreateProjectTables() error {
	if err := sqlitex.ExecuteScript(s.conn, ddlProjects, nil); err != nil {
		return fmt.Errorf("create projects table: %w", err)
	}
	if err := sqlitex.ExecuteScript(s.conn, ddlTasks, nil); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}

// CreateFavoritesTable creates the favorites table and its title index if absent.
func (s *Store) CreateFavoritesTable() error {
	if err := sqlitex.ExecuteScript(s.conn, FavoritesDDL, nil); err != nil {
		return fmt.Errorf("create favorites table: %w", err)
	}
	return nil
}

// Tables lists user tables by name.
func (s *Store) Tables() ([]string, error) {
	var names []string
	err := sqlitex.ExecuteTransient(s.conn, queryUserTables, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			names = append(names, stmt.ColumnText(0))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return names, nil
}

// CountTitle counts favorites whose title matches term under SQLite LIKE
// rules: ASCII case-insensitive, with % and _ wildcards.
func (s *Store) CountTitle(term string) (int64, error) {
	return s.count(QueryCountTitleLike, term)
}

// CountTitleExact counts favorites whose title equals term byte for byte.
func (s *Store) CountTitleExact(term string) (int64, error) {
	return s.count(QueryCountTitleExact, term)
}

func (s *Store) count(query, term string) (int64, error) {
	var n int64
	err := sqlitex.Execute(s.conn, query, &sqlitex.ExecOptions{
		Args: []any{term},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			n = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("count title %q: %w", term, err)
	}
	return n, nil
}

// ImportFavorites inserts every record from src in one transaction and
// returns the number of rows written. Any failure rolls the import back.
func (s *Store) ImportFavorites(src tally.Source) (n int, err error) {
	endFn, err := sqlitex.ImmediateTransaction(s.conn)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer endFn(&err)

	stmt, err := s.conn.Prepare(insertFavorite)
	if err != nil {
		return 0, fmt.Errorf("prepare favorite insert: %w", err)
	}
	defer func() { _ = stmt.Finalize() }()

	for {
		rec, rerr := src.Next()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return 0, fmt.Errorf("read record %d: %w", n+1, rerr)
		}
		title, ok := lookupField(rec, "title")
		if !ok {
			return 0, &tally.MissingFieldError{Field: "title", Record: n + 1}
		}
		ts, _ := lookupField(rec, "timestamp")
		genres, _ := lookupField(rec, "genres")

		bindTextOrNull(stmt, 1, ts)
		stmt.BindText(2, title)
		bindTextOrNull(stmt, 3, genres)
		if _, err := stmt.Step(); err != nil {
			return 0, fmt.Errorf("insert favorite %d: %w", n+1, err)
		}
		if err := stmt.Reset(); err != nil {
			return 0, fmt.Errorf("reset favorite insert: %w", err)
		}
		n++
	}
	return n, nil
}

// TitleTally streams every stored title through tally.Tally.
func (s *Store) TitleTally() (tally.Table, error) {
	stmt, err := s.conn.Prepare(QueryAllTitles)
	if err != nil {
		return nil, fmt.Errorf("prepare title scan: %w", err)
	}
	defer func() { _ = stmt.Reset() }()
	return tally.Tally(&rowSource{stmt: stmt}, "title")
}

// rowSource adapts a single-column title query to tally.Source.
type rowSource struct {
	stmt *sqlite.Stmt
}

func (r *rowSource) Next() (tally.Record, error) {
	hasRow, err := r.stmt.Step()
	if err != nil {
		return nil, err
	}
	if !hasRow {
		return nil, io.EOF
	}
	return tally.Record{"title": r.stmt.ColumnText(0)}, nil
}

// lookupField finds name in rec, falling back to a case-insensitive match
// so headers like "Timestamp" still line up with the column.
func lookupField(rec tally.Record, name string) (string, bool) {
	if v, ok := rec[name]; ok {
		return v, true
	}
	for k, v := range rec {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

func bindTextOrNull(stmt *sqlite.Stmt, param int, val string) {
	if val == "" {
		stmt.BindNull(param)
	} else {
		stmt.BindText(param, val)
	}
}
