package server

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"favorites/store"
	"favorites/tally"

	_ "modernc.org/sqlite"
)

// DB wraps *sql.DB and provides favorites query helpers.
type DB struct {
	*sql.DB
}

// NewDB returns a DB wrapper.
func NewDB(db *sql.DB) *DB {
	return &DB{DB: db}
}

// OpenDB opens an existing favorites database with a single connection and
// makes sure the favorites table exists, so a database without it answers
// with zero counts. A missing file is a *store.ConnectError.
func OpenDB(path string) (*sql.DB, error) {
	if isFilePath(path) {
		if _, err := os.Stat(path); err != nil {
			return nil, &store.ConnectError{Path: path, Err: err}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &store.ConnectError{Path: path, Err: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &store.ConnectError{Path: path, Err: err}
	}
	if _, err := db.Exec(store.FavoritesDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure favorites table: %w", err)
	}
	return db, nil
}

// CountResponse is the body of /api/count.
type CountResponse struct {
	Title string `json:"title"`
	Exact bool   `json:"exact"`
	Count int64  `json:"count"`
}

// MatchResponse is the body of /api/match.
type MatchResponse struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// Tally counts stored titles by their normalized form.
func (db *DB) Tally() (tally.Table, error) {
	rows, err := db.Query(store.QueryAllTitles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return tally.Tally(&rowsSource{rows: rows}, "title")
}

// CountTitle counts rows whose title matches term, by LIKE or by equality.
func (db *DB) CountTitle(term string, exact bool) (int64, error) {
	q := store.QueryCountTitleLike
	if exact {
		q = store.QueryCountTitleExact
	}
	var n int64
	err := db.QueryRow(q, term).Scan(&n)
	return n, err
}

// isFilePath reports whether path names a plain database file rather than an
// in-memory database or a file: URI.
func isFilePath(path string) bool {
	return path != ":memory:" && path != "" && !strings.HasPrefix(path, "file:")
}

// rowsSource feeds a title query into tally.Tally.
type rowsSource struct {
	rows *sql.Rows
}

func (s *rowsSource) Next() (tally.Record, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	var title string
	if err := s.rows.Scan(&title); err != nil {
		return nil, err
	}
	return tally.Record{"title": title}, nil
}
