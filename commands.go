package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"favorites/server"
	"favorites/store"
	"favorites/tally"
)

const (
	defaultCSV       = "favorites.csv"
	defaultDB        = "favorites.db"
	defaultProjectDB = "pythonsqlite.db"
	defaultField     = "title"
	defaultPort      = "8080"
)

// parseFlags treats -h as a successful no-op so help does not exit non-zero.
func parseFlags(fs *flag.FlagSet, args []string) (done bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return true, nil
		}
		return true, err
	}
	return false, nil
}

// tallyCSV opens path and tallies field over every row.
func tallyCSV(path, field string, prog *Progress) (tally.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, err := tally.NewCSVSource(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	prog.Verbose("Reading %s (fields: %s)", path, strings.Join(src.Header(), ", "))

	table, err := tally.Tally(src, field)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(table) == 0 {
		prog.Log("Warning: no records in %s", path)
	}
	prog.Verbose("Tallied %d records into %d titles", table.Total(), len(table))
	return table, nil
}

// tallyDB tallies the title column of the favorites table at path.
func tallyDB(path string, prog *Progress) (tally.Table, error) {
	s, err := store.Open(path, false)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	table, err := s.TitleTally()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(table) == 0 {
		prog.Log("Warning: no records in %s", path)
	}
	prog.Verbose("Tallied %d stored titles into %d titles", table.Total(), len(table))
	return table, nil
}

func runTally(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "tally", "")
	csvPath := fs.String("csv", defaultCSV, "CSV file with a header row")
	dbPath := fs.String("db", "", "Tally the titles stored in this SQLite database instead of a CSV file")
	field := fs.String("field", defaultField, "Field to tally")
	top := fs.Int("top", 0, "Print only the N most frequent titles (0 = all)")
	verbose := fs.Bool("v", false, "Print detailed progress")
	if done, err := parseFlags(fs, args); done {
		return err
	}
	prog := NewProgress(env.stderr, *verbose)

	var table tally.Table
	var err error
	if *dbPath != "" {
		table, err = tallyDB(*dbPath, prog)
	} else {
		table, err = tallyCSV(*csvPath, *field, prog)
	}
	if err != nil {
		return err
	}
	for _, e := range tally.Top(tally.Rank(table), *top) {
		fmt.Fprintf(env.stdout, "%s %d\n", e.Key, e.Count)
	}
	return nil
}

func runCount(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "count", "<substring>")
	csvPath := fs.String("csv", defaultCSV, "CSV file with a header row")
	field := fs.String("field", defaultField, "Field to tally")
	exact := fs.Bool("exact", false, "Match the whole normalized title instead of a substring")
	verbose := fs.Bool("v", false, "Print detailed progress")
	if done, err := parseFlags(fs, args); done {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("expected a substring to count")
	}
	query := strings.Join(fs.Args(), " ")
	prog := NewProgress(env.stderr, *verbose)

	table, err := tallyCSV(*csvPath, *field, prog)
	if err != nil {
		return err
	}
	pred := tally.Contains(query)
	if *exact {
		pred = tally.Equals(query)
	}
	fmt.Fprintf(env.stdout, "Number of people who like %s: %d\n", query, tally.CountMatching(table, pred))
	return nil
}

func runLookup(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "lookup", "[title]")
	dbPath := fs.String("db", defaultDB, "SQLite database with a favorites table")
	exact := fs.Bool("exact", false, "Compare titles with = instead of LIKE")
	verbose := fs.Bool("v", false, "Print detailed progress")
	if done, err := parseFlags(fs, args); done {
		return err
	}
	prog := NewProgress(env.stderr, *verbose)

	title := strings.Join(fs.Args(), " ")
	if fs.NArg() == 0 {
		fmt.Fprint(env.stdout, "Title: ")
		line, err := bufio.NewReader(env.stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read title: %w", err)
		}
		title = line
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("empty title")
	}

	s, err := store.Open(*dbPath, false)
	if err != nil {
		return err
	}
	defer s.Close()
	prog.Verbose("Opened %s", s.Path())

	var n int64
	if *exact {
		n, err = s.CountTitleExact(title)
	} else {
		n, err = s.CountTitle(title)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(env.stdout, n)
	return nil
}

func runImport(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "import", "")
	dbPath := fs.String("db", defaultDB, "SQLite database to write")
	csvPath := fs.String("csv", defaultCSV, "CSV file with a header row")
	verbose := fs.Bool("v", false, "Print detailed progress")
	if done, err := parseFlags(fs, args); done {
		return err
	}
	prog := NewProgress(env.stderr, *verbose)

	f, err := os.Open(*csvPath)
	if err != nil {
		return err
	}
	defer f.Close()
	src, err := tally.NewCSVSource(f)
	if err != nil {
		return fmt.Errorf("%s: %w", *csvPath, err)
	}

	s, err := store.Open(*dbPath, true)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.CreateFavoritesTable(); err != nil {
		return err
	}
	n, err := s.ImportFavorites(src)
	if err != nil {
		return fmt.Errorf("import %s: %w", *csvPath, err)
	}
	if n == 0 {
		prog.Log("Warning: no records in %s", *csvPath)
	}
	prog.Log("Imported %d rows into %s", n, s.Path())
	return nil
}

func runInit(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "init", "")
	dbPath := fs.String("db", defaultProjectDB, "SQLite database to create")
	verbose := fs.Bool("v", false, "Print detailed progress")
	if done, err := parseFlags(fs, args); done {
		return err
	}
	prog := NewProgress(env.stderr, *verbose)

	s, err := store.Open(*dbPath, true)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.CreateProjectTables(); err != nil {
		return err
	}
	tables, err := s.Tables()
	if err != nil {
		return err
	}
	prog.Log("Tables in %s: %s", s.Path(), strings.Join(tables, ", "))
	return nil
}

func runServe(env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "serve", "")
	dbPath := fs.String("db", "", "Path to SQLite database (e.g. favorites.db). Can be set via DB_PATH env.")
	port := fs.String("port", "", "HTTP port. Can be set via PORT env.")
	if done, err := parseFlags(fs, args); done {
		return err
	}
	if *dbPath == "" {
		*dbPath = os.Getenv("DB_PATH")
	}
	if *dbPath == "" {
		*dbPath = defaultDB
	}
	if *port == "" {
		*port = os.Getenv("PORT")
	}
	if *port == "" {
		*port = defaultPort
	}

	db, err := server.OpenDB(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	app := server.NewApp(db)
	return server.ListenAndServe(env.ctx, ":"+*port, app.Handler())
}
