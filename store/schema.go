package store

const ddlProjects = `
CREATE TABLE IF NOT EXISTS projects (
    id integer PRIMARY KEY,
    name text NOT NULL,
    begin_date text,
    end_date text
);
`

const ddlTasks = `
CREATE TABLE IF NOT EXISTS tasks (
    id integer PRIMARY KEY,
    name text NOT NULL,
    priority integer,
    status_id integer NOT NULL,
    project_id integer NOT NULL,
    begin_date text NOT NULL,
    end_date text NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects (id)
);
`

// FavoritesDDL creates the favorites table and its title index if absent.
const FavoritesDDL = `
CREATE TABLE IF NOT EXISTS favorites (
    id INTEGER PRIMARY KEY,
    timestamp TEXT,
    title TEXT NOT NULL,
    genres TEXT
);
CREATE INDEX IF NOT EXISTS idx_favorites_title ON favorites (title);
`

// Favorites queries, each taking at most one positional title argument.
const (
	QueryCountTitleLike  = `SELECT COUNT(*) AS counter FROM favorites WHERE title LIKE ?`
	QueryCountTitleExact = `SELECT COUNT(*) AS counter FROM favorites WHERE title = ?`
	QueryAllTitles       = `SELECT title FROM favorites`
)

const (
	queryUserTables = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
	insertFavorite  = `INSERT INTO favorites (timestamp, title, genres) VALUES (?, ?, ?)`
)
