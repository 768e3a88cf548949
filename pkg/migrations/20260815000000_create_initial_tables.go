package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		stmts := []string{
			`
			CREATE TABLE libraries (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				deleted_at TIMESTAMPTZ,
				name TEXT NOT NULL,
				series_cover TEXT NOT NULL DEFAULT 'first'
			)`,
			`
			CREATE TABLE series (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				deleted_at TIMESTAMPTZ,
				library_id INTEGER REFERENCES libraries (id) NOT NULL,
				name TEXT NOT NULL,
				book_count INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX ix_series_library_id ON series (library_id)`,
			`CREATE UNIQUE INDEX ux_series_name_library_id ON series (name COLLATE NOCASE, library_id) WHERE deleted_at IS NULL`,
			`
			CREATE TABLE series_metadata (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				series_id INTEGER REFERENCES series (id) NOT NULL UNIQUE,
				title TEXT NOT NULL,
				title_sort TEXT NOT NULL
			)`,
			`
			CREATE TABLE book_metadata_aggregations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				series_id INTEGER REFERENCES series (id) NOT NULL UNIQUE,
				summary TEXT
			)`,
			`
			CREATE TABLE books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				deleted_at TIMESTAMPTZ,
				library_id INTEGER REFERENCES libraries (id) NOT NULL,
				series_id INTEGER REFERENCES series (id) NOT NULL,
				name TEXT NOT NULL,
				number INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX ix_books_series_id ON books (series_id)`,
			`CREATE INDEX ix_books_library_id ON books (library_id)`,
			`
			CREATE TABLE book_metadata (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				book_id INTEGER REFERENCES books (id) NOT NULL UNIQUE,
				title TEXT NOT NULL,
				number TEXT NOT NULL,
				number_sort REAL NOT NULL DEFAULT 0,
				number_lock BOOLEAN NOT NULL DEFAULT FALSE,
				number_sort_lock BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`
			CREATE TABLE media (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				book_id INTEGER REFERENCES books (id) NOT NULL UNIQUE,
				status TEXT NOT NULL DEFAULT 'unknown',
				page_count INTEGER NOT NULL DEFAULT 0,
				cover_path TEXT
			)`,
			`
			CREATE TABLE series_thumbnails (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				series_id INTEGER REFERENCES series (id) NOT NULL,
				url TEXT NOT NULL,
				type TEXT NOT NULL DEFAULT 'sidecar',
				selected BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`CREATE INDEX ix_series_thumbnails_series_id ON series_thumbnails (series_id)`,
			`
			CREATE TABLE read_progress (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				book_id INTEGER REFERENCES books (id) NOT NULL,
				user_id INTEGER REFERENCES users (id) NOT NULL,
				page INTEGER NOT NULL DEFAULT 0,
				completed BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`CREATE UNIQUE INDEX ux_read_progress_book_id_user_id ON read_progress (book_id, user_id)`,
			`
			CREATE TABLE collections (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				ordered BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`
			CREATE TABLE collection_series (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				collection_id INTEGER REFERENCES collections (id) NOT NULL,
				series_id INTEGER REFERENCES series (id) NOT NULL,
				number INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE UNIQUE INDEX ux_collection_series ON collection_series (collection_id, series_id)`,
			`
			CREATE TABLE users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				username TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT TRUE
			)`,
			`
			CREATE TABLE jobs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				type TEXT NOT NULL,
				status TEXT NOT NULL,
				data TEXT NOT NULL,
				progress INTEGER NOT NULL DEFAULT 0,
				process_id TEXT
			)`,
			`CREATE INDEX ix_jobs_status ON jobs (status)`,
		}
		for _, stmt := range stmts {
			_, err := db.Exec(stmt)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		tables := []string{
			"jobs", "users", "collection_series", "collections", "read_progress",
			"series_thumbnails", "media", "book_metadata", "books",
			"book_metadata_aggregations", "series_metadata", "series", "libraries",
		}
		for _, table := range tables {
			_, err := db.Exec("DROP TABLE IF EXISTS " + table)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
