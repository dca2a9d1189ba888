// Package store persists symbol tables into a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/xonecas/symtab/internal/symtab"
)

const schema = `
CREATE TABLE IF NOT EXISTS builds (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	layout   TEXT NOT NULL,
	created  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS symbols (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	build_id    INTEGER NOT NULL REFERENCES builds(id) ON DELETE CASCADE,
	parent_id   INTEGER REFERENCES symbols(id),
	scope       TEXT NOT NULL,
	position    INTEGER NOT NULL,
	name        TEXT NOT NULL,
	kind        TEXT NOT NULL,
	type        TEXT,
	initializer TEXT,
	file        TEXT,
	line        INTEGER
);

CREATE TABLE IF NOT EXISTS scopes (
	build_id  INTEGER NOT NULL REFERENCES builds(id) ON DELETE CASCADE,
	scope     TEXT NOT NULL,
	position  INTEGER NOT NULL,
	PRIMARY KEY (build_id, scope)
);

CREATE INDEX IF NOT EXISTS idx_symbols_scope ON symbols(build_id, scope, position);
`

// DB is a SQLite-backed symbol table store.
type DB struct {
	mu sync.Mutex
	db *sql.DB
}

// Row is one stored symbol.
type Row struct {
	ID       int64
	ParentID int64 // 0 for top-level symbols and flat builds
	Scope    string
	Position int
	symtab.Record
}

// Open creates or opens a store at the given path.
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (s *DB) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// Save stores doc as a new build and returns its ID. The build is written
// in one transaction.
func (s *DB) Save(ctx context.Context, doc symtab.Document) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx,
		"INSERT INTO builds (layout, created) VALUES (?, ?)",
		string(doc.Layout()), time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert build: %w", err)
	}
	buildID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	w := &writer{ctx: ctx, tx: tx, build: buildID}
	switch d := doc.(type) {
	case *symtab.Node:
		err = w.tree(d, nil, symtab.Path{})
	case *symtab.Table:
		err = w.flat(d)
	default:
		err = fmt.Errorf("unsupported document %T", doc)
	}
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	log.Debug().Int64("build", buildID).Int("symbols", w.count).Msg("stored symbol table")
	return buildID, nil
}

type writer struct {
	ctx    context.Context
	tx     *sql.Tx
	build  int64
	scopes int
	count  int
}

func (w *writer) scope(key string) error {
	_, err := w.tx.ExecContext(w.ctx,
		"INSERT OR IGNORE INTO scopes (build_id, scope, position) VALUES (?, ?, ?)",
		w.build, key, w.scopes,
	)
	if err != nil {
		return fmt.Errorf("insert scope %q: %w", key, err)
	}
	w.scopes++
	return nil
}

func (w *writer) symbol(parent *int64, scope string, pos int, rec symtab.Record) (int64, error) {
	res, err := w.tx.ExecContext(w.ctx,
		`INSERT INTO symbols (build_id, parent_id, scope, position, name, kind, type, initializer, file, line)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.build, parent, scope, pos, rec.Name, string(rec.Kind),
		nullable(rec.Type), nullable(rec.Initializer), nullable(rec.File), rec.Line,
	)
	if err != nil {
		return 0, fmt.Errorf("insert symbol %q: %w", rec.Name, err)
	}
	w.count++
	return res.LastInsertId()
}

// tree stores the children of n under the scope path p.
func (w *writer) tree(n *symtab.Node, parent *int64, p symtab.Path) error {
	if err := w.scope(p.Key()); err != nil {
		return err
	}
	for i, c := range n.Children {
		id, err := w.symbol(parent, p.Key(), i, c.Record)
		if err != nil {
			return err
		}
		if c.Kind.Container() {
			if err := w.tree(c, &id, p.Enter(c.Name)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) flat(t *symtab.Table) error {
	for _, key := range t.Keys() {
		if err := w.scope(key); err != nil {
			return err
		}
		recs, _ := t.Lookup(key)
		for i, rec := range recs {
			if _, err := w.symbol(nil, key, i, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// ErrNoBuild is returned when a build ID is unknown.
var ErrNoBuild = errors.New("no such build")

// Latest returns the most recent build ID.
func (s *DB) Latest(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM builds ORDER BY id DESC LIMIT 1").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoBuild
	}
	return id, err
}

// Scopes returns the scope keys of a build in first-seen order.
func (s *DB) Scopes(ctx context.Context, build int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT scope FROM scopes WHERE build_id = ? ORDER BY position", build)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if keys == nil {
		return nil, fmt.Errorf("build %d: %w", build, ErrNoBuild)
	}
	return keys, nil
}

// Symbols returns the symbols stored in one scope of a build, in order.
func (s *DB) Symbols(ctx context.Context, build int64, scope string) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, parent_id, scope, position, name, kind, type, initializer, file, line
		 FROM symbols WHERE build_id = ? AND scope = ? ORDER BY position`,
		build, scope,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r               Row
			parent          sql.NullInt64
			kind            string
			typ, init, file sql.NullString
			line            sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &parent, &r.Scope, &r.Position, &r.Name, &kind, &typ, &init, &file, &line); err != nil {
			return nil, err
		}
		r.ParentID = parent.Int64
		r.Kind = symtab.Kind(kind)
		r.Type = typ.String
		r.Initializer = init.String
		r.File = file.String
		r.Line = int(line.Int64)
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
