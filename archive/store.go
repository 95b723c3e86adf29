// Package archive keeps every session and its rows in a SQLite database,
// next to the tab separated results files.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joctavio287/Dichotic/engine"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
  id           TEXT PRIMARY KEY,
  exp_name     TEXT NOT NULL,
  participant  TEXT NOT NULL,
  session      TEXT NOT NULL,
  date         TEXT NOT NULL,
  started_at   INTEGER NOT NULL,
  finished_at  INTEGER,
  completed    INTEGER NOT NULL DEFAULT 0,
  message      TEXT NOT NULL DEFAULT '',
  data_file    TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS rows (
  session_id TEXT NOT NULL REFERENCES sessions(id),
  seq        INTEGER NOT NULL,
  data       TEXT NOT NULL,
  PRIMARY KEY (session_id, seq)
);
`

// Store persists sessions in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating when needed) the archive at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("archive path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records a new session and returns a writer that archives its rows.
func (s *Store) Begin(ctx context.Context, sess engine.Session) (*SessionWriter, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, exp_name, participant, session, date, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID.String(), sess.ExpName, sess.Participant, sess.Session, sess.DateString(), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return &SessionWriter{store: s, id: sess.ID.String(), ctx: context.WithoutCancel(ctx)}, nil
}

type field struct {
	Key   string `json:"k"`
	Value string `json:"v"`
}

// SessionWriter is an engine.RowSink bound to one session.
type SessionWriter struct {
	store *Store
	id    string
	seq   int
	// ctx outlives cancellation of the run so the final rows still land.
	ctx context.Context
}

func (w *SessionWriter) ID() string { return w.id }

func (w *SessionWriter) CommitRow(row engine.Row) error {
	fields := make([]field, len(row))
	for i, f := range row {
		fields[i] = field{f.Key, engine.FormatValue(f.Value)}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if _, err := w.store.db.ExecContext(w.ctx,
		`INSERT INTO rows (session_id, seq, data) VALUES (?, ?, ?)`, w.id, w.seq, string(data),
	); err != nil {
		return fmt.Errorf("insert row %d: %w", w.seq, err)
	}
	w.seq++
	return nil
}

// Finish stores the outcome of the run.
func (w *SessionWriter) Finish(res engine.Result) error {
	_, err := w.store.db.ExecContext(w.ctx,
		`UPDATE sessions SET finished_at = ?, completed = ?, message = ?, data_file = ? WHERE id = ?`,
		time.Now().UTC().UnixMilli(), res.Completed, res.Message, res.DataFile, w.id,
	)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

type SessionRecord struct {
	ID          string
	ExpName     string
	Participant string
	Session     string
	Date        string
	StartedAt   time.Time
	Finished    bool
	Completed   bool
	Message     string
	DataFile    string
	Rows        int
}

// Sessions lists the archived sessions, newest first.
func (s *Store) Sessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT s.id, s.exp_name, s.participant, s.session, s.date, s.started_at, s.finished_at IS NOT NULL,
       s.completed, s.message, s.data_file, (SELECT COUNT(*) FROM rows r WHERE r.session_id = s.id)
FROM sessions s ORDER BY s.started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var (
			r       SessionRecord
			started int64
		)
		if err := rows.Scan(&r.ID, &r.ExpName, &r.Participant, &r.Session, &r.Date, &started,
			&r.Finished, &r.Completed, &r.Message, &r.DataFile, &r.Rows); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		r.StartedAt = time.UnixMilli(started).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Rows returns the archived rows of a session in commit order.
func (s *Store) Rows(ctx context.Context, sessionID string) ([]engine.Row, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM rows WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []engine.Row
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var fields []field
		if err := json.Unmarshal([]byte(data), &fields); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		row := make(engine.Row, len(fields))
		for i, f := range fields {
			row[i] = engine.Field{Key: f.Key, Value: f.Value}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
