package trace

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/efsm/internal/fsm"
)

//go:embed schema.sql
var schemaSQL string

// Store persists trace events to SQLite so they survive the process that
// produced them. Engine state is never stored here - only the observed
// transition log.
type Store struct {
	db *sql.DB
}

// Open creates or opens a trace database at the given path.
// Use ":memory:" for an ephemeral store in tests.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout
//
// Open is idempotent: the schema applies with IF NOT EXISTS.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open trace db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect trace db: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply trace schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// WriteEvent appends one event. Duplicate (token, seq) writes are silently
// ignored, so re-recording a run is idempotent.
func (s *Store) WriteEvent(ctx context.Context, ev Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trace_events (token, seq, pre_state, msg, post_state)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(token, seq) DO NOTHING
	`, ev.Token, ev.Seq, int(ev.Pre), int(ev.Msg), int(ev.Post))
	if err != nil {
		return fmt.Errorf("write trace event: %w", err)
	}
	return nil
}

// WriteAll appends every event of a recorder's run.
func (s *Store) WriteAll(ctx context.Context, events []Event) error {
	for _, ev := range events {
		if err := s.WriteEvent(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// ReadEvents returns one run's events in seq order.
func (s *Store) ReadEvents(ctx context.Context, token string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, seq, pre_state, msg, post_state
		FROM trace_events
		WHERE token = ?
		ORDER BY seq
	`, token)
	if err != nil {
		return nil, fmt.Errorf("read trace events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var pre, msg, post int
		if err := rows.Scan(&ev.Token, &ev.Seq, &pre, &msg, &post); err != nil {
			return nil, fmt.Errorf("scan trace event: %w", err)
		}
		ev.Pre = fsm.StateID(pre)
		ev.Msg = fsm.MsgType(msg)
		ev.Post = fsm.StateID(post)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read trace events: %w", err)
	}
	return events, nil
}

// Tokens lists every recorded run token, oldest first. UUIDv7 tokens sort
// by creation time, which is why the generator uses them.
func (s *Store) Tokens(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT token FROM trace_events ORDER BY token
	`)
	if err != nil {
		return nil, fmt.Errorf("list trace tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan trace token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trace tokens: %w", err)
	}
	return tokens, nil
}
