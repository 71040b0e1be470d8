package agentdb

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database used for the agent's action log and bookkeeping.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil { return nil, err }
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil { return nil, err }
	db := &DB{sql: d}
	if err := db.migrate(); err != nil { _ = d.Close(); return nil, err }
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS actions (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  ts INTEGER NOT NULL,
	  type TEXT NOT NULL,
	  target_id TEXT,
	  cycle_id TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_actions_ts ON actions(ts);
	CREATE INDEX IF NOT EXISTS idx_actions_type_ts ON actions(type, ts);
	CREATE TABLE IF NOT EXISTS responded (
	  post_id TEXT PRIMARY KEY,
	  ts INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS cursors (
	  key TEXT PRIMARY KEY,
	  value TEXT
	);
	`)
	return err
}

// Action is one logged dispatch.
type Action struct {
	TS       time.Time
	Type     string
	TargetID string
	CycleID  string
}

// PutAction logs a dispatched action.
func (d *DB) PutAction(ctx context.Context, ts time.Time, typ, targetID, cycleID string) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO actions(ts, type, target_id, cycle_id) VALUES(?,?,?,?)`,
		ts.Unix(), typ, targetID, cycleID)
	return err
}

// CountActionsWithin counts actions of the given types in [start, end).
// An empty types list counts everything.
func (d *DB) CountActionsWithin(ctx context.Context, start, end time.Time, types ...string) (int, error) {
	q := `SELECT COUNT(*) FROM actions WHERE ts>=? AND ts<?`
	args := []any{start.Unix(), end.Unix()}
	if len(types) > 0 {
		q += ` AND type IN (?`
		args = append(args, types[0])
		for _, t := range types[1:] {
			q += `,?`
			args = append(args, t)
		}
		q += `)`
	}
	row := d.sql.QueryRowContext(ctx, q, args...)
	var n int
	if err := row.Scan(&n); err != nil { return 0, err }
	return n, nil
}

// LoadActionsRange returns actions in [start, end) ordered by time.
func (d *DB) LoadActionsRange(ctx context.Context, start, end time.Time) ([]Action, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT ts, type, COALESCE(target_id,''), COALESCE(cycle_id,'') FROM actions WHERE ts>=? AND ts<? ORDER BY ts`,
		start.Unix(), end.Unix())
	if err != nil { return nil, err }
	defer rows.Close()
	var out []Action
	for rows.Next() {
		var ts int64
		var a Action
		if err := rows.Scan(&ts, &a.Type, &a.TargetID, &a.CycleID); err != nil { return nil, err }
		a.TS = time.Unix(ts, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// MarkResponded mirrors an answered post id. Idempotent.
func (d *DB) MarkResponded(ctx context.Context, postID string, ts time.Time) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO responded(post_id, ts) VALUES(?,?) ON CONFLICT(post_id) DO NOTHING`,
		postID, ts.Unix())
	return err
}

// LoadResponded returns every answered post id, for warm-starting the
// in-memory set across restarts.
func (d *DB) LoadResponded(ctx context.Context) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT post_id FROM responded ORDER BY ts`)
	if err != nil { return nil, err }
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil { return nil, err }
		out = append(out, id)
	}
	return out, rows.Err()
}

// SaveCursor stores a named cursor value.
func (d *DB) SaveCursor(ctx context.Context, key, value string) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO cursors(key, value) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value)
	return err
}

// LoadCursor returns a named cursor value, or "" when absent.
func (d *DB) LoadCursor(ctx context.Context, key string) (string, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT value FROM cursors WHERE key=?`, key)
	var v sql.NullString
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows { return "", nil }
		return "", err
	}
	return v.String, nil
}
