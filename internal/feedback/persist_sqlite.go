package feedback

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// sqlitePersister keeps the table in a single SQLite file, one row per
// (query, tool) pair upserted on write. Suited to deployments where the
// table grows past what rewriting a JSON file on every event tolerates.
type sqlitePersister struct {
	db   *sql.DB
	path string
}

const feedbackSchema = `
CREATE TABLE IF NOT EXISTS feedback (
	query      TEXT NOT NULL,
	tool_id    TEXT NOT NULL,
	score      REAL NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (query, tool_id)
);
`

func newSQLitePersister(path string) (*sqlitePersister, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create feedback directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feedback db: %w", err)
	}
	if _, err := db.Exec(feedbackSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize feedback schema: %w", err)
	}

	return &sqlitePersister{db: db, path: path}, nil
}

func (p *sqlitePersister) load() (map[key]Entry, error) {
	rows, err := p.db.Query(`SELECT query, tool_id, score, updated_at FROM feedback`)
	if err != nil {
		return nil, fmt.Errorf("corrupt feedback state: %w", err)
	}
	defer rows.Close()

	entries := make(map[key]Entry)
	for rows.Next() {
		var k key
		var e Entry
		if err := rows.Scan(&k.Query, &k.ToolID, &e.Score, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("corrupt feedback row: %w", err)
		}
		entries[k] = e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (p *sqlitePersister) store(_ map[key]Entry, changed key, e Entry) error {
	_, err := p.db.Exec(`
		INSERT INTO feedback (query, tool_id, score, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(query, tool_id) DO UPDATE SET
			score = excluded.score,
			updated_at = excluded.updated_at`,
		changed.Query, changed.ToolID, e.Score, e.UpdatedAt)
	return err
}

func (p *sqlitePersister) close() error {
	return p.db.Close()
}
