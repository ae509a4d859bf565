package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"recyvoice/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  role TEXT NOT NULL,
  status TEXT NOT NULL,
  transcript TEXT NOT NULL DEFAULT '',
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_traceId ON runs(traceId);

CREATE TABLE IF NOT EXISTS extractions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  position INTEGER NOT NULL,
  material TEXT NOT NULL,
  quantity REAL NOT NULL,
  unit TEXT NOT NULL,
  UNIQUE(runId, position),
  FOREIGN KEY(runId) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS verifications (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  position INTEGER NOT NULL,
  material TEXT NOT NULL,
  quantity REAL NOT NULL,
  unit TEXT NOT NULL,
  available INTEGER NOT NULL,
  similarity REAL NOT NULL,
  unitMatched INTEGER NOT NULL,
  itemId TEXT,
  itemName TEXT,
  categoryName TEXT,
  points REAL,
  price REAL,
  UNIQUE(runId, position),
  FOREIGN KEY(runId) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertRun(traceID, role, status, transcript string, timings map[string]float64, counts map[string]int) (int64, error) {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	result, err := d.conn.Exec(`
INSERT INTO runs (traceId, role, status, transcript, timingsJson, countsJson)
VALUES (?, ?, ?, ?, ?, ?)
`, traceID, role, status, transcript, string(timingsJSON), string(countsJSON))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) InsertExtractions(runID int64, materials []internal.ExtractedMaterial) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i, m := range materials {
		if _, err := tx.Exec(`
INSERT INTO extractions (runId, position, material, quantity, unit)
VALUES (?, ?, ?, ?, ?)
`, runID, i+1, m.Material, m.Quantity, string(m.Unit)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) InsertVerifications(runID int64, verified []internal.VerifiedMaterial) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i, v := range verified {
		var itemID, itemName, categoryName *string
		var points, price *float64
		if v.MatchedItem != nil {
			id := v.MatchedItem.ID
			name := v.MatchedItem.EnglishName()
			category := v.MatchedItem.CategoryName
			p := v.MatchedItem.Points
			pr := v.MatchedItem.Price
			itemID, itemName, categoryName = &id, &name, &category
			points, price = &p, &pr
		}
		if _, err := tx.Exec(`
INSERT INTO verifications (runId, position, material, quantity, unit, available, similarity, unitMatched, itemId, itemName, categoryName, points, price)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, runID, i+1, v.Material, v.Quantity, string(v.Unit), boolInt(v.Available), v.MatchSimilarity, boolInt(v.UnitMatched), itemID, itemName, categoryName, points, price); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) GetRunByID(id int) (*internal.RunRow, error) {
	var row internal.RunRow
	err := d.conn.QueryRow(`
SELECT id, traceId, role, status, transcript, createdAt
FROM runs WHERE id = ?
`, id).Scan(&row.ID, &row.TraceID, &row.Role, &row.Status, &row.Transcript, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListRecentRuns(limit int) ([]internal.RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, role, status, transcript, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		if err := rows.Scan(&row.ID, &row.TraceID, &row.Role, &row.Status, &row.Transcript, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) GetExportRows(runID int) ([]internal.VerifiedExportRow, error) {
	rows, err := d.conn.Query(`
SELECT position, material, quantity, unit, available, similarity, unitMatched,
       itemId, itemName, categoryName, points, price
FROM verifications WHERE runId = ? ORDER BY position ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.VerifiedExportRow
	for rows.Next() {
		var row internal.VerifiedExportRow
		var available, unitMatched int
		if err := rows.Scan(
			&row.Position, &row.Material, &row.Quantity, &row.Unit, &available, &row.Similarity, &unitMatched,
			&row.ItemID, &row.ItemName, &row.CategoryName, &row.Points, &row.Price,
		); err != nil {
			return nil, err
		}
		row.Available = available != 0
		row.UnitMatched = unitMatched != 0
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
