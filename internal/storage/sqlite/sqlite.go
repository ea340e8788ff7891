package sqlite

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"portionbot/internal/domain"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS classification_history (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id       INTEGER NOT NULL,
		name          TEXT NOT NULL,
		unit          TEXT NOT NULL,
		decision      INTEGER NOT NULL,
		model         TEXT DEFAULT '',
		classified_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_history_item ON classification_history(item_id);
	CREATE INDEX IF NOT EXISTS idx_history_date ON classification_history(classified_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return db, nil
}

// Store keeps a queryable history of every successful classification,
// alongside the report artifacts.
type Store struct {
	db    *sql.DB
	model string
}

func NewStore(db *sql.DB, model string) *Store {
	return &Store{db: db, model: model}
}

func (s *Store) Insert(rec domain.ProcessedRecord) error {
	decision := 0
	if rec.Decision {
		decision = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO classification_history (item_id, name, unit, decision, model)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Unit, decision, s.model,
	)
	return err
}

// Totals summarizes the whole classification history.
type Totals struct {
	Classified int
	True       int
	False      int
}

func DecisionTotals(db *sql.DB) (Totals, error) {
	var t Totals
	err := db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(decision), 0),
		        COALESCE(SUM(1 - decision), 0)
		 FROM classification_history`,
	).Scan(&t.Classified, &t.True, &t.False)
	return t, err
}

// HistoryRow is one recorded classification.
type HistoryRow struct {
	ItemID       int64
	Name         string
	Unit         string
	Decision     bool
	Model        string
	ClassifiedAt time.Time
}

func RecentClassifications(db *sql.DB, limit int) ([]HistoryRow, error) {
	rows, err := db.Query(
		`SELECT item_id, name, unit, decision, model, classified_at
		 FROM classification_history
		 ORDER BY classified_at DESC, id DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var r HistoryRow
		var decision int
		if err := rows.Scan(&r.ItemID, &r.Name, &r.Unit, &decision, &r.Model, &r.ClassifiedAt); err != nil {
			return nil, err
		}
		r.Decision = decision != 0
		out = append(out, r)
	}
	return out, rows.Err()
}
