package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"portionbot/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "portionbot-test.db"))
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertAndTotals(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db, "claude-test")

	records := []domain.ProcessedRecord{
		{ID: 1, Name: "Pão francês", Unit: "Unidade", Decision: true},
		{ID: 2, Name: "Ovo cozido", Unit: "Unidade", Decision: false},
		{ID: 3, Name: "Pizza", Unit: "Fatia", Decision: true},
	}
	for _, rec := range records {
		if err := store.Insert(rec); err != nil {
			t.Fatalf("Insert(%d) failed: %v", rec.ID, err)
		}
	}

	totals, err := DecisionTotals(db)
	if err != nil {
		t.Fatalf("DecisionTotals failed: %v", err)
	}
	if totals.Classified != 3 || totals.True != 2 || totals.False != 1 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

func TestDecisionTotalsEmptyHistory(t *testing.T) {
	db := newTestDB(t)

	totals, err := DecisionTotals(db)
	if err != nil {
		t.Fatalf("DecisionTotals failed: %v", err)
	}
	if totals.Classified != 0 || totals.True != 0 || totals.False != 0 {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

func TestRecentClassificationsLimitAndFields(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db, "claude-test")

	for i := int64(1); i <= 5; i++ {
		rec := domain.ProcessedRecord{ID: i, Name: "Iogurte", Unit: "Pote 1L", Decision: i%2 == 0}
		if err := store.Insert(rec); err != nil {
			t.Fatalf("Insert(%d) failed: %v", i, err)
		}
	}

	rows, err := RecentClassifications(db, 3)
	if err != nil {
		t.Fatalf("RecentClassifications failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	// Newest first: inserts share a timestamp second, id breaks the tie.
	if rows[0].ItemID != 5 {
		t.Fatalf("expected newest row first, got item %d", rows[0].ItemID)
	}
	if rows[0].Model != "claude-test" || rows[0].Name != "Iogurte" || rows[0].Unit != "Pote 1L" {
		t.Fatalf("unexpected row fields: %+v", rows[0])
	}
}
