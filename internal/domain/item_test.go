package domain

import (
	"encoding/json"
	"testing"
)

func rawRecords(t *testing.T, jsonArray string) []json.RawMessage {
	t.Helper()
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(jsonArray), &raw); err != nil {
		t.Fatalf("test input is not a JSON array: %v", err)
	}
	return raw
}

func TestValidateItemsWellFormed(t *testing.T) {
	raw := rawRecords(t, `[{"id": 1, "name": "Pão francês", "unit": "Unidade"}]`)

	items, errs := ValidateItems(raw)
	if len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	want := Item{ID: 1, Name: "Pão francês", Unit: "Unidade"}
	if items[0] != want {
		t.Fatalf("unexpected item: %+v", items[0])
	}
}

func TestValidateItemsMissingIDRejected(t *testing.T) {
	raw := rawRecords(t, `[{"name": "Ovo cozido", "unit": "Unidade"}, {"id": 2, "name": "Pizza", "unit": "Fatia"}]`)

	items, errs := ValidateItems(raw)
	if len(items) != 1 || items[0].ID != 2 {
		t.Fatalf("expected only item 2 to survive, got %+v", items)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 validation error, got %d", len(errs))
	}
	if errs[0].Index != 0 || errs[0].Field != "id" {
		t.Fatalf("expected rejection of index 0 field id, got %+v", errs[0])
	}
}

func TestValidateItemsMissingUnitMapsToSentinel(t *testing.T) {
	raw := rawRecords(t, `[{"id": 3, "name": "Iogurte"}]`)

	items, errs := ValidateItems(raw)
	if len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
	if items[0].Unit != UnitUnspecified {
		t.Fatalf("expected unit sentinel %q, got %q", UnitUnspecified, items[0].Unit)
	}
	if items[0].Name != "Iogurte" {
		t.Fatalf("unexpected name: %q", items[0].Name)
	}
}

func TestValidateItemsWrongTypeNamesField(t *testing.T) {
	raw := rawRecords(t, `[{"id": 4, "name": 12, "unit": "Fatia"}]`)

	items, errs := ValidateItems(raw)
	if len(items) != 0 {
		t.Fatalf("expected rejection, got items %+v", items)
	}
	if len(errs) != 1 || errs[0].Field != "name" {
		t.Fatalf("expected error naming field name, got %+v", errs)
	}
}

func TestValidateItemsNonObjectRecord(t *testing.T) {
	raw := rawRecords(t, `[42]`)

	items, errs := ValidateItems(raw)
	if len(items) != 0 {
		t.Fatalf("expected rejection, got items %+v", items)
	}
	if len(errs) != 1 || errs[0].Index != 0 {
		t.Fatalf("expected 1 error at index 0, got %+v", errs)
	}
}

func TestValidationErrorNeverAbortsBatch(t *testing.T) {
	raw := rawRecords(t, `[{"name": "no id"}, "junk", {"id": 7, "name": "Mamão", "unit": "Fatia"}, {"id": 8}]`)

	items, errs := ValidateItems(raw)
	if len(items) != 2 {
		t.Fatalf("expected 2 surviving items, got %+v", items)
	}
	if items[1].Name != UnitUnspecified || items[1].Unit != UnitUnspecified {
		t.Fatalf("expected sentinels for bare id record, got %+v", items[1])
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 validation errors, got %d", len(errs))
	}
}
