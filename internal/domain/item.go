package domain

import (
	"encoding/json"
	"fmt"
	"log"
)

// UnitUnspecified is the sentinel used when an input record omits its
// name or household unit.
const UnitUnspecified = "unspecified"

// Item is one validated food record. Immutable after validation.
type Item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// ProcessedRecord is an Item merged with its classification decision.
// This is the unit persisted to the output artifact.
type ProcessedRecord struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Decision bool   `json:"decision"`
}

// RunReport is written exactly once at the end of a run.
type RunReport struct {
	TotalAnalyzed int               `json:"total_analyzed"`
	TotalTrue     int               `json:"total_true"`
	TotalFalse    int               `json:"total_false"`
	Records       []ProcessedRecord `json:"records"`
}

// ValidationError describes one rejected input record.
type ValidationError struct {
	Index int
	Field string
	Cause string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("item at index %d: invalid field %q: %s", e.Index, e.Field, e.Cause)
}

type rawItem struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
	Unit *string `json:"unit"`
}

// ValidateItems normalizes raw input records into typed Items. Records with
// a missing or malformed id are rejected with a logged warning; a missing
// name or unit is tolerated and mapped to the "unspecified" sentinel.
// Rejection never aborts the batch.
func ValidateItems(raw []json.RawMessage) ([]Item, []ValidationError) {
	var items []Item
	var errs []ValidationError

	for i, data := range raw {
		var r rawItem
		if err := json.Unmarshal(data, &r); err != nil {
			field := "(record)"
			if typeErr, ok := err.(*json.UnmarshalTypeError); ok && typeErr.Field != "" {
				field = typeErr.Field
			}
			verr := ValidationError{Index: i, Field: field, Cause: err.Error()}
			log.Printf("input validation: skipping record index=%d field=%s err=%v", i, field, err)
			errs = append(errs, verr)
			continue
		}
		if r.ID == nil {
			verr := ValidationError{Index: i, Field: "id", Cause: "missing"}
			log.Printf("input validation: skipping record index=%d field=id err=missing", i)
			errs = append(errs, verr)
			continue
		}

		item := Item{ID: *r.ID, Name: UnitUnspecified, Unit: UnitUnspecified}
		if r.Name != nil {
			item.Name = *r.Name
		}
		if r.Unit != nil {
			item.Unit = *r.Unit
		}
		items = append(items, item)
	}

	return items, errs
}
