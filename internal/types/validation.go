package types

import (
	"fmt"
	"unicode/utf8"
)

// Bounds enforced client-side before any network call. The server enforces
// the same limits; failing fast here saves the round-trip.
const (
	MinQuantity = 1
	MaxQuantity = 99
	MaxNotesLen = 500
)

// ValidateProductID rejects non-positive product identifiers.
func ValidateProductID(id int) error {
	if id <= 0 {
		return fmt.Errorf("product_id must be a positive integer, got %d", id)
	}
	return nil
}

// ValidateQuantity enforces the 1..99 range.
func ValidateQuantity(q int) error {
	if q < MinQuantity || q > MaxQuantity {
		return fmt.Errorf("quantity must be between %d and %d, got %d", MinQuantity, MaxQuantity, q)
	}
	return nil
}

// ValidateNotes bounds free-text notes at 500 characters.
func ValidateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > MaxNotesLen {
		return fmt.Errorf("notes must be at most %d characters", MaxNotesLen)
	}
	return nil
}

// NormalizeExtras coerces caller-supplied extras into the server's expected
// shape. Entries with a non-positive ingredient id or an out-of-range
// quantity are dropped rather than rejected; the result is never nil so the
// field serializes as an empty array.
func NormalizeExtras(extras []ExtraSelection) []ExtraSelection {
	out := make([]ExtraSelection, 0, len(extras))
	for _, e := range extras {
		if e.IngredientID <= 0 {
			continue
		}
		if e.Quantity < MinQuantity || e.Quantity > MaxQuantity {
			continue
		}
		out = append(out, e)
	}
	return out
}

// NormalizeBaseModifications drops entries with a non-positive ingredient id
// or a zero delta. Returns nil when nothing survives, so the optional field
// is omitted entirely.
func NormalizeBaseModifications(mods []BaseModification) []BaseModification {
	var out []BaseModification
	for _, m := range mods {
		if m.IngredientID <= 0 || m.Delta == 0 {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ValidateUpdates checks the optional fields of an item update.
func ValidateUpdates(u ItemUpdates) error {
	if u.Quantity != nil {
		if err := ValidateQuantity(*u.Quantity); err != nil {
			return err
		}
	}
	if u.Notes != nil {
		if err := ValidateNotes(*u.Notes); err != nil {
			return err
		}
	}
	return nil
}

// ValidateItemID rejects non-positive cart item identifiers.
func ValidateItemID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("item id must be a positive integer, got %d", id)
	}
	return nil
}
