package requests

import (
	"errors"
	"testing"

	"github.com/Spok95/clinic-stock/internal/vocab"
)

func TestValidateItems(t *testing.T) {
	if err := ValidateItems(nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty: err = %v", err)
	}

	items := []Item{{MaterialName: " Gauze ", Quantity: 5, Unit: vocab.UnitPack}}
	if err := ValidateItems(items); err != nil {
		t.Fatal(err)
	}
	if items[0].MaterialName != "Gauze" {
		t.Fatalf("name not trimmed: %q", items[0].MaterialName)
	}

	bad := [][]Item{
		{{MaterialName: "", Quantity: 1, Unit: vocab.UnitPiece}},
		{{MaterialName: "x", Quantity: 0, Unit: vocab.UnitPiece}},
		{{MaterialName: "x", Quantity: 1, Unit: "barrel"}},
		{{MaterialName: "x", Quantity: 0.0004, Unit: vocab.UnitGram}},
		{{MaterialName: "x", Quantity: 2e11, Unit: vocab.UnitPiece}},
		{{MaterialName: "ok", Quantity: 1, Unit: vocab.UnitPiece}, {MaterialName: "y", Quantity: -2, Unit: vocab.UnitGram}},
	}
	for _, items := range bad {
		if err := ValidateItems(items); !errors.Is(err, ErrInvalid) {
			t.Errorf("ValidateItems(%+v) = %v, want ErrInvalid", items, err)
		}
	}
}
