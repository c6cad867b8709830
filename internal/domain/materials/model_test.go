package materials

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Spok95/clinic-stock/internal/vocab"
)

func TestInputNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		ok   bool
	}{
		{"valid", Input{Name: "  Saline 500ml ", Unit: vocab.UnitMilliliter, MinQuantity: 5}, true},
		{"blank name", Input{Name: "  ", Unit: vocab.UnitPiece}, false},
		{"bad unit", Input{Name: "Gauze", Unit: "roll"}, false},
		{"negative min", Input{Name: "Gauze", Unit: vocab.UnitPack, MinQuantity: -1}, false},
		{"negative initial", Input{Name: "Gauze", Unit: vocab.UnitPack, InitialQuantity: -3}, false},
		{"min finer than column", Input{Name: "Gauze", Unit: vocab.UnitGram, MinQuantity: 0.0005}, false},
		{"initial overflows column", Input{Name: "Gauze", Unit: vocab.UnitGram, InitialQuantity: 1e12}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.in
			err := in.Normalize()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
			if tc.ok && in.Name != "Saline 500ml" {
				t.Fatalf("name not trimmed: %q", in.Name)
			}
		})
	}
}

func TestListWindow(t *testing.T) {
	cases := []struct {
		p             ListParams
		offset, limit int
	}{
		{ListParams{}, 0, 100},
		{ListParams{Skip: 20, Limit: 10}, 20, 10},
		{ListParams{Skip: -5, Limit: 10000}, 0, 100},
	}
	for _, tc := range cases {
		o, l := tc.p.Window()
		if o != tc.offset || l != tc.limit {
			t.Errorf("%+v.Window() = %d,%d want %d,%d", tc.p, o, l, tc.offset, tc.limit)
		}
	}
}

func TestConstraintCodes(t *testing.T) {
	fk := fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503"})
	if !isForeignKeyViolation(fk) || isUniqueViolation(fk) {
		t.Fatal("23503 must read as a foreign key violation only")
	}
	if isForeignKeyViolation(&pgconn.PgError{Code: "23505"}) || isForeignKeyViolation(nil) {
		t.Fatal("only 23503 is a foreign key violation")
	}
}
