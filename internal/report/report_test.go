package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/clinic-stock/internal/client"
	"github.com/Spok95/clinic-stock/internal/vocab"
)

func open(t *testing.T, raw []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestNarcoticJournal(t *testing.T) {
	logs := []client.NarcoticLog{{
		PatientInfo: "Ivanov I.I., card 1234",
		Reason:      "post-op pain",
		Delta:       -2,
		CreatedAt:   time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC),
		Material:    client.Material{Name: "Morphine 1%", Unit: vocab.UnitAmpoule},
		User:        client.User{Email: "nurse@clinic.example", FullName: "Anna Petrova"},
	}}
	raw, err := NarcoticJournal(logs, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := open(t, raw).GetRows(JournalSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
	want := []string{"05.03.2026 09:30", "Morphine 1%", "2", "амп", "Ivanov I.I., card 1234", "post-op pain", "Anna Petrova"}
	for i, w := range want {
		if rows[1][i] != w {
			t.Errorf("col %d = %q, want %q", i, rows[1][i], w)
		}
	}
}

func TestStock(t *testing.T) {
	mats := []client.Material{
		{ID: 1, Name: "Saline 500ml", Unit: vocab.UnitMilliliter, TotalQuantity: 3, MinQuantity: 5},
		{ID: 2, Name: "Morphine 1%", Unit: vocab.UnitAmpoule, TotalQuantity: 10, MinQuantity: 2, IsNarcotic: true},
	}
	raw, err := Stock(mats)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := open(t, raw).GetRows(StockSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[1][6] != "да" {
		t.Errorf("saline should be flagged low: %v", rows[1])
	}
	if rows[2][5] != "да" {
		t.Errorf("morphine should be flagged narcotic: %v", rows[2])
	}
}

func TestFileName(t *testing.T) {
	got := FileName("journal", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if got != "journal_20260102_030405.xlsx" {
		t.Fatalf("FileName = %q", got)
	}
}
