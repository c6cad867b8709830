// Package report renders xlsx exports of the narcotic journal and the stock list.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"

	"github.com/Spok95/clinic-stock/internal/client"
)

const (
	JournalSheet = "Журнал"
	StockSheet   = "Остатки"
)

// NarcoticJournal writes one row per journal entry, quantities as positive numbers.
func NarcoticJournal(logs []client.NarcoticLog, loc *time.Location) ([]byte, error) {
	header := []any{"Дата", "Препарат", "Количество", "Ед.", "Пациент", "Причина", "Сотрудник"}
	rows := make([][]any, 0, len(logs))
	for _, l := range logs {
		qty := l.Delta
		if qty < 0 {
			qty = -qty
		}
		rows = append(rows, []any{
			l.CreatedAt.In(loc).Format("02.01.2006 15:04"),
			l.Material.Name,
			qty,
			l.Material.Unit.Label(language.Russian),
			l.PatientInfo,
			l.Reason,
			l.User.DisplayName(),
		})
	}
	return build(JournalSheet, header, rows, []float64{18, 28, 12, 8, 36, 36, 24})
}

// Stock writes the catalog with totals and a low-stock flag.
func Stock(mats []client.Material) ([]byte, error) {
	header := []any{"ID", "Материал", "Ед.", "Остаток", "Минимум", "Наркотическое", "Мало"}
	rows := make([][]any, 0, len(mats))
	for _, m := range mats {
		rows = append(rows, []any{
			m.ID,
			m.Name,
			m.Unit.Label(language.Russian),
			m.TotalQuantity,
			m.MinQuantity,
			yesNo(m.IsNarcotic),
			yesNo(m.LowStock()),
		})
	}
	return build(StockSheet, header, rows, []float64{8, 32, 8, 12, 12, 14, 8})
}

func yesNo(b bool) string {
	if b {
		return "да"
	}
	return ""
}

func build(sheet string, header []any, rows [][]any, widths []float64) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName builds "<prefix>_20060102_150405.xlsx".
func FileName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, now.Format("20060102_150405"))
}
