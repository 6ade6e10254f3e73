// Package export writes computed tables as xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/okian/fieldtrials/internal/domain/headtohead"
	"github.com/okian/fieldtrials/internal/domain/scoring"
	"github.com/xuri/excelize/v2"
)

// ContentType is the media type of every workbook written here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names.
const (
	SheetDecisionMatrix = "Matriz de Decisao"
	SheetHeadToHead     = "Head to Head"
	SheetSummary        = "Resumo"
)

// absent is written where a statistic is undefined.
const absent = "-"

// DecisionMatrix writes ranked score rows to w.
func DecisionMatrix(w io.Writer, rows []scoring.Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetDecisionMatrix); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	headers := []string{
		"Rank", "Híbrido", "Média (sc)", "Maior (sc)", "Menor (sc)",
		"Média Normalizada", "Maior Normalizada", "Menor Normalizada", "Pontuação Final",
	}
	data := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		data = append(data, []interface{}{
			r.Rank, r.GroupID, r.Mean, r.Max, r.Min,
			r.NormalizedMean, r.NormalizedMax, r.NormalizedMin, r.FinalScore,
		})
	}
	if err := writeTable(f, SheetDecisionMatrix, headers, data); err != nil {
		return err
	}
	return f.Write(w)
}

// HeadToHead writes the paired rows and the summary on separate sheets.
func HeadToHead(w io.Writer, rows []headtohead.Row, sum headtohead.Summary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetHeadToHead); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	headers := []string{"Local", sum.Head, sum.Check, "Diferença", "Resultado"}
	data := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		data = append(data, []interface{}{r.LocationID, r.HeadMean, r.CheckMean, r.Difference, string(r.Outcome)})
	}
	if err := writeTable(f, SheetHeadToHead, headers, data); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Head", sum.Head},
		{"Check", sum.Check},
		{"Limite de empate", sum.Threshold},
		{"Locais comparados", sum.Total},
		{"Vitórias", sum.Wins},
		{"Empates", sum.Ties},
		{"Derrotas", sum.Losses},
		{"Maior vitória", optional(sum.BiggestWin)},
		{"Vitória média", optional(sum.MeanWin)},
		{"Maior derrota", optional(sum.BiggestLoss)},
		{"Derrota média", optional(sum.MeanLoss)},
	}
	if err := writeTable(f, SheetSummary, []string{"Indicador", "Valor"}, summary); err != nil {
		return err
	}
	return f.Write(w)
}

func writeTable(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header %s: %w", cell, err)
		}
	}
	if len(headers) > 0 {
		last, _ := excelize.ColumnNumberToName(len(headers))
		if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
			return err
		}
	}
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", r+2, err)
		}
	}
	return nil
}

func optional(v *float64) interface{} {
	if v == nil {
		return absent
	}
	return *v
}
