package sampletrials

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetTrials is the single sheet of a generated workbook.
const SheetTrials = "Ensaios"

// Headers are the spreadsheet column names used by trial exports.
var Headers = []string{
	"hibrido", "cidadeUF", "estado", "macroRegiao", "microRegiao",
	"prod_media_corr_sc", "populacao", "latitude", "longitude",
	"conjuntaGeral", "epoca", "investimento", "time", "umidade",
}

// WriteWorkbook writes trials as an xlsx workbook.
func WriteWorkbook(w io.Writer, trials []Trial) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetTrials); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetTrials, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, t := range trials {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell for row %d: %w", i, err)
		}
		row := []interface{}{
			t.Hybrid, t.City, t.State, t.RegionMacro, t.RegionMicro,
			t.Productivity, t.Population, t.Latitude, t.Longitude,
			t.TrialType, t.Epoch, t.Investment, t.Team, t.Humidity,
		}
		if err := f.SetSheetRow(SheetTrials, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
