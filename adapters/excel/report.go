package excel

import (
	"fmt"
	"log"
	"sync"

	"github.com/xuri/excelize/v2"

	"goanam/domain/anamorphosis"
)

// ReportWriter writes calibration curve panels and model summaries into an
// Excel workbook, one sheet per panel. It implements ports.ReportSink.
type ReportWriter struct {
	mu       sync.Mutex
	filePath string
	file     *excelize.File
	sheets   int
}

// NewReportWriter creates a workbook writer targeting filePath.
func NewReportWriter(filePath string) *ReportWriter {
	return &ReportWriter{
		filePath: filePath,
		file:     excelize.NewFile(),
	}
}

// WritePanel writes one curve panel as a sheet: Gaussian grid in column A,
// one column per labeled series.
func (w *ReportWriter) WritePanel(panel anamorphosis.CurvePanel) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sheets++
	sheet := fmt.Sprintf("panel_%d", w.sheets)
	if _, err := w.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	if err := w.file.SetCellValue(sheet, "A1", panel.Title); err != nil {
		return err
	}
	if err := w.file.SetCellValue(sheet, "A2", "gaussian"); err != nil {
		return err
	}
	for col, series := range panel.Series {
		cell, _ := excelize.CoordinatesToCellName(col+2, 2)
		if err := w.file.SetCellValue(sheet, cell, series.Label); err != nil {
			return err
		}
	}

	for row, g := range panel.Gauss {
		cell, _ := excelize.CoordinatesToCellName(1, row+3)
		if err := w.file.SetCellValue(sheet, cell, g); err != nil {
			return err
		}
		for col, series := range panel.Series {
			if row >= len(series.Values) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+2, row+3)
			if err := w.file.SetCellValue(sheet, cell, series.Values[row]); err != nil {
				return err
			}
		}
	}

	log.Printf("[ReportWriter] panel %q written to sheet %s (%d series)",
		panel.Title, sheet, len(panel.Series))
	return nil
}

// WriteModelSummary writes the fit summary of one model as a key/value sheet.
func (w *ReportWriter) WriteModelSummary(model anamorphosis.Model) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	sheet := fmt.Sprintf("model_%s", model.Variable)
	if _, err := w.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"model_id", model.ID.String()},
		{"variable", model.Variable.String()},
		{"order", model.Order},
		{"table_rows", model.Table.Len()},
		{"mean", model.Diagnostics.Mean},
		{"empirical_variance", model.Diagnostics.EmpiricalVariance},
		{"pci_variance", model.Diagnostics.PCIVariance},
		{"variance_gap", model.Diagnostics.VarianceGap},
		{"authorized_lower", model.Anchors.ZAMin},
		{"authorized_upper", model.Anchors.ZAMax},
		{"practical_lower", model.Anchors.ZPMin},
		{"practical_upper", model.Anchors.ZPMax},
	}
	for i, kv := range rows {
		keyCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valCell, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := w.file.SetCellValue(sheet, keyCell, kv[0]); err != nil {
			return err
		}
		if err := w.file.SetCellValue(sheet, valCell, kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// Flush saves the workbook to disk.
func (w *ReportWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Drop the default sheet so reports open on real content.
	if w.sheets > 0 {
		w.file.DeleteSheet("Sheet1")
	}
	if err := w.file.SaveAs(w.filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	log.Printf("[ReportWriter] workbook saved: %s", w.filePath)
	return nil
}
