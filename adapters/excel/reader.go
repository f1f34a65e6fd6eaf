package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DataReader reads raw sample values and optional declustering weights from
// Excel or CSV files.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// Columns holds one variable's samples and weights. Weights is nil when the
// file carries no weight column.
type Columns struct {
	Values  []float64
	Weights []float64
}

// ReadColumns reads the named value column and, when weightColumn is
// non-empty, the paired weight column. The first row is the header.
func (r *DataReader) ReadColumns(valueColumn, weightColumn string) (*Columns, error) {
	log.Printf("[DataReader] reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}

	return r.extractColumns(rows, valueColumn, weightColumn)
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	log.Printf("[DataReader] Sheet1 read in %.2fms (%d rows)",
		float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	startTime := time.Now()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) extractColumns(rows [][]string, valueColumn, weightColumn string) (*Columns, error) {
	header := rows[0]
	valueIdx, weightIdx := -1, -1
	for i, h := range header {
		name := strings.TrimSpace(h)
		if strings.EqualFold(name, valueColumn) {
			valueIdx = i
		}
		if weightColumn != "" && strings.EqualFold(name, weightColumn) {
			weightIdx = i
		}
	}
	if valueIdx < 0 {
		return nil, fmt.Errorf("value column %q not found in header", valueColumn)
	}
	if weightColumn != "" && weightIdx < 0 {
		return nil, fmt.Errorf("weight column %q not found in header", weightColumn)
	}

	cols := &Columns{}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if valueIdx >= len(row) || strings.TrimSpace(row[valueIdx]) == "" {
			continue // skip blank cells
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[valueIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad value %q: %w", i+1, row[valueIdx], err)
		}
		w := 1.0
		if weightIdx >= 0 {
			if weightIdx >= len(row) || strings.TrimSpace(row[weightIdx]) == "" {
				continue
			}
			w, err = strconv.ParseFloat(strings.TrimSpace(row[weightIdx]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad weight %q: %w", i+1, row[weightIdx], err)
			}
		}
		cols.Values = append(cols.Values, v)
		if weightIdx >= 0 {
			cols.Weights = append(cols.Weights, w)
		}
	}

	if len(cols.Values) == 0 {
		return nil, fmt.Errorf("no usable rows in column %q", valueColumn)
	}
	log.Printf("[DataReader] %s processed (%d samples, weighted=%t)",
		strings.ToUpper(r.fileType), len(cols.Values), cols.Weights != nil)
	return cols, nil
}
