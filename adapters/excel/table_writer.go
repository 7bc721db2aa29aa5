package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"fam450/domain/sampling"
	"fam450/ports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TableWriter exports result tables as an XLSX workbook, one sheet per table
type TableWriter struct{}

var _ ports.TableExporter = (*TableWriter)(nil)

// NewTableWriter creates an XLSX table writer
func NewTableWriter() *TableWriter {
	return &TableWriter{}
}

func (w *TableWriter) ContentType() string { return xlsxContentType }

func (w *TableWriter) Extension() string { return ".xlsx" }

// Export writes the workbook. Attainable cells are numbers; the rest hold sampling.NotAttainableMarker.
func (w *TableWriter) Export(out io.Writer, tables ...*sampling.ResultTable) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, table := range tables {
		sheet := SheetName(table)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		if err := writeSheet(f, sheet, table, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SheetName is "Less than" or "Greater than".
func SheetName(table *sampling.ResultTable) string {
	switch table.Direction {
	case sampling.Greater:
		return "Greater than"
	default:
		return "Less than"
	}
}

func writeSheet(f *excelize.File, sheet string, table *sampling.ResultTable, headerStyle int) error {
	header := make([]interface{}, 0, len(table.Rates)+1)
	header = append(header, table.RowLabel())
	for _, label := range table.ColumnLabels() {
		header = append(header, label)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", "A", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", lastCol, 32); err != nil {
		return err
	}

	for i, n := range table.SampleSizes {
		row := make([]interface{}, 0, len(header))
		row = append(row, n)
		for _, c := range table.Cells[i] {
			if c.Attainable {
				row = append(row, c.K)
			} else {
				row = append(row, sampling.NotAttainableMarker)
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return nil
}

// CSVWriter exports result tables as CSV. Each table is preceded by its title row and
// followed by an empty line.
type CSVWriter struct{}

var _ ports.TableExporter = (*CSVWriter)(nil)

// NewCSVWriter creates a CSV table writer
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

func (w *CSVWriter) ContentType() string { return "text/csv" }

func (w *CSVWriter) Extension() string { return ".csv" }

func (w *CSVWriter) Export(out io.Writer, tables ...*sampling.ResultTable) error {
	cw := csv.NewWriter(out)
	for i, table := range tables {
		if i > 0 {
			if err := cw.Write([]string{}); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{table.Title(), "ovr=" + strconv.FormatFloat(table.OVR, 'g', -1, 64)}); err != nil {
			return err
		}
		if err := cw.WriteAll(table.Rows()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
