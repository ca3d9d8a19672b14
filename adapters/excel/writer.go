package excel

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gocredit/internal"
	"gocredit/internal/errors"
	"gocredit/ports"
)

const maxSheetName = 31

// ReportWriter saves every report section as its own worksheet
type ReportWriter struct {
	path string
	log  *internal.Logger
}

// NewReportWriter creates a writer targeting an .xlsx path
func NewReportWriter(path string, log *internal.Logger) *ReportWriter {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &ReportWriter{path: path, log: log.With("component", "excel_writer")}
}

// WriteReport implements ports.ReportWriter. Cells that parse as numbers are
// stored as numbers so the sheet stays sortable.
func (w *ReportWriter) WriteReport(ctx context.Context, report ports.Report) error {
	if len(report.Sections) == 0 {
		return errors.InvalidInput("report has no sections")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{Title: report.Title, Creator: "gocredit"}); err != nil {
		return errors.Wrap(err, "failed to set workbook properties")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}

	used := make(map[string]bool)
	for i, section := range report.Sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		sheet := sheetName(section.Name, used)
		if i == 0 {
			err = f.SetSheetName(f.GetSheetName(0), sheet)
		} else {
			_, err = f.NewSheet(sheet)
		}
		if err != nil {
			return errors.Wrapf(err, "failed to create sheet %s", sheet)
		}
		if err := writeSection(f, sheet, section, bold); err != nil {
			return err
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return errors.Wrapf(err, "failed to save %s", w.path)
	}
	w.log.Info("wrote %d sheets to %s", len(report.Sections), w.path)
	return nil
}

func writeSection(f *excelize.File, sheet string, section ports.Section, headerStyle int) error {
	if len(section.Header) > 0 {
		header := make([]interface{}, len(section.Header))
		for j, h := range section.Header {
			header[j] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return errors.Wrapf(err, "sheet %s header", sheet)
		}
		if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
			return errors.Wrapf(err, "sheet %s header style", sheet)
		}
	}
	for i, row := range section.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				cells[j] = n
			} else {
				cells[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return errors.Wrapf(err, "sheet %s row %d", sheet, i+1)
		}
	}
	return nil
}

// sheetName strips characters Excel forbids, truncates to 31 runes and
// suffixes duplicates
func sheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" {
		clean = "Sheet"
	}
	base := truncate(clean, maxSheetName)
	candidate := base
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncate(clean, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
