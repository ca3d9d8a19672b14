package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gocredit/adapters/datareadiness/coercer"
	"gocredit/domain/dataset"
	"gocredit/internal"
	"gocredit/internal/errors"
)

// DataReader handles reading Excel and CSV files into tables
type DataReader struct {
	config  ExcelConfig
	coercer *coercer.TypeCoercer
	log     *internal.Logger
}

// NewDataReader creates a reader for both Excel and CSV files
func NewDataReader(config ExcelConfig, log *internal.Logger) *DataReader {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &DataReader{
		config:  config,
		coercer: coercer.NewTypeCoercer(config.CoercionConfig),
		log:     log.With("component", "excel_reader"),
	}
}

// ReadTable loads path and types each column: a column whose non-empty
// cells all parse as numbers is numeric with blanks as NaN, any other
// column is text.
func (r *DataReader) ReadTable(ctx context.Context, path string) (*dataset.Table, error) {
	data, err := r.ReadData(ctx, path)
	if err != nil {
		return nil, err
	}
	return r.ToTable(data)
}

// ReadData reads data from Excel or CSV files into raw string rows
func (r *DataReader) ReadData(ctx context.Context, path string) (*ExcelData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "input file %s", path)
	}

	start := time.Now()
	var rows [][]string
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = r.readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = r.readExcel(path)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type %q", ext))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s must have a header row and at least one data row", path))
	}

	data := processRows(rows)
	r.log.Debug("read %s in %.2fms (%d columns, %d rows)", path,
		float64(time.Since(start).Nanoseconds())/1e6, len(data.Headers), len(data.Rows))
	return data, nil
}

func (r *DataReader) readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheet)
	}
	return rows, nil
}

func (r *DataReader) readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV file")
	}
	return rows, nil
}

// processRows trims cells and pads short rows; GetRows drops trailing blanks
func processRows(rows [][]string) *ExcelData {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	data := &ExcelData{Headers: headers, Rows: make([][]string, 0, len(rows)-1)}
	for _, raw := range rows[1:] {
		row := make([]string, len(headers))
		for j := range headers {
			if j < len(raw) {
				row[j] = strings.TrimSpace(raw[j])
			}
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// ToTable types every column of data and assembles a table
func (r *DataReader) ToTable(data *ExcelData) (*dataset.Table, error) {
	columns := make([]dataset.Column, len(data.Headers))
	numeric := 0
	for j, name := range data.Headers {
		columns[j] = r.inferColumn(name, data.Column(j))
		if columns[j].Kind == dataset.KindNumeric {
			numeric++
		}
	}
	r.log.Debug("typed %d of %d columns as numeric", numeric, len(columns))

	t, err := dataset.NewTable(columns...)
	if err != nil {
		return nil, errors.InvalidColumn("header", err)
	}
	return t, nil
}

func (r *DataReader) inferColumn(name string, values []string) dataset.Column {
	parsed := make([]float64, len(values))
	seen := 0
	for i, v := range values {
		if v == "" {
			parsed[i] = math.NaN()
			continue
		}
		f, ok := r.coercer.ParseNumeric(v)
		if !ok {
			return dataset.NewTextColumn(name, values)
		}
		parsed[i] = f
		seen++
	}
	if seen == 0 {
		return dataset.NewTextColumn(name, values)
	}
	return dataset.NewNumericColumn(name, parsed)
}
