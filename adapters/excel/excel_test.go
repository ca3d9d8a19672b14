package excel

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gocredit/domain/core"
	"gocredit/domain/dataset"
	"gocredit/ports"
)

var (
	_ ports.TableReader  = (*DataReader)(nil)
	_ ports.ReportWriter = (*ReportWriter)(nil)
)

func TestReadTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.csv")
	body := "default_flag, income ,region,rate\n1,\"1,200.50\",north,12%\n0,900,south,\n0,(50),east,3%\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	tbl, err := NewDataReader(DefaultExcelConfig(), nil).ReadTable(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"default_flag", "income", "region", "rate"}, tbl.Names())
	assert.Equal(t, 3, tbl.Len())

	income, err := tbl.Numeric("income")
	require.NoError(t, err)
	assert.Equal(t, []float64{1200.5, 900, -50}, income)

	region, err := tbl.Column("region")
	require.NoError(t, err)
	assert.Equal(t, dataset.KindText, region.Kind)

	rate, err := tbl.Numeric("rate")
	require.NoError(t, err)
	assert.InDelta(t, 0.12, rate[0], 1e-12)
	assert.True(t, math.IsNaN(rate[1]))
}

func TestReadTableXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"pd", "default_flag"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{0.05, 0}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{0.4, 1}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := NewDataReader(DefaultExcelConfig(), nil).ReadTable(context.Background(), path)
	require.NoError(t, err)
	labels, err := tbl.Labels("default_flag")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, labels)
}

func TestReadTableErrors(t *testing.T) {
	dir := t.TempDir()
	r := NewDataReader(DefaultExcelConfig(), nil)

	_, err := r.ReadTable(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	headerOnly := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(headerOnly, []byte("a,b\n"), 0o600))
	_, err = r.ReadTable(context.Background(), headerOnly)
	assert.Error(t, err)

	dup := filepath.Join(dir, "dup.csv")
	require.NoError(t, os.WriteFile(dup, []byte("a,a\n1,2\n"), 0o600))
	_, err = r.ReadTable(context.Background(), dup)
	assert.True(t, core.IsInvalidColumnError(err))

	txt := filepath.Join(dir, "book.txt")
	require.NoError(t, os.WriteFile(txt, []byte("a\n1\n"), 0o600))
	_, err = r.ReadTable(context.Background(), txt)
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	report := ports.Report{
		Title: "Validation",
		Sections: []ports.Section{
			{Name: "Binomial", Header: []string{"grade", "verdict"}, Rows: [][]string{{"1", "Target Value Correct"}}},
			{Name: "binomial", Header: []string{"x"}, Rows: [][]string{{"0.25"}}},
			{Name: "PSI/SSI: a very long section name indeed", Header: []string{"bin"}},
		},
	}
	require.NoError(t, NewReportWriter(path, nil).WriteReport(context.Background(), report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Binomial", "binomial (2)", "PSI_SSI_ a very long section na"}, f.GetSheetList())

	v, err := f.GetCellValue("Binomial", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Target Value Correct", v)

	_, err = f.GetCellType("binomial (2)", "A2")
	require.NoError(t, err)

	err = NewReportWriter(path, nil).WriteReport(context.Background(), ports.Report{})
	assert.Error(t, err)
}
