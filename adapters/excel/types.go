package excel

// ExcelData holds a sheet as trimmed strings, header row first
type ExcelData struct {
	Headers []string   // Column headers
	Rows    [][]string // Data rows, padded to len(Headers)
}

// Column returns the values of column j
func (d *ExcelData) Column(j int) []string {
	out := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[j]
	}
	return out
}
