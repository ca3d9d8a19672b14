package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"gocredit/ports"
)

// Console implements ports.ReportWriter on a terminal
type Console struct {
	out  io.Writer
	json bool
}

// NewConsole prints tables to stdout
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter prints to w, as JSON when asJSON is set
func NewConsoleWriter(w io.Writer, asJSON bool) *Console {
	return &Console{out: w, json: asJSON}
}

// WriteReport renders one table per section under the report title
func (c *Console) WriteReport(ctx context.Context, report ports.Report) error {
	if c.json {
		return c.writeJSON(report)
	}
	fmt.Fprintf(c.out, "\n%s\n%s\n", report.Title, strings.Repeat("=", len(report.Title)))
	for _, section := range report.Sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "\n%s\n", section.Name)
		if err := c.printTable(section); err != nil {
			return fmt.Errorf("section %s: %w", section.Name, err)
		}
	}
	return nil
}

func (c *Console) printTable(section ports.Section) error {
	table := tablewriter.NewWriter(c.out)
	if len(section.Header) > 0 {
		table.Header(toAny(section.Header)...)
	}
	for _, row := range section.Rows {
		if err := table.Append(toAny(row)...); err != nil {
			return err
		}
	}
	return table.Render()
}

type jsonSection struct {
	Name string              `json:"name"`
	Rows []map[string]string `json:"rows"`
}

// writeJSON keys each row by header so consumers need not track column order
func (c *Console) writeJSON(report ports.Report) error {
	doc := struct {
		Title    string        `json:"title"`
		Sections []jsonSection `json:"sections"`
	}{Title: report.Title}
	for _, s := range report.Sections {
		js := jsonSection{Name: s.Name, Rows: make([]map[string]string, 0, len(s.Rows))}
		for _, row := range s.Rows {
			m := make(map[string]string, len(row))
			for j, v := range row {
				key := fmt.Sprintf("col%d", j+1)
				if j < len(s.Header) {
					key = s.Header[j]
				}
				m[key] = v
			}
			js.Rows = append(js.Rows, m)
		}
		doc.Sections = append(doc.Sections, js)
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
