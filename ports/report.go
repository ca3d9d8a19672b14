package ports

import (
	"context"
)

// Section is one titled table of a report
type Section struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Report is a presentation-neutral bundle of result tables
type Report struct {
	Title    string
	Sections []Section
}

// ReportWriter renders a report to some destination
type ReportWriter interface {
	WriteReport(ctx context.Context, report Report) error
}
