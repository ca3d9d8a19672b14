package ports

import (
	"context"

	"gocredit/domain/dataset"
)

// TableReader loads a tabular source into an in-memory table. Columns whose
// values all parse as numbers become numeric; the rest stay text.
type TableReader interface {
	ReadTable(ctx context.Context, path string) (*dataset.Table, error)
}
