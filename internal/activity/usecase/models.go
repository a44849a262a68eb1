package usecase

import (
	"github.com/shandysiswandi/exportviz/internal/activity/dataset"
)

type IngestResult struct {
	SessionID string
	Revision  int64
	Files     int
	Rows      int
	Columns   int
	Options   []dataset.Option
}

type OptionsResult struct {
	SessionID string
	Revision  int64
	Options   []dataset.Option
}

type ExportResult struct {
	SessionID string
	Filename  string
	Content   []byte
}

type CatalogResult struct {
	GroupBy   []dataset.Option
	Functions []dataset.Option
}
