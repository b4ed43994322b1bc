package models

import (
	"database/sql"
	"time"
)

// LoadRun is one audited construction of the dataset catalog.
type LoadRun struct {
	ID           int64
	DataDir      string
	StartedAt    time.Time
	FinishedAt   sql.NullTime
	TableCount   sql.NullInt64
	RowCount     sql.NullInt64
	Success      bool
	ErrorMessage sql.NullString
}

// DatasetFile records where a station's table landed in the registry.
type DatasetFile struct {
	ID       int64
	RunID    int64
	Position int
	FileName string
	Station  string
	RowCount int
}

// ReportFetch is one attempt to fetch a station's remote summary report.
type ReportFetch struct {
	ID           int64
	Station      string
	URL          string
	FetchedAt    time.Time
	HTTPStatus   sql.NullInt64
	SizeBytes    sql.NullInt64
	DurationMS   int64
	Success      bool
	ErrorMessage sql.NullString
}
