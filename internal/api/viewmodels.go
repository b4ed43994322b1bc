package api

import (
	"time"

	"github.com/lox/airdash/internal/dataset"
	"github.com/lox/airdash/internal/imagegen"
	"github.com/lox/airdash/internal/models"
)

// IndexData is everything the dashboard page renders.
type IndexData struct {
	Stations []StationOption
	Selected string
	File     string
	Rows     int
	Header   []string
	Preview  [][]string
	Stats    []dataset.ColumnStats
	Band     imagegen.Band
	PM25Mean *float64
	Gallery  *Gallery
	LoadedAt time.Time
}

type StationOption struct {
	Name     string
	Selected bool
}

type ReportErrorData struct {
	Station string
	URL     string
	Error   string
}

type StationInfo struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
	File  string `json:"file"`
	Rows  int    `json:"rows"`
}

type StationPreview struct {
	Station string        `json:"station"`
	File    string        `json:"file"`
	Rows    int           `json:"rows"`
	Columns []string      `json:"columns"`
	Preview []dataset.Row `json:"preview"`
}

type StationStats struct {
	Station string                `json:"station"`
	Stats   []dataset.ColumnStats `json:"stats"`
}

type ReportText struct {
	Station string `json:"station"`
	URL     string `json:"url"`
	Text    string `json:"text"`
}

type LoadRunView struct {
	ID         int64      `json:"id"`
	DataDir    string     `json:"data_dir"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Tables     int64      `json:"tables"`
	Rows       int64      `json:"rows"`
	Success    bool       `json:"success"`
	Error      string     `json:"error,omitempty"`
}

type DatasetFileView struct {
	Position int    `json:"position"`
	File     string `json:"file"`
	Station  string `json:"station"`
	Rows     int    `json:"rows"`
}

type ReportFetchView struct {
	Station    string    `json:"station"`
	FetchedAt  time.Time `json:"fetched_at"`
	Status     int64     `json:"status,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

type LoadsResponse struct {
	Run           *LoadRunView      `json:"run"`
	Files         []DatasetFileView `json:"files"`
	ReportFetches []ReportFetchView `json:"report_fetches"`
}

type HealthStatus struct {
	Status   string    `json:"status"`
	Stations int       `json:"stations"`
	LoadedAt time.Time `json:"loaded_at"`
}

func newLoadRunView(r *models.LoadRun) *LoadRunView {
	v := &LoadRunView{
		ID:        r.ID,
		DataDir:   r.DataDir,
		StartedAt: r.StartedAt,
		Tables:    r.TableCount.Int64,
		Rows:      r.RowCount.Int64,
		Success:   r.Success,
		Error:     r.ErrorMessage.String,
	}
	if r.FinishedAt.Valid {
		t := r.FinishedAt.Time
		v.FinishedAt = &t
	}
	return v
}
