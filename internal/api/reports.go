package api

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strconv"

	"github.com/lox/airdash/internal/metrics"
	"github.com/lox/airdash/internal/models"
	"github.com/lox/airdash/internal/report"
)

// fetchReport fetches the summary report for station once and records the
// attempt. The result is never cached.
func (s *Server) fetchReport(ctx context.Context, station string) (*report.Report, error) {
	rep, err := s.reports.Fetch(ctx, station)

	status := "error"
	var statusErr *report.StatusError
	switch {
	case err == nil:
		status = "200"
	case errors.As(err, &statusErr):
		status = strconv.Itoa(statusErr.Code)
	}
	metrics.ReportFetchesTotal.WithLabelValues(station, status).Inc()
	metrics.ReportFetchLatency.WithLabelValues(station).Observe(rep.Duration.Seconds())

	if err != nil {
		log.Printf("api: fetch report %s: %v", station, err)
	}
	if s.store == nil {
		return rep, err
	}

	rec := models.ReportFetch{
		Station:    station,
		URL:        rep.URL,
		FetchedAt:  rep.FetchedAt,
		DurationMS: rep.Duration.Milliseconds(),
		Success:    err == nil,
	}
	if rep.Status != 0 {
		rec.HTTPStatus = sql.NullInt64{Int64: int64(rep.Status), Valid: true}
	}
	if err == nil {
		rec.SizeBytes = sql.NullInt64{Int64: int64(len(rep.HTML)), Valid: true}
	} else {
		rec.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
	}
	if recErr := s.store.InsertReportFetch(rec); recErr != nil {
		log.Printf("api: record report fetch %s: %v", station, recErr)
	}
	return rep, err
}
