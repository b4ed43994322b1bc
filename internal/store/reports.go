package store

import (
	"github.com/lox/airdash/internal/models"
)

func (s *Store) InsertReportFetch(f models.ReportFetch) error {
	_, err := s.db.Exec(`
		INSERT INTO report_fetches (station, url, fetched_at, http_status, size_bytes, duration_ms, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.Station, f.URL, f.FetchedAt, f.HTTPStatus, f.SizeBytes, f.DurationMS, f.Success, f.ErrorMessage)
	return err
}

// GetRecentReportFetches returns the latest fetch attempts, newest first.
// An empty station returns attempts for every station.
func (s *Store) GetRecentReportFetches(station string, limit int) ([]models.ReportFetch, error) {
	rows, err := s.db.Query(`
		SELECT id, station, url, fetched_at, http_status, size_bytes, duration_ms, success, error_message
		FROM report_fetches
		WHERE ? = '' OR station = ?
		ORDER BY fetched_at DESC, id DESC
		LIMIT ?
	`, station, station, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.ReportFetch
	for rows.Next() {
		var f models.ReportFetch
		if err := rows.Scan(&f.ID, &f.Station, &f.URL, &f.FetchedAt, &f.HTTPStatus,
			&f.SizeBytes, &f.DurationMS, &f.Success, &f.ErrorMessage); err != nil {
			return nil, err
		}
		results = append(results, f)
	}
	return results, rows.Err()
}
