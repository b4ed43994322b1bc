package store

import (
	"database/sql"
	"time"

	"github.com/lox/airdash/internal/models"
)

// StartLoadRun creates a new load run record and returns it.
func (s *Store) StartLoadRun(dataDir string) (*models.LoadRun, error) {
	run := &models.LoadRun{
		DataDir:   dataDir,
		StartedAt: time.Now().UTC(),
	}

	result, err := s.db.Exec(`
		INSERT INTO load_runs (data_dir, started_at, success)
		VALUES (?, ?, FALSE)
	`, run.DataDir, run.StartedAt)
	if err != nil {
		return nil, err
	}

	run.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return run, nil
}

// CompleteLoadRun updates the load run with results.
func (s *Store) CompleteLoadRun(run *models.LoadRun) error {
	if run == nil {
		return nil
	}

	run.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	_, err := s.db.Exec(`
		UPDATE load_runs SET
			finished_at = ?,
			table_count = ?,
			row_count = ?,
			success = ?,
			error_message = ?
		WHERE id = ?
	`, run.FinishedAt, run.TableCount, run.RowCount, run.Success, run.ErrorMessage, run.ID)
	return err
}

func (s *Store) InsertDatasetFile(f models.DatasetFile) error {
	_, err := s.db.Exec(`
		INSERT INTO dataset_files (run_id, position, file_name, station, row_count)
		VALUES (?, ?, ?, ?, ?)
	`, f.RunID, f.Position, f.FileName, f.Station, f.RowCount)
	return err
}

// GetLatestLoadRun returns the most recently started load run, or nil if none.
func (s *Store) GetLatestLoadRun() (*models.LoadRun, error) {
	row := s.db.QueryRow(`
		SELECT id, data_dir, started_at, finished_at, table_count, row_count, success, error_message
		FROM load_runs
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`)

	var run models.LoadRun
	err := row.Scan(&run.ID, &run.DataDir, &run.StartedAt, &run.FinishedAt,
		&run.TableCount, &run.RowCount, &run.Success, &run.ErrorMessage)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetDatasetFiles returns the files recorded for a run in position order.
func (s *Store) GetDatasetFiles(runID int64) ([]models.DatasetFile, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, position, file_name, station, row_count
		FROM dataset_files
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []models.DatasetFile
	for rows.Next() {
		var f models.DatasetFile
		if err := rows.Scan(&f.ID, &f.RunID, &f.Position, &f.FileName, &f.Station, &f.RowCount); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
