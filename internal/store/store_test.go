package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/airdash/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestMigrate_Idempotent(t *testing.T) {
	store := setupTestStore(t)
	if err := store.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	version, err := store.MigrationVersion()
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("version = %d, want %d", version, len(migrations))
	}
}

func TestGetLatestLoadRun_Empty(t *testing.T) {
	store := setupTestStore(t)
	run, err := store.GetLatestLoadRun()
	if err != nil {
		t.Fatalf("GetLatestLoadRun: %v", err)
	}
	if run != nil {
		t.Errorf("expected nil run, got %+v", run)
	}
}

func TestLoadRunLifecycle(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.StartLoadRun("data")
	if err != nil {
		t.Fatalf("StartLoadRun: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("expected run ID to be assigned")
	}

	for i, station := range []string{"Aotizhongxin", "Changping"} {
		err := store.InsertDatasetFile(models.DatasetFile{
			RunID:    run.ID,
			Position: i,
			FileName: "PRSA_Data_" + station + ".csv",
			Station:  station,
			RowCount: 35064,
		})
		if err != nil {
			t.Fatalf("InsertDatasetFile: %v", err)
		}
	}

	run.Success = true
	run.TableCount = sql.NullInt64{Int64: 2, Valid: true}
	run.RowCount = sql.NullInt64{Int64: 70128, Valid: true}
	if err := store.CompleteLoadRun(run); err != nil {
		t.Fatalf("CompleteLoadRun: %v", err)
	}

	latest, err := store.GetLatestLoadRun()
	if err != nil {
		t.Fatalf("GetLatestLoadRun: %v", err)
	}
	if latest == nil || latest.ID != run.ID {
		t.Fatalf("latest = %+v, want run %d", latest, run.ID)
	}
	if !latest.Success {
		t.Error("expected success")
	}
	if !latest.FinishedAt.Valid {
		t.Error("expected finished_at to be set")
	}
	if latest.TableCount.Int64 != 2 || latest.RowCount.Int64 != 70128 {
		t.Errorf("counts = %d/%d, want 2/70128", latest.TableCount.Int64, latest.RowCount.Int64)
	}

	files, err := store.GetDatasetFiles(run.ID)
	if err != nil {
		t.Fatalf("GetDatasetFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
	if files[0].Station != "Aotizhongxin" || files[1].Position != 1 {
		t.Errorf("files = %+v", files)
	}
}

func TestInsertDatasetFile_DuplicatePosition(t *testing.T) {
	store := setupTestStore(t)
	run, err := store.StartLoadRun("data")
	if err != nil {
		t.Fatalf("StartLoadRun: %v", err)
	}
	f := models.DatasetFile{RunID: run.ID, Position: 0, FileName: "a.csv", Station: "Dongsi", RowCount: 1}
	if err := store.InsertDatasetFile(f); err != nil {
		t.Fatalf("InsertDatasetFile: %v", err)
	}
	if err := store.InsertDatasetFile(f); err == nil {
		t.Error("expected unique constraint violation")
	}
}

func TestCompleteLoadRun_Nil(t *testing.T) {
	store := setupTestStore(t)
	if err := store.CompleteLoadRun(nil); err != nil {
		t.Errorf("CompleteLoadRun(nil) = %v", err)
	}
}

func TestReportFetches(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	fetches := []models.ReportFetch{
		{Station: "Dingling", URL: "https://example.com/Dingling.html", FetchedAt: base, HTTPStatus: sql.NullInt64{Int64: 200, Valid: true}, SizeBytes: sql.NullInt64{Int64: 1024, Valid: true}, DurationMS: 120, Success: true},
		{Station: "Shunyi", URL: "https://example.com/Shunyi.html", FetchedAt: base.Add(time.Minute), HTTPStatus: sql.NullInt64{Int64: 404, Valid: true}, DurationMS: 80, ErrorMessage: sql.NullString{String: "unexpected status: 404", Valid: true}},
		{Station: "Dingling", URL: "https://example.com/Dingling.html", FetchedAt: base.Add(2 * time.Minute), HTTPStatus: sql.NullInt64{Int64: 200, Valid: true}, DurationMS: 95, Success: true},
	}
	for _, f := range fetches {
		if err := store.InsertReportFetch(f); err != nil {
			t.Fatalf("InsertReportFetch: %v", err)
		}
	}

	all, err := store.GetRecentReportFetches("", 10)
	if err != nil {
		t.Fatalf("GetRecentReportFetches: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[0].DurationMS != 95 {
		t.Errorf("newest first: got duration %d, want 95", all[0].DurationMS)
	}

	dingling, err := store.GetRecentReportFetches("Dingling", 1)
	if err != nil {
		t.Fatalf("GetRecentReportFetches: %v", err)
	}
	if len(dingling) != 1 || dingling[0].Station != "Dingling" {
		t.Errorf("dingling = %+v", dingling)
	}

	shunyi, err := store.GetRecentReportFetches("Shunyi", 5)
	if err != nil {
		t.Fatalf("GetRecentReportFetches: %v", err)
	}
	if len(shunyi) != 1 || shunyi[0].Success || shunyi[0].HTTPStatus.Int64 != 404 {
		t.Errorf("shunyi = %+v", shunyi)
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "airdash.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	v, err := s.MigrationVersion()
	if err != nil || v != 2 {
		t.Errorf("MigrationVersion = %d, %v; want 2", v, err)
	}
}
