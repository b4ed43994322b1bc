package ingest

import (
	"database/sql"
	"log"

	"github.com/lox/airdash/internal/dataset"
	"github.com/lox/airdash/internal/metrics"
	"github.com/lox/airdash/internal/models"
	"github.com/lox/airdash/internal/store"
)

// LoadCatalog opens the dataset catalog in dir and records the load run and
// the position of every file in st. A nil store skips auditing.
func LoadCatalog(st *store.Store, dir string) (*dataset.Catalog, error) {
	var run *models.LoadRun
	if st != nil {
		r, err := st.StartLoadRun(dir)
		if err != nil {
			log.Printf("ingest: start load run: %v", err)
		}
		run = r
	}

	log.Printf("ingest: loading datasets from %s", dir)
	cat, err := dataset.Open(dir)
	if err != nil {
		metrics.CatalogLoadsTotal.WithLabelValues("error").Inc()
		if run != nil {
			run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
			if err := st.CompleteLoadRun(run); err != nil {
				log.Printf("ingest: complete load run: %v", err)
			}
		}
		return nil, err
	}

	reg := cat.Registry()
	totalRows := 0
	for pos, station := range cat.Stations() {
		tbl, _ := reg.Table(pos)
		totalRows += tbl.Len()
		metrics.DatasetRows.WithLabelValues(station).Set(float64(tbl.Len()))

		if run == nil {
			continue
		}
		err := st.InsertDatasetFile(models.DatasetFile{
			RunID:    run.ID,
			Position: pos,
			FileName: tbl.File(),
			Station:  station,
			RowCount: tbl.Len(),
		})
		if err != nil {
			log.Printf("ingest: record dataset file %s: %v", tbl.File(), err)
		}
	}
	metrics.DatasetsLoaded.Set(float64(reg.Len()))
	metrics.CatalogLoadsTotal.WithLabelValues("success").Inc()

	if run != nil {
		run.Success = true
		run.TableCount = sql.NullInt64{Int64: int64(reg.Len()), Valid: true}
		run.RowCount = sql.NullInt64{Int64: int64(totalRows), Valid: true}
		if err := st.CompleteLoadRun(run); err != nil {
			log.Printf("ingest: complete load run: %v", err)
		}
	}

	log.Printf("ingest: loaded %d stations (%d rows)", reg.Len(), totalRows)
	return cat, nil
}
