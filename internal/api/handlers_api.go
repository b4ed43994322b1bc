package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/lox/airdash/internal/dataset"
)

const maxPreviewRows = 100

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleAPIStations(w http.ResponseWriter, r *http.Request) {
	reg := s.catalog.Registry()
	stations := make([]StationInfo, 0, s.catalog.Index().Len())
	for _, name := range s.catalog.Stations() {
		pos, _ := s.catalog.Index().Lookup(name)
		tbl, _ := reg.Table(pos)
		stations = append(stations, StationInfo{
			Name:  name,
			Index: pos,
			File:  tbl.File(),
			Rows:  tbl.Len(),
		})
	}
	writeJSON(w, http.StatusOK, stations)
}

func (s *Server) handleAPIStation(w http.ResponseWriter, r *http.Request) {
	station := r.PathValue("station")
	tbl, ok := s.resolve(w, station)
	if !ok {
		return
	}

	limit := previewRows
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = min(n, maxPreviewRows)
	}

	writeJSON(w, http.StatusOK, StationPreview{
		Station: station,
		File:    tbl.File(),
		Rows:    tbl.Len(),
		Columns: tbl.Header(),
		Preview: tbl.Head(limit),
	})
}

func (s *Server) handleAPIDescribe(w http.ResponseWriter, r *http.Request) {
	station := r.PathValue("station")
	tbl, ok := s.resolve(w, station)
	if !ok {
		return
	}

	var columns []string
	if v := r.URL.Query().Get("columns"); v != "" {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				columns = append(columns, c)
			}
		}
	}

	stats, err := dataset.Describe(tbl, columns)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, StationStats{Station: station, Stats: stats})
}

func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	station := r.PathValue("station")
	if _, ok := s.resolve(w, station); !ok {
		return
	}

	rep, err := s.fetchReport(r.Context(), station)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, "Failed to load the summary report: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ReportText{Station: station, URL: rep.URL, Text: rep.Text()})
}

func (s *Server) handleAPILoads(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "audit store not configured")
		return
	}

	resp := LoadsResponse{
		Files:         []DatasetFileView{},
		ReportFetches: []ReportFetchView{},
	}

	run, err := s.store.GetLatestLoadRun()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run != nil {
		resp.Run = newLoadRunView(run)
		files, err := s.store.GetDatasetFiles(run.ID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for _, f := range files {
			resp.Files = append(resp.Files, DatasetFileView{
				Position: f.Position,
				File:     f.FileName,
				Station:  f.Station,
				Rows:     f.RowCount,
			})
		}
	}

	fetches, err := s.store.GetRecentReportFetches(r.URL.Query().Get("station"), 20)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for _, f := range fetches {
		resp.ReportFetches = append(resp.ReportFetches, ReportFetchView{
			Station:    f.Station,
			FetchedAt:  f.FetchedAt,
			Status:     f.HTTPStatus.Int64,
			DurationMS: f.DurationMS,
			Success:    f.Success,
			Error:      f.ErrorMessage.String,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthStatus{
		Status:   "ok",
		Stations: s.catalog.Index().Len(),
		LoadedAt: s.catalog.LoadedAt(),
	})
}
