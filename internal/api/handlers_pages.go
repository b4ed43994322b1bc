package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/lox/airdash/internal/dataset"
	"github.com/lox/airdash/internal/imagegen"
)

const previewRows = 5

const reportCSP = "sandbox allow-scripts"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	stations := s.catalog.Stations()
	data := IndexData{
		Gallery:  s.gallery,
		LoadedAt: s.catalog.LoadedAt(),
		Band:     imagegen.PM25Band(nil),
	}

	selected := r.URL.Query().Get("station")
	if selected == "" && len(stations) > 0 {
		selected = stations[0]
	}
	if selected != "" {
		tbl, ok := s.resolve(w, selected)
		if !ok {
			return
		}
		stats, err := dataset.Describe(tbl, nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data.Selected = selected
		data.File = tbl.File()
		data.Rows = tbl.Len()
		data.Header = tbl.Header()
		data.Preview = tbl.HeadRecords(previewRows)
		data.Stats = stats
		data.PM25Mean = pm25Mean(stats)
		data.Band = imagegen.PM25Band(data.PM25Mean)
	}

	for _, name := range stations {
		data.Stations = append(data.Stations, StationOption{Name: name, Selected: name == selected})
	}

	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("api: template error: %v", err)
	}
}

// handleReport proxies the station's summary report so the page can frame it.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	station := r.PathValue("station")
	if _, ok := s.resolve(w, station); !ok {
		return
	}

	rep, err := s.fetchReport(r.Context(), station)
	if err != nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		data := ReportErrorData{Station: station, URL: rep.URL, Error: err.Error()}
		if err := s.tmpl.ExecuteTemplate(w, "report_error.html", data); err != nil {
			log.Printf("api: template error: %v", err)
		}
		return
	}

	// The report is third-party HTML served from our origin; sandbox it so its
	// scripts run in an opaque origin.
	w.Header().Set("Content-Security-Policy", reportCSP)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(rep.HTML))
}

func (s *Server) handleOGImage(w http.ResponseWriter, r *http.Request) {
	station, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok {
		http.NotFound(w, r)
		return
	}
	tbl, ok := s.resolve(w, station)
	if !ok {
		return
	}

	if data, ok := s.cards.Get(station); ok {
		serveCard(w, data)
		return
	}

	// Tables without a PM2.5 column still get a card.
	var mean *float64
	if stats, err := dataset.Describe(tbl, []string{"PM2.5"}); err == nil {
		mean = pm25Mean(stats)
	}
	data, err := imagegen.GenerateStationCard(imagegen.CardData{
		Station:  station,
		PM25Mean: mean,
		Rows:     tbl.Len(),
	})
	if err != nil {
		log.Printf("api: generate card %s: %v", station, err)
		http.Error(w, "failed to render image", http.StatusInternalServerError)
		return
	}
	s.cards.Set(station, data)
	serveCard(w, data)
}

func serveCard(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

func pm25Mean(stats []dataset.ColumnStats) *float64 {
	for _, cs := range stats {
		if cs.Column == "PM2.5" {
			return cs.Mean
		}
	}
	return nil
}
