package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DatasetsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "airdash_datasets_loaded",
			Help: "Number of station tables in the loaded catalog",
		},
	)

	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "airdash_dataset_rows",
			Help: "Rows per loaded station table",
		},
		[]string{"station"},
	)

	CatalogLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airdash_catalog_loads_total",
			Help: "Catalog load attempts by outcome",
		},
		[]string{"status"},
	)

	StationResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airdash_station_resolutions_total",
			Help: "Station selections resolved by the dashboard",
		},
		[]string{"result"},
	)

	ReportFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airdash_report_fetches_total",
			Help: "Remote summary report fetches",
		},
		[]string{"station", "status"},
	)

	ReportFetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "airdash_report_fetch_latency_seconds",
			Help:    "Remote summary report fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"station"},
	)

	MirrorFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airdash_mirror_files_total",
			Help: "Files handled by the FTP mirror",
		},
		[]string{"result"},
	)
)
