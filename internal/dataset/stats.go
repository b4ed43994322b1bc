package dataset

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/series"
)

// ColumnStats is the descriptive summary of one numerical column. Missing
// cells are excluded; statistics are nil when they are undefined.
type ColumnStats struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	P25    *float64 `json:"25%"`
	P50    *float64 `json:"50%"`
	P75    *float64 `json:"75%"`
	Max    *float64 `json:"max"`
}

// Describe summarises columns of t, defaulting to NumericalColumns.
func Describe(t *Table, columns []string) ([]ColumnStats, error) {
	if len(columns) == 0 {
		columns = NumericalColumns
	}

	out := make([]ColumnStats, 0, len(columns))
	for _, col := range columns {
		vals, err := t.Floats(col)
		if err != nil {
			return nil, fmt.Errorf("describe: %w", err)
		}

		present := make([]float64, 0, len(vals))
		for _, v := range vals {
			if !math.IsNaN(v) {
				present = append(present, v)
			}
		}

		cs := ColumnStats{Column: col, Count: len(present)}
		if len(present) > 0 {
			s := series.Floats(present)
			cs.Mean = finite(s.Mean())
			cs.Std = finite(s.StdDev())
			cs.Min = finite(s.Min())
			sort.Float64s(present)
			cs.P25 = finite(quantile(present, 0.25))
			cs.P50 = finite(quantile(present, 0.5))
			cs.P75 = finite(quantile(present, 0.75))
			cs.Max = finite(s.Max())
		}
		out = append(out, cs)
	}
	return out, nil
}

// quantile interpolates linearly between the two closest ranks of sorted,
// placing p at (n-1)*p. This is the pandas describe() convention.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
