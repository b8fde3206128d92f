package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/shandysiswandi/gosales/internal/sales/entity"
)

const DefaultProgressInterval = time.Second

// Reporter derives progress snapshots from job counters at a bounded,
// time-based cadence. Percentages are clamped to [0,100] and never decrease
// across successive emissions for the same job.
type Reporter struct {
	interval time.Duration
	lastEmit time.Time
	lastPct  float64
}

func NewReporter(interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	return &Reporter{interval: interval}
}

// Begin arms the cadence timer; the first emission becomes due one full
// interval later.
func (r *Reporter) Begin(now time.Time) {
	r.lastEmit = now
}

// Due reports whether enough time has passed since the last emission.
func (r *Reporter) Due(now time.Time) bool {
	return now.Sub(r.lastEmit) >= r.interval
}

// Status builds the next progress snapshot and marks it emitted.
func (r *Reporter) Status(stats Stats, now time.Time) entity.ProgressStatus {
	pct := r.percent(stats)
	r.lastEmit = now

	return entity.ProgressStatus{
		RowsProcessed:       stats.RowsProcessed,
		MalformedRows:       stats.MalformedRows,
		ProcessedPercentage: pct,
		Message:             fmt.Sprintf("Aggregating sales data... (%.2f%%)", pct),
	}
}

// Final builds the snapshot emitted right before the summary.
func (r *Reporter) Final(stats Stats, now time.Time) entity.ProgressStatus {
	pct := r.percent(stats)
	r.lastEmit = now

	return entity.ProgressStatus{
		RowsProcessed:       stats.RowsProcessed,
		MalformedRows:       stats.MalformedRows,
		ProcessedPercentage: pct,
		Message:             "Finalizing aggregation...",
	}
}

func (r *Reporter) percent(stats Stats) float64 {
	pct := 0.0
	if stats.TotalSizeBytes > 0 {
		pct = float64(stats.BytesConsumed) / float64(stats.TotalSizeBytes) * 100
		pct = math.Round(pct*100) / 100
		if pct > 100 {
			pct = 100
		}
	}

	// the emitted sequence must be non-decreasing
	if pct < r.lastPct {
		pct = r.lastPct
	}
	r.lastPct = pct

	return pct
}
