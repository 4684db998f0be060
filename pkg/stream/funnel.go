package stream

import (
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// DefaultMaxLag is how long the funnel holds a half-filled second before
// giving up on the missing side.
const DefaultMaxLag = 5 * time.Second

// Row is one joined second of the two streams. A side that never arrived
// is NaN, and the residual inherits it.
type Row struct {
	Time   time.Time
	MeterW float64
	PVW    float64
}

// ResidualW is the grid draw left after subtracting PV generation.
func (r Row) ResidualW() float64 {
	return r.MeterW - r.PVW
}

// Funnel joins the meter and PV streams on their unix-second timestamps.
// A second with both sides present is emitted immediately. A second that
// ages more than maxLag behind the newest reading seen is emitted with
// the missing side NaN. Readings for a second that was already emitted
// are dropped.
//
// Offer calls are safe from multiple goroutines.
type Funnel struct {
	mu        sync.Mutex
	maxLag    time.Duration
	pending   map[int64]*Row
	newest    int64
	watermark int64

	// Emitted counts rows handed out, complete or not. Dropped counts
	// readings that arrived after their second was already emitted.
	Emitted atomic.Uint64
	Dropped atomic.Uint64
}

func NewFunnel(maxLag time.Duration) *Funnel {
	if maxLag <= 0 {
		maxLag = DefaultMaxLag
	}
	return &Funnel{
		maxLag:    maxLag,
		pending:   make(map[int64]*Row),
		newest:    math.MinInt64,
		watermark: math.MinInt64,
	}
}

// OfferMeter feeds one meter reading in and returns whatever rows became
// ready, oldest first.
func (f *Funnel) OfferMeter(r Reading) []Row {
	return f.offer(r, true)
}

// OfferPV feeds one PV reading in and returns whatever rows became
// ready, oldest first.
func (f *Funnel) OfferPV(r Reading) []Row {
	return f.offer(r, false)
}

func (f *Funnel) offer(r Reading, meter bool) []Row {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := r.Time.Unix()
	if key <= f.watermark {
		f.Dropped.Inc()
		return nil
	}
	if key > f.newest {
		f.newest = key
	}

	row, ok := f.pending[key]
	if !ok {
		row = &Row{Time: r.Time.Truncate(time.Second), MeterW: math.NaN(), PVW: math.NaN()}
		f.pending[key] = row
	}
	if meter {
		row.MeterW = r.ValueW
	} else {
		row.PVW = r.ValueW
	}

	var out []Row
	if !math.IsNaN(row.MeterW) && !math.IsNaN(row.PVW) {
		delete(f.pending, key)
		out = append(out, *row)
		f.Emitted.Inc()
	}
	out = append(out, f.expireLocked()...)
	sortRows(out)
	return out
}

// expireLocked flushes every pending second older than maxLag relative
// to the newest reading seen and advances the watermark past them.
func (f *Funnel) expireLocked() []Row {
	cutoff := f.newest - int64(f.maxLag/time.Second)
	var out []Row
	for key, row := range f.pending {
		if key < cutoff {
			delete(f.pending, key)
			out = append(out, *row)
			f.Emitted.Inc()
		}
	}
	if cutoff-1 > f.watermark {
		f.watermark = cutoff - 1
	}
	return out
}

// Flush drains every pending row regardless of age. Meant for shutdown.
func (f *Funnel) Flush() []Row {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Row, 0, len(f.pending))
	for key, row := range f.pending {
		delete(f.pending, key)
		out = append(out, *row)
		f.Emitted.Inc()
	}
	sortRows(out)
	return out
}

func sortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })
}
