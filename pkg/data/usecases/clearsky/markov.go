package clearsky

import (
	"math/rand/v2"
)

// CloudCoverWalk models hourly total cloud cover as a random walk on [0, 1]
// whose step distribution depends on the current state: the walk looks up
// the step table bin its state falls in, draws one step from that bin's
// distribution, and clips the result back into [0, 1]. Overcast and clear
// regimes therefore persist the way the fitted data says they should.
//
// It implements the common.Distribution contract, so it can back an
// interpolated sampler like any stateless distribution.
type CloudCoverWalk struct {
	table *StepTable
	src   rand.Source
	state float64
}

// NewCloudCoverWalk returns a walk over table drawing from src, with the
// initial state uniform in [0, 1].
func NewCloudCoverWalk(table *StepTable, src rand.Source) *CloudCoverWalk {
	return &CloudCoverWalk{
		table: table,
		src:   src,
		state: rand.New(src).Float64(),
	}
}

// Advance draws one step from the bin the current state falls in and moves
// the walk, clipping into [0, 1].
func (w *CloudCoverWalk) Advance() {
	w.state += w.table.Sampler(w.state, w.src).Rand()
	if w.state > 1 {
		w.state = 1
	}
	if w.state < 0 {
		w.state = 0
	}
}

// Get returns the current cloud cover state.
func (w *CloudCoverWalk) Get() float64 {
	return w.state
}
