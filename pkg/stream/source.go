package stream

import (
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"

	"github.com/pvsim/pvsim/pkg/data/usecases/clearsky"
	"github.com/pvsim/pvsim/pkg/data/usecases/common"
	"github.com/pvsim/pvsim/pkg/data/usecases/pv"
)

// Household load bounds in watts for the mock meter.
const (
	meterMinW = 0
	meterMaxW = 9000
)

// MeterSource fakes a household smart meter: one uniform draw from
// [0, 9000) W per second.
type MeterSource struct {
	load *common.UniformDistribution
}

func NewMeterSource(seed int64) *MeterSource {
	src := rand.NewPCG(uint64(seed), uint64(seed))
	return &MeterSource{load: common.UD(src, meterMinW, meterMaxW)}
}

// Read returns the meter reading for the given second.
func (m *MeterSource) Read(t time.Time) Reading {
	m.load.Advance()
	return Reading{Time: t.Truncate(time.Second), ValueW: m.load.Get()}
}

// PVSource samples the simulated plant's AC power once per second. The
// plant is the same model the offline generator uses, so streamed and
// generated data share one notion of what the sky does.
type PVSource struct {
	plant *pv.PlantMeasurement
	last  time.Time
}

// NewPVSource builds a plant whose day starts at start. A nil table
// means the built-in step distribution table.
func NewPVSource(start time.Time, table *clearsky.StepTable, seed int64) (*PVSource, error) {
	if table == nil {
		table = clearsky.DefaultStepTable()
	}
	start = start.Truncate(time.Second)
	src := rand.NewPCG(uint64(seed), uint64(seed))
	model, err := clearsky.NewModel(table, src)
	if err != nil {
		return nil, errors.Wrap(err, "could not build sky model")
	}
	plant := pv.NewPlantMeasurement(start, pv.DefaultSystem(), model, src)
	return &PVSource{plant: plant, last: start}, nil
}

// Read advances the plant to t and returns its AC power. Reads at or
// before the previous second return the plant's state unchanged.
func (s *PVSource) Read(t time.Time) Reading {
	t = t.Truncate(time.Second)
	if d := t.Sub(s.last); d > 0 {
		s.plant.Tick(d)
		s.last = t
	}
	return Reading{Time: t, ValueW: s.plant.PowerW()}
}
