package clearsky

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/pvsim/pvsim/pkg/data"
	"github.com/pvsim/pvsim/pkg/data/usecases/common"
)

// SiteFmt is the format string for the name of a simulated site
const SiteFmt = "site_%d"

var (
	labelSite          = []byte("site")
	labelClearSky      = []byte("clearsky")
	labelClearSkyIndex = []byte("clearsky_index")
	labelCloudCover    = []byte("cloud_cover")
	labelWindspeed     = []byte("windspeed_ms")
	labelCloudy        = []byte("cloudy")
)

// SiteMeasurement reports the per-second sky state of one site.
type SiteMeasurement struct {
	*common.SubsystemMeasurement
	model  *Model
	sample Sample
}

// NewSiteMeasurement creates a SiteMeasurement driven by the given model,
// observed first at start.
func NewSiteMeasurement(start time.Time, model *Model) *SiteMeasurement {
	m := &SiteMeasurement{
		SubsystemMeasurement: common.NewSubsystemMeasurement(start, 0),
		model:                model,
	}
	m.observe()
	return m
}

func (m *SiteMeasurement) observe() {
	sample, err := m.model.At(m.Timestamp)
	if err != nil {
		panic(fmt.Sprintf("sky model failed at %v: %v", m.Timestamp, err))
	}
	m.sample = sample
}

// Tick advances the measurement clock and observes the sky at the new time.
func (m *SiteMeasurement) Tick(d time.Duration) {
	m.SubsystemMeasurement.Tick(d)
	m.observe()
}

// Sky returns the observation taken at the current timestamp.
func (m *SiteMeasurement) Sky() Sample {
	return m.sample
}

func (m *SiteMeasurement) ToPoint(p *data.Point) {
	p.SetMeasurementName(labelClearSky)
	p.SetTimestamp(&m.Timestamp)
	p.AppendField(labelClearSkyIndex, m.sample.Index)
	p.AppendField(labelCloudCover, m.sample.CloudCover)
	p.AppendField(labelWindspeed, m.sample.Windspeed)
	p.AppendField(labelCloudy, m.sample.Cloudy)
}

// Site is one physical location whose sky state is simulated.
type Site struct {
	Name []byte

	simulatedMeasurements []common.SimulatedMeasurement
}

// NewSite creates a new simulated site with the given index, observed first
// at start. Each site derives its own random stream from the run seed and
// its index, so sites are independent and a run is reproducible.
func NewSite(i int, start time.Time, table *StepTable, seed int64) Site {
	src := rand.NewPCG(uint64(seed), uint64(i))
	model, err := NewModel(table, src)
	if err != nil {
		panic(fmt.Sprintf("cannot initialize sky model for site %d: %v", i, err))
	}
	return Site{
		Name:                  []byte(fmt.Sprintf(SiteFmt, i)),
		simulatedMeasurements: []common.SimulatedMeasurement{NewSiteMeasurement(start, model)},
	}
}

// Measurements returns the measurements this site emits.
func (s Site) Measurements() []common.SimulatedMeasurement {
	return s.simulatedMeasurements
}

// Tags returns the tags describing this site.
func (s Site) Tags() []common.Tag {
	return []common.Tag{{Key: labelSite, Value: string(s.Name)}}
}

// TickAll advances all measurements of this site by the given duration.
func (s Site) TickAll(d time.Duration) {
	for i := range s.simulatedMeasurements {
		s.simulatedMeasurements[i].Tick(d)
	}
}

// SimulatorConfig is used to create a Simulator for the clearsky use case.
type SimulatorConfig struct {
	// Start is the time of the first data point
	Start time.Time
	// End is when to stop generating data
	End time.Time

	// InitGeneratorScale is the number of sites to start with
	InitGeneratorScale uint64
	// GeneratorScale is the number of sites to scale to over the run
	GeneratorScale uint64

	// Seed is the root seed all site random streams derive from
	Seed int64
	// Table is the cloud-cover step table; nil selects the built-in fit
	Table *StepTable
}

// NewSimulator produces a Simulator with one point per site per interval,
// stopping after limit points (0 means run to End).
func (c *SimulatorConfig) NewSimulator(interval time.Duration, limit uint64) common.Simulator {
	table := c.Table
	if table == nil {
		table = DefaultStepTable()
	}
	cfg := &common.BaseSimulatorConfig{
		Start:              c.Start,
		End:                c.End,
		InitGeneratorScale: c.InitGeneratorScale,
		GeneratorScale:     c.GeneratorScale,
		GeneratorConstructor: func(i int, start time.Time) common.Generator {
			return NewSite(i, start, table, c.Seed)
		},
	}
	return cfg.NewSimulator(interval, limit)
}
