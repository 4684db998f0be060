package pv

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/pvsim/pvsim/pkg/data"
	"github.com/pvsim/pvsim/pkg/data/usecases/clearsky"
	"github.com/pvsim/pvsim/pkg/data/usecases/common"
)

// PlantFmt is the format string for the name of a simulated plant
const PlantFmt = "plant_%d"

// Ambient temperature walk (°C). The walk drifts slowly against the
// per-second sampling rate and stays inside a temperate-climate band.
const (
	ambientStartC     = 20.0
	ambientMinC       = -5.0
	ambientMaxC       = 35.0
	ambientStepSigmaC = 0.01
)

var (
	labelPlant       = []byte("plant")
	labelSite        = []byte("site")
	labelPV          = []byte("pv")
	labelPVIndex     = []byte("clearsky_index")
	labelGHI         = []byte("ghi_wm2")
	labelPower       = []byte("power_w")
	labelCellTemp    = []byte("cell_temp_c")
	labelAmbientTemp = []byte("ambient_temp_c")
)

// PlantMeasurement reports the per-second electrical state of one plant:
// the sky model's index scaled onto clear-sky irradiance and run through
// the system's thermal and inverter model.
type PlantMeasurement struct {
	*common.SubsystemMeasurement
	system System
	model  *clearsky.Model

	index     float64
	ghiWM2    float64
	powerW    float64
	cellTempC float64
}

// NewPlantMeasurement creates a PlantMeasurement for the given system driven
// by the given sky model, observed first at start. The ambient temperature
// walk draws from src.
func NewPlantMeasurement(start time.Time, system System, model *clearsky.Model, src rand.Source) *PlantMeasurement {
	m := &PlantMeasurement{
		SubsystemMeasurement: common.NewSubsystemMeasurement(start, 1),
		system:               system,
		model:                model,
	}
	m.Distributions[0] = common.CWD(common.ND(src, 0, ambientStepSigmaC), ambientMinC, ambientMaxC, ambientStartC)
	m.observe()
	return m
}

func (m *PlantMeasurement) ambientTempC() float64 {
	return m.Distributions[0].Get()
}

func (m *PlantMeasurement) observe() {
	sample, err := m.model.At(m.Timestamp)
	if err != nil {
		panic(fmt.Sprintf("sky model failed at %v: %v", m.Timestamp, err))
	}
	ambient := m.ambientTempC()
	m.index = sample.Index
	m.ghiWM2 = m.system.Irradiance(m.Timestamp, sample.Index, ambient)
	m.powerW, m.cellTempC = m.system.ACPowerW(m.ghiWM2, ambient)
}

// Tick advances the measurement clock and the ambient walk, then observes
// the plant at the new time.
func (m *PlantMeasurement) Tick(d time.Duration) {
	m.SubsystemMeasurement.Tick(d)
	m.observe()
}

// PowerW returns the AC power observed at the current timestamp.
func (m *PlantMeasurement) PowerW() float64 {
	return m.powerW
}

func (m *PlantMeasurement) ToPoint(p *data.Point) {
	p.SetMeasurementName(labelPV)
	p.SetTimestamp(&m.Timestamp)
	p.AppendField(labelPVIndex, m.index)
	p.AppendField(labelGHI, m.ghiWM2)
	p.AppendField(labelPower, m.powerW)
	p.AppendField(labelCellTemp, m.cellTempC)
	p.AppendField(labelAmbientTemp, m.ambientTempC())
}

// Plant is one generating installation at the reference site.
type Plant struct {
	Name []byte

	simulatedMeasurements []common.SimulatedMeasurement
}

// NewPlant creates a new simulated plant with the given index, observed
// first at start. Each plant derives its own random stream from the run
// seed and its index.
func NewPlant(i int, start time.Time, table *clearsky.StepTable, seed int64) Plant {
	src := rand.NewPCG(uint64(seed), uint64(i))
	model, err := clearsky.NewModel(table, src)
	if err != nil {
		panic(fmt.Sprintf("cannot initialize sky model for plant %d: %v", i, err))
	}
	return Plant{
		Name: []byte(fmt.Sprintf(PlantFmt, i)),
		simulatedMeasurements: []common.SimulatedMeasurement{
			NewPlantMeasurement(start, DefaultSystem(), model, src),
		},
	}
}

// Measurements returns the measurements this plant emits.
func (p Plant) Measurements() []common.SimulatedMeasurement {
	return p.simulatedMeasurements
}

// Tags returns the tags describing this plant.
func (p Plant) Tags() []common.Tag {
	return []common.Tag{
		{Key: labelPlant, Value: string(p.Name)},
		{Key: labelSite, Value: "munich"},
	}
}

// TickAll advances all measurements of this plant by the given duration.
func (p Plant) TickAll(d time.Duration) {
	for i := range p.simulatedMeasurements {
		p.simulatedMeasurements[i].Tick(d)
	}
}

// SimulatorConfig is used to create a Simulator for the pv use case.
type SimulatorConfig struct {
	// Start is the time of the first data point
	Start time.Time
	// End is when to stop generating data
	End time.Time

	// InitGeneratorScale is the number of plants to start with
	InitGeneratorScale uint64
	// GeneratorScale is the number of plants to scale to over the run
	GeneratorScale uint64

	// Seed is the root seed all plant random streams derive from
	Seed int64
	// Table is the cloud-cover step table; nil selects the built-in fit
	Table *clearsky.StepTable
}

// NewSimulator produces a Simulator with one point per plant per interval,
// stopping after limit points (0 means run to End).
func (c *SimulatorConfig) NewSimulator(interval time.Duration, limit uint64) common.Simulator {
	table := c.Table
	if table == nil {
		table = clearsky.DefaultStepTable()
	}
	cfg := &common.BaseSimulatorConfig{
		Start:              c.Start,
		End:                c.End,
		InitGeneratorScale: c.InitGeneratorScale,
		GeneratorScale:     c.GeneratorScale,
		GeneratorConstructor: func(i int, start time.Time) common.Generator {
			return NewPlant(i, start, table, c.Seed)
		},
	}
	return cfg.NewSimulator(interval, limit)
}
