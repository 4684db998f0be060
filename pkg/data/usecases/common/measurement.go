package common

import (
	"time"

	"github.com/pvsim/pvsim/pkg/data"
)

// SimulatedMeasurement simulates one measurement (e.g. PV plant output)
type SimulatedMeasurement interface {
	Tick(time.Duration)
	ToPoint(*data.Point)
}

// SubsystemMeasurement represents a collection of distribution-backed fields
// tracked against a shared timestamp.
type SubsystemMeasurement struct {
	Timestamp     time.Time
	Distributions []Distribution
}

// NewSubsystemMeasurement creates a new SubsystemMeasurement with provided
// start time and number of distributions.
func NewSubsystemMeasurement(start time.Time, numDistributions int) *SubsystemMeasurement {
	return &SubsystemMeasurement{
		Timestamp:     start,
		Distributions: make([]Distribution, numDistributions),
	}
}

// NewSubsystemMeasurementWithDistributionMakers creates a new
// SubsystemMeasurement with start time and distribution makers which are
// used to create the necessary distributions.
func NewSubsystemMeasurementWithDistributionMakers(start time.Time, makers []LabeledDistributionMaker) *SubsystemMeasurement {
	m := NewSubsystemMeasurement(start, len(makers))
	for i := 0; i < len(makers); i++ {
		m.Distributions[i] = makers[i].DistributionMaker()
	}
	return m
}

// Tick advances all the distributions for the measurement and advances the
// timestamp by the given duration.
func (m *SubsystemMeasurement) Tick(d time.Duration) {
	m.Timestamp = m.Timestamp.Add(d)
	for i := range m.Distributions {
		m.Distributions[i].Advance()
	}
}

// ToPoint fills the provided Point with the measurement name, timestamp, and
// one field per distribution, labeled by the corresponding maker.
func (m *SubsystemMeasurement) ToPoint(p *data.Point, measurementName []byte, labels []LabeledDistributionMaker) {
	p.SetMeasurementName(measurementName)
	p.SetTimestamp(&m.Timestamp)
	for i, d := range m.Distributions {
		p.AppendField(labels[i].Label, d.Get())
	}
}

// LabeledDistributionMaker combines a distribution maker with a label for
// the field it will back.
type LabeledDistributionMaker struct {
	Label             []byte
	DistributionMaker func() Distribution
}
