package clearsky

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/pvsim/pvsim/pkg/data/usecases/common"
	"gonum.org/v1/gonum/stat/distuv"
)

// Index process parameters. The clear-day and cloudy-hour values are fits
// against minute-resolution irradiance measurements; the noise sigmas grow
// linearly with the cloud cover in oktas (8 * cover).
const (
	clearDayMean  = 0.99
	clearDaySigma = 0.08

	cloudyHourNormalMax   = 0.75  // 6/8 oktas
	cloudyHourGammaMax    = 0.875 // 7/8 oktas
	cloudyHourNormalMean  = 0.6784
	cloudyHourNormalSigma = 0.2046
	cloudyHourGammaShape  = 5.0
	cloudyHourGammaScale  = 0.1
	cloudyHourDenseShape  = 3.5624
	cloudyHourDenseScale  = 0.0867

	cloudySigma0 = 0.01
	cloudySigma1 = 0.003
	clearSigma0  = 0.001
	clearSigma1  = 0.0015

	// The index noise variance is split between a minute-scale component
	// and a per-second remainder. The per-second sigma carries a factor of
	// 60 so that averaging a minute of draws reproduces its variance share.
	minuteVarShare = 0.9
	secondVarShare = 0.1

	windShape   = 2.69
	windScaleMS = 2.14

	// Interpolated cloud cover is clamped to this floor (and to
	// maxCloudCover from above) before parameterising the renewal process.
	minCloudCover = 0.01
)

// Error messages when querying a Model
const (
	errBackwardTimestampFmt = "timestamp %v precedes previous query %v"
	errNonFiniteIndexFmt    = "computed clear-sky index is not finite: %v"
)

// Sample is one per-second observation of the simulated sky.
type Sample struct {
	Index      float64 // clear-sky index, unclipped
	CloudCover float64 // interpolated hourly cloud cover in [0, 1]
	Windspeed  float64 // interpolated daily wind speed in m/s
	Cloudy     bool    // whether a cloud shades the site this second
}

// Model generates a per-second clear-sky index. Slow processes (the daily
// clear-sky level and wind speed, the hourly cloud cover and cloudy-sky
// level) are re-sampled only when a query crosses the matching calendar
// boundary and are linearly interpolated in between; a renewal process
// decides each second whether a cloud shades the site, selecting which of
// the two regimes the index is blended from.
//
// A Model owns its random source and keeps per-query state, so it is not
// safe for concurrent use; give each goroutine its own instance.
type Model struct {
	rnd  *rand.Rand
	walk *CloudCoverWalk

	cloudCover  *common.InterpolatedSampler
	clearDay    *common.InterpolatedSampler
	cloudyHour  *common.InterpolatedSampler
	cloudyNoise *common.InterpolatedSampler
	clearNoise  *common.InterpolatedSampler
	windspeed   *common.InterpolatedSampler

	renewal *CloudCoverBinary

	prev    time.Time
	started bool
}

// NewModel returns a Model stepping the given cloud-cover table, with all
// stochastic state drawn from src.
func NewModel(table *StepTable, src rand.Source) (*Model, error) {
	rnd := rand.New(src)
	walk := NewCloudCoverWalk(table, src)

	clearDayDist := distuv.Normal{Mu: clearDayMean, Sigma: clearDaySigma, Src: src}
	windDist := distuv.Gamma{Alpha: windShape, Beta: 1 / windScaleMS, Src: src}
	cloudyNormal := distuv.Normal{Mu: cloudyHourNormalMean, Sigma: cloudyHourNormalSigma, Src: src}
	cloudyGamma := distuv.Gamma{Alpha: cloudyHourGammaShape, Beta: 1 / cloudyHourGammaScale, Src: src}
	cloudyDense := distuv.Gamma{Alpha: cloudyHourDenseShape, Beta: 1 / cloudyHourDenseScale, Src: src}

	m := &Model{rnd: rnd, walk: walk}
	m.cloudCover = common.NewInterpolatedSampler(func() float64 {
		walk.Advance()
		return walk.Get()
	})
	m.clearDay = common.NewInterpolatedSampler(clearDayDist.Rand)
	// The cloudy-hour level worsens with the sky state at draw time: an
	// almost-open sky keeps a moderate mean index, denser covers shift to
	// gamma shapes concentrated well below it.
	m.cloudyHour = common.NewInterpolatedSampler(func() float64 {
		switch cc := walk.Get(); {
		case cc < cloudyHourNormalMax:
			return cloudyNormal.Rand()
		case cc < cloudyHourGammaMax:
			return cloudyGamma.Rand()
		default:
			return cloudyDense.Rand()
		}
	})
	m.cloudyNoise = common.NewInterpolatedSampler(func() float64 {
		return 1 + rnd.NormFloat64()*minuteSigma(cloudySigma0, cloudySigma1, walk.Get())
	})
	m.clearNoise = common.NewInterpolatedSampler(func() float64 {
		return 1 + rnd.NormFloat64()*minuteSigma(clearSigma0, clearSigma1, walk.Get())
	})
	m.windspeed = common.NewInterpolatedSampler(windDist.Rand)

	renewal, err := NewCloudCoverBinary(
		clampCloudCover(m.cloudCover.Interpolate(0)),
		m.windspeed.Interpolate(0),
		src,
	)
	if err != nil {
		return nil, err
	}
	m.renewal = renewal
	return m, nil
}

// At computes the model sample for time t. Queries must be non-decreasing in
// time; a repeated timestamp is allowed and re-rolls the per-second state.
// Boundary detection uses the calendar of t's location, so queries should
// stay in one location throughout.
func (m *Model) At(t time.Time) (Sample, error) {
	if m.started {
		if t.Before(m.prev) {
			return Sample{}, fmt.Errorf(errBackwardTimestampFmt, t, m.prev)
		}
		m.advanceBoundaries(t)
	}
	m.prev = t
	m.started = true

	minuteFrac := float64(t.Second()) / 60
	hourFrac := (float64(t.Minute()) + minuteFrac) / 60
	dayFrac := (float64(t.Hour()) + hourFrac) / 24

	cc := clampCloudCover(m.cloudCover.Interpolate(hourFrac))
	ws := m.windspeed.Interpolate(dayFrac)
	if err := m.renewal.UpdateParameters(cc, ws); err != nil {
		return Sample{}, err
	}
	cloudy, err := m.renewal.NextSecond()
	if err != nil {
		return Sample{}, err
	}

	var index float64
	if cloudy {
		noise := m.cloudyNoise.Interpolate(minuteFrac) +
			m.rnd.NormFloat64()*secondSigma(cloudySigma0, cloudySigma1, cc)
		index = m.cloudyHour.Interpolate(hourFrac) * noise
	} else {
		noise := m.clearNoise.Interpolate(minuteFrac) +
			m.rnd.NormFloat64()*secondSigma(clearSigma0, clearSigma1, cc)
		index = m.clearDay.Interpolate(dayFrac) * noise
	}
	if math.IsNaN(index) || math.IsInf(index, 0) {
		return Sample{}, fmt.Errorf(errNonFiniteIndexFmt, index)
	}
	return Sample{Index: index, CloudCover: cc, Windspeed: ws, Cloudy: cloudy}, nil
}

// Index returns just the clear-sky index at t. The index is not clipped to
// the physical range; consumers scaling irradiance clip it themselves.
func (m *Model) Index(t time.Time) (float64, error) {
	s, err := m.At(t)
	return s.Index, err
}

// advanceBoundaries re-samples every process whose calendar boundary lies
// between the previous query and t. A query jumping several boundaries at
// once still advances each process once: the slow processes are anchored to
// query times, not to wall-clock hours skipped in between.
func (m *Model) advanceBoundaries(t time.Time) {
	py, pm, pd := m.prev.Date()
	ty, tm, td := t.Date()
	dayChanged := py != ty || pm != tm || pd != td
	hourChanged := dayChanged || m.prev.Hour() != t.Hour()
	minuteChanged := hourChanged || m.prev.Minute() != t.Minute()

	if dayChanged {
		m.clearDay.Advance()
		m.windspeed.Advance()
	}
	if hourChanged {
		m.cloudCover.Advance()
		m.cloudyHour.Advance()
	}
	if minuteChanged {
		m.cloudyNoise.Advance()
		m.clearNoise.Advance()
	}
}

// indexSigma is the total noise sigma at the given cloud cover, with the
// cover expressed in oktas.
func indexSigma(sigma0, sigma1, cloudCover float64) float64 {
	return sigma0 + sigma1*8*cloudCover
}

func minuteSigma(sigma0, sigma1, cloudCover float64) float64 {
	return math.Sqrt(minuteVarShare) * indexSigma(sigma0, sigma1, cloudCover)
}

func secondSigma(sigma0, sigma1, cloudCover float64) float64 {
	return math.Sqrt(secondVarShare*60) * indexSigma(sigma0, sigma1, cloudCover)
}

func clampCloudCover(cc float64) float64 {
	if cc < minCloudCover {
		return minCloudCover
	}
	if cc > maxCloudCover {
		return maxCloudCover
	}
	return cc
}
