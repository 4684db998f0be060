package clearsky

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// Cloud chord lengths follow a truncated power law; dividing a chord by the
// wind speed gives the seconds a cloud shades the site.
const (
	cloudSizeAlpha = 1.66
	cloudSizeMinM  = 100.0
	cloudSizeMaxM  = 1000000.0
)

const (
	// renewalCandidates is how many cloud lengths are proposed per renewal.
	renewalCandidates = 20
	// targetHistorySeconds is the running history total a renewal steers
	// toward when choosing among admissible candidates.
	targetHistorySeconds = 3600.0
	// maxHistorySeconds caps the running history; candidates that would
	// push the total past it are inadmissible.
	maxHistorySeconds = 5400.0
	// maxCloudCover caps the cloudy fraction the renewal will chase. A
	// target of exactly 1 would make every clear interval inadmissible.
	maxCloudCover = 0.95
)

// Error messages when parameterising the renewal process
const (
	errCloudCoverNotPositiveFmt = "cloud cover must be positive, got %v"
	errWindspeedNotPositiveFmt  = "wind speed must be positive, got %v"
)

// ErrRenewalExhausted is returned when no admissible cloud/clear interval
// pair is found even after dropping the accumulated history. Callers see it
// at most once per query; the process never retries silently.
var ErrRenewalExhausted = errors.New("no admissible cloud interval found after history reset")

// CloudCoverBinary is a two-state renewal process answering, second by
// second, whether the site is shaded by a cloud. Alternating cloudy and
// clear interval lengths are drawn so that the cloudy share of the running
// history tracks the configured cloud cover.
type CloudCoverBinary struct {
	rnd  *rand.Rand
	size CloudSize

	cloudCover float64
	windspeed  float64

	cloudLength float64 // seconds of cloud in the current interval pair
	clearLength float64 // seconds of clear sky in the current interval pair
	elapsed     float64 // seconds spent inside the current interval pair

	sigmaCloud float64 // cumulative cloudy seconds in the running history
	sigmaClear float64 // cumulative clear seconds in the running history
}

// NewCloudCoverBinary returns a renewal process for the given hourly cloud
// cover and wind speed (m/s), drawing from src. The first interval pair is
// drawn immediately and the process starts at a uniformly random offset
// inside it, so concurrent simulations do not all begin at a cloud edge.
func NewCloudCoverBinary(cloudCover, windspeed float64, src rand.Source) (*CloudCoverBinary, error) {
	c := &CloudCoverBinary{
		rnd:  rand.New(src),
		size: CloudSize{Alpha: cloudSizeAlpha, Min: cloudSizeMinM, Max: cloudSizeMaxM, Src: src},
	}
	if err := c.UpdateParameters(cloudCover, windspeed); err != nil {
		return nil, err
	}
	if err := c.renew(); err != nil {
		return nil, err
	}
	c.elapsed = c.rnd.Float64() * (c.cloudLength + c.clearLength)
	return c, nil
}

// UpdateParameters sets the cloud cover target and wind speed used from the
// next renewal on. The current interval pair is left to run out. Cloud cover
// is capped at 0.95; non-positive values of either parameter are rejected.
func (c *CloudCoverBinary) UpdateParameters(cloudCover, windspeed float64) error {
	if cloudCover <= 0 {
		return fmt.Errorf(errCloudCoverNotPositiveFmt, cloudCover)
	}
	if windspeed <= 0 {
		return fmt.Errorf(errWindspeedNotPositiveFmt, windspeed)
	}
	if cloudCover > maxCloudCover {
		cloudCover = maxCloudCover
	}
	c.cloudCover = cloudCover
	c.windspeed = windspeed
	return nil
}

// NextSecond advances the process by one second and reports whether that
// second is cloudy. When the current interval pair runs out a new one is
// drawn, which can fail with ErrRenewalExhausted.
func (c *CloudCoverBinary) NextSecond() (bool, error) {
	c.elapsed++
	for {
		if c.elapsed < c.cloudLength {
			return true, nil
		}
		if c.elapsed < c.cloudLength+c.clearLength {
			return false, nil
		}
		if err := c.renew(); err != nil {
			return false, err
		}
	}
}

// renew draws the next cloudy/clear interval pair. Candidate cloud lengths
// are proposed from the chord-length law; each implies the unique clear
// length that pins the cloudy share of the history to the target cover. A
// candidate is admissible if that clear length is positive and the implied
// history total stays under the cap; among admissible candidates the one
// closest to the target history total wins. If no candidate is admissible
// the history is dropped once and the proposal round repeated; a second
// empty round surfaces ErrRenewalExhausted.
func (c *CloudCoverBinary) renew() error {
	for attempt := 0; attempt < 2; attempt++ {
		if c.propose() {
			return nil
		}
		c.sigmaCloud = 0
		c.sigmaClear = 0
	}
	return ErrRenewalExhausted
}

func (c *CloudCoverBinary) propose() bool {
	found := false
	bestDist := math.Inf(1)
	var bestCloud, bestClear float64
	for i := 0; i < renewalCandidates; i++ {
		cloud := c.size.Rand() / c.windspeed
		cloudTotal := c.sigmaCloud + cloud
		clear := cloudTotal/c.cloudCover - cloudTotal - c.sigmaClear
		if clear <= 0 {
			continue
		}
		total := cloudTotal + c.sigmaClear + clear
		if total >= maxHistorySeconds {
			continue
		}
		if d := math.Abs(total - targetHistorySeconds); d < bestDist {
			found = true
			bestDist = d
			bestCloud = cloud
			bestClear = clear
		}
	}
	if !found {
		return false
	}
	c.cloudLength = bestCloud
	c.clearLength = bestClear
	c.sigmaCloud += bestCloud
	c.sigmaClear += bestClear
	c.elapsed = 0
	return true
}
