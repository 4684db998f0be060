package common

// InterpolatedSampler smooths a stream of draws from a source function by
// holding the two most recent samples and exposing linear blends between
// them. Processes that are re-sampled on coarse boundaries (an hour, a day)
// use it to move continuously through intermediate instants instead of
// jumping when the boundary is crossed.
type InterpolatedSampler struct {
	source func() float64
	before float64
	after  float64
}

// NewInterpolatedSampler returns a sampler over source. The initial pair of
// samples is drawn immediately, so the sampler is usable without a prior
// call to Advance. The source is trusted to return finite values.
func NewInterpolatedSampler(source func() float64) *InterpolatedSampler {
	return &InterpolatedSampler{
		source: source,
		before: source(),
		after:  source(),
	}
}

// Advance shifts the window one sample forward: the trailing sample is
// discarded, the leading sample becomes the trailing one, and a fresh draw
// becomes the leading sample. It returns the new trailing sample, which is
// the value Interpolate(0) would now report.
func (s *InterpolatedSampler) Advance() float64 {
	s.before = s.after
	s.after = s.source()
	return s.before
}

// Interpolate returns fraction*after + (1-fraction)*before. At fraction 0 it
// is exactly the trailing sample, at 1 exactly the leading one. The fraction
// is not clamped.
func (s *InterpolatedSampler) Interpolate(fraction float64) float64 {
	return fraction*s.after + (1-fraction)*s.before
}
