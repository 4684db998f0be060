package clearsky

import (
	"math"
	"math/rand/v2"
)

// AsymmetricLaplace is an asymmetric Laplace distribution with location Loc,
// scale Scale and asymmetry Kappa. Kappa == 1 recovers the symmetric Laplace;
// larger values put more mass below the location. It samples via the
// closed-form inverse CDF and follows the distuv convention of drawing from
// Src when one is set.
type AsymmetricLaplace struct {
	Loc   float64
	Scale float64
	Kappa float64
	Src   rand.Source
}

// Rand returns a random sample drawn from the distribution.
func (d AsymmetricLaplace) Rand() float64 {
	var u float64
	if d.Src == nil {
		u = rand.Float64()
	} else {
		u = rand.New(d.Src).Float64()
	}
	k2 := d.Kappa * d.Kappa
	var x float64
	if u < k2/(1+k2) {
		x = d.Kappa * math.Log(u*(1+k2)/k2)
	} else {
		x = -math.Log((1-u)*(1+k2)) / d.Kappa
	}
	return d.Loc + d.Scale*x
}

// CloudSize draws cloud chord lengths in meters from a power law with
// density proportional to x^-Alpha, truncated to [Min, Max]. Sampling uses
// the inverse CDF of the truncated law.
type CloudSize struct {
	Alpha float64
	Min   float64
	Max   float64
	Src   rand.Source
}

// Rand returns a random sample drawn from the distribution.
func (d CloudSize) Rand() float64 {
	var u float64
	if d.Src == nil {
		u = rand.Float64()
	} else {
		u = rand.New(d.Src).Float64()
	}
	exp := 1 - d.Alpha
	lo := math.Pow(d.Min, exp)
	hi := math.Pow(d.Max, exp)
	return math.Pow(lo+u*(hi-lo), 1/exp)
}
