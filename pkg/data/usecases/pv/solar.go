package pv

import (
	"math"
	"time"
)

const (
	solarConstantWM2 = 1361.0
	clearnessIndex   = 1.0 // clean-air value
)

func deg2rad(d float64) float64 {
	return d * math.Pi / 180
}

// solarDeclination returns the sun's declination in radians for the given
// day of year.
func solarDeclination(dayOfYear float64) float64 {
	g := deg2rad(356.6 + 0.9856*dayOfYear)
	l := deg2rad(278.97 + 0.9856*dayOfYear + 1.9165*math.Sin(g))
	return math.Asin(0.39785 * math.Sin(l))
}

// equationOfTime returns the offset between apparent and mean solar time in
// minutes for the given day of year.
func equationOfTime(dayOfYear float64) float64 {
	b := 2 * math.Pi * (dayOfYear - 81) / 364
	return 9.87*math.Sin(2*b) - 7.53*math.Cos(b) - 1.5*math.Sin(b)
}

// cosSolarZenith returns the cosine of the solar zenith angle at instant t
// for a site at latitude (degrees north) and longitude (degrees east).
// Non-positive values mean the sun is at or below the horizon.
func cosSolarZenith(t time.Time, latitudeDeg, longitudeDeg float64) float64 {
	u := t.UTC()
	day := float64(u.YearDay())
	hours := float64(u.Hour()) + float64(u.Minute())/60 + float64(u.Second())/3600

	solarHours := hours + longitudeDeg/15 + equationOfTime(day)/60
	hourAngle := deg2rad((solarHours - 12) * 15)

	lat := deg2rad(latitudeDeg)
	decl := solarDeclination(day)
	return math.Sin(lat)*math.Sin(decl) + math.Cos(lat)*math.Cos(decl)*math.Cos(hourAngle)
}

// clearSkyGHI returns the clear-sky global horizontal irradiance in W/m² at
// instant t given the solar zenith cosine. Atmospheric pressure follows from
// the site altitude and ambient temperature, vapor pressure from ambient
// temperature and relative humidity. Zero when the sun is below the horizon.
func clearSkyGHI(t time.Time, cosZ, altitudeM, ambientTempC, humidityPct float64) float64 {
	if cosZ <= 0 {
		return 0
	}
	day := float64(t.UTC().YearDay())

	// Earth-sun distance correction
	dr := 1 + 0.033*math.Cos(2*math.Pi/365*day)
	extraterrestrial := solarConstantWM2 * dr * cosZ

	// Atmospheric pressure (kPa)
	kelvin := ambientTempC + 273.15
	pressure := 101.325 * math.Exp(-altitudeM*9.80665/(8.314472/0.028967*kelvin))

	// Vapor pressure (kPa)
	saturation := 0.61121 * math.Exp((18.678-ambientTempC/234.5)*ambientTempC/(257.14+ambientTempC))
	vapor := saturation * humidityPct / 100

	// Precipitable water (mm)
	w := 0.15*vapor*pressure + 0.6

	// Beam and diffuse transmittances. The sine of the solar elevation
	// equals the zenith cosine.
	sinElev := cosZ
	beam := 0.98 * math.Exp(-0.00146*pressure/(clearnessIndex*sinElev)-0.075*math.Pow(w/sinElev, 0.4))
	var diffuse float64
	if beam > 0.15 {
		diffuse = 0.35 - 0.36*beam
	} else {
		diffuse = 0.18 + 0.82*beam
	}
	return (beam + diffuse) * extraterrestrial
}

// indexCeiling returns the physical upper bound on the clear-sky index for
// the given solar zenith cosine. Cloud-edge brightening can push the index
// past 1, but the headroom shrinks as the sun climbs.
func indexCeiling(cosZ float64) float64 {
	return 27.21*math.Exp(-114*cosZ) + 1.665*math.Exp(-4.494*cosZ) + 1.08
}

// clipIndex clips a raw clear-sky index into its physical range for the
// given solar zenith cosine.
func clipIndex(index, cosZ float64) float64 {
	if index < 0 {
		return 0
	}
	if ceiling := indexCeiling(cosZ); index > ceiling {
		return ceiling
	}
	return index
}
