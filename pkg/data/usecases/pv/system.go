package pv

import (
	"math"
	"time"
)

// Reference site: a rooftop installation in Munich.
const (
	defaultLatitudeDeg  = 48.12
	defaultLongitudeDeg = 11.60
	defaultAltitudeM    = 34.0
	defaultHumidityPct  = 60.0
)

// Electrical defaults approximating a 2.5 kW residential array.
const (
	defaultRatedDCW    = 2500.0
	defaultRatedACW    = 2500.0
	defaultNOCTC       = 46.0
	defaultGammaPerC   = -0.0045
	defaultInverterEff = 0.96

	stcIrradianceWM2  = 1000.0
	stcCellTempC      = 25.0
	noctIrradianceWM2 = 800.0
	noctAmbientC      = 20.0
)

// System describes a fixed PV installation and its site.
type System struct {
	LatitudeDeg  float64
	LongitudeDeg float64
	AltitudeM    float64
	HumidityPct  float64

	RatedDCW    float64
	RatedACW    float64
	NOCTC       float64
	GammaPerC   float64
	InverterEff float64
}

// DefaultSystem returns the reference Munich system.
func DefaultSystem() System {
	return System{
		LatitudeDeg:  defaultLatitudeDeg,
		LongitudeDeg: defaultLongitudeDeg,
		AltitudeM:    defaultAltitudeM,
		HumidityPct:  defaultHumidityPct,
		RatedDCW:     defaultRatedDCW,
		RatedACW:     defaultRatedACW,
		NOCTC:        defaultNOCTC,
		GammaPerC:    defaultGammaPerC,
		InverterEff:  defaultInverterEff,
	}
}

// Irradiance converts a raw clear-sky index into global horizontal
// irradiance in W/m² at instant t, clipping the index into its physical
// range first. Zero when the sun is below the horizon.
func (s System) Irradiance(t time.Time, index, ambientTempC float64) float64 {
	cosZ := cosSolarZenith(t, s.LatitudeDeg, s.LongitudeDeg)
	if cosZ <= 0 {
		return 0
	}
	return clipIndex(index, cosZ) * clearSkyGHI(t, cosZ, s.AltitudeM, ambientTempC, s.HumidityPct)
}

// CellTempC estimates the cell temperature from irradiance and ambient
// temperature using the NOCT approximation.
func (s System) CellTempC(ghiWM2, ambientTempC float64) float64 {
	return ambientTempC + (s.NOCTC-noctAmbientC)/noctIrradianceWM2*ghiWM2
}

// ACPowerW converts irradiance and ambient temperature into AC power in
// watts, derating the DC side with cell temperature and clipping at the
// inverter rating. Never negative.
func (s System) ACPowerW(ghiWM2, ambientTempC float64) (acW, cellTempC float64) {
	cell := s.CellTempC(ghiWM2, ambientTempC)
	dc := s.RatedDCW * ghiWM2 / stcIrradianceWM2 * (1 + s.GammaPerC*(cell-stcCellTempC))
	ac := math.Min(dc, s.RatedACW) * s.InverterEff
	if ac < 0 {
		ac = 0
	}
	return ac, cell
}
