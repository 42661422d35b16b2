package sensor

import (
	"math"

	"codeberg.org/mutker/meteostationd/internal/errors"
)

const kelvinOffset = 273.15

// Thermistor converts averaged ADC readings from an NTC voltage divider into
// degrees Celsius using the Beta equation.
type Thermistor struct {
	calib  Calibration
	adcMax float64
}

func NewThermistor(calib Calibration, adcMax int) *Thermistor {
	return &Thermistor{
		calib:  calib,
		adcMax: float64(adcMax),
	}
}

// Convert maps an averaged sample to a temperature. A sample at or beyond
// either rail means an open or shorted divider; that surfaces as an
// ErrNTCSaturated fault instead of a division by zero.
func (t *Thermistor) Convert(avg float64) (float64, error) {
	if avg <= 0 || avg >= t.adcMax {
		return 0, errors.New().WithData(ErrNTCSaturated, avg)
	}

	resistance := t.calib.SeriesResistance * avg / (t.adcMax - avg)
	kelvin := 1.0 / (1.0/(t.calib.NominalTemperature+kelvinOffset) +
		math.Log(resistance/t.calib.NominalResistance)/t.calib.BetaCoefficient)

	return kelvin - kelvinOffset, nil
}

// Resistance returns the divider resistance for an averaged sample, mostly
// for diagnostics.
func (t *Thermistor) Resistance(avg float64) float64 {
	if avg >= t.adcMax {
		return math.Inf(1)
	}

	return t.calib.SeriesResistance * avg / (t.adcMax - avg)
}
