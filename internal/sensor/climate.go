package sensor

import (
	"math"

	"codeberg.org/mutker/meteostationd/internal/logger"
)

// ClimateReading is the tri-state result of one climate sensor frame. A
// failed or NaN frame becomes Invalid here so NaN never travels further.
type ClimateReading struct {
	temperatureC float64
	humidityPct  float64
	valid        bool
}

func ValidClimate(temperatureC, humidityPct float64) ClimateReading {
	return ClimateReading{
		temperatureC: temperatureC,
		humidityPct:  humidityPct,
		valid:        true,
	}
}

func InvalidClimate() ClimateReading {
	return ClimateReading{}
}

func (r ClimateReading) Valid() bool {
	return r.valid
}

// Values returns the temperature and humidity of a valid reading. Both are
// zero when the reading is invalid.
func (r ClimateReading) Values() (temperatureC, humidityPct float64) {
	return r.temperatureC, r.humidityPct
}

// ClimateReader wraps the climate sensor capability behind the tri-state
// boundary.
type ClimateReader struct {
	device ClimateDevice
}

func NewClimateReader(device ClimateDevice) *ClimateReader {
	return &ClimateReader{device: device}
}

func (c *ClimateReader) Read() ClimateReading {
	temperatureC, humidityPct, err := c.device.Sense()
	if err != nil {
		logger.Debug().Err(err).Msg("climate sensor read failed")
		return InvalidClimate()
	}

	if math.IsNaN(temperatureC) || math.IsNaN(humidityPct) {
		return InvalidClimate()
	}

	return ValidClimate(temperatureC, humidityPct)
}
