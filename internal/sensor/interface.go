package sensor

// RawReader reads a single raw sample from an analog channel. Implementations
// wrap the ADC hardware; the sampler owns averaging and pacing.
type RawReader interface {
	ReadRaw(channel int) (int, error)
}

// ClimateDevice returns one combined temperature and humidity frame.
// Implementations may report unusable values as NaN rather than an error.
type ClimateDevice interface {
	Sense() (temperatureC, humidityPct float64, err error)
}

// Calibration holds the thermistor divider constants. Fixed at startup.
type Calibration struct {
	SeriesResistance   float64
	BetaCoefficient    float64
	NominalResistance  float64
	NominalTemperature float64
}
