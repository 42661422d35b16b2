package sensor

import "codeberg.org/mutker/meteostationd/internal/errors"

const (
	// Sampling errors
	ErrSampleRead = errors.ErrorCode("sensor_sample_read_failed")
	ErrNoSamples  = errors.ErrorCode("sensor_no_samples")

	// Conversion errors
	ErrNTCSaturated = errors.ErrorCode("ntc_saturated")

	// Hardware adapter errors
	ErrADCInit     = errors.ErrorCode("adc_init_failed")
	ErrADCChannel  = errors.ErrorCode("adc_channel_invalid")
	ErrClimateInit = errors.ErrorCode("climate_init_failed")
	ErrClimateRead = errors.ErrorCode("climate_read_failed")
	ErrShutdown    = errors.ErrorCode("sensor_shutdown_failed")
)
