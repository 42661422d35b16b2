package station

import (
	"context"
	"time"

	"codeberg.org/mutker/meteostationd/internal/clock"
	"codeberg.org/mutker/meteostationd/internal/conn"
	"codeberg.org/mutker/meteostationd/internal/errors"
	"codeberg.org/mutker/meteostationd/internal/logger"
	"codeberg.org/mutker/meteostationd/internal/sensor"
	"codeberg.org/mutker/meteostationd/internal/telemetry"
)

type Config struct {
	Interval   time.Duration
	NTCChannel int
	LDRChannel int
	ADCMax     int
	UserID     string
	DeviceID   string
}

// Loop drives one acquisition cycle after another: ensure connectivity,
// sample, convert, log, publish, sleep. It has no fatal path; every
// collaborator failure is logged and retried on the next cycle.
type Loop struct {
	cfg        Config
	manager    *conn.Manager
	sampler    *sensor.Sampler
	thermistor *sensor.Thermistor
	climate    *sensor.ClimateReader
	clk        clock.Clock
	publisher  *telemetry.Publisher
}

func New(
	cfg Config,
	manager *conn.Manager,
	sampler *sensor.Sampler,
	thermistor *sensor.Thermistor,
	climate *sensor.ClimateReader,
	clk clock.Clock,
	publisher *telemetry.Publisher,
) *Loop {
	return &Loop{
		cfg:        cfg,
		manager:    manager,
		sampler:    sampler,
		thermistor: thermistor,
		climate:    climate,
		clk:        clk,
		publisher:  publisher,
	}
}

// Run executes cycles until the context is canceled. The first cycle starts
// immediately; later ones follow the configured interval.
func (l *Loop) Run(ctx context.Context) error {
	if l.cfg.Interval <= 0 {
		return errors.New().WithData(errors.ErrInvalidInterval, l.cfg.Interval)
	}

	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		l.Cycle()

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Cycle performs one acquisition pass. Exported so tests can step the loop
// without real time.
func (l *Loop) Cycle() {
	state := l.manager.EnsureConnectivity()

	climate := l.climate.Read()
	ntcCelsius, ntcErr := l.readNTC()
	illuminance, ldrErr := l.readIlluminance()

	l.logReadings(state, climate, ntcCelsius, ntcErr, illuminance, ldrErr)

	if ntcErr != nil || ldrErr != nil {
		// Degraded cycle: nothing publishable, retry with fresh samples.
		return
	}

	record := &telemetry.Record{
		Timestamp:   l.timestamp(),
		UserID:      l.cfg.UserID,
		DeviceID:    l.cfg.DeviceID,
		Climate:     climate,
		NTCCelsius:  ntcCelsius,
		Illuminance: illuminance,
	}

	outcome := l.publisher.Publish(record)
	logger.Info().Str("outcome", outcome.String()).Msg("publish cycle complete")
}

func (l *Loop) readNTC() (float64, error) {
	avg, err := l.sampler.Average(l.cfg.NTCChannel)
	if err != nil {
		return 0, err
	}

	return l.thermistor.Convert(avg)
}

func (l *Loop) readIlluminance() (float64, error) {
	avg, err := l.sampler.Average(l.cfg.LDRChannel)
	if err != nil {
		return 0, err
	}

	return sensor.ToPercent(avg, l.cfg.ADCMax), nil
}

func (l *Loop) timestamp() string {
	now, synced := l.clk.Now()
	if !synced {
		return ""
	}

	return clock.Timestamp(now)
}

func (l *Loop) logReadings(
	state conn.State,
	climate sensor.ClimateReading,
	ntcCelsius float64,
	ntcErr error,
	illuminance float64,
	ldrErr error,
) {
	event := logger.Info().
		Bool("link_up", state.LinkUp).
		Bool("session_up", state.SessionUp)

	if state.LocalAddr != "" {
		event.Str("address", state.LocalAddr)
	}

	if climate.Valid() {
		temperatureC, humidityPct := climate.Values()
		event.Float64("dht_temperature", temperatureC).
			Float64("dht_humidity", humidityPct)
	} else {
		event.Str("dht", "read error")
	}

	if ntcErr != nil {
		logger.Warn().Err(ntcErr).Msg("ntc channel fault")
	} else {
		event.Float64("ntc_temperature", ntcCelsius)
	}

	if ldrErr != nil {
		logger.Warn().Err(ldrErr).Msg("ldr channel fault")
	} else {
		event.Float64("luminosity", illuminance)
	}

	event.Msg("sensor readings")
}
