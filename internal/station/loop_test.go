package station_test

import (
	"context"
	"math"
	"strconv"
	"testing"
	"time"

	"codeberg.org/mutker/meteostationd/internal/clock"
	"codeberg.org/mutker/meteostationd/internal/conn"
	"codeberg.org/mutker/meteostationd/internal/errors"
	"codeberg.org/mutker/meteostationd/internal/logger"
	"codeberg.org/mutker/meteostationd/internal/sensor"
	"codeberg.org/mutker/meteostationd/internal/station"
	"codeberg.org/mutker/meteostationd/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	if err := logger.Init("error", true); err != nil {
		panic(err)
	}
}

const (
	ntcChannel = 0
	ldrChannel = 1
	adcMax     = 4095
)

type fixedReader struct {
	values map[int]int
}

func (f *fixedReader) ReadRaw(channel int) (int, error) {
	return f.values[channel], nil
}

type fixedClimate struct {
	temperatureC float64
	humidityPct  float64
}

func (f *fixedClimate) Sense() (float64, float64, error) {
	return f.temperatureC, f.humidityPct, nil
}

type fixedClock struct {
	t      time.Time
	synced bool
}

func (f fixedClock) Now() (time.Time, bool) {
	return f.t, f.synced
}

type upLink struct{}

func (upLink) Join(_, _ string) error { return nil }
func (upLink) Status() (bool, string) { return true, "192.168.1.50" }
func (upLink) Leave() error           { return nil }

type downLink struct{}

func (downLink) Join(_, _ string) error { return nil }
func (downLink) Status() (bool, string) { return false, "" }
func (downLink) Leave() error           { return nil }

type captureSession struct {
	connected bool
	refuse    bool
	payloads  map[string][]byte
}

func newCaptureSession() *captureSession {
	return &captureSession{payloads: make(map[string][]byte)}
}

func (s *captureSession) Connect() error {
	if s.refuse {
		return errors.New().New(conn.ErrConnectTimeout)
	}
	s.connected = true

	return nil
}

func (s *captureSession) Connected() bool { return s.connected }

func (s *captureSession) Publish(topic string, payload []byte) error {
	s.payloads[topic] = payload
	return nil
}

func (s *captureSession) Disconnect() { s.connected = false }

func calibration() sensor.Calibration {
	return sensor.Calibration{
		SeriesResistance:   10000.0,
		BetaCoefficient:    3950.0,
		NominalResistance:  1760.0,
		NominalTemperature: 25.0,
	}
}

func newTestLoop(link conn.LinkDriver, session conn.Session, reader sensor.RawReader,
	climate sensor.ClimateDevice, clk clock.Clock,
) (*station.Loop, *conn.Manager) {
	manager := conn.NewManager(link, session, "ssid", "secret")
	manager.LinkPollInterval = time.Millisecond
	manager.SessionRetryDelay = time.Millisecond
	manager.LinkPollAttempts = 2

	loop := station.New(
		station.Config{
			Interval:   10 * time.Millisecond,
			NTCChannel: ntcChannel,
			LDRChannel: ldrChannel,
			ADCMax:     adcMax,
			UserID:     "user@example.com",
			DeviceID:   "meteoStation_1",
		},
		manager,
		sensor.NewSampler(reader, 20, 0),
		sensor.NewThermistor(calibration(), adcMax),
		sensor.NewClimateReader(climate),
		clk,
		telemetry.NewPublisher(manager),
	)

	return loop, manager
}

// ntcCelsiusString renders the expected wire value for a raw NTC sample via
// the closed-form Beta equation.
func ntcCelsiusString(avg float64) string {
	calib := calibration()
	resistance := calib.SeriesResistance * avg / (adcMax - avg)
	kelvin := 1.0 / (1.0/(calib.NominalTemperature+273.15) +
		math.Log(resistance/calib.NominalResistance)/calib.BetaCoefficient)

	return strconv.FormatFloat(kelvin-273.15, 'f', 1, 64)
}

func TestCycleProducesExactPayload(t *testing.T) {
	session := newCaptureSession()
	zone := time.FixedZone("CET", 3600)
	loop, _ := newTestLoop(
		upLink{},
		session,
		&fixedReader{values: map[int]int{ntcChannel: 2048, ldrChannel: 4095}},
		&fixedClimate{temperatureC: 20.7, humidityPct: 52.0},
		fixedClock{t: time.Date(2026, 2, 8, 15, 30, 0, 0, zone), synced: true},
	)

	loop.Cycle()

	payload, ok := session.payloads["sensors/user@example.com/meteoStation_1"]
	require.True(t, ok, "expected a publish on the identity topic")

	expected := `{"timestamp":"2026-02-08T15:30:00+01:00","user":"user@example.com",` +
		`"device":"meteoStation_1","dht_temperature":20.7,"dht_humidity":52.0,` +
		`"ntc_temperature":` + ntcCelsiusString(2048) + `,"luminosity":100}`
	assert.Equal(t, expected, string(payload))
}

func TestCycleUnsynchronizedClock(t *testing.T) {
	session := newCaptureSession()
	loop, _ := newTestLoop(
		upLink{},
		session,
		&fixedReader{values: map[int]int{ntcChannel: 2048, ldrChannel: 1000}},
		&fixedClimate{temperatureC: 20.7, humidityPct: 52.0},
		fixedClock{synced: false},
	)

	loop.Cycle()

	payload := session.payloads["sensors/user@example.com/meteoStation_1"]
	require.NotEmpty(t, payload)
	assert.Contains(t, string(payload), `{"timestamp":null,`)
}

func TestCycleClimateInvalid(t *testing.T) {
	session := newCaptureSession()
	loop, _ := newTestLoop(
		upLink{},
		session,
		&fixedReader{values: map[int]int{ntcChannel: 2048, ldrChannel: 1000}},
		&fixedClimate{temperatureC: math.NaN(), humidityPct: math.NaN()},
		fixedClock{t: time.Now(), synced: true},
	)

	loop.Cycle()

	payload := session.payloads["sensors/user@example.com/meteoStation_1"]
	require.NotEmpty(t, payload)
	assert.Contains(t, string(payload), `"dht_temperature":null,"dht_humidity":null`)
}

func TestCycleThermistorSaturated(t *testing.T) {
	session := newCaptureSession()
	loop, _ := newTestLoop(
		upLink{},
		session,
		&fixedReader{values: map[int]int{ntcChannel: adcMax, ldrChannel: 1000}},
		&fixedClimate{temperatureC: 20.7, humidityPct: 52.0},
		fixedClock{t: time.Now(), synced: true},
	)

	// Must not panic; the degraded cycle publishes nothing and the next one
	// retries with fresh samples.
	loop.Cycle()
	assert.Empty(t, session.payloads)

	loop.Cycle()
	assert.Empty(t, session.payloads)
}

func TestCycleLinkDown(t *testing.T) {
	session := newCaptureSession()
	loop, _ := newTestLoop(
		downLink{},
		session,
		&fixedReader{values: map[int]int{ntcChannel: 2048, ldrChannel: 1000}},
		&fixedClimate{temperatureC: 20.7, humidityPct: 52.0},
		fixedClock{t: time.Now(), synced: true},
	)

	loop.Cycle()
	assert.Empty(t, session.payloads, "publish skipped while offline")

	loop.Cycle()
	assert.Empty(t, session.payloads)
}

func TestCycleSessionRefused(t *testing.T) {
	session := newCaptureSession()
	session.refuse = true
	loop, _ := newTestLoop(
		upLink{},
		session,
		&fixedReader{values: map[int]int{ntcChannel: 2048, ldrChannel: 1000}},
		&fixedClimate{temperatureC: 20.7, humidityPct: 52.0},
		fixedClock{t: time.Now(), synced: true},
	)

	loop.Cycle()
	assert.Empty(t, session.payloads)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	session := newCaptureSession()
	loop, _ := newTestLoop(
		upLink{},
		session,
		&fixedReader{values: map[int]int{ntcChannel: 2048, ldrChannel: 1000}},
		&fixedClimate{temperatureC: 20.7, humidityPct: 52.0},
		fixedClock{t: time.Now(), synced: true},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, loop.Run(ctx))
	assert.NotEmpty(t, session.payloads)
}

func TestRunCanceledBeforeFirstCycle(t *testing.T) {
	session := newCaptureSession()
	loop, _ := newTestLoop(
		upLink{},
		session,
		&fixedReader{values: map[int]int{ntcChannel: 2048, ldrChannel: 1000}},
		&fixedClimate{temperatureC: 20.7, humidityPct: 52.0},
		fixedClock{t: time.Now(), synced: true},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, loop.Run(ctx))
	assert.Empty(t, session.payloads, "no cycle runs after cancellation")
}

func TestRunRejectsInvalidInterval(t *testing.T) {
	session := newCaptureSession()
	manager := conn.NewManager(upLink{}, session, "ssid", "secret")

	broken := station.New(
		station.Config{Interval: 0},
		manager,
		sensor.NewSampler(&fixedReader{values: map[int]int{}}, 1, 0),
		sensor.NewThermistor(calibration(), adcMax),
		sensor.NewClimateReader(&fixedClimate{}),
		fixedClock{},
		telemetry.NewPublisher(manager),
	)

	err := broken.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidInterval, errors.CodeOf(err))
}
