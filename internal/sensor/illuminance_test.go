package sensor_test

import (
	"testing"

	"codeberg.org/mutker/meteostationd/internal/sensor"
	"github.com/stretchr/testify/assert"
)

func TestToPercentBounds(t *testing.T) {
	assert.InDelta(t, 0.0, sensor.ToPercent(0, 4095), 1e-9)
	assert.InDelta(t, 100.0, sensor.ToPercent(4095, 4095), 1e-9)
}

func TestToPercentMidpoint(t *testing.T) {
	assert.InDelta(t, 50.0, sensor.ToPercent(2048, 4095), 0.1)
}

func TestToPercentLinearAndMonotonic(t *testing.T) {
	previous := -1.0
	for raw := 0.0; raw <= 4095; raw += 100 {
		pct := sensor.ToPercent(raw, 4095)
		assert.GreaterOrEqual(t, pct, 0.0)
		assert.LessOrEqual(t, pct, 100.0)
		assert.Greater(t, pct, previous)
		previous = pct
	}

	// Linearity: doubling the sample doubles the percentage
	assert.InDelta(t, 2*sensor.ToPercent(1000, 4095), sensor.ToPercent(2000, 4095), 1e-9)
}
