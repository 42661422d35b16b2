package sensor

// ToPercent maps an averaged LDR sample to relative illuminance. Linear over
// the full ADC range, no failure modes.
func ToPercent(avg float64, adcMax int) float64 {
	return avg * 100.0 / float64(adcMax)
}
