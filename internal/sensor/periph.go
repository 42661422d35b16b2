package sensor

import (
	"codeberg.org/mutker/meteostationd/internal/errors"
	periphconn "periph.io/x/conn/v3"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/devices/v3/bmxx80"
)

const adcReferenceVoltage = 3300 * physic.MilliVolt

// ADS1115Reader exposes single-ended ADS1115 inputs as raw sample channels.
// Channel numbers map to the AIN0..AIN3 pins requested at construction. The
// chip reports native 16-bit counts against its own full-scale range, so
// readings are rescaled onto [0, adcMax] before the conversion math sees them.
type ADS1115Reader struct {
	pins   map[int]analog.PinADC
	adcMax int
}

func NewADS1115Reader(bus i2c.Bus, adcMax int, channels ...int) (*ADS1115Reader, error) {
	errFactory := errors.New()

	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		return nil, errFactory.Wrap(ErrADCInit, err)
	}

	pins := make(map[int]analog.PinADC, len(channels))
	for _, num := range channels {
		channel, err := inputChannel(num)
		if err != nil {
			return nil, err
		}

		pin, err := adc.PinForChannel(channel, adcReferenceVoltage, 1*physic.Hertz, ads1x15.SaveEnergy)
		if err != nil {
			return nil, errFactory.Wrap(ErrADCInit, err)
		}
		pins[num] = pin
	}

	return &ADS1115Reader{pins: pins, adcMax: adcMax}, nil
}

func (r *ADS1115Reader) ReadRaw(channel int) (int, error) {
	errFactory := errors.New()

	pin, ok := r.pins[channel]
	if !ok {
		return 0, errFactory.WithData(ErrADCChannel, channel)
	}

	sample, err := pin.Read()
	if err != nil {
		return 0, errFactory.Wrap(ErrSampleRead, err)
	}

	return scaleSample(sample.V, adcReferenceVoltage, r.adcMax), nil
}

// scaleSample maps a measured voltage onto the raw range the divider math
// expects, clamping at the rails.
func scaleSample(v, ref physic.ElectricPotential, adcMax int) int {
	if v <= 0 {
		return 0
	}
	if v >= ref {
		return adcMax
	}

	return int(float64(v)/float64(ref)*float64(adcMax) + 0.5)
}

func (r *ADS1115Reader) Halt() error {
	for _, pin := range r.pins {
		resource, ok := pin.(periphconn.Resource)
		if !ok {
			continue
		}
		if err := resource.Halt(); err != nil {
			return errors.New().Wrap(ErrShutdown, err)
		}
	}

	return nil
}

func inputChannel(num int) (ads1x15.Channel, error) {
	switch num {
	case 0:
		return ads1x15.Channel0, nil
	case 1:
		return ads1x15.Channel1, nil
	case 2:
		return ads1x15.Channel2, nil
	case 3:
		return ads1x15.Channel3, nil
	default:
		return ads1x15.Channel0, errors.New().WithData(ErrADCChannel, num)
	}
}

// BME280Climate adapts a BME280 environmental sensor to the ClimateDevice
// capability.
type BME280Climate struct {
	dev *bmxx80.Dev
}

func NewBME280Climate(bus i2c.Bus, addr uint16) (*BME280Climate, error) {
	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, errors.New().Wrap(ErrClimateInit, err)
	}

	return &BME280Climate{dev: dev}, nil
}

func (c *BME280Climate) Sense() (temperatureC, humidityPct float64, err error) {
	var env physic.Env
	if err := c.dev.Sense(&env); err != nil {
		return 0, 0, errors.New().Wrap(ErrClimateRead, err)
	}

	return env.Temperature.Celsius(), float64(env.Humidity) / float64(physic.PercentRH), nil
}

func (c *BME280Climate) Halt() error {
	if err := c.dev.Halt(); err != nil {
		return errors.New().Wrap(ErrShutdown, err)
	}

	return nil
}
