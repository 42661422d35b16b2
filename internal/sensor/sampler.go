package sensor

import (
	"time"

	"codeberg.org/mutker/meteostationd/internal/errors"
)

// Sampler damps ADC noise by averaging a burst of raw readings taken with a
// fixed inter-sample delay.
type Sampler struct {
	reader  RawReader
	samples int
	delay   time.Duration
}

func NewSampler(reader RawReader, samples int, delay time.Duration) *Sampler {
	return &Sampler{
		reader:  reader,
		samples: samples,
		delay:   delay,
	}
}

// Average takes the configured number of raw readings from channel and
// returns their arithmetic mean.
func (s *Sampler) Average(channel int) (float64, error) {
	errFactory := errors.New()

	if s.samples <= 0 {
		return 0, errFactory.New(ErrNoSamples)
	}

	sum := 0.0
	for i := 0; i < s.samples; i++ {
		if i > 0 && s.delay > 0 {
			time.Sleep(s.delay)
		}

		raw, err := s.reader.ReadRaw(channel)
		if err != nil {
			return 0, errFactory.Wrap(ErrSampleRead, err)
		}
		sum += float64(raw)
	}

	return sum / float64(s.samples), nil
}
