package telemetry

import (
	"codeberg.org/mutker/meteostationd/internal/errors"
	"codeberg.org/mutker/meteostationd/internal/logger"
)

// Outcome classifies one publish attempt.
type Outcome int

const (
	Sent Outcome = iota
	SkippedNotConnected
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Sent:
		return "sent"
	case SkippedNotConnected:
		return "skipped_not_connected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transport is the publishing capability provided by the connectivity
// manager.
type Transport interface {
	SessionActive() bool
	Publish(topic string, payload []byte) error
}

// Publisher serializes records and hands them to the transport. No retry
// here: the next cycle produces a fresh record.
type Publisher struct {
	transport Transport
}

func NewPublisher(transport Transport) *Publisher {
	return &Publisher{transport: transport}
}

func (p *Publisher) Publish(record *Record) Outcome {
	if !p.transport.SessionActive() {
		return SkippedNotConnected
	}

	payload, err := record.MarshalJSON()
	if err != nil {
		logger.Error().Err(err).Msg("failed to serialize telemetry record")
		return Failed
	}

	if err := p.transport.Publish(record.Topic(), payload); err != nil {
		logPublishError(err, record.Topic())
		return Failed
	}

	logger.Debug().Str("topic", record.Topic()).Msg("telemetry published")

	return Sent
}

func logPublishError(err error, topic string) {
	var appErr errors.Error
	if errors.As(err, &appErr) {
		logger.ErrorWithCode(appErr).Str("topic", topic).Msg("publish failed")
		return
	}

	logger.Error().Err(err).Str("topic", topic).Msg("publish failed")
}
