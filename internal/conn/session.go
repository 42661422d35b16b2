package conn

import (
	"crypto/tls"
	"fmt"
	"time"

	"codeberg.org/mutker/meteostationd/internal/errors"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	keepAlive      = 30 * time.Second
)

// MQTTSession is the encrypted messaging session over paho. Auto-reconnect
// stays disabled: reconnection belongs to the Manager state machine so it
// happens at cycle boundaries with the documented retry budget.
type MQTTSession struct {
	client mqtt.Client
}

type SessionConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	ClientID string
}

func NewMQTTSession(cfg SessionConfig) *MQTTSession {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("ssl://%s:%d", cfg.Host, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)

	// Trust-on-first-use: the broker presents a self-signed certificate.
	opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true})

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetKeepAlive(keepAlive)
	opts.SetConnectTimeout(connectTimeout)

	return &MQTTSession{client: mqtt.NewClient(opts)}
}

func (s *MQTTSession) Connect() error {
	errFactory := errors.New()

	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return errFactory.New(ErrConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return errFactory.Wrap(ErrSessionDown, err)
	}

	return nil
}

func (s *MQTTSession) Connected() bool {
	return s.client.IsConnectionOpen()
}

func (s *MQTTSession) Publish(topic string, payload []byte) error {
	errFactory := errors.New()

	token := s.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errFactory.WithData(ErrPublishFailed, topic)
	}
	if err := token.Error(); err != nil {
		return errFactory.Wrap(ErrPublishFailed, err)
	}

	return nil
}

func (s *MQTTSession) Disconnect() {
	s.client.Disconnect(250)
}
