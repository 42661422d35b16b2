package conn

import (
	"time"

	"codeberg.org/mutker/meteostationd/internal/errors"
	"codeberg.org/mutker/meteostationd/internal/logger"
)

const (
	defaultLinkPollInterval  = 500 * time.Millisecond
	defaultLinkPollAttempts  = 40
	defaultSessionRetries    = 3
	defaultSessionRetryDelay = 2 * time.Second
)

// Manager owns the two connectivity axes: the station-mode link and the
// messaging session layered on top of it. Both recover independently; a
// failed attempt is retried on the next cycle, never escalated.
type Manager struct {
	link    LinkDriver
	session Session

	ssid     string
	password string

	linkUp    bool
	localAddr string
	sessionUp bool

	// Overridable for tests; defaults follow the firmware budget of a 20s
	// link bound and three session tries 2s apart.
	LinkPollInterval  time.Duration
	LinkPollAttempts  int
	SessionRetries    int
	SessionRetryDelay time.Duration
}

func NewManager(link LinkDriver, session Session, ssid, password string) *Manager {
	return &Manager{
		link:              link,
		session:           session,
		ssid:              ssid,
		password:          password,
		LinkPollInterval:  defaultLinkPollInterval,
		LinkPollAttempts:  defaultLinkPollAttempts,
		SessionRetries:    defaultSessionRetries,
		SessionRetryDelay: defaultSessionRetryDelay,
	}
}

// EnsureConnectivity checks both axes and reconnects whatever is down. It
// always returns control to the caller: connect failures are logged and
// retried on the next cycle.
func (m *Manager) EnsureConnectivity() State {
	if err := m.ensureLink(); err != nil {
		logger.Warn().Err(err).Msg("wifi link unavailable, will retry next cycle")
	}

	if m.linkUp {
		if err := m.ensureSession(); err != nil {
			logger.Warn().Err(err).Msg("mqtt session unavailable, will retry next cycle")
		}
	}

	return State{
		LinkUp:    m.linkUp,
		LocalAddr: m.localAddr,
		SessionUp: m.sessionUp,
	}
}

func (m *Manager) ensureLink() error {
	errFactory := errors.New()

	if up, addr := m.link.Status(); up {
		if !m.linkUp {
			logger.Info().Str("address", addr).Msg("wifi link restored")
		}
		m.linkUp = true
		m.localAddr = addr

		return nil
	}

	if m.linkUp {
		logger.Warn().Msg("wifi link lost, reconnecting")
		m.linkUp = false
		m.localAddr = ""
		m.sessionUp = false
	}

	logger.Info().Str("ssid", m.ssid).Msg("connecting wifi link")
	if err := m.link.Join(m.ssid, m.password); err != nil {
		return errFactory.Wrap(ErrLinkJoinFailed, err)
	}

	for attempt := 0; attempt < m.LinkPollAttempts; attempt++ {
		time.Sleep(m.LinkPollInterval)

		if up, addr := m.link.Status(); up {
			m.linkUp = true
			m.localAddr = addr
			logger.Info().Str("address", addr).Msg("wifi link connected")

			return nil
		}
	}

	return errFactory.WithData(ErrLinkTimeout, m.ssid)
}

func (m *Manager) ensureSession() error {
	errFactory := errors.New()

	if m.session.Connected() {
		m.sessionUp = true
		return nil
	}

	if m.sessionUp {
		logger.Warn().Msg("mqtt session lost, reconnecting")
		m.sessionUp = false
	}

	var lastErr error
	for attempt := 1; attempt <= m.SessionRetries; attempt++ {
		logger.Info().Int("attempt", attempt).Msg("connecting mqtt session")

		if lastErr = m.session.Connect(); lastErr == nil {
			m.sessionUp = true
			logger.Info().Msg("mqtt session connected")

			return nil
		}

		if attempt < m.SessionRetries {
			time.Sleep(m.SessionRetryDelay)
		}
	}

	return errFactory.Wrap(ErrSessionExhausted, lastErr)
}

// SessionActive reports whether the last EnsureConnectivity call left a
// usable session. Used by the publisher to skip network I/O while offline.
func (m *Manager) SessionActive() bool {
	return m.sessionUp && m.session.Connected()
}

// Publish sends one payload over the session.
func (m *Manager) Publish(topic string, payload []byte) error {
	errFactory := errors.New()

	if !m.SessionActive() {
		return errFactory.New(ErrSessionDown)
	}

	if err := m.session.Publish(topic, payload); err != nil {
		return errFactory.Wrap(ErrPublishFailed, err)
	}

	return nil
}

// Shutdown tears the session down and releases the wireless link.
func (m *Manager) Shutdown() {
	m.session.Disconnect()
	m.sessionUp = false

	if err := m.link.Leave(); err != nil {
		logger.Warn().Err(err).Msg("failed to release wifi link")
	}
	m.linkUp = false
	m.localAddr = ""
}
