package conn

// LinkDriver models the station-mode wireless link capability. Join starts an
// association attempt and returns without waiting for it to complete; the
// manager polls Status until the link is up or the attempt budget runs out.
type LinkDriver interface {
	Join(ssid, password string) error
	Status() (up bool, localAddr string)
	Leave() error
}

// Session is the encrypted messaging session telemetry is published over.
type Session interface {
	Connect() error
	Connected() bool
	Publish(topic string, payload []byte) error
	Disconnect()
}

// State is the connectivity snapshot handed back to the acquisition loop
// after each EnsureConnectivity call.
type State struct {
	LinkUp    bool
	LocalAddr string
	SessionUp bool
}
