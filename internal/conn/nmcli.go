package conn

import (
	"net"
	"os/exec"

	"codeberg.org/mutker/meteostationd/internal/errors"
)

// NMCLILink drives a station-mode link through NetworkManager. Join hands
// the association to nmcli without waiting (--wait 0); the manager observes
// progress through Status.
type NMCLILink struct {
	iface string
}

func NewNMCLILink(iface string) *NMCLILink {
	return &NMCLILink{iface: iface}
}

func (l *NMCLILink) Join(ssid, password string) error {
	cmd := exec.Command("nmcli", "--wait", "0",
		"device", "wifi", "connect", ssid,
		"password", password, "ifname", l.iface)
	if err := cmd.Run(); err != nil {
		return errors.New().Wrap(ErrLinkJoinFailed, err)
	}

	return nil
}

func (l *NMCLILink) Status() (bool, string) {
	iface, err := net.InterfaceByName(l.iface)
	if err != nil || iface.Flags&net.FlagUp == 0 {
		return false, ""
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return false, ""
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ip := ipNet.IP.To4(); ip != nil && !ip.IsLinkLocalUnicast() {
			return true, ip.String()
		}
	}

	return false, ""
}

func (l *NMCLILink) Leave() error {
	cmd := exec.Command("nmcli", "device", "disconnect", l.iface)
	if err := cmd.Run(); err != nil {
		return errors.New().Wrap(ErrLinkLeaveFailed, err)
	}

	return nil
}
