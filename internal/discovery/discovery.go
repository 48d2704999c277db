// Package discovery advertises the gateway on the local network over mDNS,
// so controllers can find the status endpoint without static addressing.
package discovery

import (
	"fmt"
	"strconv"

	"github.com/enbility/zeroconf/v3"
)

// ServiceType is the DNS-SD service type for gate gateways.
const ServiceType = "_gate-gateway._tcp"

// Domain is the mDNS domain.
const Domain = "local."

// Advertiser is an active mDNS advertisement.
type Advertiser struct {
	server *zeroconf.Server
}

// Advertise registers the gateway's status endpoint on all interfaces. The
// TXT records carry the gate count so a browser can display fleet capacity
// without connecting.
func Advertise(instance string, port, gates int) (*Advertiser, error) {
	txt := []string{
		"gates=" + strconv.Itoa(gates),
	}
	server, err := zeroconf.Register(instance, ServiceType, Domain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("register mdns service: %w", err)
	}
	return &Advertiser{server: server}, nil
}

// Shutdown withdraws the advertisement.
func (a *Advertiser) Shutdown() {
	a.server.Shutdown()
}
