package scraper

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrBlockedAddress is returned when a fetch would connect to a private,
// loopback or link-local address.
var ErrBlockedAddress = errors.New("address not allowed")

// blockedCIDRs are ranges a user-submitted URL must never reach.
var blockedCIDRs = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"100.64.0.0/10",  // carrier-grade NAT
	"169.254.0.0/16", // link-local, cloud metadata
	"0.0.0.0/8",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
}

var blockedNetworks = mustParseCIDRs(blockedCIDRs)

func mustParseCIDRs(cidrs []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		nets = append(nets, network)
	}
	return nets
}

func isBlockedIP(ip net.IP) bool {
	if ip.IsUnspecified() || ip.IsMulticast() {
		return true
	}
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// guardControl runs after DNS resolution, so every redirect hop and every
// resolved address is checked, not just the submitted hostname.
func guardControl(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	ip := net.ParseIP(host)
	if ip == nil || isBlockedIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*fetcherOptions)

type fetcherOptions struct {
	blockPrivate bool
}

// WithPrivateNetworksBlocked refuses connections to internal addresses.
func WithPrivateNetworksBlocked() FetcherOption {
	return func(o *fetcherOptions) {
		o.blockPrivate = true
	}
}
