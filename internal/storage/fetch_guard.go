package storage

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

const maxFetchRedirects = 3

var errBlockedDestination = errors.New("destination address is not allowed")

// Shared address space (RFC 6598) is not covered by netip's IsPrivate.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// NewFetchClient returns the client used to download remote media sources.
// Addresses are checked after DNS resolution, at dial time, so a public
// hostname that resolves to an internal address is refused as well.
func NewFetchClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
		Control:   refuseInternalDial,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	// A proxy would be dialed instead of the target and bypass the check.
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Timeout:       timeout,
		Transport:     transport,
		CheckRedirect: checkFetchRedirect,
	}
}

func refuseInternalDial(_ string, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", errBlockedDestination, host)
	}
	if isInternalAddr(addr) {
		return fmt.Errorf("%w: %s", errBlockedDestination, addr)
	}

	return nil
}

func checkFetchRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxFetchRedirects {
		return fmt.Errorf("stopped after %d redirects", maxFetchRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", errBlockedDestination, req.URL.Scheme)
	}
	if addr, err := netip.ParseAddr(req.URL.Hostname()); err == nil && isInternalAddr(addr) {
		return fmt.Errorf("%w: %s", errBlockedDestination, addr)
	}
	return nil
}

func isInternalAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() ||
		sharedAddressSpace.Contains(addr)
}
