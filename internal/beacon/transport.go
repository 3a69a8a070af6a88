// ABOUTME: UDP multicast transport for beacon datagrams
// ABOUTME: One blocking datagram per Send; no retries, no envelope
package beacon

import (
	"fmt"
	"net"
)

// Transport sends one datagram per call. Send blocks until the transport
// layer completes the write; it never waits on a peer.
type Transport interface {
	Send(payload []byte) error
}

// Endpoint names the destination group and port.
type Endpoint struct {
	Group string
	Port  int
}

// DefaultEndpoint is the beacon's multicast destination.
var DefaultEndpoint = Endpoint{Group: "239.1.1.1", Port: 5000}

// UDPTransport writes datagrams to a single pre-dialed UDP destination,
// usually a multicast group.
type UDPTransport struct {
	conn *net.UDPConn
	dest *net.UDPAddr
}

// DialUDP resolves the endpoint and connects a UDP socket to it.
func DialUDP(ep Endpoint) (*UDPTransport, error) {
	ip := net.ParseIP(ep.Group)
	if ip == nil {
		return nil, fmt.Errorf("invalid group address %q", ep.Group)
	}

	dest := &net.UDPAddr{IP: ip, Port: ep.Port}
	conn, err := net.DialUDP("udp", nil, dest)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", dest, err)
	}

	return &UDPTransport{conn: conn, dest: dest}, nil
}

// Send writes one datagram.
func (t *UDPTransport) Send(payload []byte) error {
	if _, err := t.conn.Write(payload); err != nil {
		return fmt.Errorf("send to %s: %w", t.dest, err)
	}
	return nil
}

// Close releases the socket.
func (t *UDPTransport) Close() error {
	return t.conn.Close()
}

// Destination returns the resolved destination address.
func (t *UDPTransport) Destination() string {
	return t.dest.String()
}
