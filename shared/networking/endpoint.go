package networking

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrTimeout is returned by Receive when no datagram arrives within the
// configured receive timeout.
var ErrTimeout = errors.New("receive timed out")

// Endpoint is an unreliable datagram endpoint. It makes no ordering,
// deduplication, or delivery guarantees; reliability is layered on top.
type Endpoint interface {
	// Send attempts to deliver data to addr. Delivery is fire-and-forget;
	// a returned error reports a local transmission failure only.
	Send(data []byte, addr *net.UDPAddr) error

	// Receive blocks until a datagram of at most maxBytes arrives or the
	// receive timeout elapses, in which case it returns ErrTimeout.
	Receive(maxBytes int) ([]byte, *net.UDPAddr, error)

	// Close releases the underlying socket.
	Close() error
}

// EndpointConfig contains configuration for a UDP endpoint.
type EndpointConfig struct {
	ReceiveTimeout time.Duration // Timeout applied to each Receive call
}

// DefaultEndpointConfig returns the default endpoint configuration.
func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		ReceiveTimeout: 500 * time.Millisecond,
	}
}

// UDPEndpoint wraps an OS datagram socket bound to a local address.
type UDPEndpoint struct {
	conn   *net.UDPConn
	config EndpointConfig
}

// ListenUDP binds a UDP endpoint on the given local port. Port 0 picks an
// ephemeral port.
func ListenUDP(port int, config EndpointConfig) (*UDPEndpoint, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: port})
	if err != nil {
		return nil, fmt.Errorf("failed to create UDP socket: %w", err)
	}
	return NewUDPEndpoint(conn, config), nil
}

// NewUDPEndpoint wraps an already-bound UDP socket.
func NewUDPEndpoint(conn *net.UDPConn, config EndpointConfig) *UDPEndpoint {
	return &UDPEndpoint{conn: conn, config: config}
}

// LocalAddr returns the endpoint's bound address.
func (e *UDPEndpoint) LocalAddr() *net.UDPAddr {
	return e.conn.LocalAddr().(*net.UDPAddr)
}

// Send transmits a single datagram to addr.
func (e *UDPEndpoint) Send(data []byte, addr *net.UDPAddr) error {
	if _, err := e.conn.WriteToUDP(data, addr); err != nil {
		return fmt.Errorf("failed to send datagram to %s: %w", addr, err)
	}
	return nil
}

// Receive reads a single datagram, waiting at most the configured receive
// timeout.
func (e *UDPEndpoint) Receive(maxBytes int) ([]byte, *net.UDPAddr, error) {
	if err := e.conn.SetReadDeadline(time.Now().Add(e.config.ReceiveTimeout)); err != nil {
		return nil, nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	buf := make([]byte, maxBytes)
	n, addr, err := e.conn.ReadFromUDP(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, nil, ErrTimeout
		}
		return nil, nil, fmt.Errorf("failed to receive datagram: %w", err)
	}
	return buf[:n], addr, nil
}

// Close closes the underlying socket.
func (e *UDPEndpoint) Close() error {
	return e.conn.Close()
}

// AddrEqual reports whether two UDP addresses name the same peer.
func AddrEqual(a, b *net.UDPAddr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.IP.Equal(b.IP) && a.Port == b.Port
}
