package networking

import "net"

// UnreliableEndpoint deterministically injects faults for tests. Every
// outbound datagram is preceded by a copy with all bits flipped, simulating
// a corrupted duplicate arriving alongside the original; every second
// inbound datagram is read and dropped, simulating a lost response. The
// flipped copy must not crash the parsers on the far side: its header
// decodes to sequence and ack numbers that match no expected state.
type UnreliableEndpoint struct {
	inner     Endpoint
	recvCount int
}

// NewUnreliableEndpoint wraps an endpoint with deterministic fault injection.
func NewUnreliableEndpoint(inner Endpoint) *UnreliableEndpoint {
	return &UnreliableEndpoint{inner: inner}
}

// Send transmits a bit-flipped copy of data followed by the original.
func (e *UnreliableEndpoint) Send(data []byte, addr *net.UDPAddr) error {
	flipped := make([]byte, len(data))
	for i, b := range data {
		flipped[i] = b ^ 0xFF
	}
	if err := e.inner.Send(flipped, addr); err != nil {
		return err
	}
	return e.inner.Send(data, addr)
}

// Receive drops every second inbound datagram before delivering one.
func (e *UnreliableEndpoint) Receive(maxBytes int) ([]byte, *net.UDPAddr, error) {
	if e.recvCount%2 == 0 {
		if _, _, err := e.inner.Receive(maxBytes); err != nil {
			return nil, nil, err
		}
		e.recvCount++
	}

	data, addr, err := e.inner.Receive(maxBytes)
	if err != nil {
		return nil, nil, err
	}
	e.recvCount++
	return data, addr, nil
}

// Close closes the wrapped endpoint.
func (e *UnreliableEndpoint) Close() error {
	return e.inner.Close()
}
