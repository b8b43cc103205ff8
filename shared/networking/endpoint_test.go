package networking

import (
	"bytes"
	"errors"
	"net"
	"testing"
	"time"
)

func newTestEndpoint(t *testing.T, timeout time.Duration) *UDPEndpoint {
	t.Helper()
	ep, err := ListenUDP(0, EndpointConfig{ReceiveTimeout: timeout})
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ep.Close() })
	return ep
}

func loopback(ep *UDPEndpoint) *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: ep.LocalAddr().Port}
}

func TestUDPEndpointSendReceive(t *testing.T) {
	a := newTestEndpoint(t, time.Second)
	b := newTestEndpoint(t, time.Second)

	payload := []byte("datagram payload")
	if err := a.Send(payload, loopback(b)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	data, addr, err := b.Receive(1024)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("received %q, want %q", data, payload)
	}
	if addr.Port != a.LocalAddr().Port {
		t.Errorf("sender port = %d, want %d", addr.Port, a.LocalAddr().Port)
	}
}

func TestUDPEndpointReceiveTimeout(t *testing.T) {
	ep := newTestEndpoint(t, 100*time.Millisecond)

	start := time.Now()
	_, _, err := ep.Receive(1024)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Receive() error = %v, want ErrTimeout", err)
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("Receive() returned after %v, expected to wait for the deadline", elapsed)
	}
}

func TestUnreliableEndpointFlipsAndDuplicates(t *testing.T) {
	a := newTestEndpoint(t, time.Second)
	b := newTestEndpoint(t, time.Second)

	unreliable := NewUnreliableEndpoint(a)
	payload := []byte{0x01, 0x02, 0x03}
	if err := unreliable.Send(payload, loopback(b)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	// First datagram on the wire is the bit-flipped copy
	first, _, err := b.Receive(1024)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if !bytes.Equal(first, []byte{0xFE, 0xFD, 0xFC}) {
		t.Errorf("first datagram = % x, want fe fd fc", first)
	}

	// Second is the original
	second, _, err := b.Receive(1024)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if !bytes.Equal(second, payload) {
		t.Errorf("second datagram = % x, want % x", second, payload)
	}
}

func TestUnreliableEndpointDropsEverySecondInbound(t *testing.T) {
	a := newTestEndpoint(t, time.Second)
	b := newTestEndpoint(t, time.Second)

	unreliable := NewUnreliableEndpoint(b)
	for _, msg := range []string{"one", "two", "three", "four"} {
		if err := a.Send([]byte(msg), loopback(b)); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}

	// "one" and "three" are read and dropped
	data, _, err := unreliable.Receive(1024)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if string(data) != "two" {
		t.Errorf("first delivered datagram = %q, want \"two\"", data)
	}

	data, _, err = unreliable.Receive(1024)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if string(data) != "four" {
		t.Errorf("second delivered datagram = %q, want \"four\"", data)
	}
}

func TestAddrEqual(t *testing.T) {
	a := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9000}
	b := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9000}
	c := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9001}

	if !AddrEqual(a, b) {
		t.Error("AddrEqual(a, b) = false, want true")
	}
	if AddrEqual(a, c) {
		t.Error("AddrEqual(a, c) = true, want false")
	}
	if AddrEqual(a, nil) {
		t.Error("AddrEqual(a, nil) = true, want false")
	}
	if !AddrEqual(nil, nil) {
		t.Error("AddrEqual(nil, nil) = false, want true")
	}
}
