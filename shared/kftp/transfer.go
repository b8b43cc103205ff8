// Package kftp carries arbitrarily sized byte payloads over RUDP by
// splitting them into RUDP-sized fragments behind a length header and
// reassembling them at the receiver.
package kftp

import (
	"fmt"
	"net"

	"github.com/kftp/kftp/shared/networking"
	"github.com/kftp/kftp/shared/protocol"
	"github.com/kftp/kftp/shared/rudp"
)

// Sender segments a payload into RUDP fragments. Each fragment is delivered
// through the session and is therefore individually acked.
type Sender struct {
	session *rudp.Session
}

// NewSender creates a KFTP sender over the given session.
func NewSender(session *rudp.Session) *Sender {
	return &Sender{session: session}
}

// Send transmits payload to peer. The first fragment carries the 4-byte
// length header followed by up to 1008 payload bytes; each further fragment
// carries up to 1012 payload bytes.
func (s *Sender) Send(payload []byte, peer *net.UDPAddr) error {
	header := protocol.EncodeKftpHeader(protocol.KftpHeader{DataSize: int32(len(payload))})

	if len(header)+len(payload) <= protocol.DataSize {
		return s.session.Send(append(header, payload...), peer)
	}

	offset := protocol.DataSize - len(header)
	first := make([]byte, 0, protocol.DataSize)
	first = append(first, header...)
	first = append(first, payload[:offset]...)
	if err := s.session.Send(first, peer); err != nil {
		return fmt.Errorf("failed to send first fragment: %w", err)
	}

	for offset < len(payload) {
		n := len(payload) - offset
		if n > protocol.DataSize {
			n = protocol.DataSize
		}
		if err := s.session.Send(payload[offset:offset+n], peer); err != nil {
			return fmt.Errorf("failed to send fragment at offset %d: %w", offset, err)
		}
		offset += n
	}
	return nil
}

// Receiver reassembles a payload from RUDP fragments.
type Receiver struct {
	session *rudp.Session
}

// NewReceiver creates a KFTP receiver over the given session.
func NewReceiver(session *rudp.Session) *Receiver {
	return &Receiver{session: session}
}

// Receive reads the first fragment, parses the declared length, then reads
// and concatenates further fragments from the same sender until the declared
// length is reached. Fragments from other peers are discarded; cross-peer
// mixing is forbidden.
//
// A single receive timeout is not fatal: the peer retransmits unacked
// fragments, so the loop keeps waiting. Up to rudp.MaxRetries consecutive
// timeouts are ridden out; the next one abandons the transfer with
// networking.ErrTimeout, mirroring the sender's retry budget.
func (r *Receiver) Receive() ([]byte, *net.UDPAddr, error) {
	first, addr, err := r.receiveFragment(nil)
	if err != nil {
		return nil, nil, err
	}

	header, err := protocol.DecodeKftpHeader(first)
	if err != nil {
		return nil, nil, err
	}

	payload := first[protocol.KftpHeaderSize:]
	for len(payload) < int(header.DataSize) {
		next, _, err := r.receiveFragment(addr)
		if err != nil {
			return nil, nil, fmt.Errorf("transfer from %s aborted at %d of %d bytes: %w",
				addr, len(payload), header.DataSize, err)
		}
		payload = append(payload, next...)
	}

	return payload, addr, nil
}

// receiveFragment returns the next fragment, from the given peer if one is
// pinned, skipping other peers' messages and riding out transient timeouts.
func (r *Receiver) receiveFragment(peer *net.UDPAddr) ([]byte, *net.UDPAddr, error) {
	timeouts := 0
	for {
		data, addr, err := r.session.Receive()
		if err != nil {
			return nil, nil, err
		}
		if addr == nil {
			if timeouts >= rudp.MaxRetries {
				return nil, nil, networking.ErrTimeout
			}
			timeouts++
			continue
		}
		if peer != nil && !networking.AddrEqual(addr, peer) {
			continue
		}
		return data, addr, nil
	}
}
