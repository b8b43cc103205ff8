// Package rudp implements a stop-and-wait reliable datagram protocol over an
// unreliable endpoint: retransmission until acked, duplicate suppression, and
// in-order delivery of single messages.
package rudp

import (
	"errors"
	"fmt"
	"log"
	"net"

	"github.com/kftp/kftp/shared/networking"
	"github.com/kftp/kftp/shared/protocol"
)

// MaxRetries is the retransmission budget of a single send. The operation
// fails on the retry after the budget is spent.
const MaxRetries = 5

// ErrAckTimeout is returned by Send when the retry budget is exhausted
// without observing an acknowledgement from the peer.
var ErrAckTimeout = errors.New("transport timeout waiting for ack")

// peerState is the sequence state of one peer pairing. It is created on
// first contact and lives for the lifetime of the session.
type peerState struct {
	lastSent     int32 // most recently acknowledged outgoing sequence number
	lastReceived int32 // most recently delivered incoming sequence number
}

// Session owns one endpoint and both protocol halves. The sender and
// receiver share the per-peer counters, so the sender can re-ack a peer
// retransmission it observes while waiting for its own ack. Sessions are
// single-threaded: all blocking happens on the endpoint's Receive.
type Session struct {
	endpoint networking.Endpoint
	peers    map[string]*peerState
}

// NewSession creates a session over the given endpoint.
func NewSession(endpoint networking.Endpoint) *Session {
	return &Session{
		endpoint: endpoint,
		peers:    make(map[string]*peerState),
	}
}

func (s *Session) state(addr *net.UDPAddr) *peerState {
	key := addr.String()
	st, ok := s.peers[key]
	if !ok {
		st = &peerState{}
		s.peers[key] = st
	}
	return st
}

// Send transmits one data message to peer and blocks until it is
// acknowledged or the retry budget is exhausted. Retransmission happens only
// when the endpoint's receive times out; stray frames are discarded without
// resending.
func (s *Session) Send(data []byte, peer *net.UDPAddr) error {
	st := s.state(peer)
	seqNum := st.lastSent + 1

	frame, err := protocol.EncodeMessage(protocol.NewDataMessage(seqNum, data))
	if err != nil {
		return err
	}

	retries := 0
	for {
		if err := s.endpoint.Send(frame, peer); err != nil {
			return err
		}

		err := s.awaitAck(st, seqNum, peer)
		if err == nil {
			st.lastSent = seqNum
			return nil
		}
		if !errors.Is(err, networking.ErrTimeout) {
			return err
		}
		if retries >= MaxRetries {
			return fmt.Errorf("%w: seq %d unacked after %d retries", ErrAckTimeout, seqNum, retries)
		}
		retries++
		log.Printf("rudp: timeout waiting for ack of seq %d, retrying (%d/%d)", seqNum, retries, MaxRetries)
	}
}

// awaitAck waits for the ack of seqNum from peer. It services peer
// retransmissions observed in the meantime by re-acking them, and discards
// everything else. Returns networking.ErrTimeout when the endpoint's receive
// deadline passes with no ack.
func (s *Session) awaitAck(st *peerState, seqNum int32, peer *net.UDPAddr) error {
	for {
		data, addr, err := s.endpoint.Receive(protocol.BufSize)
		if err != nil {
			return err
		}
		if !networking.AddrEqual(addr, peer) {
			continue
		}

		m, err := protocol.DecodeMessage(data)
		if err != nil {
			// corrupted frame, drop
			continue
		}

		if m.Header.AckNum == seqNum {
			return nil
		}

		// A peer data frame we already delivered means our earlier ack was
		// lost; re-ack it so the peer stops retransmitting. Anything else is
		// stale and dropped.
		if !m.IsAck() && m.Header.SeqNum > 0 && m.Header.SeqNum == st.lastReceived {
			s.sendAck(m.Header.SeqNum, addr)
		}
	}
}

// Receive blocks until the next new in-order data message arrives from any
// peer, acks it, and delivers its payload with the sender address. A receive
// timeout returns (nil, nil, nil) so callers can observe idleness.
//
// Duplicates (a retransmission of the last delivered message) are re-acked
// and suppressed. Frames that match neither the next expected nor the last
// delivered sequence number, including pure acks and corrupted datagrams,
// are dropped silently.
func (s *Session) Receive() ([]byte, *net.UDPAddr, error) {
	for {
		data, addr, err := s.endpoint.Receive(protocol.BufSize)
		if errors.Is(err, networking.ErrTimeout) {
			return nil, nil, nil
		}
		if err != nil {
			return nil, nil, err
		}

		m, err := protocol.DecodeMessage(data)
		if err != nil {
			continue
		}

		st := s.state(addr)
		switch {
		case m.Header.SeqNum == st.lastReceived+1 && m.Header.SeqNum > 0:
			st.lastReceived = m.Header.SeqNum
			s.sendAck(m.Header.SeqNum, addr)
			return m.Data, addr, nil

		case m.Header.SeqNum > 0 && m.Header.SeqNum == st.lastReceived:
			// retransmission of the last delivered message, its ack was lost
			s.sendAck(m.Header.SeqNum, addr)

		default:
			// pure ack or stale/garbled frame
		}
	}
}

// sendAck emits a pure-ack frame. Acks ride the raw endpoint and are
// themselves never acked.
func (s *Session) sendAck(ackNum int32, addr *net.UDPAddr) {
	frame, err := protocol.EncodeMessage(protocol.NewAckMessage(ackNum))
	if err != nil {
		log.Printf("rudp: failed to encode ack %d: %v", ackNum, err)
		return
	}
	if err := s.endpoint.Send(frame, addr); err != nil {
		log.Printf("rudp: failed to send ack %d to %s: %v", ackNum, addr, err)
	}
}
