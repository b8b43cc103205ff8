package protocol

import (
	"encoding/binary"
	"fmt"
)

// ErrFraming is wrapped by every codec error in this package.
var ErrFraming = fmt.Errorf("framing error")

// EncodeHeader encodes an RUDP header to binary format.
// Format: [SeqNum:4][AckNum:4][DataSize:4] = 12 bytes, big-endian signed.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(buf[0:4], uint32(h.SeqNum))
	binary.BigEndian.PutUint32(buf[4:8], uint32(h.AckNum))
	binary.BigEndian.PutUint32(buf[8:12], uint32(h.DataSize))
	return buf
}

// DecodeHeader decodes an RUDP header from binary format.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: insufficient data for header: got %d bytes, need %d", ErrFraming, len(data), HeaderSize)
	}

	return Header{
		SeqNum:   int32(binary.BigEndian.Uint32(data[0:4])),
		AckNum:   int32(binary.BigEndian.Uint32(data[4:8])),
		DataSize: int32(binary.BigEndian.Uint32(data[8:12])),
	}, nil
}

// String returns a human-readable representation of the header.
func (h Header) String() string {
	return fmt.Sprintf("Header{Seq: %d, Ack: %d, DataSize: %d}", h.SeqNum, h.AckNum, h.DataSize)
}
