package protocol

import (
	"encoding/binary"
	"fmt"
)

// EncodeKftpHeader encodes the KFTP length header.
// Format: [DataSize:4] = 4 bytes, big-endian signed.
func EncodeKftpHeader(h KftpHeader) []byte {
	buf := make([]byte, KftpHeaderSize)
	binary.BigEndian.PutUint32(buf, uint32(h.DataSize))
	return buf
}

// DecodeKftpHeader decodes the KFTP length header. A negative length is a
// framing error.
func DecodeKftpHeader(data []byte) (KftpHeader, error) {
	if len(data) < KftpHeaderSize {
		return KftpHeader{}, fmt.Errorf("%w: insufficient data for kftp header: got %d bytes, need %d", ErrFraming, len(data), KftpHeaderSize)
	}

	size := int32(binary.BigEndian.Uint32(data[:KftpHeaderSize]))
	if size < 0 {
		return KftpHeader{}, fmt.Errorf("%w: negative kftp payload length %d", ErrFraming, size)
	}
	return KftpHeader{DataSize: size}, nil
}
