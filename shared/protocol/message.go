package protocol

import "fmt"

// EncodeMessage encodes a complete RUDP frame (header + payload) to binary.
func EncodeMessage(m Message) ([]byte, error) {
	if int(m.Header.DataSize) != len(m.Data) {
		return nil, fmt.Errorf("%w: header data size %d disagrees with payload length %d", ErrFraming, m.Header.DataSize, len(m.Data))
	}
	if len(m.Data) > DataSize {
		return nil, fmt.Errorf("%w: payload too large: %d bytes (max %d)", ErrFraming, len(m.Data), DataSize)
	}

	buf := make([]byte, 0, HeaderSize+len(m.Data))
	buf = append(buf, EncodeHeader(m.Header)...)
	buf = append(buf, m.Data...)
	return buf, nil
}

// DecodeMessage decodes a complete RUDP frame from binary. The trailing byte
// count must agree exactly with the header's DataSize.
func DecodeMessage(data []byte) (Message, error) {
	header, err := DecodeHeader(data)
	if err != nil {
		return Message{}, err
	}

	payload := data[HeaderSize:]
	if int(header.DataSize) != len(payload) {
		return Message{}, fmt.Errorf("%w: header declares %d payload bytes, frame carries %d", ErrFraming, header.DataSize, len(payload))
	}

	m := Message{Header: header}
	if len(payload) > 0 {
		m.Data = make([]byte, len(payload))
		copy(m.Data, payload)
	}
	return m, nil
}
