package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestMessageEncodeDecode(t *testing.T) {
	tests := []struct {
		name    string
		message Message
	}{
		{
			name:    "data frame with payload",
			message: NewDataMessage(1, []byte("hello")),
		},
		{
			name:    "data frame with empty payload",
			message: NewDataMessage(3, nil),
		},
		{
			name:    "pure ack",
			message: NewAckMessage(9),
		},
		{
			name:    "maximum sized payload",
			message: NewDataMessage(2, bytes.Repeat([]byte{0xAB}, DataSize)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeMessage(tt.message)
			if err != nil {
				t.Fatalf("EncodeMessage() error = %v", err)
			}

			if len(encoded) < HeaderSize || len(encoded) > BufSize {
				t.Errorf("frame length = %d, want within [%d, %d]", len(encoded), HeaderSize, BufSize)
			}

			decoded, err := DecodeMessage(encoded)
			if err != nil {
				t.Fatalf("DecodeMessage() error = %v", err)
			}

			if decoded.Header != tt.message.Header {
				t.Errorf("header = %+v, want %+v", decoded.Header, tt.message.Header)
			}
			if !bytes.Equal(decoded.Data, tt.message.Data) {
				t.Errorf("payload = %q, want %q", decoded.Data, tt.message.Data)
			}
		})
	}
}

func TestEncodeMessageRejectsMismatchedSize(t *testing.T) {
	m := Message{
		Header: Header{SeqNum: 1, AckNum: 0, DataSize: 10},
		Data:   []byte("short"),
	}
	if _, err := EncodeMessage(m); !errors.Is(err, ErrFraming) {
		t.Errorf("EncodeMessage() error = %v, want ErrFraming", err)
	}
}

func TestEncodeMessageRejectsOversizedPayload(t *testing.T) {
	m := NewDataMessage(1, make([]byte, DataSize+1))
	if _, err := EncodeMessage(m); !errors.Is(err, ErrFraming) {
		t.Errorf("EncodeMessage() error = %v, want ErrFraming", err)
	}
}

func TestDecodeMessageRejectsTrailingMismatch(t *testing.T) {
	tests := []struct {
		name     string
		declared int32
		trailing int
	}{
		{"declares more than carried", 10, 5},
		{"declares less than carried", 2, 5},
		{"declares payload on bare header", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := EncodeHeader(Header{SeqNum: 1, AckNum: 0, DataSize: tt.declared})
			frame = append(frame, make([]byte, tt.trailing)...)

			if _, err := DecodeMessage(frame); !errors.Is(err, ErrFraming) {
				t.Errorf("DecodeMessage() error = %v, want ErrFraming", err)
			}
		})
	}
}

func TestIsAck(t *testing.T) {
	if !NewAckMessage(4).IsAck() {
		t.Error("NewAckMessage(4).IsAck() = false, want true")
	}
	if NewDataMessage(1, []byte("x")).IsAck() {
		t.Error("data frame IsAck() = true, want false")
	}
	if NewDataMessage(1, nil).IsAck() {
		t.Error("empty data frame IsAck() = true, want false")
	}
}
