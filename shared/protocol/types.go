package protocol

// Wire-format constants. All multi-byte integers on the wire are big-endian,
// signed, two's complement, 32 bits wide.
const (
	// HeaderSize is the fixed size of the RUDP header:
	// [SeqNum:4][AckNum:4][DataSize:4] = 12 bytes
	HeaderSize = 12

	// BufSize is the maximum on-wire size of a single RUDP frame.
	BufSize = 1024

	// DataSize is the maximum payload carried by one RUDP frame.
	DataSize = BufSize - HeaderSize

	// KftpHeaderSize is the fixed size of the KFTP length header:
	// [DataSize:4] = 4 bytes
	KftpHeaderSize = 4

	// KftpFirstFragmentSize is the payload capacity of the first RUDP
	// fragment of a KFTP transfer, after the length header.
	KftpFirstFragmentSize = DataSize - KftpHeaderSize
)

// Header is the RUDP message header. A data frame carries SeqNum > 0 and
// AckNum == 0; a pure-ack frame carries SeqNum == 0, DataSize == 0 and
// AckNum set to the acknowledged sequence number.
type Header struct {
	SeqNum   int32
	AckNum   int32
	DataSize int32
}

// Message is a complete RUDP frame: header plus exactly DataSize payload bytes.
type Message struct {
	Header Header
	Data   []byte
}

// KftpHeader is the KFTP length header carried at the start of the first
// RUDP fragment of a transfer. DataSize is the total logical payload length
// across all fragments.
type KftpHeader struct {
	DataSize int32
}

// NewDataMessage builds a data frame for the given sequence number.
func NewDataMessage(seqNum int32, data []byte) Message {
	return Message{
		Header: Header{SeqNum: seqNum, AckNum: 0, DataSize: int32(len(data))},
		Data:   data,
	}
}

// NewAckMessage builds a pure-ack frame acknowledging ackNum.
func NewAckMessage(ackNum int32) Message {
	return Message{
		Header: Header{SeqNum: 0, AckNum: ackNum, DataSize: 0},
	}
}

// IsAck reports whether the message is a pure-ack frame.
func (m Message) IsAck() bool {
	return m.Header.SeqNum == 0 && m.Header.DataSize == 0 && m.Header.AckNum != 0
}
