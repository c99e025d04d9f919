package openlog

// CommandFrame is an encoded command: opcode followed by the payload.
type CommandFrame struct {
	opcode    Opcode
	payload   []byte
	truncated bool
}

// Encode builds a frame for op carrying text.
// Text longer than MaxPayload bytes is truncated.
func Encode(op Opcode, text string) CommandFrame {
	f := CommandFrame{opcode: op}
	if len(text) > MaxPayload {
		text, f.truncated = text[:MaxPayload], true
	}
	f.payload = []byte(text)
	return f
}

// EncodeCommand builds a frame for a categorized command.
func EncodeCommand(cmd Command, text string) CommandFrame {
	return Encode(cmd.Opcode(), text)
}

// Opcode returns the opcode.
func (f CommandFrame) Opcode() Opcode {
	return f.opcode
}

// Payload returns a copy of the payload.
func (f CommandFrame) Payload() []byte {
	return append([]byte(nil), f.payload...)
}

// Truncated reports whether the text was cut to fit the frame.
func (f CommandFrame) Truncated() bool {
	return f.truncated
}

// Len returns the encoded length.
func (f CommandFrame) Len() int {
	return len(f.payload) + 1
}

// Bytes returns encoded bytes for sending.
func (f CommandFrame) Bytes() []byte {
	b := make([]byte, len(f.payload)+1)
	b[0] = byte(f.opcode)
	copy(b[1:], f.payload)
	return b
}
