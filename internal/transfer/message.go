package transfer

import (
	"bytes"
	"fmt"
	"net"
)

// FieldCount is the number of separately allocated fields in a message.
const FieldCount = 8

const fillByte = 'A'

// Message is a payload split across FieldCount independent buffers.
type Message struct {
	fields [][]byte
	size   int
}

// NewMessage allocates size/FieldCount bytes per field, filled with 'A'.
func NewMessage(size int) (*Message, error) {
	if size < FieldCount || size%FieldCount != 0 {
		return nil, fmt.Errorf("message size %d must be a positive multiple of %d", size, FieldCount)
	}
	fieldSize := size / FieldCount
	fields := make([][]byte, FieldCount)
	for i := range fields {
		fields[i] = bytes.Repeat([]byte{fillByte}, fieldSize)
	}
	return &Message{fields: fields, size: size}, nil
}

func (m *Message) Size() int {
	return m.size
}

func (m *Message) Fields() [][]byte {
	return m.fields
}

// Buffers returns a fresh vector over the fields; net.Buffers is consumed by WriteTo.
func (m *Message) Buffers() net.Buffers {
	bufs := make(net.Buffers, len(m.fields))
	copy(bufs, m.fields)
	return bufs
}

// Flatten copies every field into dst, growing it when needed.
func (m *Message) Flatten(dst []byte) []byte {
	if cap(dst) < m.size {
		dst = make([]byte, m.size)
	}
	dst = dst[:0]
	for _, field := range m.fields {
		dst = append(dst, field...)
	}
	return dst
}
