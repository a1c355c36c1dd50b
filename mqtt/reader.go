package mqtt

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Reader reads MQTT primitive types from the body of one packet. The body must be complete so
// running out of bytes is always an error.
type Reader struct {
	bs  []byte
	pos int
}

// NewReader returns a Reader that reads from the given bytes. The bytes are not copied.
func NewReader(bs []byte) *Reader {
	return &Reader{bs: bs}
}

func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.bs) {
		return 0, fmt.Errorf("%w: expected one more byte", ErrPayloadTooShort)
	}
	b := r.bs[r.pos]
	r.pos++
	return b, nil
}

// ReadUint16 reads a big endian uint16
func (r *Reader) ReadUint16() (uint16, error) {
	var v uint16
	bs, err := r.ReadExact(2)
	if err == nil {
		v = binary.BigEndian.Uint16(bs)
	}
	return v, err
}

// ReadString reads a big endian uint16 that denotes the number of bytes that will follow. It
// then reads those bytes and returns them as a string. An ErrInvalidUTF8 is returned if the
// bytes are not valid UTF-8.
func (r *Reader) ReadString() (string, error) {
	bs, err := r.ReadBytes()
	if err != nil {
		return ``, err
	}
	if !utf8.Valid(bs) {
		return ``, fmt.Errorf("%w: %q", ErrInvalidUTF8, bs)
	}
	return string(bs), nil
}

// ReadBytes reads a big endian uint16 that denotes the number of bytes that will follow. It
// then reads those bytes and returns a copy of them. The returned slice is never nil.
func (r *Reader) ReadBytes() ([]byte, error) {
	l, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	bs, err := r.ReadExact(int(l))
	if err != nil {
		return nil, err
	}
	return append(make([]byte, 0, len(bs)), bs...), nil
}

// ReadExact returns the next n bytes. The returned slice shares memory with the reader.
func (r *Reader) ReadExact(n int) ([]byte, error) {
	if n > r.Len() {
		return nil, fmt.Errorf("%w: expected %d bytes, %d remaining", ErrPayloadTooShort, n, r.Len())
	}
	bs := r.bs[r.pos : r.pos+n]
	r.pos += n
	return bs, nil
}

// Len returns the number of unread bytes
func (r *Reader) Len() int {
	return len(r.bs) - r.pos
}

// ReadRemainingBytes returns a copy of all unread bytes. The returned slice is never nil.
func (r *Reader) ReadRemainingBytes() []byte {
	bs := append(make([]byte, 0, r.Len()), r.bs[r.pos:]...)
	r.pos = len(r.bs)
	return bs
}

// DecodeVarInt decodes the variable length integer at the start of bs and returns its value
// together with the number of bytes that it occupied. A zero n and a nil error means that bs
// ends before the integer does. ErrInvalidLength is returned when the fourth byte still has
// its continuation bit set.
func DecodeVarInt(bs []byte) (value int, n int, err error) {
	m := 1
	for i := 0; i < 4; i++ {
		if i >= len(bs) {
			return 0, 0, nil
		}
		b := bs[i]
		value += int(b&0x7f) * m
		if (b & 0x80) == 0 {
			return value, i + 1, nil
		}
		m *= 0x80
	}
	return 0, 0, ErrInvalidLength
}
