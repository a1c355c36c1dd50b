package mqtt

import (
	"bytes"
	"fmt"
	"math"
	"unicode/utf8"
)

// MaxRemainingLength is the largest value that fits in the four byte variable length integer
// of the fixed header
const MaxRemainingLength = 0x0fffffff

// Writer is a bytes.Buffer with methods to write the MQTT primitive types
type Writer struct {
	bytes.Buffer
}

// NewWriter returns a new empty Writer
func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WriteU8(i uint8) {
	_ = w.WriteByte(i)
}

// WriteU16 writes the given value in big endian order
func (w *Writer) WriteU16(i uint16) {
	w.WriteU8(byte(i >> 8))
	w.WriteU8(byte(i))
}

// WriteString writes a big endian uint16 length followed by the bytes of the string. Nothing is
// written when an error is returned. The error is ErrStringTooLong when the string doesn't fit
// and ErrInvalidUTF8 when it isn't valid UTF-8.
func (w *Writer) WriteString(s string) error {
	t := len(s)
	if t > math.MaxUint16 {
		return fmt.Errorf("%w: string of length %d", ErrStringTooLong, t)
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidUTF8, s)
	}
	w.WriteU16(uint16(t))
	_, _ = w.Buffer.WriteString(s)
	return nil
}

// WriteBytes writes a big endian uint16 length followed by the given bytes. An
// ErrStringTooLong is returned and nothing is written when the bytes doesn't fit.
func (w *Writer) WriteBytes(bs []byte) error {
	t := len(bs)
	if t > math.MaxUint16 {
		return fmt.Errorf("%w: binary data of length %d", ErrStringTooLong, t)
	}
	w.WriteU16(uint16(t))
	_, _ = w.Write(bs)
	return nil
}

// WriteVarInt writes the value using one to four bytes where the seven low bits of each byte
// carries data and the high bit signals that more bytes follow. An ErrPacketTooLarge is
// returned and nothing is written when the value is negative or larger than MaxRemainingLength.
func (w *Writer) WriteVarInt(value int) error {
	if value < 0 || value > MaxRemainingLength {
		return fmt.Errorf("%w: %d", ErrPacketTooLarge, value)
	}
	for {
		b := byte(value & 0x7f)
		value >>= 7
		if value > 0 {
			b |= 0x80
		}
		w.WriteU8(b)
		if value == 0 {
			break
		}
	}
	return nil
}

// WritePacket writes the fixed header, i.e. the given type and flags byte followed by the
// length of body, and then the body itself. Nothing is written if the body is too large.
func (w *Writer) WritePacket(typeAndFlags byte, body *Writer) error {
	var bs []byte
	if body != nil {
		bs = body.Bytes()
	}
	if len(bs) > MaxRemainingLength {
		return fmt.Errorf("%w: %d", ErrPacketTooLarge, len(bs))
	}
	w.WriteU8(typeAndFlags)
	_ = w.WriteVarInt(len(bs))
	_, _ = w.Write(bs)
	return nil
}

// VarIntSize returns the number of bytes needed to write the given value using WriteVarInt
func VarIntSize(value int) int {
	switch {
	case value < 0x80:
		return 1
	case value < 0x4000:
		return 2
	case value < 0x200000:
		return 3
	default:
		return 4
	}
}
