package mqtt

import "errors"

// Errors returned when encoding packets.
var (
	// ErrStringTooLong is returned when a string or a length prefixed byte field is longer than 65535 bytes
	ErrStringTooLong = errors.New("field exceeds 65535 bytes")

	// ErrPacketTooLarge is returned when a remaining length exceeds MaxRemainingLength
	ErrPacketTooLarge = errors.New("remaining length exceeds 268435455 bytes")
)

// Errors returned when decoding packets. A decode error means that the byte stream cannot be
// resynchronized and that the connection should be closed.
var (
	ErrInvalidLength     = errors.New("malformed remaining length")
	ErrInvalidPacketType = errors.New("invalid packet type")
	ErrInvalidProtocol   = errors.New("invalid protocol")
	ErrInvalidQoS        = errors.New("invalid QoS")
	ErrInvalidUTF8       = errors.New("invalid UTF-8 string")
	ErrPayloadTooShort   = errors.New("payload too short")
	ErrUnexpectedFlags   = errors.New("unexpected flags")
	ErrInvalidReturnCode = errors.New("invalid connect return code")
)
