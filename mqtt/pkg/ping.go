package pkg

import (
	"io"

	"github.com/tada/catch/pio"
	"github.com/tada/mqtt-codec/mqtt"
)

// The PingRequest type represents the MQTT PINGREQ packet
type PingRequest int

// PingRequestSingleton is the one and only instance of the PingRequest type
const PingRequestSingleton = PingRequest(0)

// Equals returns true if this packet is equal to the given packet, false if not
func (PingRequest) Equals(p Packet) bool {
	return p == PingRequestSingleton
}

// ID always returns 0 since the PINGREQ packet has no packet identifier
func (PingRequest) ID() uint16 {
	return 0
}

// MarshalToJSON streams the JSON form of this packet onto the given writer
func (PingRequest) MarshalToJSON(w io.Writer) {
	writeType(w, TpPing)
	pio.WriteByte('}', w)
}

// String returns a brief string representation of the packet. Suitable for logging
func (PingRequest) String() string {
	return "PINGREQ"
}

func (PingRequest) Type() byte {
	return TpPing
}

// Write writes the MQTT bits of this packet on the given Writer
func (PingRequest) Write(w *mqtt.Writer) error {
	w.WriteU8(TpPing)
	w.WriteU8(0)
	return nil
}

func (PingRequest) sealed() {}

// The PingResponse type represents the MQTT PINGRESP packet
type PingResponse int

// PingResponseSingleton is the one and only instance of the PingResponse type
const PingResponseSingleton = PingResponse(0)

// Equals returns true if this packet is equal to the given packet, false if not
func (PingResponse) Equals(p Packet) bool {
	return p == PingResponseSingleton
}

// ID always returns 0 since the PINGRESP packet has no packet identifier
func (PingResponse) ID() uint16 {
	return 0
}

// MarshalToJSON streams the JSON form of this packet onto the given writer
func (PingResponse) MarshalToJSON(w io.Writer) {
	writeType(w, TpPingResp)
	pio.WriteByte('}', w)
}

// String returns a brief string representation of the packet. Suitable for logging
func (PingResponse) String() string {
	return "PINGRESP"
}

func (PingResponse) Type() byte {
	return TpPingResp
}

// Write writes the MQTT bits of this packet on the given Writer
func (PingResponse) Write(w *mqtt.Writer) error {
	w.WriteU8(TpPingResp)
	w.WriteU8(0)
	return nil
}

func (PingResponse) sealed() {}
