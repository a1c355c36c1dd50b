// Package pkg contains the MQTT 3.1.1 packet structures together with the Encode and Decode
// functions that convert between those structures and their wire form.
package pkg

import (
	"fmt"

	"github.com/tada/jsonstream"
	"github.com/tada/mqtt-codec/mqtt"
)

const (
	// TpConnect is the MQTT CONNECT type
	TpConnect = 0x10

	// TpConnAck is the MQTT CONNACK type
	TpConnAck = 0x20

	// TpPublish is the MQTT PUBLISH type
	TpPublish = 0x30

	// TpPubAck is the MQTT PUBACK type
	TpPubAck = 0x40

	// TpPubRec is the MQTT PUBREC type
	TpPubRec = 0x50

	// TpPubRel is the MQTT PUBREL type
	TpPubRel = 0x60

	// TpPubComp is the MQTT PUBCOMP type
	TpPubComp = 0x70

	// TpSubscribe is the MQTT SUBSCRIBE type
	TpSubscribe = 0x80

	// TpSubAck is the MQTT SUBACK type
	TpSubAck = 0x90

	// TpUnsubscribe is the MQTT UNSUBSCRIBE type
	TpUnsubscribe = 0xa0

	// TpUnsubAck is the MQTT UNSUBACK type
	TpUnsubAck = 0xb0

	// TpPing is the MQTT PINGREQ type
	TpPing = 0xc0

	// TpPingResp is the MQTT PINGRESP type
	TpPingResp = 0xd0

	// TpDisconnect is the MQTT DISCONNECT type
	TpDisconnect = 0xe0

	// TpMask is bitmask for the MQTT type
	TpMask = 0xf0

	// FlagsMask is the bitmask for the flags in the first byte of the fixed header
	FlagsMask = 0x0f
)

// The Packet interface is implemented by all MQTT packet types. The set of implementations is
// closed; only the types in this package implement it.
type Packet interface {
	fmt.Stringer

	// MarshalToJSON streams the JSON form of this packet onto the given writer. The function
	// panics with a catch.Error on write errors.
	jsonstream.Streamer

	// ID returns the packet ID or 0 if not applicable
	ID() uint16

	// Equals returns true if this packet is equal to the given packet, false if not
	Equals(other Packet) bool

	// Type returns the MQTT packet type, i.e. one of the Tp constants
	Type() byte

	// Write writes the MQTT bits of this packet on the given Writer. Nothing is written when an
	// error is returned.
	Write(w *mqtt.Writer) error

	sealed()
}

// validator is implemented by packets that can hold values that the parser rejects
type validator interface {
	validate() error
}

var typeNames = [...]string{
	"", "CONNECT", "CONNACK", "PUBLISH", "PUBACK", "PUBREC", "PUBREL", "PUBCOMP",
	"SUBSCRIBE", "SUBACK", "UNSUBSCRIBE", "UNSUBACK", "PINGREQ", "PINGRESP", "DISCONNECT", ""}

// TypeName returns the upper case MQTT name of the given packet type, e.g. "PUBLISH" for
// TpPublish. The flag bits of the argument are ignored. An empty string is returned for the
// reserved types 0 and 15.
func TypeName(tp byte) string {
	return typeNames[tp>>4]
}

// typeFromName is the inverse of TypeName
func typeFromName(name string) (byte, bool) {
	for i, n := range typeNames {
		if n != "" && n == name {
			return byte(i << 4), true
		}
	}
	return 0, false
}
