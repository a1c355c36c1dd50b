package pkg

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tada/catch/pio"
	"github.com/tada/jsonstream"
	"github.com/tada/mqtt-codec/mqtt"
)

const (
	// PublishRetain is the bit representing MQTT PUBLISH "retain" flag
	PublishRetain = 0x01

	// PublishQoS is the mask for the MQTT PUBLISH "quality of service" bits
	PublishQoS = 0x06

	// PublishDup is the bit representing MQTT PUBLISH "dup" flag
	PublishDup = 0x08
)

// QoS is the MQTT quality of service level. The value is also the wire encoding.
type QoS byte

const (
	// AtMostOnce is QoS level 0, fire and forget
	AtMostOnce = QoS(iota)

	// AtLeastOnce is QoS level 1, acknowledged delivery
	AtLeastOnce

	// ExactlyOnce is QoS level 2, assured delivery
	ExactlyOnce
)

// Valid returns true if the QoS is 0, 1, or 2
func (q QoS) Valid() bool {
	return q <= ExactlyOnce
}

// The Publish type represents the MQTT PUBLISH packet
type Publish struct {
	name    string
	payload []byte
	id      uint16
	flags   byte
}

// SimplePublish creates a new Publish packet with all flags zero
func SimplePublish(topic string, payload []byte) *Publish {
	return &Publish{name: topic, payload: payload}
}

// NewPublish creates a new Publish packet. The id is ignored when qos is AtMostOnce since such
// packets have no packet identifier.
func NewPublish(id uint16, topic string, payload []byte, qos QoS, dup bool, retain bool) *Publish {
	flags := (byte(qos) << 1) & PublishQoS
	if dup {
		flags |= PublishDup
	}
	if retain {
		flags |= PublishRetain
	}
	if qos == AtMostOnce {
		id = 0
	}
	return &Publish{id: id, flags: flags, name: topic, payload: payload}
}

// ParsePublish parses the body of a publish packet from the given reader. The flags are the
// low nibble of the fixed header.
func ParsePublish(r *mqtt.Reader, flags byte) (*Publish, error) {
	var err error
	pp := &Publish{flags: flags & FlagsMask}
	if err = pp.validate(); err != nil {
		return nil, err
	}
	if pp.name, err = r.ReadString(); err != nil {
		return nil, err
	}

	if pp.QoSLevel() > AtMostOnce {
		if pp.id, err = r.ReadUint16(); err != nil {
			return nil, err
		}
	}
	pp.payload = r.ReadRemainingBytes()
	return pp, nil
}

// Equals returns true if this packet is equal to the given packet, false if not
func (p *Publish) Equals(other Packet) bool {
	op, ok := other.(*Publish)
	return ok &&
		p.id == op.id &&
		p.flags == op.flags &&
		p.name == op.name &&
		bytes.Equal(p.payload, op.payload)
}

// Flags returns the packet flags
func (p *Publish) Flags() byte {
	return p.flags
}

// ID returns the MQTT Packet Identifier. The identifier is only valid if QoS > 0
func (p *Publish) ID() uint16 {
	return p.id
}

// IsDup returns true if the packet is a duplicate of a previously sent packet
func (p *Publish) IsDup() bool {
	return (p.flags & PublishDup) != 0
}

// IsPrintableASCII returns true if the given bytes are constrained to the ASCII 7-bit character set and
// has no control characters.
func IsPrintableASCII(bs []byte) bool {
	for i := range bs {
		c := bs[i]
		if c < 32 || c > 126 {
			return false
		}
	}
	return true
}

// MarshalToJSON marshals the packet as a JSON object onto the given writer
func (p *Publish) MarshalToJSON(w io.Writer) {
	writeType(w, TpPublish)
	writeIntField(w, "flags", int(p.flags))
	if p.QoSLevel() > AtMostOnce {
		writeIntField(w, "id", int(p.id))
	}
	pio.WriteString(`,"topic":`, w)
	jsonstream.WriteString(p.name, w)
	writePayload(w, "payload", p.payload)
	pio.WriteByte('}', w)
}

// Payload returns the payload of the published message
func (p *Publish) Payload() []byte {
	return p.payload
}

// QoSLevel returns the quality of service level which is 0, 1 or 2.
func (p *Publish) QoSLevel() QoS {
	return QoS((p.flags & PublishQoS) >> 1)
}

// Retain returns the retain flag setting
func (p *Publish) Retain() bool {
	return (p.flags & PublishRetain) != 0
}

// String returns a brief string representation of the packet. Suitable for logging
func (p *Publish) String() string {
	// layout borrowed from mosquitto_sub log output
	return fmt.Sprintf("PUBLISH (d%d, q%d, r%d, m%d, '%s', ... (%d bytes))",
		(p.flags&PublishDup)>>3,
		p.QoSLevel(),
		p.flags&PublishRetain,
		p.ID(),
		p.name,
		len(p.payload))
}

// TopicName returns the name of the topic
func (p *Publish) TopicName() string {
	return p.name
}

func (p *Publish) Type() byte {
	return TpPublish
}

func (p *Publish) validate() error {
	if !p.QoSLevel().Valid() {
		return fmt.Errorf("%w: publish QoS 3", mqtt.ErrInvalidQoS)
	}
	return nil
}

// Write writes the MQTT bits of this packet on the given Writer
func (p *Publish) Write(w *mqtt.Writer) error {
	if err := p.validate(); err != nil {
		return err
	}
	b := mqtt.NewWriter()
	if err := b.WriteString(p.name); err != nil {
		return err
	}
	if p.QoSLevel() > AtMostOnce {
		b.WriteU16(p.id)
	}
	_, _ = b.Write(p.payload)
	return w.WritePacket(TpPublish|p.flags, b)
}

func (p *Publish) sealed() {}

// The PubAck type represents the MQTT PUBACK packet
type PubAck uint16

// ParsePubAck parses the body of a PUBACK packet
func ParsePubAck(r *mqtt.Reader, _ byte) (PubAck, error) {
	id, err := parseID(r, TpPubAck)
	return PubAck(id), err
}

// Equals returns true if this packet is equal to the given packet, false if not
func (p PubAck) Equals(other Packet) bool {
	return p == other
}

// ID returns the packet ID
func (p PubAck) ID() uint16 {
	return uint16(p)
}

// MarshalToJSON streams the JSON form of this packet onto the given writer
func (p PubAck) MarshalToJSON(w io.Writer) {
	writeIDPacket(w, TpPubAck, uint16(p))
}

// String returns a brief string representation of the packet. Suitable for logging
func (p PubAck) String() string {
	return fmt.Sprintf("PUBACK (m%d)", int(p))
}

func (p PubAck) Type() byte {
	return TpPubAck
}

// Write writes the MQTT bits of this packet on the given Writer
func (p PubAck) Write(w *mqtt.Writer) error {
	w.WriteU8(TpPubAck)
	w.WriteU8(2)
	w.WriteU16(uint16(p))
	return nil
}

func (p PubAck) sealed() {}

// The PubRec type represents the MQTT PUBREC packet
type PubRec uint16

// ParsePubRec parses the body of a PUBREC packet
func ParsePubRec(r *mqtt.Reader, _ byte) (PubRec, error) {
	id, err := parseID(r, TpPubRec)
	return PubRec(id), err
}

// Equals returns true if this packet is equal to the given packet, false if not
func (p PubRec) Equals(other Packet) bool {
	return p == other
}

// ID returns the packet ID
func (p PubRec) ID() uint16 {
	return uint16(p)
}

// MarshalToJSON streams the JSON form of this packet onto the given writer
func (p PubRec) MarshalToJSON(w io.Writer) {
	writeIDPacket(w, TpPubRec, uint16(p))
}

// String returns a brief string representation of the packet. Suitable for logging
func (p PubRec) String() string {
	return fmt.Sprintf("PUBREC (m%d)", int(p))
}

func (p PubRec) Type() byte {
	return TpPubRec
}

// Write writes the MQTT bits of this packet on the given Writer
func (p PubRec) Write(w *mqtt.Writer) error {
	w.WriteU8(TpPubRec)
	w.WriteU8(2)
	w.WriteU16(uint16(p))
	return nil
}

func (p PubRec) sealed() {}

// The PubRel type represents the MQTT PUBREL packet
type PubRel uint16

// ParsePubRel parses the body of a PUBREL packet
func ParsePubRel(r *mqtt.Reader, _ byte) (PubRel, error) {
	id, err := parseID(r, TpPubRel)
	return PubRel(id), err
}

// Equals returns true if this packet is equal to the given packet, false if not
func (p PubRel) Equals(other Packet) bool {
	return p == other
}

// ID returns the packet ID
func (p PubRel) ID() uint16 {
	return uint16(p)
}

// MarshalToJSON streams the JSON form of this packet onto the given writer
func (p PubRel) MarshalToJSON(w io.Writer) {
	writeIDPacket(w, TpPubRel, uint16(p))
}

// String returns a brief string representation of the packet. Suitable for logging
func (p PubRel) String() string {
	return fmt.Sprintf("PUBREL (m%d)", int(p))
}

func (p PubRel) Type() byte {
	return TpPubRel
}

// Write writes the MQTT bits of this packet on the given Writer. The fixed header of a PUBREL
// always has the flags 0010.
func (p PubRel) Write(w *mqtt.Writer) error {
	w.WriteU8(TpPubRel | 2)
	w.WriteU8(2)
	w.WriteU16(uint16(p))
	return nil
}

func (p PubRel) sealed() {}

// The PubComp type represents the MQTT PUBCOMP packet
type PubComp uint16

// ParsePubComp parses the body of a PUBCOMP packet
func ParsePubComp(r *mqtt.Reader, _ byte) (PubComp, error) {
	id, err := parseID(r, TpPubComp)
	return PubComp(id), err
}

// Equals returns true if this packet is equal to the given packet, false if not
func (p PubComp) Equals(other Packet) bool {
	return p == other
}

// ID returns the packet ID
func (p PubComp) ID() uint16 {
	return uint16(p)
}

// MarshalToJSON streams the JSON form of this packet onto the given writer
func (p PubComp) MarshalToJSON(w io.Writer) {
	writeIDPacket(w, TpPubComp, uint16(p))
}

// String returns a brief string representation of the packet. Suitable for logging
func (p PubComp) String() string {
	return fmt.Sprintf("PUBCOMP (m%d)", int(p))
}

func (p PubComp) Type() byte {
	return TpPubComp
}

// Write writes the MQTT bits of this packet on the given Writer
func (p PubComp) Write(w *mqtt.Writer) error {
	w.WriteU8(TpPubComp)
	w.WriteU8(2)
	w.WriteU16(uint16(p))
	return nil
}

func (p PubComp) sealed() {}

// parseID reads the packet identifier which is the sole content of an acknowledgement
func parseID(r *mqtt.Reader, tp byte) (uint16, error) {
	id, err := r.ReadUint16()
	if err == nil {
		err = expectEnd(r, tp)
	}
	return id, err
}
