package pkg

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/tada/catch/pio"
	"github.com/tada/jsonstream"
	"github.com/tada/mqtt-codec/mqtt"
)

// Unsubscribe is the MQTT UNSUBSCRIBE packet
type Unsubscribe struct {
	id     uint16
	topics []string
}

// NewUnsubscribe creates a new MQTT unsubscribe packet
func NewUnsubscribe(id uint16, topics ...string) *Unsubscribe {
	return &Unsubscribe{id: id, topics: topics}
}

// ParseUnsubscribe parses the body of an UNSUBSCRIBE packet. At least one topic filter must be
// present.
func ParseUnsubscribe(r *mqtt.Reader, _ byte) (*Unsubscribe, error) {
	var err error
	u := &Unsubscribe{}
	if u.id, err = r.ReadUint16(); err != nil {
		return nil, err
	}
	for r.Len() > 0 {
		var topic string
		if topic, err = r.ReadString(); err != nil {
			return nil, err
		}
		u.topics = append(u.topics, topic)
	}
	if err = u.validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *Unsubscribe) validate() error {
	if len(u.topics) == 0 {
		return fmt.Errorf("%w: unsubscribe has no topics", mqtt.ErrPayloadTooShort)
	}
	return nil
}

// Equals returns true if this packet is equal to the given packet, false if not
func (u *Unsubscribe) Equals(p Packet) bool {
	if os, ok := p.(*Unsubscribe); ok && u.id == os.id && len(u.topics) == len(os.topics) {
		for i := range u.topics {
			if u.topics[i] != os.topics[i] {
				return false
			}
		}
		return true
	}
	return false
}

// ID returns the MQTT Packet Identifier
func (u *Unsubscribe) ID() uint16 {
	return u.id
}

// MarshalToJSON streams the JSON form of this packet onto the given writer
func (u *Unsubscribe) MarshalToJSON(w io.Writer) {
	writeType(w, TpUnsubscribe)
	writeIntField(w, "id", int(u.id))
	pio.WriteString(`,"filters":[`, w)
	for i, t := range u.topics {
		if i > 0 {
			pio.WriteByte(',', w)
		}
		jsonstream.WriteString(t, w)
	}
	pio.WriteString(`]}`, w)
}

// String returns a brief string representation of the packet. Suitable for logging
func (u *Unsubscribe) String() string {
	bs := bytes.NewBufferString("UNSUBSCRIBE (m")
	bs.WriteString(strconv.Itoa(int(u.id)))
	bs.WriteString(", [")
	for i, t := range u.topics {
		if i > 0 {
			bs.WriteString(", ")
		}
		bs.WriteByte('\'')
		bs.WriteString(t)
		bs.WriteByte('\'')
	}
	bs.WriteString("])")
	return bs.String()
}

// Topics returns the list of topic filters to unsubscribe from
func (u *Unsubscribe) Topics() []string {
	return u.topics
}

func (u *Unsubscribe) Type() byte {
	return TpUnsubscribe
}

// Write writes the MQTT bits of this packet on the given Writer. The fixed header of an
// UNSUBSCRIBE always has the flags 0010.
func (u *Unsubscribe) Write(w *mqtt.Writer) error {
	if err := u.validate(); err != nil {
		return err
	}
	b := mqtt.NewWriter()
	b.WriteU16(u.id)
	for _, t := range u.topics {
		if err := b.WriteString(t); err != nil {
			return err
		}
	}
	return w.WritePacket(TpUnsubscribe|2, b)
}

func (u *Unsubscribe) sealed() {}

// UnsubAck is the MQTT UNSUBACK packet
type UnsubAck uint16

// ParseUnsubAck parses the body of an UNSUBACK packet
func ParseUnsubAck(r *mqtt.Reader, _ byte) (UnsubAck, error) {
	id, err := parseID(r, TpUnsubAck)
	return UnsubAck(id), err
}

// Equals returns true if this packet is equal to the given packet, false if not
func (u UnsubAck) Equals(p Packet) bool {
	return u == p
}

// ID returns the packet ID
func (u UnsubAck) ID() uint16 {
	return uint16(u)
}

// MarshalToJSON streams the JSON form of this packet onto the given writer
func (u UnsubAck) MarshalToJSON(w io.Writer) {
	writeIDPacket(w, TpUnsubAck, uint16(u))
}

// String returns a brief string representation of the packet. Suitable for logging
func (u UnsubAck) String() string {
	return fmt.Sprintf("UNSUBACK (m%d)", int(u))
}

func (u UnsubAck) Type() byte {
	return TpUnsubAck
}

// Write writes the MQTT bits of this packet on the given Writer
func (u UnsubAck) Write(w *mqtt.Writer) error {
	w.WriteU8(TpUnsubAck)
	w.WriteU8(2)
	w.WriteU16(uint16(u))
	return nil
}

func (u UnsubAck) sealed() {}
