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

// Topic is a topic filter and the maximum QoS that the subscriber wants to receive
type Topic struct {
	Name string
	QoS  QoS
}

// Subscribe is the MQTT SUBSCRIBE packet
type Subscribe struct {
	id     uint16
	topics []Topic
}

// NewSubscribe creates a new MQTT subscribe packet
func NewSubscribe(id uint16, topics ...Topic) *Subscribe {
	return &Subscribe{id: id, topics: topics}
}

// ParseSubscribe parses the body of a SUBSCRIBE packet. At least one topic must be present.
func ParseSubscribe(r *mqtt.Reader, _ byte) (*Subscribe, error) {
	var err error
	s := &Subscribe{}
	if s.id, err = r.ReadUint16(); err != nil {
		return nil, err
	}
	for r.Len() > 0 {
		t := Topic{}
		if t.Name, err = r.ReadString(); err != nil {
			return nil, err
		}
		var b byte
		if b, err = r.ReadByte(); err != nil {
			return nil, err
		}
		t.QoS = QoS(b)
		s.topics = append(s.topics, t)
	}
	if err = s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Subscribe) validate() error {
	if len(s.topics) == 0 {
		return fmt.Errorf("%w: subscribe has no topics", mqtt.ErrPayloadTooShort)
	}
	for _, t := range s.topics {
		if !t.QoS.Valid() {
			return fmt.Errorf("%w: requested QoS %d for '%s'", mqtt.ErrInvalidQoS, byte(t.QoS), t.Name)
		}
	}
	return nil
}

// ID returns the MQTT Packet Identifier
func (s *Subscribe) ID() uint16 {
	return s.id
}

// Equals returns true if this packet is equal to the given packet, false if not
func (s *Subscribe) Equals(p Packet) bool {
	os, ok := p.(*Subscribe)
	if !(ok && s.id == os.id && len(s.topics) == len(os.topics)) {
		return false
	}
	for i := range s.topics {
		if s.topics[i] != os.topics[i] {
			return false
		}
	}
	return true
}

// MarshalToJSON streams the JSON form of this packet onto the given writer. The topics are
// written as an object where each filter maps to its QoS.
func (s *Subscribe) MarshalToJSON(w io.Writer) {
	writeType(w, TpSubscribe)
	writeIntField(w, "id", int(s.id))
	pio.WriteString(`,"topics":{`, w)
	for i, t := range s.topics {
		if i > 0 {
			pio.WriteByte(',', w)
		}
		jsonstream.WriteString(t.Name, w)
		pio.WriteByte(':', w)
		writeInt(w, int(t.QoS))
	}
	pio.WriteString(`}}`, w)
}

// String returns a brief string representation of the packet. Suitable for logging
func (s *Subscribe) String() string {
	bs := bytes.NewBufferString("SUBSCRIBE (m")
	bs.WriteString(strconv.Itoa(int(s.id)))
	bs.WriteString(", ")
	wt := func(t Topic) {
		bs.WriteByte('q')
		bs.WriteString(strconv.Itoa(int(t.QoS)))
		bs.WriteString(", '")
		bs.WriteString(t.Name)
		bs.WriteByte('\'')
	}
	if len(s.topics) != 1 {
		bs.WriteByte('[')
		for i, t := range s.topics {
			if i > 0 {
				bs.WriteString(", ")
			}
			bs.WriteByte('(')
			wt(t)
			bs.WriteByte(')')
		}
		bs.WriteByte(']')
	} else {
		wt(s.topics[0])
	}
	bs.WriteByte(')')
	return bs.String()
}

// Topics returns the list of topics to subscribe to
func (s *Subscribe) Topics() []Topic {
	return s.topics
}

func (s *Subscribe) Type() byte {
	return TpSubscribe
}

// Write writes the MQTT bits of this packet on the given Writer. The fixed header of a
// SUBSCRIBE always has the flags 0010.
func (s *Subscribe) Write(w *mqtt.Writer) error {
	if err := s.validate(); err != nil {
		return err
	}
	b := mqtt.NewWriter()
	b.WriteU16(s.id)
	for _, t := range s.topics {
		if err := b.WriteString(t.Name); err != nil {
			return err
		}
		b.WriteU8(byte(t.QoS))
	}
	return w.WritePacket(TpSubscribe|2, b)
}

func (s *Subscribe) sealed() {}

// SubscribeReturnCode is the per topic result in a SUBACK packet. It is either the granted
// QoS or SubscribeFailure.
type SubscribeReturnCode byte

// SubscribeFailure is the return code used when a subscription was refused
const SubscribeFailure = SubscribeReturnCode(0x80)

// SubscribeSuccess returns the return code that grants the given QoS
func SubscribeSuccess(qos QoS) SubscribeReturnCode {
	return SubscribeReturnCode(qos)
}

// QoS returns the granted QoS and true, or false if the code is SubscribeFailure
func (c SubscribeReturnCode) QoS() (QoS, bool) {
	if c == SubscribeFailure {
		return 0, false
	}
	return QoS(c), true
}

// Valid returns true if the code is a granted QoS or SubscribeFailure
func (c SubscribeReturnCode) Valid() bool {
	return c == SubscribeFailure || QoS(c).Valid()
}

// SubAck is the MQTT SUBACK packet
type SubAck struct {
	id          uint16
	returnCodes []SubscribeReturnCode
}

// NewSubAck creates a new MQTT SUBACK packet
func NewSubAck(id uint16, returnCodes ...SubscribeReturnCode) *SubAck {
	return &SubAck{id: id, returnCodes: returnCodes}
}

// ParseSubAck parses the body of a SUBACK packet
func ParseSubAck(r *mqtt.Reader, _ byte) (*SubAck, error) {
	id, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	bs := r.ReadRemainingBytes()
	rcs := make([]SubscribeReturnCode, len(bs))
	for i, b := range bs {
		rcs[i] = SubscribeReturnCode(b)
	}
	s := &SubAck{id: id, returnCodes: rcs}
	if err = s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SubAck) validate() error {
	for _, rc := range s.returnCodes {
		if !rc.Valid() {
			return fmt.Errorf("%w: subscribe return code 0x%02x", mqtt.ErrInvalidQoS, byte(rc))
		}
	}
	return nil
}

// Equals returns true if this packet is equal to the given packet, false if not
func (s *SubAck) Equals(p Packet) bool {
	os, ok := p.(*SubAck)
	if !(ok && s.id == os.id && len(s.returnCodes) == len(os.returnCodes)) {
		return false
	}
	for i := range s.returnCodes {
		if s.returnCodes[i] != os.returnCodes[i] {
			return false
		}
	}
	return true
}

// ID returns the MQTT Packet Identifier
func (s *SubAck) ID() uint16 {
	return s.id
}

// MarshalToJSON streams the JSON form of this packet onto the given writer
func (s *SubAck) MarshalToJSON(w io.Writer) {
	writeType(w, TpSubAck)
	writeIntField(w, "id", int(s.id))
	pio.WriteString(`,"returnCodes":[`, w)
	for i, rc := range s.returnCodes {
		if i > 0 {
			pio.WriteByte(',', w)
		}
		writeInt(w, int(rc))
	}
	pio.WriteString(`]}`, w)
}

// ReturnCodes returns the return codes in the order of the topics of the acknowledged SUBSCRIBE
func (s *SubAck) ReturnCodes() []SubscribeReturnCode {
	return s.returnCodes
}

// String returns a brief string representation of the packet. Suitable for logging
func (s *SubAck) String() string {
	bs := bytes.NewBufferString("SUBACK (m")
	bs.WriteString(strconv.Itoa(int(s.id)))
	bs.WriteString(", ")
	if len(s.returnCodes) != 1 {
		bs.WriteByte('[')
		for i, rc := range s.returnCodes {
			if i > 0 {
				bs.WriteString(", ")
			}
			bs.WriteString("rc")
			bs.WriteString(strconv.Itoa(int(rc)))
		}
		bs.WriteByte(']')
	} else {
		bs.WriteString("rc")
		bs.WriteString(strconv.Itoa(int(s.returnCodes[0])))
	}
	bs.WriteByte(')')
	return bs.String()
}

func (s *SubAck) Type() byte {
	return TpSubAck
}

// Write writes the MQTT bits of this packet on the given Writer
func (s *SubAck) Write(w *mqtt.Writer) error {
	if err := s.validate(); err != nil {
		return err
	}
	b := mqtt.NewWriter()
	b.WriteU16(s.id)
	for _, rc := range s.returnCodes {
		b.WriteU8(byte(rc))
	}
	return w.WritePacket(TpSubAck, b)
}

func (s *SubAck) sealed() {}
