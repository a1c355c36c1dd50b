package pkg

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tada/catch"
	"github.com/tada/catch/pio"
	"github.com/tada/jsonstream"
)

// ErrMissingType is returned when a JSON packet object lacks the "type" key
var ErrMissingType = errors.New(`packet has no "type"`)

// MarshalJSON returns the JSON form of the given packet
func MarshalJSON(p Packet) ([]byte, error) {
	buf := bytes.Buffer{}
	err := catch.Do(func() {
		p.MarshalToJSON(&buf)
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON creates a packet from its JSON form
func UnmarshalJSON(bs []byte) (p Packet, err error) {
	err = catch.Do(func() {
		pc := &packetConsumer{}
		jsonstream.NewDecoder(bytes.NewReader(bs)).ReadConsumer(pc)
		p = pc.packet
	})
	return
}

// ReadPackets reads a JSON array of packet objects from the given reader. When idm is not nil,
// it is used to assign identifiers to packets that need one but lack an "id" key.
func ReadPackets(r io.Reader, idm IDManager) (pkgs []Packet, err error) {
	err = catch.Do(func() {
		js := jsonstream.NewDecoder(r)
		js.ReadDelim('[')
		for {
			pc := &packetConsumer{idm: idm}
			valid, ok := js.ReadConsumerOrEnd(pc, ']')
			if !ok {
				break
			}
			if valid {
				pkgs = append(pkgs, pc.packet)
			}
		}
	})
	return
}

// packetConsumer collects the fields of a JSON packet object and creates the packet once the
// object ends.
type packetConsumer struct {
	idm         IDManager
	packet      Packet
	tp          byte
	flags       byte
	level       byte
	hasID       bool
	id          uint16
	keepAlive   uint16
	returnCode  byte
	protocol    string
	clientID    string
	willTopic   string
	topic       string
	willMessage []byte
	payload     []byte
	password    []byte
	creds       *Credentials
	topics      []Topic
	filters     []string
	returnCodes []SubscribeReturnCode
}

func (pc *packetConsumer) UnmarshalFromJSON(js jsonstream.Decoder, t json.Token) {
	jsonstream.AssertDelim(t, '{')
	for {
		k, ok := js.ReadStringOrEnd('}')
		if !ok {
			break
		}
		switch k {
		case "type":
			n := js.ReadString()
			if pc.tp, ok = typeFromName(n); !ok {
				panic(catch.Error(fmt.Errorf("unknown packet type %q", n)))
			}
		case "flags":
			pc.flags = byte(js.ReadInt())
		case "id":
			pc.hasID = true
			pc.id = uint16(js.ReadInt())
		case "protocol":
			pc.protocol = js.ReadString()
		case "level":
			pc.level = byte(js.ReadInt())
		case "keepAlive":
			pc.keepAlive = uint16(js.ReadInt())
		case "clientId":
			pc.clientID = js.ReadString()
		case "willTopic":
			pc.willTopic = js.ReadString()
		case "willMessage":
			pc.willMessage = []byte(js.ReadString())
		case "willMessageEnc":
			pc.willMessage = readBase64(js)
		case "creds":
			pc.creds = &Credentials{}
			js.ReadConsumer(pc.creds)
		case "returnCode":
			pc.returnCode = byte(js.ReadInt())
		case "topic":
			pc.topic = js.ReadString()
		case "payload":
			pc.payload = []byte(js.ReadString())
		case "payloadEnc":
			pc.payload = readBase64(js)
		case "password":
			pc.password = []byte(js.ReadString())
		case "passwordEnc":
			pc.password = readBase64(js)
		case "topics":
			js.ReadDelim('{')
			for {
				n, ok := js.ReadStringOrEnd('}')
				if !ok {
					break
				}
				pc.topics = append(pc.topics, Topic{Name: n, QoS: QoS(js.ReadInt())})
			}
		case "filters":
			js.ReadDelim('[')
			for {
				f, ok := js.ReadStringOrEnd(']')
				if !ok {
					break
				}
				pc.filters = append(pc.filters, f)
			}
		case "returnCodes":
			js.ReadDelim('[')
			for {
				rc, ok := js.ReadIntOrEnd(']')
				if !ok {
					break
				}
				pc.returnCodes = append(pc.returnCodes, SubscribeReturnCode(rc))
			}
		default:
			panic(catch.Error(unknownKey(k)))
		}
	}
	pc.packet = pc.create()
}

// nextID returns the id given in the JSON object or, if none was given, an id allocated from
// the IDManager
func (pc *packetConsumer) nextID() uint16 {
	if !pc.hasID && pc.idm != nil {
		pc.id = pc.idm.NextFreePacketID()
	}
	return pc.id
}

// create builds the packet and panics with a catch.Error if it holds values that Decode
// would reject
func (pc *packetConsumer) create() Packet {
	p := pc.build()
	if v, ok := p.(validator); ok {
		if err := v.validate(); err != nil {
			panic(catch.Error(err))
		}
	}
	return p
}

func (pc *packetConsumer) build() Packet {
	switch pc.tp {
	case TpConnect:
		proto := MQTT311
		if pc.protocol != "" || pc.level != 0 {
			var err error
			if proto, err = NewProtocol(pc.protocol, pc.level); err != nil {
				panic(catch.Error(err))
			}
		}
		c := &Connect{
			protocol:    proto,
			clientID:    pc.clientID,
			keepAlive:   pc.keepAlive,
			flags:       pc.flags,
			willTopic:   pc.willTopic,
			willMessage: pc.willMessage}
		if pc.creds != nil {
			c.flags |= userNameFlag
			c.userName = pc.creds.User
			if pc.creds.Password != nil {
				c.flags |= passwordFlag
				c.password = pc.creds.Password
			}
		} else if pc.password != nil {
			c.flags |= passwordFlag
			c.password = pc.password
		}
		return c
	case TpConnAck:
		return &ConnAck{flags: pc.flags, returnCode: ReturnCode(pc.returnCode)}
	case TpPublish:
		p := &Publish{name: pc.topic, payload: pc.payload, flags: pc.flags & FlagsMask}
		if p.QoSLevel() > AtMostOnce {
			p.id = pc.nextID()
		}
		return p
	case TpPubAck:
		return PubAck(pc.id)
	case TpPubRec:
		return PubRec(pc.id)
	case TpPubRel:
		return PubRel(pc.id)
	case TpPubComp:
		return PubComp(pc.id)
	case TpSubscribe:
		return NewSubscribe(pc.nextID(), pc.topics...)
	case TpSubAck:
		return NewSubAck(pc.id, pc.returnCodes...)
	case TpUnsubscribe:
		return NewUnsubscribe(pc.nextID(), pc.filters...)
	case TpUnsubAck:
		return UnsubAck(pc.id)
	case TpPing:
		return PingRequestSingleton
	case TpPingResp:
		return PingResponseSingleton
	case TpDisconnect:
		return DisconnectSingleton
	default:
		panic(catch.Error(ErrMissingType))
	}
}

func readBase64(js jsonstream.Decoder) []byte {
	bs, err := base64.StdEncoding.DecodeString(js.ReadString())
	if err != nil {
		panic(catch.Error(err))
	}
	return bs
}

func unknownKey(k string) error {
	return fmt.Errorf("unknown JSON key %q", k)
}

// writeType starts a JSON object and writes the "type" key with the name of the given type
func writeType(w io.Writer, tp byte) {
	pio.WriteString(`{"type":"`, w)
	pio.WriteString(TypeName(tp), w)
	pio.WriteByte('"', w)
}

func writeInt(w io.Writer, i int) {
	pio.WriteInt(int64(i), w)
}

func writeIntField(w io.Writer, key string, i int) {
	pio.WriteString(`,"`, w)
	pio.WriteString(key, w)
	pio.WriteString(`":`, w)
	writeInt(w, i)
}

// writeIDPacket writes the complete JSON object of a packet that consists of an id only
func writeIDPacket(w io.Writer, tp byte, id uint16) {
	writeType(w, tp)
	writeIntField(w, "id", int(id))
	pio.WriteByte('}', w)
}

// writePayload writes bs as a plain string under the given key when it is printable ASCII and
// base64 encoded under the key with an "Enc" suffix otherwise
func writePayload(w io.Writer, key string, bs []byte) {
	pio.WriteString(`,"`, w)
	pio.WriteString(key, w)
	if IsPrintableASCII(bs) {
		pio.WriteString(`":`, w)
		jsonstream.WriteString(string(bs), w)
	} else {
		pio.WriteString(`Enc":`, w)
		jsonstream.WriteString(base64.StdEncoding.EncodeToString(bs), w)
	}
}
