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
	protoName  = "MQTT"
	protoLevel = byte(4)

	reservedFlag     = byte(0b00000001)
	cleanSessionFlag = byte(0b00000010)
	willFlag         = byte(0b00000100)
	willQoS          = byte(0b00011000)
	willRetainFlag   = byte(0b00100000)
	passwordFlag     = byte(0b01000000)
	userNameFlag     = byte(0b10000000)
)

// Protocol is the protocol name and level pair found in the variable header of a CONNECT packet
type Protocol struct {
	name  string
	level byte
}

// MQTT311 is the protocol name "MQTT" with level 4, i.e. MQTT version 3.1.1
var MQTT311 = Protocol{name: protoName, level: protoLevel}

// NewProtocol returns the Protocol for the given name and level. An error wrapping
// mqtt.ErrInvalidProtocol is returned unless the combination denotes MQTT 3.1.1.
func NewProtocol(name string, level byte) (Protocol, error) {
	if name != protoName || level != protoLevel {
		return Protocol{}, fmt.Errorf("%w: name %q, level %d", mqtt.ErrInvalidProtocol, name, level)
	}
	return Protocol{name: name, level: level}, nil
}

// Name returns the protocol name
func (p Protocol) Name() string {
	return p.name
}

// Level returns the protocol level
func (p Protocol) Level() byte {
	return p.level
}

func (p Protocol) String() string {
	return fmt.Sprintf("%s v%d", p.name, p.level)
}

// ReturnCode is the return code of a CONNACK packet. It implements error so that a refused
// connection can be propagated as such.
type ReturnCode byte

func (r ReturnCode) Error() string {
	switch r {
	case RtAccepted:
		return "accepted"
	case RtUnacceptableProtocolVersion:
		return "unacceptable protocol version"
	case RtIdentifierRejected:
		return "identifier rejected"
	case RtServerUnavailable:
		return "server unavailable"
	case RtBadUserNameOrPassword:
		return "bad user name or password"
	case RtNotAuthorized:
		return "not authorized"
	default:
		return "unknown error"
	}
}

// Valid returns true unless the return code is reserved
func (r ReturnCode) Valid() bool {
	return r <= RtNotAuthorized
}

const (
	// RtAccepted Connection Accepted
	RtAccepted = ReturnCode(iota)

	// RtUnacceptableProtocolVersion The Server does not support the level of the MQTT protocol requested by the Client
	RtUnacceptableProtocolVersion

	// RtIdentifierRejected The Client identifier is correct UTF-8 but not allowed by the Server
	RtIdentifierRejected

	// RtServerUnavailable The Network Connection has been made but the MQTT service is unavailable
	RtServerUnavailable

	// RtBadUserNameOrPassword The data in the user name or password is malformed
	RtBadUserNameOrPassword

	// RtNotAuthorized The Client is not authorized to connect
	RtNotAuthorized
)

// Connect is the MQTT CONNECT packet
type Connect struct {
	protocol    Protocol
	clientID    string
	willTopic   string
	userName    string
	willMessage []byte
	password    []byte
	keepAlive   uint16
	flags       byte
}

// NewConnect creates a new Connect packet. The will and the credentials are optional. A non nil
// creds means that a user name is present. Its password is present when it is non nil.
func NewConnect(protocol Protocol, clientID string, cleanSession bool, keepAlive uint16, will *Will, creds *Credentials) *Connect {
	flags := byte(0)
	if cleanSession {
		flags |= cleanSessionFlag
	}
	var (
		willTopic   string
		willMessage []byte
		userName    string
		password    []byte
	)
	if will != nil {
		flags |= willFlag | ((byte(will.QoS) << 3) & willQoS)
		if will.Retain {
			flags |= willRetainFlag
		}
		willTopic = will.Topic
		willMessage = will.Message
	}
	if creds != nil {
		flags |= userNameFlag
		userName = creds.User
		if creds.Password != nil {
			flags |= passwordFlag
			password = creds.Password
		}
	}

	return &Connect{
		protocol:    protocol,
		clientID:    clientID,
		userName:    userName,
		password:    password,
		keepAlive:   keepAlive,
		flags:       flags,
		willTopic:   willTopic,
		willMessage: willMessage,
	}
}

// ParseConnect parses the body of a connect packet from the given reader.
func ParseConnect(r *mqtt.Reader, _ byte) (*Connect, error) {
	var err error

	// Protocol Name
	var proto string
	if proto, err = r.ReadString(); err != nil {
		return nil, err
	}

	// Protocol Level
	var level byte
	if level, err = r.ReadByte(); err != nil {
		return nil, err
	}

	c := &Connect{}
	if c.protocol, err = NewProtocol(proto, level); err != nil {
		return nil, err
	}

	// Connect Flags
	if c.flags, err = r.ReadByte(); err != nil {
		return nil, err
	}
	if err = checkConnectFlags(c.flags); err != nil {
		return nil, err
	}

	// Keep Alive
	if c.keepAlive, err = r.ReadUint16(); err != nil {
		return nil, err
	}

	// Payload starts here

	// Client Identifier
	if c.clientID, err = r.ReadString(); err != nil {
		return nil, err
	}

	// Will
	if c.HasWill() {
		if c.willTopic, err = r.ReadString(); err != nil {
			return nil, err
		}
		if c.willMessage, err = r.ReadBytes(); err != nil {
			return nil, err
		}
	}

	// User Name
	if c.HasUserName() {
		if c.userName, err = r.ReadString(); err != nil {
			return nil, err
		}
	}

	// Password
	if c.HasPassword() {
		if c.password, err = r.ReadBytes(); err != nil {
			return nil, err
		}
	}
	if err = expectEnd(r, TpConnect); err != nil {
		return nil, err
	}
	return c, nil
}

func checkConnectFlags(flags byte) error {
	if flags&reservedFlag != 0 {
		return fmt.Errorf("%w: reserved connect flag is set", mqtt.ErrUnexpectedFlags)
	}
	if (flags&willQoS)>>3 > byte(ExactlyOnce) {
		return fmt.Errorf("%w: will QoS 3", mqtt.ErrInvalidQoS)
	}
	if flags&willFlag == 0 && flags&(willQoS|willRetainFlag) != 0 {
		return fmt.Errorf("%w: will QoS or retain set without will flag", mqtt.ErrUnexpectedFlags)
	}
	return nil
}

// validate returns an error if the packet holds values that its parser would reject
func (c *Connect) validate() error {
	if _, err := NewProtocol(c.protocol.name, c.protocol.level); err != nil {
		return err
	}
	return checkConnectFlags(c.flags)
}

// Equals returns true if this packet is equal to the given packet, false if not
func (c *Connect) Equals(p Packet) bool {
	oc, ok := p.(*Connect)
	return ok &&
		c.protocol == oc.protocol &&
		c.keepAlive == oc.keepAlive &&
		c.flags == oc.flags &&
		c.clientID == oc.clientID &&
		c.willTopic == oc.willTopic &&
		c.userName == oc.userName &&
		bytes.Equal(c.willMessage, oc.willMessage) &&
		bytes.Equal(c.password, oc.password)
}

// Write writes the MQTT bits of this packet on the given Writer
func (c *Connect) Write(w *mqtt.Writer) error {
	if err := c.validate(); err != nil {
		return err
	}
	b := mqtt.NewWriter()
	if err := b.WriteString(c.protocol.name); err != nil {
		return err
	}
	b.WriteU8(c.protocol.level)
	b.WriteU8(c.flags)
	b.WriteU16(c.keepAlive)
	if err := b.WriteString(c.clientID); err != nil {
		return err
	}
	if c.HasWill() {
		if err := b.WriteString(c.willTopic); err != nil {
			return err
		}
		if err := b.WriteBytes(c.willMessage); err != nil {
			return err
		}
	}
	if c.HasUserName() {
		if err := b.WriteString(c.userName); err != nil {
			return err
		}
	}
	if c.HasPassword() {
		if err := b.WriteBytes(c.password); err != nil {
			return err
		}
	}
	return w.WritePacket(TpConnect, b)
}

// MarshalToJSON streams the JSON form of this packet onto the given writer
func (c *Connect) MarshalToJSON(w io.Writer) {
	writeType(w, TpConnect)
	pio.WriteString(`,"protocol":`, w)
	jsonstream.WriteString(c.protocol.name, w)
	writeIntField(w, "level", int(c.protocol.level))
	writeIntField(w, "flags", int(c.flags))
	writeIntField(w, "keepAlive", int(c.keepAlive))
	pio.WriteString(`,"clientId":`, w)
	jsonstream.WriteString(c.clientID, w)
	if c.HasWill() {
		pio.WriteString(`,"willTopic":`, w)
		jsonstream.WriteString(c.willTopic, w)
		writePayload(w, "willMessage", c.willMessage)
	}
	if c.HasUserName() {
		pio.WriteString(`,"creds":`, w)
		c.Credentials().MarshalToJSON(w)
	} else if c.HasPassword() {
		writePayload(w, "password", c.password)
	}
	pio.WriteByte('}', w)
}

func (c *Connect) CleanSession() bool {
	return (c.flags & cleanSessionFlag) != 0
}

func (c *Connect) ClientID() string {
	return c.clientID
}

// Credentials returns the user name and password or nil when the packet has no user name
func (c *Connect) Credentials() *Credentials {
	if c.HasUserName() {
		cr := &Credentials{User: c.userName}
		if c.HasPassword() {
			cr.Password = c.password
		}
		return cr
	}
	return nil
}

// Flags returns the connect flags byte
func (c *Connect) Flags() byte {
	return c.flags
}

func (c *Connect) HasPassword() bool {
	return (c.flags & passwordFlag) != 0
}

func (c *Connect) HasUserName() bool {
	return (c.flags & userNameFlag) != 0
}

func (c *Connect) HasWill() bool {
	return (c.flags & willFlag) != 0
}

// ID always returns 0 since the CONNECT packet has no packet identifier
func (c *Connect) ID() uint16 {
	return 0
}

func (c *Connect) KeepAlive() uint16 {
	return c.keepAlive
}

func (c *Connect) Password() []byte {
	return c.password
}

// Protocol returns the protocol name and level
func (c *Connect) Protocol() Protocol {
	return c.protocol
}

// String returns a brief string representation of the packet. Suitable for logging
func (c *Connect) String() string {
	bs := bytes.NewBufferString("CONNECT (")
	fmt.Fprintf(bs, "c%d, k%d, u%d, p%d",
		(c.flags&cleanSessionFlag)>>1,
		c.keepAlive,
		(c.flags&userNameFlag)>>7,
		(c.flags&passwordFlag)>>6)
	if w := c.Will(); w != nil {
		bs.WriteString(", ")
		bs.WriteString(w.String())
	}
	bs.WriteByte(')')
	return bs.String()
}

func (c *Connect) Type() byte {
	return TpConnect
}

func (c *Connect) Username() string {
	return c.userName
}

// Will returns the client will or nil when the packet has no will
func (c *Connect) Will() *Will {
	if c.HasWill() {
		return &Will{
			Message: c.willMessage,
			Topic:   c.willTopic,
			QoS:     QoS((c.flags & willQoS) >> 3),
			Retain:  (c.flags & willRetainFlag) != 0}
	}
	return nil
}

func (c *Connect) sealed() {}

// ConnAck is the MQTT CONNACK packet
type ConnAck struct {
	flags      byte
	returnCode ReturnCode
}

// NewConnAck creates a new ConnAck packet
func NewConnAck(sessionPresent bool, returnCode ReturnCode) *ConnAck {
	flags := byte(0x00)
	if sessionPresent {
		flags |= 0x01
	}
	return &ConnAck{flags: flags, returnCode: returnCode}
}

// ParseConnAck parses the body of a CONNACK packet
func ParseConnAck(r *mqtt.Reader, _ byte) (*ConnAck, error) {
	bs, err := r.ReadExact(2)
	if err != nil {
		return nil, err
	}
	if err = expectEnd(r, TpConnAck); err != nil {
		return nil, err
	}
	a := &ConnAck{flags: bs[0], returnCode: ReturnCode(bs[1])}
	if err = a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Equals returns true if this packet is equal to the given packet, false if not
func (a *ConnAck) Equals(p Packet) bool {
	ac, ok := p.(*ConnAck)
	return ok && *a == *ac
}

// ID always returns 0 since the CONNACK packet has no packet identifier
func (a *ConnAck) ID() uint16 {
	return 0
}

// MarshalToJSON streams the JSON form of this packet onto the given writer
func (a *ConnAck) MarshalToJSON(w io.Writer) {
	writeType(w, TpConnAck)
	writeIntField(w, "flags", int(a.flags))
	writeIntField(w, "returnCode", int(a.returnCode))
	pio.WriteByte('}', w)
}

// ReturnCode returns the connect return code
func (a *ConnAck) ReturnCode() ReturnCode {
	return a.returnCode
}

// SessionPresent returns true if the server has a stored session for the client
func (a *ConnAck) SessionPresent() bool {
	return a.flags&0x01 != 0
}

func (a *ConnAck) String() string {
	return fmt.Sprintf("CONNACK (s%d, rt%d)", a.flags, byte(a.returnCode))
}

func (a *ConnAck) Type() byte {
	return TpConnAck
}

func (a *ConnAck) validate() error {
	if a.flags&0xfe != 0 {
		return fmt.Errorf("%w: reserved acknowledge flags 0x%02x", mqtt.ErrUnexpectedFlags, a.flags)
	}
	if !a.returnCode.Valid() {
		return fmt.Errorf("%w: %d", mqtt.ErrInvalidReturnCode, byte(a.returnCode))
	}
	return nil
}

func (a *ConnAck) Write(w *mqtt.Writer) error {
	if err := a.validate(); err != nil {
		return err
	}
	w.WriteU8(TpConnAck)
	w.WriteU8(2)
	w.WriteU8(a.flags)
	w.WriteU8(byte(a.returnCode))
	return nil
}

func (a *ConnAck) sealed() {}

// Disconnect is the MQTT DISCONNECT packet
type Disconnect int

// DisconnectSingleton is the one and only instance of the Disconnect type
const DisconnectSingleton = Disconnect(0)

// Equals returns true if this packet is equal to the given packet, false if not
func (Disconnect) Equals(p Packet) bool {
	return p == DisconnectSingleton
}

// ID always returns 0 since the DISCONNECT packet has no packet identifier
func (Disconnect) ID() uint16 {
	return 0
}

// MarshalToJSON streams the JSON form of this packet onto the given writer
func (Disconnect) MarshalToJSON(w io.Writer) {
	writeType(w, TpDisconnect)
	pio.WriteByte('}', w)
}

func (Disconnect) Type() byte {
	return TpDisconnect
}

func (Disconnect) String() string {
	return "DISCONNECT"
}

// Write writes the MQTT bits of this packet on the given Writer
func (Disconnect) Write(w *mqtt.Writer) error {
	w.WriteU8(TpDisconnect)
	w.WriteU8(0)
	return nil
}

func (Disconnect) sealed() {}
