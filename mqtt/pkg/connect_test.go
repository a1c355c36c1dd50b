package pkg

import (
	"errors"
	"testing"

	"github.com/tada/mqtt-codec/mqtt"
	"github.com/tada/mqtt-codec/testutils"
)

func TestParseConnect(t *testing.T) {
	c1 := NewConnect(MQTT311, `cid`, true, 5, &Will{
		Topic:   "my/will",
		Message: []byte("the will"),
		QoS:     1,
		Retain:  false,
	}, &Credentials{User: "bob", Password: []byte("password")})
	writeReadAndCompare(t, c1, "CONNECT (c1, k5, u1, p1, w(r0, q1, 'my/will', ... (8 bytes)))")
}

func TestParseConnect_minimal(t *testing.T) {
	c1 := NewConnect(MQTT311, "imvj", false, 120, nil, nil)
	writeReadAndCompare(t, c1, "CONNECT (c0, k120, u0, p0)")
	testutils.CheckFalse(c1.HasWill(), t)
	testutils.CheckTrue(c1.Will() == nil, t)
	testutils.CheckTrue(c1.Credentials() == nil, t)
}

func TestParseConnect_userWithoutPassword(t *testing.T) {
	c1 := NewConnect(MQTT311, "cid", true, 0, nil, &Credentials{User: "bob"})
	writeReadAndCompare(t, c1, "CONNECT (c1, k0, u1, p0)")
	testutils.CheckEqual("bob", c1.Username(), t)
	testutils.CheckFalse(c1.HasPassword(), t)
}

func TestConnect_wireForm(t *testing.T) {
	bs := encode(t, NewConnect(MQTT311, "imvj", true, 120, nil, nil))
	testutils.CheckEqual([]byte{
		0x10, 16,
		0, 4, 'M', 'Q', 'T', 'T',
		4,
		0x02,
		0, 120,
		0, 4, 'i', 'm', 'v', 'j'}, bs, t)
}

func TestConnect_accessors(t *testing.T) {
	c := NewConnect(MQTT311, "cid", false, 30, &Will{Topic: "w", Message: []byte{1}, QoS: ExactlyOnce, Retain: true},
		&Credentials{User: "u", Password: []byte{}})
	testutils.CheckEqual(MQTT311, c.Protocol(), t)
	testutils.CheckEqual("cid", c.ClientID(), t)
	testutils.CheckEqual(uint16(30), c.KeepAlive(), t)
	testutils.CheckFalse(c.CleanSession(), t)
	testutils.CheckTrue(c.Will().Equals(&Will{Topic: "w", Message: []byte{1}, QoS: ExactlyOnce, Retain: true}), t)
	testutils.CheckTrue(c.Credentials().Equals(&Credentials{User: "u", Password: []byte{}}), t)
	testutils.CheckFalse(c.Credentials().Equals(&Credentials{User: "u"}), t)
	testutils.CheckEqual(uint16(0), c.ID(), t)
	testutils.CheckEqual(byte(0x04|0x10|0x20|0x40|0x80), c.Flags(), t)
}

func connectPrefix(flags byte) *mqtt.Writer {
	w := mqtt.NewWriter()
	_ = w.WriteString("MQTT")
	w.WriteU8(4)
	w.WriteU8(flags)
	w.WriteU16(5)
	return w
}

func TestParseConnect_badLen(t *testing.T) {
	_, err := ParseConnect(mqtt.NewReader([]byte{}), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrPayloadTooShort), t)
}

func TestParseConnect_badProto(t *testing.T) {
	w := mqtt.NewWriter()
	w.WriteU16(5)
	w.WriteU8('N')
	w.WriteU8('O')
	w.WriteU8('N')
	w.WriteU8('O')
	_, err := ParseConnect(mqtt.NewReader(w.Bytes()), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrPayloadTooShort), t)
}

func TestParseConnect_illegalProto(t *testing.T) {
	w := mqtt.NewWriter()
	_ = w.WriteString("NONO")
	w.WriteU8(4)
	_, err := ParseConnect(mqtt.NewReader(w.Bytes()), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrInvalidProtocol), t)
}

func TestParseConnect_badClientLevel(t *testing.T) {
	w := mqtt.NewWriter()
	_ = w.WriteString("MQTT")
	_, err := ParseConnect(mqtt.NewReader(w.Bytes()), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrPayloadTooShort), t)
}

func TestParseConnect_illegalClientLevel(t *testing.T) {
	w := mqtt.NewWriter()
	_ = w.WriteString("MQTT")
	w.WriteU8(3)
	_, err := ParseConnect(mqtt.NewReader(w.Bytes()), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrInvalidProtocol), t)
}

func TestParseConnect_badConnectFlags(t *testing.T) {
	w := mqtt.NewWriter()
	_ = w.WriteString("MQTT")
	w.WriteU8(4)
	_, err := ParseConnect(mqtt.NewReader(w.Bytes()), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrPayloadTooShort), t)
}

func TestParseConnect_illegalConnectFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags byte
		err   error
	}{
		{name: "reserved", flags: 0x01, err: mqtt.ErrUnexpectedFlags},
		{name: "will QoS 3", flags: 0x04 | 0x18, err: mqtt.ErrInvalidQoS},
		{name: "will QoS without will", flags: 0x08, err: mqtt.ErrUnexpectedFlags},
		{name: "will retain without will", flags: 0x20, err: mqtt.ErrUnexpectedFlags},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			w := connectPrefix(tt.flags)
			_ = w.WriteString("cid")
			_, err := ParseConnect(mqtt.NewReader(w.Bytes()), 0)
			testutils.CheckTrue(errors.Is(err, tt.err), t)
		})
	}
}

func TestParseConnect_passwordWithoutUser(t *testing.T) {
	w := connectPrefix(0x42)
	_ = w.WriteString("cid")
	_ = w.WriteBytes([]byte("pw"))
	c, err := ParseConnect(mqtt.NewReader(w.Bytes()), 0)
	testutils.CheckNotError(err, t)
	testutils.CheckFalse(c.HasUserName(), t)
	testutils.CheckTrue(c.HasPassword(), t)
	testutils.CheckTrue(c.Credentials() == nil, t)
	testutils.CheckEqual([]byte("pw"), c.Password(), t)
	writeReadAndCompare(t, c, "CONNECT (c1, k5, u0, p1)")

	bs, err := MarshalJSON(c)
	testutils.CheckNotError(err, t)
	testutils.CheckEqual(`{"type":"CONNECT","protocol":"MQTT","level":4,"flags":66,"keepAlive":5,"clientId":"cid","password":"pw"}`, string(bs), t)
	c2, err := UnmarshalJSON(bs)
	testutils.CheckNotError(err, t)
	testutils.CheckTrue(c.Equals(c2), t)
}

func TestParseConnect_badKeepAlive(t *testing.T) {
	w := mqtt.NewWriter()
	_ = w.WriteString("MQTT")
	w.WriteU8(4)
	w.WriteU8(0)
	_, err := ParseConnect(mqtt.NewReader(w.Bytes()), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrPayloadTooShort), t)
}

func TestParseConnect_badClientID(t *testing.T) {
	w := connectPrefix(0)
	w.WriteU16(5)
	_, err := ParseConnect(mqtt.NewReader(w.Bytes()), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrPayloadTooShort), t)
}

func TestParseConnect_invalidUTF8ClientID(t *testing.T) {
	w := connectPrefix(0)
	_ = w.WriteBytes([]byte{0xc3, 0x28})
	_, err := ParseConnect(mqtt.NewReader(w.Bytes()), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrInvalidUTF8), t)
}

func TestParseConnect_badWillTopic(t *testing.T) {
	w := connectPrefix(0x04)
	_ = w.WriteString("cid")
	_, err := ParseConnect(mqtt.NewReader(w.Bytes()), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrPayloadTooShort), t)
}

func TestParseConnect_badWillMessage(t *testing.T) {
	w := connectPrefix(0x04)
	_ = w.WriteString("cid")
	_ = w.WriteString("wtp")
	_, err := ParseConnect(mqtt.NewReader(w.Bytes()), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrPayloadTooShort), t)
}

func TestParseConnect_badUser(t *testing.T) {
	w := connectPrefix(0x80)
	_ = w.WriteString("cid")
	_, err := ParseConnect(mqtt.NewReader(w.Bytes()), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrPayloadTooShort), t)
}

func TestParseConnect_badPw(t *testing.T) {
	w := connectPrefix(0xc0)
	_ = w.WriteString("cid")
	_ = w.WriteString("bob")
	_, err := ParseConnect(mqtt.NewReader(w.Bytes()), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrPayloadTooShort), t)
}

func TestParseConnect_trailingBytes(t *testing.T) {
	w := connectPrefix(0)
	_ = w.WriteString("cid")
	w.WriteU8(0)
	_, err := ParseConnect(mqtt.NewReader(w.Bytes()), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrInvalidLength), t)
}

func TestConnect_stringTooLong(t *testing.T) {
	w := mqtt.NewWriter()
	w.WriteU8(0xff)
	n, err := Encode(NewConnect(MQTT311, string(make([]byte, 0x10000)), true, 0, nil, nil), w)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrStringTooLong), t)
	testutils.CheckEqual(0, n, t)
	testutils.CheckEqual([]byte{0xff}, w.Bytes(), t)
}

func TestNewProtocol(t *testing.T) {
	p, err := NewProtocol("MQTT", 4)
	testutils.CheckNotError(err, t)
	testutils.CheckEqual(MQTT311, p, t)
	testutils.CheckEqual("MQTT v4", p.String(), t)

	_, err = NewProtocol("MQIsdp", 3)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrInvalidProtocol), t)
}

func TestConnect_zeroProtocol(t *testing.T) {
	w := mqtt.NewWriter()
	n, err := Encode(NewConnect(Protocol{}, "cid", true, 0, nil, nil), w)
	testutils.CheckErrorIs(mqtt.ErrInvalidProtocol, err, t)
	testutils.CheckEqual(0, n, t)
	testutils.CheckEqual(0, w.Len(), t)
}

func TestConnect_encodeIllegalFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags byte
		err   error
	}{
		{name: "reserved", flags: 0x01, err: mqtt.ErrUnexpectedFlags},
		{name: "will QoS 3", flags: 0x04 | 0x18, err: mqtt.ErrInvalidQoS},
		{name: "will retain without will", flags: 0x20, err: mqtt.ErrUnexpectedFlags},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			c := &Connect{protocol: MQTT311, clientID: "cid", flags: tt.flags}
			_, err := Encode(c, mqtt.NewWriter())
			testutils.CheckErrorIs(tt.err, err, t)
		})
	}
}

func TestParseConnAck(t *testing.T) {
	writeReadAndCompare(t, NewConnAck(false, 1), "CONNACK (s0, rt1)")
	writeReadAndCompare(t, NewConnAck(true, RtAccepted), "CONNACK (s1, rt0)")
}

func TestConnAck_accessors(t *testing.T) {
	a := NewConnAck(true, RtNotAuthorized)
	testutils.CheckTrue(a.SessionPresent(), t)
	testutils.CheckEqual(RtNotAuthorized, a.ReturnCode(), t)
	testutils.CheckEqual(uint16(0), a.ID(), t)
	testutils.CheckEqual([]byte{0x20, 2, 1, 5}, encode(t, a), t)
}

func TestConnAck_encodeInvalid(t *testing.T) {
	_, err := Encode(NewConnAck(false, ReturnCode(6)), mqtt.NewWriter())
	testutils.CheckErrorIs(mqtt.ErrInvalidReturnCode, err, t)
	_, err = Encode(&ConnAck{flags: 2}, mqtt.NewWriter())
	testutils.CheckErrorIs(mqtt.ErrUnexpectedFlags, err, t)
}

func TestParseConnAck_badLen(t *testing.T) {
	_, err := ParseConnAck(mqtt.NewReader([]byte{}), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrPayloadTooShort), t)
}

func TestParseConnAck_badBytes(t *testing.T) {
	_, err := ParseConnAck(mqtt.NewReader([]byte{1}), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrPayloadTooShort), t)
}

func TestParseConnAck_badFlags(t *testing.T) {
	_, err := ParseConnAck(mqtt.NewReader([]byte{2, 0}), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrUnexpectedFlags), t)
}

func TestParseConnAck_badReturnCode(t *testing.T) {
	_, err := ParseConnAck(mqtt.NewReader([]byte{0, 6}), 0)
	testutils.CheckTrue(errors.Is(err, mqtt.ErrInvalidReturnCode), t)
}

func TestParseDisconnect(t *testing.T) {
	writeReadAndCompare(t, DisconnectSingleton, "DISCONNECT")
	testutils.CheckEqual([]byte{0xe0, 0}, encode(t, DisconnectSingleton), t)
}

func TestReturnCode_Error(t *testing.T) {
	tests := []struct {
		name string
		code ReturnCode
		want string
	}{
		{
			name: "RtAccepted",
			code: RtAccepted,
			want: "accepted",
		},
		{
			name: "RtUnacceptableProtocolVersion",
			code: RtUnacceptableProtocolVersion,
			want: "unacceptable protocol version",
		},
		{
			name: "RtIdentifierRejected",
			code: RtIdentifierRejected,
			want: "identifier rejected",
		},
		{
			name: "RtServerUnavailable",
			code: RtServerUnavailable,
			want: "server unavailable",
		},
		{
			name: "RtBadUserNameOrPassword",
			code: RtBadUserNameOrPassword,
			want: "bad user name or password",
		},
		{
			name: "RtNotAuthorized",
			code: RtNotAuthorized,
			want: "not authorized",
		},
		{
			name: "unknown",
			code: ReturnCode(99),
			want: "unknown error",
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.Error(); got != tt.want {
				t.Errorf("ReturnCode.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}
