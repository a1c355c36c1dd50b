package pkg

import (
	"bytes"
	"fmt"

	"github.com/tada/mqtt-codec/mqtt"
)

// Encode appends the wire form of the given packet to w and returns the number of bytes that
// were appended. Bytes already present in w are never modified. Nothing is appended when an
// error is returned.
func Encode(p Packet, w *mqtt.Writer) (int, error) {
	before := w.Len()
	if err := p.Write(w); err != nil {
		return 0, err
	}
	return w.Len() - before, nil
}

// Decode decodes one packet from the start of buf.
//
// A nil packet and a nil error is returned when buf doesn't yet contain a complete packet. The
// buf is then left unmodified so that the call can be repeated once more bytes have been
// appended. When a packet is returned, exactly its bytes have been drained from buf and any
// bytes that follow are retained. The state of buf is undefined when an error is returned.
func Decode(buf *bytes.Buffer) (Packet, error) {
	bs := buf.Bytes()
	if len(bs) == 0 {
		return nil, nil
	}
	rl, n, err := mqtt.DecodeVarInt(bs[1:])
	if err != nil || n == 0 {
		return nil, err
	}
	end := 1 + n + rl
	if len(bs) < end {
		return nil, nil
	}
	b := bs[0]
	if err = checkFixedHeader(b); err != nil {
		return nil, err
	}
	p, err := parse(b, mqtt.NewReader(bs[1+n:end]))
	if err != nil {
		return nil, err
	}
	buf.Next(end)
	return p, nil
}

// checkFixedHeader validates the type and flags of the first byte of the fixed header
func checkFixedHeader(b byte) error {
	tp := b & TpMask
	flags := b & FlagsMask
	switch tp {
	case 0, 0xf0:
		return fmt.Errorf("%w: %d", mqtt.ErrInvalidPacketType, tp>>4)
	case TpPublish:
		if flags&PublishQoS == PublishQoS {
			return fmt.Errorf("%w: publish QoS 3", mqtt.ErrInvalidQoS)
		}
		return nil
	case TpPubRel, TpSubscribe, TpUnsubscribe:
		if flags != 2 {
			return fmt.Errorf("%w: %s with flags 0x%x", mqtt.ErrUnexpectedFlags, TypeName(tp), flags)
		}
	default:
		if flags != 0 {
			return fmt.Errorf("%w: %s with flags 0x%x", mqtt.ErrUnexpectedFlags, TypeName(tp), flags)
		}
	}
	return nil
}

// parse dispatches to the parser of the type given in b and returns the parsed packet
func parse(b byte, r *mqtt.Reader) (Packet, error) {
	var (
		p   Packet
		err error
	)
	flags := b & FlagsMask
	switch b & TpMask {
	case TpConnect:
		p, err = ParseConnect(r, flags)
	case TpConnAck:
		p, err = ParseConnAck(r, flags)
	case TpPublish:
		p, err = ParsePublish(r, flags)
	case TpPubAck:
		p, err = ParsePubAck(r, flags)
	case TpPubRec:
		p, err = ParsePubRec(r, flags)
	case TpPubRel:
		p, err = ParsePubRel(r, flags)
	case TpPubComp:
		p, err = ParsePubComp(r, flags)
	case TpSubscribe:
		p, err = ParseSubscribe(r, flags)
	case TpSubAck:
		p, err = ParseSubAck(r, flags)
	case TpUnsubscribe:
		p, err = ParseUnsubscribe(r, flags)
	case TpUnsubAck:
		p, err = ParseUnsubAck(r, flags)
	case TpPing:
		p, err = PingRequestSingleton, expectEnd(r, TpPing)
	case TpPingResp:
		p, err = PingResponseSingleton, expectEnd(r, TpPingResp)
	case TpDisconnect:
		p, err = DisconnectSingleton, expectEnd(r, TpDisconnect)
	default:
		err = fmt.Errorf("%w: %d", mqtt.ErrInvalidPacketType, b>>4)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// expectEnd returns an error unless all bytes of the body of a packet of the given type have
// been read
func expectEnd(r *mqtt.Reader, tp byte) error {
	if n := r.Len(); n > 0 {
		return fmt.Errorf("%w: %d unexpected trailing bytes in %s", mqtt.ErrInvalidLength, n, TypeName(tp))
	}
	return nil
}
