// Package tap contains a tap that decodes a stream of MQTT packets, such as one side of a
// captured MQTT connection, and publishes every decoded packet as JSON on NATS.
package tap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nuid"
	"github.com/tada/catch"
	"github.com/tada/catch/pio"
	"github.com/tada/jsonstream"
	"github.com/tada/mqtt-codec/logger"
	"github.com/tada/mqtt-codec/mqtt"
	"github.com/tada/mqtt-codec/mqtt/pkg"
)

// A Handler is called once for each decoded packet, in stream order. The seq starts at 1 and
// increases by one for each packet. A Handler that returns an error stops the tap.
type Handler func(seq uint64, p pkg.Packet) error

// Tap decodes MQTT packets from a byte stream
type Tap struct {
	logger.Logger
	opts     *Options
	id       string
	natsConn *nats.Conn
	filter   *regexp.Regexp
	handlers []Handler
	seq      uint64
}

// New creates a new Tap configured using a copy of the given options and the given logger. A
// NATS connection is established unless opts.NATSUrls is empty.
func New(opts *Options, log logger.Logger) (*Tap, error) {
	o := *opts
	opts = &o
	t := &Tap{Logger: log, opts: opts, id: nuid.Next()}
	if opts.Subject == "" {
		opts.Subject = DefaultSubject
	}
	if opts.ReadSize <= 0 {
		opts.ReadSize = DefaultReadSize
	}
	if opts.Filter != "" {
		if !mqtt.ValidTopicFilter(opts.Filter) {
			return nil, fmt.Errorf("invalid topic filter %q", opts.Filter)
		}
		t.filter = mqtt.FilterToRegexp(opts.Filter)
	}
	if opts.NATSUrls != "" {
		var err error
		if t.natsConn, err = t.connect(); err != nil {
			return nil, err
		}
		t.Debug("tap", t.id, "connected to NATS", t.natsConn.ConnectedUrl())
	}
	return t, nil
}

func (t *Tap) connect() (*nats.Conn, error) {
	opts := nats.GetDefaultOptions()
	opts.Servers = strings.Split(t.opts.NATSUrls, ",")
	opts.Name = "mqtt-codec-tap-" + t.id
	optFuncs := t.opts.NATSOpts
	for i := range optFuncs {
		if err := optFuncs[i](&opts); err != nil {
			return nil, err
		}
	}
	return opts.Connect()
}

// AddHandler adds a handler that will be called for each decoded packet
func (t *Tap) AddHandler(h Handler) {
	t.handlers = append(t.handlers, h)
}

// ID returns the unique id of this tap. The id is included in every message published to NATS
func (t *Tap) ID() string {
	return t.id
}

// PublishSubscription returns the NATS subscription that matches the subjects of the PUBLISH
// packets that this tap forwards. A filter that ends with "/#" also matches its parent topic, a
// subject that the returned subscription doesn't match.
func (t *Tap) PublishSubscription() string {
	if t.opts.Filter == "" {
		return t.opts.Subject + ".publish.>"
	}
	return t.opts.Subject + ".publish." + mqtt.ToNATSSubscription(t.opts.Filter)
}

// Count returns the number of packets that has been decoded so far
func (t *Tap) Count() uint64 {
	return t.seq
}

// Run reads the given stream until it ends or a decode error occurs. Bytes are read in chunks
// and all complete packets are decoded and dispatched after each chunk. A partial packet is
// retained until subsequent reads complete it.
//
// A nil error is returned when the stream ends cleanly between two packets. The stream ending
// in the middle of a packet results in io.ErrUnexpectedEOF. A decode error is returned as is;
// the stream cannot be resynchronized after such an error.
func (t *Tap) Run(r io.Reader) error {
	buf := &bytes.Buffer{}
	chunk := make([]byte, t.opts.ReadSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			_, _ = buf.Write(chunk[:n])
			if de := t.drain(buf); de != nil {
				t.Error("tap", t.id, de)
				return de
			}
		}
		if err != nil {
			if err == io.EOF {
				if buf.Len() > 0 {
					t.Error("tap", t.id, "stream ended with", buf.Len(), "bytes of an incomplete packet")
					return io.ErrUnexpectedEOF
				}
				t.Debug("tap", t.id, "stream ended after", t.seq, "packets")
				return nil
			}
			return err
		}
	}
}

// drain decodes and dispatches packets until buf no longer holds a complete packet
func (t *Tap) drain(buf *bytes.Buffer) error {
	for {
		p, err := pkg.Decode(buf)
		if err != nil || p == nil {
			return err
		}
		if err = t.dispatch(p); err != nil {
			return err
		}
	}
}

func (t *Tap) dispatch(p pkg.Packet) error {
	t.seq++
	if t.DebugEnabled() {
		t.Debug("tap", t.id, "received", p)
	}
	for _, h := range t.handlers {
		if err := h(t.seq, p); err != nil {
			return err
		}
	}
	if t.natsConn == nil || !t.accepts(p) {
		return nil
	}
	bs, err := t.envelope(p)
	if err != nil {
		return err
	}
	return t.natsConn.Publish(Subject(t.opts.Subject, p), bs)
}

// accepts returns false for PUBLISH packets with a topic that doesn't match the filter
func (t *Tap) accepts(p pkg.Packet) bool {
	if pp, ok := p.(*pkg.Publish); ok && t.filter != nil {
		return t.filter.MatchString(pp.TopicName())
	}
	return true
}

// envelope returns the JSON form {"tap":<id>,"seq":<seq>,"packet":<packet>}
func (t *Tap) envelope(p pkg.Packet) ([]byte, error) {
	w := &bytes.Buffer{}
	err := catch.Do(func() {
		pio.WriteString(`{"tap":`, w)
		jsonstream.WriteString(t.id, w)
		pio.WriteString(`,"seq":`, w)
		pio.WriteInt(int64(t.seq), w)
		pio.WriteString(`,"packet":`, w)
		p.MarshalToJSON(w)
		pio.WriteByte('}', w)
	})
	return w.Bytes(), err
}

// Close flushes and closes the NATS connection of the tap
func (t *Tap) Close() error {
	if t.natsConn == nil {
		return nil
	}
	nc := t.natsConn
	t.natsConn = nil
	err := nc.Flush()
	nc.Close()
	if errors.Is(err, nats.ErrConnectionClosed) {
		err = nil
	}
	return err
}

// Subject returns the NATS subject that the given packet is published to using the given prefix
func Subject(prefix string, p pkg.Packet) string {
	s := prefix + "." + strings.ToLower(pkg.TypeName(p.Type()))
	if pp, ok := p.(*pkg.Publish); ok {
		s += "." + mqtt.ToNATS(pp.TopicName())
	}
	return s
}
