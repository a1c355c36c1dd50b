package tap

import (
	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject prefix used when Options.Subject is empty
const DefaultSubject = "mqtt.tap"

// DefaultReadSize is the read chunk size used when Options.ReadSize is zero
const DefaultReadSize = 4096

// Options configures a Tap
type Options struct {
	// NATSUrls is a comma separated list of URLs used when connecting to NATS. Can be empty
	// if no NATS publishing is desired
	NATSUrls string

	// Subject is the prefix of the NATS subjects that decoded packets are published to. A packet
	// is published to "<Subject>.<type>" where type is the lower case packet type name. PUBLISH
	// packets are published to "<Subject>.publish.<topic>" where topic is the MQTT topic name
	// converted to a NATS subject.
	Subject string

	// Filter is an optional MQTT topic filter. When set, only PUBLISH packets with a topic name
	// that matches the filter are published to NATS. All other packet types are always published.
	Filter string

	// ReadSize is the maximum number of bytes consumed by each read from the tapped stream
	ReadSize int

	// NATSOpts are options specific to the NATS connection
	NATSOpts []nats.Option
}
