package testutils

import (
	"strconv"
	"testing"

	"github.com/nats-io/nats-server/v2/server"
	testserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
)

// NATSServerOnPort will run an embedded NATS server on the given port. The caller must call
// Shutdown on the returned server.
func NATSServerOnPort(port int) *server.Server {
	opts := testserver.DefaultTestOptions
	opts.Port = port
	return testserver.RunServer(&opts)
}

// NATSConnect creates a new NATS connection on the given port
func NATSConnect(t *testing.T, port int) *nats.Conn {
	t.Helper()
	nc, err := nats.Connect(":" + strconv.Itoa(port))
	if err != nil {
		t.Fatal(err)
	}
	return nc
}
