// Package cli contains the command line interface of the mqtt-codec binary.
package cli

import (
	"bufio"
	"flag"
	"fmt"
	"io"

	"github.com/nats-io/nats.go"
	"github.com/tada/mqtt-codec/logger"
	"github.com/tada/mqtt-codec/mqtt"
	"github.com/tada/mqtt-codec/mqtt/pkg"
	"github.com/tada/mqtt-codec/tap"
)

const usage = `usage: %s <command> [options]

commands:
  decode   read MQTT packets from stdin and write one JSON object per packet to stdout
  encode   read a JSON array of packets from stdin and write their binary form to stdout

use "%s <command> -h" for the options of a command
`

// Codec runs the command given in args[1] and returns the process exit code. The exit code is 0
// on success, 1 when decoding, encoding, or I/O fails, and 2 on usage errors.
func Codec(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		_, _ = fmt.Fprintf(stderr, usage, args[0], args[0])
		return 2
	}
	switch args[1] {
	case "decode":
		return decode(args[0]+" decode", args[2:], stdin, stdout, stderr)
	case "encode":
		return encode(args[0]+" encode", args[2:], stdin, stdout, stderr)
	case "-h", "-help", "help":
		_, _ = fmt.Fprintf(stdout, usage, args[0], args[0])
		return 0
	}
	_, _ = fmt.Fprintf(stderr, "unknown command %q\n", args[1])
	_, _ = fmt.Fprintf(stderr, usage, args[0], args[0])
	return 2
}

// commonFlags are the flags shared by all commands
type commonFlags struct {
	printHelp bool
	debug     bool
	level     string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.BoolVar(&c.printHelp, "h", false, "")
	fs.BoolVar(&c.printHelp, "help", false, "Print this help")
	fs.BoolVar(&c.debug, "D", false, "Enable Debug logging")
	fs.BoolVar(&c.debug, "debug", false, "Enable Debug logging")
	fs.StringVar(&c.level, "level", "error", "Log level, one of silent, error, info, or debug")
}

// parse parses the args and returns the exit code to use when the command must end immediately
func (c *commonFlags) parse(fs *flag.FlagSet, args []string, stdout, stderr io.Writer) (logger.Logger, int, bool) {
	if err := fs.Parse(args); err != nil {
		return nil, 2, true
	}
	if c.printHelp {
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return nil, 0, true
	}
	if fs.NArg() > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected argument %q\n", fs.Arg(0))
		return nil, 2, true
	}
	level, err := logger.ParseLevel(c.level)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return nil, 2, true
	}
	if c.debug {
		level = logger.Debug
	}
	// stdout carries the command output so all logging goes to stderr
	return logger.New(level, stderr, stderr), 0, false
}

func decode(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		cf             commonFlags
		natsClientCert string
		natsClientKey  string
		natsRootCAs    string
		natsCredsFile  string
	)
	cf.register(fs)
	opts := &tap.Options{}
	fs.StringVar(&opts.NATSUrls, "natsurl", "", "NATS server URLs separated by comma. Packets are published to NATS when given")
	fs.StringVar(&opts.Subject, "subject", tap.DefaultSubject, "NATS subject prefix for published packets")
	fs.StringVar(&opts.Filter, "filter", "", "MQTT topic filter. Only PUBLISH packets matching the filter are sent to NATS")
	fs.IntVar(&opts.ReadSize, "readsize", tap.DefaultReadSize, "max number of bytes to read from stdin at a time")

	fs.StringVar(&natsCredsFile, "nats-creds", "", "User Credentials File used when connecting to NATS")
	fs.StringVar(&natsClientKey, "nats-key", "", "Public Key used when connecting to NATS")
	fs.StringVar(&natsClientCert, "nats-cert", "", "Client Certificate used when connecting to NATS")
	fs.StringVar(&natsRootCAs, "nats-cacert", "", "Client Root Certificate used when connecting to NATS")

	lg, code, done := cf.parse(fs, args, stdout, stderr)
	if done {
		return code
	}

	if natsCredsFile != "" {
		opts.NATSOpts = append(opts.NATSOpts, nats.UserCredentials(natsCredsFile))
	}
	if natsClientCert != "" || natsClientKey != "" {
		if natsClientCert == "" || natsClientKey == "" {
			_, _ = io.WriteString(stderr, "both -nats-cert and -nats-key must be given to enable client verification\n")
			return 2
		}
		opts.NATSOpts = append(opts.NATSOpts, nats.ClientCert(natsClientCert, natsClientKey))
	}
	if natsRootCAs != `` {
		opts.NATSOpts = append(opts.NATSOpts, nats.RootCAs(natsRootCAs))
	}

	t, err := tap.New(opts, lg)
	if err != nil {
		lg.Error(err)
		return 1
	}
	if opts.NATSUrls != "" {
		lg.Info("tap", t.ID(), "publishes PUBLISH packets on", t.PublishSubscription())
	}

	out := bufio.NewWriter(stdout)
	t.AddHandler(func(_ uint64, p pkg.Packet) error {
		bs, err := pkg.MarshalJSON(p)
		if err == nil {
			_, _ = out.Write(bs)
			err = out.WriteByte('\n')
		}
		return err
	})

	err = t.Run(stdin)
	if fe := out.Flush(); err == nil {
		err = fe
	}
	if ce := t.Close(); err == nil {
		err = ce
	}
	if err != nil {
		lg.Error(err)
		return 1
	}
	lg.Info("decoded", t.Count(), "packets")
	return 0
}

func encode(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cf commonFlags
	cf.register(fs)
	lg, code, done := cf.parse(fs, args, stdout, stderr)
	if done {
		return code
	}

	ps, err := pkg.ReadPackets(stdin, pkg.NewIDManager())
	if err != nil {
		lg.Error(err)
		return 1
	}

	w := mqtt.NewWriter()
	for _, p := range ps {
		var n int
		if n, err = pkg.Encode(p, w); err != nil {
			lg.Error(p, err)
			return 1
		}
		if lg.DebugEnabled() {
			lg.Debug("encoded", p, "into", n, "bytes")
		}
	}
	if _, err = stdout.Write(w.Bytes()); err != nil {
		lg.Error(err)
		return 1
	}
	lg.Info("encoded", len(ps), "packets")
	return 0
}
