package main

import (
	"os"

	"github.com/tada/mqtt-codec/cli"
)

func main() {
	os.Exit(cli.Codec(os.Args, os.Stdin, os.Stdout, os.Stderr))
}
