// magdiag - inspect encoded documents for tunneled maggie values
//
// A tunneled value is only meaningful inside the process and scope that
// wrote it. magdiag decodes a document without reinterpreting anything and
// reports where such values sit, so leaked handles can be spotted in data
// that crossed a process boundary.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/chazu/magserde/magic"
	"github.com/chazu/magserde/manifest"
	"github.com/chazu/magserde/serde"
	"github.com/chazu/magserde/serde/cborfmt"
	"github.com/chazu/magserde/serde/msgpackfmt"
	"github.com/chazu/magserde/vm"
)

var log = commonlog.GetLogger("magserde.diag")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("magdiag", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "", "input format: cbor or msgpack (default from magserde.toml)")
	configDir := fs.String("config", ".", "directory to search upward for magserde.toml")
	strict := fs.Bool("strict", false, "exit with status 2 if any tunneled value is found")
	verbose := fs.Int("v", 0, "log verbosity, added to the configured level")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: magdiag [options] [file]\n\n")
		fmt.Fprintf(stderr, "Reads an encoded document from file or stdin and lists the tunneled values in it.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  magdiag doc.cbor\n")
		fmt.Fprintf(stderr, "  magdiag -format msgpack -strict < doc.mp\n")
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}

	m, err := manifest.FindAndLoad(*configDir)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	commonlog.Configure(m.Log.Verbosity+*verbose, m.LogPath())
	if *format == "" {
		*format = m.Codec.Format
	}

	var input []byte
	switch fs.NArg() {
	case 0:
		input, err = io.ReadAll(stdin)
	case 1:
		input, err = os.ReadFile(fs.Arg(0))
	default:
		fs.Usage()
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error reading input: %v\n", err)
		return 1
	}
	if len(input) == 0 {
		fmt.Fprintf(stderr, "Error: no input provided\n")
		return 1
	}

	doc, err := decode(*format, input, m.Codec, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error decoding %s: %v\n", *format, err)
		return 1
	}

	found := magic.Find(doc)
	log.Infof("found %d tunneled values in %d bytes of %s", len(found), len(input), *format)
	for _, o := range found {
		serial, slot := vm.SplitLocalBits(o.Bits, o.Width)
		fmt.Fprintf(stdout, "handle %s: scope=%d slot=%d (u%d %#x)\n", o.Path, serial, slot, o.Width, o.Bits)
	}
	if len(found) == 0 {
		fmt.Fprintln(stdout, "no tunneled values")
		return 0
	}
	if *strict {
		fmt.Fprintf(stderr, "Error: %d tunneled values found\n", len(found))
		return 2
	}
	return 0
}

// decode prints the diagnostic view of input and returns it decoded the way
// a consumer unaware of tunneled values would see it. Codec options come
// from the [codec] table of magserde.toml.
func decode(format string, input []byte, codec manifest.CodecConfig, stdout io.Writer) (any, error) {
	var (
		d   serde.Deserializer
		dec *msgpack.Decoder
	)
	switch format {
	case manifest.FormatCBOR:
		diag, err := cborfmt.Diagnose(input)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(stdout, diag)
		d, err = codec.CBOROptions().Deserializer(input)
		if err != nil {
			return nil, err
		}
	case manifest.FormatMsgpack:
		dec = msgpack.NewDecoder(bytes.NewReader(input))
		d = msgpackfmt.NewDeserializer(dec)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	doc, err := serde.DecodeAny(d)
	if err != nil {
		return nil, err
	}
	if dec != nil {
		if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("trailing data after value")
		}
		n, err := codec.TreeOptions().Encode(doc)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(stdout, n)
	}
	return doc, nil
}
