// Command animcompose reads animator definitions from YAML and prints the
// composed transition data as JSON, or as deterministic CBOR with
// -format cbor.
//
//	animators:
//	  - target: background
//	    property: Color
//	    alphaFunction: EASE_IN_OUT
//	    startTime: 0
//	    endTime: 500
//	    targetValue: [1, 0, 0, 1]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dialup-inc/camkit/visual"
)

type document struct {
	Animators []*visual.Animator `yaml:"animators"`
}

func compose(r io.Reader, w io.Writer, format string, indent bool) error {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return fmt.Errorf("decode animators: %w", err)
	}

	transition := visual.Transition(doc.Animators...)

	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		if indent {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(transition)
	case "cbor":
		b, err := transition.MarshalCBOR()
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func main() {
	format := flag.String("format", "json", "output format: json or cbor")
	indent := flag.Bool("indent", false, "indent the JSON output")
	flag.Parse()

	in := io.Reader(os.Stdin)
	if path := flag.Arg(0); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	if err := compose(in, os.Stdout, *format, *indent); err != nil {
		log.Fatal(err)
	}
}
