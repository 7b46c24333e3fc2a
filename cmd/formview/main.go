// Command formview parses a form-encoded or JSON payload and prints the
// resulting generic value map as indented JSON. It is a debugging aid for
// inspecting how a request body will look after parsing.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/humanenginuity/amiwo"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input payload file. If not specified, reads from stdin." short:"i" type:"path"`
	ContentType string `help:"Media type of the payload." short:"t" default:"application/x-www-form-urlencoded" enum:"application/x-www-form-urlencoded,application/json"`
	MaxBody     int64  `help:"Maximum payload size in bytes." default:"32768"`
	Version     bool   `help:"Show version information." short:"v"`
}

const version = "0.1.0"

func main() {
	parser := kong.Must(&CLI,
		kong.Name("formview"),
		kong.Description("Inspect form-encoded and JSON payloads as a generic value map"),
		kong.UsageOnError(),
	)

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("formview version %s\n", version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "formview: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	data, err := readInput()
	if err != nil {
		return err
	}
	if int64(len(data)) > CLI.MaxBody {
		return amiwo.ErrBodyTooLarge
	}

	var fm *amiwo.FormMap
	switch CLI.ContentType {
	case amiwo.MediaTypeJSON:
		fm, err = amiwo.ParseJSON(data)
	default:
		fm, err = amiwo.ParseForm(data)
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(fm.Value(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func readInput() ([]byte, error) {
	if CLI.Input == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(CLI.Input)
}
