// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/yeetrun/argve/pkg/argve"
)

const version = "1.0.0"

const (
	optName = iota
	optShout
	optVerbose
	optVersion
)

var options = []argve.Option{
	optName:    {NeedsValue: true, Short: argve.Char('n'), Long: "name"},
	optShout:   {Short: argve.Char('s'), Long: "shout"},
	optVerbose: {Short: argve.Char('v'), Long: "verbose"},
	optVersion: {Short: argve.Virtual(256), Long: "version"},
}

var errUsage = errors.New("usage: greet [-v] [-s] [-n NAME | --name=NAME] [--version] [WORD...]")

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, w io.Writer) error {
	tz, err := argve.New(options, args)
	if err != nil {
		return err
	}
	name := "world"
	var shout, verbose bool
	var words []string
	for tok := range tz.All() {
		if tok.Kind.IsError() {
			return fmt.Errorf("%s\n%w", tz.FormatError("greet: "), errUsage)
		}
		if tok.Kind == argve.Text {
			words = append(words, tok.Value)
			if tok.Value == "--" {
				words = append(words, tz.Remaining()...)
				break
			}
			continue
		}
		switch tok.Index {
		case optName:
			name = tok.Value
		case optShout:
			shout = true
		case optVerbose:
			verbose = true
		case optVersion:
			fmt.Fprintln(w, "greet", version)
			return nil
		}
	}
	if verbose {
		fmt.Fprintf(w, "greeting %q with %d extra words\n", name, len(words))
	}
	msg := fmt.Sprintf("Hello, %s!", strings.Join(append([]string{name}, words...), " "))
	if shout {
		msg = strings.ToUpper(msg)
	}
	_, err = fmt.Fprintln(w, msg)
	return err
}
