// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package argve is an iterative, allocation-free command-line argument
// tokenizer.
//
// A Tokenizer walks a caller-owned argument vector against a caller-owned
// option table and classifies one piece of input per call to Next. It never
// copies or mutates the argument strings: names and values reported by a
// Token are substrings of the original arguments, and the matched Option is a
// pointer into the caller's table.
//
// # Option table
//
// Each Option row has an optional short form, an optional long form and a
// flag telling whether a value must follow:
//
//	table := []argve.Option{
//	    {Short: argve.Char('v'), Long: "verbose"},
//	    {Short: argve.Char('o'), Long: "output", NeedsValue: true},
//	    {Short: argve.Virtual(1000), Long: "version"}, // long only
//	    {}, // optional sentinel; rows after it are ignored
//	}
//
// Short forms are 7-bit visible ASCII characters other than '-'. Codes built
// with Virtual (or Char with any other byte) only identify a row and are
// never matched against what the user typed. Rows are searched in order and
// the first match wins.
//
// # Token stream
//
//	tz, err := argve.New(table, os.Args[1:])
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for tok := range tz.All() {
//	    if tok.Kind.IsError() {
//	        tz.WriteError(os.Stderr, "error: ")
//	        os.Exit(2)
//	    }
//	    switch tok.Kind {
//	    case argve.Text:
//	        files = append(files, tok.Value)
//	    case argve.ShortFlag, argve.LongFlag, argve.ClusteredShortFlag:
//	        handle(tok.Index, tok.Value)
//	    }
//	}
//
// The accepted syntax is:
//   - "-a", "-abc" (a cluster of value-less flags), "-ovalue", "-o value"
//   - "--name", "--name=value", "--name value"
//   - "-", "--" and anything not starting with '-' are positional Text;
//     the tokenizer gives "--" no special meaning, the caller decides.
//
// Malformed input is reported as an error Kind rather than a failure of
// Next, so callers may stop at the first error or keep collecting them.
package argve
