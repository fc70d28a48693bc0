// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package selftest

import (
	"fmt"
	"strconv"

	"github.com/yeetrun/argve/pkg/argve"
)

// Usage is printed for -h and after a usage error.
const Usage = `Usage: argve selftest [options]

Synopsis:
    argve selftest -h
    argve selftest [-q] [-c <case>]...
    argve selftest [-q] [-s <suite> [-c <case>]...]...
    argve selftest [-q] [-c <case>]... [-s <suite> [-c <case>]...]...

Options:
    -h, --help            Show this help information.
    -q, --quiet           Do not output logs of operations.
    -s, --suite <name>    Only run test cases in the specific suite.
    -c, --case <name>     Only run the specific test case in the suite.
        --seed <n>        Seed for the fuzzing suite (ARGVE_SEED, SEED).
        --rounds <n>      Fuzzing rounds.
        --workers <n>     Goroutines sharing the fuzzing rounds.
        --dump <dir>      Save failing argument vectors under dir.
        --config <file>   Read settings from file instead of argve.toml.
        --no-color        Disable colored output (NO_COLOR).
`

const (
	optHelp = iota
	optQuiet
	optSuite
	optCase
	optSeed
	optRounds
	optWorkers
	optDump
	optConfig
	optNoColor
)

var flagTable = []argve.Option{
	optHelp:    {Short: argve.Char('h'), Long: "help"},
	optQuiet:   {Short: argve.Char('q'), Long: "quiet"},
	optSuite:   {NeedsValue: true, Short: argve.Char('s'), Long: "suite"},
	optCase:    {NeedsValue: true, Short: argve.Char('c'), Long: "case"},
	optSeed:    {NeedsValue: true, Short: argve.Virtual(256 + optSeed), Long: "seed"},
	optRounds:  {NeedsValue: true, Short: argve.Virtual(256 + optRounds), Long: "rounds"},
	optWorkers: {NeedsValue: true, Short: argve.Virtual(256 + optWorkers), Long: "workers"},
	optDump:    {NeedsValue: true, Short: argve.Virtual(256 + optDump), Long: "dump"},
	optConfig:  {NeedsValue: true, Short: argve.Virtual(256 + optConfig), Long: "config"},
	optNoColor: {Short: argve.Virtual(256 + optNoColor), Long: "no-color"},
}

// Options are the harness command line settings. Zero numeric fields and a
// nil Seed mean "not given".
type Options struct {
	Help    bool
	Quiet   bool
	Filters []Filter
	Seed    *uint64
	Rounds  int
	Workers int
	DumpDir string
	Config  string
	NoColor bool
}

// UsageError is a command line error. The caller prints Usage with it.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// ParseArgs parses the harness flags.
//
// Each -s starts a new suite scope; the -c flags that follow it select cases
// of that suite, and a -s followed by no -c selects the whole suite. A -c
// outside any scope matches the case in every suite. Any other flag closes
// the current scope. A single "--" is accepted and ignored; any other
// positional argument is an error.
func ParseArgs(args []string) (Options, error) {
	var opts Options
	tz, err := argve.New(flagTable, args)
	if err != nil {
		return opts, err
	}

	var (
		scope    string
		inScope  bool
		hasCases bool
		dashdash bool
	)
	closeScope := func() {
		if inScope && !hasCases {
			opts.Filters = append(opts.Filters, Filter{Suite: scope})
		}
		scope, inScope, hasCases = "", false, false
	}

	for tok := range tz.All() {
		if tok.Kind.IsError() {
			return Options{}, &UsageError{Err: tz.Err()}
		}
		if tok.Kind == argve.Text {
			if dashdash || tok.Value != "--" {
				return Options{}, &UsageError{Err: fmt.Errorf("unexpected argument#%d: %s", tok.ArgIndex+1, tok.Value)}
			}
			dashdash = true
			closeScope()
			continue
		}

		switch tok.Index {
		case optHelp:
			return Options{Help: true}, nil
		case optSuite:
			closeScope()
			scope, inScope = tok.Value, true
			continue
		case optCase:
			f := Filter{Case: tok.Value}
			if inScope {
				f.Suite = scope
				hasCases = true
			}
			opts.Filters = append(opts.Filters, f)
			continue
		case optQuiet:
			opts.Quiet = true
		case optSeed:
			n, err := strconv.ParseUint(tok.Value, 10, 64)
			if err != nil {
				return Options{}, &UsageError{Err: fmt.Errorf("invalid value for --seed: %q", tok.Value)}
			}
			opts.Seed = &n
		case optRounds:
			if opts.Rounds, err = positive("--rounds", tok.Value); err != nil {
				return Options{}, err
			}
		case optWorkers:
			if opts.Workers, err = positive("--workers", tok.Value); err != nil {
				return Options{}, err
			}
		case optDump:
			opts.DumpDir = tok.Value
		case optConfig:
			opts.Config = tok.Value
		case optNoColor:
			opts.NoColor = true
		}
		closeScope()
	}
	closeScope()
	return opts, nil
}

func positive(flag, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, &UsageError{Err: fmt.Errorf("invalid value for %s: %q", flag, v)}
	}
	return n, nil
}
