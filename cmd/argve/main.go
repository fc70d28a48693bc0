// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command argve shows how option tables tokenize command lines.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shayne/yargs"
	"github.com/yeetrun/argve/pkg/cli"
	"github.com/yeetrun/argve/pkg/selftest"
	"github.com/yeetrun/argve/pkg/tui"
	"golang.org/x/term"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	isTerminalFn = term.IsTerminal

	// argv is everything after the first "--" on the command line.
	argv      []string
	argvGiven bool
	colors    tui.Colorizer
)

type globalFlagsParsed struct {
	NoColor bool `flag:"no-color" help:"Disable colored output (NO_COLOR)"`
}

func parseGlobalFlags(args []string) (globalFlagsParsed, []string, error) {
	result, err := yargs.ParseKnownFlags[globalFlagsParsed](args, yargs.KnownFlagsOptions{})
	if err != nil {
		return globalFlagsParsed{}, nil, err
	}
	return result.Flags, result.RemainingArgs, nil
}

// exitError is returned by handlers that already reported the failure.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }

func (e exitError) Unwrap() error { return e.err }

func main() {
	log.SetFlags(0)
	log.SetPrefix("argve: ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	cmdArgs, rest, given := cli.SplitArgv(args)
	globalFlags, remaining, err := parseGlobalFlags(cmdArgs)
	if err != nil {
		printCLIError(stderr, err)
		return 2
	}
	argv, argvGiven = rest, given
	colors = tui.NewColorizer(!globalFlags.NoColor && isTerminal(stdout))

	handlers := map[string]yargs.SubcommandHandler{
		cli.CommandTokenize: handleTokenize,
		cli.CommandCheck:    handleCheck,
		cli.CommandSelftest: handleSelftest,
	}
	err = yargs.RunSubcommands(ctx, remaining, cli.HelpConfig(), globalFlagsParsed{}, handlers)
	if err == nil {
		return 0
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	printCLIError(stderr, err)
	return 1
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminalFn(int(f.Fd()))
}

func printCLIError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %v\n", colors.Red("Error:"), err)
}

func handleSelftest(ctx context.Context, args []string) error {
	hargs := cli.SelftestArgs(args)
	if argvGiven {
		hargs = append(append(hargs, "--"), argv...)
	}
	err := selftest.Main(ctx, hargs, stdout, stderr, colors.Enabled)
	switch {
	case errors.Is(err, selftest.ErrUsage):
		return exitError{code: 2, err: err}
	case errors.Is(err, selftest.ErrTestsFailed):
		return exitError{code: 1, err: err}
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
