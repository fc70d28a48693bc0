// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package selftest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/yeetrun/argve/pkg/tui"
)

var (
	// ErrTestsFailed is returned by Main when at least one case failed.
	ErrTestsFailed = errors.New("tests failed")
	// ErrUsage is returned by Main after it printed a usage error.
	ErrUsage = errors.New("usage error")
)

var getwd = os.Getwd

// Main runs the harness with the command line args (without the program
// name). color is the default for colored output, usually whether stdout is
// a terminal.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer, color bool) error {
	opts, err := ParseArgs(args)
	if err != nil {
		var ue *UsageError
		if !errors.As(err, &ue) {
			return err
		}
		c := tui.NewColorizer(color && !opts.NoColor)
		fmt.Fprint(stderr, Usage)
		fmt.Fprintf(stderr, "\n%s %v\n", c.Red("[ERROR]"), ue)
		return ErrUsage
	}
	if opts.Help {
		fmt.Fprint(stdout, Usage)
		return nil
	}

	dir, err := getwd()
	if err != nil {
		return err
	}
	s, err := Resolve(opts, dir, color)
	if err != nil {
		return err
	}
	if !s.Quiet {
		if s.ConfigPath != "" {
			fmt.Fprintf(stdout, "[INFO] CONFIG = %s\n", s.ConfigPath)
		}
		fmt.Fprintf(stdout, "[INFO] SEED = %d\n", s.Seed)
	}

	r := &Runner{Out: stdout, Quiet: s.Quiet, Color: s.Color}
	rep := r.Run(ctx, Suites(), s.Filters, s)
	if err := ctx.Err(); err != nil {
		return err
	}
	if !rep.OK() {
		return fmt.Errorf("%w: %d of %d", ErrTestsFailed, rep.Failed, rep.Total)
	}
	return nil
}
