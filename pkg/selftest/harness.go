// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package selftest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/yeetrun/argve/pkg/tui"
)

// Case is a named check. ID is the short identifier used on the command
// line; Name is the human readable title. Filters match either.
type Case struct {
	ID   string
	Name string
	Run  func(t *T)
}

// Suite groups cases. A Suite marked Todo is reported as not yet
// implemented after its cases run.
type Suite struct {
	ID    string
	Name  string
	Cases []Case
	Todo  bool
}

// Filter selects cases. An empty Suite matches every suite; an empty Case
// matches every case of the matched suites.
type Filter struct {
	Suite string `toml:"suite,omitempty"`
	Case  string `toml:"case,omitempty"`
}

func (f Filter) String() string {
	switch {
	case f.Case == "":
		return f.Suite + "/*"
	case f.Suite == "":
		return "*/" + f.Case
	default:
		return f.Suite + "/" + f.Case
	}
}

func (f Filter) matchSuite(s *Suite) bool {
	return f.Suite == "" || f.Suite == s.ID || f.Suite == s.Name
}

func (f Filter) matchCase(s *Suite, c *Case) bool {
	return f.matchSuite(s) && (f.Case == "" || f.Case == c.ID || f.Case == c.Name)
}

func suiteSelected(filters []Filter, s *Suite) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if f.matchSuite(s) {
			return true
		}
	}
	return false
}

func caseSelected(filters []Filter, s *Suite, c *Case) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if f.matchCase(s, c) {
			return true
		}
	}
	return false
}

// T is passed to a running case.
type T struct {
	ctx  context.Context
	data any

	failed bool
	todo   bool
	where  string
	msg    string
	logs   []string
}

// stopCase unwinds a case after Fatalf or Todo.
type stopCase struct{}

func (t *T) fail(skip int, msg string) {
	t.failed = true
	if t.msg != "" {
		return
	}
	t.msg = msg
	if _, file, line, ok := runtime.Caller(skip + 1); ok {
		t.where = fmt.Sprintf("%s#L%d", filepath.Base(file), line)
	}
}

// Errorf marks the case failed and keeps running it. Only the first failure
// is reported.
func (t *T) Errorf(format string, args ...any) {
	t.fail(1, fmt.Sprintf(format, args...))
}

// Fatalf marks the case failed and stops it.
func (t *T) Fatalf(format string, args ...any) {
	t.fail(1, fmt.Sprintf(format, args...))
	panic(stopCase{})
}

// Todo stops the case and reports it as not yet implemented. It is not
// counted in the totals.
func (t *T) Todo() {
	t.todo = true
	panic(stopCase{})
}

// Logf records a line that is printed when the case fails.
func (t *T) Logf(format string, args ...any) {
	t.logs = append(t.logs, fmt.Sprintf(format, args...))
}

// Failed reports whether the case has failed so far.
func (t *T) Failed() bool { return t.failed }

// Context is cancelled when the run is interrupted.
func (t *T) Context() context.Context { return t.ctx }

// Data returns the value passed to Runner.Run.
func (t *T) Data() any { return t.data }

func (t *T) run(fn func(*T)) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(stopCase); ok {
				return
			}
			t.failed = true
			if t.msg == "" {
				t.msg = fmt.Sprintf("panic: %v", r)
			}
		}
	}()
	fn(t)
}

// Report summarizes a run.
type Report struct {
	Total   int
	Passed  int
	Failed  int
	Todo    int
	Elapsed time.Duration
}

func (r Report) OK() bool { return r.Failed == 0 }

// Runner runs suites and prints one line per case to Out.
type Runner struct {
	Out   io.Writer
	Quiet bool
	Color bool
}

// Run executes the cases selected by filters in order. Cases not yet started
// are skipped once ctx is done.
func (r *Runner) Run(ctx context.Context, suites []Suite, filters []Filter, data any) Report {
	out := r.Out
	if out == nil {
		out = io.Discard
	}
	c := tui.Colorizer{Enabled: r.Color}
	var rep Report
	start := time.Now()
	if !r.Quiet {
		fmt.Fprintln(out, "[INFO] Tests starting...")
	}

	for si := range suites {
		s := &suites[si]
		if !suiteSelected(filters, s) {
			continue
		}
		for ci := range s.Cases {
			tc := &s.Cases[ci]
			if ctx.Err() != nil || !caseSelected(filters, s, tc) {
				continue
			}
			if !r.Quiet {
				fmt.Fprintf(out, "[TEST] %s : %s ...", s.Name, tc.Name)
			}
			t := &T{ctx: ctx, data: data}
			t.run(tc.Run)
			switch {
			case t.todo && !t.failed:
				rep.Todo++
				if !r.Quiet {
					fmt.Fprintln(out, " "+c.Yellow("TODO"))
				}
				continue
			case t.failed:
				rep.Failed++
				if !r.Quiet {
					fmt.Fprintf(out, " %s at %s %s.%s: %s\n", c.Red("FAILED"), t.where, s.ID, tc.ID, t.msg)
					for _, l := range t.logs {
						fmt.Fprintln(out, c.Dim("    "+strings.TrimRight(l, "\n")))
					}
				}
			default:
				rep.Passed++
				if !r.Quiet {
					fmt.Fprintln(out, " "+c.Green("PASSED"))
				}
			}
			rep.Total++
		}
		if s.Todo && !r.Quiet {
			fmt.Fprintf(out, "[TEST] %s -- %s ... %s\n", s.ID, s.Name, c.Yellow("TODO"))
		}
	}

	rep.Elapsed = time.Since(start)
	if !r.Quiet {
		fmt.Fprintf(out, "[INFO] Total / Passed / Failed / Todo: %d / %d / %d / %d\n", rep.Total, rep.Passed, rep.Failed, rep.Todo)
		fmt.Fprintf(out, "[INFO] Time used: %s\n", formatElapsed(rep.Elapsed))
	}
	return rep
}

func formatElapsed(d time.Duration) string {
	us := d.Microseconds()
	sec := us / 1e6
	return fmt.Sprintf("%d minutes %d.%06d seconds", sec/60, sec%60, us%1e6)
}
