// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package selftest

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/argve/pkg/argve"
	"github.com/yeetrun/argve/pkg/codecutil"
	"github.com/yeetrun/argve/pkg/optfile"
	"github.com/yeetrun/argve/pkg/sfc64"
)

func TestFuzz(t *testing.T) {
	rounds := 64
	if testing.Short() {
		rounds = 8
	}
	for _, workers := range []int{0, 1, 3} {
		err := Fuzz(context.Background(), FuzzConfig{Seed: 0x5eed, Rounds: rounds, Workers: workers})
		if err != nil {
			t.Errorf("Fuzz with %d workers: %v", workers, err)
		}
	}
}

func TestFuzzCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Fuzz(ctx, FuzzConfig{Seed: 1, Rounds: 10, Workers: 2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fuzz error = %v, want context.Canceled", err)
	}
}

func TestFillRound(t *testing.T) {
	args := make([]string, fuzzArgs)
	table := make([]argve.Option, fuzzOptions+1)
	buf := make([]byte, fuzzArgs*maxArgSize+fuzzOptions*maxFlagSize)
	fillRound(sfc64.New(42), buf, args, table)

	for i, a := range args {
		if len(a) >= maxArgSize || strings.IndexByte(a, 0) >= 0 {
			t.Fatalf("args[%d] = %q", i, a)
		}
	}
	if !table[fuzzOptions].IsEnd() {
		t.Errorf("last row %+v is not a sentinel", table[fuzzOptions])
	}
	for i, opt := range table[:fuzzOptions] {
		if opt.IsEnd() {
			continue
		}
		if opt.Long != "" && !argve.ValidLongName(opt.Long) {
			t.Errorf("row %d has invalid long name %q", i, opt.Long)
		}
	}

	again := make([]string, fuzzArgs)
	fillRound(sfc64.New(42), make([]byte, len(buf)), again, make([]argve.Option, fuzzOptions+1))
	if diff := cmp.Diff(args, again); diff != "" {
		t.Errorf("same seed produced different rounds (-first +second):\n%s", diff)
	}
}

func TestCheckRound(t *testing.T) {
	var tz argve.Tokenizer
	table := []argve.Option{{NeedsValue: true, Short: argve.Char('o'), Long: "out"}}
	for _, args := range [][]string{
		{},
		{"-o"},
		{"-oo", "--out", "x", "--out=", "-", "--", "---"},
	} {
		if err := checkRound(&tz, table, args); err != nil {
			t.Errorf("checkRound(%q): %v", args, err)
		}
	}

	err := checkRound(&tz, []argve.Option{{Long: "a=b"}}, []string{})
	if !errors.Is(err, ErrInvariant) {
		t.Errorf("checkRound with a bad table = %v, want ErrInvariant", err)
	}
}

func TestFillRoundMixesValueRows(t *testing.T) {
	rng := sfc64.New(7)
	args := make([]string, fuzzArgs)
	table := make([]argve.Option, fuzzOptions+1)
	buf := make([]byte, fuzzArgs*maxArgSize+fuzzOptions*maxFlagSize)
	var values, flags int
	for range 32 {
		fillRound(rng, buf, args, table)
		for _, opt := range table[:fuzzOptions] {
			switch {
			case opt.IsEnd():
			case opt.NeedsValue:
				values++
			default:
				flags++
			}
		}
	}
	if values == 0 || flags == 0 {
		t.Errorf("got %d value rows and %d flag rows, want both", values, flags)
	}
}

func TestFuzzRoundsReachEveryKind(t *testing.T) {
	rng := sfc64.New(0x5eed)
	args := make([]string, fuzzArgs)
	table := make([]argve.Option, fuzzOptions+1)
	buf := make([]byte, fuzzArgs*maxArgSize+fuzzOptions*maxFlagSize)
	seen := map[argve.Kind]int{}
	var tz argve.Tokenizer
	for round := range 1000 {
		fillRound(rng, buf, args, table)
		if err := tz.Init(table, args); err != nil {
			t.Fatalf("round %d: Init: %v", round, err)
		}
		for n := argve.MaxTokens(args); n > 0; n-- {
			k := tz.Next().Kind
			seen[k]++
			if k == argve.End {
				break
			}
		}
	}
	for k := argve.End; k < argve.ErrorInternal; k++ {
		if seen[k] == 0 {
			t.Errorf("no %v token in 1000 rounds; seen %v", k, seen)
		}
	}
	if seen[argve.ErrorInternal] != 0 {
		t.Errorf("%d ErrorInternal tokens", seen[argve.ErrorInternal])
	}
}

func TestDumpRound(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	args := []string{"-a", "", "--b=c", "\xff"}
	table := []argve.Option{
		{Short: argve.Char('a')},
		{NeedsValue: true, Short: argve.Char(0xC3), Long: "b"},
		{},
		{Long: "unreached"},
	}
	argsPath, tablePath, err := dumpRound(dir, table, args)
	if err != nil {
		t.Fatalf("dumpRound: %v", err)
	}
	name := filepath.Base(argsPath)
	if !strings.HasPrefix(name, reproPrefix) || !strings.HasSuffix(name, ".argv.zst") {
		t.Errorf("repro name = %q", name)
	}
	if want := strings.TrimSuffix(argsPath, reproSuffix) + ".toml"; tablePath != want {
		t.Errorf("table path = %q, want %q", tablePath, want)
	}
	got, err := codecutil.LoadArgs(argsPath)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if diff := cmp.Diff(args, got); diff != "" {
		t.Errorf("replayed args mismatch (-want +got):\n%s", diff)
	}
	tbl, err := optfile.Load(tablePath)
	if err != nil {
		t.Fatalf("optfile.Load: %v", err)
	}
	if diff := cmp.Diff(table[:2], tbl.Options(), cmp.Comparer(func(a, b argve.Code) bool { return a == b })); diff != "" {
		t.Errorf("replayed table mismatch (-want +got):\n%s", diff)
	}

	argsPath, tablePath, err = dumpRound(dir, []argve.Option{{}}, args)
	if err != nil || argsPath == "" || tablePath != "" {
		t.Errorf("dumpRound with an empty table = %q, %q, %v", argsPath, tablePath, err)
	}
}

func TestFuzzErrorMessage(t *testing.T) {
	e := &FuzzError{Seed: 5, Worker: 1, Round: 2, Err: ErrInvariant}
	if got, want := e.Error(), "worker 1 round 2 (seed 5): tokenizer invariant violated"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	e.Repro = "/tmp/x.argv.zst"
	if !strings.HasSuffix(e.Error(), "; argument vector saved to /tmp/x.argv.zst (empty option table)") {
		t.Errorf("Error() = %q", e.Error())
	}
	e.Table = "/tmp/x.toml"
	if !strings.HasSuffix(e.Error(), "; replay with: argve tokenize -t /tmp/x.toml --args-file /tmp/x.argv.zst") {
		t.Errorf("Error() = %q", e.Error())
	}
	if !errors.Is(e, ErrInvariant) {
		t.Error("FuzzError does not unwrap to ErrInvariant")
	}
}
