// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package selftest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/yeetrun/argve/pkg/argve"
	"github.com/yeetrun/argve/pkg/codecutil"
	"github.com/yeetrun/argve/pkg/optfile"
	"github.com/yeetrun/argve/pkg/sfc64"
	"golang.org/x/sync/errgroup"
)

const (
	fuzzArgs     = 255
	fuzzOptions  = 255
	maxArgSize   = 256
	maxFlagSize  = 32
	reproPrefix  = "argve-repro-"
	reproSuffix  = ".argv" + codecutil.Ext
	tableSuffix  = ".toml"
	fuzzingSuite = "fuzzing"
)

// ErrInvariant is wrapped by every fuzzing failure.
var ErrInvariant = errors.New("tokenizer invariant violated")

// FuzzConfig drives Fuzz.
type FuzzConfig struct {
	Seed    uint64
	Rounds  int
	Workers int
	// DumpDir receives the argument vector and option table of a failing
	// round. Empty disables dumping.
	DumpDir string
}

// FuzzError reports the first failing round.
type FuzzError struct {
	Seed   uint64 // seed of the failing worker
	Worker int
	Round  int
	Repro  string // saved argument vector, if any
	Table  string // saved option table, if any
	Err    error
}

func (e *FuzzError) Error() string {
	msg := fmt.Sprintf("worker %d round %d (seed %d): %v", e.Worker, e.Round, e.Seed, e.Err)
	switch {
	case e.Repro != "" && e.Table != "":
		msg += fmt.Sprintf("; replay with: argve tokenize -t %s --args-file %s", e.Table, e.Repro)
	case e.Repro != "":
		msg += "; argument vector saved to " + e.Repro + " (empty option table)"
	}
	return msg
}

func (e *FuzzError) Unwrap() error { return e.Err }

// Fuzz runs cfg.Rounds random rounds split across cfg.Workers goroutines.
// Worker w draws from its own generator seeded with cfg.Seed+w, so a run is
// reproducible for a given seed and worker count.
func Fuzz(ctx context.Context, cfg FuzzConfig) error {
	workers := max(cfg.Workers, 1)
	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		rounds := cfg.Rounds / workers
		if w < cfg.Rounds%workers {
			rounds++
		}
		seed := cfg.Seed + uint64(w)
		g.Go(func() error {
			return fuzzWorker(ctx, cfg.DumpDir, seed, w, rounds)
		})
	}
	return g.Wait()
}

func fuzzWorker(ctx context.Context, dumpDir string, seed uint64, worker, rounds int) error {
	rng := sfc64.New(seed)
	args := make([]string, fuzzArgs)
	table := make([]argve.Option, fuzzOptions+1)
	buf := make([]byte, fuzzArgs*maxArgSize+fuzzOptions*maxFlagSize)
	var tz argve.Tokenizer
	for round := range rounds {
		if err := ctx.Err(); err != nil {
			return err
		}
		fillRound(rng, buf, args, table)
		if err := checkRound(&tz, table, args); err != nil {
			fe := &FuzzError{Seed: seed, Worker: worker, Round: round, Err: err}
			if dumpDir != "" {
				argsPath, tablePath, derr := dumpRound(dumpDir, table, args)
				if derr != nil {
					return errors.Join(fe, derr)
				}
				fe.Repro, fe.Table = argsPath, tablePath
			}
			return fe
		}
	}
	return nil
}

// fillRound generates one round. Strings end at their first NUL byte, and an
// empty option string produces a sentinel row that ends the table early.
// One round in four gives every row a value and the others mix value and
// flag rows. Some arguments are built from the table's own names so that
// clusters and long flags match.
func fillRound(rng *sfc64.Source, buf []byte, args []string, table []argve.Option) {
	rng.Bytes(buf)
	cut := func(n int) string {
		s := buf[:n]
		buf = buf[n:]
		if i := bytes.IndexByte(s, 0); i >= 0 {
			s = s[:i]
		}
		return string(s)
	}
	allValues := rng.Intn(4) == 0
	for i := range fuzzOptions {
		s := cut(rng.Intn(maxFlagSize))
		opt := argve.Option{NeedsValue: allValues || rng.Intn(2) == 0}
		if s != "" {
			opt.Short = argve.Char(s[0])
		}
		if argve.ValidLongName(s) {
			opt.Long = s
		}
		table[i] = opt
	}
	table[fuzzOptions] = argve.Option{}

	var shorts []byte
	var longs []string
	for _, opt := range table {
		if opt.IsEnd() {
			break
		}
		if c, ok := opt.Short.Char(); ok {
			shorts = append(shorts, c)
		}
		if opt.Long != "" {
			longs = append(longs, opt.Long)
		}
	}
	for i := range args {
		switch k := rng.Intn(8); {
		case k == 0:
			args[i] = "-" + cut(rng.Intn(maxFlagSize))
		case k == 1:
			args[i] = "--" + cut(rng.Intn(maxFlagSize))
		case (k == 2 || k == 3) && len(shorts) > 0:
			b := []byte{'-'}
			for range 1 + rng.Intn(4) {
				b = append(b, shorts[rng.Intn(len(shorts))])
			}
			if rng.Intn(2) == 0 {
				b = append(b, cut(rng.Intn(8))...)
			}
			args[i] = string(b)
		case k == 4 && len(longs) > 0:
			args[i] = "--" + longs[rng.Intn(len(longs))]
			if rng.Intn(2) == 0 {
				args[i] += "=" + cut(rng.Intn(8))
			}
		default:
			args[i] = cut(rng.Intn(maxArgSize))
		}
	}
}

func checkRound(tz *argve.Tokenizer, table []argve.Option, args []string) error {
	if err := tz.Init(table, args); err != nil {
		return fmt.Errorf("%w: init: %v", ErrInvariant, err)
	}
	limit := argve.MaxTokens(args)
	last := 0
	for n := 0; n < limit; n++ {
		tok := tz.Next()
		switch {
		case tok.Kind == argve.ErrorInternal:
			return fmt.Errorf("%w: call %d returned %v", ErrInvariant, n, tok.Kind)
		case tok.Consumed < last:
			return fmt.Errorf("%w: call %d consumed %d after %d", ErrInvariant, n, tok.Consumed, last)
		case tok.Consumed+tok.Remaining != len(args):
			return fmt.Errorf("%w: call %d consumed %d with %d remaining of %d", ErrInvariant, n, tok.Consumed, tok.Remaining, len(args))
		}
		last = tok.Consumed
		if tok.Kind != argve.End {
			continue
		}
		if tok.Option != nil || tok.Arg != "" || tok.Name != "" || tok.HasValue || tok.Remaining != 0 {
			return fmt.Errorf("%w: state not reset at End: %+v", ErrInvariant, tok)
		}
		if again := tz.Next(); again.Kind != argve.End {
			return fmt.Errorf("%w: %v after End", ErrInvariant, again.Kind)
		}
		return nil
	}
	return fmt.Errorf("%w: no End after %d calls", ErrInvariant, limit)
}

// dumpRound saves args and the active part of table under dir with a shared
// name. tablePath is empty when the table has no rows.
func dumpRound(dir string, table []argve.Option, args []string) (argsPath, tablePath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	base := filepath.Join(dir, reproPrefix+uuid.NewString())
	argsPath = base + reproSuffix
	if err := codecutil.SaveArgs(argsPath, args); err != nil {
		return "", "", err
	}
	switch err := optfile.Save(base+tableSuffix, table); {
	case errors.Is(err, optfile.ErrEmptyTable):
		return argsPath, "", nil
	case err != nil:
		return argsPath, "", err
	}
	return argsPath, base + tableSuffix, nil
}

func fuzzCase(t *T) {
	s, ok := t.Data().(Settings)
	if !ok {
		s = Settings{Seed: clockSeed(), Rounds: DefaultRounds, Workers: 1}
	}
	t.Logf("seed=%d rounds=%d workers=%d", s.Seed, s.Rounds, s.Workers)
	err := Fuzz(t.Context(), FuzzConfig{
		Seed:    s.Seed,
		Rounds:  s.Rounds,
		Workers: s.Workers,
		DumpDir: s.DumpDir,
	})
	if err != nil {
		t.Fatalf("%v", err)
	}
}
