// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package selftest

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSuitesPass(t *testing.T) {
	var out bytes.Buffer
	r := &Runner{Out: &out}
	rep := r.Run(context.Background(), Suites(), nil, Settings{Seed: 1, Rounds: 16, Workers: 2})
	if !rep.OK() || rep.Todo != 0 {
		t.Fatalf("Report = %+v\n%s", rep, out.String())
	}
	if rep.Total != 21 {
		t.Errorf("Total = %d, want 21", rep.Total)
	}
}

func TestSuiteIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range Suites() {
		if seen[s.ID] {
			t.Errorf("duplicate suite %q", s.ID)
		}
		seen[s.ID] = true
		for _, c := range s.Cases {
			if seen[c.ID] {
				t.Errorf("duplicate case %q", c.ID)
			}
			seen[c.ID] = true
			if !strings.HasPrefix(c.ID, s.ID+"_") {
				t.Errorf("case %q is not prefixed by its suite %q", c.ID, s.ID)
			}
		}
	}
}

func runMain(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	clearEnv(t)
	dir := t.TempDir()
	old := getwd
	getwd = func() (string, error) { return dir, nil }
	t.Cleanup(func() { getwd = old })

	var o, e bytes.Buffer
	err = Main(context.Background(), args, &o, &e, false)
	return o.String(), e.String(), err
}

func TestMainRun(t *testing.T) {
	stdout, stderr, err := runMain(t, "--seed", "11", "--rounds", "4", "-s", "options", "-c", "options_1", "-s", "fuzzing")
	if err != nil {
		t.Fatalf("Main: %v\n%s%s", err, stdout, stderr)
	}
	for _, want := range []string{
		"[INFO] SEED = 11\n",
		"[INFO] Tests starting...\n",
		"[TEST] options : -o, --option ... PASSED\n",
		"[TEST] fuzzing : fuzzing ... PASSED\n",
		"[INFO] Total / Passed / Failed / Todo: 2 / 2 / 0 / 0\n",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
	if stderr != "" {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestMainQuiet(t *testing.T) {
	stdout, _, err := runMain(t, "-q", "-c", "positional_1")
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "" {
		t.Errorf("quiet stdout = %q", stdout)
	}
}

func TestMainHelp(t *testing.T) {
	stdout, stderr, err := runMain(t, "--help")
	if err != nil {
		t.Fatal(err)
	}
	if stdout != Usage || stderr != "" {
		t.Errorf("stdout = %q, stderr = %q", stdout, stderr)
	}
}

func TestMainUsageError(t *testing.T) {
	stdout, stderr, err := runMain(t, "-s", "init", "stray")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("Main error = %v, want ErrUsage", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q", stdout)
	}
	want := Usage + "\n[ERROR] unexpected argument#3: stray\n"
	if stderr != want {
		t.Errorf("stderr = %q, want %q", stderr, want)
	}
}

func TestMainConfigError(t *testing.T) {
	_, _, err := runMain(t, "--config", "/nonexistent/argve.toml")
	if err == nil || errors.Is(err, ErrUsage) {
		t.Errorf("Main error = %v, want a config error", err)
	}
}
