// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/creack/pty"
	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/argve/pkg/codecutil"
)

const greet = "testdata/greet.toml"

func runArgve(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	for _, k := range []string{"ARGVE_SEED", "SEED"} {
		t.Setenv(k, "")
	}
	var o, e bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &o, &e
	log.SetOutput(&e)
	t.Cleanup(func() {
		stdout, stderr = oldOut, oldErr
		log.SetOutput(os.Stderr)
		argv, argvGiven = nil, false
	})
	code := run(context.Background(), args)
	return o.String(), e.String(), code
}

func strPtr(s string) *string { return &s }

func TestTokenizeTable(t *testing.T) {
	out, errOut, code := runArgve(t, "tokenize", "--table", greet, "--", "-vn", "world", "--shout", "file.txt", "-x")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1\n%s%s", code, out, errOut)
	}
	for _, want := range []string{
		"ARG  KIND",
		"ClusteredShortFlag",
		`"world"`,
		"-s, --shout",
		"!ErrorUnrecognizedShort",
		"[ERROR] unrecognized option -x : -x\n",
		"5 tokens, 1 errors\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	if errOut != "" {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestTokenizeJSON(t *testing.T) {
	out, errOut, code := runArgve(t, "tokenize", "-t", greet, "--format=json", "--", "-vn", "world", "--name=", "--", "--version")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0\n%s%s", code, out, errOut)
	}
	var got tokenizeResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	want := tokenizeResult{
		Table: greet,
		Args:  []string{"-vn", "world", "--name=", "--", "--version"},
		Tokens: []tokenRecord{
			{Kind: "ClusteredShortFlag", Row: 2, Option: "-v, --verbose", Arg: 0, Name: "v", Consumed: 1},
			{Kind: "ClusteredShortFlag", Row: 0, Option: "-n, --name VALUE", Arg: 0, Name: "n", Value: strPtr("world"), Consumed: 2},
			{Kind: "LongFlag", Row: 0, Option: "-n, --name VALUE", Arg: 2, Name: "name", Value: strPtr(""), Consumed: 3},
			{Kind: "Text", Row: -1, Arg: 3, Value: strPtr("--"), Consumed: 4},
			{Kind: "LongFlag", Row: 3, Option: "--version", Arg: 4, Name: "version", Consumed: 5},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokenize JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeStopOnError(t *testing.T) {
	out, _, code := runArgve(t, "tokenize", "-t", greet, "-f", "json", "--stop-on-error", "--", "--nope", "a", "-x")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	var got tokenizeResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Tokens) != 1 || got.Errors != 1 {
		t.Fatalf("tokens = %+v, errors = %d", got.Tokens, got.Errors)
	}
	if got.Tokens[0].Error != "unrecognized option --nope : --nope" {
		t.Errorf("error = %q", got.Tokens[0].Error)
	}
	if diff := cmp.Diff([]string{"a", "-x"}, got.Remaining); diff != "" {
		t.Errorf("remaining mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeArgsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repro.argv"+codecutil.Ext)
	if err := codecutil.SaveArgs(path, []string{"--shout", ""}); err != nil {
		t.Fatal(err)
	}
	out, errOut, code := runArgve(t, "tokenize", "-t", greet, "-f", "json", "--args-file", path, "--", "-s")
	if code != 0 {
		t.Fatalf("exit code = %d\n%s%s", code, out, errOut)
	}
	var got tokenizeResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"-s", "--shout", ""}, got.Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	if len(got.Tokens) != 3 {
		t.Errorf("got %d tokens, want 3", len(got.Tokens))
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no table", []string{"tokenize", "--", "-v"}, "Error: --table is required"},
		{"positional", []string{"tokenize", "-t", greet, "stray"}, "takes no positional arguments, got stray"},
		{"missing table", []string{"tokenize", "-t", "testdata/nope.toml"}, "no such file"},
		{"args file is a table", []string{"tokenize", "-t", greet, "--args-file", greet}, "expected an argument vector file"},
		{"unknown command", []string{"bogus"}, "unknown command: bogus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, code := runArgve(t, tt.args...)
			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr = %q, want it to contain %q", errOut, tt.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	out, errOut, code := runArgve(t, "check", "--table", greet)
	if code != 0 {
		t.Fatalf("exit code = %d\n%s", code, errOut)
	}
	for _, want := range []string{
		"testdata/greet.toml: version 1.2.0, 4 options\n",
		"ROW  CODE  USAGE",
		"-n, --name VALUE",
		"#256",
		"print the version and exit",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
}

func TestCheckJSONShadowed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.yaml")
	body := "option:\n  - {short: o, long: out, value: true}\n  - {short: o}\n  - {long: out, help: never matches}\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, code := runArgve(t, "check", "-t", path, "--format", "json")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	var got checkResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	want := checkResult{
		Table:   path,
		Version: "1.0.0",
		Rows: []rowRecord{
			{Row: 0, Code: "-o", Usage: "-o, --out VALUE", Value: true},
			{Row: 1, Code: "-o", Usage: "-o"},
			{Row: 2, Code: "none", Usage: "--out", Help: "never matches"},
		},
		Shadowed: []string{
			"option 1: -o is shadowed by option 0",
			"option 2: --out is shadowed by option 0",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("check JSON mismatch (-want +got):\n%s", diff)
	}

	_, errOut, _ := runArgve(t, "check", "-t", path)
	if !strings.Contains(errOut, "warning: option 1: -o is shadowed by option 0") {
		t.Errorf("stderr = %q, want a shadowing warning", errOut)
	}
}

func TestCheckInvalidTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[[option]]\nshort = \"o\"\n\n[[option]]\nlong = \"out=file\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, errOut, code := runArgve(t, "check", "-t", path)
	if code != 1 || !strings.Contains(errOut, "option 1") {
		t.Errorf("code = %d, stderr = %q", code, errOut)
	}
}

func TestSelftest(t *testing.T) {
	out, errOut, code := runArgve(t, "selftest", "-s", "options", "-s", "dashes")
	if code != 0 {
		t.Fatalf("exit code = %d\n%s%s", code, out, errOut)
	}
	if !strings.Contains(out, "Total / Passed / Failed / Todo: 11 / 11 / 0 / 0") {
		t.Errorf("stdout = %s", out)
	}
}

func TestSelftestUsageError(t *testing.T) {
	_, errOut, code := runArgve(t, "selftest", "-q", "--", "x")
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(errOut, "[ERROR] unexpected argument#3: x") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestIsTerminal(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty.Open: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	if !isTerminal(tty) {
		t.Error("isTerminal(pty) = false")
	}
	if isTerminal(&bytes.Buffer{}) {
		t.Error("isTerminal(buffer) = true")
	}
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if isTerminal(f) {
		t.Error("isTerminal(regular file) = true")
	}
}
