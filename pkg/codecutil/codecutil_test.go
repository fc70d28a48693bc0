// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codecutil

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteArgs(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteArgs(&buf, []string{"-o", "", "--x=y z"}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "-o\x00\x00--x=y z\x00"; got != want {
		t.Fatalf("WriteArgs wrote %q, want %q", got, want)
	}

	err := WriteArgs(&buf, []string{"ok", "a\x00b"})
	if !errors.Is(err, ErrNulInArgument) || !strings.Contains(err.Error(), "argument 1") {
		t.Fatalf("WriteArgs error = %v, want ErrNulInArgument for argument 1", err)
	}
}

func TestReadArgs(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr error
	}{
		{"empty", "", []string{}, nil},
		{"single empty argument", "\x00", []string{""}, nil},
		{"several", "-abc\x00--\x00\xff\x00", []string{"-abc", "--", "\xff"}, nil},
		{"truncated", "-a\x00-b", nil, ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadArgs(strings.NewReader(tt.in))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReadArgs error = %v, want %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("ReadArgs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSaveLoadArgs(t *testing.T) {
	args := []string{"-o", "--option=value", "", "- ", "\x01\x7f\xfe", strings.Repeat("x", 4096)}
	for _, name := range []string{"corpus.argv", "corpus.argv.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := SaveArgs(path, args); err != nil {
				t.Fatalf("SaveArgs error: %v", err)
			}
			got, err := LoadArgs(path)
			if err != nil {
				t.Fatalf("LoadArgs error: %v", err)
			}
			if diff := cmp.Diff(args, got); diff != "" {
				t.Fatalf("LoadArgs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSaveArgsCompresses(t *testing.T) {
	dir := t.TempDir()
	args := []string{strings.Repeat("--verbose", 1000)}
	plain := filepath.Join(dir, "a.argv")
	packed := filepath.Join(dir, "a.argv.zst")
	if err := SaveArgs(plain, args); err != nil {
		t.Fatal(err)
	}
	if err := SaveArgs(packed, args); err != nil {
		t.Fatal(err)
	}
	ps, err := os.Stat(plain)
	if err != nil {
		t.Fatal(err)
	}
	zs, err := os.Stat(packed)
	if err != nil {
		t.Fatal(err)
	}
	if zs.Size() >= ps.Size() {
		t.Fatalf("compressed size %d >= plain size %d", zs.Size(), ps.Size())
	}
}

func TestLoadArgsErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadArgs(filepath.Join(dir, "missing.zst")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("LoadArgs(missing) error = %v, want ErrNotExist", err)
	}
	bad := filepath.Join(dir, "bad.zst")
	if err := os.WriteFile(bad, []byte("not zstd"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadArgs(bad); err == nil {
		t.Fatalf("LoadArgs(bad) succeeded, want error")
	}
}
