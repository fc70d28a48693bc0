// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package codecutil reads and writes argument vectors as corpus files.
//
// A corpus file is a sequence of records, each an argument followed by a NUL
// byte. Arguments containing NUL cannot be stored. Files whose name ends in
// ".zst" are zstd-compressed.
package codecutil

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Ext is the extension of a compressed corpus file.
const Ext = ".zst"

var (
	// ErrNulInArgument is returned when an argument cannot be encoded.
	ErrNulInArgument = errors.New("codecutil: argument contains NUL")
	// ErrTruncated is returned when the input ends inside a record.
	ErrTruncated = errors.New("codecutil: truncated record")
)

// WriteArgs writes args to w as NUL-terminated records.
func WriteArgs(w io.Writer, args []string) error {
	bw := bufio.NewWriter(w)
	for i, a := range args {
		if strings.IndexByte(a, 0) >= 0 {
			return fmt.Errorf("argument %d: %w", i, ErrNulInArgument)
		}
		if _, err := bw.WriteString(a); err != nil {
			return err
		}
		if err := bw.WriteByte(0); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadArgs reads NUL-terminated records from r until EOF. The result is
// never nil.
func ReadArgs(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	args := []string{}
	for len(data) > 0 {
		i := bytes.IndexByte(data, 0)
		if i < 0 {
			return nil, fmt.Errorf("argument %d: %w", len(args), ErrTruncated)
		}
		args = append(args, string(data[:i]))
		data = data[i+1:]
	}
	return args, nil
}

// SaveArgs writes args to path, compressing when path ends in Ext.
func SaveArgs(path string, args []string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create corpus file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if filepath.Ext(path) != Ext {
		return WriteArgs(f, args)
	}
	encoder, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	if err := WriteArgs(encoder, args); err != nil {
		encoder.Close()
		return err
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to compress corpus: %w", err)
	}
	return nil
}

// LoadArgs reads the argument vector stored at path.
func LoadArgs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer f.Close()

	if filepath.Ext(path) != Ext {
		return ReadArgs(f)
	}
	decoder, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer decoder.Close()
	args, err := ReadArgs(decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress corpus: %w", err)
	}
	return args, nil
}
