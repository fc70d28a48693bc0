// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ftdetect tells option table files and argument corpus files apart.
package ftdetect

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type FileType int

const (
	Unknown FileType = iota
	TOMLTable
	YAMLTable
	Corpus
	ZstdCorpus
)

func (t FileType) String() string {
	switch t {
	case TOMLTable:
		return "toml"
	case YAMLTable:
		return "yaml"
	case Corpus:
		return "corpus"
	case ZstdCorpus:
		return "zstd corpus"
	default:
		return "unknown"
	}
}

// IsTable reports whether t is an option table format.
func (t FileType) IsTable() bool { return t == TOMLTable || t == YAMLTable }

// IsCorpus reports whether t is an argument corpus format.
func (t FileType) IsCorpus() bool { return t == Corpus || t == ZstdCorpus }

type file struct {
	path string
	bs   []byte
}

// DetectFile reads path and reports its type.
func DetectFile(path string) (FileType, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return Unknown, fmt.Errorf("failed to read file: %w", err)
	}
	return Detect(path, bs)
}

// Detect reports the type of bs; name is only used for its extension and
// may be empty.
func Detect(name string, bs []byte) (FileType, error) {
	f := &file{path: name, bs: bs}
	return f.detect()
}

func (f *file) detect() (FileType, error) {
	if f.detectZstd() {
		return ZstdCorpus, nil
	}
	if ft, ok := f.detectByName(); ok {
		return ft, nil
	}
	if f.detectCorpus() {
		return Corpus, nil
	}
	if f.detectTOML() {
		return TOMLTable, nil
	}
	if f.detectYAML() {
		return YAMLTable, nil
	}
	return Unknown, fmt.Errorf("unable to detect file type")
}

func (f *file) detectByName() (FileType, bool) {
	if f.path == "" {
		return Unknown, false
	}
	ext := strings.ToLower(filepath.Ext(f.path))
	switch ext {
	case ".toml":
		return TOMLTable, true
	case ".yml", ".yaml":
		return YAMLTable, true
	case ".argv":
		return Corpus, true
	}
	return Unknown, false
}

func (f *file) detectZstd() bool {
	bs := f.bs
	return len(bs) >= 4 && bs[0] == 0x28 && bs[1] == 0xb5 && bs[2] == 0x2f && bs[3] == 0xfd
}

// detectCorpus accepts NUL-terminated records. Text formats never hold NUL.
func (f *file) detectCorpus() bool {
	return len(f.bs) > 0 && f.bs[len(f.bs)-1] == 0
}

type optionForm struct {
	Option []map[string]any `toml:"option" yaml:"option"`
}

// detectTOML checks for an [[option]] array of tables.
func (f *file) detectTOML() bool {
	var form optionForm
	if _, err := toml.NewDecoder(bytes.NewReader(f.bs)).Decode(&form); err != nil {
		return false
	}
	return len(form.Option) > 0
}

// detectYAML checks for a top-level option sequence.
func (f *file) detectYAML() bool {
	var form optionForm
	dec := yaml.NewDecoder(bytes.NewReader(f.bs))
	if err := dec.Decode(&form); err != nil && err != io.EOF {
		return false
	}
	return len(form.Option) > 0
}
