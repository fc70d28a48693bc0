// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package optfile loads argve option tables from TOML or YAML files.
//
// A table file looks like:
//
//	version = "1.0.0"
//
//	[[option]]
//	short = "o"
//	long = "output"
//	value = true
//	help = "write to FILE"
//
//	[[option]]
//	id = 256
//	long = "dry-run"
package optfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/yeetrun/argve/pkg/argve"
	"github.com/yeetrun/argve/pkg/ftdetect"
	"gopkg.in/yaml.v3"
)

// SupportedVersions is the range of table file versions this package reads.
const SupportedVersions = "^1"

var (
	ErrUnsupportedVersion = errors.New("optfile: unsupported table version")
	ErrUnknownFormat      = errors.New("optfile: unknown table format")
	ErrEmptyTable         = errors.New("optfile: table has no options")
)

// Format selects the table syntax.
type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

// Row is one [[option]] entry.
type Row struct {
	Short string `toml:"short,omitempty" yaml:"short,omitempty" json:"short,omitempty"`
	ID    int    `toml:"id,omitempty" yaml:"id,omitempty" json:"id,omitempty"`
	Long  string `toml:"long,omitempty" yaml:"long,omitempty" json:"long,omitempty"`
	Value bool   `toml:"value,omitempty" yaml:"value,omitempty" json:"value,omitempty"`
	Help  string `toml:"help,omitempty" yaml:"help,omitempty" json:"help,omitempty"`
}

type document struct {
	Version string `toml:"version" yaml:"version"`
	Option  []Row  `toml:"option" yaml:"option"`
}

// Table is a validated option table.
type Table struct {
	Version *semver.Version
	Rows    []Row

	options []argve.Option
}

// RowError reports an invalid row.
type RowError struct {
	Index int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("optfile: option %d: %v", e.Index, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Load reads the table at path. The format comes from the file extension,
// or from the content when the extension is not recognized.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ft, err := ftdetect.Detect(path, data)
	if err != nil || !ft.IsTable() {
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	format := TOML
	if ft == ftdetect.YAMLTable {
		format = YAML
	}
	t, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates a table.
func Parse(data []byte, format Format) (*Table, error) {
	var doc document
	switch format {
	case TOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
		}
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return build(doc)
}

func build(doc document) (*Table, error) {
	v, err := checkVersion(doc.Version)
	if err != nil {
		return nil, err
	}
	if len(doc.Option) == 0 {
		return nil, ErrEmptyTable
	}
	t := &Table{Version: v, Rows: doc.Option}
	t.options = make([]argve.Option, len(doc.Option))
	for i, r := range doc.Option {
		opt, err := r.option()
		if err != nil {
			return nil, &RowError{Index: i, Err: err}
		}
		t.options[i] = opt
	}
	// Reuse the tokenizer's own table validation.
	if _, err := argve.New(t.options, []string{}); err != nil {
		var te *argve.TableError
		if errors.As(err, &te) {
			return nil, &RowError{Index: te.Index, Err: fmt.Errorf("long name %q: %s", te.Long, te.Reason)}
		}
		return nil, err
	}
	return t, nil
}

func checkVersion(s string) (*semver.Version, error) {
	if s == "" {
		s = "1.0.0"
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("version %q: %w", s, err)
	}
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return nil, err
	}
	if !c.Check(v) {
		return nil, fmt.Errorf("%w: %s (want %s)", ErrUnsupportedVersion, v, SupportedVersions)
	}
	return v, nil
}

func (r Row) option() (argve.Option, error) {
	opt := argve.Option{NeedsValue: r.Value, Long: r.Long}
	switch {
	case r.Short != "" && r.ID != 0:
		return opt, errors.New("short and id are mutually exclusive")
	case len(r.Short) > 1:
		return opt, fmt.Errorf("short %q is not a single character", r.Short)
	case r.Short == "-":
		return opt, errors.New(`short "-" can never be typed`)
	case r.Short != "":
		opt.Short = argve.Char(r.Short[0])
		if opt.Short.IsVirtual() {
			return opt, fmt.Errorf("short %q is not visible ASCII", r.Short)
		}
	case r.ID != 0:
		opt.Short = argve.Virtual(r.ID)
	}
	if opt.IsEnd() {
		return opt, errors.New("needs a short or a long form")
	}
	return opt, nil
}

// Options returns the table in tokenizer form. The slice is shared.
func (t *Table) Options() []argve.Option { return t.options }

// Describe returns a one-line summary of row i, e.g. "-o, --output VALUE".
func (t *Table) Describe(i int) string {
	opt := t.options[i]
	var parts []string
	if c, ok := opt.Short.Char(); ok {
		parts = append(parts, "-"+string(c))
	}
	if opt.Long != "" {
		parts = append(parts, "--"+opt.Long)
	}
	s := strings.Join(parts, ", ")
	if opt.NeedsValue {
		s += " VALUE"
	}
	return s
}

func rowFor(opt argve.Option) Row {
	r := Row{Long: opt.Long, Value: opt.NeedsValue}
	if c, ok := opt.Short.Char(); ok {
		r.Short = string(c)
	} else if !opt.Short.IsZero() {
		r.ID = opt.Short.ID()
	}
	return r
}

// Encode writes the rows of opts before the first sentinel as a TOML table
// that Parse reads back to the same options.
func Encode(w io.Writer, opts []argve.Option) error {
	doc := document{Version: "1.0.0"}
	for _, opt := range opts {
		if opt.IsEnd() {
			break
		}
		doc.Option = append(doc.Option, rowFor(opt))
	}
	if len(doc.Option) == 0 {
		return ErrEmptyTable
	}
	return toml.NewEncoder(w).Encode(doc)
}

// Save writes opts to path in the format Encode produces.
func Save(path string, opts []argve.Option) error {
	var buf bytes.Buffer
	if err := Encode(&buf, opts); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
