// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package selftest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// ConfigName is the settings file looked up from the working directory
	// upwards.
	ConfigName = "argve.toml"

	DefaultRounds = 1000
)

// Config is the on-disk form of the harness settings.
type Config struct {
	Seed    *uint64  `toml:"seed,omitempty"`
	Rounds  int      `toml:"rounds,omitempty"`
	Workers int      `toml:"workers,omitempty"`
	DumpDir string   `toml:"dump_dir,omitempty"`
	Color   *bool    `toml:"color,omitempty"`
	Filter  []Filter `toml:"filter,omitempty"`
}

// Settings are the effective harness settings after merging defaults, the
// config file, the environment and the command line, in that order.
type Settings struct {
	Seed       uint64
	Rounds     int
	Workers    int
	DumpDir    string
	Color      bool
	Quiet      bool
	Filters    []Filter
	ConfigPath string
}

var timeNow = time.Now

// clockSeed mixes the seconds and microseconds of the current time.
func clockSeed() uint64 {
	now := timeNow()
	return uint64(now.Unix()) ^ uint64(now.Nanosecond()/1000)<<32
}

// LoadConfig decodes the config file at path.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if cfg.Rounds < 0 || cfg.Workers < 0 {
		return nil, fmt.Errorf("%s: rounds and workers must not be negative", path)
	}
	for i, f := range cfg.Filter {
		if f.Suite == "" && f.Case == "" {
			return nil, fmt.Errorf("%s: filter %d selects nothing", path, i)
		}
	}
	return &cfg, nil
}

func findConfigPath(startDir string) (string, error) {
	dir := filepath.Clean(startDir)
	for {
		path := filepath.Join(dir, ConfigName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// Resolve merges opts with the config file and the environment. dir is where
// the upward search for ConfigName starts; color is the caller's default.
func Resolve(opts Options, dir string, color bool) (Settings, error) {
	s := Settings{
		Seed:    clockSeed(),
		Rounds:  DefaultRounds,
		Workers: runtime.GOMAXPROCS(0),
		Color:   color,
	}

	path := opts.Config
	if path == "" {
		found, err := findConfigPath(dir)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return s, err
		}
		path = found
	}
	if path != "" {
		cfg, err := LoadConfig(path)
		if err != nil {
			return s, err
		}
		s.ConfigPath = path
		if cfg.Seed != nil {
			s.Seed = *cfg.Seed
		}
		if cfg.Rounds > 0 {
			s.Rounds = cfg.Rounds
		}
		if cfg.Workers > 0 {
			s.Workers = cfg.Workers
		}
		if cfg.DumpDir != "" {
			s.DumpDir = cfg.DumpDir
			if !filepath.IsAbs(s.DumpDir) {
				s.DumpDir = filepath.Join(filepath.Dir(path), s.DumpDir)
			}
		}
		if cfg.Color != nil {
			s.Color = s.Color && *cfg.Color
		}
		s.Filters = cfg.Filter
	}

	for _, key := range []string{"ARGVE_SEED", "SEED"} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return s, fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		s.Seed = n
		break
	}
	if os.Getenv("NO_COLOR") != "" {
		s.Color = false
	}

	if opts.Seed != nil {
		s.Seed = *opts.Seed
	}
	if opts.Rounds > 0 {
		s.Rounds = opts.Rounds
	}
	if opts.Workers > 0 {
		s.Workers = opts.Workers
	}
	if opts.DumpDir != "" {
		s.DumpDir = opts.DumpDir
	}
	if opts.NoColor {
		s.Color = false
	}
	if len(opts.Filters) > 0 {
		s.Filters = opts.Filters
	}
	s.Quiet = opts.Quiet
	if s.Workers > s.Rounds {
		s.Workers = s.Rounds
	}
	return s, nil
}
