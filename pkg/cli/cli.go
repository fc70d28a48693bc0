// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shayne/yargs"
)

type CommandInfo struct {
	Name        string
	Description string
	Usage       string
	Examples    []string
	Hidden      bool
	Aliases     []string
}

const (
	CommandTokenize = "tokenize"
	CommandCheck    = "check"
	CommandSelftest = "selftest"
)

// Output formats accepted by --format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

var ErrNoTable = errors.New("--table is required")

var commandInfos = map[string]CommandInfo{
	CommandTokenize: {
		Name:        CommandTokenize,
		Description: "Tokenize an argument vector against an option table",
		Usage:       "--table FILE [--format=table|json] [--args-file FILE] [--stop-on-error] -- ARGS...",
		Examples: []string{
			"argve tokenize --table greet.toml -- -vn world --shout file.txt",
			"argve tokenize -t greet.yaml --format=json -- --name=",
			"argve tokenize -t greet.toml --args-file argve-repro-1234.argv.zst",
		},
		Aliases: []string{"tok"},
	},
	CommandCheck: {
		Name:        CommandCheck,
		Description: "Validate an option table and list its rows",
		Usage:       "--table FILE [--format=table|json]",
		Examples:    []string{"argve check --table greet.toml"},
	},
	CommandSelftest: {
		Name:        CommandSelftest,
		Description: "Run the built-in tokenizer conformance suites and fuzzer",
		Usage:       "[-q] [-s SUITE [-c CASE]...]... [--seed N] [--rounds N] [--workers N] [--dump DIR]",
		Examples: []string{
			"argve selftest",
			"argve selftest -s options -c options_5 -s dashes",
			"argve selftest -s fuzzing --seed 42 --rounds 100000 --dump ./repro",
		},
		Aliases: []string{"test"},
	},
}

func CommandNames() []string {
	names := make([]string, 0, len(commandInfos))
	for name := range commandInfos {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func CommandInfos() map[string]CommandInfo {
	return commandInfos
}

func HelpConfig() yargs.HelpConfig {
	subcommands := make(map[string]yargs.SubCommandInfo, len(commandInfos))
	for name, info := range commandInfos {
		subcommands[name] = toSubCommandInfo(name, info)
	}
	return yargs.HelpConfig{
		Command: yargs.CommandInfo{
			Name:        "argve",
			Description: "Inspect how option tables tokenize command lines; everything after the first -- is the argument vector.",
			Examples: []string{
				"argve check --table greet.toml",
				"argve tokenize --table greet.toml -- -vn world file.txt",
				"argve selftest -q",
			},
		},
		SubCommands: subcommands,
	}
}

func toSubCommandInfo(name string, info CommandInfo) yargs.SubCommandInfo {
	return yargs.SubCommandInfo{
		Name:        name,
		Description: info.Description,
		Usage:       info.Usage,
		Examples:    info.Examples,
		Hidden:      info.Hidden,
		Aliases:     info.Aliases,
	}
}

type TokenizeFlags struct {
	Table       string
	Format      string
	ArgsFile    string
	StopOnError bool
}

type CheckFlags struct {
	Table  string
	Format string
}

type tokenizeFlagsParsed struct {
	Table       string `flag:"table" short:"t" help:"Option table file (TOML or YAML)"`
	Format      string `flag:"format" short:"f" default:"table" help:"Output format: table or json"`
	ArgsFile    string `flag:"args-file" help:"Append the argument vector stored in a corpus file"`
	StopOnError bool   `flag:"stop-on-error" help:"Stop at the first error token"`
}

type checkFlagsParsed struct {
	Table  string `flag:"table" short:"t" help:"Option table file (TOML or YAML)"`
	Format string `flag:"format" short:"f" default:"table" help:"Output format: table or json"`
}

// ParseTokenize parses the tokenize flags. args must not contain the
// argument vector; see SplitArgv.
func ParseTokenize(args []string) (TokenizeFlags, []string, error) {
	parsed, err := parseFlags[tokenizeFlagsParsed](stripCommand(CommandTokenize, args))
	if err != nil {
		return TokenizeFlags{}, nil, err
	}
	flags := TokenizeFlags{
		Table:       parsed.Flags.Table,
		Format:      parsed.Flags.Format,
		ArgsFile:    parsed.Flags.ArgsFile,
		StopOnError: parsed.Flags.StopOnError,
	}
	if err := checkTableAndFormat(flags.Table, flags.Format); err != nil {
		return TokenizeFlags{}, nil, err
	}
	return flags, parsed.Args, nil
}

func ParseCheck(args []string) (CheckFlags, []string, error) {
	parsed, err := parseFlags[checkFlagsParsed](stripCommand(CommandCheck, args))
	if err != nil {
		return CheckFlags{}, nil, err
	}
	flags := CheckFlags{Table: parsed.Flags.Table, Format: parsed.Flags.Format}
	if err := checkTableAndFormat(flags.Table, flags.Format); err != nil {
		return CheckFlags{}, nil, err
	}
	return flags, parsed.Args, nil
}

// SelftestArgs returns the harness flags from a selftest invocation. They
// are parsed by the harness itself.
func SelftestArgs(args []string) []string {
	return stripCommand(CommandSelftest, args)
}

func checkTableAndFormat(table, format string) error {
	if table == "" {
		return ErrNoTable
	}
	switch format {
	case FormatTable, FormatJSON:
		return nil
	}
	return fmt.Errorf("invalid --format %q (want %s or %s)", format, FormatTable, FormatJSON)
}

// stripCommand drops the subcommand name (or one of its aliases) that yargs
// leaves at the front of a handler's args.
func stripCommand(name string, args []string) []string {
	if len(args) == 0 {
		return args
	}
	if args[0] == name || slices.Contains(commandInfos[name].Aliases, args[0]) {
		return args[1:]
	}
	return args
}

type parsedFlags[T any] struct {
	Flags  T
	Args   []string
	Parser *yargs.Parser
}

func parseFlags[T any](args []string) (parsedFlags[T], error) {
	result, err := yargs.ParseFlags[T](args)
	if err != nil {
		return parsedFlags[T]{}, err
	}
	argsOut := append([]string{}, result.Args...)
	if len(result.RemainingArgs) > 0 {
		argsOut = append(argsOut, result.RemainingArgs...)
	}
	return parsedFlags[T]{Flags: result.Flags, Args: argsOut, Parser: result.Parser}, nil
}

// SplitArgv splits a command line at its first "--". The part after it is
// the argument vector under test and never reaches the flag parser.
// hasArgv reports whether a "--" was present.
func SplitArgv(args []string) (cmdArgs, argv []string, hasArgv bool) {
	for i, arg := range args {
		if arg == "--" {
			return args[:i], append([]string{}, args[i+1:]...), true
		}
	}
	return args, nil, false
}

func RequireNoArgs(subcmd string, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("'%s' takes no positional arguments, got %s (put the argument vector after --)", subcmd, strings.Join(args, " "))
	}
	return nil
}
