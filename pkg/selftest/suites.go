// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package selftest

import (
	"errors"
	"fmt"

	"github.com/yeetrun/argve/pkg/argve"
)

// Suites returns the built-in tokenizer conformance suites. The fuzzing
// suite reads its Settings from the run data.
func Suites() []Suite {
	return []Suite{
		{ID: "init", Name: "argve_init", Cases: []Case{
			{"init_1", "zero value", caseZeroValue},
			{"init_2", "options = nil", caseNilOptions},
			{"init_3", "argc < 0", caseNegativeCount},
			{"init_4", "argv = nil", caseNilArgs},
			{"init_5", "argc > len(argv)", caseMissingArgument},
			{"init_6", "invalid flags", caseInvalidFlags},
		}},
		{ID: "positional", Name: "positional", Cases: []Case{
			{"positional_1", "nothing", caseNothing},
			{"positional_2", "trivial", caseTrivial},
			{"positional_3", "no options defined", caseNoOptions},
		}},
		{ID: "options", Name: "options", Cases: []Case{
			{"options_1", "-o, --option", caseFlags},
			{"options_2", "-o <value>, --option <value>", caseSeparateValues},
			{"options_3", "-o<value>, --option=<value>", caseAttachedValues},
			{"options_4", "-abc => -a -b -c", caseCluster},
			{"options_5", "-abc => -a -b c", caseClusterValue},
			{"options_6", "-o- =/= -o --", caseDashInCluster},
			{"options_7", "missing option value", caseMissingValue},
			{"options_8", "unneeded option value", caseUnneededValue},
			{"options_9", "-long", caseSingleDashLong},
		}},
		{ID: "dashes", Name: "dashes", Cases: []Case{
			{"dashes_1", "single dash", caseSingleDash},
			{"dashes_2", "double dashes", caseDoubleDash},
		}},
		{ID: fuzzingSuite, Name: fuzzingSuite, Cases: []Case{
			{"fuzzing_1", "fuzzing", fuzzCase},
		}},
	}
}

type tokenWant struct {
	kind     argve.Kind
	index    int
	name     string
	value    string
	hasValue bool
	consumed int
}

func wantText(v string, consumed int) tokenWant {
	return tokenWant{kind: argve.Text, index: -1, value: v, hasValue: true, consumed: consumed}
}

func wantFlag(kind argve.Kind, index int, name string, consumed int) tokenWant {
	return tokenWant{kind: kind, index: index, name: name, consumed: consumed}
}

func (w tokenWant) with(v string) tokenWant {
	w.value, w.hasValue = v, true
	return w
}

func mustInit(t *T, table []argve.Option, args []string) *argve.Tokenizer {
	tz, err := argve.New(table, args)
	if err != nil {
		t.fail(1, fmt.Sprintf("New: %v", err))
		panic(stopCase{})
	}
	if tz.Kind() != argve.ErrorInternal || !tz.IsError() {
		t.fail(1, fmt.Sprintf("fresh tokenizer has kind %v", tz.Kind()))
		panic(stopCase{})
	}
	return tz
}

func expect(t *T, tz *argve.Tokenizer, w tokenWant) {
	tok := tz.Next()
	got := tokenWant{tok.Kind, tok.Index, tok.Name, tok.Value, tok.HasValue, tok.Consumed}
	if got != w {
		t.fail(1, fmt.Sprintf("got %+v, want %+v", got, w))
		panic(stopCase{})
	}
	if opt, i := tz.Option(); i != w.index || (opt == nil) != (i < 0) {
		t.fail(1, fmt.Sprintf("Option() = %v, %d, want row %d", opt, i, w.index))
		panic(stopCase{})
	}
}

func expectEnd(t *T, tz *argve.Tokenizer, argc int) {
	for range 2 {
		tok := tz.Next()
		if tok.Kind != argve.End || tok.Consumed != argc || tok.Remaining != 0 ||
			tok.Option != nil || tok.Arg != "" || tok.HasValue || tz.IsError() {
			t.fail(1, fmt.Sprintf("got %+v, want End after %d arguments", tok, argc))
			panic(stopCase{})
		}
	}
}

func repeatArgs(n int, pick func(i int) string) []string {
	args := make([]string, n)
	for i := range args {
		args[i] = pick(i)
	}
	return args
}

// mixed is the -o / --option / trivial pattern used by several cases.
func mixed(short, long, other string) []string {
	return repeatArgs(255, func(i int) string {
		switch {
		case i%3 == 0:
			return short
		case i%5 == 0:
			return long
		default:
			return other
		}
	})
}

var validArgs = []string{"trivial"}

func validTable() []argve.Option {
	return []argve.Option{{Short: argve.Char('o'), Long: "option"}}
}

func caseZeroValue(t *T) {
	var tz argve.Tokenizer
	if err := tz.Init(validTable(), validArgs); err != nil {
		t.Fatalf("Init on zero value: %v", err)
	}
	expect(t, &tz, wantText("trivial", 1))
	expectEnd(t, &tz, 1)
}

func expectInitError(t *T, want error, table []argve.Option, argc int, args []string) {
	var tz argve.Tokenizer
	if err := tz.Init(validTable(), validArgs); err != nil {
		t.fail(1, fmt.Sprintf("Init: %v", err))
		panic(stopCase{})
	}
	tz.Next()
	if err := tz.InitN(table, argc, args); !errors.Is(err, want) {
		t.fail(1, fmt.Sprintf("InitN error = %v, want %v", err, want))
		panic(stopCase{})
	}
	if tz.Kind() != argve.Text || tz.Consumed() != 1 {
		t.fail(1, "failed InitN modified the tokenizer")
		panic(stopCase{})
	}
	if err := tz.InitN(validTable(), len(validArgs), validArgs); err != nil {
		t.fail(1, fmt.Sprintf("InitN after failure: %v", err))
		panic(stopCase{})
	}
}

func caseNilOptions(t *T) {
	expectInitError(t, argve.ErrNilInput, nil, 1, validArgs)
}

func caseNegativeCount(t *T) {
	expectInitError(t, argve.ErrNegativeCount, validTable(), -1, validArgs)
}

func caseNilArgs(t *T) {
	expectInitError(t, argve.ErrNilInput, validTable(), 0, nil)
}

func caseMissingArgument(t *T) {
	expectInitError(t, argve.ErrMissingArgument, validTable(), 2, validArgs)
}

func caseInvalidFlags(t *T) {
	table := validTable()
	bad := []string{"=X", "[ ]", "[\xC2\xA1]"}
	for c := 1; c <= 0x20; c++ {
		bad = append(bad, "["+string(rune(c))+"]")
	}
	for c := 0x7F; c <= 0xFF; c++ {
		bad = append(bad, "["+string([]byte{byte(c)})+"]")
	}
	for _, long := range bad {
		table[0].Long = long
		var te *argve.TableError
		if _, err := argve.New(table, validArgs); !errors.As(err, &te) || te.Index != 0 {
			t.Fatalf("long name %q: error = %v, want *TableError", long, err)
		}
		table[0].Long = "option"
		if _, err := argve.New(table, validArgs); err != nil {
			t.Fatalf("restored table: %v", err)
		}
	}
	for id := -32768; id < 32767; id++ {
		table[0].Short = argve.Virtual(id)
		if _, err := argve.New(table, validArgs); err != nil {
			t.Fatalf("short code %d: %v", id, err)
		}
	}
}

func caseNothing(t *T) {
	tz := mustInit(t, []argve.Option{}, []string{})
	expectEnd(t, tz, 0)
}

func caseTrivial(t *T) {
	args := repeatArgs(255, func(int) string { return "trivial" })
	tz := mustInit(t, []argve.Option{}, args)
	for i := range args {
		expect(t, tz, wantText("trivial", i+1))
	}
	expectEnd(t, tz, len(args))
}

func caseNoOptions(t *T) {
	args := mixed("-o", "--option", "trivial")
	tz := mustInit(t, []argve.Option{}, args)
	for i, a := range args {
		switch a {
		case "-o":
			expect(t, tz, wantFlag(argve.ErrorUnrecognizedShort, -1, "o", i+1))
		case "--option":
			expect(t, tz, wantFlag(argve.ErrorUnrecognizedLong, -1, "option", i+1))
		default:
			expect(t, tz, wantText(a, i+1))
		}
	}
	expectEnd(t, tz, len(args))
}

func shortAndLong(needsValue bool) []argve.Option {
	return []argve.Option{
		{NeedsValue: needsValue, Short: argve.Char('o')},
		{NeedsValue: needsValue, Short: argve.Virtual('o' + 256), Long: "option"},
	}
}

func caseFlags(t *T) {
	args := mixed("-o", "--option", "trivial")
	tz := mustInit(t, shortAndLong(false), args)
	for i, a := range args {
		switch a {
		case "-o":
			expect(t, tz, wantFlag(argve.ShortFlag, 0, "o", i+1))
		case "--option":
			expect(t, tz, wantFlag(argve.LongFlag, 1, "option", i+1))
		default:
			expect(t, tz, wantText(a, i+1))
		}
	}
	expectEnd(t, tz, len(args))
}

func caseSeparateValues(t *T) {
	args := mixed("-o", "--option", "trivial")
	tz := mustInit(t, shortAndLong(true), args)
	for i := 0; i < len(args); i++ {
		switch a := args[i]; a {
		case "-o":
			expect(t, tz, wantFlag(argve.ShortFlag, 0, "o", i+2).with(args[i+1]))
			i++
		case "--option":
			expect(t, tz, wantFlag(argve.LongFlag, 1, "option", i+2).with(args[i+1]))
			i++
		default:
			expect(t, tz, wantText(a, i+1))
		}
	}
	expectEnd(t, tz, len(args))
}

func caseAttachedValues(t *T) {
	args := mixed("-o==", "--option===", "==")
	tz := mustInit(t, shortAndLong(true), args)
	for i, a := range args {
		switch a {
		case "-o==":
			expect(t, tz, wantFlag(argve.ShortFlag, 0, "o", i+1).with("=="))
		case "--option===":
			expect(t, tz, wantFlag(argve.LongFlag, 1, "option", i+1).with("=="))
		default:
			expect(t, tz, wantText(a, i+1))
		}
	}
	expectEnd(t, tz, len(args))
}

var clusterArgs = []string{
	"-abc", "-acb", "-bac", "d", "-bca", "-cab", "d", "-cba",
	"-ab", "-ba", "-ac", "d", "-ca", "-bc", "d", "-cb",
	"-a", "-b", "-c", "d",
}

func abc(needsB bool) []argve.Option {
	return []argve.Option{
		{Short: argve.Char('a')},
		{NeedsValue: needsB, Short: argve.Char('b')},
		{Short: argve.Char('c')},
	}
}

func caseCluster(t *T) {
	tz := mustInit(t, abc(false), clusterArgs)
	for i, a := range clusterArgs {
		switch {
		case a == "d":
			expect(t, tz, wantText(a, i+1))
		case len(a) == 2:
			expect(t, tz, wantFlag(argve.ShortFlag, int(a[1]-'a'), a[1:], i+1))
		default:
			for k := 1; k < len(a); k++ {
				expect(t, tz, wantFlag(argve.ClusteredShortFlag, int(a[k]-'a'), a[k:k+1], i+1))
			}
		}
	}
	expectEnd(t, tz, len(clusterArgs))
}

func caseClusterValue(t *T) {
	const (
		C = argve.ClusteredShortFlag
		S = argve.ShortFlag
	)
	args := []string{"-abc", "-acb", "-bac", "d", "-cb", "-b", "d", "-ab", "-c", "-b", "x", "-bx"}
	tz := mustInit(t, abc(true), args)
	for _, w := range []tokenWant{
		wantFlag(C, 0, "a", 1),
		wantFlag(C, 1, "b", 1).with("c"),
		wantFlag(C, 0, "a", 2),
		wantFlag(C, 2, "c", 2),
		wantFlag(C, 1, "b", 3).with("-bac"),
		wantText("d", 4),
		wantFlag(C, 2, "c", 5),
		wantFlag(C, 1, "b", 6).with("-b"),
		wantText("d", 7),
		wantFlag(C, 0, "a", 8),
		wantFlag(C, 1, "b", 9).with("-c"),
		wantFlag(S, 1, "b", 11).with("x"),
		wantFlag(S, 1, "b", 12).with("x"),
	} {
		expect(t, tz, w)
	}
	expectEnd(t, tz, len(args))
}

func caseDashInCluster(t *T) {
	args := []string{"-o-"}

	tz := mustInit(t, []argve.Option{{Short: argve.Char('o'), Long: "option"}}, args)
	expect(t, tz, wantFlag(argve.ClusteredShortFlag, 0, "o", 1))
	expect(t, tz, wantFlag(argve.ErrorUnrecognizedShort, -1, "-", 1))
	expectEnd(t, tz, 1)

	// A row coded '-' is identifier-only and never matches.
	tz = mustInit(t, []argve.Option{
		{Short: argve.Char('o'), Long: "option"},
		{Short: argve.Char('-'), Long: "option"},
	}, args)
	expect(t, tz, wantFlag(argve.ClusteredShortFlag, 0, "o", 1))
	expect(t, tz, wantFlag(argve.ErrorUnrecognizedShort, -1, "-", 1))
	expectEnd(t, tz, 1)

	tz = mustInit(t, []argve.Option{
		{NeedsValue: true, Short: argve.Char('o'), Long: "option"},
		{Short: argve.Char('-'), Long: "option"},
	}, args)
	expect(t, tz, wantFlag(argve.ShortFlag, 0, "o", 1).with("-"))
	expectEnd(t, tz, 1)
}

func caseMissingValue(t *T) {
	tz := mustInit(t, []argve.Option{{NeedsValue: true, Short: argve.Char('o'), Long: "option"}}, []string{"-o"})
	expect(t, tz, wantFlag(argve.ErrorMissingShortValue, 0, "o", 1))
	expectEnd(t, tz, 1)

	tz = mustInit(t, []argve.Option{
		{Short: argve.Char('n'), Long: "option"},
		{NeedsValue: true, Short: argve.Char('o'), Long: "option"},
	}, []string{"-no"})
	expect(t, tz, wantFlag(argve.ClusteredShortFlag, 0, "n", 1))
	expect(t, tz, wantFlag(argve.ErrorMissingShortValue, 1, "o", 1))
	expectEnd(t, tz, 1)

	tz = mustInit(t, []argve.Option{{NeedsValue: true, Short: argve.Char('o'), Long: "option"}}, []string{"--option=", "--option"})
	expect(t, tz, wantFlag(argve.LongFlag, 0, "option", 1).with(""))
	expect(t, tz, wantFlag(argve.ErrorMissingOrUnneededLongValue, 0, "option", 2))
	expectEnd(t, tz, 2)
}

func caseUnneededValue(t *T) {
	tz := mustInit(t, []argve.Option{{Short: argve.Char('o'), Long: "option"}}, []string{"--option="})
	expect(t, tz, wantFlag(argve.ErrorMissingOrUnneededLongValue, 0, "option", 1).with(""))
	expectEnd(t, tz, 1)
}

func caseSingleDashLong(t *T) {
	args := []string{"-option", "-option="}
	tz := mustInit(t, []argve.Option{{Long: "option"}}, args)
	for i := range args {
		expect(t, tz, wantFlag(argve.ErrorUnrecognizedShort, -1, "o", i+1))
	}
	expectEnd(t, tz, len(args))
}

func caseSingleDash(t *T) {
	args := repeatArgs(255, func(i int) string {
		if i%2 == 0 {
			return "-"
		}
		return "- "
	})
	tz := mustInit(t, []argve.Option{{NeedsValue: true, Short: argve.Char('-')}}, args)
	for i, a := range args {
		if a == "-" {
			expect(t, tz, wantText(a, i+1))
		} else {
			expect(t, tz, wantFlag(argve.ErrorUnrecognizedShort, -1, " ", i+1))
		}
	}
	expectEnd(t, tz, len(args))
}

func caseDoubleDash(t *T) {
	args := repeatArgs(255, func(i int) string {
		if i%2 == 0 {
			return "--"
		}
		return "---"
	})
	tz := mustInit(t, []argve.Option{{NeedsValue: true, Short: argve.Char('-'), Long: "-"}}, args)
	expect(t, tz, wantText("--", 1))
	for i := 1; i < len(args); i += 2 {
		expect(t, tz, wantFlag(argve.LongFlag, 0, "-", i+2).with("--"))
	}
	expectEnd(t, tz, len(args))
}
