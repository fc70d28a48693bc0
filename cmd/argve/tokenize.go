// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/yeetrun/argve/pkg/argve"
	"github.com/yeetrun/argve/pkg/cli"
	"github.com/yeetrun/argve/pkg/codecutil"
	"github.com/yeetrun/argve/pkg/ftdetect"
	"github.com/yeetrun/argve/pkg/optfile"
)

var errTokenErrors = errors.New("argument vector produced error tokens")

type tokenRecord struct {
	Kind     string  `json:"kind"`
	Row      int     `json:"row"`
	Option   string  `json:"option,omitempty"`
	Arg      int     `json:"arg"`
	Name     string  `json:"name,omitempty"`
	Value    *string `json:"value,omitempty"`
	Consumed int     `json:"consumed"`
	Error    string  `json:"error,omitempty"`
}

type tokenizeResult struct {
	Table     string        `json:"table"`
	Args      []string      `json:"args"`
	Tokens    []tokenRecord `json:"tokens"`
	Errors    int           `json:"errors"`
	Remaining []string      `json:"remaining,omitempty"`
}

func handleTokenize(_ context.Context, args []string) error {
	flags, extra, err := cli.ParseTokenize(args)
	if err != nil {
		return err
	}
	if err := cli.RequireNoArgs(cli.CommandTokenize, extra); err != nil {
		return err
	}
	table, err := optfile.Load(flags.Table)
	if err != nil {
		return err
	}
	vec := argv
	if vec == nil {
		vec = []string{}
	}
	if flags.ArgsFile != "" {
		stored, err := loadArgsFile(flags.ArgsFile)
		if err != nil {
			return err
		}
		vec = append(slices.Clone(vec), stored...)
	}

	res, err := tokenize(table, vec, flags.StopOnError)
	if err != nil {
		return err
	}
	res.Table = flags.Table
	if flags.Format == cli.FormatJSON {
		err = writeJSON(stdout, res)
	} else {
		err = writeTokenTable(stdout, res)
	}
	if err != nil {
		return err
	}
	if res.Errors > 0 {
		return exitError{code: 1, err: fmt.Errorf("%w: %d", errTokenErrors, res.Errors)}
	}
	return nil
}

func loadArgsFile(path string) ([]string, error) {
	ft, err := ftdetect.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	switch {
	case !ft.IsCorpus():
		return nil, fmt.Errorf("%s: expected an argument vector file, found a %v", path, ft)
	case ft == ftdetect.ZstdCorpus && filepath.Ext(path) != codecutil.Ext:
		return nil, fmt.Errorf("%s: compressed argument vectors must be named *%s", path, codecutil.Ext)
	}
	return codecutil.LoadArgs(path)
}

func tokenize(table *optfile.Table, args []string, stopOnError bool) (*tokenizeResult, error) {
	tz, err := argve.New(table.Options(), args)
	if err != nil {
		return nil, err
	}
	res := &tokenizeResult{Args: args, Tokens: []tokenRecord{}}
	for tok := range tz.All() {
		rec := tokenRecord{
			Kind:     tok.Kind.String(),
			Row:      tok.Index,
			Arg:      tok.ArgIndex,
			Name:     tok.Name,
			Consumed: tok.Consumed,
		}
		if tok.Index >= 0 {
			rec.Option = table.Describe(tok.Index)
		}
		if tok.HasValue {
			v := tok.Value
			rec.Value = &v
		}
		if tok.Kind.IsError() {
			rec.Error = tz.Err().Error()
			res.Errors++
		}
		res.Tokens = append(res.Tokens, rec)
		if tok.Kind.IsError() && stopOnError {
			res.Remaining = tz.Remaining()
			break
		}
	}
	return res, nil
}

func writeTokenTable(out io.Writer, res *tokenizeResult) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ARG\tKIND\tOPTION\tNAME\tVALUE\tCONSUMED")
	for _, r := range res.Tokens {
		kind := r.Kind
		if r.Error != "" {
			kind = "!" + kind
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n", r.Arg, kind, dash(r.Option), dash(r.Name), quoteValue(r.Value), r.Consumed)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, r := range res.Tokens {
		if r.Error != "" {
			fmt.Fprintf(out, "%s %s\n", colors.Red("[ERROR]"), r.Error)
		}
	}
	if res.Remaining != nil {
		fmt.Fprintf(out, "%s %s\n", colors.Yellow("stopped, not consumed:"), strings.Join(quoteAll(res.Remaining), " "))
	}
	fmt.Fprintln(out, colors.Dim(fmt.Sprintf("%d tokens, %d errors", len(res.Tokens), res.Errors)))
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func quoteValue(v *string) string {
	if v == nil {
		return "-"
	}
	return strconv.Quote(*v)
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strconv.Quote(s)
	}
	return out
}
