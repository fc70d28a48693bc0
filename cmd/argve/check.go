// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"text/tabwriter"

	"github.com/yeetrun/argve/pkg/argve"
	"github.com/yeetrun/argve/pkg/cli"
	"github.com/yeetrun/argve/pkg/optfile"
)

type rowRecord struct {
	Row   int    `json:"row"`
	Code  string `json:"code"`
	Usage string `json:"usage"`
	Value bool   `json:"value"`
	Help  string `json:"help,omitempty"`
}

type checkResult struct {
	Table    string      `json:"table"`
	Version  string      `json:"version"`
	Rows     []rowRecord `json:"rows"`
	Shadowed []string    `json:"shadowed,omitempty"`
}

func handleCheck(_ context.Context, args []string) error {
	flags, extra, err := cli.ParseCheck(args)
	if err != nil {
		return err
	}
	if err := cli.RequireNoArgs(cli.CommandCheck, extra); err != nil {
		return err
	}
	table, err := optfile.Load(flags.Table)
	if err != nil {
		return err
	}
	res := describeTable(table)
	res.Table = flags.Table
	if flags.Format == cli.FormatJSON {
		return writeJSON(stdout, res)
	}
	for _, s := range res.Shadowed {
		log.Printf("warning: %s", s)
	}
	return writeRowTable(stdout, res)
}

func describeTable(table *optfile.Table) *checkResult {
	opts := table.Options()
	res := &checkResult{Version: table.Version.String(), Rows: make([]rowRecord, len(opts))}
	for i, opt := range opts {
		res.Rows[i] = rowRecord{
			Row:   i,
			Code:  opt.Short.String(),
			Usage: table.Describe(i),
			Value: opt.NeedsValue,
			Help:  table.Rows[i].Help,
		}
	}
	res.Shadowed = shadowed(opts)
	return res
}

// shadowed lists flags that can never match because an earlier row claims
// the same short character or long name.
func shadowed(opts []argve.Option) []string {
	var out []string
	shorts := map[byte]int{}
	longs := map[string]int{}
	for i, opt := range opts {
		if c, ok := opt.Short.Char(); ok {
			if j, dup := shorts[c]; dup {
				out = append(out, fmt.Sprintf("option %d: -%c is shadowed by option %d", i, c, j))
			} else {
				shorts[c] = i
			}
		}
		if opt.Long != "" {
			if j, dup := longs[opt.Long]; dup {
				out = append(out, fmt.Sprintf("option %d: --%s is shadowed by option %d", i, opt.Long, j))
			} else {
				longs[opt.Long] = i
			}
		}
	}
	return out
}

func writeRowTable(out io.Writer, res *checkResult) error {
	fmt.Fprintf(out, "%s: version %s, %d options\n", res.Table, res.Version, len(res.Rows))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tCODE\tUSAGE\tHELP")
	for _, r := range res.Rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Row, r.Code, r.Usage, r.Help)
	}
	return w.Flush()
}
