// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argve

import (
	"fmt"
	"strconv"
)

// Code identifies an option row. A Code is either a printable short flag
// character that users can type after a single dash, or an identifier-only
// (virtual) code that is never matched against input.
type Code struct {
	id      int
	virtual bool
}

// Char returns the Code for the short flag character c. Bytes outside the
// visible ASCII range and '-' cannot be typed as short flags, so they produce
// a virtual Code. Char(0) is the zero Code ("no short form").
func Char(c byte) Code {
	if c == 0 {
		return Code{}
	}
	return Code{id: int(c), virtual: !isShortChar(c)}
}

// Virtual returns an identifier-only Code. It is useful for long-only options
// that still need a distinct identity. Virtual(0) is the zero Code.
func Virtual(id int) Code {
	if id == 0 {
		return Code{}
	}
	return Code{id: id, virtual: true}
}

// IsZero reports whether c is the "no short form" Code.
func (c Code) IsZero() bool { return c.id == 0 }

// IsVirtual reports whether c is identifier-only.
func (c Code) IsVirtual() bool { return c.virtual }

// ID returns the numeric value of the code.
func (c Code) ID() int { return c.id }

// Char returns the short flag character, if c is a printable short form.
func (c Code) Char() (byte, bool) {
	if c.id == 0 || c.virtual {
		return 0, false
	}
	return byte(c.id), true
}

func (c Code) String() string {
	switch {
	case c.id == 0:
		return "none"
	case c.virtual:
		return "#" + strconv.Itoa(c.id)
	default:
		return "-" + string(rune(c.id))
	}
}

// Option is one row of an option table.
type Option struct {
	// NeedsValue reports whether a value must follow the flag.
	NeedsValue bool
	// Short is the short form; the zero Code means none.
	Short Code
	// Long is the long form without the leading "--"; empty means none.
	Long string
}

// IsEnd reports whether o is a sentinel row (no short and no long form).
func (o Option) IsEnd() bool {
	return o.Short.IsZero() && o.Long == ""
}

// TableError reports an option row whose long name is unusable.
type TableError struct {
	Index  int    // row in the table
	Long   string // offending long name
	Reason string
}

func (e *TableError) Error() string {
	return fmt.Sprintf("argve: option %d: invalid long name %q: %s", e.Index, e.Long, e.Reason)
}

func (e *TableError) Unwrap() error {
	return ErrInvalidTable
}

// tableLen returns the number of rows before the first sentinel.
func tableLen(table []Option) int {
	for i := range table {
		if table[i].IsEnd() {
			return i
		}
	}
	return len(table)
}

func validateTable(table []Option) error {
	for i := range table {
		if reason := checkLongName(table[i].Long); reason != "" {
			return &TableError{Index: i, Long: table[i].Long, Reason: reason}
		}
	}
	return nil
}

// checkLongName returns why name cannot be a long option name, or "" if it
// can. The empty name means "no long form" and is accepted.
func checkLongName(name string) string {
	for i := 0; i < len(name); i++ {
		switch c := name[i]; {
		case c == '=':
			return "contains '='"
		case !isVisible(c):
			return fmt.Sprintf("byte 0x%02X at offset %d is not visible ASCII", c, i)
		}
	}
	return ""
}

func isVisible(c byte) bool {
	return c > 0x20 && c < 0x7F
}

func isShortChar(c byte) bool {
	return c != '-' && isVisible(c)
}

// isLongName reports whether name is a non-empty run of visible ASCII
// without '='.
func isLongName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if c := name[i]; c == '=' || !isVisible(c) {
			return false
		}
	}
	return true
}

// ValidLongName reports whether name may be used as Option.Long.
func ValidLongName(name string) bool {
	return isLongName(name)
}
