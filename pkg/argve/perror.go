// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argve

import (
	"errors"
	"fmt"
	"io"
)

// Token stream errors, matched with errors.Is against the error returned by
// Tokenizer.Err.
var (
	ErrUnrecognizedOption = errors.New("unrecognized option")
	ErrMissingValue       = errors.New("missing argument")
	ErrUnneededValue      = errors.New("unneeded argument")
	ErrInternal           = errors.New("unknown error")
)

// TokenError describes an error token. Its message names the offending flag
// using the substrings recorded in Token.
type TokenError struct {
	Token Token
}

func (e *TokenError) Error() string {
	return describe(e.Token)
}

func (e *TokenError) Unwrap() error {
	switch e.Token.Kind {
	case ErrorUnrecognizedShort, ErrorUnrecognizedLong:
		return ErrUnrecognizedOption
	case ErrorMissingShortValue:
		return ErrMissingValue
	case ErrorMissingOrUnneededLongValue:
		if e.Token.Option != nil && !e.Token.Option.NeedsValue {
			return ErrUnneededValue
		}
		return ErrMissingValue
	default:
		return ErrInternal
	}
}

// Err returns a *TokenError for the current token, or nil if it is not an
// error.
func (t *Tokenizer) Err() error {
	if !t.kind.IsError() {
		return nil
	}
	return &TokenError{Token: t.Token()}
}

// FormatError returns a one-line diagnostic for the current token prefixed
// with label. Non-error tokens yield "no error".
func (t *Tokenizer) FormatError(label string) string {
	return label + describe(t.Token())
}

// WriteError writes FormatError(label) and a newline to w.
func (t *Tokenizer) WriteError(w io.Writer, label string) (int, error) {
	return fmt.Fprintf(w, "%s%s\n", label, describe(t.Token()))
}

func describe(tok Token) string {
	switch tok.Kind {
	case ErrorMissingShortValue:
		return fmt.Sprintf("missing argument for -%s : %s", tok.Name, tok.Arg)
	case ErrorMissingOrUnneededLongValue:
		if tok.Option == nil {
			return "unknown error"
		}
		if tok.Option.NeedsValue {
			return fmt.Sprintf("missing argument for --%s", tok.Option.Long)
		}
		return fmt.Sprintf("unneeded argument for --%s : %s", tok.Option.Long, tok.Arg)
	case ErrorUnrecognizedShort:
		return fmt.Sprintf("unrecognized option -%s : %s", tok.Name, tok.Arg)
	case ErrorUnrecognizedLong:
		return fmt.Sprintf("unrecognized option --%s : %s", tok.Name, tok.Arg)
	case ErrorInternal:
		return "unknown error"
	default:
		return "no error"
	}
}
