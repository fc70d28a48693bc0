// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argve

import (
	"errors"
	"iter"
	"strconv"
	"strings"
)

// Initialization errors.
var (
	// ErrNilInput is returned when the option table or the argument vector
	// is nil.
	ErrNilInput = errors.New("argve: nil option table or argument vector")
	// ErrInvalidTable is wrapped by *TableError.
	ErrInvalidTable = errors.New("argve: invalid option table")
	// ErrMissingArgument is returned when argc claims more arguments than
	// the vector holds.
	ErrMissingArgument = errors.New("argve: missing argument vector entry")
	// ErrNegativeCount is returned for a negative argc.
	ErrNegativeCount = errors.New("argve: negative argument count")
)

// Kind classifies a token.
type Kind uint8

const (
	End                             Kind = iota // no more arguments
	Text                                        // positional argument, including "-" and "--"
	ShortFlag                                   // "-o", "-ovalue", "-o value"
	LongFlag                                    // "--name", "--name=value", "--name value"
	ClusteredShortFlag                          // one member of "-abc"
	ErrorUnrecognizedShort                      // short flag not in the table
	ErrorUnrecognizedLong                       // long flag not in the table
	ErrorMissingShortValue                      // short flag without its value
	ErrorMissingOrUnneededLongValue             // long flag without its value, or with an unwanted one
	ErrorInternal                               // inconsistent state; never produced by Next on a valid path
)

var kindNames = [...]string{
	End:                             "End",
	Text:                            "Text",
	ShortFlag:                       "ShortFlag",
	LongFlag:                        "LongFlag",
	ClusteredShortFlag:              "ClusteredShortFlag",
	ErrorUnrecognizedShort:          "ErrorUnrecognizedShort",
	ErrorUnrecognizedLong:           "ErrorUnrecognizedLong",
	ErrorMissingShortValue:          "ErrorMissingShortValue",
	ErrorMissingOrUnneededLongValue: "ErrorMissingOrUnneededLongValue",
	ErrorInternal:                   "ErrorInternal",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsError reports whether k is one of the error kinds.
func (k Kind) IsError() bool {
	return k >= ErrorUnrecognizedShort
}

// IsError reports whether k is one of the error kinds.
func IsError(k Kind) bool {
	return k.IsError()
}

// Token is a snapshot of the tokenizer state after a call to Next. All
// strings are substrings of the caller's arguments.
type Token struct {
	Kind Kind

	// Option points into the caller's table, or is nil when no row
	// matched. Index is the matching row, or -1.
	Option *Option
	Index  int

	// Arg is the argument string holding the reported name (or the text
	// itself for Text tokens); ArgIndex is its position in the vector, or
	// -1 at End.
	Arg      string
	ArgIndex int

	// Name is the option name being reported: a single byte for short
	// forms, the name up to any '=' for long forms. NamePos is its byte
	// offset within Arg, or -1.
	Name    string
	NamePos int

	// Value is the value attached to the flag (or the text of a Text
	// token). HasValue distinguishes an empty value from none.
	Value    string
	HasValue bool

	// Consumed and Remaining count argument vector slots.
	Consumed  int
	Remaining int
}

// Tokenizer is the parser state machine. The zero value is not usable;
// call Init or New. A Tokenizer must not be used from multiple goroutines
// at once.
type Tokenizer struct {
	table []Option
	args  []string
	next  int // index of the first unconsumed argument

	kind     Kind
	option   int // matched row, -1 for none
	argIdx   int // argument holding the name cursor, -1 for none
	namePos  int // name cursor within args[argIdx], -1 for none
	nameLen  int
	value    string
	hasValue bool
}

// New returns a Tokenizer over table and args. See Init.
func New(table []Option, args []string) (*Tokenizer, error) {
	t := new(Tokenizer)
	if err := t.Init(table, args); err != nil {
		return nil, err
	}
	return t, nil
}

// NewN is like New but only tokenizes the first argc arguments.
func NewN(table []Option, argc int, args []string) (*Tokenizer, error) {
	t := new(Tokenizer)
	if err := t.InitN(table, argc, args); err != nil {
		return nil, err
	}
	return t, nil
}

// Init validates table and args and positions t before the first argument.
// The table is cut at its first sentinel row. Both slices are borrowed and
// must not be modified while t is in use. On error t is left unchanged.
func (t *Tokenizer) Init(table []Option, args []string) error {
	return t.InitN(table, len(args), args)
}

// InitN is like Init but only tokenizes args[:argc]. It fails with
// ErrNegativeCount for a negative argc and ErrMissingArgument when argc
// exceeds len(args).
func (t *Tokenizer) InitN(table []Option, argc int, args []string) error {
	if table == nil || args == nil {
		return ErrNilInput
	}
	if argc < 0 {
		return ErrNegativeCount
	}
	table = table[:tableLen(table)]
	if err := validateTable(table); err != nil {
		return err
	}
	if argc > len(args) {
		return ErrMissingArgument
	}
	*t = Tokenizer{
		table: table,
		args:  args[:argc:argc],
	}
	t.reset()
	t.kind = ErrorInternal
	return nil
}

func (t *Tokenizer) reset() {
	t.option = -1
	t.argIdx = -1
	t.namePos = -1
	t.nameLen = 0
	t.value = ""
	t.hasValue = false
}

func (t *Tokenizer) setValue(v string) {
	t.value = v
	t.hasValue = true
}

// Next classifies the next piece of input and returns the resulting token.
// It consumes no slots while walking a cluster of short flags and one or
// more slots otherwise. Once the vector is exhausted it keeps returning End.
func (t *Tokenizer) Next() Token {
	if t.kind == ClusteredShortFlag && !t.hasValue {
		if t.argIdx < 0 || t.namePos < 0 || t.namePos >= len(t.args[t.argIdx]) {
			t.reset()
			t.kind = ErrorInternal
			return t.Token()
		}
		if arg := t.args[t.argIdx]; t.namePos+1 < len(arg) {
			// -abc => -bc
			t.namePos++
			t.short(arg, ClusteredShortFlag)
			return t.Token()
		}
	}

	t.reset()
	if t.next >= len(t.args) {
		t.kind = End
		return t.Token()
	}
	t.argIdx = t.next
	arg := t.args[t.next]
	t.next++

	switch {
	case len(arg) > 1 && arg[0] == '-' && arg[1] != '-':
		t.namePos = 1
		t.short(arg, ShortFlag)
	case len(arg) > 2 && arg[0] == '-' && arg[1] == '-':
		t.long(arg)
	default:
		t.kind = Text
		t.setValue(arg)
	}
	return t.Token()
}

// short classifies arg[t.namePos] as a short flag.
func (t *Tokenizer) short(arg string, kind Kind) {
	t.nameLen = 1
	t.option = t.matchShort(arg[t.namePos])
	if t.option < 0 {
		t.kind = ErrorUnrecognizedShort
		return
	}
	t.kind = kind
	rest := t.namePos + 1
	if !t.table[t.option].NeedsValue {
		if rest < len(arg) {
			t.kind = ClusteredShortFlag
		}
		return
	}
	switch {
	case rest < len(arg):
		// -o<value>
		t.setValue(arg[rest:])
	case t.next < len(t.args):
		// -o <value>
		t.setValue(t.args[t.next])
		t.next++
	default:
		t.kind = ErrorMissingShortValue
	}
}

// long classifies arg as "--name[=value]".
func (t *Tokenizer) long(arg string) {
	t.namePos = 2
	name, value, hasEq := strings.Cut(arg[2:], "=")
	t.nameLen = len(name)
	t.option = t.matchLong(name)
	if t.option < 0 {
		t.kind = ErrorUnrecognizedLong
		return
	}
	t.kind = LongFlag
	if !t.table[t.option].NeedsValue {
		if hasEq {
			t.kind = ErrorMissingOrUnneededLongValue
			t.setValue(value)
		}
		return
	}
	switch {
	case hasEq:
		// --name=<value>
		t.setValue(value)
	case t.next < len(t.args):
		// --name <value>
		t.setValue(t.args[t.next])
		t.next++
	default:
		t.kind = ErrorMissingOrUnneededLongValue
	}
}

// matchShort returns the first row whose short form is c, or -1.
func (t *Tokenizer) matchShort(c byte) int {
	if !isShortChar(c) {
		return -1
	}
	code := Char(c)
	for i := range t.table {
		if t.table[i].Short == code {
			return i
		}
	}
	return -1
}

// matchLong returns the first row whose long form is exactly name, or -1.
func (t *Tokenizer) matchLong(name string) int {
	if !isLongName(name) {
		return -1
	}
	for i := range t.table {
		if t.table[i].Long == name {
			return i
		}
	}
	return -1
}

// Token returns a snapshot of the current state.
func (t *Tokenizer) Token() Token {
	tok := Token{
		Kind:      t.kind,
		Index:     t.option,
		ArgIndex:  t.argIdx,
		NamePos:   t.namePos,
		Value:     t.value,
		HasValue:  t.hasValue,
		Consumed:  t.next,
		Remaining: len(t.args) - t.next,
	}
	if t.option >= 0 {
		tok.Option = &t.table[t.option]
	}
	if t.argIdx >= 0 {
		tok.Arg = t.args[t.argIdx]
		if t.namePos >= 0 {
			tok.Name = tok.Arg[t.namePos : t.namePos+t.nameLen]
		}
	}
	return tok
}

// Kind returns the kind of the current token. Before the first call to Next
// it is ErrorInternal.
func (t *Tokenizer) Kind() Kind { return t.kind }

// IsError reports whether the current token is an error.
func (t *Tokenizer) IsError() bool { return t.kind.IsError() }

// Option returns the matched option and its row, or nil and -1.
func (t *Tokenizer) Option() (*Option, int) {
	if t.option < 0 {
		return nil, -1
	}
	return &t.table[t.option], t.option
}

// Value returns the value attached to the current token.
func (t *Tokenizer) Value() (string, bool) { return t.value, t.hasValue }

// Name returns the option name of the current token; see Token.Name.
func (t *Tokenizer) Name() string {
	if t.argIdx < 0 || t.namePos < 0 {
		return ""
	}
	return t.args[t.argIdx][t.namePos : t.namePos+t.nameLen]
}

// Consumed returns the number of argument slots consumed so far.
func (t *Tokenizer) Consumed() int { return t.next }

// Remaining returns the arguments not consumed yet.
func (t *Tokenizer) Remaining() []string { return t.args[t.next:] }

// Options returns the active part of the table (before any sentinel).
func (t *Tokenizer) Options() []Option { return t.table }

// All returns an iterator over the remaining tokens. It stops after the
// first End, which is not yielded.
func (t *Tokenizer) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok := t.Next()
			if tok.Kind == End || !yield(tok) {
				return
			}
		}
	}
}

// MaxTokens bounds the number of Next calls, the first End included, that
// draining args can take. Every argument yields at most one token per byte
// plus one.
func MaxTokens(args []string) int {
	n := 1
	for _, a := range args {
		n += len(a) + 1
	}
	return n
}
