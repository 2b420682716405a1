// Package recipe compiles and runs scan recipes.
//
// A recipe is a whitespace-separated list of steps, each of which maps to a
// single strreader operation:
//
//	lit:HTTP/ version=word code=u16 reason=rest
//
// Steps run in order against a fresh reader for each input line. A step may
// be prefixed with "name=" to name the field it produces.
package recipe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/leapstack-labs/strscan/pkg/strreader"
	"github.com/leapstack-labs/strscan/pkg/token"
)

// Step is one compiled recipe step.
type Step struct {
	Name string // field name, empty if the step is unnamed
	Op   string // operation, e.g. "word" or "u16"
	Arg  string // argument of lit, char and until

	exec execFunc
}

type execFunc func(r *strreader.Reader, arg string, trimRest bool) (any, error)

// String renders the step in recipe syntax.
func (s Step) String() string {
	var b strings.Builder
	if s.Name != "" {
		b.WriteString(s.Name)
		b.WriteByte('=')
	}
	b.WriteString(s.Op)
	if OpTakesArg(s.Op) {
		b.WriteByte(':')
		b.WriteString(quoteArg(s.Arg))
	}
	return b.String()
}

// FieldName returns the name of the field produced by the step.
func (s Step) FieldName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Op
}

// producesField reports whether the step's value is reported as a field.
// Matching steps only report when they are named.
func (s Step) producesField() bool {
	switch s.Op {
	case "ws":
		return false
	case "lit", "char":
		return s.Name != ""
	}
	return true
}

// Recipe is a compiled list of steps.
type Recipe struct {
	Steps []Step

	// TrimRest trims surrounding whitespace from the value of rest steps.
	TrimRest bool
}

// String renders the recipe in canonical recipe syntax.
func (rc *Recipe) String() string {
	parts := make([]string, len(rc.Steps))
	for i, s := range rc.Steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// Field is a value extracted by a step.
type Field struct {
	Name  string     `json:"name" yaml:"name"`
	Step  string     `json:"step" yaml:"step"`
	Value any        `json:"value" yaml:"value"`
	Span  token.Span `json:"-" yaml:"-"`
}

// Result holds the fields extracted from one line.
type Result struct {
	Fields []Field `json:"fields" yaml:"fields"`
	Rest   string  `json:"rest,omitempty" yaml:"rest,omitempty"`
}

// Get returns the value of the first field with the given name.
func (res Result) Get(name string) (any, bool) {
	for _, f := range res.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// StepError reports the step that failed while running a recipe.
type StepError struct {
	Index int
	Step  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Step, e.Err)
}

// Unwrap returns the reader error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Offset returns the byte offset at which the failing step started, or -1
// if the failure was not a reader failure.
func (e *StepError) Offset() int {
	var pe *strreader.ParseError
	if errors.As(e.Err, &pe) {
		return pe.Offset
	}
	return -1
}

// Run executes the recipe on line. On failure the fields extracted before
// the failing step are returned together with a *StepError.
func (rc *Recipe) Run(line string) (Result, error) {
	var res Result
	r := strreader.New(line)

	for i, s := range rc.Steps {
		start := r.Pos()
		v, err := s.exec(r, s.Arg, rc.TrimRest)
		if err != nil {
			res.Rest = r.Rest()
			return res, &StepError{Index: i, Step: s.String(), Err: err}
		}
		if s.producesField() {
			res.Fields = append(res.Fields, Field{
				Name:  s.FieldName(),
				Step:  s.String(),
				Value: v,
				Span:  token.SpanFor(line, start, r.Pos()),
			})
		}
	}

	res.Rest = r.Rest()
	return res, nil
}

var ops = map[string]execFunc{
	"lit": func(r *strreader.Reader, arg string, _ bool) (any, error) {
		return arg, r.MatchString(arg)
	},
	"char": func(r *strreader.Reader, arg string, _ bool) (any, error) {
		c := []rune(arg)[0]
		return string(c), r.MatchRune(c)
	},
	"until": func(r *strreader.Reader, arg string, _ bool) (any, error) {
		c := []rune(arg)[0]
		return r.ReadUntil(func(x rune) bool { return x == c }), nil
	},
	"ws": func(r *strreader.Reader, _ string, _ bool) (any, error) {
		r.SkipWhitespace()
		return nil, nil
	},
	"word": func(r *strreader.Reader, _ string, _ bool) (any, error) {
		return r.ReadWord(), nil
	},
	"digits": func(r *strreader.Reader, _ string, _ bool) (any, error) {
		return r.ReadWhile(func(c rune) bool { return c >= '0' && c <= '9' }), nil
	},
	"alpha": func(r *strreader.Reader, _ string, _ bool) (any, error) {
		return r.ReadWhile(unicode.IsLetter), nil
	},
	"alnum": func(r *strreader.Reader, _ string, _ bool) (any, error) {
		return r.ReadWhile(func(c rune) bool { return unicode.IsLetter(c) || unicode.IsDigit(c) }), nil
	},
	"rest": func(r *strreader.Reader, _ string, trim bool) (any, error) {
		rest := r.Rest()
		r.Reset(strreader.Mark(len(r.Source())))
		if trim {
			return strings.TrimSpace(rest), nil
		}
		return rest, nil
	},
	"bool": func(r *strreader.Reader, _ string, _ bool) (any, error) { return r.ReadBool() },
	"i8":   func(r *strreader.Reader, _ string, _ bool) (any, error) { return r.ReadInt8() },
	"i16":  func(r *strreader.Reader, _ string, _ bool) (any, error) { return r.ReadInt16() },
	"i32":  func(r *strreader.Reader, _ string, _ bool) (any, error) { return r.ReadInt32() },
	"i64":  func(r *strreader.Reader, _ string, _ bool) (any, error) { return r.ReadInt64() },
	"int":  func(r *strreader.Reader, _ string, _ bool) (any, error) { return r.ReadInt() },
	"u8":   func(r *strreader.Reader, _ string, _ bool) (any, error) { return r.ReadUint8() },
	"u16":  func(r *strreader.Reader, _ string, _ bool) (any, error) { return r.ReadUint16() },
	"u32":  func(r *strreader.Reader, _ string, _ bool) (any, error) { return r.ReadUint32() },
	"u64":  func(r *strreader.Reader, _ string, _ bool) (any, error) { return r.ReadUint64() },
	"uint": func(r *strreader.Reader, _ string, _ bool) (any, error) { return r.ReadUint() },
	"f32":  func(r *strreader.Reader, _ string, _ bool) (any, error) { return r.ReadFloat32() },
	"f64":  func(r *strreader.Reader, _ string, _ bool) (any, error) { return r.ReadFloat64() },
}

var opDocs = map[string]string{
	"lit":    "Match the argument exactly",
	"char":   "Match the single character given as argument",
	"until":  "Read up to, not including, the argument character",
	"ws":     "Skip whitespace",
	"word":   "Read a run of non-whitespace characters",
	"digits": "Read a run of ASCII digits",
	"alpha":  "Read a run of letters",
	"alnum":  "Read a run of letters and digits",
	"rest":   "Take the remainder of the line",
	"bool":   "Read true or false",
	"i8":     "Read a signed 8-bit integer",
	"i16":    "Read a signed 16-bit integer",
	"i32":    "Read a signed 32-bit integer",
	"i64":    "Read a signed 64-bit integer",
	"int":    "Read a signed platform-size integer",
	"u8":     "Read an unsigned 8-bit integer",
	"u16":    "Read an unsigned 16-bit integer",
	"u32":    "Read an unsigned 32-bit integer",
	"u64":    "Read an unsigned 64-bit integer",
	"uint":   "Read an unsigned platform-size integer",
	"f32":    "Read a 32-bit float",
	"f64":    "Read a 64-bit float",
}

// OpDoc returns a one-line description of a step operation, or "" for an
// unknown operation.
func OpDoc(op string) string {
	return opDocs[op]
}

// OpTakesArg reports whether op requires an ":arg" suffix.
func OpTakesArg(op string) bool {
	return op == "lit" || op == "char" || op == "until"
}

// Ops returns the names of all step operations.
func Ops() []string {
	return []string{
		"lit", "char", "until", "ws", "word", "digits", "alpha", "alnum", "rest", "bool",
		"i8", "i16", "i32", "i64", "int", "u8", "u16", "u32", "u64", "uint", "f32", "f64",
	}
}

func quoteArg(arg string) string {
	if arg == "" || strings.ContainsAny(arg, "\"\\") || strings.IndexFunc(arg, func(c rune) bool {
		return unicode.IsSpace(c) || !unicode.IsPrint(c)
	}) >= 0 {
		return strconv.Quote(arg)
	}
	return arg
}
