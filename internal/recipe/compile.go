package recipe

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/strscan/pkg/strreader"
)

// CompileError describes an invalid recipe.
type CompileError struct {
	Offset  int
	Message string
	Err     error
}

func (e *CompileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recipe error at offset %d: %s: %v", e.Offset, e.Message, e.Err)
	}
	return fmt.Sprintf("recipe error at offset %d: %s", e.Offset, e.Message)
}

// Unwrap returns the underlying reader error, if any.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// Compile parses recipe source into a Recipe.
func Compile(src string) (*Recipe, error) {
	r := strreader.New(src)
	rc := &Recipe{}

	for {
		r.SkipWhitespace()
		if r.IsEmpty() {
			break
		}
		step, err := compileStep(r)
		if err != nil {
			return nil, err
		}
		if c, ok := r.Peek(); ok && !unicode.IsSpace(c) {
			return nil, &CompileError{Offset: r.Pos(), Message: fmt.Sprintf("unexpected %q after step %s", c, step)}
		}
		rc.Steps = append(rc.Steps, step)
	}

	if len(rc.Steps) == 0 {
		return nil, &CompileError{Offset: 0, Message: "recipe has no steps"}
	}
	return rc, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Recipe {
	rc, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return rc
}

func compileStep(r *strreader.Reader) (Step, error) {
	var step Step

	// Optional "name=" prefix.
	m := r.Mark()
	if name := r.ReadWhile(isIdentChar); name != "" && r.MatchRune('=') == nil {
		step.Name = name
	} else {
		r.Reset(m)
	}

	start := r.Pos()
	step.Op = r.ReadWhile(isIdentChar)
	exec, ok := ops[step.Op]
	if !ok {
		word := step.Op
		if word == "" {
			word = r.ReadWord()
		}
		return Step{}, &CompileError{Offset: start, Message: fmt.Sprintf("unknown step %q", word)}
	}
	step.exec = exec

	if !OpTakesArg(step.Op) {
		return step, nil
	}

	if err := r.MatchRune(':'); err != nil {
		return Step{}, &CompileError{Offset: r.Pos(), Message: fmt.Sprintf("step %s needs an argument", step.Op), Err: err}
	}
	argStart := r.Pos()
	arg, err := readArg(r)
	if err != nil {
		return Step{}, err
	}
	if step.Op != "lit" && utf8.RuneCountInString(arg) != 1 {
		return Step{}, &CompileError{Offset: argStart, Message: fmt.Sprintf("step %s needs a single character, got %q", step.Op, arg)}
	}
	step.Arg = arg
	return step, nil
}

// readArg reads a bare word or a double-quoted Go string literal.
func readArg(r *strreader.Reader) (string, error) {
	start := r.Pos()
	if c, ok := r.Peek(); !ok || c != '"' {
		arg := r.ReadWord()
		if arg == "" {
			return "", &CompileError{Offset: start, Message: "missing argument"}
		}
		return arg, nil
	}

	r.SkipRune()
	for {
		r.ReadUntil(func(c rune) bool { return c == '"' || c == '\\' })
		c, err := r.ReadRune()
		if err != nil {
			return "", &CompileError{Offset: start, Message: "unterminated quoted argument", Err: err}
		}
		if c == '"' {
			break
		}
		// Skip the escaped character.
		r.SkipRune()
	}

	quoted := r.Source()[start:r.Pos()]
	arg, err := strconv.Unquote(quoted)
	if err != nil {
		return "", &CompileError{Offset: start, Message: fmt.Sprintf("invalid quoted argument %s", quoted), Err: err}
	}
	return arg, nil
}

func isIdentChar(c rune) bool {
	return c == '_' || c == '-' || unicode.IsLetter(c) || unicode.IsDigit(c)
}
