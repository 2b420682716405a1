package strreader_test

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/leapstack-labs/strscan/pkg/strreader"
)

// errBadStatus is the single error type of the status line parser below.
var errBadStatus = errors.New("bad status line")

func parseStatusLine(line string) (uint16, string, error) {
	toBadStatus := func(pe *strreader.ParseError) error {
		return fmt.Errorf("%w: %v", errBadStatus, pe)
	}

	r := strreader.New(line)
	if err := r.MatchString("HTTP/"); err != nil {
		return 0, "", strreader.Convert(err, toBadStatus)
	}

	switch r.ReadWord() {
	case "1.0", "1.1":
	default:
		return 0, "", errBadStatus
	}

	code, err := r.ReadUint16()
	if err != nil {
		return 0, "", strreader.Convert(err, toBadStatus)
	}
	return code, strings.TrimSpace(r.Rest()), nil
}

func Example() {
	code, reason, err := parseStatusLine("HTTP/1.1 404 Not Found")
	fmt.Println(code, reason, err)

	_, _, err = parseStatusLine("HTTP/1.1 abc")
	fmt.Println(errors.Is(err, errBadStatus))
	// Output:
	// 404 Not Found <nil>
	// true
}

func ExampleReader_Mark() {
	r := strreader.New("width=80")

	// Try "height=" first and fall back to "width=".
	m := r.Mark()
	if err := r.MatchString("height"); err != nil {
		r.Reset(m)
	}
	key := r.ReadUntil(func(c rune) bool { return c == '=' })
	_ = r.MatchRune('=')
	n, _ := r.ReadInt()

	fmt.Println(key, n)
	// Output: width 80
}

func ExampleReader_ReadWhile() {
	r := strreader.New("abc123")
	letters := r.ReadWhile(unicode.IsLetter)
	digits := r.ReadWhile(unicode.IsDigit)

	fmt.Printf("%q %q %v\n", letters, digits, r.IsEmpty())
	// Output: "abc" "123" true
}

func ExampleParse() {
	r := strreader.New("3h20m remaining")
	d, err := strreader.Parse(r, func(s string) (int, error) {
		var h, m int
		_, err := fmt.Sscanf(s, "%dh%dm", &h, &m)
		return h*60 + m, err
	})

	fmt.Println(d, err, strings.TrimSpace(r.Rest()))
	// Output: 200 <nil> remaining
}
