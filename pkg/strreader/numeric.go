package strreader

import (
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Numeric and boolean reads skip leading whitespace before the value. The
// skipped whitespace is consumed only when the read succeeds.

// ReadInt8 reads a decimal integer as int8.
func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.readInt(8, "int8")
	return int8(v), err
}

// ReadInt16 reads a decimal integer as int16.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.readInt(16, "int16")
	return int16(v), err
}

// ReadInt32 reads a decimal integer as int32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.readInt(32, "int32")
	return int32(v), err
}

// ReadInt64 reads a decimal integer as int64.
func (r *Reader) ReadInt64() (int64, error) {
	return r.readInt(64, "int64")
}

// ReadInt reads a decimal integer as int.
func (r *Reader) ReadInt() (int, error) {
	v, err := r.readInt(strconv.IntSize, "int")
	return int(v), err
}

// ReadUint8 reads a decimal integer as uint8.
func (r *Reader) ReadUint8() (uint8, error) {
	v, err := r.readUint(8, "uint8")
	return uint8(v), err
}

// ReadUint16 reads a decimal integer as uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	v, err := r.readUint(16, "uint16")
	return uint16(v), err
}

// ReadUint32 reads a decimal integer as uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	v, err := r.readUint(32, "uint32")
	return uint32(v), err
}

// ReadUint64 reads a decimal integer as uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	return r.readUint(64, "uint64")
}

// ReadUint reads a decimal integer as uint.
func (r *Reader) ReadUint() (uint, error) {
	v, err := r.readUint(strconv.IntSize, "uint")
	return uint(v), err
}

// ReadFloat32 reads a decimal floating point number as float32.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.readFloat(32, "float32")
	return float32(v), err
}

// ReadFloat64 reads a decimal floating point number as float64.
func (r *Reader) ReadFloat64() (float64, error) {
	return r.readFloat(64, "float64")
}

// ReadBool reads the literal true or false. The literal must not be
// followed by a letter, digit or underscore.
func (r *Reader) ReadBool() (bool, error) {
	start := r.pos + whitespaceLen(r.src[r.pos:])
	rest := r.src[start:]
	if rest == "" {
		return false, newError(KindUnexpectedEnd, "bool", r.pos, nil)
	}

	var v bool
	var n int
	switch {
	case strings.HasPrefix(rest, "true"):
		v, n = true, len("true")
	case strings.HasPrefix(rest, "false"):
		v, n = false, len("false")
	default:
		return false, newError(KindMalformedBoolean, "bool", r.pos, nil)
	}
	if c, _ := utf8.DecodeRuneInString(rest[n:]); n < len(rest) && isWordChar(c) {
		return false, newError(KindMalformedBoolean, "bool", r.pos, nil)
	}

	r.pos = start + n
	return v, nil
}

// Parse reads the next whitespace-delimited word and converts it with
// parse. Leading whitespace is skipped. The cursor is left unchanged if the
// input is exhausted or parse fails.
func Parse[T any](r *Reader, parse func(string) (T, error)) (T, error) {
	var zero T
	typ := reflect.TypeFor[T]().String()
	start := r.pos + whitespaceLen(r.src[r.pos:])
	if start == len(r.src) {
		return zero, newError(KindUnexpectedEnd, typ, r.pos, nil)
	}

	rest := r.src[start:]
	n := strings.IndexFunc(rest, unicode.IsSpace)
	if n < 0 {
		n = len(rest)
	}
	v, err := parse(rest[:n])
	if err != nil {
		return zero, newError(KindMalformedWord, typ, r.pos, err)
	}

	r.pos = start + n
	return v, nil
}

func (r *Reader) readInt(bitSize int, typ string) (int64, error) {
	start, end, err := r.scanNumber(typ, scanInteger(true))
	if err != nil {
		return 0, err
	}
	v, perr := strconv.ParseInt(r.src[start:end], 10, bitSize)
	if perr != nil {
		return 0, newError(KindMalformedNumber, typ, r.pos, perr)
	}
	r.pos = end
	return v, nil
}

func (r *Reader) readUint(bitSize int, typ string) (uint64, error) {
	start, end, err := r.scanNumber(typ, scanInteger(false))
	if err != nil {
		return 0, err
	}
	// ParseUint does not accept a sign.
	digits := strings.TrimPrefix(r.src[start:end], "+")
	v, perr := strconv.ParseUint(digits, 10, bitSize)
	if perr != nil {
		return 0, newError(KindMalformedNumber, typ, r.pos, perr)
	}
	r.pos = end
	return v, nil
}

func (r *Reader) readFloat(bitSize int, typ string) (float64, error) {
	start, end, err := r.scanNumber(typ, scanFloat)
	if err != nil {
		return 0, err
	}
	v, perr := strconv.ParseFloat(r.src[start:end], bitSize)
	if perr != nil {
		return 0, newError(KindMalformedNumber, typ, r.pos, perr)
	}
	r.pos = end
	return v, nil
}

// scanNumber locates the numeric literal following any leading whitespace.
// It returns the byte range of the literal without moving the cursor.
func (r *Reader) scanNumber(typ string, scan func(string) int) (int, int, error) {
	start := r.pos + whitespaceLen(r.src[r.pos:])
	if start == len(r.src) {
		return 0, 0, newError(KindUnexpectedEnd, typ, r.pos, nil)
	}
	n := scan(r.src[start:])
	if n == 0 {
		return 0, 0, newError(KindMalformedNumber, typ, r.pos, nil)
	}
	return start, start + n, nil
}

// scanInteger returns a scanner for [sign] digit+. A minus sign is only
// accepted when signed is true.
func scanInteger(signed bool) func(string) int {
	return func(s string) int {
		i := 0
		if i < len(s) && (s[i] == '+' || (signed && s[i] == '-')) {
			i++
		}
		d := digitsLen(s[i:])
		if d == 0 {
			return 0
		}
		return i + d
	}
}

// scanFloat returns the length of the longest prefix of s matching
// [+-] digit* [. digit*] [(e|E) [+-] digit+] with at least one mantissa digit.
func scanFloat(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	mantissa := digitsLen(s[i:])
	i += mantissa
	if i < len(s) && s[i] == '.' {
		frac := digitsLen(s[i+1:])
		if mantissa+frac > 0 {
			i += 1 + frac
			mantissa += frac
		}
	}
	if mantissa == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if d := digitsLen(s[j:]); d > 0 {
			i = j + d
		}
	}
	return i
}

func digitsLen(s string) int {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isWordChar(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}
