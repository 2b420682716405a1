package strreader

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/leapstack-labs/strscan/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ParseError
		want string
	}{
		{
			name: "literal mismatch",
			err:  &ParseError{Kind: KindLiteralMismatch, Expected: "HTTP/", Offset: 0},
			want: `literal mismatch at offset 0: expected "HTTP/"`,
		},
		{
			name: "end without expectation",
			err:  &ParseError{Kind: KindUnexpectedEnd, Offset: 7},
			want: "unexpected end of input at offset 7",
		},
		{
			name: "wrapped conversion error",
			err: &ParseError{Kind: KindMalformedNumber, Expected: "uint8", Offset: 2,
				Err: &strconv.NumError{Func: "ParseUint", Num: "300", Err: strconv.ErrRange}},
			want: `malformed number at offset 2: expected "uint8": strconv.ParseUint: parsing "300": value out of range`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestParseError_IsMatchesOnlyItsKind(t *testing.T) {
	sentinels := map[Kind]error{
		KindLiteralMismatch:  ErrLiteralMismatch,
		KindUnexpectedEnd:    ErrUnexpectedEnd,
		KindMalformedNumber:  ErrMalformedNumber,
		KindMalformedBoolean: ErrMalformedBoolean,
		KindMalformedWord:    ErrMalformedWord,
	}

	for kind, sentinel := range sentinels {
		err := fmt.Errorf("context: %w", &ParseError{Kind: kind})
		for other, otherSentinel := range sentinels {
			assert.Equal(t, kind == other, errors.Is(err, otherSentinel), "%s vs %s", kind, other)
		}
		assert.Equal(t, sentinel.Error(), kind.String())
	}

	assert.False(t, errors.Is(&ParseError{}, ErrLiteralMismatch))
	assert.Equal(t, "Kind(42)", Kind(42).String())
}

func TestParseError_Position(t *testing.T) {
	src := "a = 1\nb = x\n"
	r := New(src)
	r.Reset(Mark(10))

	_, err := r.ReadInt()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, token.Position{Line: 2, Column: 5, Offset: 10}, pe.Position(src))
}

type configError struct {
	Field string
	Cause error
}

func (e *configError) Error() string { return e.Field + ": " + e.Cause.Error() }

func TestConvert(t *testing.T) {
	toConfig := func(pe *ParseError) *configError {
		return &configError{Field: "port", Cause: pe}
	}

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Convert(nil, toConfig))
	})

	t.Run("parse error is converted", func(t *testing.T) {
		_, err := New("http").ReadUint16()
		converted := Convert(err, toConfig)

		var ce *configError
		require.ErrorAs(t, converted, &ce)
		assert.Equal(t, "port", ce.Field)
		assert.ErrorIs(t, ce.Cause, ErrMalformedNumber)
	})

	t.Run("wrapped parse error is found", func(t *testing.T) {
		err := fmt.Errorf("line 3: %w", New("").MatchRune('x'))
		var ce *configError
		require.ErrorAs(t, Convert(err, toConfig), &ce)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		_, other := strconv.Atoi("x")
		assert.Same(t, other, Convert(other, toConfig))
	})
}
