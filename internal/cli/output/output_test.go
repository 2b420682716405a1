package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/leapstack-labs/strscan/internal/recipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleRecords(t *testing.T) []Record {
	t.Helper()
	rc := recipe.MustCompile("lit:HTTP/ version=word code=u16 reason=rest")
	rc.TrimRest = true

	res, err := rc.Run("HTTP/1.1 404 Not Found")
	require.NoError(t, err)

	bad, err := rc.Run("HTTP/1.1 abc")
	require.Error(t, err)

	return []Record{
		{Line: 1, Input: "HTTP/1.1 404 Not Found", Fields: res.Fields},
		{Line: 2, Input: "HTTP/1.1 abc", Fields: bad.Fields, Rest: bad.Rest, Error: err.Error()},
	}
}

func TestRenderer_EffectiveMode(t *testing.T) {
	var buf bytes.Buffer

	assert.Equal(t, ModeText, NewRenderer(&buf, &buf, ModeAuto).EffectiveMode(), "buffers are not terminals")
	assert.Equal(t, ModeText, NewRenderer(&buf, &buf, "").EffectiveMode())
	assert.Equal(t, ModeJSON, NewRenderer(&buf, &buf, ModeJSON).EffectiveMode())
	assert.Equal(t, ModeTable, NewRenderer(&buf, &buf, ModeTable).EffectiveMode())
}

func TestRenderer_Text(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeText)

	require.NoError(t, r.Records(sampleRecords(t)))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `1: version=1.1 code=404 reason="Not Found"`, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `2: version=1.1 error="step 3 (code=u16): malformed number`), lines[1])
}

func TestRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeJSON)

	require.NoError(t, r.Records(sampleRecords(t)))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)

	fields := got[0]["fields"].([]any)
	require.Len(t, fields, 3)
	code := fields[1].(map[string]any)
	assert.Equal(t, "code", code["name"])
	assert.Equal(t, float64(404), code["value"])
	assert.NotContains(t, code, "Span")

	assert.Equal(t, " abc", got[1]["rest"])
	assert.Contains(t, got[1]["error"], "malformed number")
}

func TestRenderer_YAML(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeYAML)

	require.NoError(t, r.Records(sampleRecords(t)))

	var got []Record
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Line)
	assert.Equal(t, "reason", got[0].Fields[2].Name)
	assert.Equal(t, "Not Found", got[0].Fields[2].Value)
	assert.Contains(t, out.String(), "- line: 2\n  input: HTTP/1.1 abc")
}

func TestRenderer_Table(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeTable)

	require.NoError(t, r.Records(sampleRecords(t)))

	s := out.String()
	assert.Contains(t, s, "LINE")
	assert.Contains(t, s, "FIELD")
	assert.Contains(t, s, "Not Found")
	assert.Contains(t, s, "5-8", "span of the version field")
	assert.Contains(t, s, "(error)")
	assert.Contains(t, s, "(2 lines)")

	out.Reset()
	require.NoError(t, r.Records(nil))
	assert.Equal(t, "(0 lines)\n", out.String())
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{"", `""`},
		{"plain", "plain"},
		{"two words", `"two words"`},
		{uint16(404), "404"},
		{-1.5, "-1.5"},
		{true, "true"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}

func TestDiagnostic(t *testing.T) {
	var errOut bytes.Buffer
	r := NewRenderer(&bytes.Buffer{}, &errOut, ModeText)

	r.Diagnostic(Diagnostic{
		Source:  "status.txt",
		Line:    12,
		Input:   "HTTP/1.1 abc\n",
		Offset:  8,
		Message: "malformed number",
	})

	want := "error: malformed number\n" +
		"  --> status.txt:12:9\n" +
		"   |\n" +
		"12 | HTTP/1.1 abc\n" +
		"   |         ^\n"
	assert.Equal(t, want, errOut.String())
}

func TestDiagnostic_UnknownOffset(t *testing.T) {
	d := Diagnostic{Source: "<stdin>", Line: 1, Input: "x", Offset: -1, Message: "boom"}
	got := d.Format(NewStyles(&bytes.Buffer{}))

	assert.Contains(t, got, " --> <stdin>\n")
	assert.NotContains(t, got, "^")
}

func TestRenderer_Warn(t *testing.T) {
	var errOut bytes.Buffer
	NewRenderer(&bytes.Buffer{}, &errOut, ModeText).Warn("skipped 2 lines")
	assert.Equal(t, "warning: skipped 2 lines\n", errOut.String())
}

func TestDiagnostic_WideAndTabs(t *testing.T) {
	d := Diagnostic{Source: "x", Line: 1, Input: "\t名前=x", Offset: len("\t名前="), Message: "bad"}
	got := d.Format(NewStylesWithColor(&bytes.Buffer{}, ColorNever))

	assert.Contains(t, got, " --> x:1:5\n", "columns count characters")
	assert.Contains(t, got, "  | \t     ^\n", "caret pads wide characters to two cells")
}

func TestRenderer_SetColor(t *testing.T) {
	d := Diagnostic{Source: "x", Line: 1, Input: "abc", Offset: 1, Message: "bad"}

	var plain bytes.Buffer
	r := NewRenderer(&bytes.Buffer{}, &plain, ModeText)
	r.SetColor(ColorNever)
	r.Diagnostic(d)
	assert.NotContains(t, plain.String(), "\x1b[")

	var colored bytes.Buffer
	r = NewRenderer(&bytes.Buffer{}, &colored, ModeText)
	r.SetColor(ColorAlways)
	r.Diagnostic(d)
	assert.Contains(t, colored.String(), "\x1b[")
	assert.Contains(t, colored.String(), "bad")
}

func TestRenderer_RecordStreams(t *testing.T) {
	recs := sampleRecords(t)

	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, ModeJSON)
	for _, rec := range recs {
		require.NoError(t, r.Record(rec))
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(recs), "one JSON object per line")
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, float64(1), first["line"])

	out.Reset()
	r = NewRenderer(&out, &bytes.Buffer{}, ModeTable)
	require.NoError(t, r.Record(recs[0]))
	assert.True(t, strings.HasPrefix(out.String(), "1: "), "tables fall back to text")
}
