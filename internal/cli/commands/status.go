package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/strscan/internal/cli/output"
	"github.com/leapstack-labs/strscan/internal/recipe"
	"github.com/leapstack-labs/strscan/pkg/httpline"
	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [line...]",
		Short: "Parse HTTP status lines",
		Long: `Parse HTTP response status lines such as "HTTP/1.1 404 Not Found".

Lines are taken from the arguments, or from standard input when none are
given. With --headers, standard input is read as a response head: the first
line is the status line and the following lines up to the first blank line
are header fields.`,
		Example: `  strscan status 'HTTP/1.1 200 OK' 'HTTP/2 204'
  curl -sI https://example.com | strscan status --headers -o json`,
		RunE: runStatus,
	}

	cmd.Flags().Bool("headers", false, "Read a full response head from standard input")

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	logger, r := cmdCtx.Logger, cmdCtx.Renderer
	headers, _ := cmd.Flags().GetBool("headers")

	var records []output.Record
	fail := func(src string, lineNo int, line string, err error) error {
		records = append(records, output.Record{Line: lineNo, Input: line, Error: err.Error()})
		offset := -1
		var he *httpline.Error
		if errors.As(err, &he) {
			offset = he.Offset
		}
		r.Diagnostic(output.Diagnostic{Source: src, Line: lineNo, Input: line, Offset: offset, Message: err.Error()})
		return fmt.Errorf("%s:%d: %w", src, lineNo, err)
	}

	parseStatus := func(src string, lineNo int, line string) error {
		sl, err := httpline.ParseStatusLine(strings.TrimRight(line, "\r"))
		if err != nil {
			return fail(src, lineNo, line, err)
		}
		logger.Debug("parsed status line", "source", src, "line", lineNo, "code", sl.Code)
		records = append(records, output.Record{Line: lineNo, Input: line, Fields: statusFields(sl)})
		return nil
	}

	var err error
	switch {
	case len(args) > 0:
		for i, line := range args {
			if err = parseStatus("<args>", i+1, line); err != nil {
				break
			}
		}
	case headers:
		done := false
		err = eachLine(cmd, nil, func(src string, lineNo int, line string) error {
			line = strings.TrimRight(line, "\r")
			if done {
				return nil
			}
			if lineNo == 1 {
				return parseStatus(src, lineNo, line)
			}
			if strings.TrimSpace(line) == "" {
				done = true
				return nil
			}
			h, herr := httpline.ParseHeaderLine(line)
			if herr != nil {
				return fail(src, lineNo, line, herr)
			}
			records = append(records, output.Record{Line: lineNo, Input: line, Fields: []recipe.Field{
				{Name: "name", Value: h.Name},
				{Name: "value", Value: h.Value},
			}})
			return nil
		})
	default:
		err = eachLine(cmd, nil, func(src string, lineNo int, line string) error {
			if strings.TrimSpace(line) == "" {
				return nil
			}
			return parseStatus(src, lineNo, line)
		})
	}

	if renderErr := r.Records(records); renderErr != nil {
		return renderErr
	}
	return err
}

func statusFields(sl httpline.StatusLine) []recipe.Field {
	return []recipe.Field{
		{Name: "proto", Value: sl.Proto},
		{Name: "code", Value: sl.Code},
		{Name: "reason", Value: sl.Reason},
	}
}
