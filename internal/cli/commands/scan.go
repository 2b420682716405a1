package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/strscan/internal/cli/output"
	"github.com/leapstack-labs/strscan/internal/recipe"
	"github.com/spf13/cobra"
)

// ErrLinesFailed is returned by scan --keep-going when some lines failed.
var ErrLinesFailed = errors.New("some lines did not match the recipe")

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [file...]",
		Short: "Extract fields from each input line with a recipe",
		Long: `Scan applies a recipe to every line of the given files (or standard input)
and prints the extracted fields.

A recipe is a list of steps separated by whitespace. Each step is one reader
operation, optionally prefixed with a field name:

  lit:TEXT    match TEXT exactly (quote with "..." to include spaces)
  char:C      match the single character C
  until:C     read up to (not including) the character C
  ws          skip whitespace
  word        read a run of non-whitespace characters
  digits, alpha, alnum
              read a run of digits, letters, or letters and digits
  i8 i16 i32 i64 int u8 u16 u32 u64 uint f32 f64
              read a number (leading whitespace is skipped)
  bool        read true or false
  rest        take the remainder of the line

Run 'strscan recipes' to list the named recipes.`,
		Example: `  # Parse HTTP status lines with the built-in recipe
  printf 'HTTP/1.1 404 Not Found\n' | strscan scan --named http-status

  # Inline recipe over a log file, as JSON
  strscan scan --recipe 'ts=word ws level=word ws msg=rest' -o json app.log

  # Report every failing line instead of stopping at the first
  strscan scan --keep-going --recipe 'k=until:= char:= v=int' settings.txt

  # Keep scanning lines appended to a log and record them for 'strscan history'
  strscan scan --follow --keep-going --db runs.db --named key-value settings.log`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args)
		},
	}

	cmd.Flags().String("recipe", "", "Inline recipe (overrides --named)")
	cmd.Flags().String("named", "", "Named recipe to use (default: http-status)")
	cmd.Flags().Bool("trim-rest", true, "Trim whitespace from rest fields")
	cmd.Flags().Bool("keep-going", false, "Continue after lines that do not match")
	cmd.Flags().Bool("follow", false, "Keep scanning lines appended to the input files")
	cmd.Flags().String("db", "", "Record the run in this SQLite database")

	_ = cmd.RegisterFlagCompletionFunc("named", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return recipe.Names(getConfig().Recipes), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runScan(cmd *cobra.Command, args []string) (err error) {
	cmdCtx := NewCommandContext(cmd)
	cfg, logger, r := cmdCtx.Cfg, cmdCtx.Logger, cmdCtx.Renderer
	ctx := cmd.Context()

	follow, _ := cmd.Flags().GetBool("follow")
	if follow && len(args) == 0 {
		return errors.New("--follow needs at least one input file")
	}

	rc, err := cfg.ActiveRecipe()
	if err != nil {
		return err
	}
	logger.Debug("compiled recipe", "recipe", rc.String(), "trim_rest", rc.TrimRest)

	var (
		records []output.Record
		total   int
		failed  int
		rec     *runRecorder
	)

	if cfg.DB != "" {
		rec, err = openRunRecorder(ctx, cfg.DB, rc.String(), inputName(args), logger)
		if err != nil {
			return err
		}
		defer func() {
			if ferr := rec.finish(total, failed, err); ferr != nil && err == nil {
				err = ferr
			}
		}()
	}

	// Following never ends on its own, so records are written as they come.
	emit := func(o output.Record) error {
		records = append(records, o)
		return nil
	}
	if follow {
		emit = r.Record
	}

	scanLine := func(src string, lineNo int, line string) error {
		total++
		res, runErr := rc.Run(line)
		o := output.Record{Line: lineNo, Input: line, Fields: res.Fields}
		if runErr != nil {
			failed++
			o.Rest = res.Rest
			o.Error = runErr.Error()
			logger.Debug("line failed", "source", src, "line", lineNo, "error", runErr)
		} else {
			logger.Debug("line matched", "source", src, "line", lineNo, "fields", len(res.Fields))
		}

		if err := emit(o); err != nil {
			return err
		}
		if rec != nil {
			if err := rec.add(ctx, src, o); err != nil {
				return err
			}
		}
		if runErr == nil {
			return nil
		}

		r.Diagnostic(output.Diagnostic{
			Source:  src,
			Line:    lineNo,
			Input:   line,
			Offset:  stepOffset(runErr),
			Message: runErr.Error(),
		})
		if cfg.KeepGoing {
			return nil
		}
		return fmt.Errorf("%s:%d: %w", src, lineNo, runErr)
	}

	if follow {
		err = followFiles(ctx, logger, args, scanLine)
	} else {
		err = eachLine(cmd, args, scanLine)
		if renderErr := r.Records(records); renderErr != nil {
			return renderErr
		}
	}
	if err != nil {
		return err
	}

	logger.Info("scan finished", "lines", total, "failed", failed)
	if failed > 0 {
		r.Warn(fmt.Sprintf("%d of %d lines did not match", failed, total))
		return ErrLinesFailed
	}
	return nil
}

// inputName describes the inputs of a run for the history.
func inputName(paths []string) string {
	if len(paths) == 0 {
		return stdinName
	}
	return strings.Join(paths, ",")
}

func stepOffset(err error) int {
	var se *recipe.StepError
	if errors.As(err, &se) {
		return se.Offset()
	}
	return -1
}
