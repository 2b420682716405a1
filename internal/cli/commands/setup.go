// Package commands implements the strscan subcommands.
package commands

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/leapstack-labs/strscan/internal/cli/config"
	"github.com/leapstack-labs/strscan/internal/cli/output"
	"github.com/spf13/cobra"
)

// maxLineSize bounds the length of a single input line.
const maxLineSize = 1 << 20

// stdinName is the source name used for standard input in diagnostics.
const stdinName = "<stdin>"

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))
	if cfg.Color != "" && cfg.Color != output.ColorAuto {
		r.SetColor(cfg.Color)
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or the defaults when no
// configuration has been loaded (e.g. a command executed on its own).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.DefaultConfig()
}

// input is a named line source.
type input struct {
	name string
	r    io.Reader
}

// eachLine calls fn for every line of every input. Inputs named by path are
// opened in order; no paths means standard input. Iteration stops at the
// first error returned by fn.
func eachLine(cmd *cobra.Command, paths []string, fn lineFunc) error {
	inputs := []input{{name: stdinName, r: cmd.InOrStdin()}}
	if len(paths) > 0 {
		inputs = inputs[:0]
		for _, p := range paths {
			inputs = append(inputs, input{name: p})
		}
	}

	for _, in := range inputs {
		if err := scanInput(cmd, in, fn); err != nil {
			return err
		}
	}
	return nil
}

func scanInput(cmd *cobra.Command, in input, fn lineFunc) error {
	r := in.r
	if r == nil {
		f, err := os.Open(in.name)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for sc.Scan() {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		lineNo++
		if err := fn(in.name, lineNo, sc.Text()); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", in.name, err)
	}
	return nil
}
