package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/strscan/internal/cli/config"
	"github.com/leapstack-labs/strscan/internal/cli/output"
	"github.com/leapstack-labs/strscan/internal/recipe"
	"github.com/spf13/cobra"
)

const replPrompt = "strscan> "

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Try recipes interactively",
		Long: `Start an interactive session. Every line you type is scanned with the
current recipe and the extracted fields are printed.

Type .help for the list of session commands.`,
		Args: cobra.NoArgs,
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)

	sess, err := newSession(cmdCtx.Cfg, cmdCtx.Renderer, cmdCtx.Logger)
	if err != nil {
		return err
	}

	names := recipe.Names(cmdCtx.Cfg.Recipes)
	namedItems := make([]readline.PrefixCompleterInterface, 0, len(names))
	for _, name := range names {
		namedItems = append(namedItems, readline.PcItem(name))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     cmdCtx.Cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem(".recipe"),
			readline.PcItem(".named", namedItems...),
			readline.PcItem(".show"),
			readline.PcItem(".help"),
			readline.PcItem(".quit"),
			readline.PcItem(".exit"),
		),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "strscan REPL (recipe: %s)\n", sess.recipe)
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if sess.handleLine(line) {
			return nil
		}
	}
}

// session is the state of one REPL run.
type session struct {
	cfg      *config.Config
	r        *output.Renderer
	logger   *slog.Logger
	recipe   *recipe.Recipe
	lineNo   int
	trimRest bool
}

func newSession(cfg *config.Config, r *output.Renderer, logger *slog.Logger) (*session, error) {
	rc, err := cfg.ActiveRecipe()
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, r: r, logger: logger, recipe: rc, trimRest: cfg.TrimRest}, nil
}

// handleLine processes one line of input and reports whether the session
// should end.
func (s *session) handleLine(line string) bool {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return false
	}
	if strings.HasPrefix(line, ".") {
		return s.dotCommand(line)
	}

	s.lineNo++
	res, err := s.recipe.Run(line)
	rec := output.Record{Line: s.lineNo, Input: line, Fields: res.Fields}
	if err != nil {
		rec.Rest = res.Rest
		rec.Error = err.Error()
		s.r.Diagnostic(output.Diagnostic{
			Source:  "<repl>",
			Line:    s.lineNo,
			Input:   line,
			Offset:  stepOffset(err),
			Message: err.Error(),
		})
	}
	s.logger.Debug("repl line", "line", s.lineNo, "fields", len(res.Fields), "error", err)

	if renderErr := s.r.Records([]output.Record{rec}); renderErr != nil {
		s.r.Warn(renderErr.Error())
	}
	return false
}

func (s *session) dotCommand(line string) bool {
	command, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	out := s.r.Out()

	switch strings.ToLower(command) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(out)

	case ".show":
		_, _ = fmt.Fprintln(out, s.recipe)

	case ".recipe":
		if arg == "" {
			s.r.Warn("usage: .recipe <steps>")
			return false
		}
		rc, err := recipe.Compile(arg)
		if err != nil {
			s.r.Diagnostic(output.Diagnostic{Source: ".recipe", Line: 1, Input: arg, Offset: compileOffset(err), Message: err.Error()})
			return false
		}
		s.setRecipe(rc)

	case ".named":
		if arg == "" {
			s.r.Warn("usage: .named <name>")
			return false
		}
		src, ok := recipe.Lookup(arg, s.cfg.Recipes)
		if !ok {
			s.r.Warn(fmt.Sprintf("unknown recipe %q", arg))
			return false
		}
		s.setRecipe(recipe.MustCompile(src))

	default:
		s.r.Warn(fmt.Sprintf("unknown command %s (type .help for commands)", command))
	}
	return false
}

func (s *session) setRecipe(rc *recipe.Recipe) {
	rc.TrimRest = s.trimRest
	s.recipe = rc
	s.logger.Debug("recipe changed", "recipe", rc.String())
	_, _ = fmt.Fprintf(s.r.Out(), "recipe: %s\n", rc)
}

func compileOffset(err error) int {
	var ce *recipe.CompileError
	if errors.As(err, &ce) {
		return ce.Offset
	}
	return -1
}

func printREPLHelp(w io.Writer) {
	help := `Commands:
  .recipe <steps>  Replace the current recipe
  .named <name>    Use a named recipe (see 'strscan recipes')
  .show            Print the current recipe
  .help            Show this help message
  .quit / .exit    Exit the REPL

Any other line is scanned with the current recipe.`
	_, _ = fmt.Fprintln(w, help)
}
