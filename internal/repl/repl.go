// ABOUTME: Line-oriented interactive loop driving the calculator command registry
// ABOUTME: Reads commands and operands from an io.Reader; EOF ends the session cleanly

package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mauromedda/calc-go/internal/calculation"
	"github.com/mauromedda/calc-go/internal/commands"
	"github.com/mauromedda/calc-go/internal/history"
	clog "github.com/mauromedda/calc-go/internal/log"
	"github.com/mauromedda/calc-go/internal/metrics"
	"github.com/mauromedda/calc-go/internal/operation"
	"github.com/mauromedda/calc-go/internal/validator"
)

const (
	banner     = "Calculator started. Type 'help' for commands."
	prompt     = "\nEnter command: "
	terminated = "\nInput terminated. Exiting..."
)

// Options configures a REPL.
type Options struct {
	In  io.Reader
	Out io.Writer

	// Metrics is optional; when set, undo/redo and failures are counted.
	Metrics *metrics.Metrics

	// Color enables lipgloss styling and glamour-rendered help. Set it only
	// when Out is a terminal.
	Color bool

	// Width is the terminal width used to wrap help. Zero means 80.
	Width int
}

// REPL is an interactive calculator session.
type REPL struct {
	in       *bufio.Scanner
	out      io.Writer
	commands *commands.Registry
	ctx      *commands.Context
	styles   styles
}

// New creates a REPL around calc.
func New(calc *history.Calculator, opts Options) *REPL {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	r := &REPL{
		in:       bufio.NewScanner(opts.In),
		out:      opts.Out,
		commands: commands.NewRegistry(calc.Registry().Names()),
		styles:   newStyles(opts.Out, opts.Color),
	}
	r.ctx = &commands.Context{
		Calc:          calc,
		Out:           opts.Out,
		ReadLine:      r.readLine,
		Metrics:       opts.Metrics,
		FormatHistory: formatHistory,
	}
	if opts.Color {
		md := newMarkdownRenderer(opts.Width)
		r.ctx.RenderMarkdown = md.Render
	}
	return r
}

// Run reads commands until exit or end of input. It returns an error only
// when reading input fails.
func (r *REPL) Run() error {
	r.println(banner)
	for {
		line, err := r.readLine(prompt)
		if errors.Is(err, io.EOF) {
			r.println(terminated)
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading command: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		out, err := r.commands.Dispatch(r.ctx, line)
		switch {
		case errors.Is(err, commands.ErrExit):
			r.println(out)
			return nil
		case errors.Is(err, io.EOF):
			r.println(terminated)
			return nil
		case err != nil:
			r.printError(err)
		default:
			r.printOutput(out)
		}
	}
}

func (r *REPL) readLine(p string) (string, error) {
	fmt.Fprint(r.out, p)
	if !r.in.Scan() {
		if err := r.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(r.in.Text(), "\r"), nil
}

func (r *REPL) printOutput(out string) {
	if strings.HasPrefix(out, "Result: ") {
		r.println(r.styles.result.paint(out))
		return
	}
	if heading, rest, ok := strings.Cut(out, "\n"); ok && strings.HasSuffix(heading, ":") {
		r.println(r.styles.heading.paint(heading) + "\n" + rest)
		return
	}
	r.println(out)
}

func (r *REPL) printError(err error) {
	var unknown *commands.UnknownCommandError
	if errors.As(err, &unknown) {
		msg := unknown.Error()
		if len(unknown.Suggestions) > 0 {
			msg += fmt.Sprintf("\nDid you mean: %s?", strings.Join(unknown.Suggestions, ", "))
		}
		r.println(msg)
		return
	}

	if isUserError(err) {
		r.println(r.styles.err.paint("Error: " + err.Error()))
		return
	}
	clog.Error("unexpected error: %v", err)
	r.println(r.styles.err.paint("Unexpected error: " + err.Error()))
}

// isUserError reports errors caused by input rather than by the program.
func isUserError(err error) bool {
	var valErr *validator.ValidationError
	var calcErr *calculation.Error
	return errors.As(err, &valErr) ||
		errors.As(err, &calcErr) ||
		errors.Is(err, operation.ErrUnknownOperation)
}

func (r *REPL) println(s string) {
	fmt.Fprintln(r.out, s)
}
