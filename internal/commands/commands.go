// ABOUTME: REPL command registry and dispatch for the interactive calculator
// ABOUTME: Provides help, history, clear, undo, redo, save, load, snapshot, exit and one command per operation

package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mauromedda/calc-go/internal/history"
	"github.com/mauromedda/calc-go/internal/metrics"
)

// ErrExit is returned by the exit command after its farewell output.
var ErrExit = errors.New("exit requested")

// Command represents one REPL command.
type Command struct {
	Name        string
	Description string
	Execute     func(ctx *Context, args string) (string, error)
}

// Context provides access to calculator state for commands.
type Context struct {
	Calc *history.Calculator

	// Out receives interim output such as operand prompts. Nilable.
	Out io.Writer

	// ReadLine prints prompt and returns the next input line. Must return
	// io.EOF when input is exhausted. Operation commands fail without it.
	ReadLine func(prompt string) (string, error)

	// Metrics counts calculations, failures and undo/redo steps. Nilable.
	Metrics *metrics.Metrics

	// RenderMarkdown renders help markdown for a terminal. Nilable; help
	// falls back to plain text.
	RenderMarkdown func(md string) string

	// FormatHistory renders history lines. Nilable; defaults to "1. entry".
	FormatHistory func(lines []string) string
}

// Registry holds all registered REPL commands.
type Registry struct {
	commands map[string]*Command
	opNames  []string
}

// NewRegistry creates a registry with the core commands plus one command
// for each operation key in opNames.
func NewRegistry(opNames []string) *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		opNames:  append([]string(nil), opNames...),
	}
	r.registerCoreCommands()
	for _, name := range opNames {
		r.Register(operationCommand(name))
	}
	return r
}

// Register adds or replaces cmd.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
}

// Get returns a command by name.
// The second return value indicates whether the name was found.
func (r *Registry) Get(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// List returns all commands sorted by name for deterministic output.
func (r *Registry) List() []*Command {
	result := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		result = append(result, cmd)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Names returns all command names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch parses a "command args" line, looks up the command, and executes
// it. Command names are case-insensitive. An unknown name yields an
// *UnknownCommandError carrying close matches.
func (r *Registry) Dispatch(ctx *Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	parts := strings.SplitN(input, " ", 2)
	name := strings.ToLower(parts[0])
	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	cmd, ok := r.commands[name]
	if !ok {
		return "", &UnknownCommandError{Name: name, Suggestions: r.Suggest(name)}
	}
	return cmd.Execute(ctx, args)
}

// UnknownCommandError reports input that names no registered command.
type UnknownCommandError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("Unknown command: '%s'. Type 'help' for available commands.", e.Name)
}

// registerCoreCommands adds all built-in commands to the registry.
func (r *Registry) registerCoreCommands() {
	core := []*Command{
		{
			Name:        "help",
			Description: "Show available commands",
			Execute: func(ctx *Context, _ string) (string, error) {
				if ctx.RenderMarkdown != nil {
					return ctx.RenderMarkdown(r.helpMarkdown()), nil
				}
				return r.helpText(), nil
			},
		},
		{
			Name:        "history",
			Description: "Show calculation history",
			Execute: func(ctx *Context, _ string) (string, error) {
				lines := ctx.Calc.ShowHistory()
				if len(lines) == 0 {
					return "No calculations in history", nil
				}
				format := ctx.FormatHistory
				if format == nil {
					format = numbered
				}
				return "Calculation History:\n" + format(lines), nil
			},
		},
		{
			Name:        "clear",
			Description: "Clear calculation history",
			Execute: func(ctx *Context, _ string) (string, error) {
				ctx.Calc.Clear()
				return "History cleared", nil
			},
		},
		{
			Name:        "undo",
			Description: "Undo the last calculation",
			Execute: func(ctx *Context, _ string) (string, error) {
				if !ctx.Calc.Undo() {
					return "Nothing to undo", nil
				}
				if ctx.Metrics != nil {
					ctx.Metrics.RecordUndo()
				}
				return "Operation undone", nil
			},
		},
		{
			Name:        "redo",
			Description: "Redo the last undone calculation",
			Execute: func(ctx *Context, _ string) (string, error) {
				if !ctx.Calc.Redo() {
					return "Nothing to redo", nil
				}
				if ctx.Metrics != nil {
					ctx.Metrics.RecordRedo()
				}
				return "Operation redone", nil
			},
		},
		{
			Name:        "save",
			Description: "Save calculation history to file",
			Execute: func(ctx *Context, _ string) (string, error) {
				if err := ctx.Calc.SaveHistory(); err != nil {
					return fmt.Sprintf("Error saving history: %v", err), nil
				}
				return "History saved successfully", nil
			},
		},
		{
			Name:        "load",
			Description: "Load calculation history from file",
			Execute: func(ctx *Context, _ string) (string, error) {
				if err := ctx.Calc.LoadHistory(); err != nil {
					return fmt.Sprintf("Error loading history: %v", err), nil
				}
				return "History loaded successfully", nil
			},
		},
		{
			Name:        "snapshot",
			Description: "Print the current history as JSON",
			Execute: func(ctx *Context, _ string) (string, error) {
				data, err := ctx.Calc.Snapshot().MarshalJSON()
				if err != nil {
					return "", err
				}
				return string(data), nil
			},
		},
		{
			Name:        "exit",
			Description: "Exit the calculator",
			Execute: func(ctx *Context, _ string) (string, error) {
				var b strings.Builder
				if err := ctx.Calc.SaveHistory(); err != nil {
					fmt.Fprintf(&b, "Warning: Could not save history: %v\n", err)
				} else {
					b.WriteString("History saved successfully.\n")
				}
				b.WriteString("Goodbye!")
				return b.String(), ErrExit
			},
		},
	}

	for _, cmd := range core {
		r.commands[cmd.Name] = cmd
	}
}

func (r *Registry) helpText() string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	if len(r.opNames) > 0 {
		fmt.Fprintf(&b, "  %s - Perform calculations\n", strings.Join(r.opNames, ", "))
	}
	for _, cmd := range r.coreList() {
		fmt.Fprintf(&b, "  %s - %s\n", cmd.Name, cmd.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Registry) helpMarkdown() string {
	var b strings.Builder
	b.WriteString("# Available commands\n\n")
	if len(r.opNames) > 0 {
		quoted := make([]string, len(r.opNames))
		for i, n := range r.opNames {
			quoted[i] = "`" + n + "`"
		}
		fmt.Fprintf(&b, "- %s: perform calculations\n", strings.Join(quoted, ", "))
	}
	for _, cmd := range r.coreList() {
		fmt.Fprintf(&b, "- `%s`: %s\n", cmd.Name, cmd.Description)
	}
	return b.String()
}

// coreList returns non-operation commands in help order.
func (r *Registry) coreList() []*Command {
	order := []string{"history", "clear", "undo", "redo", "save", "load", "snapshot", "help", "exit"}
	seen := make(map[string]bool, len(order))
	var out []*Command
	for _, name := range order {
		if cmd, ok := r.commands[name]; ok {
			out = append(out, cmd)
			seen[name] = true
		}
	}
	ops := make(map[string]bool, len(r.opNames))
	for _, n := range r.opNames {
		ops[n] = true
	}
	for _, cmd := range r.List() {
		if !seen[cmd.Name] && !ops[cmd.Name] {
			out = append(out, cmd)
		}
	}
	return out
}

func numbered(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, line)
	}
	return b.String()
}
