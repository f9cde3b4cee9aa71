// ABOUTME: Cobra command tree: REPL root plus eval, history and version subcommands
// ABOUTME: Persistent flags override config file and environment values

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mauromedda/calc-go/internal/config"
	"github.com/mauromedda/calc-go/internal/repl"
)

type rootFlags struct {
	verbose     bool
	baseDir     string
	autoSave    bool
	precision   int
	historyFile string
	metricsFile string

	cmd *cobra.Command
}

// overrides returns only the flags the user actually set.
func (f *rootFlags) overrides() config.Overrides {
	var ov config.Overrides
	changed := f.cmd.Flags().Changed
	if changed("base-dir") {
		ov.BaseDir = &f.baseDir
	}
	if changed("auto-save") {
		ov.AutoSave = &f.autoSave
	}
	if changed("precision") {
		ov.Precision = &f.precision
	}
	if changed("history-file") {
		ov.HistoryFile = &f.historyFile
	}
	if changed("metrics-file") {
		ov.MetricsFile = &f.metricsFile
	}
	return ov
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "calc",
		Short:         "Interactive exact-decimal calculator with undo/redo history",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			flags.cmd = cmd
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(flags, true)
			if err != nil {
				return err
			}
			defer a.close()
			a.loadHistory()

			out := cmd.OutOrStdout()
			color, width := terminal(out)
			r := repl.New(a.calc, repl.Options{
				In:      cmd.InOrStdin(),
				Out:     out,
				Metrics: a.metrics,
				Color:   color,
				Width:   width,
			})
			return r.Run()
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log debug output to stderr")
	pf.StringVar(&flags.baseDir, "base-dir", "", "base directory for logs and history (default: current directory)")
	pf.BoolVar(&flags.autoSave, "auto-save", config.DefaultAutoSave, "save history after every calculation")
	pf.IntVar(&flags.precision, "precision", config.DefaultPrecision, "fractional digits shown by eval")
	pf.StringVar(&flags.historyFile, "history-file", "", "history CSV file (relative paths resolve against the base dir)")
	pf.StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus textfile metrics here on exit")

	root.AddCommand(newEvalCmd(flags), newHistoryCmd(flags), newVersionCmd())
	return root
}

func newEvalCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <operation> <a> <b>",
		Short: "Evaluate one operation and print the result",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags, false)
			if err != nil {
				return err
			}
			defer a.close()

			op, err := a.calc.Registry().Create(args[0])
			if err != nil {
				a.metrics.RecordFailure(err)
				return err
			}
			a.calc.SetOperation(op)
			if _, err := a.calc.PerformOperation(args[1], args[2]); err != nil {
				a.metrics.RecordFailure(err)
				return err
			}

			h := a.calc.History()
			fmt.Fprintln(cmd.OutOrStdout(), h[len(h)-1].FormatResult(int32(a.cfg.Precision)))
			return nil
		},
	}
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the persisted calculation history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(flags, true)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.calc.LoadHistory(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				data, err := a.calc.Snapshot().MarshalJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			lines := a.calc.ShowHistory()
			if len(lines) == 0 {
				fmt.Fprintln(out, "No calculations in history")
				return nil
			}
			for i, line := range lines {
				fmt.Fprintf(out, "%d. %s\n", i+1, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the history as a JSON snapshot")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "calc %s (%s) built %s\n", version, commit, date)
		},
	}
}

// terminal reports whether out is an interactive terminal and its width.
func terminal(out io.Writer) (bool, int) {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false, 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return true, 0
	}
	return true, w
}
