// ABOUTME: Operation commands that prompt for two operands and run a calculation
// ABOUTME: Either prompt accepts "cancel"; results print integral values without a fraction

package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var errNoInput = errors.New("no input source")

func operationCommand(name string) *Command {
	return &Command{
		Name:        name,
		Description: "Perform a calculation",
		Execute: func(ctx *Context, _ string) (string, error) {
			return runOperation(ctx, name)
		},
	}
}

func runOperation(ctx *Context, name string) (string, error) {
	if ctx.ReadLine == nil {
		return "", errNoInput
	}
	if ctx.Out != nil {
		fmt.Fprintln(ctx.Out, "Enter numbers (or 'cancel' to abort):")
	}

	a, err := ctx.ReadLine("First number: ")
	if err != nil {
		return "", err
	}
	if isCancel(a) {
		return "Operation cancelled", nil
	}
	b, err := ctx.ReadLine("Second number: ")
	if err != nil {
		return "", err
	}
	if isCancel(b) {
		return "Operation cancelled", nil
	}

	op, err := ctx.Calc.Registry().Create(name)
	if err != nil {
		ctx.recordFailure(err)
		return "", err
	}
	ctx.Calc.SetOperation(op)

	result, err := ctx.Calc.PerformOperation(a, b)
	if err != nil {
		ctx.recordFailure(err)
		return "", err
	}
	ctx.Calc.TrimHistory(ctx.Calc.Config().MaxHistorySize)
	return "Result: " + FormatResult(result), nil
}

// FormatResult renders integral values without a fractional part and
// everything else with trailing zeros removed.
func FormatResult(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.Truncate(0).String()
	}
	return d.String()
}

func isCancel(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "cancel")
}

func (ctx *Context) recordFailure(err error) {
	if ctx.Metrics != nil {
		ctx.Metrics.RecordFailure(err)
	}
}
