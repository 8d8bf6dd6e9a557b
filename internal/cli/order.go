package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hwir/internal/ir"
	"github.com/roach88/hwir/internal/order"
)

// OrderOptions holds flags for the order command.
type OrderOptions struct {
	*RootOptions
	Constraints []string // extra "former:latter" pairs
}

// OrderResult is the JSON payload of a resolved update order.
type OrderResult struct {
	Module string   `json:"module"`
	Order  []string `json:"order"`
}

// NewOrderCommand creates the order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "order <lib-dir> <module>",
		Short: "Print the update order of a module's instances and code blocks",
		Long: `Resolve the update order of a module from its update constraints
and stalled connections.

Extra constraints can be tried without editing the library:
  hwir order ./lib Top --constraint alu:ram`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Constraints, "constraint", nil, "extra former:latter constraint (repeatable)")

	return cmd
}

// runOrder resolves and prints the update order of one module.
//
// Loops and name conflicts get their own error codes. In text mode a loop
// prints each cycle on its own line.
func runOrder(opts *OrderOptions, libDir, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	extra, err := parseConstraints(opts.Constraints)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	_, mod, err := loadModule(formatter, libDir, name)
	if err != nil {
		return err
	}

	// Resolve with the module's own constraints plus --constraint pairs
	updateOrder, err := order.UpdateOrderWith(mod, extra)
	var loopErr *order.LoopError
	if errors.As(err, &loopErr) {
		details := map[string]interface{}{"nodes": loopErr.Nodes, "cycles": loopErr.Cycles}
		if formatter.Format != "json" {
			fmt.Fprintln(formatter.Writer, "✗ Update order has loops")
			for _, cycle := range loopErr.Cycles {
				fmt.Fprintf(formatter.Writer, "  %s\n", strings.Join(cycle, " ↔ "))
			}
			return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", ErrCodeOrderLoop, loopErr.Error()))
		}
		return formatter.Fail(ExitFailure, ErrCodeOrderLoop, loopErr.Error(), details)
	}
	var conflict *order.NameConflictError
	if errors.As(err, &conflict) {
		return formatter.Fail(ExitFailure, ErrCodeNameCollision, conflict.Error(), nil)
	}
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}

	if formatter.Format == "json" {
		// Always emit an array, even for an empty module
		if updateOrder == nil {
			updateOrder = []string{}
		}
		return formatter.Success(OrderResult{Module: name, Order: updateOrder})
	}

	for i, node := range updateOrder {
		fmt.Fprintf(formatter.Writer, "%d. %s\n", i+1, node)
	}
	return nil
}

// parseConstraints parses "former:latter" flag values.
func parseConstraints(pairs []string) ([]ir.SequenceConnection, error) {
	var out []ir.SequenceConnection
	for _, pair := range pairs {
		former, latter, ok := strings.Cut(pair, ":")
		if !ok || former == "" || latter == "" {
			return nil, fmt.Errorf("invalid constraint %q: want former:latter", pair)
		}
		out = append(out, ir.SequenceConnection{Former: former, Latter: latter})
	}
	return out, nil
}
