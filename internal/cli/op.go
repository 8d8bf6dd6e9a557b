package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hwir/internal/codec"
	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/ir"
)

// OpOptions holds flags for the op command.
type OpOptions struct {
	*RootOptions
	Args []string // argument names to look up
}

// NewOpCommand creates the op command.
func NewOpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "op <file>",
		Short: "Decode an operation package",
		Long: `Decode an operation package document and print its normalized form.

Arguments without an index get index -1. With --arg, print the value
of each named argument instead; write name@index to select a position.
Use - to read standard input.

Example:
  hwir op request.json
  hwir op request.json --arg module --arg width@0`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Args, "arg", nil, "argument name to look up (repeatable)")

	return cmd
}

// runOp decodes an operation package and either prints it normalized or
// answers --arg lookups.
func runOp(opts *OpOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	data, err := readInput(cmd, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, err.Error(), nil)
	}

	// Decode (only JSON requests are accepted)
	pkg, err := codec.DecodeOperationPackage(data)
	if err != nil {
		return formatter.Fail(ExitFailure, decodeErrorCode(err), err.Error(), nil)
	}
	formatter.VerboseLog("Operation %s with %d argument(s)", pkg.Name, len(pkg.Args))

	if len(opts.Args) > 0 {
		return writeOpArgs(formatter, &pkg, opts.Args)
	}

	// Re-encode so every argument shows its index, name and value
	normalized := codec.EncodeOperationPackage(&pkg)
	if formatter.Format == "json" {
		return formatter.Success(document.ToAny(normalized))
	}
	out, err := document.MarshalIndent(normalized)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}
	_, err = formatter.Writer.Write(out)
	return err
}

// writeOpArgs answers --arg lookups as an operation response. A missing
// argument turns the response into an error response with code 1 that
// still carries the values that were found.
func writeOpArgs(formatter *OutputFormatter, pkg *ir.OperationPackage, names []string) error {
	// Look up each reference, keyed by the reference text as given
	found := map[string][]string{}
	var missing []string
	for _, name := range names {
		argName, index, err := parseArgRef(name)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		value, ok := pkg.Arg(argName, index)
		if !ok {
			missing = append(missing, name)
			continue
		}
		found[name] = []string{value}
	}

	resp := ir.OperationResponse{Msg: pkg.Name}
	if len(missing) > 0 {
		resp = ir.NewErrorResponse(1, fmt.Sprintf("%s: missing argument(s) %v", pkg.Name, missing))
	}
	resp.ListResults = found

	if formatter.Format == "json" {
		return formatter.Success(document.ToAny(codec.EncodeOperationResponse(&resp)))
	}
	for _, name := range names {
		if values, ok := resp.ListResults[name]; ok {
			fmt.Fprintf(formatter.Writer, "%s = %s\n", name, values[0])
		}
	}
	if resp.Code == 0 {
		return nil
	}

	// The full response goes to stderr so stdout keeps one line per value.
	data, err := codec.MarshalOperationResponse(&resp)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}
	fmt.Fprintf(formatter.GetErrWriter(), "%s\n", data)
	return NewExitError(ExitFailure, resp.Msg)
}

// parseArgRef splits "name@index"; a bare name selects ir.AnyIndex.
func parseArgRef(ref string) (string, int, error) {
	name, indexText, ok := strings.Cut(ref, "@")
	if !ok {
		return ref, ir.AnyIndex, nil
	}
	index, err := strconv.Atoi(indexText)
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("invalid argument reference %q: want name@index", ref)
	}
	return name, index, nil
}
