package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/hwir/internal/codec"
	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/ir"
)

// NormalizeOptions holds flags for the normalize command.
type NormalizeOptions struct {
	*RootOptions
	Kind        string
	Name        string
	InputFormat string
	DocFormat   string
}

// normalizer decodes a leaf document into its entity and encodes it again.
type normalizer func(name string, doc document.Object) (document.Object, error)

// normalizers are keyed by the --kind flag. Kinds whose name is a map key
// in the enclosing document take it from --name; storages carry no name.
var normalizers = map[string]normalizer{
	"bundle": func(name string, doc document.Object) (document.Object, error) {
		b := ir.BundleItem{Name: name}
		if err := codec.DecodeBundle(doc, &b); err != nil {
			return nil, err
		}
		return codec.EncodeBundle(&b), nil
	},
	"storage": func(_ string, doc document.Object) (document.Object, error) {
		var s ir.Storage
		if err := codec.DecodeStorage(doc, &s); err != nil {
			return nil, err
		}
		return codec.EncodeStorage(&s), nil
	},
	"reqserv": func(name string, doc document.Object) (document.Object, error) {
		rs := ir.ReqServ{Name: name}
		if err := codec.DecodeReqServ(doc, &rs); err != nil {
			return nil, err
		}
		return codec.EncodeReqServ(&rs), nil
	},
	"instance": func(name string, doc document.Object) (document.Object, error) {
		inst := ir.Instance{Name: name}
		if err := codec.DecodeInstance(doc, &inst); err != nil {
			return nil, err
		}
		return codec.EncodeInstance(&inst), nil
	},
	"pipe": func(name string, doc document.Object) (document.Object, error) {
		// Start from pipe defaults so absent sizes are filled in
		p := codec.NewPipe(name, "")
		if err := codec.DecodePipe(doc, &p); err != nil {
			return nil, err
		}
		return codec.EncodePipe(&p), nil
	},
}

// normalizerKinds lists the supported kinds, sorted for help text.
func normalizerKinds() []string {
	kinds := make([]string, 0, len(normalizers))
	for k := range normalizers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NormalizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Decode a leaf document and encode it again",
		Long: fmt.Sprintf(`Decode a bundle, storage, request/service, instance or pipe document
and write the re-encoded form. Absent optional fields are filled with
their defaults. Use - to read standard input.

Kinds: %v`, normalizerKinds()),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "document kind (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "entity name, for kinds whose name is not part of the document")
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "json", "input document format (json|yaml|cbor)")
	cmd.Flags().StringVar(&opts.DocFormat, "doc-format", "json", "output document format (json|yaml|cbor)")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

// runNormalize parses the input, runs it through the decoder and encoder of
// its kind, and writes the result in the requested format.
func runNormalize(opts *NormalizeOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	normalize, ok := normalizers[opts.Kind]
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("unknown kind %q: must be one of %v", opts.Kind, normalizerKinds()), nil)
	}
	inFormat, err := document.ParseFormatName(opts.InputFormat)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	outFormat, err := document.ParseFormatName(opts.DocFormat)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	data, err := readInput(cmd, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, err.Error(), nil)
	}

	// Decode, then re-encode with defaults filled in
	doc, err := document.ParseObjectFormat(inFormat, data)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDecodeParse, err.Error(), nil)
	}
	normalized, err := normalize(opts.Name, doc)
	if err != nil {
		return formatter.Fail(ExitFailure, decodeErrorCode(err), err.Error(), nil)
	}

	// JSON output wraps the document in the standard response envelope
	if formatter.Format == "json" {
		return formatter.Success(map[string]interface{}{
			"kind":     opts.Kind,
			"document": document.ToAny(normalized),
		})
	}

	out, err := document.Marshal(outFormat, normalized)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}
	_, err = formatter.Writer.Write(out)
	return err
}

// readInput reads path, or the command's input when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
