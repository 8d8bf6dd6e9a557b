package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/hwir/internal/codec"
	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/ir"
	"github.com/roach88/hwir/internal/order"
	"github.com/roach88/hwir/internal/store"
)

// EncodeOptions holds flags for the encode command.
type EncodeOptions struct {
	*RootOptions
	Output    string // write the document here instead of stdout
	DocFormat string // json, yaml or cbor
	Canonical bool   // RFC 8785 output; JSON only
	Store     string // SQLite path for snapshot recording
}

// EncodeResult is the JSON payload of a successful encode.
type EncodeResult struct {
	Module      string      `json:"module"`
	Fingerprint string      `json:"fingerprint"`
	Output      string      `json:"output,omitempty"`
	SnapshotID  string      `json:"snapshot_id,omitempty"`
	Seq         int64       `json:"seq,omitempty"`
	Document    interface{} `json:"document,omitempty"`
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EncodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "encode <lib-dir> <module>",
		Short: "Encode a module of a library as a document",
		Long: `Compile a CUE module library and encode one of its modules.

Instance targets are expanded one level deep. The update order of
instances and code blocks comes from their sequence constraints; when
the constraints have loops every order is 0.

Example:
  hwir encode ./lib Top
  hwir encode ./lib Top --doc-format yaml -o top.yaml
  hwir encode ./lib Top --canonical --store ./hwir.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.DocFormat, "doc-format", "json", "document format (json|yaml|cbor)")
	cmd.Flags().BoolVar(&opts.Canonical, "canonical", false, "write canonical JSON")
	cmd.Flags().StringVar(&opts.Store, "store", "", "record a snapshot in this SQLite database")

	return cmd
}

// runEncode compiles the library, encodes the named module and writes the
// document. The fingerprint is always computed over the document value, so
// it does not depend on the output format.
func runEncode(opts *EncodeOptions, libDir, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	// Validate flags before touching the library
	docFormat, err := document.ParseFormatName(opts.DocFormat)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	if opts.Canonical && docFormat != document.FormatJSON {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "--canonical requires --doc-format json", nil)
	}

	lib, mod, err := loadModule(formatter, libDir, name)
	if err != nil {
		return err
	}

	// Encode with target expansion and update-order resolution
	encoder := &codec.ModuleEncoder{
		Library:  lib,
		Resolver: order.Resolver{},
		Logger:   logger,
	}
	doc := encoder.Encode(mod)

	// Render
	var data []byte
	if opts.Canonical {
		data, err = document.MarshalCanonical(doc)
	} else {
		data, err = document.Marshal(docFormat, doc)
	}
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, fmt.Sprintf("rendering document: %v", err), nil)
	}

	fingerprint, err := document.Fingerprint(doc)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, fmt.Sprintf("fingerprinting document: %v", err), nil)
	}
	result := EncodeResult{Module: name, Fingerprint: fingerprint, Output: opts.Output}

	// Record a snapshot; an unchanged document reuses the latest one
	if opts.Store != "" {
		snap, created, err := saveSnapshot(cmd.Context(), opts.Store, name, doc)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
		}
		logger.Info("snapshot recorded", "module", name, "id", snap.ID, "seq", snap.Seq, "created", created)
		result.SnapshotID = snap.ID
		result.Seq = snap.Seq
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		formatter.VerboseLog("Wrote %d bytes to %s", len(data), opts.Output)
	}

	if formatter.Format == "json" {
		if opts.Output == "" {
			result.Document = document.ToAny(doc)
		}
		return formatter.Success(result)
	}

	if opts.Output == "" {
		_, err := formatter.Writer.Write(data)
		return err
	}
	fmt.Fprintf(formatter.Writer, "✓ Encoded %s to %s\n", name, opts.Output)
	fmt.Fprintf(formatter.Writer, "  fingerprint: %s\n", fingerprint)
	if result.SnapshotID != "" {
		fmt.Fprintf(formatter.Writer, "  snapshot:    %s (seq %d)\n", result.SnapshotID, result.Seq)
	}
	return nil
}

// loadModule loads libDir and returns the library with the named
// non-external module.
func loadModule(formatter *OutputFormatter, libDir, name string) (*ir.ModuleLib, *ir.Module, error) {
	loadResult, loadErrors := LoadLibrary(libDir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		loadErr := firstLoadError(loadErrors)
		var details interface{}
		if loadErr.Pos.IsValid() {
			details = loadErr.Pos.String()
		}
		return nil, nil, formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, details)
	}
	formatter.VerboseLog("Loaded %d module(s) from %d CUE file(s)", loadResult.Library.Len(), loadResult.FileCount)
	for _, warning := range loadResult.Warnings {
		formatter.VerboseLog("warning: %s", warning.Message)
	}

	lib := loadResult.Library
	mod, ok := lib.Module(name)
	if !ok {
		// Distinguish external modules from names that do not exist
		if _, external := lib.LookupModule(name); external {
			return nil, nil, formatter.Fail(ExitCommandError, ErrCodeExternalModule,
				fmt.Sprintf("module %s is external and has no body to encode", name), nil)
		}
		return nil, nil, formatter.Fail(ExitCommandError, ErrCodeUnknownModule,
			fmt.Sprintf("module %s not found in library (have %v)", name, lib.Names()), nil)
	}
	return lib, mod, nil
}

// saveSnapshot opens the store at path for a single save.
func saveSnapshot(ctx context.Context, path, name string, doc document.Object) (store.Snapshot, bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(path)
	if err != nil {
		return store.Snapshot{}, false, err
	}
	defer st.Close()

	return st.Save(ctx, name, doc)
}
