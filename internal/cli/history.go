package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Store string
	Show  string // snapshot ID to print
}

// HistoryEntry is one snapshot in the history listing.
type HistoryEntry struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	Fingerprint string `json:"fingerprint"`
	Size        int    `json:"size"`
	ToolVersion string `json:"tool_version"`
}

// HistoryResult holds the history of one module.
type HistoryResult struct {
	Module    string         `json:"module"`
	Snapshots []HistoryEntry `json:"snapshots"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [module]",
		Short: "List recorded module snapshots",
		Long: `List the snapshots recorded by "hwir encode --store".

Without a module, list the modules that have snapshots.

Examples:
  hwir history --store ./hwir.db
  hwir history --store ./hwir.db Top
  hwir history --store ./hwir.db --show <snapshot-id>`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Store, "store", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("store")
	cmd.Flags().StringVar(&opts.Show, "show", "", "print the document of this snapshot")

	return cmd
}

// runHistory dispatches to one of the three history views: a single
// snapshot (--show), the module list (no args) or one module's history.
func runHistory(opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Open would create the file; history only reads existing stores.
	if _, err := os.Stat(opts.Store); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("store not found: %s", opts.Store), nil)
	}
	st, err := store.Open(opts.Store)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}
	defer st.Close()

	switch {
	case opts.Show != "":
		return showSnapshot(ctx, formatter, st, opts.Show)
	case len(args) == 0:
		return listModules(ctx, formatter, st)
	default:
		return listSnapshots(ctx, formatter, st, args[0])
	}
}

// showSnapshot prints the stored document of one snapshot.
func showSnapshot(ctx context.Context, formatter *OutputFormatter, st *store.Store, id string) error {
	snap, err := st.Load(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("snapshot %s not found", id), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]interface{}{
			"id":          snap.ID,
			"module":      snap.Module,
			"seq":         snap.Seq,
			"fingerprint": snap.Fingerprint,
			"document":    document.ToAny(snap.Document),
		})
	}
	out, err := document.MarshalIndent(snap.Document)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}
	_, err = formatter.Writer.Write(out)
	return err
}

// listModules prints every module with at least one snapshot.
func listModules(ctx context.Context, formatter *OutputFormatter, st *store.Store) error {
	modules, err := st.Modules(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}
	if formatter.Format == "json" {
		if modules == nil {
			modules = []string{}
		}
		return formatter.Success(map[string]interface{}{"modules": modules})
	}
	if len(modules) == 0 {
		fmt.Fprintln(formatter.Writer, "No snapshots recorded")
		return nil
	}
	for _, m := range modules {
		fmt.Fprintln(formatter.Writer, m)
	}
	return nil
}

// listSnapshots prints a module's snapshots, oldest first.
func listSnapshots(ctx context.Context, formatter *OutputFormatter, st *store.Store, module string) error {
	snaps, err := st.History(ctx, module)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}

	result := HistoryResult{Module: module, Snapshots: make([]HistoryEntry, 0, len(snaps))}
	for _, snap := range snaps {
		result.Snapshots = append(result.Snapshots, HistoryEntry{
			ID:          snap.ID,
			Seq:         snap.Seq,
			Fingerprint: snap.Fingerprint,
			Size:        snap.Size,
			ToolVersion: snap.ToolVersion,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if len(result.Snapshots) == 0 {
		fmt.Fprintf(formatter.Writer, "No snapshots for %s\n", module)
		return nil
	}
	// Short fingerprints keep one snapshot per line
	fmt.Fprintf(formatter.Writer, "%s: %d snapshot(s)\n", module, len(result.Snapshots))
	for _, e := range result.Snapshots {
		fmt.Fprintf(formatter.Writer, "  [%d] %s  %s  %d bytes\n", e.Seq, e.ID, e.Fingerprint[:12], e.Size)
	}
	return nil
}
