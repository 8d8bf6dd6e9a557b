package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/ir"
)

// ErrNotFound is returned when no snapshot matches a lookup.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one stored module document.
type Snapshot struct {
	ID              string // UUIDv7 unless the store's generator was replaced
	Module          string
	Fingerprint     string // keyed BLAKE3 of the canonical body
	Seq             int64  // 1-based, per module
	Size            int    // uncompressed canonical body length
	ToolVersion     string
	DocumentVersion string
	Document        document.Object
}

// Save stores the canonical form of doc under module.
// If a snapshot with the same fingerprint already exists for module it is
// returned unchanged and created is false.
func (s *Store) Save(ctx context.Context, module string, doc document.Object) (snap Snapshot, created bool, err error) {
	if module == "" {
		return Snapshot{}, false, fmt.Errorf("save snapshot: module name is required")
	}

	// Canonical JSON is what gets stored, so equal documents store equal bytes
	body, err := document.MarshalCanonical(doc)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("save snapshot %s: %w", module, err)
	}
	fingerprint, err := document.Fingerprint(doc)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("save snapshot %s: %w", module, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	// Deduplicate by fingerprint within the module
	existing, err := scanSnapshot(tx.QueryRowContext(ctx, selectSnapshot+`
		WHERE module = ? AND fingerprint = ?
	`, module, fingerprint))
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, ErrNotFound):
		return Snapshot{}, false, err
	}

	// Next sequence number; read inside the transaction so concurrent
	// saves cannot reuse it
	var seq int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) + 1 FROM snapshots WHERE module = ?", module,
	).Scan(&seq); err != nil {
		return Snapshot{}, false, fmt.Errorf("next seq for %s: %w", module, err)
	}

	// Bodies that zstd does not shrink are kept raw
	stored, compression := compressBody(body)
	snap = Snapshot{
		ID:              s.ids.Generate(),
		Module:          module,
		Fingerprint:     fingerprint,
		Seq:             seq,
		Size:            len(body),
		ToolVersion:     ir.ToolVersion,
		DocumentVersion: ir.DocumentVersion,
		Document:        doc,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, module, fingerprint, seq, compression, body, size, tool_version, document_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, snap.ID, snap.Module, snap.Fingerprint, snap.Seq, compression, stored, snap.Size,
		snap.ToolVersion, snap.DocumentVersion)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("insert snapshot %s: %w", module, err)
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, false, fmt.Errorf("commit snapshot %s: %w", module, err)
	}
	return snap, true, nil
}

// Load returns the snapshot with the given ID.
// Returns ErrNotFound if no snapshot has that ID.
func (s *Store) Load(ctx context.Context, id string) (Snapshot, error) {
	return scanSnapshot(s.db.QueryRowContext(ctx, selectSnapshot+" WHERE id = ?", id))
}

// Latest returns the most recent snapshot of module.
// Ties on seq cannot happen through Save; the ID ordering keeps the query
// deterministic regardless.
func (s *Store) Latest(ctx context.Context, module string) (Snapshot, error) {
	return scanSnapshot(s.db.QueryRowContext(ctx, selectSnapshot+`
		WHERE module = ?
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, module))
}

// History returns every snapshot of module, oldest first.
func (s *Store) History(ctx context.Context, module string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, selectSnapshot+`
		WHERE module = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, module)
	if err != nil {
		return nil, fmt.Errorf("query history %s: %w", module, err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history %s: %w", module, err)
	}
	return out, nil
}

// Modules returns the names of all modules with at least one snapshot, sorted.
func (s *Store) Modules(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT module FROM snapshots ORDER BY module COLLATE BINARY ASC")
	if err != nil {
		return nil, fmt.Errorf("query modules: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate modules: %w", err)
	}
	return out, nil
}

// selectSnapshot lists the columns in the order scanSnapshot reads them.
const selectSnapshot = `
	SELECT id, module, fingerprint, seq, compression, body, size, tool_version, document_version
	FROM snapshots`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSnapshot reads one row and restores its document.
// sql.ErrNoRows becomes ErrNotFound.
func scanSnapshot(row rowScanner) (Snapshot, error) {
	var (
		snap        Snapshot
		compression string
		stored      []byte
	)
	err := row.Scan(&snap.ID, &snap.Module, &snap.Fingerprint, &snap.Seq,
		&compression, &stored, &snap.Size, &snap.ToolVersion, &snap.DocumentVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}

	// Decompress and parse the stored canonical body
	body, err := decompressBody(stored, compression, snap.Size)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	doc, err := document.ParseObject(body)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	snap.Document = doc
	return snap, nil
}
