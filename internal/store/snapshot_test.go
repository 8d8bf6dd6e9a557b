package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/ir"
	"github.com/roach88/hwir/internal/testutil"
)

func aluDocument(latency string) document.Object {
	return document.Object{
		"comment": document.String("arithmetic unit"),
		"local_configs": document.Object{
			"latency": document.Object{"name": document.String("latency"), "value": document.String(latency)},
		},
		"instances": document.Object{},
		"storages":  document.Object{},
	}
}

func TestSave_CreatesSnapshot(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	snap, created, err := s.Save(ctx, "alu", aluDocument("2"))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if !created {
		t.Error("first Save() should create a snapshot")
	}
	if snap.Seq != 1 {
		t.Errorf("Seq = %d, want 1", snap.Seq)
	}
	if len(snap.Fingerprint) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(snap.Fingerprint))
	}
	if snap.ToolVersion != ir.ToolVersion || snap.DocumentVersion != ir.DocumentVersion {
		t.Errorf("versions = %q/%q", snap.ToolVersion, snap.DocumentVersion)
	}

	loaded, err := s.Load(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, snap) {
		t.Errorf("Load() = %+v, want %+v", loaded, snap)
	}
}

func TestSave_DeduplicatesByFingerprint(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, _, err := s.Save(ctx, "alu", aluDocument("2"))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	again, created, err := s.Save(ctx, "alu", aluDocument("2"))
	if err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}
	if created {
		t.Error("identical document should not create a new snapshot")
	}
	if again.ID != first.ID {
		t.Errorf("ID = %q, want existing %q", again.ID, first.ID)
	}

	// same content under another module is a separate snapshot
	other, created, err := s.Save(ctx, "fpu", aluDocument("2"))
	if err != nil {
		t.Fatalf("Save() for fpu failed: %v", err)
	}
	if !created || other.Seq != 1 {
		t.Errorf("fpu snapshot created=%v seq=%d, want created seq 1", created, other.Seq)
	}
}

func TestHistory_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, latency := range []string{"1", "2", "3"} {
		if _, _, err := s.Save(ctx, "alu", aluDocument(latency)); err != nil {
			t.Fatalf("Save(%s) failed: %v", latency, err)
		}
	}

	history, err := s.History(ctx, "alu")
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("len(history) = %d, want 3", len(history))
	}
	for i, snap := range history {
		if snap.Seq != int64(i+1) {
			t.Errorf("history[%d].Seq = %d, want %d", i, snap.Seq, i+1)
		}
	}

	latest, err := s.Latest(ctx, "alu")
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	if latest.ID != history[2].ID {
		t.Errorf("Latest() = %s, want %s", latest.ID, history[2].ID)
	}
	if !reflect.DeepEqual(latest.Document, aluDocument("3")) {
		t.Errorf("Latest().Document = %v", latest.Document)
	}
}

func TestSave_LargeDocumentCompressed(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	doc := aluDocument("1")
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = "acc = acc + operand;"
	}
	doc["serv_codelines"] = document.Object{"exec": document.Strings(lines)}

	snap, _, err := s.Save(ctx, "alu", doc)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	var compression string
	var stored []byte
	if err := s.db.QueryRow("SELECT compression, body FROM snapshots WHERE id = ?", snap.ID).
		Scan(&compression, &stored); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if compression != compressionZstd {
		t.Errorf("compression = %q, want %q", compression, compressionZstd)
	}
	if len(stored) >= snap.Size {
		t.Errorf("stored %d bytes, canonical size %d", len(stored), snap.Size)
	}

	loaded, err := s.Load(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Document, doc) {
		t.Error("compressed document did not round trip")
	}
}

func TestSave_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, _, err := s.Save(ctx, "", aluDocument("1")); err == nil {
		t.Error("expected error for empty module name")
	}
	if _, _, err := s.Save(ctx, "alu", document.Object{"x": document.Null{}}); err == nil {
		t.Error("expected error for document containing null")
	}
}

func TestLookups_NotFound(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
	if _, err := s.Latest(ctx, "alu"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest() error = %v, want ErrNotFound", err)
	}

	history, err := s.History(ctx, "alu")
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("History() = %v, want empty", history)
	}
}

func TestModules_Sorted(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"ram", "alu", "Top"} {
		if _, _, err := s.Save(ctx, name, aluDocument("1")); err != nil {
			t.Fatalf("Save(%s) failed: %v", name, err)
		}
	}

	modules, err := s.Modules(ctx)
	if err != nil {
		t.Fatalf("Modules() failed: %v", err)
	}
	want := []string{"Top", "alu", "ram"}
	if !reflect.DeepEqual(modules, want) {
		t.Errorf("Modules() = %v, want %v", modules, want)
	}
}

func TestSave_UsesIDGenerator(t *testing.T) {
	s := createTestStore(t)
	s.SetIDGenerator(testutil.NewFixedIDs("snap-b", "snap-a"))
	ctx := context.Background()

	first, _, err := s.Save(ctx, "alu", aluDocument("1"))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	// a duplicate must not consume an ID
	if _, _, err := s.Save(ctx, "alu", aluDocument("1")); err != nil {
		t.Fatalf("duplicate Save() failed: %v", err)
	}
	second, _, err := s.Save(ctx, "alu", aluDocument("2"))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if first.ID != "snap-b" || second.ID != "snap-a" {
		t.Errorf("IDs = %q, %q; want snap-b, snap-a", first.ID, second.ID)
	}

	// seq orders history, not the ID
	history, err := s.History(ctx, "alu")
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if len(history) != 2 || history[0].ID != "snap-b" || history[1].ID != "snap-a" {
		t.Errorf("History() IDs out of seq order: %+v", history)
	}
}
