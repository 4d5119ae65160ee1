//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"pfcrack/internal/model"
)

func TestSQLiteStoreRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "pfcrack.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}()

	population := model.Population{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "run-1",
		Keys:            []string{"ABCDEFGHIKLMNOPQRSTUVWXYZ"},
		Generation:      3,
	}
	if err := store.SavePopulation(ctx, population); err != nil {
		t.Fatalf("save population: %v", err)
	}
	got, ok, err := store.GetPopulation(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get population: ok=%t err=%v", ok, err)
	}
	if got.Generation != 3 || len(got.Keys) != 1 {
		t.Fatalf("population mismatch: %+v", got)
	}

	// Upsert replaces the previous snapshot.
	population.Generation = 4
	if err := store.SavePopulation(ctx, population); err != nil {
		t.Fatalf("resave population: %v", err)
	}
	got, _, err = store.GetPopulation(ctx, "run-1")
	if err != nil || got.Generation != 4 {
		t.Fatalf("upsert failed: gen=%d err=%v", got.Generation, err)
	}

	if err := store.SaveScoreHistory(ctx, "run-1", []int64{7, 8}); err != nil {
		t.Fatalf("save history: %v", err)
	}
	history, ok, err := store.GetScoreHistory(ctx, "run-1")
	if err != nil || !ok || len(history) != 2 {
		t.Fatalf("get history: ok=%t err=%v %v", ok, err, history)
	}

	if err := store.SaveGenerationDiagnostics(ctx, "run-1", []model.GenerationDiagnostics{{Generation: 1}}); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	diagnostics, ok, err := store.GetGenerationDiagnostics(ctx, "run-1")
	if err != nil || !ok || len(diagnostics) != 1 {
		t.Fatalf("get diagnostics: ok=%t err=%v %v", ok, err, diagnostics)
	}

	if err := store.SaveTopKeys(ctx, "run-1", []model.TopKeyRecord{{Rank: 1, Key: "K", Score: 9}}); err != nil {
		t.Fatalf("save top keys: %v", err)
	}
	top, ok, err := store.GetTopKeys(ctx, "run-1")
	if err != nil || !ok || len(top) != 1 {
		t.Fatalf("get top keys: ok=%t err=%v %v", ok, err, top)
	}

	if _, ok, err := store.GetScoreHistory(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing history: ok=%t err=%v", ok, err)
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "pfcrack.db"))
	if _, _, err := store.GetPopulation(context.Background(), "x"); err == nil {
		t.Fatal("expected error before init")
	}
}
