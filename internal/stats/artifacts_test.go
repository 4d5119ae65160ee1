package stats

import (
	"os"
	"path/filepath"
	"testing"

	"pfcrack/internal/model"
)

func TestWriteRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	runDir, err := WriteRunArtifacts(baseDir, RunArtifacts{
		Config: RunConfig{
			RunID:          "crack-1-100",
			CipherPath:     "cipher.txt",
			ReferencePath:  "english_quadgrams.txt",
			NgramWidth:     4,
			PopulationSize: 500,
			Generations:    100,
		},
		BestByGeneration: []int64{5, 9, 12},
		BestScore:        12,
		BestKey:          "PLAYFIREXMBCDGHKNOQSTUVWZ",
		Plaintext:        []byte("HIDETHEGOLD"),
		TopKeys:          []model.TopKeyRecord{{Rank: 1, Key: "PLAYFIREXMBCDGHKNOQSTUVWZ", Score: 12}},
		Diagnostics:      []model.GenerationDiagnostics{{Generation: 1, BestScore: 5}},
	})
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	for _, name := range []string{"config.json", "score_history.json", "top_keys.json", "generation_diagnostics.json", "plaintext.txt"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Fatalf("missing artifact %s: %v", name, err)
		}
	}

	history, ok, err := ReadScoreHistory(baseDir, "crack-1-100")
	if err != nil || !ok {
		t.Fatalf("read score history: ok=%t err=%v", ok, err)
	}
	if len(history) != 3 || history[2] != 12 {
		t.Fatalf("history mismatch: %v", history)
	}

	top, ok, err := ReadTopKeys(baseDir, "crack-1-100")
	if err != nil || !ok || len(top) != 1 {
		t.Fatalf("read top keys: ok=%t err=%v %v", ok, err, top)
	}

	if _, err := WriteRunArtifacts(baseDir, RunArtifacts{}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestRunIndexAppendAndList(t *testing.T) {
	baseDir := t.TempDir()

	entries, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list empty index: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty index, got %d entries", len(entries))
	}

	first := RunIndexEntry{RunID: "a", CreatedAtUTC: "2026-08-06T10:00:00Z", BestScore: 1}
	second := RunIndexEntry{RunID: "b", CreatedAtUTC: "2026-08-06T11:00:00Z", BestScore: 2}
	if err := AppendRunIndex(baseDir, first); err != nil {
		t.Fatalf("append first: %v", err)
	}
	if err := AppendRunIndex(baseDir, second); err != nil {
		t.Fatalf("append second: %v", err)
	}

	entries, err = ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(entries) != 2 || entries[0].RunID != "b" {
		t.Fatalf("expected newest first, got %+v", entries)
	}

	// Re-appending an existing run updates it in place.
	first.BestScore = 99
	if err := AppendRunIndex(baseDir, first); err != nil {
		t.Fatalf("update entry: %v", err)
	}
	entries, err = ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("update duplicated entry: %+v", entries)
	}
	for _, entry := range entries {
		if entry.RunID == "a" && entry.BestScore != 99 {
			t.Fatalf("entry not updated: %+v", entry)
		}
	}

	if err := AppendRunIndex(baseDir, RunIndexEntry{}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestPlotScoreHistory(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "scores.png")
	if err := PlotScoreHistory([]int64{1, 5, 9, 12, 12, 15}, "test run", outPath); err != nil {
		t.Fatalf("plot: %v", err)
	}
	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("stat plot: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("plot file is empty")
	}
}
