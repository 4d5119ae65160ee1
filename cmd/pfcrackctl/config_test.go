package main

import (
	"os"
	"path/filepath"
	"testing"

	pfapi "pfcrack/pkg/pfcrack"
)

func TestLoadRunRequestFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	config := `{
		"run_id": "cfg-run",
		"cipher_path": "cipher.txt",
		"reference_path": "ref.txt",
		"ngram_width": 4,
		"population": 500,
		"generations": 2000,
		"num_children": 200,
		"new_random": 20,
		"mutation_rate": 0.2,
		"mutation_type": "inversion",
		"kill_worst": 50,
		"keep_best": 5,
		"score_goal": 1000,
		"seed_keyword": "PLAYFAIR EXAMPLE",
		"seed": 42,
		"workers": 8
	}`
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if req.RunID != "cfg-run" || req.CipherPath != "cipher.txt" || req.ReferencePath != "ref.txt" {
		t.Fatalf("paths mismatch: %+v", req)
	}
	if req.NgramWidth != 4 || req.Population != 500 || req.Generations != 2000 {
		t.Fatalf("sizes mismatch: %+v", req)
	}
	if req.MutationRate != 0.2 || req.MutationType != "inversion" {
		t.Fatalf("mutation config mismatch: %+v", req)
	}
	if req.ScoreGoal != 1000 || req.Seed != 42 || req.Workers != 8 {
		t.Fatalf("run config mismatch: %+v", req)
	}
}

func TestLoadRunRequestErrors(t *testing.T) {
	if _, err := loadRunRequestFromConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadRunRequestFromConfig(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestOverrideFromFlags(t *testing.T) {
	req := pfapi.RunRequest{
		CipherPath:  "from-config.txt",
		Population:  500,
		Generations: 2000,
		Seed:        1,
	}
	overrideFromFlags(&req, map[string]bool{"pop": true, "seed": true}, map[string]any{
		"cipher": "from-flag.txt",
		"pop":    50,
		"gens":   10,
		"seed":   int64(7),
	})

	if req.CipherPath != "from-config.txt" {
		t.Fatalf("unset flag must not override config: %s", req.CipherPath)
	}
	if req.Population != 50 || req.Seed != 7 {
		t.Fatalf("set flags must override config: %+v", req)
	}
	if req.Generations != 2000 {
		t.Fatalf("unset gens flag must not override config: %d", req.Generations)
	}
}
