package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"pfcrack/internal/model"
)

const runIndexFile = "run_index.json"

// RunConfig records the inputs of one crack run, as stored next to its
// artifacts.
type RunConfig struct {
	RunID          string  `json:"run_id"`
	CipherPath     string  `json:"cipher_path"`
	ReferencePath  string  `json:"reference_path"`
	NgramWidth     int     `json:"ngram_width"`
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	NumChildren    int     `json:"num_children"`
	NewRandom      int     `json:"new_random"`
	MutationRate   float64 `json:"mutation_rate"`
	MutationType   string  `json:"mutation_type"`
	KillWorst      int     `json:"kill_worst"`
	KeepBest       int     `json:"keep_best"`
	ScoreGoal      int64   `json:"score_goal"`
	SeedKeyword    string  `json:"seed_keyword,omitempty"`
	Seed           int64   `json:"seed"`
	Workers        int     `json:"workers"`
}

// RunIndexEntry is one row of the benchmarks run index.
type RunIndexEntry struct {
	RunID          string `json:"run_id"`
	CreatedAtUTC   string `json:"created_at_utc"`
	CipherPath     string `json:"cipher_path"`
	NgramWidth     int    `json:"ngram_width"`
	Seed           int64  `json:"seed"`
	PopulationSize int    `json:"population_size"`
	Generations    int    `json:"generations"`
	BestScore      int64  `json:"best_score"`
	BestKey        string `json:"best_key"`
}

// RunArtifacts bundles everything written to one run's artifact directory.
type RunArtifacts struct {
	Config           RunConfig
	BestByGeneration []int64
	BestScore        int64
	BestKey          string
	Plaintext        []byte
	TopKeys          []model.TopKeyRecord
	Diagnostics      []model.GenerationDiagnostics
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "score_history.json"), map[string]any{
		"best_by_generation": artifacts.BestByGeneration,
		"best_score":         artifacts.BestScore,
		"best_key":           artifacts.BestKey,
	}); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "top_keys.json"), artifacts.TopKeys); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "generation_diagnostics.json"), artifacts.Diagnostics); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, "plaintext.txt"), artifacts.Plaintext, 0o644); err != nil {
		return "", err
	}

	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}
	// ListRunIndex returns newest first; store oldest first so that file
	// position keeps recording append order for equal timestamps.
	for i, j := 0, len(index)-1; i < j; i, j = i+1, j-1 {
		index[i], index[j] = index[j], index[i]
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ReadScoreHistory loads the per-generation best scores of one run.
func ReadScoreHistory(baseDir, runID string) ([]int64, bool, error) {
	path := filepath.Join(baseDir, runID, "score_history.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var payload struct {
		BestByGeneration []int64 `json:"best_by_generation"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, false, err
	}
	return payload.BestByGeneration, true, nil
}

// ReadTopKeys loads the final ranked keys of one run.
func ReadTopKeys(baseDir, runID string) ([]model.TopKeyRecord, bool, error) {
	path := filepath.Join(baseDir, runID, "top_keys.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var top []model.TopKeyRecord
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, false, err
	}
	return top, true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
