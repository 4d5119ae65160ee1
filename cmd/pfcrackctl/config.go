package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	pfapi "pfcrack/pkg/pfcrack"
)

func loadOrDefaultRunRequest(path string) (pfapi.RunRequest, error) {
	if path == "" {
		return pfapi.RunRequest{}, nil
	}
	return loadRunRequestFromConfig(path)
}

func loadRunRequestFromConfig(path string) (pfapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pfapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return pfapi.RunRequest{}, fmt.Errorf("%s: %w", path, err)
	}

	var req pfapi.RunRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asString(raw["cipher_path"]); ok {
		req.CipherPath = v
	}
	if v, ok := asString(raw["reference_path"]); ok {
		req.ReferencePath = v
	}
	if v, ok := asInt(raw["ngram_width"]); ok {
		req.NgramWidth = v
	}
	if v, ok := asInt(raw["population"]); ok {
		req.Population = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		req.Generations = v
	}
	if v, ok := asInt(raw["num_children"]); ok {
		req.NumChildren = v
	}
	if v, ok := asInt(raw["new_random"]); ok {
		req.NewRandom = v
	}
	if v, ok := asFloat64(raw["mutation_rate"]); ok {
		req.MutationRate = v
	}
	if v, ok := asString(raw["mutation_type"]); ok {
		req.MutationType = v
	}
	if v, ok := asInt(raw["kill_worst"]); ok {
		req.KillWorst = v
	}
	if v, ok := asInt(raw["keep_best"]); ok {
		req.KeepBest = v
	}
	if v, ok := asInt64(raw["score_goal"]); ok {
		req.ScoreGoal = v
	}
	if v, ok := asString(raw["seed_keyword"]); ok {
		req.SeedKeyword = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	return req, nil
}

// overrideFromFlags applies explicitly-set command line flags on top of a
// config-file request.
func overrideFromFlags(req *pfapi.RunRequest, setFlags map[string]bool, values map[string]any) {
	for name, value := range values {
		if !setFlags[name] {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = value.(string)
		case "cipher":
			req.CipherPath = value.(string)
		case "reference":
			req.ReferencePath = value.(string)
		case "n":
			req.NgramWidth = value.(int)
		case "pop":
			req.Population = value.(int)
		case "gens":
			req.Generations = value.(int)
		case "children":
			req.NumChildren = value.(int)
		case "new-random":
			req.NewRandom = value.(int)
		case "mutation-rate":
			req.MutationRate = value.(float64)
		case "mutation-type":
			req.MutationType = value.(string)
		case "kill-worst":
			req.KillWorst = value.(int)
		case "keep-best":
			req.KeepBest = value.(int)
		case "score-goal":
			req.ScoreGoal = value.(int64)
		case "keyword":
			req.SeedKeyword = value.(string)
		case "seed":
			req.Seed = value.(int64)
		case "workers":
			req.Workers = value.(int)
		}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func asInt64(v any) (int64, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

func asFloat64(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
