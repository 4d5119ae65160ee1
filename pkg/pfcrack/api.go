package pfcrack

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"pfcrack/internal/cracker"
	"pfcrack/internal/fitness"
	"pfcrack/internal/genetic"
	"pfcrack/internal/model"
	"pfcrack/internal/ngram"
	"pfcrack/internal/playfair"
	"pfcrack/internal/stats"
	"pfcrack/internal/storage"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultDBPath        = "pfcrack.db"
)

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
}

// Client wires the cracker, the artifact directory, and the store behind
// one façade used by the CLI.
type Client struct {
	store         storage.Store
	benchmarksDir string
}

func New(opts Options) (*Client, error) {
	if opts.DBPath == "" {
		opts.DBPath = defaultDBPath
	}
	if opts.BenchmarksDir == "" {
		opts.BenchmarksDir = defaultBenchmarksDir
	}
	store, err := storage.NewStore(opts.StoreKind, opts.DBPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, benchmarksDir: opts.BenchmarksDir}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

type RunRequest struct {
	RunID         string
	CipherPath    string
	ReferencePath string
	NgramWidth    int
	Population    int
	Generations   int
	NumChildren   int
	NewRandom     int
	MutationRate  float64
	MutationType  string
	KillWorst     int
	KeepBest      int
	ScoreGoal     int64
	SeedKeyword   string
	Seed          int64
	Workers       int
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	BestKey          string
	BestScore        int64
	Plaintext        string
	BestByGeneration []int64
	Generations      int
}

// Run executes one crack run end to end: load the reference table and the
// ciphertext, search, then persist artifacts and store records.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.CipherPath == "" {
		return RunSummary{}, errors.New("cipher path is required")
	}
	if req.ReferencePath == "" {
		return RunSummary{}, errors.New("reference path is required")
	}
	if req.NgramWidth == 0 {
		req.NgramWidth = 4
	}
	if req.Population == 0 {
		req.Population = 100
	}
	if req.Generations == 0 {
		req.Generations = 100
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}
	if req.MutationType == "" {
		req.MutationType = "inversion"
	}

	mutationType, err := genetic.ParseMutationType(req.MutationType)
	if err != nil {
		return RunSummary{}, err
	}

	ref, err := ngram.New(req.NgramWidth)
	if err != nil {
		return RunSummary{}, err
	}
	if err := ref.ReadTableFile(req.ReferencePath); err != nil {
		return RunSummary{}, err
	}
	scorer, err := fitness.NewEnglish(ref)
	if err != nil {
		return RunSummary{}, fmt.Errorf("%s: %w", req.ReferencePath, err)
	}

	cipher, err := os.ReadFile(req.CipherPath)
	if err != nil {
		return RunSummary{}, err
	}

	params := genetic.Params{
		NumChildren:  req.NumChildren,
		NewRandom:    req.NewRandom,
		MutationRate: req.MutationRate,
		MutationType: mutationType,
		KillWorst:    req.KillWorst,
		KeepBest:     req.KeepBest,
	}
	engine, err := cracker.New(cracker.Config{
		Cipher:         cipher,
		Scorer:         scorer,
		Params:         params,
		PopulationSize: req.Population,
		Generations:    req.Generations,
		ScoreGoal:      req.ScoreGoal,
		SeedKeyword:    req.SeedKeyword,
		Seed:           req.Seed,
		Workers:        req.Workers,
	})
	if err != nil {
		return RunSummary{}, err
	}

	result, err := engine.Run(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	now := time.Now().UTC()
	runID := req.RunID
	if runID == "" {
		runID = fmt.Sprintf("crack-%d-%d", req.Seed, now.Unix())
	}

	if err := c.persistRun(ctx, runID, result); err != nil {
		return RunSummary{}, err
	}

	top := make([]model.TopKeyRecord, 0, len(result.FinalPopulation))
	for i, scored := range result.FinalPopulation {
		top = append(top, model.TopKeyRecord{Rank: i + 1, Key: scored.Key, Score: scored.Score})
	}
	runDir, err := stats.WriteRunArtifacts(c.benchmarksDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:          runID,
			CipherPath:     req.CipherPath,
			ReferencePath:  req.ReferencePath,
			NgramWidth:     req.NgramWidth,
			PopulationSize: req.Population,
			Generations:    req.Generations,
			NumChildren:    req.NumChildren,
			NewRandom:      req.NewRandom,
			MutationRate:   req.MutationRate,
			MutationType:   mutationType.String(),
			KillWorst:      req.KillWorst,
			KeepBest:       req.KeepBest,
			ScoreGoal:      req.ScoreGoal,
			SeedKeyword:    req.SeedKeyword,
			Seed:           req.Seed,
			Workers:        req.Workers,
		},
		BestByGeneration: result.BestByGeneration,
		BestScore:        result.BestScore,
		BestKey:          result.BestKey,
		Plaintext:        result.Plaintext,
		TopKeys:          top,
		Diagnostics:      result.Diagnostics,
	})
	if err != nil {
		return RunSummary{}, err
	}
	if err := stats.AppendRunIndex(c.benchmarksDir, stats.RunIndexEntry{
		RunID:          runID,
		CreatedAtUTC:   now.Format(time.RFC3339),
		CipherPath:     req.CipherPath,
		NgramWidth:     req.NgramWidth,
		Seed:           req.Seed,
		PopulationSize: req.Population,
		Generations:    req.Generations,
		BestScore:      result.BestScore,
		BestKey:        result.BestKey,
	}); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            runID,
		ArtifactsDir:     runDir,
		BestKey:          result.BestKey,
		BestScore:        result.BestScore,
		Plaintext:        string(result.Plaintext),
		BestByGeneration: result.BestByGeneration,
		Generations:      result.Generations,
	}, nil
}

func (c *Client) persistRun(ctx context.Context, runID string, result cracker.RunResult) error {
	if err := c.store.Init(ctx); err != nil {
		return err
	}

	keys := make([]string, 0, len(result.FinalPopulation))
	top := make([]model.TopKeyRecord, 0, len(result.FinalPopulation))
	for i, scored := range result.FinalPopulation {
		keys = append(keys, scored.Key)
		top = append(top, model.TopKeyRecord{Rank: i + 1, Key: scored.Key, Score: scored.Score})
	}

	if err := c.store.SavePopulation(ctx, model.Population{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:         runID,
		Keys:       keys,
		Generation: result.Generations,
	}); err != nil {
		return err
	}
	if err := c.store.SaveScoreHistory(ctx, runID, result.BestByGeneration); err != nil {
		return err
	}
	if err := c.store.SaveGenerationDiagnostics(ctx, runID, result.Diagnostics); err != nil {
		return err
	}
	return c.store.SaveTopKeys(ctx, runID, top)
}

// EncryptRequest configures the encrypt/decrypt utility operations.
type EncryptRequest struct {
	Keyword    string
	InputPath  string
	KeyOptions playfair.Options
}

// Encrypt sanitizes and encrypts the input file, returning the ciphertext.
func (c *Client) Encrypt(req EncryptRequest) ([]byte, error) {
	text, err := os.ReadFile(req.InputPath)
	if err != nil {
		return nil, err
	}
	key := playfair.NewFromKeyword(req.Keyword, req.KeyOptions)
	return key.Encrypt(key.Sanitize(text))
}

// Decrypt sanitizes and decrypts the input file, returning the plaintext
// with any encryption pad letters still in place.
func (c *Client) Decrypt(req EncryptRequest) ([]byte, error) {
	text, err := os.ReadFile(req.InputPath)
	if err != nil {
		return nil, err
	}
	key := playfair.NewFromKeyword(req.Keyword, req.KeyOptions)
	return key.Decrypt(key.Sanitize(text))
}

// BuildReference collects n-gram counts from a raw corpus file and writes
// them as a reference table.
func (c *Client) BuildReference(corpusPath, tablePath string, n int) error {
	collector, err := ngram.New(n)
	if err != nil {
		return err
	}
	f, err := os.Open(corpusPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := collector.Collect(f); err != nil {
		return err
	}
	if collector.Total() == 0 {
		return fmt.Errorf("%s: %w", corpusPath, ngram.ErrEmpty)
	}
	return collector.WriteTableFile(tablePath)
}

// Runs lists the run index, newest first.
func (c *Client) Runs(limit int) ([]stats.RunIndexEntry, error) {
	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ScoreHistory returns the per-generation best scores of a run, resolving
// the latest run from the index when requested.
func (c *Client) ScoreHistory(ctx context.Context, runID string, latest bool) ([]int64, error) {
	runID, err := c.resolveRunID(runID, latest)
	if err != nil {
		return nil, err
	}
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetScoreHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		history, ok, err = stats.ReadScoreHistory(c.benchmarksDir, runID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("no score history for run %s", runID)
		}
	}
	return history, nil
}

// TopKeys returns the final ranked keys of a run.
func (c *Client) TopKeys(ctx context.Context, runID string, latest bool, limit int) ([]model.TopKeyRecord, error) {
	runID, err := c.resolveRunID(runID, latest)
	if err != nil {
		return nil, err
	}
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	top, ok, err := c.store.GetTopKeys(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		top, ok, err = stats.ReadTopKeys(c.benchmarksDir, runID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("no top keys for run %s", runID)
		}
	}
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

// PlotScoreHistory renders a run's score history to an image file.
func (c *Client) PlotScoreHistory(ctx context.Context, runID string, latest bool, outPath string) error {
	runID, err := c.resolveRunID(runID, latest)
	if err != nil {
		return err
	}
	history, err := c.ScoreHistory(ctx, runID, false)
	if err != nil {
		return err
	}
	return stats.PlotScoreHistory(history, fmt.Sprintf("Run %s", runID), outPath)
}

func (c *Client) resolveRunID(runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either a run id or latest, not both")
	}
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", errors.New("a run id or latest is required")
	}
	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs found")
	}
	return entries[0].RunID, nil
}
