package storage

import (
	"context"

	"pfcrack/internal/model"
)

// Store persists crack-run state: population snapshots, per-run score
// history, generation diagnostics, and the final ranked keys.
type Store interface {
	Init(ctx context.Context) error
	SavePopulation(ctx context.Context, population model.Population) error
	GetPopulation(ctx context.Context, id string) (model.Population, bool, error)
	SaveScoreHistory(ctx context.Context, runID string, history []int64) error
	GetScoreHistory(ctx context.Context, runID string) ([]int64, bool, error)
	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
	SaveTopKeys(ctx context.Context, runID string, top []model.TopKeyRecord) error
	GetTopKeys(ctx context.Context, runID string) ([]model.TopKeyRecord, bool, error)
}
