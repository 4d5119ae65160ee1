package storage

import (
	"context"
	"sync"

	"pfcrack/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	populations map[string]model.Population
	history     map[string][]int64
	diagnostics map[string][]model.GenerationDiagnostics
	topKeys     map[string][]model.TopKeyRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.populations = make(map[string]model.Population)
	s.history = make(map[string][]int64)
	s.diagnostics = make(map[string][]model.GenerationDiagnostics)
	s.topKeys = make(map[string][]model.TopKeyRecord)
	return nil
}

func (s *MemoryStore) SavePopulation(_ context.Context, population model.Population) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := population
	copied.Keys = append([]string(nil), population.Keys...)
	s.populations[population.ID] = copied
	return nil
}

func (s *MemoryStore) GetPopulation(_ context.Context, id string) (model.Population, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	population, ok := s.populations[id]
	if !ok {
		return model.Population{}, false, nil
	}
	copied := population
	copied.Keys = append([]string(nil), population.Keys...)
	return copied, true, nil
}

func (s *MemoryStore) SaveScoreHistory(_ context.Context, runID string, history []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[runID] = append([]int64(nil), history...)
	return nil
}

func (s *MemoryStore) GetScoreHistory(_ context.Context, runID string) ([]int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]int64(nil), history...), true, nil
}

func (s *MemoryStore) SaveGenerationDiagnostics(_ context.Context, runID string, diagnostics []model.GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	s.diagnostics[runID] = copied
	return nil
}

func (s *MemoryStore) GetGenerationDiagnostics(_ context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.diagnostics[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	return copied, true, nil
}

func (s *MemoryStore) SaveTopKeys(_ context.Context, runID string, top []model.TopKeyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.TopKeyRecord, len(top))
	copy(copied, top)
	s.topKeys[runID] = copied
	return nil
}

func (s *MemoryStore) GetTopKeys(_ context.Context, runID string) ([]model.TopKeyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	top, ok := s.topKeys[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.TopKeyRecord, len(top))
	copy(copied, top)
	return copied, true, nil
}
