package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/DoyleJ11/dualstrike/internal/engine"
)

// Memory keeps matches in process. Saved and loaded values are deep copies.
type Memory struct {
	mu      sync.RWMutex
	matches map[string]engine.Match
}

func NewMemory() *Memory {
	return &Memory{matches: make(map[string]engine.Match)}
}

func (s *Memory) SaveMatch(ctx context.Context, m engine.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.ID] = m.Clone()
	return nil
}

func (s *Memory) LoadMatch(ctx context.Context, id string) (engine.Match, error) {
	if err := ctx.Err(); err != nil {
		return engine.Match{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return engine.Match{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.Clone(), nil
}

func (s *Memory) ListMatches(ctx context.Context) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]Summary, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, summarize(m))
	}
	s.mu.RUnlock()

	sortSummaries(out)
	return out, nil
}

func (s *Memory) Close() error { return nil }
