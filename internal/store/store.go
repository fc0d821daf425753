package store

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/DoyleJ11/dualstrike/internal/engine"
)

var ErrNotFound = errors.New("match not found")

// Store persists whole match aggregates. SaveMatch must be safe to repeat
// with the same state.
type Store interface {
	SaveMatch(ctx context.Context, m engine.Match) error
	LoadMatch(ctx context.Context, id string) (engine.Match, error)
	ListMatches(ctx context.Context) ([]Summary, error)
	Close() error
}

// Summary is the listing view of a match.
type Summary struct {
	ID        string            `json:"id"`
	TeamIDs   []engine.TeamID   `json:"teamIds"`
	State     engine.MatchState `json:"state"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func summarize(m engine.Match) Summary {
	return Summary{
		ID:        m.ID,
		TeamIDs:   slices.Clone(m.TeamIDs),
		State:     m.State,
		UpdatedAt: m.UpdatedAt,
	}
}

// sortSummaries orders most recently updated first, then by id.
func sortSummaries(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
