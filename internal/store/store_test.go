package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/dualstrike/internal/engine"
)

var teams = []engine.TeamID{"A", "B", "C", "D"}

func apply(t *testing.T, m engine.Match, cmd engine.Command) engine.Match {
	t.Helper()
	_, next, err := engine.Apply(m, cmd)
	require.NoError(t, err)
	return next
}

// scoredMatch returns match id with the first innings in progress and the
// given runs recorded in over 1.
func scoredMatch(t *testing.T, id string, updated time.Time, runs ...int) engine.Match {
	t.Helper()
	m, err := engine.NewMatch(id, teams, map[engine.TeamID][]engine.PlayerID{"D": {"d1", "d2"}})
	require.NoError(t, err)
	m.CreatedAt = updated.Add(-time.Hour)
	m.UpdatedAt = updated

	m = apply(t, m, engine.Command{Type: engine.CmdMarkReady})
	m = apply(t, m, engine.Command{Type: engine.CmdRecordToss, BattingOrder: teams})
	m = apply(t, m, engine.Command{Type: engine.CmdStartInnings, Innings: 0})
	for i, r := range runs {
		m = apply(t, m, engine.Command{
			Type:       engine.CmdRecordBall,
			Innings:    0,
			Over:       1,
			BallNumber: i + 1,
			Action:     engine.BallAction{Runs: r},
		})
	}
	return m
}

func assertSameMatch(t *testing.T, want, got engine.Match) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.State, got.State)
	assert.Equal(t, want.TeamIDs, got.TeamIDs)
	assert.Equal(t, want.BattingOrder, got.BattingOrder)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
	require.Len(t, got.Innings, len(want.Innings))
	for i := range want.Innings {
		w, g := want.Innings[i], got.Innings[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.State, g.State)
		assert.Equal(t, w.TotalRuns, g.TotalRuns)
		assert.Equal(t, w.TotalWickets, g.TotalWickets)
		require.Len(t, g.Overs, len(w.Overs))
		for o := range w.Overs {
			assert.Equal(t, w.Overs[o].BowlingTeamID, g.Overs[o].BowlingTeamID)
			assert.Equal(t, len(w.Overs[o].Balls), len(g.Overs[o].Balls))
			for b := range w.Overs[o].Balls {
				assert.Equal(t, w.Overs[o].Balls[b], g.Overs[o].Balls[b])
			}
		}
	}
}

// exerciseStore runs the behaviour every Store implementation shares.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.LoadMatch(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	first := scoredMatch(t, "m-1", now, 4, 6)
	require.NoError(t, s.SaveMatch(ctx, first))

	got, err := s.LoadMatch(ctx, "m-1")
	require.NoError(t, err)
	assertSameMatch(t, first, got)
	assert.Equal(t, 10, got.Innings[0].TotalRuns)

	// Saving the same state again is harmless.
	require.NoError(t, s.SaveMatch(ctx, first))

	second := scoredMatch(t, "m-2", now.Add(time.Minute), 1)
	require.NoError(t, s.SaveMatch(ctx, second))

	list, err := s.ListMatches(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "m-2", list[0].ID, "most recently updated first")
	assert.Equal(t, "m-1", list[1].ID)
	assert.Equal(t, engine.MatchInProgress, list[1].State)
	assert.Equal(t, teams, list[1].TeamIDs)
}

func TestMemory_Store(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	m := scoredMatch(t, "m-1", time.Now(), 2)
	require.NoError(t, s.SaveMatch(ctx, m))

	m.Innings[0].TotalRuns = 99
	got, err := s.LoadMatch(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Innings[0].TotalRuns)

	got.Innings[0].Overs[0].Balls[0].Runs = 6
	again, err := s.LoadMatch(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Innings[0].Overs[0].Balls[0].Runs)
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMemory().SaveMatch(ctx, engine.Match{ID: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
