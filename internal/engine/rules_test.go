package engine

import (
	"errors"
	"testing"
)

func TestEvaluateBall(t *testing.T) {
	cases := []struct {
		name      string
		action    BallAction
		powerplay bool
		want      int
	}{
		{name: "plain runs", action: BallAction{Runs: 3}, want: 3},
		{name: "plain six", action: BallAction{Runs: 6}, want: 6},
		{name: "dot ball", action: BallAction{Runs: 0}, want: 0},
		{name: "powerplay doubles runs", action: BallAction{Runs: 4}, powerplay: true, want: 8},
		{name: "wicket discards runs", action: BallAction{Runs: 6, IsWicket: true}, want: -5},
		{name: "powerplay wicket", action: BallAction{Runs: 2, IsWicket: true}, powerplay: true, want: -10},
		{name: "wide after doubling", action: BallAction{Runs: 2, IsWide: true}, powerplay: true, want: 6},
		{name: "noball flat", action: BallAction{Runs: 1, IsNoball: true}, want: 3},
		{name: "noball and wide stack", action: BallAction{Runs: 0, IsNoball: true, IsWide: true}, want: 4},
		{name: "misconduct", action: BallAction{Runs: 4, Misconduct: true}, want: -1},
		{name: "everything at once", action: BallAction{Runs: 4, IsWicket: true, IsNoball: true, Misconduct: true}, powerplay: true, want: -13},
		{name: "catch out uses the same penalty", action: BallAction{IsWicket: true, WicketType: WicketCatchOut, FieldingTeamID: "C"}, want: -5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluateBall(tc.action, tc.powerplay)
			if got != tc.want {
				t.Fatalf("EvaluateBall(%+v, %v): got %d, want %d", tc.action, tc.powerplay, got, tc.want)
			}
		})
	}
}

func TestEvaluateBall_PlainDeliveryIsIdentity(t *testing.T) {
	for _, runs := range []int{0, 1, 2, 3, 4, 6} {
		if got := EvaluateBall(BallAction{Runs: runs}, false); got != runs {
			t.Fatalf("runs=%d: got %d", runs, got)
		}
	}
}

func TestBallAction_Normalize(t *testing.T) {
	cases := []struct {
		name    string
		action  BallAction
		wantErr error
		want    WicketType
	}{
		{name: "five runs is not a scoring option", action: BallAction{Runs: 5}, wantErr: ErrInvalidRuns},
		{name: "negative runs", action: BallAction{Runs: -1}, wantErr: ErrInvalidRuns},
		{name: "wicket type without wicket", action: BallAction{WicketType: WicketNormal}, wantErr: ErrInvalidWicket},
		{name: "unknown wicket type", action: BallAction{IsWicket: true, WicketType: "STUMPED"}, wantErr: ErrInvalidWicket},
		{name: "catch needs a fielding team", action: BallAction{IsWicket: true, WicketType: WicketCatchOut}, wantErr: ErrFieldingTeamRequired},
		{name: "run out needs a fielding team", action: BallAction{IsWicket: true, WicketType: WicketRunOut}, wantErr: ErrFieldingTeamRequired},
		{name: "wicket defaults to normal", action: BallAction{IsWicket: true}, want: WicketNormal},
		{name: "bowling team wicket", action: BallAction{IsWicket: true, WicketType: WicketBowlingTeam}, want: WicketBowlingTeam},
		{name: "plain ball", action: BallAction{Runs: 4}, want: WicketNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.action.Normalize()
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got.WicketType != tc.want {
				t.Fatalf("wicket type: got %q, want %q", got.WicketType, tc.want)
			}
		})
	}
}
