package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/dualstrike/internal/engine"
	"github.com/DoyleJ11/dualstrike/internal/hub"
	"github.com/DoyleJ11/dualstrike/internal/matchroom"
	"github.com/DoyleJ11/dualstrike/internal/store"
	"github.com/DoyleJ11/dualstrike/internal/types"
	wire "github.com/DoyleJ11/dualstrike/pkg/types"
)

var errBadRequest = errors.New("bad request")

// Lister lists persisted matches.
type Lister interface {
	ListMatches(ctx context.Context) ([]store.Summary, error)
}

type Handlers struct {
	hub    *hub.Hub
	lister Lister
	logger *zap.Logger
}

func NewHandlers(h *hub.Hub, lister Lister, logger *zap.Logger) *Handlers {
	return &Handlers{hub: h, lister: lister, logger: logger.Named("http")}
}

type matchResponse struct {
	Version    int                   `json:"version"`
	Match      engine.Match          `json:"match"`
	Scoreboard []wire.InningsSummary `json:"scoreboard"`
}

type commandResponse struct {
	Version int            `json:"version"`
	Events  []engine.Event `json:"events"`
	Match   engine.Match   `json:"match"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, status := types.ErrorCode(err)
	if errors.Is(err, errBadRequest) {
		code, status = "bad_request", http.StatusBadRequest
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, wire.ErrorBody{Code: code, Message: err.Error()})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func intParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", errBadRequest, name)
	}
	return n, nil
}

// inningsParam reads the 0-based batting-order position, the same index
// events carry.
func inningsParam(r *http.Request) (int, error) {
	return intParam(r, "idx")
}

func (h *Handlers) room(r *http.Request) (*matchroom.Room, error) {
	return h.hub.Get(r.Context(), chi.URLParam(r, "id"))
}

func (h *Handlers) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req wire.CreateMatchRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := engine.NewMatch(req.ID, types.Teams(req.TeamIDs), types.Rosters(req.Rosters))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	room, err := h.hub.Create(r.Context(), m)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := room.State(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, matchResponse{Version: view.Version, Match: view.Match, Scoreboard: types.Scoreboard(view.Match)})
}

func (h *Handlers) ListMatches(w http.ResponseWriter, r *http.Request) {
	list, err := h.lister.ListMatches(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) GetMatch(w http.ResponseWriter, r *http.Request) {
	room, err := h.room(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := room.State(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matchResponse{Version: view.Version, Match: view.Match, Scoreboard: types.Scoreboard(view.Match)})
}

func (h *Handlers) Rankings(w http.ResponseWriter, r *http.Request) {
	room, err := h.room(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := room.State(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if view.Match.State != engine.MatchCompleted && view.Match.State != engine.MatchLocked {
		h.writeError(w, r, fmt.Errorf("%w: match is %s", engine.ErrMatchIncomplete, view.Match.State))
		return
	}
	writeJSON(w, http.StatusOK, types.RankingsView(view.Match))
}

// command builds an engine command from the request and runs it in the
// match room.
func (h *Handlers) command(build func(r *http.Request) (engine.Command, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := build(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		room, err := h.room(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		res, err := room.Do(r.Context(), cmd)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		// A new ball is created; a redelivered one is only acknowledged.
		status := http.StatusOK
		if cmd.Type == engine.CmdRecordBall && engine.ChangesState(res.Events) {
			status = http.StatusCreated
		}
		writeJSON(w, status, commandResponse{Version: res.Version, Events: res.Events, Match: res.Match})
	}
}

func markReady(*http.Request) (engine.Command, error) {
	return engine.Command{Type: engine.CmdMarkReady}, nil
}

func recordToss(r *http.Request) (engine.Command, error) {
	var req wire.TossRequest
	if err := decode(r, &req); err != nil {
		return engine.Command{}, err
	}
	return types.TossCommand(req), nil
}

func lockMatch(*http.Request) (engine.Command, error) {
	return engine.Command{Type: engine.CmdLockMatch}, nil
}

func inningsCommand(t engine.CommandType) func(*http.Request) (engine.Command, error) {
	return func(r *http.Request) (engine.Command, error) {
		idx, err := inningsParam(r)
		if err != nil {
			return engine.Command{}, err
		}
		return engine.Command{Type: t, Innings: idx}, nil
	}
}

func overParams(r *http.Request) (int, int, error) {
	idx, err := inningsParam(r)
	if err != nil {
		return 0, 0, err
	}
	over, err := intParam(r, "over")
	if err != nil {
		return 0, 0, err
	}
	return idx, over, nil
}

func assignOver(r *http.Request) (engine.Command, error) {
	idx, over, err := overParams(r)
	if err != nil {
		return engine.Command{}, err
	}
	var req wire.AssignOverRequest
	if err := decode(r, &req); err != nil {
		return engine.Command{}, err
	}
	return types.AssignCommand(idx, over, req), nil
}

func setPowerplay(r *http.Request) (engine.Command, error) {
	idx, over, err := overParams(r)
	if err != nil {
		return engine.Command{}, err
	}
	return engine.Command{Type: engine.CmdSetPowerplay, Innings: idx, Over: over}, nil
}

func recordBall(r *http.Request) (engine.Command, error) {
	idx, over, err := overParams(r)
	if err != nil {
		return engine.Command{}, err
	}
	var req wire.BallRequest
	if err := decode(r, &req); err != nil {
		return engine.Command{}, err
	}
	return types.BallCommand(idx, over, req), nil
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
