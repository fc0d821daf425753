package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/dualstrike/internal/hub"
	"github.com/DoyleJ11/dualstrike/internal/matchroom"
	"github.com/DoyleJ11/dualstrike/internal/types"
	wire "github.com/DoyleJ11/dualstrike/pkg/types"
)

const (
	writeTimeout   = 3 * time.Second
	commandTimeout = 10 * time.Second
	outboxSize     = 8
)

type Options struct {
	// OriginPatterns is passed to websocket.Accept. Empty means same origin only.
	OriginPatterns []string
}

// Handler upgrades /ws?match=ID. Every connection receives snapshots and
// may send commands, which are answered on the same connection.
func Handler(h *hub.Hub, logger *zap.Logger, opts Options) http.HandlerFunc {
	logger = logger.Named("ws")
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("match")
		if matchID == "" {
			http.Error(w, "missing match", http.StatusBadRequest)
			return
		}

		room, err := h.Get(r.Context(), matchID)
		if err != nil {
			code, status := types.ErrorCode(err)
			http.Error(w, code, status)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: opts.OriginPatterns})
		if err != nil {
			logger.Debug("accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := logger.With(zap.String("match_id", matchID), zap.String("client_id", clientID))
		out := make(chan matchroom.Snapshot, outboxSize)

		select {
		case room.Inbox() <- matchroom.Join{ClientID: clientID, Outbox: out}:
		case <-room.Done():
			conn.Close(websocket.StatusTryAgainLater, "match closed")
			return
		}
		defer func() {
			select {
			case room.Inbox() <- matchroom.Leave{ClientID: clientID}:
			case <-room.Done():
			}
		}()
		log.Debug("client joined")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine
		go func() {
			for snap := range out {
				m := snap.Match
				send(ctx, conn, types.ServerMessage{Type: wire.MsgStateSnapshot, Version: snap.Version, Match: &m})
			}
			// The room closed our outbox: it dropped us or shut down.
			conn.Close(websocket.StatusTryAgainLater, "snapshot stream ended")
			cancel()
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					log.Debug("client left")
				default:
					log.Debug("read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				send(ctx, conn, types.ServerMessage{Type: wire.MsgError, Error: &wire.ErrorBody{Code: "bad_json", Message: err.Error()}})
				continue
			}

			cmd, ok := types.ToCommand(cm)
			if !ok {
				send(ctx, conn, types.ServerMessage{Type: wire.MsgError, RequestID: cm.RequestID,
					Error: &wire.ErrorBody{Code: "unknown_type", Message: "unknown type " + cm.Type}})
				continue
			}

			cmdCtx, cmdCancel := context.WithTimeout(ctx, commandTimeout)
			res, err := room.Do(cmdCtx, cmd)
			cmdCancel()
			if err != nil {
				send(ctx, conn, types.ServerMessage{Type: wire.MsgError, RequestID: cm.RequestID, Version: res.Version, Error: types.ErrorBody(err)})
				continue
			}
			send(ctx, conn, types.ServerMessage{Type: wire.MsgCommandResult, RequestID: cm.RequestID, Version: res.Version, Events: res.Events})
		}
	}
}

func send(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = wsjson.Write(wctx, conn, msg)
}
