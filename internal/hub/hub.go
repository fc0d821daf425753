package hub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/dualstrike/internal/engine"
	"github.com/DoyleJ11/dualstrike/internal/matchroom"
	"github.com/DoyleJ11/dualstrike/internal/notify"
	"github.com/DoyleJ11/dualstrike/internal/store"
)

var (
	ErrExists   = errors.New("match already exists")
	ErrNotFound = errors.New("match not found")
	ErrStopped  = errors.New("hub stopped")
)

// Store is what the hub needs to create and revive rooms.
type Store interface {
	SaveMatch(ctx context.Context, m engine.Match) error
	LoadMatch(ctx context.Context, id string) (engine.Match, error)
}

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	Match engine.Match
	Reply chan RoomResult
}

// GetRoom returns the live room, loading the match from the store first if
// no room is running for it.
type GetRoom struct {
	ID    string
	Reply chan RoomResult
}

type RemoveRoom struct {
	ID string
}

type ShutdownHub struct {
	Done chan struct{}
}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type RoomResult struct {
	Room *matchroom.Room
	Err  error
}

type Options struct {
	Store          Store
	Notifier       notify.Notifier
	Logger         *zap.Logger
	PersistTimeout time.Duration
}

type Hub struct {
	inbox chan HubMsg
	rooms map[string]*matchroom.Room
	opts  Options

	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(parent context.Context, opts Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = 5 * time.Second
	}
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*matchroom.Room),
		opts:   opts,
		logger: opts.Logger.Named("hub"),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.stopRooms()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				msg.Reply <- h.create(msg.Match)

			case GetRoom:
				msg.Reply <- h.get(msg.ID)

			case RemoveRoom:
				if r := h.rooms[msg.ID]; r != nil {
					stopRoom(r)
					delete(h.rooms, msg.ID)
				}

			case ShutdownHub:
				h.stopRooms()
				h.cancel()
				if msg.Done != nil {
					close(msg.Done)
				}
				return
			}
		}
	}
}

func (h *Hub) create(m engine.Match) RoomResult {
	if h.rooms[m.ID] != nil {
		return RoomResult{Err: fmt.Errorf("%w: %s", ErrExists, m.ID)}
	}
	if h.opts.Store != nil {
		ctx, cancel := context.WithTimeout(h.ctx, h.opts.PersistTimeout)
		defer cancel()

		if _, err := h.opts.Store.LoadMatch(ctx, m.ID); err == nil {
			return RoomResult{Err: fmt.Errorf("%w: %s", ErrExists, m.ID)}
		} else if !errors.Is(err, store.ErrNotFound) {
			return RoomResult{Err: err}
		}
		if err := h.opts.Store.SaveMatch(ctx, m); err != nil {
			return RoomResult{Err: fmt.Errorf("%w: %w", matchroom.ErrPersist, err)}
		}
	}
	r := h.start(m)
	h.logger.Info("match created", zap.String("match_id", m.ID))
	return RoomResult{Room: r}
}

func (h *Hub) get(id string) RoomResult {
	if r := h.rooms[id]; r != nil {
		return RoomResult{Room: r}
	}
	if h.opts.Store == nil {
		return RoomResult{Err: fmt.Errorf("%w: %s", ErrNotFound, id)}
	}

	ctx, cancel := context.WithTimeout(h.ctx, h.opts.PersistTimeout)
	defer cancel()
	m, err := h.opts.Store.LoadMatch(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return RoomResult{Err: fmt.Errorf("%w: %s", ErrNotFound, id)}
	}
	if err != nil {
		return RoomResult{Err: err}
	}
	h.logger.Info("match loaded", zap.String("match_id", id), zap.String("state", string(m.State)))
	return RoomResult{Room: h.start(m)}
}

func (h *Hub) start(m engine.Match) *matchroom.Room {
	r := matchroom.NewRoom(h.ctx, m, matchroom.Options{
		Store:          h.opts.Store,
		Notifier:       h.opts.Notifier,
		Logger:         h.opts.Logger,
		PersistTimeout: h.opts.PersistTimeout,
	})
	h.rooms[m.ID] = r
	return r
}

func (h *Hub) stopRooms() {
	for id, r := range h.rooms {
		stopRoom(r)
		delete(h.rooms, id)
	}
}

func stopRoom(r *matchroom.Room) {
	select {
	case r.Inbox() <- matchroom.Shutdown{}:
	case <-r.Done():
	}
	<-r.Done()
}

func (h *Hub) request(ctx context.Context, msg HubMsg, reply chan RoomResult) (*matchroom.Room, error) {
	select {
	case h.inbox <- msg:
	case <-h.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-reply:
		return res.Room, res.Err
	case <-h.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Create persists m and starts its room.
func (h *Hub) Create(ctx context.Context, m engine.Match) (*matchroom.Room, error) {
	reply := make(chan RoomResult, 1)
	return h.request(ctx, CreateRoom{Match: m, Reply: reply}, reply)
}

// Get returns the room for id, reviving it from the store if needed.
func (h *Hub) Get(ctx context.Context, id string) (*matchroom.Room, error) {
	reply := make(chan RoomResult, 1)
	return h.request(ctx, GetRoom{ID: id, Reply: reply}, reply)
}

// Shutdown stops every room and the hub loop.
func (h *Hub) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case h.inbox <- ShutdownHub{Done: done}:
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
