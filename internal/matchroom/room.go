package matchroom

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/dualstrike/internal/engine"
	"github.com/DoyleJ11/dualstrike/internal/notify"
)

var (
	ErrPersist = errors.New("could not persist match")
	ErrClosed  = errors.New("match room closed")
)

type Msg interface{ isRoomMsg() }

// FromClient carries one command. Reply, if set, must have room for one
// Result.
type FromClient struct {
	Cmd   engine.Command
	Reply chan Result
}

func (FromClient) isRoomMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isRoomMsg() {}

// Leave unregisters a client and closes its outbox.
type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type Snapshot struct {
	Version int
	Match   engine.Match
}

type View struct {
	Version    int
	NumClients int
	Match      engine.Match
}

type Result struct {
	Version int
	Events  []engine.Event
	Match   engine.Match
	Err     error
}

// Saver is the persistence a room needs.
type Saver interface {
	SaveMatch(ctx context.Context, m engine.Match) error
}

type Options struct {
	Store          Saver
	Notifier       notify.Notifier
	Logger         *zap.Logger
	PersistTimeout time.Duration
}

// Room owns one match. Every mutation happens on its loop goroutine.
type Room struct {
	inbox   chan Msg
	match   engine.Match
	version int
	clients map[string]chan Snapshot

	store          Saver
	notifier       notify.Notifier
	logger         *zap.Logger
	persistTimeout time.Duration
	now            func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRoom(parent context.Context, initial engine.Match, opts Options) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		inbox:          make(chan Msg, 64),
		match:          initial,
		clients:        make(map[string]chan Snapshot),
		store:          opts.Store,
		notifier:       opts.Notifier,
		logger:         opts.Logger,
		persistTimeout: opts.PersistTimeout,
		now:            time.Now,
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
	}
	if r.notifier == nil {
		r.notifier = notify.Nop{}
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	r.logger = r.logger.Named("room").With(zap.String("match_id", initial.ID))
	if r.persistTimeout <= 0 {
		r.persistTimeout = 5 * time.Second
	}

	go r.loop()
	return r
}

func (r *Room) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client and send the current snapshot immediately.
				r.clients[msg.ClientID] = msg.Outbox
				r.sendTo(msg.ClientID, msg.Outbox, Snapshot{Version: r.version, Match: r.match.Clone()})

			case Leave:
				if ch, ok := r.clients[msg.ClientID]; ok {
					close(ch)
					delete(r.clients, msg.ClientID)
				}

			case FromClient:
				res := r.handle(msg.Cmd)
				if msg.Reply != nil {
					select {
					case msg.Reply <- res:
					default:
						r.logger.Warn("reply channel full, dropping result", zap.String("command", string(msg.Cmd.Type)))
					}
				}

			case GetState:
				msg.Reply <- View{
					Version:    r.version,
					NumClients: len(r.clients),
					Match:      r.match.Clone(),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handle(cmd engine.Command) Result {
	events, next, err := engine.Apply(r.match, cmd)
	if err != nil {
		r.logger.Debug("command rejected", zap.String("command", string(cmd.Type)), zap.Error(err))
		return Result{Version: r.version, Match: r.match.Clone(), Err: err}
	}

	// A redelivered ball is acknowledged without a new version.
	if !engine.ChangesState(events) {
		return Result{Version: r.version, Events: events, Match: r.match.Clone()}
	}

	next.UpdatedAt = r.now().UTC()
	if next.CreatedAt.IsZero() {
		next.CreatedAt = next.UpdatedAt
	}
	if err := r.persist(next); err != nil {
		r.logger.Error("persist failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		r.alert(notify.LevelError, "Persist failed", fmt.Sprintf("%s was not saved: %v", cmd.Type, err))
		return Result{Version: r.version, Match: r.match.Clone(), Err: fmt.Errorf("%w: %w", ErrPersist, err)}
	}

	r.match = next
	r.version++
	r.logEvents(events)
	r.broadcast(Snapshot{Version: r.version, Match: r.match.Clone()})

	return Result{Version: r.version, Events: events, Match: r.match.Clone()}
}

func (r *Room) persist(m engine.Match) error {
	if r.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(r.ctx, r.persistTimeout)
	defer cancel()
	return r.store.SaveMatch(ctx, m)
}

func (r *Room) logEvents(events []engine.Event) {
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtAutoWicket:
			r.logger.Info("third dot ball, wicket awarded", zap.Int("innings", ev.Innings), zap.Int("over", ev.Over))
		case engine.EvtInningsCompleted:
			r.logger.Info("innings completed", zap.Int("innings", ev.Innings), zap.Int("final_score", ev.FinalScore))
		case engine.EvtMatchCompleted:
			r.logger.Info("match completed", zap.Any("rankings", ev.Rankings))
			r.alert(notify.LevelInfo, "Match completed", standings(ev.Rankings))
		case engine.EvtRankingRepaired:
			r.logger.Warn("final score missing at ranking, recomputed from totals", zap.Any("teams", ev.Teams))
			r.alert(notify.LevelWarn, "Ranking repaired", fmt.Sprintf("final score recomputed for %v", ev.Teams))
		default:
			r.logger.Debug("event", zap.String("type", string(ev.Type)), zap.Int("innings", ev.Innings))
		}
	}
}

func standings(rankings []engine.MatchRanking) string {
	var b strings.Builder
	for _, rk := range rankings {
		fmt.Fprintf(&b, "%d. %s %d (%s pts)\n", rk.Rank, rk.TeamID, rk.TotalScore, rk.Points.String())
	}
	return b.String()
}

func (r *Room) alert(level notify.Level, title, message string) {
	ctx, cancel := context.WithTimeout(r.ctx, r.persistTimeout)
	defer cancel()
	err := r.notifier.Notify(ctx, notify.Alert{MatchID: r.match.ID, Level: level, Title: title, Message: message})
	if err != nil {
		r.logger.Warn("notify failed", zap.Error(err))
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch) // Tell client no more snapshots
		delete(r.clients, id)
	}
	r.cancel()
}

func (r *Room) broadcast(snap Snapshot) {
	for id, ch := range r.clients {
		r.sendTo(id, ch, snap)
	}
}

// sendTo drops a client whose outbox is full.
func (r *Room) sendTo(id string, ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
	default:
		r.logger.Debug("dropping slow client", zap.String("client_id", id))
		close(ch)
		delete(r.clients, id)
	}
}

// Inbox exposes the inbox so the hub and transports can send messages.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Done is closed once the loop has exited.
func (r *Room) Done() <-chan struct{} { return r.done }

// Do sends cmd and waits for its result.
func (r *Room) Do(ctx context.Context, cmd engine.Command) (Result, error) {
	reply := make(chan Result, 1)
	select {
	case r.inbox <- FromClient{Cmd: cmd, Reply: reply}:
	case <-r.done:
		return Result{}, ErrClosed
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	select {
	case res := <-reply:
		return res, res.Err
	case <-r.done:
		return Result{}, ErrClosed
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// State returns the current version and a copy of the match.
func (r *Room) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	select {
	case r.inbox <- GetState{Reply: reply}:
	case <-r.done:
		return View{}, ErrClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-r.done:
		return View{}, ErrClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}
