// internal/play/room.go
//
// A Room owns one game.Session and is the only goroutine that touches it.
//
// Every event is processed one at a time on the room loop:
//   - player commands (start/restart, answer, hint, snapshot, subscribe),
//   - countdown ticks from a time.Ticker,
//   - the delayed level advance after a correct answer.
//
// The delayed advance carries the session epoch as its cancellation token;
// a restart stops the timer and bumps the epoch, so an advance that still
// fires is ignored by the session.
//
// Subscribers receive a snapshot after each state change. Their channels
// hold one element and always carry the latest state.

package play

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/doanchu/internal/game"
)

// ErrClosed is returned by operations on a closed room.
var ErrClosed = errors.New("play: room closed")

// Options configures a room.
type Options struct {
	Rules        game.Rules
	TickInterval time.Duration // length of one countdown unit
	AdvanceDelay time.Duration // pause between a correct answer and the next level
	// RNG drives word picks, masks and hints. A randomly seeded one is used when nil.
	RNG *rand.Rand
}

// Room runs a single game session on its own goroutine.
type Room struct {
	id    string
	log   zerolog.Logger
	delay time.Duration
	tick  time.Duration

	cmds      chan func()
	done      chan struct{}
	closeOnce sync.Once
	lastSeen  atomic.Int64

	// owned by the loop goroutine
	sess         *game.Session
	ticker       *time.Ticker
	advance      *time.Timer
	advanceEpoch uint64
	subs         map[chan game.Snapshot]struct{}
}

// New creates a room in the not_started phase and starts its loop.
func New(bank game.WordSource, opts Options) *Room {
	rng := opts.RNG
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	id := uuid.NewString()
	r := &Room{
		id:    id,
		log:   log.With().Str("gameId", id).Logger(),
		delay: opts.AdvanceDelay,
		tick:  opts.TickInterval,
		cmds:  make(chan func()),
		done:  make(chan struct{}),
		sess:  game.NewSession(bank, rng, opts.Rules),
		subs:  make(map[chan game.Snapshot]struct{}),
	}
	r.touch()
	r.ticker = time.NewTicker(r.tick)
	go r.run()
	return r
}

// ID returns the game identifier.
func (r *Room) ID() string { return r.id }

// LastSeen is the time of the last player command.
func (r *Room) LastSeen() time.Time { return time.Unix(0, r.lastSeen.Load()) }

// Done is closed once the room has been closed.
func (r *Room) Done() <-chan struct{} { return r.done }

// Close stops the loop and closes every subscription. Safe to call twice.
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

// Start begins (or restarts) the game from level 1.
func (r *Room) Start(ctx context.Context) (game.Snapshot, error) {
	var snap game.Snapshot
	err := r.do(ctx, func() {
		r.cancelAdvance()
		r.sess.Start()
		r.ticker.Reset(r.tick)
		r.log.Info().Msg("game started")
		snap = r.snapshot()
	})
	return snap, err
}

// Submit evaluates an answer. A correct answer schedules the level advance.
func (r *Room) Submit(ctx context.Context, input string) (game.Outcome, game.Snapshot, error) {
	var (
		out  game.Outcome
		snap game.Snapshot
	)
	err := r.do(ctx, func() {
		out = r.sess.Submit(input)
		snap = r.snapshot()
		if out.Result == game.ResultIgnored {
			return
		}
		ev := r.log.Debug()
		switch out.Result {
		case game.ResultCorrect:
			r.scheduleAdvance(out.Epoch)
			ev = r.log.Info()
		case game.ResultDefeat:
			ev = r.log.Info()
		}
		ev.Str("result", string(out.Result)).
			Int("level", snap.Level).
			Int("score", snap.Score).
			Int("lives", snap.Lives).
			Msg("answer")
	})
	return out, snap, err
}

// Hint reveals one letter if the allowance permits.
func (r *Room) Hint(ctx context.Context) (bool, game.Snapshot, error) {
	var (
		ok   bool
		snap game.Snapshot
	)
	err := r.do(ctx, func() {
		ok = r.sess.RevealHint()
		snap = r.snapshot()
	})
	return ok, snap, err
}

// Snapshot returns the current state.
func (r *Room) Snapshot(ctx context.Context) (game.Snapshot, error) {
	var snap game.Snapshot
	err := r.do(ctx, func() { snap = r.snapshot() })
	return snap, err
}

// Subscribe returns a channel that receives the current state immediately and
// then every change. The channel is closed when the room closes or cancel is called.
func (r *Room) Subscribe(ctx context.Context) (<-chan game.Snapshot, func(), error) {
	ch := make(chan game.Snapshot, 1)
	err := r.do(ctx, func() {
		r.subs[ch] = struct{}{}
		ch <- r.snapshot()
	})
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = r.exec(func() {
				if _, ok := r.subs[ch]; ok {
					delete(r.subs, ch)
					close(ch)
				}
			})
		})
	}
	return ch, cancel, nil
}

// do runs fn on the loop and records player activity.
func (r *Room) do(ctx context.Context, fn func()) error {
	r.touch()
	finished := make(chan struct{})
	wrapped := func() {
		fn()
		close(finished)
	}
	select {
	case r.cmds <- wrapped:
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// exec runs fn on the loop without touching the activity clock.
func (r *Room) exec(fn func()) error {
	select {
	case r.cmds <- fn:
		return nil
	case <-r.done:
		return ErrClosed
	}
}

func (r *Room) touch() { r.lastSeen.Store(time.Now().UnixNano()) }

func (r *Room) run() {
	defer r.shutdown()
	for {
		select {
		case <-r.done:
			return

		case fn := <-r.cmds:
			before := r.sess.Snapshot()
			fn()
			if after := r.sess.Snapshot(); !sameState(before, after) {
				r.publish(r.snapshot())
			}

		case <-r.ticker.C:
			if r.sess.Phase() != game.PhaseActive {
				continue
			}
			if r.sess.Tick() {
				snap := r.snapshot()
				r.log.Info().Int("level", snap.Level).Int("score", snap.Score).Msg("timed out")
			}
			r.publish(r.snapshot())

		case <-r.advanceC():
			r.advance = nil
			if r.sess.Advance(r.advanceEpoch) {
				snap := r.snapshot()
				r.ticker.Reset(r.tick)
				if snap.Phase == game.PhaseVictory {
					r.log.Info().Int("score", snap.Score).Msg("victory")
				} else {
					r.log.Debug().Int("level", snap.Level).Msg("level advanced")
				}
				r.publish(snap)
			}
		}
	}
}

func (r *Room) shutdown() {
	r.ticker.Stop()
	r.cancelAdvance()
	for ch := range r.subs {
		close(ch)
		delete(r.subs, ch)
	}
	r.log.Debug().Msg("room closed")
}

func (r *Room) scheduleAdvance(epoch uint64) {
	r.cancelAdvance()
	r.advanceEpoch = epoch
	r.advance = time.NewTimer(r.delay)
}

func (r *Room) cancelAdvance() {
	if r.advance != nil {
		r.advance.Stop()
		r.advance = nil
	}
}

// advanceC is nil (blocks forever in select) when no advance is pending.
func (r *Room) advanceC() <-chan time.Time {
	if r.advance == nil {
		return nil
	}
	return r.advance.C
}

func (r *Room) snapshot() game.Snapshot {
	snap := r.sess.Snapshot()
	snap.GameID = r.id
	return snap
}

func (r *Room) publish(snap game.Snapshot) {
	for ch := range r.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// sameState compares the fields a command can change.
func sameState(a, b game.Snapshot) bool {
	if a.Phase != b.Phase || a.Level != b.Level || a.Score != b.Score || a.Lives != b.Lives {
		return false
	}
	if a.Hint != b.Hint || a.Masked != b.Masked || a.HintsUsed != b.HintsUsed || a.Remaining != b.Remaining {
		return false
	}
	if a.Message == nil || b.Message == nil {
		return a.Message == b.Message
	}
	return *a.Message == *b.Message
}
