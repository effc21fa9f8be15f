// Package watcher owns the poll loop: it asks the status API what changed,
// decides whether anyone needs to hear about it, and goes back to sleep.
//
// All loop state (cursor, last notified verdict, last sent failure text)
// lives in memory and belongs to the single Run goroutine. A restart starts
// from a clean slate on purpose.
package watcher

import (
	"context"
	"sync"
	"time"

	"hwbot/internal/eventbus"
	"hwbot/internal/practicum"
	"hwbot/internal/verdict"
	logx "hwbot/pkg/logx"
)

// StatusSource is one poll against the review API.
type StatusSource interface {
	Statuses(ctx context.Context, fromDate int64) (any, error)
}

// Notifier delivers a message best-effort; it must never fail the cycle.
type Notifier interface {
	Send(ctx context.Context, text string)
}

// CycleEvent is published on the bus after every cycle, under one of the
// eventbus cycle types.
type CycleEvent struct {
	Cursor  int64
	Verdict string
	Error   string
	At      time.Time
}

// pollState is mutated only by the Run goroutine.
type pollState struct {
	// cursor is the from_date for the next poll; 0 means "not set yet",
	// in which case the process start time is used. It only advances when
	// a structurally valid response carries a homework record; an empty
	// homeworks list re-queries from the same point until work appears.
	cursor int64

	// lastVerdict is the verdict code of the most recently SENT status
	// notification; an unchanged verdict is not re-announced.
	lastVerdict string

	// lastFailure is the most recently SENT diagnostic text; an identical
	// consecutive failure is not re-announced (no alert floods).
	lastFailure string
}

type Watcher struct {
	// schedMu guards sched, which the config-reload path may swap while
	// the Run goroutine sleeps.
	schedMu sync.Mutex
	sched   Schedule

	source StatusSource
	notify Notifier
	log    logx.Logger
	bus    eventbus.Bus

	startedAt time.Time
	state     pollState
}

func New(sched Schedule, source StatusSource, notify Notifier, log logx.Logger, bus eventbus.Bus) *Watcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Watcher{
		sched:     sched,
		source:    source,
		notify:    notify,
		log:       log,
		bus:       bus,
		startedAt: time.Now(),
	}
}

// SetSchedule swaps the schedule; the new one takes effect after the wait
// currently in progress. Called from the config-reload path only.
func (w *Watcher) SetSchedule(s Schedule) {
	w.schedMu.Lock()
	w.sched = s
	w.schedMu.Unlock()
}

func (w *Watcher) schedule() Schedule {
	w.schedMu.Lock()
	defer w.schedMu.Unlock()
	return w.sched
}

// Run executes poll cycles until ctx is cancelled. One cycle runs to
// completion before the wait starts; the wait is unconditional: success,
// no-work and failure all sleep the same way. Nothing escapes the loop.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info("watcher started", logx.String("schedule", w.schedule().String()), logx.Time("started_at", w.startedAt))

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		w.runCycle(ctx)

		next := w.schedule().Next(time.Now())
		wait := time.Until(next)
		if wait < time.Second {
			// Cron schedules can land "now" when a cycle finishes right on a
			// boundary; keep a floor so the loop cannot spin.
			wait = time.Second
		}
		w.log.Debug("cycle finished; waiting", logx.Duration("wait", wait))

		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (w *Watcher) runCycle(ctx context.Context) {
	from := w.state.cursor
	if from == 0 {
		from = w.startedAt.Unix()
	}

	payload, err := w.source.Statuses(ctx, from)
	if err != nil {
		w.failCycle(ctx, err)
		return
	}

	snap, err := practicum.Check(payload)
	if err != nil {
		w.failCycle(ctx, err)
		return
	}

	if snap.Homework == nil {
		// Normal outcome, not an error: nothing changed, cursor stays put.
		w.log.Info("no homework updates", logx.Int64("from_date", from))
		w.publish(eventbus.CycleEmpty, CycleEvent{Cursor: w.state.cursor})
		return
	}

	// The cursor always moves forward on a structurally valid response with
	// a homework record, even when the verdict turns out unchanged or bad.
	w.state.cursor = snap.CurrentDate

	msg, err := verdict.Compose(*snap.Homework)
	if err != nil {
		w.failCycle(ctx, err)
		return
	}

	if msg.Verdict == w.state.lastVerdict {
		w.log.Info("verdict unchanged; notification suppressed", logx.String("verdict", msg.Verdict))
		w.publish(eventbus.CycleOK, CycleEvent{Cursor: w.state.cursor, Verdict: msg.Verdict})
		return
	}

	w.state.lastVerdict = msg.Verdict
	w.notify.Send(ctx, msg.Text)
	w.log.Info("status change announced",
		logx.String("homework", snap.Homework.Name),
		logx.String("verdict", msg.Verdict),
		logx.Int64("cursor", w.state.cursor))
	w.publish(eventbus.StatusChanged, CycleEvent{Cursor: w.state.cursor, Verdict: msg.Verdict})
}

// failCycle converts any per-cycle error into a deduplicated diagnostic
// notification. The loop itself never sees the error; the next tick is the
// retry.
func (w *Watcher) failCycle(ctx context.Context, err error) {
	w.log.Error("poll cycle failed", logx.Err(err))

	diag := "Сбой в работе программы: " + err.Error()
	if diag == w.state.lastFailure {
		w.log.Debug("repeated failure; notification suppressed")
		w.publish(eventbus.CycleError, CycleEvent{Cursor: w.state.cursor, Error: err.Error()})
		return
	}

	w.state.lastFailure = diag
	w.notify.Send(ctx, diag)
	w.publish(eventbus.CycleError, CycleEvent{Cursor: w.state.cursor, Error: err.Error()})
}

func (w *Watcher) publish(typ string, ev CycleEvent) {
	if w.bus == nil {
		return
	}
	ev.At = time.Now()
	w.bus.Publish(eventbus.Event{Type: typ, Time: ev.At, Data: ev})
}
