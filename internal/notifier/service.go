// Package notifier delivers composed messages to the configured chat.
//
// Delivery is strictly best-effort: failures are logged and published on the
// event bus, but never propagate to the caller. A lost notification must not
// abort a poll cycle.
package notifier

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"hwbot/internal/eventbus"
	"hwbot/internal/transport"
	logx "hwbot/pkg/logx"
)

type Config struct {
	ChatID   int64
	ThreadID int
	// RatePerSec caps outgoing sends (token bucket). 0 means 1/s, which is
	// far above what a single-user watcher produces but guards diagnostics
	// bursts after connectivity gaps.
	RatePerSec int
	// SendTimeout bounds one delivery attempt. 0 means 10s.
	SendTimeout time.Duration
}

// Event is published on the bus under eventbus.NotifySent / NotifyFailed.
type Event struct {
	ChatID int64
	Text   string
	At     time.Time
	Error  string
}

type Service struct {
	cfg     Config
	adapter transport.Adapter
	log     logx.Logger
	bus     eventbus.Bus
	limiter *rate.Limiter
}

func New(cfg Config, adapter transport.Adapter, log logx.Logger, bus eventbus.Bus) *Service {
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:     cfg,
		adapter: adapter,
		log:     log,
		bus:     bus,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// Send delivers text to the configured chat. It never returns an error:
// on failure it logs, publishes a notify.failed event and gives up.
// No retry within the cycle; the watcher's next tick is the retry policy.
func (s *Service) Send(ctx context.Context, text string) {
	if text == "" {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.limiter.Wait(ctx); err != nil {
		s.publish(eventbus.NotifyFailed, text, err)
		return
	}

	to := transport.ChatTarget{ChatID: s.cfg.ChatID, ThreadID: s.cfg.ThreadID}
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	_, err := s.adapter.SendText(callCtx, to, text, &transport.SendOptions{DisablePreview: true})
	cancel()

	if err != nil {
		s.log.Error("notification send failed", logx.Int64("chat_id", s.cfg.ChatID), logx.Err(err))
		s.publish(eventbus.NotifyFailed, text, err)
		return
	}

	s.log.Info("notification sent", logx.Int64("chat_id", s.cfg.ChatID), logx.String("text", text))
	s.publish(eventbus.NotifySent, text, nil)
}

func (s *Service) publish(typ, text string, err error) {
	if s.bus == nil {
		return
	}
	ev := Event{ChatID: s.cfg.ChatID, Text: text, At: time.Now()}
	if err != nil {
		ev.Error = err.Error()
	}
	s.bus.Publish(eventbus.Event{Type: typ, Time: ev.At, Data: ev})
}
