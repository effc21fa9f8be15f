// Package app wires the pieces together: secrets, config, logging, the
// Telegram adapter, the notification journal and the watcher itself.
package app

import (
	"context"
	"fmt"
	"time"

	"hwbot/internal/config"
	"hwbot/internal/eventbus"
	"hwbot/internal/notifier"
	"hwbot/internal/practicum"
	"hwbot/internal/runtime/supervisor"
	"hwbot/internal/storage"
	"hwbot/internal/transport/telegram"
	"hwbot/internal/watcher"
	logx "hwbot/pkg/logx"
)

type App struct {
	cfgMgr *config.Manager
	logSvc *logx.Service
	log    logx.Logger

	bus     eventbus.Bus
	store   storage.Store
	watcher *watcher.Watcher

	sup *supervisor.Supervisor
}

// New builds the whole application or fails fast. Missing secrets are fatal
// here, before any network client exists: the loop must never start without
// complete credentials.
func New(cfgPath string) (*App, error) {
	secrets, err := config.LoadSecrets()
	if err != nil {
		return nil, err
	}

	var (
		cfg *config.Config
		mgr *config.Manager
	)
	if cfgPath == "" {
		cfg = config.Default()
	} else {
		mgr = config.NewManager(cfgPath)
		cfg, err = mgr.Load()
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", cfgPath, err)
		}
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled:   cfg.Logging.File.Enabled,
			Path:      cfg.Logging.File.Path,
			MaxSizeMB: cfg.Logging.File.MaxSizeMB,
			Backups:   cfg.Logging.File.Backups,
		},
	})
	if mgr != nil {
		mgr.SetLogger(log.With(logx.String("comp", "config")))
		mgr.SetValidator(validateConfig)
	}

	bus := eventbus.New()

	var store storage.Store
	if cfg.Storage != nil {
		busyTimeout, derr := cfg.Storage.SQLiteBusyTimeout()
		if derr != nil {
			logSvc.Close()
			return nil, derr
		}
		store, err = storage.Open(storage.Config{
			Driver:      cfg.Storage.Driver,
			Path:        cfg.Storage.Path,
			BusyTimeout: busyTimeout,
		}, log.With(logx.String("comp", "storage")))
		if err != nil {
			logSvc.Close()
			return nil, fmt.Errorf("open storage: %w", err)
		}
	}

	adapter, err := telegram.New(telegram.Config{Token: secrets.TelegramToken}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		logSvc.Close()
		return nil, err
	}

	notify := notifier.New(notifier.Config{
		ChatID:   secrets.ChatID,
		ThreadID: cfg.Telegram.ThreadID,
	}, adapter, log.With(logx.String("comp", "notifier")), bus)

	timeout, err := cfg.PracticumTimeout()
	if err != nil {
		logSvc.Close()
		return nil, err
	}
	client, err := practicum.NewClient(practicum.ClientConfig{
		Endpoint: cfg.Practicum.Endpoint,
		Token:    secrets.PracticumToken,
		Timeout:  timeout,
	}, log.With(logx.String("comp", "practicum")))
	if err != nil {
		logSvc.Close()
		return nil, err
	}

	sched, err := watcher.ParseSchedule(cfg.Watcher.Schedule)
	if err != nil {
		logSvc.Close()
		return nil, fmt.Errorf("watcher.schedule: %w", err)
	}

	w := watcher.New(sched, client, notify, log.With(logx.String("comp", "watcher")), bus)

	return &App{
		cfgMgr:  mgr,
		logSvc:  logSvc,
		log:     log,
		bus:     bus,
		store:   store,
		watcher: w,
	}, nil
}

func validateConfig(_ context.Context, cfg *config.Config) error {
	if _, err := watcher.ParseSchedule(cfg.Watcher.Schedule); err != nil {
		return err
	}
	_, err := cfg.PracticumTimeout()
	return err
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))))

	a.sup.Go("watcher.run", a.watcher.Run)

	if a.cfgMgr != nil {
		a.sup.Go("config.watch", a.cfgMgr.Watch)
		a.sup.Go0("config.apply", a.applyConfigLoop)
	}
	if a.store != nil {
		a.sup.Go0("journal", a.journalLoop)
	}
	a.sup.Go0("systemd.watchdog", a.watchdogLoop)

	notifyReady(a.log)
	a.log.Info("hwbot started")
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	notifyStopping(a.log)
	if a.sup != nil {
		a.sup.Cancel()
		if err := a.sup.Wait(ctx); err != nil {
			a.log.Warn("shutdown finished with error", logx.Err(err))
		}
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	a.log.Info("hwbot stopped")
	return a.logSvc.Close()
}

// applyConfigLoop pushes hot-reloadable settings (log level/sinks, watch
// schedule) into running components. Secrets and storage wiring stay fixed
// for the process lifetime.
func (a *App) applyConfigLoop(ctx context.Context) {
	sub := a.cfgMgr.Subscribe(2)
	defer a.cfgMgr.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-sub:
			if !ok || cfg == nil {
				return
			}
			a.logSvc.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.Logging.Console,
				File: logx.FileConfig{
					Enabled:   cfg.Logging.File.Enabled,
					Path:      cfg.Logging.File.Path,
					MaxSizeMB: cfg.Logging.File.MaxSizeMB,
					Backups:   cfg.Logging.File.Backups,
				},
			})
			sched, err := watcher.ParseSchedule(cfg.Watcher.Schedule)
			if err != nil {
				// The validator should have rejected this; keep the old schedule.
				a.log.Warn("reloaded schedule invalid; keeping previous", logx.Err(err))
				continue
			}
			a.watcher.SetSchedule(sched)
			a.log.Info("settings applied", logx.String("schedule", sched.String()))
		}
	}
}

// journalLoop mirrors bus events into the notification journal.
// Best-effort: a journal write failure is logged, never fatal.
func (a *App) journalLoop(ctx context.Context) {
	sub := a.bus.Subscribe(32,
		eventbus.StatusChanged,
		eventbus.CycleError,
		eventbus.NotifySent,
		eventbus.NotifyFailed,
	)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			entry, keep := journalEntry(ev)
			if !keep {
				continue
			}
			wctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := a.store.Append(wctx, entry); err != nil {
				a.log.Warn("journal append failed", logx.Err(err), logx.String("kind", entry.Kind))
			}
			cancel()
		}
	}
}

func journalEntry(ev eventbus.Event) (storage.Entry, bool) {
	switch ev.Type {
	case eventbus.StatusChanged:
		data, ok := ev.Data.(watcher.CycleEvent)
		if !ok {
			return storage.Entry{}, false
		}
		return storage.Entry{At: ev.Time, Kind: "status", Verdict: data.Verdict}, true
	case eventbus.CycleError:
		data, ok := ev.Data.(watcher.CycleEvent)
		if !ok {
			return storage.Entry{}, false
		}
		return storage.Entry{At: ev.Time, Kind: "failure", Error: data.Error}, true
	case eventbus.NotifySent:
		data, ok := ev.Data.(notifier.Event)
		if !ok {
			return storage.Entry{}, false
		}
		return storage.Entry{At: ev.Time, Kind: "delivery", ChatID: data.ChatID, Text: data.Text}, true
	case eventbus.NotifyFailed:
		data, ok := ev.Data.(notifier.Event)
		if !ok {
			return storage.Entry{}, false
		}
		return storage.Entry{At: ev.Time, Kind: "delivery_failed", ChatID: data.ChatID, Text: data.Text, Error: data.Error}, true
	default:
		return storage.Entry{}, false
	}
}
