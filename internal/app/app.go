// Package app wires configuration, logging, storage, the scheduler runtime
// and the planning pipeline into one process.
package app

import (
	"context"
	"fmt"
	"time"

	"postpilot/internal/config"
	"postpilot/internal/eventbus"
	"postpilot/internal/pipeline"
	"postpilot/internal/providers"
	"postpilot/internal/publish"
	"postpilot/internal/scheduler"
	"postpilot/internal/storage"
	logx "postpilot/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *config.Manager
	sup  *Supervisor

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store

	sched *scheduler.Service
	pipe  *pipeline.Pipeline
}

func NewApp(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))

	bus := eventbus.New()

	sc, err := mapStorageConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}
	log.Info("storage ready", logx.String("driver", sc.Driver))

	pubCfg, dispatcher, err := mapPublisherConfig(cfg)
	if err != nil {
		return nil, err
	}
	dispatcher.Provider = publish.NewHTTPProvider(pubCfg)

	schedCfg, err := mapSchedulerConfig(cfg)
	if err != nil {
		return nil, err
	}
	schedSvc := scheduler.New(schedCfg, store, dispatcher, bus,
		log.With(logx.String("comp", "scheduler")))

	profCfg, err := mapProviderConfig("profile", cfg.Profile)
	if err != nil {
		return nil, err
	}
	trendCfg, err := mapProviderConfig("trends", cfg.Trends)
	if err != nil {
		return nil, err
	}

	pipe := &pipeline.Pipeline{
		Profile: providers.NewHTTPProfileProvider(profCfg),
		Trends:  providers.NewHTTPTrendProvider(trendCfg),
		Store:   store,
		Sched:   schedSvc,
		Fetcher: dispatcher,
		Bus:     bus,
		Log:     log.With(logx.String("comp", "pipeline")),
	}

	return &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		bus:     bus,
		store:   store,
		sched:   schedSvc,
		pipe:    pipe,
	}, nil
}

// Done is closed when the app run context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = NewSupervisor(ctx, a.log)

	// transactional config reload: validate before commit/publish
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		if _, err := mapStorageConfig(cfg); err != nil {
			return err
		}
		if _, err := mapSchedulerConfig(cfg); err != nil {
			return err
		}
		if _, _, err := mapPublisherConfig(cfg); err != nil {
			return err
		}
		if _, err := mapProviderConfig("profile", cfg.Profile); err != nil {
			return err
		}
		if _, err := mapProviderConfig("trends", cfg.Trends); err != nil {
			return err
		}
		if _, err := mapPipelineConfig(cfg); err != nil {
			return err
		}
		return nil
	})

	a.sched.Start(a.sup.Context())

	// One planning run per process start. The scheduler keeps firing the
	// resulting jobs (and the daily tracker) until shutdown.
	a.sup.Go("pipeline.run", func(c context.Context) error {
		pcfg, err := mapPipelineConfig(a.cfgm.Get())
		if err != nil {
			return err
		}
		sum, err := a.pipe.Run(c, pcfg)
		if err != nil {
			return fmt.Errorf("planning run: %w", err)
		}
		a.log.Info("calendar scheduled",
			logx.String("run", sum.RunID),
			logx.Int("entries", len(sum.Entries)))
		fmt.Println(sum.String())
		return nil
	})

	// Log events for observability/debug (components can also subscribe themselves).
	events, unsub := a.bus.Subscribe(128)
	a.sup.Go("eventbus.log", func(c context.Context) error {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time))
			}
		}
	})

	// hot reload config fan-out
	sub := a.cfgm.Subscribe(8)
	a.sup.Go("config.reload", func(c context.Context) error {
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-c.Done():
				return nil
			case newCfg, ok := <-sub:
				if !ok {
					return nil
				}
				// Coalesce bursts: keep only the latest config in the channel.
				for {
					select {
					case newer := <-sub:
						if newer != nil {
							newCfg = newer
						}
					default:
						goto APPLY
					}
				}
			APPLY:
				a.applyConfig(newCfg)
			}
		}
	})

	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	return nil
}

// applyConfig applies the hot-reloadable sections of a validated config.
// Storage and provider endpoints are bound at startup and need a restart.
func (a *App) applyConfig(cfg *config.Config) {
	a.logs.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	sc, err := mapSchedulerConfig(cfg)
	if err != nil {
		a.log.Warn("invalid scheduler config; keeping previous", logx.Err(err))
		return
	}
	a.sched.Apply(sc)
	a.log.Debug("config applied", logx.String("tz", sc.Timezone))
}

func (a *App) Stop(ctx context.Context) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping")
	a.sup.Cancel()

	stopCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		stopCtx, cancel = context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
	}

	a.sched.Stop(stopCtx)
	if err := a.sup.Wait(stopCtx); err != nil && err != context.Canceled {
		a.log.Warn("shutdown incomplete", logx.Err(err))
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("storage close", logx.Err(err))
		}
	}
	a.log.Info("stopped")
	return a.logs.Close()
}
