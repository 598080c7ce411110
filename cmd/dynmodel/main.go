package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikmy/dynmodel/internal/api"
	"github.com/nikmy/dynmodel/internal/model"
	"github.com/nikmy/dynmodel/internal/storage/dynamodb"
	"github.com/nikmy/dynmodel/internal/storage/memory"
	"github.com/nikmy/dynmodel/internal/storage/mongodb"
	"github.com/nikmy/dynmodel/pkg/environment"
	"github.com/nikmy/dynmodel/pkg/errors"
	"github.com/nikmy/dynmodel/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configFile := flag.String("config", "config.yaml", "path to yaml config")
	env := flag.String("env", "", "environment (dev, prod)")
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		stdlog.Panic(errors.WrapFail(err, "load config"))
	}
	if *env != "" {
		cfg.Environment = environment.FromString(*env)
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		stdlog.Panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGABRT)
	defer cancel()

	err = run(ctx, cfg, log)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config, log logger.Logger) error {
	g, ctx := newGroup(ctx)

	closeStorage, err := setupStorage(ctx, g, cfg, log)
	if err != nil {
		return errors.WrapFail(err, "init storage")
	}

	server := api.NewServer(cfg.API, log)

	g.Go("serve http", func() error {
		log.Infof("serving %s models on %s", cfg.Backend, cfg.API.HTTP.Addr)
		return server.Serve(ctx)
	})

	g.Go("shut down", func() error {
		<-ctx.Done()
		stdlog.Println("Graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Collapse([]error{
			server.Shutdown(shutdownCtx),
			closeStorage(shutdownCtx),
		})
	})

	err = g.Wait()
	stdlog.Println("Shutdown complete")
	return err
}

// group cancels its context on the first failure like errgroup, but
// Wait reports the errors of all tasks.
type group struct {
	eg *errgroup.Group

	mu   sync.Mutex
	errs []error
}

func newGroup(ctx context.Context) (*group, context.Context) {
	eg, ctx := errgroup.WithContext(ctx)
	return &group{eg: eg}, ctx
}

func (g *group) Go(task string, f func() error) {
	g.eg.Go(func() error {
		err := errors.WrapFail(f(), task)
		if err != nil {
			g.mu.Lock()
			g.errs = append(g.errs, err)
			g.mu.Unlock()
		}
		return err
	})
}

func (g *group) Wait() error {
	_ = g.eg.Wait()
	return errors.Collapse(g.errs)
}

// setupStorage installs the configured backend as the model connection.
// Background work of the backend is attached to g.
func setupStorage(
	ctx context.Context,
	g *group,
	cfg *Config,
	log logger.Logger,
) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.Backend {
	case BackendMemory:
		c := memory.New()
		model.SetConnection(c)

		if cfg.Memory.Snapshot != "" {
			s := memory.NewSnapshotter(c, cfg.Memory.Snapshot, cfg.Memory.Interval, log)
			g.Go("run memory snapshots", func() error { return s.Run(ctx) })
		}
		return noop, nil

	case BackendMongo:
		c, err := mongodb.New(ctx, cfg.Mongo, log)
		if err != nil {
			return nil, err
		}
		model.SetConnection(c)
		return c.Close, nil

	case BackendDynamoDB:
		c, err := dynamodb.New(ctx, cfg.DynamoDB, log)
		if err != nil {
			return nil, err
		}
		model.SetConnection(c)
		return noop, nil

	default:
		return nil, errors.Errorf("unknown backend %q", cfg.Backend)
	}
}
