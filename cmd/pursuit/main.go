package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/pursuit/internal/cli"
	"github.com/alexanderramin/pursuit/internal/config"
	"github.com/alexanderramin/pursuit/internal/db"
	"github.com/alexanderramin/pursuit/internal/intelligence"
	"github.com/alexanderramin/pursuit/internal/llm"
	"github.com/alexanderramin/pursuit/internal/logging"
	"github.com/alexanderramin/pursuit/internal/repository"
	"github.com/alexanderramin/pursuit/internal/server"
	"github.com/alexanderramin/pursuit/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// Wire the prompt store
	store, tx, closer, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closer.Close()

	prompts := service.NewPromptService(intelligence.DefaultPrompt, store, tx, log,
		service.NewLogUseCaseObserver(log))
	prompts.Load(ctx)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Wire the concept gateway: a remote `pursuit serve`, or the model in-process
	var (
		gateway      intelligence.ConceptGateway
		llmAvailable func(context.Context) bool
	)
	llmCfg := llm.LoadConfig()
	switch {
	case cfg.Gateway.URL != "":
		gateway = intelligence.NewHTTPGateway(cfg.Gateway.URL, nil)
	case llmCfg.Enabled:
		metrics, err := llm.NewMetricsObserver(reg)
		if err != nil {
			return fmt.Errorf("registering llm metrics: %w", err)
		}
		observer := llm.MultiObserver{metrics}
		if llmCfg.LogCalls {
			observer = append(observer, llm.NewLogObserver(log))
		}
		client, err := llm.NewClient(ctx, llmCfg, observer)
		if err != nil {
			return fmt.Errorf("creating llm client: %w", err)
		}
		gateway = intelligence.NewConceptService(client, observer)
		llmAvailable = client.Available
	default:
		log.Info("llm disabled, concept evaluation will use fallback content")
	}

	app := &cli.App{
		Gateway:     gateway,
		Prompts:     prompts,
		Log:         log,
		DefaultAddr: cfg.Server.Addr,
	}

	// Detect interactive terminal for the wizard and prompt editor.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	app.Serve = func(ctx context.Context, addr string) error {
		httpMetrics, err := server.NewHTTPMetrics(reg)
		if err != nil {
			return fmt.Errorf("registering http metrics: %w", err)
		}
		router := server.NewRouter(server.Deps{
			Gateway:      gateway,
			Prompts:      prompts,
			LLMAvailable: llmAvailable,
			Log:          log,
			Gatherer:     reg,
			HTTPMetrics:  httpMetrics,
			CORSOrigins:  cfg.Server.CORSOrigins,
		})
		return server.Run(ctx, addr, router, log)
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore returns the KV store, its transaction runner and a closer for the
// configured backend.
func openStore(ctx context.Context, cfg config.StoreConfig) (repository.KVStore, repository.KVTxRunner, io.Closer, error) {
	switch cfg.Backend {
	case config.StoreRedis:
		rdb, err := repository.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return repository.NewRedisKVRepo(rdb, cfg.Profile), repository.NewRedisKVTxRunner(rdb, cfg.Profile), rdb, nil

	case config.StoreMemory:
		return repository.NewMemoryKVRepo(), nil, nopCloser{}, nil

	default:
		database, err := db.OpenDB(cfg.DBPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening database: %w", err)
		}
		uow := db.NewSQLiteUnitOfWork(database)
		return repository.NewSQLiteKVRepo(database, cfg.Profile), repository.NewSQLiteKVTxRunner(uow, cfg.Profile), database, nil
	}
}
