package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seopipe/internal/api"
	"seopipe/internal/config"
	"seopipe/internal/fetch"
	"seopipe/internal/metrics"
	"seopipe/internal/pipeline"
	"seopipe/internal/queue"
	"seopipe/internal/rewrite"
	"seopipe/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("open db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	s, err := store.New(db)
	if err != nil {
		slog.Error("init store", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Task queue: Redis when configured, in-process otherwise.
	var tasks queue.Queue
	if cfg.RedisAddr != "" {
		rq, err := queue.NewRedisQueue(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisQueueKey)
		if err != nil {
			slog.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer rq.Close()
		tasks = rq
		slog.Info("using Redis task queue", "addr", cfg.RedisAddr, "key", cfg.RedisQueueKey)
	} else {
		tasks = queue.NewMemoryQueue(cfg.QueueSize)
		slog.Info("using in-process task queue", "size", cfg.QueueSize)
	}

	var fetcher pipeline.Fetcher
	var rewriter pipeline.Rewriter
	if cfg.UseStubs() {
		slog.Warn("OPENAI_API_KEY not set, using stub fetcher and rewriter")
		fetcher = &fetch.StubFetcher{}
		rewriter = &rewrite.StubClient{}
	} else {
		httpTimeout := time.Duration(cfg.HTTPTimeout)
		fetcher = fetch.NewHTTPFetcher(httpTimeout)
		opts := []rewrite.OpenAIOption{
			rewrite.WithModel(cfg.OpenAIModel),
			rewrite.WithTimeout(httpTimeout),
		}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, rewrite.WithBaseURL(cfg.OpenAIBaseURL))
		}
		rewriter = rewrite.NewOpenAIClient(cfg.OpenAIKey, opts...)
	}

	retry := pipeline.RetryPolicy{MaxRetries: cfg.MaxRetries, BaseDelay: time.Duration(cfg.RetryBaseDelay)}
	pipe := pipeline.New(s, fetcher, rewriter, tasks, retry)

	workers := pipeline.NewWorker(tasks, pipe, cfg.WorkerCount)
	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		workers.Run(ctx)
	}()

	if cfg.MetricsAddr != "" {
		go metrics.Expose(cfg.MetricsAddr)
	}

	srv := api.New(s, tasks, cfg.CORSOrigin)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Handler(),
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		slog.Info("shutting down")
		cancel()
		httpServer.Shutdown(context.Background())
	}()

	slog.Info("server listening", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-workersDone
}
