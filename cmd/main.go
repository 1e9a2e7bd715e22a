package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"clubsafe/internal/config"
	"clubsafe/internal/logging"
	"clubsafe/internal/metrics"
	"clubsafe/internal/ratelimiter"
	"clubsafe/internal/scheduler"
	"clubsafe/internal/server"
	"clubsafe/internal/summarizer"
	"clubsafe/internal/tagger"
	"clubsafe/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dotEnvErr := config.LoadDotEnv(config.DotEnvFile)

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).ErrorContext(ctx, "Failed to load config",
			"error", err)

		return 1
	}

	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	if dotEnvErr != nil {
		log.WarnContext(ctx, "Failed to load .env file so OS environment is used",
			"error", dotEnvErr,
			"path", config.DotEnvFile)
	}

	if cfg.TracesEndpoint != "" {
		tp, tpErr := telemetry.NewTracerProvider(ctx, cfg.TracesEndpoint, cfg.ServiceName)
		if tpErr != nil {
			log.ErrorContext(ctx, "Failed to create tracer provider",
				"error", tpErr,
				"endpoint", cfg.TracesEndpoint)

			return 1
		}
		defer func() {
			flushCtx, flushCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer flushCancel()

			if err := tp.Shutdown(flushCtx); err != nil {
				log.ErrorContext(flushCtx, "Failed to shut down tracer provider",
					"error", err)
			}
		}()

		otel.SetTracerProvider(tp)
		telemetry.SetupPropagation()
		log.InfoContext(ctx, "Tracing is enabled",
			"endpoint", cfg.TracesEndpoint,
			"serviceName", cfg.ServiceName)
	}

	m := metrics.New()

	summ := initSummarizer(ctx, cfg, m, log)
	if cached, ok := summ.(*summarizer.CachingSummarizer); ok {
		sched := scheduler.New(ctx, cfg.SummaryCacheSweepSpec, cached, log)
		if err = sched.Start(); err != nil {
			log.ErrorContext(ctx, "Failed to start scheduler",
				"error", err,
				"spec", cfg.SummaryCacheSweepSpec)

			return 1
		}
		defer sched.Stop()
		log.InfoContext(ctx, "Scheduler is started",
			"spec", cfg.SummaryCacheSweepSpec,
			"timezone", scheduler.Timezone)
	}

	modelFactory, err := tagger.NewModelFactory(tagger.ModelConfig{
		Provider: cfg.TaggerProvider,
		Model:    cfg.TaggerModel,
		BaseURL:  cfg.TaggerBaseURL,
		Timeout:  cfg.TaggerTimeout,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to create model factory",
			"error", err,
			"provider", cfg.TaggerProvider)

		return 1
	}

	if cfg.TaggerMinInterval > 0 {
		limiter := ratelimiter.New(cfg.TaggerMinInterval, log)
		defer limiter.Stop()
		modelFactory = limiter.Factory(modelFactory)
		log.InfoContext(ctx, "Model calls are rate limited",
			"minInterval", cfg.TaggerMinInterval.String())
	}

	tg := tagger.New(
		tagger.EnvCredentials(cfg.TaggerProvider),
		modelFactory,
		func(o tagger.Outcome) { m.ObserveTagResult(string(o)) },
		log,
	)
	log.InfoContext(ctx, "Tagger is initialized",
		"provider", cfg.TaggerProvider,
		"model", cfg.TaggerModel,
		"timeout", cfg.TaggerTimeout.String())

	handler := server.NewHandler(summ, tg, cfg.MaxBodyBytes, log)
	srv := server.New(cfg.Addr, handler, m, otel.GetTracerProvider(), log)

	errc := make(chan error, 2)

	go func() {
		errc <- srv.Start()
	}()
	log.InfoContext(ctx, "Server is started",
		"addr", cfg.Addr)

	var exporter *metrics.Exporter
	if cfg.MetricsAddr != "" {
		exporter = metrics.NewExporter(cfg.MetricsAddr, m)
		go func() {
			errc <- exporter.Start()
		}()
		log.InfoContext(ctx, "Metrics exporter is started",
			"addr", cfg.MetricsAddr)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case err = <-errc:
		if err != nil {
			log.ErrorContext(ctx, "Listener failed",
				"error", err)
			exitCode = 1
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(shutdownCtx, "Failed to shut down server",
			"error", err)
		exitCode = 1
	}

	if exporter != nil {
		if err = exporter.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(shutdownCtx, "Failed to shut down metrics exporter",
				"error", err)
		}
	}

	log.InfoContext(shutdownCtx, "Server is stopped",
		"uptimeSeconds", time.Since(start).Seconds())

	return exitCode
}

func initSummarizer(
	ctx context.Context,
	cfg config.Config,
	m *metrics.Metrics,
	log *slog.Logger,
) summarizer.Summarizer {
	var s summarizer.Summarizer = summarizer.NewKLSummarizer()

	if cfg.SummaryCacheSize == 0 {
		log.InfoContext(ctx, "Summary cache is disabled")

		return s
	}

	log.InfoContext(ctx, "Summary cache is enabled",
		"maxEntries", cfg.SummaryCacheSize,
		"ttl", cfg.SummaryCacheTTL.String())

	return summarizer.NewCachingSummarizer(s, cfg.SummaryCacheSize, cfg.SummaryCacheTTL, m.ObserveCacheLookup)
}
