package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/careergini/orchestrator/pkg/api"
	"github.com/careergini/orchestrator/pkg/cache"
	"github.com/careergini/orchestrator/pkg/config"
	"github.com/careergini/orchestrator/pkg/history"
	"github.com/careergini/orchestrator/pkg/jobs"
	"github.com/careergini/orchestrator/pkg/learning"
	"github.com/careergini/orchestrator/pkg/llm"
	"github.com/careergini/orchestrator/pkg/observability"
	"github.com/careergini/orchestrator/pkg/profile"
	"github.com/careergini/orchestrator/pkg/workflow"
	"github.com/careergini/orchestrator/pkg/workflow/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()

		engine, historyStore, responses, cleanup, err := buildEngine(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		addr := cfg.Sub("server").String("addr", ":8080")
		server := &http.Server{
			Addr:              addr,
			Handler:           api.NewServer(engine, historyStore, responses, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server listening", slog.String("addr", addr))
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

// buildEngine assembles the workflow engine and its collaborators from
// configuration. The returned cleanup closes whatever was opened.
func buildEngine(cfg config.Config, logger *slog.Logger) (*workflow.Engine, history.Store, *cache.ResponseCache, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	metrics := observability.NewMetricsRecorder()

	var client llm.Client
	llmCfg := cfg.Sub("llm")
	if llmCfg.Bool("enabled", true) {
		client = llm.NewOllama(
			llm.WithBaseURL(llmCfg.String("base_url", llm.DefaultBaseURL)),
			llm.WithModel(llmCfg.String("model", llm.DefaultModel)),
			llm.WithRetryConfig(llm.DefaultRetry),
			llm.WithMetrics(metrics),
		)
	}

	var profiles profile.Store
	if url := cfg.Sub("profile").String("service_url", ""); url != "" {
		profiles = profile.NewHTTPStore(url)
	}

	var historyStore history.Store
	historyCfg := cfg.Sub("history")
	if path := historyCfg.String("path", "careergini.db"); path != "" {
		store, err := history.NewSQLiteStore(path)
		if err != nil {
			cleanup()
			return nil, nil, nil, nil, fmt.Errorf("open history store: %w", err)
		}
		historyStore = store
		closers = append(closers, func() { _ = store.Close() })
	}

	var responses *cache.ResponseCache
	redisCfg := cfg.Sub("redis")
	if addr := redisCfg.String("addr", ""); addr != "" {
		responses = cache.New(addr, redisCfg.String("password", ""), redisCfg.Int("db", 0))
		closers = append(closers, func() { _ = responses.Close() })
	}

	handlerSet := workflow.NewHandlerSet(
		handlers.NewProfile(client),
		handlers.NewSkillsGap(client),
		handlers.NewJobSearch(jobs.NewStaticProvider()),
		handlers.NewResume(client),
		handlers.NewLearning(learning.NewCatalogProvider()),
	)

	wfCfg := cfg.Sub("workflow")
	engine, err := workflow.New(handlerSet,
		workflow.WithLogger(logger),
		workflow.WithMetrics(metrics),
		workflow.WithSpanManager(observability.NewSpanManager()),
		workflow.WithClassifier(client),
		workflow.WithProfileStore(profiles),
		workflow.WithHistoryStore(historyStore),
		workflow.WithResponseCache(responses),
		workflow.WithMaxCycles(wfCfg.Int("max_cycles", workflow.DefaultMaxCycles)),
		workflow.WithHandlerTimeout(wfCfg.Duration("handler_timeout", workflow.DefaultHandlerTimeout)),
		workflow.WithTurnTimeout(wfCfg.Duration("turn_timeout", workflow.DefaultTurnTimeout)),
	)
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, err
	}

	return engine, historyStore, responses, cleanup, nil
}
