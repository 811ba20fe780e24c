// Command nongzhi is the main entry point for the Nongzhi farm assistant
// server: it wires the LLM provider, the farm simulation, the tool registry,
// and the HTTP front end together and runs them until shutdown.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"golang.org/x/sync/errgroup"

	"github.com/nongzhi-ai/nongzhi/internal/chat"
	"github.com/nongzhi-ai/nongzhi/internal/config"
	"github.com/nongzhi-ai/nongzhi/internal/farm"
	"github.com/nongzhi-ai/nongzhi/internal/farm/store"
	"github.com/nongzhi-ai/nongzhi/internal/health"
	"github.com/nongzhi-ai/nongzhi/internal/observe"
	"github.com/nongzhi-ai/nongzhi/internal/server"
	"github.com/nongzhi-ai/nongzhi/internal/session"
	"github.com/nongzhi-ai/nongzhi/internal/tool"
	"github.com/nongzhi-ai/nongzhi/pkg/provider/llm"
	"github.com/nongzhi-ai/nongzhi/pkg/provider/llm/anyllm"
	"github.com/nongzhi-ai/nongzhi/pkg/provider/llm/openai"
)

const version = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	seed := flag.Uint64("seed", 0, "simulation seed (0 = derive from the clock)")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "nongzhi: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "nongzhi: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logLevel := new(slog.LevelVar)
	logLevel.Set(cfg.Server.LogLevel.Slog())
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("nongzhi starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "nongzhi",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── LLM provider ──────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	provider, err := reg.Create(cfg.LLM)
	if errors.Is(err, config.ErrProviderNotRegistered) {
		// Anything outside the built-in list is routed through any-llm as-is.
		provider, err = anyllmFactory(cfg.LLM.Provider)(cfg.LLM)
	}
	if err != nil {
		slog.Error("failed to create llm provider", "provider", cfg.LLM.Provider, "err", err)
		return 1
	}
	slog.Info("provider created", "provider", provider.Name(), "model", cfg.LLM.Model)

	// ── Storage ───────────────────────────────────────────────────────────────
	st, err := store.Open(store.Options{
		Driver: store.Driver(cfg.Storage.Driver),
		Path:   cfg.Storage.Path,
		DSN:    cfg.Storage.DSN,
	})
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.Storage.Driver, "err", err)
		return 1
	}
	defer st.Close()

	// ── Farm simulation and tools ─────────────────────────────────────────────
	simSeed := *seed
	if simSeed == 0 {
		simSeed = uint64(time.Now().UnixNano())
	}
	sim := farm.NewSimulator(simSeed)
	tools := tool.NewFarmRegistry(tool.FarmTools{Sim: sim, Store: st})

	// ── Chat orchestration ────────────────────────────────────────────────────
	sessions := session.NewStore(chat.SystemPrompt)
	orch := chat.New(chat.Config{
		Provider:       provider,
		Registry:       tools,
		Model:          cfg.LLM.Model,
		ReasoningModel: cfg.LLM.ReasoningModel,
		Temperature:    cfg.LLM.Temperature,
		MaxRounds:      cfg.LLM.MaxRounds,
		Metrics:        metrics,
	})

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := server.New(server.Config{
		Sessions:     sessions,
		Orchestrator: orch,
		Registry:     tools,
		Health:       health.New(health.Database(st), health.Provider(provider)),
		Metrics:      metrics,
	})
	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ── Config hot reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if d.LogLevelChanged {
			logLevel.Set(d.NewLogLevel.Slog())
			slog.Info("log level updated", "level", d.NewLogLevel)
		}
		if d.LLMChanged || d.CollectorChanged {
			slog.Warn("llm or collector settings changed; restart to apply")
		}
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	printStartupSummary(cfg)
	slog.Info("server ready — press Ctrl+C to shut down")

	// ── Run ───────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.Collector.IsEnabled() {
		collector := farm.NewCollector(sim, st, cfg.Collector.Interval(), metrics)
		g.Go(func() error {
			if err := collector.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("collector: %w", err)
			}
			return nil
		})
	} else {
		slog.Info("collector disabled")
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in LLM factories into reg. DeepSeek
// and OpenAI go through the official OpenAI SDK (DeepSeek's API is
// OpenAI-compatible); everything else is routed through any-llm.
func registerBuiltinProviders(reg *config.Registry) {
	reg.Register("deepseek", func(cfg config.LLMConfig) (llm.Provider, error) {
		opts := []openai.Option{openai.WithName("deepseek")}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(cfg.APIKey, cfg.Model, opts...)
	})

	reg.Register("openai", func(cfg config.LLMConfig) (llm.Provider, error) {
		var opts []openai.Option
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(cfg.APIKey, cfg.Model, opts...)
	})

	for _, name := range []string{"anthropic", "gemini", "mistral", "groq"} {
		reg.Register(name, anyllmFactory(name))
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.Register("ollama", func(cfg config.LLMConfig) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if cfg.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(cfg.BaseURL))
		}
		return anyllm.New("ollama", cfg.Model, opts...)
	})
}

// anyllmFactory builds an any-llm backed factory for the named provider.
func anyllmFactory(name string) func(config.LLMConfig) (llm.Provider, error) {
	return func(cfg config.LLMConfig) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if cfg.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(cfg.BaseURL))
		}
		return anyllm.New(name, cfg.Model, opts...)
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║       农智 Nongzhi — startup          ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printRow("LLM", cfg.LLM.Provider+" / "+cfg.LLM.Model)
	if cfg.LLM.ReasoningModel != "" {
		printRow("Reasoning", cfg.LLM.ReasoningModel)
	}
	printRow("Storage", string(cfg.Storage.Driver))
	if cfg.Collector.IsEnabled() {
		interval := cfg.Collector.Interval()
		if interval <= 0 {
			interval = farm.DefaultCollectInterval
		}
		printRow("Collector", interval.String())
	} else {
		printRow("Collector", "(disabled)")
	}
	printRow("Listen addr", cfg.Server.ListenAddr)
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printRow(kind, value string) {
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-14s : %-19s ║\n", kind, value)
}
