// Command nongzhi-repl is a terminal front end for the Nongzhi assistant. It
// drives the same orchestration loop as the server, rendering streamed events
// to stdout instead of SSE or WebSocket frames. Useful for trying prompts and
// tools without starting the HTTP server.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/nongzhi-ai/nongzhi/internal/chat"
	"github.com/nongzhi-ai/nongzhi/internal/config"
	"github.com/nongzhi-ai/nongzhi/internal/farm"
	"github.com/nongzhi-ai/nongzhi/internal/farm/store"
	"github.com/nongzhi-ai/nongzhi/internal/session"
	"github.com/nongzhi-ai/nongzhi/internal/tool"
	"github.com/nongzhi-ai/nongzhi/pkg/provider/llm"
	"github.com/nongzhi-ai/nongzhi/pkg/provider/llm/anyllm"
	"github.com/nongzhi-ai/nongzhi/pkg/provider/llm/openai"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	seed := flag.Uint64("seed", 0, "simulation seed (0 = derive from the clock)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nongzhi-repl: %v\n", err)
		return 1
	}

	// The REPL shares stdout with streamed answers; keep logs on stderr and
	// quiet unless the config says otherwise.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel.Slog(),
	})))

	provider, err := buildProvider(cfg.LLM)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nongzhi-repl: create provider: %v\n", err)
		return 1
	}

	st, err := store.Open(store.Options{
		Driver: store.Driver(cfg.Storage.Driver),
		Path:   cfg.Storage.Path,
		DSN:    cfg.Storage.DSN,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "nongzhi-repl: open store: %v\n", err)
		return 1
	}
	defer st.Close()

	simSeed := *seed
	if simSeed == 0 {
		simSeed = uint64(time.Now().UnixNano())
	}
	sim := farm.NewSimulator(simSeed)
	tools := tool.NewFarmRegistry(tool.FarmTools{Sim: sim, Store: st})

	orch := chat.New(chat.Config{
		Provider:       provider,
		Registry:       tools,
		Model:          cfg.LLM.Model,
		ReasoningModel: cfg.LLM.ReasoningModel,
		Temperature:    cfg.LLM.Temperature,
		MaxRounds:      cfg.LLM.MaxRounds,
	})
	sessions := session.NewStore(chat.SystemPrompt)
	sess := sessions.GetOrCreate("repl")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("农智 Nongzhi 智能农业助手")
	fmt.Println("输入问题开始对话；/reasoning on|off 切换深度思考；/exit 退出")
	fmt.Println()

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			fmt.Println()
			return 0
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if done := handleCommand(sess, line); done {
				return 0
			}
			continue
		}

		if _, err := orch.RunTurn(ctx, sess, line, renderEvent); err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Println()
				return 0
			}
			// The error event was already rendered.
		}
		fmt.Println()
	}
}

// handleCommand processes a /slash command. Returns true when the REPL should
// exit.
func handleCommand(sess *session.Session, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/exit", "/quit":
		fmt.Println("再见！")
		return true
	case "/reasoning":
		if len(fields) < 2 {
			enabled, effort := sess.Reasoning()
			fmt.Printf("深度思考: %v (effort=%s)\n", enabled, effort)
			return false
		}
		switch fields[1] {
		case "on":
			sess.SetReasoning(true)
			fmt.Println("深度思考已开启")
		case "off":
			sess.SetReasoning(false)
			fmt.Println("深度思考已关闭")
		default:
			if err := sess.SetReasoningEffort(fields[1]); err != nil {
				fmt.Println("用法: /reasoning on|off|low|medium|high")
			} else {
				fmt.Printf("思考强度已设为 %s\n", fields[1])
			}
		}
	default:
		fmt.Println("未知命令。可用: /reasoning, /exit")
	}
	return false
}

// renderEvent writes one turn event to the terminal. Deltas are printed
// inline; tool activity gets its own lines so the streamed answer stays
// readable.
func renderEvent(ev chat.Event) error {
	switch ev.Kind {
	case chat.EventReasoningDelta:
		if p, ok := ev.Data.(chat.ContentPayload); ok {
			fmt.Fprint(os.Stderr, dim(p.Content))
		}
	case chat.EventReasoningDone:
		fmt.Fprintln(os.Stderr)
	case chat.EventTextDelta:
		if p, ok := ev.Data.(chat.ContentPayload); ok {
			fmt.Print(p.Content)
		}
	case chat.EventToolStart:
		if p, ok := ev.Data.(chat.ToolStartPayload); ok {
			fmt.Printf("\n%s 调用中…\n", p.DisplayName)
		}
	case chat.EventToolDone:
		if p, ok := ev.Data.(chat.ToolDonePayload); ok {
			fmt.Printf("%s 完成\n", p.DisplayName)
		}
	case chat.EventError:
		if p, ok := ev.Data.(chat.ErrorPayload); ok {
			fmt.Fprintf(os.Stderr, "\n出错了: %s\n", p.Message)
		}
	}
	return nil
}

// dim renders reasoning text in a muted colour when stderr is a terminal.
func dim(s string) string {
	return "\x1b[2m" + s + "\x1b[0m"
}

// buildProvider constructs the configured LLM backend, mirroring the server's
// wiring.
func buildProvider(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "deepseek", "openai":
		var opts []openai.Option
		if cfg.Provider == "deepseek" {
			opts = append(opts, openai.WithName("deepseek"))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(cfg.APIKey, cfg.Model, opts...)
	default:
		var opts []anyllmlib.Option
		if cfg.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(cfg.BaseURL))
		}
		return anyllm.New(cfg.Provider, cfg.Model, opts...)
	}
}
