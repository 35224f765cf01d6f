package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/verdantlabs/careloop/internal/config"
	"github.com/verdantlabs/careloop/internal/service/chat"
	"github.com/verdantlabs/careloop/pkg/log"
)

type ReadLine struct {
	cfg       *config.AppConfig
	chat      *chat.Service
	rl        *readline.Instance
	sessionID string
}

func NewReadLine(chatSvc *chat.Service, cfg *config.AppConfig) (*ReadLine, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:       cfg,
		chat:      chatSvc,
		rl:        rl,
		sessionID: chat.NewSessionID(),
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Str("session_id", r.sessionID).Msg("chat started, type 'exit' to quit")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		streamed := false
		result, err := r.chat.Turn(ctx, r.sessionID, line, func(delta string) {
			streamed = true
			fmt.Fprint(r.rl.Stdout(), delta)
		})
		if err != nil {
			fmt.Fprintf(r.rl.Stdout(), "error: %v\n", err)
			continue
		}

		if streamed {
			fmt.Fprintln(r.rl.Stdout())
		} else {
			fmt.Fprintln(r.rl.Stdout(), result.Reply)
		}
		if result.Structured != nil {
			fmt.Fprintf(r.rl.Stdout(), "\033[38;5;240m[from records: %s, %d facts]\033[0m\n",
				result.Structured.Domain, result.Structured.FactsUsed)
		}
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	return r.rl.Close()
}
