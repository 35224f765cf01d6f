package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verdantlabs/careloop/internal/core"
)

type OpenAICompatible struct {
	baseProvider
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
}

type OpenAICompatibleConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	AuthHeader   string // e.g. "Authorization"
	AuthPrefix   string // e.g. "Bearer "
	ExtraHeaders map[string]string
	Timeout      time.Duration // zero means the 120s default
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout),
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
	}
}

func (o *OpenAICompatible) headers() map[string]string {
	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}
	return headers
}

func (o *OpenAICompatible) payload(history []core.ChatMessage, opts core.GenOptions) map[string]any {
	payload := map[string]any{
		"model":    o.model,
		"messages": history,
	}
	if opts.Temperature > 0 {
		payload["temperature"] = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		payload["max_tokens"] = opts.MaxTokens
	}
	if len(opts.Stop) > 0 {
		payload["stop"] = opts.Stop
	}
	return payload
}

func (o *OpenAICompatible) Chat(ctx context.Context, history []core.ChatMessage, opts core.GenOptions) (core.Reply, error) {
	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", o.payload(history, opts), o.headers())
	if err != nil {
		return core.Reply{}, err
	}
	defer resp.Body.Close()

	return parseChatResponse(resp)
}

// ChatStream issues a streaming completion. The returned channel is closed
// after the completion marker; the final delta carries token usage when the
// backend reports it.
func (o *OpenAICompatible) ChatStream(ctx context.Context, history []core.ChatMessage, opts core.GenOptions) (<-chan core.StreamDelta, error) {
	payload := o.payload(history, opts)
	payload["stream"] = true
	payload["stream_options"] = map[string]any{"include_usage": true}

	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload, o.headers())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	out := make(chan core.StreamDelta)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		fail := func(err error) {
			select {
			case out <- core.StreamDelta{Err: err}:
			case <-ctx.Done():
			}
		}

		var usage *core.Usage
		completed := false
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				completed = true
				break
			}

			var chunk struct {
				Choices []struct {
					Delta struct {
						Content string `json:"content"`
					} `json:"delta"`
				} `json:"choices"`
				Usage *struct {
					PromptTokens     int `json:"prompt_tokens"`
					CompletionTokens int `json:"completion_tokens"`
				} `json:"usage"`
			}
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if chunk.Usage != nil {
				usage = &core.Usage{
					PromptTokens:     chunk.Usage.PromptTokens,
					CompletionTokens: chunk.Usage.CompletionTokens,
				}
			}
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				select {
				case out <- core.StreamDelta{Content: chunk.Choices[0].Delta.Content}:
				case <-ctx.Done():
					return
				}
			}
		}

		if err := scanner.Err(); err != nil {
			fail(fmt.Errorf("stream read: %w", err))
			return
		}
		// A stream that ends without the completion marker was cut off
		// mid-reply; the accumulated text is not a reply.
		if !completed {
			fail(fmt.Errorf("stream ended without completion marker"))
			return
		}

		select {
		case out <- core.StreamDelta{Done: true, Usage: usage}:
		case <-ctx.Done():
		}
	}()

	return out, nil
}

func parseChatResponse(resp *http.Response) (core.Reply, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.Reply{}, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return core.Reply{}, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.Reply{}, fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return core.Reply{}, fmt.Errorf("empty choices: %s", string(data))
	}

	return core.Reply{
		Content:          result.Choices[0].Message.Content,
		Model:            result.Model,
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
	}, nil
}
