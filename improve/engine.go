// Package improve orchestrates prompt resolution, payload building and
// model inference to rewrite editor text.
package improve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	quill "github.com/quill-vim/quill"
	defaults "github.com/quill-vim/quill/default"
	"github.com/quill-vim/quill/sink"
)

// Engine owns the improvement pipeline behind the daemon's IPC surface.
type Engine struct {
	prompts *PromptStore
	client  *Client
	config  *quill.Config
}

// NewEngine creates an engine from on-disk configuration.
func NewEngine() *Engine {
	cfg, err := quill.LoadConfig()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = quill.DefaultConfig()
	}
	for _, w := range quill.ValidateConfig(cfg) {
		slog.Warn("config warning", "warning", w)
	}

	prompts := NewPromptStore(loadDefaultPrompt())
	if err := prompts.LoadPresets(quill.PresetsPath()); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to load prompt presets", "error", err)
		}
	} else {
		slog.Info("loaded prompt presets", "count", len(prompts.Presets()))
	}

	var transport Transport
	switch quill.ResolveTransport(cfg) {
	case quill.TransportCurl:
		transport = &CurlTransport{Binary: cfg.API.CurlBinary}
	default:
		transport = NewHTTPTransport(time.Duration(cfg.API.TimeoutSeconds) * time.Second)
	}

	client := NewClient(quill.ResolveEndpoint(cfg), transport, func() string {
		return quill.ResolveAPIKey(cfg)
	})

	return &Engine{prompts: prompts, client: client, config: cfg}
}

// NewEngineWith wires an engine from explicit parts.
func NewEngineWith(cfg *quill.Config, prompts *PromptStore, client *Client) *Engine {
	return &Engine{prompts: prompts, client: client, config: cfg}
}

// loadDefaultPrompt returns the custom prompt file content, or the
// embedded default when no usable file exists.
func loadDefaultPrompt() string {
	data, err := os.ReadFile(quill.PromptPath())
	if err != nil || strings.TrimSpace(string(data)) == "" {
		return defaults.DefaultPrompt
	}
	slog.Info("loaded custom prompt", "path", quill.PromptPath())
	return string(data)
}

// Close releases engine resources.
func (e *Engine) Close() {
	e.prompts.Close()
}

// Prompts exposes the prompt store, e.g. for the repl.
func (e *Engine) Prompts() *PromptStore {
	return e.prompts
}

// Handle dispatches one IPC request to the matching operation. It never
// panics; every failure becomes a response error.
func (e *Engine) Handle(ctx context.Context, req *quill.Request) *quill.Response {
	switch req.Action {
	case quill.ActionImprove:
		return e.improve(ctx, req)
	case quill.ActionSetDefaultPrompt:
		return e.setDefaultPrompt(req)
	case quill.ActionSetPrompt:
		return e.setPrompt(req)
	case quill.ActionGetPrompt:
		return &quill.Response{Prompt: e.prompts.Resolve(req.DocID)}
	case quill.ActionPresets:
		return &quill.Response{Presets: e.prompts.Presets()}
	default:
		return errResponse(quill.ErrBadRequest, fmt.Sprintf("unknown action %q", req.Action), "")
	}
}

// promptText resolves the instruction text of a set_* request: a preset
// reference wins over literal text.
func (e *Engine) promptText(req *quill.Request) (string, *quill.Response) {
	if req.Preset != "" {
		text, ok := e.prompts.Preset(req.Preset)
		if !ok {
			return "", errResponse(quill.ErrBadRequest, fmt.Sprintf("unknown preset %q", req.Preset), "")
		}
		return text, nil
	}
	return req.Prompt, nil
}

func (e *Engine) setDefaultPrompt(req *quill.Request) *quill.Response {
	text, errResp := e.promptText(req)
	if errResp != nil {
		return errResp
	}
	if strings.TrimSpace(text) == "" {
		return errResponse(quill.ErrBadRequest, "prompt text required", "")
	}
	e.prompts.SetDefault(text)
	slog.Info("default prompt replaced", "length", len(text))
	return &quill.Response{Prompt: text}
}

func (e *Engine) setPrompt(req *quill.Request) *quill.Response {
	if req.DocID == "" {
		return errResponse(quill.ErrBadRequest, "doc_id required for set_prompt", "")
	}
	text, errResp := e.promptText(req)
	if errResp != nil {
		return errResp
	}
	// An empty prompt clears the override.
	e.prompts.SetOverride(req.DocID, text)
	return &quill.Response{Prompt: e.prompts.Resolve(req.DocID)}
}

// improve runs the full pipeline: flatten, truncate, build, send, parse,
// sink. One attempt; every error is terminal for this invocation.
func (e *Engine) improve(ctx context.Context, req *quill.Request) *quill.Response {
	if len(req.Lines) == 0 {
		return errResponse(quill.ErrEmptyInput, "document is empty", "")
	}

	var body string
	if req.Range != nil {
		extracted, err := sink.Extract(req.Lines, *req.Range)
		if err != nil {
			return errResponse(quill.ErrBadRequest, "invalid range: "+err.Error(), "")
		}
		body = extracted
	} else {
		body = sink.Flatten(req.Lines)
	}

	if strings.TrimSpace(body) == "" {
		return errResponse(quill.ErrEmptyInput, "nothing to improve", "")
	}

	var warnings []string
	limit := e.config.Limits.MaxInputLength
	if truncated, cut := Truncate(body, limit); cut {
		body = truncated
		warnings = append(warnings, fmt.Sprintf("input truncated to %d bytes", limit))
		slog.Warn("input truncated", "limit", limit)
	}

	instruction := e.prompts.Resolve(req.DocID)
	payload := BuildPayload(instruction, body)

	result, fault := e.client.Generate(ctx, payload)
	if fault != nil {
		slog.Error("generation failed", "code", fault.Code, "error", fault.Message)
		return &quill.Response{Warnings: warnings, Error: fault.IPCError()}
	}

	resp := &quill.Response{Warnings: warnings}
	switch {
	case req.NewView:
		resp.View = sink.NewView(viewName(req.DocID), result)
	case req.Range != nil:
		lines, err := sink.Replace(req.Lines, *req.Range, result)
		if err != nil {
			return errResponse(quill.ErrBadRequest, "invalid range: "+err.Error(), "")
		}
		resp.Lines = lines
	default:
		resp.Lines = sink.Split(result)
	}
	return resp
}

func viewName(docID string) string {
	if docID == "" {
		return "quill-result"
	}
	return "quill-result:" + docID
}

func errResponse(code, message, detail string) *quill.Response {
	return &quill.Response{Error: &quill.Error{Code: code, Message: message, Detail: detail}}
}
