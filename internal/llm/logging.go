package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/abhisek/quiztutor/internal/store"
)

// LoggingProvider appends one llm_request_events row per call, failed calls
// included. A store error is logged and never fails the call.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
}

// WithLogging wraps p. provider is the configured provider name.
func WithLogging(p Provider, provider string, events store.EventRepo) Provider {
	return &LoggingProvider{inner: p, provider: provider, events: events}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	if l.events == nil {
		return resp, err
	}

	ev := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	switch {
	case resp != nil:
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	case err != nil:
		ev.ResponseBody = string(rejectedContent(err))
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	if lerr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); lerr != nil {
		log.Printf("llm: record %s request: %v", ev.Purpose, lerr)
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// rejectedContent returns the model output behind a schema or truncation
// failure so it can be inspected with `quiztutor llm view`.
func rejectedContent(err error) json.RawMessage {
	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		return inv.Content
	}
	var trunc *ErrMaxTokensExceeded
	if errors.As(err, &trunc) {
		return trunc.Content
	}
	return nil
}

// transcript renders a request the way `llm view` prints it.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	fmt.Fprintf(&b, "[params] max_tokens=%d temperature=%.2f\n", req.MaxTokens, req.Temperature)
	return b.String()
}
