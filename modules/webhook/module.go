// Package webhook provides a violation handler that POSTs a JSON report of
// the violated tags and the state snapshot to a configured URL.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/vk/vigilgo/internal/ctxlog"
	"github.com/vk/vigilgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnViolationWebhook is the handler for the 'webhook' violation runner.
func OnViolationWebhook(ctx context.Context, snapshot cty.Value, violated []string, args registry.Args) error {
	logger := ctxlog.FromContext(ctx)

	url, ok := args.String("url")
	if !ok {
		return fmt.Errorf("webhook requires a 'url' argument")
	}
	timeout, ok := args.Duration("timeout")
	if !ok {
		timeout = 10 * time.Second
	}

	stateJSON, err := ctyjson.Marshal(snapshot, snapshot.Type())
	if err != nil {
		return fmt.Errorf("failed to encode state snapshot: %w", err)
	}
	body, err := json.Marshal(map[string]json.RawMessage{
		"violated": mustJSON(violated),
		"state":    stateJSON,
	})
	if err != nil {
		return fmt.Errorf("failed to encode violation report: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Info("Delivering violation webhook", "url", url, "violated", violated)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %s", resp.Status)
	}
	logger.Debug("Webhook delivered.", "status", resp.Status)
	return nil
}

// mustJSON encodes values that cannot fail to marshal (string slices).
func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("webhook", OnViolationWebhook)
}
