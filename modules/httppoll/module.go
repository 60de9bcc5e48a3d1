// Package httppoll provides a state source that polls a URL and records the
// response status into the shared state, so invariants can guard on the
// health of an external endpoint.
package httppoll

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/vigilgo/internal/ctxlog"
	"github.com/vk/vigilgo/internal/ctystate"
	"github.com/vk/vigilgo/internal/registry"
	"github.com/vk/vigilgo/internal/state"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunHTTPPoll is the handler for the 'httppoll' source runner. After every
// poll it writes `<key>_status` (number) and `<key>_healthy` (bool) into the
// state. A transport error records status 0 and healthy = false.
func OnRunHTTPPoll(ctx context.Context, store *state.Store[cty.Value], args registry.Args) error {
	logger := ctxlog.FromContext(ctx)

	url, ok := args.String("url")
	if !ok {
		return fmt.Errorf("httppoll requires a 'url' argument")
	}
	key, ok := args.String("key")
	if !ok {
		key = "http"
	}
	interval, ok := args.Duration("interval")
	if !ok {
		logger.Warn("Failed to parse interval, using default 5s")
		interval = 5 * time.Second
	}
	logger.Debug("HTTP poll source started.", "url", url, "key", key, "interval", interval)

	client := &http.Client{Timeout: interval}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			status := pollOnce(ctx, client, url, logger)
			store.Update(func(s cty.Value) cty.Value {
				s = ctystate.With(s, key+"_status", cty.NumberIntVal(int64(status)))
				return ctystate.With(s, key+"_healthy", cty.BoolVal(status >= 200 && status < 400))
			})
		}
	}
}

// pollOnce performs one GET and returns the status code, or 0 on failure.
func pollOnce(ctx context.Context, client *http.Client, url string, logger *slog.Logger) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.Warn("Failed to create poll request.", "error", err)
		return 0
	}
	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("Poll request failed.", "error", err)
		return 0
	}
	resp.Body.Close()
	return resp.StatusCode
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSource("httppoll", OnRunHTTPPoll)
}
