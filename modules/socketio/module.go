// Package socketio provides a state source that subscribes to a Socket.IO
// event and writes every received payload into a state key, letting
// invariants guard on values pushed by a remote system.
package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"

	"github.com/zclconf/go-cty/cty"
	"github.com/zishang520/engine.io-client-go/transports"
	eiotypes "github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/vigilgo/internal/ctxlog"
	"github.com/vk/vigilgo/internal/ctystate"
	"github.com/vk/vigilgo/internal/registry"
	"github.com/vk/vigilgo/internal/state"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunSocketIO is the handler for the 'socketio' source runner. It connects,
// subscribes to `on_event`, and applies each payload to the state under
// `key` until the run ends.
func OnRunSocketIO(ctx context.Context, store *state.Store[cty.Value], args registry.Args) error {
	logger := ctxlog.FromContext(ctx)

	rawURL, ok := args.String("url")
	if !ok {
		return fmt.Errorf("socketio requires a 'url' argument")
	}
	eventName, ok := args.String("on_event")
	if !ok {
		return fmt.Errorf("socketio requires an 'on_event' argument")
	}
	key, ok := args.String("key")
	if !ok {
		key = eventName
	}
	namespace, _ := args.String("namespace")
	insecure, _ := args.Bool("insecure_skip_verify")

	logger = logger.With("url", rawURL, "onEvent", eventName, "key", key)
	logger.Debug("Socket.IO source starting.")

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if insecure {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(eiotypes.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	connectErr := make(chan error, 1)

	io.On(eiotypes.EventName("connect"), func(...any) {
		logger.Info("Socket.IO source connected", "namespace", namespace, "sid", io.Id())
	})

	io.On(eiotypes.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				select {
				case connectErr <- err:
				default:
				}
			}
		}
	})

	io.On(eiotypes.EventName(eventName), func(data ...any) {
		var payload any
		if len(data) > 0 {
			payload = data[0]
		}
		store.Update(func(s cty.Value) cty.Value {
			return ctystate.With(s, key, ctystate.FromGo(payload))
		})
		logger.Debug("Applied Socket.IO payload to state.")
	})

	io.Connect()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-connectErr:
		return fmt.Errorf("socketio connection failed: %w", err)
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSource("socketio", OnRunSocketIO)
}
