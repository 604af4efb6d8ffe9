// Package socketsink relays the session event stream to a socket.io server,
// where a browser front end can animate the board.
package socketsink

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/blockgridgo/internal/ctxlog"
	"github.com/specialistvlad/blockgridgo/internal/event"
)

const (
	DefaultEventName   = "blockgrid:event"
	DefaultDialTimeout = 15 * time.Second
)

// ErrNotConnected is returned by Dial when the handshake fails.
var ErrNotConnected = errors.New("socket.io relay not connected")

// Options configures the relay connection.
type Options struct {
	URL                string
	Namespace          string
	EventName          string
	InsecureSkipVerify bool
	DialTimeout        time.Duration
}

// Sink is an event.Sink emitting every event as one socket.io message.
type Sink struct {
	event  string
	send   func(name string, payload map[string]any)
	close  func()
	logger *slog.Logger
}

// Dial connects to the relay and waits for the namespace handshake.
func Dial(ctx context.Context, o Options) (*Sink, error) {
	logger := ctxlog.FromContext(ctx).With("component", "socketsink", "url", o.URL)

	parsedURL, err := url.Parse(o.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse relay URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("relay URL %q needs a scheme and a host", o.URL)
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = DefaultDialTimeout
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if o.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connected := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(o.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("📡 Event relay connected", "sid", io.Id())
		select {
		case connected <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := ErrNotConnected
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = fmt.Errorf("%w: %w", ErrNotConnected, e)
			}
		}
		select {
		case connected <- err:
		default:
		}
	})

	logger.Debug("Dialing event relay...")
	io.Connect()

	timer := time.NewTimer(o.DialTimeout)
	defer timer.Stop()
	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, err
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("%w: %w", ErrNotConnected, ctx.Err())
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("%w: timed out after %s", ErrNotConnected, o.DialTimeout)
	}

	name := o.EventName
	if name == "" {
		name = DefaultEventName
	}
	return &Sink{
		event:  name,
		send:   func(n string, p map[string]any) { io.Emit(n, p) },
		close:  func() { io.Disconnect() },
		logger: logger,
	}, nil
}

// Emit implements event.Sink. Encoding failures are logged and dropped.
func (s *Sink) Emit(_ context.Context, e event.Event) {
	p, err := payload(e)
	if err != nil {
		s.logger.Warn("Dropping event the relay cannot encode.", "kind", e.Kind, "error", err)
		return
	}
	s.send(s.event, p)
}

// Close disconnects from the relay.
func (s *Sink) Close() error {
	s.logger.Debug("Closing event relay.")
	s.close()
	return nil
}

// payload flattens e into plain JSON values.
func payload(e event.Event) (map[string]any, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
