package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/taskflowgo/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketIOOptions configures a SocketIO notifier.
type SocketIOOptions struct {
	URL       string
	Namespace string
	// EmitEvent is the socket.io event name carrying the payload.
	EmitEvent string
	// AckEvent, when set, is an event the server emits back to confirm
	// receipt; Notify waits for it before disconnecting.
	AckEvent           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// SocketIO delivers events to a socket.io endpoint. Each Notify call opens a
// connection, emits the event and disconnects, optionally waiting for a
// server acknowledgement event first.
type SocketIO struct {
	opts SocketIOOptions
}

// NewSocketIO returns a SocketIO notifier. EmitEvent defaults to
// "task_event" and Timeout to 10s.
func NewSocketIO(opts SocketIOOptions) *SocketIO {
	if opts.EmitEvent == "" {
		opts.EmitEvent = "task_event"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &SocketIO{opts: opts}
}

// Notify implements Notifier.
func (n *SocketIO) Notify(ctx context.Context, event Event) error {
	logger := ctxlog.With(ctx, "notifier", "socketio", "url", n.opts.URL, "event", event.Name, "task", event.Task)
	logger.Debug("Notifier started")
	defer logger.Debug("Notifier finished")

	opCtx, cancel := context.WithTimeout(ctx, n.opts.Timeout)
	defer cancel()

	parsedURL, err := url.Parse(n.opts.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if n.opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(n.opts.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	done := make(chan error, 1)
	payload := map[string]any{
		"name": event.Name,
		"task": event.Task,
		"vars": event.Vars,
	}

	io.On(types.EventName("connect"), func(...any) {
		logger.Debug("Connected, emitting event", "sid", io.Id())
		io.Emit(n.opts.EmitEvent, payload)
		if n.opts.AckEvent == "" {
			done <- nil
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		if err, ok := errs[0].(error); ok {
			done <- err
			return
		}
		done <- fmt.Errorf("socket.io connect error: %v", errs[0])
	})

	if n.opts.AckEvent != "" {
		io.On(types.EventName(n.opts.AckEvent), func(...any) {
			done <- nil
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		return fmt.Errorf("timed out delivering event %q to %s", event.Name, n.opts.URL)
	case err := <-done:
		return err
	}
}
