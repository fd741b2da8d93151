package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	inErrors "github.com/scentlane/storefront/internal/errors"
	"github.com/scentlane/storefront/internal/log"
)

// Event names the catalog mutation channel vocabulary. The admin channel
// additionally carries the order events.
type Event string

const (
	EventProductCreated     Event = "product-created"
	EventProductUpdated     Event = "product-updated"
	EventProductDeleted     Event = "product-deleted"
	EventCategoryCreated    Event = "category-created"
	EventCategoryUpdated    Event = "category-updated"
	EventCategoryDeleted    Event = "category-deleted"
	EventNewOrder           Event = "new-order"
	EventOrderStatusChanged Event = "order-status-changed"
)

// Handler receives one event payload. Handlers for the same event run in
// registration order, synchronously relative to event arrival.
type Handler func(c context.Context, data json.RawMessage)

// frame is the wire format: one JSON object per websocket message.
type frame struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type subscription struct {
	event   Event
	handler Handler
}

// Client maintains one websocket connection to a catalog event channel,
// reconnecting with exponential backoff when the transport drops. Events
// emitted while disconnected are lost; subscribers heal by re-fetching over
// REST, which OnReconnect exists to trigger.
type Client struct {
	url            string
	token          string
	dialer         *websocket.Dialer
	initialBackoff time.Duration
	maxBackoff     time.Duration

	mu          sync.Mutex
	conn        *websocket.Conn
	handlers    map[Event][]*subscription
	reconnectFn []*func(c context.Context)
	connected   atomic.Bool

	eventCounter     metric.Int64Counter
	reconnectCounter metric.Int64Counter
}

type Option func(*Client)

// WithBearerToken authenticates the admin channel; the public channel sends
// no credentials.
func WithBearerToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

func WithInitialBackoff(d time.Duration) Option {
	return func(cl *Client) { cl.initialBackoff = d }
}

func WithMaxBackoff(d time.Duration) Option {
	return func(cl *Client) { cl.maxBackoff = d }
}

func NewClient(url string, opts ...Option) *Client {
	cl := &Client{
		url:            url,
		dialer:         websocket.DefaultDialer,
		initialBackoff: 500 * time.Millisecond,
		maxBackoff:     30 * time.Second,
		handlers:       map[Event][]*subscription{},
	}
	for _, opt := range opts {
		opt(cl)
	}

	meter := otel.Meter("storefront/realtime")
	var err error
	cl.eventCounter, err = meter.Int64Counter("realtime.events.received")
	if err != nil {
		cl.eventCounter = nil
	}
	cl.reconnectCounter, err = meter.Int64Counter("realtime.reconnects")
	if err != nil {
		cl.reconnectCounter = nil
	}
	return cl
}

// IsConnected reports the connectivity flag surfaced to the UI. Transport
// errors never reach subscribers as anything else.
func (cl *Client) IsConnected() bool {
	return cl.connected.Load()
}

// On registers a handler for one event name and returns a function that
// deregisters exactly that handler. Multiple handlers per event fan out in
// registration order.
func (cl *Client) On(event Event, handler Handler) (unsubscribe func()) {
	sub := &subscription{event: event, handler: handler}

	cl.mu.Lock()
	cl.handlers[event] = append(cl.handlers[event], sub)
	cl.mu.Unlock()

	return func() {
		cl.mu.Lock()
		defer cl.mu.Unlock()
		subs := cl.handlers[event]
		for i, s := range subs {
			if s == sub {
				cl.handlers[event] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// OnReconnect registers a hook fired after the connection is re-established,
// not on the first connect. Subscribers use it to re-fetch state missed
// while disconnected; the client itself never replays events.
func (cl *Client) OnReconnect(fn func(c context.Context)) (unsubscribe func()) {
	hook := &fn

	cl.mu.Lock()
	cl.reconnectFn = append(cl.reconnectFn, hook)
	cl.mu.Unlock()

	return func() {
		cl.mu.Lock()
		defer cl.mu.Unlock()
		for i, h := range cl.reconnectFn {
			if h == hook {
				cl.reconnectFn = append(cl.reconnectFn[:i], cl.reconnectFn[i+1:]...)
				return
			}
		}
	}
}

// Emit writes one frame to the channel. It fails when disconnected; nothing
// is queued for later delivery.
func (cl *Client) Emit(c context.Context, event Event, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed marshaling event data with error=%w", err)
	}

	cl.mu.Lock()
	conn := cl.conn
	cl.mu.Unlock()
	if conn == nil || !cl.connected.Load() {
		return inErrors.ErrNotConnected
	}
	err = conn.WriteJSON(frame{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("failed writing event frame with error=%w", err)
	}
	return nil
}

// Run connects and dispatches events until the context is canceled. It
// returns nil on cancellation and retries every transport failure with
// exponential backoff.
func (cl *Client) Run(c context.Context) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RealtimeClient Run").
		Str(log.KeyRequestURL, cl.url).
		Logger()
	c = logger.WithContext(c)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cl.initialBackoff
	bo.MaxInterval = cl.maxBackoff
	bo.MaxElapsedTime = 0

	everConnected := false
	for {
		conn, err := cl.dial(c)
		if err != nil {
			err = fmt.Errorf("failed dialing %s with error=%w", cl.url, err)
			logger.Warn().Err(err).Msg(err.Error())
			if !cl.wait(c, bo.NextBackOff()) {
				return nil
			}
			continue
		}
		bo.Reset()

		cl.mu.Lock()
		cl.conn = conn
		cl.mu.Unlock()
		cl.connected.Store(true)
		logger.Info().Str(log.KeyProcess, "connect").Msg("connected to event channel")

		if everConnected {
			if cl.reconnectCounter != nil {
				cl.reconnectCounter.Add(c, 1)
			}
			cl.fireReconnect(c)
		}
		everConnected = true

		err = cl.readLoop(c, conn)
		cl.connected.Store(false)
		cl.mu.Lock()
		cl.conn = nil
		cl.mu.Unlock()
		conn.Close()

		if errors.Is(err, context.Canceled) || c.Err() != nil {
			logger.Info().Str(log.KeyProcess, "shutdown").Msg("event channel closed")
			return nil
		}
		logger.Warn().
			Err(err).
			Str(log.KeyProcess, "reconnect").
			Msg("connection dropped, reconnecting")
		if !cl.wait(c, bo.NextBackOff()) {
			return nil
		}
	}
}

func (cl *Client) dial(c context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if cl.token != "" {
		header.Set("Authorization", "Bearer "+cl.token)
	}
	conn, resp, err := cl.dialer.DialContext(c, cl.url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

func (cl *Client) readLoop(c context.Context, conn *websocket.Conn) error {
	readDone := make(chan struct{})
	defer close(readDone)
	go func() {
		// Unblock ReadMessage when the context is canceled.
		select {
		case <-c.Done():
			conn.Close()
		case <-readDone:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.Err() != nil {
				return context.Canceled
			}
			return err
		}

		f := frame{}
		err = json.Unmarshal(data, &f)
		if err != nil {
			zerolog.Ctx(c).
				Warn().
				Err(err).
				Str(log.KeyTag, "RealtimeClient readLoop").
				Msg("skipping malformed event frame")
			continue
		}
		cl.dispatch(c, f)
	}
}

// dispatch fans the frame out to every registered handler in registration
// order. A panicking handler is isolated so the remaining handlers still run.
func (cl *Client) dispatch(c context.Context, f frame) {
	if cl.eventCounter != nil {
		cl.eventCounter.Add(c, 1, metric.WithAttributes(
			attribute.String(log.KeyEvent, string(f.Event)),
		))
	}

	cl.mu.Lock()
	subs := make([]*subscription, len(cl.handlers[f.Event]))
	copy(subs, cl.handlers[f.Event])
	cl.mu.Unlock()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RealtimeClient dispatch").
		Str(log.KeyEvent, string(f.Event)).
		Logger()
	logger.Debug().Int("handlers", len(subs)).Msg("dispatching event")

	for _, sub := range subs {
		cl.deliver(c, logger, sub, f.Data)
	}
}

func (cl *Client) deliver(
	c context.Context,
	logger zerolog.Logger,
	sub *subscription,
	data json.RawMessage,
) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str(log.KeyProcess, "deliver").
				Msgf("recovered from panicking handler: %v", r)
		}
	}()
	sub.handler(c, data)
}

func (cl *Client) fireReconnect(c context.Context) {
	cl.mu.Lock()
	hooks := make([]*func(c context.Context), len(cl.reconnectFn))
	copy(hooks, cl.reconnectFn)
	cl.mu.Unlock()

	for _, hook := range hooks {
		(*hook)(c)
	}
}

func (cl *Client) wait(c context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-c.Done():
		return false
	case <-timer.C:
		return true
	}
}
