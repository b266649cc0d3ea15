// Package sse streams card and group change events to live workspace
// overlays over Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/mindvault/internal/logging"
)

// Event types.
const (
	TypeCardCreated      = "card.created"
	TypeCardUpdated      = "card.updated"
	TypeCardDeleted      = "card.deleted"
	TypeGroupUpdated     = "group.updated"
	TypeWorkspaceUpdated = "workspace.updated"
)

// DefaultThrottle is the minimum gap between workspace.updated events.
const DefaultThrottle = 2 * time.Second

const (
	// heartbeatInterval keeps idle streams alive through proxies.
	heartbeatInterval = 25 * time.Second
	// retryMillis is the reconnect delay suggested to EventSource clients.
	retryMillis = 3000
)

// Event is one message sent to every subscriber.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type cardEvent struct {
	kind string
	id   string
	path string
}

// Broker fans events out to SSE clients.
//
// A single loop goroutine owns the client set and the workspace throttle
// state; public methods talk to it over channels.
type Broker struct {
	throttle time.Duration
	logger   *slog.Logger

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	cardEventCh   chan cardEvent
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. throttle <= 0 uses DefaultThrottle. A nil
// logger discards.
func NewBroker(throttle time.Duration, logger *slog.Logger) *Broker {
	if throttle <= 0 {
		throttle = DefaultThrottle
	}

	b := &Broker{
		throttle:      throttle,
		logger:        logging.Component(logger, "sse"),
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		cardEventCh:   make(chan cardEvent, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var seq uint64

	// workspace.updated is sent at most once per throttle window. Card
	// events arriving inside the window arm a trailing timer, so the last
	// change is never left without a refresh signal.
	var (
		lastWorkspace time.Time
		trailing      *time.Timer
		trailingCh    <-chan time.Time
	)

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			b.logger.Warn("encode event failed", slog.String("type", event.Type), slog.String("error", err.Error()))
			return
		}
		seq++
		raw := []byte(fmt.Sprintf("event: %s\nid: %d\ndata: %s\n\n", event.Type, seq, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
	}

	workspaceUpdated := func() {
		lastWorkspace = time.Now()
		broadcast(Event{Type: TypeWorkspaceUpdated, Data: map[string]string{}})
	}

	for {
		select {
		case <-b.stopCh:
			if trailing != nil {
				trailing.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}
			b.logger.Debug("client subscribed", slog.Int("clients", len(clients)))

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
				b.logger.Debug("client unsubscribed", slog.Int("clients", len(clients)))
			}

		case event := <-b.publishCh:
			broadcast(event)

		case ev := <-b.cardEventCh:
			typ, ok := cardEventType(ev.kind)
			if !ok {
				b.logger.Warn("unknown card event kind", slog.String("kind", ev.kind))
				continue
			}
			broadcast(Event{Type: typ, Data: map[string]string{"id": ev.id, "path": ev.path}})

			if wait := b.throttle - time.Since(lastWorkspace); wait <= 0 {
				workspaceUpdated()
			} else if trailingCh == nil {
				trailing = time.NewTimer(wait)
				trailingCh = trailing.C
			}

		case <-trailingCh:
			trailingCh = nil
			workspaceUpdated()

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

func cardEventType(kind string) (string, bool) {
	switch kind {
	case "created":
		return TypeCardCreated, true
	case "updated":
		return TypeCardUpdated, true
	case "deleted":
		return TypeCardDeleted, true
	}
	return "", false
}

// Close stops the loop and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishCardEvent publishes card.<kind> followed by a throttled
// workspace.updated. kind is one of created, updated, deleted.
func (b *Broker) PublishCardEvent(kind, id, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.cardEventCh <- cardEvent{kind: kind, id: id, path: path}:
	case <-b.stopped:
	}
}

// PublishGroupEvent publishes group.updated for the group with id.
func (b *Broker) PublishGroupEvent(id string) {
	b.Publish(Event{Type: TypeGroupUpdated, Data: map[string]string{"id": id}})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). Idle streams get
// a comment line every heartbeatInterval.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
