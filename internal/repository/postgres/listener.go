package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"
)

const (
	channelEvents   = "events_changed"
	channelTalks    = "talks_changed"
	channelProfiles = "profiles_changed"
)

// Notifier fans Postgres LISTEN/NOTIFY payloads out to in-process subscribers.
// Repositories publish the changed row's id (or owning event id) on a channel
// after every write, so subscriptions work across processes sharing the database.
type Notifier struct {
	listener *pq.Listener
	logger   *slog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]*subscriber
	closed bool
}

// subscriber owns a delivery mutex so that cancelling a subscription can wait
// out an in-flight callback.
type subscriber struct {
	mu      sync.Mutex
	fn      func(payload string)
	removed bool
}

// NewNotifier connects a dedicated listener session to the database and starts
// dispatching. Close releases the session.
func NewNotifier(dsn string, logger *slog.Logger) (*Notifier, error) {
	n := &Notifier{
		logger: logger,
		subs:   make(map[string]map[int]*subscriber),
	}
	n.listener = pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("listener event", "type", int(ev), "error", err)
		}
	})
	for _, channel := range []string{channelEvents, channelTalks, channelProfiles} {
		if err := n.listener.Listen(channel); err != nil {
			n.listener.Close()
			return nil, fmt.Errorf("listen %s: %w", channel, err)
		}
	}
	go n.dispatch()
	return n, nil
}

func (n *Notifier) dispatch() {
	for notification := range n.listener.Notify {
		// nil notifications signal a reconnect; subscribers cannot tell what
		// changed in between, so there is nothing to replay.
		if notification == nil {
			continue
		}
		n.deliver(notification.Channel, notification.Extra)
	}
}

func (n *Notifier) deliver(channel, payload string) {
	n.mu.Lock()
	subs := make([]*subscriber, 0, len(n.subs[channel]))
	for _, sub := range n.subs[channel] {
		subs = append(subs, sub)
	}
	n.mu.Unlock()
	for _, sub := range subs {
		sub.mu.Lock()
		if !sub.removed {
			sub.fn(payload)
		}
		sub.mu.Unlock()
	}
}

// Subscribe registers fn for payloads on channel. The returned cancel function
// is idempotent and returns only once any in-flight delivery to fn has
// finished; it must not be called from inside fn.
func (n *Notifier) Subscribe(channel string, fn func(payload string)) func() {
	sub := &subscriber{fn: fn}
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	if n.subs[channel] == nil {
		n.subs[channel] = make(map[int]*subscriber)
	}
	n.subs[channel][id] = sub
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs[channel], id)
			n.mu.Unlock()
			// Taking the delivery mutex waits out a callback that already
			// started before the map entry was removed.
			sub.mu.Lock()
			sub.removed = true
			sub.mu.Unlock()
		})
	}
}

// Close stops dispatching and disconnects the listener session.
func (n *Notifier) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.mu.Unlock()
	return n.listener.Close()
}

// notify publishes a payload through the regular connection pool so writers do
// not need the dedicated listener session.
func notify(ctx context.Context, db *sql.DB, channel, payload string) error {
	_, err := db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, channel, payload)
	return err
}
