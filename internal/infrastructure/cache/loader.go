// Package cache provides a read-through loader with PostgreSQL LISTEN/NOTIFY
// invalidation. Concurrent requests for the same key share a single producer
// call; the result is cached until invalidated.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockbook/pkg/logger"
)

// InvalidationChannel is the NOTIFY channel the loader listens on.
// Payload is the cache key to drop; an empty payload drops everything.
const InvalidationChannel = "stockbook_cache"

// Producer computes the value for a key on a cache miss.
type Producer func(ctx context.Context) (any, error)

// InvalidationListener is called when a key is invalidated.
type InvalidationListener func(key string)

// notifyExecer is the slice of pgxpool.Pool used to publish invalidations.
type notifyExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// entry is one cache slot. done is closed when the producer finished;
// waiters block on it instead of running the producer again.
type entry struct {
	done chan struct{}
	val  any
	err  error
}

// Loader is a fetch-with-dedup read-through cache.
type Loader struct {
	pool   *pgxpool.Pool
	notify notifyExecer

	mu      sync.Mutex
	entries map[string]*entry

	listeners   []InvalidationListener
	listenersMu sync.RWMutex

	// Lifecycle
	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// NewLoader creates a loader. The pool carries the LISTEN connection and
// publishes NOTIFY on invalidation; pass nil when invalidation is driven
// manually (tests).
func NewLoader(pool *pgxpool.Pool) *Loader {
	l := &Loader{
		pool:    pool,
		entries: make(map[string]*entry),
	}
	if pool != nil {
		l.notify = pool
	}
	return l
}

// Fetch returns the cached value for key, running producer at most once per
// key across concurrent callers. A producer error is not cached; the next
// Fetch retries.
func (l *Loader) Fetch(ctx context.Context, key string, producer Producer) (any, error) {
	l.mu.Lock()
	if e, ok := l.entries[key]; ok {
		l.mu.Unlock()

		select {
		case <-e.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return e.val, e.err
	}

	e := &entry{done: make(chan struct{})}
	l.entries[key] = e
	l.mu.Unlock()

	// The producer runs on the loader's lifecycle context, not the first
	// caller's request context: the flight is shared, so one cancelled
	// request must not fail every waiter.
	e.val, e.err = producer(l.producerContext())
	close(e.done)

	if e.err != nil {
		// Do not cache failures.
		l.mu.Lock()
		if cur, ok := l.entries[key]; ok && cur == e {
			delete(l.entries, key)
		}
		l.mu.Unlock()
	}

	return e.val, e.err
}

// Invalidate drops one key and broadcasts it on the NOTIFY channel so peer
// instances drop it too. In-flight producers finish for their current
// waiters; the next Fetch recomputes.
func (l *Loader) Invalidate(key string) {
	l.invalidateLocal(key)
	l.publishInvalidation(key)
}

// InvalidateAll drops every cached key, locally and on peers.
func (l *Loader) InvalidateAll() {
	l.invalidateAllLocal()
	l.publishInvalidation("")
}

func (l *Loader) invalidateLocal(key string) {
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()

	l.notifyListeners(key)
}

func (l *Loader) invalidateAllLocal() {
	l.mu.Lock()
	l.entries = make(map[string]*entry)
	l.mu.Unlock()

	l.notifyListeners("")
}

// publishInvalidation sends the key to peer instances. Local state is
// already dropped; a failed publish only leaves peers stale, so it is
// logged and not returned to the caller.
func (l *Loader) publishInvalidation(key string) {
	if l.notify == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := l.notify.Exec(ctx, "SELECT pg_notify($1, $2)", InvalidationChannel, key); err != nil {
		logger.Error(ctx, "failed to publish cache invalidation", "key", key, "error", err)
	}
}

func (l *Loader) producerContext() context.Context {
	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()
	if l.started && l.ctx != nil {
		return l.ctx
	}
	return context.Background()
}

// OnInvalidation registers a callback for invalidation events.
func (l *Loader) OnInvalidation(listener InvalidationListener) {
	l.listenersMu.Lock()
	l.listeners = append(l.listeners, listener)
	l.listenersMu.Unlock()
}

func (l *Loader) notifyListeners(key string) {
	// Delivery is synchronous and bounded; listeners must be fast.
	l.listenersMu.RLock()
	for _, listener := range l.listeners {
		func(fn InvalidationListener) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(context.Background(), "invalidation listener panic recovered", "key", key, "panic", r)
				}
			}()
			fn(key)
		}(listener)
	}
	l.listenersMu.RUnlock()
}

// Start begins listening for NOTIFY events.
func (l *Loader) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	l.lifecycleMu.Lock()
	if l.started {
		l.lifecycleMu.Unlock()
		return nil
	}
	l.ctx, l.cancel = context.WithCancel(ctx)
	l.started = true
	l.lifecycleMu.Unlock()

	if l.pool != nil {
		l.wg.Add(1)
		go l.listenLoop()
	}

	logger.Info(l.ctx, "cache loader started")
	return nil
}

// Stop gracefully stops the listener.
func (l *Loader) Stop() {
	l.lifecycleMu.Lock()
	if !l.started {
		l.lifecycleMu.Unlock()
		return
	}
	cancel := l.cancel
	l.started = false
	l.cancel = nil
	l.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	l.wg.Wait()
	logger.Info(context.Background(), "cache loader stopped")
}

// listenLoop holds a dedicated connection for LISTEN, reconnecting on error.
func (l *Loader) listenLoop() {
	defer l.wg.Done()

	for {
		select {
		case <-l.ctx.Done():
			return
		default:
		}

		conn, err := l.pool.Acquire(l.ctx)
		if err != nil {
			logger.Error(l.ctx, "failed to acquire connection for LISTEN", "error", err)
			time.Sleep(time.Second)
			continue
		}

		_, err = conn.Exec(l.ctx, "LISTEN "+InvalidationChannel)
		if err != nil {
			logger.Error(l.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			time.Sleep(time.Second)
			continue
		}

		logger.Info(l.ctx, "listening for cache invalidations", "channel", InvalidationChannel)

		l.waitForNotifications(conn)
		conn.Release()
	}
}

// waitForNotifications blocks waiting for NOTIFY events.
func (l *Loader) waitForNotifications(conn *pgxpool.Conn) {
	for {
		select {
		case <-l.ctx.Done():
			return
		default:
		}

		// Timeout keeps shutdown responsive.
		ctx, cancel := context.WithTimeout(l.ctx, 30*time.Second)
		notification, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if l.ctx.Err() != nil {
				return
			}
			continue
		}

		key := strings.TrimSpace(notification.Payload)
		logger.Debug(l.ctx, "cache invalidation received", "key", key)

		// Apply locally only; republishing a received notification would
		// ping-pong between instances.
		if key == "" {
			l.invalidateAllLocal()
		} else {
			l.invalidateLocal(key)
		}
	}
}

// Stats reports cache size.
type Stats struct {
	Keys int
}

// GetStats returns current cache statistics.
func (l *Loader) GetStats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{Keys: len(l.entries)}
}
