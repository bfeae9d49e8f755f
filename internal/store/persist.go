package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/matthieukhl/storefront/internal/metrics"
	"github.com/matthieukhl/storefront/internal/storage"
)

// Durable storage keys
const (
	KeyUser          = "user"
	KeyAuthenticated = "isAuthenticated"
	KeyCartItems     = "cartItems"
)

// Pending is the outcome of a queued storage write. Callers that do not care
// about durability may drop it; the write still happens.
type Pending struct {
	done chan struct{}
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func resolved(err error) *Pending {
	p := newPending()
	p.resolve(err)
	return p
}

func (p *Pending) resolve(err error) {
	p.err = err
	close(p.done)
}

// Done is closed once the write has been attempted.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the write has been attempted or ctx ends. A nil Pending
// is already complete.
func (p *Pending) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type write struct {
	key    string
	value  string
	remove bool
}

func set(key, value string) write { return write{key: key, value: value} }
func remove(key string) write     { return write{key: key, remove: true} }

type job struct {
	op      string
	writes  []write
	pending *Pending
}

// writer applies storage writes on a single goroutine in submission order.
type writer struct {
	kv      storage.KV
	timeout time.Duration
	log     *slog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	queue   []job
	last    *Pending
	closed  bool
	wake    chan struct{}
	stopped chan struct{}
}

func newWriter(kv storage.KV, timeout time.Duration, log *slog.Logger, m *metrics.Metrics) *writer {
	w := &writer{
		kv:      kv,
		timeout: timeout,
		log:     log,
		metrics: m,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go w.run()
	return w
}

// enqueue never blocks, so it is safe to call while holding the store lock.
func (w *writer) enqueue(op string, writes ...write) *Pending {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return resolved(opError(op, KindPersistence, storage.ErrClosed))
	}

	p := newPending()
	w.queue = append(w.queue, job{op: op, writes: writes, pending: p})
	w.last = p

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return p
}

func (w *writer) run() {
	defer close(w.stopped)
	for {
		<-w.wake

		w.mu.Lock()
		batch := w.queue
		w.queue = nil
		closed := w.closed
		w.mu.Unlock()

		for _, j := range batch {
			j.pending.resolve(w.apply(j))
		}

		if closed {
			w.mu.Lock()
			drained := len(w.queue) == 0
			w.mu.Unlock()
			if drained {
				return
			}
		}
	}
}

func (w *writer) apply(j job) error {
	var errs []error
	for _, wr := range j.writes {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		var err error
		if wr.remove {
			err = w.kv.Remove(ctx, wr.key)
		} else {
			err = w.kv.Set(ctx, wr.key, wr.value)
		}
		cancel()

		w.metrics.PersistWrite(err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", wr.key, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}

	err := opError(j.op, KindPersistence, errors.Join(errs...))
	w.log.Warn("storage write failed", "op", j.op, "error", err)
	return err
}

// flush waits for every write queued so far.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	last := w.last
	w.mu.Unlock()

	if last == nil {
		return nil
	}
	select {
	case <-last.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close rejects new writes, drains the queue and stops the goroutine.
func (w *writer) close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		select {
		case w.wake <- struct{}{}:
		default:
		}
	}
	w.mu.Unlock()

	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
