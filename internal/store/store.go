// Package store is the client's single source of truth for the session, the
// product catalog and the cart.
//
// State lives in immutable snapshots. Synchronous changes go through pure
// reducers (see Reduce); operations that touch the network or durable storage
// report failures as *Error values carrying a Kind. Storage writes run on a
// write-behind queue in submission order and are exposed as *Pending so a
// caller can choose to wait for durability.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/matthieukhl/storefront/internal/auth"
	"github.com/matthieukhl/storefront/internal/catalog"
	"github.com/matthieukhl/storefront/internal/metrics"
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/matthieukhl/storefront/internal/storage"
)

// DefaultLoginDelay simulates network latency on login.
const DefaultLoginDelay = time.Second

type Store struct {
	kv     storage.KV
	source catalog.Source
	writer *writer

	loginDelay   time.Duration
	writeTimeout time.Duration
	log          *slog.Logger
	metrics      *metrics.Metrics

	mu      sync.Mutex
	state   State
	version uint64
	loading int
	// sessionSeq identifies the most recent login/logout; older ones never
	// commit. fetchSeq numbers catalog fetches and fetchCommitted is the
	// newest one that replaced the catalog.
	sessionSeq     uint64
	fetchSeq       uint64
	fetchCommitted uint64

	subsMu  sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

type Option func(*Store)

// WithLoginDelay overrides DefaultLoginDelay. Zero disables the delay.
func WithLoginDelay(d time.Duration) Option {
	return func(s *Store) {
		s.loginDelay = d
	}
}

// WithWriteTimeout bounds each storage write. Default: 5 seconds.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.writeTimeout = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New creates an empty, unauthenticated store. Call Restore before making
// authorization decisions and Close when done.
func New(kv storage.KV, source catalog.Source, opts ...Option) *Store {
	s := &Store{
		kv:           kv,
		source:       source,
		loginDelay:   DefaultLoginDelay,
		writeTimeout: 5 * time.Second,
		subs:         make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.writer = newWriter(kv, s.writeTimeout, s.log, s.metrics)
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every committed change. fn runs on the
// goroutine that made the change, outside the store lock; use State.Version to
// discard out-of-order deliveries. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) notify(st State) {
	s.subsMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

// update commits fn's result. fn runs under the store lock and may adjust
// the loading counter and sequence numbers.
func (s *Store) update(fn func(State) State) State {
	s.mu.Lock()
	next := fn(s.state)
	next.IsLoading = s.loading > 0
	s.version++
	next.Version = s.version
	s.state = next
	s.mu.Unlock()

	s.notify(next)
	return next
}

// Dispatch applies a to the current state and queues the storage write the
// action implies, if any.
func (s *Store) Dispatch(a Action) *Pending {
	var pending *Pending
	s.update(func(st State) State {
		next := Reduce(st, a)
		pending = s.persistLocked(a, next)
		return next
	})
	s.metrics.Operation(a.name(), nil)
	return pending
}

func (s *Store) persistLocked(a Action, next State) *Pending {
	switch a.(type) {
	case AddToCart, RemoveFromCart, UpdateCartItemQuantity:
		blob, err := json.Marshal(next.CartItems)
		if err != nil {
			return resolved(opError(a.name(), KindPersistence, err))
		}
		return s.writer.enqueue(a.name(), set(KeyCartItems, string(blob)))
	case ClearCart:
		return s.writer.enqueue(a.name(), remove(KeyCartItems))
	default:
		return resolved(nil)
	}
}

// AddToCart adds one unit of product and persists the cart.
func (s *Store) AddToCart(product models.Product) *Pending {
	return s.Dispatch(AddToCart{Product: product})
}

// RemoveFromCart drops productID from the cart and persists the cart.
func (s *Store) RemoveFromCart(productID int64) *Pending {
	return s.Dispatch(RemoveFromCart{ProductID: productID})
}

// UpdateCartItemQuantity sets the quantity of productID; quantity <= 0
// removes the item.
func (s *Store) UpdateCartItemQuantity(productID int64, quantity int) *Pending {
	return s.Dispatch(UpdateCartItemQuantity{ProductID: productID, Quantity: quantity})
}

// ClearCart empties the cart and removes it from durable storage.
func (s *Store) ClearCart() *Pending {
	return s.Dispatch(ClearCart{})
}

// SetSelectedProduct opens (or with nil, closes) a product's detail view.
func (s *Store) SetSelectedProduct(product *models.Product) {
	s.Dispatch(SelectProduct{Product: product})
}

// CalculateCartTotal recomputes the cart total from the cart items.
func (s *Store) CalculateCartTotal() {
	s.Dispatch(CalculateCartTotal{})
}

// Login validates the credentials locally and, if they pass, signs in the
// demo user. It waits for the configured delay on every path. On failure it
// returns false and an *Error; the session is left as it was.
func (s *Store) Login(ctx context.Context, email, password string) (bool, error) {
	var token uint64
	s.update(func(st State) State {
		s.sessionSeq++
		token = s.sessionSeq
		s.loading++
		return st
	})

	user, err := s.authenticate(ctx, token, email, password)

	committed := false
	s.update(func(st State) State {
		s.loading--
		if err == nil && s.sessionSeq == token {
			committed = true
			return Reduce(st, loggedIn{user: user})
		}
		return st
	})
	if err == nil && !committed {
		err = opError("login", KindSuperseded, ErrSuperseded)
	}

	s.metrics.Operation("login", err)
	if err != nil {
		s.log.Info("login failed", "kind", KindOf(err), "error", err)
		return false, err
	}
	s.log.Info("login succeeded", "username", user.Username)
	return true, nil
}

func (s *Store) authenticate(ctx context.Context, token uint64, email, password string) (models.User, error) {
	var reason error
	if !auth.ValidateEmail(email) {
		reason = fmt.Errorf("%w: malformed email", ErrInvalidCredentials)
	} else if problems := auth.PasswordProblems(password); len(problems) > 0 {
		reason = fmt.Errorf("%w: password %s", ErrInvalidCredentials, problems[0])
	}

	if err := sleep(ctx, s.loginDelay); err != nil {
		return models.User{}, opError("login", KindCanceled, err)
	}
	if reason != nil {
		return models.User{}, opError("login", KindValidation, reason)
	}

	user := auth.DemoUser(email, password)
	blob, err := json.Marshal(user)
	if err != nil {
		return models.User{}, opError("login", KindPersistence, err)
	}

	var pending *Pending
	s.mu.Lock()
	if s.sessionSeq != token {
		s.mu.Unlock()
		return models.User{}, opError("login", KindSuperseded, ErrSuperseded)
	}
	pending = s.writer.enqueue("login", set(KeyUser, string(blob)), set(KeyAuthenticated, "true"))
	s.mu.Unlock()

	if err := pending.Wait(ctx); err != nil {
		s.rollbackSession(token)
		if ctx.Err() != nil {
			return models.User{}, opError("login", KindCanceled, err)
		}
		return models.User{}, err
	}
	return user, nil
}

// rollbackSession removes a half-written session unless a newer login or
// logout has already queued its own writes.
func (s *Store) rollbackSession(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionSeq == token {
		s.writer.enqueue("login", remove(KeyUser), remove(KeyAuthenticated))
	}
}

// Logout clears the session, the cart and the selection immediately and
// removes them from durable storage. Any login still in flight is discarded.
func (s *Store) Logout() *Pending {
	var pending *Pending
	s.update(func(st State) State {
		s.sessionSeq++
		pending = s.writer.enqueue("logout", remove(KeyUser), remove(KeyAuthenticated), remove(KeyCartItems))
		return Reduce(st, loggedOut{})
	})
	s.metrics.Operation("logout", nil)
	s.log.Info("logged out")
	return pending
}

// FetchProducts replaces the catalog with a fresh copy from the catalog
// source. On failure the previous catalog is kept. A successful fetch is
// discarded only when a fetch started after it has already committed.
func (s *Store) FetchProducts(ctx context.Context) error {
	var token uint64
	s.update(func(st State) State {
		s.fetchSeq++
		token = s.fetchSeq
		s.loading++
		return st
	})

	start := time.Now()
	products, err := s.source.Products(ctx)
	s.metrics.CatalogFetch(time.Since(start))
	if err != nil {
		err = opError("fetch_products", fetchKind(ctx, err), err)
	}

	s.update(func(st State) State {
		s.loading--
		if err != nil {
			return st
		}
		if token < s.fetchCommitted {
			err = opError("fetch_products", KindSuperseded, ErrSuperseded)
			return st
		}
		s.fetchCommitted = token
		return Reduce(st, productsLoaded{products: products})
	})

	s.metrics.Operation("fetch_products", err)
	if err != nil {
		s.log.Warn("catalog fetch failed", "source", s.source.Name(), "kind", KindOf(err), "error", err)
		return err
	}
	s.log.Debug("catalog fetched", "source", s.source.Name(), "products", len(products))
	return nil
}

func fetchKind(ctx context.Context, err error) Kind {
	switch {
	case ctx.Err() != nil:
		return KindCanceled
	case errors.Is(err, catalog.ErrMalformed):
		return KindDecode
	default:
		return KindNetwork
	}
}

// Restore loads the session and cart from durable storage. Each slot falls
// back to its empty default independently when it is missing or unreadable;
// the returned error reports what was skipped and is never fatal.
func (s *Store) Restore(ctx context.Context) error {
	var errs []error

	user, err := s.restoreUser(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	items, err := s.restoreCart(ctx)
	if err != nil {
		errs = append(errs, err)
	}

	s.update(func(st State) State {
		return Reduce(st, restored{user: user, items: items})
	})

	if len(errs) == 0 {
		s.metrics.Operation("restore", nil)
		return nil
	}
	err = errors.Join(errs...)
	s.metrics.Operation("restore", err)
	s.log.Warn("restore skipped unreadable state", "error", err)
	return err
}

func (s *Store) restoreUser(ctx context.Context) (*models.User, error) {
	raw, ok, err := s.kv.Get(ctx, KeyUser)
	if err != nil {
		return nil, opError("restore", KindPersistence, err)
	}
	if !ok {
		return nil, nil
	}
	flag, _, err := s.kv.Get(ctx, KeyAuthenticated)
	if err != nil {
		return nil, opError("restore", KindPersistence, err)
	}
	if flag != "true" {
		return nil, nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, opError("restore", KindDecode, fmt.Errorf("%s: %w", KeyUser, err))
	}
	return &user, nil
}

func (s *Store) restoreCart(ctx context.Context) ([]models.CartItem, error) {
	raw, ok, err := s.kv.Get(ctx, KeyCartItems)
	if err != nil {
		return nil, opError("restore", KindPersistence, err)
	}
	if !ok {
		return nil, nil
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, opError("restore", KindDecode, fmt.Errorf("%s: %w", KeyCartItems, err))
	}
	return models.NormalizeCart(items), nil
}

// Flush waits until every storage write queued so far has been attempted.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.flush(ctx)
}

// Close drains pending writes and stops the writer. The KV is not closed.
func (s *Store) Close(ctx context.Context) error {
	return s.writer.close(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
