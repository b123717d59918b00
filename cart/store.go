// Package cart keeps a local snapshot of the server-side cart and
// reconciles edits through a single background writer. Callers see
// every edit reflected immediately in the snapshot; the writer replays
// the edits against the server in arrival order, so two goroutines
// mutating the cart never race on the wire.
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jemaristudio/eshop-go/client"
	"github.com/jemaristudio/eshop-go/core"
)

// ServerAPI is the slice of the storefront facade the store needs.
// *client.Client satisfies it.
type ServerAPI interface {
	CartItems(ctx context.Context) ([]client.CartItem, error)
	AddToCart(ctx context.Context, variantID string, quantity int) error
	UpdateCartQuantity(ctx context.Context, itemID string, quantity int) error
	RemoveFromCart(ctx context.Context, itemID string) error
}

// Shipping policy. Orders at or above the threshold ship free.
var (
	FreeShippingThreshold = decimal.NewFromInt(50000)
	ShippingFee           = decimal.NewFromInt(5000)
)

type intentKind int

const (
	intentAdd intentKind = iota
	intentUpdate
	intentRemove
)

type intent struct {
	id        string
	kind      intentKind
	itemID    string
	variantID string
	quantity  int
}

// Store is the cart state holder. Construct with New and stop with
// Close; a zero Store is not usable.
type Store struct {
	api    ServerAPI
	logger core.Logger

	mu    sync.RWMutex
	items []client.CartItem

	intents chan intent
	done    chan struct{}
	once    sync.Once

	// reconcileTimeout bounds each replayed server call.
	reconcileTimeout time.Duration
}

// Options tunes a Store. Zero values get defaults.
type Options struct {
	Logger core.Logger
	// QueueSize bounds the pending intent queue. Defaults to 64; an
	// enqueue beyond it blocks until the writer catches up.
	QueueSize int
	// ReconcileTimeout bounds each server call made by the writer.
	// Defaults to 10s.
	ReconcileTimeout time.Duration
}

// New creates a Store and starts its background writer.
func New(api ServerAPI, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	timeout := opts.ReconcileTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s := &Store{
		api:              api,
		logger:           logger,
		intents:          make(chan intent, queueSize),
		done:             make(chan struct{}),
		reconcileTimeout: timeout,
	}
	go s.reconcileLoop()
	return s
}

// Close stops the background writer. Pending intents already queued are
// still replayed before the writer exits.
func (s *Store) Close() {
	s.once.Do(func() { close(s.intents) })
	<-s.done
}

// Items returns a copy of the current snapshot. Mutating the returned
// slice never affects the store.
func (s *Store) Items() []client.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]client.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Subtotal sums the line totals of the snapshot.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Shipping returns the fee for the current snapshot: free at or above
// the threshold, flat fee below it, zero for an empty cart.
func (s *Store) Shipping() decimal.Decimal {
	subtotal := s.Subtotal()
	if subtotal.IsZero() {
		return decimal.Zero
	}
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return ShippingFee
}

// Total is subtotal plus shipping.
func (s *Store) Total() decimal.Decimal {
	return s.Subtotal().Add(s.Shipping())
}

// Refresh replaces the snapshot with the server-side cart. Queued
// intents still replay afterwards, so a refresh racing an edit settles
// once the writer drains.
func (s *Store) Refresh(ctx context.Context) error {
	items, err := s.api.CartItems(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Add puts a variant into the cart. An existing line for the variant
// gains the quantity; otherwise a provisional line is appended, carrying
// the intent id until the next Refresh learns the server-assigned one.
func (s *Store) Add(product client.Product, variant client.Variant, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	in := intent{
		id:        uuid.New().String(),
		kind:      intentAdd,
		variantID: variant.ID,
		quantity:  quantity,
	}

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].Variant.ID == variant.ID {
			s.items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, client.CartItem{
			ID:       in.id,
			Product:  product,
			Variant:  variant,
			Quantity: quantity,
		})
	}
	s.mu.Unlock()

	s.enqueue(in)
}

// Increment raises a line's quantity by one.
func (s *Store) Increment(itemID string) {
	s.adjust(itemID, +1)
}

// Decrement lowers a line's quantity by one, clamping at one. Removing
// the last unit is an explicit Remove, never a side effect.
func (s *Store) Decrement(itemID string) {
	s.adjust(itemID, -1)
}

func (s *Store) adjust(itemID string, delta int) {
	s.mu.Lock()
	var updated *client.CartItem
	for i := range s.items {
		if s.items[i].ID == itemID {
			next := s.items[i].Quantity + delta
			if next < 1 {
				next = 1
			}
			if next == s.items[i].Quantity {
				s.mu.Unlock()
				return
			}
			s.items[i].Quantity = next
			updated = &s.items[i]
			break
		}
	}
	if updated == nil {
		s.mu.Unlock()
		return
	}
	in := intent{
		id:       uuid.New().String(),
		kind:     intentUpdate,
		itemID:   itemID,
		quantity: updated.Quantity,
	}
	s.mu.Unlock()

	s.enqueue(in)
}

// Remove drops a line from the cart.
func (s *Store) Remove(itemID string) {
	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	s.enqueue(intent{
		id:     uuid.New().String(),
		kind:   intentRemove,
		itemID: itemID,
	})
}

func (s *Store) enqueue(in intent) {
	defer func() {
		// Edits after Close are applied locally but no longer replayed.
		if recover() != nil {
			s.logger.Warn("Cart edit after close, not replayed", map[string]interface{}{
				"intent_id": in.id,
			})
		}
	}()
	s.intents <- in
}

// reconcileLoop is the single writer. Intents replay strictly in
// arrival order; a failed replay is logged and the snapshot re-synced
// from the server so the local view never drifts silently.
func (s *Store) reconcileLoop() {
	defer close(s.done)
	for in := range s.intents {
		ctx, cancel := context.WithTimeout(context.Background(), s.reconcileTimeout)
		err := s.apply(ctx, in)
		cancel()
		if err == nil {
			continue
		}
		s.logger.Error("Cart reconcile failed", map[string]interface{}{
			"intent_id": in.id,
			"item_id":   in.itemID,
			"error":     err.Error(),
		})
		s.resync()
	}
}

func (s *Store) apply(ctx context.Context, in intent) error {
	switch in.kind {
	case intentAdd:
		return s.api.AddToCart(ctx, in.variantID, in.quantity)
	case intentUpdate:
		return s.api.UpdateCartQuantity(ctx, in.itemID, in.quantity)
	case intentRemove:
		return s.api.RemoveFromCart(ctx, in.itemID)
	}
	return nil
}

func (s *Store) resync() {
	ctx, cancel := context.WithTimeout(context.Background(), s.reconcileTimeout)
	defer cancel()
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("Cart resync failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
