package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/scentlane/storefront/catalog"
	"github.com/scentlane/storefront/internal/log"
)

var tracer = otel.Tracer("storefront/cart")

// Line is one cart entry. The product is a snapshot taken at add time: a
// later catalog price change does not touch lines already in the cart.
type Line struct {
	Product  catalog.Product `json:"product"`
	Size     int             `json:"size"`
	Quantity int             `json:"quantity"`
}

// Store is the single source of truth for the shopping cart. Lines are keyed
// by (product id, size); the same product at two sizes is two lines. Every
// mutation persists synchronously, and a persistence failure is logged as a
// warning without failing the mutation.
type Store struct {
	mu      sync.Mutex
	lines   []Line
	storage Storage
}

// NewStore restores the previous session's cart from storage. A load failure
// is non-fatal: the store starts empty and logs a warning.
func NewStore(c context.Context, storage Storage) *Store {
	c, span := tracer.Start(c, "cart NewStore")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "cart NewStore").
		Str(log.KeyProcess, "loading persisted cart").
		Logger()

	store := &Store{storage: storage}

	logger.Info().Msg("loading persisted cart")
	lines, err := storage.Load(c)
	if err != nil {
		err = fmt.Errorf("failed loading persisted cart with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
		return store
	}
	store.lines = lines
	logger.Info().Int(log.KeyCartLines, len(lines)).Msg("loaded persisted cart")
	return store
}

// AddToCart merges into the existing (product id, size) line by incrementing
// its quantity, or appends a fresh snapshot line. Quantity below 1 is
// normalized to 1; size membership in product.Sizes is the caller's contract.
func (s *Store) AddToCart(c context.Context, product catalog.Product, size int, quantity int) {
	c, span := tracer.Start(c, "CartStore AddToCart")
	defer span.End()
	span.SetAttributes(
		attribute.String(log.KeyProductID, product.ID),
		attribute.Int(log.KeySize, size),
		attribute.Int(log.KeyQuantity, quantity),
	)

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore AddToCart").
		Str(log.KeyProductID, product.ID).
		Int(log.KeySize, size).
		Int(log.KeyQuantity, quantity).
		Logger()

	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(product.ID, size); i >= 0 {
		s.lines[i].Quantity += quantity
		logger.Info().
			Int(log.KeyQuantity, s.lines[i].Quantity).
			Msg("merged quantity into existing cart line")
	} else {
		s.lines = append(s.lines, Line{Product: product, Size: size, Quantity: quantity})
		logger.Info().Msg("appended new cart line")
	}

	s.persist(c)
}

// RemoveFromCart deletes the matching line; absence is a no-op, not an error.
func (s *Store) RemoveFromCart(c context.Context, productID string, size int) {
	c, span := tracer.Start(c, "CartStore RemoveFromCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore RemoveFromCart").
		Str(log.KeyProductID, productID).
		Int(log.KeySize, size).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID, size)
	if i < 0 {
		logger.Info().Msg("cart line not found, nothing to remove")
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	logger.Info().Msg("removed cart line")

	s.persist(c)
}

// UpdateQuantity sets the line quantity directly. A quantity of zero or less
// removes the line. Unknown lines are a no-op.
func (s *Store) UpdateQuantity(c context.Context, productID string, size int, quantity int) {
	c, span := tracer.Start(c, "CartStore UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore UpdateQuantity").
		Str(log.KeyProductID, productID).
		Int(log.KeySize, size).
		Int(log.KeyQuantity, quantity).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID, size)
	if i < 0 {
		logger.Info().Msg("cart line not found, nothing to update")
		return
	}
	if quantity <= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
		logger.Info().Msg("quantity reached zero, removed cart line")
	} else {
		s.lines[i].Quantity = quantity
		logger.Info().Msg("updated cart line quantity")
	}

	s.persist(c)
}

// Clear empties the cart unconditionally, used after a successful order and
// for the explicit clear-cart action.
func (s *Store) Clear(c context.Context) {
	c, span := tracer.Start(c, "CartStore Clear")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore Clear").
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	logger.Info().Msg("cleared cart")

	s.persist(c)
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)
	return lines
}

// TotalItems is the quantity sum across all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice sums snapshot price times quantity, never a live catalog lookup.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, line := range s.lines {
		total += line.Product.Price * int64(line.Quantity)
	}
	return total
}

// persist is called with the lock held. Storage failures stay non-fatal so
// the in-memory cart remains correct for the session.
func (s *Store) persist(c context.Context) {
	err := s.storage.Save(c, s.lines)
	if err != nil {
		err = fmt.Errorf("failed persisting cart with error=%w", err)
		zerolog.Ctx(c).
			Warn().
			Err(err).
			Str(log.KeyTag, "CartStore persist").
			Msg(err.Error())
	}
}

func (s *Store) indexOf(productID string, size int) int {
	for i, line := range s.lines {
		if line.Product.ID == productID && line.Size == size {
			return i
		}
	}
	return -1
}
