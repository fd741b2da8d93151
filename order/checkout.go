package order

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/scentlane/storefront/cart"
	inErrors "github.com/scentlane/storefront/internal/errors"
	"github.com/scentlane/storefront/internal/log"
)

var tracer = otel.Tracer("storefront/order")

// Free shipping kicks in at the threshold, below it a flat fee applies.
// Amounts are whole rupees.
const (
	FreeShippingThreshold int64 = 3999
	ShippingFee           int64 = 200
)

// ShippingFor returns the shipping cost for a cart subtotal.
func ShippingFor(subtotal int64) int64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return ShippingFee
}

// Summary is the order total breakdown shown on the cart and checkout pages.
type Summary struct {
	TotalItems int
	Subtotal   int64
	Shipping   int64
	Total      int64
}

// Placer submits an order to the orders collaborator.
type Placer interface {
	CreateOrder(c context.Context, param CreateOrder) (Order, error)
}

// CheckoutService turns the current cart into an order. The cart is cleared
// only after the collaborator accepts the order; a rejected order leaves the
// cart untouched and the error reaches the caller.
type CheckoutService struct {
	store  *cart.Store
	orders Placer
}

func NewCheckoutService(store *cart.Store, orders Placer) CheckoutService {
	return CheckoutService{store: store, orders: orders}
}

// Summary derives totals from the cart's snapshot prices.
func (s CheckoutService) Summary() Summary {
	subtotal := s.store.TotalPrice()
	shipping := ShippingFor(subtotal)
	return Summary{
		TotalItems: s.store.TotalItems(),
		Subtotal:   subtotal,
		Shipping:   shipping,
		Total:      subtotal + shipping,
	}
}

func (s CheckoutService) Checkout(c context.Context, customer Customer) (Order, error) {
	c, span := tracer.Start(c, "CheckoutService Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService Checkout").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating customer").Logger()
	logger.Info().Msg("validating customer")
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.StructCtx(c, customer)
	if err != nil {
		err = fmt.Errorf("failed validating customer with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Order{}, err
	}
	logger.Info().Msg("validated customer")

	logger = logger.With().Str(log.KeyProcess, "building order").Logger()
	logger.Info().Msg("building order from cart")
	lines := s.store.Items()
	if len(lines) == 0 {
		inErrors.HandleError(inErrors.ErrEmptyCart, span)
		logger.Error().Err(inErrors.ErrEmptyCart).Msg(inErrors.ErrEmptyCart.Error())
		return Order{}, inErrors.ErrEmptyCart
	}

	items := make([]Item, len(lines))
	for i, line := range lines {
		items[i] = Item{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Image:     line.Product.Image,
			Size:      line.Size,
			Quantity:  line.Quantity,
			Price:     line.Product.Price,
		}
	}
	summary := s.Summary()
	param := CreateOrder{
		CustomerName: customer.FirstName + " " + customer.LastName,
		Email:        customer.Email,
		Phone:        customer.Phone,
		Address:      customer.Address,
		City:         customer.City,
		Items:        items,
		Subtotal:     summary.Subtotal,
		Shipping:     summary.Shipping,
		Total:        summary.Total,
	}
	span.SetAttributes(
		attribute.Int("order.items", len(items)),
		attribute.Int64("order.total", param.Total),
	)
	logger.Info().
		Int(log.KeyCartLines, len(items)).
		Int64("total", param.Total).
		Msg("built order from cart")

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	c = logger.WithContext(c)
	placed, err := s.orders.CreateOrder(c, param)
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Order{}, err
	}
	logger = logger.With().Str(log.KeyOrderID, placed.ID).Logger()
	logger.Info().Msg("created order")

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart after successful order")
	s.store.Clear(c)
	logger.Info().Msg("cleared cart")

	return placed, nil
}
