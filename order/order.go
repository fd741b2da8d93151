package order

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Item is one ordered line, denormalized from the cart snapshot so the order
// keeps the price the customer saw.
type Item struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Size      int    `json:"size"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// Customer holds the shipping form fields collected at checkout.
type Customer struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Phone     string `json:"phone"     validate:"required"`
	Address   string `json:"address"   validate:"required"`
	City      string `json:"city"      validate:"required"`
}

// CreateOrder is the payload posted to the public orders endpoint.
type CreateOrder struct {
	CustomerName string `json:"customerName" validate:"required"`
	Email        string `json:"email"        validate:"required,email"`
	Phone        string `json:"phone"        validate:"required"`
	Address      string `json:"address"      validate:"required"`
	City         string `json:"city"         validate:"required"`
	Items        []Item `json:"items"        validate:"required,min=1,dive"`
	Subtotal     int64  `json:"subtotal"`
	Shipping     int64  `json:"shipping"`
	Total        int64  `json:"total"`
}

// Order is the resource returned by the orders API and carried on the admin
// event channel.
type Order struct {
	ID           string    `json:"id"`
	OrderNumber  string    `json:"orderNumber"`
	CustomerName string    `json:"customerName"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	City         string    `json:"city,omitempty"`
	Status       Status    `json:"status"`
	Items        []Item    `json:"items,omitempty"`
	Subtotal     int64     `json:"subtotal"`
	Shipping     int64     `json:"shipping"`
	Total        int64     `json:"total"`
	CreatedAt    time.Time `json:"createdAt"`
}

// StatusChange is the payload of the order-status-changed admin event.
type StatusChange struct {
	OrderID string `json:"orderId"`
	Status  Status `json:"status"`
	Order   Order  `json:"order"`
}
