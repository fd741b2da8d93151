package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/scentlane/storefront/catalog"
	"github.com/scentlane/storefront/internal/log"
	"github.com/scentlane/storefront/order"
	"github.com/scentlane/storefront/realtime"
)

type Type string

const (
	TypeOrder    Type = "order"
	TypeProduct  Type = "product"
	TypeCategory Type = "category"
)

// DefaultCapacity bounds the admin notification feed so a long-lived session
// cannot grow it without limit.
const DefaultCapacity = 100

type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Center collects admin-channel events into a bounded, newest-first feed.
// When the capacity is exceeded the oldest notifications are evicted.
type Center struct {
	mu       sync.Mutex
	capacity int
	items    []Notification
	unread   int
}

func NewCenter(capacity int) *Center {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Center{capacity: capacity}
}

// Attach subscribes the center to every admin event on the client. The
// returned detach function removes exactly those subscriptions; call it when
// the owning session ends to avoid handler leaks.
func (n *Center) Attach(cl *realtime.Client) (detach func()) {
	events := []realtime.Event{
		realtime.EventNewOrder,
		realtime.EventOrderStatusChanged,
		realtime.EventProductCreated,
		realtime.EventProductUpdated,
		realtime.EventProductDeleted,
		realtime.EventCategoryCreated,
		realtime.EventCategoryUpdated,
		realtime.EventCategoryDeleted,
	}
	unsubs := make([]func(), 0, len(events))
	for _, event := range events {
		unsubs = append(unsubs, cl.On(event, func(c context.Context, data json.RawMessage) {
			n.apply(c, event, data)
		}))
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

func (n *Center) apply(c context.Context, event realtime.Event, data json.RawMessage) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "NotificationCenter apply").
		Str(log.KeyEvent, string(event)).
		Logger()

	ntf, err := notificationFrom(event, data)
	if err != nil {
		err = fmt.Errorf("failed building notification with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
		return
	}
	n.push(ntf)
	logger.Debug().Str(log.KeyNotification, ntf.ID).Msg("pushed notification")
}

func notificationFrom(event realtime.Event, data json.RawMessage) (Notification, error) {
	ntf := Notification{ID: uuid.NewString(), Timestamp: time.Now()}

	switch event {
	case realtime.EventNewOrder:
		placed := order.Order{}
		if err := json.Unmarshal(data, &placed); err != nil {
			return Notification{}, err
		}
		ntf.Type = TypeOrder
		ntf.Title = "New Order"
		ntf.Message = fmt.Sprintf("Order %s from %s", placed.OrderNumber, placed.CustomerName)
	case realtime.EventOrderStatusChanged:
		change := order.StatusChange{}
		if err := json.Unmarshal(data, &change); err != nil {
			return Notification{}, err
		}
		ntf.Type = TypeOrder
		ntf.Title = "Order Status Updated"
		ntf.Message = fmt.Sprintf(
			"Order %s is now %s",
			change.Order.OrderNumber,
			change.Status,
		)
	case realtime.EventProductCreated, realtime.EventProductUpdated:
		product := catalog.Product{}
		if err := json.Unmarshal(data, &product); err != nil {
			return Notification{}, err
		}
		ntf.Type = TypeProduct
		if event == realtime.EventProductCreated {
			ntf.Title = "Product Created"
			ntf.Message = fmt.Sprintf("New product: %s", product.Name)
		} else {
			ntf.Title = "Product Updated"
			ntf.Message = fmt.Sprintf("%s has been updated", product.Name)
		}
	case realtime.EventProductDeleted:
		ntf.Type = TypeProduct
		ntf.Title = "Product Deleted"
		ntf.Message = "A product has been deleted"
	case realtime.EventCategoryCreated, realtime.EventCategoryUpdated:
		entry := catalog.CategoryEntry{}
		if err := json.Unmarshal(data, &entry); err != nil {
			return Notification{}, err
		}
		ntf.Type = TypeCategory
		if event == realtime.EventCategoryCreated {
			ntf.Title = "Category Created"
			ntf.Message = fmt.Sprintf("New category: %s", entry.Label)
		} else {
			ntf.Title = "Category Updated"
			ntf.Message = fmt.Sprintf("%s has been updated", entry.Label)
		}
	case realtime.EventCategoryDeleted:
		ntf.Type = TypeCategory
		ntf.Title = "Category Deleted"
		ntf.Message = "A category has been deleted"
	default:
		return Notification{}, fmt.Errorf("unknown event=%s", event)
	}
	return ntf, nil
}

// push prepends so the feed reads newest first, evicting beyond capacity.
func (n *Center) push(ntf Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append([]Notification{ntf}, n.items...)
	if len(n.items) > n.capacity {
		n.items = n.items[:n.capacity]
	}
	n.unread++
}

// Unread counts notifications pushed since the last MarkAllRead. Eviction
// does not decrement it; the badge tracks what the admin has not looked at,
// not what is still in the feed.
func (n *Center) Unread() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.unread
}

func (n *Center) MarkAllRead() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.unread = 0
}

func (n *Center) Notifications() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	items := make([]Notification, len(n.items))
	copy(items, n.items)
	return items
}

func (n *Center) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}

func (n *Center) Remove(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, ntf := range n.items {
		if ntf.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return
		}
	}
}

func (n *Center) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = nil
	n.unread = 0
}
