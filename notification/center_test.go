package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scentlane/storefront/catalog"
	"github.com/scentlane/storefront/order"
	"github.com/scentlane/storefront/realtime"
)

func mustNotification(t *testing.T, event realtime.Event, data any) Notification {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	ntf, err := notificationFrom(event, payload)
	require.NoError(t, err)
	return ntf
}

func TestNotificationFromNewOrder(t *testing.T) {
	ntf := mustNotification(t, realtime.EventNewOrder, order.Order{
		OrderNumber:  "SO-1001",
		CustomerName: "Ayesha Khan",
	})

	assert.Equal(t, TypeOrder, ntf.Type)
	assert.Equal(t, "New Order", ntf.Title)
	assert.Equal(t, "Order SO-1001 from Ayesha Khan", ntf.Message)
	assert.NotEmpty(t, ntf.ID)
}

func TestNotificationFromStatusChange(t *testing.T) {
	ntf := mustNotification(t, realtime.EventOrderStatusChanged, order.StatusChange{
		OrderID: "ord-1",
		Status:  order.StatusShipped,
		Order:   order.Order{OrderNumber: "SO-1001"},
	})

	assert.Equal(t, TypeOrder, ntf.Type)
	assert.Equal(t, "Order SO-1001 is now shipped", ntf.Message)
}

func TestNotificationFromProductEvents(t *testing.T) {
	created := mustNotification(t, realtime.EventProductCreated, catalog.Product{Name: "Noir Amber"})
	assert.Equal(t, TypeProduct, created.Type)
	assert.Equal(t, "New product: Noir Amber", created.Message)

	updated := mustNotification(t, realtime.EventProductUpdated, catalog.Product{Name: "Noir Amber"})
	assert.Equal(t, "Noir Amber has been updated", updated.Message)

	deleted := mustNotification(t, realtime.EventProductDeleted, map[string]string{"productId": "1"})
	assert.Equal(t, "A product has been deleted", deleted.Message)
}

func TestNotificationFromCategoryEvents(t *testing.T) {
	created := mustNotification(t, realtime.EventCategoryCreated, catalog.CategoryEntry{Label: "Attars"})
	assert.Equal(t, TypeCategory, created.Type)
	assert.Equal(t, "New category: Attars", created.Message)

	updated := mustNotification(t, realtime.EventCategoryUpdated, catalog.CategoryEntry{Label: "Attars"})
	assert.Equal(t, "Attars has been updated", updated.Message)
}

func TestNotificationFromUnknownEvent(t *testing.T) {
	_, err := notificationFrom(realtime.Event("made-up"), json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestPushKeepsNewestFirst(t *testing.T) {
	center := NewCenter(DefaultCapacity)

	center.push(Notification{ID: "old"})
	center.push(Notification{ID: "new"})

	items := center.Notifications()
	require.Len(t, items, 2)
	assert.Equal(t, "new", items[0].ID)
	assert.Equal(t, "old", items[1].ID)
}

func TestPushEvictsBeyondCapacity(t *testing.T) {
	center := NewCenter(3)

	for i := 0; i < 5; i++ {
		center.push(Notification{ID: fmt.Sprintf("n%d", i)})
	}

	items := center.Notifications()
	require.Len(t, items, 3)
	assert.Equal(t, "n4", items[0].ID)
	assert.Equal(t, "n2", items[2].ID, "the oldest notifications must be evicted")
}

func TestUnreadCount(t *testing.T) {
	center := NewCenter(2)

	center.push(Notification{ID: "a"})
	center.push(Notification{ID: "b"})
	center.push(Notification{ID: "c"})

	// eviction drops "a" from the feed but it was still never read
	assert.Equal(t, 2, center.Len())
	assert.Equal(t, 3, center.Unread())

	center.MarkAllRead()
	assert.Equal(t, 0, center.Unread())

	center.push(Notification{ID: "d"})
	assert.Equal(t, 1, center.Unread())

	center.Clear()
	assert.Equal(t, 0, center.Unread())
}

func TestRemoveAndClear(t *testing.T) {
	center := NewCenter(DefaultCapacity)
	center.push(Notification{ID: "a"})
	center.push(Notification{ID: "b"})

	center.Remove("a")
	require.Equal(t, 1, center.Len())
	assert.Equal(t, "b", center.Notifications()[0].ID)

	center.Remove("missing")
	assert.Equal(t, 1, center.Len())

	center.Clear()
	assert.Equal(t, 0, center.Len())
}

func TestAttachCollectsAdminEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	conns := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(server.Close)

	cl := realtime.NewClient("ws" + strings.TrimPrefix(server.URL, "http"))
	center := NewCenter(DefaultCapacity)
	detach := center.Attach(cl)
	t.Cleanup(detach)

	c, cancel := context.WithCancel(zerolog.Nop().WithContext(context.Background()))
	t.Cleanup(cancel)
	go func() { _ = cl.Run(c) }()

	var conn *websocket.Conn
	select {
	case conn = <-conns:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for websocket connection")
	}
	defer conn.Close()

	placed, err := json.Marshal(order.Order{OrderNumber: "SO-1001", CustomerName: "Ayesha Khan"})
	require.NoError(t, err)
	err = conn.WriteJSON(map[string]any{
		"event": realtime.EventNewOrder,
		"data":  json.RawMessage(placed),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return center.Len() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Order SO-1001 from Ayesha Khan", center.Notifications()[0].Message)
}
