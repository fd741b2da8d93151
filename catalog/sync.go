package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/scentlane/storefront/internal/log"
	"github.com/scentlane/storefront/realtime"
)

// ProductTarget is any local product collection that reconciles catalog
// events. Both ProductList and View satisfy it.
type ProductTarget interface {
	ApplyCreated(p Product)
	ApplyUpdated(p Product)
	ApplyDeleted(productID string)
}

type productDeleted struct {
	ProductID string `json:"productId"`
}

type categoryDeleted struct {
	CategoryID string `json:"categoryId"`
}

// BindProducts subscribes the target to the product event stream and returns
// a function deregistering exactly those handlers. Callers must invoke it
// when the owning view goes away; a stale handler mutating a dead view is a
// correctness bug, not just a leak.
func BindProducts(cl *realtime.Client, target ProductTarget) (unbind func()) {
	created := cl.On(realtime.EventProductCreated, func(c context.Context, data json.RawMessage) {
		p, err := decodeProduct(c, realtime.EventProductCreated, data)
		if err != nil {
			return
		}
		target.ApplyCreated(p)
	})
	updated := cl.On(realtime.EventProductUpdated, func(c context.Context, data json.RawMessage) {
		p, err := decodeProduct(c, realtime.EventProductUpdated, data)
		if err != nil {
			return
		}
		target.ApplyUpdated(p)
	})
	deleted := cl.On(realtime.EventProductDeleted, func(c context.Context, data json.RawMessage) {
		payload := productDeleted{}
		err := json.Unmarshal(data, &payload)
		if err != nil {
			logDecodeError(c, realtime.EventProductDeleted, err)
			return
		}
		target.ApplyDeleted(payload.ProductID)
	})

	return func() {
		created()
		updated()
		deleted()
	}
}

// BindCategories mirrors BindProducts for the category stream.
func BindCategories(cl *realtime.Client, list *CategoryList) (unbind func()) {
	created := cl.On(realtime.EventCategoryCreated, func(c context.Context, data json.RawMessage) {
		e, err := decodeCategory(c, realtime.EventCategoryCreated, data)
		if err != nil {
			return
		}
		list.ApplyCreated(e)
	})
	updated := cl.On(realtime.EventCategoryUpdated, func(c context.Context, data json.RawMessage) {
		e, err := decodeCategory(c, realtime.EventCategoryUpdated, data)
		if err != nil {
			return
		}
		list.ApplyUpdated(e)
	})
	deleted := cl.On(realtime.EventCategoryDeleted, func(c context.Context, data json.RawMessage) {
		payload := categoryDeleted{}
		err := json.Unmarshal(data, &payload)
		if err != nil {
			logDecodeError(c, realtime.EventCategoryDeleted, err)
			return
		}
		list.ApplyDeleted(payload.CategoryID)
	})

	return func() {
		created()
		updated()
		deleted()
	}
}

func decodeProduct(c context.Context, event realtime.Event, data json.RawMessage) (Product, error) {
	p := Product{}
	err := json.Unmarshal(data, &p)
	if err != nil {
		logDecodeError(c, event, err)
		return Product{}, err
	}
	return p, nil
}

func decodeCategory(c context.Context, event realtime.Event, data json.RawMessage) (CategoryEntry, error) {
	e := CategoryEntry{}
	err := json.Unmarshal(data, &e)
	if err != nil {
		logDecodeError(c, event, err)
		return CategoryEntry{}, err
	}
	return e, nil
}

func logDecodeError(c context.Context, event realtime.Event, err error) {
	err = fmt.Errorf("failed decoding event payload with error=%w", err)
	zerolog.Ctx(c).
		Warn().
		Err(err).
		Str(log.KeyTag, "catalog decode").
		Str(log.KeyEvent, string(event)).
		Msg(err.Error())
}
