package catalog

import (
	"sync"
)

// ProductList is a locally cached product collection kept consistent with
// catalog events. Events may arrive out of order relative to the initial
// fetch, so creates of a known id are ignored and updates of an unknown id
// are treated as an upsert.
type ProductList struct {
	mu       sync.Mutex
	products []Product
}

func NewProductList(initial []Product) *ProductList {
	l := &ProductList{}
	l.Replace(initial)
	return l
}

// Replace swaps the whole collection, used after an authoritative re-fetch.
func (l *ProductList) Replace(products []Product) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.products = make([]Product, len(products))
	copy(l.products, products)
}

// ApplyCreated appends the product unless one with the same id is already
// present, in which case the event is a duplicate and is dropped.
func (l *ProductList) ApplyCreated(p Product) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.indexOf(p.ID) >= 0 {
		return
	}
	l.products = append(l.products, p)
}

// ApplyUpdated replaces the product in place preserving its position. An
// update for an unknown id appends instead, covering subscribers that joined
// mid-stream.
func (l *ProductList) ApplyUpdated(p Product) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(p.ID); i >= 0 {
		l.products[i] = p
		return
	}
	l.products = append(l.products, p)
}

// ApplyDeleted removes the product if present, no-op otherwise.
func (l *ProductList) ApplyDeleted(productID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(productID); i >= 0 {
		l.products = append(l.products[:i], l.products[i+1:]...)
	}
}

func (l *ProductList) Products() []Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	products := make([]Product, len(l.products))
	copy(products, l.products)
	return products
}

func (l *ProductList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.products)
}

func (l *ProductList) indexOf(productID string) int {
	for i, p := range l.products {
		if p.ID == productID {
			return i
		}
	}
	return -1
}

// CategoryList mirrors ProductList for category resources.
type CategoryList struct {
	mu      sync.Mutex
	entries []CategoryEntry
}

func NewCategoryList(initial []CategoryEntry) *CategoryList {
	l := &CategoryList{}
	l.Replace(initial)
	return l
}

func (l *CategoryList) Replace(entries []CategoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make([]CategoryEntry, len(entries))
	copy(l.entries, entries)
}

func (l *CategoryList) ApplyCreated(e CategoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.indexOf(e.ID) >= 0 {
		return
	}
	l.entries = append(l.entries, e)
}

func (l *CategoryList) ApplyUpdated(e CategoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(e.ID); i >= 0 {
		l.entries[i] = e
		return
	}
	l.entries = append(l.entries, e)
}

func (l *CategoryList) ApplyDeleted(categoryID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(categoryID); i >= 0 {
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
	}
}

func (l *CategoryList) Entries() []CategoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make([]CategoryEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

func (l *CategoryList) indexOf(categoryID string) int {
	for i, e := range l.entries {
		if e.ID == categoryID {
			return i
		}
	}
	return -1
}
