package catalog

import (
	"sync"
)

// Predicate decides whether a product belongs to a filtered view.
type Predicate func(Product) bool

// BestSellers matches the storefront's best-seller widgets.
func BestSellers(p Product) bool { return p.IsBestSeller }

// NewArrivals matches the new-arrival rail.
func NewArrivals(p Product) bool { return p.IsNewArrival }

// InCategory builds a predicate for one category page.
func InCategory(category Category) Predicate {
	return func(p Product) bool { return p.Category == category }
}

// View is a category-scoped product collection: only products matching the
// predicate are retained, and an update that moves a product out of the
// predicate evicts it from the view even though it still exists globally.
type View struct {
	mu        sync.Mutex
	predicate Predicate
	products  []Product
}

func NewView(predicate Predicate, initial []Product) *View {
	v := &View{predicate: predicate}
	v.Replace(initial)
	return v
}

// Replace swaps the backing collection from an authoritative fetch,
// filtering it through the view's predicate.
func (v *View) Replace(products []Product) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.products = v.products[:0]
	for _, p := range products {
		if v.predicate(p) {
			v.products = append(v.products, p)
		}
	}
}

func (v *View) ApplyCreated(p Product) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.predicate(p) || v.indexOf(p.ID) >= 0 {
		return
	}
	v.products = append(v.products, p)
}

func (v *View) ApplyUpdated(p Product) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.indexOf(p.ID)
	if !v.predicate(p) {
		if i >= 0 {
			v.products = append(v.products[:i], v.products[i+1:]...)
		}
		return
	}
	if i >= 0 {
		v.products[i] = p
		return
	}
	v.products = append(v.products, p)
}

func (v *View) ApplyDeleted(productID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i := v.indexOf(productID); i >= 0 {
		v.products = append(v.products[:i], v.products[i+1:]...)
	}
}

func (v *View) Products() []Product {
	v.mu.Lock()
	defer v.mu.Unlock()
	products := make([]Product, len(v.products))
	copy(products, v.products)
	return products
}

func (v *View) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.products)
}

func (v *View) indexOf(productID string) int {
	for i, p := range v.products {
		if p.ID == productID {
			return i
		}
	}
	return -1
}
