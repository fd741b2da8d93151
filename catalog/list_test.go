package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string, opts ...func(*Product)) Product {
	p := Product{
		ID:       id,
		Slug:     "product-" + id,
		Name:     "Product " + id,
		Price:    3000,
		Sizes:    []int{50, 100},
		Category: CategoryMen,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func bestSeller(p *Product) { p.IsBestSeller = true }

func TestApplyCreatedIgnoresDuplicateID(t *testing.T) {
	list := NewProductList(nil)

	list.ApplyCreated(product("a"))
	list.ApplyCreated(product("a"))

	assert.Equal(t, 1, list.Len())
}

func TestApplyUpdatedReplacesInPlace(t *testing.T) {
	list := NewProductList([]Product{product("a"), product("b"), product("c")})

	updated := product("b")
	updated.Price = 4500
	list.ApplyUpdated(updated)

	products := list.Products()
	require.Len(t, products, 3)
	assert.Equal(t, "b", products[1].ID)
	assert.Equal(t, int64(4500), products[1].Price)
}

func TestApplyUpdatedUnknownIDUpserts(t *testing.T) {
	list := NewProductList([]Product{product("a")})

	// A subscriber that joined mid-stream may see an update before the
	// create it missed; that must not be an error.
	list.ApplyUpdated(product("z"))

	products := list.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "z", products[1].ID)
}

func TestApplyDeleted(t *testing.T) {
	list := NewProductList([]Product{product("a"), product("b")})

	list.ApplyDeleted("a")
	products := list.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "b", products[0].ID)

	// deleting again is a no-op
	list.ApplyDeleted("a")
	assert.Equal(t, 1, list.Len())
}

func TestReplaceSwapsCollection(t *testing.T) {
	list := NewProductList([]Product{product("a")})

	list.Replace([]Product{product("x"), product("y")})

	products := list.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "x", products[0].ID)
}

func TestProductsReturnsCopy(t *testing.T) {
	list := NewProductList([]Product{product("a")})

	products := list.Products()
	products[0].ID = "mutated"

	assert.Equal(t, "a", list.Products()[0].ID)
}

func TestCategoryListEventAlgebra(t *testing.T) {
	list := NewCategoryList([]CategoryEntry{{ID: "1", Slug: "men", Label: "Men"}})

	list.ApplyCreated(CategoryEntry{ID: "1", Slug: "men", Label: "Men"})
	assert.Len(t, list.Entries(), 1)

	list.ApplyUpdated(CategoryEntry{ID: "2", Slug: "women", Label: "Women"})
	assert.Len(t, list.Entries(), 2)

	list.ApplyUpdated(CategoryEntry{ID: "1", Slug: "men", Label: "For Him"})
	assert.Equal(t, "For Him", list.Entries()[0].Label)

	list.ApplyDeleted("2")
	entries := list.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].ID)
}
