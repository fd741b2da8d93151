package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewViewFiltersInitial(t *testing.T) {
	view := NewView(BestSellers, []Product{
		product("a", bestSeller),
		product("b"),
		product("c", bestSeller),
	})

	products := view.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "a", products[0].ID)
	assert.Equal(t, "c", products[1].ID)
}

func TestViewApplyCreatedRespectsPredicate(t *testing.T) {
	view := NewView(BestSellers, nil)

	view.ApplyCreated(product("a", bestSeller))
	view.ApplyCreated(product("b"))

	require.Equal(t, 1, view.Len())
	assert.Equal(t, "a", view.Products()[0].ID)
}

func TestViewApplyUpdatedEvictsWhenPredicateFails(t *testing.T) {
	view := NewView(BestSellers, []Product{product("a", bestSeller)})

	// The product still exists globally, it just left this view's predicate.
	demoted := product("a")
	view.ApplyUpdated(demoted)

	assert.Equal(t, 0, view.Len())
}

func TestViewApplyUpdatedAdmitsWhenPredicateStartsMatching(t *testing.T) {
	view := NewView(BestSellers, []Product{product("a", bestSeller)})

	view.ApplyUpdated(product("b", bestSeller))

	products := view.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "b", products[1].ID)
}

func TestViewApplyUpdatedReplacesInPlace(t *testing.T) {
	view := NewView(BestSellers, []Product{
		product("a", bestSeller),
		product("b", bestSeller),
	})

	updated := product("a", bestSeller)
	updated.Price = 5299
	view.ApplyUpdated(updated)

	products := view.Products()
	require.Len(t, products, 2)
	assert.Equal(t, int64(5299), products[0].Price)
}

func TestViewApplyDeleted(t *testing.T) {
	view := NewView(BestSellers, []Product{product("a", bestSeller)})

	view.ApplyDeleted("a")
	assert.Equal(t, 0, view.Len())

	view.ApplyDeleted("a")
	assert.Equal(t, 0, view.Len())
}

func TestInCategoryPredicate(t *testing.T) {
	women := product("w")
	women.Category = CategoryWomen

	view := NewView(InCategory(CategoryWomen), []Product{product("m"), women})

	products := view.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "w", products[0].ID)
}
