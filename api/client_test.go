package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scentlane/storefront/catalog"
	inErrors "github.com/scentlane/storefront/internal/errors"
	"github.com/scentlane/storefront/order"
)

func testContext() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

// newFakeApi stands in for the storefront REST collaborator. Admin routes
// demand the bearer token, public routes must work without one.
func newFakeApi(t *testing.T, token string) *Client {
	t.Helper()
	router := mux.NewRouter()

	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
	router.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		products := []catalog.Product{{ID: "1", Slug: "noir-amber", Name: "Noir Amber"}}
		if search := r.URL.Query().Get("search"); search != "" {
			products = []catalog.Product{{ID: "2", Slug: "desert-oud", Name: search}}
		}
		json.NewEncoder(w).Encode(products)
	}).Methods(http.MethodGet)
	router.HandleFunc("/products/slug/{slug}", func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]
		if slug != "noir-amber" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "product not found"})
			return
		}
		json.NewEncoder(w).Encode(catalog.Product{ID: "1", Slug: slug, Price: 3899})
	}).Methods(http.MethodGet)
	router.HandleFunc("/products", admin(func(w http.ResponseWriter, r *http.Request) {
		param := catalog.Product{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&param))
		param.ID = "created"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(param)
	})).Methods(http.MethodPost)
	router.HandleFunc("/products/{id}", admin(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).Methods(http.MethodDelete)
	router.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		param := order.CreateOrder{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&param))
		assert.Empty(t, r.Header.Get("Authorization"), "public checkout must not send credentials")
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(order.Order{
			ID:          "ord-1",
			OrderNumber: "SO-1001",
			Status:      order.StatusPending,
			Total:       param.Total,
		})
	}).Methods(http.MethodPost)
	router.HandleFunc("/orders", admin(func(w http.ResponseWriter, r *http.Request) {
		orders := []order.Order{{ID: "ord-1", Status: order.StatusPending}}
		if status := r.URL.Query().Get("status"); status != "" {
			orders = []order.Order{{ID: "ord-2", Status: order.Status(status)}}
		}
		json.NewEncoder(w).Encode(orders)
	})).Methods(http.MethodGet)
	router.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		creds := map[string]string{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds["password"] != "correct horse" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(Login{
			AccessToken: token,
			Admin:       Admin{ID: "1", Username: creds["username"]},
		})
	}).Methods(http.MethodPost)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return NewClient(server.URL, WithTokenProvider(func() string { return token }))
}

func TestGetProducts(t *testing.T) {
	cl := newFakeApi(t, "sekrit")

	products, err := cl.GetProducts(testContext(), "")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "noir-amber", products[0].Slug)
}

func TestGetProductsPassesSearchQuery(t *testing.T) {
	cl := newFakeApi(t, "sekrit")

	products, err := cl.GetProducts(testContext(), "oud blend")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "oud blend", products[0].Name)
}

func TestGetProductBySlugNotFound(t *testing.T) {
	cl := newFakeApi(t, "sekrit")

	_, err := cl.GetProductBySlug(testContext(), "no-such-slug")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product not found")
}

func TestCreateProductSendsBearerToken(t *testing.T) {
	cl := newFakeApi(t, "sekrit")

	created, err := cl.CreateProduct(testContext(), catalog.Product{Name: "Velvet Iris"})
	require.NoError(t, err)
	assert.Equal(t, "created", created.ID)
	assert.Equal(t, "Velvet Iris", created.Name)
}

func TestAdminCallWithWrongTokenIsUnauthorized(t *testing.T) {
	cl := newFakeApi(t, "sekrit")
	wrong := NewClient(cl.baseUrl, WithTokenProvider(func() string { return "forged" }))

	_, err := wrong.CreateProduct(testContext(), catalog.Product{Name: "Velvet Iris"})
	assert.ErrorIs(t, err, inErrors.ErrUnauthorized)
}

func TestDeleteProductToleratesNoContent(t *testing.T) {
	cl := newFakeApi(t, "sekrit")

	assert.NoError(t, cl.DeleteProduct(testContext(), "1"))
}

func TestCreateOrderIsPublic(t *testing.T) {
	cl := newFakeApi(t, "sekrit")

	placed, err := cl.CreateOrder(testContext(), order.CreateOrder{
		CustomerName: "Ayesha Khan",
		Email:        "ayesha@example.com",
		Phone:        "+92 300 1234567",
		Address:      "12 Mall Road",
		City:         "Lahore",
		Items:        []order.Item{{ProductID: "1", Size: 50, Quantity: 1, Price: 3899}},
		Subtotal:     3899,
		Shipping:     200,
		Total:        4099,
	})
	require.NoError(t, err)
	assert.Equal(t, "SO-1001", placed.OrderNumber)
	assert.Equal(t, order.StatusPending, placed.Status)
	assert.Equal(t, int64(4099), placed.Total)
}

func TestGetOrdersFiltersByStatus(t *testing.T) {
	cl := newFakeApi(t, "sekrit")

	orders, err := cl.GetOrders(testContext(), order.StatusShipped)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.StatusShipped, orders[0].Status)
}

func TestLogin(t *testing.T) {
	cl := newFakeApi(t, "sekrit")

	result, err := cl.Login(testContext(), "admin", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "sekrit", result.AccessToken)
	assert.Equal(t, "admin", result.Admin.Username)

	_, err = cl.Login(testContext(), "admin", "wrong")
	assert.ErrorIs(t, err, inErrors.ErrUnauthorized)
}
