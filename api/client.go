package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/scentlane/storefront/catalog"
	inErrors "github.com/scentlane/storefront/internal/errors"
	"github.com/scentlane/storefront/internal/log"
	"github.com/scentlane/storefront/order"
)

var tracer = otel.Tracer("storefront/api")

const headerRequestID = "X-Request-Id"

// TokenProvider supplies the current bearer token for admin calls. The token
// is an opaque string managed by a layer above this client.
type TokenProvider func() string

// Client talks to the storefront REST collaborator. A 401 response surfaces
// as ErrUnauthorized and is never retried here; redirecting to login is the
// caller's concern.
type Client struct {
	baseUrl string
	token   TokenProvider
	client  *http.Client
}

type Option func(*Client)

func WithTokenProvider(provider TokenProvider) Option {
	return func(cl *Client) { cl.token = provider }
}

func WithHttpClient(client *http.Client) Option {
	return func(cl *Client) { cl.client = client }
}

func NewClient(baseUrl string, opts ...Option) *Client {
	cl := &Client{
		baseUrl: strings.TrimRight(baseUrl, "/"),
		token:   func() string { return "" },
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// do performs one request. Admin calls attach the bearer token; public
// endpoints send no credentials. Empty and 204 responses are tolerated.
func (cl *Client) do(
	c context.Context,
	method string,
	path string,
	requireAuth bool,
	body any,
	out any,
) error {
	c, span := tracer.Start(c, fmt.Sprintf("ApiClient %s %s", method, path))
	defer span.End()

	requestId := log.RequestIDFromContext(c)
	if requestId == "" {
		requestId = uuid.NewString()
	}

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ApiClient do").
		Str(log.KeyRequestID, requestId).
		Str(log.KeyRequestMethod, method).
		Str(log.KeyRequestURL, cl.baseUrl+path).
		Logger()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			err = fmt.Errorf("failed marshaling request body with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(c, method, cl.baseUrl+path, reader)
	if err != nil {
		err = fmt.Errorf("failed creating request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerRequestID, requestId)
	if requireAuth {
		if token := cl.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logger.Debug().Msg("sending request")
	resp, err := cl.client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed sending request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		err = fmt.Errorf(
			"%s %s returned status=%d with error=%w",
			method,
			path,
			resp.StatusCode,
			inErrors.ErrUnauthorized,
		)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err = fmt.Errorf(
			"%s %s returned status=%d with message=%s",
			method,
			path,
			resp.StatusCode,
			apiMessage(resp.Body),
		)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed reading response body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	err = json.Unmarshal(data, out)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling response body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}

func apiMessage(body io.Reader) string {
	payload := struct {
		Message string `json:"message"`
	}{}
	err := json.NewDecoder(body).Decode(&payload)
	if err != nil || payload.Message == "" {
		return "unknown"
	}
	return payload.Message
}

// Products

func (cl *Client) GetProducts(c context.Context, search string) ([]catalog.Product, error) {
	path := "/products"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	products := []catalog.Product{}
	err := cl.do(c, http.MethodGet, path, false, nil, &products)
	return products, err
}

func (cl *Client) GetProductBySlug(c context.Context, slug string) (catalog.Product, error) {
	product := catalog.Product{}
	err := cl.do(c, http.MethodGet, "/products/slug/"+url.PathEscape(slug), false, nil, &product)
	return product, err
}

func (cl *Client) GetProductsByCategory(
	c context.Context,
	category catalog.Category,
) ([]catalog.Product, error) {
	products := []catalog.Product{}
	path := "/products/category/" + url.PathEscape(string(category))
	err := cl.do(c, http.MethodGet, path, false, nil, &products)
	return products, err
}

func (cl *Client) CreateProduct(
	c context.Context,
	param catalog.Product,
) (catalog.Product, error) {
	product := catalog.Product{}
	err := cl.do(c, http.MethodPost, "/products", true, param, &product)
	return product, err
}

func (cl *Client) UpdateProduct(
	c context.Context,
	id string,
	param catalog.Product,
) (catalog.Product, error) {
	product := catalog.Product{}
	err := cl.do(c, http.MethodPatch, "/products/"+url.PathEscape(id), true, param, &product)
	return product, err
}

func (cl *Client) DeleteProduct(c context.Context, id string) error {
	return cl.do(c, http.MethodDelete, "/products/"+url.PathEscape(id), true, nil, nil)
}

// Categories

func (cl *Client) GetCategories(c context.Context) ([]catalog.CategoryEntry, error) {
	entries := []catalog.CategoryEntry{}
	err := cl.do(c, http.MethodGet, "/categories", false, nil, &entries)
	return entries, err
}

func (cl *Client) GetCategoryStats(c context.Context, id string) (CategoryStats, error) {
	stats := CategoryStats{}
	path := "/categories/" + url.PathEscape(id) + "/stats"
	err := cl.do(c, http.MethodGet, path, true, nil, &stats)
	return stats, err
}

func (cl *Client) CreateCategory(
	c context.Context,
	param catalog.CategoryEntry,
) (catalog.CategoryEntry, error) {
	entry := catalog.CategoryEntry{}
	err := cl.do(c, http.MethodPost, "/categories", true, param, &entry)
	return entry, err
}

func (cl *Client) UpdateCategory(
	c context.Context,
	id string,
	param catalog.CategoryEntry,
) (catalog.CategoryEntry, error) {
	entry := catalog.CategoryEntry{}
	err := cl.do(c, http.MethodPatch, "/categories/"+url.PathEscape(id), true, param, &entry)
	return entry, err
}

func (cl *Client) DeleteCategory(c context.Context, id string) error {
	return cl.do(c, http.MethodDelete, "/categories/"+url.PathEscape(id), true, nil, nil)
}

// Orders

func (cl *Client) GetOrders(c context.Context, status order.Status) ([]order.Order, error) {
	path := "/orders"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	orders := []order.Order{}
	err := cl.do(c, http.MethodGet, path, true, nil, &orders)
	return orders, err
}

// CreateOrder posts to the public orders endpoint without credentials.
func (cl *Client) CreateOrder(
	c context.Context,
	param order.CreateOrder,
) (order.Order, error) {
	placed := order.Order{}
	err := cl.do(c, http.MethodPost, "/orders", false, param, &placed)
	return placed, err
}

func (cl *Client) UpdateOrderStatus(
	c context.Context,
	id string,
	status order.Status,
) (order.Order, error) {
	updated := order.Order{}
	path := "/orders/" + url.PathEscape(id) + "/status"
	body := map[string]order.Status{"status": status}
	err := cl.do(c, http.MethodPatch, path, true, body, &updated)
	return updated, err
}

func (cl *Client) DeleteOrder(c context.Context, id string) error {
	return cl.do(c, http.MethodDelete, "/orders/"+url.PathEscape(id), true, nil, nil)
}

// Analytics

func (cl *Client) GetDashboardStats(c context.Context) (DashboardStats, error) {
	stats := DashboardStats{}
	err := cl.do(c, http.MethodGet, "/analytics/dashboard", true, nil, &stats)
	return stats, err
}

func (cl *Client) GetSalesReport(
	c context.Context,
	period ReportPeriod,
) (SalesReport, error) {
	report := SalesReport{}
	path := "/analytics/report?period=" + url.QueryEscape(string(period))
	err := cl.do(c, http.MethodGet, path, true, nil, &report)
	return report, err
}

// Auth

func (cl *Client) Login(c context.Context, username string, password string) (Login, error) {
	result := Login{}
	body := map[string]string{"username": username, "password": password}
	err := cl.do(c, http.MethodPost, "/auth/login", false, body, &result)
	return result, err
}

func (cl *Client) VerifyToken(c context.Context) (bool, error) {
	result := struct {
		Valid bool `json:"valid"`
	}{}
	err := cl.do(c, http.MethodGet, "/auth/verify", true, nil, &result)
	return result.Valid, err
}
