package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/auth"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/session"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	lastFilter domain.ProductFilter
	lastLimit  int
	products   []domain.ProductWithCategory
	err        error
}

func (s *stubCatalog) ListProducts(_ context.Context, f domain.ProductFilter) ([]domain.ProductWithCategory, error) {
	s.lastFilter = f
	return s.products, s.err
}

func (s *stubCatalog) ListFeaturedProducts(_ context.Context, limit int) ([]domain.ProductWithCategory, error) {
	s.lastLimit = limit
	return s.products, s.err
}

func (s *stubCatalog) GetProduct(_ context.Context, id string) (*domain.ProductWithCategory, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, e.ErrNotFound
}

func (s *stubCatalog) ListCategories(context.Context) ([]domain.Category, error) {
	return []domain.Category{}, s.err
}

type stubOrders struct {
	token string
	err   error
}

func (s *stubOrders) PlaceOrder(ctx context.Context, productID string) (*domain.Order, error) {
	s.token, _ = auth.TokenFromContext(ctx)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: "o1", UserID: "u1", ProductID: &productID, Status: domain.OrderStatusPending}, nil
}

func (s *stubOrders) ListOrders(context.Context) ([]domain.OrderView, error) {
	return []domain.OrderView{{Order: domain.Order{ID: "o1", UserID: "u1"}}}, s.err
}

func (s *stubOrders) MyProfile(context.Context) (*usecase.ProfileRes, error) {
	return nil, s.err
}

type stubAdmin struct {
	product *usecase.UpsertProductReq
	image   *usecase.ProductImage
	err     error
}

func (s *stubAdmin) UpsertCategory(_ context.Context, req *usecase.UpsertCategoryReq) (*domain.Category, error) {
	return &domain.Category{ID: "c1", Name: req.Name}, s.err
}

func (s *stubAdmin) DeleteCategory(context.Context, string) error { return s.err }

func (s *stubAdmin) UpsertProduct(_ context.Context, req *usecase.UpsertProductReq) (*domain.Product, error) {
	s.product = req
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Product{ID: "p1", Name: req.Name, Price: 1999}, nil
}

func (s *stubAdmin) DeleteProduct(context.Context, string) error { return s.err }

func (s *stubAdmin) UploadProductImage(_ context.Context, id string, img *usecase.ProductImage) (*domain.Product, error) {
	s.image = img
	url := "http://cdn.local/" + id
	return &domain.Product{ID: id, ImageURL: &url}, s.err
}

func (s *stubAdmin) DashboardStats(context.Context) (*domain.DashboardStats, error) {
	return &domain.DashboardStats{Products: 2}, s.err
}

type stubAuth struct {
	identity *domain.Identity
}

func (s *stubAuth) SignUp(context.Context, *usecase.SignUpReq) (*usecase.SessionRes, error) {
	return nil, e.ErrConflict
}

func (s *stubAuth) SignIn(context.Context, *usecase.SignInReq) (*usecase.SessionRes, error) {
	return nil, e.ErrInvalidCredentials
}

func (s *stubAuth) SignOut(context.Context) error { return nil }

func (s *stubAuth) CurrentSession(context.Context) (*domain.Identity, error) {
	return s.identity, nil
}

type testServer struct {
	handler  http.Handler
	catalog  *stubCatalog
	orders   *stubOrders
	admin    *stubAdmin
	auth     *stubAuth
	hub      *session.Hub
	registry *prometheus.Registry
}

func newTestServer(t *testing.T, checks map[string]HealthCheck) *testServer {
	t.Helper()

	log := logger.NewNopLogger()
	ts := &testServer{
		catalog:  &stubCatalog{},
		orders:   &stubOrders{},
		admin:    &stubAdmin{},
		auth:     &stubAuth{},
		hub:      session.NewHub(4, log),
		registry: prometheus.NewRegistry(),
	}
	t.Cleanup(ts.hub.Close)

	mux := chi.NewRouter()
	NewRouter(mux, ts.registry, log).Init(
		NewHandlers(ts.catalog, ts.orders, ts.admin, ts.auth, ts.hub, 1<<20, log),
		checks,
	)
	ts.handler = mux

	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var res ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	return res
}

func TestToHTTPResponse(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{e.Wrap("op", e.ErrUnauthenticated), http.StatusUnauthorized},
		{e.ErrTokenRevoked, http.StatusUnauthorized},
		{e.ErrForbidden, http.StatusForbidden},
		{e.ErrNotFound, http.StatusNotFound},
		{e.ErrOutOfStock, http.StatusConflict},
		{e.ErrConflict, http.StatusConflict},
		{e.NewValidationError("price", "must be non-negative"), http.StatusBadRequest},
		{e.Boundary("op", errors.New("dial tcp: refused")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			code, _, _ := ToHTTPResponse(tt.err)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestListProducts(t *testing.T) {
	ts := newTestServer(t, nil)
	cat := "Lamps"
	ts.catalog.products = []domain.ProductWithCategory{
		{Product: domain.Product{ID: "p1", Name: "Desk lamp", Price: 1999, Stock: 0}, CategoryName: &cat},
	}

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/products?search=lamp&category=all", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var res []ProductResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	require.Len(t, res, 1)
	assert.Equal(t, "19.99", res[0].Price)
	assert.False(t, res[0].InStock)
	assert.Equal(t, &cat, res[0].CategoryName)
	assert.Equal(t, domain.ProductFilter{SearchText: "lamp", CategoryID: "all"}, ts.catalog.lastFilter)
}

func TestListProducts_EmptyIsArray(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestListFeatured_BadLimit(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/products/featured?limit=abc", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "limit", decodeError(t, rec).Field)
}

func TestGetProduct_NotFound(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/products/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaceOrder_PassesBearerToken(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"product_id":"p1"}`))
	req.Header.Set("Authorization", "Bearer tok-123")

	rec := ts.do(req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "tok-123", ts.orders.token)

	var res OrderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "pending", res.Status)
}

func TestPlaceOrder_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		body string
		code int
	}{
		{"out of stock", e.ErrOutOfStock, `{"product_id":"p1"}`, http.StatusConflict},
		{"anonymous", e.ErrUnauthenticated, `{"product_id":"p1"}`, http.StatusUnauthorized},
		{"unknown field", nil, `{"product":"p1"}`, http.StatusBadRequest},
		{"broken json", nil, `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			ts.orders.err = tt.err

			rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestUpsertProduct_ValidationField(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.admin.err = e.NewValidationError("price", "must have at most 2 decimal places")

	body := `{"name":"Lamp","price":"1.999","model":"L","stock":"1","category_id":"c1"}`
	rec := ts.do(httptest.NewRequest(http.MethodPut, "/api/v1/admin/products/p1", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "price", decodeError(t, rec).Field)
	require.NotNil(t, ts.admin.product)
	assert.Equal(t, "p1", ts.admin.product.ID)
	assert.Equal(t, "1.999", ts.admin.product.Price)
}

func TestAdmin_Forbidden(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.admin.err = e.ErrForbidden

	rec := ts.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/categories/c1", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUploadImage(t *testing.T) {
	ts := newTestServer(t, nil)

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "lamp.png")
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/p1/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, ts.admin.image)
	assert.Equal(t, "image/png", ts.admin.image.MimeType)
	assert.Equal(t, "lamp.png", ts.admin.image.Name)
	assert.EqualValues(t, len(png), ts.admin.image.Size)
}

func TestUploadImage_NotMultipart(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/p1/image", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	rec := ts.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, ts.admin.image)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin", strings.NewReader(`{"email":"a@b.c","password":"x"}`)))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "invalid credentials")
}

func TestCurrentSession_Anonymous(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"session":null}`, rec.Body.String())
}

func TestEvents_Anonymous(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/auth/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEvents_StreamsSessionEvents(t *testing.T) {
	ts := newTestServer(t, nil)
	identity := domain.Identity{UserID: "u1", Email: "u1@shop.io"}
	ts.auth.identity = &identity

	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/auth/events", nil)
	require.NoError(t, err)

	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	// Заголовки получены, значит подписка уже оформлена
	ts.hub.Publish(domain.NewSessionEvent(domain.SessionSignedOut, identity))

	scanner := bufio.NewScanner(res.Body)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" && len(lines) > 0 {
			break
		}
		if line != "" {
			lines = append(lines, line)
		}
	}

	require.Len(t, lines, 2)
	assert.Equal(t, "event: signed_out", lines[0])
	assert.Contains(t, lines[1], `"user_id":"u1"`)
}

func TestHealthz(t *testing.T) {
	ok := newTestServer(t, map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
	})
	assert.Equal(t, http.StatusOK, ok.do(httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)

	down := newTestServer(t, map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	rec := down.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")
}

func TestMetrics_ByRoutePattern(t *testing.T) {
	ts := newTestServer(t, nil)

	ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/products/p-404", nil))

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storefront_http_requests_total{code="404",method="GET",route="/api/v1/products/{id}"} 1`)
}
