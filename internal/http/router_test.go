package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/config"
	httpAPI "github.com/iyhunko/product-catalog/internal/http"
	"github.com/iyhunko/product-catalog/internal/http/controller"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory repository.Store with injectable failures.
type fakeStore struct {
	mu        sync.Mutex
	products  []*model.Product
	createErr error
	listErr   error
	pingErr   error
}

func (s *fakeStore) Create(_ context.Context, product *model.Product) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	product.InitMeta()
	created := *product
	created.ID = fmt.Sprintf("id-%d", len(s.products)+1)
	s.products = append(s.products, &created)
	return &created, nil
}

func (s *fakeStore) List(context.Context) ([]*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]*model.Product(nil), s.products...), nil
}

func (s *fakeStore) Ping(context.Context) error {
	return s.pingErr
}

func (s *fakeStore) Close(context.Context) error {
	return nil
}

func setupRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	conf := &config.Config{CORS: config.CORS{AllowedOrigin: "*"}}
	productCtr := controller.NewProductController(service.NewProductService(store, nil))
	return httpAPI.InitRouter(conf, router, controller.New(store), productCtr)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestProductAPI_Scenario(t *testing.T) {
	router := setupRouter(&fakeStore{})

	// Create
	w := doJSON(t, router, http.MethodPost, "/api/products", map[string]any{
		"name":        "Widget",
		"price":       9.99,
		"description": "A small widget",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created["id"])
	assert.Equal(t, "Widget", created["name"])
	assert.Equal(t, 9.99, created["price"])
	assert.Equal(t, "A small widget", created["description"])
	assert.NotContains(t, created, "image", "empty image is omitted")

	// List
	w = doJSON(t, router, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created["id"], listed[0]["id"])

	// Missing fields
	w = doJSON(t, router, http.MethodPost, "/api/products", map[string]any{"price": 5})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var errResp controller.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "name is required", errResp.Message)
	assert.Equal(t, "description is required", errResp.Errors["description"])
}

func TestProductAPI_CreateWithImage(t *testing.T) {
	router := setupRouter(&fakeStore{})

	w := doJSON(t, router, http.MethodPost, "/api/products", map[string]any{
		"name":        "Lamp",
		"price":       25,
		"description": "Desk lamp",
		"image":       "https://img.example/lamp.png",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"image":"https://img.example/lamp.png"`)
}

func TestProductAPI_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		message string
	}{
		{"missing name", map[string]any{"price": 1, "description": "d"}, "name is required"},
		{"missing price", map[string]any{"name": "n", "description": "d"}, "price is required"},
		{"zero price", map[string]any{"name": "n", "price": 0, "description": "d"}, "price is required"},
		{"missing description", map[string]any{"name": "n", "price": 1}, "description is required"},
		{"empty name", map[string]any{"name": "", "price": 1, "description": "d"}, "name is required"},
		{"non-numeric price", map[string]any{"name": "n", "price": "cheap", "description": "d"}, "Invalid request body"},
		{"malformed json", `{"name": "n",`, "Invalid request body"},
		{"empty body", nil, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			router := setupRouter(store)

			w := doJSON(t, router, http.MethodPost, "/api/products", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var errResp controller.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
			assert.Equal(t, tt.message, errResp.Message)
			assert.Empty(t, store.products, "nothing should be stored")
		})
	}
}

func TestProductAPI_ListEmpty(t *testing.T) {
	router := setupRouter(&fakeStore{})

	w := doJSON(t, router, http.MethodGet, "/api/products", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestProductAPI_ListAfterCreatingMany(t *testing.T) {
	router := setupRouter(&fakeStore{})

	const n = 5
	for i := 0; i < n; i++ {
		w := doJSON(t, router, http.MethodPost, "/api/products", map[string]any{
			"name":        fmt.Sprintf("Product %d", i),
			"price":       float64(i) + 0.5,
			"description": "bulk",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []model.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, n)
	for i, p := range listed {
		assert.Equal(t, fmt.Sprintf("Product %d", i), p.Name)
	}
}

func TestProductAPI_StoreFailures(t *testing.T) {
	store := &fakeStore{}
	router := setupRouter(store)

	store.listErr = errors.New("server selection error: context deadline exceeded")
	w := doJSON(t, router, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Error fetching products"}`, w.Body.String())

	store.createErr = errors.New("connection reset by peer")
	w = doJSON(t, router, http.MethodPost, "/api/products", map[string]any{
		"name": "Widget", "price": 9.99, "description": "A small widget",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Error adding product"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "connection reset")

	// The server keeps serving once the store recovers.
	store.listErr = nil
	store.createErr = nil
	w = doJSON(t, router, http.MethodPost, "/api/products", map[string]any{
		"name": "Widget", "price": 9.99, "description": "A small widget",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	router := setupRouter(&fakeStore{})

	for _, path := range []string{"/", "/api", "/api/orders"} {
		w := doJSON(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.JSONEq(t, `{"message":"Route not found"}`, w.Body.String(), path)
	}
}

func TestRouter_PingAndHealth(t *testing.T) {
	store := &fakeStore{}
	router := setupRouter(store)

	w := doJSON(t, router, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	store.pingErr = errors.New("no reachable servers")
	w = doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := setupRouter(&fakeStore{})

	w := doJSON(t, router, http.MethodOptions, "/api/products", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
