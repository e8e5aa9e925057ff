package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iyhunko/product-catalog/internal/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewServer(t *testing.T) {
	conf := &config.Config{MetricsServer: config.Server{Port: "9191"}}

	srv := NewServer(conf)
	assert.Equal(t, ":9191", srv.Addr)

	ProductsCreated.Inc()

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "products_created_total")
}

func TestStoreErrors(t *testing.T) {
	before := testutil.ToFloat64(StoreErrors.WithLabelValues("list"))
	StoreErrors.WithLabelValues("list").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(StoreErrors.WithLabelValues("list")))
}
