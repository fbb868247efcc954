package api_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-orders/internal/auth"
	"ms-orders/internal/imagecheck"
	"ms-orders/internal/logger"
	"ms-orders/internal/models"
	"ms-orders/internal/order"
	"ms-orders/internal/order/api"
	"ms-orders/internal/order/cache"
	"ms-orders/internal/order/db"
	"ms-orders/internal/order/receipt"
)

func setupRouter(t *testing.T) (*chi.Mux, *order.OrderService) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Each pooled connection would get its own :memory: database.
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, db.Migrate(bunDB))

	lg := &logger.Logger{}
	svc := order.NewOrderService(&db.DB{Bun: bunDB}, cache.New(nil), order.StaticChecker(true), lg)

	handler := &api.Handler{
		OrderService: svc,
		Receipts:     receipt.NewGenerator("test-secret"),
		Logger:       lg,
	}

	r := chi.NewRouter()
	r.Get("/health", handler.Health)
	r.Post("/api/v1/orders", handler.CreateOrder)
	r.Get("/api/v1/orders/{orderId}/receipt", handler.Receipt)
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())
		r.Get("/api/v1/orders", handler.ListOrders)
		r.Get("/api/v1/orders/{orderId}", handler.GetOrder)
		r.Put("/api/v1/orders/{orderId}/status", handler.UpdateStatus)
	})
	return r, svc
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, body io.Reader) envelope {
	var env envelope
	require.NoError(t, json.NewDecoder(body).Decode(&env))
	return env
}

func multipartSubmission(t *testing.T, fields map[string]string, logo []byte) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if logo != nil {
		part, err := writer.CreateFormFile("logo", "logo.png")
		require.NoError(t, err)
		_, err = part.Write(logo)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func validFields() map[string]string {
	return map[string]string{
		"storeName":          "کافه گل",
		"businessType":       "cafe",
		"province":           "Tehran",
		"city":               "Tehran",
		"phoneNumber":        "09121234567",
		"favoriteColor":      "green",
		"categories":         "coffee",
		"estimatedProducts":  "40",
		"productDisplayType": "grid",
		"pricingPlan":        "standard",
		"additionalModules":  `["blog","chat"]`,
	}
}

func submitOrder(t *testing.T, router *chi.Mux) models.Order {
	body, contentType := multipartSubmission(t, validFields(), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec.Body)
	require.True(t, env.Success)

	var created models.Order
	require.NoError(t, json.Unmarshal(env.Data, &created))
	return created
}

func TestCreateOrder(t *testing.T) {
	router, _ := setupRouter(t)

	created := submitOrder(t, router)
	assert.True(t, strings.HasPrefix(created.ID, "ORD-"))
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, int64(15_000_000), created.Total)
	require.Len(t, created.Items, 1)
	assert.Equal(t, 1, created.Items[0].Quantity)
	assert.Equal(t, []any{"blog", "chat"}, created.Payload["additionalModules"])
}

func TestCreateOrderWithLogo(t *testing.T) {
	router, _ := setupRouter(t)

	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	body, contentType := multipartSubmission(t, validFields(), png)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decodeEnvelope(t, rec.Body).Success)
}

func TestCreateOrderRejectsNonImageLogo(t *testing.T) {
	router, _ := setupRouter(t)

	body, contentType := multipartSubmission(t, validFields(), []byte("definitely not an image"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeEnvelope(t, rec.Body).Success)
}

func TestCreateOrderRejectsMissingAttributes(t *testing.T) {
	router, _ := setupRouter(t)

	fields := validFields()
	delete(fields, "storeName")
	body, contentType := multipartSubmission(t, fields, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeEnvelope(t, rec.Body).Success)
}

func TestListOrdersRequiresBearer(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec.Body).Success)
}

func TestUpdateStatusRoundTrip(t *testing.T) {
	router, _ := setupRouter(t)

	created := submitOrder(t, router)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/orders/"+created.ID+"/status",
		strings.NewReader(`{"status":"confirmed"}`))
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec.Body)
	require.True(t, env.Success)

	var update models.StatusUpdate
	require.NoError(t, json.Unmarshal(env.Data, &update))
	assert.Equal(t, created.ID, update.ID)
	assert.Equal(t, models.StatusConfirmed, update.Status)
	assert.True(t, update.Durable)

	// The stored order carries the new status and nothing else changed.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+created.ID, nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	env = decodeEnvelope(t, rec.Body)
	var got models.Order
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Equal(t, created.Total, got.Total)
	assert.Equal(t, created.Payload["storeName"], got.Payload["storeName"])
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	router, svc := setupRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/orders/ORD-9999/status",
		strings.NewReader(`{"status":"confirmed"}`))
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decodeEnvelope(t, rec.Body).Success)

	// No record appeared in any tier as a side effect.
	orders, err := svc.GetOrders()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	router, _ := setupRouter(t)

	created := submitOrder(t, router)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/orders/"+created.ID+"/status",
		strings.NewReader(`{"status":"teleported"}`))
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReceiptReturnsPNG(t *testing.T) {
	router, _ := setupRouter(t)

	created := submitOrder(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+created.ID+"/receipt", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png", imagecheck.Format(rec.Body.Bytes()))
}
