package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/marketplace/internal/checkout/domain"
	"github.com/wyfcoding/marketplace/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.PaymentConfig{
		APIBase:   server.URL,
		SecretKey: "sk_test",
		Timeout:   5,
	})
}

func TestClient_CreateSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "card", r.PostForm.Get("payment_method_types[0]"))
		assert.Equal(t, "usd", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "Blue Shirt", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "5500", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "2", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "guest@example.com", r.PostForm.Get("customer_email"))
		assert.Equal(t, `[{"product_id":1}]`, r.PostForm.Get("metadata[cart]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cs_test_1",
			"url": "https://checkout.stripe.com/pay/cs_test_1",
			"payment_intent": "pi_test_1",
			"amount_total": 11000,
			"status": "open",
			"metadata": {"cart": "[{\"product_id\":1}]"}
		}`))
	})

	session, err := c.CreateSession(context.Background(), domain.CreateSessionRequest{
		LineItems: []domain.LineItem{
			{Name: "Blue Shirt", UnitAmount: 5500, Quantity: 2, Currency: "usd"},
		},
		SuccessURL:    "https://shop.example.com/success",
		CancelURL:     "https://shop.example.com/cancel",
		CustomerEmail: "guest@example.com",
		Metadata:      map[string]string{"cart": `[{"product_id":1}]`},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_1", session.URL)
	assert.Equal(t, int64(11000), session.AmountTotal)
}

func TestClient_CreateSessionError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Missing currency"}}`))
	})

	_, err := c.CreateSession(context.Background(), domain.CreateSessionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing currency")
}

func TestClient_CreateSessionSingleAttempt(t *testing.T) {
	var attempts atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	})

	_, err := c.CreateSession(context.Background(), domain.CreateSessionRequest{})
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_RetrieveSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/cs_test_9", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_9","payment_intent":"pi_9","amount_total":4200,"status":"complete"}`))
	})

	session, err := c.RetrieveSession(context.Background(), "cs_test_9")
	require.NoError(t, err)
	assert.Equal(t, "pi_9", session.PaymentIntent)
	assert.Equal(t, "complete", session.Status)
}
