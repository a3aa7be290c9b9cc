package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ramenco/internal/model"
)

func testSummary() *model.OrderSummary {
	return &model.OrderSummary{
		PaymentID:      "pay_abc",
		OrderDate:      time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC),
		CustomerName:   "alice@example.com",
		CustomerEmail:  "alice@example.com",
		DeliveryEmail:  "alice@example.com",
		Phone:          "9876543210",
		Address:        "12 Main Street",
		ZipCode:        "560038",
		NonVegQuantity: 2,
		VegQuantity:    0,
		TotalAmount:    decimal.NewFromInt(1198),
		PaymentMethod:  "upi_collect",
		MapLink:        "https://maps.example/pin",
	}
}

func TestRenderReceipt_OnlyPositiveLines(t *testing.T) {
	m := NewMailer("key")

	html, err := m.RenderReceipt(testSummary())
	require.NoError(t, err)

	assert.Contains(t, html, model.NonVegItemName)
	assert.NotContains(t, html, model.VegItemName)
	assert.Contains(t, html, "₹1198.00")  // grand total
	assert.Contains(t, html, "₹1198.00")  // non-veg subtotal equals total here
	assert.Contains(t, html, "pay_abc")
	assert.Contains(t, html, "12 Main Street")
	assert.Contains(t, html, "560038")
}

func TestRenderReceipt_BothLines(t *testing.T) {
	m := NewMailer("key")

	summary := testSummary()
	summary.VegQuantity = 1
	summary.TotalAmount = decimal.NewFromInt(1697)

	html, err := m.RenderReceipt(summary)
	require.NoError(t, err)

	assert.Contains(t, html, model.NonVegItemName)
	assert.Contains(t, html, model.VegItemName)
	assert.Contains(t, html, "₹1198.00") // 2 × 599
	assert.Contains(t, html, "₹499.00")  // 1 × 499
	assert.Contains(t, html, "₹1697.00")
}

func TestRenderReceipt_EscapesMetadata(t *testing.T) {
	m := NewMailer("key")

	summary := testSummary()
	summary.Address = `<script>alert("x")</script>`

	html, err := m.RenderReceipt(summary)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestSendReceipt(t *testing.T) {
	var got brevoEmail
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"messageId":"<1@mail>"}`))
	}))
	defer srv.Close()

	m := NewMailer("test-api-key")
	m.apiURL = srv.URL

	require.NoError(t, m.SendReceipt(context.Background(), testSummary()))

	assert.Equal(t, senderEmail, got.Sender.Email)
	require.Len(t, got.To, 1)
	assert.Equal(t, "alice@example.com", got.To[0].Email)
	require.Len(t, got.CC, 1)
	assert.Equal(t, ccEmail, got.CC[0].Email)
	assert.Equal(t, receiptSubject, got.Subject)
	assert.Contains(t, got.HTMLContent, model.NonVegItemName)
}

func TestSendReceipt_AddressesCustomerRecord(t *testing.T) {
	var got brevoEmail
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"messageId":"<2@mail>"}`))
	}))
	defer srv.Close()

	m := NewMailer("test-api-key")
	m.apiURL = srv.URL

	// The provider's customer record gets the receipt; the form email only
	// shows up inside the delivery details.
	summary := testSummary()
	summary.CustomerEmail = "billing@example.com"
	summary.DeliveryEmail = "alice@example.com"

	require.NoError(t, m.SendReceipt(context.Background(), summary))

	require.Len(t, got.To, 1)
	assert.Equal(t, "billing@example.com", got.To[0].Email)
	assert.Contains(t, got.HTMLContent, "alice@example.com")
}

func TestSendReceipt_APIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := NewMailer("bad-key")
	m.apiURL = srv.URL

	err := m.SendReceipt(context.Background(), testSummary())
	assert.ErrorContains(t, err, "status 401")
}
