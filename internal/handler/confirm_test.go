package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmationHandler(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		success bool
	}{
		{"succeeded", "?status=succeeded", true},
		{"failed", "?status=failed", false},
		{"cancelled", "?status=cancelled", false},
		{"missing", "", false},
		{"empty", "?status=", false},
	}

	h := ConfirmationHandler()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/confirmed"+tt.query, nil)
			rec := httptest.NewRecorder()
			h(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			if tt.success {
				assert.Contains(t, body, "Order Confirmed!")
				assert.NotContains(t, body, "Payment Failed")
			} else {
				assert.Contains(t, body, "Payment Failed")
				assert.NotContains(t, body, "Order Confirmed!")
			}
		})
	}
}
