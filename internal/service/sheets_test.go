package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrivateKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	return string(pem.EncodeToMemory(block))
}

func newTestRecorder(t *testing.T, apiBase, tokenURL string) *SheetsRecorder {
	t.Helper()
	r, err := NewSheetsRecorder("svc@project.iam.gserviceaccount.com", testPrivateKeyPEM(t), "sheet123")
	require.NoError(t, err)
	r.apiBase = apiBase
	r.tokenURL = tokenURL
	return r
}

func TestNewSheetsRecorder_MissingCredentials(t *testing.T) {
	_, err := NewSheetsRecorder("", "key", "sheet")
	assert.Error(t, err)

	_, err = NewSheetsRecorder("svc@example.com", "", "sheet")
	assert.Error(t, err)

	_, err = NewSheetsRecorder("svc@example.com", "not a pem key", "sheet")
	assert.Error(t, err)
}

func TestAppend(t *testing.T) {
	var appended [][]any

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:jwt-bearer", r.Form.Get("grant_type"))
		assert.NotEmpty(t, r.Form.Get("assertion"))
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok_1", "expires_in": 3600})
	})
	mux.HandleFunc("/sheet123", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok_1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"sheets": []map[string]any{
				{"properties": map[string]string{"title": "Summary"}},
				{"properties": map[string]string{"title": "Orders"}},
			},
		})
	})
	mux.HandleFunc("/sheet123/values/", func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.Contains(r.URL.RawQuery, "valueInputOption=USER_ENTERED"))
		var payload struct {
			Values [][]any `json:"values"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		appended = payload.Values
		json.NewEncoder(w).Encode(map[string]any{"updates": map[string]int{"updatedRows": 1}})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := newTestRecorder(t, srv.URL, srv.URL+"/token")

	require.NoError(t, r.Append(context.Background(), testSummary()))

	require.Len(t, appended, 1)
	row := appended[0]
	require.Len(t, row, 12)
	assert.Equal(t, "pay_abc", row[0])
	assert.Equal(t, "August 30, 2026 at 02:30 PM", row[1])
	assert.Equal(t, "alice@example.com", row[3])
	assert.Equal(t, float64(2), row[7]) // json numbers decode as float64
	assert.Equal(t, float64(0), row[8])
	assert.Equal(t, "1198.00", row[9])
	assert.Equal(t, "upi_collect", row[10])
}

func TestAppend_WorksheetMissing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok_1"})
	})
	mux.HandleFunc("/sheet123", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"sheets": []map[string]any{
				{"properties": map[string]string{"title": "Sheet1"}},
			},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := newTestRecorder(t, srv.URL, srv.URL+"/token")

	err := r.Append(context.Background(), testSummary())
	assert.ErrorIs(t, err, ErrWorksheetNotFound)
}

func TestAppend_TokenExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	r := newTestRecorder(t, srv.URL, srv.URL+"/token")

	err := r.Append(context.Background(), testSummary())
	assert.ErrorContains(t, err, "sheets auth")
}
