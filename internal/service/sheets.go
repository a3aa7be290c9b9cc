package service

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ramenco/internal/model"
)

const (
	sheetsAPIBase  = "https://sheets.googleapis.com/v4/spreadsheets"
	googleTokenURL = "https://oauth2.googleapis.com/token"
	sheetsScope    = "https://www.googleapis.com/auth/spreadsheets"

	ordersWorksheet = "Orders"
)

var ErrWorksheetNotFound = errors.New("worksheet not found")

// SheetsRecorder appends one row per paid order to the Orders worksheet.
// Auth is a service-account JWT grant exchanged for a bearer token per call;
// the volume here does not justify a token cache.
type SheetsRecorder struct {
	serviceEmail string
	privateKey   *rsa.PrivateKey
	sheetID      string
	client       *http.Client

	apiBase  string
	tokenURL string
}

// NewSheetsRecorder fails loudly on absent or unparsable credentials so a
// misconfigured deployment is caught at startup, not at the first order.
func NewSheetsRecorder(serviceEmail, privateKeyPEM, sheetID string) (*SheetsRecorder, error) {
	if serviceEmail == "" || privateKeyPEM == "" || sheetID == "" {
		return nil, errors.New("missing google sheets credentials")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	return &SheetsRecorder{
		serviceEmail: serviceEmail,
		privateKey:   key,
		sheetID:      sheetID,
		client:       &http.Client{Timeout: 15 * time.Second},
		apiBase:      sheetsAPIBase,
		tokenURL:     googleTokenURL,
	}, nil
}

// Append writes the order as a single row. The named worksheet must exist;
// appending to whatever sheet happens to be first would scatter orders.
func (r *SheetsRecorder) Append(ctx context.Context, summary *model.OrderSummary) error {
	token, err := r.accessToken(ctx)
	if err != nil {
		return fmt.Errorf("sheets auth: %w", err)
	}

	if err := r.checkWorksheet(ctx, token); err != nil {
		return err
	}

	row := []any{
		summary.PaymentID,
		summary.OrderDate.Format("January 2, 2006 at 03:04 PM"),
		summary.CustomerName,
		summary.DeliveryEmail,
		summary.Phone,
		summary.Address,
		summary.ZipCode,
		summary.NonVegQuantity,
		summary.VegQuantity,
		summary.TotalAmount.StringFixed(2),
		summary.PaymentMethod,
		summary.MapLink,
	}

	body, err := json.Marshal(map[string]any{"values": [][]any{row}})
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}

	appendURL := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=USER_ENTERED",
		r.apiBase, r.sheetID, url.PathEscape(ordersWorksheet+"!A1"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, appendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("append row: status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}

// checkWorksheet confirms the Orders worksheet exists in the spreadsheet.
func (r *SheetsRecorder) checkWorksheet(ctx context.Context, token string) error {
	metaURL := fmt.Sprintf("%s/%s?fields=sheets.properties.title", r.apiBase, r.sheetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metaURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("load spreadsheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("load spreadsheet: status %d", resp.StatusCode)
	}

	var meta struct {
		Sheets []struct {
			Properties struct {
				Title string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return fmt.Errorf("decode spreadsheet meta: %w", err)
	}

	for _, sheet := range meta.Sheets {
		if sheet.Properties.Title == ordersWorksheet {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrWorksheetNotFound, ordersWorksheet)
}

// accessToken exchanges a signed service-account assertion for a bearer
// token.
func (r *SheetsRecorder) accessToken(ctx context.Context) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   r.serviceEmail,
		"scope": sheetsScope,
		"aud":   r.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(r.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.tokenURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("token exchange: status %d: %s", resp.StatusCode, respBody)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", errors.New("token exchange: empty access token")
	}
	return tokenResp.AccessToken, nil
}
