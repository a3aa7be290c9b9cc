package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"ramenco/internal/dodo"
	"ramenco/internal/model"
	"ramenco/internal/signature"
)

// OrderRecorder persists one row per paid order. Best effort: failures are
// logged and never affect the webhook response.
type OrderRecorder interface {
	Append(ctx context.Context, summary *model.OrderSummary) error
}

// ReceiptMailer sends the customer receipt. Same best-effort contract.
type ReceiptMailer interface {
	SendReceipt(ctx context.Context, summary *model.OrderSummary) error
}

// EffectResult is the outcome of one webhook side effect. The webhook always
// acknowledges once the payload is verified; these exist so the two effects
// can be logged distinctly.
type EffectResult struct {
	Name string
	Err  error
}

func (r EffectResult) OK() bool { return r.Err == nil }

type WebhookService struct {
	verifier *signature.Verifier
	recorder OrderRecorder
	mailer   ReceiptMailer
}

func NewWebhookService(verifier *signature.Verifier, recorder OrderRecorder, mailer ReceiptMailer) *WebhookService {
	return &WebhookService{verifier: verifier, recorder: recorder, mailer: mailer}
}

// VerifyAndParse checks the signature over the raw body and decodes the
// event. A payload that fails verification never reaches the side effects.
func (s *WebhookService) VerifyAndParse(body []byte, headers http.Header) (*dodo.WebhookEvent, error) {
	err := s.verifier.Verify(
		body,
		headers.Get("webhook-id"),
		headers.Get("webhook-timestamp"),
		headers.Get("webhook-signature"),
	)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	var event dodo.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("parse event: %w", err)
	}
	return &event, nil
}

// Process dispatches the side effects for a succeeded payment. Any other
// status is ignored: unrelated lifecycle events must not fail the endpoint.
// The two effects are independent; one failing does not block the other.
// Redelivered events are processed again, duplicate rows and emails included.
func (s *WebhookService) Process(ctx context.Context, event *dodo.WebhookEvent) []EffectResult {
	if event.Data.Status != dodo.StatusSucceeded {
		slog.Info("webhook ignored", "status", event.Data.Status, "payment_id", event.Data.PaymentID)
		return nil
	}

	summary := summarize(&event.Data)
	slog.Info("payment succeeded", "payment_id", summary.PaymentID, "total", summary.TotalAmount)

	results := []EffectResult{
		{Name: "sheet", Err: s.recorder.Append(ctx, summary)},
		{Name: "email", Err: s.mailer.SendReceipt(ctx, summary)},
	}
	for _, r := range results {
		if !r.OK() {
			slog.Error("webhook side effect failed", "effect", r.Name, "payment_id", summary.PaymentID, "error", r.Err)
		}
	}
	return results
}

// summarize flattens the event into the shape the recorder and mailer share.
// The delivery email prefers the metadata echo, matching what the customer
// typed into the form; the receipt itself goes to the provider's customer
// record.
func summarize(data *dodo.WebhookData) *model.OrderSummary {
	md := data.Metadata
	if md == nil {
		md = map[string]string{}
	}

	deliveryEmail := md["email"]
	if deliveryEmail == "" {
		deliveryEmail = data.Customer.Email
	}

	orderDate, err := time.Parse(time.RFC3339, data.CreatedAt)
	if err != nil {
		orderDate = time.Now()
	}

	nonVeg, _ := strconv.Atoi(md["nonVegQuantity"])
	veg, _ := strconv.Atoi(md["vegQuantity"])
	if q, err := strconv.Atoi(md["quantity"]); err == nil && nonVeg == 0 && veg == 0 {
		nonVeg = q
	}

	return &model.OrderSummary{
		PaymentID:      data.PaymentID,
		OrderDate:      orderDate,
		CustomerName:   data.Customer.Name,
		CustomerEmail:  data.Customer.Email,
		DeliveryEmail:  deliveryEmail,
		Phone:          orDefault(md["phone"]),
		Address:        orDefault(md["address"]),
		ZipCode:        orDefault(firstNonEmpty(md["zipCode"], md["zipcode"])),
		NonVegQuantity: nonVeg,
		VegQuantity:    veg,
		TotalAmount:    decimal.NewFromInt(data.TotalAmount).Div(decimal.NewFromInt(100)),
		PaymentMethod:  data.PaymentMethod,
		MapLink:        orDefault(firstNonEmpty(md["map"], md["mapURL"])),
	}
}

func orDefault(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
