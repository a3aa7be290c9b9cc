package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"ramenco/internal/model"
)

const brevoAPIURL = "https://api.brevo.com/v3/smtp/email"

const (
	senderName  = "Kanishka | Ramen Co."
	senderEmail = "kanishka@ateulerlabs.com"
	ccName      = "Parth | Ramen Co."
	ccEmail     = "parth@ateulerlabs.com"

	receiptSubject = "Thank you for your Ramen Co. order!"
)

// Mailer renders the fixed HTML receipt and sends it through the
// transactional email API. The customer gets the receipt, the shop address is
// carbon-copied on every order.
type Mailer struct {
	apiKey   string
	client   *http.Client
	apiURL   string
	template *template.Template
}

func NewMailer(apiKey string) *Mailer {
	return &Mailer{
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
		apiURL:   brevoAPIURL,
		template: template.Must(template.New("receipt").Parse(receiptTemplate)),
	}
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoEmail struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	CC          []brevoAddress `json:"cc,omitempty"`
	ReplyTo     *brevoAddress  `json:"replyTo,omitempty"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func (m *Mailer) SendReceipt(ctx context.Context, summary *model.OrderSummary) error {
	html, err := m.RenderReceipt(summary)
	if err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}

	payload := brevoEmail{
		Sender:      brevoAddress{Name: senderName, Email: senderEmail},
		To:          []brevoAddress{{Email: summary.CustomerEmail}},
		CC:          []brevoAddress{{Email: ccEmail, Name: ccName}},
		ReplyTo:     &brevoAddress{Email: senderEmail, Name: senderName},
		Subject:     receiptSubject,
		HTMLContent: html,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("api-key", m.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("send email: status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}

type receiptLine struct {
	Name     string
	Quantity int
	Price    string
	Subtotal string
}

type receiptData struct {
	PaymentID string
	OrderDate string
	Lines     []receiptLine
	Total     string
	Email     string
	Address   string
	Phone     string
	ZipCode   string
}

// RenderReceipt builds the receipt HTML. Only lines with a positive quantity
// appear in the itemized table.
func (m *Mailer) RenderReceipt(summary *model.OrderSummary) (string, error) {
	data := receiptData{
		PaymentID: summary.PaymentID,
		OrderDate: summary.OrderDate.Format("January 2, 2006 at 03:04 PM"),
		Total:     "₹" + summary.TotalAmount.StringFixed(2),
		Email:     summary.DeliveryEmail,
		Address:   summary.Address,
		Phone:     summary.Phone,
		ZipCode:   summary.ZipCode,
	}

	if summary.NonVegQuantity > 0 {
		data.Lines = append(data.Lines, receiptLine{
			Name:     model.NonVegItemName,
			Quantity: summary.NonVegQuantity,
			Price:    "₹" + model.NonVegPrice.StringFixed(0),
			Subtotal: "₹" + summary.NonVegSubtotal().StringFixed(2),
		})
	}
	if summary.VegQuantity > 0 {
		data.Lines = append(data.Lines, receiptLine{
			Name:     model.VegItemName,
			Quantity: summary.VegQuantity,
			Price:    "₹" + model.VegPrice.StringFixed(0),
			Subtotal: "₹" + summary.VegSubtotal().StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := m.template.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const receiptTemplate = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e9d1c2; border-radius: 8px; background-color: #fff;">
  <div style="text-align: center; margin-bottom: 30px; background-color: #385e67; padding: 20px; border-radius: 8px; color: white;">
    <h1 style="margin-bottom: 5px;">Thank You for Your Order!</h1>
    <p style="font-size: 16px; color: #e9d1c2;">Your order will reach you within 50 minutes.</p>
  </div>

  <div style="margin-bottom: 30px; padding: 20px; background-color: #e9d1c2; border-radius: 8px;">
    <h2 style="color: #654117; margin-top: 0; border-bottom: 2px solid #c86d73; padding-bottom: 10px;">Order Details</h2>
    <p style="color: #385e67;"><strong style="color: #654117;">Order ID:</strong> {{.PaymentID}}</p>
    <p style="color: #385e67;"><strong style="color: #654117;">Date:</strong> {{.OrderDate}}</p>

    <table style="width: 100%; border-collapse: collapse; margin-top: 15px; margin-bottom: 15px;">
      <thead>
        <tr style="background-color: #c86d73; color: white;">
          <th style="padding: 8px; text-align: left;">Item</th>
          <th style="padding: 8px; text-align: center;">Qty</th>
          <th style="padding: 8px; text-align: right;">Price</th>
          <th style="padding: 8px; text-align: right;">Subtotal</th>
        </tr>
      </thead>
      <tbody>
        {{range .Lines}}<tr>
          <td style="padding: 8px; border-bottom: 1px solid #c86d73;">{{.Name}}</td>
          <td style="padding: 8px; border-bottom: 1px solid #c86d73; text-align: center;">{{.Quantity}}</td>
          <td style="padding: 8px; border-bottom: 1px solid #c86d73; text-align: right;">{{.Price}}</td>
          <td style="padding: 8px; border-bottom: 1px solid #c86d73; text-align: right;">{{.Subtotal}}</td>
        </tr>
        {{end}}
      </tbody>
      <tfoot>
        <tr style="font-weight: bold; background-color: #385e67; color: white;">
          <td style="padding: 8px;" colspan="3">Total</td>
          <td style="padding: 8px; text-align: right;">{{.Total}}</td>
        </tr>
      </tfoot>
    </table>
  </div>

  <div style="margin-bottom: 30px; padding: 20px; background-color: #e9d1c2; border-radius: 8px;">
    <h2 style="color: #654117; margin-top: 0; border-bottom: 2px solid #c86d73; padding-bottom: 10px;">Delivery Information</h2>
    <p style="color: #385e67;"><strong style="color: #654117;">Email:</strong> {{.Email}}</p>
    <p style="color: #385e67;"><strong style="color: #654117;">Address:</strong> {{.Address}}</p>
    <p style="color: #385e67;"><strong style="color: #654117;">Phone:</strong> {{.Phone}}</p>
    <p style="color: #385e67;"><strong style="color: #654117;">Zipcode:</strong> {{.ZipCode}}</p>
  </div>

  <div style="text-align: center; margin-top: 30px; padding: 15px; background-color: #385e67; border-radius: 8px;">
    <p style="color: #e9d1c2; margin-bottom: 5px;">If you have any questions or concerns, please contact us at <a href="mailto:parth@ateulerlabs.com" style="color: white; text-decoration: underline;">parth@ateulerlabs.com</a>.</p>
    <p style="color: white; font-weight: bold;">Thank you for choosing Ramen Co.!</p>
    <p style="color: #e9d1c2; margin-top: 10px;">Visit us at: <a href="https://ramen.2vid.ai" style="color: white; text-decoration: underline; font-weight: bold;">ramen.2vid.ai</a></p>
    <div style="margin-top: 15px; padding-top: 15px; border-top: 1px solid #e9d1c2;">
      <p style="color: #e9d1c2; font-size: 12px;">© 2023 Ramen Co. All rights reserved.</p>
    </div>
  </div>
</div>`
