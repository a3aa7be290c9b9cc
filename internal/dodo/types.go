package dodo

// Request and response shapes for the payments API. Field names follow the
// provider's wire format.

type Billing struct {
	City    string `json:"city"`
	Country string `json:"country"`
	State   string `json:"state"`
	Street  string `json:"street"`
	Zipcode string `json:"zipcode"`
}

type Customer struct {
	Email             string `json:"email"`
	Name              string `json:"name"`
	CreateNewCustomer bool   `json:"create_new_customer"`
	PhoneNumber       string `json:"phone_number,omitempty"`
}

type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type PaymentRequest struct {
	Billing                   Billing           `json:"billing"`
	Customer                  Customer          `json:"customer"`
	ProductCart               []CartItem        `json:"product_cart"`
	PaymentLink               bool              `json:"payment_link"`
	ReturnURL                 string            `json:"return_url"`
	Metadata                  map[string]string `json:"metadata,omitempty"`
	AllowedPaymentMethodTypes []string          `json:"allowed_payment_method_types,omitempty"`
}

type Payment struct {
	PaymentID    string `json:"payment_id"`
	ClientSecret string `json:"client_secret"`
	PaymentLink  string `json:"payment_link"`
	TotalAmount  int64  `json:"total_amount"`
}

type countryListResponse []string

// WebhookEvent is the provider's notification envelope. Metadata carries the
// order form fields echoed back from session creation.
type WebhookEvent struct {
	Type string      `json:"type"`
	Data WebhookData `json:"data"`
}

type WebhookData struct {
	PaymentID     string            `json:"payment_id"`
	BusinessID    string            `json:"business_id"`
	Status        string            `json:"status"`
	TotalAmount   int64             `json:"total_amount"`
	Customer      WebhookCustomer   `json:"customer"`
	CreatedAt     string            `json:"created_at"`
	Metadata      map[string]string `json:"metadata"`
	PaymentMethod string            `json:"payment_method"`
	PaymentLink   string            `json:"payment_link"`
}

type WebhookCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// StatusSucceeded is the only payment status that triggers side effects.
const StatusSucceeded = "succeeded"
