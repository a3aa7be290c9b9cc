package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"ramenco/internal/config"
	"ramenco/internal/dodo"
	"ramenco/internal/model"
)

var (
	ErrProductNotConfigured = errors.New("product id is not configured")
	ErrEmptyCart            = errors.New("cart has no items")
	ErrAreaNotServed        = errors.New("delivery area not served")
)

// FieldError reports a single invalid form field. Format errors are returned
// before the coverage check so the customer fixes the field first and only
// then learns about the delivery area.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// PaymentsAPI is the slice of the provider client the checkout service uses.
type PaymentsAPI interface {
	CreatePayment(ctx context.Context, req *dodo.PaymentRequest) (*dodo.Payment, error)
}

type CheckoutService struct {
	client             PaymentsAPI
	cfg                *config.Config
	supportedCountries map[string]bool
	validate           *validator.Validate
}

// NewCheckoutService builds the service with the provider-supplied list of
// billing country codes. An empty list disables the check and everything
// falls back to the default country.
func NewCheckoutService(client PaymentsAPI, cfg *config.Config, countries []string) *CheckoutService {
	supported := make(map[string]bool, len(countries))
	for _, c := range countries {
		supported[c] = true
	}
	return &CheckoutService{
		client:             client,
		cfg:                cfg,
		supportedCountries: supported,
		validate:           validator.New(),
	}
}

// ValidateForm checks field formats first and the coverage allow-list last.
func (s *CheckoutService) ValidateForm(form *model.OrderForm) error {
	return s.validateForm(form, true)
}

// validateForm runs the format checks in the order the storefront shows
// them, then the map-pin check, then the coverage allow-list, so the
// customer sees field errors before a delivery-area rejection. The
// direct-redirect flow collects neither an email nor a map pin, so those
// checks are skipped when full is false.
func (s *CheckoutService) validateForm(form *model.OrderForm, full bool) error {
	var err error
	if full {
		err = s.validate.Struct(form)
	} else {
		err = s.validate.StructExcept(form, "Email")
	}
	if err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			fe := invalid[0]
			return &FieldError{Field: fe.Field(), Message: fieldMessage(fe)}
		}
		return err
	}

	if !phonePattern.MatchString(form.Phone) {
		return &FieldError{Field: "Phone", Message: "must be a valid 10-digit Indian mobile number"}
	}

	// Server-side proxy for the storefront's "confirm this location" step.
	if full && form.MapURL == "" {
		return &FieldError{Field: "MapURL", Message: "map location must be confirmed"}
	}

	if !model.ServiceableZipCodes[form.ZipCode] {
		return ErrAreaNotServed
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " digits"
	case "numeric":
		return "must contain only digits"
	case "min":
		return "is below the minimum of " + fe.Param()
	default:
		return "is invalid"
	}
}

// CreateSession validates the form, builds the provider request and creates a
// hosted payment session. The single-product variant is selected when
// Quantity is set; otherwise the two-line veg/non-veg variant applies.
func (s *CheckoutService) CreateSession(ctx context.Context, form *model.OrderForm) (*dodo.Payment, error) {
	if err := s.ValidateForm(form); err != nil {
		return nil, err
	}

	req := &dodo.PaymentRequest{
		Billing: dodo.Billing{
			City:    model.BillingCity,
			Country: s.resolveCountry(form.CountryCode),
			State:   model.BillingState,
			Street:  model.BillingStreet,
			Zipcode: model.BillingZipcode,
		},
		Customer: dodo.Customer{
			Email:             form.Email,
			Name:              form.Email,
			CreateNewCustomer: true,
			PhoneNumber:       form.Phone,
		},
		PaymentLink: true,
		ReturnURL:   s.cfg.BaseURL + "/confirmed",
		Metadata:    s.metadataFor(form),
	}

	if form.Quantity > 0 {
		if s.cfg.NonVegProductID == "" {
			return nil, ErrProductNotConfigured
		}
		req.ProductCart = []dodo.CartItem{{ProductID: s.cfg.NonVegProductID, Quantity: form.Quantity}}
		req.AllowedPaymentMethodTypes = []string{"debit", "credit", "upi_collect", "google_pay", "cashapp"}
	} else {
		cart, err := s.buildCart(form)
		if err != nil {
			return nil, err
		}
		req.ProductCart = cart
	}

	payment, err := s.client.CreatePayment(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return payment, nil
}

// buildCart assembles the two-product cart, keeping only lines with positive
// quantity. An order with neither line is rejected rather than handed to the
// provider as an empty cart.
func (s *CheckoutService) buildCart(form *model.OrderForm) ([]dodo.CartItem, error) {
	if form.NonVegQuantity <= 0 && form.VegQuantity <= 0 {
		return nil, ErrEmptyCart
	}

	var cart []dodo.CartItem
	if form.NonVegQuantity > 0 {
		if s.cfg.NonVegProductID == "" {
			return nil, ErrProductNotConfigured
		}
		cart = append(cart, dodo.CartItem{ProductID: s.cfg.NonVegProductID, Quantity: form.NonVegQuantity})
	}
	if form.VegQuantity > 0 {
		if s.cfg.VegProductID == "" {
			return nil, ErrProductNotConfigured
		}
		cart = append(cart, dodo.CartItem{ProductID: s.cfg.VegProductID, Quantity: form.VegQuantity})
	}
	return cart, nil
}

// metadataFor echoes every form field verbatim so the webhook can rebuild the
// order without a database.
func (s *CheckoutService) metadataFor(form *model.OrderForm) map[string]string {
	md := map[string]string{
		"orderRef": uuid.NewString(),
		"email":    form.Email,
		"phone":    form.Phone,
		"address":  form.Address,
		"zipCode":  form.ZipCode,
		"map":      form.MapURL,
	}
	if form.Quantity > 0 {
		md["quantity"] = strconv.Itoa(form.Quantity)
	} else {
		md["nonVegQuantity"] = strconv.Itoa(form.NonVegQuantity)
		md["vegQuantity"] = strconv.Itoa(form.VegQuantity)
	}
	return md
}

func (s *CheckoutService) resolveCountry(code string) string {
	if code != "" && s.supportedCountries[code] {
		return code
	}
	return model.BillingCountry
}

// BuildCheckoutRedirect returns the hosted checkout URL for the serverless
// flow: the browser navigates straight to the provider with the order encoded
// in query parameters and redundant hosted-form fields disabled.
func (s *CheckoutService) BuildCheckoutRedirect(form *model.OrderForm) (string, error) {
	if err := s.validateForm(form, false); err != nil {
		return "", err
	}
	if s.cfg.NonVegProductID == "" {
		return "", ErrProductNotConfigured
	}
	if form.Quantity <= 0 {
		return "", ErrEmptyCart
	}

	u, err := url.Parse(s.cfg.DodoCheckoutBaseURL + "/" + s.cfg.NonVegProductID)
	if err != nil {
		return "", fmt.Errorf("parse checkout base url: %w", err)
	}

	q := u.Query()
	q.Set("quantity", strconv.Itoa(form.Quantity))
	q.Set("redirect_url", s.cfg.BaseURL)
	q.Set("fullName", "Ramen Guy")
	q.Set("country", model.BillingCountry)
	q.Set("city", "Bangalore")
	q.Set("addressLine", form.Address)
	q.Set("state", model.BillingState)
	q.Set("zipCode", form.ZipCode)
	q.Set("phone_number", form.Phone)
	q.Set("metadata_phone", form.Phone)
	for _, flag := range []string{
		"disableFullName", "disableFirstName", "disableLastName",
		"disableCountry", "disableAddressLine", "disableCity",
		"disableState", "disableZipCode",
	} {
		q.Set(flag, "True")
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
