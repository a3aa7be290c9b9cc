package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"ramenco/internal/dodo"
	"ramenco/internal/model"
	"ramenco/internal/service"
)

type paymentResponse struct {
	ClientSecret string `json:"clientSecret"`
	PaymentLink  string `json:"paymentLink"`
	PaymentID    string `json:"paymentId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// CreatePaymentHandler accepts the storefront form and creates a hosted
// payment session.
func CreatePaymentHandler(checkoutSvc *service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form data")
			return
		}

		form := formFromValues(r.PostForm)

		payment, err := checkoutSvc.CreateSession(r.Context(), form)
		if err != nil {
			respondCheckoutError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, paymentResponse{
			ClientSecret: payment.ClientSecret,
			PaymentLink:  payment.PaymentLink,
			PaymentID:    payment.PaymentID,
		})
	}
}

// CheckoutRedirectHandler validates the form and returns the provider's
// hosted checkout URL for the serverless flow.
func CheckoutRedirectHandler(checkoutSvc *service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		form := formFromValues(r.URL.Query())

		redirect, err := checkoutSvc.BuildCheckoutRedirect(form)
		if err != nil {
			respondCheckoutError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"url": redirect})
	}
}

func respondCheckoutError(w http.ResponseWriter, err error) {
	var fieldErr *service.FieldError
	var apiErr *dodo.APIError

	switch {
	case errors.As(err, &fieldErr):
		writeError(w, http.StatusBadRequest, fieldErr.Error())
	case errors.Is(err, service.ErrAreaNotServed):
		writeError(w, http.StatusBadRequest, "we do not deliver to this area yet")
	case errors.Is(err, service.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cart has no items")
	case errors.Is(err, service.ErrProductNotConfigured):
		writeError(w, http.StatusBadRequest, "Invalid amount")
	case errors.As(err, &apiErr):
		slog.Error("payment creation rejected", "status", apiErr.StatusCode, "message", apiErr.Message)
		writeError(w, http.StatusInternalServerError, apiErr.Message)
	default:
		slog.Error("payment creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Payment creation failed")
	}
}

// formFromValues tolerates both field spellings the storefront has used over
// time (zipcode/zipCode, mapURL/mapUrl).
func formFromValues(values url.Values) *model.OrderForm {
	pick := func(keys ...string) string {
		for _, k := range keys {
			if v := values.Get(k); v != "" {
				return v
			}
		}
		return ""
	}

	return &model.OrderForm{
		Email:          pick("email"),
		Phone:          pick("phone"),
		Address:        pick("address"),
		ZipCode:        pick("zipcode", "zipCode"),
		MapURL:         pick("mapURL", "mapUrl"),
		Quantity:       atoiOrZero(pick("quantity")),
		NonVegQuantity: atoiOrZero(pick("nonVegQuantity")),
		VegQuantity:    atoiOrZero(pick("vegQuantity")),
		CountryCode:    pick("countryCode"),
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
