package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderForm is one storefront submission. It lives for the duration of a
// single request; everything that must survive until the webhook rides in the
// payment session's metadata.
type OrderForm struct {
	Email          string `validate:"required,email"`
	Phone          string `validate:"required"`
	Address        string `validate:"required,max=499"`
	ZipCode        string `validate:"required,len=6,numeric"`
	MapURL         string
	Quantity       int `validate:"min=0,max=6"`
	NonVegQuantity int `validate:"min=0,max=6"`
	VegQuantity    int `validate:"min=0,max=6"`
	CountryCode    string
}

// OrderSummary is the flattened view of a succeeded payment handed to the
// spreadsheet recorder and the receipt emailer.
type OrderSummary struct {
	PaymentID    string
	OrderDate    time.Time
	CustomerName string
	// CustomerEmail is the provider's customer record and receives the
	// receipt; DeliveryEmail is what the customer typed into the form and
	// goes on the sheet row and the receipt's delivery block.
	CustomerEmail  string
	DeliveryEmail  string
	Phone          string
	Address        string
	ZipCode        string
	NonVegQuantity int
	VegQuantity    int
	TotalAmount    decimal.Decimal // rupees
	PaymentMethod  string
	MapLink        string
}

// NonVegSubtotal is quantity times unit price, zero when the line is absent.
func (s OrderSummary) NonVegSubtotal() decimal.Decimal {
	return NonVegPrice.Mul(decimal.NewFromInt(int64(s.NonVegQuantity)))
}

func (s OrderSummary) VegSubtotal() decimal.Decimal {
	return VegPrice.Mul(decimal.NewFromInt(int64(s.VegQuantity)))
}
