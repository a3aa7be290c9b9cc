package model

import "github.com/shopspring/decimal"

// Menu prices in rupees. The hosted checkout holds its own price list; these
// are only used for receipt rendering and display totals.
var (
	NonVegPrice = decimal.NewFromInt(599)
	VegPrice    = decimal.NewFromInt(499)
)

const (
	NonVegItemName = "Tori Paitan Ramen | Non-Veg"
	VegItemName    = "Veg Miso Ramen | Veg"

	MaxQuantity = 6
)

// Delivery coverage is a fixed set of Indiranagar-area pin codes.
var ServiceableZipCodes = map[string]bool{
	"560038": true,
	"560075": true,
	"560017": true,
	"560093": true,
	"560008": true,
	"560071": true,
}

// Fixed billing block sent with every payment session.
const (
	BillingCity    = "Bengaluru"
	BillingState   = "KA"
	BillingCountry = "IN"
	BillingStreet  = "100 Ft Road"
	BillingZipcode = "560075"
)
