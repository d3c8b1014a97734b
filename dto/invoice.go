package dto

import "github.com/shopspring/decimal"

// Party identifies one side of the transaction (vendor, ship-to, sold-to).
type Party struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	GSTIN   *string `json:"gstin,omitempty"`
	State   string  `json:"state"`
}

// LineItem is one billed row of the invoice.
type LineItem struct {
	SNo         int             `json:"sno"`
	Description string          `json:"description"`
	HSNCode     string          `json:"hsn_code"`
	Quantity    int             `json:"quantity"`
	UnitRate    decimal.Decimal `json:"unit_rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// Tax holds the GST components. Absent components default to zero.
type Tax struct {
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
	IGST decimal.Decimal `json:"igst"`
}

// StructuredInvoice is the validated flat invoice record.
type StructuredInvoice struct {
	PONumber      string `json:"po_number"`
	InvoiceDate   string `json:"invoice_date"`
	DeliveryDate  string `json:"delivery_date"`
	PaymentTerms  string `json:"payment_terms"`
	AmountInWords string `json:"amount_in_words"`

	Vendor Party `json:"vendor"`
	ShipTo Party `json:"ship_to"`
	SoldTo Party `json:"sold_to"`

	LineItems   []LineItem      `json:"line_items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Taxes       Tax             `json:"taxes"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Notes       []string        `json:"notes"`
}

// GSTRuleset is the injectable tax policy. The total rate is applied to the
// subtotal; intrastate transactions split it equally between CGST and SGST,
// interstate transactions carry it entirely as IGST.
type GSTRuleset struct {
	TotalRate decimal.Decimal
}

// DefaultGSTRuleset returns the standard 18% regime (9/9 intrastate split).
func DefaultGSTRuleset() GSTRuleset {
	return GSTRuleset{TotalRate: decimal.NewFromFloat(0.18)}
}

// RoundingTolerance is the fixed currency epsilon for amount comparisons.
var RoundingTolerance = decimal.NewFromFloat(0.01)
