package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enterpriseintelligence2025/accounting-copilot-backend/dto"
)

func newTestValidator(t *testing.T) *InvoiceValidator {
	t.Helper()
	v, err := NewInvoiceValidator(dto.DefaultGSTRuleset())
	require.NoError(t, err)
	return v
}

// validCandidate is an internally consistent intrastate invoice:
// Karnataka to Karnataka, subtotal 1000, 9% CGST + 9% SGST, total 1180.
func validCandidate() map[string]any {
	return map[string]any{
		"po_number":       "PO-2025-0042",
		"invoice_date":    "2025-08-12",
		"delivery_date":   "2025-09-30",
		"payment_terms":   "Net 30",
		"amount_in_words": "One Thousand One Hundred Eighty Rupees Only",
		"vendor": map[string]any{
			"name": "Acme Industrial Supplies", "address": "12 MG Road, Bengaluru",
			"gstin": "29ABCDE1234F1Z5", "state": "Karnataka",
		},
		"ship_to": map[string]any{
			"name": "Globex Manufacturing", "address": "4 Industrial Estate, Mysuru",
			"gstin": nil, "state": "Karnataka",
		},
		"sold_to": map[string]any{
			"name": "Globex Manufacturing", "address": "4 Industrial Estate, Mysuru",
			"gstin": "29FGHIJ5678K2Z9", "state": "Karnataka",
		},
		"line_items": []any{
			map[string]any{
				"sno": 1, "description": "Steel Bolts", "hsn_code": "7318",
				"quantity": 10, "unit_rate": 100.00, "amount": 1000.00,
			},
		},
		"subtotal":     1000.00,
		"taxes":        map[string]any{"cgst": 90.00, "sgst": 90.00, "igst": 0.00},
		"total_amount": 1180.00,
		"notes":        []any{"Payment due within 30 days"},
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestValidateAcceptsIntrastateInvoice(t *testing.T) {
	v := newTestValidator(t)

	inv, err := v.Validate(mustJSON(t, validCandidate()))

	require.NoError(t, err)
	assert.Equal(t, "PO-2025-0042", inv.PONumber)
	assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, inv.Taxes.CGST.Equal(decimal.NewFromInt(90)))
	assert.True(t, inv.Taxes.IGST.IsZero())
}

func TestValidateRejectsIGSTOnIntrastate(t *testing.T) {
	v := newTestValidator(t)
	candidate := validCandidate()
	candidate["taxes"] = map[string]any{"cgst": 90.00, "sgst": 90.00, "igst": 18.00}

	_, err := v.Validate(mustJSON(t, candidate))

	var taxErr *dto.TaxInvariantViolation
	require.True(t, errors.As(err, &taxErr))
	assert.NotEmpty(t, taxErr.Issues)
}

func TestValidateAcceptsInterstateInvoice(t *testing.T) {
	v := newTestValidator(t)
	candidate := validCandidate()
	candidate["ship_to"] = map[string]any{
		"name": "Globex Manufacturing", "address": "7 Dock Road, Mumbai",
		"gstin": nil, "state": "Maharashtra",
	}
	candidate["taxes"] = map[string]any{"cgst": 0.00, "sgst": 0.00, "igst": 180.00}

	inv, err := v.Validate(mustJSON(t, candidate))

	require.NoError(t, err)
	assert.True(t, inv.Taxes.IGST.Equal(decimal.NewFromInt(180)))
}

func TestValidateRejectsSplitTaxOnInterstate(t *testing.T) {
	v := newTestValidator(t)
	candidate := validCandidate()
	candidate["ship_to"] = map[string]any{
		"name": "Globex Manufacturing", "address": "7 Dock Road, Mumbai",
		"gstin": nil, "state": "Maharashtra",
	}

	_, err := v.Validate(mustJSON(t, candidate))

	var taxErr *dto.TaxInvariantViolation
	require.True(t, errors.As(err, &taxErr))
}

func TestValidateRejectsInconsistentLineItem(t *testing.T) {
	v := newTestValidator(t)
	candidate := validCandidate()
	candidate["line_items"] = []any{
		map[string]any{
			"sno": 1, "description": "Steel Bolts", "hsn_code": "7318",
			"quantity": 3, "unit_rate": 100.00, "amount": 290.00,
		},
	}

	_, err := v.Validate(mustJSON(t, candidate))

	var taxErr *dto.TaxInvariantViolation
	require.True(t, errors.As(err, &taxErr))
	assert.Contains(t, taxErr.Issues[0], "line_items[0]")
}

func TestValidateReportsAllMissingFields(t *testing.T) {
	v := newTestValidator(t)
	candidate := validCandidate()
	delete(candidate, "po_number")
	vendor := candidate["vendor"].(map[string]any)
	delete(vendor, "state")

	_, err := v.Validate(mustJSON(t, candidate))

	var schemaErr *dto.SchemaValidationError
	require.True(t, errors.As(err, &schemaErr))

	paths := make([]string, 0, len(schemaErr.Fields))
	for _, f := range schemaErr.Fields {
		paths = append(paths, f.Path)
	}
	assert.Contains(t, paths, "/po_number")
	assert.Contains(t, paths, "/vendor/state")
}

func TestValidateTaxDefaultsToZero(t *testing.T) {
	v := newTestValidator(t)
	candidate := validCandidate()
	candidate["ship_to"] = map[string]any{
		"name": "Globex Manufacturing", "address": "7 Dock Road, Mumbai",
		"gstin": nil, "state": "Maharashtra",
	}
	candidate["taxes"] = map[string]any{"igst": 180.00}

	inv, err := v.Validate(mustJSON(t, candidate))

	require.NoError(t, err)
	assert.True(t, inv.Taxes.CGST.IsZero())
	assert.True(t, inv.Taxes.SGST.IsZero())
}

func TestValidateRejectsNonJSON(t *testing.T) {
	v := newTestValidator(t)

	_, err := v.Validate([]byte("Sure! Here is the invoice you asked for"))

	var backendErr *dto.GenerationBackendError
	assert.True(t, errors.As(err, &backendErr))
}

func TestValidateWithConfiguredRate(t *testing.T) {
	rules := dto.GSTRuleset{TotalRate: decimal.NewFromFloat(0.12)}
	v, err := NewInvoiceValidator(rules)
	require.NoError(t, err)

	candidate := validCandidate()
	candidate["taxes"] = map[string]any{"cgst": 60.00, "sgst": 60.00, "igst": 0.00}
	candidate["total_amount"] = 1120.00

	_, err = v.Validate(mustJSON(t, candidate))
	assert.NoError(t, err)
}
