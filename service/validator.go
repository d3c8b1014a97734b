package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"

	"github.com/enterpriseintelligence2025/accounting-copilot-backend/dto"
)

// InvoiceValidator enforces the flat structured-invoice schema and the GST
// tax-consistency invariants over a candidate record.
type InvoiceValidator struct {
	rules  dto.GSTRuleset
	schema *jsonschema.Schema
}

func NewInvoiceValidator(rules dto.GSTRuleset) (*InvoiceValidator, error) {
	b, err := json.Marshal(invoiceJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("invoice.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("invoice.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &InvoiceValidator{rules: rules, schema: schema}, nil
}

// Validate runs the structural pass (every offending field path collected in
// one go) and then the semantic GST pass. Structural problems come back as
// *dto.SchemaValidationError, inconsistent tax math as
// *dto.TaxInvariantViolation, unparsable input as *dto.GenerationBackendError.
func (v *InvoiceValidator) Validate(candidate []byte) (*dto.StructuredInvoice, error) {
	var instance any
	if err := json.Unmarshal(candidate, &instance); err != nil {
		return nil, &dto.GenerationBackendError{Err: err, Raw: string(candidate)}
	}

	if err := v.schema.Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, &dto.SchemaValidationError{Fields: flattenSchemaError(ve)}
		}
		return nil, err
	}

	var invoice dto.StructuredInvoice
	if err := json.Unmarshal(candidate, &invoice); err != nil {
		return nil, &dto.SchemaValidationError{Fields: []dto.FieldError{{Path: "", Message: err.Error()}}}
	}

	if issues := v.checkTaxInvariants(&invoice); len(issues) > 0 {
		return nil, &dto.TaxInvariantViolation{Issues: issues}
	}
	return &invoice, nil
}

// checkTaxInvariants collects every violated GST rule, never just the first.
func (v *InvoiceValidator) checkTaxInvariants(inv *dto.StructuredInvoice) []string {
	var issues []string

	itemSum := decimal.Zero
	for i, item := range inv.LineItems {
		expected := item.UnitRate.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if !withinTolerance(item.Amount, expected) {
			issues = append(issues, fmt.Sprintf(
				"line_items[%d]: amount %s does not equal quantity*unit_rate (%s)", i, item.Amount, expected))
		}
		itemSum = itemSum.Add(item.Amount)
	}
	if !withinTolerance(inv.Subtotal, itemSum) {
		issues = append(issues, fmt.Sprintf(
			"subtotal %s does not equal sum of line item amounts (%s)", inv.Subtotal, itemSum))
	}

	expectedTax := inv.Subtotal.Mul(v.rules.TotalRate)
	if sameState(inv.Vendor, inv.ShipTo) {
		if !inv.Taxes.IGST.IsZero() {
			issues = append(issues, fmt.Sprintf("intrastate supply must not carry IGST, got %s", inv.Taxes.IGST))
		}
		half := expectedTax.Div(decimal.NewFromInt(2))
		if !withinTolerance(inv.Taxes.CGST, half) || !withinTolerance(inv.Taxes.SGST, half) {
			issues = append(issues, fmt.Sprintf(
				"intrastate supply expects CGST=SGST=%s, got cgst=%s sgst=%s", half, inv.Taxes.CGST, inv.Taxes.SGST))
		}
	} else {
		if !inv.Taxes.CGST.IsZero() || !inv.Taxes.SGST.IsZero() {
			issues = append(issues, fmt.Sprintf(
				"interstate supply must not carry CGST/SGST, got cgst=%s sgst=%s", inv.Taxes.CGST, inv.Taxes.SGST))
		}
		if !withinTolerance(inv.Taxes.IGST, expectedTax) {
			issues = append(issues, fmt.Sprintf(
				"interstate supply expects IGST=%s, got %s", expectedTax, inv.Taxes.IGST))
		}
	}

	totalTax := inv.Taxes.CGST.Add(inv.Taxes.SGST).Add(inv.Taxes.IGST)
	if !withinTolerance(totalTax, expectedTax) {
		issues = append(issues, fmt.Sprintf(
			"total tax %s does not equal %s%% of subtotal (%s)",
			totalTax, v.rules.TotalRate.Mul(decimal.NewFromInt(100)), expectedTax))
	}
	if expectedTotal := inv.Subtotal.Add(totalTax); !withinTolerance(inv.TotalAmount, expectedTotal) {
		issues = append(issues, fmt.Sprintf(
			"total_amount %s does not equal subtotal plus taxes (%s)", inv.TotalAmount, expectedTotal))
	}
	return issues
}

var missingPropRe = regexp.MustCompile(`'([^']+)'`)

// flattenSchemaError walks the validation tree down to its leaves and emits
// one FieldError per offending field path. Missing required properties are
// expanded so each absent field gets its own path.
func flattenSchemaError(ve *jsonschema.ValidationError) []dto.FieldError {
	var fields []dto.FieldError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, cause := range e.Causes {
				walk(cause)
			}
			return
		}
		if strings.HasSuffix(e.KeywordLocation, "/required") {
			for _, m := range missingPropRe.FindAllStringSubmatch(e.Message, -1) {
				fields = append(fields, dto.FieldError{
					Path:    e.InstanceLocation + "/" + m[1],
					Message: "missing required field",
				})
			}
			return
		}
		fields = append(fields, dto.FieldError{Path: e.InstanceLocation, Message: e.Message})
	}
	walk(ve)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Path < fields[j].Path })
	return fields
}

// invoiceJSONSchema is the flat structured-invoice schema as a generic map,
// compiled once per validator.
func invoiceJSONSchema() map[string]any {
	party := func() map[string]any {
		return map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":    map[string]any{"type": "string", "minLength": 1},
				"address": map[string]any{"type": "string"},
				"gstin":   map[string]any{"type": []string{"string", "null"}},
				"state":   map[string]any{"type": "string", "minLength": 1},
			},
			"required": []string{"name", "address", "state"},
		}
	}

	lineItem := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sno":         map[string]any{"type": "integer", "minimum": 1},
			"description": map[string]any{"type": "string"},
			"hsn_code":    map[string]any{"type": "string"},
			"quantity":    map[string]any{"type": "integer", "exclusiveMinimum": 0},
			"unit_rate":   map[string]any{"type": "number", "minimum": 0},
			"amount":      map[string]any{"type": "number", "minimum": 0},
		},
		"required": []string{"sno", "description", "hsn_code", "quantity", "unit_rate", "amount"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"po_number":       map[string]any{"type": "string", "minLength": 1},
			"invoice_date":    map[string]any{"type": "string", "minLength": 1},
			"delivery_date":   map[string]any{"type": "string", "minLength": 1},
			"payment_terms":   map[string]any{"type": "string", "minLength": 1},
			"amount_in_words": map[string]any{"type": "string", "minLength": 1},
			"vendor":          party(),
			"ship_to":         party(),
			"sold_to":         party(),
			"line_items":      map[string]any{"type": "array", "items": lineItem},
			"subtotal":        map[string]any{"type": "number"},
			// cgst/sgst/igst default to 0 when absent, so taxes carries no
			// required list of its own.
			"taxes": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cgst": map[string]any{"type": "number", "minimum": 0},
					"sgst": map[string]any{"type": "number", "minimum": 0},
					"igst": map[string]any{"type": "number", "minimum": 0},
				},
			},
			"total_amount": map[string]any{"type": "number"},
			"notes":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{
			"po_number", "invoice_date", "delivery_date", "payment_terms", "amount_in_words",
			"vendor", "ship_to", "sold_to", "line_items", "subtotal", "total_amount", "notes",
		},
	}
}

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(dto.RoundingTolerance)
}

func sameState(a, b dto.Party) bool {
	return strings.EqualFold(strings.TrimSpace(a.State), strings.TrimSpace(b.State))
}
