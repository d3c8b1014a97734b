package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/enterpriseintelligence2025/accounting-copilot-backend/dto"
)

// ReconcileService compares a purchase order against a vendor invoice
// field by field and produces a DiscrepancyReport. All checks accumulate
// findings deterministically; nothing stops at the first mismatch.
type ReconcileService struct {
	rules dto.GSTRuleset
}

func NewReconcileService(rules dto.GSTRuleset) *ReconcileService {
	return &ReconcileService{rules: rules}
}

var defaultNextSteps = []string{
	"Review flagged line items",
	"Confirm vendor GSTIN",
}

// Reconcile diffs two structured records. Fields that are empty on the PO
// side are skipped: extraction sparsity is not a discrepancy.
func (s *ReconcileService) Reconcile(po, inv *dto.StructuredInvoice) *dto.DiscrepancyReport {
	issues := []dto.Issue{}
	var extraSteps []string

	// 1. Scalar field diff. Dates compare exactly, free text is
	// case-insensitive and whitespace-normalized.
	if po.PONumber != "" && inv.PONumber != "" && !normEqual(po.PONumber, inv.PONumber) {
		issues = append(issues, fieldMismatch("po_number", po.PONumber, inv.PONumber))
	}
	if po.InvoiceDate != "" && inv.InvoiceDate != "" &&
		strings.TrimSpace(po.InvoiceDate) != strings.TrimSpace(inv.InvoiceDate) {
		issues = append(issues, fieldMismatch("invoice_date", po.InvoiceDate, inv.InvoiceDate))
	}
	if po.DeliveryDate != "" && inv.DeliveryDate != "" &&
		strings.TrimSpace(po.DeliveryDate) != strings.TrimSpace(inv.DeliveryDate) {
		issues = append(issues, fieldMismatch("delivery_date", po.DeliveryDate, inv.DeliveryDate))
	}
	if po.PaymentTerms != "" && inv.PaymentTerms != "" && !normEqual(po.PaymentTerms, inv.PaymentTerms) {
		issues = append(issues, fieldMismatch("payment_terms", po.PaymentTerms, inv.PaymentTerms))
	}
	if po.AmountInWords != "" && inv.AmountInWords != "" && !normEqual(po.AmountInWords, inv.AmountInWords) {
		issues = append(issues, fieldMismatch("amount_in_words", po.AmountInWords, inv.AmountInWords))
	}

	// 2. Tax-mode check against the invoice's stated split.
	taxCheck, taxIssue := s.checkTaxMode(inv)
	if taxIssue != nil {
		issues = append(issues, *taxIssue)
		extraSteps = append(extraSteps, "Verify GST split against vendor and ship-to states")
	}

	// 3. Amount check: recompute from line items and compare across documents.
	amountMatch, amountIssues := s.checkAmounts(po, inv)
	if len(amountIssues) > 0 {
		issues = append(issues, amountIssues...)
		extraSteps = append(extraSteps, "Recalculate invoice totals from line items")
	}

	// 4. Line-item diff.
	lineIssues := diffLineItems(po.LineItems, inv.LineItems)
	issues = append(issues, lineIssues...)

	// 5. Vendor identity.
	vendorMatch := true
	if po.Vendor.Name != "" && inv.Vendor.Name != "" && !normEqual(po.Vendor.Name, inv.Vendor.Name) {
		vendorMatch = false
		issues = append(issues, fieldMismatch("vendor.name", po.Vendor.Name, inv.Vendor.Name))
	}
	if po.Vendor.GSTIN != nil && inv.Vendor.GSTIN != nil &&
		!strings.EqualFold(strings.TrimSpace(*po.Vendor.GSTIN), strings.TrimSpace(*inv.Vendor.GSTIN)) {
		vendorMatch = false
		issues = append(issues, fieldMismatch("vendor.gstin", *po.Vendor.GSTIN, *inv.Vendor.GSTIN))
	}

	report := &dto.DiscrepancyReport{
		Issues: issues,
		Summary: dto.ReconciliationSummary{
			TaxCheck:    taxCheck,
			AmountMatch: amountMatch,
			VendorMatch: vendorMatch,
		},
	}
	if len(issues) == 0 {
		report.Status = dto.StatusSuccess
		report.NextSteps = []string{}
	} else {
		report.Status = dto.StatusFailure
		report.NextSteps = append(append([]string{}, defaultNextSteps...), dedupe(extraSteps)...)
	}
	return report
}

// ReconcileExtracted reconciles a normalized PO extraction (unparsed field
// mappings) against a structured invoice by lifting the extraction into a
// sparse candidate first.
func (s *ReconcileService) ReconcileExtracted(po *dto.NormalizedDocument, inv *dto.StructuredInvoice) *dto.DiscrepancyReport {
	return s.Reconcile(CandidateFromDocument(po), inv)
}

func (s *ReconcileService) checkTaxMode(inv *dto.StructuredInvoice) (string, *dto.Issue) {
	same := sameState(inv.Vendor, inv.ShipTo)
	verdict := "different-state: IGST expected"
	if same {
		verdict = "same-state: CGST+SGST expected"
	}

	expectedTax := inv.Subtotal.Mul(s.rules.TotalRate)
	observedTax := inv.Taxes.CGST.Add(inv.Taxes.SGST).Add(inv.Taxes.IGST)

	ok := withinTolerance(observedTax, expectedTax)
	if same && !inv.Taxes.IGST.IsZero() {
		ok = false
	}
	if !same && (!inv.Taxes.CGST.IsZero() || !inv.Taxes.SGST.IsZero()) {
		ok = false
	}

	if ok {
		return verdict + "; observed split consistent", nil
	}
	return verdict + "; observed split inconsistent", &dto.Issue{
		Type: "tax_mismatch",
		Description: fmt.Sprintf(
			"expected total tax %s on subtotal %s, observed cgst=%s sgst=%s igst=%s",
			expectedTax, inv.Subtotal, inv.Taxes.CGST, inv.Taxes.SGST, inv.Taxes.IGST),
	}
}

func (s *ReconcileService) checkAmounts(po, inv *dto.StructuredInvoice) (bool, []dto.Issue) {
	var issues []dto.Issue
	match := true

	if len(inv.LineItems) > 0 {
		recomputed := decimal.Zero
		for _, item := range inv.LineItems {
			recomputed = recomputed.Add(item.UnitRate.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		if !withinTolerance(recomputed, inv.Subtotal) {
			match = false
			issues = append(issues, dto.Issue{
				Type: "amount_mismatch",
				Description: fmt.Sprintf(
					"invoice subtotal %s does not equal recomputed line total %s", inv.Subtotal, recomputed),
			})
		}
	}

	observedTax := inv.Taxes.CGST.Add(inv.Taxes.SGST).Add(inv.Taxes.IGST)
	if expectedTotal := inv.Subtotal.Add(observedTax); !withinTolerance(inv.TotalAmount, expectedTotal) {
		match = false
		issues = append(issues, dto.Issue{
			Type: "amount_mismatch",
			Description: fmt.Sprintf(
				"invoice total %s does not equal subtotal plus taxes (%s)", inv.TotalAmount, expectedTotal),
		})
	}

	if !po.Subtotal.IsZero() && !withinTolerance(po.Subtotal, inv.Subtotal) {
		match = false
		issues = append(issues, dto.Issue{
			Type: "amount_mismatch",
			Description: fmt.Sprintf(
				"PO subtotal %s does not equal invoice subtotal %s", po.Subtotal, inv.Subtotal),
		})
	}
	if !po.TotalAmount.IsZero() && !withinTolerance(po.TotalAmount, inv.TotalAmount) {
		match = false
		issues = append(issues, dto.Issue{
			Type: "amount_mismatch",
			Description: fmt.Sprintf(
				"PO total %s does not equal invoice total %s", po.TotalAmount, inv.TotalAmount),
		})
	}
	return match, issues
}

// diffLineItems pairs items by sno, falling back to a normalized description
// match, and emits one issue per mismatched pair plus one per unpaired item.
func diffLineItems(po, inv []dto.LineItem) []dto.Issue {
	var issues []dto.Issue
	matched := make(map[int]bool, len(inv))

	find := func(item dto.LineItem) int {
		if item.SNo > 0 {
			for j, cand := range inv {
				if !matched[j] && cand.SNo == item.SNo {
					return j
				}
			}
		}
		for j, cand := range inv {
			if !matched[j] && normEqual(cand.Description, item.Description) {
				return j
			}
		}
		return -1
	}

	for _, item := range po {
		j := find(item)
		if j < 0 {
			issues = append(issues, dto.Issue{
				Type:        "line_item_missing",
				Description: fmt.Sprintf("PO line %d (%s) is absent from the invoice", item.SNo, item.Description),
			})
			continue
		}
		matched[j] = true
		cand := inv[j]

		var diffs []string
		if cand.Quantity != item.Quantity {
			diffs = append(diffs, fmt.Sprintf("quantity %d vs %d", item.Quantity, cand.Quantity))
		}
		if !cand.UnitRate.Equal(item.UnitRate) {
			diffs = append(diffs, fmt.Sprintf("unit_rate %s vs %s", item.UnitRate, cand.UnitRate))
		}
		if !withinTolerance(cand.Amount, item.Amount) {
			diffs = append(diffs, fmt.Sprintf("amount %s vs %s", item.Amount, cand.Amount))
		}
		if len(diffs) > 0 {
			issues = append(issues, dto.Issue{
				Type:        "line_item_mismatch",
				Description: fmt.Sprintf("line %d (%s): %s", item.SNo, item.Description, strings.Join(diffs, ", ")),
			})
		}
	}

	for j, cand := range inv {
		if !matched[j] {
			issues = append(issues, dto.Issue{
				Type:        "line_item_missing",
				Description: fmt.Sprintf("invoice line %d (%s) is absent from the PO", cand.SNo, cand.Description),
			})
		}
	}
	return issues
}

// CandidateFromDocument lifts a NormalizedDocument into a sparse
// StructuredInvoice for reconciliation. Fields whose pattern never matched
// stay empty and are skipped by the diff.
func CandidateFromDocument(doc *dto.NormalizedDocument) *dto.StructuredInvoice {
	meta := func(key string) string {
		if v := doc.Metadata[key]; v != nil {
			return strings.TrimSpace(*v)
		}
		return ""
	}

	inv := &dto.StructuredInvoice{
		PONumber:     meta("po_number"),
		DeliveryDate: meta("delivery_date"),
		PaymentTerms: meta("payment_terms"),
	}
	inv.Vendor.Name = meta("vendor_name")
	if g := doc.Metadata["vendor_gstin"]; g != nil {
		inv.Vendor.GSTIN = g
	}
	if v := doc.Totals["amount_in_words"]; v != nil {
		inv.AmountInWords = strings.TrimSpace(*v)
	}
	if d, ok := parseMoney(doc.Taxes["cgst"]); ok {
		inv.Taxes.CGST = d
	}
	if d, ok := parseMoney(doc.Taxes["sgst"]); ok {
		inv.Taxes.SGST = d
	}
	if d, ok := parseMoney(doc.Totals["total_value"]); ok {
		inv.TotalAmount = d
	}
	for _, row := range doc.LineItems {
		if item, ok := lineItemFromRow(row); ok {
			inv.LineItems = append(inv.LineItems, item)
		}
	}
	return inv
}

var lineItemAliases = map[string][]string{
	"sno":         {"sno", "s.no", "s no", "sl no", "sl.no", "sr no", "sr.no"},
	"description": {"description", "item description", "item", "particulars"},
	"hsn_code":    {"hsn code", "hsn", "hsn/sac"},
	"quantity":    {"quantity", "qty"},
	"unit_rate":   {"unit rate", "rate", "unit price", "price"},
	"amount":      {"amount", "total", "line total", "value"},
}

func lineItemFromRow(row map[string]*string) (dto.LineItem, bool) {
	lookup := func(field string) string {
		for header, val := range row {
			if val == nil {
				continue
			}
			h := strings.ToLower(strings.TrimSpace(header))
			for _, alias := range lineItemAliases[field] {
				if h == alias {
					return strings.TrimSpace(*val)
				}
			}
		}
		return ""
	}

	var item dto.LineItem
	item.Description = lookup("description")
	item.HSNCode = lookup("hsn_code")
	if n, err := strconv.Atoi(lookup("sno")); err == nil {
		item.SNo = n
	}
	qty, qtyErr := strconv.Atoi(lookup("quantity"))
	if qtyErr == nil {
		item.Quantity = qty
	}
	if d, ok := parseDecimalString(lookup("unit_rate")); ok {
		item.UnitRate = d
	}
	if d, ok := parseDecimalString(lookup("amount")); ok {
		item.Amount = d
	}

	// A row with neither a description nor a quantity is not a line item.
	if item.Description == "" && qtyErr != nil {
		return dto.LineItem{}, false
	}
	return item, true
}

func parseMoney(v *string) (decimal.Decimal, bool) {
	if v == nil {
		return decimal.Decimal{}, false
	}
	return parseDecimalString(*v)
}

func parseDecimalString(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func fieldMismatch(field, poValue, invValue string) dto.Issue {
	return dto.Issue{
		Type:        "field_mismatch",
		Description: fmt.Sprintf("%s differs: PO has %q, invoice has %q", field, poValue, invValue),
	}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func normEqual(a, b string) bool {
	norm := func(s string) string {
		return strings.ToLower(whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " "))
	}
	return norm(a) == norm(b)
}

func dedupe(steps []string) []string {
	seen := make(map[string]bool, len(steps))
	out := steps[:0]
	for _, s := range steps {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
