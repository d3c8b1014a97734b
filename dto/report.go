package dto

// Issue is one discrepancy surfaced by reconciliation.
type Issue struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ReconciliationSummary is the per-check verdict block of a report.
type ReconciliationSummary struct {
	TaxCheck    string `json:"tax_check"`
	AmountMatch bool   `json:"amount_match"`
	VendorMatch bool   `json:"vendor_match"`
}

// DiscrepancyReport is the output of reconciling a PO against an invoice.
// Status is "success" only when zero issues were recorded.
type DiscrepancyReport struct {
	Status    string                `json:"status"`
	Issues    []Issue               `json:"issues"`
	NextSteps []string              `json:"next_steps"`
	Summary   ReconciliationSummary `json:"reconciliation_summary"`
}
