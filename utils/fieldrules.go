package utils

import (
	"regexp"
	"strings"
)

// FieldRule binds a field name to a labeled pattern over the raw document
// text. Group selects the capture to keep. Rules are data, not control flow:
// each rule is matched independently against the full text, so evaluation
// order never affects the result.
type FieldRule struct {
	Name    string
	Pattern *regexp.Regexp
	Group   int
}

// Apply runs every rule against text and merges the results into one mapping.
// A rule that does not match stores nil under its name.
func Apply(rules []FieldRule, text string) map[string]*string {
	out := make(map[string]*string, len(rules))
	for _, rule := range rules {
		m := rule.Pattern.FindStringSubmatch(text)
		if len(m) > rule.Group {
			v := strings.TrimSpace(m[rule.Group])
			out[rule.Name] = &v
		} else {
			out[rule.Name] = nil
		}
	}
	return out
}

// MetadataRules recover the named scalar fields of a purchase order.
var MetadataRules = []FieldRule{
	{Name: "po_number", Pattern: regexp.MustCompile(`(?i)Purchase Order Number:\s*(.+)`), Group: 1},
	{Name: "po_date", Pattern: regexp.MustCompile(`(?i)Date:\s*(.+)`), Group: 1},
	{Name: "delivery_date", Pattern: regexp.MustCompile(`(?i)Delivery/Completion Date:\s*(.+)`), Group: 1},
	{Name: "payment_terms", Pattern: regexp.MustCompile(`(?i)Payment Terms:\s*(.+)`), Group: 1},
	{Name: "vendor_name", Pattern: regexp.MustCompile(`(?i)Vendor:\s*(?:Vendor No:.*\n)?(.+)`), Group: 1},
	{Name: "vendor_gstin", Pattern: regexp.MustCompile(`(?i)Vendor:.*GSTIN No\.:\s*(.+)`), Group: 1},
}

// TaxRules recover the stated tax totals as unparsed decimal strings.
var TaxRules = []FieldRule{
	{Name: "sgst", Pattern: regexp.MustCompile(`(?i)SGST.*?:\s*([\d,]+\.\d{2})`), Group: 1},
	{Name: "cgst", Pattern: regexp.MustCompile(`(?i)CGST.*?:\s*([\d,]+\.\d{2})`), Group: 1},
	{Name: "total_tax", Pattern: regexp.MustCompile(`(?i)Total Tax:\s*([\d,]+\.\d{2})`), Group: 1},
}

// TotalRules recover the document-level totals.
var TotalRules = []FieldRule{
	{Name: "total_value", Pattern: regexp.MustCompile(`(?i)Total Purchase Value.*?:\s*([\d,]+\.\d{2})`), Group: 1},
	{Name: "amount_in_words", Pattern: regexp.MustCompile(`(?i)Amount in Words:\s*(.+)`), Group: 1},
}
