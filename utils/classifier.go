package utils

import "strings"

var purchaseOrderKeywords = []string{"purchase order", "po number", "vendor", "quantity"}

var invoiceKeywords = []string{"invoice", "invoice number", "tax", "total amount"}

// Classification is the routing decision for one document. The two predicates
// are independent: a document may satisfy both, or neither. This is a coarse
// pre-filter gate, not a mutually exclusive classification.
type Classification struct {
	PurchaseOrder bool `json:"purchase_order"`
	Invoice       bool `json:"invoice"`
}

// IsPurchaseOrder reports whether text matches at least one PO keyword.
func IsPurchaseOrder(text string) bool {
	return matchesAny(text, purchaseOrderKeywords)
}

// IsInvoice reports whether text matches at least one invoice keyword.
func IsInvoice(text string) bool {
	return matchesAny(text, invoiceKeywords)
}

// Classify evaluates both predicates against text.
func Classify(text string) Classification {
	return Classification{
		PurchaseOrder: IsPurchaseOrder(text),
		Invoice:       IsInvoice(text),
	}
}

func matchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
