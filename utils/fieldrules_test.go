package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const samplePOText = `Purchase Order
Purchase Order Number: PO-2025-0042
Date: 12/08/2025
Delivery/Completion Date: 30/09/2025
Payment Terms: Net 30
Vendor: Acme Industrial Supplies
SGST @9%: 90.00
CGST @9%: 90.00
Total Tax: 180.00
Total Purchase Value (Incl. Tax): 1,180.00
Amount in Words: One Thousand One Hundred Eighty Rupees Only`

func TestApplyMetadataRules(t *testing.T) {
	meta := Apply(MetadataRules, samplePOText)

	assert.Equal(t, "PO-2025-0042", *meta["po_number"])
	assert.Equal(t, "12/08/2025", *meta["po_date"])
	assert.Equal(t, "30/09/2025", *meta["delivery_date"])
	assert.Equal(t, "Net 30", *meta["payment_terms"])
	assert.Equal(t, "Acme Industrial Supplies", *meta["vendor_name"])
	assert.Nil(t, meta["vendor_gstin"])
}

func TestApplyTaxAndTotalRules(t *testing.T) {
	taxes := Apply(TaxRules, samplePOText)
	totals := Apply(TotalRules, samplePOText)

	assert.Equal(t, "90.00", *taxes["sgst"])
	assert.Equal(t, "90.00", *taxes["cgst"])
	assert.Equal(t, "180.00", *taxes["total_tax"])
	assert.Equal(t, "1,180.00", *totals["total_value"])
	assert.Equal(t, "One Thousand One Hundred Eighty Rupees Only", *totals["amount_in_words"])
}

func TestApplyVendorGSTIN(t *testing.T) {
	meta := Apply(MetadataRules, "Vendor: Acme Industrial Supplies GSTIN No.: 29ABCDE1234F1Z5")

	assert.Equal(t, "29ABCDE1234F1Z5", *meta["vendor_gstin"])
}

func TestApplyAbsentFieldsYieldNil(t *testing.T) {
	for _, rules := range [][]FieldRule{MetadataRules, TaxRules, TotalRules} {
		out := Apply(rules, "nothing that resembles a labeled field")
		assert.Len(t, out, len(rules))
		for name, value := range out {
			assert.Nil(t, value, "expected nil for %s", name)
		}
	}
}

func TestApplyIsOrderIndependent(t *testing.T) {
	forward := Apply(MetadataRules, samplePOText)

	reversed := make([]FieldRule, len(MetadataRules))
	for i, r := range MetadataRules {
		reversed[len(MetadataRules)-1-i] = r
	}
	backward := Apply(reversed, samplePOText)

	assert.Equal(t, forward, backward)
}
