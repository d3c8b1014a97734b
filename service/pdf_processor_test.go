package service

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/enterpriseintelligence2025/accounting-copilot-backend/dto"
)

func TestBuildDocument(t *testing.T) {
	pages := []dto.RawPage{
		{
			Text: "Purchase Order Number: PO-1001\nPayment Terms: Net 30",
			Tables: []dto.Table{
				{Rows: [][]string{
					{" S.No ", "Description", "Quantity"},
					{"1", "Steel Bolts", "10"},
					{"2", "", "5"},
				}},
			},
		},
		{Text: ""},
		{Text: "Amount in Words: Five Hundred Rupees Only"},
	}

	doc := BuildDocument(pages)

	// Empty pages are skipped when joining.
	assert.Equal(t,
		"Purchase Order Number: PO-1001\nPayment Terms: Net 30\nAmount in Words: Five Hundred Rupees Only",
		doc.RawText)

	// Header row excluded, headers trimmed, blank cells null.
	assert.Len(t, doc.LineItems, 2)
	assert.Equal(t, "Steel Bolts", *doc.LineItems[0]["Description"])
	assert.Equal(t, "10", *doc.LineItems[0]["Quantity"])
	assert.Nil(t, doc.LineItems[1]["Description"])
	assert.Equal(t, "5", *doc.LineItems[1]["Quantity"])

	// Field rules run over the joined text.
	assert.Equal(t, "PO-1001", *doc.Metadata["po_number"])
	assert.Equal(t, "Net 30", *doc.Metadata["payment_terms"])
	assert.Equal(t, "Five Hundred Rupees Only", *doc.Totals["amount_in_words"])
	assert.Nil(t, doc.Taxes["cgst"])
}

func TestBuildDocumentIsIdempotent(t *testing.T) {
	pages := []dto.RawPage{
		{
			Text: "Purchase Order Number: PO-7\nTotal Tax: 18.00",
			Tables: []dto.Table{
				{Rows: [][]string{{"Item", "Qty"}, {"Bolts", "3"}}},
			},
		},
	}

	first := BuildDocument(pages)
	second := BuildDocument(pages)

	assert.Equal(t, first, second)
}

func TestBuildPageSeparatesTablesFromText(t *testing.T) {
	rows := []textRow{
		{words: []textWord{{x: 0, w: 90, s: "Purchase Order"}}},
		{words: []textWord{{x: 0, w: 30, s: "S.No"}, {x: 100, w: 70, s: "Description"}, {x: 300, w: 30, s: "Qty"}}},
		{words: []textWord{{x: 0, w: 10, s: "1"}, {x: 100, w: 40, s: "Steel "}, {x: 141, w: 30, s: "Bolts"}, {x: 300, w: 20, s: "10"}}},
		{words: []textWord{{x: 0, w: 10, s: "2"}, {x: 100, w: 40, s: "Washers"}, {x: 300, w: 20, s: "25"}}},
		{words: []textWord{{x: 0, w: 120, s: "Payment Terms: Net 30"}}},
	}

	page := buildPage(rows)

	assert.Equal(t, "Purchase Order\nPayment Terms: Net 30", page.Text)
	assert.Len(t, page.Tables, 1)
	assert.Equal(t, [][]string{
		{"S.No", "Description", "Qty"},
		{"1", "Steel Bolts", "10"},
		{"2", "Washers", "25"},
	}, page.Tables[0].Rows)
}

func TestSplitCellsGlueAndGap(t *testing.T) {
	row := textRow{words: []textWord{
		{x: 0, w: 40, s: "Steel "},
		{x: 41, w: 30, s: "Bolts"},
		{x: 200, w: 30, s: "10"},
	}}

	assert.Equal(t, []string{"Steel Bolts", "10"}, splitCells(row))
}

func TestExtractDocumentRejectsCorruptPDF(t *testing.T) {
	processor := NewPDFProcessor()

	doc, err := processor.ExtractDocument([]byte("definitely not a pdf"))

	assert.Nil(t, doc)
	var extractErr *dto.ExtractionError
	assert.True(t, errors.As(err, &extractErr))
}

func TestExtractDocumentRemovesTempFileOnError(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TMPDIR", tmpDir)
	processor := NewPDFProcessor()

	_, err := processor.ExtractDocument([]byte("definitely not a pdf"))
	assert.Error(t, err)

	entries, readErr := os.ReadDir(tmpDir)
	assert.NoError(t, readErr)
	assert.Empty(t, entries)
}
