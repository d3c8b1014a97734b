package service

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/enterpriseintelligence2025/accounting-copilot-backend/dto"
	"github.com/enterpriseintelligence2025/accounting-copilot-backend/utils"
)

type PDFProcessor interface {
	ExtractDocument(pdfData []byte) (*dto.NormalizedDocument, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

// cellGap is the horizontal gap in points beyond which two words on the same
// row belong to different table cells.
const cellGap = 12.0

// ExtractDocument parses the PDF bytes into a NormalizedDocument. A corrupt
// or unreadable file is an ExtractionError; a page without tables or text
// simply contributes nothing.
func (p *pdfProcessor) ExtractDocument(pdfData []byte) (*dto.NormalizedDocument, error) {
	if err := validatePDF(pdfData); err != nil {
		return nil, &dto.ExtractionError{Err: err}
	}

	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return nil, &dto.ExtractionError{Err: err}
	}

	totalPage := r.NumPage()
	pages := make([]dto.RawPage, 0, totalPage)
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		pg := r.Page(pageIndex)
		if pg.V.IsNull() {
			pages = append(pages, dto.RawPage{})
			continue
		}
		rows, err := extractRows(pg)
		if err != nil {
			log.Printf("Text extraction failed on page %d: %v", pageIndex, err)
			pages = append(pages, dto.RawPage{})
			continue
		}
		pages = append(pages, buildPage(rows))
	}

	return BuildDocument(pages), nil
}

// validatePDF writes the upload to a temporary file and runs a structural
// check over it. The file is removed on every exit path.
func validatePDF(pdfData []byte) error {
	tmpFile, err := os.CreateTemp("", "doc-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(pdfData); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write pdf data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	return api.ValidateFile(tmpFile.Name(), model.NewDefaultConfiguration())
}

type textWord struct {
	x, w float64
	s    string
}

type textRow struct {
	words []textWord
}

func extractRows(page pdf.Page) ([]textRow, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, err
	}

	out := make([]textRow, 0, len(rows))
	for _, row := range rows {
		var tr textRow
		for _, word := range row.Content {
			tr.words = append(tr.words, textWord{x: word.X, w: word.W, s: word.S})
		}
		out = append(out, tr)
	}
	return out, nil
}

// splitCells groups a row's words into cells: words separated by more than
// cellGap start a new cell, everything closer is glued together.
func splitCells(row textRow) []string {
	var cells []string
	var cur strings.Builder
	var prevEnd float64

	for i, w := range row.words {
		if i > 0 && w.x-prevEnd > cellGap {
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
		cur.WriteString(w.s)
		prevEnd = w.x + w.w
	}
	if cur.Len() > 0 {
		cells = append(cells, strings.TrimSpace(cur.String()))
	}
	return cells
}

// buildPage separates a page's rows into bordered-table regions and running
// text. A run of at least two consecutive rows with the same cell count (>=2)
// is treated as one table; everything else is text, joined line by line.
func buildPage(rows []textRow) dto.RawPage {
	cellRows := make([][]string, len(rows))
	for i, r := range rows {
		cellRows[i] = splitCells(r)
	}

	var page dto.RawPage
	var textLines []string

	i := 0
	for i < len(cellRows) {
		if n := len(cellRows[i]); n >= 2 {
			j := i
			for j < len(cellRows) && len(cellRows[j]) == n {
				j++
			}
			if j-i >= 2 {
				page.Tables = append(page.Tables, dto.Table{Rows: cellRows[i:j]})
				i = j
				continue
			}
		}
		if line := strings.TrimSpace(strings.Join(cellRows[i], " ")); line != "" {
			textLines = append(textLines, line)
		}
		i++
	}

	page.Text = strings.Join(textLines, "\n")
	return page
}

// BuildDocument composes per-page extraction results into the canonical
// NormalizedDocument: page texts newline-joined (empty pages skipped), table
// rows flattened in encounter order with the first row of each table as its
// header, and the field rules applied to the joined text.
func BuildDocument(pages []dto.RawPage) *dto.NormalizedDocument {
	var texts []string
	var items []map[string]*string

	for _, page := range pages {
		if strings.TrimSpace(page.Text) != "" {
			texts = append(texts, page.Text)
		}
		for _, table := range page.Tables {
			items = append(items, tableRecords(table)...)
		}
	}

	rawText := strings.Join(texts, "\n")
	return &dto.NormalizedDocument{
		RawText:   rawText,
		LineItems: items,
		Metadata:  utils.Apply(utils.MetadataRules, rawText),
		Taxes:     utils.Apply(utils.TaxRules, rawText),
		Totals:    utils.Apply(utils.TotalRules, rawText),
	}
}

// tableRecords turns one table into header-keyed records, one per data row.
// Blank cells map to nil.
func tableRecords(table dto.Table) []map[string]*string {
	if len(table.Rows) < 2 {
		return nil
	}

	headers := make([]string, len(table.Rows[0]))
	for i, h := range table.Rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	var records []map[string]*string
	for _, row := range table.Rows[1:] {
		record := make(map[string]*string, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				v := strings.TrimSpace(row[i])
				record[header] = &v
			} else {
				record[header] = nil
			}
		}
		records = append(records, record)
	}
	return records
}
