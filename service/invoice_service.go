package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/enterpriseintelligence2025/accounting-copilot-backend/client"
	"github.com/enterpriseintelligence2025/accounting-copilot-backend/dto"
	"github.com/enterpriseintelligence2025/accounting-copilot-backend/utils"
)

const invoiceSystemPrompt = `You are a financial agent whose job is to create a proper invoice in compliance with the Indian financial laws from the available purchase order information.

IMPORTANT OUTPUT RULES (MANDATORY):
- All financial figures MUST match the calculations exactly
- Do NOT round any numbers
- Output a SINGLE, FLAT JSON object
- DO NOT nest under keys like "purchase_order", "invoice", "data"
- ALL fields MUST exist at the top level
- Field names MUST EXACTLY match the schema
- Do NOT rename fields
- Do NOT omit fields
- If a value is missing, infer it or use null

TAX RULES (INDIA GST):
- If vendor.state == ship_to.state:
    cgst = 9%
    sgst = 9%
    igst = 0
- Else:
    igst = 18%
    cgst = 0
    sgst = 0
- Total tax must be exactly 18%

OUTPUT FORMAT:
Return ONLY valid JSON.
No explanations.
No markdown.
No nesting.

Schema (top-level):
{
  po_number: string,
  invoice_date: string,
  delivery_date: string,
  payment_terms: string,
  amount_in_words: string,
  vendor: { name, address, gstin, state },
  ship_to: { name, address, state },
  sold_to: { name, address, gstin, state },
  line_items: [
    { sno, description, hsn_code, quantity, unit_rate, amount }
  ],
  subtotal: number,
  taxes: { cgst, sgst, igst },
  total_amount: number,
  notes: string[]
}`

// InvoiceService orchestrates the extraction pipeline: PDF extraction,
// classification gate, structured generation, validation, reconciliation.
type InvoiceService struct {
	pdfProcessor PDFProcessor
	generator    client.Generator
	validator    *InvoiceValidator
	reconciler   *ReconcileService
}

func NewInvoiceService(
	pdfProcessor PDFProcessor,
	generator client.Generator,
	validator *InvoiceValidator,
	reconciler *ReconcileService,
) *InvoiceService {
	return &InvoiceService{
		pdfProcessor: pdfProcessor,
		generator:    generator,
		validator:    validator,
		reconciler:   reconciler,
	}
}

// GenerateInvoice turns an uploaded purchase order PDF into a validated
// structured invoice. Classification, schema and tax failures come back as a
// failure envelope; only unreadable PDFs return an error.
func (s *InvoiceService) GenerateInvoice(ctx context.Context, pdfData []byte) (*dto.FileResponse, error) {
	doc, err := s.pdfProcessor.ExtractDocument(pdfData)
	if err != nil {
		return nil, err
	}

	if !utils.IsPurchaseOrder(doc.RawText) {
		return dto.FailureResponse(
			[]string{"File is not a valid Purchase Order"},
			[]string{"Upload a valid PO PDF"},
		), nil
	}

	invoice, failure, err := s.generateStructured(ctx, doc.RawText)
	if failure != nil || err != nil {
		return failure, err
	}
	return &dto.FileResponse{Status: dto.StatusSuccess, Data: invoice}, nil
}

// Reconcile compares an uploaded PO PDF against an uploaded invoice PDF. The
// PO side stays a deterministic extraction; the invoice side goes through the
// generation backend and the validator before the diff runs.
func (s *InvoiceService) Reconcile(ctx context.Context, poData, invoiceData []byte) (*dto.FileResponse, error) {
	poDoc, err := s.pdfProcessor.ExtractDocument(poData)
	if err != nil {
		return nil, err
	}
	invDoc, err := s.pdfProcessor.ExtractDocument(invoiceData)
	if err != nil {
		return nil, err
	}

	if !utils.IsPurchaseOrder(poDoc.RawText) || !utils.IsInvoice(invDoc.RawText) {
		return dto.FailureResponse(
			[]string{"Invalid PO or Invoice document"},
			[]string{"Upload correct PDF documents"},
		), nil
	}

	invoice, failure, err := s.generateStructured(ctx, invDoc.RawText)
	if failure != nil || err != nil {
		return failure, err
	}

	report := s.reconciler.ReconcileExtracted(poDoc, invoice)
	return &dto.FileResponse{Status: dto.StatusSuccess, Data: report}, nil
}

// generateStructured asks the generation backend for a flat structured record
// and validates it. Recoverable failures are returned as a failure envelope.
func (s *InvoiceService) generateStructured(ctx context.Context, rawText string) (*dto.StructuredInvoice, *dto.FileResponse, error) {
	raw, err := s.generator.Generate(ctx, invoiceSystemPrompt, rawText)
	if err != nil {
		log.Printf("Generation backend call failed: %v", err)
		return nil, dto.FailureResponse(
			[]string{"Invoice generation backend failed"},
			[]string{"Retry generation"},
		), nil
	}

	invoice, err := s.validator.Validate([]byte(client.CleanJSONResponse(raw)))
	if err == nil {
		return invoice, nil, nil
	}

	var backendErr *dto.GenerationBackendError
	var schemaErr *dto.SchemaValidationError
	var taxErr *dto.TaxInvariantViolation
	switch {
	case errors.As(err, &backendErr):
		log.Printf("Generation backend returned unparsable output: %v", backendErr.Err)
		return nil, dto.FailureResponse(
			[]string{"Generation backend returned unparsable output"},
			[]string{"Retry generation"},
		), nil
	case errors.As(err, &schemaErr):
		issues := []string{"Invoice extraction failed due to schema mismatch"}
		for _, f := range schemaErr.Fields {
			issues = append(issues, fmt.Sprintf("schema: %s: %s", f.Path, f.Message))
		}
		return nil, dto.FailureResponse(issues, []string{
			"Retry generation",
			"Verify PO document structure",
		}), nil
	case errors.As(err, &taxErr):
		issues := append([]string{"Invoice tax figures are internally inconsistent"}, taxErr.Issues...)
		return nil, dto.FailureResponse(issues, []string{
			"Verify GST calculation",
			"Retry generation",
		}), nil
	default:
		return nil, nil, err
	}
}
