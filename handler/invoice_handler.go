package handler

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/enterpriseintelligence2025/accounting-copilot-backend/dto"
	"github.com/enterpriseintelligence2025/accounting-copilot-backend/service"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// GenerateInvoice handles the POST /invoice/generate endpoint
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	log.Println("Received invoice generation request")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		sendError(c, http.StatusBadRequest, "GENERATION_FAILED", "PDF file is required", err)
		return
	}

	data, err := readUpload(fileHeader)
	if err != nil {
		sendError(c, http.StatusBadRequest, "GENERATION_FAILED", "Failed to read uploaded file", err)
		return
	}

	response, err := h.invoiceService.GenerateInvoice(c.Request.Context(), data)
	if err != nil {
		var extractErr *dto.ExtractionError
		if errors.As(err, &extractErr) {
			sendError(c, http.StatusUnprocessableEntity, "GENERATION_FAILED", "Failed to parse PDF", err)
			return
		}
		sendError(c, http.StatusInternalServerError, "GENERATION_FAILED", "Failed to generate invoice", err)
		return
	}

	log.Printf("Invoice generation completed with status %s", response.Status)
	c.JSON(http.StatusOK, response)
}

// readUpload pulls the bytes out of one multipart file header.
func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// sendError sends a structured error response
func sendError(c *gin.Context, statusCode int, code, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: errorMsg,
		Code:    statusCode,
	})
}
