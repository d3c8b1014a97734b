package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/enterpriseintelligence2025/accounting-copilot-backend/dto"
	"github.com/enterpriseintelligence2025/accounting-copilot-backend/service"
)

type ReconcileHandler struct {
	invoiceService *service.InvoiceService
}

func NewReconcileHandler(invoiceService *service.InvoiceService) *ReconcileHandler {
	return &ReconcileHandler{
		invoiceService: invoiceService,
	}
}

// Reconcile handles the POST /reconcile endpoint
func (h *ReconcileHandler) Reconcile(c *gin.Context) {
	log.Println("Received reconciliation request")

	poHeader, err := c.FormFile("po")
	if err != nil {
		sendError(c, http.StatusBadRequest, "RECONCILIATION_FAILED", "PO PDF file is required", err)
		return
	}
	invoiceHeader, err := c.FormFile("invoice")
	if err != nil {
		sendError(c, http.StatusBadRequest, "RECONCILIATION_FAILED", "Invoice PDF file is required", err)
		return
	}

	poData, err := readUpload(poHeader)
	if err != nil {
		sendError(c, http.StatusBadRequest, "RECONCILIATION_FAILED", "Failed to read PO upload", err)
		return
	}
	invoiceData, err := readUpload(invoiceHeader)
	if err != nil {
		sendError(c, http.StatusBadRequest, "RECONCILIATION_FAILED", "Failed to read invoice upload", err)
		return
	}

	response, err := h.invoiceService.Reconcile(c.Request.Context(), poData, invoiceData)
	if err != nil {
		var extractErr *dto.ExtractionError
		if errors.As(err, &extractErr) {
			sendError(c, http.StatusUnprocessableEntity, "RECONCILIATION_FAILED", "Failed to parse PDF", err)
			return
		}
		sendError(c, http.StatusInternalServerError, "RECONCILIATION_FAILED", "Failed to reconcile documents", err)
		return
	}

	log.Printf("Reconciliation completed with status %s", response.Status)
	c.JSON(http.StatusOK, response)
}
