package handler

import (
	"net/http"

	invoicingapp "github.com/erp/pos/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles sales reporting endpoints
type ReportHandler struct {
	BaseHandler
	invoiceService *invoicingapp.InvoiceService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(invoiceService *invoicingapp.InvoiceService) *ReportHandler {
	return &ReportHandler{invoiceService: invoiceService}
}

// Summary handles GET /reports/sales/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}

	summary, err := h.invoiceService.SalesSummary(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Sales handles GET /reports/sales
func (h *ReportHandler) Sales(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}

	report, err := h.invoiceService.GenerateSalesReport(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, textPlainUTF8ContentType, []byte(report))
}

// Archive handles POST /reports/sales/archive
func (h *ReportHandler) Archive(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}

	archived, err := h.invoiceService.ArchiveSalesReport(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, archived)
}
