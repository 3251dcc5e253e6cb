package handler

import (
	"net/http"
	"strconv"
	"time"

	invoicingapp "github.com/erp/pos/internal/application/invoicing"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Idempotency headers of the payment endpoint
const (
	IdempotencyKeyHeader     = "Idempotency-Key"
	IdempotentReplayedHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLength  = 128
	textPlainUTF8ContentType = "text/plain; charset=utf-8"
)

// InvoiceListQuery filters an invoice listing. customer_id and the from/to
// pair may be combined.
type InvoiceListQuery struct {
	CustomerID int64  `form:"customer_id" binding:"omitempty,gt=0"`
	From       string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoicingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoicingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req invoicingapp.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = middleware.GetCashierID(c)

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// GetByNumber handles GET /invoices/:number
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	number, ok := h.int64Param(c, "number")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var q InvoiceListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	if (q.From == "") != (q.To == "") {
		h.BadRequest(c, "from and to must be given together")
		return
	}
	ctx := c.Request.Context()

	var (
		invoices []invoicingapp.InvoiceResponse
		err      error
	)
	switch {
	case q.CustomerID > 0:
		invoices, err = h.invoiceService.FindByCustomer(ctx, q.CustomerID)
		if err == nil && q.From != "" {
			invoices, err = filterIssuedBetween(invoices, q.From, q.To)
		}
	case q.From != "":
		from, _ := time.ParseInLocation(DateLayout, q.From, time.Local)
		to, _ := time.ParseInLocation(DateLayout, q.To, time.Local)
		invoices, err = h.invoiceService.FindByDateRange(ctx, from, to)
	default:
		invoices, err = h.invoiceService.ListInvoices(ctx)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// AddLine handles POST /invoices/:number/lines
func (h *InvoiceHandler) AddLine(c *gin.Context) {
	number, ok := h.int64Param(c, "number")
	if !ok {
		return
	}
	var req invoicingapp.AddInvoiceLineRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.AddInvoiceLine(c.Request.Context(), number, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// RemoveLine handles DELETE /invoices/:number/lines/:line
func (h *InvoiceHandler) RemoveLine(c *gin.Context) {
	number, ok := h.int64Param(c, "number")
	if !ok {
		return
	}
	line, err := strconv.Atoi(c.Param("line"))
	if err != nil || line <= 0 {
		h.BadRequest(c, "Invalid line")
		return
	}

	invoice, err := h.invoiceService.RemoveInvoiceLine(c.Request.Context(), number, line)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Pay handles POST /invoices/:number/payment
func (h *InvoiceHandler) Pay(c *gin.Context) {
	number, ok := h.int64Param(c, "number")
	if !ok {
		return
	}
	var req invoicingapp.ProcessPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)
	if len(req.IdempotencyKey) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}

	result, err := h.invoiceService.ProcessPayment(c.Request.Context(), number, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Replayed {
		c.Header(IdempotentReplayedHeader, "true")
	}
	h.Success(c, result)
}

// Void handles POST /invoices/:number/void
func (h *InvoiceHandler) Void(c *gin.Context) {
	number, ok := h.int64Param(c, "number")
	if !ok {
		return
	}
	var req invoicingapp.VoidInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.invoiceService.VoidInvoice(c.Request.Context(), number, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Receipt handles GET /invoices/:number/receipt
func (h *InvoiceHandler) Receipt(c *gin.Context) {
	number, ok := h.int64Param(c, "number")
	if !ok {
		return
	}

	receipt, err := h.invoiceService.RenderReceipt(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, textPlainUTF8ContentType, []byte(receipt))
}

func filterIssuedBetween(invoices []invoicingapp.InvoiceResponse, from, to string) ([]invoicingapp.InvoiceResponse, error) {
	start, _ := time.ParseInLocation(DateLayout, from, time.Local)
	end, _ := time.ParseInLocation(DateLayout, to, time.Local)
	r, err := shared.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}
	out := make([]invoicingapp.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		if r.Contains(inv.IssuedAt) {
			out = append(out, inv)
		}
	}
	return out, nil
}
