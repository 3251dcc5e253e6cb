package handler

import (
	partnerapp "github.com/erp/pos/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// Register handles POST /customers
func (h *CustomerHandler) Register(c *gin.Context) {
	var req partnerapp.RegisterCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// GetByID handles GET /customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// List handles GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
	var filter partnerapp.CustomerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	customers, err := h.customerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customers)
}

// Rename handles PUT /customers/:id
func (h *CustomerHandler) Rename(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	var req partnerapp.RenameCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.Rename(c.Request.Context(), id, req)
	h.reply(c, customer, err)
}

// ChangeType handles PUT /customers/:id/type
func (h *CustomerHandler) ChangeType(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	var req partnerapp.ChangeTypeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.ChangeType(c.Request.Context(), id, req)
	h.reply(c, customer, err)
}

// SetSeniorDiscount handles PUT /customers/:id/senior-discount
func (h *CustomerHandler) SetSeniorDiscount(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	var req partnerapp.SetSeniorDiscountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.SetSeniorDiscount(c.Request.Context(), id, req)
	h.reply(c, customer, err)
}

// SetContact handles PUT /customers/:id/contact
func (h *CustomerHandler) SetContact(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	var req partnerapp.SetContactRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.SetContact(c.Request.Context(), id, req)
	h.reply(c, customer, err)
}

// RedeemPoints handles POST /customers/:id/points/redeem
func (h *CustomerHandler) RedeemPoints(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	var req partnerapp.PointsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.RedeemPoints(c.Request.Context(), id, req)
	h.reply(c, customer, err)
}

// AccruePoints handles POST /customers/:id/points/accrue
func (h *CustomerHandler) AccruePoints(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	var req partnerapp.PointsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.AccruePoints(c.Request.Context(), id, req)
	h.reply(c, customer, err)
}

// Delete handles DELETE /customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// reply writes the outcome of a customer mutation
func (h *CustomerHandler) reply(c *gin.Context, customer *partnerapp.CustomerResponse, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}
