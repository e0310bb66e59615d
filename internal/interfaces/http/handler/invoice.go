package handler

import (
	billingapp "github.com/rentfolio/backend/internal/application/billing"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/rentfolio/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoice and payment API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// Assemble creates a draft invoice for a tenant and billing month
func (h *InvoiceHandler) Assemble(c *gin.Context) {
	var req billingapp.AssembleInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.AssembleInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// Issue transitions a draft invoice to SENT
func (h *InvoiceHandler) Issue(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.IssueInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// MarkEmailSent records that the invoice email went out
func (h *InvoiceHandler) MarkEmailSent(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.MarkEmailSent(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Get returns a single invoice by ID
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// GetByNumber returns a single invoice by its invoice number
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Invoice number is required")
		return
	}

	invoice, err := h.invoiceService.GetInvoiceByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// List returns invoices filtered by tenant, status or billing month
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter billingapp.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// RecordPayment reconciles an incoming payment notice. Unmatched
// payments are recorded and returned with their hold reason; only
// invalid notices fail.
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	var req billingapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.invoiceService.RecordPayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListUnmatchedPayments returns payments awaiting manual review
func (h *InvoiceHandler) ListUnmatchedPayments(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	listReq.Normalize()

	filter := shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
		Search:   listReq.Search,
		Filters:  map[string]interface{}{},
	}

	payments, err := h.invoiceService.ListUnmatchedPayments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}

// TriggerOverdueScan flags sent invoices past their due date
func (h *InvoiceHandler) TriggerOverdueScan(c *gin.Context) {
	marked, err := h.invoiceService.MarkOverdueInvoices(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"marked_overdue": marked})
}

func (h *InvoiceHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return uuid.Nil, false
	}
	return id, true
}

// RegisterRoutes registers all billing routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Assemble)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
		invoices.GET("/number/:number", h.GetByNumber)
		invoices.POST("/:id/issue", h.Issue)
		invoices.POST("/:id/email-sent", h.MarkEmailSent)
		invoices.POST("/overdue-scan", h.TriggerOverdueScan)
	}

	payments := rg.Group("/payments")
	{
		payments.POST("", h.RecordPayment)
		payments.GET("/unmatched", h.ListUnmatchedPayments)
	}
}
