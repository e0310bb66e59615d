package handler

import (
	"time"

	rentalapp "github.com/rentfolio/backend/internal/application/rental"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/rentfolio/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RentalHandler handles property, unit and tenant API endpoints
type RentalHandler struct {
	BaseHandler
	rentalService *rentalapp.RentalService
}

// NewRentalHandler creates a new RentalHandler
func NewRentalHandler(rentalService *rentalapp.RentalService) *RentalHandler {
	return &RentalHandler{
		rentalService: rentalService,
	}
}

// MoveOutTenantRequest represents a request to move a tenant out
type MoveOutTenantRequest struct {
	MoveOutAt time.Time `json:"move_out_at"`
}

// CreateProperty registers a new property
func (h *RentalHandler) CreateProperty(c *gin.Context) {
	var req rentalapp.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	property, err := h.rentalService.CreateProperty(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, property)
}

// GetProperty returns a single property by ID
func (h *RentalHandler) GetProperty(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	property, err := h.rentalService.GetProperty(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, property)
}

// ListProperties returns properties with pagination
func (h *RentalHandler) ListProperties(c *gin.Context) {
	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	properties, total, err := h.rentalService.ListProperties(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, properties, total, filter.Page, filter.PageSize)
}

// UpdateProperty updates a property's details
func (h *RentalHandler) UpdateProperty(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req rentalapp.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	property, err := h.rentalService.UpdateProperty(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, property)
}

// ArchiveProperty marks a property as archived
func (h *RentalHandler) ArchiveProperty(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.rentalService.ArchiveProperty(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// CreateUnit adds a unit to a property
func (h *RentalHandler) CreateUnit(c *gin.Context) {
	var req rentalapp.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	unit, err := h.rentalService.CreateUnit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, unit)
}

// GetUnit returns a single unit by ID
func (h *RentalHandler) GetUnit(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	unit, err := h.rentalService.GetUnit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, unit)
}

// SetUnitRent updates a unit's market rent
func (h *RentalHandler) SetUnitRent(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req rentalapp.SetUnitRentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	unit, err := h.rentalService.SetUnitRent(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, unit)
}

// DeleteUnit removes a vacant unit
func (h *RentalHandler) DeleteUnit(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.rentalService.DeleteUnit(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListUnits returns the units of a property
func (h *RentalHandler) ListUnits(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid property ID")
		return
	}

	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	units, err := h.rentalService.ListUnitsByProperty(c.Request.Context(), propertyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, units)
}

// CreateTenant registers a tenant against a unit
func (h *RentalHandler) CreateTenant(c *gin.Context) {
	var req rentalapp.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.rentalService.CreateTenant(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, tenant)
}

// GetTenant returns a single tenant by ID
func (h *RentalHandler) GetTenant(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	tenant, err := h.rentalService.GetTenant(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}

// ListTenants returns tenants with pagination
func (h *RentalHandler) ListTenants(c *gin.Context) {
	filter, ok := h.bindListFilter(c)
	if !ok {
		return
	}

	tenants, total, err := h.rentalService.ListTenants(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, tenants, total, filter.Page, filter.PageSize)
}

// UpdateTenantContact updates a tenant's contact details
func (h *RentalHandler) UpdateTenantContact(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req rentalapp.UpdateTenantContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.rentalService.UpdateTenantContact(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}

// MoveOutTenant ends a tenancy and frees the unit
func (h *RentalHandler) MoveOutTenant(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req MoveOutTenantRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}
	if req.MoveOutAt.IsZero() {
		req.MoveOutAt = time.Now()
	}

	tenant, err := h.rentalService.MoveOutTenant(c.Request.Context(), id, req.MoveOutAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}

func (h *RentalHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *RentalHandler) bindListFilter(c *gin.Context) (shared.Filter, bool) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return shared.Filter{}, false
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
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	return filter, true
}

// RegisterRoutes registers all rental routes
func (h *RentalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	properties := rg.Group("/properties")
	{
		properties.POST("", h.CreateProperty)
		properties.GET("", h.ListProperties)
		properties.GET("/:id", h.GetProperty)
		properties.PUT("/:id", h.UpdateProperty)
		properties.POST("/:id/archive", h.ArchiveProperty)
		properties.GET("/:id/units", h.ListUnits)
	}

	units := rg.Group("/units")
	{
		units.POST("", h.CreateUnit)
		units.GET("/:id", h.GetUnit)
		units.PUT("/:id/rent", h.SetUnitRent)
		units.DELETE("/:id", h.DeleteUnit)
	}

	tenants := rg.Group("/tenants")
	{
		tenants.POST("", h.CreateTenant)
		tenants.GET("", h.ListTenants)
		tenants.GET("/:id", h.GetTenant)
		tenants.PUT("/:id/contact", h.UpdateTenantContact)
		tenants.POST("/:id/move-out", h.MoveOutTenant)
	}
}
