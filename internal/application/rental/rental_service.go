package rental

import (
	"context"
	"time"

	"github.com/rentfolio/backend/internal/domain/rental"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RentalService provides application-level operations over the
// property, unit and tenant collaborator records the billing engine
// resolves against
type RentalService struct {
	propertyRepo rental.PropertyRepository
	unitRepo     rental.UnitRepository
	tenantRepo   rental.TenantRepository
}

// NewRentalService creates a new RentalService
func NewRentalService(
	propertyRepo rental.PropertyRepository,
	unitRepo rental.UnitRepository,
	tenantRepo rental.TenantRepository,
) *RentalService {
	return &RentalService{
		propertyRepo: propertyRepo,
		unitRepo:     unitRepo,
		tenantRepo:   tenantRepo,
	}
}

// ===================== Properties =====================

// CreatePropertyRequest represents a request to register a property
type CreatePropertyRequest struct {
	Name       string `json:"name" binding:"required,max=200"`
	Address    string `json:"address" binding:"required,max=500"`
	City       string `json:"city" binding:"max=100"`
	Province   string `json:"province" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Notes      string `json:"notes" binding:"max=1000"`
}

// PropertyResponse represents a property in API responses
type PropertyResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	City       string    `json:"city,omitempty"`
	Province   string    `json:"province,omitempty"`
	PostalCode string    `json:"postal_code,omitempty"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toPropertyResponse(p *rental.Property) *PropertyResponse {
	return &PropertyResponse{
		ID:         p.ID,
		Name:       p.Name,
		Address:    p.Address,
		City:       p.City,
		Province:   p.Province,
		PostalCode: p.PostalCode,
		Status:     string(p.Status),
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// CreateProperty registers a new property
func (s *RentalService) CreateProperty(ctx context.Context, req CreatePropertyRequest) (*PropertyResponse, error) {
	property, err := rental.NewProperty(req.Name, req.Address)
	if err != nil {
		return nil, err
	}
	property.City = req.City
	property.Province = req.Province
	property.PostalCode = req.PostalCode
	property.Notes = req.Notes

	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return nil, err
	}
	return toPropertyResponse(property), nil
}

// GetProperty gets a property by ID
func (s *RentalService) GetProperty(ctx context.Context, id uuid.UUID) (*PropertyResponse, error) {
	property, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Property not found")
	}
	return toPropertyResponse(property), nil
}

// ListProperties lists properties with pagination
func (s *RentalService) ListProperties(ctx context.Context, filter shared.Filter) ([]PropertyResponse, int64, error) {
	properties, err := s.propertyRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.propertyRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]PropertyResponse, len(properties))
	for i := range properties {
		responses[i] = *toPropertyResponse(&properties[i])
	}
	return responses, total, nil
}

// UpdatePropertyRequest represents a request to update property details
type UpdatePropertyRequest struct {
	Name       string `json:"name" binding:"required,max=200"`
	Address    string `json:"address" binding:"required,max=500"`
	City       string `json:"city" binding:"max=100"`
	Province   string `json:"province" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Notes      string `json:"notes" binding:"max=1000"`
}

// UpdateProperty updates a property's details
func (s *RentalService) UpdateProperty(ctx context.Context, id uuid.UUID, req UpdatePropertyRequest) (*PropertyResponse, error) {
	property, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Property not found")
	}
	if err := property.UpdateDetails(req.Name, req.Address, req.City, req.Province, req.PostalCode, req.Notes); err != nil {
		return nil, err
	}
	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return nil, err
	}
	return toPropertyResponse(property), nil
}

// ArchiveProperty archives a property
func (s *RentalService) ArchiveProperty(ctx context.Context, id uuid.UUID) error {
	property, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if property == nil {
		return shared.NewDomainError("NOT_FOUND", "Property not found")
	}
	if err := property.Archive(); err != nil {
		return err
	}
	return s.propertyRepo.Save(ctx, property)
}

// ===================== Units =====================

// CreateUnitRequest represents a request to add a unit to a property
type CreateUnitRequest struct {
	PropertyID uuid.UUID       `json:"property_id" binding:"required"`
	Code       string          `json:"code" binding:"required,max=50"`
	Floor      string          `json:"floor" binding:"max=20"`
	Bedrooms   int             `json:"bedrooms"`
	MarketRent decimal.Decimal `json:"market_rent"`
}

// UnitResponse represents a unit in API responses
type UnitResponse struct {
	ID         uuid.UUID       `json:"id"`
	PropertyID uuid.UUID       `json:"property_id"`
	Code       string          `json:"code"`
	Floor      string          `json:"floor,omitempty"`
	Bedrooms   int             `json:"bedrooms"`
	MarketRent decimal.Decimal `json:"market_rent"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func toUnitResponse(u *rental.Unit) *UnitResponse {
	return &UnitResponse{
		ID:         u.ID,
		PropertyID: u.PropertyID,
		Code:       u.Code,
		Floor:      u.Floor,
		Bedrooms:   u.Bedrooms,
		MarketRent: u.MarketRent,
		Status:     string(u.Status),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// CreateUnit adds a unit to a property. Unit codes are unique within
// a property.
func (s *RentalService) CreateUnit(ctx context.Context, req CreateUnitRequest) (*UnitResponse, error) {
	property, err := s.propertyRepo.FindByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, shared.NewDomainError("MISSING_RELATION", "Property not found")
	}

	unit, err := rental.NewUnit(req.PropertyID, req.Code, req.MarketRent)
	if err != nil {
		return nil, err
	}
	unit.Floor = req.Floor
	unit.Bedrooms = req.Bedrooms

	existing, err := s.unitRepo.FindByCode(ctx, req.PropertyID, unit.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Unit code already used in this property")
	}

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}
	return toUnitResponse(unit), nil
}

// GetUnit gets a unit by ID
func (s *RentalService) GetUnit(ctx context.Context, id uuid.UUID) (*UnitResponse, error) {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Unit not found")
	}
	return toUnitResponse(unit), nil
}

// ListUnitsByProperty lists a property's units
func (s *RentalService) ListUnitsByProperty(ctx context.Context, propertyID uuid.UUID, filter shared.Filter) ([]UnitResponse, error) {
	units, err := s.unitRepo.FindByProperty(ctx, propertyID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]UnitResponse, len(units))
	for i := range units {
		responses[i] = *toUnitResponse(&units[i])
	}
	return responses, nil
}

// SetUnitRentRequest represents a request to reprice a unit
type SetUnitRentRequest struct {
	MarketRent decimal.Decimal `json:"market_rent" binding:"required"`
}

// SetUnitRent updates a unit's market rent
func (s *RentalService) SetUnitRent(ctx context.Context, id uuid.UUID, req SetUnitRentRequest) (*UnitResponse, error) {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Unit not found")
	}
	if err := unit.SetMarketRent(req.MarketRent); err != nil {
		return nil, err
	}
	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}
	return toUnitResponse(unit), nil
}

// DeleteUnit removes a unit. Occupied units cannot be deleted.
func (s *RentalService) DeleteUnit(ctx context.Context, id uuid.UUID) error {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if unit == nil {
		return shared.NewDomainError("NOT_FOUND", "Unit not found")
	}
	if unit.Status == rental.UnitStatusOccupied {
		return shared.NewDomainError("INVALID_STATE", "Occupied unit cannot be deleted")
	}
	return s.unitRepo.Delete(ctx, id)
}

// ===================== Tenants =====================

// CreateTenantRequest represents a request to register a tenant
type CreateTenantRequest struct {
	FullName string    `json:"full_name" binding:"required,max=200"`
	Email    string    `json:"email" binding:"omitempty,email,max=200"`
	Phone    string    `json:"phone" binding:"max=50"`
	IDNumber string    `json:"id_number" binding:"max=50"`
	UnitID   uuid.UUID `json:"unit_id" binding:"required"`
	MoveInAt time.Time `json:"move_in_at"`
}

// TenantResponse represents a tenant in API responses
type TenantResponse struct {
	ID        uuid.UUID  `json:"id"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	UnitID    uuid.UUID  `json:"unit_id"`
	MoveInAt  *time.Time `json:"move_in_at,omitempty"`
	MoveOutAt *time.Time `json:"move_out_at,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func toTenantResponse(t *rental.Tenant) *TenantResponse {
	return &TenantResponse{
		ID:        t.ID,
		FullName:  t.FullName,
		Email:     t.Email,
		Phone:     t.Phone,
		UnitID:    t.UnitID,
		MoveInAt:  t.MoveInAt,
		MoveOutAt: t.MoveOutAt,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// CreateTenant registers a tenant against a unit and marks the unit
// occupied
func (s *RentalService) CreateTenant(ctx context.Context, req CreateTenantRequest) (*TenantResponse, error) {
	unit, err := s.unitRepo.FindByID(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, shared.NewDomainError("MISSING_RELATION", "Unit not found")
	}

	tenant, err := rental.NewTenant(req.FullName, req.UnitID)
	if err != nil {
		return nil, err
	}
	if err := tenant.SetContact(req.Email, req.Phone); err != nil {
		return nil, err
	}
	tenant.IDNumber = req.IDNumber
	if !req.MoveInAt.IsZero() {
		tenant.MoveIn(req.MoveInAt)
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	if err := unit.MarkOccupied(); err == nil {
		if err := s.unitRepo.Save(ctx, unit); err != nil {
			return nil, err
		}
	}

	return toTenantResponse(tenant), nil
}

// GetTenant gets a tenant by ID
func (s *RentalService) GetTenant(ctx context.Context, id uuid.UUID) (*TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Tenant not found")
	}
	return toTenantResponse(tenant), nil
}

// ListTenants lists tenants with pagination
func (s *RentalService) ListTenants(ctx context.Context, filter shared.Filter) ([]TenantResponse, int64, error) {
	tenants, err := s.tenantRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.tenantRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]TenantResponse, len(tenants))
	for i := range tenants {
		responses[i] = *toTenantResponse(&tenants[i])
	}
	return responses, total, nil
}

// UpdateTenantContactRequest represents a contact-details update
type UpdateTenantContactRequest struct {
	Email string `json:"email" binding:"omitempty,email,max=200"`
	Phone string `json:"phone" binding:"max=50"`
}

// UpdateTenantContact updates a tenant's contact details
func (s *RentalService) UpdateTenantContact(ctx context.Context, id uuid.UUID, req UpdateTenantContactRequest) (*TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Tenant not found")
	}
	if err := tenant.SetContact(req.Email, req.Phone); err != nil {
		return nil, err
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}
	return toTenantResponse(tenant), nil
}

// MoveOutTenant ends a tenancy and frees the unit if no other active
// tenant remains on it
func (s *RentalService) MoveOutTenant(ctx context.Context, id uuid.UUID, at time.Time) (*TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Tenant not found")
	}

	if err := tenant.MoveOut(at); err != nil {
		return nil, err
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	others, err := s.tenantRepo.FindByUnit(ctx, tenant.UnitID)
	if err != nil {
		return nil, err
	}
	stillOccupied := false
	for i := range others {
		if others[i].ID != tenant.ID && others[i].IsActive() {
			stillOccupied = true
			break
		}
	}
	if !stillOccupied {
		unit, err := s.unitRepo.FindByID(ctx, tenant.UnitID)
		if err != nil {
			return nil, err
		}
		if unit != nil {
			unit.MarkVacant()
			if err := s.unitRepo.Save(ctx, unit); err != nil {
				return nil, err
			}
		}
	}

	return toTenantResponse(tenant), nil
}
