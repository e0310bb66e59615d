package rental

import (
	"regexp"
	"strings"
	"time"

	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantStatus represents the lifecycle status of a tenant
type TenantStatus string

const (
	TenantStatusActive TenantStatus = "active"
	TenantStatusFormer TenantStatus = "former"
)

// IsValid checks if the status is a valid TenantStatus
func (s TenantStatus) IsValid() bool {
	return s == TenantStatusActive || s == TenantStatusFormer
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Tenant represents a renter occupying a unit. The billing engine
// resolves Tenant -> Unit -> Property before assembling an invoice.
type Tenant struct {
	shared.BaseAggregateRoot
	FullName  string       `gorm:"type:varchar(200);not null"`
	Email     string       `gorm:"type:varchar(200);index"`
	Phone     string       `gorm:"type:varchar(50)"`
	IDNumber  string       `gorm:"type:varchar(50)"`
	UnitID    uuid.UUID    `gorm:"type:uuid;not null;index"`
	MoveInAt  *time.Time   `gorm:"index"`
	MoveOutAt *time.Time
	Status    TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Notes     string       `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new tenant assigned to a unit
func NewTenant(fullName string, unitID uuid.UUID) (*Tenant, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot be empty")
	}
	if len(fullName) > 200 {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot exceed 200 characters")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT_ID", "Unit ID cannot be empty")
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FullName:          fullName,
		UnitID:            unitID,
		Status:            TenantStatusActive,
	}, nil
}

// SetContact updates the tenant's contact details
func (t *Tenant) SetContact(email, phone string) error {
	email = strings.TrimSpace(email)
	if email != "" && !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	t.Email = email
	t.Phone = phone
	t.Touch()
	t.IncrementVersion()
	return nil
}

// MoveIn records the move-in date
func (t *Tenant) MoveIn(at time.Time) {
	t.MoveInAt = &at
	t.Touch()
	t.IncrementVersion()
}

// MoveOut ends the tenancy
func (t *Tenant) MoveOut(at time.Time) error {
	if t.Status == TenantStatusFormer {
		return shared.NewDomainError("INVALID_STATE", "Tenant has already moved out")
	}
	if t.MoveInAt != nil && at.Before(*t.MoveInAt) {
		return shared.NewDomainError("INVALID_DATE", "Move-out date cannot precede move-in date")
	}
	t.MoveOutAt = &at
	t.Status = TenantStatusFormer
	t.Touch()
	t.IncrementVersion()
	return nil
}

// IsActive returns true if the tenancy is active
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
