package rental

import (
	"strings"

	"github.com/rentfolio/backend/internal/domain/shared"
)

// PropertyStatus represents the lifecycle status of a property
type PropertyStatus string

const (
	PropertyStatusActive   PropertyStatus = "active"
	PropertyStatusArchived PropertyStatus = "archived"
)

// IsValid checks if the status is a valid PropertyStatus
func (s PropertyStatus) IsValid() bool {
	return s == PropertyStatusActive || s == PropertyStatusArchived
}

// Property represents a building or complex under management.
// It is the aggregate root for property-related operations.
type Property struct {
	shared.BaseAggregateRoot
	Name       string         `gorm:"type:varchar(200);not null"`
	Address    string         `gorm:"type:text;not null"`
	City       string         `gorm:"type:varchar(100)"`
	Province   string         `gorm:"type:varchar(100)"`
	PostalCode string         `gorm:"type:varchar(20)"`
	Status     PropertyStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Notes      string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Property) TableName() string {
	return "properties"
}

// NewProperty creates a new property with required fields
func NewProperty(name, address string) (*Property, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PROPERTY_NAME", "Property name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_PROPERTY_NAME", "Property name cannot exceed 200 characters")
	}
	if strings.TrimSpace(address) == "" {
		return nil, shared.NewDomainError("INVALID_PROPERTY_ADDRESS", "Property address cannot be empty")
	}

	return &Property{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Address:           address,
		Status:            PropertyStatusActive,
	}, nil
}

// UpdateDetails updates the mutable property details
func (p *Property) UpdateDetails(name, address, city, province, postalCode, notes string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_PROPERTY_NAME", "Property name cannot be empty")
	}
	p.Name = name
	p.Address = address
	p.City = city
	p.Province = province
	p.PostalCode = postalCode
	p.Notes = notes
	p.Touch()
	p.IncrementVersion()
	return nil
}

// Archive marks the property as archived
func (p *Property) Archive() error {
	if p.Status == PropertyStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Property is already archived")
	}
	p.Status = PropertyStatusArchived
	p.Touch()
	p.IncrementVersion()
	return nil
}

// IsActive returns true if the property is active
func (p *Property) IsActive() bool {
	return p.Status == PropertyStatusActive
}
