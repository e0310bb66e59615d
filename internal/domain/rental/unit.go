package rental

import (
	"strings"

	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitStatus represents the occupancy status of a unit
type UnitStatus string

const (
	UnitStatusVacant      UnitStatus = "vacant"
	UnitStatusOccupied    UnitStatus = "occupied"
	UnitStatusMaintenance UnitStatus = "maintenance"
)

// IsValid checks if the status is a valid UnitStatus
func (s UnitStatus) IsValid() bool {
	switch s {
	case UnitStatusVacant, UnitStatusOccupied, UnitStatusMaintenance:
		return true
	}
	return false
}

// Unit represents a rentable unit within a property
type Unit struct {
	shared.BaseAggregateRoot
	PropertyID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code       string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_unit_property_code,priority:2"`
	Floor      string          `gorm:"type:varchar(20)"`
	Bedrooms   int             `gorm:"not null;default:0"`
	MarketRent decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status     UnitStatus      `gorm:"type:varchar(20);not null;default:'vacant'"`
	Notes      string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Unit) TableName() string {
	return "units"
}

// NewUnit creates a new unit within a property
func NewUnit(propertyID uuid.UUID, code string, marketRent decimal.Decimal) (*Unit, error) {
	if propertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPERTY_ID", "Property ID cannot be empty")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_UNIT_CODE", "Unit code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_UNIT_CODE", "Unit code cannot exceed 50 characters")
	}
	if marketRent.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Market rent cannot be negative")
	}

	return &Unit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PropertyID:        propertyID,
		Code:              code,
		MarketRent:        marketRent,
		Status:            UnitStatusVacant,
	}, nil
}

// MarkOccupied marks the unit as occupied
func (u *Unit) MarkOccupied() error {
	if u.Status == UnitStatusOccupied {
		return shared.NewDomainError("INVALID_STATE", "Unit is already occupied")
	}
	u.Status = UnitStatusOccupied
	u.Touch()
	u.IncrementVersion()
	return nil
}

// MarkVacant marks the unit as vacant
func (u *Unit) MarkVacant() {
	u.Status = UnitStatusVacant
	u.Touch()
	u.IncrementVersion()
}

// SetMarketRent updates the advertised rent for the unit
func (u *Unit) SetMarketRent(rent decimal.Decimal) error {
	if rent.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Market rent cannot be negative")
	}
	u.MarketRent = rent
	u.Touch()
	u.IncrementVersion()
	return nil
}
