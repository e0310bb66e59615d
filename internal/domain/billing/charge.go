package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeCategory classifies a billable line item
type ChargeCategory string

const (
	ChargeCategoryRent      ChargeCategory = "RENT"
	ChargeCategoryUtility   ChargeCategory = "UTILITY"
	ChargeCategoryMunicipal ChargeCategory = "MUNICIPAL"
	ChargeCategoryOther     ChargeCategory = "OTHER"
)

// IsValid checks if the category is a valid ChargeCategory
func (c ChargeCategory) IsValid() bool {
	switch c {
	case ChargeCategoryRent, ChargeCategoryUtility, ChargeCategoryMunicipal, ChargeCategoryOther:
		return true
	}
	return false
}

// String returns the string representation of ChargeCategory
func (c ChargeCategory) String() string {
	return string(c)
}

var maxVATRate = decimal.NewFromInt(100)

// Charge represents one billable line item on an invoice.
// It is a value object within the Invoice aggregate, stored as JSONB.
type Charge struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	Category     ChargeCategory  `json:"category"`
	VATRate      decimal.Decimal `json:"vat_rate"`      // Percentage, 0-100
	VATInclusive bool            `json:"vat_inclusive"` // True when Amount already contains VAT
	Description  string          `json:"description,omitempty"`
}

// NewCharge creates a validated charge line
func NewCharge(name string, amount decimal.Decimal, category ChargeCategory, vatRate decimal.Decimal, vatInclusive bool) (*Charge, error) {
	c := &Charge{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Amount:       amount,
		Category:     category,
		VATRate:      vatRate,
		VATInclusive: vatInclusive,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the charge invariants
func (c *Charge) Validate() error {
	if c.Name == "" {
		return shared.NewDomainError("INVALID_CHARGE_NAME", "Charge name cannot be empty")
	}
	if len(c.Name) > 200 {
		return shared.NewDomainError("INVALID_CHARGE_NAME", "Charge name cannot exceed 200 characters")
	}
	if c.Amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Charge amount cannot be negative")
	}
	if !c.Category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Charge category is not valid")
	}
	if c.VATRate.IsNegative() || c.VATRate.GreaterThan(maxVATRate) {
		return shared.NewDomainError("INVALID_VAT_RATE", "VAT rate must be between 0 and 100")
	}
	return nil
}

// Charges is a slice of Charge that implements GORM Scanner/Valuer for JSONB storage
type Charges []Charge

// Validate checks every charge in the collection
func (cs Charges) Validate() error {
	for i := range cs {
		if err := cs[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Value implements driver.Valuer interface for GORM to store as JSONB
func (cs Charges) Value() (driver.Value, error) {
	if cs == nil {
		return "[]", nil
	}
	return json.Marshal(cs)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (cs *Charges) Scan(value interface{}) error {
	if value == nil {
		*cs = Charges{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Charges: unsupported type")
	}

	if len(bytes) == 0 {
		*cs = Charges{}
		return nil
	}

	return json.Unmarshal(bytes, cs)
}
