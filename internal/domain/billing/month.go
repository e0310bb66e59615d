package billing

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/rentfolio/backend/internal/domain/shared"
)

const monthLayout = "2006-01"

// Month identifies one calendar billing period
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a billing month in YYYY-MM form
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, shared.NewDomainError("INVALID_BILLING_MONTH", fmt.Sprintf("Billing month must be in YYYY-MM form, got %q", s))
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the billing month containing the given instant
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// IsZero returns true for the zero-value month
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// String returns the YYYY-MM representation
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Key returns the compact YYYYMM representation used in document
// numbers and payment references
func (m Month) Key() string {
	return fmt.Sprintf("%04d%02d", m.Year, int(m.Month))
}

// Start returns the first instant of the month in UTC
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following billing month
func (m Month) Next() Month {
	return MonthOf(m.Start().AddDate(0, 1, 0))
}

// Value implements driver.Valuer; months are stored as YYYY-MM strings
func (m Month) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner
func (m *Month) Scan(value any) error {
	if value == nil {
		*m = Month{}
		return nil
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Month", value)
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalJSON implements json.Marshaler
func (m Month) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", m.String())), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Month) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
