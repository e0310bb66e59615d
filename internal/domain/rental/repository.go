package rental

import (
	"context"

	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PropertyRepository defines the interface for property persistence
type PropertyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Property, error)
	Save(ctx context.Context, property *Property) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// UnitRepository defines the interface for unit persistence
type UnitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Unit, error)
	FindByProperty(ctx context.Context, propertyID uuid.UUID, filter shared.Filter) ([]Unit, error)
	FindByCode(ctx context.Context, propertyID uuid.UUID, code string) (*Unit, error)
	Save(ctx context.Context, unit *Unit) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Tenant, error)
	FindByUnit(ctx context.Context, unitID uuid.UUID) ([]Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
