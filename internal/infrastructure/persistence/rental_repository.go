package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/rentfolio/backend/internal/domain/rental"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// The rental aggregates carry their own GORM tags and are stored
// directly, without separate persistence models.

// GormPropertyRepository implements rental.PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID finds a property by its ID
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Property, error) {
	var property rental.Property
	if err := r.db.WithContext(ctx).First(&property, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

// FindAll finds all properties matching the filter
func (r *GormPropertyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]rental.Property, error) {
	var properties []rental.Property
	query := r.db.WithContext(ctx).Model(&rental.Property{})
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR address LIKE ?", searchPattern, searchPattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	query = applyListOptions(query, filter)

	if err := query.Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// Save creates or updates a property
func (r *GormPropertyRepository) Save(ctx context.Context, property *rental.Property) error {
	return r.db.WithContext(ctx).Save(property).Error
}

// Delete removes a property
func (r *GormPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&rental.Property{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts properties matching the filter
func (r *GormPropertyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&rental.Property{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GormUnitRepository implements rental.UnitRepository using GORM
type GormUnitRepository struct {
	db *gorm.DB
}

// NewGormUnitRepository creates a new GormUnitRepository
func NewGormUnitRepository(db *gorm.DB) *GormUnitRepository {
	return &GormUnitRepository{db: db}
}

// FindByID finds a unit by its ID
func (r *GormUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Unit, error) {
	var unit rental.Unit
	if err := r.db.WithContext(ctx).First(&unit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

// FindByProperty finds all units in a property
func (r *GormUnitRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID, filter shared.Filter) ([]rental.Unit, error) {
	var units []rental.Unit
	query := r.db.WithContext(ctx).Model(&rental.Unit{}).
		Where("property_id = ?", propertyID)
	if filter.Search != "" {
		query = query.Where("code LIKE ?", "%"+filter.Search+"%")
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
		filter.OrderDir = "asc"
	}
	query = applyListOptions(query, filter)

	if err := query.Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// FindByCode finds a unit by its code within a property
func (r *GormUnitRepository) FindByCode(ctx context.Context, propertyID uuid.UUID, code string) (*rental.Unit, error) {
	var unit rental.Unit
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND code = ?", propertyID, code).
		First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

// Save creates or updates a unit
func (r *GormUnitRepository) Save(ctx context.Context, unit *rental.Unit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

// Delete removes a unit
func (r *GormUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&rental.Unit{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts units matching the filter
func (r *GormUnitRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&rental.Unit{})
	if propertyID, ok := filter.Filters["property_id"]; ok {
		query = query.Where("property_id = ?", propertyID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GormTenantRepository implements rental.TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by its ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Tenant, error) {
	var tenant rental.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

// FindAll finds all tenants matching the filter
func (r *GormTenantRepository) FindAll(ctx context.Context, filter shared.Filter) ([]rental.Tenant, error) {
	var tenants []rental.Tenant
	query := r.db.WithContext(ctx).Model(&rental.Tenant{})
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("full_name LIKE ? OR email LIKE ?", searchPattern, searchPattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	query = applyListOptions(query, filter)

	if err := query.Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

// FindByUnit finds all tenants assigned to a unit
func (r *GormTenantRepository) FindByUnit(ctx context.Context, unitID uuid.UUID) ([]rental.Tenant, error) {
	var tenants []rental.Tenant
	if err := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("created_at ASC").
		Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

// Save creates or updates a tenant
func (r *GormTenantRepository) Save(ctx context.Context, tenant *rental.Tenant) error {
	return r.db.WithContext(ctx).Save(tenant).Error
}

// Delete removes a tenant
func (r *GormTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&rental.Tenant{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts tenants matching the filter
func (r *GormTenantRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&rental.Tenant{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyListOptions applies pagination and ordering to a list query
func applyListOptions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}
	return query
}

var (
	_ rental.PropertyRepository = (*GormPropertyRepository)(nil)
	_ rental.UnitRepository     = (*GormUnitRepository)(nil)
	_ rental.TenantRepository   = (*GormTenantRepository)(nil)
)
