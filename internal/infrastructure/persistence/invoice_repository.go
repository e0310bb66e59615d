package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rentfolio/backend/internal/domain/billing"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/rentfolio/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultNumberPrefix = "INV"

// GormInvoiceRepository implements billing.InvoiceRepository using GORM.
// Lookups return (nil, nil) when no row matches; callers decide whether
// a missing invoice is an error.
type GormInvoiceRepository struct {
	db           *gorm.DB
	numberPrefix string
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository. The
// prefix is used for generated invoice numbers; empty means "INV".
func NewGormInvoiceRepository(db *gorm.DB, numberPrefix string) *GormInvoiceRepository {
	if numberPrefix == "" {
		numberPrefix = defaultNumberPrefix
	}
	return &GormInvoiceRepository{db: db, numberPrefix: numberPrefix}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice by its invoice number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("invoice_number = ?", number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPaymentReference finds an invoice by its payment reference
func (r *GormInvoiceRepository) FindByPaymentReference(ctx context.Context, reference string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("payment_reference = ?", reference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTenant finds invoices for a tenant with filtering
func (r *GormInvoiceRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ?", tenantID)
	return r.findInvoices(r.applyFilter(query, filter))
}

// FindByStatus finds invoices by status with filtering
func (r *GormInvoiceRepository) FindByStatus(ctx context.Context, status billing.InvoiceStatus, filter shared.Filter) ([]billing.Invoice, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("status = ?", status)
	return r.findInvoices(r.applyFilter(query, filter))
}

// FindByMonth finds invoices for a billing month with filtering
func (r *GormInvoiceRepository) FindByMonth(ctx context.Context, month billing.Month, filter shared.Filter) ([]billing.Invoice, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("billing_month = ?", month.String())
	return r.findInvoices(r.applyFilter(query, filter))
}

// FindDueBefore finds invoices in the given status whose due date has
// passed. Used by the overdue scan.
func (r *GormInvoiceRepository) FindDueBefore(ctx context.Context, status billing.InvoiceStatus, before time.Time) ([]billing.Invoice, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("status = ? AND due_date < ?", status, before).
		Order("due_date ASC")
	return r.findInvoices(query)
}

// FindAll finds all invoices with filtering
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	return r.findInvoices(r.applyFilter(query, filter))
}

// Save creates or updates an invoice. A collision on the invoice number
// unique index is reported as shared.ErrAlreadyExists so the caller can
// retry allocation with a fresh number.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateKeyError(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextInvoiceNumberHint returns the next candidate invoice number for
// the month: one past the highest number already stored. It is only a
// hint; the unique index on invoice_number is the actual guarantee.
func (r *GormInvoiceRepository) NextInvoiceNumberHint(ctx context.Context, month billing.Month) (string, error) {
	// Format: INV-YYYYMM-XXXXX
	prefix := fmt.Sprintf("%s-%s-", r.numberPrefix, month.Key())

	// Sequences past 99999 outgrow the zero padding, so a plain
	// lexicographic sort would rank them below shorter numbers.
	// Ordering by length first keeps the true maximum on top.
	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("invoice_number").
		Where("invoice_number LIKE ?", prefix+"%").
		Order("LENGTH(invoice_number) DESC, invoice_number DESC").
		Limit(1).
		Pluck("invoice_number", &maxNumber).Error; err != nil {
		return "", err
	}

	nextNum := 1
	if maxNumber != "" {
		seq, err := strconv.Atoi(maxNumber[len(prefix):])
		if err != nil {
			return "", fmt.Errorf("malformed invoice number %q: %w", maxNumber, err)
		}
		nextNum = seq + 1
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// applyFilter applies filter options to the query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

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

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number LIKE ? OR payment_reference LIKE ?",
			searchPattern, searchPattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status", "tenant_id", "property_id", "unit_id", "billing_month":
			query = query.Where(key+" = ?", value)
		}
	}
	return query
}

func (r *GormInvoiceRepository) findInvoices(query *gorm.DB) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// isDuplicateKeyError reports whether the driver error indicates a
// unique constraint violation. Covers Postgres and the SQLite driver
// used in tests.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// Ensure GormInvoiceRepository implements billing.InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
