package persistence

import (
	"context"
	"strings"

	"github.com/erp/retail/internal/domain/partner"
	"github.com/erp/retail/internal/domain/payment"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByIDForTenant finds a customer by ID within a tenant
func (r *GormCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&customer).Error; err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

// FindAllForTenant lists customers. Search matches code, name or document.
func (r *GormCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Customer, int64, error) {
	query := searchPartners(r.db.WithContext(ctx).Model(&partner.Customer{}).Scopes(forTenant(tenantID)), filter)
	total, err := countRows(query)
	if err != nil {
		return nil, 0, err
	}
	var customers []partner.Customer
	if err := query.Scopes(paginate(filter, PartnerSortFields, "name")).Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// FindByCode finds a customer by code within a tenant
func (r *GormCustomerRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("code = ?", code).
		First(&customer).Error; err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

// FindWalkIn returns the tenant's walk-in customer
func (r *GormCustomerRepository) FindWalkIn(ctx context.Context, tenantID uuid.UUID) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("walk_in = ?", true).
		First(&customer).Error; err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

// Save creates or updates a customer. A duplicate code maps to ALREADY_EXISTS.
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return translate(r.db.WithContext(ctx).Save(customer).Error)
}

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByIDForTenant finds a supplier by ID within a tenant
func (r *GormSupplierRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&supplier).Error; err != nil {
		return nil, translate(err)
	}
	return &supplier, nil
}

// FindAllForTenant lists suppliers
func (r *GormSupplierRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Supplier, int64, error) {
	query := searchPartners(r.db.WithContext(ctx).Model(&partner.Supplier{}).Scopes(forTenant(tenantID)), filter)
	total, err := countRows(query)
	if err != nil {
		return nil, 0, err
	}
	var suppliers []partner.Supplier
	if err := query.Scopes(paginate(filter, PartnerSortFields, "name")).Find(&suppliers).Error; err != nil {
		return nil, 0, err
	}
	return suppliers, total, nil
}

// FindByCode finds a supplier by code within a tenant
func (r *GormSupplierRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("code = ?", code).
		First(&supplier).Error; err != nil {
		return nil, translate(err)
	}
	return &supplier, nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	return translate(r.db.WithContext(ctx).Save(supplier).Error)
}

func searchPartners(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ? OR document = ?", like, like, filter.Search)
	}
	if active, ok := filter.Filters["active"].(bool); ok {
		query = query.Where("active = ?", active)
	}
	return query
}

// GormPaymentMethodRepository implements MethodRepository using GORM
type GormPaymentMethodRepository struct {
	db *gorm.DB
}

// NewGormPaymentMethodRepository creates a new GormPaymentMethodRepository
func NewGormPaymentMethodRepository(db *gorm.DB) *GormPaymentMethodRepository {
	return &GormPaymentMethodRepository{db: db}
}

// FindByIDForTenant finds a payment method by ID within a tenant
func (r *GormPaymentMethodRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payment.Method, error) {
	var method payment.Method
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&method).Error; err != nil {
		return nil, translate(err)
	}
	return &method, nil
}

// FindByType returns the oldest active method of a type
func (r *GormPaymentMethodRepository) FindByType(ctx context.Context, tenantID uuid.UUID, methodType payment.MethodType) (*payment.Method, error) {
	var method payment.Method
	if err := r.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("type = ? AND active = ?", methodType, true).
		Order("created_at ASC").
		First(&method).Error; err != nil {
		return nil, translate(err)
	}
	return &method, nil
}

// FindAllForTenant lists the payment methods of a tenant
func (r *GormPaymentMethodRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]payment.Method, error) {
	query := r.db.WithContext(ctx).Model(&payment.Method{}).Scopes(forTenant(tenantID))
	if active, ok := filter.Filters["active"].(bool); ok {
		query = query.Where("active = ?", active)
	}
	if methodType, ok := filter.Filters["type"].(string); ok && methodType != "" {
		query = query.Where("type = ?", methodType)
	}
	var methods []payment.Method
	if err := query.Scopes(paginate(filter, PaymentMethodSortFields, "name")).Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// Save creates or updates a payment method
func (r *GormPaymentMethodRepository) Save(ctx context.Context, method *payment.Method) error {
	return translate(r.db.WithContext(ctx).Save(method).Error)
}

// CreateIfAbsent inserts a method, doing nothing when the tenant already has
// one with the same name. A concurrent insert of the same name waits for the
// other transaction and then yields to it.
func (r *GormPaymentMethodRepository) CreateIfAbsent(ctx context.Context, method *payment.Method) error {
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(method).Error)
}

var (
	_ partner.CustomerRepository = (*GormCustomerRepository)(nil)
	_ partner.SupplierRepository = (*GormSupplierRepository)(nil)
	_ payment.MethodRepository   = (*GormPaymentMethodRepository)(nil)
)
