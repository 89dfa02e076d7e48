package finance

import (
	"context"
	"time"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/payment"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentMethodService manages payment methods and previews their fees
type PaymentMethodService struct {
	methods payment.MethodRepository
	logger  *zap.Logger
}

// NewPaymentMethodService creates a new PaymentMethodService
func NewPaymentMethodService(methods payment.MethodRepository, logger *zap.Logger) *PaymentMethodService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentMethodService{
		methods: methods,
		logger:  logger,
	}
}

// Create creates a payment method
func (s *PaymentMethodService) Create(ctx context.Context, tenantID uuid.UUID, req CreateMethodRequest) (*MethodResponse, error) {
	method, err := payment.NewMethod(tenantID, req.Name, payment.MethodType(req.Type), req.FeeScheduleInput.toDomain())
	if err != nil {
		return nil, err
	}
	method.Operator = req.Operator
	if err := s.methods.Save(ctx, method); err != nil {
		return nil, err
	}
	s.logger.Info("payment method created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("method_id", method.ID.String()),
		zap.String("type", string(method.Type)),
	)
	resp := ToMethodResponse(method)
	return &resp, nil
}

// UpdateSchedule replaces the fee schedule of a method
func (s *PaymentMethodService) UpdateSchedule(ctx context.Context, tenantID, id uuid.UUID, in FeeScheduleInput) (*MethodResponse, error) {
	method, err := s.methods.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := method.UpdateSchedule(in.toDomain()); err != nil {
		return nil, err
	}
	if err := s.methods.Save(ctx, method); err != nil {
		return nil, err
	}
	resp := ToMethodResponse(method)
	return &resp, nil
}

// Deactivate stops offering a method
func (s *PaymentMethodService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	method, err := s.methods.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	method.Deactivate()
	return s.methods.Save(ctx, method)
}

// Get retrieves a payment method
func (s *PaymentMethodService) Get(ctx context.Context, tenantID, id uuid.UUID) (*MethodResponse, error) {
	method, err := s.methods.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToMethodResponse(method)
	return &resp, nil
}

// List retrieves the payment methods of a tenant
func (s *PaymentMethodService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]MethodResponse, error) {
	methods, err := s.methods.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]MethodResponse, 0, len(methods))
	for i := range methods {
		out = append(out, ToMethodResponse(&methods[i]))
	}
	return out, nil
}

// PreviewFee runs the fee calculator for an amount without booking anything.
// The expected settlement date assumes payment today.
func (s *PaymentMethodService) PreviewFee(ctx context.Context, tenantID, id uuid.UUID, req FeePreviewRequest) (*FeePreviewResponse, error) {
	method, err := s.methods.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.Installments == 0 {
		req.Installments = 1
	}
	fee, err := payment.ComputeFee(req.Amount, method, req.Installments)
	if err != nil {
		return nil, err
	}
	return &FeePreviewResponse{
		Gross:              req.Amount,
		Installments:       req.Installments,
		Percent:            fee.Percent,
		Fee:                fee.Amount,
		Net:                fee.Net,
		ExpectedSettlement: method.SettlementDate(shared.TruncateDay(time.Now())),
	}, nil
}

// DRECategoryService exposes the income statement taxonomy
type DRECategoryService struct {
	categories finance.DRECategoryRepository
}

// NewDRECategoryService creates a new DRECategoryService
func NewDRECategoryService(categories finance.DRECategoryRepository) *DRECategoryService {
	return &DRECategoryService{categories: categories}
}

// Seed inserts the default taxonomy, leaving existing codes untouched
func (s *DRECategoryService) Seed(ctx context.Context) error {
	return s.categories.Seed(ctx, finance.DefaultDRECategories())
}

// List returns every category in display order
func (s *DRECategoryService) List(ctx context.Context) ([]finance.DRECategory, error) {
	return s.categories.FindAll(ctx)
}
