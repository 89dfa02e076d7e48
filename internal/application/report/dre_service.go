package report

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/retail/internal/application/txn"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/report"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DREService builds income statements from settled documents and categorised entries
type DREService struct {
	scope  txn.TransactionScope
	logger *zap.Logger

	receivableCodes []int
	payableCodes    []int
}

// NewDREService creates a new DREService
func NewDREService(scope txn.TransactionScope, logger *zap.Logger) *DREService {
	if logger == nil {
		logger = zap.NewNop()
	}
	receivable, payable := categoryCodes()
	return &DREService{
		scope:           scope,
		logger:          logger,
		receivableCodes: receivable,
		payableCodes:    payable,
	}
}

// categoryCodes splits the taxonomy by the side it is summed from. Sales and
// service revenue come from the documents themselves, so their codes are skipped.
func categoryCodes() (receivable, payable []int) {
	for _, c := range finance.DefaultDRECategories() {
		switch {
		case c.Code == finance.DRESalesRevenue || c.Code == finance.DREServiceRevenue:
		case c.Kind.IsPayableKind():
			payable = append(payable, c.Code)
		default:
			receivable = append(receivable, c.Code)
		}
	}
	return receivable, payable
}

// Monthly computes the statement of one calendar month
func (s *DREService) Monthly(ctx context.Context, tenantID uuid.UUID, year int, month time.Month) (*report.Statement, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	if month < time.January || month > time.December {
		return nil, shared.NewValidationError("month must be between 1 and 12").WithDetail("month", int(month))
	}
	return s.Statement(ctx, tenantID, shared.MonthPeriod(year, month))
}

// Statement computes the statement of an arbitrary inclusive day range
func (s *DREService) Statement(ctx context.Context, tenantID uuid.UUID, period shared.Period) (*report.Statement, error) {
	if period.Start.IsZero() || period.End.IsZero() {
		return nil, shared.NewValidationError("period start and end are required")
	}
	if period.End.Before(period.Start) {
		return nil, shared.NewValidationError("period end must not be before period start").
			WithDetail("start", period.Start.Format(time.DateOnly)).
			WithDetail("end", period.End.Format(time.DateOnly))
	}
	if err := validateYear(period.Start.Year()); err != nil {
		return nil, err
	}
	if err := validateYear(period.End.Year()); err != nil {
		return nil, err
	}

	var stmt report.Statement
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		f, err := s.figures(ctx, repos, tenantID, period)
		if err != nil {
			return err
		}
		stmt = report.ComputeStatement(f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stmt, nil
}

// Annual computes the twelve months independently and sums them.
// The annual margin is recomputed from the summed totals.
func (s *DREService) Annual(ctx context.Context, tenantID uuid.UUID, year int) (*report.AnnualStatement, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	months := make([]report.Statement, 0, 12)
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		for m := time.January; m <= time.December; m++ {
			f, err := s.figures(ctx, repos, tenantID, shared.MonthPeriod(year, m))
			if err != nil {
				return fmt.Errorf("figures for %d-%02d: %w", year, m, err)
			}
			months = append(months, report.ComputeStatement(f))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	annual := report.Aggregate(year, months)

	s.logger.Debug("annual statement computed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("year", year),
		zap.String("net_income", annual.Total.NetIncome.String()),
	)
	return &annual, nil
}

// figures gathers the raw amounts of one period
func (s *DREService) figures(ctx context.Context, repos txn.Repositories, tenantID uuid.UUID, period shared.Period) (report.PeriodFigures, error) {
	sales, err := repos.Sales().Summarize(ctx, tenantID, period)
	if err != nil {
		return report.PeriodFigures{}, fmt.Errorf("summarize sales: %w", err)
	}
	orders, err := repos.ServiceOrders().Summarize(ctx, tenantID, period)
	if err != nil {
		return report.PeriodFigures{}, fmt.Errorf("summarize service orders: %w", err)
	}
	revenue, err := repos.Receivables().SumSettledByDRE(ctx, tenantID, period, s.receivableCodes)
	if err != nil {
		return report.PeriodFigures{}, fmt.Errorf("sum receivables: %w", err)
	}
	expenses, err := repos.Payables().SumSettledByDRE(ctx, tenantID, period, s.payableCodes)
	if err != nil {
		return report.PeriodFigures{}, fmt.Errorf("sum payables: %w", err)
	}

	categories := make(map[int]decimal.Decimal, len(revenue)+len(expenses))
	for code, v := range revenue {
		categories[code] = v
	}
	for code, v := range expenses {
		categories[code] = categories[code].Add(v)
	}

	return report.PeriodFigures{
		Period:          period,
		SalesGross:      sales.ItemsTotal.Add(sales.Surcharge),
		SalesDiscount:   sales.Discount,
		SalesFreight:    sales.Freight,
		SalesCost:       sales.CostTotal,
		ServiceValue:    orders.ServiceValue,
		PartsValue:      orders.PartsValue,
		PartsCost:       orders.PartsCost,
		ServiceDiscount: orders.Discount,
		ServiceFreight:  orders.Freight,
		Categories:      categories,
	}, nil
}

func validateYear(year int) error {
	if year < 2000 || year > 2100 {
		return shared.NewValidationError("year out of range").WithDetail("year", year)
	}
	return nil
}
