package report

import (
	"time"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PeriodFigures are the raw amounts gathered for one period.
// Sales and service order values cover documents settled within the period.
// Categories holds settled receivable and payable sums keyed by DRE code.
type PeriodFigures struct {
	Period shared.Period

	// SalesGross is items total plus surcharge, before discounts and freight
	SalesGross    decimal.Decimal
	SalesDiscount decimal.Decimal
	SalesFreight  decimal.Decimal
	SalesCost     decimal.Decimal

	ServiceValue    decimal.Decimal
	PartsValue      decimal.Decimal
	PartsCost       decimal.Decimal
	ServiceDiscount decimal.Decimal
	ServiceFreight  decimal.Decimal

	Categories map[int]decimal.Decimal
}

// Category returns the sum booked under a DRE code, zero when absent
func (f PeriodFigures) Category(code int) decimal.Decimal {
	if v, ok := f.Categories[code]; ok {
		return v
	}
	return decimal.Zero
}

func (f PeriodFigures) categories(codes ...int) decimal.Decimal {
	total := decimal.Zero
	for _, c := range codes {
		total = total.Add(f.Category(c))
	}
	return total
}

// Statement is the income statement (DRE) for one period
type Statement struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	SalesRevenue   decimal.Decimal `json:"sales_revenue"`
	ServiceRevenue decimal.Decimal `json:"service_revenue"`
	FreightRevenue decimal.Decimal `json:"freight_revenue"`
	GrossRevenue   decimal.Decimal `json:"gross_revenue"`

	SalesReturns decimal.Decimal `json:"sales_returns"`
	Abatements   decimal.Decimal `json:"abatements"`
	Discounts    decimal.Decimal `json:"discounts"`
	SalesTaxes   decimal.Decimal `json:"sales_taxes"`
	Deductions   decimal.Decimal `json:"deductions"`
	NetRevenue   decimal.Decimal `json:"net_revenue"`

	CostOfGoods    decimal.Decimal `json:"cost_of_goods"`
	CostOfServices decimal.Decimal `json:"cost_of_services"`
	Costs          decimal.Decimal `json:"costs"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`

	SellingExpenses   decimal.Decimal `json:"selling_expenses"`
	AdminExpenses     decimal.Decimal `json:"admin_expenses"`
	Payroll           decimal.Decimal `json:"payroll"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses"`

	FinancialIncome   decimal.Decimal `json:"financial_income"`
	FinancialExpenses decimal.Decimal `json:"financial_expenses"`
	FinancialResult   decimal.Decimal `json:"financial_result"`
	OtherIncome       decimal.Decimal `json:"other_income"`
	OtherExpenses     decimal.Decimal `json:"other_expenses"`
	OtherResult       decimal.Decimal `json:"other_result"`
	OperatingResult   decimal.Decimal `json:"operating_result"`

	TaxProvision  decimal.Decimal `json:"tax_provision"`
	ProfitSharing decimal.Decimal `json:"profit_sharing"`
	NetIncome     decimal.Decimal `json:"net_income"`
	NetMargin     decimal.Decimal `json:"net_margin"`
}

// ComputeStatement rolls period figures into an income statement
func ComputeStatement(f PeriodFigures) Statement {
	s := Statement{
		PeriodStart: f.Period.Start,
		PeriodEnd:   f.Period.End,
	}

	s.SalesRevenue = f.SalesGross
	s.ServiceRevenue = f.ServiceValue.Add(f.PartsValue)
	s.FreightRevenue = f.SalesFreight.Add(f.ServiceFreight)
	s.GrossRevenue = valueobject.SumMoney(s.SalesRevenue, s.ServiceRevenue, s.FreightRevenue)

	s.SalesReturns = f.Category(finance.DRESalesReturns)
	s.Abatements = f.Category(finance.DREAbatements)
	s.Discounts = f.SalesDiscount.Add(f.ServiceDiscount)
	s.SalesTaxes = f.Category(finance.DRESalesTaxes)
	s.Deductions = valueobject.SumMoney(s.SalesReturns, s.Abatements, s.Discounts, s.SalesTaxes)
	s.NetRevenue = s.GrossRevenue.Sub(s.Deductions)

	s.CostOfGoods = f.Category(finance.DRECostOfGoods).Add(f.SalesCost).Add(f.PartsCost)
	s.CostOfServices = f.Category(finance.DRECostOfServices)
	s.Costs = s.CostOfGoods.Add(s.CostOfServices)
	s.GrossProfit = s.NetRevenue.Sub(s.Costs)

	s.SellingExpenses = f.Category(finance.DRESellingExpenses)
	s.AdminExpenses = f.Category(finance.DREAdministrative)
	s.Payroll = f.Category(finance.DREPayroll)
	s.OperatingExpenses = valueobject.SumMoney(s.SellingExpenses, s.AdminExpenses, s.Payroll)

	s.FinancialIncome = f.Category(finance.DREFinancialIncome)
	s.FinancialExpenses = f.Category(finance.DREFinancialExpenses)
	s.FinancialResult = s.FinancialIncome.Sub(s.FinancialExpenses)
	s.OtherIncome = f.categories(finance.DREEquityMethod, finance.DREAssetSales, finance.DREOtherIncome)
	s.OtherExpenses = f.categories(finance.DRECostOfAssetSales, finance.DREOtherExpenses)
	s.OtherResult = s.OtherIncome.Sub(s.OtherExpenses)
	s.OperatingResult = s.GrossProfit.Sub(s.OperatingExpenses).Add(s.FinancialResult).Add(s.OtherResult)

	s.TaxProvision = f.Category(finance.DREIncomeTaxProvision)
	s.ProfitSharing = f.Category(finance.DREProfitSharing)
	s.NetIncome = s.OperatingResult.Sub(s.TaxProvision).Sub(s.ProfitSharing)
	s.NetMargin = valueobject.Ratio(s.NetIncome, s.GrossRevenue)
	return s
}

// Add sums two statements line by line. Margin is recomputed from the summed totals.
func (s Statement) Add(o Statement) Statement {
	sum := Statement{
		PeriodStart:       s.PeriodStart,
		PeriodEnd:         o.PeriodEnd,
		SalesRevenue:      s.SalesRevenue.Add(o.SalesRevenue),
		ServiceRevenue:    s.ServiceRevenue.Add(o.ServiceRevenue),
		FreightRevenue:    s.FreightRevenue.Add(o.FreightRevenue),
		GrossRevenue:      s.GrossRevenue.Add(o.GrossRevenue),
		SalesReturns:      s.SalesReturns.Add(o.SalesReturns),
		Abatements:        s.Abatements.Add(o.Abatements),
		Discounts:         s.Discounts.Add(o.Discounts),
		SalesTaxes:        s.SalesTaxes.Add(o.SalesTaxes),
		Deductions:        s.Deductions.Add(o.Deductions),
		NetRevenue:        s.NetRevenue.Add(o.NetRevenue),
		CostOfGoods:       s.CostOfGoods.Add(o.CostOfGoods),
		CostOfServices:    s.CostOfServices.Add(o.CostOfServices),
		Costs:             s.Costs.Add(o.Costs),
		GrossProfit:       s.GrossProfit.Add(o.GrossProfit),
		SellingExpenses:   s.SellingExpenses.Add(o.SellingExpenses),
		AdminExpenses:     s.AdminExpenses.Add(o.AdminExpenses),
		Payroll:           s.Payroll.Add(o.Payroll),
		OperatingExpenses: s.OperatingExpenses.Add(o.OperatingExpenses),
		FinancialIncome:   s.FinancialIncome.Add(o.FinancialIncome),
		FinancialExpenses: s.FinancialExpenses.Add(o.FinancialExpenses),
		FinancialResult:   s.FinancialResult.Add(o.FinancialResult),
		OtherIncome:       s.OtherIncome.Add(o.OtherIncome),
		OtherExpenses:     s.OtherExpenses.Add(o.OtherExpenses),
		OtherResult:       s.OtherResult.Add(o.OtherResult),
		OperatingResult:   s.OperatingResult.Add(o.OperatingResult),
		TaxProvision:      s.TaxProvision.Add(o.TaxProvision),
		ProfitSharing:     s.ProfitSharing.Add(o.ProfitSharing),
		NetIncome:         s.NetIncome.Add(o.NetIncome),
	}
	sum.NetMargin = valueobject.Ratio(sum.NetIncome, sum.GrossRevenue)
	return sum
}

// AnnualStatement holds twelve monthly statements and their totals
type AnnualStatement struct {
	Year   int         `json:"year"`
	Months []Statement `json:"months"`
	Total  Statement   `json:"total"`
}

// Aggregate builds the annual statement from monthly statements in calendar order
func Aggregate(year int, months []Statement) AnnualStatement {
	a := AnnualStatement{Year: year, Months: months}
	if len(months) == 0 {
		return a
	}
	total := zeroStatement()
	total.PeriodStart = months[0].PeriodStart
	for _, m := range months {
		total = total.Add(m)
	}
	a.Total = total
	return a
}

func zeroStatement() Statement {
	return ComputeStatement(PeriodFigures{})
}
