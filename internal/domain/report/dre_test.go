package report

import (
	"testing"
	"time"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeStatement_Reference(t *testing.T) {
	s := ComputeStatement(PeriodFigures{
		Period:     shared.MonthPeriod(2026, time.March),
		SalesGross: dec("10000"),
		Categories: map[int]decimal.Decimal{
			finance.DRESalesReturns:   dec("500"),
			finance.DRECostOfGoods:    dec("3000"),
			finance.DREAdministrative: dec("2000"),
		},
	})

	assert.True(t, dec("10000").Equal(s.GrossRevenue))
	assert.True(t, dec("500").Equal(s.Deductions))
	assert.True(t, dec("9500").Equal(s.NetRevenue))
	assert.True(t, dec("3000").Equal(s.Costs))
	assert.True(t, dec("6500").Equal(s.GrossProfit))
	assert.True(t, dec("2000").Equal(s.OperatingExpenses))
	assert.True(t, dec("4500").Equal(s.NetIncome))
	assert.True(t, dec("45").Equal(s.NetMargin))
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), s.PeriodEnd)
}

func TestComputeStatement_AllLines(t *testing.T) {
	s := ComputeStatement(PeriodFigures{
		SalesGross:      dec("1000"),
		SalesDiscount:   dec("50"),
		SalesFreight:    dec("20"),
		SalesCost:       dec("400"),
		ServiceValue:    dec("300"),
		PartsValue:      dec("200"),
		PartsCost:       dec("120"),
		ServiceDiscount: dec("10"),
		ServiceFreight:  dec("5"),
		Categories: map[int]decimal.Decimal{
			finance.DREAbatements:         dec("15"),
			finance.DRESalesTaxes:         dec("100"),
			finance.DRECostOfServices:     dec("30"),
			finance.DRESellingExpenses:    dec("40"),
			finance.DREPayroll:            dec("200"),
			finance.DREFinancialIncome:    dec("12"),
			finance.DREFinancialExpenses:  dec("7"),
			finance.DREEquityMethod:       dec("3"),
			finance.DREAssetSales:         dec("50"),
			finance.DREOtherIncome:        dec("5"),
			finance.DRECostOfAssetSales:   dec("35"),
			finance.DREOtherExpenses:      dec("8"),
			finance.DREIncomeTaxProvision: dec("60"),
			finance.DREProfitSharing:      dec("20"),
		},
	})

	// gross 1000 + 500 + 25
	assert.True(t, dec("1525").Equal(s.GrossRevenue))
	// 15 + 60 + 100
	assert.True(t, dec("175").Equal(s.Deductions))
	assert.True(t, dec("1350").Equal(s.NetRevenue))
	// 400 + 120 + 30
	assert.True(t, dec("550").Equal(s.Costs))
	assert.True(t, dec("800").Equal(s.GrossProfit))
	assert.True(t, dec("240").Equal(s.OperatingExpenses))
	assert.True(t, dec("5").Equal(s.FinancialResult))
	assert.True(t, dec("15").Equal(s.OtherResult))
	// 800 - 240 + 5 + 15
	assert.True(t, dec("580").Equal(s.OperatingResult))
	assert.True(t, dec("500").Equal(s.NetIncome))
	// 500 / 1525 = 32.786...
	assert.True(t, dec("32.79").Equal(s.NetMargin))
}

func TestComputeStatement_ZeroRevenue(t *testing.T) {
	s := ComputeStatement(PeriodFigures{
		Categories: map[int]decimal.Decimal{finance.DREAdministrative: dec("100")},
	})
	assert.True(t, s.GrossRevenue.IsZero())
	assert.True(t, dec("-100").Equal(s.NetIncome))
	assert.True(t, s.NetMargin.IsZero())
}

func TestAggregate_RecomputesMargin(t *testing.T) {
	months := make([]Statement, 0, 12)
	for m := time.January; m <= time.December; m++ {
		f := PeriodFigures{Period: shared.MonthPeriod(2026, m)}
		switch m {
		case time.January:
			// margin 90%
			f.SalesGross = dec("100")
			f.Categories = map[int]decimal.Decimal{finance.DREAdministrative: dec("10")}
		case time.February:
			// margin 10%
			f.SalesGross = dec("900")
			f.Categories = map[int]decimal.Decimal{finance.DREAdministrative: dec("810")}
		}
		months = append(months, ComputeStatement(f))
	}

	a := Aggregate(2026, months)
	require.Len(t, a.Months, 12)
	assert.True(t, dec("1000").Equal(a.Total.GrossRevenue))
	assert.True(t, dec("180").Equal(a.Total.NetIncome))
	// 180 / 1000, not the average of 90 and 10
	assert.True(t, dec("18").Equal(a.Total.NetMargin))
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), a.Total.PeriodStart)
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), a.Total.PeriodEnd)
}
