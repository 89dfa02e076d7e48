package finance

// DREKind classifies an income statement category
type DREKind string

const (
	DREKindRevenue   DREKind = "revenue"
	DREKindDeduction DREKind = "deduction"
	DREKindCost      DREKind = "cost"
	DREKindExpense   DREKind = "expense"
)

// DRECategory is reference data used to classify settled entries in the income statement
type DRECategory struct {
	Code         int     `gorm:"primaryKey;autoIncrement:false" json:"code"`
	Name         string  `gorm:"type:varchar(200);not null" json:"name"`
	Kind         DREKind `gorm:"type:varchar(20);not null" json:"kind"`
	DisplayOrder int     `gorm:"not null" json:"display_order"`
	Active       bool    `gorm:"not null;default:true" json:"active"`
}

// TableName returns the table name for GORM
func (DRECategory) TableName() string {
	return "dre_categories"
}

// Standard category codes
const (
	DRESalesRevenue       = 1
	DREServiceRevenue     = 3
	DRESalesReturns       = 5
	DREAbatements         = 6
	DRESalesTaxes         = 7
	DRECostOfGoods        = 8
	DRECostOfServices     = 10
	DRESellingExpenses    = 11
	DREAdministrative     = 12
	DREPayroll            = 13
	DREFinancialExpenses  = 14
	DREFinancialIncome    = 15
	DREEquityMethod       = 16
	DREAssetSales         = 17
	DRECostOfAssetSales   = 18
	DREIncomeTaxProvision = 19
	DREProfitSharing      = 20
	DREOtherIncome        = 21
	DREOtherExpenses      = 22
)

var defaultCategories = []DRECategory{
	{DRESalesRevenue, "(+) Product Sales", DREKindRevenue, 1, true},
	{DREServiceRevenue, "(+) Services Rendered", DREKindRevenue, 3, true},
	{DRESalesReturns, "(-) Sales Returns", DREKindDeduction, 5, true},
	{DREAbatements, "(-) Abatements", DREKindDeduction, 6, true},
	{DRESalesTaxes, "(-) Taxes on Sales", DREKindDeduction, 7, true},
	{DRECostOfGoods, "(-) Cost of Goods Sold", DREKindCost, 8, true},
	{DRECostOfServices, "(-) Cost of Services Rendered", DREKindCost, 10, true},
	{DRESellingExpenses, "(-) Selling Expenses", DREKindExpense, 11, true},
	{DREAdministrative, "(-) Administrative Expenses", DREKindExpense, 12, true},
	{DREPayroll, "(-) Payroll", DREKindExpense, 13, true},
	{DREFinancialExpenses, "(-) Financial Expenses", DREKindExpense, 14, true},
	{DREFinancialIncome, "(+) Monetary and Exchange Gains", DREKindRevenue, 15, true},
	{DREEquityMethod, "(+) Equity Method Income", DREKindRevenue, 16, true},
	{DREAssetSales, "(+) Sale of Non-current Assets", DREKindRevenue, 17, true},
	{DRECostOfAssetSales, "(-) Cost of Non-current Assets Sold", DREKindCost, 18, true},
	{DREIncomeTaxProvision, "(-) Income Tax Provision", DREKindExpense, 19, true},
	{DREProfitSharing, "(-) Management Profit Sharing", DREKindExpense, 20, true},
	{DREOtherIncome, "(+) Other Income", DREKindRevenue, 21, true},
	{DREOtherExpenses, "(-) Other Expenses", DREKindExpense, 22, true},
}

// DefaultDRECategories returns the standard taxonomy in display order
func DefaultDRECategories() []DRECategory {
	out := make([]DRECategory, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}

// DRECategoryByCode looks up a standard category
func DRECategoryByCode(code int) (DRECategory, bool) {
	for _, c := range defaultCategories {
		if c.Code == code {
			return c, true
		}
	}
	return DRECategory{}, false
}

// IsKnownDRECode reports whether the code belongs to the standard taxonomy
func IsKnownDRECode(code int) bool {
	_, ok := DRECategoryByCode(code)
	return ok
}

// IsPayableKind reports whether entries of this kind are summed from payables.
// Revenue categories are summed from receivables.
func (k DREKind) IsPayableKind() bool {
	return k == DREKindCost || k == DREKindExpense || k == DREKindDeduction
}
