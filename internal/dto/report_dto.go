package dto

import "github.com/shopspring/decimal"

// ReportFilter is bound from the query string of GET /v1/reports/summary.
// Dates are YYYY-MM-DD; an empty range defaults to today.
type ReportFilter struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   validate:"omitempty,datetime=2006-01-02"`
}

// CategorySummary aggregates one price tier across the range.
type CategorySummary struct {
	Price        int64           `json:"price"`
	UnitsSold    int             `json:"units_sold"`
	Revenue      int64           `json:"revenue"`
	RevenueShare decimal.Decimal `json:"revenue_share"` // percentage, 2dp
}

type SummaryResponse struct {
	From string `json:"from"`
	To   string `json:"to"`

	SaleCount      int   `json:"sale_count"`
	SalesTotal     int64 `json:"sales_total"`
	SalesCash      int64 `json:"sales_cash"`
	SalesOnline    int64 `json:"sales_online"`
	ExpenseCount   int   `json:"expense_count"`
	ExpensesTotal  int64 `json:"expenses_total"`
	ExpensesCash   int64 `json:"expenses_cash"`
	ExpensesOnline int64 `json:"expenses_online"`
	DepositCount   int   `json:"deposit_count"`
	DepositsTotal  int64 `json:"deposits_total"`

	AverageSale decimal.Decimal   `json:"average_sale"`
	Categories  []CategorySummary `json:"categories"`

	ShopBalance int64  `json:"shop_balance"`
	BankBalance *int64 `json:"bank_balance,omitempty"`
}
