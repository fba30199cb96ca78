package dto

// ─── Sales ───────────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	CategoryID string `json:"category_id" validate:"required,uuid"`
	Quantity   int    `json:"quantity"    validate:"required,min=1"`
}

type RecordSaleRequest struct {
	Items        []SaleItemRequest `json:"items"         validate:"required,min=1,dive"`
	CashAmount   int64             `json:"cash_amount"   validate:"min=0"`
	OnlineAmount int64             `json:"online_amount" validate:"min=0"`
	SlipURL      *string           `json:"slip_url"      validate:"omitempty,url"`
}

type SaleItemResponse struct {
	CategoryID  string `json:"category_id"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	StockBefore int    `json:"stock_before"`
}

type SaleResponse struct {
	ID           string             `json:"id"`
	CreatedBy    string             `json:"created_by"`
	CreatorName  string             `json:"creator_name"`
	Items        []SaleItemResponse `json:"items"`
	Total        int64              `json:"total"`
	CashAmount   int64              `json:"cash_amount"`
	OnlineAmount int64              `json:"online_amount"`
	SlipURL      *string            `json:"slip_url,omitempty"`
	CreatedAt    string             `json:"created_at"`
}

// ─── Expenses ────────────────────────────────────────────────────────────────

type RecordExpenseRequest struct {
	Purpose      string  `json:"purpose"       validate:"required,min=2"`
	CashAmount   int64   `json:"cash_amount"   validate:"min=0"`
	OnlineAmount int64   `json:"online_amount" validate:"min=0"`
	ReceiptURL   *string `json:"receipt_url"   validate:"omitempty,url"`
}

type ExpenseResponse struct {
	ID           string  `json:"id"`
	CreatedBy    string  `json:"created_by"`
	CreatorName  string  `json:"creator_name"`
	Purpose      string  `json:"purpose"`
	Amount       int64   `json:"amount"`
	CashAmount   int64   `json:"cash_amount"`
	OnlineAmount int64   `json:"online_amount"`
	ReceiptURL   *string `json:"receipt_url,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// ─── Deposits ────────────────────────────────────────────────────────────────

type RecordDepositRequest struct {
	ReceivedBy  string  `json:"received_by" validate:"required,uuid"`
	Amount      int64   `json:"amount"      validate:"required,gt=0"`
	Description string  `json:"description"`
	SlipURL     *string `json:"slip_url"    validate:"omitempty,url"`
}

type DepositResponse struct {
	ID           string  `json:"id"`
	DepositedBy  string  `json:"deposited_by"`
	ReceivedBy   string  `json:"received_by"`
	DepositorName string `json:"depositor_name"`
	ReceiverName string  `json:"receiver_name"`
	Amount       int64   `json:"amount"`
	Description  string  `json:"description,omitempty"`
	SlipURL      *string `json:"slip_url,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// ─── Balances ────────────────────────────────────────────────────────────────

// BankBalance is a pointer: it is omitted entirely for managers, who are not
// allowed to see the bank figure.
type BalancesResponse struct {
	ShopBalance int64  `json:"shop_balance"`
	BankBalance *int64 `json:"bank_balance,omitempty"`
	UpdatedAt   string `json:"updated_at"`
}
