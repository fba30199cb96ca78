package service_test

import (
	"context"
	"testing"

	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/model"
	"github.com/mrinmay27/the149-store/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReportFixture() (*stubSaleRepo, *stubExpenseRepo, *stubDepositRepo, *stubLedgerRepo) {
	sales := &stubSaleRepo{}
	tier149 := uuid.New()
	tier200 := uuid.New()
	_ = sales.CreateTx(nil, &model.Sale{
		Total: 298, CashAmount: 200, OnlineAmount: 98,
		Items: []model.SaleItem{{CategoryID: tier149, Price: 149, Quantity: 2, StockBefore: 5}},
	})
	_ = sales.CreateTx(nil, &model.Sale{
		Total: 200, CashAmount: 200,
		Items: []model.SaleItem{{CategoryID: tier200, Price: 200, Quantity: 1, StockBefore: 3}},
	})

	expenses := &stubExpenseRepo{}
	_ = expenses.CreateTx(nil, &model.Expense{Purpose: "tea", Amount: 50, CashAmount: 50})

	deposits := &stubDepositRepo{}
	_ = deposits.CreateTx(nil, &model.Deposit{Amount: 100})

	return sales, expenses, deposits, newStubLedgerRepo(1000, 400)
}

func TestSummary_AggregatesPerTier(t *testing.T) {
	sales, expenses, deposits, ledger := seedReportFixture()
	svc := service.NewReportService(sales, expenses, deposits, ledger)

	resp, err := svc.Summary(context.Background(), model.RoleOwner, dto.ReportFilter{})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.SaleCount)
	assert.Equal(t, int64(498), resp.SalesTotal)
	assert.Equal(t, int64(400), resp.SalesCash)
	assert.Equal(t, int64(98), resp.SalesOnline)
	assert.Equal(t, 1, resp.ExpenseCount)
	assert.Equal(t, int64(50), resp.ExpensesTotal)
	assert.Equal(t, 1, resp.DepositCount)
	assert.Equal(t, int64(100), resp.DepositsTotal)

	require.Len(t, resp.Categories, 2)
	assert.Equal(t, int64(149), resp.Categories[0].Price)
	assert.Equal(t, 2, resp.Categories[0].UnitsSold)
	assert.Equal(t, int64(298), resp.Categories[0].Revenue)
	assert.Equal(t, int64(200), resp.Categories[1].Price)

	// 298/498 = 59.84%, 200/498 = 40.16%
	assert.True(t, resp.Categories[0].RevenueShare.Equal(decimal.RequireFromString("59.84")),
		"got %s", resp.Categories[0].RevenueShare)
	assert.True(t, resp.Categories[1].RevenueShare.Equal(decimal.RequireFromString("40.16")),
		"got %s", resp.Categories[1].RevenueShare)

	// 498/2 = 249
	assert.True(t, resp.AverageSale.Equal(decimal.NewFromInt(249)), "got %s", resp.AverageSale)

	require.NotNil(t, resp.BankBalance)
	assert.Equal(t, int64(400), *resp.BankBalance)
}

func TestSummary_BankHiddenFromManagers(t *testing.T) {
	sales, expenses, deposits, ledger := seedReportFixture()
	svc := service.NewReportService(sales, expenses, deposits, ledger)

	resp, err := svc.Summary(context.Background(), model.RoleManager, dto.ReportFilter{})
	require.NoError(t, err)
	assert.Nil(t, resp.BankBalance)
	assert.Equal(t, int64(1000), resp.ShopBalance)
}

func TestSummary_EmptyRange(t *testing.T) {
	svc := service.NewReportService(&stubSaleRepo{}, &stubExpenseRepo{}, &stubDepositRepo{}, newStubLedgerRepo(0, 0))

	resp, err := svc.Summary(context.Background(), model.RoleOwner, dto.ReportFilter{})
	require.NoError(t, err)
	assert.Zero(t, resp.SaleCount)
	assert.True(t, resp.AverageSale.IsZero())
	assert.Empty(t, resp.Categories)
}

func TestSummary_BadDate(t *testing.T) {
	svc := service.NewReportService(&stubSaleRepo{}, &stubExpenseRepo{}, &stubDepositRepo{}, newStubLedgerRepo(0, 0))
	_, err := svc.Summary(context.Background(), model.RoleOwner, dto.ReportFilter{From: "17-08-2026"})
	require.Error(t, err)
}
