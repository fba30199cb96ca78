package service

import (
	"context"
	"sort"
	"time"

	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/model"
	"github.com/mrinmay27/the149-store/internal/repository"

	"github.com/shopspring/decimal"
)

// ReportService aggregates committed ledger entries over a date range.
// It only ever reads — totals come from the immutable rows, balances from
// the singleton snapshot.
type ReportService interface {
	Summary(ctx context.Context, role string, filter dto.ReportFilter) (*dto.SummaryResponse, error)
}

type reportService struct {
	sales    repository.SaleRepository
	expenses repository.ExpenseRepository
	deposits repository.DepositRepository
	ledger   repository.LedgerRepository
}

func NewReportService(
	sales repository.SaleRepository,
	expenses repository.ExpenseRepository,
	deposits repository.DepositRepository,
	ledger repository.LedgerRepository,
) ReportService {
	return &reportService{sales: sales, expenses: expenses, deposits: deposits, ledger: ledger}
}

const dateLayout = "2006-01-02"

func (s *reportService) Summary(ctx context.Context, role string, filter dto.ReportFilter) (*dto.SummaryResponse, error) {
	from, to, err := resolveRange(filter)
	if err != nil {
		return nil, err
	}

	sales, err := s.sales.ListBetween(ctx, from.Unix(), to.Unix())
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListBetween(ctx, from.Unix(), to.Unix())
	if err != nil {
		return nil, err
	}
	deposits, err := s.deposits.ListBetween(ctx, from.Unix(), to.Unix())
	if err != nil {
		return nil, err
	}
	balances, err := s.ledger.Get(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.SummaryResponse{
		From:        from.Format(dateLayout),
		To:          to.Add(-24 * time.Hour).Format(dateLayout),
		SaleCount:   len(sales),
		ShopBalance: balances.ShopBalance,
	}
	if role == model.RoleOwner {
		bank := balances.BankBalance
		resp.BankBalance = &bank
	}

	perTier := make(map[int64]*dto.CategorySummary)
	for _, sale := range sales {
		resp.SalesTotal += sale.Total
		resp.SalesCash += sale.CashAmount
		resp.SalesOnline += sale.OnlineAmount
		for _, item := range sale.Items {
			t, ok := perTier[item.Price]
			if !ok {
				t = &dto.CategorySummary{Price: item.Price}
				perTier[item.Price] = t
			}
			t.UnitsSold += item.Quantity
			t.Revenue += item.Price * int64(item.Quantity)
		}
	}

	resp.ExpenseCount = len(expenses)
	for _, e := range expenses {
		resp.ExpensesTotal += e.Amount
		resp.ExpensesCash += e.CashAmount
		resp.ExpensesOnline += e.OnlineAmount
	}

	resp.DepositCount = len(deposits)
	for _, d := range deposits {
		resp.DepositsTotal += d.Amount
	}

	if resp.SaleCount > 0 {
		resp.AverageSale = decimal.NewFromInt(resp.SalesTotal).
			Div(decimal.NewFromInt(int64(resp.SaleCount))).Round(2)
	}

	salesTotal := decimal.NewFromInt(resp.SalesTotal)
	hundred := decimal.NewFromInt(100)
	resp.Categories = make([]dto.CategorySummary, 0, len(perTier))
	for _, t := range perTier {
		if !salesTotal.IsZero() {
			t.RevenueShare = decimal.NewFromInt(t.Revenue).Div(salesTotal).Mul(hundred).Round(2)
		}
		resp.Categories = append(resp.Categories, *t)
	}
	sort.Slice(resp.Categories, func(i, j int) bool {
		return resp.Categories[i].Price < resp.Categories[j].Price
	})

	return resp, nil
}

// resolveRange turns the filter into [from, to) day bounds in UTC.
// Empty filter = today; a single bound pins the range to that one day.
func resolveRange(filter dto.ReportFilter) (time.Time, time.Time, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	from, to := today, today

	if filter.From != "" {
		t, err := time.Parse(dateLayout, filter.From)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}
	if filter.To != "" {
		t, err := time.Parse(dateLayout, filter.To)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t
	} else if filter.From != "" {
		to = from
	}
	if to.Before(from) {
		to = from
	}
	return from, to.Add(24 * time.Hour), nil
}
