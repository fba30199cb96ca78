package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/feed"
	"github.com/mrinmay27/the149-store/internal/model"
	"github.com/mrinmay27/the149-store/internal/repository"
	"github.com/mrinmay27/the149-store/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// LedgerService owns the three compound mutations. Each call is one ACID
// transaction: validation happens against locked state before any write, and
// a validation failure leaves balances and stock untouched. Notification
// emission and feed publishing run after commit — best-effort by contract,
// since they have no bearing on the financial invariants.
type LedgerService interface {
	RecordSale(ctx context.Context, actor *model.Profile, req dto.RecordSaleRequest) (*dto.SaleResponse, error)
	RecordExpense(ctx context.Context, actor *model.Profile, req dto.RecordExpenseRequest) (*dto.ExpenseResponse, error)
	RecordDeposit(ctx context.Context, actor *model.Profile, req dto.RecordDepositRequest) (*dto.DepositResponse, error)

	GetBalances(ctx context.Context, role string) (*dto.BalancesResponse, error)
	ListSales(ctx context.Context, limit int) ([]dto.SaleResponse, error)
	ListExpenses(ctx context.Context, limit int) ([]dto.ExpenseResponse, error)
	ListDeposits(ctx context.Context, limit int) ([]dto.DepositResponse, error)
}

type ledgerService struct {
	ledger     repository.LedgerRepository
	categories repository.CategoryRepository
	sales      repository.SaleRepository
	expenses   repository.ExpenseRepository
	deposits   repository.DepositRepository
	profiles   repository.ProfileRepository
	dispatcher *worker.Dispatcher
	pub        feed.Publisher
}

func NewLedgerService(
	ledger repository.LedgerRepository,
	categories repository.CategoryRepository,
	sales repository.SaleRepository,
	expenses repository.ExpenseRepository,
	deposits repository.DepositRepository,
	profiles repository.ProfileRepository,
	dispatcher *worker.Dispatcher,
	pub feed.Publisher,
) LedgerService {
	if pub == nil {
		pub = feed.NopPublisher{}
	}
	return &ledgerService{
		ledger:     ledger,
		categories: categories,
		sales:      sales,
		expenses:   expenses,
		deposits:   deposits,
		profiles:   profiles,
		dispatcher: dispatcher,
		pub:        pub,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── RecordSale ────────────────────────────────────────────────────────────────
// Single transaction:
//  1. resolve every category and check stock — failure names the offending tier
//  2. validate cash + online == Σ price×quantity
//  3. insert the immutable sale with per-item snapshots
//  4. guarded stock decrement per item
//  5. credit shop (cash) and bank (online) under the balance row lock

func (s *ledgerService) RecordSale(ctx context.Context, actor *model.Profile, req dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	var sale model.Sale

	txErr := runTx(ctx, s.ledger.DB(), func(tx *gorm.DB) error {
		type resolvedItem struct {
			category model.PriceCategory
			quantity int
		}
		resolved := make([]resolvedItem, 0, len(req.Items))
		var total int64

		for _, item := range req.Items {
			cid, err := uuid.Parse(item.CategoryID)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrCategoryNotFound, item.CategoryID)
			}
			cat, err := s.categories.FindByIDTx(tx, cid)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrCategoryNotFound, item.CategoryID)
			}
			if cat.Stock < item.Quantity {
				return &InsufficientStockError{
					CategoryID: cat.ID,
					Price:      cat.Price,
					Requested:  item.Quantity,
					Available:  cat.Stock,
				}
			}
			total += cat.Price * int64(item.Quantity)
			resolved = append(resolved, resolvedItem{category: *cat, quantity: item.Quantity})
		}

		if req.CashAmount+req.OnlineAmount != total {
			return fmt.Errorf("%w: total %d, paid %d", ErrPaymentMismatch, total, req.CashAmount+req.OnlineAmount)
		}

		sale = model.Sale{
			CreatedBy:    actor.ID,
			Total:        total,
			CashAmount:   req.CashAmount,
			OnlineAmount: req.OnlineAmount,
			SlipURL:      req.SlipURL,
		}
		for _, r := range resolved {
			sale.Items = append(sale.Items, model.SaleItem{
				CategoryID:  r.category.ID,
				Price:       r.category.Price,
				Quantity:    r.quantity,
				StockBefore: r.category.Stock,
			})
		}
		if err := s.sales.CreateTx(tx, &sale); err != nil {
			return err
		}

		for _, r := range resolved {
			if err := s.categories.DecrementStockTx(tx, r.category.ID, r.quantity); err != nil {
				// The guard re-checks stock >= qty; losing here means a
				// concurrent sale raced us between resolve and decrement.
				return &InsufficientStockError{
					CategoryID: r.category.ID,
					Price:      r.category.Price,
					Requested:  r.quantity,
					Available:  r.category.Stock,
				}
			}
		}

		return s.ledger.Mutate(ctx, tx, func(b *model.AccountBalance) error {
			b.ShopBalance += req.CashAmount
			b.BankBalance += req.OnlineAmount
			return nil
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	s.afterCommit(ctx, worker.NotificationJob{
		Kind:      model.NotifSale,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Title:     "New sale recorded",
		Description: fmt.Sprintf("%s sold %d item(s) for %d", actor.Name,
			countUnits(sale.Items), sale.Total),
		Metadata: map[string]interface{}{"sale_id": sale.ID.String(), "total": sale.Total},
	}, feed.StreamSales, feed.StreamCategories, feed.StreamBalances)

	resp := saleToResponse(&sale)
	resp.CreatorName = actor.Name
	return resp, nil
}

// ── RecordExpense ─────────────────────────────────────────────────────────────

func (s *ledgerService) RecordExpense(ctx context.Context, actor *model.Profile, req dto.RecordExpenseRequest) (*dto.ExpenseResponse, error) {
	if req.CashAmount+req.OnlineAmount <= 0 {
		return nil, fmt.Errorf("%w: expense amount must be positive", ErrPaymentMismatch)
	}
	// Only owners may spend from the bank balance.
	if req.OnlineAmount > 0 && actor.Role != model.RoleOwner {
		return nil, ErrOwnerRequired
	}

	var expense model.Expense
	txErr := runTx(ctx, s.ledger.DB(), func(tx *gorm.DB) error {
		// Lock, validate against the locked snapshot, apply — one unit. Two
		// concurrent expenses serialize here; the loser re-validates against
		// the committed balance and fails cleanly instead of overdrawing.
		if err := s.ledger.Mutate(ctx, tx, func(b *model.AccountBalance) error {
			if req.CashAmount > b.ShopBalance {
				return insufficientShop(req.CashAmount, b.ShopBalance)
			}
			if req.OnlineAmount > b.BankBalance {
				return insufficientBank(req.OnlineAmount, b.BankBalance)
			}
			b.ShopBalance -= req.CashAmount
			b.BankBalance -= req.OnlineAmount
			return nil
		}); err != nil {
			return err
		}

		expense = model.Expense{
			CreatedBy:    actor.ID,
			Purpose:      req.Purpose,
			Amount:       req.CashAmount + req.OnlineAmount,
			CashAmount:   req.CashAmount,
			OnlineAmount: req.OnlineAmount,
			ReceiptURL:   req.ReceiptURL,
		}
		return s.expenses.CreateTx(tx, &expense)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.afterCommit(ctx, worker.NotificationJob{
		Kind:        model.NotifExpense,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Title:       "New expense logged",
		Description: fmt.Sprintf("%s spent %d on %s", actor.Name, expense.Amount, expense.Purpose),
		Metadata:    map[string]interface{}{"expense_id": expense.ID.String(), "amount": expense.Amount},
	}, feed.StreamBalances)

	resp := expenseToResponse(&expense)
	resp.CreatorName = actor.Name
	return resp, nil
}

// ── RecordDeposit ─────────────────────────────────────────────────────────────

func (s *ledgerService) RecordDeposit(ctx context.Context, actor *model.Profile, req dto.RecordDepositRequest) (*dto.DepositResponse, error) {
	receiverID, err := uuid.Parse(req.ReceivedBy)
	if err != nil {
		return nil, fmt.Errorf("%w: receiver", ErrNotFound)
	}
	receiver, err := s.profiles.FindByID(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("%w: receiver", ErrNotFound)
	}

	var deposit model.Deposit
	txErr := runTx(ctx, s.ledger.DB(), func(tx *gorm.DB) error {
		// Same locked-read discipline as expenses: the shop→bank move is
		// conservative by construction, only the shop floor is checked.
		if err := s.ledger.Mutate(ctx, tx, func(b *model.AccountBalance) error {
			if req.Amount > b.ShopBalance {
				return insufficientShop(req.Amount, b.ShopBalance)
			}
			b.ShopBalance -= req.Amount
			b.BankBalance += req.Amount
			return nil
		}); err != nil {
			return err
		}

		deposit = model.Deposit{
			DepositedBy: actor.ID,
			ReceivedBy:  receiver.ID,
			Amount:      req.Amount,
			Description: req.Description,
			SlipURL:     req.SlipURL,
		}
		return s.deposits.CreateTx(tx, &deposit)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.afterCommit(ctx, worker.NotificationJob{
		Kind:        model.NotifDeposit,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Title:       "Bank deposit recorded",
		Description: fmt.Sprintf("%s deposited %d, received by %s", actor.Name, deposit.Amount, receiver.Name),
		Metadata:    map[string]interface{}{"deposit_id": deposit.ID.String(), "amount": deposit.Amount},
	}, feed.StreamBalances)

	resp := depositToResponse(&deposit)
	resp.DepositorName = actor.Name
	resp.ReceiverName = receiver.Name
	return resp, nil
}

// afterCommit runs the post-transaction side effects: notification enqueue and
// feed publish. Both are fire-and-forget relative to the committed mutation.
func (s *ledgerService) afterCommit(ctx context.Context, job worker.NotificationJob, streams ...string) {
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueNotification(ctx, job); err != nil {
			log.Error().Err(err).Str("kind", job.Kind).Msg("notification enqueue failed")
		}
	}
	for _, stream := range streams {
		s.pub.Publish(ctx, feed.Event{Stream: stream, Action: "insert"})
	}
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *ledgerService) GetBalances(ctx context.Context, role string) (*dto.BalancesResponse, error) {
	b, err := s.ledger.Get(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.BalancesResponse{
		ShopBalance: b.ShopBalance,
		UpdatedAt:   b.UpdatedAt.UTC().Format(time.RFC3339),
	}
	// Managers never see the bank figure.
	if role == model.RoleOwner {
		bank := b.BankBalance
		resp.BankBalance = &bank
	}
	return resp, nil
}

func (s *ledgerService) ListSales(ctx context.Context, limit int) ([]dto.SaleResponse, error) {
	sales, err := s.sales.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		r := saleToResponse(&sales[i])
		if sales[i].Creator != nil {
			r.CreatorName = sales[i].Creator.Name
		}
		resp = append(resp, *r)
	}
	return resp, nil
}

func (s *ledgerService) ListExpenses(ctx context.Context, limit int) ([]dto.ExpenseResponse, error) {
	expenses, err := s.expenses.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		r := expenseToResponse(&expenses[i])
		if expenses[i].Creator != nil {
			r.CreatorName = expenses[i].Creator.Name
		}
		resp = append(resp, *r)
	}
	return resp, nil
}

func (s *ledgerService) ListDeposits(ctx context.Context, limit int) ([]dto.DepositResponse, error) {
	deposits, err := s.deposits.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.DepositResponse, 0, len(deposits))
	for i := range deposits {
		r := depositToResponse(&deposits[i])
		if deposits[i].Depositor != nil {
			r.DepositorName = deposits[i].Depositor.Name
		}
		if deposits[i].Receiver != nil {
			r.ReceiverName = deposits[i].Receiver.Name
		}
		resp = append(resp, *r)
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func countUnits(items []model.SaleItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func saleToResponse(v *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, dto.SaleItemResponse{
			CategoryID:  item.CategoryID.String(),
			Price:       item.Price,
			Quantity:    item.Quantity,
			StockBefore: item.StockBefore,
		})
	}
	return &dto.SaleResponse{
		ID:           v.ID.String(),
		CreatedBy:    v.CreatedBy.String(),
		Items:        items,
		Total:        v.Total,
		CashAmount:   v.CashAmount,
		OnlineAmount: v.OnlineAmount,
		SlipURL:      v.SlipURL,
		CreatedAt:    v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func expenseToResponse(e *model.Expense) *dto.ExpenseResponse {
	return &dto.ExpenseResponse{
		ID:           e.ID.String(),
		CreatedBy:    e.CreatedBy.String(),
		Purpose:      e.Purpose,
		Amount:       e.Amount,
		CashAmount:   e.CashAmount,
		OnlineAmount: e.OnlineAmount,
		ReceiptURL:   e.ReceiptURL,
		CreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func depositToResponse(d *model.Deposit) *dto.DepositResponse {
	return &dto.DepositResponse{
		ID:          d.ID.String(),
		DepositedBy: d.DepositedBy.String(),
		ReceivedBy:  d.ReceivedBy.String(),
		Amount:      d.Amount,
		Description: d.Description,
		SlipURL:     d.SlipURL,
		CreatedAt:   d.CreatedAt.UTC().Format(time.RFC3339),
	}
}
