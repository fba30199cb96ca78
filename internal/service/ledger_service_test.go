package service_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/model"
	"github.com/mrinmay27/the149-store/internal/repository"
	"github.com/mrinmay27/the149-store/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubLedgerRepo keeps the singleton balance in memory. Mutate serializes
// through a mutex and applies fn to a working copy, committing only on nil
// error — the same lock-validate-apply contract the SQL implementation has.
type stubLedgerRepo struct {
	mu      sync.Mutex
	balance model.AccountBalance
}

func newStubLedgerRepo(shop, bank int64) *stubLedgerRepo {
	return &stubLedgerRepo{balance: model.AccountBalance{ID: uuid.New(), ShopBalance: shop, BankBalance: bank}}
}

func (r *stubLedgerRepo) Get(_ context.Context) (*model.AccountBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.balance
	return &b, nil
}

func (r *stubLedgerRepo) Mutate(_ context.Context, _ *gorm.DB, fn func(b *model.AccountBalance) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	working := r.balance
	if err := fn(&working); err != nil {
		return err
	}
	r.balance = working
	return nil
}

func (r *stubLedgerRepo) EnsureSingleton(_ context.Context) error { return nil }
func (r *stubLedgerRepo) DB() *gorm.DB                            { return nil }

var _ repository.LedgerRepository = (*stubLedgerRepo)(nil)

// stubCategoryRepo is an in-memory CategoryRepository.
type stubCategoryRepo struct {
	mu   sync.Mutex
	cats map[uuid.UUID]*model.PriceCategory
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{cats: make(map[uuid.UUID]*model.PriceCategory)}
}

func (r *stubCategoryRepo) add(price int64, stock int) uuid.UUID {
	id := uuid.New()
	r.cats[id] = &model.PriceCategory{ID: id, Price: price, Stock: stock}
	return id
}

func (r *stubCategoryRepo) Create(_ context.Context, c *model.PriceCategory) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cats[c.ID] = c
	return nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PriceCategory, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubCategoryRepo) FindByPrice(_ context.Context, price int64) (*model.PriceCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cats {
		if c.Price == price {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoryRepo) List(_ context.Context) ([]model.PriceCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.PriceCategory, 0, len(r.cats))
	for _, c := range r.cats {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c *model.PriceCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cats[c.ID] = c
	return nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cats, id)
	return nil
}

func (r *stubCategoryRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.PriceCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCategoryRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cats[id]
	if !ok || c.Stock < qty {
		return gorm.ErrRecordNotFound
	}
	c.Stock -= qty
	return nil
}

func (r *stubCategoryRepo) DB() *gorm.DB { return nil }

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

// stubSaleRepo captures created sales.
type stubSaleRepo struct {
	mu    sync.Mutex
	sales []model.Sale
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales = append(r.sales, *s)
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sales {
		if r.sales[i].ID == id {
			return &r.sales[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSaleRepo) ListRecent(_ context.Context, limit int) ([]model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sales) > limit {
		return r.sales[len(r.sales)-limit:], nil
	}
	return r.sales, nil
}

func (r *stubSaleRepo) ListBetween(_ context.Context, _, _ int64) ([]model.Sale, error) {
	return r.ListRecent(context.Background(), len(r.sales))
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

type stubExpenseRepo struct {
	mu       sync.Mutex
	expenses []model.Expense
}

func (r *stubExpenseRepo) CreateTx(_ *gorm.DB, e *model.Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expenses = append(r.expenses, *e)
	return nil
}

func (r *stubExpenseRepo) ListRecent(_ context.Context, _ int) ([]model.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Expense(nil), r.expenses...), nil
}

func (r *stubExpenseRepo) ListBetween(_ context.Context, _, _ int64) ([]model.Expense, error) {
	return r.ListRecent(context.Background(), 0)
}

var _ repository.ExpenseRepository = (*stubExpenseRepo)(nil)

type stubDepositRepo struct {
	mu       sync.Mutex
	deposits []model.Deposit
}

func (r *stubDepositRepo) CreateTx(_ *gorm.DB, d *model.Deposit) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deposits = append(r.deposits, *d)
	return nil
}

func (r *stubDepositRepo) ListRecent(_ context.Context, _ int) ([]model.Deposit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Deposit(nil), r.deposits...), nil
}

func (r *stubDepositRepo) ListBetween(_ context.Context, _, _ int64) ([]model.Deposit, error) {
	return r.ListRecent(context.Background(), 0)
}

var _ repository.DepositRepository = (*stubDepositRepo)(nil)

// stubProfileRepo is shared by ledger and auth tests.
type stubProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*model.Profile
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{profiles: make(map[uuid.UUID]*model.Profile)}
}

func (r *stubProfileRepo) add(p model.Profile) *model.Profile {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := p
	r.profiles[p.ID] = &cp
	return &cp
}

func (r *stubProfileRepo) Create(_ context.Context, p *model.Profile) error {
	r.add(*p)
	return nil
}

func (r *stubProfileRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProfileRepo) FindByPhone(_ context.Context, phone string) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Phone == phone {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProfileRepo) List(_ context.Context) ([]model.Profile, error) {
	return r.filter(func(*model.Profile) bool { return true }), nil
}

func (r *stubProfileRepo) ListApproved(_ context.Context) ([]model.Profile, error) {
	return r.filter(func(p *model.Profile) bool { return p.Approved }), nil
}

func (r *stubProfileRepo) ListApprovedByRole(_ context.Context, role string) ([]model.Profile, error) {
	return r.filter(func(p *model.Profile) bool { return p.Approved && p.Role == role }), nil
}

func (r *stubProfileRepo) ListAdmins(_ context.Context) ([]model.Profile, error) {
	return r.filter(func(p *model.Profile) bool { return p.IsAdmin }), nil
}

func (r *stubProfileRepo) Update(_ context.Context, p *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	r.profiles[p.ID] = &cp
	return nil
}

func (r *stubProfileRepo) filter(keep func(*model.Profile) bool) []model.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Profile
	for _, p := range r.profiles {
		if keep(p) {
			out = append(out, *p)
		}
	}
	return out
}

var _ repository.ProfileRepository = (*stubProfileRepo)(nil)

// ── Fixture ───────────────────────────────────────────────────────────────────

type ledgerFixture struct {
	svc      service.LedgerService
	ledger   *stubLedgerRepo
	cats     *stubCategoryRepo
	sales    *stubSaleRepo
	expenses *stubExpenseRepo
	deposits *stubDepositRepo
	profiles *stubProfileRepo
}

func newLedgerFixture(shop, bank int64) *ledgerFixture {
	f := &ledgerFixture{
		ledger:   newStubLedgerRepo(shop, bank),
		cats:     newStubCategoryRepo(),
		sales:    &stubSaleRepo{},
		expenses: &stubExpenseRepo{},
		deposits: &stubDepositRepo{},
		profiles: newStubProfileRepo(),
	}
	f.svc = service.NewLedgerService(f.ledger, f.cats, f.sales, f.expenses, f.deposits, f.profiles, nil, nil)
	return f
}

func manager(name string) *model.Profile {
	return &model.Profile{ID: uuid.New(), Name: name, Role: model.RoleManager, Approved: true}
}

func owner(name string) *model.Profile {
	return &model.Profile{ID: uuid.New(), Name: name, Role: model.RoleOwner, Approved: true, IsAdmin: true}
}

// ── RecordSale ────────────────────────────────────────────────────────────────

func TestRecordSale_CreditsBalancesAndDecrementsStock(t *testing.T) {
	f := newLedgerFixture(1000, 500)
	tier := f.cats.add(149, 5)

	resp, err := f.svc.RecordSale(context.Background(), manager("Asha"), dto.RecordSaleRequest{
		Items:        []dto.SaleItemRequest{{CategoryID: tier.String(), Quantity: 2}},
		CashAmount:   200,
		OnlineAmount: 98,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(298), resp.Total)
	assert.Equal(t, "Asha", resp.CreatorName)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 5, resp.Items[0].StockBefore)

	cat, _ := f.cats.FindByID(context.Background(), tier)
	assert.Equal(t, 3, cat.Stock)

	b, _ := f.ledger.Get(context.Background())
	assert.Equal(t, int64(1200), b.ShopBalance)
	assert.Equal(t, int64(598), b.BankBalance)
}

func TestRecordSale_PaymentMismatchRejected(t *testing.T) {
	f := newLedgerFixture(1000, 500)
	tier := f.cats.add(149, 5)

	_, err := f.svc.RecordSale(context.Background(), manager("Asha"), dto.RecordSaleRequest{
		Items:        []dto.SaleItemRequest{{CategoryID: tier.String(), Quantity: 2}},
		CashAmount:   200,
		OnlineAmount: 50, // 250 != 298
	})
	require.ErrorIs(t, err, service.ErrPaymentMismatch)

	// Nothing moved.
	cat, _ := f.cats.FindByID(context.Background(), tier)
	assert.Equal(t, 5, cat.Stock)
	b, _ := f.ledger.Get(context.Background())
	assert.Equal(t, int64(1000), b.ShopBalance)
	assert.Equal(t, int64(500), b.BankBalance)
}

func TestRecordSale_MultiItemShortageRejectsWholeSale(t *testing.T) {
	f := newLedgerFixture(1000, 500)
	plenty := f.cats.add(149, 10)
	scarce := f.cats.add(200, 1)

	_, err := f.svc.RecordSale(context.Background(), manager("Asha"), dto.RecordSaleRequest{
		Items: []dto.SaleItemRequest{
			{CategoryID: plenty.String(), Quantity: 3},
			{CategoryID: scarce.String(), Quantity: 2},
		},
		CashAmount: 847,
	})

	var stockErr *service.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, scarce, stockErr.CategoryID)
	assert.Equal(t, int64(200), stockErr.Price)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	// The first item must not have been decremented.
	cat, _ := f.cats.FindByID(context.Background(), plenty)
	assert.Equal(t, 10, cat.Stock)
	b, _ := f.ledger.Get(context.Background())
	assert.Equal(t, int64(1000), b.ShopBalance)
}

func TestRecordSale_UnknownCategory(t *testing.T) {
	f := newLedgerFixture(0, 0)

	_, err := f.svc.RecordSale(context.Background(), manager("Asha"), dto.RecordSaleRequest{
		Items:      []dto.SaleItemRequest{{CategoryID: uuid.NewString(), Quantity: 1}},
		CashAmount: 149,
	})
	require.ErrorIs(t, err, service.ErrCategoryNotFound)
}

// ── RecordExpense ─────────────────────────────────────────────────────────────

func TestRecordExpense_DebitsBothBalances(t *testing.T) {
	f := newLedgerFixture(1000, 500)

	resp, err := f.svc.RecordExpense(context.Background(), owner("Ravi"), dto.RecordExpenseRequest{
		Purpose:      "packing material",
		CashAmount:   300,
		OnlineAmount: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(400), resp.Amount)

	b, _ := f.ledger.Get(context.Background())
	assert.Equal(t, int64(700), b.ShopBalance)
	assert.Equal(t, int64(400), b.BankBalance)
}

func TestRecordExpense_ShopBalanceFloor(t *testing.T) {
	f := newLedgerFixture(100, 500)

	_, err := f.svc.RecordExpense(context.Background(), manager("Asha"), dto.RecordExpenseRequest{
		Purpose:    "tea",
		CashAmount: 150,
	})

	var balErr *service.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.Equal(t, "shop", balErr.Account)
	assert.Equal(t, int64(150), balErr.Requested)
	assert.Equal(t, int64(100), balErr.Available)

	b, _ := f.ledger.Get(context.Background())
	assert.Equal(t, int64(100), b.ShopBalance)
	assert.Empty(t, f.expenses.expenses)
}

func TestRecordExpense_OnlineSpendIsOwnerOnly(t *testing.T) {
	f := newLedgerFixture(1000, 500)

	_, err := f.svc.RecordExpense(context.Background(), manager("Asha"), dto.RecordExpenseRequest{
		Purpose:      "supplier transfer",
		OnlineAmount: 100,
	})
	require.ErrorIs(t, err, service.ErrOwnerRequired)

	b, _ := f.ledger.Get(context.Background())
	assert.Equal(t, int64(500), b.BankBalance)
}

func TestRecordExpense_ZeroAmountRejected(t *testing.T) {
	f := newLedgerFixture(1000, 500)
	_, err := f.svc.RecordExpense(context.Background(), owner("Ravi"), dto.RecordExpenseRequest{Purpose: "nothing"})
	require.Error(t, err)
}

// Two 80 expenses against a 100 balance must serialize: exactly one wins and
// the final balance is 20, never -60.
func TestRecordExpense_ConcurrentRaceCannotOverdraw(t *testing.T) {
	f := newLedgerFixture(100, 0)
	actor := owner("Ravi")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.RecordExpense(context.Background(), actor, dto.RecordExpenseRequest{
				Purpose:    "race",
				CashAmount: 80,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			var balErr *service.InsufficientBalanceError
			require.ErrorAs(t, err, &balErr)
		}
	}
	assert.Equal(t, 1, succeeded)

	b, _ := f.ledger.Get(context.Background())
	assert.Equal(t, int64(20), b.ShopBalance)
	assert.GreaterOrEqual(t, b.ShopBalance, int64(0))
}

// ── RecordDeposit ─────────────────────────────────────────────────────────────

func TestRecordDeposit_ConservesTotal(t *testing.T) {
	f := newLedgerFixture(500, 100)
	receiver := f.profiles.add(model.Profile{Name: "Ravi", Role: model.RoleOwner, Approved: true})

	resp, err := f.svc.RecordDeposit(context.Background(), manager("Asha"), dto.RecordDepositRequest{
		ReceivedBy: receiver.ID.String(),
		Amount:     200,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ravi", resp.ReceiverName)

	b, _ := f.ledger.Get(context.Background())
	assert.Equal(t, int64(300), b.ShopBalance)
	assert.Equal(t, int64(300), b.BankBalance)
	assert.Equal(t, int64(600), b.ShopBalance+b.BankBalance)
}

func TestRecordDeposit_InsufficientShop(t *testing.T) {
	f := newLedgerFixture(100, 0)
	receiver := f.profiles.add(model.Profile{Name: "Ravi", Role: model.RoleOwner, Approved: true})

	_, err := f.svc.RecordDeposit(context.Background(), manager("Asha"), dto.RecordDepositRequest{
		ReceivedBy: receiver.ID.String(),
		Amount:     200,
	})

	var balErr *service.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.Equal(t, "shop", balErr.Account)
	assert.Empty(t, f.deposits.deposits)
}

func TestRecordDeposit_UnknownReceiver(t *testing.T) {
	f := newLedgerFixture(500, 0)
	_, err := f.svc.RecordDeposit(context.Background(), manager("Asha"), dto.RecordDepositRequest{
		ReceivedBy: uuid.NewString(),
		Amount:     100,
	})
	require.ErrorIs(t, err, service.ErrNotFound)
}

// ── GetBalances ───────────────────────────────────────────────────────────────

func TestGetBalances_BankHiddenFromManagers(t *testing.T) {
	f := newLedgerFixture(1000, 500)

	ownerView, err := f.svc.GetBalances(context.Background(), model.RoleOwner)
	require.NoError(t, err)
	require.NotNil(t, ownerView.BankBalance)
	assert.Equal(t, int64(500), *ownerView.BankBalance)

	managerView, err := f.svc.GetBalances(context.Background(), model.RoleManager)
	require.NoError(t, err)
	assert.Nil(t, managerView.BankBalance)
	assert.Equal(t, int64(1000), managerView.ShopBalance)
}
