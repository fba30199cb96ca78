package client

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/mrinmay27/the149-store/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend scripts server behavior per call.
type fakeBackend struct {
	mu sync.Mutex

	categories []dto.CategoryResponse
	balances   dto.BalancesResponse
	sales      []dto.SaleResponse
	expenses   []dto.ExpenseResponse
	deposits   []dto.DepositResponse

	listErr error // injected into every list call

	saleErr    error
	saleCalls  int
	gate       chan struct{} // when set, mutations block until released
	stockErr   error
	stockCalls int
	lastDelta  int
	stockCh    chan stockCall // when set, the test scripts each reply

	feed io.ReadCloser
}

func (f *fakeBackend) Categories(context.Context) ([]dto.CategoryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dto.CategoryResponse(nil), f.categories...), f.listErr
}

func (f *fakeBackend) Balances(context.Context) (dto.BalancesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances, f.listErr
}

func (f *fakeBackend) Sales(context.Context) ([]dto.SaleResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]dto.SaleResponse(nil), f.sales...), nil
}

func (f *fakeBackend) Expenses(context.Context) ([]dto.ExpenseResponse, error) {
	return f.expenses, f.listErr
}

func (f *fakeBackend) Deposits(context.Context) ([]dto.DepositResponse, error) {
	return f.deposits, f.listErr
}

func (f *fakeBackend) RecordSale(_ context.Context, req dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saleCalls++
	if f.saleErr != nil {
		return nil, f.saleErr
	}
	return &dto.SaleResponse{ID: "srv-sale", Total: req.CashAmount + req.OnlineAmount}, nil
}

func (f *fakeBackend) RecordExpense(_ context.Context, req dto.RecordExpenseRequest) (*dto.ExpenseResponse, error) {
	return &dto.ExpenseResponse{ID: "srv-exp", Amount: req.CashAmount + req.OnlineAmount}, nil
}

func (f *fakeBackend) RecordDeposit(_ context.Context, req dto.RecordDepositRequest) (*dto.DepositResponse, error) {
	return &dto.DepositResponse{ID: "srv-dep", Amount: req.Amount}, nil
}

// stockCall is one in-flight stock adjustment whose outcome the test decides.
type stockCall struct {
	delta int
	reply chan error
}

func (f *fakeBackend) AdjustStock(_ context.Context, _ string, delta int) (*dto.CategoryResponse, error) {
	if f.stockCh != nil {
		call := stockCall{delta: delta, reply: make(chan error)}
		f.stockCh <- call
		err := <-call.reply
		f.mu.Lock()
		f.stockCalls++
		f.lastDelta = delta
		f.mu.Unlock()
		if err != nil {
			return nil, err
		}
		return &dto.CategoryResponse{}, nil
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stockCalls++
	f.lastDelta = delta
	if f.stockErr != nil {
		return nil, f.stockErr
	}
	return &dto.CategoryResponse{}, nil
}

func (f *fakeBackend) OpenFeed(context.Context) (io.ReadCloser, error) {
	if f.feed == nil {
		return nil, ErrServer
	}
	return f.feed, nil
}

var _ Backend = (*fakeBackend)(nil)

// refetchRecorder counts RequestRefetch calls.
type refetchRecorder struct {
	mu    sync.Mutex
	calls int
}

func (r *refetchRecorder) RequestRefetch() {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
}

func (r *refetchRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func seededStore() *Store {
	s := NewStore()
	s.ReplaceAll(State{
		Categories: []dto.CategoryResponse{{ID: "tier149", Price: 149, Stock: 5}},
		Balances:   dto.BalancesResponse{ShopBalance: 1000, BankBalance: bank(500)},
	})
	return s
}

func TestDispatchSale_OptimisticThenConfirmed(t *testing.T) {
	backend := &fakeBackend{gate: make(chan struct{})}
	store := seededStore()
	rec := &refetchRecorder{}
	d := NewDispatcher(backend, store, rec)

	done := make(chan error, 1)
	go func() {
		_, err := d.Sale(context.Background(), dto.RecordSaleRequest{
			Items:      []dto.SaleItemRequest{{CategoryID: "tier149", Quantity: 1}},
			CashAmount: 149,
		})
		done <- err
	}()

	// While the request is in flight the optimistic state is already visible.
	ch, cancel := store.Subscribe()
	defer cancel()
	waitForStock(t, store, ch, 4)
	assert.Equal(t, int64(1149), store.Snapshot().Balances.ShopBalance)

	close(backend.gate)
	require.NoError(t, <-done)

	assert.Equal(t, 4, store.Snapshot().Categories[0].Stock)
	assert.Equal(t, 1, rec.count(), "success still schedules a reconciling refetch")
}

func TestDispatchAdjustStock_RollbackOnRejection(t *testing.T) {
	backend := &fakeBackend{stockErr: ErrForbidden}
	store := seededStore()
	rec := &refetchRecorder{}
	d := NewDispatcher(backend, store, rec)
	d.window = time.Hour // flushed explicitly

	require.NoError(t, d.AdjustStock(context.Background(), "tier149", +1))
	assert.Equal(t, 6, store.Snapshot().Categories[0].Stock, "optimistic +1 visible before the send")

	d.flushStock(context.Background(), "tier149")

	after := store.Snapshot()
	assert.Equal(t, 5, after.Categories[0].Stock, "rejected adjustment must be reverted")
	assert.Equal(t, 1, backend.stockCalls)
	assert.Equal(t, 1, rec.count())
}

func TestDispatchAdjustStock_RapidTapsCoalesce(t *testing.T) {
	backend := &fakeBackend{}
	store := seededStore()
	d := NewDispatcher(backend, store, &refetchRecorder{})
	d.window = time.Hour
	ctx := context.Background()

	require.NoError(t, d.AdjustStock(ctx, "tier149", +1))
	require.NoError(t, d.AdjustStock(ctx, "tier149", +1))
	require.NoError(t, d.AdjustStock(ctx, "tier149", -1))
	assert.Equal(t, 6, store.Snapshot().Categories[0].Stock)

	d.flushStock(ctx, "tier149")

	assert.Equal(t, 1, backend.stockCalls, "taps within the window merge into one request")
	assert.Equal(t, 1, backend.lastDelta)
	assert.Equal(t, 6, store.Snapshot().Categories[0].Stock)
}

// A slow rejected adjustment must undo only its own delta. A later
// adjustment on the same tier that the server accepted keeps its value.
func TestDispatchAdjustStock_LateRejectionKeepsLaterValue(t *testing.T) {
	backend := &fakeBackend{stockCh: make(chan stockCall)}
	store := seededStore()
	rec := &refetchRecorder{}
	d := NewDispatcher(backend, store, rec)
	d.window = time.Hour
	ctx := context.Background()

	// First adjustment goes out and stalls on the wire.
	require.NoError(t, d.AdjustStock(ctx, "tier149", +1))
	firstDone := make(chan struct{})
	go func() { d.flushStock(ctx, "tier149"); close(firstDone) }()
	first := <-backend.stockCh

	// Second adjustment dispatches while the first is in flight; the server
	// accepts it.
	require.NoError(t, d.AdjustStock(ctx, "tier149", +1))
	assert.Equal(t, 7, store.Snapshot().Categories[0].Stock)
	secondDone := make(chan struct{})
	go func() { d.flushStock(ctx, "tier149"); close(secondDone) }()
	second := <-backend.stockCh
	second.reply <- nil
	<-secondDone

	first.reply <- ErrForbidden
	<-firstDone

	assert.Equal(t, 6, store.Snapshot().Categories[0].Stock,
		"stale rejection must not wipe the accepted later adjustment")
	assert.Equal(t, 2, rec.count())
}

// Same overlap with the rejections landing oldest-first: each dispatch
// undoes its own delta and the tier ends back where it started.
func TestDispatchAdjustStock_OverlappingRejectionsBothRevert(t *testing.T) {
	backend := &fakeBackend{stockCh: make(chan stockCall)}
	store := seededStore()
	d := NewDispatcher(backend, store, &refetchRecorder{})
	d.window = time.Hour
	ctx := context.Background()

	require.NoError(t, d.AdjustStock(ctx, "tier149", +1))
	firstDone := make(chan struct{})
	go func() { d.flushStock(ctx, "tier149"); close(firstDone) }()
	first := <-backend.stockCh

	require.NoError(t, d.AdjustStock(ctx, "tier149", +2))
	secondDone := make(chan struct{})
	go func() { d.flushStock(ctx, "tier149"); close(secondDone) }()
	second := <-backend.stockCh

	first.reply <- ErrForbidden
	<-firstDone
	assert.Equal(t, 7, store.Snapshot().Categories[0].Stock,
		"first rollback leaves the second dispatch's +2 in place")

	second.reply <- ErrForbidden
	<-secondDone
	assert.Equal(t, 5, store.Snapshot().Categories[0].Stock)
}

func TestDispatchSale_LocalRejectionSkipsNetwork(t *testing.T) {
	backend := &fakeBackend{}
	store := seededStore()
	rec := &refetchRecorder{}
	d := NewDispatcher(backend, store, rec)

	_, err := d.Sale(context.Background(), dto.RecordSaleRequest{
		Items:      []dto.SaleItemRequest{{CategoryID: "tier149", Quantity: 9}},
		CashAmount: 1341,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 0, backend.saleCalls, "locally rejected sale must not hit the server")
	assert.Equal(t, 5, store.Snapshot().Categories[0].Stock)
	assert.Equal(t, int64(1000), store.Snapshot().Balances.ShopBalance)
}

func TestDispatchSale_PaymentMismatchCaughtLocally(t *testing.T) {
	backend := &fakeBackend{}
	store := seededStore()
	d := NewDispatcher(backend, store, &refetchRecorder{})

	_, err := d.Sale(context.Background(), dto.RecordSaleRequest{
		Items:      []dto.SaleItemRequest{{CategoryID: "tier149", Quantity: 2}},
		CashAmount: 200, // 298 expected
	})
	require.ErrorIs(t, err, ErrPaymentMismatch)
	assert.Equal(t, 0, backend.saleCalls)
	assert.Equal(t, 5, store.Snapshot().Categories[0].Stock)
}

func TestDispatchSale_ServerRejectionRollsBack(t *testing.T) {
	backend := &fakeBackend{saleErr: ErrInsufficientStock}
	store := seededStore()
	rec := &refetchRecorder{}
	d := NewDispatcher(backend, store, rec)

	_, err := d.Sale(context.Background(), dto.RecordSaleRequest{
		Items:      []dto.SaleItemRequest{{CategoryID: "tier149", Quantity: 2}},
		CashAmount: 298,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	st := store.Snapshot()
	assert.Equal(t, 5, st.Categories[0].Stock)
	assert.Equal(t, int64(1000), st.Balances.ShopBalance)
	assert.Equal(t, 1, rec.count())
}

func TestDispatchDeposit_OptimisticConservation(t *testing.T) {
	backend := &fakeBackend{}
	store := seededStore()
	d := NewDispatcher(backend, store, &refetchRecorder{})

	_, err := d.Deposit(context.Background(), dto.RecordDepositRequest{Amount: 200, ReceivedBy: "x"})
	require.NoError(t, err)

	st := store.Snapshot()
	assert.Equal(t, int64(800), st.Balances.ShopBalance)
	assert.Equal(t, int64(700), *st.Balances.BankBalance)

	// Overdraw is rejected locally, leaving balances intact.
	_, err = d.Deposit(context.Background(), dto.RecordDepositRequest{Amount: 5000, ReceivedBy: "x"})
	require.ErrorIs(t, err, ErrInsufficientShopBalance)
	st = store.Snapshot()
	assert.Equal(t, int64(800), st.Balances.ShopBalance)
}

// waitForStock blocks until the tier's stock reaches want, failing on timeout
// via the test deadline rather than a sleep.
func waitForStock(t *testing.T, store *Store, ch <-chan struct{}, want int) {
	t.Helper()
	for {
		if st := store.Snapshot(); len(st.Categories) > 0 && st.Categories[0].Stock == want {
			return
		}
		<-ch
	}
}
