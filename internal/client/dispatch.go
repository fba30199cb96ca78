package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mrinmay27/the149-store/internal/dto"

	"github.com/rs/zerolog/log"
)

// Refetcher is how the dispatcher asks for a server resync. Satisfied by
// *Syncer; tests substitute a recorder.
type Refetcher interface {
	RequestRefetch()
}

// Logical fields the dispatcher mutates optimistically. Each field carries
// its own pre-mutation capture so overlapping dispatches roll back
// independently: a slow rejection undoes only its own contribution instead
// of wiping whatever a later dispatch put there.
const (
	fieldShop = "balance:shop"
	fieldBank = "balance:bank"
)

func stockField(categoryID string) string { return "stock:" + categoryID }

// fieldCapture is the most recent pre-mutation value of one field. Every new
// dispatch touching the field refreshes it.
type fieldCapture struct {
	gen uint64
	pre int64
}

// dispatchToken records what one dispatch did: the capture generation it
// holds per field and the delta it applied there.
type dispatchToken struct {
	gens   map[string]uint64
	deltas map[string]int64
}

// coalesceWindow is the trailing-edge delay before a stock adjustment is
// sent. Rapid +/- taps on the same tier within the window merge into one
// request.
const coalesceWindow = 250 * time.Millisecond

// Dispatcher applies mutations optimistically: the local store is updated
// immediately so the UI never waits on the network, then the request is
// sent. Rejections restore the rejected dispatch's own fields against their
// most recent capture; in every case a refetch reconciles the mirror with
// the server's authoritative state.
type Dispatcher struct {
	backend Backend
	store   *Store
	syncer  Refetcher

	mu       sync.Mutex
	gen      uint64
	captures map[string]*fieldCapture
	pending  map[string]*pendingStock
	window   time.Duration
}

// pendingStock is an unsent stock adjustment accumulating taps until its
// trailing-edge timer fires.
type pendingStock struct {
	tok   dispatchToken
	delta int
	timer *time.Timer
}

func NewDispatcher(backend Backend, store *Store, syncer Refetcher) *Dispatcher {
	return &Dispatcher{
		backend:  backend,
		store:    store,
		syncer:   syncer,
		captures: make(map[string]*fieldCapture),
		pending:  make(map[string]*pendingStock),
		window:   coalesceWindow,
	}
}

// Sale optimistically decrements stock and credits balances, then records
// the sale. The optimistic pass mirrors the server's own validation so most
// rejections are caught locally before any network traffic.
func (d *Dispatcher) Sale(ctx context.Context, req dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	snap := d.store.Snapshot()

	deltas := make(map[string]int64)
	var total int64
	for _, item := range req.Items {
		cat := snap.Category(item.CategoryID)
		if cat == nil {
			return nil, ErrCategoryNotFound
		}
		key := stockField(item.CategoryID)
		deltas[key] -= int64(item.Quantity)
		if int64(cat.Stock)+deltas[key] < 0 {
			return nil, ErrInsufficientStock
		}
		total += cat.Price * int64(item.Quantity)
	}
	if req.CashAmount+req.OnlineAmount != total {
		return nil, ErrPaymentMismatch
	}
	deltas[fieldShop] = req.CashAmount
	if snap.Balances.BankBalance != nil {
		deltas[fieldBank] = req.OnlineAmount
	}

	tok := d.begin(deltas)
	resp, err := d.backend.RecordSale(ctx, req)
	return resp, d.settle(tok, err)
}

// Expense optimistically debits the balances, then records the expense.
func (d *Dispatcher) Expense(ctx context.Context, req dto.RecordExpenseRequest) (*dto.ExpenseResponse, error) {
	snap := d.store.Snapshot()

	if snap.Balances.ShopBalance < req.CashAmount {
		return nil, ErrInsufficientShopBalance
	}
	if snap.Balances.BankBalance != nil && *snap.Balances.BankBalance < req.OnlineAmount {
		return nil, ErrInsufficientBankBalance
	}
	deltas := map[string]int64{fieldShop: -req.CashAmount}
	if snap.Balances.BankBalance != nil {
		deltas[fieldBank] = -req.OnlineAmount
	}

	tok := d.begin(deltas)
	resp, err := d.backend.RecordExpense(ctx, req)
	return resp, d.settle(tok, err)
}

// Deposit optimistically moves cash from shop to bank, then records it.
func (d *Dispatcher) Deposit(ctx context.Context, req dto.RecordDepositRequest) (*dto.DepositResponse, error) {
	snap := d.store.Snapshot()

	if snap.Balances.ShopBalance < req.Amount {
		return nil, ErrInsufficientShopBalance
	}
	deltas := map[string]int64{fieldShop: -req.Amount}
	if snap.Balances.BankBalance != nil {
		deltas[fieldBank] = req.Amount
	}

	tok := d.begin(deltas)
	resp, err := d.backend.RecordDeposit(ctx, req)
	return resp, d.settle(tok, err)
}

// AdjustStock applies the delta optimistically and queues the send. Taps on
// the same tier within the coalesce window merge into one request, flushed
// on the trailing edge; the batch shares a single capture, so a rejection
// undoes the whole batch at once. Server outcomes surface through the
// store after the flush settles; only local rejections are returned here.
func (d *Dispatcher) AdjustStock(ctx context.Context, categoryID string, delta int) error {
	snap := d.store.Snapshot()
	cat := snap.Category(categoryID)
	if cat == nil {
		return ErrCategoryNotFound
	}
	if cat.Stock+delta < 0 {
		return ErrInsufficientStock
	}

	key := stockField(categoryID)
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[categoryID]; ok {
		p.delta += delta
		p.tok.deltas[key] += int64(delta)
		p.timer.Reset(d.window)
		d.store.Update(func(st *State) {
			if c := st.Category(categoryID); c != nil {
				c.Stock += delta
			}
		})
		return nil
	}

	tok := d.beginLocked(map[string]int64{key: int64(delta)})
	d.pending[categoryID] = &pendingStock{
		tok:   tok,
		delta: delta,
		timer: time.AfterFunc(d.window, func() { d.flushStock(ctx, categoryID) }),
	}
	return nil
}

// flushStock sends the accumulated adjustment for one tier. A no-op when
// nothing is pending, so a late timer firing after an explicit flush is
// harmless.
func (d *Dispatcher) flushStock(ctx context.Context, categoryID string) {
	d.mu.Lock()
	p, ok := d.pending[categoryID]
	if !ok {
		d.mu.Unlock()
		return
	}
	delete(d.pending, categoryID)
	p.timer.Stop()
	d.mu.Unlock()

	_, err := d.backend.AdjustStock(ctx, categoryID, p.delta)
	d.settle(p.tok, err)
}

// begin applies the deltas to the store and refreshes each touched field's
// capture in the same lock pass, so the captured pre-values are exactly
// what this dispatch saw.
func (d *Dispatcher) begin(deltas map[string]int64) dispatchToken {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.beginLocked(deltas)
}

func (d *Dispatcher) beginLocked(deltas map[string]int64) dispatchToken {
	tok := dispatchToken{gens: make(map[string]uint64), deltas: deltas}
	d.store.Update(func(st *State) {
		for key, delta := range deltas {
			d.gen++
			pre := readField(st, key)
			d.captures[key] = &fieldCapture{gen: d.gen, pre: pre}
			tok.gens[key] = d.gen
			writeField(st, key, pre+delta)
		}
	})
	return tok
}

// settle finishes a dispatch: a rejection rolls back this dispatch's own
// fields, and every outcome schedules a refetch so the mirror converges on
// what the server actually committed.
func (d *Dispatcher) settle(tok dispatchToken, err error) error {
	if err != nil {
		d.rollback(tok)
		if !IsDomainRejection(err) {
			// Transport failure: the mutation may or may not have landed.
			// The refetch below resolves it either way.
			log.Warn().Err(err).Msg("dispatch: transport failure, resyncing")
		}
	} else {
		d.confirm(tok)
	}
	if d.syncer != nil {
		d.syncer.RequestRefetch()
	}
	return err
}

// confirm releases the captures this dispatch still owns. The optimistic
// values stay in place as the confirmed state.
func (d *Dispatcher) confirm(tok dispatchToken) {
	d.mu.Lock()
	for key, gen := range tok.gens {
		if c := d.captures[key]; c != nil && c.gen == gen {
			delete(d.captures, key)
		}
	}
	d.mu.Unlock()
}

// rollback undoes exactly this dispatch's contribution. A field whose
// capture is still ours is restored to its pre-mutation value outright. If
// a later dispatch refreshed the capture, that capture embeds our delta, so
// the live value and the newer capture are both compensated instead; the
// later dispatch's optimistic value survives.
func (d *Dispatcher) rollback(tok dispatchToken) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.store.Update(func(st *State) {
		for key, gen := range tok.gens {
			c := d.captures[key]
			if c != nil && c.gen == gen {
				writeField(st, key, c.pre)
				delete(d.captures, key)
				continue
			}
			writeField(st, key, readField(st, key)-tok.deltas[key])
			if c != nil {
				c.pre -= tok.deltas[key]
			}
		}
	})
}

func readField(st *State, key string) int64 {
	switch {
	case key == fieldShop:
		return st.Balances.ShopBalance
	case key == fieldBank:
		if st.Balances.BankBalance != nil {
			return *st.Balances.BankBalance
		}
		return 0
	default:
		if cat := st.Category(strings.TrimPrefix(key, "stock:")); cat != nil {
			return int64(cat.Stock)
		}
		return 0
	}
}

func writeField(st *State, key string, v int64) {
	switch {
	case key == fieldShop:
		st.Balances.ShopBalance = v
	case key == fieldBank:
		if st.Balances.BankBalance != nil {
			*st.Balances.BankBalance = v
		}
	default:
		if cat := st.Category(strings.TrimPrefix(key, "stock:")); cat != nil {
			cat.Stock = int(v)
		}
	}
}
