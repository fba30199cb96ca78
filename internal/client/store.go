// Package client implements the till-side state layer: an in-memory mirror
// of server state, a disk cache for cold starts, and a dispatcher that
// applies mutations optimistically and rolls them back on rejection.
package client

import (
	"sync"

	"github.com/mrinmay27/the149-store/internal/dto"
)

// State is the full mirrored server state. It is always replaced wholesale
// from a consistent server snapshot or mutated through Store.Update; callers
// never hold references into it.
type State struct {
	Categories []dto.CategoryResponse
	Balances   dto.BalancesResponse
	Sales      []dto.SaleResponse
	Expenses   []dto.ExpenseResponse
	Deposits   []dto.DepositResponse
}

// clone deep-copies the state so snapshots are immune to later mutation.
// Inner slices and pointers are copied too; no backing array is shared
// between two snapshots.
func (st State) clone() State {
	out := State{
		Categories: append([]dto.CategoryResponse(nil), st.Categories...),
		Balances:   st.Balances,
		Sales:      append([]dto.SaleResponse(nil), st.Sales...),
		Expenses:   append([]dto.ExpenseResponse(nil), st.Expenses...),
		Deposits:   append([]dto.DepositResponse(nil), st.Deposits...),
	}
	if st.Balances.BankBalance != nil {
		v := *st.Balances.BankBalance
		out.Balances.BankBalance = &v
	}
	for i := range out.Sales {
		out.Sales[i].Items = append([]dto.SaleItemResponse(nil), out.Sales[i].Items...)
		out.Sales[i].SlipURL = cloneString(out.Sales[i].SlipURL)
	}
	for i := range out.Expenses {
		out.Expenses[i].ReceiptURL = cloneString(out.Expenses[i].ReceiptURL)
	}
	for i := range out.Deposits {
		out.Deposits[i].SlipURL = cloneString(out.Deposits[i].SlipURL)
	}
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Category returns the tier with the given id, or nil.
func (st *State) Category(id string) *dto.CategoryResponse {
	for i := range st.Categories {
		if st.Categories[i].ID == id {
			return &st.Categories[i]
		}
	}
	return nil
}

// Store is the concurrency-safe container for mirrored state. Reads get a
// deep copy; writes go through Update or ReplaceAll and wake subscribers.
type Store struct {
	mu    sync.RWMutex
	state State
	subs  map[int]chan struct{}
	next  int
}

func NewStore() *Store {
	return &Store{subs: make(map[int]chan struct{})}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// ReplaceAll swaps in a complete new state. Used for hydration from cache,
// refetches, and rollback of optimistic updates.
func (s *Store) ReplaceAll(st State) {
	s.mu.Lock()
	s.state = st.clone()
	s.notifyLocked()
	s.mu.Unlock()
}

// Update runs fn against the live state under the write lock.
func (s *Store) Update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	s.notifyLocked()
	s.mu.Unlock()
}

// Subscribe registers for change notifications. The channel has a buffer of
// one; consecutive changes coalesce into a single pending signal. The
// returned cancel func must be called to release the subscription.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
