package client

import (
	"testing"

	"github.com/mrinmay27/the149-store/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bank(v int64) *int64 { return &v }

func TestStore_SnapshotIsIsolated(t *testing.T) {
	s := NewStore()
	s.ReplaceAll(State{
		Categories: []dto.CategoryResponse{{ID: "a", Price: 149, Stock: 5}},
		Balances:   dto.BalancesResponse{ShopBalance: 100, BankBalance: bank(50)},
	})

	snap := s.Snapshot()
	snap.Categories[0].Stock = 0
	*snap.Balances.BankBalance = 0

	fresh := s.Snapshot()
	assert.Equal(t, 5, fresh.Categories[0].Stock)
	assert.Equal(t, int64(50), *fresh.Balances.BankBalance)
}

func TestStore_SnapshotDeepCopiesSaleItems(t *testing.T) {
	slip := "https://files.example/slip.jpg"
	s := NewStore()
	s.ReplaceAll(State{
		Sales: []dto.SaleResponse{{
			ID:      "s1",
			Items:   []dto.SaleItemResponse{{CategoryID: "a", Quantity: 1}},
			SlipURL: &slip,
		}},
	})

	snap := s.Snapshot()
	snap.Sales[0].Items[0].Quantity = 99
	*snap.Sales[0].SlipURL = "tampered"

	fresh := s.Snapshot()
	assert.Equal(t, 1, fresh.Sales[0].Items[0].Quantity)
	assert.Equal(t, "https://files.example/slip.jpg", *fresh.Sales[0].SlipURL)
}

func TestStore_SubscribersCoalesce(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	defer cancel()

	for i := 0; i < 5; i++ {
		s.Update(func(st *State) { st.Balances.ShopBalance++ })
	}

	// Exactly one pending signal regardless of burst size.
	select {
	case <-ch:
	default:
		t.Fatal("expected a pending notification")
	}
	select {
	case <-ch:
		t.Fatal("signals must coalesce")
	default:
	}
}

func TestStore_CancelStopsNotifications(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	cancel()

	s.Update(func(st *State) { st.Balances.ShopBalance = 1 })
	select {
	case <-ch:
		t.Fatal("cancelled subscriber must not be signalled")
	default:
	}
}

func TestState_CategoryLookup(t *testing.T) {
	st := State{Categories: []dto.CategoryResponse{{ID: "a", Price: 149, Stock: 5}}}
	require.NotNil(t, st.Category("a"))
	assert.Nil(t, st.Category("missing"))
}
