package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mrinmay27/the149-store/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_RoundTrip(t *testing.T) {
	c := NewCache(t.TempDir())

	saved := State{
		Categories: []dto.CategoryResponse{{ID: "a", Price: 149, Stock: 3}},
		Balances:   dto.BalancesResponse{ShopBalance: 700, BankBalance: bank(200)},
		// Sales are deliberately not cached.
		Sales: []dto.SaleResponse{{ID: "s1"}},
	}
	c.Save(saved)

	loaded, hit := c.Load()
	require.True(t, hit)
	require.Len(t, loaded.Categories, 1)
	assert.Equal(t, 3, loaded.Categories[0].Stock)
	assert.Equal(t, int64(700), loaded.Balances.ShopBalance)
	require.NotNil(t, loaded.Balances.BankBalance)
	assert.Equal(t, int64(200), *loaded.Balances.BankBalance)
	assert.Empty(t, loaded.Sales)
}

func TestCache_MissingDirIsAMiss(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "never-created"))
	_, hit := c.Load()
	assert.False(t, hit)
}

func TestCache_CorruptFileIsAMiss(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, categoriesFile), []byte("{nope"), 0o644))

	c := NewCache(dir)
	st, hit := c.Load()
	// The corrupt slice is dropped; no categories surface from it.
	assert.Empty(t, st.Categories)
	_ = hit // balances file absent too, so overall hit is false
	assert.False(t, hit)
}

func TestCache_PartialHit(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir)
	c.Save(State{Balances: dto.BalancesResponse{ShopBalance: 42}})
	require.NoError(t, os.Remove(filepath.Join(dir, categoriesFile)))

	st, hit := c.Load()
	assert.True(t, hit)
	assert.Equal(t, int64(42), st.Balances.ShopBalance)
	assert.Empty(t, st.Categories)
}
