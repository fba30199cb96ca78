package client

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mrinmay27/the149-store/internal/dto"

	"github.com/rs/zerolog/log"
)

const (
	categoriesFile = "cached_categories.json"
	balancesFile   = "cached_balances.json"
)

// Cache persists the last known categories and balances so the till can show
// something meaningful before the first refetch completes. Cached data is
// display-only: the dispatcher never validates mutations against it.
type Cache struct {
	dir string
}

func NewCache(dir string) *Cache { return &Cache{dir: dir} }

// Load reads both cache files. A missing, unreadable or corrupt file is a
// miss for that slice of state, never an error: the till starts empty and
// waits for the refetch instead.
func (c *Cache) Load() (State, bool) {
	var st State
	hit := false

	if err := c.readJSON(categoriesFile, &st.Categories); err == nil {
		hit = true
	} else if !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("cache: discarding categories")
	}

	if err := c.readJSON(balancesFile, &st.Balances); err == nil {
		hit = true
	} else if !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("cache: discarding balances")
		st.Balances = dto.BalancesResponse{}
	}

	return st, hit
}

// Save writes the cacheable slices of state. Failures are logged and
// swallowed: the cache is an optimization, not a store of record.
func (c *Cache) Save(st State) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		log.Warn().Err(err).Msg("cache: mkdir")
		return
	}
	if err := c.writeJSON(categoriesFile, st.Categories); err != nil {
		log.Warn().Err(err).Msg("cache: write categories")
	}
	if err := c.writeJSON(balancesFile, st.Balances); err != nil {
		log.Warn().Err(err).Msg("cache: write balances")
	}
}

func (c *Cache) readJSON(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSON writes atomically via rename so a crash mid-write leaves the
// previous cache intact rather than a truncated file.
func (c *Cache) writeJSON(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tmp := filepath.Join(c.dir, name+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(c.dir, name))
}
