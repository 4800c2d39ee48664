package genres

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ErrEmptyGenreList is reported to the logger when the provider answers with no genres.
var ErrEmptyGenreList = errors.New("provider returned an empty genre list")

// Genre is a provider genre identifier paired with its display name.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Fetcher retrieves the provider's full genre list.
type Fetcher interface {
	FetchGenres(ctx context.Context) ([]Genre, error)
}

// Catalog maps provider genre identifiers to display names.
//
// The mapping is empty until the first EnsureLoaded call and is only ever
// replaced as a whole: either by a successful fetch or by the default table.
type Catalog struct {
	fetcher Fetcher
	logger  zerolog.Logger

	// loadMu serializes fetches so concurrent EnsureLoaded calls share one attempt.
	loadMu sync.Mutex

	mu    sync.RWMutex
	names map[int]string
}

// NewCatalog creates an empty catalog backed by fetcher.
func NewCatalog(fetcher Fetcher, logger zerolog.Logger) *Catalog {
	return &Catalog{
		fetcher: fetcher,
		logger:  logger.With().Str("component", "genres").Logger(),
		names:   make(map[int]string),
	}
}

// NewStaticCatalog creates a catalog that is already populated and never fetches.
func NewStaticCatalog(list []Genre) *Catalog {
	c := &Catalog{
		logger: zerolog.Nop(),
		names:  make(map[int]string, len(list)),
	}
	for _, g := range list {
		c.names[g.ID] = g.Name
	}
	return c
}

// EnsureLoaded populates the catalog if it is empty. It never fails: any
// fetch error installs the default genre table instead.
func (c *Catalog) EnsureLoaded(ctx context.Context) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if c.Len() > 0 {
		return
	}
	c.load(ctx)
}

// Refresh fetches the genre list again regardless of the current state.
func (c *Catalog) Refresh(ctx context.Context) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	c.load(ctx)
}

// load must be called with loadMu held.
func (c *Catalog) load(ctx context.Context) {
	if c.fetcher == nil {
		c.replace(DefaultGenres())
		return
	}

	list, err := c.fetcher.FetchGenres(ctx)
	if err == nil && len(list) == 0 {
		err = ErrEmptyGenreList
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to load movie genres, using defaults")
		c.replace(DefaultGenres())
		return
	}

	c.replace(list)
	c.logger.Debug().Int("count", len(list)).Msg("Loaded movie genres")
}

func (c *Catalog) replace(list []Genre) {
	names := make(map[int]string, len(list))
	for _, g := range list {
		names[g.ID] = g.Name
	}

	c.mu.Lock()
	c.names = names
	c.mu.Unlock()
}

// Len returns the number of known genres.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

// Lookup returns the name for id.
func (c *Catalog) Lookup(id int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[id]
	return name, ok
}

// ResolveNamesToIDs maps display names to identifiers, ignoring case.
// Names that match no genre are dropped.
func (c *Catalog) ResolveNamesToIDs(names []string) []int {
	ids := make([]int, 0, len(names))
	if len(names) == 0 {
		return ids
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, name := range names {
		if id, ok := c.idForName(name); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// idForName picks the lowest matching id so results do not depend on map order.
func (c *Catalog) idForName(name string) (int, bool) {
	found := false
	best := 0
	for id, known := range c.names {
		if !strings.EqualFold(known, name) {
			continue
		}
		if !found || id < best {
			best = id
			found = true
		}
	}
	return best, found
}

// NamesOf maps identifiers to names in input order, dropping unknown and
// repeated identifiers.
func (c *Catalog) NamesOf(ids []int) []string {
	if len(ids) == 0 {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if name, ok := c.names[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// AllNames returns every known genre name in ascending order.
func (c *Catalog) AllNames() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.names))
	for _, name := range c.names {
		names = append(names, name)
	}
	c.mu.RUnlock()

	sort.Strings(names)
	return names
}
