package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu        sync.RWMutex
	blocks    map[string]store.Block
	blockKeys map[string]string
	entries   map[string]store.Entry
	processed map[string]store.Processed
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		blocks:    make(map[string]store.Block),
		blockKeys: make(map[string]string),
		entries:   make(map[string]store.Entry),
		processed: make(map[string]store.Processed),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

func blockKey(issn string, year int) string {
	return fmt.Sprintf("%s|%d", issn, year)
}

// AddBlock stores a new block, assigning an ID and the incomplete status
// when unset.
func (s *Store) AddBlock(ctx context.Context, b store.Block) (store.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := blockKey(b.ISSN, b.Year)
	if _, ok := s.blockKeys[key]; ok {
		return store.Block{}, fmt.Errorf("block %s %d: %w", b.ISSN, b.Year, internalerr.ErrDuplicate)
	}
	if b.ID == "" {
		b.ID = store.NewID(time.Now())
	}
	if b.Status == "" {
		b.Status = store.StatusIncomplete
	}
	s.blocks[b.ID] = b
	s.blockKeys[key] = b.ID
	return b, nil
}

// GetBlock returns a block by ID.
func (s *Store) GetBlock(ctx context.Context, id string) (store.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blocks[id]
	if !ok {
		return store.Block{}, fmt.Errorf("block %s: %w", id, internalerr.ErrNotFound)
	}
	return b, nil
}

// ListBlocks returns blocks with the given status, or all blocks when status
// is empty, ordered by ID.
func (s *Store) ListBlocks(ctx context.Context, status store.BlockStatus) ([]store.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Block
	for _, b := range s.blocks {
		if status == "" || b.Status == status {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ClaimBlock implements store.Store.
func (s *Store) ClaimBlock(ctx context.Context, maxArticles int, claimant string, now time.Time) (store.Block, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best store.Block
	found := false
	for _, b := range s.blocks {
		if b.Status != store.StatusIncomplete || b.NumArticles >= maxArticles {
			continue
		}
		if !found || b.NumArticles > best.NumArticles || (b.NumArticles == best.NumArticles && b.ID < best.ID) {
			best = b
			found = true
		}
	}
	if !found {
		return store.Block{}, false, nil
	}

	best.Status = store.StatusInProgress
	best.UpdatedBy = claimant
	best.UpdatedOn = now
	s.blocks[best.ID] = best
	return best, true, nil
}

// UpdateBlock replaces a stored block.
func (s *Store) UpdateBlock(ctx context.Context, b store.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blocks[b.ID]; !ok {
		return fmt.Errorf("block %s: %w", b.ID, internalerr.ErrNotFound)
	}
	s.blocks[b.ID] = b
	return nil
}

// UpsertEntry inserts or replaces an entry, keyed by EID.
func (s *Store) UpsertEntry(ctx context.Context, e store.Entry) error {
	if e.EID == "" {
		return fmt.Errorf("entry without eid: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e.Keywords = append([]string(nil), e.Keywords...)
	s.entries[e.EID] = e
	return nil
}

// GetEntry returns an entry by EID.
func (s *Store) GetEntry(ctx context.Context, eid string) (store.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[eid]
	return e, ok, nil
}

// PendingEntries implements store.Store, ordered by EID.
func (s *Store) PendingEntries(ctx context.Context, limit int) ([]store.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Entry
	for eid, e := range s.entries {
		if !e.Completed {
			continue
		}
		if _, done := s.processed[eid]; done {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EID < out[j].EID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpsertProcessed stores a processed abstract.
func (s *Store) UpsertProcessed(ctx context.Context, p store.Processed) error {
	if p.EID == "" {
		return fmt.Errorf("processed abstract without eid: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Tokens = append([]string(nil), p.Tokens...)
	p.Mentions = append([]store.Mention(nil), p.Mentions...)
	s.processed[p.EID] = p
	return nil
}

// ListProcessed returns processed abstracts ordered by EID.
func (s *Store) ListProcessed(ctx context.Context, limit int) ([]store.Processed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Processed, 0, len(s.processed))
	for _, p := range s.processed {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EID < out[j].EID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Stats implements store.Store.
func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := store.Stats{Blocks: make(map[store.BlockStatus]int)}
	for _, b := range s.blocks {
		st.Blocks[b.Status]++
	}
	st.Entries = len(s.entries)
	for _, e := range s.entries {
		if e.Completed {
			st.CompletedEntries++
		}
	}
	st.Processed = len(s.processed)
	return st, nil
}
