// Package collect harvests abstracts from Scopus one journal year block at a
// time and records them in the harvest store.
package collect

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/materialsintelligence/matscholar/internal/logging"
	"github.com/materialsintelligence/matscholar/internal/scopus"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/store"
)

// DefaultMaxBlockSize bounds the number of articles in a claimed block.
const DefaultMaxBlockSize = 100

// Searcher is the part of the Scopus client the collector needs.
type Searcher interface {
	VerifyAccess(ctx context.Context) error
	SearchAll(ctx context.Context, query string) ([]scopus.Entry, error)
}

// Collector pulls blocks from the store and fills them with Scopus entries.
type Collector struct {
	store store.Store
	api   Searcher
	name  string
	log   *zap.Logger
	now   func() time.Time
}

// Summary reports what a Collect run did.
type Summary struct {
	Blocks   int
	Entries  int
	Failures int
}

// New returns a collector that signs its work with name.
func New(st store.Store, api Searcher, name string, logger *zap.Logger) (*Collector, error) {
	if name == "" {
		return nil, fmt.Errorf("collector name required, run `mscli configure`: %w", internalerr.ErrInvalidConfig)
	}
	if st == nil || api == nil {
		return nil, fmt.Errorf("collector needs a store and a search client: %w", internalerr.ErrInvalidConfig)
	}
	return &Collector{
		store: st,
		api:   api,
		name:  name,
		log:   logging.OrNop(logger),
		now:   time.Now,
	}, nil
}

// ProcessBlock converts search results into store entries. Results without
// an abstract or DOI are kept but marked incomplete with the reason.
func (c *Collector) ProcessBlock(blockID string, results []scopus.Entry) []store.Entry {
	entries := make([]store.Entry, 0, len(results))
	for _, r := range results {
		e := store.Entry{
			EID:       r.EID,
			BlockID:   blockID,
			DOI:       r.DOI,
			Title:     r.Title,
			Abstract:  CleanText(r.Description),
			Journal:   r.PublicationName,
			ISSN:      r.ISSN,
			CoverDate: r.CoverDate,
			Creator:   r.Creator,
			Keywords:  r.Keywords(),
			PulledOn:  c.now(),
			PulledBy:  c.name,
		}
		switch {
		case r.Description == "":
			e.Error = store.ErrNoAbstract
		case r.DOI == "":
			e.Error = store.ErrNoDOI
		default:
			e.Completed = true
		}
		entries = append(entries, e)
	}
	return entries
}

// Collect runs up to numBlocks blocks sequentially. Access is verified before
// each block so a dropped VPN session stops the run.
func (c *Collector) Collect(ctx context.Context, maxBlockSize, numBlocks int) (Summary, error) {
	if maxBlockSize <= 0 {
		maxBlockSize = DefaultMaxBlockSize
	}
	var sum Summary

	for i := 0; i < numBlocks; i++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if err := c.api.VerifyAccess(ctx); err != nil {
			return sum, err
		}

		block, found, err := c.store.ClaimBlock(ctx, maxBlockSize, c.name, c.now())
		if err != nil {
			return sum, fmt.Errorf("claim block: %w", err)
		}
		if !found {
			c.log.Info("no remaining blocks", zap.Int("max_block_size", maxBlockSize))
			break
		}

		label := block.Journal
		if label == "" {
			label = block.ISSN
		}
		c.log.Info("collecting entries",
			zap.String("journal", label),
			zap.Int("year", block.Year),
			zap.String("block_id", block.ID),
			zap.Int("blocks_remaining", numBlocks-i))

		n, failures, err := c.collectBlock(ctx, block)
		if err != nil {
			return sum, err
		}
		sum.Blocks++
		sum.Entries += n
		sum.Failures += failures
	}
	return sum, nil
}

func (c *Collector) collectBlock(ctx context.Context, block store.Block) (int, int, error) {
	results, err := c.api.SearchAll(ctx, scopus.BlockQuery(block.ISSN, block.Year))
	if err != nil {
		return 0, 0, fmt.Errorf("search block %s: %w", block.ID, err)
	}

	entries := c.ProcessBlock(block.ID, results)
	block.NumArticles = len(entries)
	block.NumSkipped = len(results) - len(entries)
	if err := c.store.UpdateBlock(ctx, block); err != nil {
		return 0, 0, fmt.Errorf("update block %s: %w", block.ID, err)
	}

	failures := 0
	for _, e := range entries {
		if err := c.store.UpsertEntry(ctx, e); err != nil {
			failures++
			c.log.Warn("storing entry failed", zap.String("eid", e.EID), zap.Error(err))
			rec := store.Entry{EID: e.EID, BlockID: block.ID, Error: err.Error(), PulledOn: e.PulledOn, PulledBy: c.name}
			if err := c.store.UpsertEntry(ctx, rec); err != nil {
				c.log.Error("storing error record failed", zap.String("eid", e.EID), zap.Error(err))
			}
		}
	}

	now := c.now()
	block.Status = store.StatusComplete
	block.CompletedBy = c.name
	block.CompletedOn = now
	block.UpdatedBy = c.name
	block.UpdatedOn = now
	if err := c.store.UpdateBlock(ctx, block); err != nil {
		return 0, failures, fmt.Errorf("complete block %s: %w", block.ID, err)
	}
	return len(entries), failures, nil
}
