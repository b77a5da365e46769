// Package corpus turns harvested abstracts into processed token streams and
// exports them for embedding training.
package corpus

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/materialsintelligence/matscholar/internal/logging"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/process"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/store"
)

// Corpus is the processing facade over a harvest store.
type Corpus struct {
	store store.Store
	proc  *process.Processor
	opts  process.Options
	log   *zap.Logger
	now   func() time.Time
}

// Options configures a Corpus
type Options struct {
	Store     store.Store
	Processor *process.Processor
	// Process selects the token rules applied to every abstract.
	Process process.Options
	Logger  *zap.Logger
}

// New creates a Corpus with the given dependencies
func New(opts Options) (*Corpus, error) {
	if opts.Store == nil || opts.Processor == nil {
		return nil, fmt.Errorf("corpus needs a store and a processor: %w", internalerr.ErrInvalidConfig)
	}
	return &Corpus{
		store: opts.Store,
		proc:  opts.Processor,
		opts:  opts.Process,
		log:   logging.OrNop(opts.Logger),
		now:   time.Now,
	}, nil
}

// Close closes the underlying store.
func (c *Corpus) Close() error {
	return c.store.Close()
}

// ProcessEntry runs one entry's abstract through the processor.
func (c *Corpus) ProcessEntry(e store.Entry) (store.Processed, error) {
	tokens, mentions, err := c.proc.ProcessText(e.Abstract, c.opts)
	if err != nil {
		return store.Processed{}, fmt.Errorf("process %s: %w", e.EID, err)
	}

	out := store.Processed{
		EID:         e.EID,
		DOI:         e.DOI,
		Title:       e.Title,
		Year:        coverYear(e.CoverDate),
		Tokens:      tokens,
		Mentions:    make([]store.Mention, len(mentions)),
		ProcessedAt: c.now(),
	}
	for i, m := range mentions {
		out.Mentions[i] = store.Mention{Surface: m.Surface, Canonical: m.Canonical}
	}
	return out, nil
}

// ProcessEntries processes up to limit completed entries that have no
// processed form yet (all of them when limit <= 0) and returns how many were
// stored.
func (c *Corpus) ProcessEntries(ctx context.Context, limit int) (int, error) {
	pending, err := c.store.PendingEntries(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list pending entries: %w", err)
	}

	done := 0
	for _, e := range pending {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		p, err := c.ProcessEntry(e)
		if err != nil {
			return done, err
		}
		if err := c.store.UpsertProcessed(ctx, p); err != nil {
			return done, fmt.Errorf("store processed %s: %w", e.EID, err)
		}
		done++
	}

	c.log.Info("processed abstracts", zap.Int("count", done), zap.Int("pending", len(pending)))
	return done, nil
}

// coverYear extracts the year of a Scopus cover date such as "2018-03-01".
func coverYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
