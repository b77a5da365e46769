// Package store defines the harvest datastore: blocks of journal/year work,
// harvested abstract entries and their processed form.
package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// BlockStatus is the lifecycle state of a harvest block.
type BlockStatus string

const (
	StatusIncomplete BlockStatus = "incomplete"
	StatusInProgress BlockStatus = "in progress"
	StatusComplete   BlockStatus = "complete"
)

// Entry errors recorded by the harvester.
const (
	ErrNoAbstract = "No Abstract!"
	ErrNoDOI      = "No DOI!"
)

// Store is the interface for persisting harvest state
type Store interface {
	Close() error

	// Blocks
	AddBlock(ctx context.Context, b Block) (Block, error)
	GetBlock(ctx context.Context, id string) (Block, error)
	ListBlocks(ctx context.Context, status BlockStatus) ([]Block, error)
	// ClaimBlock moves the largest incomplete block holding fewer than
	// maxArticles articles to in progress. found is false when none is left.
	ClaimBlock(ctx context.Context, maxArticles int, claimant string, now time.Time) (b Block, found bool, err error)
	UpdateBlock(ctx context.Context, b Block) error

	// Entries
	UpsertEntry(ctx context.Context, e Entry) error
	GetEntry(ctx context.Context, eid string) (Entry, bool, error)
	// PendingEntries returns completed entries that have not been processed yet.
	PendingEntries(ctx context.Context, limit int) ([]Entry, error)

	// Processed abstracts
	UpsertProcessed(ctx context.Context, p Processed) error
	ListProcessed(ctx context.Context, limit int) ([]Processed, error)

	Stats(ctx context.Context) (Stats, error)
}

// Block is one ISSN/year unit of harvest work.
type Block struct {
	ID          string
	ISSN        string
	Journal     string
	Year        int
	Status      BlockStatus
	NumArticles int
	NumSkipped  int
	UpdatedBy   string
	UpdatedOn   time.Time
	CompletedBy string
	CompletedOn time.Time
}

// Entry is one harvested search result keyed by its Scopus EID.
type Entry struct {
	EID       string
	BlockID   string
	DOI       string
	Title     string
	Abstract  string
	Journal   string
	ISSN      string
	CoverDate string
	Creator   string
	Keywords  []string
	Completed bool
	Error     string
	PulledOn  time.Time
	PulledBy  string
}

// Mention is a stored material mention.
type Mention struct {
	Surface   string
	Canonical string
}

// Processed is an entry's abstract after text processing.
type Processed struct {
	EID         string
	DOI         string
	Title       string
	Year        int
	Tokens      []string
	Mentions    []Mention
	ProcessedAt time.Time
}

// Stats counts stored records.
type Stats struct {
	Blocks           map[BlockStatus]int
	Entries          int
	CompletedEntries int
	Processed        int
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new lexicographically sortable block ID.
func NewID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), idEntropy).String()
}
