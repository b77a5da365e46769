package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled. Failures to
// reach the database file wrap internalerr.ErrStoreUnavailable.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable(path, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, unavailable(path, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, unavailable(path, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

func unavailable(path string, err error) error {
	return fmt.Errorf("open %s: %w: %w", path, internalerr.ErrStoreUnavailable, err)
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS blocks (
	id TEXT PRIMARY KEY,
	issn TEXT NOT NULL,
	journal TEXT,
	year INTEGER NOT NULL,
	status TEXT NOT NULL,
	num_articles INTEGER NOT NULL DEFAULT 0,
	num_skipped INTEGER NOT NULL DEFAULT 0,
	updated_by TEXT,
	updated_on TEXT,
	completed_by TEXT,
	completed_on TEXT,
	UNIQUE(issn, year)
);

CREATE INDEX IF NOT EXISTS blocks_status_size ON blocks(status, num_articles);

CREATE TABLE IF NOT EXISTS entries (
	eid TEXT PRIMARY KEY,
	block_id TEXT,
	doi TEXT,
	title TEXT,
	abstract TEXT,
	journal TEXT,
	issn TEXT,
	cover_date TEXT,
	creator TEXT,
	keywords TEXT,
	completed INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	pulled_on TEXT,
	pulled_by TEXT
);

CREATE TABLE IF NOT EXISTS processed (
	eid TEXT PRIMARY KEY,
	doi TEXT,
	title TEXT,
	year INTEGER,
	tokens TEXT NOT NULL,
	mentions TEXT NOT NULL,
	processed_at TEXT
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// AddBlock inserts a block; an ISSN/year pair may only be added once.
func (s *sqliteStore) AddBlock(ctx context.Context, b store.Block) (store.Block, error) {
	if b.ID == "" {
		b.ID = store.NewID(time.Now())
	}
	if b.Status == "" {
		b.Status = store.StatusIncomplete
	}

	const stmt = `
INSERT INTO blocks (id, issn, journal, year, status, num_articles, num_skipped,
	updated_by, updated_on, completed_by, completed_on)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(issn, year) DO NOTHING;
`
	res, err := s.db.ExecContext(ctx, stmt,
		b.ID, b.ISSN, b.Journal, b.Year, string(b.Status), b.NumArticles, b.NumSkipped,
		b.UpdatedBy, formatTime(b.UpdatedOn), b.CompletedBy, formatTime(b.CompletedOn),
	)
	if err != nil {
		return store.Block{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.Block{}, fmt.Errorf("block %s %d: %w", b.ISSN, b.Year, internalerr.ErrDuplicate)
	}
	return b, nil
}

const blockColumns = `id, issn, journal, year, status, num_articles, num_skipped,
	updated_by, updated_on, completed_by, completed_on`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlock(row rowScanner) (store.Block, error) {
	var (
		b                               store.Block
		status                          string
		journal, updatedBy, completedBy sql.NullString
		updatedOn, completedOn          sql.NullString
	)
	if err := row.Scan(&b.ID, &b.ISSN, &journal, &b.Year, &status, &b.NumArticles, &b.NumSkipped,
		&updatedBy, &updatedOn, &completedBy, &completedOn); err != nil {
		return store.Block{}, err
	}
	b.Status = store.BlockStatus(status)
	b.Journal = journal.String
	b.UpdatedBy = updatedBy.String
	b.UpdatedOn = parseTime(updatedOn.String)
	b.CompletedBy = completedBy.String
	b.CompletedOn = parseTime(completedOn.String)
	return b, nil
}

// GetBlock returns a block by ID.
func (s *sqliteStore) GetBlock(ctx context.Context, id string) (store.Block, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+blockColumns+` FROM blocks WHERE id = ?`, id)
	b, err := scanBlock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Block{}, fmt.Errorf("block %s: %w", id, internalerr.ErrNotFound)
	}
	return b, err
}

// ListBlocks returns blocks with the given status (all when empty), ordered by ID.
func (s *sqliteStore) ListBlocks(ctx context.Context, status store.BlockStatus) ([]store.Block, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+blockColumns+` FROM blocks WHERE ? = '' OR status = ? ORDER BY id`,
		string(status), string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ClaimBlock picks the largest eligible incomplete block and marks it in
// progress within one transaction.
func (s *sqliteStore) ClaimBlock(ctx context.Context, maxArticles int, claimant string, now time.Time) (store.Block, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Block{}, false, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
SELECT `+blockColumns+` FROM blocks
WHERE status = ? AND num_articles < ?
ORDER BY num_articles DESC, id ASC
LIMIT 1`, string(store.StatusIncomplete), maxArticles)
	b, err := scanBlock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Block{}, false, nil
	}
	if err != nil {
		return store.Block{}, false, err
	}

	b.Status = store.StatusInProgress
	b.UpdatedBy = claimant
	b.UpdatedOn = now
	if _, err := tx.ExecContext(ctx,
		`UPDATE blocks SET status = ?, updated_by = ?, updated_on = ? WHERE id = ?`,
		string(b.Status), b.UpdatedBy, formatTime(b.UpdatedOn), b.ID); err != nil {
		return store.Block{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return store.Block{}, false, err
	}
	return b, true, nil
}

// UpdateBlock writes all mutable block fields.
func (s *sqliteStore) UpdateBlock(ctx context.Context, b store.Block) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE blocks SET journal = ?, status = ?, num_articles = ?, num_skipped = ?,
	updated_by = ?, updated_on = ?, completed_by = ?, completed_on = ?
WHERE id = ?`,
		b.Journal, string(b.Status), b.NumArticles, b.NumSkipped,
		b.UpdatedBy, formatTime(b.UpdatedOn), b.CompletedBy, formatTime(b.CompletedOn), b.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("block %s: %w", b.ID, internalerr.ErrNotFound)
	}
	return nil
}

// UpsertEntry inserts or replaces an entry keyed by EID.
func (s *sqliteStore) UpsertEntry(ctx context.Context, e store.Entry) error {
	if e.EID == "" {
		return fmt.Errorf("entry without eid: %w", internalerr.ErrInvalidInput)
	}
	keywords, err := json.Marshal(nonNil(e.Keywords))
	if err != nil {
		return err
	}

	const stmt = `
INSERT INTO entries (eid, block_id, doi, title, abstract, journal, issn, cover_date,
	creator, keywords, completed, error, pulled_on, pulled_by)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(eid) DO UPDATE SET
	block_id=excluded.block_id,
	doi=excluded.doi,
	title=excluded.title,
	abstract=excluded.abstract,
	journal=excluded.journal,
	issn=excluded.issn,
	cover_date=excluded.cover_date,
	creator=excluded.creator,
	keywords=excluded.keywords,
	completed=excluded.completed,
	error=excluded.error,
	pulled_on=excluded.pulled_on,
	pulled_by=excluded.pulled_by;
`
	_, err = s.db.ExecContext(ctx, stmt,
		e.EID, e.BlockID, e.DOI, e.Title, e.Abstract, e.Journal, e.ISSN, e.CoverDate,
		e.Creator, string(keywords), boolToInt(e.Completed), e.Error, formatTime(e.PulledOn), e.PulledBy,
	)
	return err
}

const entryColumns = `e.eid, e.block_id, e.doi, e.title, e.abstract, e.journal, e.issn, e.cover_date,
	e.creator, e.keywords, e.completed, e.error, e.pulled_on, e.pulled_by`

func scanEntry(row rowScanner) (store.Entry, error) {
	var (
		e                                      store.Entry
		completed                              int
		blockID, doi, title, abstract, journal sql.NullString
		issn, coverDate, creator, keywords     sql.NullString
		errText, pulledOn, pulledBy            sql.NullString
	)
	if err := row.Scan(&e.EID, &blockID, &doi, &title, &abstract, &journal, &issn, &coverDate,
		&creator, &keywords, &completed, &errText, &pulledOn, &pulledBy); err != nil {
		return store.Entry{}, err
	}
	e.BlockID = blockID.String
	e.DOI = doi.String
	e.Title = title.String
	e.Abstract = abstract.String
	e.Journal = journal.String
	e.ISSN = issn.String
	e.CoverDate = coverDate.String
	e.Creator = creator.String
	e.Completed = completed != 0
	e.Error = errText.String
	e.PulledOn = parseTime(pulledOn.String)
	e.PulledBy = pulledBy.String
	if keywords.String != "" {
		if err := json.Unmarshal([]byte(keywords.String), &e.Keywords); err != nil {
			return store.Entry{}, fmt.Errorf("decode keywords of %s: %w", e.EID, err)
		}
	}
	return e, nil
}

// GetEntry returns an entry by EID.
func (s *sqliteStore) GetEntry(ctx context.Context, eid string) (store.Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries e WHERE e.eid = ?`, eid)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Entry{}, false, nil
	}
	if err != nil {
		return store.Entry{}, false, err
	}
	return e, true, nil
}

// PendingEntries returns completed entries without a processed abstract.
func (s *sqliteStore) PendingEntries(ctx context.Context, limit int) ([]store.Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT `+entryColumns+` FROM entries e
LEFT JOIN processed p ON p.eid = e.eid
WHERE e.completed = 1 AND p.eid IS NULL
ORDER BY e.eid
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpsertProcessed stores a processed abstract keyed by EID.
func (s *sqliteStore) UpsertProcessed(ctx context.Context, p store.Processed) error {
	if p.EID == "" {
		return fmt.Errorf("processed abstract without eid: %w", internalerr.ErrInvalidInput)
	}
	tokens, err := json.Marshal(nonNil(p.Tokens))
	if err != nil {
		return err
	}
	mentions := p.Mentions
	if mentions == nil {
		mentions = []store.Mention{}
	}
	mentionsJSON, err := json.Marshal(mentions)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO processed (eid, doi, title, year, tokens, mentions, processed_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(eid) DO UPDATE SET
	doi=excluded.doi,
	title=excluded.title,
	year=excluded.year,
	tokens=excluded.tokens,
	mentions=excluded.mentions,
	processed_at=excluded.processed_at;
`, p.EID, p.DOI, p.Title, p.Year, string(tokens), string(mentionsJSON), formatTime(p.ProcessedAt))
	return err
}

// ListProcessed returns processed abstracts ordered by EID.
func (s *sqliteStore) ListProcessed(ctx context.Context, limit int) ([]store.Processed, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT eid, doi, title, year, tokens, mentions, processed_at
FROM processed ORDER BY eid LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Processed
	for rows.Next() {
		var (
			p                       store.Processed
			doi, title, processedAt sql.NullString
			year                    sql.NullInt64
			tokens, mentions        string
		)
		if err := rows.Scan(&p.EID, &doi, &title, &year, &tokens, &mentions, &processedAt); err != nil {
			return nil, err
		}
		p.DOI = doi.String
		p.Title = title.String
		p.Year = int(year.Int64)
		p.ProcessedAt = parseTime(processedAt.String)
		if err := json.Unmarshal([]byte(tokens), &p.Tokens); err != nil {
			return nil, fmt.Errorf("decode tokens of %s: %w", p.EID, err)
		}
		if err := json.Unmarshal([]byte(mentions), &p.Mentions); err != nil {
			return nil, fmt.Errorf("decode mentions of %s: %w", p.EID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Stats counts blocks by status, entries and processed abstracts.
func (s *sqliteStore) Stats(ctx context.Context) (store.Stats, error) {
	st := store.Stats{Blocks: make(map[store.BlockStatus]int)}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM blocks GROUP BY status`)
	if err != nil {
		return st, err
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return st, err
		}
		st.Blocks[store.BlockStatus(status)] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return st, err
	}

	err = s.db.QueryRowContext(ctx, `
SELECT
	(SELECT COUNT(*) FROM entries),
	(SELECT COUNT(*) FROM entries WHERE completed = 1),
	(SELECT COUNT(*) FROM processed)`).Scan(&st.Entries, &st.CompletedEntries, &st.Processed)
	return st, err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
