// Package storetest holds behaviour tests shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/store"
)

// Run exercises open against the store contract. open must return an empty store.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("Blocks", func(t *testing.T) { testBlocks(t, open(t)) })
	t.Run("ClaimOrder", func(t *testing.T) { testClaimOrder(t, open(t)) })
	t.Run("Entries", func(t *testing.T) { testEntries(t, open(t)) })
	t.Run("Processed", func(t *testing.T) { testProcessed(t, open(t)) })
}

func testBlocks(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	b, err := st.AddBlock(ctx, store.Block{ISSN: "1359-6454", Journal: "Acta Materialia", Year: 2018})
	if err != nil {
		t.Fatalf("AddBlock: %v", err)
	}
	if b.ID == "" {
		t.Error("AddBlock should assign an ID")
	}
	if b.Status != store.StatusIncomplete {
		t.Errorf("Expected status %q, got %q", store.StatusIncomplete, b.Status)
	}

	if _, err := st.AddBlock(ctx, store.Block{ISSN: "1359-6454", Year: 2018}); !errors.Is(err, internalerr.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for repeated ISSN/year, got %v", err)
	}

	got, err := st.GetBlock(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}
	if got.Journal != "Acta Materialia" || got.Year != 2018 {
		t.Errorf("Unexpected block %+v", got)
	}
	if _, err := st.GetBlock(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	done := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	got.Status = store.StatusComplete
	got.NumArticles = 42
	got.CompletedBy = "Ada"
	got.CompletedOn = done
	if err := st.UpdateBlock(ctx, got); err != nil {
		t.Fatalf("UpdateBlock: %v", err)
	}
	again, _ := st.GetBlock(ctx, b.ID)
	if again.NumArticles != 42 || !again.CompletedOn.Equal(done) || again.CompletedBy != "Ada" {
		t.Errorf("Update not persisted: %+v", again)
	}
	if err := st.UpdateBlock(ctx, store.Block{ID: "missing"}); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound updating a missing block, got %v", err)
	}

	complete, err := st.ListBlocks(ctx, store.StatusComplete)
	if err != nil {
		t.Fatalf("ListBlocks: %v", err)
	}
	if len(complete) != 1 {
		t.Errorf("Expected 1 complete block, got %d", len(complete))
	}
	incomplete, _ := st.ListBlocks(ctx, store.StatusIncomplete)
	if len(incomplete) != 0 {
		t.Errorf("Expected no incomplete blocks, got %d", len(incomplete))
	}
}

func testClaimOrder(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	for _, b := range []store.Block{
		{ISSN: "a", Year: 2001, NumArticles: 10},
		{ISSN: "b", Year: 2001, NumArticles: 80},
		{ISSN: "c", Year: 2001, NumArticles: 500},
		{ISSN: "d", Year: 2001, NumArticles: 30},
	} {
		if _, err := st.AddBlock(ctx, b); err != nil {
			t.Fatalf("AddBlock: %v", err)
		}
	}

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	want := []string{"b", "d", "a"}
	for _, issn := range want {
		b, found, err := st.ClaimBlock(ctx, 100, "tester", now)
		if err != nil {
			t.Fatalf("ClaimBlock: %v", err)
		}
		if !found {
			t.Fatalf("Expected to claim block %s", issn)
		}
		if b.ISSN != issn {
			t.Errorf("Claimed %s, want %s", b.ISSN, issn)
		}
		if b.Status != store.StatusInProgress || b.UpdatedBy != "tester" {
			t.Errorf("Claimed block not marked in progress: %+v", b)
		}
	}

	if _, found, err := st.ClaimBlock(ctx, 100, "tester", now); err != nil || found {
		t.Errorf("Expected no claimable block, got found=%v err=%v", found, err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Blocks[store.StatusInProgress] != 3 || stats.Blocks[store.StatusIncomplete] != 1 {
		t.Errorf("Unexpected block stats %+v", stats.Blocks)
	}
}

func testEntries(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	pulled := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	e := store.Entry{
		EID:       "2-s2.0-1",
		DOI:       "10.1016/j.actamat.2018.01.057",
		Title:     "Grain growth",
		Abstract:  "We study Fe2O3.",
		Keywords:  []string{"grain", "oxide"},
		Completed: true,
		PulledOn:  pulled,
		PulledBy:  "Ada",
	}
	if err := st.UpsertEntry(ctx, e); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}
	if err := st.UpsertEntry(ctx, store.Entry{EID: "2-s2.0-2", Error: store.ErrNoAbstract}); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}
	if err := st.UpsertEntry(ctx, store.Entry{}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for entry without EID, got %v", err)
	}

	got, found, err := st.GetEntry(ctx, e.EID)
	if err != nil || !found {
		t.Fatalf("GetEntry: found=%v err=%v", found, err)
	}
	if got.DOI != e.DOI || len(got.Keywords) != 2 || !got.PulledOn.Equal(pulled) || !got.Completed {
		t.Errorf("Unexpected entry %+v", got)
	}
	if _, found, _ := st.GetEntry(ctx, "missing"); found {
		t.Error("Missing entry should not be found")
	}

	e.Title = "Grain growth revisited"
	if err := st.UpsertEntry(ctx, e); err != nil {
		t.Fatalf("UpsertEntry replace: %v", err)
	}
	got, _, _ = st.GetEntry(ctx, e.EID)
	if got.Title != "Grain growth revisited" {
		t.Errorf("Upsert should replace, got title %q", got.Title)
	}

	pending, err := st.PendingEntries(ctx, 0)
	if err != nil {
		t.Fatalf("PendingEntries: %v", err)
	}
	if len(pending) != 1 || pending[0].EID != e.EID {
		t.Errorf("Expected only the completed entry pending, got %+v", pending)
	}

	stats, _ := st.Stats(ctx)
	if stats.Entries != 2 || stats.CompletedEntries != 1 {
		t.Errorf("Unexpected entry stats %+v", stats)
	}
}

func testProcessed(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	for _, eid := range []string{"e1", "e2", "e3"} {
		if err := st.UpsertEntry(ctx, store.Entry{EID: eid, Abstract: "text", Completed: true}); err != nil {
			t.Fatalf("UpsertEntry: %v", err)
		}
	}

	p := store.Processed{
		EID:      "e2",
		Year:     2019,
		Tokens:   []string{"iron", "oxide"},
		Mentions: []store.Mention{{Surface: "iron", Canonical: "Fe"}},
	}
	if err := st.UpsertProcessed(ctx, p); err != nil {
		t.Fatalf("UpsertProcessed: %v", err)
	}

	pending, _ := st.PendingEntries(ctx, 0)
	if len(pending) != 2 {
		t.Errorf("Expected 2 pending entries, got %d", len(pending))
	}
	limited, _ := st.PendingEntries(ctx, 1)
	if len(limited) != 1 || limited[0].EID != "e1" {
		t.Errorf("Expected limit to return e1 only, got %+v", limited)
	}

	list, err := st.ListProcessed(ctx, 0)
	if err != nil {
		t.Fatalf("ListProcessed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("Expected 1 processed abstract, got %d", len(list))
	}
	if len(list[0].Tokens) != 2 || list[0].Mentions[0].Canonical != "Fe" || list[0].Year != 2019 {
		t.Errorf("Unexpected processed abstract %+v", list[0])
	}
}
