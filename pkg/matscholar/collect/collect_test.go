package collect

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/materialsintelligence/matscholar/internal/scopus"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/store"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/store/memstore"
)

type fakeSearcher struct {
	accessErr error
	searchErr error
	results   map[string][]scopus.Entry
	queries   []string
}

func (f *fakeSearcher) VerifyAccess(ctx context.Context) error { return f.accessErr }

func (f *fakeSearcher) SearchAll(ctx context.Context, query string) ([]scopus.Entry, error) {
	f.queries = append(f.queries, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results[query], nil
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"subscripts", "Thin Fe<inf>2</inf>O<inf>3</inf> films", "Thin Fe2O3 films"},
		{"superscripts", "Doped with Ce<sup>3+</sup> ions", "Doped with Ce3+ ions"},
		{"entities", "strength &amp; ductility", "strength & ductility"},
		{"escaped less than", "stable for x &lt; 0.5", "stable for x < 0.5"},
		{
			"literal less than in range",
			"LiFe1-xMnxPO4 (0<x<1) cathodes were made. Capacity retained 95%.",
			"LiFe1-xMnxPO4 (0<x<1) cathodes were made. Capacity retained 95%.",
		},
		{
			"literal less than before markup",
			"Superconducting at T<Tc and above with Fe<inf>2</inf>O<inf>3</inf>.",
			"Superconducting at T<Tc and above with Fe2O3.",
		},
		{"italic and subscript tags", "<i>in situ</i> growth of TiO<sub>2</sub>", "in situ growth of TiO2"},
		{
			"boilerplate",
			"Abstract We study grain growth. © 2018 The Authors. Published by Elsevier Ltd.",
			"We study grain growth.",
		},
		{"only first abstract label", "Abstract Abstract methods", "Abstract methods"},
		{"hard wraps", "first" + "\n" + strings.Repeat(" ", 24) + "second", "firstsecond"},
		{"whitespace", "  a \n\t b  ", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	_, err := New(memstore.New(), &fakeSearcher{}, "", nil)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	_, err = New(nil, &fakeSearcher{}, "Ada", nil)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestProcessBlock(t *testing.T) {
	c, err := New(memstore.New(), &fakeSearcher{}, "Ada", nil)
	require.NoError(t, err)
	fixed := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	entries := c.ProcessBlock("blk", []scopus.Entry{
		{EID: "1", DOI: "10.1/a", Description: "Abstract Fe<inf>3</inf>O<inf>4</inf> nanoparticles", AuthKeywords: "magnetite"},
		{EID: "2", DOI: "10.1/b"},
		{EID: "3", Description: "No identifier here"},
	})
	require.Len(t, entries, 3)

	assert.True(t, entries[0].Completed)
	assert.Empty(t, entries[0].Error)
	assert.Equal(t, "Fe3O4 nanoparticles", entries[0].Abstract)
	assert.Equal(t, []string{"magnetite"}, entries[0].Keywords)
	assert.Equal(t, "blk", entries[0].BlockID)
	assert.Equal(t, "Ada", entries[0].PulledBy)
	assert.Equal(t, fixed, entries[0].PulledOn)

	assert.False(t, entries[1].Completed)
	assert.Equal(t, store.ErrNoAbstract, entries[1].Error)

	assert.False(t, entries[2].Completed)
	assert.Equal(t, store.ErrNoDOI, entries[2].Error)
}

func TestCollect(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	small, err := st.AddBlock(ctx, store.Block{ISSN: "1359-6454", Journal: "Acta Materialia", Year: 2018})
	require.NoError(t, err)
	big, err := st.AddBlock(ctx, store.Block{ISSN: "0927-0256", Year: 2018, NumArticles: 500})
	require.NoError(t, err)

	api := &fakeSearcher{results: map[string][]scopus.Entry{
		"ISSN(1359-6454) AND PUBYEAR IS 2018": {
			{EID: "2-s2.0-1", DOI: "10.1/a", Description: "Grain growth in Ni."},
			{EID: "2-s2.0-2", DOI: "10.1/b"},
		},
	}}
	c, err := New(st, api, "Ada", nil)
	require.NoError(t, err)

	sum, err := c.Collect(ctx, 100, 5)
	require.NoError(t, err)
	assert.Equal(t, Summary{Blocks: 1, Entries: 2}, sum)
	assert.Equal(t, []string{"ISSN(1359-6454) AND PUBYEAR IS 2018"}, api.queries)

	got, err := st.GetBlock(ctx, small.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusComplete, got.Status)
	assert.Equal(t, 2, got.NumArticles)
	assert.Equal(t, 0, got.NumSkipped)
	assert.Equal(t, "Ada", got.CompletedBy)
	assert.False(t, got.CompletedOn.IsZero())

	untouched, err := st.GetBlock(ctx, big.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusIncomplete, untouched.Status)

	e, found, err := st.GetEntry(ctx, "2-s2.0-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, e.Completed)

	e, found, err = st.GetEntry(ctx, "2-s2.0-2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, store.ErrNoAbstract, e.Error)
}

func TestCollectStopsWithoutAccess(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	b, err := st.AddBlock(ctx, store.Block{ISSN: "1359-6454", Year: 2018})
	require.NoError(t, err)

	c, err := New(st, &fakeSearcher{accessErr: internalerr.ErrNoAccess}, "Ada", nil)
	require.NoError(t, err)

	sum, err := c.Collect(ctx, 100, 1)
	assert.ErrorIs(t, err, internalerr.ErrNoAccess)
	assert.Zero(t, sum.Blocks)

	got, err := st.GetBlock(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusIncomplete, got.Status)
}

func TestCollectSearchFailureLeavesBlockInProgress(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	b, err := st.AddBlock(ctx, store.Block{ISSN: "1359-6454", Year: 2018})
	require.NoError(t, err)

	c, err := New(st, &fakeSearcher{searchErr: errors.New("boom")}, "Ada", nil)
	require.NoError(t, err)

	_, err = c.Collect(ctx, 100, 1)
	require.Error(t, err)

	got, err := st.GetBlock(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusInProgress, got.Status)
	assert.Equal(t, "Ada", got.UpdatedBy)
}

func TestCollectNoBlocks(t *testing.T) {
	c, err := New(memstore.New(), &fakeSearcher{}, "Ada", nil)
	require.NoError(t, err)

	sum, err := c.Collect(context.Background(), 100, 3)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
}
