package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultTopK is the number of results returned by similarity searches.
const DefaultTopK = 10

// SearchOptions tune MaterialsSearch and CloseWords.
type SearchOptions struct {
	Negative []string
	// IgnoreMissing drops words without embeddings instead of guessing them.
	IgnoreMissing bool
	TopK          int
}

// DefaultSearchOptions ignores missing words and returns DefaultTopK results.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{IgnoreMissing: true, TopK: DefaultTopK}
}

func (o SearchOptions) query() url.Values {
	topK := o.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	return searchQuery(o.Negative, o.IgnoreMissing, topK)
}

// MaterialsSearchResult ranks materials by similarity to the query words.
type MaterialsSearchResult struct {
	Materials        []string  `json:"materials"`
	Counts           []int     `json:"counts"`
	Scores           []float64 `json:"scores"`
	Positive         []string  `json:"positive"`
	Negative         []string  `json:"negative"`
	OriginalPositive []string  `json:"original_positive"`
	OriginalNegative []string  `json:"original_negative"`
}

// CloseWordsResult lists the words closest to the cumulative embedding.
type CloseWordsResult struct {
	CloseWords       []string  `json:"close_words"`
	Scores           []float64 `json:"scores"`
	Positive         []string  `json:"positive"`
	Negative         []string  `json:"negative"`
	OriginalPositive []string  `json:"original_positive"`
	OriginalNegative []string  `json:"original_negative"`
}

// Embedding is the vector for a single word or phrase.
type Embedding struct {
	OriginalWordphrase  string    `json:"original_wordphrases"`
	ProcessedWordphrase string    `json:"processed_wordphrases"`
	Vector              []float64 `json:"embeddings"`
}

// Embeddings holds one row per requested word or phrase.
type Embeddings struct {
	OriginalWordphrases  []string    `json:"original_wordphrases"`
	ProcessedWordphrases []string    `json:"processed_wordphrases"`
	Vectors              [][]float64 `json:"embeddings"`
}

// MapOptions configure MaterialsMap. Limit 0 means no limit.
type MapOptions struct {
	Limit             int
	IgnoreMissing     bool
	NumberToSubstring bool
	Dims              int
}

// EntityQuery maps an entity type (material, application, property...) to
// the values to match. A leading "-" excludes a value.
type EntityQuery map[string][]string

// JournalSuggestion is a journal ranked by similarity to an abstract.
type JournalSuggestion struct {
	Journal    string
	Similarity float64
}

// UnmarshalJSON decodes the [name, similarity] pairs the API returns.
func (j *JournalSuggestion) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("journal suggestion: expected 2 fields, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &j.Journal); err != nil {
		return err
	}
	var sim json.Number
	if err := json.Unmarshal(pair[1], &sim); err != nil {
		var s string
		if err := json.Unmarshal(pair[1], &s); err != nil {
			return err
		}
		sim = json.Number(s)
	}
	f, err := sim.Float64()
	if err != nil {
		return err
	}
	j.Similarity = f
	return nil
}

// MaterialsSearch ranks materials by similarity to the positive words minus
// the negative ones.
func (r *Rester) MaterialsSearch(ctx context.Context, positive []string, opts SearchOptions) (MaterialsSearchResult, error) {
	var out MaterialsSearchResult
	err := r.request(ctx, http.MethodGet, wordPath("/embeddings/matsearch/", positive), opts.query(), nil, &out)
	return out, err
}

// CloseWords returns the words and phrases most similar by cosine similarity.
func (r *Rester) CloseWords(ctx context.Context, positive []string, opts SearchOptions) (CloseWordsResult, error) {
	var out CloseWordsResult
	err := r.request(ctx, http.MethodGet, wordPath("/embeddings/close_words/", positive), opts.query(), nil, &out)
	return out, err
}

// GetEmbedding returns the embedding of one word or phrase.
func (r *Rester) GetEmbedding(ctx context.Context, wordphrase string, ignoreMissing bool) (Embedding, error) {
	q := url.Values{}
	q.Set("ignore_missing", formBool(ignoreMissing))
	var out Embedding
	err := r.request(ctx, http.MethodGet, "/embeddings/"+url.PathEscape(wordphrase), q, nil, &out)
	return out, err
}

// GetEmbeddings returns one embedding row per word or phrase.
func (r *Rester) GetEmbeddings(ctx context.Context, wordphrases []string, ignoreMissing bool) (Embeddings, error) {
	body := map[string]any{
		"wordphrases":    wordphrases,
		"ignore_missing": ignoreMissing,
	}
	var out Embeddings
	err := r.request(ctx, http.MethodPost, "/embeddings", nil, body, &out)
	return out, err
}

// MaterialsMap returns scatter plot data with materials highlighted by
// similarity to the highlight words.
func (r *Rester) MaterialsMap(ctx context.Context, highlight []string, opts MapOptions) (map[string]any, error) {
	q := url.Values{}
	for _, h := range highlight {
		q.Add("highlight", h)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	q.Set("ignore_missing", formBool(opts.IgnoreMissing))
	q.Set("number_to_substring", formBool(opts.NumberToSubstring))
	dims := opts.Dims
	if dims != 3 {
		dims = 2
	}
	q.Set("dims", strconv.Itoa(dims))

	var out map[string]any
	err := r.request(ctx, http.MethodGet, "/materials_map", q, nil, &out)
	return out, err
}

// SearchEntities returns the extracted entities of each matching document.
func (r *Rester) SearchEntities(ctx context.Context, query EntityQuery) ([]map[string]any, error) {
	var out []map[string]any
	err := r.request(ctx, http.MethodPost, "/ent_search", nil, query, &out)
	return out, err
}

// GetJournals suggests journals for an abstract.
func (r *Rester) GetJournals(ctx context.Context, abstract string) ([]JournalSuggestion, error) {
	var out []JournalSuggestion
	err := r.request(ctx, http.MethodPost, "/journal_suggestion", nil, map[string]string{"abstract": abstract}, &out)
	return out, err
}

// GetSummary summarises the entities associated with a query, keyed by
// entity type.
func (r *Rester) GetSummary(ctx context.Context, query EntityQuery) (map[string]any, error) {
	var out map[string]any
	err := r.request(ctx, http.MethodPost, "/ent_search/summary", nil, query, &out)
	return out, err
}

// GetSimilarMaterials returns the compositions closest to material.
func (r *Rester) GetSimilarMaterials(ctx context.Context, material string) ([]string, error) {
	var out []string
	err := r.request(ctx, http.MethodGet, "/materials/similar/"+url.PathEscape(material), nil, nil, &out)
	return out, err
}

// NER output formats.
const (
	NERIOB          = "iob"
	NERConcatenated = "concatenated"
	NERNormalized   = "normalized"
)

// GetNERTags runs named entity recognition over docs. returnType is one of
// NERIOB, NERConcatenated or NERNormalized; empty means concatenated.
func (r *Rester) GetNERTags(ctx context.Context, docs []string, returnType string) ([]any, error) {
	if returnType == "" {
		returnType = NERConcatenated
	}
	body := map[string]any{"docs": docs, "return_type": returnType}
	var out []any
	err := r.request(ctx, http.MethodPost, "/ner", nil, body, &out)
	return out, err
}

// MaterialsSearchEntities finds materials co-occurring with entities,
// screened by elements ("-Ti" excludes titanium). cutoff 0 returns all.
func (r *Rester) MaterialsSearchEntities(ctx context.Context, entities, elements []string, cutoff int) ([]string, error) {
	body := map[string]any{"entities": entities, "elements": elements, "cutoff": nil}
	if cutoff > 0 {
		body["cutoff"] = cutoff
	}
	var out []string
	err := r.request(ctx, http.MethodPost, "/search/material_search", nil, body, &out)
	return out, err
}

// SearchTextWithEntities searches abstracts by text filtered by entities.
// cutoff 0 returns all matches.
func (r *Rester) SearchTextWithEntities(ctx context.Context, text string, filters EntityQuery, cutoff int) ([]map[string]any, error) {
	query := make(map[string]any, len(filters)+1)
	for k, v := range filters {
		query[k] = v
	}
	query["text"] = text
	body := map[string]any{"query": query, "limit": nil}
	if cutoff > 0 {
		body["limit"] = cutoff
	}
	var out []map[string]any
	err := r.request(ctx, http.MethodPost, "/search", nil, body, &out)
	return out, err
}
