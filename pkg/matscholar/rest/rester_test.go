package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
)

// apiServer answers every request with handler's value wrapped in a valid envelope.
func apiServer(t *testing.T, handler func(r *http.Request) any) (*httptest.Server, *Rester) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		json.NewEncoder(w).Encode(map[string]any{
			"valid_response": true,
			"response":       handler(r),
		})
	}))
	t.Cleanup(server.Close)

	r, err := New("test-key", server.URL+"/")
	require.NoError(t, err)
	return server, r
}

func TestNew(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		_, err := New("", "http://localhost")
		assert.ErrorIs(t, err, internalerr.ErrMissingAPIKey)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		t.Setenv(EnvEndpoint, "")
		_, err := New("key", "")
		assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
	})

	t.Run("environment fallback", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "env-key")
		t.Setenv(EnvEndpoint, "http://env.example/api/")
		r, err := New("", "")
		require.NoError(t, err)
		assert.Equal(t, "env-key", r.apiKey)
		assert.Equal(t, "http://env.example/api", r.endpoint)
	})
}

func TestMaterialsSearch(t *testing.T) {
	_, r := apiServer(t, func(req *http.Request) any {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/embeddings/matsearch/thermoelectric,solar", req.URL.Path)
		assert.Equal(t, "5", req.URL.Query().Get("top_k"))
		assert.Equal(t, "PbTe", req.URL.Query().Get("negative"))
		assert.Equal(t, "True", req.URL.Query().Get("ignore_missing"))
		return map[string]any{
			"materials": []string{"Bi2Te3", "SnSe"},
			"counts":    []int{120, 40},
			"scores":    []float64{0.9, 0.8},
			"positive":  []string{"thermoelectric", "solar"},
		}
	})

	opts := DefaultSearchOptions()
	opts.TopK = 5
	opts.Negative = []string{"PbTe"}
	res, err := r.MaterialsSearch(context.Background(), []string{"thermoelectric", "solar"}, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bi2Te3", "SnSe"}, res.Materials)
	assert.Equal(t, []int{120, 40}, res.Counts)
	assert.Equal(t, []float64{0.9, 0.8}, res.Scores)
}

func TestCloseWordsDefaults(t *testing.T) {
	_, r := apiServer(t, func(req *http.Request) any {
		assert.Equal(t, "/embeddings/close_words/LiFePO4", req.URL.Path)
		assert.Equal(t, "10", req.URL.Query().Get("top_k"))
		assert.Empty(t, req.URL.Query().Get("negative"))
		assert.Equal(t, "False", req.URL.Query().Get("ignore_missing"))
		return map[string]any{"close_words": []string{"cathode"}, "scores": []float64{0.7}}
	})

	res, err := r.CloseWords(context.Background(), []string{"LiFePO4"}, SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"cathode"}, res.CloseWords)
}

func TestEmbeddings(t *testing.T) {
	_, r := apiServer(t, func(req *http.Request) any {
		if req.Method == http.MethodGet {
			assert.Equal(t, "/embeddings/band gap", req.URL.Path)
			return map[string]any{
				"original_wordphrases":  "band gap",
				"processed_wordphrases": "band_gap",
				"embeddings":            []float64{0.1, 0.2},
			}
		}
		assert.Equal(t, "/embeddings", req.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, []any{"iron", "steel"}, body["wordphrases"])
		assert.Equal(t, true, body["ignore_missing"])
		return map[string]any{
			"original_wordphrases":  []string{"iron", "steel"},
			"processed_wordphrases": []string{"iron", "steel"},
			"embeddings":            [][]float64{{1, 0}, {0, 1}},
		}
	})

	one, err := r.GetEmbedding(context.Background(), "band gap", true)
	require.NoError(t, err)
	assert.Equal(t, "band_gap", one.ProcessedWordphrase)
	assert.Equal(t, []float64{0.1, 0.2}, one.Vector)

	many, err := r.GetEmbeddings(context.Background(), []string{"iron", "steel"}, true)
	require.NoError(t, err)
	assert.Len(t, many.Vectors, 2)
}

func TestPostOperations(t *testing.T) {
	var lastPath string
	var lastBody map[string]any
	_, r := apiServer(t, func(req *http.Request) any {
		lastPath = req.URL.Path
		lastBody = nil
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(req.Body).Decode(&lastBody))
		switch req.URL.Path {
		case "/journal_suggestion":
			return [][]any{{"Acta Materialia", 0.92}, {"Scripta Materialia", "0.81"}}
		case "/search/material_search":
			return []string{"GaN"}
		case "/ent_search/summary":
			return map[string]any{"PRO": []string{"band gap"}}
		default:
			return []map[string]any{{"doi": "10.1/x"}}
		}
	})
	ctx := context.Background()

	journals, err := r.GetJournals(ctx, "We grow GaN films.")
	require.NoError(t, err)
	assert.Equal(t, []JournalSuggestion{{"Acta Materialia", 0.92}, {"Scripta Materialia", 0.81}}, journals)
	assert.Equal(t, "We grow GaN films.", lastBody["abstract"])

	mats, err := r.MaterialsSearchEntities(ctx, []string{"LED"}, []string{"Ga", "-In"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"GaN"}, mats)
	assert.Nil(t, lastBody["cutoff"])

	query := EntityQuery{"material": {"GaN", "-InN"}, "application": {"LED"}}
	docs, err := r.SearchEntities(ctx, query)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, "/ent_search", lastPath)

	summary, err := r.GetSummary(ctx, query)
	require.NoError(t, err)
	assert.Contains(t, summary, "PRO")

	_, err = r.SearchTextWithEntities(ctx, "nitride", query, 50)
	require.NoError(t, err)
	assert.Equal(t, "/search", lastPath)
	inner := lastBody["query"].(map[string]any)
	assert.Equal(t, "nitride", inner["text"])
	assert.Equal(t, float64(50), lastBody["limit"])
	_, hasText := query["text"]
	assert.False(t, hasText, "filters must not be modified")

	_, err = r.GetNERTags(ctx, []string{"GaN is a semiconductor."}, "")
	require.NoError(t, err)
	assert.Equal(t, "concatenated", lastBody["return_type"])
}

func TestGetMaterialsMapAndSimilar(t *testing.T) {
	_, r := apiServer(t, func(req *http.Request) any {
		if req.URL.Path == "/materials_map" {
			assert.Equal(t, []string{"battery", "cathode"}, req.URL.Query()["highlight"])
			assert.Equal(t, "2", req.URL.Query().Get("dims"))
			assert.Empty(t, req.URL.Query().Get("limit"))
			return map[string]any{"x": []float64{1}, "y": []float64{2}}
		}
		assert.Equal(t, "/materials/similar/LiCoO2", req.URL.Path)
		return []string{"LiNiO2", "LiMn2O4"}
	})
	ctx := context.Background()

	m, err := r.MaterialsMap(ctx, []string{"battery", "cathode"}, MapOptions{IgnoreMissing: true})
	require.NoError(t, err)
	assert.Contains(t, m, "x")

	similar, err := r.GetSimilarMaterials(ctx, "LiCoO2")
	require.NoError(t, err)
	assert.Equal(t, []string{"LiNiO2", "LiMn2O4"}, similar)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"invalid response", http.StatusBadRequest, `{"valid_response": false, "error": "bad query"}`, "bad query"},
		{"server error", http.StatusInternalServerError, `oops`, "error status code 500"},
		{"garbage body", http.StatusOK, `not json`, "Content: not json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			r, err := New("k", server.URL)
			require.NoError(t, err)
			_, err = r.GetSimilarMaterials(context.Background(), "Fe")

			var restErr *RestError
			require.True(t, errors.As(err, &restErr), "got %v", err)
			assert.Equal(t, tt.status, restErr.StatusCode)
			assert.Contains(t, restErr.Error(), tt.wantMsg)
		})
	}
}

func TestWarningIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"valid_response": true, "warning": "word missing", "response": ["Fe"]}`)
	}))
	defer server.Close()

	r, err := New("k", server.URL, WithLogger(zap.New(core)))
	require.NoError(t, err)
	out, err := r.GetSimilarMaterials(context.Background(), "Fe")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fe"}, out)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "word missing", logs.All()[0].ContextMap()["warning"])
}

func TestParseWordExpression(t *testing.T) {
	tests := []struct {
		expr     string
		positive []string
		negative []string
	}{
		{"thermoelectric - PbTe + LiFePO4", []string{"thermoelectric", "LiFePO4"}, []string{"PbTe"}},
		{"battery", []string{"battery"}, nil},
		{"cathode -LiCoO2", []string{"cathode"}, []string{"LiCoO2"}},
		{"band-gap + solar cell", []string{"band-gap", "solar cell"}, nil},
		{"", nil, nil},
	}
	for _, tt := range tests {
		pos, neg := ParseWordExpression(tt.expr)
		assert.Equal(t, tt.positive, pos, "positive terms of %q", tt.expr)
		assert.Equal(t, tt.negative, neg, "negative terms of %q", tt.expr)
	}
}
