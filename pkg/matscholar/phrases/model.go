// Package phrases applies a pre-built phrase model that folds common
// multi-word terms ("solar cell", "figure of merit") into single tokens.
package phrases

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
)

// DefaultDelimiter joins the words of a merged phrase.
const DefaultDelimiter = "_"

// keySep separates words inside a phrasegram key.
const keySep = "\x1f"

// Model holds scored phrasegrams. Two words, optionally separated by common
// terms, are merged when their phrasegram scores above Threshold.
//
// A Model is built once and is read-only afterwards; Merge is safe for
// concurrent use.
type Model struct {
	threshold   float64
	delimiter   string
	commonTerms map[string]struct{}
	grams       map[string]float64
}

// Stats summarizes a model.
type Stats struct {
	Phrasegrams int
	CommonTerms int
	Threshold   float64
}

// Phrasegram is one scored word tuple.
type Phrasegram struct {
	Words []string `yaml:"words"`
	Score float64  `yaml:"score"`
}

// File is the on-disk layout of a phrase model.
type File struct {
	Threshold   float64      `yaml:"threshold"`
	Delimiter   string       `yaml:"delimiter,omitempty"`
	CommonTerms []string     `yaml:"common_terms,omitempty"`
	Phrasegrams []Phrasegram `yaml:"phrasegrams"`
}

// New creates an empty model.
func New(threshold float64, delimiter string, commonTerms []string) *Model {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	m := &Model{
		threshold:   threshold,
		delimiter:   delimiter,
		commonTerms: make(map[string]struct{}, len(commonTerms)),
		grams:       make(map[string]float64),
	}
	for _, term := range commonTerms {
		m.commonTerms[term] = struct{}{}
	}
	return m
}

// LoadFromYAML reads a phrase model file.
//
// Expected format:
//
//	threshold: 15
//	delimiter: "_"
//	common_terms: [of, and, the]
//	phrasegrams:
//	  - words: [solar, cell]
//	    score: 42.1
//	  - words: [figure, of, merit]
//	    score: 88.0
func LoadFromYAML(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open phrase model: %w", err)
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("phrase model %s: %w", path, err)
	}
	return m, nil
}

// Load decodes a phrase model from r.
func Load(r io.Reader) (*Model, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty phrase model: %w", internalerr.ErrInvalidConfig)
		}
		return nil, fmt.Errorf("decode phrase model: %w", err)
	}

	m := New(file.Threshold, file.Delimiter, file.CommonTerms)
	for i, pg := range file.Phrasegrams {
		if len(pg.Words) < 2 {
			return nil, fmt.Errorf("phrasegram %d has %d words: %w", i, len(pg.Words), internalerr.ErrInvalidConfig)
		}
		m.Add(pg.Words, pg.Score)
	}
	return m, nil
}

// Add registers a phrasegram. It must not be called once the model is shared.
func (m *Model) Add(words []string, score float64) {
	m.grams[strings.Join(words, keySep)] = score
}

// Score returns the score of a word tuple and whether it is known.
func (m *Model) Score(words []string) (float64, bool) {
	s, ok := m.grams[strings.Join(words, keySep)]
	return s, ok
}

// Threshold returns the minimum score for a merge.
func (m *Model) Threshold() float64 { return m.threshold }

// Delimiter returns the string joining merged words.
func (m *Model) Delimiter() string { return m.delimiter }

// Merge performs one pass over tokens, joining every scored phrase.
func (m *Model) Merge(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	var lastUncommon string
	haveLast := false
	var between []string

	for _, word := range tokens {
		_, common := m.commonTerms[word]
		switch {
		case !common && haveLast:
			chain := make([]string, 0, len(between)+2)
			chain = append(chain, lastUncommon)
			chain = append(chain, between...)
			chain = append(chain, word)
			if score, ok := m.Score(chain); ok && score > m.threshold {
				out = append(out, strings.Join(chain, m.delimiter))
				haveLast = false
			} else {
				out = append(out, lastUncommon)
				out = append(out, between...)
				lastUncommon = word
			}
			between = between[:0]
		case !common:
			lastUncommon = word
			haveLast = true
		case haveLast:
			between = append(between, word)
		default:
			out = append(out, word)
		}
	}

	if haveLast {
		out = append(out, lastUncommon)
		out = append(out, between...)
	}
	return out
}

// Stats reports the size of the model.
func (m *Model) Stats() Stats {
	return Stats{
		Phrasegrams: len(m.grams),
		CommonTerms: len(m.commonTerms),
		Threshold:   m.threshold,
	}
}

// Phrases returns the known phrases joined with the delimiter, sorted.
func (m *Model) Phrases() []string {
	out := make([]string, 0, len(m.grams))
	for key := range m.grams {
		out = append(out, strings.ReplaceAll(key, keySep, m.delimiter))
	}
	sort.Strings(out)
	return out
}
