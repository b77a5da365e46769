package phrases

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCommonTerms are the connector words allowed inside a phrase.
var DefaultCommonTerms = []string{
	"a", "an", "the", "for", "of", "with", "without", "at", "from", "to", "in", "on", "by", "and", "or",
}

// Learner counts words and phrase candidates over sentences and builds a
// Model scored by normalized pointwise mutual information.
type Learner struct {
	minCount    int64
	commonTerms []string
	common      map[string]struct{}

	words  map[string]int64
	chains map[string]int64
	total  int64
}

// NewLearner creates a learner. Candidates seen fewer than minCount times
// are never scored.
func NewLearner(minCount int, commonTerms []string) *Learner {
	if minCount < 1 {
		minCount = 1
	}
	l := &Learner{
		minCount:    int64(minCount),
		commonTerms: append([]string(nil), commonTerms...),
		common:      make(map[string]struct{}, len(commonTerms)),
		words:       make(map[string]int64),
		chains:      make(map[string]int64),
	}
	for _, t := range commonTerms {
		l.common[t] = struct{}{}
	}
	return l
}

// AddSentence updates the counts with one token sequence. Candidates are
// built the same way Merge reads them: two uncommon words with only common
// terms between them.
func (l *Learner) AddSentence(tokens []string) {
	var last string
	haveLast := false
	var between []string

	for _, word := range tokens {
		l.total++
		l.words[word]++

		if _, common := l.common[word]; common {
			if haveLast {
				between = append(between, word)
			}
			continue
		}
		if haveLast {
			chain := make([]string, 0, len(between)+2)
			chain = append(chain, last)
			chain = append(chain, between...)
			chain = append(chain, word)
			l.chains[strings.Join(chain, keySep)]++
		}
		last = word
		haveLast = true
		between = between[:0]
	}
}

// NPMI is the normalized pointwise mutual information of a phrase seen nAB
// times whose outer words were seen nA and nB times among total words.
//
// NPMI = ln(P(ab) / (P(a)P(b))) / -ln(P(ab)), in [-1, 1].
func NPMI(nAB, nA, nB, total int64) float64 {
	if total == 0 || nAB == 0 || nA == 0 || nB == 0 {
		return -1
	}
	n := float64(total)
	pab := float64(nAB) / n
	pa := float64(nA) / n
	pb := float64(nB) / n

	logPAB := math.Log(pab)
	if logPAB == 0 {
		return 1
	}
	return math.Log(pab/(pa*pb)) / -logPAB
}

// Build returns a model holding every candidate whose score exceeds
// threshold.
func (l *Learner) Build(threshold float64, delimiter string) *Model {
	m := New(threshold, delimiter, l.commonTerms)
	for key, n := range l.chains {
		if n < l.minCount {
			continue
		}
		words := strings.Split(key, keySep)
		score := NPMI(n, l.words[words[0]], l.words[words[len(words)-1]], l.total)
		if score > threshold {
			m.Add(words, score)
		}
	}
	return m
}

// File returns the on-disk form of m with phrasegrams sorted by phrase.
func (m *Model) File() File {
	f := File{
		Threshold:   m.threshold,
		Delimiter:   m.delimiter,
		Phrasegrams: make([]Phrasegram, 0, len(m.grams)),
	}
	for term := range m.commonTerms {
		f.CommonTerms = append(f.CommonTerms, term)
	}
	sort.Strings(f.CommonTerms)

	keys := make([]string, 0, len(m.grams))
	for key := range m.grams {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		f.Phrasegrams = append(f.Phrasegrams, Phrasegram{Words: strings.Split(key, keySep), Score: m.grams[key]})
	}
	return f
}

// WriteYAML encodes m in the format read by Load.
func (m *Model) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m.File()); err != nil {
		return fmt.Errorf("encode phrase model: %w", err)
	}
	return enc.Close()
}
