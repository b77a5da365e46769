package process

// Tokenizer segments text and re-splits tokens that glue an element to its
// oxidation state or a number to its unit.
type Tokenizer struct {
	segmenter Segmenter
}

// NewTokenizer creates a tokenizer on top of seg. A nil segmenter selects the
// RuleSegmenter.
func NewTokenizer(seg Segmenter) *Tokenizer {
	if seg == nil {
		seg = NewRuleSegmenter()
	}
	return &Tokenizer{segmenter: seg}
}

// Sentences tokenizes text and keeps the sentence structure.
func (t *Tokenizer) Sentences(text string, splitOxidation bool) [][]string {
	raw := t.segmenter.Segment(text)
	out := make([][]string, 0, len(raw))
	for _, sentence := range raw {
		toks := make([]string, 0, len(sentence))
		for _, tok := range sentence {
			toks = append(toks, SplitToken(tok, splitOxidation)...)
		}
		out = append(out, toks)
	}
	return out
}

// Tokenize tokenizes text into a single flat token sequence.
func (t *Tokenizer) Tokenize(text string, splitOxidation bool) []string {
	var out []string
	for _, sentence := range t.Sentences(text, splitOxidation) {
		out = append(out, sentence...)
	}
	return out
}

// SplitToken applies the re-splitting rules to one base token:
// "Fe(II)" -> "Fe", "(II)" when splitOxidation is set, then "5mg" -> "5", "mg"
// for known units. Anything else is returned unchanged.
func SplitToken(tok string, splitOxidation bool) []string {
	if splitOxidation {
		if m := oxidationPattern.FindStringSubmatch(tok); m != nil {
			return []string{m[1], m[2]}
		}
	}
	if m := numberAndUnitPattern.FindStringSubmatch(tok); m != nil && IsSplitUnit(m[2]) {
		return []string{m[1], m[2]}
	}
	return []string{tok}
}
