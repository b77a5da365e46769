package process

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Segmenter splits raw text into sentences of raw tokens.
type Segmenter interface {
	Segment(text string) [][]string
}

// RuleSegmenter is a whitespace and punctuation segmenter tuned for
// scientific prose. Brackets that belong to a token, as in "iron(II)" or
// "Ni(CO)4", stay attached.
type RuleSegmenter struct{}

// NewRuleSegmenter returns the default segmenter.
func NewRuleSegmenter() *RuleSegmenter {
	return &RuleSegmenter{}
}

var (
	bracketPairs = map[rune]rune{'(': ')', '[': ']', '{': '}', '〈': '〉', '⟨': '⟩'}
	closerOf     = map[rune]rune{')': '(', ']': '[', '}': '{', '〉': '〈', '⟩': '⟨'}
	openQuotes   = map[rune]bool{'"': true, '“': true, '‘': true, '\'': true, '«': true}
	closeQuotes  = map[rune]bool{'"': true, '”': true, '’': true, '\'': true, '»': true}
	trailing     = map[rune]bool{',': true, ';': true, ':': true, '!': true, '?': true, '.': true}
	terminators  = map[string]bool{".": true, "!": true, "?": true}

	// abbreviations keep their trailing period.
	abbreviations = map[string]bool{
		"wt": true, "at": true, "vol": true, "mol": true, "al": true, "fig": true,
		"figs": true, "eq": true, "eqs": true, "ca": true, "vs": true, "etc": true,
		"ref": true, "refs": true, "approx": true, "resp": true, "cf": true,
	}
	dottedAbbreviation = regexp.MustCompile(`^(\p{L}\.)+\p{L}$`)
)

// Segment splits text on whitespace, peels punctuation off each chunk and
// starts a new sentence after a peeled terminator.
func (s *RuleSegmenter) Segment(text string) [][]string {
	var sentences [][]string
	var current []string

	for _, chunk := range strings.Fields(text) {
		tokens, ends := splitChunk(chunk)
		current = append(current, tokens...)
		if ends {
			sentences = append(sentences, current)
			current = nil
		}
	}
	if len(current) > 0 {
		sentences = append(sentences, current)
	}
	return sentences
}

// splitChunk breaks one whitespace-delimited chunk into tokens and reports
// whether the chunk closes a sentence.
func splitChunk(chunk string) ([]string, bool) {
	runes := []rune(chunk)
	var prefix, suffix []string
	ends := false

	// Step 1: trailing punctuation, closing quotes and unbalanced closers
	for len(runes) > 1 {
		last := runes[len(runes)-1]
		body := runes[:len(runes)-1]
		switch {
		case last == '.' && keepsPeriod(string(body)):
		case trailing[last] || closeQuotes[last]:
			if terminators[string(last)] {
				ends = true
			}
			suffix = append([]string{string(last)}, suffix...)
			runes = body
			continue
		case closerOf[last] != 0 && count(runes, last) > count(runes, closerOf[last]):
			suffix = append([]string{string(last)}, suffix...)
			runes = body
			continue
		}
		break
	}

	// Step 2: opening quotes and unbalanced openers
	for len(runes) > 1 {
		first := runes[0]
		if openQuotes[first] || (bracketPairs[first] != 0 && count(runes, first) > count(runes, bracketPairs[first])) {
			prefix = append(prefix, string(first))
			runes = runes[1:]
			continue
		}
		break
	}

	if terminators[string(runes)] {
		ends = true
	}

	// Step 3: a chunk wrapped entirely by one bracket pair
	tokens := prefix
	if inner, open, ok := unwrap(runes); ok {
		tokens = append(tokens, string(open), inner, string(bracketPairs[open]))
	} else if len(runes) > 0 {
		tokens = append(tokens, string(runes))
	}
	return append(tokens, suffix...), ends
}

// keepsPeriod reports whether body followed by "." is an abbreviation.
func keepsPeriod(body string) bool {
	if body == "" || strings.HasSuffix(body, ".") {
		return false
	}
	if abbreviations[strings.ToLower(body)] {
		return true
	}
	return dottedAbbreviation.MatchString(body)
}

// unwrap returns the content between an opening bracket at the start and its
// matching closer at the very end.
func unwrap(runes []rune) (string, rune, bool) {
	if len(runes) < 3 {
		return "", 0, false
	}
	open := runes[0]
	closer, ok := bracketPairs[open]
	if !ok || runes[len(runes)-1] != closer {
		return "", 0, false
	}
	depth := 0
	for i, r := range runes {
		switch r {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 && i != len(runes)-1 {
				return "", 0, false
			}
		}
	}
	if depth != 0 {
		return "", 0, false
	}
	return string(runes[1 : len(runes)-1]), open, true
}

func count(runes []rune, target rune) int {
	n := 0
	for _, r := range runes {
		if r == target {
			n++
		}
	}
	return n
}

// runeLen is the length of s in code points.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
