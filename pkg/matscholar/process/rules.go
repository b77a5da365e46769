package process

import (
	"strings"
	"unicode"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/chem"
)

// RuleInput is the view of the token sequence a rule decides on.
type RuleInput struct {
	Tokens  []string
	Index   int
	Options Options
}

// Token returns the token under consideration.
func (in RuleInput) Token() string {
	return in.Tokens[in.Index]
}

// Decision is the outcome of a matching rule.
type Decision struct {
	Token   string
	Mention *MaterialMention
	Drop    bool
}

// Rule is one named step of the per-token decision list. Match reports
// false when the rule does not apply and the next rule should be tried.
type Rule struct {
	Name  string
	Match func(p *Processor, in RuleInput) (Decision, bool)
}

// DefaultRules returns the token rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "punctuation", Match: punctuationRule},
		{Name: "numeral", Match: numeralRule},
		{Name: "element-name", Match: elementNameRule},
		{Name: "formula", Match: formulaRule},
		{Name: "capitalization", Match: capitalizationRule},
	}
}

func punctuationRule(_ *Processor, in RuleInput) (Decision, bool) {
	if in.Options.ExcludePunctuation && IsPunctuation(in.Token()) {
		return Decision{Drop: true}, true
	}
	return Decision{}, false
}

// numeralRule masks numbers unless they sit between brackets, as in the
// crystal direction "( 111 )".
func numeralRule(_ *Processor, in RuleInput) (Decision, bool) {
	tok := in.Token()
	if !in.Options.ConvertNumbers || !IsNumber(tok) {
		return Decision{}, false
	}
	if flankedByBrackets(in.Tokens, in.Index) {
		return Decision{Token: tok}, true
	}
	return Decision{Token: NumberPlaceholder}, true
}

func flankedByBrackets(tokens []string, i int) bool {
	if i == 0 || i == len(tokens)-1 {
		return false
	}
	prev, next := tokens[i-1], tokens[i+1]
	return (prev == "(" && next == ")") || (prev == "〈" && next == "〉")
}

func elementNameRule(_ *Processor, in RuleInput) (Decision, bool) {
	tok := in.Token()
	sym, ok := chem.SymbolForName(tok)
	if !ok {
		return Decision{}, false
	}
	return Decision{
		Token:   strings.ToLower(tok),
		Mention: &MaterialMention{Surface: tok, Canonical: sym},
	}, true
}

func formulaRule(p *Processor, in RuleInput) (Decision, bool) {
	tok := in.Token()
	if !p.IsSimpleFormula(tok) {
		return Decision{}, false
	}
	normalized := p.NormalizedFormula(tok)
	out := tok
	if in.Options.NormalizeMaterials {
		out = normalized
	}
	return Decision{
		Token:   out,
		Mention: &MaterialMention{Surface: tok, Canonical: normalized},
	}, true
}

// capitalizationRule lowercases sentence-case words and single characters
// that are neither element symbols nor units.
func capitalizationRule(p *Processor, in RuleInput) (Decision, bool) {
	tok := in.Token()
	if runeLen(tok) != 1 && !isSentenceCase(tok) {
		return Decision{}, false
	}
	if p.symbols.IsSymbol(tok) || IsSplitUnit(tok) || directionPattern.MatchString(tok) {
		return Decision{}, false
	}
	return Decision{Token: strings.ToLower(tok)}, true
}

// isSentenceCase reports an uppercase first letter followed by text whose
// cased letters are all lowercase, with at least one of them.
func isSentenceCase(tok string) bool {
	rs := []rune(tok)
	if len(rs) < 2 || !unicode.IsUpper(rs[0]) {
		return false
	}
	cased := false
	for _, r := range rs[1:] {
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsLower(r) {
			cased = true
		}
	}
	return cased
}
