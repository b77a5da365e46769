package process

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/chem"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
)

// DefaultMaxDenominator bounds the precision of stoichiometric ratios.
const DefaultMaxDenominator = 1000

// CompositionParser turns a formula string into element amounts.
type CompositionParser interface {
	Parse(formula string) (chem.Composition, error)
}

// SymbolValidator checks element symbols.
type SymbolValidator interface {
	IsSymbol(s string) bool
}

// PeriodicTable is the built-in CompositionParser and SymbolValidator.
type PeriodicTable struct{}

// Parse implements CompositionParser.
func (PeriodicTable) Parse(formula string) (chem.Composition, error) {
	return chem.ParseFormula(formula)
}

// IsSymbol implements SymbolValidator.
func (PeriodicTable) IsSymbol(s string) bool {
	return chem.IsSymbol(s)
}

// diatomic single-element formulas that still count as materials.
var diatomic = map[string]bool{"O2": true, "N2": true, "Cl2": true, "F2": true, "H2": true}

// IsSimpleFormula reports whether tok is a multi-element chemical formula
// such as "Fe2O3". Valence annotations ("IV", "(II)") and all-caps
// abbreviations ("BN") are rejected.
func IsSimpleFormula(tok string) bool {
	return isSimpleFormula(tok, PeriodicTable{}, PeriodicTable{})
}

func isSimpleFormula(tok string, parser CompositionParser, symbols SymbolValidator) bool {
	if valencePattern.MatchString(tok) {
		return false
	}
	if !strings.ContainsFunc(tok, func(r rune) bool { return unicode.IsDigit(r) || unicode.IsLower(r) }) {
		return false
	}
	if diatomic[tok] {
		return true
	}
	comp, err := parser.Parse(tok)
	if err != nil || comp.Len() < 2 {
		return false
	}
	for sym := range comp {
		if !symbols.IsSymbol(sym) {
			return false
		}
	}
	return true
}

// NormalizeFormula rewrites a formula with integer ratios and elements in
// alphabetical order, e.g. "Ni0.5Fe0.5" -> "FeNi".
func NormalizeFormula(tok string, maxDenominator int) (string, error) {
	return normalizeFormula(tok, maxDenominator, PeriodicTable{})
}

// NormalizedFormula is NormalizeFormula with the default precision that
// returns tok unchanged when it cannot be parsed.
func NormalizedFormula(tok string) string {
	out, err := NormalizeFormula(tok, DefaultMaxDenominator)
	if err != nil {
		return tok
	}
	return out
}

func normalizeFormula(tok string, maxDenominator int, parser CompositionParser) (string, error) {
	if maxDenominator <= 0 {
		return "", fmt.Errorf("max denominator %d: %w", maxDenominator, internalerr.ErrInvalidInput)
	}
	comp, err := parser.Parse(tok)
	if err != nil {
		return "", err
	}
	if comp.Len() == 0 {
		return "", fmt.Errorf("formula %q has no elements: %w", tok, internalerr.ErrInvalidInput)
	}
	return orderedIntegerFormula(comp, maxDenominator), nil
}

func orderedIntegerFormula(comp chem.Composition, maxDenominator int) string {
	elements := comp.Elements()
	amounts := make([]float64, len(elements))
	for i, sym := range elements {
		amounts[i] = comp.Amount(sym)
	}
	g := chem.GCDFloat(amounts, 1/float64(maxDenominator))

	var b strings.Builder
	for i, sym := range elements {
		// float formatting keeps counts beyond the int64 range intact
		n := math.RoundToEven(amounts[i] / g)
		switch {
		case n > 1:
			b.WriteString(sym)
			b.WriteString(strconv.FormatFloat(n, 'f', 0, 64))
		case n != 0:
			b.WriteString(sym)
		}
	}
	return b.String()
}
