package chem

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrInvalidFormula is returned for text the formula grammar cannot consume.
	ErrInvalidFormula = errors.New("invalid formula")
	// ErrUnknownElement is returned when a parsed symbol is not in the periodic table.
	ErrUnknownElement = errors.New("unknown element")
)

// amountTolerance drops amounts that are numerically zero.
const amountTolerance = 1e-8

var (
	groupPattern   = regexp.MustCompile(`\(([^()]+)\)\s*([.e\d]*)`)
	elementPattern = regexp.MustCompile(`([A-Z][a-z]*)\s*([-*.e\d]*)`)
)

// ParseError describes why a formula could not be parsed.
type ParseError struct {
	Formula string
	Detail  string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse formula %q: %s", e.Formula, e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Composition maps element symbols to (possibly fractional) amounts.
type Composition map[string]float64

// Elements returns the symbols of the composition in lexicographic order.
func (c Composition) Elements() []string {
	out := make([]string, 0, len(c))
	for sym := range c {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Amount returns the amount of sym, or zero when absent.
func (c Composition) Amount(sym string) float64 {
	return c[sym]
}

// Len returns the number of distinct elements.
func (c Composition) Len() int {
	return len(c)
}

// ParseFormula parses a chemical formula such as "Fe2O3", "Ni0.5Fe0.5" or
// "Ca3(PO4)2" into a Composition.
//
// Parenthesised groups are expanded innermost first and square brackets are
// treated as parentheses. Repeated elements accumulate.
func ParseFormula(formula string) (Composition, error) {
	expanded := strings.NewReplacer("@", "", "[", "(", "]", ")").Replace(formula)

	for {
		loc := groupPattern.FindStringSubmatchIndex(expanded)
		if loc == nil {
			break
		}
		inner := expanded[loc[2]:loc[3]]
		factor := 1.0
		if f := expanded[loc[4]:loc[5]]; f != "" {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, &ParseError{Formula: formula, Detail: fmt.Sprintf("bad group factor %q", f), Err: ErrInvalidFormula}
			}
			factor = v
		}
		amounts, order, err := symbolAmounts(formula, inner, factor)
		if err != nil {
			return nil, err
		}
		var b strings.Builder
		for _, sym := range order {
			b.WriteString(sym)
			b.WriteString(strconv.FormatFloat(amounts[sym], 'f', -1, 64))
		}
		expanded = expanded[:loc[0]] + b.String() + expanded[loc[1]:]
	}

	amounts, _, err := symbolAmounts(formula, expanded, 1)
	if err != nil {
		return nil, err
	}

	comp := make(Composition, len(amounts))
	for sym, amt := range amounts {
		if !IsSymbol(sym) {
			return nil, &ParseError{Formula: formula, Detail: fmt.Sprintf("%q is not an element", sym), Err: ErrUnknownElement}
		}
		if math.Abs(amt) < amountTolerance {
			continue
		}
		if amt < 0 {
			return nil, &ParseError{Formula: formula, Detail: "negative amount", Err: ErrInvalidFormula}
		}
		comp[sym] = amt
	}
	return comp, nil
}

// symbolAmounts reads element/amount pairs from a group without parentheses.
// order preserves first appearance so expanded groups stay readable.
func symbolAmounts(formula, form string, factor float64) (map[string]float64, []string, error) {
	amounts := make(map[string]float64)
	var order []string
	var leftover strings.Builder
	last := 0

	for _, m := range elementPattern.FindAllStringSubmatchIndex(form, -1) {
		leftover.WriteString(form[last:m[0]])
		last = m[1]

		sym := form[m[2]:m[3]]
		amt := 1.0
		if raw := strings.TrimSpace(form[m[4]:m[5]]); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, nil, &ParseError{Formula: formula, Detail: fmt.Sprintf("bad amount %q", raw), Err: ErrInvalidFormula}
			}
			amt = v
		}
		if _, seen := amounts[sym]; !seen {
			order = append(order, sym)
		}
		amounts[sym] += amt * factor
	}
	leftover.WriteString(form[last:])

	if rest := strings.TrimSpace(leftover.String()); rest != "" {
		return nil, nil, &ParseError{Formula: formula, Detail: fmt.Sprintf("unparsed text %q", rest), Err: ErrInvalidFormula}
	}
	return amounts, order, nil
}
