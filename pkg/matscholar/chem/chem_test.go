package chem

import (
	"errors"
	"math"
	"testing"
)

func TestElementTable(t *testing.T) {
	if got := len(Symbols()); got != 118 {
		t.Fatalf("Expected 118 symbols, got %d", got)
	}
	if got := len(Names()); got != len(Symbols()) {
		t.Fatalf("Expected names aligned with symbols, got %d names", got)
	}

	for _, sym := range []string{"H", "Fe", "Og", "W"} {
		if !IsSymbol(sym) {
			t.Errorf("IsSymbol(%q) = false, want true", sym)
		}
	}
	for _, sym := range []string{"fe", "FE", "Uue", "D", ""} {
		if IsSymbol(sym) {
			t.Errorf("IsSymbol(%q) = true, want false", sym)
		}
	}
}

func TestSymbolForName(t *testing.T) {
	tests := []struct {
		name string
		sym  string
		ok   bool
	}{
		{"iron", "Fe", true},
		{"Iron", "Fe", true},
		{"IRON", "", false},
		{"aluminium", "Al", true},
		{"Oganesson", "Og", true},
		{"unobtainium", "", false},
	}
	for _, tt := range tests {
		sym, ok := SymbolForName(tt.name)
		if sym != tt.sym || ok != tt.ok {
			t.Errorf("SymbolForName(%q) = (%q, %v), want (%q, %v)", tt.name, sym, ok, tt.sym, tt.ok)
		}
	}

	if name, ok := NameForSymbol("Cu"); !ok || name != "copper" {
		t.Errorf("NameForSymbol(Cu) = (%q, %v), want (copper, true)", name, ok)
	}
}

func TestParseFormula(t *testing.T) {
	tests := []struct {
		formula string
		want    map[string]float64
	}{
		{"Fe2O3", map[string]float64{"Fe": 2, "O": 3}},
		{"Ni0.5Fe0.5", map[string]float64{"Ni": 0.5, "Fe": 0.5}},
		{"Ca3(PO4)2", map[string]float64{"Ca": 3, "P": 2, "O": 8}},
		{"Ni(CO)4", map[string]float64{"Ni": 1, "C": 4, "O": 4}},
		{"K4[Fe(CN)6]", map[string]float64{"K": 4, "Fe": 1, "C": 6, "N": 6}},
		{"CH3CH2OH", map[string]float64{"C": 2, "H": 6, "O": 1}},
		{"Ni0O2", map[string]float64{"O": 2}},
		{"Fe2 O3", map[string]float64{"Fe": 2, "O": 3}},
	}

	for _, tt := range tests {
		comp, err := ParseFormula(tt.formula)
		if err != nil {
			t.Errorf("ParseFormula(%q) returned error: %v", tt.formula, err)
			continue
		}
		if comp.Len() != len(tt.want) {
			t.Errorf("ParseFormula(%q) has %d elements, want %d (%v)", tt.formula, comp.Len(), len(tt.want), comp)
			continue
		}
		for sym, amt := range tt.want {
			if math.Abs(comp.Amount(sym)-amt) > 1e-9 {
				t.Errorf("ParseFormula(%q)[%s] = %v, want %v", tt.formula, sym, comp.Amount(sym), amt)
			}
		}
	}
}

func TestParseFormulaErrors(t *testing.T) {
	tests := []struct {
		formula string
		want    error
	}{
		{"Xx2O", ErrUnknownElement},
		{"Fe2+O", ErrInvalidFormula},
		{"fe2o3", ErrInvalidFormula},
		{"Fe-2O3", ErrInvalidFormula},
		{"Fe2e", ErrInvalidFormula},
		{"(Xy)2", ErrUnknownElement},
		{"100", ErrInvalidFormula},
	}

	for _, tt := range tests {
		_, err := ParseFormula(tt.formula)
		if err == nil {
			t.Errorf("ParseFormula(%q) expected error", tt.formula)
			continue
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("ParseFormula(%q) error %T is not *ParseError", tt.formula, err)
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("ParseFormula(%q) error = %v, want %v", tt.formula, err, tt.want)
		}
	}
}

func TestCompositionElementsSorted(t *testing.T) {
	comp, err := ParseFormula("ZnCuSnS4")
	if err != nil {
		t.Fatalf("ParseFormula failed: %v", err)
	}
	got := comp.Elements()
	want := []string{"Cu", "S", "Sn", "Zn"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d elements, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Elements()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGCDFloat(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{[]float64{0.5, 0.5}, 0.5},
		{[]float64{2, 3}, 1},
		{[]float64{4, 6, 8}, 2},
		{[]float64{1.5, 1}, 0.5},
		{[]float64{7}, 7},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := GCDFloat(tt.values, 0.001); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("GCDFloat(%v) = %v, want %v", tt.values, got, tt.want)
		}
	}
}
