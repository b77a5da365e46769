package process

import (
	"strings"
	"testing"
)

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSplitTokenOxidation(t *testing.T) {
	tests := []struct {
		tok   string
		split bool
		want  []string
	}{
		{"Fe(II)", true, []string{"Fe", "(II)"}},
		{"Fe(II)", false, []string{"Fe(II)"}},
		{"iron(III)", true, []string{"iron", "(III)"}},
		{"Iron(iv)", true, []string{"Iron", "(iv)"}},
		{"Mn(VII)", true, []string{"Mn", "(VII)"}},
		{"Fe(VI)", true, []string{"Fe", "(VI)"}},
		{"Cr(V)", true, []string{"Cr", "(V)"}},
		{"Os(VIII)", true, []string{"Os", "(VIII)"}},
		{"Fe(IX)", true, []string{"Fe(IX)"}},
		{"Fe()", true, []string{"Fe()"}},
		{"Xy(II)", true, []string{"Xy(II)"}},
		{"Si(111)", true, []string{"Si(111)"}},
	}
	for _, tt := range tests {
		if got := SplitToken(tt.tok, tt.split); !equalTokens(got, tt.want) {
			t.Errorf("SplitToken(%q, %v) = %q, want %q", tt.tok, tt.split, got, tt.want)
		}
	}
}

func TestSplitTokenNumberAndUnit(t *testing.T) {
	tests := []struct {
		tok  string
		want []string
	}{
		{"5mg", []string{"5", "mg"}},
		{"-0.5eV", []string{"-0.5", "eV"}},
		{"300K", []string{"300", "K"}},
		{"2.5(3)GPa", []string{"2.5(3)", "GPa"}},
		{"10MΩ", []string{"10", "MΩ"}},
		{"100nm", []string{"100nm"}},
		{"5x", []string{"5x"}},
		{"mg", []string{"mg"}},
	}
	for _, tt := range tests {
		if got := SplitToken(tt.tok, true); !equalTokens(got, tt.want) {
			t.Errorf("SplitToken(%q) = %q, want %q", tt.tok, got, tt.want)
		}
	}
}

func TestSplitTokenEveryUnit(t *testing.T) {
	for _, unit := range SplitUnits() {
		tok := "12" + unit
		got := SplitToken(tok, false)
		if len(got) != 2 {
			t.Errorf("SplitToken(%q) produced %d tokens, want 2", tok, len(got))
			continue
		}
		if strings.Join(got, "") != tok {
			t.Errorf("SplitToken(%q) = %q does not reconstruct the token", tok, got)
		}
	}
}

func TestRuleSegmenter(t *testing.T) {
	seg := NewRuleSegmenter()

	tests := []struct {
		text string
		want [][]string
	}{
		{
			"Thin films (Fe2O3), e.g. on Si(111) wafers.",
			[][]string{{"Thin", "films", "(", "Fe2O3", ")", ",", "e.g.", "on", "Si(111)", "wafers", "."}},
		},
		{
			"It works! Does it? Yes.",
			[][]string{{"It", "works", "!"}, {"Does", "it", "?"}, {"Yes", "."}},
		},
		{
			"Add 5 wt. % of \"Cu\" (see Fig. 2).",
			[][]string{{"Add", "5", "wt.", "%", "of", "\"", "Cu", "\"", "(", "see", "Fig.", "2", ")", "."}},
		},
		{
			"along the ( 111 ) plane",
			[][]string{{"along", "the", "(", "111", ")", "plane"}},
		},
		{"", nil},
	}
	for _, tt := range tests {
		got := seg.Segment(tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("Segment(%q) returned %d sentences, want %d: %q", tt.text, len(got), len(tt.want), got)
			continue
		}
		for i := range got {
			if !equalTokens(got[i], tt.want[i]) {
				t.Errorf("Segment(%q) sentence %d = %q, want %q", tt.text, i, got[i], tt.want[i])
			}
		}
	}
}

func TestTokenizerSentences(t *testing.T) {
	tok := NewTokenizer(nil)
	text := "We measured 100 materials, including Ni(CO)4 and obtained very high Thermoelectric Figures of merit ZT. " +
		"These results demonstrate the utility of Machine Learning methods for materials discovery."

	sentences := tok.Sentences(text, true)
	if len(sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d", len(sentences))
	}

	first := []string{"We", "measured", "100", "materials", ",", "including", "Ni(CO)4", "and", "obtained",
		"very", "high", "Thermoelectric", "Figures", "of", "merit", "ZT", "."}
	if !equalTokens(sentences[0], first) {
		t.Errorf("First sentence = %q, want %q", sentences[0], first)
	}
	if last := sentences[1][len(sentences[1])-1]; last != "." {
		t.Errorf("Second sentence should end with '.', got %q", last)
	}

	flat := tok.Tokenize(text, true)
	if len(flat) != len(sentences[0])+len(sentences[1]) {
		t.Errorf("Expected flat tokens to cover both sentences, got %d", len(flat))
	}
}

func TestTokenizerOxidationScenario(t *testing.T) {
	tok := NewTokenizer(nil)
	text := "iron(II) was oxidized to obtain 5mg Ferrous Oxide"

	got := tok.Tokenize(text, true)
	want := []string{"iron", "(II)", "was", "oxidized", "to", "obtain", "5", "mg", "Ferrous", "Oxide"}
	if !equalTokens(got, want) {
		t.Errorf("Tokenize(split) = %q, want %q", got, want)
	}

	got = tok.Tokenize(text, false)
	want = []string{"iron(II)", "was", "oxidized", "to", "obtain", "5", "mg", "Ferrous", "Oxide"}
	if !equalTokens(got, want) {
		t.Errorf("Tokenize(no split) = %q, want %q", got, want)
	}
}

type fixedSegmenter [][]string

func (f fixedSegmenter) Segment(string) [][]string { return f }

func TestTokenizerCustomSegmenter(t *testing.T) {
	tok := NewTokenizer(fixedSegmenter{{"Fe(III)", "10mA"}})
	got := tok.Tokenize("ignored", true)
	want := []string{"Fe", "(III)", "10", "mA"}
	if !equalTokens(got, want) {
		t.Errorf("Tokenize = %q, want %q", got, want)
	}
}
