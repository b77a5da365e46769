package phrases

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func learnedModel(t *testing.T) *Model {
	t.Helper()
	l := NewLearner(2, []string{"of"})
	for _, s := range []string{
		"solar cell efficiency",
		"solar cell stability",
		"solar cell degradation",
		"figure of merit high",
		"figure of merit low",
		"high efficiency",
	} {
		l.AddSentence(strings.Fields(s))
	}
	return l.Build(0.5, "")
}

func TestLearnerBuild(t *testing.T) {
	m := learnedModel(t)

	got := strings.Join(m.Phrases(), ",")
	if got != "figure_of_merit,solar_cell" {
		t.Errorf("Expected figure_of_merit and solar_cell, got %q", got)
	}

	score, ok := m.Score([]string{"solar", "cell"})
	if !ok || math.Abs(score-1) > 1e-9 {
		t.Errorf("Expected NPMI 1 for solar cell, got %v (known=%v)", score, ok)
	}

	merged := m.Merge(strings.Fields("the solar cell has a high figure of merit"))
	want := "the solar_cell has a high figure_of_merit"
	if strings.Join(merged, " ") != want {
		t.Errorf("Merge = %q, want %q", strings.Join(merged, " "), want)
	}
}

func TestLearnerMinCount(t *testing.T) {
	l := NewLearner(3, nil)
	l.AddSentence([]string{"band", "gap"})
	l.AddSentence([]string{"band", "gap"})

	if n := l.Build(-1, "").Stats().Phrasegrams; n != 0 {
		t.Errorf("Expected no phrasegrams below min count, got %d", n)
	}
}

func TestNPMI(t *testing.T) {
	tests := []struct {
		name              string
		nAB, nA, nB, total int64
		want              float64
	}{
		{"always together", 3, 3, 3, 19, 1},
		{"never together", 0, 3, 3, 19, -1},
		{"empty corpus", 1, 1, 1, 0, -1},
	}
	for _, tt := range tests {
		if got := NPMI(tt.nAB, tt.nA, tt.nB, tt.total); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: NPMI = %v, want %v", tt.name, got, tt.want)
		}
	}

	independent := NPMI(1, 10, 10, 100)
	if math.Abs(independent) > 1e-9 {
		t.Errorf("Expected NPMI 0 for independent words, got %v", independent)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	m := learnedModel(t)

	var buf bytes.Buffer
	if err := m.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if strings.Join(loaded.Phrases(), ",") != strings.Join(m.Phrases(), ",") {
		t.Errorf("Phrases changed: %q vs %q", loaded.Phrases(), m.Phrases())
	}
	if loaded.Threshold() != 0.5 || loaded.Stats().CommonTerms != 1 {
		t.Errorf("Unexpected loaded stats %+v", loaded.Stats())
	}
}
