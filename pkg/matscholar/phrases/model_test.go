package phrases

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/process"
)

const testModel = `threshold: 10
common_terms: [of, the]
phrasegrams:
  - words: [solar, cell]
    score: 20
  - words: [figure, of, merit]
    score: 30
  - words: [thermoelectric, figure_of_merit]
    score: 15
  - words: [low, score]
    score: 5
`

func writeModel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "phraser.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write model: %v", err)
	}
	return path
}

func joined(tokens []string) string {
	return strings.Join(tokens, " ")
}

func TestLoadFromYAML(t *testing.T) {
	m, err := LoadFromYAML(writeModel(t, testModel))
	if err != nil {
		t.Fatalf("LoadFromYAML failed: %v", err)
	}

	stats := m.Stats()
	if stats.Phrasegrams != 4 {
		t.Errorf("Expected 4 phrasegrams, got %d", stats.Phrasegrams)
	}
	if stats.CommonTerms != 2 {
		t.Errorf("Expected 2 common terms, got %d", stats.CommonTerms)
	}
	if m.Delimiter() != DefaultDelimiter {
		t.Errorf("Expected default delimiter, got %q", m.Delimiter())
	}
	if score, ok := m.Score([]string{"solar", "cell"}); !ok || score != 20 {
		t.Errorf("Score(solar cell) = (%v, %v), want (20, true)", score, ok)
	}
}

func TestLoadFromYAMLErrors(t *testing.T) {
	if _, err := LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := LoadFromYAML(writeModel(t, "")); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for empty model, got %v", err)
	}
	bad := "threshold: 1\nphrasegrams:\n  - words: [alone]\n    score: 3\n"
	if _, err := LoadFromYAML(writeModel(t, bad)); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for single-word phrasegram, got %v", err)
	}
	if _, err := LoadFromYAML(writeModel(t, "threshold: [")); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestMerge(t *testing.T) {
	m, err := Load(strings.NewReader(testModel))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"high solar cell efficiency", "high solar_cell efficiency"},
		{"thermoelectric figure of merit", "thermoelectric figure_of_merit"},
		{"of the", "of the"},
		{"low score", "low score"},
		{"solar of", "solar of"},
		{"solar cell solar cell", "solar_cell solar_cell"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := joined(m.Merge(strings.Fields(tt.in))); got != tt.want {
			t.Errorf("Merge(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMergeTwoPasses(t *testing.T) {
	m, err := Load(strings.NewReader(testModel))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got := process.FoldPhrases(m, strings.Fields("the thermoelectric figure of merit"), process.DefaultPhrasePasses)
	if want := "the thermoelectric_figure_of_merit"; joined(got) != want {
		t.Errorf("FoldPhrases = %q, want %q", joined(got), want)
	}
}

func TestProcessorWithModel(t *testing.T) {
	m, err := Load(strings.NewReader(testModel))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	p := process.NewProcessor(process.Config{Phrases: m})
	opts := process.DefaultOptions()
	opts.FoldPhrases = true

	got, _, err := p.ProcessText("Perovskite Solar cell with high efficiency", opts)
	if err != nil {
		t.Fatalf("ProcessText failed: %v", err)
	}
	if want := "perovskite solar_cell with high efficiency"; joined(got) != want {
		t.Errorf("ProcessText = %q, want %q", joined(got), want)
	}
}

func TestPhrases(t *testing.T) {
	m := New(1, "-", nil)
	m.Add([]string{"b", "c"}, 2)
	m.Add([]string{"a", "b"}, 2)

	got := m.Phrases()
	if len(got) != 2 || got[0] != "a-b" || got[1] != "b-c" {
		t.Errorf("Phrases() = %q", got)
	}
}
