// Package process tokenizes and normalizes materials science text: it splits
// oxidation states and units from their tokens, detects chemical formulas,
// masks numbers and optionally folds common phrases.
package process

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
)

// MaterialMention pairs a token as written with its canonical form: an
// element symbol for element names, a normalized formula otherwise.
type MaterialMention struct {
	Surface   string `json:"surface" yaml:"surface"`
	Canonical string `json:"canonical" yaml:"canonical"`
}

// Options toggles the processing steps.
type Options struct {
	ExcludePunctuation bool
	ConvertNumbers     bool
	NormalizeMaterials bool
	RemoveAccents      bool
	FoldPhrases        bool
	SplitOxidation     bool
}

// DefaultOptions converts numbers, normalizes materials, removes accents and
// splits oxidation states. Punctuation is kept and phrases are not folded.
func DefaultOptions() Options {
	return Options{
		ConvertNumbers:     true,
		NormalizeMaterials: true,
		RemoveAccents:      true,
		SplitOxidation:     true,
	}
}

// Config wires the collaborators of a Processor. Zero values select the
// built-in implementations; Phrases may stay nil when folding is not used.
type Config struct {
	Segmenter      Segmenter
	Parser         CompositionParser
	Symbols        SymbolValidator
	Transliterator Transliterator
	Phrases        PhraseMerger
	PhrasePasses   int // zero selects DefaultPhrasePasses, NoPhrasePasses disables folding
	Rules          []Rule
	Logger         *zap.Logger
}

// Processor runs the token rules over tokenized text. It holds no mutable
// state and is safe for concurrent use.
type Processor struct {
	tokenizer *Tokenizer
	parser    CompositionParser
	symbols   SymbolValidator
	translit  Transliterator
	phrases   PhraseMerger
	passes    int
	rules     []Rule
	logger    *zap.Logger
}

// NewProcessor creates a processor from cfg.
func NewProcessor(cfg Config) *Processor {
	p := &Processor{
		tokenizer: NewTokenizer(cfg.Segmenter),
		parser:    cfg.Parser,
		symbols:   cfg.Symbols,
		translit:  cfg.Transliterator,
		phrases:   cfg.Phrases,
		passes:    cfg.PhrasePasses,
		rules:     cfg.Rules,
		logger:    cfg.Logger,
	}
	if p.parser == nil {
		p.parser = PeriodicTable{}
	}
	if p.symbols == nil {
		p.symbols = PeriodicTable{}
	}
	if p.translit == nil {
		p.translit = ASCIIFolder{}
	}
	if p.passes == 0 {
		p.passes = DefaultPhrasePasses
	}
	if p.rules == nil {
		p.rules = DefaultRules()
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// Tokenizer returns the tokenizer used by ProcessText.
func (p *Processor) Tokenizer() *Tokenizer {
	return p.tokenizer
}

// Tokenize splits text into a flat token sequence.
func (p *Processor) Tokenize(text string, splitOxidation bool) []string {
	return p.tokenizer.Tokenize(text, splitOxidation)
}

// Sentences splits text into sentences of tokens.
func (p *Processor) Sentences(text string, splitOxidation bool) [][]string {
	return p.tokenizer.Sentences(text, splitOxidation)
}

// IsSimpleFormula classifies tok with the processor's chemistry backend.
func (p *Processor) IsSimpleFormula(tok string) bool {
	return isSimpleFormula(tok, p.parser, p.symbols)
}

// NormalizeFormula normalizes tok with the processor's chemistry backend.
func (p *Processor) NormalizeFormula(tok string, maxDenominator int) (string, error) {
	return normalizeFormula(tok, maxDenominator, p.parser)
}

// NormalizedFormula returns the normalized formula or tok when it cannot be parsed.
func (p *Processor) NormalizedFormula(tok string) string {
	out, err := p.NormalizeFormula(tok, DefaultMaxDenominator)
	if err != nil {
		return tok
	}
	return out
}

// ProcessText tokenizes text without sentence structure and processes it.
func (p *Processor) ProcessText(text string, opts Options) ([]string, []MaterialMention, error) {
	return p.Process(p.tokenizer.Tokenize(text, opts.SplitOxidation), opts)
}

// Process applies the token rules to tokens and returns the processed tokens
// together with every material mention in token order.
func (p *Processor) Process(tokens []string, opts Options) ([]string, []MaterialMention, error) {
	if opts.FoldPhrases && p.phrases == nil {
		return nil, nil, fmt.Errorf("fold phrases: %w", internalerr.ErrNoPhraseModel)
	}

	processed := make([]string, 0, len(tokens))
	var mentions []MaterialMention

	for i := range tokens {
		d := p.decide(RuleInput{Tokens: tokens, Index: i, Options: opts})
		if d.Drop {
			continue
		}
		if d.Mention != nil {
			mentions = append(mentions, *d.Mention)
		}
		tok := d.Token
		if opts.RemoveAccents && runeLen(tok) > 1 {
			tok = p.translit.ToASCII(tok)
		}
		processed = append(processed, tok)
	}

	if opts.FoldPhrases {
		before := len(processed)
		processed = FoldPhrases(p.phrases, processed, p.passes)
		p.logger.Debug("folded phrases",
			zap.Int("tokens_in", before),
			zap.Int("tokens_out", len(processed)),
			zap.Int("passes", p.passes))
	}

	return processed, mentions, nil
}

// decide returns the decision of the first matching rule; a token no rule
// claims is kept as is.
func (p *Processor) decide(in RuleInput) Decision {
	for _, r := range p.rules {
		if d, ok := r.Match(p, in); ok {
			return d
		}
	}
	return Decision{Token: in.Token()}
}
