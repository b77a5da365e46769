package corpus

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/phrases"
)

// PhraseOptions configure LearnPhrases.
type PhraseOptions struct {
	MinCount    int
	Threshold   float64
	Delimiter   string
	CommonTerms []string
}

// DefaultPhraseOptions follow the usual settings for abstract corpora.
func DefaultPhraseOptions() PhraseOptions {
	return PhraseOptions{
		MinCount:    5,
		Threshold:   0.5,
		Delimiter:   phrases.DefaultDelimiter,
		CommonTerms: phrases.DefaultCommonTerms,
	}
}

// LearnPhrases builds a phrase model from the stored processed abstracts.
func (c *Corpus) LearnPhrases(ctx context.Context, opts PhraseOptions) (*phrases.Model, error) {
	processed, err := c.store.ListProcessed(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list processed abstracts: %w", err)
	}

	l := phrases.NewLearner(opts.MinCount, opts.CommonTerms)
	for _, p := range processed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l.AddSentence(p.Tokens)
	}

	m := l.Build(opts.Threshold, opts.Delimiter)
	c.log.Info("learned phrase model",
		zap.Int("abstracts", len(processed)),
		zap.Int("phrasegrams", m.Stats().Phrasegrams),
		zap.Float64("threshold", opts.Threshold))
	return m, nil
}
