package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/phrases"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/process"
)

// Loader loads the processing artifacts and constructs components
type Loader struct {
	PhraseModelPath string
	PhrasePasses    int
	Logger          *zap.Logger
}

// Components holds the loaded processing components
type Components struct {
	Processor *process.Processor
	Phrases   *phrases.Model
}

// Load reads the configured artifacts and returns initialized components.
// Without a phrase model path the processor runs without phrase folding.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}
	cfg := process.Config{PhrasePasses: l.PhrasePasses, Logger: l.Logger}

	if l.PhraseModelPath != "" {
		model, err := phrases.LoadFromYAML(l.PhraseModelPath)
		if err != nil {
			return nil, fmt.Errorf("load phrase model: %w", err)
		}
		comp.Phrases = model
		cfg.Phrases = model
		if l.Logger != nil {
			stats := model.Stats()
			l.Logger.Debug("phrase model loaded",
				zap.String("path", l.PhraseModelPath),
				zap.Int("phrasegrams", stats.Phrasegrams),
				zap.Float64("threshold", stats.Threshold))
		}
	}

	comp.Processor = process.NewProcessor(cfg)
	return comp, nil
}

// LoaderFor builds a Loader from settings.
func LoaderFor(s *Settings, logger *zap.Logger) *Loader {
	return &Loader{PhraseModelPath: s.PhraseModel, Logger: logger}
}
