package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/config"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/corpus"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/process"
)

func newCorpusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Process harvested abstracts and export the training corpus",
	}
	cmd.AddCommand(newCorpusProcessCmd(a), newCorpusExportCmd(a), newCorpusPhrasesCmd(a))
	return cmd
}

func (a *app) openCorpus(cmd *cobra.Command, opts process.Options) (*corpus.Corpus, error) {
	loader := config.LoaderFor(a.settings, a.logger)
	if !opts.FoldPhrases {
		loader.PhraseModelPath = ""
	}
	comp, err := loader.Load()
	if err != nil {
		return nil, err
	}
	st, err := a.openStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	c, err := corpus.New(corpus.Options{
		Store:     st,
		Processor: comp.Processor,
		Process:   opts,
		Logger:    a.logger,
	})
	if err != nil {
		st.Close()
		return nil, err
	}
	return c, nil
}

func newCorpusProcessCmd(a *app) *cobra.Command {
	var (
		limit        int
		excludePunct bool
		foldPhrases  bool
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process harvested abstracts that have not been processed yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := process.DefaultOptions()
			opts.ExcludePunctuation = excludePunct
			opts.FoldPhrases = foldPhrases

			c, err := a.openCorpus(cmd, opts)
			if err != nil {
				return err
			}
			defer c.Close()

			n, err := c.ProcessEntries(cmd.Context(), limit)
			fmt.Fprintf(cmd.OutOrStdout(), "Processed %d abstracts\n", n)
			return err
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of abstracts (0 for all)")
	cmd.Flags().BoolVar(&excludePunct, "exclude-punct", false, "drop punctuation tokens")
	cmd.Flags().BoolVar(&foldPhrases, "phrases", false, "fold phrases with the configured phrase model")
	return cmd
}

func newCorpusExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Write processed abstracts to a Parquet file",
		Example: `  mscli corpus export --out corpus.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCorpus(cmd, process.DefaultOptions())
			if err != nil {
				return err
			}
			defer c.Close()

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			n, err := c.Export(cmd.Context(), f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d abstracts to %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "corpus.parquet", "output file")
	return cmd
}

func newCorpusPhrasesCmd(a *app) *cobra.Command {
	var (
		out         string
		commonTerms string
		popts       = corpus.DefaultPhraseOptions()
	)

	cmd := &cobra.Command{
		Use:   "phrases",
		Short: "Learn a phrase model from the processed abstracts",
		Long: `Scores word pairs (optionally joined by common terms) by normalized
pointwise mutual information over the processed abstracts and writes the
phrases above the threshold as a phrase model file. Point the phrase_model
setting at the file to fold phrases during processing.`,
		Example: `  mscli corpus phrases --out phrases.yaml --min-count 10 --threshold 0.6`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if commonTerms != "" {
				popts.CommonTerms = strings.Split(commonTerms, ",")
			}

			c, err := a.openCorpus(cmd, process.DefaultOptions())
			if err != nil {
				return err
			}
			defer c.Close()

			m, err := c.LearnPhrases(cmd.Context(), popts)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			err = m.WriteYAML(f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d phrases to %s\n", m.Stats().Phrasegrams, out)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "phrases.yaml", "output file")
	f.IntVar(&popts.MinCount, "min-count", popts.MinCount, "minimum occurrences of a phrase")
	f.Float64Var(&popts.Threshold, "threshold", popts.Threshold, "minimum NPMI score in [-1, 1]")
	f.StringVar(&commonTerms, "common-terms", "", "comma separated connector words (default English connectors)")
	return cmd
}
