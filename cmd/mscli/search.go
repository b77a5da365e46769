package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/rest"
)

func (a *app) rester() (*rest.Rester, error) {
	return rest.New(a.settings.APIKey, a.settings.Endpoint, rest.WithLogger(a.logger))
}

// searchFlags are shared by search and close-words.
type searchFlags struct {
	topK         int
	guessMissing bool
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.topK, "top-k", "k", rest.DefaultTopK, "number of results")
	cmd.Flags().BoolVar(&f.guessMissing, "guess-missing", false, "guess embeddings for words missing from the vocabulary")
}

func (f *searchFlags) options(expr string) ([]string, rest.SearchOptions, error) {
	positive, negative := rest.ParseWordExpression(expr)
	if len(positive) == 0 || positive[0] == "" {
		return nil, rest.SearchOptions{}, fmt.Errorf("expression needs at least one positive term: %w", internalerr.ErrInvalidInput)
	}
	return positive, rest.SearchOptions{
		Negative:      negative,
		IgnoreMissing: !f.guessMissing,
		TopK:          f.topK,
	}, nil
}

func newSearchCmd(a *app) *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search <expression>",
		Short: "Rank materials by similarity to a word expression",
		Example: `  mscli search "thermoelectric - PbTe"
  mscli search -k 20 "photocatalyst + visible light"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			positive, opts, err := flags.options(strings.Join(args, " "))
			if err != nil {
				return err
			}
			r, err := a.rester()
			if err != nil {
				return err
			}
			res, err := r.MaterialsSearch(cmd.Context(), positive, opts)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MATERIAL\tSCORE\tMENTIONS")
			for i, m := range res.Materials {
				fmt.Fprintf(tw, "%s\t%.4f\t%d\n", m, at(res.Scores, i), at(res.Counts, i))
			}
			return tw.Flush()
		},
	}
	flags.register(cmd)
	return cmd
}

func newCloseWordsCmd(a *app) *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:     "close-words <expression>",
		Short:   "List the words closest to a word expression",
		Example: `  mscli close-words "LiFePO4 + cathode"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			positive, opts, err := flags.options(strings.Join(args, " "))
			if err != nil {
				return err
			}
			r, err := a.rester()
			if err != nil {
				return err
			}
			res, err := r.CloseWords(cmd.Context(), positive, opts)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WORD\tSCORE")
			for i, w := range res.CloseWords {
				fmt.Fprintf(tw, "%s\t%.4f\n", w, at(res.Scores, i))
			}
			return tw.Flush()
		},
	}
	flags.register(cmd)
	return cmd
}

func at[T any](s []T, i int) T {
	var zero T
	if i < len(s) {
		return s[i]
	}
	return zero
}
