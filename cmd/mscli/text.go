package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/config"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/process"
)

func newTokenizeCmd(a *app) *cobra.Command {
	var keepOxidation bool

	cmd := &cobra.Command{
		Use:   "tokenize [text]",
		Short: "Split text into sentences of tokens",
		Long: `Prints one sentence per line with tokens separated by spaces. Text is
read from the arguments or from stdin.`,
		Example: `  mscli tokenize "LiFePO4 was annealed at 700°C for 5h."`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			tok := process.NewTokenizer(nil)
			for _, sent := range tok.Sentences(text, !keepOxidation) {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(sent, " "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepOxidation, "keep-oxidation", false, "do not split oxidation states such as Fe(III)")
	return cmd
}

func newProcessCmd(a *app) *cobra.Command {
	var (
		excludePunct  bool
		keepNumbers   bool
		keepMaterials bool
		keepAccents   bool
		keepOxidation bool
		foldPhrases   bool
		passes        int
		showMentions  bool
	)

	cmd := &cobra.Command{
		Use:   "process [text]",
		Short: "Tokenize and normalize materials science text",
		Long: `Processes text for embedding training: numbers become <nUm>, formulas and
element names are normalized, accents removed and, with a phrase model
configured, common phrases folded.`,
		Example: `  mscli process "iron(II) was oxidized to obtain 5mg Ferrous Oxide"
  mscli process --exclude-punct --phrases < abstract.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}

			loader := config.LoaderFor(a.settings, a.logger)
			loader.PhrasePasses = passes
			if passes <= 0 {
				loader.PhrasePasses = process.NoPhrasePasses
			}
			if !foldPhrases {
				loader.PhraseModelPath = ""
			}
			comp, err := loader.Load()
			if err != nil {
				return err
			}

			opts := process.Options{
				ExcludePunctuation: excludePunct,
				ConvertNumbers:     !keepNumbers,
				NormalizeMaterials: !keepMaterials,
				RemoveAccents:      !keepAccents,
				FoldPhrases:        foldPhrases,
				SplitOxidation:     !keepOxidation,
			}
			tokens, mentions, err := comp.Processor.ProcessText(text, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, strings.Join(tokens, " "))
			if showMentions {
				for _, m := range mentions {
					fmt.Fprintf(out, "%s\t%s\n", m.Surface, m.Canonical)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&excludePunct, "exclude-punct", false, "drop punctuation tokens")
	f.BoolVar(&keepNumbers, "keep-numbers", false, "do not replace numbers with "+process.NumberPlaceholder)
	f.BoolVar(&keepMaterials, "keep-materials", false, "do not normalize formulas and element names")
	f.BoolVar(&keepAccents, "keep-accents", false, "do not transliterate accented characters")
	f.BoolVar(&keepOxidation, "keep-oxidation", false, "do not split oxidation states such as Fe(III)")
	f.BoolVar(&foldPhrases, "phrases", false, "fold phrases with the configured phrase model")
	f.IntVar(&passes, "phrase-passes", process.DefaultPhrasePasses, "number of phrase folding passes")
	f.BoolVar(&showMentions, "mentions", false, "print material mentions as surface<TAB>canonical")
	return cmd
}
