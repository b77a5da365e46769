package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/materialsintelligence/matscholar/internal/jsonl"
	"github.com/materialsintelligence/matscholar/internal/scopus"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/collect"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/store"
)

func newContributeCmd(a *app) *cobra.Command {
	var (
		count     int
		blockSize int
	)

	cmd := &cobra.Command{
		Use:   "contribute",
		Short: "Harvest abstracts from Scopus into the Materials Scholar database",
		Long: `Claims incomplete journal/year blocks from the harvest database, pulls their
abstracts through the Scopus Search API and stores them.

Requires a network with full Elsevier access, a text mining key and your
name (see "mscli configure").`,
		Example: `  # Harvest a single block
  mscli contribute

  # Harvest up to 10 blocks of at most 500 articles
  mscli contribute --count 10 --block-size 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := scopus.New(scopus.Config{APIKey: a.settings.TextMiningKey, Logger: a.logger})
			if err != nil {
				return fmt.Errorf("%w (run `mscli configure`)", err)
			}
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			c, err := collect.New(st, client, a.settings.Name, a.logger)
			if err != nil {
				return err
			}
			sum, err := c.Collect(ctx, blockSize, count)
			fmt.Fprintf(cmd.OutOrStdout(), "Collected %d blocks, %d entries (%d failed)\n",
				sum.Blocks, sum.Entries, sum.Failures)
			return err
		},
	}

	cmd.Flags().IntVar(&count, "count", 1, "number of blocks")
	cmd.Flags().IntVar(&blockSize, "block-size", collect.DefaultMaxBlockSize, "maximum number of articles in a block")
	return cmd
}

// blockRecord is one line of a seed file.
type blockRecord struct {
	ISSN        string `json:"issn"`
	Journal     string `json:"journal"`
	Year        int    `json:"year"`
	NumArticles int    `json:"num_articles"`
}

func newSeedCmd(a *app) *cobra.Command {
	var (
		file    string
		issn    string
		journal string
		years   string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add journal/year blocks to the harvest database",
		Example: `  # One journal over a range of years
  mscli seed --issn 1359-6454 --journal "Acta Materialia" --years 2000-2018

  # Blocks from a JSONL file with issn, journal, year, num_articles
  mscli seed --file blocks.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []blockRecord
			switch {
			case file != "":
				loaded, err := jsonl.Load[blockRecord](file, a.logger)
				if err != nil {
					return err
				}
				records = loaded
			case issn != "":
				from, to, err := parseYears(years)
				if err != nil {
					return err
				}
				for y := from; y <= to; y++ {
					records = append(records, blockRecord{ISSN: issn, Journal: journal, Year: y})
				}
			default:
				return fmt.Errorf("pass --file or --issn with --years: %w", internalerr.ErrInvalidInput)
			}

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			added, skipped := 0, 0
			for _, r := range records {
				if r.ISSN == "" || r.Year == 0 {
					a.logger.Warn("skipping block without issn or year", zap.Any("block", r))
					skipped++
					continue
				}
				_, err := st.AddBlock(ctx, store.Block{
					ISSN:        r.ISSN,
					Journal:     r.Journal,
					Year:        r.Year,
					NumArticles: r.NumArticles,
				})
				if errors.Is(err, internalerr.ErrDuplicate) {
					skipped++
					continue
				}
				if err != nil {
					return err
				}
				added++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d blocks, skipped %d\n", added, skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "JSONL file of blocks")
	cmd.Flags().StringVar(&issn, "issn", "", "journal ISSN")
	cmd.Flags().StringVar(&journal, "journal", "", "journal name")
	cmd.Flags().StringVar(&years, "years", "", "year or inclusive range, e.g. 2000-2018")
	return cmd
}

// parseYears accepts "2018" or "2000-2018".
func parseYears(s string) (int, int, error) {
	from, to, found := strings.Cut(strings.TrimSpace(s), "-")
	start, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return 0, 0, fmt.Errorf("bad years %q: %w", s, internalerr.ErrInvalidInput)
	}
	if !found {
		return start, start, nil
	}
	end, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil || end < start {
		return 0, 0, fmt.Errorf("bad years %q: %w", s, internalerr.ErrInvalidInput)
	}
	return start, end, nil
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show harvest and processing progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Stats(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range []store.BlockStatus{store.StatusIncomplete, store.StatusInProgress, store.StatusComplete} {
				fmt.Fprintf(out, "blocks %-12s %d\n", s, stats.Blocks[s])
			}
			fmt.Fprintf(out, "entries             %d (%d complete)\n", stats.Entries, stats.CompletedEntries)
			fmt.Fprintf(out, "processed           %d\n", stats.Processed)
			return nil
		},
	}
}
