package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/materialsintelligence/matscholar/internal/logging"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/config"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/store"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/store/sqlite"
)

// app carries the state shared by all commands.
type app struct {
	settingsPath string
	dbPath       string
	logLevel     string

	settings *config.Settings
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "mscli",
		Short: "Materials Scholar command line interface",
		Long: `mscli processes materials science text, harvests abstracts from Scopus
into the Materials Scholar database and queries the Materials Scholar API.

Settings live in ~/.msclirc.yaml (see "mscli configure") and may be
overridden with MATSCHOLAR_* environment variables or a .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&a.settingsPath, "config", "", "settings file (default ~/"+config.FileName+")")
	cmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "harvest database path (overrides settings)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newConfigureCmd(a),
		newContributeCmd(a),
		newSeedCmd(a),
		newStatusCmd(a),
		newTokenizeCmd(a),
		newProcessCmd(a),
		newSearchCmd(a),
		newCloseWordsCmd(a),
		newCorpusCmd(a),
	)
	return cmd
}

func (a *app) init() error {
	if a.settingsPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		a.settingsPath = p
	}

	s, err := config.Load(a.settingsPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		s.Database = a.dbPath
	}
	if a.logLevel != "" {
		s.Log.Level = a.logLevel
	}
	a.settings = s

	logger, err := logging.New(s.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	st, err := sqlite.OpenSQLite(ctx, a.settings.Database)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", a.settings.Database, err)
	}
	return st, nil
}

// inputText joins args, or reads stdin when no args are given.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		if fi, err := f.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			return "", fmt.Errorf("no text given: pass it as arguments or on stdin")
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
