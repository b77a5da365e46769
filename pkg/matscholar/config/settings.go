// Package config loads mscli settings and builds the text processing
// components they describe.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/materialsintelligence/matscholar/internal/logging"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
)

// envPrefix is prepended to every environment override, e.g.
// MATSCHOLAR_TEXT_MINING_KEY.
const envPrefix = "MATSCHOLAR"

// FileName is the settings file kept in the user's home directory.
const FileName = ".msclirc.yaml"

// Settings is the persisted mscli configuration.
type Settings struct {
	// Name identifies the contributor in the harvest log.
	Name string `mapstructure:"name" yaml:"name,omitempty"`
	// TextMiningKey is the Scopus API key used for harvesting.
	TextMiningKey string `mapstructure:"text_mining_key" yaml:"text_mining_key,omitempty"`
	// APIKey and Endpoint configure the REST client.
	APIKey   string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	// Database is the path of the harvest SQLite file.
	Database string `mapstructure:"database" yaml:"database,omitempty"`
	// PhraseModel is the path of the phrase model YAML artifact.
	PhraseModel string         `mapstructure:"phrase_model" yaml:"phrase_model,omitempty"`
	Log         logging.Config `mapstructure:"log" yaml:"log,omitempty"`
}

// keys lists every settable key; nested keys use dots.
var keys = []string{
	"name", "text_mining_key", "api_key", "endpoint", "database", "phrase_model",
	"log.level", "log.format",
}

// Keys returns the settable keys in sorted order.
func Keys() []string {
	out := append([]string(nil), keys...)
	sort.Strings(out)
	return out
}

// DefaultPath returns ~/.msclirc.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Database: "matscholar.db",
		Log:      logging.Config{Level: "info", Format: "console"},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("database", d.Database)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	// Unmarshal only sees env values for keys viper knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads settings from path and applies MATSCHOLAR_* environment
// overrides. A missing file yields defaults plus environment.
func Load(path string) (*Settings, error) {
	v := newViper()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read settings %q: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat settings %q: %w", path, err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

// Save writes s to path as YAML. An existing file is first copied to
// path + ".bak"; the backup path is returned when one was made.
func Save(path string, s *Settings) (string, error) {
	var backup string
	if old, err := os.ReadFile(path); err == nil {
		backup = path + ".bak"
		if err := os.WriteFile(backup, old, 0o600); err != nil {
			return "", fmt.Errorf("back up settings: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read settings: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write settings: %w", err)
	}
	return backup, nil
}

// Set assigns one key. Key names are those returned by Keys; the
// MATSCHOLAR_ form used in environment variables is accepted too.
func (s *Settings) Set(key, value string) error {
	key = strings.ToLower(strings.TrimPrefix(strings.ToUpper(key), envPrefix+"_"))
	switch key {
	case "name":
		s.Name = value
	case "text_mining_key":
		s.TextMiningKey = value
	case "api_key":
		s.APIKey = value
	case "endpoint":
		s.Endpoint = value
	case "database":
		s.Database = value
	case "phrase_model":
		s.PhraseModel = value
	case "log.level", "log_level":
		s.Log.Level = value
	case "log.format", "log_format":
		s.Log.Format = value
	default:
		return fmt.Errorf("unknown setting %q: %w", key, internalerr.ErrInvalidConfig)
	}
	return nil
}

// SetPairs applies alternating key/value arguments.
func (s *Settings) SetPairs(pairs []string) error {
	if len(pairs)%2 != 0 {
		return fmt.Errorf("bad variable specification, want key value pairs: %w", internalerr.ErrInvalidInput)
	}
	for i := 0; i < len(pairs); i += 2 {
		if err := s.Set(pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}
