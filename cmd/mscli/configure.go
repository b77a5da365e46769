package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/materialsintelligence/matscholar/pkg/matscholar/config"
)

// prompts are asked in order by an interactive configure.
var prompts = []struct {
	key      string
	question string
}{
	{"name", "What is your full name?"},
	{"text_mining_key", "Enter your Scopus API text mining key (obtained at https://dev.elsevier.com/apikey/manage)"},
	{"api_key", "Enter your Materials Scholar API key"},
	{"endpoint", "Enter the Materials Scholar API endpoint"},
}

func newConfigureCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "configure [key value]...",
		Short: "Set Materials Scholar settings",
		Long: `Writes settings to the settings file. Without arguments the command asks
for your name and API keys; press enter to keep a current value.

Settable keys: ` + strings.Join(config.Keys(), ", "),
		Example: `  # Interactive setup
  mscli configure

  # Set values directly
  mscli configure text_mining_key 0123abcd database /data/matscholar.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			if len(args) > 0 {
				if err := s.SetPairs(args); err != nil {
					return err
				}
			} else if err := promptSettings(cmd.InOrStdin(), cmd.OutOrStdout(), s); err != nil {
				return err
			}

			backup, err := config.Save(a.settingsPath, s)
			if err != nil {
				return err
			}
			if backup != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Existing %s backed up to %s\n", a.settingsPath, backup)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", a.settingsPath)
			return nil
		},
	}
}

func promptSettings(in io.Reader, out io.Writer, s *config.Settings) error {
	reader := bufio.NewReader(in)
	current := map[string]string{
		"name":            s.Name,
		"text_mining_key": s.TextMiningKey,
		"api_key":         s.APIKey,
		"endpoint":        s.Endpoint,
	}
	for _, p := range prompts {
		if cur := current[p.key]; cur != "" {
			fmt.Fprintf(out, "%s [%s] ", p.question, mask(p.key, cur))
		} else {
			fmt.Fprintf(out, "%s ", p.question)
		}

		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read answer: %w", err)
		}
		if answer := strings.TrimSpace(line); answer != "" {
			if err := s.Set(p.key, answer); err != nil {
				return err
			}
		}
		if err == io.EOF {
			break
		}
	}
	fmt.Fprintln(out)
	return nil
}

// mask hides all but the last four characters of keys.
func mask(key, value string) string {
	if !strings.HasSuffix(key, "_key") || len(value) <= 4 {
		return value
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
