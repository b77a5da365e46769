// Package jsonl reads newline delimited JSON files such as block seed lists.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/materialsintelligence/matscholar/internal/logging"
	"github.com/materialsintelligence/matscholar/pkg/matscholar/internalerr"
)

const maxLine = 4 << 20

// Load reads one JSON value per line from path.
func Load[T any](path string, logger *zap.Logger) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()

	items, err := Decode[T](f, logging.OrNop(logger).With(zap.String("path", path)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// Decode reads one JSON value per line. Blank lines are ignored and
// malformed lines are skipped with a warning; finding no valid line is an
// error.
func Decode[T any](r io.Reader, logger *zap.Logger) ([]T, error) {
	logger = logging.OrNop(logger)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	var items []T
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var item T
		if err := json.Unmarshal([]byte(text), &item); err != nil {
			logger.Warn("skipping malformed JSON line", zap.Int("line", line), zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid items found: %w", internalerr.ErrInvalidInput)
	}
	return items, nil
}
