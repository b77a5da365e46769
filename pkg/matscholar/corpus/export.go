package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"
)

// Row is one processed abstract in the Parquet export.
type Row struct {
	EID         string   `parquet:"eid"`
	DOI         string   `parquet:"doi"`
	Title       string   `parquet:"title"`
	Year        int32    `parquet:"year"`
	Tokens      []string `parquet:"tokens,list"`
	Materials   []string `parquet:"materials,list"`
	Surfaces    []string `parquet:"surfaces,list"`
	ProcessedAt int64    `parquet:"processed_at_ms"`
}

// exportBatch is the number of rows written per Write call.
const exportBatch = 128

// Export writes every processed abstract to w as Parquet and returns the
// number of rows written.
func (c *Corpus) Export(ctx context.Context, w io.Writer) (int, error) {
	processed, err := c.store.ListProcessed(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("list processed abstracts: %w", err)
	}

	writer := parquet.NewGenericWriter[Row](w)
	rows := make([]Row, 0, exportBatch)
	total := 0
	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		n, err := writer.Write(rows)
		total += n
		rows = rows[:0]
		return err
	}

	for _, p := range processed {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		row := Row{
			EID:         p.EID,
			DOI:         p.DOI,
			Title:       p.Title,
			Year:        int32(p.Year),
			Tokens:      p.Tokens,
			Materials:   make([]string, len(p.Mentions)),
			Surfaces:    make([]string, len(p.Mentions)),
			ProcessedAt: p.ProcessedAt.UnixMilli(),
		}
		for i, m := range p.Mentions {
			row.Materials[i] = m.Canonical
			row.Surfaces[i] = m.Surface
		}
		rows = append(rows, row)
		if len(rows) == exportBatch {
			if err := flush(); err != nil {
				return total, fmt.Errorf("write parquet rows: %w", err)
			}
		}
	}
	if err := flush(); err != nil {
		return total, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return total, fmt.Errorf("close parquet writer: %w", err)
	}

	c.log.Info("exported corpus", zap.Int("rows", total))
	return total, nil
}

// ReadExport reads rows written by Export.
func ReadExport(r io.ReaderAt, size int64) ([]Row, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	var out []Row
	for {
		// Fresh buffer per batch: the reader reuses slice fields of buf.
		buf := make([]Row, exportBatch)
		n, err := reader.Read(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("read parquet rows: %w", err)
		}
	}
}
