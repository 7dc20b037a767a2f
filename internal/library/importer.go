package library

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultExpectedBooks = 1_000_000
	defaultFPRate        = 0.001
	maxLineSize          = 1 << 20
)

// ImportStats summarizes an import run.
type ImportStats struct {
	Read       int
	Added      int
	Duplicates int
	Invalid    int
}

// Importer merges gzip-compressed JSON-lines exports into a catalog.
// Books are deduplicated by ISBN, or by title and author when the ISBN is
// missing.
type Importer struct {
	expected uint
	fpRate   float64
}

// NewImporter returns an Importer sized for about expected books.
func NewImporter(expected uint) *Importer {
	if expected == 0 {
		expected = defaultExpectedBooks
	}
	return &Importer{expected: expected, fpRate: defaultFPRate}
}

// fileBooks holds the parsed contents of one export file.
type fileBooks struct {
	books   []Book
	invalid int
}

// Import parses every file concurrently, then merges the results into books
// in file order. The input slice is not modified.
func (im *Importer) Import(ctx context.Context, books []Book, paths []string) ([]Book, ImportStats, error) {
	lg := zctx.From(ctx)

	parsed := make([]fileBooks, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			fb, err := parseExport(gctx, p)
			if err != nil {
				return errors.Wrapf(err, "parse %s", p)
			}
			lg.Info("Export parsed",
				zap.String("file", p),
				zap.Int("books", len(fb.books)),
				zap.Int("invalid", fb.invalid),
			)
			parsed[i] = fb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, ImportStats{}, err
	}

	// The filter answers "definitely new" without touching the exact index;
	// only possible hits are confirmed against it.
	filter := bloom.NewWithEstimates(im.expected, im.fpRate)
	seen := make(map[string]struct{}, len(books))
	for _, b := range books {
		k := dedupeKey(b)
		filter.AddString(k)
		seen[k] = struct{}{}
	}

	var stats ImportStats
	out := make([]Book, 0, len(books))
	out = append(out, books...)
	for _, fb := range parsed {
		stats.Invalid += fb.invalid
		for _, b := range fb.books {
			stats.Read++
			if err := b.Validate(); err != nil {
				stats.Invalid++
				continue
			}

			k := dedupeKey(b)
			if filter.TestString(k) {
				if _, dup := seen[k]; dup {
					stats.Duplicates++
					continue
				}
			}
			filter.AddString(k)
			seen[k] = struct{}{}
			out = append(out, b)
			stats.Added++
		}
	}

	lg.Info("Import merged",
		zap.Int("read", stats.Read),
		zap.Int("added", stats.Added),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("invalid", stats.Invalid),
	)
	return out, stats, nil
}

func dedupeKey(b Book) string {
	if b.ISBN != "" {
		return "isbn:" + b.ISBN
	}
	return "ta:" + strings.ToLower(strings.TrimSpace(b.Title)) + "\x00" + strings.ToLower(strings.TrimSpace(b.Author))
}

// parseExport reads one gzip-compressed file with a JSON book object per
// line. Blank lines are skipped; lines that fail to decode are counted as
// invalid.
func parseExport(ctx context.Context, path string) (fileBooks, error) {
	var fb fileBooks

	f, err := os.Open(path)
	if err != nil {
		return fb, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return fb, errors.Wrap(err, "create gzip reader")
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return fb, err
		}
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		b, err := decodeBook(jx.DecodeBytes(line))
		if err != nil {
			fb.invalid++
			continue
		}
		fb.books = append(fb.books, b)
	}
	if err := scanner.Err(); err != nil {
		return fb, errors.Wrap(err, "scan")
	}
	return fb, nil
}
