package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"amazon-tracker/models"
)

// CSVExporter writes one flat CSV file per collector run, alongside the row
// store. Files land in the configured output directory and are named after
// the keyword and the capture time, so repeated runs never overwrite each
// other.
type CSVExporter struct {
	dir string
}

// NewCSVExporter ensures the output directory exists and returns an exporter
// bound to it.
func NewCSVExporter(dir string) (*CSVExporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir %q: %w", dir, err)
	}
	return &CSVExporter{dir: dir}, nil
}

// Export writes the products to <dir>/<safe_keyword>_<YYYYMMDD_HHMMSS>.csv
// and returns the path written. Missing price, rating and review count are
// left as empty cells.
func (e *CSVExporter) Export(keyword string, collectedAt time.Time, products []*models.Product) (string, error) {
	name := fmt.Sprintf("%s_%s.csv", safeKeyword(keyword), collectedAt.Format("20060102_150405"))
	path := filepath.Join(e.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"keyword", "title", "price", "rating", "review_count", "created_at"}); err != nil {
		return "", fmt.Errorf("csv: write header: %w", err)
	}

	for _, p := range products {
		row := []string{
			p.Keyword,
			p.Title,
			formatFloat(p.Price, 2),
			formatFloat(p.Rating, 1),
			formatInt(p.ReviewCount),
			p.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("csv: flush: %w", err)
	}
	return path, nil
}

// safeKeyword makes a keyword usable as a file name component.
func safeKeyword(keyword string) string {
	s := strings.ReplaceAll(keyword, " ", "_")
	return strings.ReplaceAll(s, "/", "_")
}

func formatFloat(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
