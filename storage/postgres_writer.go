package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"amazon-tracker/models"
)

// PostgresWriter persists normalized products to PostgreSQL. The table is
// append-only: every run inserts fresh rows and nothing is updated or
// deduplicated.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, waits for the server to
// accept pings, runs schema migrations, and returns a ready-to-use writer.
func NewPostgresWriter(databaseURL string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	if err := RunMigrations(databaseURL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &PostgresWriter{db: db}, nil
}

// Write batch-inserts all products. Batches are sized to keep the placeholder
// count well under the driver limit.
func (pw *PostgresWriter) Write(products []*models.Product) error {
	if len(products) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(products); i += batchSize {
		end := i + batchSize
		if end > len(products) {
			end = len(products)
		}
		if err := pw.insertBatch(products[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Product) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*6)

	for idx, p := range batch {
		base := idx * 6
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6))
		valueArgs = append(valueArgs,
			p.Keyword, p.Title, nullFloat(p.Price), nullFloat(p.Rating), nullInt(p.ReviewCount), p.CreatedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO products (keyword, title, price, rating, review_count, created_at)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := pw.db.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch of %d: %w", len(batch), err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
