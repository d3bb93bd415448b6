package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/daSkciN/estoque-app-front/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const EventSaleCompleted = "SaleCompleted"

type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

// SaleCompletedPayload is the body of a SaleCompleted outbox event.
type SaleCompletedPayload struct {
	ReceiptID   string            `json:"receipt_id"`
	SessionID   string            `json:"session_id"`
	Lines       []domain.CartLine `json:"lines"`
	Total       decimal.Decimal   `json:"total"`
	CompletedAt time.Time         `json:"completed_at"`
}

// Repository is the local journal of accepted sales. Each sale is written
// together with its outbox event.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every :memory: connection is its own database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// RecordSale stores the receipt and enqueues its SaleCompleted event in one
// transaction.
func (r *Repository) RecordSale(ctx context.Context, receipt domain.Receipt) error {
	lines, err := json.Marshal(receipt.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal sale lines: %w", err)
	}
	payload, err := json.Marshal(SaleCompletedPayload{
		ReceiptID:   receipt.ID,
		SessionID:   receipt.SessionID,
		Lines:       receipt.Lines,
		Total:       receipt.Total,
		CompletedAt: receipt.CompletedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sale event: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, session_id, total, lines, completed_at)
		VALUES (?, ?, ?, ?, ?)`,
		receipt.ID, receipt.SessionID, receipt.Total.String(), string(lines), receipt.CompletedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at)
		VALUES (?, ?, ?, ?)`,
		receipt.ID, EventSaleCompleted, string(payload), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sale: %w", err)
	}
	return nil
}

// RecentSales returns up to limit receipts, newest first.
func (r *Repository) RecentSales(ctx context.Context, limit int) ([]domain.Receipt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, total, lines, completed_at
		FROM sales
		ORDER BY completed_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	receipts := []domain.Receipt{}
	for rows.Next() {
		var (
			rec         domain.Receipt
			total       string
			lines       string
			completedAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &total, &lines, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		if rec.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("sale %s has invalid total: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(lines), &rec.Lines); err != nil {
			return nil, fmt.Errorf("sale %s has invalid lines: %w", rec.ID, err)
		}
		rec.CompletedAt = time.UnixMilli(completedAt).UTC()
		receipts = append(receipts, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return receipts, nil
}

func (r *Repository) UnpublishedEvents(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var (
			ev        OutboxEvent
			payload   string
			createdAt int64
		)
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &ev.EventType, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		ev.Payload = json.RawMessage(payload)
		ev.CreatedAt = time.UnixMilli(createdAt).UTC()
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkPublished(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox_events SET published_at = ? WHERE id = ? AND published_at IS NULL`,
		time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to mark event %d published: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark event %d published: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("outbox event %d not found or already published", id)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
