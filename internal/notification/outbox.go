package notification

import (
	"context"
	"database/sql"
	"time"

	"github.com/ridloal/apparel-store/internal/platform/logger"
)

// Event adalah satu baris outbox yang menunggu dikirim ke broker.
type Event struct {
	ID        int64
	Topic     string
	Key       string
	Payload   []byte
	Attempts  int
	LastError string
	CreatedAt time.Time
}

// DBTX adalah interface yang bisa berupa *sql.Tx (atau mock di test).
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
	Commit() error
	Rollback() error
}

type OutboxRepository interface {
	// Enqueue idempotent per (topic, key): event yang sama tidak masuk dua kali.
	Enqueue(ctx context.Context, ev Event) error
	BeginTx(ctx context.Context) (DBTX, error)
	// FetchPending mengunci baris yang belum terkirim (SKIP LOCKED) di dalam tx.
	FetchPending(ctx context.Context, dbops DBTX, limit, maxAttempts int) ([]Event, error)
	MarkPublished(ctx context.Context, dbops DBTX, id int64) error
	MarkFailed(ctx context.Context, dbops DBTX, id int64, reason string) error
}

type postgresOutboxRepository struct {
	db *sql.DB
}

func NewPostgresOutboxRepository(db *sql.DB) OutboxRepository {
	return &postgresOutboxRepository{db: db}
}

func (r *postgresOutboxRepository) Enqueue(ctx context.Context, ev Event) error {
	query := `INSERT INTO notification_outbox (topic, event_key, payload, created_at)
              VALUES ($1, $2, $3, $4) ON CONFLICT (topic, event_key) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, ev.Topic, ev.Key, ev.Payload, time.Now().UTC())
	if err != nil {
		logger.Error("Enqueue: insert failed", err, logger.Fields{"topic": ev.Topic, "key": ev.Key})
	}
	return err
}

func (r *postgresOutboxRepository) BeginTx(ctx context.Context) (DBTX, error) {
	return r.db.BeginTx(ctx, nil)
}

func (r *postgresOutboxRepository) FetchPending(ctx context.Context, dbops DBTX, limit, maxAttempts int) ([]Event, error) {
	query := `SELECT id, topic, event_key, payload, attempts, COALESCE(last_error, ''), created_at
              FROM notification_outbox
              WHERE published_at IS NULL AND attempts < $1
              ORDER BY id
              LIMIT $2
              FOR UPDATE SKIP LOCKED`
	rows, err := dbops.QueryContext(ctx, query, maxAttempts, limit)
	if err != nil {
		logger.Error("FetchPending: query failed", err)
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.Topic, &ev.Key, &ev.Payload, &ev.Attempts, &ev.LastError, &ev.CreatedAt); err != nil {
			logger.Error("FetchPending: scan failed", err)
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *postgresOutboxRepository) MarkPublished(ctx context.Context, dbops DBTX, id int64) error {
	query := `UPDATE notification_outbox SET published_at = $1, attempts = attempts + 1 WHERE id = $2`
	_, err := dbops.ExecContext(ctx, query, time.Now().UTC(), id)
	return err
}

func (r *postgresOutboxRepository) MarkFailed(ctx context.Context, dbops DBTX, id int64, reason string) error {
	query := `UPDATE notification_outbox SET attempts = attempts + 1, last_error = $1 WHERE id = $2`
	_, err := dbops.ExecContext(ctx, query, reason, id)
	return err
}
