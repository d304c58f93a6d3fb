package profile

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// CallHistoryRecord captures one finished call for offline analysis.
type CallHistoryRecord struct {
	CallID          string
	CustomerID      string
	PersonaUsed     string
	Intent          string
	Satisfaction    *float64
	Resolved        *bool
	DurationSeconds int
	EndedAt         time.Time
}

// HistoryStore appends call-history records.
type HistoryStore interface {
	Append(ctx context.Context, rec CallHistoryRecord) error
}

// PostgresHistoryStore persists call history to PostgreSQL.
type PostgresHistoryStore struct {
	db     *sql.DB
	tracer trace.Tracer
}

func NewPostgresHistoryStore(db *sql.DB) *PostgresHistoryStore {
	if db == nil {
		panic("profile: db cannot be nil")
	}
	return &PostgresHistoryStore{
		db:     db,
		tracer: otel.Tracer("aura.internal.profile.history"),
	}
}

func (s *PostgresHistoryStore) Append(ctx context.Context, rec CallHistoryRecord) error {
	ctx, span := s.tracer.Start(ctx, "profile.history_append")
	defer span.End()

	var satisfaction sql.NullFloat64
	if rec.Satisfaction != nil {
		satisfaction = sql.NullFloat64{Float64: *rec.Satisfaction, Valid: true}
	}
	var resolved sql.NullBool
	if rec.Resolved != nil {
		resolved = sql.NullBool{Bool: *rec.Resolved, Valid: true}
	}

	// The row id is generated here: call ids may legitimately be reused
	// once a call has ended, so they cannot key the table.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO call_history (id, call_id, customer_id, persona_used, intent, satisfaction_score, resolved, duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.NewString(), rec.CallID, rec.CustomerID, rec.PersonaUsed, rec.Intent, satisfaction, resolved, rec.DurationSeconds, rec.EndedAt)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("profile: failed to append call history for %s: %w", rec.CallID, err)
	}
	return nil
}
