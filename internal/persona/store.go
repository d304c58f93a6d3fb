package persona

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Entry is one persisted performance row.
type Entry struct {
	CustomerType string
	PersonaType  string
	Performance  Performance
}

// Store is the durable performance-table collaborator contract.
type Store interface {
	Put(ctx context.Context, e Entry) error
	List(ctx context.Context) ([]Entry, error)
}

// PostgresStore persists persona performance to PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	tracer trace.Tracer
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		panic("persona: db cannot be nil")
	}
	return &PostgresStore{
		db:     db,
		tracer: otel.Tracer("aura.internal.persona"),
	}
}

func (s *PostgresStore) Put(ctx context.Context, e Entry) error {
	ctx, span := s.tracer.Start(ctx, "persona.put")
	defer span.End()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO persona_performance (customer_type, persona_type, success_rate, satisfaction_avg, resolution_rate, call_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (customer_type, persona_type) DO UPDATE SET
			success_rate = EXCLUDED.success_rate,
			satisfaction_avg = EXCLUDED.satisfaction_avg,
			resolution_rate = EXCLUDED.resolution_rate,
			call_count = EXCLUDED.call_count,
			updated_at = NOW()`,
		e.CustomerType, e.PersonaType, e.Performance.SuccessRate,
		e.Performance.SatisfactionAvg, e.Performance.ResolutionRate, e.Performance.CallCount)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("persona: failed to upsert performance %s/%s: %w", e.CustomerType, e.PersonaType, err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Entry, error) {
	ctx, span := s.tracer.Start(ctx, "persona.list")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT customer_type, persona_type, success_rate, satisfaction_avg, resolution_rate, call_count
		FROM persona_performance`)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("persona: failed to list performance entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.CustomerType, &e.PersonaType, &e.Performance.SuccessRate,
			&e.Performance.SatisfactionAvg, &e.Performance.ResolutionRate, &e.Performance.CallCount); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("persona: failed to scan performance entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("persona: failed to iterate performance entries: %w", err)
	}
	return entries, nil
}
