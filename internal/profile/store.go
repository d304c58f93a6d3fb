package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound indicates no stored profile exists for the customer.
var ErrNotFound = errors.New("profile: customer not found")

// Store is the durable profile collaborator contract.
type Store interface {
	Get(ctx context.Context, customerID string) (CustomerProfile, error)
	Put(ctx context.Context, p CustomerProfile) error
}

// PostgresStore persists customer profiles to PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewPostgresStore creates a profile store over the supplied database.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		panic("profile: db cannot be nil")
	}
	return &PostgresStore{
		db:     db,
		tracer: otel.Tracer("aura.internal.profile"),
	}
}

func (s *PostgresStore) Get(ctx context.Context, customerID string) (CustomerProfile, error) {
	ctx, span := s.tracer.Start(ctx, "profile.get")
	defer span.End()

	var p CustomerProfile
	var preferred sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_type, total_calls, satisfaction_avg, resolution_rate, preferred_persona
		FROM customers WHERE id = $1`, customerID).
		Scan(&p.CustomerID, &p.CustomerType, &p.TotalCalls, &p.SatisfactionAvg, &p.ResolutionRate, &preferred)
	if errors.Is(err, sql.ErrNoRows) {
		return CustomerProfile{}, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return CustomerProfile{}, fmt.Errorf("profile: failed to load customer %s: %w", customerID, err)
	}
	p.PreferredPersona = preferred.String
	return p, nil
}

func (s *PostgresStore) Put(ctx context.Context, p CustomerProfile) error {
	ctx, span := s.tracer.Start(ctx, "profile.put")
	defer span.End()

	var preferred sql.NullString
	if p.PreferredPersona != "" {
		preferred = sql.NullString{String: p.PreferredPersona, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, customer_type, total_calls, satisfaction_avg, resolution_rate, preferred_persona, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE SET
			customer_type = EXCLUDED.customer_type,
			total_calls = EXCLUDED.total_calls,
			satisfaction_avg = EXCLUDED.satisfaction_avg,
			resolution_rate = EXCLUDED.resolution_rate,
			preferred_persona = EXCLUDED.preferred_persona,
			updated_at = NOW()`,
		p.CustomerID, p.CustomerType, p.TotalCalls, p.SatisfactionAvg, p.ResolutionRate, preferred)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("profile: failed to upsert customer %s: %w", p.CustomerID, err)
	}
	return nil
}
