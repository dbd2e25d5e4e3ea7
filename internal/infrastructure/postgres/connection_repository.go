package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"askibill/internal/domain/aggregation"
	"askibill/internal/infrastructure/aggregator"
)

// ConnectionRepository implements aggregation.ConnectionRepository for
// PostgreSQL. It also serves as the service's ConnectionResolver: the
// persisted row is what ties an opaque consent id back to its provider.
type ConnectionRepository struct {
	db *DB
}

func NewConnectionRepository(db *DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

var _ aggregation.ConnectionRepository = (*ConnectionRepository)(nil)

// Create records a freshly initiated connection.
func (r *ConnectionRepository) Create(ctx context.Context, conn aggregation.Connection) error {
	query := `
		INSERT INTO bank_connections (id, consent_id, institution_id, provider_id, user_id, status, created_at, expires_at, last_checked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var expires sql.NullTime
	if conn.ExpiresAt != nil {
		expires = sql.NullTime{Time: *conn.ExpiresAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		uuid.New().String(), conn.ConsentID, conn.InstitutionID, conn.ProviderID,
		conn.UserID, string(conn.Status), conn.CreatedAt, expires, conn.LastCheckedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create connection: %w", err)
	}
	return nil
}

// UpdateStatus records the latest upstream-reported status for a consent.
func (r *ConnectionRepository) UpdateStatus(ctx context.Context, consentID string, status aggregator.ConsentStatus, checkedAt time.Time) error {
	query := `
		UPDATE bank_connections
		SET status = $2, last_checked_at = $3
		WHERE consent_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, consentID, string(status), checkedAt)
	if err != nil {
		return fmt.Errorf("failed to update connection status: %w", err)
	}
	return nil
}

// GetByConsentID retrieves one connection record.
func (r *ConnectionRepository) GetByConsentID(ctx context.Context, consentID string) (*aggregation.Connection, error) {
	query := `
		SELECT consent_id, institution_id, provider_id, user_id, status, created_at, expires_at, last_checked_at
		FROM bank_connections
		WHERE consent_id = $1
	`

	conn, err := scanConnection(r.db.QueryRowContext(ctx, query, consentID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return conn, nil
}

// ListByUser returns all connections a user has initiated, newest first.
func (r *ConnectionRepository) ListByUser(ctx context.Context, userID string) ([]aggregation.Connection, error) {
	query := `
		SELECT consent_id, institution_id, provider_id, user_id, status, created_at, expires_at, last_checked_at
		FROM bank_connections
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	var out []aggregation.Connection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		out = append(out, *conn)
	}
	return out, rows.Err()
}

// ResolveConsent implements aggregation.ConnectionResolver from the
// persisted row.
func (r *ConnectionRepository) ResolveConsent(ctx context.Context, consentID string) (aggregation.ConnectionRef, error) {
	query := `
		SELECT provider_id, institution_id
		FROM bank_connections
		WHERE consent_id = $1
	`

	var ref aggregation.ConnectionRef
	err := r.db.QueryRowContext(ctx, query, consentID).Scan(&ref.ProviderID, &ref.InstitutionID)
	if err == sql.ErrNoRows {
		return ref, fmt.Errorf("unknown consent %s", consentID)
	}
	if err != nil {
		return ref, fmt.Errorf("failed to resolve consent: %w", err)
	}
	return ref, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConnection(row scanner) (*aggregation.Connection, error) {
	var conn aggregation.Connection
	var status string
	var expires sql.NullTime

	err := row.Scan(&conn.ConsentID, &conn.InstitutionID, &conn.ProviderID,
		&conn.UserID, &status, &conn.CreatedAt, &expires, &conn.LastCheckedAt)
	if err != nil {
		return nil, err
	}

	conn.Status = aggregator.ConsentStatus(status)
	if expires.Valid {
		conn.ExpiresAt = &expires.Time
	}
	return &conn, nil
}
