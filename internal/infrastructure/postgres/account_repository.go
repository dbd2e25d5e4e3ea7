package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"askibill/internal/domain/banking"
)

// AccountRepository implements banking.AccountRepository for PostgreSQL.
type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

var _ banking.AccountRepository = (*AccountRepository)(nil)

// Upsert stores the latest canonical snapshot of an account. The external
// account id is the conflict key: each fetch overwrites the previous
// snapshot.
func (r *AccountRepository) Upsert(ctx context.Context, userID string, account banking.CanonicalAccount) error {
	query := `
		INSERT INTO bank_accounts (external_account_id, user_id, institution_id, account_kind, masked_account_number, holder_name, current_balance, available_balance, currency, as_of)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (external_account_id) DO UPDATE SET
			account_kind = EXCLUDED.account_kind,
			masked_account_number = EXCLUDED.masked_account_number,
			holder_name = EXCLUDED.holder_name,
			current_balance = EXCLUDED.current_balance,
			available_balance = EXCLUDED.available_balance,
			currency = EXCLUDED.currency,
			as_of = EXCLUDED.as_of
	`

	var available sql.NullFloat64
	if account.AvailableBalance != nil {
		available = sql.NullFloat64{Float64: *account.AvailableBalance, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		account.ExternalAccountID, userID, account.InstitutionID, string(account.AccountKind),
		account.MaskedAccountNumber, account.HolderName, account.CurrentBalance,
		available, account.Currency, account.AsOf,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}

// ListByUser returns a user's stored account snapshots.
func (r *AccountRepository) ListByUser(ctx context.Context, userID string) ([]banking.CanonicalAccount, error) {
	query := `
		SELECT external_account_id, institution_id, account_kind, masked_account_number, holder_name, current_balance, available_balance, currency, as_of
		FROM bank_accounts
		WHERE user_id = $1
		ORDER BY as_of DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var out []banking.CanonicalAccount
	for rows.Next() {
		var acc banking.CanonicalAccount
		var kind string
		var available sql.NullFloat64

		err := rows.Scan(&acc.ExternalAccountID, &acc.InstitutionID, &kind,
			&acc.MaskedAccountNumber, &acc.HolderName, &acc.CurrentBalance,
			&available, &acc.Currency, &acc.AsOf)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}

		acc.AccountKind = banking.AccountKind(kind)
		if available.Valid {
			acc.AvailableBalance = &available.Float64
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}
