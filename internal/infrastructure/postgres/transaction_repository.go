package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"askibill/internal/domain/banking"
)

// TransactionRepository implements banking.TransactionRepository for
// PostgreSQL.
type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

var _ banking.TransactionRepository = (*TransactionRepository)(nil)

// UpsertBatch stores a batch of canonical transactions, keyed by the
// provider transaction id. Returns how many rows were newly inserted.
func (r *TransactionRepository) UpsertBatch(ctx context.Context, userID string, transactions []banking.CanonicalTransaction) (int, error) {
	query := `
		INSERT INTO bank_transactions (external_transaction_id, account_id, user_id, amount, direction, description, category, txn_date, running_balance, merchant_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (external_transaction_id) DO UPDATE SET
			amount = EXCLUDED.amount,
			direction = EXCLUDED.direction,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			txn_date = EXCLUDED.txn_date,
			running_balance = EXCLUDED.running_balance,
			merchant_name = EXCLUDED.merchant_name
		RETURNING (xmax = 0)
	`

	inserted := 0
	for _, txn := range transactions {
		var running sql.NullFloat64
		if txn.RunningBalance != nil {
			running = sql.NullFloat64{Float64: *txn.RunningBalance, Valid: true}
		}

		var isInsert bool
		err := r.db.QueryRowContext(ctx, query,
			txn.ExternalTransactionID, txn.AccountID, userID, txn.Amount,
			string(txn.Direction), txn.Description, txn.Category, txn.Date,
			running, nullString(txn.MerchantName),
		).Scan(&isInsert)
		if err != nil {
			return inserted, fmt.Errorf("failed to upsert transaction %s: %w", txn.ExternalTransactionID, err)
		}
		if isInsert {
			inserted++
		}
	}
	return inserted, nil
}

// ListByAccount returns stored transactions for one account, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string) ([]banking.CanonicalTransaction, error) {
	query := `
		SELECT external_transaction_id, account_id, amount, direction, description, category, txn_date, running_balance, merchant_name
		FROM bank_transactions
		WHERE account_id = $1
		ORDER BY txn_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []banking.CanonicalTransaction
	for rows.Next() {
		var txn banking.CanonicalTransaction
		var direction string
		var running sql.NullFloat64
		var merchant sql.NullString

		err := rows.Scan(&txn.ExternalTransactionID, &txn.AccountID, &txn.Amount,
			&direction, &txn.Description, &txn.Category, &txn.Date,
			&running, &merchant)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		txn.Direction = banking.Direction(direction)
		if running.Valid {
			txn.RunningBalance = &running.Float64
		}
		txn.MerchantName = merchant.String
		out = append(out, txn)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
