package banking

import "context"

// AccountRepository persists canonical account snapshots. The aggregation
// core never touches storage; the web layer persists what the core returns.
type AccountRepository interface {
	Upsert(ctx context.Context, userID string, account CanonicalAccount) error
	ListByUser(ctx context.Context, userID string) ([]CanonicalAccount, error)
}

// TransactionRepository persists canonical transactions.
type TransactionRepository interface {
	UpsertBatch(ctx context.Context, userID string, transactions []CanonicalTransaction) (int, error)
	ListByAccount(ctx context.Context, accountID string) ([]CanonicalTransaction, error)
}
