package banking

import "time"

// AccountKind is the canonical account classification. Provider-native type
// strings never leave this package.
type AccountKind string

const (
	KindSavings    AccountKind = "savings"
	KindChecking   AccountKind = "checking"
	KindCreditCard AccountKind = "credit_card"
	KindLoan       AccountKind = "loan"
	KindInvestment AccountKind = "investment"
)

// Direction marks whether a transaction moved money into or out of
// the account.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// CanonicalAccount is the normalized account snapshot returned to callers.
// CurrentBalance carries the provider's signed value as-is; sign conventions
// for liabilities are a caller decision.
type CanonicalAccount struct {
	ExternalAccountID   string      `json:"externalAccountId"`
	InstitutionID       string      `json:"institutionId"`
	AccountKind         AccountKind `json:"accountKind"`
	MaskedAccountNumber string      `json:"maskedAccountNumber"`
	HolderName          string      `json:"holderName"`
	CurrentBalance      float64     `json:"currentBalance"`
	AvailableBalance    *float64    `json:"availableBalance,omitempty"`
	Currency            string      `json:"currency"`
	AsOf                time.Time   `json:"asOf"`
}

// CanonicalTransaction is the normalized transaction record. Amount is always
// the non-negative magnitude; Direction carries the sign.
type CanonicalTransaction struct {
	ExternalTransactionID string    `json:"externalTransactionId"`
	AccountID             string    `json:"accountId"`
	Amount                float64   `json:"amount"`
	Direction             Direction `json:"direction"`
	Description           string    `json:"description"`
	Category              string    `json:"category"`
	Date                  time.Time `json:"date"`
	RunningBalance        *float64  `json:"runningBalance,omitempty"`
	MerchantName          string    `json:"merchantName,omitempty"`
}
