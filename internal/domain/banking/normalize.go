package banking

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedPayload marks provider data this normalizer cannot parse
// (non-numeric amounts, missing required fields). It is a data-integrity
// fault and is never silently defaulted.
var ErrMalformedPayload = errors.New("malformed provider payload")

// accountKindTable maps provider account type strings to canonical kinds.
// Lookup is case-insensitive on input.
var accountKindTable = map[string]AccountKind{
	"SAVINGS":           KindSavings,
	"CURRENT":           KindChecking,
	"CREDIT_CARD":       KindCreditCard,
	"TERM_DEPOSIT":      KindSavings,
	"RECURRING_DEPOSIT": KindSavings,
	"LOAN":              KindLoan,
	"PPF":               KindInvestment,
	"EPF":               KindInvestment,
	"NPS":               KindInvestment,
}

// MapAccountKind maps a provider account type string to a canonical kind.
// Unknown or missing input falls back to savings. That fallback can
// misclassify a credit or loan product as an asset; it is kept for parity
// with existing behavior pending product review.
func MapAccountKind(providerKind string) AccountKind {
	if kind, ok := accountKindTable[strings.ToUpper(strings.TrimSpace(providerKind))]; ok {
		return kind
	}
	return KindSavings
}

// ToCanonicalAccount validates and converts a raw provider account into the
// canonical shape. asOf stamps when the snapshot was taken.
func ToCanonicalAccount(institutionID string, raw RawAccount, asOf time.Time) (*CanonicalAccount, error) {
	if raw.AccRefNumber == "" {
		return nil, fmt.Errorf("%w: account missing accRefNumber", ErrMalformedPayload)
	}

	current, err := parseDecimal(raw.CurrentBalance)
	if err != nil {
		return nil, fmt.Errorf("%w: currentBalance %q", ErrMalformedPayload, raw.CurrentBalance)
	}

	var available *float64
	if raw.AvailableBalance != "" {
		v, err := parseDecimal(raw.AvailableBalance)
		if err != nil {
			return nil, fmt.Errorf("%w: availableBalance %q", ErrMalformedPayload, raw.AvailableBalance)
		}
		available = &v
	}

	// accType carries the product type; some providers only populate FIType.
	providerKind := raw.AccType
	if providerKind == "" {
		providerKind = raw.FIType
	}

	currency := raw.Currency
	if currency == "" {
		currency = "INR"
	}

	return &CanonicalAccount{
		ExternalAccountID:   raw.AccRefNumber,
		InstitutionID:       institutionID,
		AccountKind:         MapAccountKind(providerKind),
		MaskedAccountNumber: raw.MaskedAccNumber,
		HolderName:          raw.AccHolderName,
		CurrentBalance:      current,
		AvailableBalance:    available,
		Currency:            currency,
		AsOf:                asOf,
	}, nil
}

// ToCanonicalTransaction validates and converts a raw provider transaction.
// accountID is the external id of the account the transaction belongs to.
func ToCanonicalTransaction(accountID string, raw RawTransaction) (*CanonicalTransaction, error) {
	if raw.TxnID == "" {
		return nil, fmt.Errorf("%w: transaction missing txnId", ErrMalformedPayload)
	}

	amount, err := parseDecimal(raw.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction %s amount %q", ErrMalformedPayload, raw.TxnID, raw.Amount)
	}

	direction := DirectionCredit
	if amount < 0 {
		direction = DirectionDebit
	}

	description := raw.Narration
	if description == "" {
		description = raw.Description
	}

	date, err := parseTransactionDate(raw)
	if err != nil {
		return nil, err
	}

	var running *float64
	if raw.Balance != "" {
		v, err := parseDecimal(raw.Balance)
		if err != nil {
			return nil, fmt.Errorf("%w: transaction %s balance %q", ErrMalformedPayload, raw.TxnID, raw.Balance)
		}
		running = &v
	}

	return &CanonicalTransaction{
		ExternalTransactionID: raw.TxnID,
		AccountID:             accountID,
		Amount:                math.Abs(amount),
		Direction:             direction,
		Description:           description,
		Category:              Categorize(description),
		Date:                  date,
		RunningBalance:        running,
		MerchantName:          raw.MerchantName,
	}, nil
}

// ToCanonicalTransactions converts a batch, failing on the first malformed
// record so upstream data-quality issues are never masked.
func ToCanonicalTransactions(accountID string, raws []RawTransaction) ([]CanonicalTransaction, error) {
	out := make([]CanonicalTransaction, 0, len(raws))
	for _, raw := range raws {
		txn, err := ToCanonicalTransaction(accountID, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *txn)
	}
	return out, nil
}

// parseDecimal parses provider numeric strings. Empty means zero; anything
// non-numeric is an error for the caller to wrap.
func parseDecimal(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

var transactionDateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTransactionDate(raw RawTransaction) (time.Time, error) {
	value := raw.ValueDate
	if value == "" {
		value = raw.TransactionTimestamp
	}
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: transaction %s missing date", ErrMalformedPayload, raw.TxnID)
	}
	for _, layout := range transactionDateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: transaction %s date %q", ErrMalformedPayload, raw.TxnID, value)
}
