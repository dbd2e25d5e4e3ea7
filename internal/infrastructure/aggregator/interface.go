package aggregator

import (
	"context"
)

// ClientInterface defines the methods required from a provider client.
type ClientInterface interface {
	Provider() string
	CreateConsent(ctx context.Context, req ConsentRequest) (*ConsentGrant, error)
	CheckStatus(ctx context.Context, consentID string) (*ConsentStatusResult, error)
	FetchAccountData(ctx context.Context, consentID, accountID string) (*AccountData, error)
}
