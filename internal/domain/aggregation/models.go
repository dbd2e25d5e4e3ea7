package aggregation

import (
	"context"
	"time"

	"askibill/internal/infrastructure/aggregator"
)

// Connection tracks one aggregation handshake. It is a transient value
// object: the upstream provider is the sole source of truth for consent
// state, and the web layer persists whatever subset it needs.
type Connection struct {
	ConsentID     string                   `json:"consentId"`
	InstitutionID string                   `json:"institutionId"`
	ProviderID    string                   `json:"providerId"`
	UserID        string                   `json:"userId"`
	Status        aggregator.ConsentStatus `json:"status"`
	RedirectURL   string                   `json:"redirectUrl,omitempty"`
	CreatedAt     time.Time                `json:"createdAt"`
	ExpiresAt     *time.Time               `json:"expiresAt,omitempty"`
	LastCheckedAt time.Time                `json:"lastCheckedAt"`
}

// ConnectionRef is what a resolver recalls about a previously initiated
// connection: which provider owns the consent and which institution it was
// opened against.
type ConnectionRef struct {
	ProviderID    string
	InstitutionID string
}

// ConnectionResolver recalls the provider for a consent id. The service
// itself is stateless, so with more than one provider configured the caller
// supplies a resolver backed by its own persistence.
type ConnectionResolver interface {
	ResolveConsent(ctx context.Context, consentID string) (ConnectionRef, error)
}

// ConnectionResolverFunc adapts a function to the ConnectionResolver
// interface.
type ConnectionResolverFunc func(ctx context.Context, consentID string) (ConnectionRef, error)

func (f ConnectionResolverFunc) ResolveConsent(ctx context.Context, consentID string) (ConnectionRef, error) {
	return f(ctx, consentID)
}

// ConnectionRepository persists connection records for the web layer.
type ConnectionRepository interface {
	Create(ctx context.Context, conn Connection) error
	UpdateStatus(ctx context.Context, consentID string, status aggregator.ConsentStatus, checkedAt time.Time) error
	GetByConsentID(ctx context.Context, consentID string) (*Connection, error)
	ListByUser(ctx context.Context, userID string) ([]Connection, error)
}
