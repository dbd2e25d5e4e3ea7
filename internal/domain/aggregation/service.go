// Package aggregation orchestrates the institution registry, provider
// clients and normalizer behind the small interface the web layer consumes.
package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"askibill/internal/domain/institution"
	"askibill/internal/infrastructure/aggregator"
)

// ErrUnknownInstitution is returned when an institution id is not in the
// registry, has no provider mapping, or its provider has no configured
// client. Always fails before any network call.
var ErrUnknownInstitution = errors.New("unknown institution")

// Defaults applied when initiating a connection. Duration and retention are
// overridable through Options.
const (
	defaultConsentDurationDays = 365
	defaultDataRetentionDays   = 365
)

var defaultConsentScopes = []string{"PROFILE", "SUMMARY", "TRANSACTIONS"}

// Options tune consent parameters for initiated connections.
type Options struct {
	ConsentDurationDays int
	DataRetentionDays   int
}

// Service is the aggregation façade. It holds no mutable state: every call
// is independently resolvable from its inputs plus the upstream provider.
type Service struct {
	registry *institution.Registry
	clients  map[string]aggregator.ClientInterface // keyed by provider id
	resolver ConnectionResolver
	opts     Options
	now      func() time.Time
}

// NewService creates the façade over a registry and one client per provider.
// resolver may be nil when only a single provider is configured.
func NewService(registry *institution.Registry, clients map[string]aggregator.ClientInterface, resolver ConnectionResolver, opts Options) *Service {
	if opts.ConsentDurationDays <= 0 {
		opts.ConsentDurationDays = defaultConsentDurationDays
	}
	if opts.DataRetentionDays <= 0 {
		opts.DataRetentionDays = defaultDataRetentionDays
	}
	return &Service{
		registry: registry,
		clients:  clients,
		resolver: resolver,
		opts:     opts,
		now:      time.Now,
	}
}

// ListInstitutions returns the active institutions for a country.
func (s *Service) ListInstitutions(country string) []institution.Institution {
	return s.registry.ListByCountry(country)
}

// SearchInstitutions filters the country list by a case-insensitive
// substring query.
func (s *Service) SearchInstitutions(query, country string) []institution.Institution {
	return s.registry.Search(query, country)
}

// InitiateConnection creates a consent upstream for the user and
// institution. The returned Connection starts PENDING; the user must visit
// RedirectURL to approve the consent at their institution.
func (s *Service) InitiateConnection(ctx context.Context, userID, institutionID string) (*Connection, error) {
	client, inst, err := s.clientForInstitution(institutionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	grant, err := client.CreateConsent(ctx, aggregator.ConsentRequest{
		UserID:              userID,
		InstitutionID:       inst.ID,
		ConsentScopes:       defaultConsentScopes,
		ConsentDurationDays: s.opts.ConsentDurationDays,
		DataRetentionDays:   s.opts.DataRetentionDays,
	})
	if err != nil {
		return nil, err
	}

	expires := now.AddDate(0, 0, s.opts.ConsentDurationDays)
	log.Printf("Initiated connection for user %s at %s via %s: consent %s", userID, inst.ID, client.Provider(), grant.ConsentID)

	return &Connection{
		ConsentID:     grant.ConsentID,
		InstitutionID: inst.ID,
		ProviderID:    client.Provider(),
		UserID:        userID,
		Status:        aggregator.StatusPending,
		RedirectURL:   grant.RedirectURL,
		CreatedAt:     now,
		ExpiresAt:     &expires,
		LastCheckedAt: now,
	}, nil
}

// GetConnectionStatus polls the upstream consent state. When the consent is
// active the result carries the linked accounts in canonical form.
func (s *Service) GetConnectionStatus(ctx context.Context, consentID string) (*aggregator.ConsentStatusResult, error) {
	client, ref, err := s.clientForConsent(ctx, consentID)
	if err != nil {
		return nil, err
	}

	result, err := client.CheckStatus(ctx, consentID)
	if err != nil {
		return nil, err
	}

	for i := range result.Accounts {
		if result.Accounts[i].InstitutionID == "" {
			result.Accounts[i].InstitutionID = ref.InstitutionID
		}
	}
	return result, nil
}

// FetchAccountData pulls a fresh normalized snapshot of one linked account
// and its transactions. No caching: repeated calls re-read upstream.
func (s *Service) FetchAccountData(ctx context.Context, consentID, accountID string) (*aggregator.AccountData, error) {
	client, ref, err := s.clientForConsent(ctx, consentID)
	if err != nil {
		return nil, err
	}

	data, err := client.FetchAccountData(ctx, consentID, accountID)
	if err != nil {
		return nil, err
	}

	if data.Account.InstitutionID == "" {
		data.Account.InstitutionID = ref.InstitutionID
	}
	return data, nil
}

func (s *Service) clientForInstitution(institutionID string) (aggregator.ClientInterface, institution.Institution, error) {
	inst, ok := s.registry.Get(institutionID)
	if !ok {
		return nil, inst, fmt.Errorf("%w: %s", ErrUnknownInstitution, institutionID)
	}
	if !inst.Active {
		return nil, inst, fmt.Errorf("%w: %s is inactive", ErrUnknownInstitution, institutionID)
	}
	if inst.ProviderID == "" {
		return nil, inst, fmt.Errorf("%w: %s supports manual entry only", ErrUnknownInstitution, institutionID)
	}
	client, ok := s.clients[inst.ProviderID]
	if !ok {
		return nil, inst, fmt.Errorf("%w: no client configured for provider %s", ErrUnknownInstitution, inst.ProviderID)
	}
	return client, inst, nil
}

// clientForConsent picks the provider client owning a consent. With a single
// configured provider the answer is unambiguous; otherwise the resolver is
// consulted.
func (s *Service) clientForConsent(ctx context.Context, consentID string) (aggregator.ClientInterface, ConnectionRef, error) {
	if s.resolver != nil {
		ref, err := s.resolver.ResolveConsent(ctx, consentID)
		if err != nil {
			return nil, ConnectionRef{}, fmt.Errorf("failed to resolve consent %s: %w", consentID, err)
		}
		client, ok := s.clients[ref.ProviderID]
		if !ok {
			return nil, ref, fmt.Errorf("%w: no client configured for provider %s", ErrUnknownInstitution, ref.ProviderID)
		}
		return client, ref, nil
	}

	if len(s.clients) == 1 {
		for _, client := range s.clients {
			return client, ConnectionRef{ProviderID: client.Provider()}, nil
		}
	}
	return nil, ConnectionRef{}, fmt.Errorf("%w: cannot resolve provider for consent %s", ErrUnknownInstitution, consentID)
}
