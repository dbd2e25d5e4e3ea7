package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"askibill/internal/domain/banking"
)

const (
	defaultTimeout = 15 * time.Second
	consentsPath   = "/consents"
	sessionsPath   = "/sessions"

	// Fixed protocol constants for the consent payload.
	consentMode = "STORE"
	fetchType   = "PERIODIC"
	purposeCode = "101"

	// Default data windows when the caller does not provide one.
	defaultConsentRangeDays = 365
	defaultSessionRangeDays = 90
)

// ErrInvalidConsentRequest marks a ConsentRequest that fails validation
// before any network call.
var ErrInvalidConsentRequest = errors.New("invalid consent request")

// Config holds one provider integration's endpoint and credentials.
// Read-only after construction; safe for concurrent use.
type Config struct {
	Provider     string // provider id, e.g. "setu"
	BaseURL      string
	APIKey       string
	ClientID     string
	ClientSecret string
	ConsumerID   string // our DataConsumer id registered with the provider
	Timeout      time.Duration
}

// Client drives the three-step consent protocol against one upstream
// aggregator. It holds no per-consent state: every call is resolved entirely
// by the upstream provider.
type Client struct {
	httpClient *http.Client
	cfg        Config
	now        func() time.Time
}

var _ ClientInterface = (*Client)(nil)

// NewClient creates a provider client from explicit configuration.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
		now:        time.Now,
	}
}

// Provider returns the provider id this client talks to.
func (c *Client) Provider() string {
	return c.cfg.Provider
}

// ConsentRequest is the input to CreateConsent.
type ConsentRequest struct {
	UserID              string
	InstitutionID       string
	ConsentScopes       []string // data categories, e.g. PROFILE, SUMMARY, TRANSACTIONS
	ConsentDurationDays int
	DataRetentionDays   int
	DataRangeFrom       time.Time // optional; defaults to trailing 365 days
	DataRangeTo         time.Time
}

// Validate checks the request invariants before any network call.
func (r ConsentRequest) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidConsentRequest)
	}
	if len(r.ConsentScopes) == 0 {
		return fmt.Errorf("%w: at least one consent scope is required", ErrInvalidConsentRequest)
	}
	if r.ConsentDurationDays <= 0 {
		return fmt.Errorf("%w: consentDurationDays must be positive", ErrInvalidConsentRequest)
	}
	if r.DataRetentionDays <= 0 {
		return fmt.Errorf("%w: dataRetentionDays must be positive", ErrInvalidConsentRequest)
	}
	return nil
}

// ConsentGrant is the upstream's answer to a successful consent creation.
// The end user must visit RedirectURL to approve the consent out-of-band.
type ConsentGrant struct {
	ConsentID   string `json:"consentId"`
	RedirectURL string `json:"redirectUrl"`
}

// ConsentStatus is the upstream-reported consent state.
type ConsentStatus string

const (
	StatusPending  ConsentStatus = "PENDING"
	StatusActive   ConsentStatus = "ACTIVE"
	StatusExpired  ConsentStatus = "EXPIRED"
	StatusRejected ConsentStatus = "REJECTED"
	// StatusError is our catch-all for unrecognized or missing status
	// strings. Distinct from EXPIRED/REJECTED: it may be a transient
	// upstream fault, so callers may keep polling.
	StatusError ConsentStatus = "ERROR"
)

// Terminal reports whether polling can stop. StatusError is not terminal.
func (s ConsentStatus) Terminal() bool {
	return s == StatusActive || s == StatusExpired || s == StatusRejected
}

// ConsentStatusResult is the outcome of one status poll. Accounts is
// populated only when the consent is active.
type ConsentStatusResult struct {
	Status   ConsentStatus              `json:"status"`
	Accounts []banking.CanonicalAccount `json:"accounts,omitempty"`
}

// AccountData is one normalized account snapshot with its transactions.
type AccountData struct {
	Account      banking.CanonicalAccount       `json:"account"`
	Transactions []banking.CanonicalTransaction `json:"transactions"`
}

// Wire types. All response fields are optional so decoding never fails on
// provider variations; validation happens after decode.

type idBlock struct {
	ID string `json:"id"`
}

type purposeBlock struct {
	Code string `json:"code"`
}

type dateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type unitValue struct {
	Unit  string `json:"unit"`
	Value int    `json:"value"`
}

type consentPayload struct {
	ConsentStart  string       `json:"consentStart"`
	ConsentExpiry string       `json:"consentExpiry"`
	ConsentMode   string       `json:"consentMode"`
	FetchType     string       `json:"fetchType"`
	ConsentTypes  []string     `json:"consentTypes"`
	FiTypes       []string     `json:"fiTypes"`
	DataConsumer  idBlock      `json:"DataConsumer"`
	Customer      idBlock      `json:"Customer"`
	Purpose       purposeBlock `json:"Purpose"`
	FIDataRange   dateRange    `json:"FIDataRange"`
	DataLife      unitValue    `json:"DataLife"`
	Frequency     unitValue    `json:"Frequency"`
}

type consentResponse struct {
	ConsentHandle string `json:"consentHandle"`
	ConsentID     string `json:"ConsentId"`
	RedirectURL   string `json:"redirectUrl"`
}

type consentStatusResponse struct {
	ConsentStatus string               `json:"ConsentStatus"`
	Accounts      []banking.RawAccount `json:"accounts"`
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
	ID        string `json:"id"`
}

type sessionDataResponse struct {
	Account      banking.RawAccount       `json:"Account"`
	Transactions []banking.RawTransaction `json:"Transactions"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// fiTypes requested on every consent. Deposit products cover the account
// kinds the expense tracker consumes.
var consentFiTypes = []string{"DEPOSIT", "TERM_DEPOSIT", "RECURRING_DEPOSIT"}

// CreateConsent builds the consent payload and POSTs it to the provider.
// Returns the upstream-assigned consent id and the redirect URL the end user
// must visit to approve the consent. No retries: transient failures surface
// to the caller.
func (c *Client) CreateConsent(ctx context.Context, req ConsentRequest) (*ConsentGrant, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := c.now()
	from, to := req.DataRangeFrom, req.DataRangeTo
	if from.IsZero() || to.IsZero() {
		from = now.AddDate(0, 0, -defaultConsentRangeDays)
		to = now
	}

	scopes := make([]string, len(req.ConsentScopes))
	for i, s := range req.ConsentScopes {
		scopes[i] = strings.ToUpper(s)
	}

	payload := consentPayload{
		ConsentStart:  now.Format(time.RFC3339),
		ConsentExpiry: now.AddDate(0, 0, req.ConsentDurationDays).Format(time.RFC3339),
		ConsentMode:   consentMode,
		FetchType:     fetchType,
		ConsentTypes:  scopes,
		FiTypes:       consentFiTypes,
		DataConsumer:  idBlock{ID: c.cfg.ConsumerID},
		Customer:      idBlock{ID: req.UserID},
		Purpose:       purposeBlock{Code: purposeCode},
		FIDataRange:   dateRange{From: from.Format(time.RFC3339), To: to.Format(time.RFC3339)},
		DataLife:      unitValue{Unit: "DAY", Value: req.DataRetentionDays},
		Frequency:     unitValue{Unit: "DAY", Value: 1},
	}

	status, body, err := c.doRequest(ctx, http.MethodPost, consentsPath, payload)
	if err != nil {
		return nil, c.providerError(ErrConsentCreation, "", 0, "", err)
	}
	if status < 200 || status > 299 {
		return nil, c.providerError(ErrConsentCreation, "", status, decodeErrorMessage(body), nil)
	}

	var resp consentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.providerError(ErrConsentCreation, "", status, "unparsable response body", err)
	}

	consentID := resp.ConsentHandle
	if consentID == "" {
		consentID = resp.ConsentID
	}
	if consentID == "" {
		return nil, c.providerError(ErrConsentCreation, "", status, "response carried no consent id", nil)
	}

	return &ConsentGrant{ConsentID: consentID, RedirectURL: resp.RedirectURL}, nil
}

// CheckStatus polls the upstream consent state. Transitions are driven
// entirely by upstream responses; nothing is inferred locally, and each poll
// is a pure read safe to repeat.
func (c *Client) CheckStatus(ctx context.Context, consentID string) (*ConsentStatusResult, error) {
	status, body, err := c.doRequest(ctx, http.MethodGet, consentsPath+"/"+consentID, nil)
	if err != nil {
		return nil, c.providerError(ErrStatusCheck, consentID, 0, "", err)
	}
	if status < 200 || status > 299 {
		return nil, c.providerError(ErrStatusCheck, consentID, status, decodeErrorMessage(body), nil)
	}

	var resp consentStatusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.providerError(ErrStatusCheck, consentID, status, "unparsable response body", err)
	}

	result := &ConsentStatusResult{Status: mapConsentStatus(resp.ConsentStatus)}
	if result.Status != StatusActive {
		return result, nil
	}

	asOf := c.now()
	for _, raw := range resp.Accounts {
		acct, err := banking.ToCanonicalAccount("", raw, asOf)
		if err != nil {
			return nil, err
		}
		result.Accounts = append(result.Accounts, *acct)
	}
	return result, nil
}

// FetchAccountData opens a short-lived data session for the consent and
// retrieves the normalized account snapshot plus transactions. Repeated calls
// return a fresh snapshot; nothing is cached here.
func (c *Client) FetchAccountData(ctx context.Context, consentID, accountID string) (*AccountData, error) {
	now := c.now()
	sessionReq := struct {
		ConsentID string    `json:"consentId"`
		DataRange dateRange `json:"DataRange"`
	}{
		ConsentID: consentID,
		DataRange: dateRange{
			From: now.AddDate(0, 0, -defaultSessionRangeDays).Format(time.RFC3339),
			To:   now.Format(time.RFC3339),
		},
	}

	status, body, err := c.doRequest(ctx, http.MethodPost, sessionsPath, sessionReq)
	if err != nil {
		return nil, c.providerError(ErrSessionCreation, consentID, 0, "", err)
	}
	if status < 200 || status > 299 {
		return nil, c.providerError(ErrSessionCreation, consentID, status, decodeErrorMessage(body), nil)
	}

	var sess sessionResponse
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, c.providerError(ErrSessionCreation, consentID, status, "unparsable response body", err)
	}
	sessionID := sess.SessionID
	if sessionID == "" {
		sessionID = sess.ID
	}
	if sessionID == "" {
		return nil, c.providerError(ErrSessionCreation, consentID, status, "response carried no session id", nil)
	}

	status, body, err = c.doRequest(ctx, http.MethodGet, sessionsPath+"/"+sessionID+"/data", nil)
	if err != nil {
		return nil, c.providerError(ErrDataFetch, consentID, 0, "", err)
	}
	if status < 200 || status > 299 {
		return nil, c.providerError(ErrDataFetch, consentID, status, decodeErrorMessage(body), nil)
	}

	var data sessionDataResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, c.providerError(ErrDataFetch, consentID, status, "unparsable response body", err)
	}

	account, err := banking.ToCanonicalAccount("", data.Account, c.now())
	if err != nil {
		return nil, err
	}
	if accountID != "" && account.ExternalAccountID != accountID {
		return nil, c.providerError(ErrDataFetch, consentID, status,
			fmt.Sprintf("session returned account %s, requested %s", account.ExternalAccountID, accountID), nil)
	}

	transactions, err := banking.ToCanonicalTransactions(account.ExternalAccountID, data.Transactions)
	if err != nil {
		return nil, err
	}

	return &AccountData{Account: *account, Transactions: transactions}, nil
}

func mapConsentStatus(raw string) ConsentStatus {
	switch strings.ToUpper(raw) {
	case "ACTIVE":
		return StatusActive
	case "PENDING":
		return StatusPending
	case "EXPIRED":
		return StatusExpired
	case "REJECTED":
		return StatusRejected
	default:
		return StatusError
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.ClientID != "" {
		req.Header.Set("x-client-id", c.cfg.ClientID)
	}
	if c.cfg.ClientSecret != "" {
		req.Header.Set("x-client-secret", c.cfg.ClientSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func decodeErrorMessage(body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return strings.TrimSpace(string(body))
	}
	if errResp.Message != "" {
		return errResp.Message
	}
	return errResp.Error
}

func (c *Client) providerError(kind error, consentID string, status int, message string, cause error) *ProviderError {
	return &ProviderError{
		Kind:       kind,
		Provider:   c.cfg.Provider,
		ConsentID:  consentID,
		StatusCode: status,
		Message:    message,
		Err:        cause,
	}
}
