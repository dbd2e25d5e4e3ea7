package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"askibill/internal/domain/aggregation"
	"askibill/internal/domain/banking"
	"askibill/internal/domain/institution"
	"askibill/internal/infrastructure/aggregator"
	"askibill/internal/shared/middleware"
)

// mockClient implements aggregator.ClientInterface with function fields.
type mockClient struct {
	provider      string
	createConsent func(ctx context.Context, req aggregator.ConsentRequest) (*aggregator.ConsentGrant, error)
	checkStatus   func(ctx context.Context, consentID string) (*aggregator.ConsentStatusResult, error)
	fetchData     func(ctx context.Context, consentID, accountID string) (*aggregator.AccountData, error)
	providerCalls int
}

func (m *mockClient) Provider() string { return m.provider }

func (m *mockClient) CreateConsent(ctx context.Context, req aggregator.ConsentRequest) (*aggregator.ConsentGrant, error) {
	m.providerCalls++
	return m.createConsent(ctx, req)
}

func (m *mockClient) CheckStatus(ctx context.Context, consentID string) (*aggregator.ConsentStatusResult, error) {
	m.providerCalls++
	return m.checkStatus(ctx, consentID)
}

func (m *mockClient) FetchAccountData(ctx context.Context, consentID, accountID string) (*aggregator.AccountData, error) {
	m.providerCalls++
	return m.fetchData(ctx, consentID, accountID)
}

type mockConnectionRepo struct {
	created       []aggregation.Connection
	statusUpdates []aggregator.ConsentStatus
	byConsentID   map[string]*aggregation.Connection
	byUser        map[string][]aggregation.Connection
}

func newMockConnectionRepo() *mockConnectionRepo {
	return &mockConnectionRepo{
		byConsentID: make(map[string]*aggregation.Connection),
		byUser:      make(map[string][]aggregation.Connection),
	}
}

func (m *mockConnectionRepo) Create(ctx context.Context, conn aggregation.Connection) error {
	m.created = append(m.created, conn)
	return nil
}

func (m *mockConnectionRepo) UpdateStatus(ctx context.Context, consentID string, status aggregator.ConsentStatus, checkedAt time.Time) error {
	m.statusUpdates = append(m.statusUpdates, status)
	return nil
}

func (m *mockConnectionRepo) GetByConsentID(ctx context.Context, consentID string) (*aggregation.Connection, error) {
	return m.byConsentID[consentID], nil
}

func (m *mockConnectionRepo) ListByUser(ctx context.Context, userID string) ([]aggregation.Connection, error) {
	return m.byUser[userID], nil
}

type mockAccountRepo struct {
	upserted []banking.CanonicalAccount
}

func (m *mockAccountRepo) Upsert(ctx context.Context, userID string, account banking.CanonicalAccount) error {
	m.upserted = append(m.upserted, account)
	return nil
}

func (m *mockAccountRepo) ListByUser(ctx context.Context, userID string) ([]banking.CanonicalAccount, error) {
	return m.upserted, nil
}

type mockTransactionRepo struct {
	upserted []banking.CanonicalTransaction
}

func (m *mockTransactionRepo) UpsertBatch(ctx context.Context, userID string, transactions []banking.CanonicalTransaction) (int, error) {
	m.upserted = append(m.upserted, transactions...)
	return len(transactions), nil
}

func (m *mockTransactionRepo) ListByAccount(ctx context.Context, accountID string) ([]banking.CanonicalTransaction, error) {
	return m.upserted, nil
}

var handlerTestTable = []institution.Institution{
	{
		ID:          "sbi",
		DisplayName: "State Bank of India",
		Kind:        institution.KindBank,
		Country:     "IN",
		SupportedAccountKinds: []institution.AccountKind{
			institution.AccountSavings,
			institution.AccountChecking,
		},
		ProviderID:       "setu",
		SandboxAvailable: true,
		Active:           true,
	},
}

type handlerFixture struct {
	client       *mockClient
	service      *aggregation.Service
	connections  *mockConnectionRepo
	accounts     *mockAccountRepo
	transactions *mockTransactionRepo
	handler      *ConnectionHandler
}

func newHandlerFixture(client *mockClient) *handlerFixture {
	registry := institution.NewRegistryWith(handlerTestTable)
	service := aggregation.NewService(
		registry,
		map[string]aggregator.ClientInterface{client.provider: client},
		nil,
		aggregation.Options{},
	)

	f := &handlerFixture{
		client:       client,
		service:      service,
		connections:  newMockConnectionRepo(),
		accounts:     &mockAccountRepo{},
		transactions: &mockTransactionRepo{},
	}
	f.handler = NewConnectionHandler(service, f.connections, f.accounts, f.transactions)
	return f
}

func authedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("X-User-ID", "user-1")
	return req
}

func TestHandleCreateConnection(t *testing.T) {
	client := &mockClient{
		provider: "setu",
		createConsent: func(ctx context.Context, req aggregator.ConsentRequest) (*aggregator.ConsentGrant, error) {
			return &aggregator.ConsentGrant{
				ConsentID:   "consent-123",
				RedirectURL: "https://sandbox.setu.co/approve/consent-123",
			}, nil
		},
	}
	f := newHandlerFixture(client)

	body := []byte(`{"institutionId":"sbi"}`)
	req := authedRequest(http.MethodPost, "/api/banking/connections", body)
	rr := httptest.NewRecorder()

	middleware.RequireUser(http.HandlerFunc(f.handler.HandleConnections)).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var conn aggregation.Connection
	if err := json.NewDecoder(rr.Body).Decode(&conn); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if conn.ConsentID != "consent-123" {
		t.Errorf("consentId = %q, want %q", conn.ConsentID, "consent-123")
	}
	if conn.Status != aggregator.StatusPending {
		t.Errorf("status = %q, want %q", conn.Status, aggregator.StatusPending)
	}
	if conn.RedirectURL == "" {
		t.Error("redirectUrl is empty")
	}

	if len(f.connections.created) != 1 {
		t.Fatalf("persisted %d connections, want 1", len(f.connections.created))
	}
	if f.connections.created[0].UserID != "user-1" {
		t.Errorf("persisted userId = %q, want %q", f.connections.created[0].UserID, "user-1")
	}
}

func TestHandleCreateConnection_Validation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"missing institution id", `{}`, http.StatusBadRequest},
		{"invalid json", `{`, http.StatusBadRequest},
		{"unknown institution", `{"institutionId":"nonexistent"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{provider: "setu"}
			f := newHandlerFixture(client)

			req := authedRequest(http.MethodPost, "/api/banking/connections", []byte(tt.body))
			rr := httptest.NewRecorder()

			middleware.RequireUser(http.HandlerFunc(f.handler.HandleConnections)).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if client.providerCalls != 0 {
				t.Errorf("provider was called %d times, want 0", client.providerCalls)
			}
			if len(f.connections.created) != 0 {
				t.Errorf("persisted %d connections, want 0", len(f.connections.created))
			}
		})
	}
}

func TestHandleCreateConnection_Unauthorized(t *testing.T) {
	f := newHandlerFixture(&mockClient{provider: "setu"})

	req := httptest.NewRequest(http.MethodPost, "/api/banking/connections", bytes.NewReader([]byte(`{"institutionId":"sbi"}`)))
	rr := httptest.NewRecorder()

	middleware.RequireUser(http.HandlerFunc(f.handler.HandleConnections)).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestHandleCreateConnection_ProviderFailure(t *testing.T) {
	client := &mockClient{
		provider: "setu",
		createConsent: func(ctx context.Context, req aggregator.ConsentRequest) (*aggregator.ConsentGrant, error) {
			return nil, &aggregator.ProviderError{
				Kind:       aggregator.ErrConsentCreation,
				Provider:   "setu",
				StatusCode: http.StatusBadGateway,
				Message:    "upstream unavailable",
			}
		},
	}
	f := newHandlerFixture(client)

	req := authedRequest(http.MethodPost, "/api/banking/connections", []byte(`{"institutionId":"sbi"}`))
	rr := httptest.NewRecorder()

	middleware.RequireUser(http.HandlerFunc(f.handler.HandleConnections)).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadGateway)
	}
}

func TestHandleListConnections(t *testing.T) {
	f := newHandlerFixture(&mockClient{provider: "setu"})
	f.connections.byUser["user-1"] = []aggregation.Connection{
		{ConsentID: "consent-1", InstitutionID: "sbi", UserID: "user-1", Status: aggregator.StatusActive},
	}

	req := authedRequest(http.MethodGet, "/api/banking/connections", nil)
	rr := httptest.NewRecorder()

	middleware.RequireUser(http.HandlerFunc(f.handler.HandleConnections)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var conns []aggregation.Connection
	if err := json.NewDecoder(rr.Body).Decode(&conns); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(conns) != 1 || conns[0].ConsentID != "consent-1" {
		t.Errorf("unexpected connections: %+v", conns)
	}
}

func TestHandleConnectionStatus_Active(t *testing.T) {
	client := &mockClient{
		provider: "setu",
		checkStatus: func(ctx context.Context, consentID string) (*aggregator.ConsentStatusResult, error) {
			return &aggregator.ConsentStatusResult{
				Status: aggregator.StatusActive,
				Accounts: []banking.CanonicalAccount{
					{ExternalAccountID: "acc-1", AccountKind: banking.KindSavings, Currency: "INR"},
				},
			}, nil
		},
	}
	f := newHandlerFixture(client)
	f.connections.byConsentID["consent-123"] = &aggregation.Connection{
		ConsentID: "consent-123",
		UserID:    "user-1",
		Status:    aggregator.StatusPending,
	}

	req := authedRequest(http.MethodGet, "/api/banking/connections/consent-123", nil)
	req.SetPathValue("consentId", "consent-123")
	rr := httptest.NewRecorder()

	middleware.RequireUser(http.HandlerFunc(f.handler.HandleConnectionStatus)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp ConnectionStatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != aggregator.StatusActive {
		t.Errorf("status = %q, want %q", resp.Status, aggregator.StatusActive)
	}
	if !resp.Terminal {
		t.Error("terminal = false, want true for ACTIVE")
	}
	if len(resp.Accounts) != 1 {
		t.Fatalf("accounts = %d, want 1", len(resp.Accounts))
	}

	if len(f.accounts.upserted) != 1 {
		t.Errorf("upserted %d accounts, want 1", len(f.accounts.upserted))
	}
	if len(f.connections.statusUpdates) != 1 || f.connections.statusUpdates[0] != aggregator.StatusActive {
		t.Errorf("status updates = %v, want [ACTIVE]", f.connections.statusUpdates)
	}
}

func TestHandleConnectionStatus_NotFound(t *testing.T) {
	tests := []struct {
		name      string
		consentID string
		stored    *aggregation.Connection
	}{
		{"unknown consent", "consent-999", nil},
		{
			"other user's consent",
			"consent-123",
			&aggregation.Connection{ConsentID: "consent-123", UserID: "someone-else"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{provider: "setu"}
			f := newHandlerFixture(client)
			if tt.stored != nil {
				f.connections.byConsentID[tt.stored.ConsentID] = tt.stored
			}

			req := authedRequest(http.MethodGet, "/api/banking/connections/"+tt.consentID, nil)
			req.SetPathValue("consentId", tt.consentID)
			rr := httptest.NewRecorder()

			middleware.RequireUser(http.HandlerFunc(f.handler.HandleConnectionStatus)).ServeHTTP(rr, req)

			if rr.Code != http.StatusNotFound {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
			}
			if client.providerCalls != 0 {
				t.Errorf("provider was called %d times, want 0", client.providerCalls)
			}
		})
	}
}

func TestHandleFetchAccountData(t *testing.T) {
	client := &mockClient{
		provider: "setu",
		fetchData: func(ctx context.Context, consentID, accountID string) (*aggregator.AccountData, error) {
			return &aggregator.AccountData{
				Account: banking.CanonicalAccount{
					ExternalAccountID: accountID,
					AccountKind:       banking.KindSavings,
					CurrentBalance:    1234.50,
					Currency:          "INR",
				},
				Transactions: []banking.CanonicalTransaction{
					{
						ExternalTransactionID: "txn-1",
						AccountID:             accountID,
						Amount:                250,
						Direction:             banking.DirectionDebit,
						Description:           "grocery store",
						Category:              "Food & Dining",
					},
				},
			}, nil
		},
	}
	f := newHandlerFixture(client)
	f.connections.byConsentID["consent-123"] = &aggregation.Connection{
		ConsentID: "consent-123",
		UserID:    "user-1",
		Status:    aggregator.StatusActive,
	}

	req := authedRequest(http.MethodGet, "/api/banking/connections/consent-123/accounts/acc-1/data", nil)
	req.SetPathValue("consentId", "consent-123")
	req.SetPathValue("accountId", "acc-1")
	rr := httptest.NewRecorder()

	middleware.RequireUser(http.HandlerFunc(f.handler.HandleFetchAccountData)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp AccountDataResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Account.ExternalAccountID != "acc-1" {
		t.Errorf("account id = %q, want %q", resp.Account.ExternalAccountID, "acc-1")
	}
	if resp.NewTransactions != 1 {
		t.Errorf("newTransactions = %d, want 1", resp.NewTransactions)
	}

	if len(f.accounts.upserted) != 1 {
		t.Errorf("upserted %d accounts, want 1", len(f.accounts.upserted))
	}
	if len(f.transactions.upserted) != 1 {
		t.Errorf("upserted %d transactions, want 1", len(f.transactions.upserted))
	}
}

func TestHandleFetchAccountData_MalformedPayload(t *testing.T) {
	client := &mockClient{
		provider: "setu",
		fetchData: func(ctx context.Context, consentID, accountID string) (*aggregator.AccountData, error) {
			return nil, banking.ErrMalformedPayload
		},
	}
	f := newHandlerFixture(client)
	f.connections.byConsentID["consent-123"] = &aggregation.Connection{
		ConsentID: "consent-123",
		UserID:    "user-1",
	}

	req := authedRequest(http.MethodGet, "/api/banking/connections/consent-123/accounts/acc-1/data", nil)
	req.SetPathValue("consentId", "consent-123")
	req.SetPathValue("accountId", "acc-1")
	rr := httptest.NewRecorder()

	middleware.RequireUser(http.HandlerFunc(f.handler.HandleFetchAccountData)).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadGateway)
	}
	if len(f.accounts.upserted) != 0 {
		t.Errorf("upserted %d accounts, want 0", len(f.accounts.upserted))
	}
}

func TestHandleFetchAccountData_Timeout(t *testing.T) {
	client := &mockClient{
		provider: "setu",
		fetchData: func(ctx context.Context, consentID, accountID string) (*aggregator.AccountData, error) {
			return nil, &aggregator.ProviderError{
				Kind:     aggregator.ErrDataFetch,
				Provider: "setu",
				Err:      context.DeadlineExceeded,
			}
		},
	}
	f := newHandlerFixture(client)
	f.connections.byConsentID["consent-123"] = &aggregation.Connection{
		ConsentID: "consent-123",
		UserID:    "user-1",
	}

	req := authedRequest(http.MethodGet, "/api/banking/connections/consent-123/accounts/acc-1/data", nil)
	req.SetPathValue("consentId", "consent-123")
	req.SetPathValue("accountId", "acc-1")
	rr := httptest.NewRecorder()

	middleware.RequireUser(http.HandlerFunc(f.handler.HandleFetchAccountData)).ServeHTTP(rr, req)

	if rr.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusGatewayTimeout)
	}
}
