package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"askibill/internal/domain/aggregation"
	"askibill/internal/domain/banking"
	"askibill/internal/infrastructure/aggregator"
	"askibill/internal/shared/middleware"
)

// ConnectionHandler drives the consent lifecycle over HTTP and persists
// whatever the upstream providers report.
type ConnectionHandler struct {
	service      *aggregation.Service
	connections  aggregation.ConnectionRepository
	accounts     banking.AccountRepository
	transactions banking.TransactionRepository
}

func NewConnectionHandler(
	service *aggregation.Service,
	connections aggregation.ConnectionRepository,
	accounts banking.AccountRepository,
	transactions banking.TransactionRepository,
) *ConnectionHandler {
	return &ConnectionHandler{
		service:      service,
		connections:  connections,
		accounts:     accounts,
		transactions: transactions,
	}
}

type CreateConnectionRequest struct {
	InstitutionID string `json:"institutionId"`
}

type ConnectionStatusResponse struct {
	ConsentID string                     `json:"consentId"`
	Status    aggregator.ConsentStatus   `json:"status"`
	Terminal  bool                       `json:"terminal"`
	Accounts  []banking.CanonicalAccount `json:"accounts,omitempty"`
}

type AccountDataResponse struct {
	Account         banking.CanonicalAccount       `json:"account"`
	Transactions    []banking.CanonicalTransaction `json:"transactions"`
	NewTransactions int                            `json:"newTransactions"`
	FetchedAt       time.Time                      `json:"fetchedAt"`
}

// HandleConnections lists the user's connections (GET) or initiates a new
// one (POST).
func (h *ConnectionHandler) HandleConnections(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleListConnections(w, r, userID)
	case http.MethodPost:
		h.handleCreateConnection(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ConnectionHandler) handleListConnections(w http.ResponseWriter, r *http.Request, userID string) {
	conns, err := h.connections.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing connections for user %s: %v", userID, err)
		http.Error(w, "Failed to list connections", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conns)
}

func (h *ConnectionHandler) handleCreateConnection(w http.ResponseWriter, r *http.Request, userID string) {
	var req CreateConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.InstitutionID == "" {
		http.Error(w, "institutionId is required", http.StatusBadRequest)
		return
	}

	conn, err := h.service.InitiateConnection(r.Context(), userID, req.InstitutionID)
	if err != nil {
		writeAggregationError(w, err)
		return
	}

	if err := h.connections.Create(r.Context(), *conn); err != nil {
		log.Printf("Error persisting connection %s: %v", conn.ConsentID, err)
		http.Error(w, "Failed to save connection", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(conn)
}

// HandleConnectionStatus polls the upstream consent state for one
// connection and records the result.
//
// GET /api/banking/connections/{consentId}
func (h *ConnectionHandler) HandleConnectionStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	consentID := r.PathValue("consentId")
	conn, err := h.ownedConnection(r.Context(), consentID, userID)
	if err != nil {
		log.Printf("Error loading connection %s: %v", consentID, err)
		http.Error(w, "Failed to load connection", http.StatusInternalServerError)
		return
	}
	if conn == nil {
		http.Error(w, "Connection not found", http.StatusNotFound)
		return
	}

	result, err := h.service.GetConnectionStatus(r.Context(), consentID)
	if err != nil {
		writeAggregationError(w, err)
		return
	}

	if err := h.connections.UpdateStatus(r.Context(), consentID, result.Status, time.Now()); err != nil {
		// Upstream answered; a stale local record is not worth failing
		// the request over.
		log.Printf("Error updating status for connection %s: %v", consentID, err)
	}

	for _, account := range result.Accounts {
		if err := h.accounts.Upsert(r.Context(), userID, account); err != nil {
			log.Printf("Error saving account %s: %v", account.ExternalAccountID, err)
			http.Error(w, "Failed to save accounts", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ConnectionStatusResponse{
		ConsentID: consentID,
		Status:    result.Status,
		Terminal:  result.Status.Terminal(),
		Accounts:  result.Accounts,
	})
}

// HandleFetchAccountData pulls one account's data through the consent and
// persists the normalized snapshot.
//
// GET /api/banking/connections/{consentId}/accounts/{accountId}/data
func (h *ConnectionHandler) HandleFetchAccountData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	consentID := r.PathValue("consentId")
	accountID := r.PathValue("accountId")

	conn, err := h.ownedConnection(r.Context(), consentID, userID)
	if err != nil {
		log.Printf("Error loading connection %s: %v", consentID, err)
		http.Error(w, "Failed to load connection", http.StatusInternalServerError)
		return
	}
	if conn == nil {
		http.Error(w, "Connection not found", http.StatusNotFound)
		return
	}

	data, err := h.service.FetchAccountData(r.Context(), consentID, accountID)
	if err != nil {
		writeAggregationError(w, err)
		return
	}

	if err := h.accounts.Upsert(r.Context(), userID, data.Account); err != nil {
		log.Printf("Error saving account %s: %v", data.Account.ExternalAccountID, err)
		http.Error(w, "Failed to save account", http.StatusInternalServerError)
		return
	}

	inserted, err := h.transactions.UpsertBatch(r.Context(), userID, data.Transactions)
	if err != nil {
		log.Printf("Error saving transactions for account %s: %v", accountID, err)
		http.Error(w, "Failed to save transactions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AccountDataResponse{
		Account:         data.Account,
		Transactions:    data.Transactions,
		NewTransactions: inserted,
		FetchedAt:       time.Now(),
	})
}

// ownedConnection loads a connection and hides other users' records behind
// a not-found answer.
func (h *ConnectionHandler) ownedConnection(ctx context.Context, consentID, userID string) (*aggregation.Connection, error) {
	if consentID == "" {
		return nil, nil
	}
	conn, err := h.connections.GetByConsentID(ctx, consentID)
	if err != nil {
		return nil, err
	}
	if conn == nil || conn.UserID != userID {
		return nil, nil
	}
	return conn, nil
}

// writeAggregationError translates the aggregation error taxonomy into
// HTTP statuses.
func writeAggregationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, aggregation.ErrUnknownInstitution):
		http.Error(w, "Unknown institution", http.StatusNotFound)
	case errors.Is(err, aggregator.ErrInvalidConsentRequest):
		http.Error(w, "Invalid consent request", http.StatusBadRequest)
	case errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "Provider timed out", http.StatusGatewayTimeout)
	case errors.Is(err, banking.ErrMalformedPayload):
		http.Error(w, "Provider returned malformed data", http.StatusBadGateway)
	case errors.Is(err, aggregator.ErrConsentCreation),
		errors.Is(err, aggregator.ErrStatusCheck),
		errors.Is(err, aggregator.ErrSessionCreation),
		errors.Is(err, aggregator.ErrDataFetch):
		log.Printf("Provider error: %v", err)
		http.Error(w, "Provider request failed", http.StatusBadGateway)
	default:
		log.Printf("Aggregation error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
