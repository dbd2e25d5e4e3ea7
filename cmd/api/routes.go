package main

import (
	"net/http"

	httphandlers "askibill/internal/interfaces/http"
	"askibill/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with
// middleware.
func SetupRoutes(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Institution catalog is public
	mux.HandleFunc("/api/banking/institutions", deps.InstitutionHandler.HandleListInstitutions)

	// Connection routes require the gateway-forwarded user identity
	requireUser := middleware.RequireUser

	mux.Handle("/api/banking/connections", requireUser(http.HandlerFunc(deps.ConnectionHandler.HandleConnections)))
	mux.Handle("/api/banking/connections/{consentId}", requireUser(http.HandlerFunc(deps.ConnectionHandler.HandleConnectionStatus)))
	mux.Handle("/api/banking/connections/{consentId}/accounts/{accountId}/data", requireUser(http.HandlerFunc(deps.ConnectionHandler.HandleFetchAccountData)))

	// Apply global middleware
	return middleware.Logging(middleware.Tracing(middleware.SecurityHeaders(mux)))
}
