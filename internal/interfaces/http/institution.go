package http

import (
	"encoding/json"
	"net/http"

	"askibill/internal/domain/aggregation"
	"askibill/internal/domain/institution"
)

// InstitutionHandler exposes the institution catalog.
type InstitutionHandler struct {
	service *aggregation.Service
}

func NewInstitutionHandler(service *aggregation.Service) *InstitutionHandler {
	return &InstitutionHandler{service: service}
}

// defaultCountry scopes the catalog when the caller does not say otherwise.
const defaultCountry = "IN"

// HandleListInstitutions returns the active institutions for a country,
// optionally filtered by a search query and an account kind.
//
// GET /api/banking/institutions?country=IN&q=state&kind=savings
func (h *InstitutionHandler) HandleListInstitutions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	country := r.URL.Query().Get("country")
	if country == "" {
		country = defaultCountry
	}

	var list []institution.Institution
	if q := r.URL.Query().Get("q"); q != "" {
		list = h.service.SearchInstitutions(q, country)
	} else {
		list = h.service.ListInstitutions(country)
	}

	if kind := r.URL.Query().Get("kind"); kind != "" {
		list = institution.FilterByAccountKind(list, institution.AccountKind(kind))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}
