package institution

import "strings"

// Registry is a read-only catalog of supported institutions. All lookups are
// pure functions over the fixed table, so a single Registry is safe to share
// across requests.
type Registry struct {
	institutions []Institution
}

// NewRegistry returns a registry over the built-in institution table.
func NewRegistry() *Registry {
	return &Registry{institutions: defaultInstitutions}
}

// NewRegistryWith returns a registry over a caller-supplied table. Used by
// tests that need a small deterministic catalog.
func NewRegistryWith(institutions []Institution) *Registry {
	return &Registry{institutions: institutions}
}

// ListByCountry returns all active institutions for a country,
// preserving table order.
func (r *Registry) ListByCountry(country string) []Institution {
	var out []Institution
	for _, inst := range r.institutions {
		if inst.Active && strings.EqualFold(inst.Country, country) {
			out = append(out, inst)
		}
	}
	return out
}

// Search performs a case-insensitive substring match against institution id
// and display name, scoped to a country. An empty query returns the full
// country list.
func (r *Registry) Search(query, country string) []Institution {
	list := r.ListByCountry(country)
	if query == "" {
		return list
	}
	q := strings.ToLower(query)
	var out []Institution
	for _, inst := range list {
		if strings.Contains(strings.ToLower(inst.ID), q) ||
			strings.Contains(strings.ToLower(inst.DisplayName), q) {
			out = append(out, inst)
		}
	}
	return out
}

// Get returns the institution with the given id, active or not.
func (r *Registry) Get(id string) (Institution, bool) {
	for _, inst := range r.institutions {
		if inst.ID == id {
			return inst, true
		}
	}
	return Institution{}, false
}

// FilterByAccountKind keeps only institutions supporting the given
// account kind.
func FilterByAccountKind(list []Institution, kind AccountKind) []Institution {
	var out []Institution
	for _, inst := range list {
		if inst.Supports(kind) {
			out = append(out, inst)
		}
	}
	return out
}
