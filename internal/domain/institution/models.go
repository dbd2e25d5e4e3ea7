package institution

// Kind classifies the institution itself, not the accounts it holds.
type Kind string

const (
	KindBank        Kind = "bank"
	KindCreditUnion Kind = "credit_union"
	KindInvestment  Kind = "investment"
	KindInsurance   Kind = "insurance"
)

// AccountKind tags the account products an institution can share
// through the aggregator.
type AccountKind string

const (
	AccountSavings    AccountKind = "savings"
	AccountChecking   AccountKind = "checking"
	AccountCreditCard AccountKind = "credit_card"
	AccountLoan       AccountKind = "loan"
	AccountInvestment AccountKind = "investment"
)

// Institution is one connectable financial entity. Loaded once at startup
// from the static table in registry.go and never mutated.
type Institution struct {
	ID                    string        `json:"id"`
	DisplayName           string        `json:"displayName"`
	Kind                  Kind          `json:"kind"`
	Country               string        `json:"country"`
	SupportedAccountKinds []AccountKind `json:"supportedAccountKinds"`
	ProviderID            string        `json:"providerId,omitempty"` // empty means manual entry only
	RequiresExternalAuth  bool          `json:"requiresExternalAuth"`
	SandboxAvailable      bool          `json:"sandboxAvailable"`
	Active                bool          `json:"active"`
}

// Supports reports whether the institution exposes the given account kind.
func (i Institution) Supports(kind AccountKind) bool {
	for _, k := range i.SupportedAccountKinds {
		if k == kind {
			return true
		}
	}
	return false
}
