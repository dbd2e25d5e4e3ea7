package institution

// Provider ids handled by the aggregator clients.
const (
	ProviderSetu    = "setu"
	ProviderYodlee  = "yodlee"
	ProviderAnumati = "anumati"
)

var allKinds = []AccountKind{AccountSavings, AccountChecking, AccountCreditCard, AccountLoan, AccountInvestment}

var depositKinds = []AccountKind{AccountSavings, AccountChecking}

// defaultInstitutions is the static catalog. Order matters: ListByCountry and
// Search preserve it, and callers display it as-is.
var defaultInstitutions = []Institution{
	{
		ID:                    "sbi",
		DisplayName:           "State Bank of India",
		Kind:                  KindBank,
		Country:               "IN",
		SupportedAccountKinds: allKinds,
		ProviderID:            ProviderSetu,
		RequiresExternalAuth:  true,
		SandboxAvailable:      true,
		Active:                true,
	},
	{
		ID:                    "hdfc",
		DisplayName:           "HDFC Bank",
		Kind:                  KindBank,
		Country:               "IN",
		SupportedAccountKinds: allKinds,
		ProviderID:            ProviderSetu,
		RequiresExternalAuth:  true,
		SandboxAvailable:      true,
		Active:                true,
	},
	{
		ID:                    "icici",
		DisplayName:           "ICICI Bank",
		Kind:                  KindBank,
		Country:               "IN",
		SupportedAccountKinds: allKinds,
		ProviderID:            ProviderSetu,
		RequiresExternalAuth:  true,
		SandboxAvailable:      true,
		Active:                true,
	},
	{
		ID:                    "axis",
		DisplayName:           "Axis Bank",
		Kind:                  KindBank,
		Country:               "IN",
		SupportedAccountKinds: []AccountKind{AccountSavings, AccountChecking, AccountCreditCard},
		ProviderID:            ProviderSetu,
		RequiresExternalAuth:  true,
		SandboxAvailable:      true,
		Active:                true,
	},
	{
		ID:                    "kotak",
		DisplayName:           "Kotak Mahindra Bank",
		Kind:                  KindBank,
		Country:               "IN",
		SupportedAccountKinds: []AccountKind{AccountSavings, AccountChecking, AccountCreditCard, AccountInvestment},
		ProviderID:            ProviderSetu,
		RequiresExternalAuth:  true,
		SandboxAvailable:      true,
		Active:                true,
	},
	{
		ID:                    "pnb",
		DisplayName:           "Punjab National Bank",
		Kind:                  KindBank,
		Country:               "IN",
		SupportedAccountKinds: depositKinds,
		ProviderID:            ProviderAnumati,
		RequiresExternalAuth:  true,
		SandboxAvailable:      true,
		Active:                true,
	},
	{
		ID:                    "bob",
		DisplayName:           "Bank of Baroda",
		Kind:                  KindBank,
		Country:               "IN",
		SupportedAccountKinds: depositKinds,
		ProviderID:            ProviderAnumati,
		RequiresExternalAuth:  true,
		SandboxAvailable:      true,
		Active:                true,
	},
	{
		ID:                    "canara",
		DisplayName:           "Canara Bank",
		Kind:                  KindBank,
		Country:               "IN",
		SupportedAccountKinds: depositKinds,
		ProviderID:            ProviderSetu,
		RequiresExternalAuth:  true,
		SandboxAvailable:      false,
		Active:                true,
	},
	{
		ID:                    "yes",
		DisplayName:           "Yes Bank",
		Kind:                  KindBank,
		Country:               "IN",
		SupportedAccountKinds: []AccountKind{AccountSavings, AccountChecking, AccountCreditCard},
		ProviderID:            ProviderYodlee,
		RequiresExternalAuth:  true,
		SandboxAvailable:      true,
		Active:                true,
	},
	{
		ID:                    "indusind",
		DisplayName:           "IndusInd Bank",
		Kind:                  KindBank,
		Country:               "IN",
		SupportedAccountKinds: []AccountKind{AccountSavings, AccountChecking, AccountCreditCard},
		ProviderID:            ProviderYodlee,
		RequiresExternalAuth:  true,
		SandboxAvailable:      false,
		Active:                true,
	},
	{
		ID:                    "union",
		DisplayName:           "Union Bank of India",
		Kind:                  KindBank,
		Country:               "IN",
		SupportedAccountKinds: depositKinds,
		ProviderID:            ProviderAnumati,
		RequiresExternalAuth:  true,
		SandboxAvailable:      true,
		Active:                true,
	},
	{
		ID:                    "indian",
		DisplayName:           "Indian Bank",
		Kind:                  KindBank,
		Country:               "IN",
		SupportedAccountKinds: depositKinds,
		ProviderID:            ProviderAnumati,
		RequiresExternalAuth:  true,
		SandboxAvailable:      false,
		Active:                true,
	},
	{
		ID:                    "zerodha",
		DisplayName:           "Zerodha Broking",
		Kind:                  KindInvestment,
		Country:               "IN",
		SupportedAccountKinds: []AccountKind{AccountInvestment},
		ProviderID:            "",
		RequiresExternalAuth:  false,
		SandboxAvailable:      false,
		Active:                true,
	},
	{
		ID:                    "saraswat",
		DisplayName:           "Saraswat Co-operative Bank",
		Kind:                  KindCreditUnion,
		Country:               "IN",
		SupportedAccountKinds: depositKinds,
		ProviderID:            "",
		RequiresExternalAuth:  false,
		SandboxAvailable:      false,
		Active:                false,
	},
}
