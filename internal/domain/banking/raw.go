package banking

// Permissive intermediate schema for provider payloads. Every field is
// optional and numerics stay strings until normalization, so decoding never
// fails on provider quirks; validation happens in normalize.go.

// RawAccount mirrors the Account block of the provider's session data and
// consent status responses.
type RawAccount struct {
	AccRefNumber     string `json:"accRefNumber"`
	FIType           string `json:"FIType"`
	AccType          string `json:"accType"`
	MaskedAccNumber  string `json:"maskedAccNumber"`
	AccHolderName    string `json:"accHolderName"`
	CurrentBalance   string `json:"currentBalance"`
	AvailableBalance string `json:"availableBalance"`
	Currency         string `json:"currency"`
}

// RawTransaction mirrors one entry of the Transactions array. Providers are
// split between narration/description and valueDate/transactionTimestamp, so
// both spellings are kept.
type RawTransaction struct {
	TxnID                string `json:"txnId"`
	Amount               string `json:"amount"`
	Narration            string `json:"narration"`
	Description          string `json:"description"`
	ValueDate            string `json:"valueDate"`
	TransactionTimestamp string `json:"transactionTimestamp"`
	Balance              string `json:"balance"`
	MerchantName         string `json:"merchantName"`
}
