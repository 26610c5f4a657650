package domain

// Credit/debit indicator values used by the bank's transaction API.
const (
	IndicatorDebit  = "DBIT"
	IndicatorCredit = "CRDT"
)

// AmountCurrency is the amount component of a raw bank transaction.
// The amount arrives as a string and is parsed during transformation.
type AmountCurrency struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// RawTransaction is a single transaction record as returned by the
// bank's transaction-history API. Fields beyond these may be present
// in the response and are ignored.
type RawTransaction struct {
	ID                        string         `json:"id"`
	ArrangementID             string         `json:"arrangementId"`
	BookingDate               string         `json:"bookingDate"`
	TransactionAmountCurrency AmountCurrency `json:"transactionAmountCurrency"`
	CreditDebitIndicator      string         `json:"creditDebitIndicator"`
	Description               string         `json:"description"`
	CounterPartyName          string         `json:"counterPartyName,omitempty"`
	CounterPartyAccountNumber string         `json:"counterPartyAccountNumber,omitempty"`
}

// IsDebit reports whether the transaction debits the account.
func (t RawTransaction) IsDebit() bool {
	return t.CreditDebitIndicator == IndicatorDebit
}
