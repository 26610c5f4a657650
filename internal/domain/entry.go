package domain

import "sort"

// LedgerEntry is a normalized transaction in the budgeting backend's
// import format. Amount is in signed integer minor units (1/100 of the
// display unit), negative for debits. ImportedID carries the source
// transaction ID unchanged so the backend can deduplicate repeated imports.
type LedgerEntry struct {
	ImportedID string `json:"imported_id"`
	Date       string `json:"date"`
	Amount     int64  `json:"amount"`
	PayeeName  string `json:"payee_name,omitempty"`
	Notes      string `json:"notes"`
	Account    string `json:"account"`
}

// ImportBatch maps a ledger account ID to the entries destined for it,
// in encounter order after a stable sort by account.
type ImportBatch map[string][]LedgerEntry

// Accounts returns the batch's account IDs in lexical order, so import
// loops walk the batch deterministically.
func (b ImportBatch) Accounts() []string {
	accounts := make([]string, 0, len(b))
	for account := range b {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	return accounts
}

// Size returns the total number of entries across all accounts.
func (b ImportBatch) Size() int {
	n := 0
	for _, entries := range b {
		n += len(entries)
	}
	return n
}
