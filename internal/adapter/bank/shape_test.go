package bank

import (
	"testing"

	"github.com/rs/zerolog"
)

const txnJSON = `{"id":"T1","arrangementId":"A1","bookingDate":"2024-01-01",` +
	`"transactionAmountCurrency":{"amount":"12.5","currencyCode":"VND"},` +
	`"creditDebitIndicator":"DBIT","description":"groceries"}`

func TestExtractList_KnownShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare list", `[` + txnJSON + `]`},
		{"document.listTransaction", `{"document":{"listTransaction":[` + txnJSON + `]}}`},
		{"transactions", `{"transactions":[` + txnJSON + `]}`},
		{"value as list", `{"value":[` + txnJSON + `]}`},
		{"value.transactions", `{"value":{"transactions":[` + txnJSON + `]}}`},
		{"data", `{"data":[` + txnJSON + `]}`},
	}

	client := NewClient(Config{}, zerolog.Nop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns, err := client.parse([]byte(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(txns) != 1 {
				t.Fatalf("expected 1 transaction, got %d", len(txns))
			}
			// All shapes yield identical output for identical content.
			if txns[0].ID != "T1" || txns[0].ArrangementID != "A1" {
				t.Errorf("unexpected transaction: %+v", txns[0])
			}
			if txns[0].TransactionAmountCurrency.Amount != "12.5" {
				t.Errorf("unexpected amount: %+v", txns[0].TransactionAmountCurrency)
			}
		})
	}
}

func TestExtractList_UnrecognizedShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", `{"items":[` + txnJSON + `]}`},
		{"value is scalar", `{"value":42}`},
		{"empty object", `{}`},
		{"scalar body", `"nope"`},
	}

	client := NewClient(Config{}, zerolog.Nop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Degrades to an empty result, never an error.
			txns, err := client.parse([]byte(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(txns) != 0 {
				t.Errorf("expected empty result, got %+v", txns)
			}
		})
	}
}

func TestExtractList_PriorityOrder(t *testing.T) {
	// document.listTransaction wins over a top-level transactions key.
	body := `{"document":{"listTransaction":[` + txnJSON + `]},"transactions":[]}`

	list, ok := extractList([]byte(body))
	if !ok {
		t.Fatal("expected a match")
	}
	if string(list) == "[]" {
		t.Error("expected the document.listTransaction path to win")
	}
}
