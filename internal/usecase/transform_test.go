package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/banksync/internal/domain"
	"github.com/iho/banksync/internal/usecase"
	"github.com/iho/banksync/internal/usecase/mocks"
)

func rawTxn(id, arrangement, amount, currency, indicator string) domain.RawTransaction {
	return domain.RawTransaction{
		ID:            id,
		ArrangementID: arrangement,
		BookingDate:   "2024-01-01",
		TransactionAmountCurrency: domain.AmountCurrency{
			Amount:       amount,
			CurrencyCode: currency,
		},
		CreditDebitIndicator: indicator,
		Description:          "desc",
	}
}

func TestTransformer_CardPurchase(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rates := mocks.NewMockRateSource(ctrl)
	tr := usecase.NewTransformer(rates, "VND")

	txn := domain.RawTransaction{
		ID:            "T1",
		ArrangementID: "A1",
		BookingDate:   "2024-01-01",
		TransactionAmountCurrency: domain.AmountCurrency{
			Amount:       "12.5",
			CurrencyCode: "VND",
		},
		CreditDebitIndicator: "DBIT",
		Description:          "Giao dich thanh toan/Purchase - So The/Card No: groceries",
	}

	batch, err := tr.GroupByAccount(context.Background(), []domain.RawTransaction{txn}, map[string]string{"A1": "acct-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := batch["acct-1"]
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry for acct-1, got %d", len(entries))
	}

	want := domain.LedgerEntry{
		ImportedID: "T1",
		Date:       "2024-01-01",
		Amount:     -1250,
		Notes:      "groceries",
		Account:    "acct-1",
	}
	if entries[0] != want {
		t.Errorf("expected %+v, got %+v", want, entries[0])
	}
}

func TestTransformer_ForeignCurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rates := mocks.NewMockRateSource(ctrl)
	// Two USD transactions, one lookup: rates are memoized per call.
	rates.EXPECT().Rate(gomock.Any(), "USD").Return(decimal.NewFromInt(25000), nil).Times(1)

	tr := usecase.NewTransformer(rates, "VND")

	txns := []domain.RawTransaction{
		rawTxn("T1", "A1", "10", "USD", "DBIT"),
		rawTxn("T2", "A1", "2.5", "USD", "CRDT"),
	}

	batch, err := tr.GroupByAccount(context.Background(), txns, map[string]string{"A1": "acct-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := batch["acct-1"]
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// round(10 * 25000 * 100), negated for the debit.
	if entries[0].Amount != -25000000 {
		t.Errorf("debit: expected -25000000, got %d", entries[0].Amount)
	}
	// round(2.5 * 25000 * 100), credit keeps its sign.
	if entries[1].Amount != 6250000 {
		t.Errorf("credit: expected 6250000, got %d", entries[1].Amount)
	}
}

func TestTransformer_RateLookupFailureIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rates := mocks.NewMockRateSource(ctrl)
	rates.EXPECT().Rate(gomock.Any(), "EUR").
		Return(decimal.Zero, &domain.RateLookupError{Currency: "EUR"})

	tr := usecase.NewTransformer(rates, "VND")

	_, err := tr.GroupByAccount(context.Background(),
		[]domain.RawTransaction{rawTxn("T1", "A1", "5", "EUR", "DBIT")},
		map[string]string{"A1": "acct-1"})

	var rateErr *domain.RateLookupError
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected RateLookupError, got %T: %v", err, err)
	}
}

func TestTransformer_GroupingAndDrops(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tr := usecase.NewTransformer(mocks.NewMockRateSource(ctrl), "VND")

	txns := []domain.RawTransaction{
		rawTxn("T1", "A2", "1", "VND", "CRDT"),
		rawTxn("T2", "A1", "2", "VND", "CRDT"),
		rawTxn("T3", "A2", "3", "VND", "CRDT"),
		rawTxn("T4", "A9", "4", "VND", "CRDT"), // unmapped, dropped
	}
	mapping := map[string]string{"A1": "acct-1", "A2": "acct-2"}

	batch, err := tr.GroupByAccount(context.Background(), txns, mapping)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if batch.Size() != 3 {
		t.Fatalf("expected 3 kept entries, got %d", batch.Size())
	}

	// Every entry in groups[k] has account == k, and the union is a
	// permutation of the kept inputs.
	seen := map[string]bool{}
	for account, entries := range batch {
		for _, e := range entries {
			if e.Account != account {
				t.Errorf("entry %s filed under %s but has account %s", e.ImportedID, account, e.Account)
			}
			seen[e.ImportedID] = true
		}
	}
	for _, id := range []string{"T1", "T2", "T3"} {
		if !seen[id] {
			t.Errorf("expected %s in output", id)
		}
	}
	if seen["T4"] {
		t.Error("unmapped T4 should have been dropped")
	}

	// Stable order within an account: encounter order preserved.
	acct2 := batch["acct-2"]
	if len(acct2) != 2 || acct2[0].ImportedID != "T1" || acct2[1].ImportedID != "T3" {
		t.Errorf("expected [T1 T3] for acct-2, got %+v", acct2)
	}
}

func TestTransformer_Purity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rates := mocks.NewMockRateSource(ctrl)
	rates.EXPECT().Rate(gomock.Any(), "USD").Return(decimal.NewFromInt(25000), nil).Times(2)

	tr := usecase.NewTransformer(rates, "VND")

	txns := []domain.RawTransaction{
		rawTxn("T1", "A1", "10", "USD", "DBIT"),
		rawTxn("T2", "A1", "1", "VND", "CRDT"),
	}
	mapping := map[string]string{"A1": "acct-1"}

	first, err := tr.GroupByAccount(context.Background(), txns, mapping)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := tr.GroupByAccount(context.Background(), txns, mapping)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) || first.Size() != second.Size() {
		t.Fatalf("expected identical batches, got %+v and %+v", first, second)
	}
	for account, entries := range first {
		for i, e := range entries {
			if second[account][i] != e {
				t.Errorf("entry %d for %s differs between runs", i, account)
			}
		}
	}
}

func TestTransformer_EmptyInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tr := usecase.NewTransformer(mocks.NewMockRateSource(ctrl), "VND")

	batch, err := tr.GroupByAccount(context.Background(), nil, map[string]string{"A1": "acct-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 0 {
		t.Errorf("expected empty batch, got %+v", batch)
	}
}

func TestTransformer_CounterPartySuffix(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tr := usecase.NewTransformer(mocks.NewMockRateSource(ctrl), "VND")

	txn := rawTxn("T1", "A1", "100", "VND", "CRDT")
	txn.Description = "transfer in"
	txn.CounterPartyName = "ACME Corp"
	txn.CounterPartyAccountNumber = "19031234"

	batch, err := tr.GroupByAccount(context.Background(), []domain.RawTransaction{txn}, map[string]string{"A1": "acct-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := batch["acct-1"][0]
	if entry.Notes != "transfer in @ 19031234" {
		t.Errorf("expected counter-party suffix in notes, got %q", entry.Notes)
	}
	if entry.PayeeName != "ACME Corp" {
		t.Errorf("expected payee name, got %q", entry.PayeeName)
	}
}

func TestTransformer_BadAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tr := usecase.NewTransformer(mocks.NewMockRateSource(ctrl), "VND")

	_, err := tr.GroupByAccount(context.Background(),
		[]domain.RawTransaction{rawTxn("T1", "A1", "not-a-number", "VND", "DBIT")},
		map[string]string{"A1": "acct-1"})
	if err == nil {
		t.Fatal("expected error for unparseable amount")
	}
}
