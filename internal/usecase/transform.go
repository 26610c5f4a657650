package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/banksync/internal/domain"
)

// descriptionPrefix is boilerplate the bank prepends to card purchases.
const descriptionPrefix = "Giao dich thanh toan/Purchase - So The/Card No:"

var minorUnits = decimal.NewFromInt(100)

// Transformer maps raw bank transactions to normalized ledger entries.
// Apart from rate lookups for non-base currencies it is a pure function
// of its input: the same transactions and mapping always produce the
// same batch.
type Transformer struct {
	rates        RateSource
	baseCurrency string
}

// NewTransformer creates a Transformer. baseCurrency is the ledger's
// display currency, e.g. "VND".
func NewTransformer(rates RateSource, baseCurrency string) *Transformer {
	return &Transformer{rates: rates, baseCurrency: baseCurrency}
}

// GroupByAccount converts transactions and groups them by destination
// ledger account. Transactions whose arrangement has no mapped account
// are dropped. Entries are stably sorted by account so entries for the
// same account stay contiguous in encounter order. An empty input yields
// an empty batch.
//
// A rate lookup failure aborts the whole transformation: importing with
// a wrong or zero rate would corrupt amounts.
func (t *Transformer) GroupByAccount(ctx context.Context, txns []domain.RawTransaction, mapping map[string]string) (domain.ImportBatch, error) {
	// One remote lookup per distinct non-base currency.
	rateMemo := make(map[string]decimal.Decimal)

	entries := make([]domain.LedgerEntry, 0, len(txns))
	for _, txn := range txns {
		account, ok := mapping[txn.ArrangementID]
		if !ok {
			continue
		}

		entry, err := t.convert(ctx, txn, account, rateMemo)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Account < entries[j].Account
	})

	batch := make(domain.ImportBatch)
	for _, entry := range entries {
		batch[entry.Account] = append(batch[entry.Account], entry)
	}
	return batch, nil
}

func (t *Transformer) convert(ctx context.Context, txn domain.RawTransaction, account string, rateMemo map[string]decimal.Decimal) (domain.LedgerEntry, error) {
	amount, err := decimal.NewFromString(txn.TransactionAmountCurrency.Amount)
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("transaction %s: parsing amount %q: %w",
			txn.ID, txn.TransactionAmountCurrency.Amount, err)
	}

	minor := amount.Mul(minorUnits)
	if currency := txn.TransactionAmountCurrency.CurrencyCode; currency != t.baseCurrency {
		rate, ok := rateMemo[currency]
		if !ok {
			rate, err = t.rates.Rate(ctx, currency)
			if err != nil {
				return domain.LedgerEntry{}, err
			}
			rateMemo[currency] = rate
		}
		minor = amount.Mul(rate).Mul(minorUnits)
	}

	value := minor.Round(0).IntPart()
	if txn.IsDebit() {
		value = -value
	}

	notes := strings.TrimSpace(strings.TrimPrefix(txn.Description, descriptionPrefix))
	if txn.CounterPartyAccountNumber != "" {
		notes += " @ " + txn.CounterPartyAccountNumber
	}

	return domain.LedgerEntry{
		ImportedID: txn.ID,
		Date:       txn.BookingDate,
		Amount:     value,
		PayeeName:  txn.CounterPartyName,
		Notes:      notes,
		Account:    account,
	}, nil
}
