// Copyright 2024-2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package portfolio

import (
	"encoding/hex"
	"errors"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/zeebo/blake3"
)

var (
	ErrInvalidTransactionType = errors.New("transaction type must be buy or sell")
	ErrInvalidQuantity        = errors.New("quantity must be a positive integer")
	ErrNoCostBasis            = errors.New("no remaining shares to compute cost basis")
	ErrGenerateHash           = errors.New("could not create ledger hash")
)

const (
	BuyTransaction  = "buy"
	SellTransaction = "sell"
)

// Transaction is one executed trade. Instances are created by the
// remote backend and are read-only afterward; deletion removes them
// from the ledger entirely.
type Transaction struct {
	ID              string    `json:"id"`
	UID             string    `json:"uid"`
	StockCode       string    `json:"stock_code"`
	TransactionType string    `json:"transaction_type"`
	Quantity        int64     `json:"quantity"`
	PricePerShare   float64   `json:"price_per_share"`
	TotalValue      float64   `json:"total_value"`
	TransactionDate time.Time `json:"transaction_date"`
}

// Validate checks the locally-verifiable invariants of a proposed
// transaction. Holdings sufficiency for sells is the gate's job.
func (trx *Transaction) Validate() error {
	if trx.TransactionType != BuyTransaction && trx.TransactionType != SellTransaction {
		return ErrInvalidTransactionType
	}
	if trx.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// LedgerAsOf returns the transactions dated on or before asOf. The
// input is not mutated.
func LedgerAsOf(ledger []*Transaction, asOf time.Time) []*Transaction {
	sliced := make([]*Transaction, 0, len(ledger))
	for _, trx := range ledger {
		if !trx.TransactionDate.After(asOf) {
			sliced = append(sliced, trx)
		}
	}
	return sliced
}

// SortLedger orders transactions chronologically, preserving the
// relative order of same-day trades.
func SortLedger(ledger []*Transaction) {
	sort.SliceStable(ledger, func(i, j int) bool {
		return ledger[i].TransactionDate.Before(ledger[j].TransactionDate)
	})
}

// StockCodes returns the distinct instruments in the ledger, in first
// occurrence order.
func StockCodes(ledger []*Transaction) []string {
	seen := make(map[string]bool, len(ledger))
	codes := make([]string, 0, len(ledger))
	for _, trx := range ledger {
		if !seen[trx.StockCode] {
			seen[trx.StockCode] = true
			codes = append(codes, trx.StockCode)
		}
	}
	return codes
}

// OldestTransactionDate returns the earliest transaction date; ok is
// false for an empty ledger.
func OldestTransactionDate(ledger []*Transaction) (time.Time, bool) {
	if len(ledger) == 0 {
		return time.Time{}, false
	}
	oldest := ledger[0].TransactionDate
	for _, trx := range ledger[1:] {
		if trx.TransactionDate.Before(oldest) {
			oldest = trx.TransactionDate
		}
	}
	return oldest, true
}

// LedgerFingerprint computes a stable blake3 hash over the
// chronologically sorted ledger. Two ledgers with the same trades
// produce the same fingerprint, which keys the valuation result cache.
func LedgerFingerprint(ledger []*Transaction) (string, error) {
	sorted := make([]*Transaction, len(ledger))
	copy(sorted, ledger)
	SortLedger(sorted)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TransactionDate.Equal(sorted[j].TransactionDate) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].TransactionDate.Before(sorted[j].TransactionDate)
	})

	raw, err := json.Marshal(sorted)
	if err != nil {
		return "", ErrGenerateHash
	}
	digest := blake3.Sum256(raw)
	return hex.EncodeToString(digest[:]), nil
}
