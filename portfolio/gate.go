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

import "fmt"

// InsufficientHoldingsError reports a sell that exceeds the position
// held on the proposed trade date.
type InsufficientHoldingsError struct {
	StockCode string
	Requested int64
	Available int64
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("insufficient stock quantity of %s. Available: %d", e.StockCode, e.Available)
}

// CanSell verifies a proposed sell against the ledger before it is
// submitted: restricted to transactions dated on or before the proposed
// date, the instrument's net holding must cover the sell quantity. The
// backend is the final authority; this pre-trade check exists to fail
// fast with a specific message instead of a generic server error.
// Returns nil when the trade may proceed.
func CanSell(ledger []*Transaction, proposed *Transaction) error {
	if err := proposed.Validate(); err != nil {
		return err
	}
	if proposed.TransactionType != SellTransaction {
		return nil
	}

	holdings := ComputeHoldings(LedgerAsOf(ledger, proposed.TransactionDate))
	available := holdings[proposed.StockCode]
	if available < proposed.Quantity {
		return &InsufficientHoldingsError{
			StockCode: proposed.StockCode,
			Requested: proposed.Quantity,
			Available: available,
		}
	}
	return nil
}
