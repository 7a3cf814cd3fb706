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
	"sort"
)

// ComputeHoldings folds a transaction ledger into net share counts per
// instrument. Buys add quantity, sells subtract; instruments whose net
// position is zero or negative are dropped from the result, so every
// returned entry is strictly positive. The fold is order-independent;
// the input ledger is never mutated. Callers wanting holdings "as of" a
// date slice the ledger first with LedgerAsOf.
func ComputeHoldings(ledger []*Transaction) map[string]int64 {
	net := make(map[string]int64, len(ledger))
	for _, trx := range ledger {
		if trx.TransactionType == BuyTransaction {
			net[trx.StockCode] += trx.Quantity
		} else {
			net[trx.StockCode] -= trx.Quantity
		}
	}

	for code, quantity := range net {
		if quantity <= 0 {
			delete(net, code)
		}
	}
	return net
}

// LedgerConsistencyIssues reports the instruments whose sells exceed
// their buys, netting below zero. ComputeHoldings drops such positions
// silently for display; this surfaces the anomaly so callers can log
// it instead of hiding a data-integrity problem.
func LedgerConsistencyIssues(ledger []*Transaction) []string {
	net := make(map[string]int64, len(ledger))
	for _, trx := range ledger {
		if trx.TransactionType == BuyTransaction {
			net[trx.StockCode] += trx.Quantity
		} else {
			net[trx.StockCode] -= trx.Quantity
		}
	}

	issues := make([]string, 0)
	for code, quantity := range net {
		if quantity < 0 {
			issues = append(issues, code)
		}
	}
	sort.Strings(issues)
	return issues
}

// CostBasis is the blended cost of the remaining shares of one
// instrument under the average-cost convention.
type CostBasis struct {
	AverageCost float64 `json:"average_cost"`
	TotalCost   float64 `json:"total_cost"`
}

// ComputeCostBasis walks an instrument's transactions in chronological
// order maintaining a running cost and quantity. Buys add their total
// value and quantity; sells remove cost pro rata at the current average
// (not FIFO lot tracking — the dashboard does no tax-lot reporting, so
// all shares blend into one cost per share). When no shares remain the
// basis is unavailable and ErrNoCostBasis is returned.
func ComputeCostBasis(ledger []*Transaction, stockCode string) (CostBasis, error) {
	trxs := make([]*Transaction, 0, len(ledger))
	for _, trx := range ledger {
		if trx.StockCode == stockCode {
			trxs = append(trxs, trx)
		}
	}
	SortLedger(trxs)

	var runningCost float64
	var runningQuantity int64
	for _, trx := range trxs {
		if trx.TransactionType == BuyTransaction {
			runningCost += trx.TotalValue
			runningQuantity += trx.Quantity
			continue
		}
		if runningQuantity > 0 {
			costPerShare := runningCost / float64(runningQuantity)
			runningCost -= costPerShare * float64(trx.Quantity)
		}
		runningQuantity -= trx.Quantity
	}

	if runningQuantity <= 0 {
		return CostBasis{}, ErrNoCostBasis
	}

	return CostBasis{
		AverageCost: runningCost / float64(runningQuantity),
		TotalCost:   runningCost,
	}, nil
}
