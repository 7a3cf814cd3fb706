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
	"time"

	"github.com/fintrackit/ft-api/data"
)

// RecentPriceWindowDays is the trailing window used to resolve an
// instrument's current price.
const RecentPriceWindowDays = 7

// HoldingDetail is the valuation of one current position as shown in
// the holdings table. HasGainLoss is false when the cost basis is zero
// or unavailable; the gain/loss fields then hold zeros and the
// presentation layer renders N/A instead of a number.
type HoldingDetail struct {
	StockCode       string  `json:"stock_code"`
	Quantity        int64   `json:"quantity"`
	AverageCost     float64 `json:"average_cost"`
	CurrentPrice    float64 `json:"current_price"`
	TotalValue      float64 `json:"total_value"`
	TotalCost       float64 `json:"total_cost"`
	GainLoss        float64 `json:"gain_loss"`
	GainLossPercent float64 `json:"gain_loss_percent"`
	HasGainLoss     bool    `json:"has_gain_loss"`
}

// ProcessedHolding pairs a current position with its fetched price
// series, ready for valuation at arbitrary dates.
type ProcessedHolding struct {
	StockCode string
	Quantity  int64
	Prices    *data.PriceSeries
}

// ValuationPoint is the aggregate portfolio value on one date.
type ValuationPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ValueHolding computes the snapshot valuation of one position: current
// price resolved from a trailing window of recent prices, market value,
// cost basis, and gain/loss. A missing price resolves to zero value
// rather than an error so partial portfolios still render.
func ValueHolding(ledger []*Transaction, stockCode string, quantity int64, recent *data.PriceSeries, now time.Time) HoldingDetail {
	detail := HoldingDetail{
		StockCode: stockCode,
		Quantity:  quantity,
	}

	if price, ok := data.ResolvePrice(recent, now, data.DefaultMaxForwardDays); ok {
		detail.CurrentPrice = price
	}
	detail.TotalValue = detail.CurrentPrice * float64(quantity)

	basis, err := ComputeCostBasis(ledger, stockCode)
	if err != nil {
		return detail
	}
	detail.AverageCost = basis.AverageCost
	detail.TotalCost = basis.TotalCost

	if basis.TotalCost != 0 {
		detail.GainLoss = detail.TotalValue - basis.TotalCost
		detail.GainLossPercent = detail.GainLoss / basis.TotalCost * 100
		detail.HasGainLoss = true
	}
	return detail
}

// ValuationSeries evaluates the portfolio at each date point: for every
// holding the price is resolved at that date and multiplied by the
// position size, then summed across holdings. The output always has
// exactly one point per input date, in input order.
//
// Position sizes are today's net holdings applied to past prices; the
// series does not replay historically-changing positions. Accurate
// historical performance would recompute holdings as of each date
// point, which this system does not implement.
func ValuationSeries(holdings []ProcessedHolding, datePoints []time.Time) []ValuationPoint {
	series := make([]ValuationPoint, len(datePoints))
	for ii, date := range datePoints {
		series[ii] = ValuationPoint{Date: date}
	}

	for _, holding := range holdings {
		for ii, date := range datePoints {
			price, _ := data.ResolvePrice(holding.Prices, date, data.DefaultMaxForwardDays)
			series[ii].Value += price * float64(holding.Quantity)
		}
	}
	return series
}
