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

package data

import (
	"math"
	"time"
)

// ResolvePrice determines the effective closing price of an instrument
// on target. Historical series have gaps (holidays, IPO dates,
// delistings) so resolution falls back in two steps:
//
//  1. the entry closest to target among those dated on or before it,
//     provided its price is a valid positive number
//  2. scanning forward in ascending date order, the first strictly
//     positive price no more than maxForwardDays past target
//
// When both fail the price is unavailable and ok is false. The zero
// price returned in that case exists only so callers can sum partial
// portfolios; it must never be displayed as a real quote.
//
// ResolvePrice is a pure function: the same series, target, and window
// always produce the same result.
func ResolvePrice(series *PriceSeries, target time.Time, maxForwardDays int) (price float64, ok bool) {
	if series == nil || len(series.Prices) == 0 {
		return 0, false
	}

	sorted := make([]PricePoint, len(series.Prices))
	copy(sorted, series.Prices)
	ps := PriceSeries{Symbol: series.Symbol, Prices: sorted}
	ps.Sort()

	// closest entry on or before target; ties on the same day resolve
	// to the first entry in date-sorted order
	prior := -1
	for ii := range ps.Prices {
		if ps.Prices[ii].Date.After(target) {
			break
		}
		if prior == -1 || ps.Prices[ii].Date.After(ps.Prices[prior].Date) {
			prior = ii
		}
	}
	if prior >= 0 {
		p := ps.Prices[prior].Close
		if p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0) {
			return p, true
		}
	}

	// forward fallback, bounded
	limit := target.AddDate(0, 0, maxForwardDays)
	for ii := prior + 1; ii < len(ps.Prices); ii++ {
		pt := ps.Prices[ii]
		if pt.Date.After(limit) {
			break
		}
		if pt.Date.Before(target) {
			continue
		}
		if pt.Close > 0 {
			return pt.Close, true
		}
	}

	return 0, false
}
