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
	"sort"
	"time"
)

// DateFormat is the wire format for day-granularity dates.
const DateFormat = "2006-01-02"

// DefaultMaxForwardDays bounds how far past a target date the resolver
// may reach for a price when no prior price exists.
const DefaultMaxForwardDays = 14

// PricePoint is a single daily closing price observation.
type PricePoint struct {
	Date            time.Time `json:"date"`
	Close           float64   `json:"closing_price"`
	VolumeThousands float64   `json:"volume_thousands"`
}

// PriceSeries holds the daily closing prices for one instrument over a
// requested window. Prices are kept in ascending date order.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Prices []PricePoint `json:"prices"`
}

// Sort orders the price points by ascending date. Resolution assumes
// this ordering.
func (series *PriceSeries) Sort() {
	sort.SliceStable(series.Prices, func(i, j int) bool {
		return series.Prices[i].Date.Before(series.Prices[j].Date)
	})
}

// Granularity is the step size used when generating valuation date
// points.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)
