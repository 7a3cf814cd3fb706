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
	"gonum.org/v1/gonum/stat"
)

// SeriesMetrics summarizes a valuation series for the chart header.
// Time- and money-weighted returns are computed by the remote backend
// and are deliberately absent here.
type SeriesMetrics struct {
	PeriodReturn float64 `json:"period_return"`
	Volatility   float64 `json:"volatility"`
	MaxDrawDown  float64 `json:"max_draw_down"`
	HasMetrics   bool    `json:"has_metrics"`
}

// ComputeSeriesMetrics derives the period return (end over start),
// sample standard deviation of point-to-point percentage changes, and
// maximum peak-to-trough drawdown of a valuation series. Points with
// zero value (unresolvable prices) participate as-is; a series whose
// first point is zero yields HasMetrics false.
func ComputeSeriesMetrics(series []ValuationPoint) SeriesMetrics {
	metrics := SeriesMetrics{}
	if len(series) < 2 || series[0].Value == 0 {
		return metrics
	}

	metrics.PeriodReturn = series[len(series)-1].Value/series[0].Value - 1

	changes := make([]float64, 0, len(series)-1)
	for ii := 1; ii < len(series); ii++ {
		prev := series[ii-1].Value
		if prev == 0 {
			continue
		}
		changes = append(changes, series[ii].Value/prev-1)
	}
	if len(changes) >= 2 {
		metrics.Volatility = stat.StdDev(changes, nil)
	}

	peak := series[0].Value
	for _, point := range series {
		if point.Value > peak {
			peak = point.Value
		}
		if peak > 0 {
			drawDown := point.Value/peak - 1
			if drawDown < metrics.MaxDrawDown {
				metrics.MaxDrawDown = drawDown
			}
		}
	}

	metrics.HasMetrics = true
	return metrics
}
