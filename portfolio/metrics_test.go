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

package portfolio_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/stat"

	"github.com/fintrackit/ft-api/common"
	"github.com/fintrackit/ft-api/portfolio"
)

func valuationSeries(tz *time.Location, values ...float64) []portfolio.ValuationPoint {
	series := make([]portfolio.ValuationPoint, len(values))
	for ii, v := range values {
		series[ii] = portfolio.ValuationPoint{
			Date:  time.Date(2025, 3, 3, 0, 0, 0, 0, tz).AddDate(0, 0, ii),
			Value: v,
		}
	}
	return series
}

var _ = Describe("Series metrics", func() {
	var tz *time.Location

	BeforeEach(func() {
		tz = common.GetTimezone()
	})

	Context("when the series is well formed", func() {
		It("computes the period return end over start", func() {
			metrics := portfolio.ComputeSeriesMetrics(valuationSeries(tz, 100, 105, 110))
			Expect(metrics.HasMetrics).To(BeTrue())
			Expect(metrics.PeriodReturn).To(BeNumerically("~", 0.10, 1e-9))
		})

		It("computes volatility as the stddev of point-to-point changes", func() {
			metrics := portfolio.ComputeSeriesMetrics(valuationSeries(tz, 100, 110, 99))
			changes := []float64{0.10, 99.0/110.0 - 1}
			Expect(metrics.Volatility).To(BeNumerically("~", stat.StdDev(changes, nil), 1e-9))
		})

		It("computes the maximum peak-to-trough drawdown", func() {
			metrics := portfolio.ComputeSeriesMetrics(valuationSeries(tz, 100, 120, 90, 110))
			Expect(metrics.MaxDrawDown).To(BeNumerically("~", 90.0/120.0-1, 1e-9))
		})

		It("reports zero drawdown for a monotonically rising series", func() {
			metrics := portfolio.ComputeSeriesMetrics(valuationSeries(tz, 100, 105, 110, 120))
			Expect(metrics.MaxDrawDown).To(Equal(0.0))
		})
	})

	Context("when the series is degenerate", func() {
		It("has no metrics for fewer than two points", func() {
			Expect(portfolio.ComputeSeriesMetrics(valuationSeries(tz, 100)).HasMetrics).To(BeFalse())
			Expect(portfolio.ComputeSeriesMetrics(nil).HasMetrics).To(BeFalse())
		})

		It("has no metrics when the series starts at zero", func() {
			Expect(portfolio.ComputeSeriesMetrics(valuationSeries(tz, 0, 100)).HasMetrics).To(BeFalse())
		})

		It("skips zero-valued interior points when computing changes", func() {
			metrics := portfolio.ComputeSeriesMetrics(valuationSeries(tz, 100, 0, 100))
			Expect(metrics.HasMetrics).To(BeTrue())
			Expect(metrics.PeriodReturn).To(BeNumerically("~", 0, 1e-9))
		})
	})
})
