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

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fintrackit/ft-api/portfolio"
)

// GetPerformance returns the portfolio valuation time series for one
// of the chart ranges (1M, 3M, 6M, 1Y, ALL) along with summary
// metrics. Unknown ranges fall back to 6M, matching the dashboard
// default; interval optionally overrides the range's sampling
// granularity.
func GetPerformance(svc *portfolio.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		chartRange := c.Query("range", "6M")
		interval := c.Query("interval")

		ledger, err := svc.ListTransactions(c.UserContext(), callerToken(c))
		if err != nil {
			log.Warn().Err(err).Msg("could not fetch ledger for performance")
			return sendError(c, err)
		}

		series, metrics, err := svc.GetValuationSeries(c.UserContext(), ledger, chartRange, interval)
		if err != nil {
			log.Warn().Err(err).Str("Range", chartRange).Msg("valuation series failed")
			return sendError(c, err)
		}

		return c.JSON(fiber.Map{
			"range":   chartRange,
			"series":  series,
			"metrics": metrics,
		})
	}
}
