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

// GetHoldings returns the holdings table: every current position
// valued at its latest resolved price with cost basis and gain/loss,
// sorted by market value descending.
func GetHoldings(svc *portfolio.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ledger, err := svc.ListTransactions(c.UserContext(), callerToken(c))
		if err != nil {
			log.Warn().Err(err).Msg("could not fetch ledger for holdings")
			return sendError(c, err)
		}

		details, err := svc.ValuateHoldings(c.UserContext(), ledger)
		if err != nil {
			log.Warn().Err(err).Msg("holdings valuation failed")
			return sendError(c, err)
		}
		return c.JSON(fiber.Map{"holdings": details})
	}
}
