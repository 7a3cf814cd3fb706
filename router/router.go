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

package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lestrrat-go/jwx/jwk"

	"github.com/fintrackit/ft-api/data"
	"github.com/fintrackit/ft-api/handler"
	"github.com/fintrackit/ft-api/middleware"
	"github.com/fintrackit/ft-api/portfolio"
)

// SetupRoutes registers the API surface. Everything except ping sits
// behind bearer auth.
func SetupRoutes(app *fiber.App, client *data.Client, svc *portfolio.Service, jwks *jwk.AutoRefresh, jwksURL string) {
	api := app.Group("/v1")
	api.Get("/", handler.Ping)

	auth := middleware.FTAuth(jwks, jwksURL)

	// Transactions
	transactions := api.Group("/transactions", auth)
	transactions.Get("/", handler.ListTransactions(svc))
	transactions.Post("/", handler.CreateTransaction(svc))
	transactions.Delete("/:id", handler.DeleteTransaction(svc))

	// Portfolio analytics computed locally
	pf := api.Group("/portfolio", auth)
	pf.Get("/holdings", handler.GetHoldings(svc))
	pf.Get("/performance", handler.GetPerformance(svc))

	// Backend passthrough (returns, sharpe, optimization, company data)
	api.All("/proxy/*", auth, handler.Proxy(client))
}
