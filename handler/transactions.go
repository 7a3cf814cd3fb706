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
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fintrackit/ft-api/data"
	"github.com/fintrackit/ft-api/portfolio"
)

type createTransactionBody struct {
	StockCode       string `json:"stock_code"`
	TransactionType string `json:"transaction_type"`
	Quantity        int64  `json:"quantity"`
	TransactionDate string `json:"transaction_date"`
}

// ListTransactions returns the caller's full transaction ledger.
func ListTransactions(svc *portfolio.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ledger, err := svc.ListTransactions(c.UserContext(), callerToken(c))
		if err != nil {
			log.Warn().Err(err).Msg("list transactions failed")
			return sendError(c, err)
		}
		return c.JSON(fiber.Map{"transactions": ledger})
	}
}

// CreateTransaction records a buy or sell. Sells that exceed the
// position held on the trade date are rejected locally with the
// available quantity; nothing reaches the backend in that case.
func CreateTransaction(svc *portfolio.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := createTransactionBody{}
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "malformed request body"})
		}

		date, err := data.ParseDate(body.TransactionDate)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": "transaction_date must be a calendar date"})
		}

		trx, err := svc.CreateTransaction(c.UserContext(), callerToken(c), &portfolio.CreateTransactionRequest{
			StockCode:       body.StockCode,
			TransactionType: body.TransactionType,
			Quantity:        body.Quantity,
			TransactionDate: date,
		})
		if err != nil {
			log.Warn().Err(err).Str("StockCode", body.StockCode).Msg("create transaction failed")
			return sendError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(trx)
	}
}

// DeleteTransaction removes a transaction from the ledger entirely.
func DeleteTransaction(svc *portfolio.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		transactionID := c.Params("id")
		if err := svc.DeleteTransaction(c.UserContext(), callerToken(c), transactionID); err != nil {
			log.Warn().Err(err).Str("TransactionID", transactionID).Msg("delete transaction failed")
			return sendError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
