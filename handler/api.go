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
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fintrackit/ft-api/data"
	"github.com/fintrackit/ft-api/portfolio"
)

type PingResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"API is alive"`
	Time    string `json:"time" example:"2024-06-19T08:09:10.115924+07:00"`
}

func Ping(c *fiber.Ctx) error {
	var response PingResponse
	now, err := time.Now().MarshalText()
	if err != nil {
		log.Error().Err(err).Msg("error while getting time in ping")
		response = PingResponse{
			Status:  "error",
			Message: err.Error(),
			Time:    string(now),
		}
	} else {
		response = PingResponse{
			Status:  "success",
			Message: "API is alive",
			Time:    string(now),
		}
	}
	return c.JSON(response)
}

// callerToken pulls the raw bearer credential the auth middleware
// stored for forwarding to the backend.
func callerToken(c *fiber.Ctx) string {
	token, _ := c.Locals("token").(string)
	return token
}

// sendError maps a service error onto the response the dashboard
// expects: a FastAPI-style {"detail": ...} body with a status the
// frontend can branch on (401/403 force a re-login client side).
func sendError(c *fiber.Ctx, err error) error {
	var insufficient *portfolio.InsufficientHoldingsError
	switch {
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": insufficient.Error()})
	case errors.Is(err, portfolio.ErrInvalidQuantity),
		errors.Is(err, portfolio.ErrInvalidTransactionType),
		errors.Is(err, data.ErrInvalidTimeRange),
		errors.Is(err, data.ErrUnknownGranularity):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": err.Error()})
	case errors.Is(err, data.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "invalid or expired credentials"})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"detail": err.Error()})
	}
}
