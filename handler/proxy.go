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
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fintrackit/ft-api/common"
	"github.com/fintrackit/ft-api/data"
	"github.com/fintrackit/ft-api/observability/opentelemetry"
)

// analytics requests validated locally before forwarding; the backend
// enforces the same limits but a local check fails fast with a precise
// message
type optimizationBody struct {
	StockCodes       []string `json:"stock_codes"`
	TargetReturn     *float64 `json:"target_return"`
	TargetVolatility *float64 `json:"target_volatility"`
}

// Proxy forwards a request to the remote finance backend verbatim:
// method, path, query, and JSON body are preserved; the fixed service
// API key is attached along with the caller's bearer token when
// present; the backend's status code and JSON body are mirrored back.
// Non-JSON backend bodies are wrapped in a JSON text fallback so every
// response the dashboard sees is JSON.
func Proxy(client *data.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := "/" + c.Params("*")
		if qs := string(c.Request().URI().QueryString()); qs != "" {
			path += "?" + qs
		}

		requestID := uuid.New().String()
		subLog := log.With().Str("RequestID", requestID).Str("Method", c.Method()).Str("Path", path).Logger()

		ctx, span := otel.Tracer(opentelemetry.Name).Start(c.UserContext(), "handler.Proxy")
		defer span.End()
		span.SetAttributes(opentelemetry.SpanAttributesFromFiber(c)...)
		span.SetAttributes(attribute.String("request_id", requestID))

		if err := validateAnalyticsRequest(path, c.Body()); err != nil {
			subLog.Warn().Err(err).Msg("analytics request rejected before forwarding")
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": err.Error()})
		}

		status, body, err := client.Forward(ctx, c.Method(), path, callerToken(c), c.Body())
		if err != nil {
			subLog.Warn().Err(err).Msg("proxy request failed")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"detail": "error proxying request"})
		}

		subLog.Debug().Int("StatusCode", status).Msg("proxied request")

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		if !json.Valid(body) {
			wrapped, _ := json.Marshal(fiber.Map{"detail": string(body)})
			return c.Status(status).Send(wrapped)
		}
		return c.Status(status).Send(body)
	}
}

func validateAnalyticsRequest(path string, body []byte) error {
	isOptimize := strings.HasPrefix(path, "/secure/optimize-portfolio")
	isRanges := strings.HasPrefix(path, "/secure/portfolio-ranges")
	if !isOptimize && !isRanges {
		return nil
	}

	req := optimizationBody{}
	if err := json.Unmarshal(body, &req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "malformed request body")
	}

	if len(req.StockCodes) < 2 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "minimum 2 stocks required")
	}
	if len(req.StockCodes) > 5 {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "maximum 5 stocks allowed")
	}

	// IDX tickers are case-insensitive; count positions, not spellings
	codes := make([]string, len(req.StockCodes))
	copy(codes, req.StockCodes)
	common.ArrToUpper(codes)
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if seen[code] {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "stock codes must be distinct")
		}
		seen[code] = true
	}

	if isOptimize {
		if req.TargetReturn != nil && req.TargetVolatility != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "cannot specify both target return and target volatility")
		}
		if req.TargetReturn == nil && req.TargetVolatility == nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "must specify either target return or target volatility")
		}
	}
	return nil
}
