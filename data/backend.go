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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fintrackit/ft-api/observability/opentelemetry"
)

// Client talks to the remote finance backend. It is constructed once
// per process with fixed configuration and passed by reference to
// whatever needs it; credentials are attached per request, never via
// mutable interceptor state.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a backend client from the backend.url and
// backend.api_key settings.
func NewClient() *Client {
	return &Client{
		baseURL:    viper.GetString("backend.url"),
		apiKey:     viper.GetString("backend.api_key"),
		httpClient: &http.Client{},
	}
}

// NewClientWith creates a backend client with explicit configuration;
// used by tests.
func NewClientWith(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// BaseURL returns the configured backend base address.
func (client *Client) BaseURL() string {
	return client.baseURL
}

type backendPricePoint struct {
	Date            string  `json:"date"`
	Close           float64 `json:"closing_price"`
	VolumeThousands float64 `json:"volume_thousands"`
}

type backendPriceResponse struct {
	Symbol string              `json:"symbol"`
	Prices []backendPricePoint `json:"prices"`
}

type backendErrorResponse struct {
	Detail string `json:"detail"`
}

// StockPrice fetches the historical daily closing prices of an
// instrument over [start, end].
func (client *Client) StockPrice(ctx context.Context, symbol string, start, end time.Time) (*PriceSeries, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "backend.StockPrice")
	defer span.End()
	span.SetAttributes(
		attribute.String("symbol", symbol),
		attribute.String("start", start.Format(DateFormat)),
		attribute.String("end", end.Format(DateFormat)),
	)

	if start.After(end) {
		return nil, ErrInvalidTimeRange
	}

	subLog := log.With().Str("Symbol", symbol).Time("Start", start).Time("End", end).Logger()

	path := fmt.Sprintf("/secure/stock-price/%s/%s_%s", symbol, start.Format(DateFormat), end.Format(DateFormat))
	status, body, err := client.Do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		subLog.Warn().Err(err).Msg("stock price request failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if status >= 400 {
		err := statusError(status, body)
		subLog.Warn().Err(err).Int("StatusCode", status).Msg("stock price request rejected")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resp := backendPriceResponse{}
	if err := json.Unmarshal(body, &resp); err != nil {
		subLog.Warn().Err(err).Msg("could not parse stock price response")
		span.RecordError(err)
		return nil, err
	}

	series := &PriceSeries{
		Symbol: resp.Symbol,
		Prices: make([]PricePoint, 0, len(resp.Prices)),
	}
	if series.Symbol == "" {
		series.Symbol = symbol
	}
	for _, pt := range resp.Prices {
		// backend sends RFC3339 or bare dates depending on route age
		date, err := ParseDate(pt.Date)
		if err != nil {
			subLog.Warn().Err(err).Str("Date", pt.Date).Msg("skipping price point with unparseable date")
			continue
		}
		series.Prices = append(series.Prices, PricePoint{
			Date:            date,
			Close:           pt.Close,
			VolumeThousands: pt.VolumeThousands,
		})
	}
	series.Sort()

	return series, nil
}

// Do performs a backend request. The service API key is always
// attached; token, when non-empty, is forwarded as the caller's bearer
// credential. The response body is returned unparsed together with the
// backend's status code so callers can mirror it.
func (client *Client) Do(ctx context.Context, method, path, token string, payload interface{}) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", client.apiKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	return resp.StatusCode, body, nil
}

// Forward relays a raw request body to the backend without
// interpreting it, preserving method, path, and query. Used by the
// passthrough proxy for the analytics routes owned entirely by the
// backend.
func (client *Client) Forward(ctx context.Context, method, pathWithQuery, token string, body []byte) (int, []byte, error) {
	var reqBody io.Reader
	if len(body) > 0 {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, client.baseURL+pathWithQuery, reqBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", client.apiKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func statusError(status int, body []byte) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return ErrUnauthorized
	}
	resp := backendErrorResponse{}
	if err := json.Unmarshal(body, &resp); err == nil && resp.Detail != "" {
		return fmt.Errorf("%w: %s", ErrBackendStatus, resp.Detail)
	}
	return fmt.Errorf("%w: %d", ErrBackendStatus, status)
}
