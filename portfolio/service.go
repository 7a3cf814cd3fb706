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
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fintrackit/ft-api/common"
	"github.com/fintrackit/ft-api/data"
	"github.com/fintrackit/ft-api/observability/opentelemetry"
)

// Service is the portfolio façade the handlers call. The remote
// backend owns the ledger and all account state; Service fetches it,
// runs the local valuation pipeline, and forwards mutations.
type Service struct {
	client  *data.Client
	manager *data.Manager
}

func NewService(client *data.Client, manager *data.Manager) *Service {
	return &Service{
		client:  client,
		manager: manager,
	}
}

// Manager exposes the price data manager (for the cache sweep job).
func (svc *Service) Manager() *data.Manager {
	return svc.manager
}

type transactionWire struct {
	ID              string  `json:"id"`
	UID             string  `json:"uid"`
	StockCode       string  `json:"stock_code"`
	TransactionType string  `json:"transaction_type"`
	Quantity        int64   `json:"quantity"`
	PricePerShare   float64 `json:"price_per_share"`
	TotalValue      float64 `json:"total_value"`
	TransactionDate string  `json:"transaction_date"`
}

func (wire *transactionWire) toTransaction() (*Transaction, error) {
	date, err := data.ParseDate(wire.TransactionDate)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		ID:              wire.ID,
		UID:             wire.UID,
		StockCode:       wire.StockCode,
		TransactionType: wire.TransactionType,
		Quantity:        wire.Quantity,
		PricePerShare:   wire.PricePerShare,
		TotalValue:      wire.TotalValue,
		TransactionDate: date,
	}, nil
}

type listTransactionsRequest struct {
	Token string `json:"token"`
}

type listTransactionsResponse struct {
	Transactions []transactionWire `json:"transactions"`
}

// ListTransactions fetches the caller's transaction ledger from the
// backend.
func (svc *Service) ListTransactions(ctx context.Context, token string) ([]*Transaction, error) {
	status, body, err := svc.client.Do(ctx, http.MethodPost, "/internal/transactions/list", token,
		listTransactionsRequest{Token: token})
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, backendError(status, body, "failed to fetch transactions")
	}

	resp := listTransactionsResponse{}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	ledger := make([]*Transaction, 0, len(resp.Transactions))
	for _, wire := range resp.Transactions {
		trx, err := wire.toTransaction()
		if err != nil {
			log.Warn().Err(err).Str("TransactionID", wire.ID).Msg("skipping transaction with unparseable date")
			continue
		}
		ledger = append(ledger, trx)
	}
	SortLedger(ledger)
	return ledger, nil
}

// CreateTransactionRequest is a proposed trade.
type CreateTransactionRequest struct {
	StockCode       string    `json:"stock_code"`
	TransactionType string    `json:"transaction_type"`
	Quantity        int64     `json:"quantity"`
	TransactionDate time.Time `json:"transaction_date"`
}

type createTransactionWire struct {
	Token           string `json:"token"`
	StockCode       string `json:"stock_code"`
	TransactionType string `json:"transaction_type"`
	Quantity        int64  `json:"quantity"`
	TransactionDate string `json:"transaction_date"`
}

// CreateTransaction records a new trade. Sells run through the gate
// against the current ledger first so an oversell fails fast with the
// available quantity in the message; the transaction is never sent to
// the backend in that case.
func (svc *Service) CreateTransaction(ctx context.Context, token string, req *CreateTransactionRequest) (*Transaction, error) {
	proposed := &Transaction{
		StockCode:       req.StockCode,
		TransactionType: req.TransactionType,
		Quantity:        req.Quantity,
		TransactionDate: req.TransactionDate,
	}
	if err := proposed.Validate(); err != nil {
		return nil, err
	}

	if proposed.TransactionType == SellTransaction {
		ledger, err := svc.ListTransactions(ctx, token)
		if err != nil {
			return nil, err
		}
		if err := CanSell(ledger, proposed); err != nil {
			return nil, err
		}
	}

	status, body, err := svc.client.Do(ctx, http.MethodPost, "/internal/transactions", token,
		createTransactionWire{
			Token:           token,
			StockCode:       req.StockCode,
			TransactionType: req.TransactionType,
			Quantity:        req.Quantity,
			TransactionDate: req.TransactionDate.Format(data.DateFormat),
		})
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, backendError(status, body, "failed to create transaction")
	}

	wire := transactionWire{}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, err
	}
	return wire.toTransaction()
}

// DeleteTransaction removes a trade from the ledger entirely.
func (svc *Service) DeleteTransaction(ctx context.Context, token, transactionID string) error {
	status, body, err := svc.client.Do(ctx, http.MethodPost, "/internal/transactions/delete/"+transactionID, token,
		listTransactionsRequest{Token: token})
	if err != nil {
		return err
	}
	if status >= 400 {
		return backendError(status, body, "failed to delete transaction")
	}
	return nil
}

// ValuateHoldings produces the holdings table: each current position
// valued at its resolved price over a trailing seven day window, with
// average-cost basis and gain/loss. Results are sorted by market value
// descending. Ledgers whose sells exceed buys are logged and the
// offending instruments dropped, matching the display convention.
func (svc *Service) ValuateHoldings(ctx context.Context, ledger []*Transaction) ([]HoldingDetail, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "service.ValuateHoldings")
	defer span.End()

	if issues := LedgerConsistencyIssues(ledger); len(issues) > 0 {
		log.Warn().Strs("StockCodes", issues).Msg("ledger nets negative holdings; dropping from display")
	}

	holdings := ComputeHoldings(ledger)
	if len(holdings) == 0 {
		return []HoldingDetail{}, nil
	}

	codes := make([]string, 0, len(holdings))
	for code := range holdings {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	now := time.Now()
	start := now.AddDate(0, 0, -RecentPriceWindowDays)
	allSeries, err := svc.manager.GetAllPriceSeries(ctx, codes, start, now)
	if err != nil {
		return nil, err
	}

	details := make([]HoldingDetail, 0, len(codes))
	for _, code := range codes {
		details = append(details, ValueHolding(ledger, code, holdings[code], allSeries[code], now))
	}
	sort.SliceStable(details, func(i, j int) bool {
		return details[i].TotalValue > details[j].TotalValue
	})
	span.SetAttributes(attribute.Int("num_holdings", len(details)))
	return details, nil
}

type cachedSeries struct {
	Series  []ValuationPoint `json:"series"`
	Metrics SeriesMetrics    `json:"metrics"`
}

// GetValuationSeries computes the portfolio value chart for one of the
// dashboard ranges (1M, 3M, 6M, 1Y, ALL). interval, when non-empty,
// overrides the range's default sampling granularity (day, week or
// month). The result is memoized in the byte cache keyed by the ledger
// fingerprint, range, and interval, so re-renders within the cache TTL
// skip both the price fetches and the valuation walk.
func (svc *Service) GetValuationSeries(ctx context.Context, ledger []*Transaction, chartRange, interval string) ([]ValuationPoint, SeriesMetrics, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "service.GetValuationSeries")
	defer span.End()
	span.SetAttributes(attribute.String("range", chartRange), attribute.String("interval", interval))

	switch data.Granularity(interval) {
	case "", data.GranularityDay, data.GranularityWeek, data.GranularityMonth:
	default:
		return nil, SeriesMetrics{}, data.ErrUnknownGranularity
	}

	if len(ledger) == 0 {
		return []ValuationPoint{}, SeriesMetrics{}, nil
	}

	cacheKey := ""
	if fingerprint, err := LedgerFingerprint(ledger); err == nil {
		cacheKey = fmt.Sprintf("valuation:%s:%s:%s", fingerprint, chartRange, interval)
		if raw, err := common.CacheGet(cacheKey); err == nil {
			cached := cachedSeries{}
			if err := json.Unmarshal(raw, &cached); err == nil {
				span.SetAttributes(attribute.Bool("cache_hit", true))
				return cached.Series, cached.Metrics, nil
			}
		}
	}

	now := time.Now()
	oldest, _ := OldestTransactionDate(ledger)
	start, granularity := data.ChartRange(chartRange, now, oldest)
	if interval != "" {
		granularity = data.Granularity(interval)
	}
	datePoints, err := data.DatePoints(start, now, granularity)
	if err != nil {
		return nil, SeriesMetrics{}, err
	}

	holdings := ComputeHoldings(ledger)
	codes := make([]string, 0, len(holdings))
	for code := range holdings {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	allSeries, err := svc.manager.GetAllPriceSeries(ctx, codes, start, now)
	if err != nil {
		return nil, SeriesMetrics{}, err
	}

	processed := make([]ProcessedHolding, 0, len(codes))
	for _, code := range codes {
		processed = append(processed, ProcessedHolding{
			StockCode: code,
			Quantity:  holdings[code],
			Prices:    allSeries[code],
		})
	}

	series := ValuationSeries(processed, datePoints)
	metrics := ComputeSeriesMetrics(series)

	if cacheKey != "" {
		if raw, err := json.Marshal(cachedSeries{Series: series, Metrics: metrics}); err == nil {
			if err := common.CacheSet(cacheKey, raw); err != nil {
				log.Debug().Err(err).Msg("could not cache valuation series")
			}
		}
	}

	return series, metrics, nil
}

func backendError(status int, body []byte, fallback string) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return data.ErrUnauthorized
	}
	detail := struct {
		Detail string `json:"detail"`
	}{}
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		return fmt.Errorf("%w: %s", data.ErrBackendStatus, detail.Detail)
	}
	return fmt.Errorf("%w: %s (%d)", data.ErrBackendStatus, fallback, status)
}
