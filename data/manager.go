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
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fintrackit/ft-api/observability/opentelemetry"
)

// Manager supplies price series to the valuation pipeline. Lookups go
// cache first, then the local Postgres mirror when configured, then the
// remote backend; fetched series are cached for DefaultSeriesTTL.
type Manager struct {
	client  *Client
	cache   *SeriesCache
	priceDB *PriceDB
}

func NewManager(client *Client) *Manager {
	manager := &Manager{
		client: client,
		cache:  NewSeriesCache(viper.GetDuration("cache.series_ttl")),
	}
	if viper.GetString("database.url") != "" {
		manager.priceDB = NewPriceDB()
	}
	return manager
}

// Cache exposes the series cache for the periodic sweep job.
func (manager *Manager) Cache() *SeriesCache {
	return manager.cache
}

// GetPriceSeries returns the daily closing prices of one instrument
// over [start, end]. A cached series younger than the TTL is reused
// without any network call. Fetch failures propagate to the caller;
// there is no automatic retry.
func (manager *Manager) GetPriceSeries(ctx context.Context, symbol string, start, end time.Time) (*PriceSeries, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "manager.GetPriceSeries")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	if series, ok := manager.cache.Get(symbol, start, end); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return series, nil
	}

	if manager.priceDB != nil {
		series, err := manager.priceDB.GetEOD(ctx, symbol, start, end)
		if err == nil {
			manager.cache.Set(symbol, start, end, series)
			span.SetAttributes(attribute.Bool("mirror_hit", true))
			return series, nil
		}
		// mirror misses fall through to the backend
		log.Debug().Err(err).Str("Symbol", symbol).Msg("price mirror miss")
	}

	series, err := manager.client.StockPrice(ctx, symbol, start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	manager.cache.Set(symbol, start, end, series)
	return series, nil
}

// GetAllPriceSeries fetches the series for every requested instrument
// concurrently, bounding latency to the slowest single fetch rather
// than the sum. The first error observed is returned; a canceled
// context stops stale results from being applied.
func (manager *Manager) GetAllPriceSeries(ctx context.Context, symbols []string, start, end time.Time) (map[string]*PriceSeries, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "manager.GetAllPriceSeries")
	defer span.End()
	span.SetAttributes(attribute.Int("num_symbols", len(symbols)))

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)

	result := make(map[string]*PriceSeries, len(symbols))
	for _, symbol := range symbols {
		symbol := symbol
		wg.Add(1)
		go func() {
			defer wg.Done()
			series, err := manager.GetPriceSeries(ctx, symbol, start, end)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			result[symbol] = series
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		span.RecordError(firstErr)
		span.SetStatus(codes.Error, firstErr.Error())
		return nil, firstErr
	}
	return result, nil
}
