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
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fintrackit/ft-api/data/database"
)

// PriceDB serves historical prices from a local Postgres mirror of the
// backend's eod table. It is optional; when the mirror is not
// configured the manager goes straight to the remote backend.
type PriceDB struct{}

func NewPriceDB() *PriceDB {
	return &PriceDB{}
}

// GetEOD loads the closing prices of an instrument over [start, end]
// from the eod table. Returns ErrNoPriceData when the mirror has no
// rows for the window, letting the manager fall through to the backend.
func (pdb *PriceDB) GetEOD(ctx context.Context, symbol string, start, end time.Time) (*PriceSeries, error) {
	subLog := log.With().Str("Symbol", symbol).Time("Start", start).Time("End", end).Logger()

	pool, err := database.Pool()
	if err != nil {
		return nil, err
	}

	sql := "SELECT event_date, close, volume_thousands FROM eod WHERE ticker = $1 AND event_date BETWEEN $2 AND $3 ORDER BY event_date ASC"
	rows, err := pool.Query(ctx, sql, symbol, start, end)
	if err != nil {
		subLog.Warn().Stack().Err(err).Msg("eod query failed")
		return nil, err
	}
	defer rows.Close()

	series := &PriceSeries{
		Symbol: symbol,
		Prices: make([]PricePoint, 0, 64),
	}
	for rows.Next() {
		var eventDate time.Time
		var closePrice float64
		var volume float64
		if err := rows.Scan(&eventDate, &closePrice, &volume); err != nil {
			subLog.Warn().Stack().Err(err).Msg("could not scan eod row")
			return nil, err
		}
		series.Prices = append(series.Prices, PricePoint{
			Date:            eventDate,
			Close:           closePrice,
			VolumeThousands: volume,
		})
	}
	if err := rows.Err(); err != nil {
		subLog.Warn().Stack().Err(err).Msg("eod row iteration failed")
		return nil, err
	}

	if len(series.Prices) == 0 {
		return nil, ErrNoPriceData
	}

	return series, nil
}
