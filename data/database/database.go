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

package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// PgxIface is the subset of the pgx connection API the price mirror
// uses; pgxmock satisfies it in tests.
type PgxIface interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

var ErrNotConnected = errors.New("database pool is not connected")

var pool PgxIface

// Connect opens the pgx pool against database.url. Call once at
// startup when a local price mirror is configured.
func Connect(ctx context.Context) error {
	dbURL := viper.GetString("database.url")
	subLog := log.With().Str("DatabaseURL", dbURL).Logger()

	p, err := pgxpool.Connect(ctx, dbURL)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not connect to database")
		return err
	}

	pool = p
	subLog.Info().Msg("connected to price mirror database")
	return nil
}

// SetPool replaces the active pool; tests inject pgxmock here.
func SetPool(p PgxIface) {
	pool = p
}

// Pool returns the active pool.
func Pool() (PgxIface, error) {
	if pool == nil {
		return nil, ErrNotConnected
	}
	return pool, nil
}
