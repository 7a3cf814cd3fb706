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

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fintrackit/ft-api/common"
)

var Profile bool
var Trace bool

func init() {
	// FT secret key
	viper.BindEnv("secret_key", "FT_SECRET")
	rootCmd.PersistentFlags().String("secret-key", "", "Secret encryption key")
	viper.BindPFlag("secret_key", rootCmd.PersistentFlags().Lookup("secret-key"))

	// Finance backend
	viper.BindEnv("backend.url", "FT_BACKEND_URL")
	rootCmd.PersistentFlags().String("backend-url", "", "Base URL of the finance backend")
	viper.BindPFlag("backend.url", rootCmd.PersistentFlags().Lookup("backend-url"))

	viper.BindEnv("backend.api_key", "FT_BACKEND_API_KEY")
	rootCmd.PersistentFlags().String("backend-api-key", "", "API key sent to the finance backend")
	viper.BindPFlag("backend.api_key", rootCmd.PersistentFlags().Lookup("backend-api-key"))

	// Auth
	viper.BindEnv("auth.jwks_url", "FT_JWKS_URL")
	rootCmd.PersistentFlags().String("jwks-url", "", "JWKS endpoint used to verify bearer tokens")
	viper.BindPFlag("auth.jwks_url", rootCmd.PersistentFlags().Lookup("jwks-url"))

	// Database (optional local price mirror)
	viper.BindEnv("database.url", "DATABASE_URL")
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string for the price mirror")
	viper.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("database-url"))

	// Logging configuration
	viper.BindEnv("log.level", "FT_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "FT_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "FT_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stdout", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	viper.BindEnv("log.pretty", "FT_LOG_PRETTY")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "Print pretty console logs instead of JSON")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Cache configuration
	viper.BindEnv("cache.local_size", "FT_CACHE_LOCAL_SIZE")
	rootCmd.PersistentFlags().Int("cache-local-size", 65536, "Number of entries in the in-process LRU cache")
	viper.BindPFlag("cache.local_size", rootCmd.PersistentFlags().Lookup("cache-local-size"))

	viper.BindEnv("cache.redis_url", "REDIS_URL")
	rootCmd.PersistentFlags().String("cache-redis-url", "", "Redis connection string, if blank only the local cache is used")
	viper.BindPFlag("cache.redis_url", rootCmd.PersistentFlags().Lookup("cache-redis-url"))

	viper.BindEnv("cache.ttl", "FT_CACHE_TTL")
	rootCmd.PersistentFlags().Int("cache-ttl", 300, "Lifetime in seconds of entries in the shared redis cache")
	viper.BindPFlag("cache.ttl", rootCmd.PersistentFlags().Lookup("cache-ttl"))

	viper.BindEnv("cache.series_ttl", "FT_CACHE_SERIES_TTL")
	rootCmd.PersistentFlags().Duration("cache-series-ttl", 0, "TTL for cached price series, 0 uses the default of 60s")
	viper.BindPFlag("cache.series_ttl", rootCmd.PersistentFlags().Lookup("cache-series-ttl"))

	// OpenTelemetry
	viper.BindEnv("otlp.endpoint", "OTLP_ENDPOINT")
	rootCmd.PersistentFlags().String("otlp-endpoint", "", "OTLP collector endpoint, if blank tracing is disabled")
	viper.BindPFlag("otlp.endpoint", rootCmd.PersistentFlags().Lookup("otlp-endpoint"))

	rootCmd.PersistentFlags().BoolVar(&Profile, "cpu-profile", false, "Run pprof and save in profile.out")
	rootCmd.PersistentFlags().BoolVar(&Trace, "trace", false, "Trace program execution and save in trace.out")
}

var rootCmd = &cobra.Command{
	Use:     "ftapi",
	Version: common.CurrentVersion.String(),
	Short:   "FinTrack API is a portfolio dashboard backend",
	Long:    `An HTTP API that maintains a transaction ledger, values the resulting holdings against market prices, and fronts a remote finance backend.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
