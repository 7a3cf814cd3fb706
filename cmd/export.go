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
	"context"
	"os"

	"github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/exports"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fintrackit/ft-api/common"
	"github.com/fintrackit/ft-api/data"
	"github.com/fintrackit/ft-api/data/database"
	"github.com/fintrackit/ft-api/portfolio"
)

var (
	exportToken    string
	exportRange    string
	exportInterval string
	exportOutput   string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportToken, "token", "", "Bearer token identifying the portfolio owner")
	exportCmd.Flags().StringVar(&exportRange, "range", "1Y", "Chart range to export: 1M, 3M, 6M, 1Y or ALL")
	exportCmd.Flags().StringVar(&exportInterval, "interval", "", "Override the sampling granularity: day, week or month")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "valuation.csv", "File to write the CSV to, '-' for stdout")
	exportCmd.MarkFlagRequired("token")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the portfolio valuation series as CSV",
	Long:  `Fetch the caller's transaction ledger, value the holdings over the requested range and write the daily valuation series to a CSV file.`,
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
		common.SetupCache()

		if viper.GetString("database.url") != "" {
			if err := database.Connect(context.Background()); err != nil {
				log.Fatal().Err(err).Msg("could not connect to database")
			}
		}

		client := data.NewClient()
		manager := data.NewManager(client)
		svc := portfolio.NewService(client, manager)

		ctx := context.Background()
		ledger, err := svc.ListTransactions(ctx, exportToken)
		if err != nil {
			log.Fatal().Err(err).Msg("could not fetch transaction ledger")
		}

		series, _, err := svc.GetValuationSeries(ctx, ledger, exportRange, exportInterval)
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute valuation series")
		}

		dates := dataframe.NewSeriesTime("date", &dataframe.SeriesInit{Size: len(series)})
		values := dataframe.NewSeriesFloat64("value", &dataframe.SeriesInit{Size: len(series)})
		for idx, point := range series {
			dates.Update(idx, point.Date, dataframe.DontLock)
			values.Update(idx, point.Value, dataframe.DontLock)
		}
		df := dataframe.NewDataFrame(dates, values)

		fh := os.Stdout
		if exportOutput != "-" {
			fh, err = os.Create(exportOutput)
			if err != nil {
				log.Fatal().Err(err).Str("File", exportOutput).Msg("could not create output file")
			}
			defer fh.Close()
		}

		if err := exports.ExportToCSV(ctx, fh, df); err != nil {
			log.Fatal().Err(err).Msg("csv export failed")
		}
	},
}
