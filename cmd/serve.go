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
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"runtime/trace"

	"github.com/go-co-op/gocron"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fintrackit/ft-api/common"
	"github.com/fintrackit/ft-api/data"
	"github.com/fintrackit/ft-api/data/database"
	"github.com/fintrackit/ft-api/jwks"
	"github.com/fintrackit/ft-api/middleware"
	"github.com/fintrackit/ft-api/observability/opentelemetry"
	"github.com/fintrackit/ft-api/portfolio"
	"github.com/fintrackit/ft-api/router"
)

func init() {
	viper.BindEnv("server.port", "PORT")
	serveCmd.Flags().IntP("port", "p", 3000, "Port to run application server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ftapi server",
	Long:  `Run HTTP server that implements the FinTrack dashboard API`,
	Run: func(cmd *cobra.Command, args []string) {
		if Profile {
			f, err := os.Create("profile.out")
			if err != nil {
				log.Fatal().Err(err).Msg("could not create profile output")
			}
			pprof.StartCPUProfile(f)
			defer pprof.StopCPUProfile()
		}

		if Trace {
			f, err := os.Create("trace.out")
			if err != nil {
				log.Fatal().Err(err).Msg("failed to create trace output file")
			}
			defer func() {
				if err := f.Close(); err != nil {
					log.Fatal().Err(err).Msg("failed to close trace file")
				}
			}()

			if err := trace.Start(f); err != nil {
				log.Fatal().Err(err).Msg("failed to start trace")
			}
			defer trace.Stop()
		}

		common.SetupLogging()
		common.SetupCache()
		log.Info().Msg("initialized logging")

		if viper.GetString("otlp.endpoint") != "" {
			shutdownTracer, err := opentelemetry.Setup()
			if err != nil {
				log.Fatal().Err(err).Msg("failed to initialize tracing")
			}
			defer func() {
				if err := shutdownTracer(context.Background()); err != nil {
					log.Error().Stack().Err(err).Msg("tracer shutdown failed")
				}
			}()
		}

		// optional local price mirror
		if viper.GetString("database.url") != "" {
			if err := database.Connect(context.Background()); err != nil {
				log.Fatal().Err(err).Msg("could not connect to database")
			}
		}

		// Initialize data framework
		client := data.NewClient()
		manager := data.NewManager(client)
		svc := portfolio.NewService(client, manager)
		log.Info().Msg("initialized data framework")

		// Create new Fiber instance
		app := fiber.New()

		// shutdown cleanly on interrupt
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		go func() {
			sig := <-c // block until signal is read
			fmt.Printf("Received signal: '%s'; shutting down...\n", sig.String())
			if err := app.Shutdown(); err != nil {
				log.Fatal().Err(err).Msg("shutdown failed")
			}
		}()

		// Configure CORS
		corsConfig := cors.Config{
			AllowOrigins: "http://localhost:3000, https://dashboard.fintrackit.my.id",
			AllowHeaders: "*",
			AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		}
		app.Use(cors.New(corsConfig))

		// Setup logging middleware
		app.Use(middleware.NewLogger())

		// Configure authentication
		jwksAutoRefresh, jwksURL := jwks.SetupJWKS()

		// Setup routes
		router.SetupRoutes(app, client, svc, jwksAutoRefresh, jwksURL)

		// Expire stale price series periodically; the byte cache's
		// local LRU tier has no per-entry TTL, so purge it hourly
		scheduler := gocron.NewScheduler(common.GetTimezone())
		scheduler.Every(1).Minutes().Do(func() {
			if n := manager.Cache().Sweep(); n > 0 {
				log.Debug().Int("Expired", n).Msg("swept price series cache")
			}
		})
		scheduler.Every(1).Hours().Do(common.CachePurge)
		scheduler.StartAsync()

		// Start server
		if err := app.Listen(":" + viper.GetString("server.port")); err != nil {
			log.Fatal().Err(err).Msg("server exited")
		}
	},
}
