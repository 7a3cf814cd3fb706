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

package data_test

import (
	"context"
	"errors"
	"net/http"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fintrackit/ft-api/data"
)

var _ = Describe("Backend client", func() {
	var (
		client     *data.Client
		httpClient *http.Client
		ctx        context.Context
	)

	BeforeEach(func() {
		httpClient = &http.Client{}
		httpmock.ActivateNonDefault(httpClient)
		client = data.NewClientWith("https://backend.test", "service-key", httpClient)
		ctx = context.Background()
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
	})

	Context("when fetching stock prices", func() {
		It("parses the price response and sorts it by date", func() {
			httpmock.RegisterResponder("GET", "https://backend.test/secure/stock-price/BBCA/2025-03-03_2025-03-07",
				httpmock.NewStringResponder(200, `{
					"symbol": "BBCA",
					"prices": [
						{"date": "2025-03-05", "closing_price": 9800, "volume_thousands": 120},
						{"date": "2025-03-03", "closing_price": 9700, "volume_thousands": 150}
					]
				}`))

			series, err := client.StockPrice(ctx, "BBCA", day(2025, 3, 3), day(2025, 3, 7))
			Expect(err).To(BeNil())
			Expect(series.Symbol).To(Equal("BBCA"))
			Expect(series.Prices).To(HaveLen(2))
			Expect(series.Prices[0].Close).To(Equal(9700.0))
			Expect(series.Prices[1].Close).To(Equal(9800.0))
			Expect(series.Prices[0].Date.Before(series.Prices[1].Date)).To(BeTrue())
		})

		It("accepts RFC3339 dates and skips unparseable ones", func() {
			httpmock.RegisterResponder("GET", "https://backend.test/secure/stock-price/BBCA/2025-03-03_2025-03-07",
				httpmock.NewStringResponder(200, `{
					"symbol": "BBCA",
					"prices": [
						{"date": "2025-03-03T00:00:00Z", "closing_price": 9700},
						{"date": "bogus", "closing_price": 9750}
					]
				}`))

			series, err := client.StockPrice(ctx, "BBCA", day(2025, 3, 3), day(2025, 3, 7))
			Expect(err).To(BeNil())
			Expect(series.Prices).To(HaveLen(1))
			Expect(series.Prices[0].Close).To(Equal(9700.0))
		})

		It("attaches the service API key", func() {
			httpmock.RegisterResponder("GET", "https://backend.test/secure/stock-price/BBCA/2025-03-03_2025-03-07",
				func(req *http.Request) (*http.Response, error) {
					Expect(req.Header.Get("X-API-Key")).To(Equal("service-key"))
					return httpmock.NewStringResponse(200, `{"symbol": "BBCA", "prices": []}`), nil
				})

			_, err := client.StockPrice(ctx, "BBCA", day(2025, 3, 3), day(2025, 3, 7))
			Expect(err).To(BeNil())
		})

		It("rejects inverted time ranges locally", func() {
			_, err := client.StockPrice(ctx, "BBCA", day(2025, 3, 7), day(2025, 3, 3))
			Expect(errors.Is(err, data.ErrInvalidTimeRange)).To(BeTrue())
			Expect(httpmock.GetTotalCallCount()).To(Equal(0))
		})

		It("maps 401 responses to ErrUnauthorized", func() {
			httpmock.RegisterResponder("GET", "https://backend.test/secure/stock-price/BBCA/2025-03-03_2025-03-07",
				httpmock.NewStringResponder(401, `{"detail": "invalid token"}`))

			_, err := client.StockPrice(ctx, "BBCA", day(2025, 3, 3), day(2025, 3, 7))
			Expect(errors.Is(err, data.ErrUnauthorized)).To(BeTrue())
		})

		It("surfaces the backend detail message for other failures", func() {
			httpmock.RegisterResponder("GET", "https://backend.test/secure/stock-price/BBCA/2025-03-03_2025-03-07",
				httpmock.NewStringResponder(500, `{"detail": "upstream exchange is down"}`))

			_, err := client.StockPrice(ctx, "BBCA", day(2025, 3, 3), day(2025, 3, 7))
			Expect(errors.Is(err, data.ErrBackendStatus)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("upstream exchange is down"))
		})
	})

	Context("when performing generic requests", func() {
		It("forwards the caller's bearer token", func() {
			httpmock.RegisterResponder("POST", "https://backend.test/internal/transactions/list",
				func(req *http.Request) (*http.Response, error) {
					Expect(req.Header.Get("Authorization")).To(Equal("Bearer user-token"))
					Expect(req.Header.Get("Content-Type")).To(Equal("application/json"))
					return httpmock.NewStringResponse(200, `[]`), nil
				})

			status, body, err := client.Do(ctx, http.MethodPost, "/internal/transactions/list", "user-token", map[string]string{"token": "user-token"})
			Expect(err).To(BeNil())
			Expect(status).To(Equal(200))
			Expect(string(body)).To(Equal(`[]`))
		})

		It("omits the authorization header without a token", func() {
			httpmock.RegisterResponder("GET", "https://backend.test/health",
				func(req *http.Request) (*http.Response, error) {
					Expect(req.Header.Get("Authorization")).To(BeEmpty())
					return httpmock.NewStringResponse(200, `ok`), nil
				})

			_, _, err := client.Do(ctx, http.MethodGet, "/health", "", nil)
			Expect(err).To(BeNil())
		})

		It("returns the status and body of failed responses unmodified", func() {
			httpmock.RegisterResponder("GET", "https://backend.test/health",
				httpmock.NewStringResponder(503, `{"detail": "maintenance"}`))

			status, body, err := client.Do(ctx, http.MethodGet, "/health", "", nil)
			Expect(err).To(BeNil())
			Expect(status).To(Equal(503))
			Expect(string(body)).To(ContainSubstring("maintenance"))
		})
	})

	Context("when relaying proxy requests", func() {
		It("preserves the path, query and raw body", func() {
			httpmock.RegisterResponder("POST", "https://backend.test/secure/returns?period=1y",
				func(req *http.Request) (*http.Response, error) {
					Expect(req.Header.Get("Authorization")).To(Equal("Bearer user-token"))
					return httpmock.NewStringResponse(200, `{"return": 0.12}`), nil
				})

			status, body, err := client.Forward(ctx, http.MethodPost, "/secure/returns?period=1y", "user-token", []byte(`{"stock_codes": ["BBCA", "TLKM"]}`))
			Expect(err).To(BeNil())
			Expect(status).To(Equal(200))
			Expect(string(body)).To(ContainSubstring("0.12"))
		})
	})
})
