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
	"net/http"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/fintrackit/ft-api/data"
)

var _ = Describe("Manager", func() {
	var (
		manager    *data.Manager
		httpClient *http.Client
		ctx        context.Context
	)

	BeforeEach(func() {
		viper.Set("database.url", "")
		httpClient = &http.Client{}
		httpmock.ActivateNonDefault(httpClient)
		manager = data.NewManager(data.NewClientWith("https://backend.test", "service-key", httpClient))
		ctx = context.Background()

		httpmock.RegisterResponder("GET", "https://backend.test/secure/stock-price/BBCA/2025-03-03_2025-03-07",
			httpmock.NewStringResponder(200, `{
				"symbol": "BBCA",
				"prices": [{"date": "2025-03-03", "closing_price": 9700}]
			}`))
		httpmock.RegisterResponder("GET", "https://backend.test/secure/stock-price/TLKM/2025-03-03_2025-03-07",
			httpmock.NewStringResponder(200, `{
				"symbol": "TLKM",
				"prices": [{"date": "2025-03-03", "closing_price": 3100}]
			}`))
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
	})

	Context("when fetching a single series", func() {
		It("fetches from the backend and caches the result", func() {
			series, err := manager.GetPriceSeries(ctx, "BBCA", day(2025, 3, 3), day(2025, 3, 7))
			Expect(err).To(BeNil())
			Expect(series.Prices).To(HaveLen(1))
			Expect(httpmock.GetTotalCallCount()).To(Equal(1))

			// second request is served from the cache
			series, err = manager.GetPriceSeries(ctx, "BBCA", day(2025, 3, 3), day(2025, 3, 7))
			Expect(err).To(BeNil())
			Expect(series.Prices).To(HaveLen(1))
			Expect(httpmock.GetTotalCallCount()).To(Equal(1))
		})

		It("treats different date ranges as different cache entries", func() {
			httpmock.RegisterResponder("GET", "https://backend.test/secure/stock-price/BBCA/2025-03-03_2025-03-08",
				httpmock.NewStringResponder(200, `{"symbol": "BBCA", "prices": []}`))

			_, err := manager.GetPriceSeries(ctx, "BBCA", day(2025, 3, 3), day(2025, 3, 7))
			Expect(err).To(BeNil())
			_, err = manager.GetPriceSeries(ctx, "BBCA", day(2025, 3, 3), day(2025, 3, 8))
			Expect(err).To(BeNil())
			Expect(httpmock.GetTotalCallCount()).To(Equal(2))
		})

		It("propagates backend failures", func() {
			httpmock.RegisterResponder("GET", "https://backend.test/secure/stock-price/GOTO/2025-03-03_2025-03-07",
				httpmock.NewStringResponder(500, `{"detail": "boom"}`))

			_, err := manager.GetPriceSeries(ctx, "GOTO", day(2025, 3, 3), day(2025, 3, 7))
			Expect(err).ToNot(BeNil())
			Expect(manager.Cache().Len()).To(Equal(0))
		})
	})

	Context("when fetching many series", func() {
		It("returns one series per requested instrument", func() {
			result, err := manager.GetAllPriceSeries(ctx, []string{"BBCA", "TLKM"}, day(2025, 3, 3), day(2025, 3, 7))
			Expect(err).To(BeNil())
			Expect(result).To(HaveLen(2))
			Expect(result["BBCA"].Prices[0].Close).To(Equal(9700.0))
			Expect(result["TLKM"].Prices[0].Close).To(Equal(3100.0))
		})

		It("fails the whole batch when any instrument fails", func() {
			httpmock.RegisterResponder("GET", "https://backend.test/secure/stock-price/GOTO/2025-03-03_2025-03-07",
				httpmock.NewStringResponder(500, `{"detail": "boom"}`))

			_, err := manager.GetAllPriceSeries(ctx, []string{"BBCA", "GOTO"}, day(2025, 3, 3), day(2025, 3, 7))
			Expect(err).ToNot(BeNil())
		})

		It("handles an empty instrument list", func() {
			result, err := manager.GetAllPriceSeries(ctx, nil, day(2025, 3, 3), day(2025, 3, 7))
			Expect(err).To(BeNil())
			Expect(result).To(BeEmpty())
		})
	})
})
