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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fintrackit/ft-api/data"
)

var _ = Describe("Series cache", func() {
	var (
		cache  *data.SeriesCache
		series *data.PriceSeries
		start  time.Time
		end    time.Time
	)

	BeforeEach(func() {
		start = day(2025, 3, 3)
		end = day(2025, 3, 7)
		series = &data.PriceSeries{
			Symbol: "BBCA",
			Prices: []data.PricePoint{
				{Date: day(2025, 3, 3), Close: 9700},
			},
		}
	})

	Context("with the default TTL", func() {
		BeforeEach(func() {
			cache = data.NewSeriesCache(0)
		})

		It("misses on an empty cache", func() {
			_, ok := cache.Get("BBCA", start, end)
			Expect(ok).To(BeFalse())
		})

		It("returns a freshly set series", func() {
			cache.Set("BBCA", start, end, series)
			got, ok := cache.Get("BBCA", start, end)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(series))
		})

		It("keys on instrument and date range", func() {
			cache.Set("BBCA", start, end, series)

			_, ok := cache.Get("TLKM", start, end)
			Expect(ok).To(BeFalse())

			_, ok = cache.Get("BBCA", start, end.AddDate(0, 0, 1))
			Expect(ok).To(BeFalse())
		})

		It("builds distinct keys per range", func() {
			Expect(data.SeriesKey("BBCA", start, end)).To(Equal("BBCA|2025-03-03_2025-03-07"))
			Expect(data.SeriesKey("BBCA", start, end)).ToNot(Equal(data.SeriesKey("BBCA", start, end.AddDate(0, 0, 1))))
		})
	})

	Context("with a short TTL", func() {
		BeforeEach(func() {
			cache = data.NewSeriesCache(50 * time.Millisecond)
		})

		It("expires entries after the TTL", func() {
			cache.Set("BBCA", start, end, series)

			_, ok := cache.Get("BBCA", start, end)
			Expect(ok).To(BeTrue())

			time.Sleep(60 * time.Millisecond)
			_, ok = cache.Get("BBCA", start, end)
			Expect(ok).To(BeFalse())
		})

		It("sweeps expired entries", func() {
			cache.Set("BBCA", start, end, series)
			cache.Set("TLKM", start, end, series)
			Expect(cache.Len()).To(Equal(2))

			time.Sleep(60 * time.Millisecond)
			cache.Set("ASII", start, end, series)

			Expect(cache.Sweep()).To(Equal(2))
			Expect(cache.Len()).To(Equal(1))

			_, ok := cache.Get("ASII", start, end)
			Expect(ok).To(BeTrue())
		})

		It("overwrites an expired entry on set", func() {
			cache.Set("BBCA", start, end, series)
			time.Sleep(60 * time.Millisecond)

			fresh := &data.PriceSeries{Symbol: "BBCA"}
			cache.Set("BBCA", start, end, fresh)

			got, ok := cache.Get("BBCA", start, end)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(fresh))
		})
	})
})
