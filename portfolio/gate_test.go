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

package portfolio_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fintrackit/ft-api/common"
	"github.com/fintrackit/ft-api/portfolio"
)

var _ = Describe("Sell gate", func() {
	var (
		tz     *time.Location
		ledger []*portfolio.Transaction
	)

	BeforeEach(func() {
		tz = common.GetTimezone()
		ledger = []*portfolio.Transaction{
			trx("t1", "BBCA", portfolio.BuyTransaction, 100, 9500, time.Date(2025, 1, 6, 0, 0, 0, 0, tz)),
			trx("t2", "BBCA", portfolio.SellTransaction, 40, 9800, time.Date(2025, 2, 3, 0, 0, 0, 0, tz)),
		}
	})

	Context("when validating a proposed sell", func() {
		It("allows a sell covered by holdings", func() {
			proposed := trx("t3", "BBCA", portfolio.SellTransaction, 60, 9900, time.Date(2025, 3, 3, 0, 0, 0, 0, tz))
			Expect(portfolio.CanSell(ledger, proposed)).To(BeNil())
		})

		It("rejects a sell exceeding holdings with the available quantity", func() {
			proposed := trx("t3", "BBCA", portfolio.SellTransaction, 61, 9900, time.Date(2025, 3, 3, 0, 0, 0, 0, tz))
			err := portfolio.CanSell(ledger, proposed)
			Expect(err).ToNot(BeNil())

			var insufficient *portfolio.InsufficientHoldingsError
			Expect(errors.As(err, &insufficient)).To(BeTrue())
			Expect(insufficient.Available).To(Equal(int64(60)))
			Expect(err.Error()).To(Equal("insufficient stock quantity of BBCA. Available: 60"))
		})

		It("only counts transactions dated on or before the proposed date", func() {
			proposed := trx("t3", "BBCA", portfolio.SellTransaction, 80, 9900, time.Date(2025, 1, 20, 0, 0, 0, 0, tz))
			// the 40 share sell on Feb 3 hasn't happened yet, 100 are available
			Expect(portfolio.CanSell(ledger, proposed)).To(BeNil())
		})

		It("rejects a sell of an instrument never bought", func() {
			proposed := trx("t3", "GOTO", portfolio.SellTransaction, 1, 50, time.Date(2025, 3, 3, 0, 0, 0, 0, tz))
			err := portfolio.CanSell(ledger, proposed)

			var insufficient *portfolio.InsufficientHoldingsError
			Expect(errors.As(err, &insufficient)).To(BeTrue())
			Expect(insufficient.Available).To(Equal(int64(0)))
		})

		It("rejects a sell dated before the first buy", func() {
			proposed := trx("t3", "BBCA", portfolio.SellTransaction, 10, 9000, time.Date(2024, 12, 1, 0, 0, 0, 0, tz))
			err := portfolio.CanSell(ledger, proposed)

			var insufficient *portfolio.InsufficientHoldingsError
			Expect(errors.As(err, &insufficient)).To(BeTrue())
		})

		It("lets buys through without a holdings check", func() {
			proposed := trx("t3", "GOTO", portfolio.BuyTransaction, 1000, 50, time.Date(2025, 3, 3, 0, 0, 0, 0, tz))
			Expect(portfolio.CanSell(ledger, proposed)).To(BeNil())
		})

		It("rejects invalid transaction types", func() {
			proposed := trx("t3", "BBCA", "short", 10, 9900, time.Date(2025, 3, 3, 0, 0, 0, 0, tz))
			Expect(errors.Is(portfolio.CanSell(ledger, proposed), portfolio.ErrInvalidTransactionType)).To(BeTrue())
		})

		It("rejects non-positive quantities", func() {
			proposed := trx("t3", "BBCA", portfolio.SellTransaction, 0, 9900, time.Date(2025, 3, 3, 0, 0, 0, 0, tz))
			Expect(errors.Is(portfolio.CanSell(ledger, proposed), portfolio.ErrInvalidQuantity)).To(BeTrue())
		})
	})
})
