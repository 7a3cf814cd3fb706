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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fintrackit/ft-api/common"
	"github.com/fintrackit/ft-api/portfolio"
)

var _ = Describe("Transaction ledger", func() {
	var (
		tz     *time.Location
		ledger []*portfolio.Transaction
	)

	BeforeEach(func() {
		tz = common.GetTimezone()
		ledger = []*portfolio.Transaction{
			trx("t2", "TLKM", portfolio.BuyTransaction, 500, 3100, time.Date(2025, 1, 20, 0, 0, 0, 0, tz)),
			trx("t1", "BBCA", portfolio.BuyTransaction, 100, 9500, time.Date(2025, 1, 6, 0, 0, 0, 0, tz)),
			trx("t3", "BBCA", portfolio.SellTransaction, 40, 9800, time.Date(2025, 2, 3, 0, 0, 0, 0, tz)),
		}
	})

	Context("when slicing by date", func() {
		It("keeps transactions on or before the cutoff", func() {
			sliced := portfolio.LedgerAsOf(ledger, time.Date(2025, 1, 20, 0, 0, 0, 0, tz))
			Expect(sliced).To(HaveLen(2))
			for _, t := range sliced {
				Expect(t.TransactionDate.After(time.Date(2025, 1, 20, 0, 0, 0, 0, tz))).To(BeFalse())
			}
		})

		It("does not mutate the input", func() {
			portfolio.LedgerAsOf(ledger, time.Date(2025, 1, 20, 0, 0, 0, 0, tz))
			Expect(ledger[0].ID).To(Equal("t2"))
		})
	})

	Context("when inspecting the ledger", func() {
		It("lists distinct instruments in first occurrence order", func() {
			Expect(portfolio.StockCodes(ledger)).To(Equal([]string{"TLKM", "BBCA"}))
		})

		It("finds the oldest transaction date", func() {
			oldest, ok := portfolio.OldestTransactionDate(ledger)
			Expect(ok).To(BeTrue())
			Expect(oldest).To(Equal(time.Date(2025, 1, 6, 0, 0, 0, 0, tz)))
		})

		It("reports no oldest date for an empty ledger", func() {
			_, ok := portfolio.OldestTransactionDate(nil)
			Expect(ok).To(BeFalse())
		})

		It("sorts chronologically preserving same-day order", func() {
			portfolio.SortLedger(ledger)
			Expect(ledger[0].ID).To(Equal("t1"))
			Expect(ledger[1].ID).To(Equal("t2"))
			Expect(ledger[2].ID).To(Equal("t3"))
		})
	})

	Context("when fingerprinting the ledger", func() {
		It("is stable across input orderings", func() {
			a, err := portfolio.LedgerFingerprint(ledger)
			Expect(err).To(BeNil())

			reversed := []*portfolio.Transaction{ledger[2], ledger[1], ledger[0]}
			b, err := portfolio.LedgerFingerprint(reversed)
			Expect(err).To(BeNil())
			Expect(a).To(Equal(b))
		})

		It("changes when a transaction changes", func() {
			a, err := portfolio.LedgerFingerprint(ledger)
			Expect(err).To(BeNil())

			modified := append([]*portfolio.Transaction{}, ledger...)
			modified = append(modified, trx("t4", "BBCA", portfolio.BuyTransaction, 10, 9700, time.Date(2025, 2, 10, 0, 0, 0, 0, tz)))
			b, err := portfolio.LedgerFingerprint(modified)
			Expect(err).To(BeNil())
			Expect(a).ToNot(Equal(b))
		})
	})

	Context("when validating a transaction", func() {
		It("accepts well-formed buys and sells", func() {
			Expect(trx("t1", "BBCA", portfolio.BuyTransaction, 1, 100, time.Now()).Validate()).To(BeNil())
			Expect(trx("t1", "BBCA", portfolio.SellTransaction, 1, 100, time.Now()).Validate()).To(BeNil())
		})

		It("rejects unknown transaction types", func() {
			Expect(trx("t1", "BBCA", "transfer", 1, 100, time.Now()).Validate()).To(MatchError(portfolio.ErrInvalidTransactionType))
		})

		It("rejects zero and negative quantities", func() {
			Expect(trx("t1", "BBCA", portfolio.BuyTransaction, 0, 100, time.Now()).Validate()).To(MatchError(portfolio.ErrInvalidQuantity))
			Expect(trx("t1", "BBCA", portfolio.BuyTransaction, -5, 100, time.Now()).Validate()).To(MatchError(portfolio.ErrInvalidQuantity))
		})
	})
})
