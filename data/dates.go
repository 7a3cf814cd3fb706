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
	"time"
)

// ParseDate reads a day-granularity date, accepting both the bare
// 2006-01-02 form and a full RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateFormat, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// DatePoints generates the sequence of valuation dates between start
// and end, stepping by the requested granularity. The sequence is
// strictly ascending, begins at start, and always includes end as the
// final point even when end does not land on a step boundary.
func DatePoints(start, end time.Time, granularity Granularity) ([]time.Time, error) {
	if start.After(end) {
		return nil, ErrInvalidTimeRange
	}

	points := make([]time.Time, 0, 64)
	curr := start
	for !curr.After(end) {
		points = append(points, curr)
		switch granularity {
		case GranularityDay:
			curr = curr.AddDate(0, 0, 1)
		case GranularityWeek:
			curr = curr.AddDate(0, 0, 7)
		case GranularityMonth:
			curr = curr.AddDate(0, 1, 0)
		default:
			return nil, ErrUnknownGranularity
		}
	}

	if !points[len(points)-1].Equal(end) {
		points = append(points, end)
	}

	return points, nil
}

// ChartRange maps one of the dashboard chart ranges (1M, 3M, 6M, 1Y,
// ALL) to a start date and sampling granularity. For ALL the window
// opens at oldest (the first transaction date); when oldest is zero a
// one year window is used. Spans longer than a year sample monthly,
// shorter spans weekly.
func ChartRange(chartRange string, now time.Time, oldest time.Time) (time.Time, Granularity) {
	switch chartRange {
	case "1M":
		return now.AddDate(0, -1, 0), GranularityDay
	case "3M":
		return now.AddDate(0, -3, 0), GranularityWeek
	case "6M":
		return now.AddDate(0, -6, 0), GranularityWeek
	case "1Y":
		return now.AddDate(-1, 0, 0), GranularityWeek
	case "ALL":
		if oldest.IsZero() {
			return now.AddDate(-1, 0, 0), GranularityWeek
		}
		if now.Year()-oldest.Year() > 1 {
			return oldest, GranularityMonth
		}
		return oldest, GranularityWeek
	default:
		return now.AddDate(0, -6, 0), GranularityWeek
	}
}
