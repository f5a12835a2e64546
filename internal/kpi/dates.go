// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kpi

import (
	"strings"
	"time"
)

// dateFormats is the fixed parse order for date strings found in notices.
// Ambiguous inputs are resolved by position in this list, not by guessing
// locale: day/month numeric comes first because ASX notices use it.
var dateFormats = []string{
	"2/1/2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate tries each known format in order and returns the first success.
// The boolean is false when no format applies; callers treat that as absence
// of a value, not an error.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
