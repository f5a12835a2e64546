// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kpi

import "testing"

func TestParseDate(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"15/03/2026", "2026-03-15", true},
		{"5/3/2026", "2026-03-05", true},
		{"15 March 2026", "2026-03-15", true},
		{"1 April 2026", "2026-04-01", true},
		{"15 Mar 2026", "2026-03-15", true},
		{"2026-03-15", "2026-03-15", true},
		{"March 15, 2026", "2026-03-15", true},
		{"Mar 15, 2026", "2026-03-15", true},
		{"  15 March 2026  ", "2026-03-15", true},
		{"31 Smarch 2026", "", false},
		{"not a date", "", false},
		{"", "", false},
		{"32 March 2026", "", false},
	}

	for _, c := range cases {
		parsed, ok := ParseDate(c.input)
		if ok != c.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", c.input, ok, c.ok)
			continue
		}
		if !ok {
			continue
		}
		if got := parsed.Format("2006-01-02"); got != c.want {
			t.Errorf("ParseDate(%q) = %s, want %s", c.input, got, c.want)
		}
	}
}

func TestParseDate_FormatOrder(t *testing.T) {
	// 05/03/2026 must resolve day-first, not month-first.
	parsed, ok := ParseDate("05/03/2026")
	if !ok {
		t.Fatal("expected 05/03/2026 to parse")
	}
	if got := parsed.Format("2006-01-02"); got != "2026-03-05" {
		t.Errorf("day/month order = %s, want 2026-03-05", got)
	}
}
