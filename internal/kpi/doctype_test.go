// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kpi

import "testing"

func TestDetectDocumentType(t *testing.T) {
	cases := []struct {
		name string
		text string
		want DocumentType
	}{
		{"dividend", "Notice of Dividend for the half year", DocTypeDividend},
		{"distribution", "Quarterly Distribution Statement", DocTypeDividend},
		{"split", "Stock Split Announcement", DocTypeSplit},
		{"subdivision", "share subdivision on a 1 for 2 basis", DocTypeSplit},
		{"bonus", "Bonus issue of fully paid shares", DocTypeBonus},
		{"rights", "Renounceable rights offer", DocTypeRights},
		{"buyback", "on-market buyback program", DocTypeCapitalReturn},
		{"capital return", "return of capital to shareholders", DocTypeCapitalReturn},
		{"case insensitive", "NOTICE OF DIVIDEND", DocTypeDividend},
		{"dividend wins over split", "dividend paid following the split", DocTypeDividend},
		{"unknown", "general meeting of shareholders", ""},
		{"empty", "", ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := DetectDocumentType(c.text); got != c.want {
				t.Errorf("DetectDocumentType(%q) = %q, want %q", c.text, got, c.want)
			}
		})
	}
}

func TestDetectDividendSubtype(t *testing.T) {
	cases := []struct {
		name string
		text string
		want DividendSubtype
	}{
		{"part header ordinary", "Part 3A - Ordinary dividend\n3A.1 details", SubtypeOrdinary},
		{"part header interim", "Part 3B - Interim dividend", SubtypeInterim},
		{"part header special", "Part 3C - Special dividend", SubtypeSpecial},
		{"part header final", "Part 3D - Final dividend", SubtypeFinal},
		{"labeled block", "Type of dividend/distribution  Ordinary\nCurrency AUD", SubtypeOrdinary},
		{"keyword interim", "the interim dividend of $0.30", SubtypeInterim},
		{"keyword final", "a final dividend has been declared", SubtypeFinal},
		{"keyword special", "a special dividend of $1.00", SubtypeSpecial},
		{"keyword ordinary", "fully paid ordinary dividend of $0.45", SubtypeOrdinary},
		{"none", "stock split announcement", ""},
		{"empty", "", ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := DetectDividendSubtype(c.text); got != c.want {
				t.Errorf("DetectDividendSubtype(%q) = %q, want %q", c.text, got, c.want)
			}
		})
	}
}
