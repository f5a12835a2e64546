// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kpi

import (
	"regexp"
	"strings"
)

// typeKeywords maps each document type to its trigger keywords. The slice
// order is the scan order: the first type with any keyword present wins, so
// a notice mentioning both "dividend" and "split" classifies as DIVIDEND.
var typeKeywords = []struct {
	Type     DocumentType
	Keywords []string
}{
	{DocTypeDividend, []string{"dividend", "distribution"}},
	{DocTypeSplit, []string{"split", "subdivision"}},
	{DocTypeBonus, []string{"bonus", "scrip"}},
	{DocTypeRights, []string{"rights", "entitlements"}},
	{DocTypeCapitalReturn, []string{"capital", "return", "buyback"}},
}

// DetectDocumentType classifies the document from its full text. This is a
// best-effort tag, not authoritative: an empty result means no keyword
// matched. Case-insensitive.
func DetectDocumentType(text string) DocumentType {
	lower := strings.ToLower(text)
	for _, tk := range typeKeywords {
		for _, kw := range tk.Keywords {
			if strings.Contains(lower, kw) {
				return tk.Type
			}
		}
	}
	return ""
}

// asxPartHeaders are the explicit ASX appendix section headers that name the
// dividend class directly. Checked before any looser heuristic.
var asxPartHeaders = []struct {
	re      *regexp.Regexp
	subtype DividendSubtype
}{
	{regexp.MustCompile(`part\s+3a\s*-\s*ordinary\s+dividend`), SubtypeOrdinary},
	{regexp.MustCompile(`part\s+3b\s*-\s*interim\s+dividend`), SubtypeInterim},
	{regexp.MustCompile(`part\s+3c\s*-\s*special\s+dividend`), SubtypeSpecial},
	{regexp.MustCompile(`part\s+3d\s*-\s*final\s+dividend`), SubtypeFinal},
}

var reDividendTypeBlock = regexp.MustCompile(`type of dividend/distribution\s+([a-z][a-z /-]{2,40})`)

// DetectDividendSubtype infers the dividend class from the document text.
// Explicit ASX section headers are preferred, then the labeled
// "Type of dividend/distribution" value block, then broad keyword fallbacks.
// Returns the empty subtype when nothing applies.
func DetectDividendSubtype(text string) DividendSubtype {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)

	for _, h := range asxPartHeaders {
		if h.re.MatchString(lower) {
			return h.subtype
		}
	}

	if m := reDividendTypeBlock.FindStringSubmatch(lower); m != nil {
		raw := strings.TrimSpace(m[1])
		switch {
		case strings.Contains(raw, "ordinary"):
			return SubtypeOrdinary
		case strings.Contains(raw, "interim"):
			return SubtypeInterim
		case strings.Contains(raw, "final"):
			return SubtypeFinal
		case strings.Contains(raw, "special"):
			return SubtypeSpecial
		}
	}

	switch {
	case strings.Contains(lower, "interim"):
		return SubtypeInterim
	case strings.Contains(lower, "final"):
		return SubtypeFinal
	case strings.Contains(lower, "special"):
		return SubtypeSpecial
	case strings.Contains(lower, "ordinary dividend"):
		return SubtypeOrdinary
	}
	return ""
}
