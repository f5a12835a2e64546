// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kpi

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cai-scan/internal/document"
)

const dividendNoticeText = `
BHP Group Limited
ABN 12 345 678 901
ASX Code: BHP
ISIN: AU0000014844

Notice of Dividend

The Board of BHP Group Limited hereby gives notice that a fully
paid ordinary dividend of $0.45 per share has been declared.

Announcement Date: 15 February 2026
Ex-Date: 15 March 2026
Record Date: 17 March 2026
Payment Date: 1 April 2026

Franking Information:
The dividend is 100% franked.
Franking tax credit: $0.1929 per share

Currency: AUD

For further information, please contact our Investor Relations team.
`

const stockSplitText = `
Rio Tinto PLC
ASX Code: RIO
ISIN: AU96004458985

Stock Split Announcement

Rio Tinto announces a share subdivision (split) on the following basis:

Subdivision Ratio: 1 share for every 2 held

Ex-Date: 1 May 2026
Record Date: 5 May 2026
Implementation Date: 15 May 2026

The new shares will be issued and trading will commence on
15 May 2026. All existing shareholders will receive the
additional shares automatically.

Currency: AUD
`

func TestParse_DividendNotice(t *testing.T) {
	result := NewParser().Parse(document.New(dividendNoticeText))

	assert.Equal(t, "BHP Group Limited", result.CompanyName.Value)
	assert.Greater(t, result.CompanyName.Confidence, 0.7)

	assert.Equal(t, "BHP", result.Ticker.Value)
	assert.Greater(t, result.Ticker.Confidence, 0.7)

	assert.Equal(t, "AU0000014844", result.ISIN.Value)
	assert.Greater(t, result.ISIN.Confidence, 0.7)

	assert.Equal(t, 0.45, result.DividendPerShare.Value)
	assert.Greater(t, result.DividendPerShare.Confidence, 0.7)

	assert.Equal(t, "2026-02-15", result.AnnouncementDate.Value)
	assert.Equal(t, "2026-03-15", result.ExDate.Value)
	assert.Equal(t, "2026-03-17", result.RecordDate.Value)
	assert.Equal(t, "2026-04-01", result.PaymentDate.Value)

	assert.Equal(t, 100.0, result.FrankingPercent.Value)
	assert.Greater(t, result.FrankingPercent.Confidence, 0.7)

	assert.Equal(t, "AUD", result.Currency.Value)
	assert.Equal(t, DocTypeDividend, result.DocumentType)
	assert.Equal(t, SubtypeOrdinary, result.DividendSubtype)

	// Dates are in order, the ISIN is well formed and both numeric fields
	// coerce cleanly, so no validator fired.
	assert.Empty(t, result.Warnings)
	assert.Greater(t, result.OverallConfidence, 0.75)
}

func TestParse_StockSplit(t *testing.T) {
	result := NewParser().Parse(document.New(stockSplitText))

	require.NotNil(t, result.CompanyName.Value)
	assert.Contains(t, result.CompanyName.Value, "Rio Tinto")
	assert.Equal(t, "RIO", result.Ticker.Value)

	// The 13-character identifier is still captured via the ISIN label so
	// the validator can flag it.
	assert.Equal(t, "AU96004458985", result.ISIN.Value)
	assert.True(t, hasWarningContaining(result, "ISIN"))

	require.NotNil(t, result.Ratio.Value)
	assert.Contains(t, result.Ratio.Value, "1")
	assert.Contains(t, result.Ratio.Value, "2")

	assert.Equal(t, "2026-05-01", result.ExDate.Value)
	assert.Equal(t, "2026-05-05", result.RecordDate.Value)
	assert.Nil(t, result.PaymentDate.Value)

	assert.Equal(t, DocTypeSplit, result.DocumentType)
	assert.Greater(t, result.OverallConfidence, 0.60)
}

func TestParse_DateOrderViolation(t *testing.T) {
	text := `
Test Company
ASX Code: TST
ISIN: AU1234567890

Ex-Date: 1 April 2026
Record Date: 17 March 2026
Payment Date: 15 May 2026

Dividend: $0.50 per share
`
	result := NewParser().Parse(document.New(text))

	require.True(t, hasWarningContaining(result, "Date order"))
	assert.InDelta(t, 0.65, result.ExDate.Confidence, 1e-9)
	assert.InDelta(t, 0.65, result.RecordDate.Confidence, 1e-9)
	assert.InDelta(t, 0.65, result.PaymentDate.Confidence, 1e-9)

	// The well-formed ISIN must not be flagged alongside the date warning.
	assert.False(t, hasWarningContaining(result, "ISIN"))
}

func TestParse_InvalidISIN(t *testing.T) {
	text := "Test Company\nISIN: INVALID123\nDividend: $0.50 per share"
	result := NewParser().Parse(document.New(text))

	assert.Equal(t, "INVALID123", result.ISIN.Value)
	require.True(t, hasWarningContaining(result, "ISIN"))
	assert.Less(t, result.ISIN.Confidence, 0.9)
}

func TestParse_EvidenceTracking(t *testing.T) {
	text := "BHP Group Limited\nEx-Date: 15 March 2026\nDividend: $0.45 per share"
	result := NewParser().Parse(document.New(text))

	for _, f := range []*Field{&result.CompanyName, &result.ExDate, &result.DividendPerShare} {
		require.NotNil(t, f.Value)
		require.NotNil(t, f.Evidence)
		assert.GreaterOrEqual(t, f.Evidence.Page, 1)
		assert.NotEmpty(t, f.Evidence.Snippet)
		assert.NotContains(t, f.Evidence.Snippet, "\n")
	}
}

func TestParse_MultiplePages(t *testing.T) {
	doc := document.New(
		"BHP Group Limited\nASX Code: BHP",
		"Dividend: $0.45 per share\nEx-Date: 15 March 2026",
	)
	result := NewParser().Parse(doc)

	assert.Equal(t, "BHP Group Limited", result.CompanyName.Value)
	assert.Equal(t, 0.45, result.DividendPerShare.Value)

	require.NotNil(t, result.CompanyName.Evidence)
	assert.Equal(t, 1, result.CompanyName.Evidence.Page)
	require.NotNil(t, result.DividendPerShare.Evidence)
	assert.Equal(t, 2, result.DividendPerShare.Evidence.Page)
}

func TestParse_EmptyDocument(t *testing.T) {
	result := NewParser().Parse(document.New(""))

	for _, f := range result.trackedFields() {
		assert.Nil(t, f.Value)
		assert.Equal(t, 0.0, f.Confidence)
		assert.Nil(t, f.Evidence)
	}
	assert.Equal(t, DocumentType(""), result.DocumentType)
	assert.Equal(t, 0.0, result.OverallConfidence)
	assert.Empty(t, result.Warnings)
}

func TestParse_PartialData(t *testing.T) {
	result := NewParser().Parse(document.New("BHP Group Limited\nDividend: $0.50"))

	assert.Equal(t, "BHP Group Limited", result.CompanyName.Value)
	assert.Equal(t, 0.50, result.DividendPerShare.Value)
	assert.Nil(t, result.Ticker.Value)
}

func TestParse_MalformedCurrency(t *testing.T) {
	result := NewParser().Parse(document.New("Dividend: $0.45 per share\nCurrency: INVALID"))

	// An unrecognized currency must not break dividend extraction.
	assert.Equal(t, 0.45, result.DividendPerShare.Value)
	assert.Nil(t, result.Currency.Value)
}

func TestParse_CurrencyPriorityStopsAtFirstHit(t *testing.T) {
	// AUD is checked before USD, so a document mentioning both resolves AUD
	// and USD is never considered.
	result := NewParser().Parse(document.New("Amounts in USD unless noted. Settlement currency AUD.\nDividend: $1.25 per share"))
	assert.Equal(t, "AUD", result.Currency.Value)
	assert.Equal(t, 0.95, result.Currency.Confidence)
}

func TestParse_DividendFallbackPrefersPerContext(t *testing.T) {
	text := `
Distribution Statement

Total amount payable AUD 1500.00 to the registry.
The amount is AUD 0.32 per security held at the record date.
`
	result := NewParser().Parse(document.New(text))

	// Both AUD amounts sit inside a "per"-bearing window here because the
	// windows are wide; the first qualifying occurrence in document order
	// wins.
	assert.Equal(t, 1500.00, result.DividendPerShare.Value)
	assert.Equal(t, 0.9, result.DividendPerShare.Confidence)
}

func TestParse_DividendFallbackFirstAmountWithoutContext(t *testing.T) {
	text := "Remittance advice\n\nAUD 2500.00 transferred to the trust account.\nReference 88123."
	result := NewParser().Parse(document.New(text))

	assert.Equal(t, 2500.00, result.DividendPerShare.Value)
	assert.Equal(t, 0.7, result.DividendPerShare.Confidence)
}

func TestParse_FrankingSkipsUnfranked(t *testing.T) {
	text := `
Dividend Statement
Percentage of dividend unfranked 100 %
Part 3A - Ordinary dividend
3A.3 Percentage of ordinary dividend franked
70 %
`
	result := NewParser().Parse(document.New(text))

	require.NotNil(t, result.FrankingPercent.Value)
	assert.Equal(t, 70.0, result.FrankingPercent.Value)
}

func TestParse_FrankingRegulatoryLabelFallback(t *testing.T) {
	text := "Distribution notice\n3A.3 Franked percentage\n85 % applies to this payment"
	result := NewParser().Parse(document.New(text))

	require.NotNil(t, result.FrankingPercent.Value)
	assert.Equal(t, 85.0, result.FrankingPercent.Value)
	assert.Equal(t, 0.9, result.FrankingPercent.Confidence)
}

func TestParse_UnparseableDateKeepsRawValue(t *testing.T) {
	// The labeled shape matches but the month name is not a real month, so
	// post-processing fails and the partial-credit policy applies.
	text := "Corporate dividend action\nEx-Date: 31 Smarch 2026"
	result := NewParser().Parse(document.New(text))

	assert.Equal(t, "31 Smarch 2026", result.ExDate.Value)
	assert.Equal(t, 0.5, result.ExDate.Confidence)
	assert.NotNil(t, result.ExDate.Evidence)
}

func TestParse_Deterministic(t *testing.T) {
	doc := document.New(dividendNoticeText)
	first := NewParser().Parse(doc)
	second := NewParser().Parse(doc)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b, "identical input must produce byte-identical results")
}

func TestParse_OverallConfidenceBounds(t *testing.T) {
	texts := []string{
		"",
		dividendNoticeText,
		stockSplitText,
		"random text with no recognizable structure",
	}
	for _, text := range texts {
		result := NewParser().Parse(document.New(text))
		assert.GreaterOrEqual(t, result.OverallConfidence, 0.0)
		assert.LessOrEqual(t, result.OverallConfidence, 1.0)

		populated := 0
		for _, f := range result.trackedFields() {
			if f.IsSet() {
				populated++
			}
		}
		if populated == 0 {
			assert.Equal(t, 0.0, result.OverallConfidence)
		}
	}
}

func TestParse_CurrencyPriorityMetacharacterSafe(t *testing.T) {
	// Priority codes come from a user config file. A code carrying a regex
	// metacharacter must be treated literally, not compiled as a pattern.
	parser := NewParser().WithCurrencyPriority([]string{"A(D", "AUD"})
	result := parser.Parse(document.New("Settlement currency AUD.\nDividend: $0.45 per share"))

	assert.Equal(t, "AUD", result.Currency.Value)
	assert.Equal(t, 0.95, result.Currency.Confidence)

	// The literal code still matches when the text actually contains it.
	result = parser.Parse(document.New("Amounts quoted in A(D throughout."))
	assert.Equal(t, "A(D", result.Currency.Value)
}

func TestValidate_NumericParseFailurePenalized(t *testing.T) {
	// Only reachable with a hand-built result: the extraction patterns never
	// capture a shape like "0.45.1", but stored or merged results can carry
	// one, and the final sanity pass must flag it rather than trust it.
	result := &Result{}
	result.DividendPerShare.Value = "0.45.1"
	result.DividendPerShare.Confidence = 0.85
	result.FrankingPercent.Value = "1,234"
	result.FrankingPercent.Confidence = 0.9

	NewParser().validate(result)

	assert.InDelta(t, 0.55, result.DividendPerShare.Confidence, 0.0001)
	assert.Equal(t, "0.45.1", result.DividendPerShare.Value)
	require.True(t, hasWarningContaining(result, "Numeric parse failed for dividend_per_share"))

	// A coercible string is converted in place with no penalty.
	assert.Equal(t, 1234.0, result.FrankingPercent.Value)
	assert.Equal(t, 0.9, result.FrankingPercent.Confidence)
	assert.False(t, hasWarningContaining(result, "franking_percentage"))
}

func hasWarningContaining(r *Result, substr string) bool {
	for _, w := range r.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
