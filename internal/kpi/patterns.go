// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kpi

import "regexp"

// dateShape covers every value shape DateParser understands: day/month/year
// numeric, day-Month-year with full or abbreviated month names, ISO, and
// "Month day, year" with a comma.
const dateShape = `([0-9]{1,2}/[0-9]{1,2}/[0-9]{4}|[0-9]{1,2}\s+[A-Za-z]{3,9}\s+[0-9]{4}|[A-Za-z]{3,9}\s+[0-9]{1,2},\s*[0-9]{4}|[0-9]{4}-[0-9]{2}-[0-9]{2})`

// Primary extraction patterns. All case-insensitive, compiled once,
// first match wins. One evidence point per pattern.
var (
	// Company name: the ASX appendix "Entity name" label, then a
	// standalone line carrying a corporate suffix as the secondary form.
	reCompanyName = regexp.MustCompile(`(?i)(?:Entity name|Name of \+Entity)\s+([A-Z][^\n]+)`)
	reCompanyLine = regexp.MustCompile(`(?m)^\s*([A-Z][A-Za-z0-9&.,' -]*?(?:Limited|Ltd|PLC|Plc|Incorporated|Inc|Corporation|Corp|Holdings|Trust|NL))\s*$`)

	// Ticker: labeled ASX code, 1-5 letters.
	reTicker = regexp.MustCompile(`(?i)(?:ASX\s+\+?security\s+code|ASX issuer code|ASX\s*Code)[:\s]+([A-Z]{1,5})\b`)

	// ISIN: bare AU-prefixed scan first, then whatever follows an explicit
	// ISIN label so malformed identifiers still surface for validation.
	reISIN      = regexp.MustCompile(`(?i)\b(AU[0-9A-Z]{10})\b`)
	reISINLabel = regexp.MustCompile(`(?i)\bISIN[:\s]+([A-Z0-9]{6,20})\b`)

	// Key dates: labeled phrases, hyphenated or spaced, any DateParser shape.
	reExDate           = regexp.MustCompile(`(?i)Ex[\s-]*Date[:\s]+` + dateShape)
	reRecordDate       = regexp.MustCompile(`(?i)Record[\s-]*Date[:\s]+` + dateShape)
	rePaymentDate      = regexp.MustCompile(`(?i)Payment[\s-]*Date[:\s]+` + dateShape)
	reAnnouncementDate = regexp.MustCompile(`(?i)(?:Date of this announcement|Announcement[\s-]*Date)[:\s]+` + dateShape)

	// Dividend per share: a dividend label followed by the first decimal
	// amount, with an optional AUD prefix and dollar sign left uncaptured.
	reDividend = regexp.MustCompile(`(?i)(?:Total dividend|Ordinary Dividend|Dividend)[^0-9]*(?:AUD\s+)?\$?([0-9]+\.[0-9]+)`)

	// Franking percentage: RE2 has no negative lookbehind, so the excluded
	// "un" prefix is an optional capture the extractor rejects when present.
	reFranking = regexp.MustCompile(`(?i)(?:Percentage of ordinary dividend|Percentage[^\n]*?(un)?franked)\s*([0-9]{1,3})\.?[0-9]*\s*%`)

	// Ratio: "N for/to/: M" with limited filler so phrasings like
	// "1 share for every 2 held" resolve.
	reRatio = regexp.MustCompile(`(?i)(?:ratio|split)[:\s-]*([0-9]+\s*[A-Za-z ]{0,25}(?:for|to|:)\s*(?:every\s+)?[0-9]+)`)

	// Strict ISIN shape enforced by the cross-field validator.
	reISINStrict = regexp.MustCompile(`^AU[0-9A-Z]{10}$`)

	// AUD amounts collected by the dividend fallback scan.
	reAUDAmount = regexp.MustCompile(`(?i)AUD\s+([0-9]+\.[0-9]+)`)
)

// frankingFallbacks is the ordered fallback chain for the franking
// percentage. The steps overlap and some are strictly more general than
// earlier ones; the ordering is deliberate defense-in-depth and each step
// runs only when every step before it found nothing.
var frankingFallbacks = []*regexp.Regexp{
	// a: percentage immediately followed by a franking word
	regexp.MustCompile(`(?i)([0-9]+\.?[0-9]*)\s*%\s*(?:franked|franking|percentage)`),
	// b: the appendix phrase with the percentage anywhere after it
	regexp.MustCompile(`(?is)Percentage of ordinary dividend.*?([0-9]+\.?[0-9]*)\s*%`),
	// c: the 3A.3 label with the percentage on the following line
	regexp.MustCompile(`(?i)3A\.3[^\n]*\n\s*([0-9]+\.?[0-9]*)\s*%`),
	// d: a bare percentage, optionally preceded by the 3A.3 label
	regexp.MustCompile(`(?i)(?:3A\.3[^\n]*\n)?\s*([0-9]+\.?[0-9]*)\s*%`),
	// e: any percentage within 100 chars after the 3A.3 label
	regexp.MustCompile(`(?is)3A\.3.{0,100}?([0-9]+\.?[0-9]*)\s*%`),
}
