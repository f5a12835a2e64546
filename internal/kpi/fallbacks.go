// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kpi

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cai-scan/internal/document"
)

// defaultCurrencyPriority is the fixed order the currency loop checks codes
// in. The first code with any match wins and stops the loop; codes after it
// are never checked.
var defaultCurrencyPriority = []string{"AUD", "USD", "GBP", "EUR", "JPY", "CNY"}

type currencyPattern struct {
	code string
	// unit matches the code joined to its spelled-out unit name, or the
	// bare code at a line or buffer boundary.
	unit *regexp.Regexp
	// bare is the looser word-boundary match tried second.
	bare *regexp.Regexp
}

func compileCurrencyPatterns(codes []string) []currencyPattern {
	patterns := make([]currencyPattern, 0, len(codes))
	for _, code := range codes {
		// Codes come from user configuration; quote them so a stray
		// metacharacter cannot reach the regexp compiler.
		quoted := regexp.QuoteMeta(code)
		patterns = append(patterns, currencyPattern{
			code: strings.ToUpper(code),
			unit: regexp.MustCompile(fmt.Sprintf(`(?i)%s\s*-\s*[^0-9]*(?:Dollar|Pound|Euro|Yen|Yuan)|%s(?:\s|$)`, quoted, quoted)),
			bare: regexp.MustCompile(fmt.Sprintf(`(?i)\b%s\b`, quoted)),
		})
	}
	return patterns
}

// extractCurrency walks the currency priority list. For each code the
// unit-name pattern is tried first, then the bare word-boundary match; the
// first code found anywhere in the text is assigned at confidence 0.95.
func (p *Parser) extractCurrency(f *Field, doc document.Document, fullText string) {
	for _, cp := range p.currencies {
		loc := cp.unit.FindStringIndex(fullText)
		if loc == nil {
			loc = cp.bare.FindStringIndex(fullText)
		}
		if loc == nil {
			continue
		}
		f.Value = cp.code
		f.Evidence = &FieldEvidence{
			Page:    resolvePage(doc.Pages, fullText[loc[0]:loc[1]]),
			Snippet: snippetAround(fullText, loc[0], loc[1], p.contextChars),
		}
		f.Confidence = 0.95
		return
	}
}

// fallbackDividend collects every "AUD <number>" occurrence in document
// order. The first occurrence whose 80-char surrounding window mentions
// "per" wins at confidence 0.9; with no contextual hit the very first
// occurrence is taken at 0.7. Unparseable amounts are silently skipped.
func (p *Parser) fallbackDividend(f *Field, doc document.Document, fullText string) {
	locs := reAUDAmount.FindAllStringSubmatchIndex(fullText, -1)
	if len(locs) == 0 {
		return
	}

	const window = 80
	for _, loc := range locs {
		start, end := loc[2], loc[3]
		ws := start - window
		if ws < 0 {
			ws = 0
		}
		we := end + window
		if we > len(fullText) {
			we = len(fullText)
		}
		context := fullText[ws:we]
		if !strings.Contains(strings.ToLower(context), "per") {
			continue
		}
		amount, err := strconv.ParseFloat(fullText[start:end], 64)
		if err != nil {
			continue
		}
		f.Value = amount
		f.Confidence = 0.9
		f.Evidence = &FieldEvidence{
			Page:    resolvePage(doc.Pages, fullText[start:end]),
			Snippet: strings.ReplaceAll(strings.TrimSpace(context), "\n", " "),
		}
		return
	}

	// no contextual hit: first AUD amount regardless of surroundings
	loc := locs[0]
	amount, err := strconv.ParseFloat(fullText[loc[2]:loc[3]], 64)
	if err != nil {
		return
	}
	f.Value = amount
	f.Confidence = 0.7
	f.Evidence = &FieldEvidence{
		Page:    resolvePage(doc.Pages, fullText[loc[2]:loc[3]]),
		Snippet: snippetAround(fullText, loc[0], loc[1], p.contextChars),
	}
}

// fallbackFranking walks the five-step franking chain in strict order. The
// first step that matches ends the chain: its captured number is assigned at
// confidence 0.9, or the field stays unset if that number fails to parse.
func (p *Parser) fallbackFranking(f *Field, doc document.Document, fullText string) {
	for _, re := range frankingFallbacks {
		loc := re.FindStringSubmatchIndex(fullText)
		if loc == nil || loc[2] < 0 {
			continue
		}
		value, err := strconv.ParseFloat(fullText[loc[2]:loc[3]], 64)
		if err != nil {
			return
		}
		f.Value = value
		f.Confidence = 0.9
		f.Evidence = &FieldEvidence{
			Page:    resolvePage(doc.Pages, fullText[loc[2]:loc[3]]),
			Snippet: snippetAround(fullText, loc[0], loc[1], p.contextChars),
		}
		return
	}
}
