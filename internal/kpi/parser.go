// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kpi

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"cai-scan/internal/document"
)

// defaultGrant is the confidence a field receives when a primary pattern
// populates it and no prior confidence was set. Fallback paths grant their
// own explicit values and are never overwritten by this default.
const defaultGrant = 0.85

// Parser is the KPI extraction engine. One Parse call consumes one document
// and produces one Result. The parser holds no per-document state, caches or
// counters, so a single instance is safe for concurrent use.
type Parser struct {
	contextChars int
	currencies   []currencyPattern
}

// NewParser creates a parser with the default context window and currency
// priority list.
func NewParser() *Parser {
	return &Parser{
		contextChars: defaultContextChars,
		currencies:   compileCurrencyPatterns(defaultCurrencyPriority),
	}
}

// WithContextChars sets the evidence snippet window size.
func (p *Parser) WithContextChars(chars int) *Parser {
	if chars > 0 {
		p.contextChars = chars
	}
	return p
}

// WithCurrencyPriority replaces the ordered currency code list used by the
// currency fallback loop.
func (p *Parser) WithCurrencyPriority(codes []string) *Parser {
	if len(codes) > 0 {
		p.currencies = compileCurrencyPatterns(codes)
	}
	return p
}

// postFunc post-processes a raw captured string into a typed value. A
// returned error triggers the partial-credit policy: the raw string is kept
// and the field confidence is forced to 0.5.
type postFunc func(string) (any, error)

// datePost parses a captured date string. Failure is a soft coercion
// failure, never fatal.
func datePost(s string) (any, error) {
	t, ok := ParseDate(s)
	if !ok {
		return nil, errors.New("unrecognized date format")
	}
	return t, nil
}

// Parse runs the full extraction pipeline over one document: classification,
// primary field extraction in fixed order, fallback heuristics for fields
// still unset, cross-field validation, and confidence aggregation. The step
// order never varies, so identical input text always yields an identical
// Result.
func (p *Parser) Parse(doc document.Document) *Result {
	fullText := doc.FullText()
	result := &Result{Warnings: []string{}}

	result.DocumentType = DetectDocumentType(fullText)
	if result.DocumentType == DocTypeDividend {
		result.DividendSubtype = DetectDividendSubtype(fullText)
	}

	// Identity fields
	p.assign(&result.CompanyName, doc, fullText, reCompanyName, nil, false, defaultGrant)
	if !result.CompanyName.IsSet() {
		p.assign(&result.CompanyName, doc, fullText, reCompanyLine, nil, false, 0.75)
	}
	p.assign(&result.Ticker, doc, fullText, reTicker, nil, false, defaultGrant)
	p.assign(&result.ISIN, doc, fullText, reISIN, nil, false, defaultGrant)
	if !result.ISIN.IsSet() {
		p.assign(&result.ISIN, doc, fullText, reISINLabel, nil, false, defaultGrant)
	}

	// Key dates
	p.assign(&result.ExDate, doc, fullText, reExDate, datePost, true, defaultGrant)
	p.assign(&result.RecordDate, doc, fullText, reRecordDate, datePost, true, defaultGrant)
	p.assign(&result.PaymentDate, doc, fullText, rePaymentDate, datePost, true, defaultGrant)
	p.assign(&result.AnnouncementDate, doc, fullText, reAnnouncementDate, datePost, true, defaultGrant)

	// Action economics
	p.assign(&result.DividendPerShare, doc, fullText, reDividend, nil, false, defaultGrant)
	p.extractCurrency(&result.Currency, doc, fullText)
	p.extractFranking(&result.FrankingPercent, doc, fullText)
	p.assign(&result.Ratio, doc, fullText, reRatio, nil, false, defaultGrant)

	// Fallback heuristics for fields the primary patterns left unset
	if !result.DividendPerShare.IsSet() {
		p.fallbackDividend(&result.DividendPerShare, doc, fullText)
	}
	if !result.FrankingPercent.IsSet() {
		p.fallbackFranking(&result.FrankingPercent, doc, fullText)
	}

	p.validate(result)
	result.OverallConfidence = aggregateConfidence(result)
	return result
}

// assign performs the generic single-field extraction strategy: find the
// first match of re in the full text, take the first captured group (or the
// whole match when the pattern has none), trim, post-process, and attach
// evidence. A field that goes from empty to populated with no prior
// confidence receives grant.
func (p *Parser) assign(f *Field, doc document.Document, fullText string, re *regexp.Regexp, post postFunc, dateField bool, grant float64) {
	loc := re.FindStringSubmatchIndex(fullText)
	if loc == nil {
		return
	}

	valStart, valEnd := loc[0], loc[1]
	if re.NumSubexp() > 0 {
		valStart, valEnd = loc[2], loc[3]
		if valStart < 0 {
			// optional group did not participate in the match
			return
		}
	}
	p.assignAt(f, doc, fullText, loc[0], loc[1], valStart, valEnd, post, dateField, grant)
}

// assignAt populates f from the match spanning [matchStart,matchEnd) whose
// captured value spans [valStart,valEnd).
func (p *Parser) assignAt(f *Field, doc document.Document, fullText string, matchStart, matchEnd, valStart, valEnd int, post postFunc, dateField bool, grant float64) {
	raw := strings.TrimSpace(fullText[valStart:valEnd])
	var value any = raw

	if post != nil {
		if v, err := post(raw); err != nil {
			// partial credit: keep the raw string at reduced confidence
			f.Confidence = 0.5
		} else {
			value = v
		}
	}

	f.Value = value
	if dateField {
		if t, ok := value.(time.Time); ok {
			f.Value = t.Format("2006-01-02")
		}
	}

	// Page resolution uses the captured text exactly as matched, before
	// trimming, so the per-page substring search sees what the page saw.
	page := resolvePage(doc.Pages, fullText[valStart:valEnd])
	f.Evidence = &FieldEvidence{
		Page:    page,
		Snippet: snippetAround(fullText, matchStart, matchEnd, p.contextChars),
	}

	if f.Confidence == 0 {
		f.Confidence = grant
	}
}

// extractFranking applies the primary franking pattern. The pattern carries
// an optional "un" capture standing in for a negative lookbehind: matches
// where it participates are occurrences of "unfranked" and are skipped.
func (p *Parser) extractFranking(f *Field, doc document.Document, fullText string) {
	for _, loc := range reFranking.FindAllStringSubmatchIndex(fullText, -1) {
		if loc[2] >= 0 {
			continue // "unfranked"
		}
		p.assignAt(f, doc, fullText, loc[0], loc[1], loc[4], loc[5], nil, false, defaultGrant)
		return
	}
}
