// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kpi

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// adjustConfidence applies a penalty with a floor of zero. Validators only
// ever lower confidence, never raise it.
func adjustConfidence(conf, penalty float64) float64 {
	if conf-penalty < 0 {
		return 0
	}
	return conf - penalty
}

// fieldDate converts a date field back from its canonical ISO string form.
// Fields holding a raw unparsed string (the partial-credit case) fail here
// and are simply excluded from ordering checks.
func fieldDate(f *Field) (time.Time, bool) {
	s, ok := f.Value.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// validate runs the cross-field consistency checks after all primary and
// fallback extraction has finished. Violations append a warning and apply a
// confidence penalty to the offending field(s); extraction output is never
// discarded.
func (p *Parser) validate(r *Result) {
	// Date ordering: only checked when all three dates resolved cleanly.
	ex, exOK := fieldDate(&r.ExDate)
	rec, recOK := fieldDate(&r.RecordDate)
	pay, payOK := fieldDate(&r.PaymentDate)
	if exOK && recOK && payOK {
		if ex.After(rec) || rec.After(pay) {
			r.Warnings = append(r.Warnings, "Date order validation failed: ex_date <= record_date <= payment_date")
			r.ExDate.Confidence = adjustConfidence(r.ExDate.Confidence, 0.2)
			r.RecordDate.Confidence = adjustConfidence(r.RecordDate.Confidence, 0.2)
			r.PaymentDate.Confidence = adjustConfidence(r.PaymentDate.Confidence, 0.2)
		}
	}

	// ISIN format
	if r.ISIN.IsSet() {
		if s, ok := r.ISIN.Value.(string); !ok || !reISINStrict.MatchString(s) {
			r.Warnings = append(r.Warnings, fmt.Sprintf("ISIN format invalid: %v", r.ISIN.Value))
			r.ISIN.Confidence = adjustConfidence(r.ISIN.Confidence, 0.3)
		}
	}

	// Final numeric sanity pass, independent of extraction-time coercion.
	numericFields := []struct {
		name  string
		field *Field
	}{
		{"dividend_per_share", &r.DividendPerShare},
		{"franking_percentage", &r.FrankingPercent},
	}
	for _, nf := range numericFields {
		if !nf.field.IsSet() {
			continue
		}
		if _, ok := nf.field.Value.(float64); ok {
			continue
		}
		raw := fmt.Sprintf("%v", nf.field.Value)
		value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			r.Warnings = append(r.Warnings, fmt.Sprintf("Numeric parse failed for %s: %v", nf.name, nf.field.Value))
			nf.field.Confidence = adjustConfidence(nf.field.Confidence, 0.3)
			continue
		}
		nf.field.Value = value
	}
}
