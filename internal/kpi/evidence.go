// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kpi

import (
	"strings"

	"cai-scan/internal/document"
)

// defaultContextChars is the snippet window on each side of a match.
const defaultContextChars = 50

// snippetAround returns a single-line context snippet for the match spanning
// [start,end) in text, clipped to the buffer bounds.
func snippetAround(text string, start, end, context int) string {
	s := start - context
	if s < 0 {
		s = 0
	}
	e := end + context
	if e > len(text) {
		e = len(text)
	}
	snippet := strings.TrimSpace(text[s:e])
	return strings.ReplaceAll(snippet, "\n", " ")
}

// resolvePage returns the first page whose raw text contains the matched
// substring. This is a linear scan over pages, acceptable at the scale of
// short corporate notices. Page boundaries can split a match, in which case
// no page contains it verbatim and page 1 is returned as the documented
// fallback, not a claim of page-1 origin.
func resolvePage(pages []document.Page, matched string) int {
	for _, p := range pages {
		if strings.Contains(p.Text, matched) {
			return p.Number
		}
	}
	return 1
}
