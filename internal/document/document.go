// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import "strings"

// Page holds the extracted text of a single document page.
// Page numbers are 1-based; Text may be empty for pages the upstream
// extractor could not read.
type Page struct {
	Number int    `json:"page_num"`
	Text   string `json:"text"`
}

// Document is an ordered sequence of pages produced by the upstream text
// extraction step. It is immutable once handed to the KPI engine.
type Document struct {
	Pages []Page `json:"pages"`
}

// New builds a Document from raw page texts, numbering pages from 1.
func New(pageTexts ...string) Document {
	doc := Document{Pages: make([]Page, 0, len(pageTexts))}
	for i, text := range pageTexts {
		doc.Pages = append(doc.Pages, Page{Number: i + 1, Text: text})
	}
	return doc
}

// FullText concatenates all page texts with newline separators. This is the
// buffer every extraction pattern runs against.
func (d Document) FullText() string {
	texts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n")
}

// PageCount returns the number of pages.
func (d Document) PageCount() int {
	return len(d.Pages)
}
