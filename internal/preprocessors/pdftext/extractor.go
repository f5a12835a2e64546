// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdftext

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"cai-scan/internal/document"
)

// defaultMaxPages caps per-file processing time. Corporate action notices
// are short; anything past this is appendix boilerplate.
const defaultMaxPages = 50

// Extractor pulls per-page text out of PDF notices.
type Extractor struct {
	maxPages int
}

// NewExtractor creates a PDF text extractor with the default page cap.
func NewExtractor() *Extractor {
	return &Extractor{maxPages: defaultMaxPages}
}

// WithMaxPages overrides the page cap.
func (e *Extractor) WithMaxPages(n int) *Extractor {
	if n > 0 {
		e.maxPages = n
	}
	return e
}

// Extract reads the PDF at filePath and returns one Page per PDF page, in
// order. Pages that fail to extract come back with empty text so page
// numbering stays aligned with the source document. AcroForm field data, if
// present, is appended to the last page as "label value" lines because ASX
// appendix notices carry their key values in form fields.
func (e *Extractor) Extract(filePath string) (document.Document, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return document.Document{}, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	pageCount := r.NumPage()
	if pageCount > e.maxPages {
		pageCount = e.maxPages
	}
	if pageCount == 0 {
		return document.Document{}, fmt.Errorf("PDF has no pages")
	}

	type pageResult struct {
		pageNum int
		text    string
		err     error
	}

	// Extract pages in parallel, assemble in order below
	resultChan := make(chan pageResult, pageCount)
	for i := 1; i <= pageCount; i++ {
		go func(pageNum int) {
			p := r.Page(pageNum)
			if p.V.IsNull() {
				resultChan <- pageResult{pageNum: pageNum, err: fmt.Errorf("null page")}
				return
			}
			text, err := extractTextWithProperSpacing(p)
			resultChan <- pageResult{pageNum: pageNum, text: text, err: err}
		}(i)
	}

	pageTexts := make(map[int]string)
	for i := 0; i < pageCount; i++ {
		result := <-resultChan
		if result.err != nil {
			continue
		}
		pageTexts[result.pageNum] = cleanTextPreservingStructure(result.text)
	}

	doc := document.Document{Pages: make([]document.Page, 0, pageCount)}
	for i := 1; i <= pageCount; i++ {
		doc.Pages = append(doc.Pages, document.Page{Number: i, Text: pageTexts[i]})
	}

	// Form fields hold the labeled values in appendix-style notices
	if formData, err := extractFormData(r); err == nil && formData != "" {
		last := &doc.Pages[len(doc.Pages)-1]
		if last.Text != "" {
			last.Text += "\n"
		}
		last.Text += formData
	}

	return doc, nil
}

// extractFormData extracts form field data from PDF AcroForms
func extractFormData(r *pdf.Reader) (string, error) {
	var buf bytes.Buffer

	// Try to access the document catalog
	root := r.Trailer().Key("Root")
	if root.IsNull() {
		return "", fmt.Errorf("no document catalog found")
	}

	// Look for AcroForm dictionary
	acroForm := root.Key("AcroForm")
	if acroForm.IsNull() {
		return "", nil // No forms in this PDF
	}

	fields := acroForm.Key("Fields")
	if fields.IsNull() {
		return "", nil
	}

	// Process form fields array as "label value" lines so labeled-value
	// patterns match them the same way they match body text
	if fields.Kind() == pdf.Array {
		for i := 0; i < fields.Len(); i++ {
			field := fields.Index(i)
			if !field.IsNull() {
				name, value := extractFieldNameValue(field)
				if name != "" && value != "" {
					buf.WriteString(fmt.Sprintf("%s %s\n", name, value))
				}
			}
		}
	}

	return buf.String(), nil
}

// extractFieldNameValue extracts name and value from a single form field
func extractFieldNameValue(field pdf.Value) (string, string) {
	if field.Kind() != pdf.Dict {
		return "", ""
	}

	var fieldName, fieldValue string

	// Get field name
	t := field.Key("T")
	if !t.IsNull() && t.Kind() == pdf.String {
		fieldName = t.Text()
	}

	// Get field value - try different value keys
	v := field.Key("V")
	if !v.IsNull() {
		switch v.Kind() {
		case pdf.String:
			fieldValue = v.Text()
		case pdf.Name:
			fieldValue = v.Name()
		}
	}

	// If no value in V, try DV (default value)
	if fieldValue == "" {
		dv := field.Key("DV")
		if !dv.IsNull() {
			switch dv.Kind() {
			case pdf.String:
				fieldValue = dv.Text()
			case pdf.Name:
				fieldValue = dv.Name()
			}
		}
	}

	return fieldName, fieldValue
}

// cleanTextPreservingStructure cleans text while maintaining line structure.
// Labeled values must stay on their own lines for the extraction patterns
// (e.g. "Ex-Date: 15 March 2026" must not merge with its neighbors).
func cleanTextPreservingStructure(text string) string {
	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	result := strings.Join(cleanedLines, "\n")

	// Remove tabs and replace with spaces (but keep line breaks)
	result = strings.ReplaceAll(result, "\t", " ")

	// Clean up excessive spaces within lines (but preserve line breaks)
	lines = strings.Split(result, "\n")
	for i, line := range lines {
		for strings.Contains(line, "  ") {
			line = strings.ReplaceAll(line, "  ", " ")
		}
		lines[i] = strings.TrimSpace(line)
	}

	return strings.Join(lines, "\n")
}

// extractTextWithProperSpacing extracts text using row-based positioning for better spacing
func extractTextWithProperSpacing(p pdf.Page) (string, error) {
	// Try row-based extraction first (more accurate spacing)
	rows, err := p.GetTextByRow()
	if err != nil {
		// Fallback to simple text extraction if row-based fails
		return p.GetPlainText(nil)
	}

	// Sort rows by Y coordinate for proper reading order (top to bottom)
	// PDF coordinates: Y increases from bottom to top, so higher Y = higher on page
	sortedRows := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sortedRows = append(sortedRows, row)
		}
	}

	sort.Slice(sortedRows, func(i, j int) bool {
		return getAverageY(sortedRows[i].Content) < getAverageY(sortedRows[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sortedRows {
		rowText := reconstructRowText(row.Content)
		if strings.TrimSpace(rowText) != "" {
			buf.WriteString(rowText)
			buf.WriteString("\n")
		}
	}

	return buf.String(), nil
}

// getAverageY calculates the average Y coordinate for text elements in a row
func getAverageY(textElements []pdf.Text) float64 {
	if len(textElements) == 0 {
		return 0
	}

	var totalY float64
	for _, element := range textElements {
		totalY += element.Y
	}

	return totalY / float64(len(textElements))
}

// reconstructRowText reconstructs text from a row with proper spacing based on coordinates
func reconstructRowText(textElements []pdf.Text) string {
	if len(textElements) == 0 {
		return ""
	}

	// Sort elements by X coordinate to ensure left-to-right order
	sortedElements := make([]pdf.Text, len(textElements))
	copy(sortedElements, textElements)

	sort.Slice(sortedElements, func(i, j int) bool {
		return sortedElements[i].X < sortedElements[j].X
	})

	var buf bytes.Buffer
	for i, element := range sortedElements {
		buf.WriteString(element.S)

		// Determine if we need a space before the next element
		if i < len(sortedElements)-1 {
			nextElement := sortedElements[i+1]

			currentEnd := element.X + element.W
			nextStart := nextElement.X
			gap := nextStart - currentEnd

			// Use font size as a reference for what constitutes a
			// significant gap
			fontSize := element.FontSize
			if fontSize <= 0 {
				fontSize = 12
			}

			// If gap is more than 20% of font size, insert a space
			spaceThreshold := fontSize * 0.2
			if gap > spaceThreshold {
				buf.WriteString(" ")
			}
		}
	}

	return buf.String()
}
