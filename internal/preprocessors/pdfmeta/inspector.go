// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdfmeta

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"cai-scan/internal/document"
)

// Info holds structural metadata about a PDF file.
type Info struct {
	PageCount int `json:"page_count"`
}

// Inspector validates PDF files and reads their structural metadata using
// pdfcpu. It runs before text extraction so corrupt uploads are rejected
// with a real error instead of an empty extraction result.
type Inspector struct {
	pdfConfig *model.Configuration
}

// NewInspector creates an inspector with the default pdfcpu configuration.
func NewInspector() *Inspector {
	return &Inspector{pdfConfig: model.NewDefaultConfiguration()}
}

// Validate checks that the file at filePath is a structurally valid PDF.
func (i *Inspector) Validate(filePath string) error {
	if err := api.ValidateFile(filePath, i.pdfConfig); err != nil {
		return fmt.Errorf("PDF validation failed: %w", err)
	}
	return nil
}

// Inspect reads the PDF cross-reference table and returns its metadata.
func (i *Inspector) Inspect(filePath string) (*Info, error) {
	ctx, err := api.ReadContextFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading PDF context: %w", err)
	}
	return &Info{PageCount: ctx.PageCount}, nil
}

// CrossCheck compares the extracted document against the PDF's own page
// count and returns human-readable warnings for any mismatch. A shortfall
// usually means pages failed text extraction or the extractor's page cap
// truncated the document.
func (i *Inspector) CrossCheck(filePath string, doc document.Document) []string {
	info, err := i.Inspect(filePath)
	if err != nil {
		return []string{fmt.Sprintf("Page count check skipped: %v", err)}
	}

	var warnings []string
	if doc.PageCount() < info.PageCount {
		warnings = append(warnings, fmt.Sprintf(
			"Extracted %d of %d pages; fields on missing pages were not seen",
			doc.PageCount(), info.PageCount))
	}

	empty := 0
	for _, p := range doc.Pages {
		if p.Text == "" {
			empty++
		}
	}
	if empty > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d of %d pages produced no text; the document may be scanned images", empty, doc.PageCount()))
	}

	return warnings
}
