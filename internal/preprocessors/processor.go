// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cai-scan/internal/document"
	"cai-scan/internal/preprocessors/pdfmeta"
	"cai-scan/internal/preprocessors/pdftext"
)

// Processor routes an input file to the preprocessor that can turn it into
// a paged document: pdfcpu validation plus ledongthuc extraction for PDFs,
// a single synthetic page for plain text.
type Processor struct {
	inspector *pdfmeta.Inspector
	extractor *pdftext.Extractor
}

// NewProcessor creates a processor with default PDF handling.
func NewProcessor() *Processor {
	return &Processor{
		inspector: pdfmeta.NewInspector(),
		extractor: pdftext.NewExtractor(),
	}
}

// CanProcess reports whether the file extension is supported.
func (p *Processor) CanProcess(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf", ".txt", ".text":
		return true
	}
	return false
}

// Process converts the input file into a paged document. The returned
// warnings describe extraction shortfalls (missing or empty pages) that the
// caller should surface alongside the extraction result.
func (p *Processor) Process(filePath string) (document.Document, []string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return p.processPDF(filePath)
	case ".txt", ".text":
		return p.processText(filePath)
	}
	return document.Document{}, nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(filePath))
}

func (p *Processor) processPDF(filePath string) (document.Document, []string, error) {
	if err := p.inspector.Validate(filePath); err != nil {
		return document.Document{}, nil, err
	}

	doc, err := p.extractor.Extract(filePath)
	if err != nil {
		return document.Document{}, nil, err
	}

	warnings := p.inspector.CrossCheck(filePath, doc)
	return doc, warnings, nil
}

func (p *Processor) processText(filePath string) (document.Document, []string, error) {
	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return document.Document{}, nil, fmt.Errorf("error reading file: %w", err)
	}
	// Plain text has no page structure; treat it as one page
	return document.New(string(data)), nil, nil
}
