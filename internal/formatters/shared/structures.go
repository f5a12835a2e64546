// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"cai-scan/internal/formatters"
	"cai-scan/internal/kpi"
)

// JSONResponse represents the top-level response structure for JSON/YAML output
type JSONResponse struct {
	Results []JSONDocument `json:"results" yaml:"results"`
}

// JSONDocument represents one processed document in JSON/YAML format
type JSONDocument struct {
	Filename          string      `json:"filename" yaml:"filename"`
	DocID             string      `json:"doc_id,omitempty" yaml:"doc_id,omitempty"`
	DocumentType      string      `json:"document_type,omitempty" yaml:"document_type,omitempty"`
	DividendSubtype   string      `json:"dividend_subtype,omitempty" yaml:"dividend_subtype,omitempty"`
	Fields            []JSONField `json:"fields" yaml:"fields"`
	OverallConfidence float64     `json:"overall_confidence" yaml:"overall_confidence"`
	Warnings          []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// JSONField represents a single extracted KPI field in JSON/YAML format
type JSONField struct {
	Name            string  `json:"name" yaml:"name"`
	Value           any     `json:"value" yaml:"value"`
	Confidence      float64 `json:"confidence" yaml:"confidence"`
	ConfidenceLevel string  `json:"confidence_level" yaml:"confidence_level"`
	Page            int     `json:"page,omitempty" yaml:"page,omitempty"`
	Snippet         string  `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// GetConfidenceLevel returns the confidence level as a string
func GetConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "HIGH"
	case confidence >= 0.5:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// FieldIncluded reports whether a field at the given confidence passes the
// configured confidence level filter
func FieldIncluded(confidence float64, options formatters.FormatterOptions) bool {
	if len(options.ConfidenceLevel) == 0 {
		return true
	}
	switch GetConfidenceLevel(confidence) {
	case "HIGH":
		return options.ConfidenceLevel["high"]
	case "MEDIUM":
		return options.ConfidenceLevel["medium"]
	default:
		return options.ConfidenceLevel["low"]
	}
}

// FilterFields returns the populated fields of a result that pass the
// confidence level filter, in the fixed field order
func FilterFields(result *kpi.Result, options formatters.FormatterOptions) []kpi.NamedField {
	var filtered []kpi.NamedField
	for _, nf := range result.NamedFields() {
		if !nf.Field.IsSet() {
			continue
		}
		if !FieldIncluded(nf.Field.Confidence, options) {
			continue
		}
		filtered = append(filtered, nf)
	}
	return filtered
}

// ConvertResultsToJSONFormat converts document results to JSON/YAML format
func ConvertResultsToJSONFormat(results []formatters.DocumentResult, options formatters.FormatterOptions) JSONResponse {
	jsonDocs := make([]JSONDocument, 0, len(results))
	for _, dr := range results {
		doc := JSONDocument{
			Filename:          dr.Filename,
			DocID:             dr.Result.DocID,
			DocumentType:      string(dr.Result.DocumentType),
			DividendSubtype:   string(dr.Result.DividendSubtype),
			Fields:            []JSONField{},
			OverallConfidence: dr.Result.OverallConfidence,
			Warnings:          dr.Result.Warnings,
		}

		for _, nf := range FilterFields(dr.Result, options) {
			jsonField := JSONField{
				Name:            nf.Name,
				Value:           nf.Field.Value,
				Confidence:      nf.Field.Confidence,
				ConfidenceLevel: GetConfidenceLevel(nf.Field.Confidence),
			}
			if options.ShowSnippets || options.Verbose {
				if nf.Field.Evidence != nil {
					jsonField.Page = nf.Field.Evidence.Page
					jsonField.Snippet = nf.Field.Evidence.Snippet
				}
			}
			doc.Fields = append(doc.Fields, jsonField)
		}

		jsonDocs = append(jsonDocs, doc)
	}

	return JSONResponse{Results: jsonDocs}
}
