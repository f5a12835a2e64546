// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"fmt"
	"strings"

	"cai-scan/internal/formatters"
	"cai-scan/internal/formatters/shared"
	"cai-scan/internal/kpi"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import, one row per extracted field"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(results []formatters.DocumentResult, options formatters.FormatterOptions) (string, error) {
	headers := []string{"Filename", "Document Type", "Field", "Value", "Confidence", "Confidence Level", "Page"}
	if options.ShowSnippets || options.Verbose {
		headers = append(headers, "Snippet")
	}

	// Start with header row
	csvRows := []string{strings.Join(headers, ",")}

	for _, dr := range results {
		for _, nf := range shared.FilterFields(dr.Result, options) {
			csvRows = append(csvRows, f.createCSVRow(dr, nf.Name, nf.Field, options))
		}
	}

	return strings.Join(csvRows, "\n"), nil
}

// createCSVRow creates a CSV row for one extracted field
func (f *Formatter) createCSVRow(dr formatters.DocumentResult, name string, field *kpi.Field, options formatters.FormatterOptions) string {
	page := ""
	snippet := ""
	if field.Evidence != nil {
		page = fmt.Sprintf("%d", field.Evidence.Page)
		snippet = field.Evidence.Snippet
	}

	row := []string{
		f.escapeCSVField(dr.Filename),
		f.escapeCSVField(string(dr.Result.DocumentType)),
		f.escapeCSVField(name),
		f.escapeCSVField(fmt.Sprintf("%v", field.Value)),
		fmt.Sprintf("%.2f", field.Confidence),
		f.escapeCSVField(shared.GetConfidenceLevel(field.Confidence)),
		page,
	}
	if options.ShowSnippets || options.Verbose {
		row = append(row, f.escapeCSVField(snippet))
	}

	return strings.Join(row, ",")
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	// Prevent CSV injection by sanitizing formula characters
	field = f.sanitizeFormulaInjection(field)

	// If field contains comma, quote, or newline, wrap in quotes and escape internal quotes
	if strings.Contains(field, ",") || strings.Contains(field, "\"") || strings.Contains(field, "\n") || strings.Contains(field, "\r") {
		// Escape internal quotes by doubling them
		escaped := strings.ReplaceAll(field, "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return field
}

// sanitizeFormulaInjection prevents CSV injection attacks by sanitizing formula characters
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	// Check if field starts with formula characters that could be dangerous in spreadsheets
	firstChar := field[0]
	if firstChar == '=' || firstChar == '+' || firstChar == '-' || firstChar == '@' {
		// Prefix with single quote to prevent formula execution
		return "'" + field
	}

	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
