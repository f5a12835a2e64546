// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"cai-scan/internal/formatters"
	"cai-scan/internal/formatters/shared"
	"cai-scan/internal/kpi"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors and tables"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(results []formatters.DocumentResult, options formatters.FormatterOptions) (string, error) {
	// Disable colors if requested
	if options.NoColor {
		color.NoColor = true
	}

	if len(results) == 0 {
		return "No documents processed.", nil
	}

	var builder strings.Builder
	for i, dr := range results {
		if i > 0 {
			builder.WriteString("\n")
		}
		f.appendDocument(&builder, dr, options)
	}

	return builder.String(), nil
}

// appendDocument writes one document section: header line, field table and
// any validation warnings.
func (f *Formatter) appendDocument(builder *strings.Builder, dr formatters.DocumentResult, options formatters.FormatterOptions) {
	header := fmt.Sprintf("File: %s", dr.Filename)
	if !options.NoColor {
		header = f.colors["white"].Sprintf("File: %s", dr.Filename)
	}
	builder.WriteString(header + "\n")

	docType := string(dr.Result.DocumentType)
	if docType == "" {
		docType = "UNKNOWN"
	}
	if dr.Result.DividendSubtype != "" {
		docType = fmt.Sprintf("%s/%s", docType, dr.Result.DividendSubtype)
	}
	overallLevel := shared.GetConfidenceLevel(dr.Result.OverallConfidence)
	typeLine := fmt.Sprintf("Type: %-16s Overall confidence: %.2f [%s]", docType, dr.Result.OverallConfidence, overallLevel)
	if !options.NoColor {
		typeLine = fmt.Sprintf("Type: %s Overall confidence: %s",
			f.colors["cyan"].Sprintf("%-16s", docType),
			f.levelColor(overallLevel).Sprintf("%.2f [%s]", dr.Result.OverallConfidence, overallLevel))
	}
	builder.WriteString(typeLine + "\n")

	fields := shared.FilterFields(dr.Result, options)
	if len(fields) == 0 {
		builder.WriteString("  No fields extracted at the specified confidence levels.\n")
	} else {
		f.appendFieldHeaders(builder, options)
		for _, nf := range fields {
			f.appendFieldLine(builder, nf.Name, nf.Field, options)
		}
	}

	if len(dr.Result.Warnings) > 0 {
		warnHeader := "Warnings:"
		if !options.NoColor {
			warnHeader = f.colors["yellow"].Sprint("Warnings:")
		}
		builder.WriteString(warnHeader + "\n")
		for _, w := range dr.Result.Warnings {
			line := "  - " + w
			if !options.NoColor {
				line = f.colors["yellow"].Sprint("  - " + w)
			}
			builder.WriteString(line + "\n")
		}
	}
}

// appendFieldHeaders adds the field table column headers
func (f *Formatter) appendFieldHeaders(builder *strings.Builder, options formatters.FormatterOptions) {
	headerStr := fmt.Sprintf("  %-8s %-20s %-8s %-6s %s\n",
		"LEVEL", "FIELD", "CONF", "PAGE", "VALUE")
	if !options.NoColor {
		headerStr = f.colors["white"].Sprintf("  %-8s %-20s %-8s %-6s %s\n",
			"LEVEL", "FIELD", "CONF", "PAGE", "VALUE")
	}
	builder.WriteString(headerStr)
}

// appendFieldLine adds a single field row to the string builder
func (f *Formatter) appendFieldLine(builder *strings.Builder, name string, field *kpi.Field, options formatters.FormatterOptions) {
	level := shared.GetConfidenceLevel(field.Confidence)

	levelStr := fmt.Sprintf("[%-6s]", level)
	if !options.NoColor {
		levelStr = f.levelColor(level).Sprintf("[%-6s]", level)
	}

	nameStr := fmt.Sprintf("%-20s", name)
	if !options.NoColor {
		nameStr = f.colors["cyan"].Sprintf("%-20s", name)
	}

	confStr := fmt.Sprintf("%7.2f%%", field.Confidence*100)
	if !options.NoColor {
		confStr = f.colors["blue"].Sprintf("%7.2f%%", field.Confidence*100)
	}

	page := "-"
	if field.Evidence != nil {
		page = fmt.Sprintf("%d", field.Evidence.Page)
	}
	pageStr := fmt.Sprintf("%-6s", page)
	if !options.NoColor {
		pageStr = f.colors["magenta"].Sprintf("%-6s", page)
	}

	value := strings.ReplaceAll(fmt.Sprintf("%v", field.Value), "\n", " ")
	builder.WriteString(fmt.Sprintf("  %s %s %s %s %s\n", levelStr, nameStr, confStr, pageStr, value))

	// Verbose mode includes the evidence snippet under the field row
	if (options.Verbose || options.ShowSnippets) && field.Evidence != nil && field.Evidence.Snippet != "" {
		snippet := fmt.Sprintf("           evidence: %s", field.Evidence.Snippet)
		if !options.NoColor {
			snippet = f.colors["green"].Sprintf("           evidence: %s", field.Evidence.Snippet)
		}
		builder.WriteString(snippet + "\n")
	}
}

// levelColor returns the display color for a confidence level
func (f *Formatter) levelColor(level string) *color.Color {
	switch level {
	case "HIGH":
		return f.colors["green"]
	case "MEDIUM":
		return f.colors["yellow"]
	default:
		return f.colors["red"]
	}
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
