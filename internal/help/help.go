// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// FieldInfo contains standardized information about an extracted field
type FieldInfo struct {
	Name                string   // Wire name of the field (e.g., "dividend_per_share")
	ShortDescription    string   // Short description for the fields list
	DetailedDescription string   // Detailed description of what the field captures
	Patterns            []string // Document labels the field is matched against
	Fallbacks           []string // Fallback strategies when no label matches
	ConfidenceNotes     []string // How the confidence score is assigned
	Examples            []string // Usage examples
}

// System manages help content for the application
type System struct {
	fields  map[string]FieldInfo
	noColor bool
	colors  map[string]*color.Color
}

// NewSystem creates a new help system
func NewSystem(noColor bool) *System {
	// Disable colors if requested
	if noColor {
		color.NoColor = true
	}

	system := &System{
		fields:  make(map[string]FieldInfo),
		noColor: noColor,
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"subtitle": color.New(color.FgCyan, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"item":     color.New(color.FgCyan),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"positive": color.New(color.FgGreen),
			"negative": color.New(color.FgRed),
			"warning":  color.New(color.FgYellow),
			"example":  color.New(color.FgMagenta),
		},
	}

	for _, info := range defaultFieldInfo() {
		system.fields[strings.ToLower(info.Name)] = info
	}
	return system
}

// ShowGeneralHelp displays general help information
func (h *System) ShowGeneralHelp() {
	h.colors["title"].Println("Cai Scan - Corporate Action Notice Field Extraction")
	fmt.Println("===================================================")
	fmt.Println()
	h.colors["header"].Println("USAGE:")
	fmt.Println("  cai-scan --file <path-to-notice> [options]")
	fmt.Println("  cai-scan --web [--port <port>]  # Web server mode")
	fmt.Println()

	h.colors["header"].Println("OPTIONS:")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  --file\t<path>\tPath to the input notice or directory of notices (required)")
	fmt.Fprintln(w, "  --config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "  --profile\t<name>\tProfile name to use from config file")
	fmt.Fprintln(w, "  --list-profiles\t\tList available profiles in config file")
	fmt.Fprintln(w, "  --recursive\t\tRecursively process directories")
	fmt.Fprintln(w, "  --format\t<format>\tOutput format: text, json, csv, yaml (default: text)")
	fmt.Fprintln(w, "  --confidence\t<levels>\tConfidence levels to display: high,medium,low,all (default: all)")
	fmt.Fprintln(w, "  --verbose\t\tDisplay detailed information for each extracted field")
	fmt.Fprintln(w, "  --show-snippets\t\tInclude the evidence snippet behind each extracted field")
	fmt.Fprintln(w, "  --debug\t\tEnable debug logging to show preprocessing and extraction flow")
	fmt.Fprintln(w, "  --output\t<path>\tPath to output file (if not specified, output to stdout)")
	fmt.Fprintln(w, "  --no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  --store\t\tPersist extraction results to the local document store")
	fmt.Fprintln(w, "  --store-dir\t<path>\tDirectory for the document store (default: ./cai-data)")
	fmt.Fprintln(w, "  --quiet\t\tSuppress progress output (useful for scripts and CI/CD)")
	fmt.Fprintln(w, "  --web\t\tStart web server mode instead of CLI extraction")
	fmt.Fprintln(w, "  --port\t<port>\tPort for web server (default: 8080, only used with --web)")
	fmt.Fprintln(w, "  --version\t\tShow version information")
	fmt.Fprintln(w, "  --help\t\tShow this help message")
	fmt.Fprintln(w, "  --help fields\t\tList all extracted fields")
	fmt.Fprintln(w, "  --help <field>\t\tShow detailed help for a specific field")
	w.Flush()

	fmt.Println()
	h.colors["header"].Println("EXAMPLES:")
	fmt.Println("  Basic Usage:")
	h.colors["example"].Println("    cai-scan --file dividend-notice.pdf")
	h.colors["example"].Println("    cai-scan --file notices/ --recursive --format json --output results.json")
	fmt.Println("  Configuration and Profiles:")
	h.colors["example"].Println("    cai-scan --file . --config cai-scan.yaml --profile batch")
	h.colors["example"].Println("    cai-scan --list-profiles --config cai-scan.yaml")

	fmt.Println()
	h.colors["header"].Println("Storage Examples:")
	h.colors["example"].Println("  cai-scan --file notice.pdf --store  # Persist results with a document id")
	h.colors["example"].Println("  cai-scan --file notices/ --store --store-dir /var/cai-data")

	fmt.Println()
	h.colors["header"].Println("Web Server Examples:")
	h.colors["example"].Println("  cai-scan --web  # Start web server on default port")
	h.colors["example"].Println("  cai-scan --web --port 9000  # Start web server on custom port")

	fmt.Println()
	h.colors["header"].Println("CONFIGURATION:")
	fmt.Println("  Default config: ~/.config/cai-scan/config.yaml")
	fmt.Println("  Project config: cai-scan.yaml or .cai-scan.yaml (in current directory)")
}

// ShowFieldsHelp displays information about all extracted fields
func (h *System) ShowFieldsHelp() {
	h.colors["title"].Println("Fields Extracted by Cai Scan")
	fmt.Println("============================")
	fmt.Println()
	fmt.Println("The following fields are extracted from corporate action notices:")
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	h.colors["header"].Fprintln(w, "  FIELD\tDESCRIPTION")
	h.colors["header"].Fprintln(w, "  -----\t-----------")

	var names []string
	for _, info := range h.fields {
		names = append(names, info.Name)
	}
	sort.Strings(names)

	for _, name := range names {
		info := h.fields[strings.ToLower(name)]
		fmt.Fprintf(w, "  ")
		h.colors["emphasis"].Fprintf(w, "%s", info.Name)
		fmt.Fprintf(w, "\t%s\n", info.ShortDescription)
	}
	w.Flush()

	fmt.Println()
	fmt.Println("For detailed information about a specific field, use:")
	h.colors["example"].Println("  cai-scan --help <field>")
	fmt.Println()
	fmt.Println("Example:")
	h.colors["example"].Println("  cai-scan --help dividend_per_share")
}

// ShowFieldHelp displays detailed help for a specific field
func (h *System) ShowFieldHelp(fieldName string) bool {
	info, exists := h.fields[strings.ToLower(fieldName)]
	if !exists {
		h.colors["negative"].Printf("Error: Field '%s' not found.\n", fieldName)
		fmt.Println("Use 'cai-scan --help fields' to see a list of extracted fields.")
		return false
	}

	h.colors["title"].Printf("%s Field\n", info.Name)
	fmt.Println(strings.Repeat("=", len(info.Name)+6))
	fmt.Println()
	fmt.Println(info.DetailedDescription)
	fmt.Println()

	if len(info.Patterns) > 0 {
		h.colors["header"].Println("LABELS MATCHED:")
		for _, pattern := range info.Patterns {
			fmt.Print("  - ")
			h.colors["item"].Println(pattern)
		}
		fmt.Println()
	}

	if len(info.Fallbacks) > 0 {
		h.colors["header"].Println("FALLBACK STRATEGIES:")
		for _, fallback := range info.Fallbacks {
			fmt.Print("  - ")
			h.colors["item"].Println(fallback)
		}
		fmt.Println()
	}

	if len(info.ConfidenceNotes) > 0 {
		h.colors["header"].Println("CONFIDENCE SCORING:")
		for _, note := range info.ConfidenceNotes {
			fmt.Print("  - ")
			h.colors["item"].Println(note)
		}
		fmt.Println()
	}

	// Display confidence levels
	h.colors["header"].Println("Confidence Levels:")
	fmt.Print("- ")
	h.colors["positive"].Print("HIGH")
	fmt.Println(" (0.80-1.00): Strong label and clean value parse")
	fmt.Print("- ")
	h.colors["warning"].Print("MEDIUM")
	fmt.Println(" (0.50-0.79): Fallback extraction or partially parsed value")
	fmt.Print("- ")
	h.colors["negative"].Print("LOW")
	fmt.Println(" (0.00-0.49): Weak evidence, review the source document")
	fmt.Println()

	if len(info.Examples) > 0 {
		h.colors["header"].Println("EXAMPLES:")
		for _, example := range info.Examples {
			fmt.Print("  ")
			h.colors["example"].Println(example)
		}
	}

	return true
}

// defaultFieldInfo returns the help content for every extracted field.
func defaultFieldInfo() []FieldInfo {
	return []FieldInfo{
		{
			Name:                "company_name",
			ShortDescription:    "Issuing company name",
			DetailedDescription: "The legal name of the company issuing the notice. Taken from an explicit label when present, otherwise from a company-suffixed line near the top of the document.",
			Patterns:            []string{"Name of entity", "Company Name", "Issuer"},
			Fallbacks:           []string{"First line of page one ending in Limited, Ltd, PLC, Corp, Inc or NL"},
			ConfidenceNotes:     []string{"0.85 when a label matches", "0.75 when recovered from a company-suffixed line"},
			Examples:            []string{"cai-scan --file notice.pdf --confidence high | grep company_name"},
		},
		{
			Name:                "ticker",
			ShortDescription:    "Exchange ticker code",
			DetailedDescription: "The listed security's ticker code, typically the ASX code block on announcement forms.",
			Patterns:            []string{"ASX Code", "Ticker", "Security Code"},
			ConfidenceNotes:     []string{"0.85 when a label matches"},
		},
		{
			Name:                "isin",
			ShortDescription:    "International Securities Identification Number",
			DetailedDescription: "The ISIN of the affected security. The value is checksum-validated; a failing checksum keeps the value but lowers the document confidence and adds a warning.",
			Patterns:            []string{"ISIN"},
			ConfidenceNotes:     []string{"0.85 when a label matches", "Checksum failure applies a 0.3 penalty to the field"},
		},
		{
			Name:                "ex_date",
			ShortDescription:    "Ex-entitlement date",
			DetailedDescription: "The date the security begins trading without the entitlement. Dates are normalized to YYYY-MM-DD; day-first formats are assumed for numeric dates.",
			Patterns:            []string{"Ex Date", "Ex-Date", "Ex-entitlement Date"},
			ConfidenceNotes:     []string{"0.85 when the date parses", "0.5 with the raw string kept when the date cannot be parsed", "Ordering violations against record date apply a 0.2 penalty"},
		},
		{
			Name:                "record_date",
			ShortDescription:    "Record date for entitlement",
			DetailedDescription: "The date holders must be on the register to receive the entitlement. Normalized to YYYY-MM-DD.",
			Patterns:            []string{"Record Date", "Books Close Date"},
			ConfidenceNotes:     []string{"0.85 when the date parses", "Ordering violations against ex date or payment date apply a 0.2 penalty"},
		},
		{
			Name:                "payment_date",
			ShortDescription:    "Payment or implementation date",
			DetailedDescription: "The date the dividend or distribution is paid, or the corporate action is implemented. Normalized to YYYY-MM-DD.",
			Patterns:            []string{"Payment Date", "Date payable"},
			ConfidenceNotes:     []string{"0.85 when the date parses"},
		},
		{
			Name:                "dividend_per_share",
			ShortDescription:    "Cash amount per security",
			DetailedDescription: "The cash dividend or distribution amount per security. When no labeled amount exists, the document is scanned for currency amounts near per-share wording.",
			Patterns:            []string{"Dividend", "Distribution Amount", "Amount per security"},
			Fallbacks: []string{
				"First dollar amount with per-share wording nearby (0.9)",
				"First dollar amount anywhere in the document (0.7)",
			},
			ConfidenceNotes: []string{"0.85 when a label matches", "Fallbacks assign 0.9 or 0.7 depending on context"},
			Examples:        []string{"cai-scan --file notice.pdf --show-snippets"},
		},
		{
			Name:                "currency",
			ShortDescription:    "Currency of the cash amount",
			DetailedDescription: "The ISO currency code of the cash amount. Codes are checked in a configurable priority order and the first code found in the document wins.",
			Patterns:            []string{"Currency", "AUD", "USD", "GBP", "EUR", "JPY", "CNY"},
			ConfidenceNotes:     []string{"0.95 when a code is found"},
		},
		{
			Name:                "franking_percentage",
			ShortDescription:    "Franked percentage of the dividend",
			DetailedDescription: "The percentage of the dividend that is franked. 'Unfranked' wording is excluded from matching, and regulatory form labels such as the 3A.3 franked percentage block are recognized as fallbacks.",
			Patterns:            []string{"Franked amount per security", "Percentage of ordinary dividend franked"},
			Fallbacks:           []string{"Percentage adjacent to franking wording elsewhere in the document (0.9)"},
			ConfidenceNotes:     []string{"0.85 when a label matches", "0.9 from the fallback chain"},
		},
		{
			Name:                "ratio",
			ShortDescription:    "Split, bonus or rights ratio",
			DetailedDescription: "The new-for-old ratio of a split, consolidation, bonus issue or rights issue, captured as an ordered pair.",
			Patterns:            []string{"Ratio", "X for Y wording", "X:Y notation"},
			ConfidenceNotes:     []string{"0.85 when a label or ratio notation matches"},
		},
		{
			Name:                "announcement_date",
			ShortDescription:    "Date of the announcement",
			DetailedDescription: "The date the notice was announced or lodged. Normalized to YYYY-MM-DD.",
			Patterns:            []string{"Announcement Date", "Date of this announcement", "Lodgement Date"},
			ConfidenceNotes:     []string{"0.85 when the date parses"},
		},
	}
}
