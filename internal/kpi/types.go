// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kpi

// DocumentType classifies a corporate action notice.
type DocumentType string

const (
	DocTypeDividend      DocumentType = "DIVIDEND"
	DocTypeSplit         DocumentType = "SPLIT"
	DocTypeBonus         DocumentType = "BONUS"
	DocTypeRights        DocumentType = "RIGHTS"
	DocTypeCapitalReturn DocumentType = "CAPITAL_RETURN"
)

// DividendSubtype refines a DIVIDEND notice into its ASX dividend class.
type DividendSubtype string

const (
	SubtypeOrdinary DividendSubtype = "ORDINARY"
	SubtypeInterim  DividendSubtype = "INTERIM"
	SubtypeSpecial  DividendSubtype = "SPECIAL"
	SubtypeFinal    DividendSubtype = "FINAL"
)

// FieldEvidence ties an extracted value back to its source: the 1-based page
// the value was found on and a single-line context snippet. Page 1 is the
// documented fallback when a match cannot be located verbatim on any page.
type FieldEvidence struct {
	Page    int    `json:"page"`
	Snippet string `json:"snippet"`
}

// Field is one extracted KPI. Value is nil when nothing was extracted,
// otherwise a string or float64. Invariant: a nil Value always carries
// confidence 0.0 and no evidence; validators may only lower confidence
// after the initial grant, never raise it.
type Field struct {
	Value      any            `json:"value"`
	Evidence   *FieldEvidence `json:"evidence,omitempty"`
	Confidence float64        `json:"confidence"`
}

// IsSet reports whether the field holds an extracted value.
func (f *Field) IsSet() bool {
	return f.Value != nil
}

// Result is the full extraction output for one document: eleven tracked KPI
// fields plus the document classification, an aggregate confidence score and
// any validation warnings. A Result is built by a single Parse call and not
// mutated afterwards.
type Result struct {
	DocID             string          `json:"doc_id,omitempty"`
	DocumentType      DocumentType    `json:"document_type,omitempty"`
	DividendSubtype   DividendSubtype `json:"dividend_subtype,omitempty"`
	CompanyName       Field           `json:"company_name"`
	Ticker            Field           `json:"ticker"`
	ISIN              Field           `json:"isin"`
	ExDate            Field           `json:"ex_date"`
	RecordDate        Field           `json:"record_date"`
	PaymentDate       Field           `json:"payment_date"`
	DividendPerShare  Field           `json:"dividend_per_share"`
	Currency          Field           `json:"currency"`
	FrankingPercent   Field           `json:"franking_percentage"`
	Ratio             Field           `json:"ratio"`
	AnnouncementDate  Field           `json:"announcement_date"`
	OverallConfidence float64         `json:"overall_confidence"`
	Warnings          []string        `json:"warnings"`
}

// NamedField pairs a tracked field with its wire name.
type NamedField struct {
	Name  string
	Field *Field
}

// NamedFields returns the eleven KPI fields with their wire names in fixed
// order. Formatters and storage iterate this list so output field order
// stays reproducible.
func (r *Result) NamedFields() []NamedField {
	return []NamedField{
		{"company_name", &r.CompanyName},
		{"ticker", &r.Ticker},
		{"isin", &r.ISIN},
		{"ex_date", &r.ExDate},
		{"record_date", &r.RecordDate},
		{"payment_date", &r.PaymentDate},
		{"dividend_per_share", &r.DividendPerShare},
		{"currency", &r.Currency},
		{"franking_percentage", &r.FrankingPercent},
		{"ratio", &r.Ratio},
		{"announcement_date", &r.AnnouncementDate},
	}
}

// trackedFields returns the eleven KPI fields in their fixed order. The
// aggregator and validators iterate this list so outcomes stay reproducible.
func (r *Result) trackedFields() []*Field {
	named := r.NamedFields()
	fields := make([]*Field, len(named))
	for i, nf := range named {
		fields[i] = nf.Field
	}
	return fields
}
