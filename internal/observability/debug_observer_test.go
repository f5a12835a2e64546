// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bytes"
	"strings"
	"testing"
)

func TestDebugObserver_StepLifecycle(t *testing.T) {
	var buf bytes.Buffer
	obs := NewDebugObserver(&buf)

	finish := obs.StartStep("kpi", "parse", "notice.txt")
	obs.LogMetric("kpi", "ticker", 0.85)
	obs.LogDetail("kpi", "fallbacks skipped")
	finish(true, "11 fields")

	out := buf.String()
	for _, want := range []string{
		"> kpi: parse (notice.txt)",
		"kpi.ticker = 0.85",
		". kpi: fallbacks skipped",
		"< kpi: parse done",
		"11 fields",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("debug output missing %q:\n%s", want, out)
		}
	}
}

func TestDebugObserver_FailedStep(t *testing.T) {
	var buf bytes.Buffer
	obs := NewDebugObserver(&buf)

	finish := obs.StartStep("preprocessor", "process", "broken.pdf")
	finish(false, "unreadable xref")

	out := buf.String()
	if !strings.Contains(out, "preprocessor: process FAILED") {
		t.Errorf("expected failure marker in output:\n%s", out)
	}
	if !strings.Contains(out, "unreadable xref") {
		t.Errorf("expected closing details in output:\n%s", out)
	}
}
