// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// DebugObserver narrates the extraction flow stage by stage, indenting
// nested stages so the preprocess/parse pipeline reads as a tree.
type DebugObserver struct {
	*StandardObserver
	indent int
}

// NewDebugObserver creates an observer that logs every pipeline stage.
func NewDebugObserver(writer io.Writer) *DebugObserver {
	return &DebugObserver{
		StandardObserver: NewStandardObserver(ObservabilityDebug, writer),
	}
}

// StartStep opens a pipeline stage. The returned function closes it with the
// outcome, elapsed time and any closing details.
func (d *DebugObserver) StartStep(stage, step, filePath string) func(success bool, details string) {
	start := time.Now()
	fmt.Fprintf(d.writer, "%s> %s: %s (%s)\n", strings.Repeat("  ", d.indent), stage, step, filePath)
	d.indent++

	return func(success bool, details string) {
		d.indent--
		outcome := "done"
		if !success {
			outcome = "FAILED"
		}
		fmt.Fprintf(d.writer, "%s< %s: %s %s (%dms) %s\n",
			strings.Repeat("  ", d.indent), stage, step, outcome, time.Since(start).Milliseconds(), details)
	}
}

// LogDetail notes an intermediate observation inside the current stage.
func (d *DebugObserver) LogDetail(stage, detail string) {
	fmt.Fprintf(d.writer, "%s  . %s: %s\n", strings.Repeat("  ", d.indent), stage, detail)
}

// LogMetric records a named value, e.g. a field confidence after parsing.
func (d *DebugObserver) LogMetric(stage, name string, value interface{}) {
	fmt.Fprintf(d.writer, "%s  %s.%s = %v\n", strings.Repeat("  ", d.indent), stage, name, value)
}
