// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package kpi

// aggregateConfidence reduces the per-field confidences to one overall
// score: the arithmetic mean over every field holding a value, clamped to
// [0,1]. A result with no populated field scores 0.0.
func aggregateConfidence(r *Result) float64 {
	var sum float64
	var populated int
	for _, f := range r.trackedFields() {
		if f.IsSet() {
			sum += f.Confidence
			populated++
		}
	}
	if populated == 0 {
		return 0
	}
	return clamp01(sum / float64(populated))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
