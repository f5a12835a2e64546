// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"cai-scan/internal/config"
	"cai-scan/internal/kpi"
)

// BuildParser constructs a KPI parser from configuration. Pass nil for cfg
// to use the engine defaults.
func BuildParser(cfg *config.Config) *kpi.Parser {
	parser := kpi.NewParser()
	if cfg == nil {
		return parser
	}
	parser.WithContextChars(cfg.Extraction.ContextChars)
	parser.WithCurrencyPriority(cfg.Extraction.CurrencyPriority)
	return parser
}
