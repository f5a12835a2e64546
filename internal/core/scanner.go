// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cai-scan/internal/config"
	"cai-scan/internal/document"
	"cai-scan/internal/kpi"
	"cai-scan/internal/observability"
	"cai-scan/internal/preprocessors"
	"cai-scan/internal/store"
)

// ExtractConfig holds configuration for extraction operations.
type ExtractConfig struct {
	FilePath string
	// Filename, when set, overrides the display name derived from FilePath.
	// The web server uses this so uploads keep their original names instead
	// of temp file names.
	Filename string
	Debug    bool
	Config   *config.Config
	// Store, when non-nil, persists the extraction and assigns a document id.
	Store *store.Store
}

// ExtractResult holds the outcome of extracting one file.
type ExtractResult struct {
	Filename string
	DocID    string
	Document document.Document
	Result   *kpi.Result
}

// ExtractFile performs the core extraction pipeline shared by the CLI and
// the web server: preprocess the file into pages, run the KPI parser,
// fold preprocessing warnings into the result and optionally persist it.
func ExtractFile(extractConfig ExtractConfig) (*ExtractResult, error) {
	// Build observer
	observer := observability.NewStandardObserver(observability.ObservabilityMetrics, os.Stderr)
	if extractConfig.Debug {
		debugObs := observability.NewDebugObserver(os.Stderr)
		observer = debugObs.StandardObserver
		observer.DebugObserver = debugObs
	}

	processor := preprocessors.NewProcessor()
	if !processor.CanProcess(extractConfig.FilePath) {
		return nil, fmt.Errorf("file type not supported for processing: %s", extractConfig.FilePath)
	}

	finishPreprocess := observer.StartTiming("preprocessor", "process", extractConfig.FilePath)
	doc, preWarnings, err := processor.Process(extractConfig.FilePath)
	if err != nil {
		finishPreprocess(false, nil)
		return nil, fmt.Errorf("preprocessing failed: %w", err)
	}
	finishPreprocess(true, map[string]interface{}{"pages": len(doc.Pages)})

	finishParse := observer.StartTiming("kpi", "parse", extractConfig.FilePath)
	parser := BuildParser(extractConfig.Config)
	result := parser.Parse(doc)
	result.Warnings = append(result.Warnings, preWarnings...)
	finishParse(true, map[string]interface{}{
		"document_type":      string(result.DocumentType),
		"overall_confidence": result.OverallConfidence,
	})

	if observer.DebugObserver != nil {
		for _, named := range result.NamedFields() {
			if named.Field.IsSet() {
				observer.DebugObserver.LogMetric("kpi", named.Name, named.Field.Confidence)
			}
		}
	}

	filename := extractConfig.Filename
	if filename == "" {
		filename = filepath.Base(extractConfig.FilePath)
	}

	extractResult := &ExtractResult{
		Filename: filename,
		Document: doc,
		Result:   result,
	}

	if extractConfig.Store != nil {
		docID, err := extractConfig.Store.Save(extractResult.Filename, doc, result, extractConfig.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to persist extraction: %w", err)
		}
		extractResult.DocID = docID
	}

	return extractResult, nil
}

// CollectFiles gathers the processable files under root. A file root returns
// itself. Results are sorted so batch runs are reproducible.
func CollectFiles(root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", root, err)
	}

	processor := preprocessors.NewProcessor()

	if !info.IsDir() {
		if !processor.CanProcess(root) {
			return nil, fmt.Errorf("file type not supported for processing: %s", root)
		}
		return []string{root}, nil
	}

	var files []string
	if recursive {
		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && processor.CanProcess(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking directory: %w", err)
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("error reading directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(root, entry.Name())
			if processor.CanProcess(path) {
				files = append(files, path)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// ParseConfidenceLevels converts a comma-separated confidence level string into a map.
// "all" or empty string enables every level.
func ParseConfidenceLevels(levels string) map[string]bool {
	result := map[string]bool{
		"high":   false,
		"medium": false,
		"low":    false,
	}

	if levels == "all" || levels == "" {
		result["high"] = true
		result["medium"] = true
		result["low"] = true
		return result
	}

	for _, level := range strings.Split(levels, ",") {
		switch strings.ToLower(strings.TrimSpace(level)) {
		case "high", "medium", "low":
			result[strings.ToLower(strings.TrimSpace(level))] = true
		}
	}

	return result
}
