// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"testing"

	"cai-scan/internal/document"
	"cai-scan/internal/kpi"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), false)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleExtraction() (document.Document, *kpi.Result) {
	doc := document.New("BHP Group Limited\nASX Code: BHP\nDividend: $0.45 per share")
	return doc, kpi.NewParser().Parse(doc)
}

func TestSaveAndGetResult(t *testing.T) {
	s := openTestStore(t)
	doc, result := sampleExtraction()

	docID, err := s.Save("notice.txt", doc, result, "")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if docID == "" {
		t.Fatal("expected non-empty doc id")
	}
	if result.DocID != docID {
		t.Errorf("result.DocID = %q, want %q", result.DocID, docID)
	}

	loaded, filename, err := s.GetResult(docID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if filename != "notice.txt" {
		t.Errorf("filename = %q", filename)
	}
	if loaded.DocID != docID {
		t.Errorf("loaded DocID = %q, want %q", loaded.DocID, docID)
	}
	if loaded.Ticker.Value != "BHP" {
		t.Errorf("loaded ticker = %v", loaded.Ticker.Value)
	}
	if loaded.DocumentType != result.DocumentType {
		t.Errorf("loaded document type = %v", loaded.DocumentType)
	}
}

func TestGetRaw(t *testing.T) {
	s := openTestStore(t)
	doc, result := sampleExtraction()

	docID, err := s.Save("notice.txt", doc, result, "")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	raw, err := s.GetRaw(docID)
	if err != nil {
		t.Fatalf("get raw failed: %v", err)
	}
	if raw.PageCount() != doc.PageCount() {
		t.Fatalf("raw page count = %d, want %d", raw.PageCount(), doc.PageCount())
	}
	if raw.Pages[0].Text != doc.Pages[0].Text {
		t.Errorf("raw page text mismatch")
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)

	if _, _, err := s.GetResult("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetResult error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetRaw("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRaw error = %v, want ErrNotFound", err)
	}
	if _, err := s.PDFPath("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("PDFPath error = %v, want ErrNotFound", err)
	}
}

func TestPDFPath_NoRetainedPDF(t *testing.T) {
	s := openTestStore(t)
	doc, result := sampleExtraction()

	docID, err := s.Save("notice.txt", doc, result, "")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := s.PDFPath(docID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for document without a stored PDF, got %v", err)
	}
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	doc, result := sampleExtraction()

	if _, err := s.Save("first.txt", doc, result, ""); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	doc2, result2 := sampleExtraction()
	if _, err := s.Save("second.txt", doc2, result2, ""); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	infos, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(infos))
	}
	for _, info := range infos {
		if info.DocID == "" || info.Filename == "" {
			t.Errorf("incomplete listing entry: %+v", info)
		}
		if info.HasPDF {
			t.Errorf("expected HasPDF=false for %s", info.Filename)
		}
	}
}
