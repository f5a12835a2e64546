// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanProcess(t *testing.T) {
	p := NewProcessor()

	cases := []struct {
		path string
		want bool
	}{
		{"notice.pdf", true},
		{"notice.PDF", true},
		{"notice.txt", true},
		{"notice.text", true},
		{"notice.docx", false},
		{"notice.png", false},
		{"notice", false},
	}
	for _, c := range cases {
		if got := p.CanProcess(c.path); got != c.want {
			t.Errorf("CanProcess(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestProcess_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notice.txt")
	content := "BHP Group Limited\nEx-Date: 15 March 2026"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	doc, warnings, err := NewProcessor().Process(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if doc.PageCount() != 1 {
		t.Fatalf("expected 1 page, got %d", doc.PageCount())
	}
	if doc.Pages[0].Text != content {
		t.Errorf("page text = %q", doc.Pages[0].Text)
	}
	if doc.Pages[0].Number != 1 {
		t.Errorf("page number = %d, want 1", doc.Pages[0].Number)
	}
}

func TestProcess_UnsupportedType(t *testing.T) {
	if _, _, err := NewProcessor().Process("notice.docx"); err == nil {
		t.Error("expected error for unsupported file type")
	}
}

func TestProcess_MissingFile(t *testing.T) {
	if _, _, err := NewProcessor().Process("/nonexistent/notice.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}
