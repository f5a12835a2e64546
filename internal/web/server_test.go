// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"cai-scan/internal/config"
	"cai-scan/internal/core"
	"cai-scan/internal/store"
)

const webNoticeText = `BHP Group Limited
ASX Code: BHP
Notice of Dividend
Ex-Date: 15 March 2026
Record Date: 17 March 2026
Payment Date: 1 April 2026
Dividend: $0.45 per share
Currency: AUD
`

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}

func multipartUpload(t *testing.T, fieldName, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestHandleHealth(t *testing.T) {
	ws := NewWebServer("8080", nil, nil)

	recorder := httptest.NewRecorder()
	ws.handleHealth(recorder, httptest.NewRequest("GET", "/health", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var health map[string]interface{}
	if err := json.NewDecoder(recorder.Body).Decode(&health); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", health["status"])
	}
	if health["service"] != "cai-scan-web" {
		t.Errorf("expected cai-scan-web service, got %v", health["service"])
	}
}

func TestHandleHealth_MethodNotAllowed(t *testing.T) {
	ws := NewWebServer("8080", nil, nil)

	recorder := httptest.NewRecorder()
	ws.handleHealth(recorder, httptest.NewRequest("POST", "/health", nil))

	if recorder.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", recorder.Code)
	}
}

func TestHandleExtract_TextUpload(t *testing.T) {
	ws := NewWebServer("8080", nil, nil)

	body, contentType := multipartUpload(t, "files", "notice.txt", webNoticeText)
	request := httptest.NewRequest("POST", "/extract", body)
	request.Header.Set("Content-Type", contentType)

	recorder := httptest.NewRecorder()
	ws.handleExtract(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response ExtractResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode extract response: %v", err)
	}
	if !response.Success {
		t.Fatalf("expected success, got error: %s", response.Error)
	}
	if len(response.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(response.Results))
	}
	if response.Results[0].Filename != "notice.txt" {
		t.Errorf("expected filename notice.txt, got %s", response.Results[0].Filename)
	}
	if response.Results[0].DocumentType != "DIVIDEND" {
		t.Errorf("expected DIVIDEND document type, got %s", response.Results[0].DocumentType)
	}
	if len(response.Results[0].Fields) == 0 {
		t.Error("expected extracted fields in response")
	}
}

func TestHandleExtract_NoFiles(t *testing.T) {
	ws := NewWebServer("8080", nil, nil)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("confidence", "all")
	writer.Close()

	request := httptest.NewRequest("POST", "/extract", body)
	request.Header.Set("Content-Type", writer.FormDataContentType())

	recorder := httptest.NewRecorder()
	ws.handleExtract(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", recorder.Code)
	}

	var response ExtractResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if response.Success {
		t.Error("expected failure response")
	}
}

func TestHandleExtract_MethodNotAllowed(t *testing.T) {
	ws := NewWebServer("8080", nil, nil)

	recorder := httptest.NewRecorder()
	ws.handleExtract(recorder, httptest.NewRequest("GET", "/extract", nil))

	if recorder.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", recorder.Code)
	}
}

func TestHandleResult_StorageDisabled(t *testing.T) {
	ws := NewWebServer("8080", nil, nil)

	recorder := httptest.NewRecorder()
	ws.handleResult(recorder, httptest.NewRequest("GET", "/result/6f1c2f6a-3a89-4be7-a9d9-0af9a6e0a001", nil))

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", recorder.Code)
	}
}

func TestHandleResult_InvalidDocID(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(dir, false)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	ws := NewWebServer("8080", nil, st)

	recorder := httptest.NewRecorder()
	ws.handleResult(recorder, httptest.NewRequest("GET", "/result/not-a-uuid", nil))

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", recorder.Code)
	}
}

func TestHandleResult_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "data"), false)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	noticePath := filepath.Join(dir, "notice.txt")
	if err := writeTestFile(noticePath, webNoticeText); err != nil {
		t.Fatalf("failed to write notice: %v", err)
	}
	extractResult, err := core.ExtractFile(core.ExtractConfig{FilePath: noticePath, Store: st})
	if err != nil {
		t.Fatalf("failed to extract notice: %v", err)
	}

	ws := NewWebServer("8080", nil, st)

	recorder := httptest.NewRecorder()
	ws.handleResult(recorder, httptest.NewRequest("GET", "/result/"+extractResult.DocID, nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var doc struct {
		Filename     string `json:"filename"`
		DocumentType string `json:"document_type"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&doc); err != nil {
		t.Fatalf("failed to decode result response: %v", err)
	}
	if doc.Filename != "notice.txt" {
		t.Errorf("expected filename notice.txt, got %s", doc.Filename)
	}
	if doc.DocumentType != "DIVIDEND" {
		t.Errorf("expected DIVIDEND document type, got %s", doc.DocumentType)
	}
}

func TestHandleExport_UnknownFormat(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(dir, false)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	ws := NewWebServer("8080", nil, st)

	payload := bytes.NewBufferString(`{"format":"xml","doc_ids":["6f1c2f6a-3a89-4be7-a9d9-0af9a6e0a001"]}`)
	recorder := httptest.NewRecorder()
	ws.handleExport(recorder, httptest.NewRequest("POST", "/export", payload))

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", recorder.Code)
	}
}

func TestHandleExport_CSV(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "data"), false)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	noticePath := filepath.Join(dir, "notice.txt")
	if err := writeTestFile(noticePath, webNoticeText); err != nil {
		t.Fatalf("failed to write notice: %v", err)
	}
	extractResult, err := core.ExtractFile(core.ExtractConfig{FilePath: noticePath, Store: st})
	if err != nil {
		t.Fatalf("failed to extract notice: %v", err)
	}

	ws := NewWebServer("8080", nil, st)

	payload := bytes.NewBufferString(`{"format":"csv","doc_ids":["` + extractResult.DocID + `"]}`)
	recorder := httptest.NewRecorder()
	ws.handleExport(recorder, httptest.NewRequest("POST", "/export", payload))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if contentType := recorder.Header().Get("Content-Type"); contentType != "text/csv" {
		t.Errorf("expected text/csv content type, got %s", contentType)
	}
	if disposition := recorder.Header().Get("Content-Disposition"); disposition == "" {
		t.Error("expected Content-Disposition header")
	}
	if !bytes.Contains(recorder.Body.Bytes(), []byte("ticker")) {
		t.Error("expected ticker row in CSV export")
	}
}

func TestNewWebServer_BindAddress(t *testing.T) {
	// Default config binds loopback only.
	ws := NewWebServer("8080", config.LoadConfigOrDefault(""), nil)
	if ws.host != "127.0.0.1" {
		t.Errorf("expected loopback default, got %q", ws.host)
	}
	srv := ws.createSecureServer(net.JoinHostPort(ws.host, ws.port))
	if srv.Addr != "127.0.0.1:8080" {
		t.Errorf("expected server addr 127.0.0.1:8080, got %q", srv.Addr)
	}

	// An explicit host overrides the loopback default.
	cfg := config.LoadConfigOrDefault("")
	cfg.Web.Host = "0.0.0.0"
	ws = NewWebServer("8080", cfg, nil)
	if ws.host != "0.0.0.0" {
		t.Errorf("expected configured host, got %q", ws.host)
	}

	// A nil config still yields the loopback default.
	ws = NewWebServer("8080", nil, nil)
	if ws.host != "127.0.0.1" {
		t.Errorf("expected loopback default with nil config, got %q", ws.host)
	}
}

func TestSanitizeFilenameForDisplay(t *testing.T) {
	ws := NewWebServer("8080", nil, nil)

	cases := []struct {
		input    string
		expected string
	}{
		{"notice.pdf", "notice.pdf"},
		{"../../etc/passwd", "passwd"},
		{"C:\\Users\\me\\notice.pdf", "notice.pdf"},
		{"notice<script>.pdf", "noticescript.pdf"},
	}
	for _, tc := range cases {
		if got := ws.sanitizeFilenameForDisplay(tc.input); got != tc.expected {
			t.Errorf("sanitizeFilenameForDisplay(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
