// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"cai-scan/internal/config"
	"cai-scan/internal/core"
	"cai-scan/internal/formatters"
	formatterShared "cai-scan/internal/formatters/shared"
	"cai-scan/internal/store"
	"cai-scan/internal/version"

	// Import formatters to register them
	_ "cai-scan/internal/formatters/csv"
	_ "cai-scan/internal/formatters/json"
	_ "cai-scan/internal/formatters/text"
	_ "cai-scan/internal/formatters/yaml"
)

// WebServer represents the web server instance
type WebServer struct {
	host   string
	port   string
	cfg    *config.Config
	store  *store.Store
	server *http.Server
}

// ExtractResponse wraps extraction results for the web UI.
type ExtractResponse struct {
	Success bool                           `json:"success"`
	Results []formatterShared.JSONDocument `json:"results"`
	Error   string                         `json:"error,omitempty"`
}

// NewWebServer creates a new web server instance. The store may be nil, in
// which case the document retrieval endpoints return errors and uploads are
// not persisted.
func NewWebServer(port string, cfg *config.Config, documentStore *store.Store) *WebServer {
	host := "127.0.0.1"
	if cfg != nil && cfg.Web.Host != "" {
		host = cfg.Web.Host
	}
	return &WebServer{
		host:  host,
		port:  port,
		cfg:   cfg,
		store: documentStore,
	}
}

// Start starts the web server
func (ws *WebServer) Start() error {
	if err := ws.setupRoutesWithValidation(); err != nil {
		return fmt.Errorf("failed to setup web server routes: %w\n"+
			"Troubleshooting: Ensure the web server components are properly initialized", err)
	}

	// Try ports starting from the specified port
	var lastError error
	for i := 0; i < 10; i++ {
		currentPort := ws.port
		if i > 0 || ws.port == "8080" {
			currentPort = fmt.Sprintf("%d", 8080+i)
		}

		// Test if the configured address is available first
		addr := net.JoinHostPort(ws.host, currentPort)
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			lastError = err
			if i == 0 {
				fmt.Printf("Port %s is not available, trying alternative ports...\n", currentPort)
			}
			continue // Port is busy, try next one
		}
		listener.Close()

		// Create secure server with timeout configurations
		ws.server = ws.createSecureServer(addr)

		fmt.Printf("Cai Scan Web UI started on port %s\n", currentPort)
		fmt.Printf("Access URLs:\n")
		fmt.Printf("Local:     http://localhost:%s\n", currentPort)
		fmt.Printf("Container: Use your mapped port (e.g., -p 8082:%s -> http://localhost:8082)\n", currentPort)

		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lastError = err
			fmt.Printf("Server on port %s failed: %v\n", currentPort, err)
			continue // Try next port
		}
		return nil
	}

	return fmt.Errorf("could not find an available port in range 8080-8089\n"+
		"Last error: %v\n"+
		"Troubleshooting:\n"+
		"  1. Check if other services are using these ports: netstat -an | grep :808\n"+
		"  2. Try a specific port with --port <number>\n"+
		"  3. Ensure you have permission to bind to the requested port\n"+
		"  4. Check firewall settings if accessing from remote machines", lastError)
}

// Stop stops the web server
func (ws *WebServer) Stop() error {
	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}

// setupRoutesWithValidation sets up routes with detailed error reporting
func (ws *WebServer) setupRoutesWithValidation() error {
	if err := ws.validateTemplate(); err != nil {
		return fmt.Errorf("template validation failed: %w", err)
	}
	ws.setupRoutes()
	return nil
}

// validateTemplate ensures the web template is available
func (ws *WebServer) validateTemplate() error {
	templateContent := ws.loadTemplate()
	if len(templateContent) == 0 {
		return fmt.Errorf("web template is empty or could not be loaded\n" +
			"Troubleshooting: Ensure web/template.html exists in the current directory")
	}
	return nil
}

// setupRoutes configures the HTTP route handlers
func (ws *WebServer) setupRoutes() {
	http.HandleFunc("/", ws.serveHome)
	http.HandleFunc("/health", ws.handleHealth)
	http.HandleFunc("/extract", ws.handleExtract)
	http.HandleFunc("/export", ws.handleExport)
	http.HandleFunc("/documents", ws.handleDocuments)
	http.HandleFunc("/result/", ws.handleResult)
	http.HandleFunc("/raw/", ws.handleRaw)
	http.HandleFunc("/download/", ws.handleDownload)
}

// createSecureServer creates an HTTP server with security timeouts
func (ws *WebServer) createSecureServer(addr string) *http.Server {
	return &http.Server{
		Addr: addr,
		// Timeout for reading request headers (prevents slow header attacks)
		ReadHeaderTimeout: 15 * time.Second,
		// Timeout for reading entire request
		ReadTimeout: 30 * time.Second,
		// Timeout for writing response
		WriteTimeout: 30 * time.Second,
		// Timeout for idle connections
		IdleTimeout: 60 * time.Second,
	}
}

// serveHome serves the main HTML page
func (ws *WebServer) serveHome(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != "GET" {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if request.URL.Path != "/" {
		http.NotFound(responseWriter, request)
		return
	}

	htmlContent := ws.loadTemplate()

	responseWriter.Header().Set("Content-Type", "text/html")
	responseWriter.WriteHeader(http.StatusOK)
	responseWriter.Write([]byte(htmlContent))
}

// loadTemplate loads the HTML template from file with fallback to embedded template
func (ws *WebServer) loadTemplate() string {
	// Try to load from web/template.html first
	cleanTemplatePath := filepath.Clean(filepath.Join("web", "template.html"))
	if content, err := os.ReadFile(cleanTemplatePath); err == nil {
		return string(content)
	}

	// Try to load from current directory
	cleanCurrentPath := filepath.Clean("template.html")
	if content, err := os.ReadFile(cleanCurrentPath); err == nil {
		return string(content)
	}

	// Fallback to embedded template
	return ws.getEmbeddedTemplate()
}

// getEmbeddedTemplate returns embedded fallback template
func (ws *WebServer) getEmbeddedTemplate() string {
	return `<!DOCTYPE html>
<html><head><title>Cai Scan</title></head>
<body>
<h1>Cai Scan</h1>
<p>Upload a corporate action notice (PDF or text) to extract its key fields.</p>
<form action="/extract" method="post" enctype="multipart/form-data">
<input type="file" name="files" multiple>
<label>Confidence: <input type="text" name="confidence" value="all"></label>
<label><input type="checkbox" name="verbose" value="true"> Verbose</label>
<button type="submit">Extract</button>
</form>
</body></html>`
}

// handleHealth provides a health check endpoint with CLI version information
func (ws *WebServer) handleHealth(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != "GET" {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	versionInfo := version.Full()

	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "cai-scan-web",
		"version":   versionInfo["version"], // Short version for compatibility
		"build_info": map[string]interface{}{
			"version":    versionInfo["version"],
			"commit":     versionInfo["commit"],
			"build_date": versionInfo["buildDate"],
			"go_version": versionInfo["goVersion"],
			"platform":   versionInfo["platform"],
		},
	}

	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(http.StatusOK)
	json.NewEncoder(responseWriter).Encode(healthData)
}

// handleExtract processes file uploads and runs the extraction pipeline
func (ws *WebServer) handleExtract(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != "POST" {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maxUploadBytes := int64(32) << 20
	if ws.cfg != nil && ws.cfg.Web.MaxUploadMB > 0 {
		maxUploadBytes = int64(ws.cfg.Web.MaxUploadMB) << 20
	}

	if err := request.ParseMultipartForm(maxUploadBytes); err != nil {
		ws.sendError(responseWriter, "Failed to parse form data")
		return
	}

	// Extract parameters (same as CLI flags)
	confidence := request.FormValue("confidence")
	if confidence == "" {
		confidence = "all" // CLI default: show all levels
	}
	verbose := request.FormValue("verbose") == "true"

	files := request.MultipartForm.File["files"]
	if len(files) == 0 {
		ws.sendError(responseWriter, "No files uploaded")
		return
	}

	var documentResults []formatters.DocumentResult
	for i, fileHeader := range files {
		result, err := ws.processUploadedFile(fileHeader, i, maxUploadBytes)
		if err != nil {
			ws.sendError(responseWriter, err.Error())
			return
		}
		documentResults = append(documentResults, formatters.DocumentResult{
			Filename: result.Filename,
			Result:   result.Result,
		})
	}

	// Always include evidence so the UI can show snippets on demand
	formatterOptions := formatters.FormatterOptions{
		ConfidenceLevel: core.ParseConfidenceLevels(confidence),
		Verbose:         verbose,
		ShowSnippets:    true,
	}

	response := formatterShared.ConvertResultsToJSONFormat(documentResults, formatterOptions)

	responseWriter.Header().Set("Content-Type", "application/json")
	json.NewEncoder(responseWriter).Encode(ExtractResponse{
		Success: true,
		Results: response.Results,
	})
}

// processUploadedFile copies an upload to a temp file and runs extraction
func (ws *WebServer) processUploadedFile(uploadedFile *multipart.FileHeader, fileIndex int, maxUploadBytes int64) (*core.ExtractResult, error) {
	file, err := uploadedFile.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %v", uploadedFile.Filename, err)
	}
	defer file.Close()

	tempFile, err := os.CreateTemp("", fmt.Sprintf("cai_upload_%d_%d_*.%s", time.Now().Unix(), fileIndex, ws.getFileExtension(uploadedFile.Filename)))
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %v", err)
	}
	defer os.Remove(tempFile.Name())
	defer tempFile.Close()

	// Cap the copy to protect against oversized uploads
	limitedReader := io.LimitReader(file, maxUploadBytes)
	if _, err := io.Copy(tempFile, limitedReader); err != nil {
		return nil, fmt.Errorf("failed to copy file content: %v", err)
	}

	return core.ExtractFile(core.ExtractConfig{
		FilePath: tempFile.Name(),
		Filename: ws.sanitizeFilenameForDisplay(uploadedFile.Filename),
		Config:   ws.cfg,
		Store:    ws.store,
	})
}

// handleDocuments lists stored extractions
func (ws *WebServer) handleDocuments(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != "GET" {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if ws.store == nil {
		ws.sendErrorWithStatus(responseWriter, "Document storage is not enabled", http.StatusNotFound)
		return
	}

	documents, err := ws.store.List()
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, fmt.Sprintf("Failed to list documents: %v", err), http.StatusInternalServerError)
		return
	}

	responseWriter.Header().Set("Content-Type", "application/json")
	json.NewEncoder(responseWriter).Encode(map[string]interface{}{
		"documents": documents,
	})
}

// handleResult returns the stored extraction result for a document id
func (ws *WebServer) handleResult(responseWriter http.ResponseWriter, request *http.Request) {
	docID, ok := ws.docIDFromPath(responseWriter, request, "/result/")
	if !ok {
		return
	}

	result, filename, err := ws.store.GetResult(docID)
	if err != nil {
		ws.sendStoreError(responseWriter, err)
		return
	}

	formatterOptions := formatters.FormatterOptions{
		ConfidenceLevel: core.ParseConfidenceLevels("all"),
		ShowSnippets:    true,
	}
	response := formatterShared.ConvertResultsToJSONFormat([]formatters.DocumentResult{
		{Filename: filename, Result: result},
	}, formatterOptions)

	responseWriter.Header().Set("Content-Type", "application/json")
	json.NewEncoder(responseWriter).Encode(response.Results[0])
}

// handleRaw returns the stored page text for a document id
func (ws *WebServer) handleRaw(responseWriter http.ResponseWriter, request *http.Request) {
	docID, ok := ws.docIDFromPath(responseWriter, request, "/raw/")
	if !ok {
		return
	}

	doc, err := ws.store.GetRaw(docID)
	if err != nil {
		ws.sendStoreError(responseWriter, err)
		return
	}

	responseWriter.Header().Set("Content-Type", "application/json")
	json.NewEncoder(responseWriter).Encode(doc)
}

// handleDownload serves the retained source PDF for a document id
func (ws *WebServer) handleDownload(responseWriter http.ResponseWriter, request *http.Request) {
	docID, ok := ws.docIDFromPath(responseWriter, request, "/download/")
	if !ok {
		return
	}

	pdfPath, err := ws.store.PDFPath(docID)
	if err != nil {
		ws.sendStoreError(responseWriter, err)
		return
	}

	responseWriter.Header().Set("Content-Type", "application/pdf")
	responseWriter.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.pdf\"", docID))
	http.ServeFile(responseWriter, request, pdfPath)
}

// handleExport exports stored extraction results in the requested format
func (ws *WebServer) handleExport(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != "POST" {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if ws.store == nil {
		ws.sendErrorWithStatus(responseWriter, "Document storage is not enabled", http.StatusNotFound)
		return
	}

	var exportRequest struct {
		Format     string   `json:"format"`
		DocIDs     []string `json:"doc_ids"`
		Confidence string   `json:"confidence"`
		Verbose    bool     `json:"verbose"`
	}
	if err := json.NewDecoder(request.Body).Decode(&exportRequest); err != nil {
		ws.sendError(responseWriter, "Invalid JSON in request body")
		return
	}

	if exportRequest.Format == "" {
		ws.sendError(responseWriter, "Format is required")
		return
	}
	if _, exists := formatters.Get(exportRequest.Format); !exists {
		ws.sendError(responseWriter, fmt.Sprintf("Unsupported format '%s'. Available formats: %s",
			exportRequest.Format, strings.Join(formatters.List(), ", ")))
		return
	}
	if len(exportRequest.DocIDs) == 0 {
		ws.sendError(responseWriter, "No document ids provided")
		return
	}

	var documentResults []formatters.DocumentResult
	for _, docID := range exportRequest.DocIDs {
		if _, err := uuid.Parse(docID); err != nil {
			ws.sendError(responseWriter, fmt.Sprintf("Invalid document id: %s", sanitizeUserInput(docID, 50)))
			return
		}
		result, filename, err := ws.store.GetResult(docID)
		if err != nil {
			ws.sendStoreError(responseWriter, err)
			return
		}
		documentResults = append(documentResults, formatters.DocumentResult{
			Filename: filename,
			Result:   result,
		})
	}

	confidence := exportRequest.Confidence
	if confidence == "" {
		confidence = "all"
	}
	formatterOptions := formatters.FormatterOptions{
		ConfidenceLevel: core.ParseConfidenceLevels(confidence),
		Verbose:         exportRequest.Verbose,
		NoColor:         true, // Always disable color for exports
	}

	content, mimeType, filename, err := formatters.ExportForWeb(exportRequest.Format, documentResults, formatterOptions)
	if err != nil {
		ws.sendError(responseWriter, fmt.Sprintf("Failed to format results: %v", err))
		return
	}

	// Timestamp the download filename
	timestamp := time.Now().Format("20060102-150405")
	ext := filepath.Ext(filename)
	filename = fmt.Sprintf("%s-%s%s", strings.TrimSuffix(filename, ext), timestamp, ext)

	responseWriter.Header().Set("Content-Type", mimeType)
	responseWriter.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	responseWriter.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	responseWriter.Header().Set("Pragma", "no-cache")
	responseWriter.Header().Set("Expires", "0")

	responseWriter.WriteHeader(http.StatusOK)
	responseWriter.Write([]byte(content))
}

// Utility functions

// docIDFromPath validates the request and extracts the document id after the
// given route prefix. It writes the error response itself on failure.
func (ws *WebServer) docIDFromPath(responseWriter http.ResponseWriter, request *http.Request, prefix string) (string, bool) {
	if request.Method != "GET" {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}
	if ws.store == nil {
		ws.sendErrorWithStatus(responseWriter, "Document storage is not enabled", http.StatusNotFound)
		return "", false
	}

	docID := strings.TrimPrefix(request.URL.Path, prefix)
	if docID == "" || strings.Contains(docID, "/") {
		ws.sendErrorWithStatus(responseWriter, "Document id is required", http.StatusNotFound)
		return "", false
	}
	if _, err := uuid.Parse(docID); err != nil {
		ws.sendErrorWithStatus(responseWriter, fmt.Sprintf("Invalid document id: %s", sanitizeUserInput(docID, 50)), http.StatusNotFound)
		return "", false
	}
	return docID, true
}

// sendStoreError maps storage errors onto HTTP status codes
func (ws *WebServer) sendStoreError(responseWriter http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		ws.sendErrorWithStatus(responseWriter, "Document not found", http.StatusNotFound)
		return
	}
	ws.sendErrorWithStatus(responseWriter, fmt.Sprintf("Storage error: %v", err), http.StatusInternalServerError)
}

// getFileExtension extracts file extension from filename with sanitization
func (ws *WebServer) getFileExtension(filename string) string {
	if ext := filepath.Ext(filename); ext != "" {
		// Sanitize extension to prevent directory traversal or injection
		safeExt := sanitizeUserInput(strings.TrimPrefix(ext, "."), 10)
		// Only allow alphanumeric extensions
		if safeExt != "" && isAlphanumeric(safeExt) {
			return safeExt
		}
	}
	return "tmp"
}

// isAlphanumeric checks if string contains only alphanumeric characters
func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// sendError sends an error response with enhanced error information
func (ws *WebServer) sendError(responseWriter http.ResponseWriter, message string) {
	ws.sendErrorWithStatus(responseWriter, message, http.StatusBadRequest)
}

// sendErrorWithStatus sends an error response with a specific HTTP status code
func (ws *WebServer) sendErrorWithStatus(responseWriter http.ResponseWriter, message string, statusCode int) {
	enhancedMessage := ws.enhanceErrorMessage(message, statusCode)

	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(statusCode)
	json.NewEncoder(responseWriter).Encode(ExtractResponse{
		Success: false,
		Error:   enhancedMessage,
	})
}

// enhanceErrorMessage adds troubleshooting information to error messages
func (ws *WebServer) enhanceErrorMessage(message string, statusCode int) string {
	switch {
	case strings.Contains(message, "Failed to parse form data"):
		return message + "\nTroubleshooting: Ensure you're uploading files using multipart/form-data with 'files' field name"
	case strings.Contains(message, "No files uploaded"):
		return message + "\nTroubleshooting: Select one or more files before clicking 'Extract'"
	case strings.Contains(message, "file type not supported"):
		return message + "\nTroubleshooting: Upload a PDF or plain-text corporate action notice"
	case strings.Contains(message, "Document storage is not enabled"):
		return message + "\nTroubleshooting: Enable storage in the configuration file or with --store"
	case statusCode == http.StatusInternalServerError:
		return message + "\nTroubleshooting: Check server logs for detailed error information"
	case statusCode == http.StatusNotFound && strings.Contains(message, "Document not found"):
		return message + "\nTroubleshooting: Verify the document id with the /documents endpoint"
	default:
		return message
	}
}

// sanitizeUserInput removes dangerous characters from user input for safe output
func sanitizeUserInput(input string, maxLength int) string {
	// Remove control characters, null bytes, and other dangerous characters
	sanitized := strings.Map(func(r rune) rune {
		// Remove control characters (0-31, 127)
		if r < 32 || r == 127 {
			return -1
		}
		// Remove other potentially dangerous characters
		switch r {
		case '<', '>', '"', '\'', '&':
			return -1 // Remove HTML/XML special characters
		}
		return r
	}, input)

	// Limit length to prevent response bloat
	if len(sanitized) > maxLength {
		sanitized = sanitized[:maxLength] + "..."
	}

	return sanitized
}

// sanitizeFilenameForDisplay sanitizes a filename for safe display in the web UI
func (ws *WebServer) sanitizeFilenameForDisplay(filename string) string {
	// Drop any client-supplied directory components
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	return sanitizeUserInput(base, 500)
}
