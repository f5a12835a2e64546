// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"cai-scan/internal/document"
	"cai-scan/internal/kpi"
)

// ErrNotFound is returned when no document exists for the given id.
var ErrNotFound = errors.New("document not found")

// DocumentInfo is the listing view of a stored document.
type DocumentInfo struct {
	DocID             string    `json:"doc_id"`
	Filename          string    `json:"filename"`
	DocumentType      string    `json:"document_type"`
	OverallConfidence float64   `json:"overall_confidence"`
	CreatedAt         time.Time `json:"created_at"`
	HasPDF            bool      `json:"has_pdf"`
}

// Store persists extraction results, raw page text and optionally the
// source PDFs under a single data directory backed by a sqlite database.
type Store struct {
	db       *sql.DB
	dir      string
	keepPDFs bool
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	doc_id             TEXT PRIMARY KEY,
	filename           TEXT NOT NULL,
	document_type      TEXT NOT NULL DEFAULT '',
	overall_confidence REAL NOT NULL DEFAULT 0,
	created_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	result_json        TEXT NOT NULL,
	raw_json           TEXT NOT NULL,
	pdf_path           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
`

// Open creates (if needed) the data directory and opens the database.
func Open(dir string, keepPDFs bool) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("error creating data directory: %w", err)
	}
	if keepPDFs {
		if err := os.MkdirAll(filepath.Join(dir, "pdfs"), 0750); err != nil {
			return nil, fmt.Errorf("error creating pdf directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "cai-scan.db"))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}

	return &Store{db: db, dir: dir, keepPDFs: keepPDFs}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists one extraction. It assigns the result a fresh document id,
// stores the result and the raw page text as JSON, and, when PDF retention
// is enabled and sourcePath points at a PDF, copies the source file into the
// data directory. The assigned id is returned and also set on the result.
func (s *Store) Save(filename string, doc document.Document, result *kpi.Result, sourcePath string) (string, error) {
	docID := uuid.NewString()
	result.DocID = docID

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("error encoding result: %w", err)
	}
	rawJSON, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("error encoding raw document: %w", err)
	}

	pdfPath := ""
	if s.keepPDFs && sourcePath != "" && filepath.Ext(sourcePath) == ".pdf" {
		pdfPath = filepath.Join(s.dir, "pdfs", docID+".pdf")
		if err := copyFile(sourcePath, pdfPath); err != nil {
			return "", fmt.Errorf("error copying source PDF: %w", err)
		}
	}

	_, err = s.db.Exec(`INSERT INTO documents
		(doc_id, filename, document_type, overall_confidence, created_at, result_json, raw_json, pdf_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		docID, filename, string(result.DocumentType), result.OverallConfidence,
		time.Now().UTC(), string(resultJSON), string(rawJSON), pdfPath)
	if err != nil {
		return "", fmt.Errorf("error inserting document: %w", err)
	}

	return docID, nil
}

// GetResult returns the stored extraction result and original filename.
func (s *Store) GetResult(docID string) (*kpi.Result, string, error) {
	var resultJSON, filename string
	err := s.db.QueryRow(`SELECT result_json, filename FROM documents WHERE doc_id = ?`, docID).
		Scan(&resultJSON, &filename)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("error querying document: %w", err)
	}

	var result kpi.Result
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, "", fmt.Errorf("error decoding result: %w", err)
	}
	return &result, filename, nil
}

// GetRaw returns the stored raw page text for a document.
func (s *Store) GetRaw(docID string) (document.Document, error) {
	var rawJSON string
	err := s.db.QueryRow(`SELECT raw_json FROM documents WHERE doc_id = ?`, docID).Scan(&rawJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return document.Document{}, ErrNotFound
	}
	if err != nil {
		return document.Document{}, fmt.Errorf("error querying document: %w", err)
	}

	var doc document.Document
	if err := json.Unmarshal([]byte(rawJSON), &doc); err != nil {
		return document.Document{}, fmt.Errorf("error decoding raw document: %w", err)
	}
	return doc, nil
}

// PDFPath returns the stored copy of the source PDF for a document.
// ErrNotFound covers both an unknown id and a document stored without a PDF.
func (s *Store) PDFPath(docID string) (string, error) {
	var pdfPath string
	err := s.db.QueryRow(`SELECT pdf_path FROM documents WHERE doc_id = ?`, docID).Scan(&pdfPath)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("error querying document: %w", err)
	}
	if pdfPath == "" {
		return "", ErrNotFound
	}
	return pdfPath, nil
}

// List returns all stored documents, newest first.
func (s *Store) List() ([]DocumentInfo, error) {
	rows, err := s.db.Query(`SELECT doc_id, filename, document_type, overall_confidence, created_at, pdf_path
		FROM documents ORDER BY created_at DESC, doc_id`)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	defer rows.Close()

	var infos []DocumentInfo
	for rows.Next() {
		var info DocumentInfo
		var pdfPath string
		if err := rows.Scan(&info.DocID, &info.Filename, &info.DocumentType,
			&info.OverallConfidence, &info.CreatedAt, &pdfPath); err != nil {
			return nil, fmt.Errorf("error scanning document row: %w", err)
		}
		info.HasPDF = pdfPath != ""
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return infos, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
