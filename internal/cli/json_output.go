// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - Machine-readable output for the --json flag.

package cli

import (
	"io"
	"time"

	"github.com/goccy/go-json"
)

// JSONResponse is the envelope every subcommand prints with --json.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data any `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is when the response was generated (RFC 3339, UTC)
	Timestamp string `json:"timestamp"`

	// Command is the subcommand that produced the response
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response to w, indented.
func (r *JSONResponse) Write(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// ImportData is the --json payload of import.
type ImportData struct {
	BatchID   string          `json:"batch_id"`
	Scanned   int             `json:"scanned"`
	Added     int             `json:"added"`
	Updated   int             `json:"updated"`
	Unchanged int             `json:"unchanged"`
	Failures  []ImportFailure `json:"failures,omitempty"`
}

// ImportFailure is one file import could not read fully.
type ImportFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// MergeData is the --json payload of merge.
type MergeData struct {
	Merged int         `json:"merged"`
	Pairs  []MergePair `json:"pairs,omitempty"`
}

// MergePair records one absorbed book.
type MergePair struct {
	Survivor uint64 `json:"survivor"`
	Absorbed uint64 `json:"absorbed"`
}

// ExportData is the --json payload of export to a file.
type ExportData struct {
	Path  string `json:"path"`
	Books int    `json:"books"`
}

// VersionData is the --json payload of version.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}
