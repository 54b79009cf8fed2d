// Package mcp provides an MCP (Model Context Protocol) server adapter for docsmith.
// It lets AI assistants validate product ideas, generate documents, analyse
// change impact and search indexed documents.
package mcp

import "errors"

// ErrMissingValidator is returned when the validator is not provided.
var ErrMissingValidator = errors.New("mcp: validator is required")

// errNotConfigured is returned by tools whose port was not provided.
var errNotConfigured = errors.New("mcp: service not configured")
