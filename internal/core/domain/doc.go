// Package domain defines the core business entities for docsmith.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A product document with ordered section content
//   - Template: The section schema governing a document kind
//   - ValidationResult: Completeness of free-text user input
//   - ConversationState: Per-session agent history
//   - ImpactAnalysis: Which linked documents a change affects
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
