// Package normalisers converts hand-written documents in external formats
// into docsmith section content.
package normalisers
