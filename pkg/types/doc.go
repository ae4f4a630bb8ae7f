// Package types defines the query tree and error types shared by the
// gojunqi packages.
//
// This package contains type definitions for:
//   - Node: tagged expression nodes produced by parser front-ends
//   - Step: pipeline stages (filter, select, sort, group, aggregate, ...)
//   - Null: explicit null, distinct from an absent value
//   - Error types: Structured errors with codes
package types
