// Package sanitizer normalizes free text before validation and storage.
//
// All functions are idempotent: applying them twice yields the same result.
package sanitizer
