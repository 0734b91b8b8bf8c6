// Package sanitizer normalizes free-text input before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result as once.
// They never fail; input that normalizes to nothing comes back as "".
package sanitizer
