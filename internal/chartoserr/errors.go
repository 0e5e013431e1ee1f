// Package chartoserr defines the tagged error kinds chartos components
// return, so the HTTP facade can map them to the right status code without
// re-deriving what went wrong from a generic error string.
package chartoserr

import "fmt"

// SchemaError is startup-fatal: the layer configuration document failed to
// parse or violated one of the invariants in the schema model.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: %s", e.Reason)
}

// ValidationError is a 4xx recovered at the HTTP boundary. Details and
// Choices populate the `{details, choices}` response body spec.md requires.
type ValidationError struct {
	Details string
	Choices []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Details)
}

// NotFoundError is returned when a tile route names a layer or view that
// does not exist in the Config.
type NotFoundError struct {
	Kind string // "layer" or "view"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %q", e.Kind, e.Name)
}

// StorageError wraps a failure talking to PostGIS. Always a 5xx.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// CacheError wraps a failure talking to the key/value store. A read-path
// CacheError is a 5xx only once SQL has also failed to serve the tile; a
// write-path CacheError after EXECUTE is a 5xx reporting partial success
// (the write landed, the cache may be stale until natural expiry).
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error during %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }
