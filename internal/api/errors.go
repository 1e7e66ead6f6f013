package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps form field names to messages. Local validation and
// server-returned field errors share this one structure, so forms render both
// the same way. The "general" key carries errors not tied to a field.
type FieldErrors map[string]string

// GeneralField is the pseudo-field for errors without a field of their own.
const GeneralField = "general"

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

// RemoteError is a network failure, a non-2xx status without field errors, or
// an undecodable response. Callers surface it as a single generic message.
type RemoteError struct {
	Op         string // e.g. "list tasks"
	StatusCode int    // 0 when the request never completed
	Message    string // server-provided message, if any
	Err        error  // underlying transport or decode error
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: server returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// AsFieldErrors extracts field-level errors from err, if it carries any.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
