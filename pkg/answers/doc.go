// Package answers holds the answer state of one form-fill session. State is
// immutable: every update returns a new State and leaves the receiver as it
// was, so callers can keep the previous value for undo or retry.
package answers
