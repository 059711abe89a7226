package submission

import (
	"context"
	"errors"
	"time"
)

// Receipt acknowledges a stored submission.
type Receipt struct {
	ID             string    `json:"id"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// Submitter hands a payload to the persistence collaborator.
type Submitter interface {
	Submit(ctx context.Context, payload Payload) (Receipt, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, payload Payload) (Receipt, error)

func (fn SubmitterFunc) Submit(ctx context.Context, payload Payload) (Receipt, error) {
	return fn(ctx, payload)
}

// Persist calls s and wraps any failure that is not already a
// *PersistenceError, so callers can tell it apart from validation failures.
func Persist(ctx context.Context, s Submitter, payload Payload) (Receipt, error) {
	if s == nil {
		return Receipt{}, &PersistenceError{Err: errors.New("no submitter configured")}
	}
	receipt, err := s.Submit(ctx, payload)
	if err == nil {
		return receipt, nil
	}
	var persistErr *PersistenceError
	if errors.As(err, &persistErr) {
		return Receipt{}, err
	}
	return Receipt{}, &PersistenceError{Err: err}
}
