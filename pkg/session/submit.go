package session

import (
	"context"

	"github.com/goliatone/go-inspectform/pkg/submission"
)

// Submit validates mandatory items, assembles the payload and hands it to
// the configured Submitter. It is only allowed from the last section and
// rejects re-entry while a call is in flight. On success the session is
// closed and its state discarded; on failure the state is kept so the user
// can retry.
func (s *Session) Submit(ctx context.Context) (submission.Receipt, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return submission.Receipt{}, ErrClosed
	case s.submitting:
		s.mu.Unlock()
		return submission.Receipt{}, ErrSubmitInProgress
	case !s.pages.CanSubmit():
		s.mu.Unlock()
		return submission.Receipt{}, ErrNotLastSection
	}

	s.syncTimers()
	if err := submission.ValidateMandatory(s.form, s.state); err != nil {
		s.mu.Unlock()
		return submission.Receipt{}, err
	}
	payload := submission.Assemble(s.form, s.state, s.alerts, s.request())
	s.submitting = true
	s.mu.Unlock()

	receipt, err := submission.Persist(ctx, s.cfg.Submitter, payload)

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		s.mu.Unlock()
		s.opts.logger.Warn("submission failed", "session", s.id, "form", s.form.ID, "retryable", submission.IsRetryable(err), "err", err)
		return submission.Receipt{}, err
	}
	handles := s.discard()
	s.mu.Unlock()

	for _, h := range handles {
		h.clock.Close()
	}
	s.opts.logger.Info("session submitted", "session", s.id, "form", s.form.ID, "receipt", receipt.ID, "conforms", payload.Conforms)
	return receipt, nil
}
