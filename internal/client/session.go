package client

import (
	"context"
	"strings"
	"sync"

	apperrors "github.com/maisonhq/maison/internal/platform/errors"
	"github.com/maisonhq/maison/internal/progress"
	"github.com/maisonhq/maison/internal/timeline"
)

// Session holds one party's view of a transaction: the last record read
// from the server plus optimistic local writes. Writes apply locally first
// and the server's copy wins on the next successful read; a failed read
// never discards hydrated state.
type Session struct {
	client        *Client
	userID        string
	transactionID string
	role          progress.Role

	mu            sync.Mutex
	record        progress.Record
	hydrated      bool
	offerAccepted bool
	offerDocument bool
}

// NewSession creates a session for one party of a transaction.
func NewSession(client *Client, userID, transactionID string, role progress.Role) *Session {
	return &Session{
		client:        client,
		userID:        userID,
		transactionID: transactionID,
		role:          role,
	}
}

// Refresh fetches the server record. On success the server copy replaces
// local state; on failure the previous state stays usable.
func (s *Session) Refresh(ctx context.Context) error {
	record, err := s.client.GetProgress(ctx, s.userID, s.transactionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.record = record
	s.hydrated = true
	s.mu.Unlock()
	return nil
}

// Record returns the current view and whether it has ever been hydrated
// from the server.
func (s *Session) Record() (progress.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record, s.hydrated
}

// Submit applies the update locally, then pushes it to the server. A
// network failure keeps the optimistic state; the next successful Refresh
// reconciles it against the server's copy.
func (s *Session) Submit(ctx context.Context, update progress.Update) error {
	s.mu.Lock()
	s.record = update.Apply(s.record)
	s.mu.Unlock()

	record, err := s.client.UpdateProgress(ctx, s.userID, s.transactionID, update)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.record = record
	s.hydrated = true
	s.mu.Unlock()
	return nil
}

// Confirm records the caller's confirmation of a closing step, with the
// same optimistic semantics as Submit. Closing steps unlock sequentially:
// confirming a step whose predecessors are still open fails before any
// network call.
func (s *Session) Confirm(ctx context.Context, step string) error {
	update, err := progress.ConfirmUpdate(s.role, step)
	if err != nil {
		return err
	}
	if err := s.checkStepUnlocked(step); err != nil {
		return err
	}
	s.mu.Lock()
	s.record = update.Apply(s.record)
	s.mu.Unlock()

	record, err := s.client.ConfirmStep(ctx, s.userID, s.transactionID, step)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.record = record
	s.hydrated = true
	s.mu.Unlock()
	return nil
}

// checkStepUnlocked verifies the named step is clickable on the caller's own
// derived track.
func (s *Session) checkStepUnlocked(step string) error {
	buyer, seller := s.Timeline()
	track := buyer
	if s.role == progress.RoleSeller {
		track = seller
	}
	for i, candidate := range track {
		if candidate.Title != step {
			continue
		}
		if timeline.CanClick(track, i) {
			return nil
		}
		return apperrors.WithMetadata(
			apperrors.CodeStepNotUnlocked,
			"earlier steps must be completed first",
			map[string]string{"Step": step},
		)
	}
	return apperrors.WithMetadata(
		apperrors.CodeStepNotUnlocked,
		"step is not on the current timeline",
		map[string]string{"Step": step},
	)
}

// SetOfferAccepted records whether the transaction has an accepted offer.
func (s *Session) SetOfferAccepted(accepted bool) {
	s.mu.Lock()
	s.offerAccepted = accepted
	s.mu.Unlock()
}

// AttachOfferDocument marks the mortgage offer document as attached. The
// attachment itself stays local; only the derived step status changes.
func (s *Session) AttachOfferDocument(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return apperrors.New(apperrors.CodeOfferDocumentMissing, "an offer document is required")
	}
	s.mu.Lock()
	s.offerDocument = true
	s.mu.Unlock()
	return nil
}

// Timeline derives both tracks from the current local view.
func (s *Session) Timeline() (buyer, seller []timeline.Step) {
	s.mu.Lock()
	record := s.record
	input := timeline.Input{
		OfferAccepted:         s.offerAccepted,
		OfferDocumentAttached: s.offerDocument,
	}
	s.mu.Unlock()
	return timeline.DeriveTracks(record, input)
}

// Role returns the session's party role.
func (s *Session) Role() progress.Role {
	return s.role
}

// Forms returns the step-form submitter bound to this session's client and
// identifiers. Form submissions bypass the optimistic cache; call Refresh
// afterwards when the session view must reflect them immediately.
func (s *Session) Forms() *Forms {
	return NewForms(s.client, s.userID, s.transactionID)
}
