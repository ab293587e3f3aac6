package services

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/statafric/consultation/internal/models"
)

type stubSubmissionStore struct {
	saved       []*models.Submission
	existing    map[string]bool
	saveErr     error
	existsErr   error
	existsCalls int
}

func newStubSubmissionStore() *stubSubmissionStore {
	return &stubSubmissionStore{existing: map[string]bool{}}
}

func (s *stubSubmissionStore) SaveSubmission(sub *models.Submission) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, sub)
	return nil
}

func (s *stubSubmissionStore) EmailExists(email string) (bool, error) {
	s.existsCalls++
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.existing[email], nil
}

func newTestSubmissionService(store SubmissionStore) *SubmissionService {
	s := NewSubmissionService(store)
	s.now = func() time.Time { return time.Date(2026, 4, 15, 9, 30, 0, 0, time.UTC) }
	s.idGenerator = func() string { return "sub-0001" }
	return s
}

func TestSubmitStampsAndStores(t *testing.T) {
	store := newStubSubmissionStore()
	s := newTestSubmissionService(store)

	resp := completeResponses()
	resp["email"] = "  Jane@Example.ORG "
	res, err := s.Submit("en", resp)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.SubmissionID != "sub-0001" || res.SubmittedAtUTC != "2026-04-15T09:30:00Z" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected 1 row, got %d", len(store.saved))
	}
	row := store.saved[0]
	if row.Email != "jane@example.org" {
		t.Fatalf("email not normalized: %q", row.Email)
	}
	if row.Lang != "en" {
		t.Fatalf("lang not recorded: %q", row.Lang)
	}

	var payload models.ResponseMap
	if err := json.Unmarshal([]byte(row.PayloadJSON), &payload); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if payload.Str("submission_id") != "sub-0001" {
		t.Fatal("submission_id missing from payload")
	}
	if PayloadScoringVersion(payload) != ScoringVersion {
		t.Fatalf("scoring_version missing, got %v", payload["scoring_version"])
	}
	// The caller's map is untouched.
	if _, ok := resp["submission_id"]; ok {
		t.Fatal("input map must not be mutated")
	}
}

func TestSubmitBlockedByValidation(t *testing.T) {
	store := newStubSubmissionStore()
	s := newTestSubmissionService(store)
	_, err := s.Submit("en", models.ResponseMap{})
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorInvalid {
		t.Fatalf("expected invalid, got %v", err)
	}
	if len(store.saved) != 0 || store.existsCalls != 0 {
		t.Fatal("invalid submission must not reach the store")
	}
}

func TestSubmitDuplicateEmail(t *testing.T) {
	store := newStubSubmissionStore()
	store.existing["jane@example.org"] = true
	s := newTestSubmissionService(store)
	_, err := s.Submit("en", completeResponses())
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSubmitExistenceCheckFailureIsNotFatal(t *testing.T) {
	store := newStubSubmissionStore()
	store.existsErr = errors.New("db locked")
	s := newTestSubmissionService(store)
	if _, err := s.Submit("en", completeResponses()); err != nil {
		t.Fatalf("failing precheck must not block: %v", err)
	}
	if len(store.saved) != 1 {
		t.Fatal("submission not stored")
	}
}

func TestSubmitStoreFailureReturnsBackup(t *testing.T) {
	store := newStubSubmissionStore()
	store.saveErr = errors.New("disk full")
	s := newTestSubmissionService(store)
	res, err := s.Submit("en", completeResponses())
	if err == nil {
		t.Fatal("expected store error")
	}
	if _, ok := AsServiceError(err); ok {
		t.Fatalf("store failure is not a service error: %v", err)
	}
	if res == nil || res.Payload.Str("submission_id") != "sub-0001" {
		t.Fatalf("stamped payload must come back as backup, got %+v", res)
	}
	if !strings.Contains(res.Payload.Str("email"), "@") {
		t.Fatal("payload incomplete")
	}
}
