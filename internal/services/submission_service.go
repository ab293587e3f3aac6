package services

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/statafric/consultation/internal/models"
	"github.com/statafric/consultation/internal/utils"
)

type SubmissionStore interface {
	SaveSubmission(sub *models.Submission) error
	EmailExists(email string) (bool, error)
}

type SubmissionService struct {
	store       SubmissionStore
	now         func() time.Time
	idGenerator func() string
}

func NewSubmissionService(store SubmissionStore) *SubmissionService {
	return &SubmissionService{
		store:       store,
		now:         func() time.Time { return time.Now().UTC() },
		idGenerator: uuid.NewString,
	}
}

// EmailExists is the pre-submit duplicate check. A store failure here does
// not block the respondent; duplicates are still rejected at save time by
// the unique index.
func (s *SubmissionService) EmailExists(email string) (bool, error) {
	return s.store.EmailExists(email)
}

// SubmitResult reports a stored submission. On storage failure Submit also
// hands back the stamped payload so the caller can serve it as a JSON backup
// and the respondent loses nothing.
type SubmitResult struct {
	SubmissionID   string             `json:"submission_id"`
	SubmittedAtUTC string             `json:"submitted_at_utc"`
	Payload        models.ResponseMap `json:"payload"`
}

// Submit validates the full questionnaire, rejects duplicate emails, stamps
// identity and scoring version, and persists the payload as one JSON blob.
func (s *SubmissionService) Submit(lang string, resp models.ResponseMap) (*SubmitResult, error) {
	if errs := ValidateAll(lang, resp); len(errs) > 0 {
		return nil, NewInvalidError(utils.T(lang, "submit.blocked_errors") + " " + strings.Join(errs, " "))
	}
	email := strings.ToLower(strings.TrimSpace(resp.Str("email")))

	exists, err := s.store.EmailExists(email)
	if err == nil && exists {
		return nil, NewConflictError(utils.T(lang, "submit.duplicate_email"))
	}
	// A failing existence check is not fatal; the unique index still guards
	// the write below.

	payload := resp.Clone()
	id := s.idGenerator()
	submittedAt := s.now().Format(time.RFC3339)
	payload["submission_id"] = id
	payload["submitted_at_utc"] = submittedAt
	payload["scoring_version"] = ScoringVersion

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, NewInvalidError(err.Error())
	}
	sub := &models.Submission{
		SubmissionID:   id,
		SubmittedAtUTC: submittedAt,
		Lang:           lang,
		Email:          email,
		PayloadJSON:    string(raw),
	}
	result := &SubmitResult{SubmissionID: id, SubmittedAtUTC: submittedAt, Payload: payload}
	if err := s.store.SaveSubmission(sub); err != nil {
		// Surface the stamped payload alongside the error: the handler turns
		// it into a downloadable JSON backup.
		return result, err
	}
	return result, nil
}
