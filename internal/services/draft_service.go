package services

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/statafric/consultation/internal/models"
)

// AutosaveInterval is the per-draft write throttle. Forced saves (explicit
// navigation, manual save) bypass it.
const AutosaveInterval = 2 * time.Second

type DraftStore interface {
	SaveDraft(d *models.Draft) error
	LoadDraft(rid string) (*models.Draft, error)
	DeleteDraft(rid string) error
}

type DraftService struct {
	store       DraftStore
	now         func() time.Time
	idGenerator func() string

	mu       sync.Mutex
	lastSave map[string]time.Time
}

func NewDraftService(store DraftStore) *DraftService {
	return &DraftService{
		store:       store,
		now:         func() time.Time { return time.Now().UTC() },
		idGenerator: uuid.NewString,
		lastSave:    map[string]time.Time{},
	}
}

// EnsureDraftID returns rid unchanged when already set. Otherwise it mints a
// fresh id once an email is present in the responses; before that, drafts
// have no identity and nothing is persisted.
func (s *DraftService) EnsureDraftID(rid string, resp models.ResponseMap) string {
	if rid != "" {
		return rid
	}
	if strings.TrimSpace(resp.Str("email")) == "" {
		return ""
	}
	return s.idGenerator()
}

type AutosaveResult struct {
	RID          string `json:"rid,omitempty"`
	Saved        bool   `json:"saved"`
	UpdatedAtUTC string `json:"updated_at_utc,omitempty"`
}

// Autosave upserts {responses, nav_index, lang} keyed by rid, minting the id
// if needed. Writes are rate limited to one per AutosaveInterval per draft
// unless force is set. A skipped save is not an error.
func (s *DraftService) Autosave(rid, lang string, navIndex int, resp models.ResponseMap, force bool) (*AutosaveResult, error) {
	rid = s.EnsureDraftID(rid, resp)
	if rid == "" {
		return &AutosaveResult{Saved: false}, nil
	}

	now := s.now()
	s.mu.Lock()
	if last, ok := s.lastSave[rid]; ok && !force && now.Sub(last) < AutosaveInterval {
		s.mu.Unlock()
		return &AutosaveResult{RID: rid, Saved: false}, nil
	}
	s.lastSave[rid] = now
	s.mu.Unlock()

	payload, err := json.Marshal(models.DraftPayload{Responses: resp, NavIndex: navIndex, Lang: lang})
	if err != nil {
		return nil, NewInvalidError(err.Error())
	}
	d := &models.Draft{
		DraftID:      rid,
		UpdatedAtUTC: now.Format(time.RFC3339),
		Email:        resp.Str("email"),
		PayloadJSON:  string(payload),
	}
	if err := s.store.SaveDraft(d); err != nil {
		return nil, err
	}
	return &AutosaveResult{RID: rid, Saved: true, UpdatedAtUTC: d.UpdatedAtUTC}, nil
}

// Restore loads the draft for rid. It only applies when the caller's session
// is still empty and not in admin mode, so in-progress answers are never
// clobbered; otherwise it is a no-op returning nil.
func (s *DraftService) Restore(rid string, sessionEmpty, adminMode bool) (*models.DraftPayload, error) {
	if rid == "" {
		return nil, NewInvalidError("rid required")
	}
	if !sessionEmpty || adminMode {
		return nil, nil
	}
	d, err := s.store.LoadDraft(rid)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, NewNotFoundError("draft not found")
	}
	var payload models.DraftPayload
	if err := json.Unmarshal([]byte(d.PayloadJSON), &payload); err != nil {
		return nil, NewInvalidError("draft payload unreadable")
	}
	if payload.Responses == nil {
		payload.Responses = models.ResponseMap{}
	}
	return &payload, nil
}

// Delete removes the draft row. Exposed on the API although the regular
// questionnaire flow never calls it.
func (s *DraftService) Delete(rid string) error {
	if rid == "" {
		return NewInvalidError("rid required")
	}
	return s.store.DeleteDraft(rid)
}
