package api

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/statafric/consultation/internal/models"
)

// memoryStore backs the router without a database file. It mirrors the
// SQLite store's behavior, including the unique-email constraint on
// submissions.
type memoryStore struct {
	mu          sync.RWMutex
	submissions map[string]*models.Submission
	drafts      map[string]*models.Draft
	config      map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		submissions: map[string]*models.Submission{},
		drafts:      map[string]*models.Draft{},
		config:      map[string]string{},
	}
}

func (s *memoryStore) SaveSubmission(sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(sub.Email))
	for id, existing := range s.submissions {
		if id != sub.SubmissionID && existing.Email == email {
			return errors.New("UNIQUE constraint failed: submissions.email")
		}
	}
	cp := *sub
	cp.Email = email
	s.submissions[sub.SubmissionID] = &cp
	return nil
}

func (s *memoryStore) EmailExists(email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, sub := range s.submissions {
		if sub.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) ListSubmissions(limit int) ([]*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 20000
	}
	out := make([]*models.Submission, 0, len(s.submissions))
	for _, sub := range s.submissions {
		cp := *sub
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAtUTC != out[j].SubmittedAtUTC {
			return out[i].SubmittedAtUTC > out[j].SubmittedAtUTC
		}
		return out[i].SubmissionID < out[j].SubmissionID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStore) SaveDraft(d *models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.drafts[d.DraftID] = &cp
	return nil
}

func (s *memoryStore) LoadDraft(rid string) (*models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[rid]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (s *memoryStore) DeleteDraft(rid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, rid)
	return nil
}

func (s *memoryStore) GetConfig(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config[key], nil
}

func (s *memoryStore) SetConfig(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config[key] = value
	return nil
}

func (s *memoryStore) DeleteConfig(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.config, key)
	return nil
}

func (s *memoryStore) DatabaseBytes() ([]byte, error) {
	return nil, errors.New("memory store has no database file")
}
