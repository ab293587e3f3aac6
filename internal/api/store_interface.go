package api

import "github.com/statafric/consultation/internal/models"

// Store is the persistence surface the HTTP layer wires into the services.
// Both the SQLite store and the in-memory store satisfy it.
type Store interface {
	SaveSubmission(sub *models.Submission) error
	EmailExists(email string) (bool, error)
	ListSubmissions(limit int) ([]*models.Submission, error)

	SaveDraft(d *models.Draft) error
	LoadDraft(rid string) (*models.Draft, error)
	DeleteDraft(rid string) error

	GetConfig(key string) (string, error)
	SetConfig(key, value string) error
	DeleteConfig(key string) error

	DatabaseBytes() ([]byte, error)
}

var _ Store = (*memoryStore)(nil)
