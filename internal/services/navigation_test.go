package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/statafric/consultation/internal/models"
)

func TestStepsLocalized(t *testing.T) {
	fr := Steps("fr")
	en := Steps("en")
	assert.Len(t, fr, len(StepKeys))
	for i, s := range fr {
		assert.Equal(t, StepKeys[i], s.Key)
		assert.NotEmpty(t, s.Title)
	}
	assert.NotEqual(t, fr[1].Title, en[1].Title)
}

func TestStepIndex(t *testing.T) {
	assert.Equal(t, 0, StepIndex("R1"))
	assert.Equal(t, len(StepKeys)-1, StepIndex("SEND"))
	assert.Equal(t, -1, StepIndex("R99"))
}

func TestCanAdvance(t *testing.T) {
	ok, errs := CanAdvance("R1", "en", models.ResponseMap{})
	assert.True(t, ok)
	assert.Empty(t, errs)

	ok, errs = CanAdvance("R2", "en", models.ResponseMap{})
	assert.False(t, ok)
	assert.NotEmpty(t, errs)

	ok, _ = CanAdvance("R2", "en", completeResponses())
	assert.True(t, ok)
}
