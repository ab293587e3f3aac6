package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAvailability(t *testing.T) {
	cases := []struct {
		name    string
		raw     any
		version int
		want    int
	}{
		{"current version keeps value", 3, 3, 3},
		{"current version keeps one", 1, 3, 1},
		{"future version keeps value", 2, 4, 2},
		{"legacy gap 1 becomes 3", 1, 2, 3},
		{"legacy gap 2 stays 2", 2, 1, 2},
		{"legacy gap 3 becomes 1", 3, 0, 1},
		{"zero stays zero regardless", 0, 0, 0},
		{"unversioned payload inverts", 2, 0, 2},
		{"non-integer is zero", 1.5, 3, 0},
		{"string digits accepted", "3", 0, 1},
		{"garbage is zero", "high", 3, 0},
		{"nil is zero", nil, 3, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeAvailability(tc.raw, tc.version))
		})
	}
}

func TestToScore(t *testing.T) {
	assert.Equal(t, 2, ToScore(2))
	assert.Equal(t, 2, ToScore(int64(2)))
	assert.Equal(t, 2, ToScore(2.0))
	assert.Equal(t, 2, ToScore("2"))
	assert.Equal(t, 0, ToScore(2.5))
	assert.Equal(t, 0, ToScore(7))
	assert.Equal(t, 0, ToScore(-1))
	assert.Equal(t, 0, ToScore(nil))
}

func TestHasScore(t *testing.T) {
	assert.True(t, HasScore(0))
	assert.True(t, HasScore("0"))
	assert.True(t, HasScore(3.0))
	assert.False(t, HasScore(3.5))
	assert.False(t, HasScore(4))
	assert.False(t, HasScore(nil))
	assert.False(t, HasScore("yes"))
}

func TestPayloadScoringVersion(t *testing.T) {
	assert.Equal(t, 3, PayloadScoringVersion(map[string]any{"scoring_version": 3}))
	assert.Equal(t, 3, PayloadScoringVersion(map[string]any{"scoring_version": float64(3)}))
	// Payloads written before versioning default to 0, so inversion applies.
	assert.Equal(t, 0, PayloadScoringVersion(map[string]any{}))
	assert.Equal(t, 0, PayloadScoringVersion(map[string]any{"scoring_version": "3"}))
}

func TestAvailabilityRaw(t *testing.T) {
	v, ok := AvailabilityRaw(map[string]any{"availability": 2, "gap": 1})
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = AvailabilityRaw(map[string]any{"gap": 1})
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = AvailabilityRaw(map[string]any{})
	assert.False(t, ok)
}
