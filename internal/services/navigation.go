package services

import (
	"github.com/statafric/consultation/internal/models"
	"github.com/statafric/consultation/internal/utils"
)

// StepKeys is the linear questionnaire sequence. Backward navigation is
// always allowed; forward navigation is gated by the step's validator.
var StepKeys = []string{"R1", "R2", "R3", "R4", "R5", "R6", "R7", "R8", "R9", "R10", "R11", "R12", "SEND"}

type Step struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// Steps returns the step sequence with titles localized for lang.
func Steps(lang string) []Step {
	out := make([]Step, 0, len(StepKeys))
	for _, k := range StepKeys {
		out = append(out, Step{Key: k, Title: utils.T(lang, "step."+k)})
	}
	return out
}

// StepIndex returns the position of key in the sequence, -1 when unknown.
func StepIndex(key string) int {
	for i, k := range StepKeys {
		if k == key {
			return i
		}
	}
	return -1
}

// CanAdvance reports whether forward navigation from step key is allowed,
// together with the blocking errors when it is not.
func CanAdvance(key, lang string, resp models.ResponseMap) (bool, []string) {
	errs, err := ValidateSection(key, lang, resp)
	if err != nil {
		return false, nil
	}
	return len(errs) == 0, errs
}
