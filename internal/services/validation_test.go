package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/statafric/consultation/internal/models"
)

// completeResponses is a questionnaire that passes every rubric validator.
func completeResponses() models.ResponseMap {
	scoring := map[string]any{}
	selected := map[string]any{}
	for i, stat := range []string{"D01S01", "D02S01", "D03S01", "D04S01", "D05S01"} {
		domain := []string{"D01", "D02", "D03", "D04", "D05"}[i]
		selected[domain] = []any{stat}
		scoring[stat] = map[string]any{"demand": 2, "availability": 2, "feasibility": 2}
	}
	gender := map[string]any{}
	for canon := range GenderItems {
		gender[canon] = "YES"
	}
	capacity := map[string]any{}
	for canon := range CapacityItems {
		capacity[canon] = "MED"
	}
	return models.ResponseMap{
		"organisation":           "Institut National de la Statistique",
		"pays":                   "SEN",
		"type_acteur":            "NSO",
		"fonction":               "Directrice des statistiques sociales",
		"email":                  "jane@example.org",
		"scope":                  "National",
		"snds_status":            "YES",
		"preselected_domains":    []any{"D01", "D02", "D03", "D04", "D05"},
		"top5_domains":           []any{"D01", "D02", "D03", "D04", "D05"},
		"selected_by_domain":     selected,
		"scoring":                scoring,
		"gender_table":           gender,
		"gender_prio_1":          "ECO",
		"capacity_table":         capacity,
		"quality_expectations":   []any{"Timeliness"},
		"dissemination_channels": []any{"Web portal"},
		"data_sources":           []any{"Census", "Household surveys"},
		"consulted_colleagues":   "YES",
	}
}

func TestValidateAllPassesCompleteResponse(t *testing.T) {
	errs := ValidateAll("en", completeResponses())
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateR2(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(models.ResponseMap)
		nErr   int
	}{
		{"missing organisation", func(r models.ResponseMap) { delete(r, "organisation") }, 1},
		{"short organisation", func(r models.ResponseMap) { r["organisation"] = "INS" }, 1},
		{"missing country", func(r models.ResponseMap) { delete(r, "pays") }, 1},
		{"other country without detail", func(r models.ResponseMap) { r["pays"] = "Autre" }, 1},
		{"other country with detail", func(r models.ResponseMap) { r["pays"] = "Autre"; r["pays_autre"] = "Comoros" }, 0},
		{"missing actor type", func(r models.ResponseMap) { delete(r, "type_acteur") }, 1},
		{"other function without detail", func(r models.ResponseMap) { r["fonction"] = "Other" }, 1},
		{"bad email", func(r models.ResponseMap) { r["email"] = "not-an-email" }, 1},
		{"email with spaces", func(r models.ResponseMap) { r["email"] = "a b@c.org" }, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := completeResponses()
			tc.mutate(resp)
			assert.Len(t, ValidateR2("en", resp), tc.nErr)
		})
	}
}

func TestValidateR4(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(models.ResponseMap)
		nErr   int
	}{
		{"too few preselected", func(r models.ResponseMap) { r["preselected_domains"] = []any{"D01", "D02"} }, 2}, // count + subset
		{"duplicate preselected", func(r models.ResponseMap) {
			r["preselected_domains"] = []any{"D01", "D01", "D02", "D03", "D04", "D05"}
		}, 1},
		{"top5 wrong size", func(r models.ResponseMap) { r["top5_domains"] = []any{"D01", "D02"} }, 1},
		{"top5 duplicate", func(r models.ResponseMap) { r["top5_domains"] = []any{"D01", "D01", "D02", "D03", "D04"} }, 1},
		{"top5 outside preselection", func(r models.ResponseMap) { r["top5_domains"] = []any{"D01", "D02", "D03", "D04", "D99"} }, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := completeResponses()
			tc.mutate(resp)
			assert.Len(t, ValidateR4("en", resp), tc.nErr)
		})
	}
}

func TestValidateR5ScoreCompleteness(t *testing.T) {
	resp := completeResponses()
	scoring := resp["scoring"].(map[string]any)
	delete(scoring["D03S01"].(map[string]any), "feasibility")
	errs := ValidateR5("en", resp)
	assert.Len(t, errs, 1)
}

func TestValidateR5AcceptsLegacyGapKey(t *testing.T) {
	resp := completeResponses()
	scoring := resp["scoring"].(map[string]any)
	entry := scoring["D01S01"].(map[string]any)
	delete(entry, "availability")
	entry["gap"] = 1
	if errs := ValidateR5("en", resp); len(errs) != 0 {
		t.Fatalf("gap key should satisfy availability, got %v", errs)
	}
}

func TestValidateR5ZeroScoreIsSet(t *testing.T) {
	resp := completeResponses()
	scoring := resp["scoring"].(map[string]any)
	scoring["D01S01"].(map[string]any)["demand"] = 0
	if errs := ValidateR5("en", resp); len(errs) != 0 {
		t.Fatalf("an explicit 0 is a valid score, got %v", errs)
	}
}

func TestValidateR5CrossDomainDuplicate(t *testing.T) {
	resp := completeResponses()
	selected := resp["selected_by_domain"].(map[string]any)
	selected["D02"] = []any{"D01S01"}
	resp["scoring"].(map[string]any)["D01S01"] = map[string]any{"demand": 1, "availability": 1, "feasibility": 1}
	errs := ValidateR5("en", resp)
	assert.Len(t, errs, 1)
}

func TestValidateR6(t *testing.T) {
	t.Run("missing row", func(t *testing.T) {
		resp := completeResponses()
		delete(resp["gender_table"].(map[string]any), "gbv")
		assert.Len(t, ValidateR6("en", resp), 1)
	})
	t.Run("spec without detail", func(t *testing.T) {
		resp := completeResponses()
		resp["gender_table"].(map[string]any)["disability"] = "SPEC"
		assert.Len(t, ValidateR6("en", resp), 1)
	})
	t.Run("spec with detail", func(t *testing.T) {
		resp := completeResponses()
		resp["gender_table"].(map[string]any)["disability"] = "SPEC"
		resp["gender_table_spec"] = map[string]any{"disability": "Washington Group short set"}
		assert.Empty(t, ValidateR6("en", resp))
	})
	t.Run("legacy label keys accepted", func(t *testing.T) {
		resp := completeResponses()
		table := map[string]any{}
		for _, labels := range GenderItems {
			table[labels[0]] = "NO"
		}
		resp["gender_table"] = table
		assert.Empty(t, ValidateR6("fr", resp))
	})
}

func TestValidateR7(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(models.ResponseMap)
		nErr   int
	}{
		{"rank1 missing", func(r models.ResponseMap) { delete(r, "gender_prio_1") }, 1},
		{"duplicate ranks", func(r models.ResponseMap) { r["gender_prio_2"] = "ECO" }, 1},
		{"rank3 without rank2", func(r models.ResponseMap) { r["gender_prio_3"] = "GBV" }, 1},
		{"unknown code", func(r models.ResponseMap) { r["gender_prio_2"] = "HEALTH" }, 1},
		{"other without detail", func(r models.ResponseMap) { r["gender_prio_1"] = "OTHER" }, 1},
		{"other with detail", func(r models.ResponseMap) {
			r["gender_prio_1"] = "OTHER"
			r["gender_prio_other"] = "Time use"
		}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := completeResponses()
			tc.mutate(resp)
			assert.Len(t, ValidateR7("en", resp), tc.nErr)
		})
	}
}

func TestValidatePickRubrics(t *testing.T) {
	resp := completeResponses()
	resp["data_sources"] = []any{"Census"}
	assert.Len(t, ValidateR11("en", resp), 1)

	resp = completeResponses()
	resp["quality_expectations"] = []any{"A", "B", "C", "D"}
	assert.Len(t, ValidateR9("en", resp), 1)

	resp = completeResponses()
	resp["dissemination_channels"] = []any{"Other"}
	assert.Len(t, ValidateR10("en", resp), 1)

	resp = completeResponses()
	resp["consulted_colleagues"] = "maybe"
	assert.Len(t, ValidateR12("en", resp), 1)
}

func TestValidateSection(t *testing.T) {
	resp := completeResponses()

	for _, section := range []string{"R1", "SEND"} {
		errs, err := ValidateSection(section, "en", models.ResponseMap{})
		if err != nil || len(errs) != 0 {
			t.Fatalf("%s must not validate, got %v / %v", section, errs, err)
		}
	}

	errs, err := ValidateSection("ALL", "en", resp)
	if err != nil {
		t.Fatalf("ALL: %v", err)
	}
	assert.Empty(t, errs)

	if _, err := ValidateSection("R99", "en", resp); err == nil {
		t.Fatal("unknown section must error")
	}

	// Case and whitespace tolerant.
	if _, err := ValidateSection(" r5 ", "en", resp); err != nil {
		t.Fatalf("lowercase section: %v", err)
	}
}

func TestValidationMessagesLocalized(t *testing.T) {
	resp := models.ResponseMap{}
	fr := ValidateR2("fr", resp)
	en := ValidateR2("en", resp)
	if len(fr) == 0 || len(en) == 0 {
		t.Fatal("expected errors for an empty response")
	}
	assert.NotEqual(t, fr[0], en[0])
}
