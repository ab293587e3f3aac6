package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/statafric/consultation/internal/models"
	"github.com/statafric/consultation/internal/utils"
)

// Validation limits. Storage does not enforce any of these; the validators
// are the single gate for navigation and submission.
const (
	OrgMinLen      = 12
	PreselMin      = 5
	PreselMax      = 10
	Top5Count      = 5
	StatsPerDomMin = 1
	StatsPerDomMax = 3
	StatsTotalMin  = 5
	StatsTotalMax  = 15
	QualityMin     = 1
	QualityMax     = 3
	ChannelsMin    = 1
	ChannelsMax    = 3
	SourcesMin     = 2
	SourcesMax     = 4
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether s matches the local@domain.tld pattern.
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// ValidateR2 checks respondent identification: organisation, country,
// stakeholder type, function, email.
func ValidateR2(lang string, resp models.ResponseMap) []string {
	var errs []string
	org := strings.TrimSpace(resp.Str("organisation"))
	if org == "" {
		errs = append(errs, utils.T(lang, "validate.org_required"))
	} else if len([]rune(org)) < OrgMinLen {
		errs = append(errs, fmt.Sprintf(utils.T(lang, "validate.org_short"), OrgMinLen))
	}
	pays := strings.TrimSpace(resp.Str("pays"))
	if pays == "" {
		errs = append(errs, utils.T(lang, "validate.country_required"))
	} else if IsOtherValue(pays) && strings.TrimSpace(resp.Str("pays_autre")) == "" {
		errs = append(errs, utils.T(lang, "validate.country_other"))
	}
	if strings.TrimSpace(resp.Str("type_acteur")) == "" {
		errs = append(errs, utils.T(lang, "validate.actor_required"))
	}
	fonction := strings.TrimSpace(resp.Str("fonction"))
	if fonction == "" {
		errs = append(errs, utils.T(lang, "validate.function_required"))
	} else if IsOtherValue(fonction) && strings.TrimSpace(resp.Str("fonction_autre")) == "" {
		errs = append(errs, utils.T(lang, "validate.function_other"))
	}
	if !ValidEmail(resp.Str("email")) {
		errs = append(errs, utils.T(lang, "validate.email_invalid"))
	}
	return errs
}

// ValidateR3 checks institutional scope and NSDS status.
func ValidateR3(lang string, resp models.ResponseMap) []string {
	var errs []string
	scope := strings.TrimSpace(resp.Str("scope"))
	if scope == "" {
		errs = append(errs, utils.T(lang, "validate.scope_required"))
	} else if IsOtherValue(scope) && strings.TrimSpace(resp.Str("scope_other")) == "" {
		errs = append(errs, utils.T(lang, "validate.scope_other"))
	}
	if strings.TrimSpace(resp.Str("snds_status")) == "" {
		errs = append(errs, utils.T(lang, "validate.snds_required"))
	}
	return errs
}

// ValidateR4 checks the domain preselection (5-10, unique) and the top 5
// (exactly 5, unique, drawn from the preselection).
func ValidateR4(lang string, resp models.ResponseMap) []string {
	var errs []string
	presel := resp.StrList("preselected_domains")
	if len(presel) < PreselMin || len(presel) > PreselMax {
		errs = append(errs, fmt.Sprintf(utils.T(lang, "validate.presel_count"), PreselMin, PreselMax, len(presel)))
	}
	if hasDuplicates(presel) {
		errs = append(errs, utils.T(lang, "validate.presel_dups"))
	}
	top5 := resp.StrList("top5_domains")
	if len(top5) != Top5Count {
		errs = append(errs, fmt.Sprintf(utils.T(lang, "validate.top5_count"), Top5Count, len(top5)))
	}
	if hasDuplicates(top5) {
		errs = append(errs, utils.T(lang, "validate.top5_dups"))
	}
	preselSet := toSet(presel)
	for _, d := range top5 {
		if _, ok := preselSet[d]; !ok {
			errs = append(errs, utils.T(lang, "validate.top5_subset"))
			break
		}
	}
	return errs
}

// ValidateR5 checks indicator selection (1-3 per top-5 domain, 5-15 total,
// no cross-domain duplicates) and score completeness (demand, availability
// or legacy gap, feasibility, each an integer in [0,3]).
func ValidateR5(lang string, resp models.ResponseMap) []string {
	var errs []string
	top5 := resp.StrList("top5_domains")
	selected := resp.ListMap("selected_by_domain")
	scoring := resp.ScoreMap("scoring")

	var flat []string
	for _, d := range top5 {
		stats := selected[d]
		if len(stats) < StatsPerDomMin || len(stats) > StatsPerDomMax {
			errs = append(errs, fmt.Sprintf(utils.T(lang, "validate.stats_per_domain"), d, len(stats)))
		}
		flat = append(flat, stats...)
	}
	if len(flat) < StatsTotalMin || len(flat) > StatsTotalMax {
		errs = append(errs, fmt.Sprintf(utils.T(lang, "validate.stats_total"), StatsTotalMin, StatsTotalMax, len(flat)))
	}
	seen := map[string]bool{}
	reported := map[string]bool{}
	for _, s := range flat {
		if seen[s] && !reported[s] {
			errs = append(errs, fmt.Sprintf(utils.T(lang, "validate.stats_dup"), s))
			reported[s] = true
		}
		seen[s] = true
	}
	for _, s := range flat {
		entry := scoring[s]
		if !HasScore(entry["demand"]) {
			errs = append(errs, fmt.Sprintf(utils.T(lang, "validate.score_missing"), "demand", s))
		}
		if raw, ok := AvailabilityRaw(entry); !ok || !HasScore(raw) {
			errs = append(errs, fmt.Sprintf(utils.T(lang, "validate.score_missing"), "availability", s))
		}
		if !HasScore(entry["feasibility"]) {
			errs = append(errs, fmt.Sprintf(utils.T(lang, "validate.score_missing"), "feasibility", s))
		}
	}
	return errs
}

// ValidateR6 checks the gender table: one valid code per canonical row, and
// a free-text detail wherever the answer is SPEC ("partially").
func ValidateR6(lang string, resp models.ResponseMap) []string {
	var errs []string
	table := canonicalTable(resp.StrMap("gender_table"), CanonicalGenderItem)
	specs := canonicalTable(resp.StrMap("gender_table_spec"), CanonicalGenderItem)
	complete := true
	for canon := range GenderItems {
		code := table[canon]
		if !inList(GenderCodes, code) {
			complete = false
			continue
		}
		if code == "SPEC" && strings.TrimSpace(specs[canon]) == "" {
			errs = append(errs, fmt.Sprintf(utils.T(lang, "validate.gender_spec"), canon))
		}
	}
	if !complete {
		errs = append([]string{utils.T(lang, "validate.gender_incomplete")}, errs...)
	}
	return errs
}

// ValidateR7 checks the gender priority ranking (rank 1 required, codes from
// the known list, ranks distinct, rank 3 requires rank 2, OTHER needs a
// free-text detail).
func ValidateR7(lang string, resp models.ResponseMap) []string {
	var errs []string
	p1 := strings.TrimSpace(resp.Str("gender_prio_1"))
	p2 := strings.TrimSpace(resp.Str("gender_prio_2"))
	p3 := strings.TrimSpace(resp.Str("gender_prio_3"))
	if p1 == "" {
		errs = append(errs, utils.T(lang, "validate.prio1_required"))
	}
	var set []string
	for _, p := range []string{p1, p2, p3} {
		if p != "" {
			set = append(set, p)
		}
	}
	for _, p := range set {
		if !inList(GenderPriorityCodes, p) {
			errs = append(errs, fmt.Sprintf(utils.T(lang, "validate.prio_unknown"), p))
		}
	}
	if hasDuplicates(set) {
		errs = append(errs, utils.T(lang, "validate.prio_dups"))
	}
	if p3 != "" && p2 == "" {
		errs = append(errs, utils.T(lang, "validate.prio3_requires2"))
	}
	for _, p := range set {
		if p == "OTHER" && strings.TrimSpace(resp.Str("gender_prio_other")) == "" {
			errs = append(errs, utils.T(lang, "validate.prio_other"))
			break
		}
	}
	return errs
}

// ValidateR8 checks the capacity table completeness.
func ValidateR8(lang string, resp models.ResponseMap) []string {
	table := canonicalTable(resp.StrMap("capacity_table"), CanonicalCapacityItem)
	for canon := range CapacityItems {
		if !inList(CapacityCodes, table[canon]) {
			return []string{utils.T(lang, "validate.capacity_incomplete")}
		}
	}
	return nil
}

// ValidateR9 checks quality expectations (1-3, Other needs detail).
func ValidateR9(lang string, resp models.ResponseMap) []string {
	return validatePicks(lang, resp, "quality_expectations", "quality_other",
		QualityMin, QualityMax, "validate.quality_count", "validate.quality_other")
}

// ValidateR10 checks dissemination channels (1-3, Other needs detail).
func ValidateR10(lang string, resp models.ResponseMap) []string {
	return validatePicks(lang, resp, "dissemination_channels", "dissemination_other",
		ChannelsMin, ChannelsMax, "validate.channels_count", "validate.channels_other")
}

// ValidateR11 checks data sources (2-4, Other needs detail).
func ValidateR11(lang string, resp models.ResponseMap) []string {
	return validatePicks(lang, resp, "data_sources", "data_sources_other",
		SourcesMin, SourcesMax, "validate.sources_count", "validate.sources_other")
}

// ValidateR12 checks the closing questions. Open questions stay optional.
func ValidateR12(lang string, resp models.ResponseMap) []string {
	cc := strings.TrimSpace(resp.Str("consulted_colleagues"))
	if cc != "YES" && cc != "NO" {
		return []string{utils.T(lang, "validate.consulted_required")}
	}
	return nil
}

// ValidateAll concatenates every rubric validator. R1 is informational and
// has no validator. An empty result is the sole gate for submission.
func ValidateAll(lang string, resp models.ResponseMap) []string {
	var errs []string
	for _, fn := range []func(string, models.ResponseMap) []string{
		ValidateR2, ValidateR3, ValidateR4, ValidateR5, ValidateR6,
		ValidateR7, ValidateR8, ValidateR9, ValidateR10, ValidateR11, ValidateR12,
	} {
		errs = append(errs, fn(lang, resp)...)
	}
	return errs
}

// ValidateSection dispatches by rubric key. "ALL" runs ValidateAll; R1 and
// SEND carry no validator of their own.
func ValidateSection(section, lang string, resp models.ResponseMap) ([]string, error) {
	switch strings.ToUpper(strings.TrimSpace(section)) {
	case "R1", "SEND":
		return nil, nil
	case "R2":
		return ValidateR2(lang, resp), nil
	case "R3":
		return ValidateR3(lang, resp), nil
	case "R4":
		return ValidateR4(lang, resp), nil
	case "R5":
		return ValidateR5(lang, resp), nil
	case "R6":
		return ValidateR6(lang, resp), nil
	case "R7":
		return ValidateR7(lang, resp), nil
	case "R8":
		return ValidateR8(lang, resp), nil
	case "R9":
		return ValidateR9(lang, resp), nil
	case "R10":
		return ValidateR10(lang, resp), nil
	case "R11":
		return ValidateR11(lang, resp), nil
	case "R12":
		return ValidateR12(lang, resp), nil
	case "ALL":
		return ValidateAll(lang, resp), nil
	}
	return nil, NewInvalidError("unknown section")
}

func validatePicks(lang string, resp models.ResponseMap, listKey, otherKey string, min, max int, countMsg, otherMsg string) []string {
	var errs []string
	picks := resp.StrList(listKey)
	if len(picks) < min || len(picks) > max {
		errs = append(errs, fmt.Sprintf(utils.T(lang, countMsg), min, max, len(picks)))
	}
	for _, p := range picks {
		if IsOtherValue(p) && strings.TrimSpace(resp.Str(otherKey)) == "" {
			errs = append(errs, utils.T(lang, otherMsg))
			break
		}
	}
	return errs
}

func canonicalTable(raw map[string]string, canonical func(string) string) map[string]string {
	out := map[string]string{}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if canon := canonical(k); canon != "" {
			if _, exists := out[canon]; !exists {
				out[canon] = raw[k]
			}
		}
	}
	return out
}

func hasDuplicates(list []string) bool {
	seen := map[string]struct{}{}
	for _, v := range list {
		if _, ok := seen[v]; ok {
			return true
		}
		seen[v] = struct{}{}
	}
	return false
}

func toSet(list []string) map[string]struct{} {
	out := make(map[string]struct{}, len(list))
	for _, v := range list {
		out[v] = struct{}{}
	}
	return out
}
