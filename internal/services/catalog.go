package services

// Fixed answer catalogs. Codes are what gets persisted; labels live in the
// reference tables and the frontend dictionaries.

var ActorTypes = []string{"NSO", "Ministry", "REC", "AU", "CivilSoc", "DevPartner", "Academia", "Other"}

var Scopes = []string{"National", "Regional", "Continental", "Global", "Other"}

var SNDSStatuses = []string{"YES", "NO", "PREP", "IMPL_PREP", "NSP"}

// GenderItems maps canonical row keys of the R6 table to their legacy
// FR/EN labels (older payloads keyed rows by display label).
var GenderItems = map[string][]string{
	"sex":            {"Sexe", "Sex"},
	"age":            {"Âge", "Age"},
	"urban_rural":    {"Milieu urbain/rural", "Urban/rural"},
	"disability":     {"Situation de handicap", "Disability"},
	"wealth_quintile": {"Quintile de richesse", "Wealth quintile"},
	"gbv":            {"Violences basées sur le genre", "Gender-based violence"},
	"unpaid_domestic": {"Travail domestique non rémunéré", "Unpaid domestic work"},
}

var GenderCodes = []string{"YES", "NO", "SPEC", "UK"}

// CapacityItems maps canonical row keys of the R8 table to legacy labels.
var CapacityItems = map[string][]string{
	"skills_hr":                  {"Compétences et ressources humaines", "Skills and human resources"},
	"access_admin_data":          {"Accès aux données administratives", "Access to administrative data"},
	"funding":                    {"Financement", "Funding"},
	"digital_tools":              {"Outils numériques", "Digital tools"},
	"legal_framework":            {"Cadre juridique", "Legal framework"},
	"institutional_coordination": {"Coordination institutionnelle", "Institutional coordination"},
}

var CapacityCodes = []string{"HIGH", "MED", "LOW", "UK"}

var GenderPriorityCodes = []string{"ECO", "SERV", "GBV", "PART_DEC", "CARE", "OTHER"}

// otherValues are the cross-language spellings of an "Other" style answer.
var otherValues = map[string]struct{}{
	"Autre":  {},
	"Autres": {},
	"Other":  {},
	"Outro":  {},
	"Outros": {},
	"OTHER":  {},
	"أخرى":   {},
}

// IsOtherValue reports whether v is an "Other"-style answer in any of the
// questionnaire languages.
func IsOtherValue(v string) bool {
	_, ok := otherValues[v]
	return ok
}

// CanonicalGenderItem resolves a gender-table row key, accepting either the
// canonical key or a legacy display label. Returns "" when unknown.
func CanonicalGenderItem(key string) string {
	return canonicalItem(GenderItems, key)
}

// CanonicalCapacityItem resolves a capacity-table row key the same way.
func CanonicalCapacityItem(key string) string {
	return canonicalItem(CapacityItems, key)
}

func canonicalItem(items map[string][]string, key string) string {
	if _, ok := items[key]; ok {
		return key
	}
	for canon, labels := range items {
		for _, l := range labels {
			if l == key {
				return canon
			}
		}
	}
	return ""
}

func inList(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}
