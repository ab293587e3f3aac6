package models

// ResponseMap holds one respondent's in-progress answers keyed by field name.
// Values are strings, string lists, or nested maps for table-shaped answers
// (gender_table, capacity_table, scoring, selected_by_domain).
type ResponseMap map[string]any

// Str returns the string value for key, or "" when absent or not a string.
func (r ResponseMap) Str(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// StrList returns the string-list value for key. JSON-decoded payloads carry
// lists as []any, so both shapes are accepted.
func (r ResponseMap) StrList(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// StrMap returns the map[string]string value for key, tolerating the
// map[string]any shape produced by encoding/json.
func (r ResponseMap) StrMap(key string) map[string]string {
	switch v := r[key].(type) {
	case map[string]string:
		return v
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, e := range v {
			if s, ok := e.(string); ok {
				out[k] = s
			}
		}
		return out
	}
	return nil
}

// ListMap returns the map[string][]string value for key (selected_by_domain).
func (r ResponseMap) ListMap(key string) map[string][]string {
	switch v := r[key].(type) {
	case map[string][]string:
		return v
	case map[string]any:
		out := make(map[string][]string, len(v))
		for k, e := range v {
			switch lv := e.(type) {
			case []string:
				out[k] = lv
			case []any:
				ls := make([]string, 0, len(lv))
				for _, item := range lv {
					if s, ok := item.(string); ok {
						ls = append(ls, s)
					}
				}
				out[k] = ls
			}
		}
		return out
	}
	return nil
}

// ScoreMap returns the scoring table: indicator code to raw criterion values.
func (r ResponseMap) ScoreMap(key string) map[string]map[string]any {
	switch v := r[key].(type) {
	case map[string]map[string]any:
		return v
	case map[string]any:
		out := make(map[string]map[string]any, len(v))
		for k, e := range v {
			if m, ok := e.(map[string]any); ok {
				out[k] = m
			}
		}
		return out
	}
	return nil
}

// Clone returns a shallow copy of the response map.
func (r ResponseMap) Clone() ResponseMap {
	out := make(ResponseMap, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Submission is a finalized questionnaire response. Immutable once stored.
type Submission struct {
	SubmissionID   string `json:"submission_id"`
	SubmittedAtUTC string `json:"submitted_at_utc"`
	Lang           string `json:"lang"`
	Email          string `json:"email"`
	PayloadJSON    string `json:"payload_json"`
}

// Draft is an in-progress response keyed by a resumable id (the rid query
// parameter). The payload embeds responses, navigation index and language.
type Draft struct {
	DraftID      string `json:"draft_id"`
	UpdatedAtUTC string `json:"updated_at_utc"`
	Email        string `json:"email"`
	PayloadJSON  string `json:"payload_json"`
}

// DraftPayload is the JSON shape stored in Draft.PayloadJSON.
type DraftPayload struct {
	Responses ResponseMap `json:"responses"`
	NavIndex  int         `json:"nav_index"`
	Lang      string      `json:"lang"`
}

// ConfigEntry is one row of the app_config key-value table.
type ConfigEntry struct {
	Key          string `json:"k"`
	Value        string `json:"v"`
	UpdatedAtUTC string `json:"updated_at_utc"`
}

// Country is one row of the normalized country reference table.
type Country struct {
	ISO3   string `json:"iso3"`
	NameFR string `json:"name_fr"`
	NameEN string `json:"name_en"`
	NamePT string `json:"name_pt"`
	NameAR string `json:"name_ar"`
}

// Name returns the label for lang, falling back to EN then FR.
func (c Country) Name(lang string) string {
	return pickLabel(lang, c.NameFR, c.NameEN, c.NamePT, c.NameAR)
}

// LonglistEntry is one row of the domain/indicator taxonomy.
type LonglistEntry struct {
	DomainCode    string `json:"domain_code"`
	DomainLabelFR string `json:"domain_label_fr"`
	DomainLabelEN string `json:"domain_label_en"`
	DomainLabelPT string `json:"domain_label_pt"`
	DomainLabelAR string `json:"domain_label_ar"`
	StatCode      string `json:"stat_code"`
	StatLabelFR   string `json:"stat_label_fr"`
	StatLabelEN   string `json:"stat_label_en"`
	StatLabelPT   string `json:"stat_label_pt"`
	StatLabelAR   string `json:"stat_label_ar"`
}

// DomainLabel returns the domain label for lang with EN then FR fallback.
func (e LonglistEntry) DomainLabel(lang string) string {
	return pickLabel(lang, e.DomainLabelFR, e.DomainLabelEN, e.DomainLabelPT, e.DomainLabelAR)
}

// StatLabel returns the indicator label for lang with EN then FR fallback.
func (e LonglistEntry) StatLabel(lang string) string {
	return pickLabel(lang, e.StatLabelFR, e.StatLabelEN, e.StatLabelPT, e.StatLabelAR)
}

func pickLabel(lang, fr, en, pt, ar string) string {
	var v string
	switch lang {
	case "fr":
		v = fr
	case "en":
		v = en
	case "pt":
		v = pt
	case "ar":
		v = ar
	}
	if v == "" {
		v = en
	}
	if v == "" {
		v = fr
	}
	return v
}

// ScoredRow is one (submission, indicator) pair with normalized criteria.
type ScoredRow struct {
	SubmissionID string  `json:"submission_id"`
	Country      string  `json:"pays"`
	ActorType    string  `json:"type_acteur"`
	DomainCode   string  `json:"domain_code"`
	DomainLabel  string  `json:"domain_label"`
	StatCode     string  `json:"stat_code"`
	StatLabel    string  `json:"stat_label"`
	Availability int     `json:"availability"`
	Demand       int     `json:"demand"`
	Feasibility  int     `json:"feasibility"`
	Overall      float64 `json:"overall"`
}

// StatAggregate is the per-indicator group-by result.
type StatAggregate struct {
	DomainCode       string  `json:"domain_code"`
	DomainLabel      string  `json:"domain_label"`
	StatCode         string  `json:"stat_code"`
	StatLabel        string  `json:"stat_label"`
	N                int     `json:"n"`
	MeanAvailability float64 `json:"mean_availability"`
	MeanDemand       float64 `json:"mean_demand"`
	MeanFeasibility  float64 `json:"mean_feasibility"`
	MeanOverall      float64 `json:"mean_overall"`
}

// DomainAggregate is the per-domain group-by result.
type DomainAggregate struct {
	DomainCode   string  `json:"domain_code"`
	DomainLabel  string  `json:"domain_label"`
	NStats       int     `json:"n_stats"`
	NSubmissions int     `json:"n_submissions"`
	MeanOverall  float64 `json:"mean_overall"`
}
