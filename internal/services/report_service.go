package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/statafric/consultation/internal/models"
)

type SubmissionReader interface {
	ListSubmissions(limit int) ([]*models.Submission, error)
}

// ReportService flattens stored payloads and computes the prioritization
// aggregates (mean demand/availability/feasibility per domain and per
// indicator).
type ReportService struct {
	store SubmissionReader
	ref   *ReferenceService
}

func NewReportService(store SubmissionReader, ref *ReferenceService) *ReportService {
	return &ReportService{store: store, ref: ref}
}

// Filter narrows the analysis set. Zero values mean "no constraint".
type Filter struct {
	Countries []string
	Actors    []string
	From      time.Time
	To        time.Time
}

func (f *Filter) matches(payload models.ResponseMap, submittedAt string) bool {
	if f == nil {
		return true
	}
	if len(f.Countries) > 0 && !inList(f.Countries, payload.Str("pays")) {
		return false
	}
	if len(f.Actors) > 0 && !inList(f.Actors, payload.Str("type_acteur")) {
		return false
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		ts, err := time.Parse(time.RFC3339, submittedAt)
		if err != nil {
			return false
		}
		if !f.From.IsZero() && ts.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && ts.After(f.To) {
			return false
		}
	}
	return true
}

// parsedSubmission pairs a stored row with its decoded payload. A payload
// that fails to decode becomes an empty map, the row itself is kept.
type parsedSubmission struct {
	Row     *models.Submission
	Payload models.ResponseMap
}

func (s *ReportService) parsed(filter *Filter) ([]parsedSubmission, error) {
	subs, err := s.store.ListSubmissions(0)
	if err != nil {
		return nil, err
	}
	out := make([]parsedSubmission, 0, len(subs))
	for _, sub := range subs {
		payload := models.ResponseMap{}
		if err := json.Unmarshal([]byte(sub.PayloadJSON), &payload); err != nil {
			payload = models.ResponseMap{}
		}
		if !filter.matches(payload, sub.SubmittedAtUTC) {
			continue
		}
		out = append(out, parsedSubmission{Row: sub, Payload: payload})
	}
	return out, nil
}

// Payloads returns the decoded payloads matching filter, for the JSONL and
// ZIP exports.
func (s *ReportService) Payloads(filter *Filter) ([]models.ResponseMap, error) {
	parsed, err := s.parsed(filter)
	if err != nil {
		return nil, err
	}
	out := make([]models.ResponseMap, 0, len(parsed))
	for _, p := range parsed {
		out = append(out, p.Payload)
	}
	return out, nil
}

// Raw returns the stored rows matching filter, for the raw CSV export.
func (s *ReportService) Raw(filter *Filter) ([]*models.Submission, error) {
	parsed, err := s.parsed(filter)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Submission, 0, len(parsed))
	for _, p := range parsed {
		out = append(out, p.Row)
	}
	return out, nil
}

// FlatRows flattens every matching submission and returns the rows plus the
// stable column order (known columns first, extras alphabetically).
func (s *ReportService) FlatRows(filter *Filter) ([]map[string]string, []string, error) {
	parsed, err := s.parsed(filter)
	if err != nil {
		return nil, nil, err
	}
	rows := make([]map[string]string, 0, len(parsed))
	for _, p := range parsed {
		flat := Flatten(p.Payload)
		flat["submission_id"] = p.Row.SubmissionID
		flat["submitted_at_utc"] = p.Row.SubmittedAtUTC
		rows = append(rows, flat)
	}
	return rows, FlatColumns(rows), nil
}

// ScoredRows expands every matching submission into one row per selected
// indicator, normalizing legacy gap scores by the payload's scoring version.
func (s *ReportService) ScoredRows(filter *Filter, lang string) ([]models.ScoredRow, error) {
	parsed, err := s.parsed(filter)
	if err != nil {
		return nil, err
	}
	domLabels := s.ref.DomainLabels(lang)
	statLabels := s.ref.StatLabels(lang)

	var rows []models.ScoredRow
	for _, p := range parsed {
		payload := p.Payload
		version := PayloadScoringVersion(payload)
		scoring := payload.ScoreMap("scoring")
		selected := payload.ListMap("selected_by_domain")

		domains := make([]string, 0, len(selected))
		for d := range selected {
			domains = append(domains, d)
		}
		sort.Strings(domains)

		for _, d := range domains {
			for _, stat := range selected[d] {
				entry := scoring[stat]
				availRaw, _ := AvailabilityRaw(entry)
				avail := NormalizeAvailability(availRaw, version)
				demand := ToScore(entry["demand"])
				feasibility := ToScore(entry["feasibility"])
				rows = append(rows, models.ScoredRow{
					SubmissionID: p.Row.SubmissionID,
					Country:      payload.Str("pays"),
					ActorType:    payload.Str("type_acteur"),
					DomainCode:   d,
					DomainLabel:  labelOr(domLabels, d),
					StatCode:     stat,
					StatLabel:    labelOr(statLabels, stat),
					Availability: avail,
					Demand:       demand,
					Feasibility:  feasibility,
					Overall:      float64(avail+demand+feasibility) / 3.0,
				})
			}
		}
	}
	return rows, nil
}

// Aggregate groups scored rows by indicator and by domain. ByStat is sorted
// by domain, mean overall desc, n desc; ByDomain by mean overall desc, n desc.
func Aggregate(rows []models.ScoredRow) ([]models.DomainAggregate, []models.StatAggregate) {
	type statAcc struct {
		agg  models.StatAggregate
		subs map[string]struct{}
		sumA, sumD, sumF, sumO float64
		n    int
	}
	type domAcc struct {
		agg  models.DomainAggregate
		subs map[string]struct{}
		sumO float64
	}
	stats := map[string]*statAcc{}
	doms := map[string]*domAcc{}

	for _, r := range rows {
		sk := r.DomainCode + "|" + r.StatCode
		sa, ok := stats[sk]
		if !ok {
			sa = &statAcc{
				agg:  models.StatAggregate{DomainCode: r.DomainCode, DomainLabel: r.DomainLabel, StatCode: r.StatCode, StatLabel: r.StatLabel},
				subs: map[string]struct{}{},
			}
			stats[sk] = sa
		}
		sa.subs[r.SubmissionID] = struct{}{}
		sa.sumA += float64(r.Availability)
		sa.sumD += float64(r.Demand)
		sa.sumF += float64(r.Feasibility)
		sa.sumO += r.Overall
		sa.n++

		da, ok := doms[r.DomainCode]
		if !ok {
			da = &domAcc{
				agg:  models.DomainAggregate{DomainCode: r.DomainCode, DomainLabel: r.DomainLabel},
				subs: map[string]struct{}{},
			}
			doms[r.DomainCode] = da
		}
		da.subs[r.SubmissionID] = struct{}{}
		da.sumO += r.Overall
		da.agg.NStats++
	}

	byStat := make([]models.StatAggregate, 0, len(stats))
	for _, sa := range stats {
		a := sa.agg
		a.N = len(sa.subs)
		a.MeanAvailability = sa.sumA / float64(sa.n)
		a.MeanDemand = sa.sumD / float64(sa.n)
		a.MeanFeasibility = sa.sumF / float64(sa.n)
		a.MeanOverall = sa.sumO / float64(sa.n)
		byStat = append(byStat, a)
	}
	sort.Slice(byStat, func(i, j int) bool {
		if byStat[i].DomainCode != byStat[j].DomainCode {
			return byStat[i].DomainCode < byStat[j].DomainCode
		}
		if byStat[i].MeanOverall != byStat[j].MeanOverall {
			return byStat[i].MeanOverall > byStat[j].MeanOverall
		}
		if byStat[i].N != byStat[j].N {
			return byStat[i].N > byStat[j].N
		}
		return byStat[i].StatCode < byStat[j].StatCode
	})

	byDomain := make([]models.DomainAggregate, 0, len(doms))
	for _, da := range doms {
		a := da.agg
		a.NSubmissions = len(da.subs)
		a.MeanOverall = da.sumO / float64(a.NStats)
		byDomain = append(byDomain, a)
	}
	sort.Slice(byDomain, func(i, j int) bool {
		if byDomain[i].MeanOverall != byDomain[j].MeanOverall {
			return byDomain[i].MeanOverall > byDomain[j].MeanOverall
		}
		if byDomain[i].NSubmissions != byDomain[j].NSubmissions {
			return byDomain[i].NSubmissions > byDomain[j].NSubmissions
		}
		return byDomain[i].DomainCode < byDomain[j].DomainCode
	})

	return byDomain, byStat
}

func labelOr(labels map[string]string, code string) string {
	if l, ok := labels[code]; ok && l != "" {
		return l
	}
	return code
}

// flatScalarKeys are copied verbatim; flatListKeys are joined with "; ".
var flatScalarKeys = []string{
	"organisation", "pays", "pays_autre", "email", "type_acteur",
	"fonction", "fonction_autre", "scope", "scope_other", "snds_status",
	"gender_prio_1", "gender_prio_2", "gender_prio_3", "gender_prio_other",
	"quality_other", "dissemination_other", "data_sources_other",
	"consulted_colleagues",
}

var flatListKeys = []string{
	"preselected_domains", "top5_domains",
	"quality_expectations", "dissemination_channels", "data_sources",
}

// openQuestionColumns renames the free-text answers to analysis-friendly
// column names.
var openQuestionColumns = map[string]string{
	"open_q1": "comment_1",
	"open_q2": "missing_indicators",
	"open_q3": "support_needs",
}

// Flatten turns one payload into a flat row with stable column names.
// Table answers become {prefix}_{canonical_item} (+_spec) columns, always
// emitted even when blank; selected_by_domain and scoring stay JSON-encoded.
func Flatten(payload models.ResponseMap) map[string]string {
	flat := map[string]string{}
	for _, k := range flatScalarKeys {
		flat[k] = payload.Str(k)
	}
	for _, k := range flatListKeys {
		flat[k] = strings.Join(payload.StrList(k), "; ")
	}
	for src, dst := range openQuestionColumns {
		flat[dst] = payload.Str(src)
	}

	top5 := payload.StrList("top5_domains")
	for i := 0; i < 5; i++ {
		var v string
		if i < len(top5) {
			v = top5[i]
		}
		flat[fmt.Sprintf("top_domain_%d", i+1)] = v
	}

	gender := canonicalTable(payload.StrMap("gender_table"), CanonicalGenderItem)
	genderSpec := canonicalTable(payload.StrMap("gender_table_spec"), CanonicalGenderItem)
	for canon := range GenderItems {
		flat["gender_"+canon] = gender[canon]
		flat["gender_"+canon+"_spec"] = genderSpec[canon]
	}
	capacity := canonicalTable(payload.StrMap("capacity_table"), CanonicalCapacityItem)
	capacitySpec := canonicalTable(payload.StrMap("capacity_table_spec"), CanonicalCapacityItem)
	for canon := range CapacityItems {
		flat["capacity_"+canon] = capacity[canon]
		flat["capacity_"+canon+"_spec"] = capacitySpec[canon]
	}

	selected := payload.ListMap("selected_by_domain")
	nbStats := 0
	for _, stats := range selected {
		nbStats += len(stats)
	}
	flat["nb_stats"] = fmt.Sprintf("%d", nbStats)
	flat["selected_by_domain"] = encodeJSONString(payload["selected_by_domain"])
	flat["scoring"] = encodeJSONString(payload["scoring"])

	if v, ok := payload["scoring_version"]; ok {
		flat["scoring_version"] = fmt.Sprintf("%v", normalizeJSONNumber(v))
	} else {
		flat["scoring_version"] = ""
	}
	flat["submission_id"] = payload.Str("submission_id")
	flat["submitted_at_utc"] = payload.Str("submitted_at_utc")
	return flat
}

// FlatColumns unions the keys of all rows: identity first, then the known
// column groups, then any extras alphabetically.
func FlatColumns(rows []map[string]string) []string {
	seen := map[string]bool{}
	var cols []string
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	add("submission_id")
	add("submitted_at_utc")
	for _, k := range flatScalarKeys {
		add(k)
	}
	for _, k := range flatListKeys {
		add(k)
	}
	for i := 1; i <= 5; i++ {
		add(fmt.Sprintf("top_domain_%d", i))
	}
	var tableCols []string
	for canon := range GenderItems {
		tableCols = append(tableCols, "gender_"+canon, "gender_"+canon+"_spec")
	}
	for canon := range CapacityItems {
		tableCols = append(tableCols, "capacity_"+canon, "capacity_"+canon+"_spec")
	}
	sort.Strings(tableCols)
	for _, c := range tableCols {
		add(c)
	}
	add("comment_1")
	add("missing_indicators")
	add("support_needs")
	add("nb_stats")
	add("selected_by_domain")
	add("scoring")
	add("scoring_version")

	var extras []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				extras = append(extras, k)
			}
		}
	}
	sort.Strings(extras)
	return append(cols, extras...)
}

func encodeJSONString(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// normalizeJSONNumber renders float64-decoded integers without a decimal
// point.
func normalizeJSONNumber(v any) any {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return int64(f)
	}
	return v
}

// Profile summarizes the respondent base for the publication report.
type Profile struct {
	N            int
	TopCountries []CountCount
	ActorTypes   []CountCount
}

type CountCount struct {
	Key string
	N   int
}

// BuildProfile counts respondents, top countries and actor types.
func BuildProfile(payloads []models.ResponseMap, topCountries int) Profile {
	countries := map[string]int{}
	actors := map[string]int{}
	for _, p := range payloads {
		if c := p.Str("pays"); c != "" {
			countries[c]++
		}
		if a := p.Str("type_acteur"); a != "" {
			actors[a]++
		}
	}
	prof := Profile{N: len(payloads)}
	prof.TopCountries = topCounts(countries, topCountries)
	prof.ActorTypes = topCounts(actors, 0)
	return prof
}

func topCounts(m map[string]int, limit int) []CountCount {
	out := make([]CountCount, 0, len(m))
	for k, n := range m {
		out = append(out, CountCount{Key: k, N: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
