package services

import (
	"bytes"
	"embed"
	"encoding/csv"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/statafric/consultation/internal/models"
)

//go:embed refdata/indicator_longlist.csv refdata/countries.csv
var refdataFS embed.FS

// An external longlist CSV is only trusted when at most this share of rows
// is missing the English indicator label.
const longlistMissingENMax = 0.20

var longlistCandidates = []string{
	"indicator_longlist.csv",
	"longlist.csv",
	"indicator_longlist.xlsx",
	"longlist.xlsx",
}

var countryCandidates = []string{
	"countries.csv",
	"countries.xlsx",
	"country_list.xlsx",
}

// ReferenceService loads and merges the country and indicator-longlist
// reference tables: embedded defaults first, optionally overlaid fill-blanks
// style by files found in the data directory. It never fails: any unreadable
// candidate is skipped and the embedded tables remain the floor.
type ReferenceService struct {
	dataDir   string
	longlist  []models.LonglistEntry
	countries []models.Country
}

func NewReferenceService(dataDir string) *ReferenceService {
	s := &ReferenceService{dataDir: dataDir}
	s.longlist = s.loadLonglist()
	s.countries = s.loadCountries()
	return s
}

// Longlist returns the normalized domain/indicator taxonomy.
func (s *ReferenceService) Longlist() []models.LonglistEntry {
	return append([]models.LonglistEntry(nil), s.longlist...)
}

// Countries returns the normalized country table.
func (s *ReferenceService) Countries() []models.Country {
	return append([]models.Country(nil), s.countries...)
}

// DomainLabels maps domain codes to labels for lang.
func (s *ReferenceService) DomainLabels(lang string) map[string]string {
	out := map[string]string{}
	for _, e := range s.longlist {
		if _, ok := out[e.DomainCode]; !ok {
			out[e.DomainCode] = e.DomainLabel(lang)
		}
	}
	return out
}

// StatLabels maps indicator codes to labels for lang.
func (s *ReferenceService) StatLabels(lang string) map[string]string {
	out := map[string]string{}
	for _, e := range s.longlist {
		if _, ok := out[e.StatCode]; !ok {
			out[e.StatCode] = e.StatLabel(lang)
		}
	}
	return out
}

func (s *ReferenceService) loadLonglist() []models.LonglistEntry {
	base := embeddedLonglist()
	if s.dataDir == "" {
		return fillLonglistFallbacks(base)
	}
	for _, name := range longlistCandidates {
		path := filepath.Join(s.dataDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		var (
			overlay []models.LonglistEntry
			err     error
		)
		if strings.HasSuffix(name, ".csv") {
			overlay, err = longlistFromCSVFile(path)
		} else {
			overlay, err = longlistFromXLSX(path)
		}
		if err != nil {
			log.Printf("reference: skip longlist candidate %s: %v", path, err)
			continue
		}
		if len(overlay) == 0 {
			continue
		}
		return fillLonglistFallbacks(mergeLonglist(base, overlay))
	}
	return fillLonglistFallbacks(base)
}

func (s *ReferenceService) loadCountries() []models.Country {
	base := embeddedCountries()
	if s.dataDir == "" {
		return fillCountryFallbacks(base)
	}
	for _, name := range countryCandidates {
		path := filepath.Join(s.dataDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		var (
			overlay []models.Country
			err     error
		)
		if strings.HasSuffix(name, ".csv") {
			overlay, err = countriesFromCSVFile(path)
		} else {
			overlay, err = countriesFromXLSX(path)
		}
		if err != nil {
			log.Printf("reference: skip country candidate %s: %v", path, err)
			continue
		}
		if len(overlay) == 0 {
			continue
		}
		return fillCountryFallbacks(mergeCountries(base, overlay))
	}
	return fillCountryFallbacks(base)
}

func embeddedLonglist() []models.LonglistEntry {
	b, err := refdataFS.ReadFile("refdata/indicator_longlist.csv")
	if err != nil {
		log.Printf("reference: embedded longlist unreadable: %v", err)
		return nil
	}
	entries, err := longlistFromRecords(readCSVRecords(bytes.NewReader(b)))
	if err != nil {
		log.Printf("reference: embedded longlist malformed: %v", err)
		return nil
	}
	return entries
}

func embeddedCountries() []models.Country {
	b, err := refdataFS.ReadFile("refdata/countries.csv")
	if err != nil {
		log.Printf("reference: embedded countries unreadable: %v", err)
		return nil
	}
	return countriesFromRecords(readCSVRecords(bytes.NewReader(b)))
}

// readCSVRecords parses header-keyed CSV rows. Header names are lowercased
// and trimmed so both naming conventions match.
func readCSVRecords(r io.Reader) []map[string]string {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil || len(rows) < 2 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	var out []map[string]string
	for _, row := range rows[1:] {
		rec := map[string]string{}
		for i, v := range row {
			if i < len(header) {
				rec[header[i]] = strings.TrimSpace(v)
			}
		}
		out = append(out, rec)
	}
	return out
}

func longlistFromCSVFile(path string) ([]models.LonglistEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := longlistFromRecords(readCSVRecords(f))
	if err != nil {
		return nil, err
	}
	// Reject a CSV that is mostly missing EN labels; the XLSX candidate or
	// the embedded defaults serve instead.
	missing := 0
	for _, e := range entries {
		if e.StatLabelEN == "" {
			missing++
		}
	}
	if len(entries) > 0 && float64(missing)/float64(len(entries)) > longlistMissingENMax {
		return nil, NewInvalidError("too many rows without stat_label_en")
	}
	return entries, nil
}

func longlistFromRecords(records []map[string]string) ([]models.LonglistEntry, error) {
	var out []models.LonglistEntry
	for _, rec := range records {
		e := models.LonglistEntry{
			DomainCode:    rec["domain_code"],
			DomainLabelFR: rec["domain_label_fr"],
			DomainLabelEN: rec["domain_label_en"],
			DomainLabelPT: rec["domain_label_pt"],
			DomainLabelAR: rec["domain_label_ar"],
			StatCode:      rec["stat_code"],
			StatLabelFR:   rec["stat_label_fr"],
			StatLabelEN:   rec["stat_label_en"],
			StatLabelPT:   rec["stat_label_pt"],
			StatLabelAR:   rec["stat_label_ar"],
		}
		if e.DomainCode == "" || e.StatCode == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// longlistFromXLSX parses the legacy workbook layout: Domain_code,
// Domain_label_fr and Stat_label_* columns whose cells pack "CODE|Label".
func longlistFromXLSX(path string) ([]models.LonglistEntry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewInvalidError("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil || len(rows) < 2 {
		return nil, err
	}
	col := map[string]int{}
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	var out []models.LonglistEntry
	for _, row := range rows[1:] {
		statCode, statFR := splitPipe(cell(row, "stat_label_fr"))
		if statCode == "" {
			continue
		}
		_, statEN := splitPipe(cell(row, "stat_label_en"))
		_, statPT := splitPipe(cell(row, "stat_label_pt"))
		_, statAR := splitPipe(cell(row, "stat_label_ar"))
		e := models.LonglistEntry{
			DomainCode:    cell(row, "domain_code"),
			DomainLabelFR: cell(row, "domain_label_fr"),
			DomainLabelEN: cell(row, "domain_label_en"),
			DomainLabelPT: cell(row, "domain_label_pt"),
			DomainLabelAR: cell(row, "domain_label_ar"),
			StatCode:      statCode,
			StatLabelFR:   statFR,
			StatLabelEN:   statEN,
			StatLabelPT:   statPT,
			StatLabelAR:   statAR,
		}
		if e.DomainCode == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// splitPipe splits a "CODE|Label" packed cell on the first pipe. A cell
// without a pipe is treated as a plain label with no code.
func splitPipe(v string) (code, label string) {
	if v == "" {
		return "", ""
	}
	if i := strings.Index(v, "|"); i >= 0 {
		return strings.TrimSpace(v[:i]), strings.TrimSpace(v[i+1:])
	}
	return "", v
}

func countriesFromCSVFile(path string) ([]models.Country, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return countriesFromRecords(readCSVRecords(f)), nil
}

func countriesFromXLSX(path string) ([]models.Country, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewInvalidError("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil || len(rows) < 2 {
		return nil, err
	}
	var records []map[string]string
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	for _, row := range rows[1:] {
		rec := map[string]string{}
		for i, v := range row {
			if i < len(header) {
				rec[header[i]] = strings.TrimSpace(v)
			}
		}
		records = append(records, rec)
	}
	return countriesFromRecords(records), nil
}

func countriesFromRecords(records []map[string]string) []models.Country {
	var out []models.Country
	for _, rec := range records {
		c := models.Country{
			ISO3:   strings.ToUpper(rec["country_iso3"]),
			NameFR: rec["country_name_fr"],
			NameEN: rec["country_name_en"],
			NamePT: rec["country_name_pt"],
			NameAR: rec["country_name_ar"],
		}
		// Legacy variant: COUNTRY_VALUE_* cells packed "ISO3|Name".
		if c.ISO3 == "" {
			for lang, dst := range map[string]*string{
				"country_value_fr": &c.NameFR,
				"country_value_en": &c.NameEN,
				"country_value_pt": &c.NamePT,
				"country_value_ar": &c.NameAR,
			} {
				code, label := splitPipe(rec[lang])
				if code != "" && c.ISO3 == "" {
					c.ISO3 = strings.ToUpper(code)
				}
				if label != "" && *dst == "" {
					*dst = label
				}
			}
		}
		if c.ISO3 == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func mergeLonglist(base, overlay []models.LonglistEntry) []models.LonglistEntry {
	key := func(e models.LonglistEntry) string { return e.DomainCode + "|" + e.StatCode }
	idx := map[string]int{}
	out := append([]models.LonglistEntry(nil), base...)
	for i, e := range out {
		idx[key(e)] = i
	}
	for _, o := range overlay {
		i, ok := idx[key(o)]
		if !ok {
			idx[key(o)] = len(out)
			out = append(out, o)
			continue
		}
		merged := out[i]
		fillField(&merged.DomainLabelFR, o.DomainLabelFR)
		fillField(&merged.DomainLabelEN, o.DomainLabelEN)
		fillField(&merged.DomainLabelPT, o.DomainLabelPT)
		fillField(&merged.DomainLabelAR, o.DomainLabelAR)
		fillField(&merged.StatLabelFR, o.StatLabelFR)
		fillField(&merged.StatLabelEN, o.StatLabelEN)
		fillField(&merged.StatLabelPT, o.StatLabelPT)
		fillField(&merged.StatLabelAR, o.StatLabelAR)
		out[i] = merged
	}
	return out
}

func mergeCountries(base, overlay []models.Country) []models.Country {
	idx := map[string]int{}
	out := append([]models.Country(nil), base...)
	for i, c := range out {
		idx[c.ISO3] = i
	}
	for _, o := range overlay {
		i, ok := idx[o.ISO3]
		if !ok {
			idx[o.ISO3] = len(out)
			out = append(out, o)
			continue
		}
		merged := out[i]
		fillField(&merged.NameFR, o.NameFR)
		fillField(&merged.NameEN, o.NameEN)
		fillField(&merged.NamePT, o.NamePT)
		fillField(&merged.NameAR, o.NameAR)
		out[i] = merged
	}
	return out
}

// fillField overwrites dst when the external value is non-empty.
func fillField(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func fillLonglistFallbacks(entries []models.LonglistEntry) []models.LonglistEntry {
	for i := range entries {
		e := &entries[i]
		fallbackLabel(&e.DomainLabelEN, e.DomainLabelFR)
		fallbackLabel(&e.DomainLabelPT, e.DomainLabelEN, e.DomainLabelFR)
		fallbackLabel(&e.DomainLabelAR, e.DomainLabelEN, e.DomainLabelFR)
		fallbackLabel(&e.StatLabelEN, e.StatLabelFR)
		fallbackLabel(&e.StatLabelPT, e.StatLabelEN, e.StatLabelFR)
		fallbackLabel(&e.StatLabelAR, e.StatLabelEN, e.StatLabelFR)
	}
	return entries
}

func fillCountryFallbacks(countries []models.Country) []models.Country {
	for i := range countries {
		c := &countries[i]
		fallbackLabel(&c.NameEN, c.NameFR)
		fallbackLabel(&c.NamePT, c.NameEN, c.NameFR)
		fallbackLabel(&c.NameAR, c.NameEN, c.NameFR)
	}
	return countries
}

func fallbackLabel(dst *string, candidates ...string) {
	if *dst != "" {
		return
	}
	for _, c := range candidates {
		if c != "" {
			*dst = c
			return
		}
	}
}
