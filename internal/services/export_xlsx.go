package services

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/statafric/consultation/internal/models"
)

// ExportXLSX writes two sheets: the flattened submissions and the raw JSON
// payloads.
func ExportXLSX(rows []map[string]string, cols []string, subs []*models.Submission) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "submissions")
	if err := writeStringSheet(f, "submissions", cols, func(yield func([]string)) {
		rec := make([]string, len(cols))
		for _, row := range rows {
			for i, c := range cols {
				rec[i] = row[c]
			}
			yield(rec)
		}
	}); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet("raw_json"); err != nil {
		return nil, err
	}
	rawCols := []string{"submission_id", "submitted_at_utc", "lang", "email", "payload_json"}
	if err := writeStringSheet(f, "raw_json", rawCols, func(yield func([]string)) {
		for _, sub := range subs {
			yield([]string{sub.SubmissionID, sub.SubmittedAtUTC, sub.Lang, sub.Email, sub.PayloadJSON})
		}
	}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportAggregatedXLSX writes the prioritization workbook: domain means,
// indicator means and the underlying scored rows.
func ExportAggregatedXLSX(byDomain []models.DomainAggregate, byStat []models.StatAggregate, scored []models.ScoredRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "by_domain")
	domCols := []string{"domain_code", "domain_label", "n_stats", "n_submissions", "mean_overall"}
	if err := writeSheet(f, "by_domain", domCols, func(yield func([]any)) {
		for _, d := range byDomain {
			yield([]any{d.DomainCode, d.DomainLabel, d.NStats, d.NSubmissions, round2(d.MeanOverall)})
		}
	}); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet("by_statistic"); err != nil {
		return nil, err
	}
	statCols := []string{"domain_code", "domain_label", "stat_code", "stat_label", "n", "mean_demand", "mean_availability", "mean_feasibility", "mean_overall"}
	if err := writeSheet(f, "by_statistic", statCols, func(yield func([]any)) {
		for _, s := range byStat {
			yield([]any{s.DomainCode, s.DomainLabel, s.StatCode, s.StatLabel, s.N,
				round2(s.MeanDemand), round2(s.MeanAvailability), round2(s.MeanFeasibility), round2(s.MeanOverall)})
		}
	}); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet("scored_rows"); err != nil {
		return nil, err
	}
	rowCols := []string{"submission_id", "pays", "type_acteur", "domain_code", "domain_label", "stat_code", "stat_label", "demand", "availability", "feasibility", "overall"}
	if err := writeSheet(f, "scored_rows", rowCols, func(yield func([]any)) {
		for _, r := range scored {
			yield([]any{r.SubmissionID, r.Country, r.ActorType, r.DomainCode, r.DomainLabel, r.StatCode, r.StatLabel,
				r.Demand, r.Availability, r.Feasibility, round2(r.Overall)})
		}
	}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeStringSheet(f *excelize.File, sheet string, header []string, rows func(yield func([]string))) error {
	return writeSheet(f, sheet, header, func(yield func([]any)) {
		rows(func(rec []string) {
			row := make([]any, len(rec))
			for i, v := range rec {
				row[i] = v
			}
			yield(row)
		})
	})
}

func writeSheet(f *excelize.File, sheet string, header []string, rows func(yield func([]any))) error {
	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	n := 1
	var writeErr error
	rows(func(rec []any) {
		if writeErr != nil {
			return
		}
		n++
		cell := fmt.Sprintf("A%d", n)
		writeErr = f.SetSheetRow(sheet, cell, &rec)
	})
	return writeErr
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
