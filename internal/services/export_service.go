package services

import (
	"time"
)

// DatabaseDumper exposes the raw SQLite file for the db and zip exports.
type DatabaseDumper interface {
	DatabaseBytes() ([]byte, error)
}

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

type ExportService struct {
	report *ReportService
	dumper DatabaseDumper
	now    func() time.Time
}

func NewExportService(report *ReportService, dumper DatabaseDumper) *ExportService {
	return &ExportService{report: report, dumper: dumper, now: time.Now}
}

// Export renders the matching submissions in the requested format. The
// filter only narrows analytical formats; db always ships the whole file.
func (s *ExportService) Export(format string, filter *Filter, lang string) (*ExportResult, error) {
	switch format {
	case "csv":
		rows, cols, err := s.report.FlatRows(filter)
		if err != nil {
			return nil, err
		}
		b, err := ExportFlatCSV(rows, cols)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "consultation_submissions_flat.csv", ContentType: contentTypeCSV, Data: b}, nil

	case "rawcsv":
		subs, err := s.report.Raw(filter)
		if err != nil {
			return nil, err
		}
		b, err := ExportRawCSV(subs)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "consultation_submissions_raw.csv", ContentType: contentTypeCSV, Data: b}, nil

	case "jsonl":
		payloads, err := s.report.Payloads(filter)
		if err != nil {
			return nil, err
		}
		b, err := ExportJSONL(payloads)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "consultation_submissions.jsonl", ContentType: "application/x-ndjson", Data: b}, nil

	case "xlsx":
		rows, cols, err := s.report.FlatRows(filter)
		if err != nil {
			return nil, err
		}
		subs, err := s.report.Raw(filter)
		if err != nil {
			return nil, err
		}
		b, err := ExportXLSX(rows, cols, subs)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "consultation_stat_export.xlsx", ContentType: contentTypeXLSX, Data: b}, nil

	case "aggxlsx":
		scored, err := s.report.ScoredRows(filter, lang)
		if err != nil {
			return nil, err
		}
		byDomain, byStat := Aggregate(scored)
		b, err := ExportAggregatedXLSX(byDomain, byStat, scored)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "prioritization_aggregated.xlsx", ContentType: contentTypeXLSX, Data: b}, nil

	case "db":
		b, err := s.dumper.DatabaseBytes()
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "responses.db", ContentType: "application/octet-stream", Data: b}, nil

	case "zip":
		subs, err := s.report.Raw(filter)
		if err != nil {
			return nil, err
		}
		rows, cols, err := s.report.FlatRows(filter)
		if err != nil {
			return nil, err
		}
		dbBytes, err := s.dumper.DatabaseBytes()
		if err != nil {
			// Ship the rest of the bundle without the database file.
			dbBytes = nil
		}
		b, err := ExportZIP(dbBytes, subs, rows, cols)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "consultation_export.zip", ContentType: "application/zip", Data: b}, nil

	case "docx":
		payloads, err := s.report.Payloads(filter)
		if err != nil {
			return nil, err
		}
		scored, err := s.report.ScoredRows(filter, lang)
		if err != nil {
			return nil, err
		}
		byDomain, byStat := Aggregate(scored)
		profile := BuildProfile(payloads, reportTopCountries)
		b, err := BuildPublicationReport(profile, byDomain, byStat, s.now())
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "rapport_publication_priorisation.docx", ContentType: contentTypeDOCX, Data: b}, nil

	default:
		return nil, NewInvalidError("unsupported export format")
	}
}
