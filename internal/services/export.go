package services

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/statafric/consultation/internal/models"
)

// utf8BOM prefixes CSV exports so Excel detects the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportFlatCSV renders the flattened submissions as CSV.
func ExportFlatCSV(rows []map[string]string, cols []string) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.Write(utf8BOM)
	w := csv.NewWriter(buf)
	if err := w.Write(cols); err != nil {
		return nil, err
	}
	rec := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			rec[i] = row[c]
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportRawCSV renders the stored rows as-is, one JSON payload per line.
func ExportRawCSV(subs []*models.Submission) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.Write(utf8BOM)
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"submission_id", "submitted_at_utc", "lang", "email", "payload_json"}); err != nil {
		return nil, err
	}
	for _, sub := range subs {
		rec := []string{sub.SubmissionID, sub.SubmittedAtUTC, sub.Lang, sub.Email, sub.PayloadJSON}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportJSONL renders one compact JSON payload per line.
func ExportJSONL(payloads []models.ResponseMap) ([]byte, error) {
	buf := &bytes.Buffer{}
	for _, p := range payloads {
		b, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// ExportZIP bundles the database file, both CSVs, the JSONL and one
// pretty-printed JSON file per submission.
func ExportZIP(dbBytes []byte, subs []*models.Submission, flatRows []map[string]string, flatCols []string) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	write := func(name string, data []byte) error {
		f, err := zw.Create(name)
		if err != nil {
			return err
		}
		_, err = f.Write(data)
		return err
	}

	if len(dbBytes) > 0 {
		if err := write("responses.db", dbBytes); err != nil {
			return nil, err
		}
	}

	flatCSV, err := ExportFlatCSV(flatRows, flatCols)
	if err != nil {
		return nil, err
	}
	if err := write("consultation_submissions_flat.csv", flatCSV); err != nil {
		return nil, err
	}

	rawCSV, err := ExportRawCSV(subs)
	if err != nil {
		return nil, err
	}
	if err := write("consultation_submissions_raw.csv", rawCSV); err != nil {
		return nil, err
	}

	jsonl := &bytes.Buffer{}
	for _, sub := range subs {
		jsonl.WriteString(sub.PayloadJSON)
		jsonl.WriteByte('\n')
	}
	if err := write("consultation_submissions.jsonl", jsonl.Bytes()); err != nil {
		return nil, err
	}

	for _, sub := range subs {
		payload := models.ResponseMap{}
		pretty := []byte(sub.PayloadJSON)
		if err := json.Unmarshal([]byte(sub.PayloadJSON), &payload); err == nil {
			if b, err := json.MarshalIndent(payload, "", "  "); err == nil {
				pretty = b
			}
		}
		name := fmt.Sprintf("json/submission_%s.json", sub.SubmissionID)
		if err := write(name, pretty); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
