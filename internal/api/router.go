package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/statafric/consultation/internal/middleware"
	"github.com/statafric/consultation/internal/models"
	"github.com/statafric/consultation/internal/services"
	"github.com/statafric/consultation/internal/utils"
)

type Router struct {
	reference   *services.ReferenceService
	drafts      *services.DraftService
	submissions *services.SubmissionService
	admin       *services.AdminService
	reports     *services.ReportService
	exports     *services.ExportService
}

// NewRouter wires the services on top of a persistence store.
func NewRouter(store Store, reference *services.ReferenceService) *Router {
	reports := services.NewReportService(store, reference)
	return &Router{
		reference:   reference,
		drafts:      services.NewDraftService(store),
		submissions: services.NewSubmissionService(store),
		admin:       services.NewAdminService(store, middleware.SignToken),
		reports:     reports,
		exports:     services.NewExportService(reports, store),
	}
}

// NewMemoryRouter runs without a database file, for tests and local runs.
func NewMemoryRouter(reference *services.ReferenceService) *Router {
	return NewRouter(newMemoryStore(), reference)
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/meta", rt.handleMeta)                          // GET
	mux.HandleFunc("/api/reference/longlist", rt.handleLonglist)        // GET
	mux.HandleFunc("/api/reference/countries", rt.handleCountries)      // GET
	mux.HandleFunc("/api/validate", rt.handleValidate)                  // POST
	mux.HandleFunc("/api/drafts", rt.handleDrafts)                      // POST
	mux.HandleFunc("/api/drafts/", rt.handleDraftScoped)                // GET/DELETE /api/drafts/{rid}
	mux.HandleFunc("/api/submissions/email-exists", rt.handleEmailExists) // GET
	mux.HandleFunc("/api/submissions", rt.handleSubmit)                 // POST
	mux.HandleFunc("/api/admin/login", rt.handleAdminLogin)             // POST
	mux.HandleFunc("/api/admin/diag", rt.handleAdminDiag)               // GET

	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireRole(middleware.RoleAdmin, h)
	}
	superadmin := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireRole(middleware.RoleSuperadmin, h)
	}
	mux.Handle("/api/admin/submissions", admin(rt.handleAdminSubmissions)) // GET
	mux.Handle("/api/admin/aggregate", admin(rt.handleAdminAggregate))     // GET
	mux.Handle("/api/admin/export", admin(rt.handleAdminExport))           // GET
	mux.Handle("/api/admin/password", superadmin(rt.handleAdminPassword))  // POST
	mux.Handle("/api/admin/password/reset", superadmin(rt.handleAdminPasswordReset)) // POST
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a ServiceError code to an HTTP status. Unknown errors are
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusInternalServerError
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		case services.ErrorTooManyRequests:
			status = http.StatusTooManyRequests
		}
		writeJSON(w, status, map[string]any{"error": se.Message, "code": string(se.Code)})
		return
	}
	log.Printf("api: internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// lang resolves the response language: explicit field first, then the
// locale negotiated by the middleware.
func lang(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return middleware.LocaleFromContext(r.Context())
}

// GET /api/meta
func (rt *Router) handleMeta(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"languages":       middleware.SupportedLocales,
		"locale":          locale,
		"rtl":             utils.IsRTL(locale),
		"steps":           services.Steps(locale),
		"actor_types":     services.ActorTypes,
		"scopes":          services.Scopes,
		"snds_statuses":   services.SNDSStatuses,
		"scoring_version": services.ScoringVersion,
	})
}

// GET /api/reference/longlist
func (rt *Router) handleLonglist(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	locale := lang(r, r.URL.Query().Get("lang"))
	type entry struct {
		DomainCode  string `json:"domain_code"`
		DomainLabel string `json:"domain_label"`
		StatCode    string `json:"stat_code"`
		StatLabel   string `json:"stat_label"`
	}
	list := rt.reference.Longlist()
	out := make([]entry, 0, len(list))
	for _, e := range list {
		out = append(out, entry{
			DomainCode:  e.DomainCode,
			DomainLabel: e.DomainLabel(locale),
			StatCode:    e.StatCode,
			StatLabel:   e.StatLabel(locale),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"longlist": out})
}

// GET /api/reference/countries
func (rt *Router) handleCountries(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	locale := lang(r, r.URL.Query().Get("lang"))
	type entry struct {
		ISO3 string `json:"iso3"`
		Name string `json:"name"`
	}
	list := rt.reference.Countries()
	out := make([]entry, 0, len(list))
	for _, c := range list {
		out = append(out, entry{ISO3: c.ISO3, Name: c.Name(locale)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"countries": out})
}

// POST /api/validate
// { section: "R2".."R12"|"ALL", lang?: string, responses: {...} }
func (rt *Router) handleValidate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Section   string             `json:"section"`
		Lang      string             `json:"lang"`
		Responses models.ResponseMap `json:"responses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("invalid JSON body"))
		return
	}
	errs, err := services.ValidateSection(req.Section, lang(r, req.Lang), req.Responses)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": len(errs) == 0, "errors": errs})
}

// POST /api/drafts
// { rid?: string, lang?: string, nav_index: int, responses: {...}, force?: bool }
func (rt *Router) handleDrafts(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		RID       string             `json:"rid"`
		Lang      string             `json:"lang"`
		NavIndex  int                `json:"nav_index"`
		Responses models.ResponseMap `json:"responses"`
		Force     bool               `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("invalid JSON body"))
		return
	}
	rid := rt.drafts.EnsureDraftID(req.RID, req.Responses)
	res, err := rt.drafts.Autosave(rid, lang(r, req.Lang), req.NavIndex, req.Responses, req.Force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET|DELETE /api/drafts/{rid}
func (rt *Router) handleDraftScoped(w http.ResponseWriter, r *http.Request) {
	rid := strings.TrimPrefix(r.URL.Path, "/api/drafts/")
	if rid == "" || strings.Contains(rid, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		sessionEmpty := r.URL.Query().Get("session_empty") != "false"
		_, adminMode := middleware.RoleFromContext(r.Context())
		payload, err := rt.drafts.Restore(rid, sessionEmpty, adminMode)
		if err != nil {
			writeError(w, err)
			return
		}
		if payload == nil {
			writeJSON(w, http.StatusOK, map[string]any{"restored": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"restored": true, "draft": payload})
	case http.MethodDelete:
		if err := rt.drafts.Delete(rid); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/submissions/email-exists?email=...
func (rt *Router) handleEmailExists(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, services.NewInvalidError("email required"))
		return
	}
	exists, err := rt.submissions.EmailExists(email)
	if err != nil {
		// Degrade to "unknown": the unique index still blocks duplicates.
		exists = false
	}
	writeJSON(w, http.StatusOK, map[string]any{"exists": exists})
}

// POST /api/submissions
// { lang?: string, responses: {...} }
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Lang      string             `json:"lang"`
		Responses models.ResponseMap `json:"responses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("invalid JSON body"))
		return
	}
	locale := lang(r, req.Lang)
	res, err := rt.submissions.Submit(locale, req.Responses)
	if err != nil {
		if _, ok := services.AsServiceError(err); ok {
			writeError(w, err)
			return
		}
		// Store failure after validation: hand the stamped payload back so
		// the respondent can keep a local backup.
		log.Printf("api: submission store failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  "submission could not be stored",
			"backup": res.Payload,
		})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"submission_id":    res.SubmissionID,
		"submitted_at_utc": res.SubmittedAtUTC,
	})
}

// POST /api/admin/login
func (rt *Router) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("invalid JSON body"))
		return
	}
	res, err := rt.admin.Login(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/admin/diag
func (rt *Router) handleAdminDiag(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, rt.admin.Diag())
}

// GET /api/admin/submissions?limit=N
func (rt *Router) handleAdminSubmissions(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, services.NewInvalidError("limit must be an integer"))
			return
		}
		limit = n
	}
	rows, cols, err := rt.reports.FlatRows(rt.requestFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": rows, "columns": cols, "count": len(rows)})
}

// GET /api/admin/aggregate
// Aggregation is part of the advanced-analysis surface, superadmin only.
func (rt *Router) handleAdminAggregate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if !isSuperadmin(r) {
		writeError(w, services.NewForbiddenError("superadmin required"))
		return
	}
	locale := lang(r, r.URL.Query().Get("lang"))
	scored, err := rt.reports.ScoredRows(rt.requestFilter(r), locale)
	if err != nil {
		writeError(w, err)
		return
	}
	byDomain, byStat := services.Aggregate(scored)
	writeJSON(w, http.StatusOK, map[string]any{
		"by_domain":    byDomain,
		"by_statistic": byStat,
		"n_rows":       len(scored),
	})
}

// GET /api/admin/export?format=csv|rawcsv|jsonl|xlsx|aggxlsx|db|zip|docx
func (rt *Router) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	// Aggregated workbook and publication report follow the aggregate
	// endpoint's gate.
	if (format == "aggxlsx" || format == "docx") && !isSuperadmin(r) {
		writeError(w, services.NewForbiddenError("superadmin required"))
		return
	}
	locale := lang(r, r.URL.Query().Get("lang"))
	res, err := rt.exports.Export(format, rt.requestFilter(r), locale)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+res.Filename)
	_, _ = w.Write(res.Data)
}

func isSuperadmin(r *http.Request) bool {
	role, ok := middleware.RoleFromContext(r.Context())
	return ok && role == middleware.RoleSuperadmin
}

// requestFilter parses the analytical filters. Only superadmins may narrow
// the dataset; admin requests always cover everything.
func (rt *Router) requestFilter(r *http.Request) *services.Filter {
	if !isSuperadmin(r) {
		return nil
	}
	q := r.URL.Query()
	f := &services.Filter{
		Countries: splitParam(q.Get("countries")),
		Actors:    splitParam(q.Get("actors")),
	}
	if v := q.Get("from"); v != "" {
		if ts, err := time.Parse("2006-01-02", v); err == nil {
			f.From = ts
		}
	}
	if v := q.Get("to"); v != "" {
		if ts, err := time.Parse("2006-01-02", v); err == nil {
			// Inclusive end date.
			f.To = ts.Add(24*time.Hour - time.Nanosecond)
		}
	}
	if len(f.Countries) == 0 && len(f.Actors) == 0 && f.From.IsZero() && f.To.IsZero() {
		return nil
	}
	return f
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// POST /api/admin/password
// { new_password: string }
func (rt *Router) handleAdminPassword(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("invalid JSON body"))
		return
	}
	if err := rt.admin.SetAdminPassword(req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "auth_source": rt.admin.AuthSource()})
}

// POST /api/admin/password/reset
func (rt *Router) handleAdminPasswordReset(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := rt.admin.ResetAdminPassword(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "auth_source": rt.admin.AuthSource()})
}
