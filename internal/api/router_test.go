package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statafric/consultation/internal/middleware"
	"github.com/statafric/consultation/internal/models"
	"github.com/statafric/consultation/internal/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("ADMIN_PASSWORD", "admin-secret-pass")
	t.Setenv("SUPERADMIN_PASSWORD", "super-secret-pass")

	mux := http.NewServeMux()
	NewMemoryRouter(services.NewReferenceService("")).Register(mux)
	srv := httptest.NewServer(middleware.LocaleMiddleware(middleware.WithAuth(mux)))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })

	var out map[string]any
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return res, out
}

func fullResponses() models.ResponseMap {
	scoring := map[string]any{}
	selected := map[string]any{}
	for i, stat := range []string{"D01S01", "D02S01", "D03S01", "D04S01", "D05S01"} {
		domain := []string{"D01", "D02", "D03", "D04", "D05"}[i]
		selected[domain] = []any{stat}
		scoring[stat] = map[string]any{"demand": 2, "availability": 2, "feasibility": 2}
	}
	gender := map[string]any{}
	for canon := range services.GenderItems {
		gender[canon] = "YES"
	}
	capacity := map[string]any{}
	for canon := range services.CapacityItems {
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

func login(t *testing.T, srv *httptest.Server, password string) (role, token string) {
	t.Helper()
	res, body := doJSON(t, http.MethodPost, srv.URL+"/api/admin/login", "", map[string]any{"password": password})
	require.Equal(t, http.StatusOK, res.StatusCode)
	return body["role"].(string), body["token"].(string)
}

func TestMetaAndReference(t *testing.T) {
	srv := newTestServer(t)

	res, body := doJSON(t, http.MethodGet, srv.URL+"/api/meta", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, body["languages"], 4)
	assert.Len(t, body["steps"], 13)

	res, body = doJSON(t, http.MethodGet, srv.URL+"/api/reference/countries?lang=fr", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	countries := body["countries"].([]any)
	assert.NotEmpty(t, countries)
	var foundSEN bool
	for _, c := range countries {
		if c.(map[string]any)["iso3"] == "SEN" {
			foundSEN = true
		}
	}
	assert.True(t, foundSEN)

	res, body = doJSON(t, http.MethodGet, srv.URL+"/api/reference/longlist", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, body["longlist"])
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	res, body := doJSON(t, http.MethodPost, srv.URL+"/api/validate", "", map[string]any{
		"section":   "R2",
		"lang":      "en",
		"responses": models.ResponseMap{},
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, false, body["ok"])
	assert.NotEmpty(t, body["errors"])

	res, body = doJSON(t, http.MethodPost, srv.URL+"/api/validate", "", map[string]any{
		"section":   "ALL",
		"lang":      "en",
		"responses": fullResponses(),
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["ok"])

	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/validate", "", map[string]any{
		"section":   "R99",
		"responses": models.ResponseMap{},
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestDraftLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// No email yet: nothing persisted, no id minted.
	res, body := doJSON(t, http.MethodPost, srv.URL+"/api/drafts", "", map[string]any{
		"responses": models.ResponseMap{"organisation": "x"},
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, false, body["saved"])
	assert.Nil(t, body["rid"])

	res, body = doJSON(t, http.MethodPost, srv.URL+"/api/drafts", "", map[string]any{
		"lang":      "fr",
		"nav_index": 3,
		"responses": models.ResponseMap{"email": "a@b.co", "organisation": "Observatoire"},
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, true, body["saved"])
	rid := body["rid"].(string)
	require.NotEmpty(t, rid)

	// Immediate re-save without force hits the autosave throttle.
	res, body = doJSON(t, http.MethodPost, srv.URL+"/api/drafts", "", map[string]any{
		"rid":       rid,
		"responses": models.ResponseMap{"email": "a@b.co"},
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, false, body["saved"])

	res, body = doJSON(t, http.MethodGet, srv.URL+"/api/drafts/"+rid, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, true, body["restored"])
	draft := body["draft"].(map[string]any)
	assert.Equal(t, float64(3), draft["nav_index"])
	assert.Equal(t, "fr", draft["lang"])

	// A session that already has answers must not be clobbered.
	res, body = doJSON(t, http.MethodGet, srv.URL+"/api/drafts/"+rid+"?session_empty=false", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, false, body["restored"])

	res, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/drafts/"+rid, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/drafts/"+rid, "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestSubmitFlow(t *testing.T) {
	srv := newTestServer(t)

	res, body := doJSON(t, http.MethodPost, srv.URL+"/api/submissions", "", map[string]any{
		"lang":      "en",
		"responses": fullResponses(),
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.NotEmpty(t, body["submission_id"])
	assert.NotEmpty(t, body["submitted_at_utc"])

	// email-exists now reports the stored address, case-insensitively.
	res, body = doJSON(t, http.MethodGet, srv.URL+"/api/submissions/email-exists?email=JANE@example.org", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["exists"])

	// Same email again is a conflict.
	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/submissions", "", map[string]any{
		"lang":      "en",
		"responses": fullResponses(),
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	// An incomplete questionnaire never reaches storage.
	res, body = doJSON(t, http.MethodPost, srv.URL+"/api/submissions", "", map[string]any{
		"lang":      "en",
		"responses": models.ResponseMap{"email": "other@example.org"},
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestAdminAuthAndRoles(t *testing.T) {
	srv := newTestServer(t)

	res, _ := doJSON(t, http.MethodGet, srv.URL+"/api/admin/submissions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	role, adminTok := login(t, srv, "admin-secret-pass")
	assert.Equal(t, "admin", role)
	role, superTok := login(t, srv, "super-secret-pass")
	assert.Equal(t, "superadmin", role)

	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/admin/login", "", map[string]any{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, body := doJSON(t, http.MethodGet, srv.URL+"/api/admin/submissions", adminTok, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, float64(0), body["count"])

	// Password rotation is superadmin-only.
	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/admin/password", adminTok, map[string]any{"new_password": "rotated-secret"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, body = doJSON(t, http.MethodPost, srv.URL+"/api/admin/password", superTok, map[string]any{"new_password": "rotated-secret"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "db", body["auth_source"])

	// The old env admin password no longer works; the rotated one does.
	res, _ = doJSON(t, http.MethodPost, srv.URL+"/api/admin/login", "", map[string]any{"password": "admin-secret-pass"})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	role, _ = login(t, srv, "rotated-secret")
	assert.Equal(t, "admin", role)

	res, body = doJSON(t, http.MethodPost, srv.URL+"/api/admin/password/reset", superTok, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "env", body["auth_source"])
	role, _ = login(t, srv, "admin-secret-pass")
	assert.Equal(t, "admin", role)
}

func TestAdminAggregateAndExport(t *testing.T) {
	srv := newTestServer(t)
	_, superTok := login(t, srv, "super-secret-pass")
	_, adminTok := login(t, srv, "admin-secret-pass")

	res, _ := doJSON(t, http.MethodPost, srv.URL+"/api/submissions", "", map[string]any{
		"lang":      "en",
		"responses": fullResponses(),
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res, body := doJSON(t, http.MethodGet, srv.URL+"/api/admin/aggregate", superTok, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, body["by_domain"], 5)
	assert.Equal(t, float64(5), body["n_rows"])

	// Superadmin filters narrow the dataset.
	res, body = doJSON(t, http.MethodGet, srv.URL+"/api/admin/aggregate?countries=KEN", superTok, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, float64(0), body["n_rows"])

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/admin/export?format=csv", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+superTok)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "consultation_submissions_flat.csv")
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/admin/export?format=pdf", superTok, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// Advanced analysis stays superadmin-only; plain exports remain open to
	// admins.
	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/admin/aggregate", adminTok, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/admin/export?format=aggxlsx", adminTok, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/admin/export?format=docx", adminTok, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res, _ = doJSON(t, http.MethodGet, srv.URL+"/api/admin/export?format=jsonl", adminTok, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestDiagEndpoint(t *testing.T) {
	srv := newTestServer(t)
	res, body := doJSON(t, http.MethodGet, srv.URL+"/api/admin/diag", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "env", body["admin_source"])
	assert.Equal(t, true, body["superadmin_configured"])
}
