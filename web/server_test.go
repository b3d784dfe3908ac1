// ABOUTME: Tests for the web server routes
// ABOUTME: Drives login, report API, PDF, backup and theme through httptest
package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/reportmaster/app"
	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
)

func setupServer(t *testing.T) (*Server, *app.State) {
	t.Helper()
	store, err := db.OpenStore(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	state, err := app.New(store)
	require.NoError(t, err)
	state.SetClock(func() time.Time { return time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC) })

	srv, err := NewServer(state, []byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return srv, state
}

// login registers a user through the form and returns the session cookie.
func login(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()
	form := url.Values{"username": {"ilton"}, "password": {"s3cret"}, "action": {"register"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func do(srv *Server, cookie *http.Cookie, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

const completeJSON = `{
  "type": "template",
  "omNumber": "80001234",
  "omDescription": "Inspecao da correia",
  "activityExecuted": "Inspecao visual",
  "equipment": "TR-05",
  "local": "Usina 1",
  "technicians": "Ilton, Pedro"
}`

func TestRequiresSession(t *testing.T) {
	srv, _ := setupServer(t)

	rec := do(srv, nil, "GET", "/", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = do(srv, nil, "GET", "/api/reports", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(srv, nil, "GET", "/login", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ReportMaster")
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := setupServer(t)
	login(t, srv)

	form := url.Values{"username": {"ilton"}, "password": {"wrong"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportAPILifecycle(t *testing.T) {
	srv, _ := setupServer(t)
	cookie := login(t, srv)

	rec := do(srv, cookie, "POST", "/api/reports", completeJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var saved models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "2026-07-01", saved.Date)

	rec = do(srv, cookie, "GET", "/api/reports?q=correia", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = do(srv, cookie, "POST", "/api/reports/"+saved.ID+"/promote", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var promoted models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &promoted))
	assert.Equal(t, models.TypeReport, promoted.Type)
	assert.Equal(t, saved.ID, promoted.TemplateID)

	rec = do(srv, cookie, "GET", "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Inspecao da correia")

	rec = do(srv, cookie, "GET", "/reports/"+promoted.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "TR-05")

	rec = do(srv, cookie, "DELETE", "/api/reports/"+promoted.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(srv, cookie, "GET", "/api/reports/"+promoted.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveValidationError(t *testing.T) {
	srv, _ := setupServer(t)
	cookie := login(t, srv)

	rec := do(srv, cookie, "POST", "/api/reports", `{"type":"report","omNumber":"1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Fields)
}

func TestPromoteIncompleteTemplate(t *testing.T) {
	srv, _ := setupServer(t)
	cookie := login(t, srv)

	rec := do(srv, cookie, "POST", "/api/reports", `{"type":"template","omDescription":"x","activityExecuted":"y"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var saved models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))

	rec = do(srv, cookie, "POST", "/api/reports/"+saved.ID+"/promote", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPDFAndShare(t *testing.T) {
	srv, _ := setupServer(t)
	cookie := login(t, srv)

	rec := do(srv, cookie, "POST", "/api/reports", completeJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	var saved models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))

	rec = do(srv, cookie, "GET", "/reports/"+saved.ID+"/pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "RELATORIO_OM_80001234_2026-07-01.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))

	rec = do(srv, cookie, "GET", "/reports/"+saved.ID+"/share", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "https://wa.me/?text="))

	rec = do(srv, cookie, "GET", "/reports/missing/pdf", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBackupRoundTrip(t *testing.T) {
	srv, state := setupServer(t)
	cookie := login(t, srv)

	rec := do(srv, cookie, "POST", "/api/reports", completeJSON)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(srv, cookie, "GET", "/backup", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "backup_")
	backup := rec.Body.String()

	rec = do(srv, cookie, "POST", "/backup", `{"not":"a backup"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	all, err := db.GetReports(state.Store())
	require.NoError(t, err)
	assert.Len(t, all, 1)

	rec = do(srv, cookie, "POST", "/backup", backup)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"imported":1}`, rec.Body.String())
}

func TestSaveNormalizesType(t *testing.T) {
	srv, state := setupServer(t)
	cookie := login(t, srv)

	body := strings.Replace(completeJSON, `"type": "template"`, `"type": "Templates"`, 1)
	rec := do(srv, cookie, "POST", "/api/reports", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(srv, cookie, "GET", "/api/reports?type=template", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, models.TypeTemplate, list[0].Type)

	data, err := db.ExportBackup(state.Store())
	require.NoError(t, err)
	_, err = db.ImportBackup(state.Store(), data)
	require.NoError(t, err)
}

func TestSaveRejectsInvalidEnums(t *testing.T) {
	srv, state := setupServer(t)
	cookie := login(t, srv)

	for _, extra := range []string{
		`"category": "boat"`,
		`"teamShift": "Z"`,
		`"workCenter": "XX999"`,
	} {
		body := strings.Replace(completeJSON, `"type": "template",`, `"type": "template", `+extra+`,`, 1)
		rec := do(srv, cookie, "POST", "/api/reports", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, extra)
	}

	all, err := db.GetReports(state.Store())
	require.NoError(t, err)
	assert.Empty(t, all)

	body := strings.Replace(completeJSON, `"type": "template",`, `"type": "template", "teamShift": "c", "category": "Mobile-Asset",`, 1)
	rec := do(srv, cookie, "POST", "/api/reports", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var saved models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, models.Shift("C"), saved.TeamShift)
	assert.Equal(t, models.CategoryMobileAsset, saved.Category)
}

func TestPromoteReportIsRejected(t *testing.T) {
	srv, _ := setupServer(t)
	cookie := login(t, srv)

	rec := do(srv, cookie, "POST", "/api/reports", completeJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	var tmpl models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tmpl))

	rec = do(srv, cookie, "POST", "/api/reports/"+tmpl.ID+"/promote", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var report models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	rec = do(srv, cookie, "POST", "/api/reports/"+report.ID+"/promote", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThemeToggle(t *testing.T) {
	srv, state := setupServer(t)
	cookie := login(t, srv)

	rec := do(srv, cookie, "POST", "/theme/toggle", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, state.Dark())
}

func TestLogoutClearsSession(t *testing.T) {
	srv, state := setupServer(t)
	cookie := login(t, srv)
	require.NotNil(t, state.Session())

	rec := do(srv, cookie, "POST", "/logout", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Nil(t, state.Session())
}
