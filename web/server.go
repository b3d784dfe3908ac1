// ABOUTME: Web UI and JSON API server with embedded templates
// ABOUTME: Cookie-session login, report list/detail pages, PDF download, backup and theme
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/harperreed/reportmaster/app"
	"github.com/harperreed/reportmaster/auth"
	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
	"github.com/harperreed/reportmaster/render"
	"github.com/harperreed/reportmaster/share"
	"github.com/harperreed/reportmaster/viz"
)

//go:embed templates/*
var templatesFS embed.FS

const (
	sessionName = "reportmaster"
	userKey     = "username"

	// Backup uploads are photo-heavy.
	maxUploadBytes = 256 << 20
)

type Server struct {
	state     *app.State
	templates *template.Template
	cookies   *sessions.CookieStore
	generator *viz.GraphGenerator
	router    *mux.Router
}

// NewServer builds the router. An empty secret gets a random key, which logs
// everyone out on restart.
func NewServer(state *app.State, secret []byte) (*Server, error) {
	funcMap := template.FuncMap{
		"typeLabel": func(t models.ReportType) string {
			if t == models.TypeTemplate {
				return "Template"
			}
			return "Relatorio"
		},
		"yesNo": func(b bool) string {
			if b {
				return "SIM"
			}
			return "NAO"
		},
		"dash": func(s string) string {
			if strings.TrimSpace(s) == "" {
				return "-"
			}
			return s
		},
		"millis": func(ms int64) string {
			if ms == 0 {
				return "-"
			}
			return time.UnixMilli(ms).Format("02/01/2006 15:04")
		},
		"lines": func(s string) []string {
			return strings.Split(s, "\n")
		},
		"add": func(a, b int) int {
			return a + b
		},
		// Photos are data URLs; html/template would otherwise rewrite them.
		"imgsrc": func(s string) template.URL {
			if strings.HasPrefix(s, "data:image/") {
				return template.URL(s)
			}
			return ""
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
	}
	cookies := sessions.NewCookieStore(secret)
	cookies.Options.Path = "/"
	cookies.Options.HttpOnly = true
	cookies.Options.SameSite = http.SameSiteLaxMode
	cookies.Options.MaxAge = 7 * 24 * 3600

	s := &Server{
		state:     state,
		templates: tmpl,
		cookies:   cookies,
		generator: viz.NewGraphGenerator(state.Store()),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/login", s.handleLoginPage).Methods("GET")
	r.HandleFunc("/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/logout", s.handleLogout).Methods("GET", "POST")

	// Pages
	r.HandleFunc("/", s.requireAuth(s.handleList)).Methods("GET")
	r.HandleFunc("/graph", s.requireAuth(s.handleGraph)).Methods("GET")
	r.HandleFunc("/reports/{id}", s.requireAuth(s.handleDetail)).Methods("GET")
	r.HandleFunc("/reports/{id}/pdf", s.requireAuth(s.handlePDF)).Methods("GET")
	r.HandleFunc("/reports/{id}/share", s.requireAuth(s.handleShare)).Methods("GET")
	r.HandleFunc("/reports/{id}/delete", s.requireAuth(s.handleDeleteForm)).Methods("POST")
	r.HandleFunc("/backup", s.requireAuth(s.handleExport)).Methods("GET")
	r.HandleFunc("/backup", s.requireAuth(s.handleImport)).Methods("POST")
	r.HandleFunc("/theme/toggle", s.requireAuth(s.handleThemeToggle)).Methods("POST")

	// JSON API
	r.HandleFunc("/api/reports", s.requireAuth(s.handleAPIList)).Methods("GET")
	r.HandleFunc("/api/reports", s.requireAuth(s.handleAPISave)).Methods("POST")
	r.HandleFunc("/api/reports/{id}", s.requireAuth(s.handleAPIGet)).Methods("GET")
	r.HandleFunc("/api/reports/{id}", s.requireAuth(s.handleAPIDelete)).Methods("DELETE")
	r.HandleFunc("/api/reports/{id}/promote", s.requireAuth(s.handlePromote)).Methods("POST")

	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("starting web server", "url", "http://"+addr)
	return srv.ListenAndServe()
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.cookies.Get(r, sessionName)
		if name, ok := session.Values[userKey].(string); ok && name != "" {
			next(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

func (s *Server) currentUser(r *http.Request) string {
	session, _ := s.cookies.Get(r, sessionName)
	name, _ := session.Values[userKey].(string)
	return name
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, http.StatusOK, "login.html", map[string]any{
		"Title":    "Login",
		"Dark":     s.state.Dark(),
		"Username": "",
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	var err error
	if r.FormValue("action") == "register" {
		err = auth.Register(s.state.Store(), username, password)
	}
	if err == nil {
		_, err = s.state.Login(username, password)
	}
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, auth.ErrUserExists) || errors.Is(err, auth.ErrEmptyCredentials) {
			status = http.StatusBadRequest
		}
		s.renderTemplate(w, status, "login.html", map[string]any{
			"Title":    "Login",
			"Dark":     s.state.Dark(),
			"Error":    err.Error(),
			"Username": username,
		})
		return
	}

	session, _ := s.cookies.Get(r, sessionName)
	session.Values[userKey] = username
	if err := session.Save(r, w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.state.Logout(); err != nil {
		log.Warn("failed to clear stored session", "err", err)
	}
	session, _ := s.cookies.Get(r, sessionName)
	delete(session.Values, userKey)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	tab := models.TypeTemplate
	if r.URL.Query().Get("tab") == "reports" {
		tab = models.TypeReport
	}
	query := r.URL.Query().Get("q")
	category, _ := models.ParseCategory(r.URL.Query().Get("category"))

	reports, err := db.FindReports(s.state.Store(), db.ReportFilter{Type: tab, Category: category, Query: query})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "layout.html", map[string]any{
		"Title":           "Relatorios",
		"ContentTemplate": "list-content",
		"Dark":            s.state.Dark(),
		"User":            s.currentUser(r),
		"Tab":             string(tab),
		"Query":           query,
		"Category":        string(category),
		"Reports":         reports,
	})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	report, ok := s.loadReport(w, r)
	if !ok {
		return
	}

	data := map[string]any{
		"Title":           "OM " + report.OMNumber,
		"ContentTemplate": "report-content",
		"Dark":            s.state.Dark(),
		"User":            s.currentUser(r),
		"Report":          report,
		"Technicians":     models.SplitTechnicians(report.Technicians),
	}
	if report.IsTemplate() {
		if err := models.ValidateReport(report); err != nil {
			var verr *models.ValidationError
			if errors.As(err, &verr) {
				data["Missing"] = verr.Fields
			}
		}
	}
	if msg := r.URL.Query().Get("error"); msg != "" {
		data["Error"] = msg
	}
	s.renderTemplate(w, http.StatusOK, "layout.html", data)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	svg, err := s.generator.GenerateLineageSVG(r.URL.Query().Get("work_center"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	report, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	doc, err := render.Render(report, render.Options{Now: s.state.Now})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	_, _ = w.Write(doc.Data)
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	report, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	http.Redirect(w, r, share.Link(report), http.StatusFound)
}

func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := db.DeleteReport(s.state.Store(), id); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := db.ExportBackup(s.state.Store())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", db.BackupFilename(s.state.Now())))
	_, _ = w.Write(data)
}

// handleImport accepts a multipart upload in the "file" field or a raw JSON
// body. The stored collection is replaced only when the whole file parses.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var data []byte
	var err error
	form := strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
	if form {
		file, _, ferr := r.FormFile("file")
		if ferr != nil {
			http.Error(w, "Missing backup file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, err = io.ReadAll(file)
	} else {
		data, err = io.ReadAll(r.Body)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := db.ImportBackup(s.state.Store(), data)
	if err != nil {
		writeError(w, err)
		return
	}
	if form {
		http.Redirect(w, r, "/?tab=reports", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": len(b.Reports)})
}

func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	if _, err := s.state.ToggleTheme(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	back := r.Referer()
	if back == "" {
		back = "/"
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	var filter db.ReportFilter
	q := r.URL.Query()
	if v := q.Get("type"); v != "" {
		t, ok := models.ParseReportType(v)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid type"})
			return
		}
		filter.Type = t
	}
	c, ok := models.ParseCategory(q.Get("category"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return
	}
	filter.Category = c
	filter.Query = q.Get("q")

	reports, err := db.FindReports(s.state.Store(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if reports == nil {
		reports = []*models.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// handleAPISave creates or replaces a record. Fields missing from the body
// take the defaults of a fresh form.
func (s *Server) handleAPISave(w http.ResponseWriter, r *http.Request) {
	report := models.NewReport(s.state.Now())
	report.ID = ""
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(report); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if err := normalizeReport(report); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if report.Photos == nil {
		report.Photos = []models.ReportPhoto{}
	}

	if err := models.Validate(report); err != nil {
		writeError(w, err)
		return
	}
	if err := db.SaveReport(s.state.Store(), report); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// normalizeReport canonicalizes the enum fields of a decoded body and rejects
// values the other front ends refuse too.
func normalizeReport(r *models.Report) error {
	t, ok := models.ParseReportType(string(r.Type))
	if !ok {
		return fmt.Errorf("invalid type %q", r.Type)
	}
	r.Type = t

	c, ok := models.ParseCategory(string(r.Category))
	if !ok {
		return fmt.Errorf("invalid category %q", r.Category)
	}
	r.Category = c

	r.TeamShift = models.Shift(strings.ToUpper(strings.TrimSpace(string(r.TeamShift))))
	if !models.IsValidShift(r.TeamShift) {
		return fmt.Errorf("invalid shift %q", r.TeamShift)
	}
	if !models.IsValidWorkCenter(r.WorkCenter) {
		return fmt.Errorf("invalid work center %q", r.WorkCenter)
	}
	return nil
}

func (s *Server) handleAPIGet(w http.ResponseWriter, r *http.Request) {
	report, err := db.GetReport(s.state.Store(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAPIDelete(w http.ResponseWriter, r *http.Request) {
	if err := db.DeleteReport(s.state.Store(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePromote answers JSON to API clients and redirects browser forms.
func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	form := strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")

	report, err := db.PromoteTemplate(s.state.Store(), id, s.state.Now())
	if err != nil {
		if form {
			http.Redirect(w, r, "/reports/"+id+"?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}
		writeError(w, err)
		return
	}
	if form {
		http.Redirect(w, r, "/reports/"+report.ID, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) loadReport(w http.ResponseWriter, r *http.Request) (*models.Report, bool) {
	report, err := db.GetReport(s.state.Store(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.NotFound(w, r)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return nil, false
	}
	return report, true
}

func (s *Server) renderTemplate(w http.ResponseWriter, status int, name string, data any) {
	var buf strings.Builder
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error("template error", "template", name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, buf.String())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response", "err", err)
	}
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": err.Error(), "fields": verr.Fields})
	case errors.Is(err, db.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, db.ErrInvalidBackup), errors.Is(err, models.ErrNotTemplate):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
