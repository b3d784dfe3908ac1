// ABOUTME: Data models for maintenance reports and templates
// ABOUTME: Defines Report, ReportPhoto, User and Session plus their enum values
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReportType distinguishes reusable templates from dated reports.
type ReportType string

const (
	TypeTemplate ReportType = "template"
	TypeReport   ReportType = "report"
)

// Category is the optional asset category of a report.
type Category string

const (
	CategoryFixedAsset  Category = "fixed-asset"
	CategoryMobileAsset Category = "mobile-asset"
)

// ActivityType constants.
const (
	ActivityPreventive = "preventiva"
	ActivityCorrective = "corretiva"
)

// Shift is one of the four rotating work crews.
type Shift string

const (
	ShiftA Shift = "A"
	ShiftB Shift = "B"
	ShiftC Shift = "C"
	ShiftD Shift = "D"
)

// Theme preference values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type ReportPhoto struct {
	ID        string `json:"id"`
	DataURL   string `json:"dataUrl"`
	Timestamp int64  `json:"timestamp"`
	Caption   string `json:"caption,omitempty"`
}

// Report is either a template or a dated report. JSON names match the
// persisted layout so existing backups load unchanged.
type Report struct {
	ID                  string        `json:"id"`
	Type                ReportType    `json:"type"`
	Category            Category      `json:"category,omitempty"`
	TemplateID          string        `json:"templateId,omitempty"`
	OMDescription       string        `json:"omDescription" validate:"required"`
	ActivityExecuted    string        `json:"activityExecuted" validate:"required"`
	Date                string        `json:"date" validate:"required"`
	OMNumber            string        `json:"omNumber" validate:"required"`
	Equipment           string        `json:"equipment" validate:"required"`
	Local               string        `json:"local" validate:"required"`
	ActivityType        string        `json:"activityType"`
	StartTime           string        `json:"startTime" validate:"required"`
	EndTime             string        `json:"endTime" validate:"required"`
	IAMODeviation       bool          `json:"iamoDeviation"`
	IAMODescription     string        `json:"iamoDescription,omitempty" validate:"required_if=IAMODeviation true"`
	IsFinished          bool          `json:"isFinished"`
	HasPendencies       bool          `json:"hasPendencies"`
	PendencyDescription string        `json:"pendencyDescription,omitempty" validate:"required_if=HasPendencies true"`
	TeamShift           Shift         `json:"teamShift"`
	WorkCenter          string        `json:"workCenter"`
	Technicians         string        `json:"technicians" validate:"required"`
	Photos              []ReportPhoto `json:"photos"`
	CreatedAt           int64         `json:"createdAt"`
	UpdatedAt           int64         `json:"updatedAt"`
}

type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Session struct {
	Username  string `json:"username"`
	LoginTime int64  `json:"loginTime"`
}

// NewReport returns a blank template with the defaults of a fresh form.
func NewReport(now time.Time) *Report {
	return &Report{
		ID:           uuid.NewString(),
		Type:         TypeTemplate,
		Date:         now.Format(DateLayout),
		ActivityType: ActivityPreventive,
		StartTime:    "08:00",
		EndTime:      "17:00",
		IsFinished:   true,
		TeamShift:    ShiftA,
		WorkCenter:   WorkCenters[0],
		Photos:       []ReportPhoto{},
	}
}

// DateLayout is the calendar-day format of Report.Date.
const DateLayout = "2006-01-02"

// Clone returns a deep copy; photos are copied so the two records never share
// a backing array.
func (r *Report) Clone() *Report {
	c := *r
	if r.Photos != nil {
		c.Photos = make([]ReportPhoto, len(r.Photos))
		copy(c.Photos, r.Photos)
	}
	return &c
}

// IsTemplate reports whether r is a reusable template.
func (r *Report) IsTemplate() bool {
	return r.Type == TypeTemplate
}

// Photo returns the photo with the given id, or nil.
func (r *Report) Photo(id string) *ReportPhoto {
	for i := range r.Photos {
		if r.Photos[i].ID == id {
			return &r.Photos[i]
		}
	}
	return nil
}

// RemovePhoto drops the photo with the given id and reports whether it existed.
func (r *Report) RemovePhoto(id string) bool {
	for i := range r.Photos {
		if r.Photos[i].ID == id {
			r.Photos = append(r.Photos[:i], r.Photos[i+1:]...)
			return true
		}
	}
	return false
}

// Matches reports whether query is a case-insensitive substring of the OM
// number, OM description or equipment. An empty query matches everything.
func (r *Report) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.OMNumber), q) ||
		strings.Contains(strings.ToLower(r.OMDescription), q) ||
		strings.Contains(strings.ToLower(r.Equipment), q)
}

// ParseReportType accepts "template"/"report" (and the plural forms).
func ParseReportType(s string) (ReportType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "template", "templates":
		return TypeTemplate, true
	case "report", "reports":
		return TypeReport, true
	}
	return "", false
}

// ParseCategory accepts the category values; empty means no category.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", true
	case CategoryFixedAsset:
		return CategoryFixedAsset, true
	case CategoryMobileAsset:
		return CategoryMobileAsset, true
	}
	return "", false
}
