// ABOUTME: Report MCP tool handlers
// ABOUTME: Implements list, get, save, delete, promote, PDF export and share tools
package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/reportmaster/app"
	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
	"github.com/harperreed/reportmaster/render"
	"github.com/harperreed/reportmaster/share"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ReportHandlers struct {
	state *app.State
}

func NewReportHandlers(state *app.State) *ReportHandlers {
	return &ReportHandlers{state: state}
}

type ReportOutput struct {
	ID                  string   `json:"id"`
	Type                string   `json:"type"`
	Category            string   `json:"category,omitempty"`
	TemplateID          string   `json:"template_id,omitempty"`
	OMNumber            string   `json:"om_number"`
	OMDescription       string   `json:"om_description"`
	ActivityExecuted    string   `json:"activity_executed"`
	Date                string   `json:"date"`
	Equipment           string   `json:"equipment"`
	Local               string   `json:"local"`
	ActivityType        string   `json:"activity_type"`
	StartTime           string   `json:"start_time"`
	EndTime             string   `json:"end_time"`
	IAMODeviation       bool     `json:"iamo_deviation"`
	IAMODescription     string   `json:"iamo_description,omitempty"`
	IsFinished          bool     `json:"is_finished"`
	HasPendencies       bool     `json:"has_pendencies"`
	PendencyDescription string   `json:"pendency_description,omitempty"`
	TeamShift           string   `json:"team_shift"`
	WorkCenter          string   `json:"work_center"`
	Technicians         []string `json:"technicians"`
	PhotoCount          int      `json:"photo_count"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at"`
}

func reportToOutput(r *models.Report) ReportOutput {
	techs := models.SplitTechnicians(r.Technicians)
	if techs == nil {
		techs = []string{}
	}
	return ReportOutput{
		ID:                  r.ID,
		Type:                string(r.Type),
		Category:            string(r.Category),
		TemplateID:          r.TemplateID,
		OMNumber:            r.OMNumber,
		OMDescription:       r.OMDescription,
		ActivityExecuted:    r.ActivityExecuted,
		Date:                r.Date,
		Equipment:           r.Equipment,
		Local:               r.Local,
		ActivityType:        r.ActivityType,
		StartTime:           r.StartTime,
		EndTime:             r.EndTime,
		IAMODeviation:       r.IAMODeviation,
		IAMODescription:     r.IAMODescription,
		IsFinished:          r.IsFinished,
		HasPendencies:       r.HasPendencies,
		PendencyDescription: r.PendencyDescription,
		TeamShift:           string(r.TeamShift),
		WorkCenter:          r.WorkCenter,
		Technicians:         techs,
		PhotoCount:          len(r.Photos),
		CreatedAt:           formatMillis(r.CreatedAt),
		UpdatedAt:           formatMillis(r.UpdatedAt),
	}
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

type ListReportsInput struct {
	Type     string `json:"type,omitempty" jsonschema:"Filter by record type: template or report"`
	Category string `json:"category,omitempty" jsonschema:"Filter by category: fixed-asset or mobile-asset"`
	Query    string `json:"query,omitempty" jsonschema:"Case-insensitive search over OM number, description and equipment"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

type ListReportsOutput struct {
	Reports []ReportOutput `json:"reports"`
	Total   int            `json:"total"`
}

func (h *ReportHandlers) ListReports(_ context.Context, request *mcp.CallToolRequest, input ListReportsInput) (*mcp.CallToolResult, ListReportsOutput, error) {
	var filter db.ReportFilter
	if input.Type != "" {
		t, ok := models.ParseReportType(input.Type)
		if !ok {
			return nil, ListReportsOutput{}, fmt.Errorf("invalid type %q (valid: template, report)", input.Type)
		}
		filter.Type = t
	}
	if input.Category != "" {
		c, ok := models.ParseCategory(input.Category)
		if !ok {
			return nil, ListReportsOutput{}, fmt.Errorf("invalid category %q (valid: fixed-asset, mobile-asset)", input.Category)
		}
		filter.Category = c
	}
	filter.Query = input.Query

	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	reports, err := db.FindReports(h.state.Store(), filter)
	if err != nil {
		return nil, ListReportsOutput{}, fmt.Errorf("failed to list reports: %w", err)
	}

	out := ListReportsOutput{Reports: []ReportOutput{}, Total: len(reports)}
	for i, r := range reports {
		if i >= limit {
			break
		}
		out.Reports = append(out.Reports, reportToOutput(r))
	}
	return nil, out, nil
}

type ReportIDInput struct {
	ID string `json:"id" jsonschema:"Report or template ID (required)"`
}

func (h *ReportHandlers) GetReport(_ context.Context, request *mcp.CallToolRequest, input ReportIDInput) (*mcp.CallToolResult, ReportOutput, error) {
	if input.ID == "" {
		return nil, ReportOutput{}, fmt.Errorf("id is required")
	}
	r, err := db.GetReport(h.state.Store(), input.ID)
	if err != nil {
		return nil, ReportOutput{}, err
	}
	return nil, reportToOutput(r), nil
}

// SaveReportInput creates a template when ID is empty. With an ID, only the
// fields that are present replace the stored values; an empty string clears
// a text field.
type SaveReportInput struct {
	ID                  string  `json:"id,omitempty" jsonschema:"ID of the record to update; omit to create a new template"`
	Category            string  `json:"category,omitempty" jsonschema:"fixed-asset or mobile-asset"`
	OMNumber            *string `json:"om_number,omitempty" jsonschema:"Work order (OM) number"`
	OMDescription       *string `json:"om_description,omitempty" jsonschema:"Work order description"`
	ActivityExecuted    *string `json:"activity_executed,omitempty" jsonschema:"Activities executed; one item per line, checklist markers allowed"`
	Date                string  `json:"date,omitempty" jsonschema:"Execution date (YYYY-MM-DD)"`
	Equipment           *string `json:"equipment,omitempty" jsonschema:"Equipment tag"`
	Local               *string `json:"local,omitempty" jsonschema:"Location"`
	ActivityType        string  `json:"activity_type,omitempty" jsonschema:"preventiva or corretiva"`
	StartTime           *string `json:"start_time,omitempty" jsonschema:"Start time (HH:MM)"`
	EndTime             *string `json:"end_time,omitempty" jsonschema:"End time (HH:MM)"`
	IAMODeviation       *bool   `json:"iamo_deviation,omitempty" jsonschema:"Whether an IAMO deviation occurred"`
	IAMODescription     *string `json:"iamo_description,omitempty" jsonschema:"IAMO deviation description"`
	IsFinished          *bool   `json:"is_finished,omitempty" jsonschema:"Whether the activity was finished"`
	HasPendencies       *bool   `json:"has_pendencies,omitempty" jsonschema:"Whether pendencies remain"`
	PendencyDescription *string `json:"pendency_description,omitempty" jsonschema:"Pendency description"`
	TeamShift           string  `json:"team_shift,omitempty" jsonschema:"Shift letter A-D"`
	WorkCenter          string  `json:"work_center,omitempty" jsonschema:"Work center code"`
	Technicians         *string `json:"technicians,omitempty" jsonschema:"Comma-separated technician names"`
}

func (in SaveReportInput) apply(r *models.Report) error {
	if in.Category != "" {
		c, ok := models.ParseCategory(in.Category)
		if !ok {
			return fmt.Errorf("invalid category %q", in.Category)
		}
		r.Category = c
	}
	if in.TeamShift != "" {
		s := models.Shift(strings.ToUpper(in.TeamShift))
		if !models.IsValidShift(s) {
			return fmt.Errorf("invalid team_shift %q", in.TeamShift)
		}
		r.TeamShift = s
	}
	if in.WorkCenter != "" {
		if !models.IsValidWorkCenter(in.WorkCenter) {
			return fmt.Errorf("invalid work_center %q", in.WorkCenter)
		}
		r.WorkCenter = in.WorkCenter
	}
	if in.ActivityType != "" {
		if in.ActivityType != models.ActivityPreventive && in.ActivityType != models.ActivityCorrective {
			return fmt.Errorf("invalid activity_type %q", in.ActivityType)
		}
		r.ActivityType = in.ActivityType
	}
	if in.Date != "" {
		if _, err := time.Parse(models.DateLayout, in.Date); err != nil {
			return fmt.Errorf("invalid date %q: %w", in.Date, err)
		}
		r.Date = in.Date
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&r.OMNumber, in.OMNumber)
	set(&r.OMDescription, in.OMDescription)
	set(&r.ActivityExecuted, in.ActivityExecuted)
	set(&r.Equipment, in.Equipment)
	set(&r.Local, in.Local)
	set(&r.StartTime, in.StartTime)
	set(&r.EndTime, in.EndTime)
	set(&r.IAMODescription, in.IAMODescription)
	set(&r.PendencyDescription, in.PendencyDescription)

	if in.IAMODeviation != nil {
		r.IAMODeviation = *in.IAMODeviation
	}
	if in.IsFinished != nil {
		r.IsFinished = *in.IsFinished
	}
	if in.HasPendencies != nil {
		r.HasPendencies = *in.HasPendencies
	}
	if in.Technicians != nil {
		r.Technicians = strings.Join(models.SplitTechnicians(*in.Technicians), ", ")
	}
	return nil
}

func (h *ReportHandlers) SaveReport(_ context.Context, request *mcp.CallToolRequest, input SaveReportInput) (*mcp.CallToolResult, ReportOutput, error) {
	store := h.state.Store()

	var r *models.Report
	if input.ID == "" {
		r = models.NewReport(h.state.Now())
	} else {
		existing, err := db.GetReport(store, input.ID)
		if err != nil {
			return nil, ReportOutput{}, err
		}
		r = existing
	}

	if err := input.apply(r); err != nil {
		return nil, ReportOutput{}, err
	}
	if err := models.Validate(r); err != nil {
		return nil, ReportOutput{}, err
	}
	if err := db.SaveReport(store, r); err != nil {
		return nil, ReportOutput{}, fmt.Errorf("failed to save report: %w", err)
	}
	return nil, reportToOutput(r), nil
}

type DeleteReportOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (h *ReportHandlers) DeleteReport(_ context.Context, request *mcp.CallToolRequest, input ReportIDInput) (*mcp.CallToolResult, DeleteReportOutput, error) {
	if input.ID == "" {
		return nil, DeleteReportOutput{}, fmt.Errorf("id is required")
	}
	if err := db.DeleteReport(h.state.Store(), input.ID); err != nil {
		return nil, DeleteReportOutput{}, err
	}
	return nil, DeleteReportOutput{ID: input.ID, Deleted: true}, nil
}

// PromoteTemplate reports missing fields in the error text so the agent can
// fill them in with save_report and try again.
func (h *ReportHandlers) PromoteTemplate(_ context.Context, request *mcp.CallToolRequest, input ReportIDInput) (*mcp.CallToolResult, ReportOutput, error) {
	if input.ID == "" {
		return nil, ReportOutput{}, fmt.Errorf("id is required")
	}
	r, err := db.PromoteTemplate(h.state.Store(), input.ID, h.state.Now())
	if err != nil {
		return nil, ReportOutput{}, err
	}
	return nil, reportToOutput(r), nil
}

type ExportPDFInput struct {
	ID     string `json:"id" jsonschema:"Report or template ID (required)"`
	Dir    string `json:"dir,omitempty" jsonschema:"Directory to write the PDF into (default: current directory)"`
	Inline bool   `json:"inline,omitempty" jsonschema:"Return the PDF as base64 instead of writing a file"`
}

type ExportPDFOutput struct {
	Filename   string `json:"filename"`
	Path       string `json:"path,omitempty"`
	DocumentID string `json:"document_id"`
	Pages      int    `json:"pages"`
	Bytes      int    `json:"bytes"`
	Base64     string `json:"base64,omitempty"`
}

func (h *ReportHandlers) ExportReportPDF(_ context.Context, request *mcp.CallToolRequest, input ExportPDFInput) (*mcp.CallToolResult, ExportPDFOutput, error) {
	if input.ID == "" {
		return nil, ExportPDFOutput{}, fmt.Errorf("id is required")
	}
	r, err := db.GetReport(h.state.Store(), input.ID)
	if err != nil {
		return nil, ExportPDFOutput{}, err
	}

	doc, err := render.Render(r, render.Options{Now: h.state.Now})
	if err != nil {
		return nil, ExportPDFOutput{}, fmt.Errorf("failed to render PDF: %w", err)
	}

	out := ExportPDFOutput{
		Filename:   doc.Filename,
		DocumentID: doc.ID,
		Pages:      doc.Pages,
		Bytes:      len(doc.Data),
	}
	if input.Inline {
		out.Base64 = base64.StdEncoding.EncodeToString(doc.Data)
		return nil, out, nil
	}

	dir := input.Dir
	if dir == "" {
		dir = "."
	}
	out.Path = filepath.Join(dir, doc.Filename)
	if err := os.WriteFile(out.Path, doc.Data, 0644); err != nil {
		return nil, ExportPDFOutput{}, fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil, out, nil
}

type ShareReportOutput struct {
	Summary string `json:"summary"`
	Link    string `json:"link"`
}

func (h *ReportHandlers) ShareReport(_ context.Context, request *mcp.CallToolRequest, input ReportIDInput) (*mcp.CallToolResult, ShareReportOutput, error) {
	if input.ID == "" {
		return nil, ShareReportOutput{}, fmt.Errorf("id is required")
	}
	r, err := db.GetReport(h.state.Store(), input.ID)
	if err != nil {
		return nil, ShareReportOutput{}, err
	}
	return nil, ShareReportOutput{Summary: share.Summary(r), Link: share.Link(r)}, nil
}
