// ABOUTME: MCP prompt handlers for report workflows
// ABOUTME: Builds review and pendency follow-up prompts from stored reports
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/reportmaster/app"
	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	state *app.State
}

func NewPromptHandlers(state *app.State) *PromptHandlers {
	return &PromptHandlers{state: state}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "report-review":
		return h.getReportReviewPrompt(request.Params.Arguments)
	case "open-pendencies":
		return h.getOpenPendenciesPrompt()
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getReportReviewPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	id, ok := args["report_id"]
	if !ok || id == "" {
		return nil, fmt.Errorf("report_id is required")
	}
	r, err := db.GetReport(h.state.Store(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}

	var text strings.Builder
	text.WriteString("Please review this maintenance report before it is sent:\n\n")
	fmt.Fprintf(&text, "OM: %s\n", r.OMNumber)
	fmt.Fprintf(&text, "Description: %s\n", r.OMDescription)
	fmt.Fprintf(&text, "Equipment: %s (%s)\n", r.Equipment, r.Local)
	fmt.Fprintf(&text, "Date: %s %s-%s\n", r.Date, r.StartTime, r.EndTime)
	fmt.Fprintf(&text, "Shift %s, work center %s, technicians: %s\n", r.TeamShift, r.WorkCenter, r.Technicians)
	fmt.Fprintf(&text, "\nActivities executed:\n%s\n", r.ActivityExecuted)
	if r.IAMODeviation {
		fmt.Fprintf(&text, "\nIAMO deviation: %s\n", r.IAMODescription)
	}
	if r.HasPendencies {
		fmt.Fprintf(&text, "\nPendencies: %s\n", r.PendencyDescription)
	}
	if err := models.ValidateReport(r); err != nil {
		fmt.Fprintf(&text, "\nValidation: %v\n", err)
	}

	text.WriteString("\nPlease check:")
	text.WriteString("\n1. Whether the activity description is clear and complete")
	text.WriteString("\n2. Whether deviations and pendencies are explained")
	text.WriteString("\n3. Any field that is missing or inconsistent")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Review of OM %s", r.OMNumber),
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text.String()}},
		},
	}, nil
}

func (h *PromptHandlers) getOpenPendenciesPrompt() (*mcp.GetPromptResult, error) {
	reports, err := db.FindReports(h.state.Store(), db.ReportFilter{Type: models.TypeReport})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}

	var text strings.Builder
	text.WriteString("These reports were closed with open pendencies:\n\n")
	count := 0
	for _, r := range reports {
		if !r.HasPendencies {
			continue
		}
		count++
		fmt.Fprintf(&text, "- OM %s (%s, %s): %s\n", r.OMNumber, r.Equipment, r.Date, r.PendencyDescription)
	}
	if count == 0 {
		text.WriteString("(none)\n")
	}
	text.WriteString("\nGroup them by equipment and suggest which to schedule first.")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("%d report(s) with pendencies", count),
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text.String()}},
		},
	}, nil
}
