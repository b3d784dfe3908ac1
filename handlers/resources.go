// ABOUTME: MCP resource handlers exposing stored reports
// ABOUTME: Serves reportmaster:// URIs for the collection, one record and the shift templates
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/reportmaster/app"
	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "reportmaster://"

type ResourceHandlers struct {
	state *app.State
}

func NewResourceHandlers(state *app.State) *ResourceHandlers {
	return &ResourceHandlers{state: state}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, uriScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", uriScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, uriScheme), "/")
	switch parts[0] {
	case "reports":
		if len(parts) == 1 || parts[1] == "" {
			return h.readReports(uri, db.ReportFilter{})
		}
		return h.readReport(uri, parts[1])
	case "templates":
		return h.readReports(uri, db.ReportFilter{Type: models.TypeTemplate})
	case "shift-templates":
		templates, err := db.GetShiftTemplates(h.state.Store())
		if err != nil {
			return nil, err
		}
		if templates == nil {
			templates = map[string]string{}
		}
		return jsonResource(uri, templates)
	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func (h *ResourceHandlers) readReports(uri string, filter db.ReportFilter) (*mcp.ReadResourceResult, error) {
	reports, err := db.FindReports(h.state.Store(), filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}
	out := make([]ReportOutput, len(reports))
	for i, r := range reports {
		out[i] = reportToOutput(r)
	}
	return jsonResource(uri, out)
}

func (h *ResourceHandlers) readReport(uri, id string) (*mcp.ReadResourceResult, error) {
	r, err := db.GetReport(h.state.Store(), id)
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, reportToOutput(r))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
