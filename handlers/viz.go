// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides generate_graph and dashboard tools for agents
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/reportmaster/app"
	"github.com/harperreed/reportmaster/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type VizHandlers struct {
	state *app.State
}

func NewVizHandlers(state *app.State) *VizHandlers {
	return &VizHandlers{state: state}
}

type GenerateGraphInput struct {
	WorkCenter string `json:"work_center,omitempty" jsonschema:"Limit the graph to one work center"`
}

type GenerateGraphOutput struct {
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(_ context.Context, request *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	generator := viz.NewGraphGenerator(h.state.Store())
	dot, err := generator.GenerateLineageGraph(input.WorkCenter)
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	// Count nodes and edges for stats
	nodeCount := strings.Count(dot, "[label=")
	edgeCount := strings.Count(dot, "->")

	return nil, GenerateGraphOutput{
		DOTSource: dot,
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
	}, nil
}

type DashboardInput struct{}

type DashboardOutput struct {
	Text           string         `json:"text"`
	Templates      int            `json:"templates"`
	Reports        int            `json:"reports"`
	WithPendencies int            `json:"with_pendencies"`
	WithIAMO       int            `json:"with_iamo"`
	Unfinished     int            `json:"unfinished"`
	ByWorkCenter   map[string]int `json:"by_work_center"`
}

func (h *VizHandlers) Dashboard(_ context.Context, request *mcp.CallToolRequest, input DashboardInput) (*mcp.CallToolResult, DashboardOutput, error) {
	stats, err := viz.GenerateDashboardStats(h.state.Store(), h.state.Now())
	if err != nil {
		return nil, DashboardOutput{}, err
	}
	return nil, DashboardOutput{
		Text:           viz.RenderDashboard(stats),
		Templates:      stats.TotalTemplates,
		Reports:        stats.TotalReports,
		WithPendencies: stats.WithPendencies,
		WithIAMO:       stats.WithIAMO,
		Unfinished:     stats.Unfinished,
		ByWorkCenter:   stats.ByWorkCenter,
	}, nil
}
