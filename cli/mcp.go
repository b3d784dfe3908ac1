// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server on stdio for desktop agent integration
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/harperreed/reportmaster/app"
	"github.com/harperreed/reportmaster/handlers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPVersion is reported to clients in the server implementation info.
var MCPVersion = "dev"

// NewMCPServer builds the server with every report tool, resource and prompt
// registered.
func NewMCPServer(state *app.State) *mcp.Server {
	reportHandlers := handlers.NewReportHandlers(state)
	vizHandlers := handlers.NewVizHandlers(state)
	resourceHandlers := handlers.NewResourceHandlers(state)
	promptHandlers := handlers.NewPromptHandlers(state)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "reportmaster",
		Version: MCPVersion,
	}, nil)

	// Register tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_reports",
		Description: "List templates and reports, newest first, with optional type, category and text filters",
	}, reportHandlers.ListReports)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_report",
		Description: "Get one template or report by ID",
	}, reportHandlers.GetReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_report",
		Description: "Create a new template, or update fields of an existing template or report",
	}, reportHandlers.SaveReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_report",
		Description: "Delete a template or report by ID",
	}, reportHandlers.DeleteReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "promote_template",
		Description: "Create a dated report from a complete template; fails listing the missing fields otherwise",
	}, reportHandlers.PromoteTemplate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_report_pdf",
		Description: "Render a template or report to PDF, written to a directory or returned as base64",
	}, reportHandlers.ExportReportPDF)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "share_report",
		Description: "Build the plain-text summary and WhatsApp link for a report",
	}, reportHandlers.ShareReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate the GraphViz lineage graph of work centers, templates and reports",
	}, vizHandlers.GenerateGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dashboard",
		Description: "Summary counts of stored templates and reports",
	}, vizHandlers.Dashboard)

	// Resources
	server.AddResource(&mcp.Resource{
		URI:      "reportmaster://reports",
		Name:     "reports",
		MIMEType: "application/json",
	}, resourceHandlers.ReadResource)
	server.AddResource(&mcp.Resource{
		URI:      "reportmaster://templates",
		Name:     "templates",
		MIMEType: "application/json",
	}, resourceHandlers.ReadResource)
	server.AddResource(&mcp.Resource{
		URI:      "reportmaster://shift-templates",
		Name:     "shift-templates",
		MIMEType: "application/json",
	}, resourceHandlers.ReadResource)
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "reportmaster://reports/{id}",
		Name:        "report",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	// Prompts
	server.AddPrompt(&mcp.Prompt{
		Name:        "report-review",
		Description: "Review a report for missing or unclear information",
		Arguments: []*mcp.PromptArgument{
			{Name: "report_id", Description: "ID of the report to review", Required: true},
		},
	}, promptHandlers.GetPrompt)
	server.AddPrompt(&mcp.Prompt{
		Name:        "open-pendencies",
		Description: "Collect reports closed with open pendencies",
	}, promptHandlers.GetPrompt)

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(state *app.State) error {
	log.Info("starting MCP server")
	server := NewMCPServer(state)

	// Run server on stdio transport
	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
