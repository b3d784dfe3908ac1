// ABOUTME: Visualization CLI commands
// ABOUTME: Handles viz dashboard and lineage graph generation
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/viz"
)

// VizGraphCommand generates the work center / template / report lineage graph.
func VizGraphCommand(store db.Store, args []string) error {
	fs := flag.NewFlagSet("viz graph", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	workCenter := fs.String("work-center", "", "Only include this work center")
	format := fs.String("format", "dot", "Output format: dot or svg")
	_ = fs.Parse(args)

	generator := viz.NewGraphGenerator(store)

	var data []byte
	switch *format {
	case "dot":
		dot, err := generator.GenerateLineageGraph(*workCenter)
		if err != nil {
			return err
		}
		data = []byte(dot)
	case "svg":
		svg, err := generator.GenerateLineageSVG(*workCenter)
		if err != nil {
			return err
		}
		data = svg
	default:
		return fmt.Errorf("unknown format: %s (valid: dot, svg)", *format)
	}

	if *output != "" {
		return os.WriteFile(*output, data, 0644)
	}
	_, err := out.Write(data)
	return err
}

func VizDashboardCommand(store db.Store, args []string) error {
	stats, err := viz.GenerateDashboardStats(store, now())
	if err != nil {
		return fmt.Errorf("failed to generate dashboard stats: %w", err)
	}

	_, _ = fmt.Fprint(out, viz.RenderDashboard(stats))
	return nil
}
