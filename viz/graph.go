// ABOUTME: GraphViz lineage graph of work centers, templates and reports
// ABOUTME: Shows which template each dated report was promoted from
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
)

const noWorkCenter = "SEM CENTRO"

type GraphGenerator struct {
	store db.Store
}

func NewGraphGenerator(store db.Store) *GraphGenerator {
	return &GraphGenerator{store: store}
}

// GenerateLineageGraph returns the DOT source of the lineage graph. A
// non-empty workCenter limits the graph to that work center.
func (g *GraphGenerator) GenerateLineageGraph(workCenter string) (string, error) {
	out, err := g.render(workCenter, graphviz.XDOT)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// GenerateLineageSVG renders the same graph as SVG.
func (g *GraphGenerator) GenerateLineageSVG(workCenter string) ([]byte, error) {
	return g.render(workCenter, graphviz.SVG)
}

func (g *GraphGenerator) render(workCenter string, format graphviz.Format) ([]byte, error) {
	reports, err := db.GetReports(g.store)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}

	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.LRRank)
	graph.SetLabel("Report lineage")

	centers := make(map[string]*cgraph.Node)
	centerNode := func(wc string) (*cgraph.Node, error) {
		if wc == "" {
			wc = noWorkCenter
		}
		if n, ok := centers[wc]; ok {
			return n, nil
		}
		n, err := graph.CreateNodeByName("wc_" + wc)
		if err != nil {
			return nil, fmt.Errorf("failed to create work center node: %w", err)
		}
		n.SetLabel(wc)
		n.SetShape("box")
		n.SetStyle("filled")
		n.SetFillColor("lightblue")
		centers[wc] = n
		return n, nil
	}

	var kept []*models.Report
	for _, r := range reports {
		if workCenter != "" && r.WorkCenter != workCenter {
			continue
		}
		kept = append(kept, r)
	}

	templates := make(map[string]*cgraph.Node)
	for _, r := range kept {
		if !r.IsTemplate() {
			continue
		}
		n, err := graph.CreateNodeByName("tpl_" + r.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create template node: %w", err)
		}
		n.SetLabel(fmt.Sprintf("%s\n(Template)", shorten(r.OMDescription, 40)))
		n.SetShape("ellipse")
		n.SetStyle("filled")
		n.SetFillColor("lightgreen")
		templates[r.ID] = n

		wc, err := centerNode(r.WorkCenter)
		if err != nil {
			return nil, err
		}
		if _, err := graph.CreateEdgeByName("template", wc, n); err != nil {
			return nil, fmt.Errorf("failed to create edge: %w", err)
		}
	}

	for _, r := range kept {
		if r.IsTemplate() {
			continue
		}
		n, err := graph.CreateNodeByName("rep_" + r.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create report node: %w", err)
		}
		n.SetLabel(fmt.Sprintf("OM %s\n%s", r.OMNumber, r.Date))
		n.SetShape("note")
		n.SetStyle("filled")
		n.SetFillColor("lightyellow")
		if r.HasPendencies {
			n.SetFillColor("lightsalmon")
		}

		if tpl, ok := templates[r.TemplateID]; ok {
			edge, err := graph.CreateEdgeByName("promoted", tpl, n)
			if err != nil {
				return nil, fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetLabel("promoted")
			continue
		}

		// Template deleted or filtered out.
		wc, err := centerNode(r.WorkCenter)
		if err != nil {
			return nil, err
		}
		edge, err := graph.CreateEdgeByName("report", wc, n)
		if err != nil {
			return nil, fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetStyle("dashed")
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, format, &buf); err != nil {
		return nil, fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.Bytes(), nil
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
