// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Summarizes stored templates and reports by category, shift and work center
package viz

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
)

type DashboardStats struct {
	TotalTemplates int
	TotalReports   int

	ByCategory   map[models.Category]int
	ByShift      map[models.Shift]int
	ByWorkCenter map[string]int

	// Dated reports only
	WithPendencies int
	WithIAMO       int
	Unfinished     int

	// Updated in the last 7 days
	RecentActivity []ActivityItem

	// Templates that cannot be promoted yet
	IncompleteTemplates []IncompleteTemplate
}

type ActivityItem struct {
	Date        time.Time
	Description string
}

type IncompleteTemplate struct {
	ID      string
	Title   string
	Missing []string
}

func GenerateDashboardStats(store db.Store, now time.Time) (*DashboardStats, error) {
	reports, err := db.FindReports(store, db.ReportFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}

	stats := &DashboardStats{
		ByCategory:   make(map[models.Category]int),
		ByShift:      make(map[models.Shift]int),
		ByWorkCenter: make(map[string]int),
	}

	weekAgo := now.AddDate(0, 0, -7)
	for _, r := range reports {
		if r.Category != "" {
			stats.ByCategory[r.Category]++
		}

		updated := time.UnixMilli(r.UpdatedAt)
		if r.UpdatedAt > 0 && updated.After(weekAgo) {
			stats.RecentActivity = append(stats.RecentActivity, ActivityItem{
				Date:        updated,
				Description: describe(r),
			})
		}

		if r.IsTemplate() {
			stats.TotalTemplates++
			if err := models.ValidateReport(r); err != nil {
				item := IncompleteTemplate{ID: r.ID, Title: r.OMDescription}
				var verr *models.ValidationError
				if errors.As(err, &verr) {
					item.Missing = verr.Fields
				}
				stats.IncompleteTemplates = append(stats.IncompleteTemplates, item)
			}
			continue
		}

		stats.TotalReports++
		if r.TeamShift != "" {
			stats.ByShift[r.TeamShift]++
		}
		if r.WorkCenter != "" {
			stats.ByWorkCenter[r.WorkCenter]++
		}
		if r.HasPendencies {
			stats.WithPendencies++
		}
		if r.IAMODeviation {
			stats.WithIAMO++
		}
		if !r.IsFinished {
			stats.Unfinished++
		}
	}

	return stats, nil
}

func describe(r *models.Report) string {
	kind := "Report"
	if r.IsTemplate() {
		kind = "Template"
	}
	om := r.OMNumber
	if om == "" {
		om = "-"
	}
	return fmt.Sprintf("%s OM %s: %s", kind, om, r.OMDescription)
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  REPORTMASTER DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📋 %d templates  📄 %d reports\n\n", stats.TotalTemplates, stats.TotalReports))

	if len(stats.ByShift) > 0 {
		out.WriteString("REPORTS BY SHIFT\n")
		rows := make([]barRow, 0, len(models.Shifts))
		for _, s := range models.Shifts {
			if n := stats.ByShift[s]; n > 0 {
				rows = append(rows, barRow{label: "Turno " + string(s), count: n})
			}
		}
		renderBars(&out, rows)
		out.WriteString("\n")
	}

	if len(stats.ByWorkCenter) > 0 {
		out.WriteString("REPORTS BY WORK CENTER\n")
		rows := make([]barRow, 0, len(stats.ByWorkCenter))
		for wc, n := range stats.ByWorkCenter {
			rows = append(rows, barRow{label: wc, count: n})
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].count != rows[j].count {
				return rows[i].count > rows[j].count
			}
			return rows[i].label < rows[j].label
		})
		renderBars(&out, rows)
		out.WriteString("\n")
	}

	if len(stats.ByCategory) > 0 {
		out.WriteString("BY CATEGORY\n")
		renderBars(&out, []barRow{
			{label: "Ativo fixo", count: stats.ByCategory[models.CategoryFixedAsset]},
			{label: "Ativo movel", count: stats.ByCategory[models.CategoryMobileAsset]},
		})
		out.WriteString("\n")
	}

	if len(stats.RecentActivity) > 0 {
		out.WriteString("RECENT ACTIVITY (7 days)\n")
		for i, item := range stats.RecentActivity {
			if i == 5 {
				out.WriteString(fmt.Sprintf("  ... and %d more\n", len(stats.RecentActivity)-5))
				break
			}
			out.WriteString(fmt.Sprintf("  %s  %s\n", item.Date.Format("01-02 15:04"), item.Description))
		}
		out.WriteString("\n")
	}

	if stats.WithPendencies > 0 || stats.WithIAMO > 0 || stats.Unfinished > 0 || len(stats.IncompleteTemplates) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		if stats.WithPendencies > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d reports with open pendencies\n", stats.WithPendencies))
		}
		if stats.WithIAMO > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d reports with IAMO deviations\n", stats.WithIAMO))
		}
		if stats.Unfinished > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d reports not finished\n", stats.Unfinished))
		}
		if len(stats.IncompleteTemplates) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d templates not ready to promote\n", len(stats.IncompleteTemplates)))
		}
	}

	return out.String()
}

type barRow struct {
	label string
	count int
}

func renderBars(out *strings.Builder, rows []barRow) {
	maxCount := 0
	for _, r := range rows {
		if r.count > maxCount {
			maxCount = r.count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, r := range rows {
		// 0-10 blocks
		barLength := (r.count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-13s %s  %2d\n", r.label, bar, r.count))
	}
}
