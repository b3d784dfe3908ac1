// ABOUTME: Report and template CLI commands
// ABOUTME: Create, list, show, edit, delete, promote, export PDF and share
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
	"github.com/harperreed/reportmaster/render"
	"github.com/harperreed/reportmaster/share"
)

// reportFlags binds the editable report fields to a flag set.
type reportFlags struct {
	fs              *flag.FlagSet
	category        *string
	om              *string
	description     *string
	activities      *string
	activitiesFile  *string
	equipment       *string
	local           *string
	date            *string
	start           *string
	end             *string
	activityType    *string
	shift           *string
	workCenter      *string
	technicians     *string
	addTechnician   *string
	finished        *bool
	pendencies      *bool
	pendency        *string
	iamo            *bool
	iamoDescription *string
}

func bindReportFlags(fs *flag.FlagSet) *reportFlags {
	return &reportFlags{
		fs:              fs,
		category:        fs.String("category", "", "Asset category: fixed-asset or mobile-asset"),
		om:              fs.String("om", "", "OM number"),
		description:     fs.String("description", "", "OM description"),
		activities:      fs.String("activities", "", "Activities executed (checklist lines allowed)"),
		activitiesFile:  fs.String("activities-file", "", "Read activities executed from a file"),
		equipment:       fs.String("equipment", "", "Equipment tag"),
		local:           fs.String("local", "", "Location"),
		date:            fs.String("date", "", "Execution date (YYYY-MM-DD)"),
		start:           fs.String("start", "", "Start time (HH:MM)"),
		end:             fs.String("end", "", "End time (HH:MM)"),
		activityType:    fs.String("activity-type", "", "preventiva or corretiva"),
		shift:           fs.String("shift", "", "Team shift: A, B, C or D"),
		workCenter:      fs.String("work-center", "", "Work center (e.g. SC108HH)"),
		technicians:     fs.String("technicians", "", "Comma-separated technician names"),
		addTechnician:   fs.String("add-technician", "", "Toggle a technician in the list"),
		finished:        fs.Bool("finished", true, "OM finished"),
		pendencies:      fs.Bool("pendencies", false, "Has pendencies"),
		pendency:        fs.String("pendency", "", "Pendency description"),
		iamo:            fs.Bool("iamo", false, "IAMO deviation occurred"),
		iamoDescription: fs.String("iamo-description", "", "IAMO deviation explanation"),
	}
}

// apply copies every flag given on the command line onto r.
func (f *reportFlags) apply(r *models.Report) error {
	var err error
	f.fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "category":
			c, ok := models.ParseCategory(*f.category)
			if !ok {
				err = fmt.Errorf("invalid category %q", *f.category)
				return
			}
			r.Category = c
		case "om":
			r.OMNumber = strings.TrimSpace(*f.om)
		case "description":
			r.OMDescription = *f.description
		case "activities":
			r.ActivityExecuted = *f.activities
		case "activities-file":
			data, readErr := os.ReadFile(*f.activitiesFile)
			if readErr != nil {
				err = fmt.Errorf("failed to read activities file: %w", readErr)
				return
			}
			r.ActivityExecuted = string(data)
		case "equipment":
			r.Equipment = strings.TrimSpace(*f.equipment)
		case "local":
			r.Local = strings.TrimSpace(*f.local)
		case "date":
			if _, parseErr := time.Parse(models.DateLayout, *f.date); parseErr != nil {
				err = fmt.Errorf("invalid date %q (want YYYY-MM-DD)", *f.date)
				return
			}
			r.Date = *f.date
		case "start":
			r.StartTime = *f.start
		case "end":
			r.EndTime = *f.end
		case "activity-type":
			if *f.activityType != models.ActivityPreventive && *f.activityType != models.ActivityCorrective {
				err = fmt.Errorf("invalid activity type %q", *f.activityType)
				return
			}
			r.ActivityType = *f.activityType
		case "shift":
			s := models.Shift(strings.ToUpper(*f.shift))
			if !models.IsValidShift(s) {
				err = fmt.Errorf("invalid shift %q", *f.shift)
				return
			}
			r.TeamShift = s
		case "work-center":
			if !models.IsValidWorkCenter(*f.workCenter) {
				err = fmt.Errorf("invalid work center %q", *f.workCenter)
				return
			}
			r.WorkCenter = *f.workCenter
		case "technicians":
			r.Technicians = strings.Join(models.SplitTechnicians(*f.technicians), ", ")
		case "add-technician":
			r.Technicians = models.ToggleTechnician(r.Technicians, strings.TrimSpace(*f.addTechnician))
		case "finished":
			r.IsFinished = *f.finished
		case "pendencies":
			r.HasPendencies = *f.pendencies
		case "pendency":
			r.PendencyDescription = *f.pendency
		case "iamo":
			r.IAMODeviation = *f.iamo
		case "iamo-description":
			r.IAMODescription = *f.iamoDescription
		}
	})
	return err
}

// ReportsNewCommand creates a template (default) or a report.
func ReportsNewCommand(store db.Store, args []string) error {
	fs := flag.NewFlagSet("reports new", flag.ExitOnError)
	typ := fs.String("type", "template", "Record type: template or report")
	rf := bindReportFlags(fs)
	_ = fs.Parse(args)

	t, ok := models.ParseReportType(*typ)
	if !ok {
		return fmt.Errorf("invalid type %q", *typ)
	}

	r := models.NewReport(now())
	r.Type = t
	if err := rf.apply(r); err != nil {
		return err
	}
	if err := models.Validate(r); err != nil {
		return err
	}

	if err := db.SaveReport(store, r); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ %s created: %s (ID: %s)\n", typeLabel(r.Type), dash(r.OMNumber), r.ID)
	return nil
}

// ReportsListCommand lists templates or reports.
func ReportsListCommand(store db.Store, args []string) error {
	fs := flag.NewFlagSet("reports list", flag.ExitOnError)
	typ := fs.String("type", "", "Filter by type: template or report")
	category := fs.String("category", "", "Filter by category")
	query := fs.String("query", "", "Search OM number, description or equipment")
	_ = fs.Parse(args)

	filter := db.ReportFilter{Query: *query}
	if *typ != "" {
		t, ok := models.ParseReportType(*typ)
		if !ok {
			return fmt.Errorf("invalid type %q", *typ)
		}
		filter.Type = t
	}
	c, ok := models.ParseCategory(*category)
	if !ok {
		return fmt.Errorf("invalid category %q", *category)
	}
	filter.Category = c

	reports, err := db.FindReports(store, filter)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}
	if len(reports) == 0 {
		_, _ = fmt.Fprintln(out, "No reports found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TYPE\tOM\tEQUIPMENT\tDATE\tDESCRIPTION\tPHOTOS\tID")
	_, _ = fmt.Fprintln(w, "----\t--\t---------\t----\t-----------\t------\t--")
	for _, r := range reports {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.Type, dash(r.OMNumber), dash(r.Equipment), dash(r.Date),
			truncate(dash(firstLine(r.OMDescription)), 40), len(r.Photos), r.ID)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "\n%d record(s)\n", len(reports))
	return nil
}

// ReportsShowCommand prints every field of one record.
func ReportsShowCommand(store db.Store, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: reports show <id>")
	}
	r, err := db.GetReport(store, args[0])
	if err != nil {
		return err
	}
	printReport(r)
	return nil
}

func printReport(r *models.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	row := func(k, v string) { _, _ = fmt.Fprintf(w, "%s:\t%s\n", k, dash(v)) }
	row("ID", r.ID)
	row("Type", string(r.Type))
	row("Category", string(r.Category))
	if r.TemplateID != "" {
		row("From template", r.TemplateID)
	}
	row("OM", r.OMNumber)
	row("Equipment", r.Equipment)
	row("Local", r.Local)
	row("Date", r.Date)
	row("Period", r.StartTime+" - "+r.EndTime)
	row("Activity type", r.ActivityType)
	row("Shift", string(r.TeamShift))
	row("Work center", r.WorkCenter)
	row("Technicians", r.Technicians)
	row("Finished", yesNo(r.IsFinished))
	row("Pendencies", yesNo(r.HasPendencies))
	if r.HasPendencies {
		row("Pendency", r.PendencyDescription)
	}
	row("IAMO deviation", yesNo(r.IAMODeviation))
	if r.IAMODeviation {
		row("IAMO explanation", r.IAMODescription)
	}
	row("Photos", fmt.Sprint(len(r.Photos)))
	if r.UpdatedAt > 0 {
		row("Updated", time.UnixMilli(r.UpdatedAt).Format("2006-01-02 15:04"))
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nDescription:\n%s\n", dash(r.OMDescription))
	_, _ = fmt.Fprintf(out, "\nActivities executed:\n%s\n", dash(r.ActivityExecuted))
}

// ReportsEditCommand updates fields of an existing record.
func ReportsEditCommand(store db.Store, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: reports edit <id> [flags]")
	}
	id := args[0]
	fs := flag.NewFlagSet("reports edit", flag.ExitOnError)
	rf := bindReportFlags(fs)
	_ = fs.Parse(args[1:])

	r, err := db.GetReport(store, id)
	if err != nil {
		return err
	}
	if err := rf.apply(r); err != nil {
		return err
	}
	if err := models.Validate(r); err != nil {
		return err
	}
	if err := db.SaveReport(store, r); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ %s updated: %s\n", typeLabel(r.Type), r.ID)
	return nil
}

// ReportsDeleteCommand deletes a record after confirmation.
func ReportsDeleteCommand(store db.Store, args []string) error {
	fs := flag.NewFlagSet("reports delete", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Skip confirmation")
	if len(args) < 1 {
		return fmt.Errorf("usage: reports delete <id> [--yes]")
	}
	id := args[0]
	_ = fs.Parse(args[1:])

	r, err := db.GetReport(store, id)
	if err != nil {
		return err
	}
	if !*yes && !confirm(fmt.Sprintf("Delete %s %s (OM %s)?", r.Type, r.ID, dash(r.OMNumber))) {
		_, _ = fmt.Fprintln(out, "Cancelled")
		return nil
	}

	if err := db.DeleteReport(store, id); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	_, _ = fmt.Fprintf(out, "✓ Deleted %s\n", id)
	return nil
}

// ReportsPromoteCommand creates a dated report from a template.
func ReportsPromoteCommand(store db.Store, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: reports promote <template-id>")
	}

	r, err := db.PromoteTemplate(store, args[0], now())
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		_, _ = fmt.Fprintln(out, "Template is incomplete. Missing:")
		for _, f := range ve.Fields {
			_, _ = fmt.Fprintf(out, "  - %s\n", f)
		}
		return err
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "✓ Report created: %s (OM %s, date %s)\n", r.ID, dash(r.OMNumber), r.Date)
	return nil
}

// ReportsPDFCommand renders a record to a PDF file.
func ReportsPDFCommand(store db.Store, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: reports pdf <id> [--out path]")
	}
	id := args[0]
	fs := flag.NewFlagSet("reports pdf", flag.ExitOnError)
	outPath := fs.String("out", "", "Output file or directory (default: current directory)")
	_ = fs.Parse(args[1:])

	r, err := db.GetReport(store, id)
	if err != nil {
		return err
	}

	doc, err := render.Render(r, render.Options{Now: now})
	if err != nil {
		return err
	}

	path := doc.Filename
	if *outPath != "" {
		path = *outPath
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			path = filepath.Join(path, doc.Filename)
		}
	}
	if err := os.WriteFile(path, doc.Data, 0644); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ PDF written: %s (%d pages)\n", path, doc.Pages)
	return nil
}

// ReportsShareCommand prints the messaging deep link for a record.
func ReportsShareCommand(store db.Store, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: reports share <id> [--text]")
	}
	id := args[0]
	fs := flag.NewFlagSet("reports share", flag.ExitOnError)
	text := fs.Bool("text", false, "Print the plain-text summary instead of the link")
	_ = fs.Parse(args[1:])

	r, err := db.GetReport(store, id)
	if err != nil {
		return err
	}
	if *text {
		_, _ = fmt.Fprintln(out, share.Summary(r))
		return nil
	}
	_, _ = fmt.Fprintln(out, share.Link(r))
	return nil
}

func typeLabel(t models.ReportType) string {
	if t == models.TypeReport {
		return "Report"
	}
	return "Template"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
