// ABOUTME: Photo evidence CLI commands
// ABOUTME: Attach, list, caption, annotate and remove photos on a report
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/reportmaster/annotate"
	"github.com/harperreed/reportmaster/db"
	"github.com/harperreed/reportmaster/models"
)

// PhotosAddCommand attaches image files to a report.
func PhotosAddCommand(store db.Store, args []string) error {
	fs := flag.NewFlagSet("photos add", flag.ExitOnError)
	reportID := fs.String("report", "", "Report or template ID (required)")
	caption := fs.String("caption", "", "Caption for the photo")
	_ = fs.Parse(args)

	files := fs.Args()
	if *reportID == "" || len(files) == 0 {
		return fmt.Errorf("usage: photos add --report <id> [--caption text] <image>...")
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		photo, err := models.NewPhoto(data, *caption, now())
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if _, err := db.AddPhoto(store, *reportID, photo); err != nil {
			return fmt.Errorf("failed to attach %s: %w", path, err)
		}
		_, _ = fmt.Fprintf(out, "✓ Photo attached: %s (ID: %s)\n", path, photo.ID)
	}
	return nil
}

// PhotosListCommand lists the photos of a report.
func PhotosListCommand(store db.Store, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: photos list <report-id>")
	}
	r, err := db.GetReport(store, args[0])
	if err != nil {
		return err
	}
	if len(r.Photos) == 0 {
		_, _ = fmt.Fprintln(out, "No photos")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tID\tTAKEN\tSIZE\tCAPTION")
	_, _ = fmt.Fprintln(w, "-\t--\t-----\t----\t-------")
	for i, p := range r.Photos {
		size := "-"
		if _, data, err := models.DecodeDataURL(p.DataURL); err == nil {
			size = fmt.Sprintf("%d KB", len(data)/1024)
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, p.ID,
			time.UnixMilli(p.Timestamp).Format("2006-01-02 15:04"), size, dash(p.Caption))
	}
	return w.Flush()
}

func PhotosCaptionCommand(store db.Store, args []string) error {
	fs := flag.NewFlagSet("photos caption", flag.ExitOnError)
	reportID := fs.String("report", "", "Report ID (required)")
	photoID := fs.String("photo", "", "Photo ID (required)")
	caption := fs.String("caption", "", "New caption")
	_ = fs.Parse(args)

	if *reportID == "" || *photoID == "" {
		return fmt.Errorf("--report and --photo are required")
	}
	if _, err := db.UpdatePhotoCaption(store, *reportID, *photoID, *caption); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "✓ Caption updated: %s\n", *photoID)
	return nil
}

// PhotosAnnotateCommand draws pen strokes over a photo and saves the result.
func PhotosAnnotateCommand(store db.Store, args []string) error {
	fs := flag.NewFlagSet("photos annotate", flag.ExitOnError)
	reportID := fs.String("report", "", "Report ID (required)")
	photoID := fs.String("photo", "", "Photo ID (required)")
	strokes := fs.String("strokes", "", `Strokes as "x,y x,y;x,y x,y" in image pixels`)
	strokesFile := fs.String("strokes-file", "", "Read strokes from a file")
	_ = fs.Parse(args)

	if *reportID == "" || *photoID == "" {
		return fmt.Errorf("--report and --photo are required")
	}
	raw := *strokes
	if *strokesFile != "" {
		data, err := os.ReadFile(*strokesFile)
		if err != nil {
			return fmt.Errorf("failed to read strokes: %w", err)
		}
		raw = strings.ReplaceAll(string(data), "\n", ";")
	}
	parsed, err := annotate.ParseStrokes(raw)
	if err != nil {
		return err
	}
	if len(parsed) == 0 {
		return fmt.Errorf("no strokes given")
	}

	r, err := db.GetReport(store, *reportID)
	if err != nil {
		return err
	}
	p := r.Photo(*photoID)
	if p == nil {
		return fmt.Errorf("photo %s: %w", *photoID, db.ErrNotFound)
	}

	marked, err := annotate.Apply(p.DataURL, parsed)
	if err != nil {
		return err
	}
	if _, err := db.ReplacePhotoData(store, r.ID, p.ID, marked); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "✓ Annotated %s (%d strokes)\n", p.ID, len(parsed))
	return nil
}

func PhotosRemoveCommand(store db.Store, args []string) error {
	fs := flag.NewFlagSet("photos remove", flag.ExitOnError)
	reportID := fs.String("report", "", "Report ID (required)")
	photoID := fs.String("photo", "", "Photo ID (required)")
	_ = fs.Parse(args)

	if *reportID == "" || *photoID == "" {
		return fmt.Errorf("--report and --photo are required")
	}
	if _, err := db.RemovePhoto(store, *reportID, *photoID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "✓ Photo removed: %s\n", *photoID)
	return nil
}
