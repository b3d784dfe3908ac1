// ABOUTME: Photo evidence operations on stored reports
// ABOUTME: Adds, recaptions, replaces and removes photos by id
package db

import (
	"fmt"
	"strings"

	"github.com/harperreed/reportmaster/models"
)

// AddPhoto appends a photo to the report with the given id.
func AddPhoto(store Store, reportID string, photo models.ReportPhoto) (*models.Report, error) {
	return updateReport(store, reportID, func(r *models.Report) error {
		r.Photos = append(r.Photos, photo)
		return nil
	})
}

func UpdatePhotoCaption(store Store, reportID, photoID, caption string) (*models.Report, error) {
	return updateReport(store, reportID, func(r *models.Report) error {
		p := r.Photo(photoID)
		if p == nil {
			return fmt.Errorf("photo %s: %w", photoID, ErrNotFound)
		}
		p.Caption = strings.TrimSpace(caption)
		return nil
	})
}

// ReplacePhotoData swaps the image of a photo, keeping its id and caption.
func ReplacePhotoData(store Store, reportID, photoID, dataURL string) (*models.Report, error) {
	return updateReport(store, reportID, func(r *models.Report) error {
		p := r.Photo(photoID)
		if p == nil {
			return fmt.Errorf("photo %s: %w", photoID, ErrNotFound)
		}
		p.DataURL = dataURL
		return nil
	})
}

func RemovePhoto(store Store, reportID, photoID string) (*models.Report, error) {
	return updateReport(store, reportID, func(r *models.Report) error {
		if !r.RemovePhoto(photoID) {
			return fmt.Errorf("photo %s: %w", photoID, ErrNotFound)
		}
		return nil
	})
}
