// ABOUTME: Debounced autosave for records being edited
// ABOUTME: Saves the latest snapshot once edits pause for the quiet period
package autosave

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/reportmaster/models"
)

// DefaultDelay is the quiet period before a pending snapshot is saved.
const DefaultDelay = time.Second

// SaveFunc persists one snapshot.
type SaveFunc func(r *models.Report) error

// Debouncer coalesces bursts of edits into a single save. The last scheduled
// snapshot wins.
type Debouncer struct {
	delay  time.Duration
	save   SaveFunc
	onSave func(r *models.Report, err error)

	// saveMu orders saves: a snapshot is taken and saved under it, so a
	// newer snapshot is never written before an older one.
	saveMu sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	pending *models.Report
	stopped bool
}

// New returns a debouncer that calls save after delay of inactivity.
// onSave, when non-nil, observes every save attempt.
func New(delay time.Duration, save SaveFunc, onSave func(r *models.Report, err error)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, save: save, onSave: onSave}
}

// Schedule replaces the pending snapshot with a copy of r and restarts the
// quiet period.
func (d *Debouncer) Schedule(r *models.Report) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = r.Clone()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.saveMu.Lock()
	defer d.saveMu.Unlock()

	d.mu.Lock()
	r := d.pending
	d.pending = nil
	d.mu.Unlock()
	d.run(r)
}

func (d *Debouncer) run(r *models.Report) {
	if r == nil {
		return
	}
	err := d.save(r)
	if err != nil {
		log.Error("autosave failed", "id", r.ID, "err", err)
	} else {
		log.Debug("autosaved", "id", r.ID)
	}
	if d.onSave != nil {
		d.onSave(r, err)
	}
}

// Pending reports whether a snapshot is waiting to be saved.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Flush saves the pending snapshot now, if any.
func (d *Debouncer) Flush() {
	d.saveMu.Lock()
	defer d.saveMu.Unlock()

	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	r := d.pending
	d.pending = nil
	d.mu.Unlock()
	d.run(r)
}

// Stop cancels any pending save. Later Schedule calls are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = nil
}
