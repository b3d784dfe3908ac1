package autosave

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/reportmaster/models"
)

type recorder struct {
	mu    sync.Mutex
	saved []string
	done  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 10)}
}

func (r *recorder) save(rep *models.Report) error {
	r.mu.Lock()
	r.saved = append(r.saved, rep.OMDescription)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.saved...)
}

func TestBurstSavesLastSnapshotOnce(t *testing.T) {
	rec := newRecorder()
	d := New(30*time.Millisecond, rec.save, nil)

	r := &models.Report{ID: "r1"}
	for _, desc := range []string{"a", "ab", "abc"} {
		r.OMDescription = desc
		d.Schedule(r)
	}
	r.OMDescription = "mutated after schedule"

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("autosave never fired")
	}
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, []string{"abc"}, rec.list())
	assert.False(t, d.Pending())
}

func TestFlushSavesImmediately(t *testing.T) {
	rec := newRecorder()
	d := New(time.Hour, rec.save, nil)

	d.Schedule(&models.Report{ID: "r1", OMDescription: "now"})
	require.True(t, d.Pending())

	d.Flush()
	assert.Equal(t, []string{"now"}, rec.list())
	assert.False(t, d.Pending())

	d.Flush()
	assert.Len(t, rec.list(), 1, "nothing left to flush")
}

func TestFlushWaitsForRunningSave(t *testing.T) {
	var mu sync.Mutex
	var saved []string
	started := make(chan struct{})
	release := make(chan struct{})

	save := func(r *models.Report) error {
		if r.OMDescription == "old" {
			close(started)
			<-release
		}
		mu.Lock()
		saved = append(saved, r.OMDescription)
		mu.Unlock()
		return nil
	}
	d := New(10*time.Millisecond, save, nil)

	d.Schedule(&models.Report{ID: "r1", OMDescription: "old"})
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("autosave never fired")
	}

	d.Schedule(&models.Report{ID: "r1", OMDescription: "new"})
	flushed := make(chan struct{})
	go func() {
		d.Flush()
		close(flushed)
	}()

	time.Sleep(30 * time.Millisecond)
	close(release)
	select {
	case <-flushed:
	case <-time.After(2 * time.Second):
		t.Fatal("flush never returned")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"old", "new"}, saved)
}

func TestStopCancels(t *testing.T) {
	rec := newRecorder()
	d := New(20*time.Millisecond, rec.save, nil)

	d.Schedule(&models.Report{ID: "r1", OMDescription: "x"})
	d.Stop()
	d.Schedule(&models.Report{ID: "r1", OMDescription: "y"})

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, rec.list())
}

func TestOnSaveObserver(t *testing.T) {
	rec := newRecorder()
	var got *models.Report
	d := New(time.Hour, rec.save, func(r *models.Report, err error) {
		assert.NoError(t, err)
		got = r
	})

	d.Schedule(&models.Report{ID: "r9"})
	d.Flush()
	require.NotNil(t, got)
	assert.Equal(t, "r9", got.ID)
}
