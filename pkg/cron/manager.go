package cron

import (
	"errors"
	"fmt"
	"time"

	"github.com/harun/nanoboard/pkg/store"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// MaxPreview bounds the number of run times Preview computes.
const MaxPreview = 20

// Manager edits the job list in jobs.json. Jobs are raw JSON objects so
// fields this gateway does not know about survive every edit.
type Manager struct {
	store  *store.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewManager creates a job manager over the jobs.json store.
func NewManager(s *store.Store, logger zerolog.Logger) *Manager {
	return &Manager{store: s, logger: logger, now: time.Now}
}

// List returns every job. A malformed document is logged and listed as empty.
func (m *Manager) List() ([]store.Entry, error) {
	jobs, err := m.store.List()
	if err != nil {
		if errors.Is(err, store.ErrMalformed) {
			m.logger.Warn().Err(err).Str("path", m.store.Path()).Msg("Ignoring malformed job store")
			return []store.Entry{}, nil
		}
		return nil, err
	}
	return jobs, nil
}

// Add stores job under a fresh job_<ms> id and returns it as written.
func (m *Manager) Add(job store.Entry) (store.Entry, error) {
	if err := validate(job); err != nil {
		return nil, err
	}
	added, err := m.store.Append(job)
	if err != nil {
		return nil, err
	}
	m.logger.Info().Str("job", added.ID()).Msg("Added job")
	return added, nil
}

// Update merges the fields of job into the stored job with the same id.
func (m *Manager) Update(job store.Entry) (store.Entry, error) {
	if !job.IsObject() {
		return nil, store.ErrInvalidEntry
	}
	id := job.ID()
	if id == "" {
		return nil, ErrIDRequired
	}
	if err := validate(job); err != nil {
		return nil, err
	}

	updated, err := m.store.Merge(id, job)
	if err != nil {
		return nil, err
	}
	m.logger.Info().Str("job", id).Msg("Updated job")
	return updated, nil
}

// Remove deletes the job with the given id.
func (m *Manager) Remove(id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := m.store.Remove(id); err != nil {
		return err
	}
	m.logger.Info().Str("job", id).Msg("Removed job")
	return nil
}

// Enable sets enabled to !disable on the job with the given id.
func (m *Manager) Enable(id string, disable bool) (store.Entry, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	return m.store.SetField(id, "enabled", !disable)
}

// Preview lists the next n run times of a cron expression.
func (m *Manager) Preview(expr, tz string, n int) ([]time.Time, error) {
	if n > MaxPreview {
		n = MaxPreview
	}
	return NextRuns(expr, tz, m.now(), n)
}

// validate rejects non-objects and schedules that cannot be evaluated.
// Jobs without a schedule are accepted as-is.
func validate(job store.Entry) error {
	if !job.IsObject() {
		return store.ErrInvalidEntry
	}
	schedule, ok := ScheduleFrom(gjson.ParseBytes(job))
	if !ok {
		return nil
	}
	if err := Validate(schedule); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	return nil
}
