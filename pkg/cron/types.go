package cron

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ScheduleKind represents the type of schedule
type ScheduleKind string

const (
	ScheduleKindAt    ScheduleKind = "at"
	ScheduleKindEvery ScheduleKind = "every"
	ScheduleKindCron  ScheduleKind = "cron"
)

// Schedule is the timing rule stored under a job's "schedule" key.
// Jobs keep every other field as raw JSON.
type Schedule struct {
	Kind ScheduleKind `json:"kind"`

	// For "at" schedule, epoch ms or an RFC 3339 timestamp
	AtMs int64  `json:"atMs,omitempty"`
	At   string `json:"at,omitempty"`

	// For "every" schedule
	EveryMs  int64  `json:"everyMs,omitempty"`  // Interval in milliseconds
	AnchorMs *int64 `json:"anchorMs,omitempty"` // Optional anchor point

	// For "cron" schedule
	Expr string `json:"expr,omitempty"` // Cron expression (5-field format)
	TZ   string `json:"tz,omitempty"`   // Optional timezone
}

var (
	// ErrIDRequired is returned when an update names no job
	ErrIDRequired = errors.New("job id is required")

	// ErrInvalidSchedule is returned when a job's schedule cannot be evaluated
	ErrInvalidSchedule = errors.New("invalid schedule")
)

// ScheduleFrom reads the "schedule" object of a raw job. ok is false when
// the job has none.
func ScheduleFrom(job gjson.Result) (Schedule, bool) {
	raw := job.Get("schedule")
	if !raw.IsObject() {
		return Schedule{}, false
	}

	s := Schedule{
		Kind:    ScheduleKind(raw.Get("kind").String()),
		AtMs:    raw.Get("atMs").Int(),
		At:      raw.Get("at").String(),
		EveryMs: raw.Get("everyMs").Int(),
		Expr:    raw.Get("expr").String(),
		TZ:      raw.Get("tz").String(),
	}
	if a := raw.Get("anchorMs"); a.Exists() && a.Type != gjson.Null {
		v := a.Int()
		s.AnchorMs = &v
	}
	return s, true
}
