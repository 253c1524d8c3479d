// Package cron edits the scheduled job list the managed agent reads from
// cron/jobs.json. It does not run jobs.
//
// The document may be a bare array or an object wrapping the array under
// "jobs"; either shape is preserved across edits. Schedules are validated
// with robfig/cron before they are written.
package cron
