// Package model holds the shared data types passed between the extraction
// pipeline, the result assembler, and the run store.
package model

import "time"

// MetricRecord is one class-level metric value tagged with the landscape it
// was measured in and the buffer scale it was measured at. Append-only.
type MetricRecord struct {
	LandscapeID string
	Scale       string
	Class       int32
	Metric      string
	Value       float64
}

// Skip records a site or scale that produced no metrics, and why. A skip
// never blocks other sites; it is reported in the batch summary.
type Skip struct {
	LandscapeID string
	// Scale is empty when the whole site was skipped.
	Scale  string
	Reason string
}

// RunStatus is the lifecycle state of an extraction run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one batch extraction recorded in the store.
type Run struct {
	ID             string
	Status         RunStatus
	SitesTotal     int
	SitesSucceeded int
	SitesSkipped   int
	OutputPath     string
	Error          string
	StartedAt      time.Time
	FinishedAt     *time.Time
}
