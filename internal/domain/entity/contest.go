package entity

import "time"

// Contest represents one competitive-programming contest from the catalog.
// Rows are created and refreshed by the ingestion workflow (keyed by
// ExternalID, the upstream catalog ID) and are read-only to the
// notification workflows.
type Contest struct {
	ID              int64
	ExternalID      int64
	Name            string
	Platform        string
	StartTime       time.Time
	DurationSeconds int64
	URL             string
	CreatedAt       time.Time
}

// Duration returns the contest length as a time.Duration.
func (c *Contest) Duration() time.Duration {
	return time.Duration(c.DurationSeconds) * time.Second
}
