// Package migration drives the one-time catalog import. Tasks declare
// their ordering constraints by name and the runner executes them in
// dependency order, stopping at the first failure.
package migration

import (
	"context"

	"github.com/google/uuid"
)

// Task is one unit of the import sequence.
type Task interface {
	// Name identifies the task, also used by After and the task filter.
	Name() string
	// After lists task names that must complete before this one. Names
	// of tasks not registered with the runner are ignored.
	After() []string
	// Up performs the import. A returned error aborts the whole run.
	Up(ctx context.Context) error
}

// Stats counts what a task did to the destination store.
type Stats struct {
	Seen    int
	Created int
	Updated int
}

// Reporter is implemented by tasks that track per-record counts.
type Reporter interface {
	Stats() Stats
}

// ImportContext carries the site scoped defaults stamped onto every
// record a task writes.
type ImportContext struct {
	LanguageID string
	CurrencyID string
	SiteID     string
	RunID      uuid.UUID
}
