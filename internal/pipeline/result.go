// Package pipeline provides the golf course data pipeline stages: record
// cleaning, address enrichment via the Places lookup service, and schema
// validation.
package pipeline

import "fmt"

// CleanResult tracks what the cleaning stage removed.
type CleanResult struct {
	RowsRemoved int      // rows dropped for a missing/blank course name
	Duplicates  []string // distinct duplicate course names dropped
}

// EnrichResult tracks counts and errors from an enrichment run.
type EnrichResult struct {
	NeedsEnrichment int  // rows with a missing address at entry
	Processed       int  // rows iterated by the loop
	Enriched        int  // rows that received lookup data
	Skipped         int  // rows skipped for a missing course name
	Aborted         bool // loop stopped early on a credential failure
	Errors          []string
}

// AddErrorf records a formatted error message.
func (r *EnrichResult) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the enrichment run.
func (r *EnrichResult) Summary() string {
	return fmt.Sprintf(
		"needs_enrichment=%d processed=%d enriched=%d skipped=%d aborted=%t errors=%d",
		r.NeedsEnrichment, r.Processed, r.Enriched, r.Skipped, r.Aborted, len(r.Errors),
	)
}

// ValidationResult tracks the outcome of the validation stage.
type ValidationResult struct {
	Total            int // rows examined
	Valid            int // rows promoted to the validated set
	TotalFieldErrors int // individual field errors across all invalid rows
}
