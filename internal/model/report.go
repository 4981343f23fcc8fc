package model

import (
	"time"

	"github.com/google/uuid"
)

// RunMode selects how much of a cohort a run mutates.
type RunMode string

const (
	ModeClassify RunMode = "classify"
	ModeSample   RunMode = "small-sample"
	ModeExecute  RunMode = "execute"
	ModeRollback RunMode = "rollback"
)

// Mutating reports whether the mode writes to the identity store.
func (m RunMode) Mutating() bool {
	switch m {
	case ModeSample, ModeExecute, ModeRollback:
		return true
	default:
		return false
	}
}

// Report is the result of one run, returned to every caller.
type Report struct {
	Mode              RunMode       `json:"mode"`
	Cohort            string        `json:"cohort"`
	TotalRecords      int           `json:"totalRecords"`
	Successful        int           `json:"successful"`
	Errored           int           `json:"errored"`
	DuplicatesRemoved int           `json:"duplicatesRemoved"`
	Results           []MatchResult `json:"results"`
	RowErrors         []RowError    `json:"rowErrors,omitempty"`
	AuditID           uuid.UUID     `json:"auditId"`
}

// Tally recomputes Successful and Errored from Results.
func (r *Report) Tally() {
	r.Successful, r.Errored = 0, 0
	for _, res := range r.Results {
		if res.Failed {
			r.Errored++
			continue
		}
		r.Successful++
	}
}

// CountByMatch returns the number of results per classification.
func (r *Report) CountByMatch() map[MatchType]int {
	out := make(map[MatchType]int, len(MatchTypes))
	for _, res := range r.Results {
		out[res.MatchType]++
	}
	return out
}

// RestoreResult is the outcome of restoring one identity from its snapshot.
type RestoreResult struct {
	IdentityID        uuid.UUID `json:"identityId"`
	SnapshotID        uuid.UUID `json:"snapshotId,omitempty"`
	SnapshotCreatedAt time.Time `json:"snapshotCreatedAt,omitempty"`
	Restored          bool      `json:"restored"`
	Error             string    `json:"error,omitempty"`

	Err error `json:"-"`
}

// RollbackReport is the result of one rollback run.
type RollbackReport struct {
	Cohort     string          `json:"cohort"`
	Successful int             `json:"successful"`
	Errored    int             `json:"errored"`
	Results    []RestoreResult `json:"results"`
	AuditID    uuid.UUID       `json:"auditId"`
}
