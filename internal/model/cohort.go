package model

import (
	"fmt"
	"time"
)

// CohortRecord is one validated and normalized row of a cohort source.
type CohortRecord struct {
	Line               int       `json:"line"`
	DisplayName        string    `json:"displayName"`
	Email              string    `json:"email"`
	BillingReferenceID string    `json:"billingReferenceId"`
	SignupDate         time.Time `json:"signupDate"`
	NormalizedEmail    string    `json:"normalizedEmail"`
	NormalizedName     string    `json:"normalizedName"`
}

// RowError describes a source row that failed validation and was skipped.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}
