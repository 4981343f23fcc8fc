package cohort

import "github.com/dtroode/cohort-migrator/internal/model"

// Cohort is the bounded, deduplicated set of records authorized for one run.
// It is read-only once loaded and is passed explicitly to every later stage.
type Cohort struct {
	Tag               string
	Source            string
	Records           []model.CohortRecord
	DuplicatesRemoved int
	RowErrors         []model.RowError

	members map[string]struct{}
}

// New builds a cohort from already normalized, deduplicated records.
func New(tag, source string, records []model.CohortRecord) *Cohort {
	c := &Cohort{
		Tag:     tag,
		Source:  source,
		Records: records,
		members: make(map[string]struct{}, len(records)),
	}
	for _, r := range records {
		c.members[r.NormalizedEmail] = struct{}{}
	}
	return c
}

// Contains reports whether email belongs to the cohort.
func (c *Cohort) Contains(email string) bool {
	if c == nil {
		return false
	}
	_, ok := c.members[NormalizeEmail(email)]
	return ok
}

// Len returns the number of records in the cohort.
func (c *Cohort) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}
