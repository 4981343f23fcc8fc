// Package matcher classifies cohort records against the identity store.
//
// Tiers are evaluated in a fixed order and the first tier that resolves a
// record wins: exact email, then unique normalized name, then no match. Only
// an exact email is strong enough to merge automatically; a name shared by
// several identities never selects one of them.
package matcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/cohort-migrator/internal/cohort"
	"github.com/dtroode/cohort-migrator/internal/logger"
	"github.com/dtroode/cohort-migrator/internal/model"
)

// IdentityLookup is the read side of the identity store used for matching.
type IdentityLookup interface {
	GetByEmail(ctx context.Context, email string) (model.Identity, error)
	FindByNormalizedName(ctx context.Context, normalizedName string) ([]model.Identity, error)
}

// Matcher classifies records.
type Matcher struct {
	store  IdentityLookup
	logger *logger.Logger
}

// New creates a Matcher reading from store.
func New(store IdentityLookup, logger *logger.Logger) *Matcher {
	return &Matcher{store: store, logger: logger}
}

// Match classifies a single normalized record.
func (m *Matcher) Match(ctx context.Context, record model.CohortRecord) (model.MatchResult, error) {
	result := model.MatchResult{Record: record}

	identity, err := m.store.GetByEmail(ctx, record.NormalizedEmail)
	switch {
	case err == nil:
		result.MatchType = model.MatchEmailExact
		result.Action = model.ActionUpdateExisting
		result.Identity = &identity
		result.IdentityID = identity.ID
		result.Candidates = 1
		return result, nil
	case !errors.Is(err, model.ErrNotFound):
		return result, fmt.Errorf("failed to look up identity by email: %w", err)
	}

	candidates, err := m.store.FindByNormalizedName(ctx, record.NormalizedName)
	if err != nil {
		return result, fmt.Errorf("failed to look up identities by name: %w", err)
	}

	result.Candidates = len(candidates)
	switch len(candidates) {
	case 0:
		result.MatchType = model.MatchNone
		result.Action = model.ActionCreateNew
	case 1:
		result.MatchType = model.MatchNameUnique
		result.Action = model.ActionUpdateExisting
		result.Identity = &candidates[0]
		result.IdentityID = candidates[0].ID
	default:
		result.MatchType = model.MatchNameAmbiguous
		result.Action = model.ActionCreateNew
		result.AddError(&model.AmbiguousMatchError{Name: record.NormalizedName, Candidates: len(candidates)})
	}

	return result, nil
}

// MatchAll classifies every record of c in cohort order. A lookup failure is
// attached to that record's result, which is marked failed and never applied.
func (m *Matcher) MatchAll(ctx context.Context, c *cohort.Cohort) []model.MatchResult {
	results := make([]model.MatchResult, 0, c.Len())
	for _, record := range c.Records {
		res, err := m.Match(ctx, record)
		if err != nil {
			m.logger.Error("Matcher: classification failed",
				"email", record.NormalizedEmail,
				"error", err.Error())
			res.MatchType = model.MatchNone
			res.Action = model.ActionCreateNew
			res.Failed = true
			res.AddError(err)
		}
		results = append(results, res)
	}

	m.logger.Info("Matcher: cohort classified",
		"cohort", c.Tag,
		"records", len(results))

	return results
}
