package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/cohort-migrator/internal/cohort"
	"github.com/dtroode/cohort-migrator/internal/config"
	"github.com/dtroode/cohort-migrator/internal/credential"
	"github.com/dtroode/cohort-migrator/internal/guard"
	"github.com/dtroode/cohort-migrator/internal/logger"
	"github.com/dtroode/cohort-migrator/internal/matcher"
	"github.com/dtroode/cohort-migrator/internal/model"
)

// Operation names registered with the execution guard.
const (
	OpClassify = "cohort-classify"
	OpSample   = "cohort-sample"
	OpExecute  = "cohort-execute"
	OpRollback = "cohort-rollback"
)

// Operations lists every operation this service can run.
func Operations() []string {
	return []string{OpClassify, OpSample, OpExecute, OpRollback}
}

// LockName is the guard lock shared by every destructive run on cohort, so a
// sample, an execute and a rollback of the same cohort never overlap.
func LockName(cohort string) string {
	return "cohort-migration:" + cohort
}

// SourceOpener resolves a cohort source identifier into a reader.
type SourceOpener interface {
	Open(ctx context.Context, src string) (io.ReadCloser, error)
}

// GuardRunner runs a body behind the execution guard.
type GuardRunner interface {
	Run(ctx context.Context, req guard.Request, body func(ctx context.Context) error) error
}

// ViolationRecorder receives attempts to bypass the guard.
type ViolationRecorder interface {
	RecordViolation(ctx context.Context, v model.SecurityViolation) error
}

// RunRequest carries the caller side of a run.
type RunRequest struct {
	Actor     string
	Confirmer guard.Confirmer
}

// Migration runs a cohort through classification and, in mutating modes,
// applies the results behind the execution guard.
type Migration struct {
	cfg        config.Migration
	opener     SourceOpener
	loader     *cohort.Loader
	matcher    *matcher.Matcher
	identities model.IdentityStore
	snapshots  model.SnapshotStore
	audit      model.AuditStore
	archive    model.AuditArchive
	guard      GuardRunner
	violations ViolationRecorder
	hasher     *credential.Hasher
	logger     *logger.Logger
	now        func() time.Time
}

func NewMigration(
	cfg config.Migration,
	opener SourceOpener,
	identities model.IdentityStore,
	snapshots model.SnapshotStore,
	audit model.AuditStore,
	archive model.AuditArchive,
	runner GuardRunner,
	violations ViolationRecorder,
	logger *logger.Logger,
) *Migration {
	return &Migration{
		cfg:        cfg,
		opener:     opener,
		loader:     cohort.NewLoader(cfg.DelimiterRune(), logger),
		matcher:    matcher.New(identities, logger),
		identities: identities,
		snapshots:  snapshots,
		audit:      audit,
		archive:    archive,
		guard:      runner,
		violations: violations,
		hasher:     credential.NewHasher(cfg.BcryptCost),
		logger:     logger,
		now:        time.Now,
	}
}

// Classify matches every record of the configured cohort without writing to
// the identity store.
func (m *Migration) Classify(ctx context.Context, actor string) (model.Report, error) {
	if !m.cfg.Enabled {
		return model.Report{}, model.ErrFeatureDisabled
	}

	m.logger.Info("Migration service: classifying cohort",
		"cohort", m.cfg.Cohort,
		"actor", actor)

	c, err := m.LoadCohort(ctx)
	if err != nil {
		return model.Report{}, err
	}

	report := newReport(model.ModeClassify, c, m.matcher.MatchAll(ctx, c))
	return m.finish(ctx, actor, report)
}

// Sample applies a small selection of records covering every match category.
func (m *Migration) Sample(ctx context.Context, req RunRequest) (model.Report, error) {
	return m.mutate(ctx, model.ModeSample, OpSample, req)
}

// Execute applies every record of the cohort.
func (m *Migration) Execute(ctx context.Context, req RunRequest) (model.Report, error) {
	return m.mutate(ctx, model.ModeExecute, OpExecute, req)
}

func (m *Migration) mutate(ctx context.Context, mode model.RunMode, op string, req RunRequest) (model.Report, error) {
	if !m.cfg.Enabled {
		return model.Report{}, model.ErrFeatureDisabled
	}

	var report model.Report
	err := m.guard.Run(ctx, guard.Request{
		Operation:   op,
		LockName:    LockName(m.cfg.Cohort),
		Actor:       req.Actor,
		Destructive: true,
		Summary:     fmt.Sprintf("%s cohort %q from %s", mode, m.cfg.Cohort, m.cfg.Source),
		Confirmer:   req.Confirmer,
	}, func(ctx context.Context) error {
		c, err := m.LoadCohort(ctx)
		if err != nil {
			return err
		}

		results := m.matcher.MatchAll(ctx, c)
		if mode == model.ModeSample {
			results = selectSample(results, m.cfg.SampleSize)
		}

		results, err = m.Apply(ctx, c, results)
		if err != nil {
			return err
		}

		report, err = m.finish(ctx, req.Actor, newReport(mode, c, results))
		return err
	})
	return report, err
}

// History lists the most recent audit entries of the configured cohort,
// newest first.
func (m *Migration) History(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	entries, err := m.audit.ListByCohort(ctx, m.cfg.Cohort, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit history: %w", err)
	}
	return entries, nil
}

// LoadCohort reads and parses the configured cohort source.
func (m *Migration) LoadCohort(ctx context.Context) (*cohort.Cohort, error) {
	rc, err := m.opener.Open(ctx, m.cfg.Source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return m.loader.Load(ctx, m.cfg.Cohort, m.cfg.Source, rc)
}

// Apply writes the classified results of c to the identity store, one record
// at a time. It must run inside a guarded operation; otherwise the attempt is
// reported as a violation and nothing is written.
func (m *Migration) Apply(ctx context.Context, c *cohort.Cohort, results []model.MatchResult) ([]model.MatchResult, error) {
	tok, ok := guard.FromContext(ctx)
	if !ok {
		if err := m.violations.RecordViolation(ctx, model.SecurityViolation{
			Operation: "cohort-apply",
			Kind:      model.ViolationUnguarded,
			Prevented: true,
			Detail:    fmt.Sprintf("apply of %d records for cohort %q outside the execution guard", len(results), c.Tag),
		}); err != nil {
			m.logger.Error("Migration service: failed to record violation",
				"cohort", c.Tag,
				"error", err.Error())
		}
		return results, model.ErrUnguarded
	}

	hash, err := m.hasher.Hash(m.cfg.TempPassword)
	if err != nil {
		return results, fmt.Errorf("failed to hash temporary password: %w", err)
	}

	// An identity is snapshotted and updated at most once per run, so its
	// snapshot always holds the pre-migration state.
	updated := make(map[uuid.UUID]int)
	for i := range results {
		m.applyOne(ctx, c, &results[i], hash, updated)
	}

	m.logger.Info("Migration service: cohort applied",
		"cohort", c.Tag,
		"operation", tok.Operation,
		"actor", tok.Actor,
		"records", len(results))

	return results, nil
}

func (m *Migration) applyOne(ctx context.Context, c *cohort.Cohort, res *model.MatchResult, hash string, updated map[uuid.UUID]int) {
	if res.Failed {
		return
	}

	rec := res.Record
	if !c.Contains(rec.Email) {
		m.fail(res, &model.MutationError{Email: rec.NormalizedEmail, Op: "guard", Err: model.ErrOutsideCohort})
		return
	}

	now := m.now()
	tag, src := c.Tag, c.Source
	state := model.IdentityState{
		BillingReferenceID: rec.BillingReferenceID,
		PasswordHash:       hash,
		MustResetPassword:  true,
		PasswordSetMethod:  model.PasswordSetMethodMigration,
		PasswordSetAt:      &now,
		MigrationCohort:    &tag,
		MigrationSource:    &src,
	}

	switch res.Action {
	case model.ActionUpdateExisting:
		identity, err := m.currentIdentity(ctx, res)
		if err != nil {
			m.fail(res, &model.MutationError{Email: rec.NormalizedEmail, Op: "lookup", Err: err})
			return
		}
		if line, ok := updated[identity.ID]; ok {
			m.fail(res, &model.MutationError{
				Email: rec.NormalizedEmail,
				Op:    "update",
				Err:   fmt.Errorf("%w: identity %s by line %d", model.ErrIdentityAlreadyMigrated, identity.ID, line),
			})
			return
		}

		if err := m.snapshots.Create(ctx, model.Snapshot{
			ID:         uuid.New(),
			IdentityID: identity.ID,
			Cohort:     c.Tag,
			State:      identity.State(),
			CreatedAt:  now,
		}); err != nil {
			m.fail(res, &model.MutationError{Email: rec.NormalizedEmail, Op: "snapshot", Err: err})
			return
		}

		if err := m.identities.UpdateState(ctx, identity.ID, state); err != nil {
			m.fail(res, &model.MutationError{Email: rec.NormalizedEmail, Op: "update", Err: err})
			return
		}
		updated[identity.ID] = rec.Line
		res.IdentityID = identity.ID

	case model.ActionCreateNew:
		first, last := cohort.SplitName(rec.DisplayName)
		created, err := m.identities.Create(ctx, model.Identity{
			ID:                 uuid.New(),
			Email:              rec.NormalizedEmail,
			FirstName:          first,
			LastName:           last,
			BillingReferenceID: state.BillingReferenceID,
			PasswordHash:       state.PasswordHash,
			MustResetPassword:  state.MustResetPassword,
			PasswordSetMethod:  state.PasswordSetMethod,
			PasswordSetAt:      state.PasswordSetAt,
			MigrationCohort:    state.MigrationCohort,
			MigrationSource:    state.MigrationSource,
			AccessTier:         model.AccessTierBasic,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		if err != nil {
			m.fail(res, &model.MutationError{Email: rec.NormalizedEmail, Op: "create", Err: err})
			return
		}
		res.IdentityID = created.ID

	default:
		m.fail(res, &model.MutationError{Email: rec.NormalizedEmail, Op: "apply", Err: fmt.Errorf("unknown action %s", res.Action)})
		return
	}

	res.Applied = true
}

// currentIdentity rereads the matched identity so the snapshot holds the
// state the update overwrites, not the one seen during classification.
func (m *Migration) currentIdentity(ctx context.Context, res *model.MatchResult) (model.Identity, error) {
	id := res.IdentityID
	if res.Identity != nil {
		id = res.Identity.ID
	}
	return m.identities.GetByID(ctx, id)
}

func (m *Migration) fail(res *model.MatchResult, err error) {
	m.logger.Error("Migration service: failed to apply record",
		"line", res.Record.Line,
		"error", err.Error())
	res.Failed = true
	res.AddError(err)
}

// finish tallies the report, appends its audit entry and archives the payload.
func (m *Migration) finish(ctx context.Context, actor string, report model.Report) (model.Report, error) {
	report.Tally()
	report.AuditID = uuid.New()

	payload, err := json.Marshal(report)
	if err != nil {
		return report, fmt.Errorf("failed to encode report: %w", err)
	}

	entry := model.AuditEntry{
		ID:         report.AuditID,
		Cohort:     report.Cohort,
		Action:     report.Mode,
		Processed:  report.TotalRecords,
		Successful: report.Successful,
		Errored:    report.Errored,
		Executor:   actor,
		CreatedAt:  m.now(),
		Payload:    payload,
	}
	if err := m.writeAudit(ctx, entry); err != nil {
		return report, err
	}

	m.logger.Info("Migration service: run finished",
		"mode", string(report.Mode),
		"cohort", report.Cohort,
		"total", report.TotalRecords,
		"successful", report.Successful,
		"errored", report.Errored,
		"audit_id", report.AuditID.String())

	return report, nil
}

func (m *Migration) writeAudit(ctx context.Context, entry model.AuditEntry) error {
	if err := m.audit.Append(ctx, entry); err != nil {
		m.logger.Error("Migration service: failed to append audit entry",
			"cohort", entry.Cohort,
			"error", err.Error())
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	if m.archive == nil {
		return nil
	}
	if err := m.archive.Archive(ctx, entry); err != nil {
		m.logger.Warn("Migration service: failed to archive audit payload",
			"audit_id", entry.ID.String(),
			"error", err.Error())
	}
	return nil
}

func newReport(mode model.RunMode, c *cohort.Cohort, results []model.MatchResult) model.Report {
	return model.Report{
		Mode:              mode,
		Cohort:            c.Tag,
		TotalRecords:      len(results),
		DuplicatesRemoved: c.DuplicatesRemoved,
		Results:           results,
		RowErrors:         c.RowErrors,
	}
}

// selectSample picks up to n results, taking one per match category in turn
// and keeping cohort order within a category. Failed lookups are never picked.
func selectSample(results []model.MatchResult, n int) []model.MatchResult {
	byType := make(map[model.MatchType][]int, len(model.MatchTypes))
	for i, res := range results {
		if res.Failed {
			continue
		}
		byType[res.MatchType] = append(byType[res.MatchType], i)
	}

	var picked []int
	for len(picked) < n {
		progress := false
		for _, t := range model.MatchTypes {
			if len(picked) == n {
				break
			}
			if idx := byType[t]; len(idx) > 0 {
				picked = append(picked, idx[0])
				byType[t] = idx[1:]
				progress = true
			}
		}
		if !progress {
			break
		}
	}

	slices.Sort(picked)
	out := make([]model.MatchResult, 0, len(picked))
	for _, i := range picked {
		out = append(out, results[i])
	}
	return out
}
