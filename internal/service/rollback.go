package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/cohort-migrator/internal/guard"
	"github.com/dtroode/cohort-migrator/internal/logger"
	"github.com/dtroode/cohort-migrator/internal/model"
)

// RollbackRequest names the identities to restore.
type RollbackRequest struct {
	Actor       string
	IdentityIDs []uuid.UUID
	Confirmer   guard.Confirmer
}

// Rollback restores identities to the state captured right before the
// cohort's migration touched them. Restoring does not take a new snapshot, so
// a rollback cannot itself be rolled back.
type Rollback struct {
	cohort     string
	identities model.IdentityStore
	snapshots  model.SnapshotStore
	audit      model.AuditStore
	archive    model.AuditArchive
	guard      GuardRunner
	logger     *logger.Logger
	now        func() time.Time
}

func NewRollback(
	cohort string,
	identities model.IdentityStore,
	snapshots model.SnapshotStore,
	audit model.AuditStore,
	archive model.AuditArchive,
	runner GuardRunner,
	logger *logger.Logger,
) *Rollback {
	return &Rollback{
		cohort:     cohort,
		identities: identities,
		snapshots:  snapshots,
		audit:      audit,
		archive:    archive,
		guard:      runner,
		logger:     logger,
		now:        time.Now,
	}
}

// Restore rolls back every identity of req. Per-identity failures are
// reported in the result and do not stop the run.
func (r *Rollback) Restore(ctx context.Context, req RollbackRequest) (model.RollbackReport, error) {
	if len(req.IdentityIDs) == 0 {
		return model.RollbackReport{}, errors.New("no identities to roll back")
	}

	var report model.RollbackReport
	err := r.guard.Run(ctx, guard.Request{
		Operation:   OpRollback,
		LockName:    LockName(r.cohort),
		Actor:       req.Actor,
		Destructive: true,
		Summary:     fmt.Sprintf("roll back %d identities of cohort %q", len(req.IdentityIDs), r.cohort),
		Confirmer:   req.Confirmer,
	}, func(ctx context.Context) error {
		report = model.RollbackReport{Cohort: r.cohort}
		for _, id := range req.IdentityIDs {
			res := r.restoreOne(ctx, id)
			if res.Restored {
				report.Successful++
			} else {
				report.Errored++
			}
			report.Results = append(report.Results, res)
		}
		return r.writeAudit(ctx, req.Actor, &report)
	})

	return report, err
}

func (r *Rollback) restoreOne(ctx context.Context, id uuid.UUID) model.RestoreResult {
	res := model.RestoreResult{IdentityID: id}

	snap, err := r.snapshots.Latest(ctx, id, r.cohort)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			err = model.ErrSnapshotNotFound
		}
		return r.failed(res, err)
	}
	res.SnapshotID = snap.ID
	res.SnapshotCreatedAt = snap.CreatedAt

	if err := r.identities.UpdateState(ctx, id, snap.State); err != nil {
		return r.failed(res, fmt.Errorf("failed to restore identity: %w", err))
	}

	r.logger.Info("Rollback service: identity restored",
		"identity_id", id.String(),
		"snapshot_id", snap.ID.String(),
		"cohort", r.cohort)

	res.Restored = true
	return res
}

func (r *Rollback) failed(res model.RestoreResult, err error) model.RestoreResult {
	r.logger.Error("Rollback service: failed to restore identity",
		"identity_id", res.IdentityID.String(),
		"error", err.Error())
	res.Err = err
	res.Error = err.Error()
	return res
}

func (r *Rollback) writeAudit(ctx context.Context, actor string, report *model.RollbackReport) error {
	report.AuditID = uuid.New()

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode rollback report: %w", err)
	}

	entry := model.AuditEntry{
		ID:         report.AuditID,
		Cohort:     r.cohort,
		Action:     model.ModeRollback,
		Processed:  len(report.Results),
		Successful: report.Successful,
		Errored:    report.Errored,
		Executor:   actor,
		CreatedAt:  r.now(),
		Payload:    payload,
	}
	if err := r.audit.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	if r.archive != nil {
		if err := r.archive.Archive(ctx, entry); err != nil {
			r.logger.Warn("Rollback service: failed to archive audit payload",
				"audit_id", entry.ID.String(),
				"error", err.Error())
		}
	}
	return nil
}
