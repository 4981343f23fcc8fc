package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/cohort-migrator/internal/guard"
	"github.com/dtroode/cohort-migrator/internal/logger"
	"github.com/dtroode/cohort-migrator/internal/model"
	"github.com/dtroode/cohort-migrator/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type MigrationService interface {
	Classify(ctx context.Context, actor string) (model.Report, error)
	Sample(ctx context.Context, req service.RunRequest) (model.Report, error)
	Execute(ctx context.Context, req service.RunRequest) (model.Report, error)
	History(ctx context.Context, limit int) ([]model.AuditEntry, error)
}

type RollbackService interface {
	Restore(ctx context.Context, req service.RollbackRequest) (model.RollbackReport, error)
}

type ViolationLister interface {
	Violations(ctx context.Context, limit int) ([]model.SecurityViolation, error)
}

type EmergencyState interface {
	Engaged() (bool, error)
}

// Migration serves the cohort migration API. The caller's operator name,
// set by the authentication interceptor, is the actor of every run.
type Migration struct {
	migrations     MigrationService
	rollback       RollbackService
	violations     ViolationLister
	emergency      EmergencyState
	contextManager model.ContextManager
	logger         *logger.Logger
}

var _ MigrationServer = (*Migration)(nil)

func NewMigration(
	migrations MigrationService,
	rollback RollbackService,
	violations ViolationLister,
	emergency EmergencyState,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Migration {
	return &Migration{
		migrations:     migrations,
		rollback:       rollback,
		violations:     violations,
		emergency:      emergency,
		contextManager: contextManager,
		logger:         logger,
	}
}

func (h *Migration) Classify(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	operator, err := h.operator(ctx)
	if err != nil {
		return nil, err
	}

	report, err := h.migrations.Classify(ctx, operator)
	if err != nil {
		h.logger.Error("migration handler: failed to classify", "operator", operator, "error", err)
		return nil, handleError(err)
	}

	return toStruct(report)
}

func (h *Migration) Sample(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.mutate(ctx, req, "sample", h.migrations.Sample)
}

func (h *Migration) Execute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.mutate(ctx, req, "execute", h.migrations.Execute)
}

func (h *Migration) mutate(
	ctx context.Context,
	req *structpb.Struct,
	name string,
	run func(context.Context, service.RunRequest) (model.Report, error),
) (*structpb.Struct, error) {
	operator, err := h.operator(ctx)
	if err != nil {
		return nil, err
	}

	report, err := run(ctx, service.RunRequest{
		Actor:     operator,
		Confirmer: guard.Phrase(stringField(req, "confirmation")),
	})
	if err != nil {
		h.logger.Error("migration handler: run failed", "run", name, "operator", operator, "error", err)
		return nil, handleError(err)
	}

	return toStruct(report)
}

func (h *Migration) Rollback(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	operator, err := h.operator(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := identityIDs(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if len(ids) == 0 {
		return nil, status.Error(codes.InvalidArgument, "identityIds is required")
	}

	report, err := h.rollback.Restore(ctx, service.RollbackRequest{
		Actor:       operator,
		IdentityIDs: ids,
		Confirmer:   guard.Phrase(stringField(req, "confirmation")),
	})
	if err != nil {
		h.logger.Error("migration handler: rollback failed", "operator", operator, "error", err)
		return nil, handleError(err)
	}

	return toStruct(report)
}

func (h *Migration) History(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := h.operator(ctx); err != nil {
		return nil, err
	}
	limit, err := listLimit(req)
	if err != nil {
		return nil, err
	}

	entries, err := h.migrations.History(ctx, limit)
	if err != nil {
		h.logger.Error("migration handler: failed to list audit history", "error", err)
		return nil, handleError(err)
	}

	return toStruct(map[string]any{"entries": entries})
}

func (h *Migration) Violations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := h.operator(ctx); err != nil {
		return nil, err
	}
	limit, err := listLimit(req)
	if err != nil {
		return nil, err
	}

	violations, err := h.violations.Violations(ctx, limit)
	if err != nil {
		h.logger.Error("migration handler: failed to list violations", "error", err)
		return nil, handleError(err)
	}

	return toStruct(map[string]any{"violations": violations})
}

func (h *Migration) EmergencyStatus(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if _, err := h.operator(ctx); err != nil {
		return nil, err
	}

	engaged, err := h.emergency.Engaged()
	if err != nil {
		// an unreadable switch blocks destructive runs, so report it as engaged
		h.logger.Warn("migration handler: emergency switch unreadable", "error", err)
		engaged = true
	}

	return structpb.NewStruct(map[string]any{"engaged": engaged})
}

func (h *Migration) operator(ctx context.Context) (string, error) {
	operator, ok := h.contextManager.GetOperatorFromContext(ctx)
	if !ok || operator == "" {
		return "", status.Error(codes.Unauthenticated, "operator not found in context")
	}
	return operator, nil
}

func listLimit(req *structpb.Struct) (int, error) {
	limit := defaultListLimit
	if v, ok := req.GetFields()["limit"]; ok {
		limit = int(v.GetNumberValue())
	}
	if limit <= 0 || limit > maxListLimit {
		return 0, status.Errorf(codes.InvalidArgument, "limit must be between 1 and %d", maxListLimit)
	}
	return limit, nil
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

func identityIDs(req *structpb.Struct) ([]uuid.UUID, error) {
	values := req.GetFields()["identityIds"].GetListValue().GetValues()
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("invalid identity id %q: %w", v.GetStringValue(), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// toStruct converts v to a Struct through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}
