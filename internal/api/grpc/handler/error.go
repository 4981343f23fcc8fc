package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/cohort-migrator/internal/cohort"
	"github.com/dtroode/cohort-migrator/internal/model"
)

func handleError(err error) error {
	switch {
	case errors.Is(err, model.ErrFeatureDisabled):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, model.ErrEmergencyDisabled):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, model.ErrUnauthorized), errors.Is(err, model.ErrQuarantined):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, model.ErrConfirmationDeclined):
		return status.Error(codes.InvalidArgument, "confirmation phrase does not match")
	case errors.Is(err, model.ErrLockHeld):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, cohort.ErrInvalidHeader):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrSnapshotNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
