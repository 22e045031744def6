package errors

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// Map converts domain and repo/infra errors into gRPC-friendly status errors.
// Keeps the transport layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, "record not found")

	case errors.Is(err, ErrSelfReference), errors.Is(err, ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, ErrAlreadyLiked):
		return status.Error(codes.AlreadyExists, err.Error())

	case errors.Is(err, ErrProfileIncomplete), errors.Is(err, ErrNotConnected):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, ErrBlocked):
		return status.Error(codes.PermissionDenied, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	default:
		// fallback → bubble up error message for debugging
		return status.Error(codes.Internal, err.Error())
	}
}
