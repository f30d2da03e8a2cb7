package api

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/floroz/ride-auction/internal/domain/lifecycle"
)

var errInternal = errors.New("internal error")

// toConnectError maps the domain error taxonomy onto connect codes. Anything outside the
// taxonomy is logged and reported as Internal without its details.
func toConnectError(ctx context.Context, logger *slog.Logger, procedure string, err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, lifecycle.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, lifecycle.ErrInvalidState):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, lifecycle.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, lifecycle.ErrForbidden):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		logger.ErrorContext(ctx, "Request failed", "procedure", procedure, "error", err)
		return connect.NewError(connect.CodeInternal, errInternal)
	}
}

func invalidArgument(msg string) error {
	return connect.NewError(connect.CodeInvalidArgument, errors.New(msg))
}
