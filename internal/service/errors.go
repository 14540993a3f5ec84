package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/todosponen/internal/circle"
	"github.com/mmynk/todosponen/internal/middleware"
)

var (
	errInternal    = errors.New("internal error")
	errUnknownUser = errors.New("account no longer exists")
)

// toConnectError maps engine errors onto Connect codes. Domain errors keep
// their message and carry their reason in error metadata; anything else is
// logged and hidden behind a generic internal error.
func toConnectError(op string, err error) error {
	if err == nil {
		return nil
	}
	if de, ok := circle.AsError(err); ok {
		cerr := connect.NewError(codeFor(de.Kind), de)
		cerr.Meta().Set(middleware.ReasonHeader, string(de.Reason))
		return cerr
	}
	switch {
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	slog.Error(op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, errInternal)
}

func codeFor(kind circle.Kind) connect.Code {
	switch kind {
	case circle.KindValidation:
		return connect.CodeInvalidArgument
	case circle.KindCapacity:
		return connect.CodeResourceExhausted
	case circle.KindNotFound:
		return connect.CodeNotFound
	case circle.KindPermission:
		return connect.CodePermissionDenied
	case circle.KindState:
		return connect.CodeFailedPrecondition
	}
	return connect.CodeUnknown
}

// Reason returns the domain reason carried by a Connect error, if any.
func Reason(err error) circle.Reason {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return ""
	}
	return circle.Reason(cerr.Meta().Get(middleware.ReasonHeader))
}
