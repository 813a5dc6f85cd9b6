package firestore

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

// kindForCode maps gRPC status codes onto repository error kinds. Aborted and
// FailedPrecondition come back from contended transactions and stale update preconditions, so
// callers see them as conflicts.
func kindForCode(code codes.Code) repositories.ErrorKind {
	switch code {
	case codes.NotFound:
		return repositories.ErrorKindNotFound
	case codes.AlreadyExists, codes.FailedPrecondition, codes.Aborted, codes.OutOfRange:
		return repositories.ErrorKindConflict
	case codes.Unavailable, codes.ResourceExhausted, codes.Internal, codes.DeadlineExceeded:
		return repositories.ErrorKindUnavailable
	default:
		return repositories.ErrorKindUnknown
	}
}

// WrapError classifies a Firestore error as a *repositories.Error tagged with op. Cancellation
// and caller deadlines are returned as the plain context errors.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	code := status.Code(err)
	if code == codes.Canceled {
		return context.Canceled
	}

	var repoErr *repositories.Error
	if errors.As(err, &repoErr) {
		if repoErr.Op == "" {
			repoErr.Op = op
		}
		return repoErr
	}
	return repositories.NewError(op, kindForCode(code), err)
}
