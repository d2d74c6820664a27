package handler

import (
	"errors"

	"github.com/staffhub/user-management/internal/api/metrics"
	"github.com/staffhub/user-management/internal/core/domain"
)

// observe records the outcome of a lifecycle operation.
func observe(operation string, err error) {
	metrics.LifecycleOperationsTotal.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrImmutable):
		return "immutable"
	case errors.Is(err, domain.ErrSelfTarget):
		return "self_target"
	case errors.Is(err, domain.ErrNoOp):
		return "no_op"
	default:
		return "error"
	}
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrAccountDeactivated):
		return "deactivated"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	default:
		return "error"
	}
}
