package handler

import (
	"errors"

	"github.com/videotube/account-service/internal/api/metrics"
	"github.com/videotube/account-service/internal/core/domain"
)

func observeAuth(event string, err error) {
	metrics.AuthEventsTotal.WithLabelValues(event, resultOf(err)).Inc()
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
