package httpadapter

import (
	"net/http"

	"github.com/adhassan/salescast/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput),
		domain.IsKind(err, domain.ErrBadFormat),
		domain.IsKind(err, domain.ErrNoActiveModel):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrModelNotFound),
		domain.IsKind(err, domain.ErrDatasetNotFound),
		domain.IsKind(err, domain.ErrUserNotFound),
		domain.IsKind(err, domain.ErrRoleNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrEmailTaken):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage keeps the two model-selection outcomes stable for clients;
// everything else surfaces the wrapped error text.
func errorMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrModelNotFound):
		return "invalid model number"
	case domain.IsKind(err, domain.ErrNoActiveModel):
		return "no model selected yet"
	default:
		return err.Error()
	}
}
