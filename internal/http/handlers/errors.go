package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ubc/tlef-engeai-sub001/internal/http/response"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/apierr"
	"github.com/ubc/tlef-engeai-sub001/internal/services"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses:
// absent entities to 404, rejected input and illegal transitions to 400,
// exhausted deletion fallbacks to 500 with the per-strategy attempts.
func respondServiceError(c *gin.Context, err error) {
	var (
		notFound     *services.NotFoundError
		userNotFound *services.UserNotFoundError
		invalid      *services.InvalidTransitionError
		validation   *services.ValidationError
		indexErr     *services.IndexDeletionError
		apiErr       *apierr.Error
	)

	switch {
	case errors.As(err, &notFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.As(err, &userNotFound):
		response.RespondError(c, http.StatusNotFound, "user_not_found", err)
	case errors.As(err, &invalid):
		allowed := make([]string, 0, len(invalid.Allowed))
		for _, status := range invalid.Allowed {
			allowed = append(allowed, string(status))
		}
		response.RespondErrorDetails(c, http.StatusBadRequest, "invalid_transition", err, map[string]any{
			"from":    string(invalid.From),
			"to":      string(invalid.To),
			"allowed": allowed,
		})
	case errors.As(err, &validation):
		response.RespondError(c, http.StatusBadRequest, "validation_failed", err)
	case errors.As(err, &indexErr):
		attempts := make([]string, 0, len(indexErr.Attempts))
		for _, attempt := range indexErr.Attempts {
			if attempt != nil {
				attempts = append(attempts, attempt.Error())
			}
		}
		response.RespondErrorDetails(c, http.StatusInternalServerError, "index_deletion_failed", err, map[string]any{
			"course":   indexErr.CourseName,
			"attempts": attempts,
		})
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		response.RespondErrorDetails(c, status, apiErr.Code, err, apiErr.Details)
	default:
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
