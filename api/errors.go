package api

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/semanticallynull/bikely-backend/internal/apperr"
	"github.com/semanticallynull/bikely-backend/internal/middleware"
)

var (
	errInvalidBody   = apperr.NewValidation("INVALID_BODY", "Request body is not valid")
	errMissingFields = apperr.NewValidation("MISSING_FIELDS", "Missing required fields")
	errInternal      = apperr.NewInternal("INTERNAL_ERROR", "Internal server error")
)

var statusByKind = map[apperr.Kind]int{
	apperr.Validation:   http.StatusBadRequest,
	apperr.Conflict:     http.StatusBadRequest,
	apperr.NotFound:     http.StatusNotFound,
	apperr.Unauthorized: http.StatusUnauthorized,
	apperr.Forbidden:    http.StatusForbidden,
	apperr.Internal:     http.StatusInternalServerError,
}

// fail answers with the status and code of err. Unclassified errors are
// logged, reported and hidden behind a generic message.
func fail(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = errInternal.Wrap(err)
	}

	status := statusByKind[e.Kind]
	if status == http.StatusInternalServerError {
		middleware.GetLogger(c).ErrorContext(c, "request failed", "error", err)
		sentry.CaptureException(err)
	}

	c.AbortWithStatusJSON(status, gin.H{"code": e.Code, "message": e.Message})
}

// paramID parses the :id path parameter. A malformed ID is reported as
// notFound.
func paramID(c *gin.Context, notFound error) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, notFound)
		return uuid.Nil, false
	}
	return id, true
}

// caller returns the authenticated subject. The role middleware guarantees
// a valid token, so a missing subject is a malformed token.
func caller(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetSubject(c)
	if !ok {
		fail(c, apperr.NewUnauthorized("UNAUTHORIZED", "Authentication required"))
	}
	return id, ok
}
