package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/internal/app/service"
	apperrors "github.com/wanderwise/wanderwise-backend/internal/errors"
	"github.com/wanderwise/wanderwise-backend/internal/middleware"
	"github.com/wanderwise/wanderwise-backend/pkg/util"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// serviceErrors maps service sentinels to HTTP responses. The sentinel text
// is the client message.
var serviceErrors = []errorMapping{
	{service.ErrReviewNotFound, http.StatusNotFound, apperrors.ReviewNotFound},
	{service.ErrInvalidRating, http.StatusBadRequest, apperrors.ReviewInvalidRating},
	{service.ErrInvalidReviewable, http.StatusBadRequest, apperrors.ReviewInvalidReviewable},
	{service.ErrPublishedImmutable, http.StatusBadRequest, apperrors.ReviewPublishedImmutable},
	{service.ErrNothingToUpdate, http.StatusBadRequest, apperrors.ReviewNothingToUpdate},
	{service.ErrNotReviewOwner, http.StatusForbidden, apperrors.AuthzOwnerOnly},
	{service.ErrCannotPublishRejected, http.StatusBadRequest, apperrors.ReviewPublishRejected},
	{service.ErrInvalidVote, http.StatusBadRequest, apperrors.ReviewInvalidVote},
	{service.ErrEmptyReply, http.StatusBadRequest, apperrors.ReviewEmptyReply},
	{service.ErrInvalidBulkAction, http.StatusBadRequest, apperrors.ModerationInvalidAction},
	{service.ErrEmptyBulkIDs, http.StatusBadRequest, apperrors.ModerationEmptyIDs},
	{service.ErrNoValidBulkIDs, http.StatusBadRequest, apperrors.ModerationNoValidIDs},
	{service.ErrInvalidStatusFilter, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	{service.ErrAuditLogNotFound, http.StatusNotFound, apperrors.AuditLogNotFound},
	{service.ErrInvalidDateFilter, http.StatusBadRequest, apperrors.AuditInvalidDate},
	{service.ErrInvalidExportFormat, http.StatusBadRequest, apperrors.AuditInvalidExportFmt},
	{service.ErrEmailAlreadyExists, http.StatusConflict, apperrors.AuthEmailAlreadyExists},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, apperrors.AuthInvalidCredentials},
	{service.ErrUserInactive, http.StatusForbidden, apperrors.AuthAccountInactive},
	{service.ErrInvalidRefreshToken, http.StatusUnauthorized, apperrors.AuthTokenInvalid},
	{service.ErrUserNotFound, http.StatusNotFound, apperrors.ResourceNotFound},
	{util.ErrPasswordTooShort, http.StatusBadRequest, apperrors.ValidationInvalidInput},
}

// respondError writes the mapped response for a known service error and
// otherwise logs err and falls back to the database error parser.
func respondError(c *gin.Context, err error, resource string) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			apperrors.RespondWithError(c, m.status, m.code, m.err.Error())
			return
		}
	}
	middleware.GetLoggerFromContext(c).Error("Request failed", err, map[string]interface{}{
		"resource": resource,
	})
	apperrors.ParseAndRespond(c, err, resource)
}

// parseIDParam reads a positive integer path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// optionalUintQuery reads an optional positive integer query parameter.
// ok is false (and a 400 written) when the value is present but malformed.
func optionalUintQuery(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, name+" must be a positive integer")
		return 0, false
	}
	return uint(n), true
}

// pageQuery reads page and limit; malformed values fall back to defaults.
func pageQuery(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page"))
	limit, _ = strconv.Atoi(c.Query("limit"))
	return page, limit
}

func currentCaller(c *gin.Context) (service.Caller, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return service.Caller{}, false
	}
	role, _ := middleware.GetUserRole(c)
	return service.Caller{UserID: userID, Role: role}, true
}

// optionalCaller is nil for guests.
func optionalCaller(c *gin.Context) *service.Caller {
	caller, ok := currentCaller(c)
	if !ok {
		return nil
	}
	return &caller
}

func requireUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
	}
	return userID, ok
}

func paginated(key string, items interface{}, p model.Pagination) gin.H {
	return gin.H{
		"success":    true,
		key:          items,
		"pagination": p,
	}
}
